package auth

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/ghuser/mall/pkg/errhttp"
	"github.com/ghuser/mall/pkg/logger"
)

const (
	SessionName      = "mall_session"
	sessionUserIDKey = "user_id"
)

// userFromSession reads and parses the user id stored in the session cookie.
func userFromSession(store sessions.Store, r *http.Request) (uuid.UUID, error) {
	session, err := store.Get(r, SessionName)
	if err != nil {
		return uuid.Nil, fmt.Errorf("read session: %w", err)
	}

	raw, ok := session.Values[sessionUserIDKey].(string)
	if !ok || raw == "" {
		return uuid.Nil, ErrUnauthenticated
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid user_id in session: %w", err)
	}
	return id, nil
}

// LoadSession attaches the session user to the request context when one is
// present. Guests pass through untouched.
func LoadSession(store sessions.Store, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := userFromSession(store, r)
			if err != nil {
				if !errors.Is(err, ErrUnauthenticated) {
					log.DebugContext(r.Context(), "ignoring unusable session", "error", err)
				}
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), id)))
		})
	}
}

// RequireAuth rejects requests without a session user with a 401
// Authentication error. After it, handlers can rely on UserIDFromCtx.
func RequireAuth(store sessions.Store, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, err := UserIDFromCtx(r.Context()); err == nil {
				next.ServeHTTP(w, r)
				return
			}

			id, err := userFromSession(store, r)
			if err != nil {
				log.WarnContext(r.Context(), "unauthenticated request", "path", r.URL.Path, "error", err)
				errhttp.WriteError(w, errhttp.Authentication(ErrUnauthenticated.Error()))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), id)))
		})
	}
}

// StartSession binds userID to the caller's session cookie.
func StartSession(w http.ResponseWriter, r *http.Request, store sessions.Store, userID uuid.UUID) error {
	session, err := store.Get(r, SessionName)
	if err != nil {
		return fmt.Errorf("read session: %w", err)
	}
	session.Values[sessionUserIDKey] = userID.String()
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}
