package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/ghuser/mall/pkg/config"
	"github.com/ghuser/mall/pkg/logger"
)

// newTestStore returns a gorilla CookieStore (no Redis required) for unit tests.
// In production the RedisStore is used; the sessions.Store interface is identical.
func newTestStore() sessions.Store {
	return sessions.NewCookieStore(
		[]byte("test-auth-key-must-be-32-bytes!!"),
		[]byte("test-enc-key-must-be-32-bytes!!!"),
	)
}

func newTestLogger() logger.Logger {
	return logger.New(&config.Config{LogLevel: "error"})
}

// requestWithValues returns a request carrying a session cookie whose values
// were set by mutate.
func requestWithValues(t *testing.T, store sessions.Store, mutate func(map[interface{}]interface{})) *http.Request {
	t.Helper()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/cart/mine", nil)
	session, err := store.Get(r, SessionName)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	mutate(session.Values)
	if err := session.Save(r, w); err != nil {
		t.Fatalf("save session: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/cart/mine", nil)
	for _, c := range w.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func captureUser(got **uuid.UUID) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got = OptionalUserID(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuth(t *testing.T) {
	store := newTestStore()
	userID := uuid.New()

	tests := []struct {
		name       string
		req        func(t *testing.T) *http.Request
		wantStatus int
	}{
		{
			name: "valid session",
			req: func(t *testing.T) *http.Request {
				return requestWithValues(t, store, func(v map[interface{}]interface{}) { v[sessionUserIDKey] = userID.String() })
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing cookie",
			req:        func(*testing.T) *http.Request { return httptest.NewRequest(http.MethodGet, "/api/cart/mine", nil) },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "session without user_id",
			req: func(t *testing.T) *http.Request {
				return requestWithValues(t, store, func(map[interface{}]interface{}) {})
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "malformed user_id",
			req: func(t *testing.T) *http.Request {
				return requestWithValues(t, store, func(v map[interface{}]interface{}) { v[sessionUserIDKey] = "not-a-uuid" })
			},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *uuid.UUID
			w := httptest.NewRecorder()
			RequireAuth(store, newTestLogger())(captureUser(&got)).ServeHTTP(w, tt.req(t))

			if w.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, w.Code)
			}
			if tt.wantStatus == http.StatusOK && (got == nil || *got != userID) {
				t.Fatalf("expected user %v in context, got %v", userID, got)
			}
			if tt.wantStatus == http.StatusUnauthorized && !strings.Contains(w.Body.String(), `"type":"Authentication error"`) {
				t.Fatalf("expected authentication envelope, got %s", w.Body.String())
			}
		})
	}
}

func TestLoadSession(t *testing.T) {
	store := newTestStore()
	userID := uuid.New()

	t.Run("attaches user", func(t *testing.T) {
		var got *uuid.UUID
		r := requestWithValues(t, store, func(v map[interface{}]interface{}) { v[sessionUserIDKey] = userID.String() })
		w := httptest.NewRecorder()
		LoadSession(store, newTestLogger())(captureUser(&got)).ServeHTTP(w, r)

		if got == nil || *got != userID {
			t.Fatalf("expected %v, got %v", userID, got)
		}
	})

	t.Run("guest passes through", func(t *testing.T) {
		got := &userID
		w := httptest.NewRecorder()
		LoadSession(store, newTestLogger())(captureUser(&got)).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/cart", nil))

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		if got != nil {
			t.Fatalf("expected guest, got %v", got)
		}
	})

	t.Run("garbage session treated as guest", func(t *testing.T) {
		got := &userID
		r := requestWithValues(t, store, func(v map[interface{}]interface{}) { v[sessionUserIDKey] = "zzz" })
		w := httptest.NewRecorder()
		LoadSession(store, newTestLogger())(captureUser(&got)).ServeHTTP(w, r)
		if got != nil {
			t.Fatalf("expected guest, got %v", got)
		}
	})
}

func TestStartSession_RoundTrip(t *testing.T) {
	store := newTestStore()
	userID := uuid.New()

	w := httptest.NewRecorder()
	if err := StartSession(w, httptest.NewRequest(http.MethodPost, "/api/user", nil), store, userID); err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	r := httptest.NewRequest(http.MethodGet, "/api/cart/mine", nil)
	for _, c := range w.Result().Cookies() {
		r.AddCookie(c)
	}

	var got *uuid.UUID
	rec := httptest.NewRecorder()
	RequireAuth(store, newTestLogger())(captureUser(&got)).ServeHTTP(rec, r)
	if rec.Code != http.StatusOK || got == nil || *got != userID {
		t.Fatalf("expected authenticated %v, got status %d user %v", userID, rec.Code, got)
	}
}
