package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ghuser/mall/pkg/app"
	"github.com/ghuser/mall/pkg/auth"
	"github.com/ghuser/mall/pkg/config"
	"github.com/ghuser/mall/pkg/errhttp"
	"github.com/ghuser/mall/pkg/logger"
	"github.com/ghuser/mall/services/user/application/api"
	"github.com/ghuser/mall/services/user/application/handlers"
	appsvcs "github.com/ghuser/mall/services/user/application/services"
	"github.com/ghuser/mall/services/user/domain/models"
)

type memRepo struct {
	emails map[models.Email]bool
}

func (r *memRepo) Save(_ context.Context, u *models.User) error {
	if r.emails[u.Email] {
		return &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint \"users_email_key\""}
	}
	r.emails[u.Email] = true
	return nil
}

func newRouter(store sessions.Store) http.Handler {
	log := logger.New(&config.Config{LogLevel: "error"})
	svcs := &appsvcs.Services{User: appsvcs.NewUserService(&memRepo{emails: map[models.Email]bool{}}, log)}
	r := chi.NewRouter()
	api.Mount(r, svcs, &app.Application{Logger: log, SessionStore: store})
	return r
}

func post(h http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/user", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestPostUser_StartsSession(t *testing.T) {
	store := sessions.NewCookieStore([]byte("0123456789abcdef0123456789abcdef"))
	h := newRouter(store)

	w := post(h, `{"email":"Kim@Example.com","name":"Kim"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var got handlers.UserResponse
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Email != "kim@example.com" || got.Role != "customer" || got.Status != "active" {
		t.Fatalf("unexpected user: %+v", got)
	}

	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected a session cookie")
	}

	// The cookie must authenticate a follow-up request as the new user.
	var seen string
	protected := auth.RequireAuth(store, logger.New(&config.Config{LogLevel: "error"}))(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		id, _ := auth.UserIDFromCtx(r.Context())
		seen = id.String()
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	protected.ServeHTTP(httptest.NewRecorder(), req)
	if seen != got.ID.String() {
		t.Fatalf("session user: got %q, want %q", seen, got.ID)
	}
}

func TestPostUser_Errors(t *testing.T) {
	h := newRouter(nil)
	if w := post(h, `{"email":"a@example.com","name":"A"}`); w.Code != http.StatusCreated {
		t.Fatalf("seed: %d", w.Code)
	}

	tests := []struct {
		name     string
		body     string
		wantType string
	}{
		{"duplicate email", `{"email":"A@example.com","name":"B"}`, "Save error"},
		{"invalid email", `{"email":"nope","name":"B"}`, "Validation error"},
		{"unknown role", `{"email":"b@example.com","name":"B","role":"root"}`, "Validation error"},
		{"missing name", `{"email":"b@example.com"}`, "Validation error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := post(h, tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
			var env errhttp.Envelope
			if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if env.Error.Type != tt.wantType {
				t.Fatalf("type: got %q, want %q", env.Error.Type, tt.wantType)
			}
		})
	}
}
