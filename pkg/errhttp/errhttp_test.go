package errhttp

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ghuser/mall/pkg/config"
	"github.com/ghuser/mall/pkg/database"
	"github.com/ghuser/mall/pkg/domainerr"
	"github.com/ghuser/mall/pkg/logger"
	cartdomain "github.com/ghuser/mall/services/cart/domain"
	itemdomain "github.com/ghuser/mall/services/item/domain"
	userdomain "github.com/ghuser/mall/services/user/domain"
)

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("response body is not valid JSON: %v (%s)", err, w.Body.String())
	}
	return env
}

func TestError_StatusAndType(t *testing.T) {
	tests := []struct {
		name       string
		err        *Error
		wantStatus int
		wantType   string
		wantMsg    string
	}{
		{"domain save", FromDomain(domainerr.Save("boom")), 400, "Save error", "boom"},
		{"domain delete", FromDomain(domainerr.Delete("gone")), 400, "Delete error", "gone"},
		{"db not found", FromDatabase(&database.Error{Kind: database.KindNotFound, Message: "m"}), 404, "Not found", "m"},
		{"db duplicate", FromDatabase(&database.Error{Kind: database.KindDuplicate, Message: "m"}), 409, "Duplicate data", "m"},
		{"db query", FromDatabase(&database.Error{Kind: database.KindQuery, Message: "m"}), 400, "Query error", "m"},
		{"db connection", FromDatabase(&database.Error{Kind: database.KindConnection, Message: "m"}), 503, "Database connection error", "m"},
		{"db other", FromDatabase(&database.Error{Kind: database.KindOther, Message: "m"}), 500, "Database error", "m"},
		{"validation", Validation("bad"), 400, "Validation error", "bad"},
		{"authentication", Authentication("who"), 401, "Authentication error", "who"},
		{"authorization", Authorization("no"), 403, "Authorization error", "no"},
		{"external", ExternalService("down"), 502, "External service error", "down"},
		{"other", Other("oops"), 500, "Internal server error", "oops"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Status(); got != tt.wantStatus {
				t.Fatalf("Status: got %d, want %d", got, tt.wantStatus)
			}
			body := tt.err.Body()
			if body.Error.Type != tt.wantType {
				t.Fatalf("Type: got %q, want %q", body.Error.Type, tt.wantType)
			}
			if body.Error.Message != tt.wantMsg {
				t.Fatalf("Message: got %q, want %q", body.Error.Message, tt.wantMsg)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{"wrapped domain error", fmt.Errorf("save cart: %w", domainerr.Save("x")), 400, "Save error"},
		{"wrapped storage error", fmt.Errorf("get cart: %w", database.NotFound()), 404, "Not found"},
		{"transport error passes through", fmt.Errorf("ctx: %w", Authorization("nope")), 403, "Authorization error"},
		{"invalid cart id", fmt.Errorf("%w: empty", cartdomain.ErrInvalidCartID), 400, "Validation error"},
		{"invalid item id", cartdomain.ErrInvalidItemID, 400, "Validation error"},
		{"invalid quantity", cartdomain.ErrInvalidQuantity, 400, "Validation error"},
		{"invalid item name", itemdomain.ErrInvalidItemName, 400, "Validation error"},
		{"invalid item type", itemdomain.ErrInvalidItemType, 400, "Validation error"},
		{"invalid price", itemdomain.ErrInvalidPrice, 400, "Validation error"},
		{"invalid images", fmt.Errorf("%w: image 0 is empty", itemdomain.ErrInvalidItemImages), 400, "Validation error"},
		{"invalid email", userdomain.ErrInvalidEmail, 400, "Validation error"},
		{"invalid role", userdomain.ErrInvalidUserRole, 400, "Validation error"},
		{"access denied", cartdomain.ErrCartAccessDenied, 403, "Authorization error"},
		{"cart locked", fmt.Errorf("lock: %w", cartdomain.ErrCartLocked), 502, "External service error"},
		{"unknown error", errors.New("something unexpected"), 500, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.err)
			if got == nil {
				t.Fatal("Resolve returned nil for non-nil error")
			}
			if got.Status() != tt.wantStatus {
				t.Fatalf("Status: got %d, want %d", got.Status(), tt.wantStatus)
			}
			if got.Type() != tt.wantType {
				t.Fatalf("Type: got %q, want %q", got.Type(), tt.wantType)
			}
		})
	}

	if Resolve(nil) != nil {
		t.Fatal("Resolve(nil) must be nil")
	}
}

func TestPipeline_UniqueViolation(t *testing.T) {
	storage := database.Classify(&pgconn.PgError{Code: "23505", Message: "dup key"})

	dom := database.ToDomain(storage)
	if dom.Kind != domainerr.KindSave || dom.Detail != "Duplicate:dup key" {
		t.Fatalf("domain translation: got %+v", dom)
	}

	w := httptest.NewRecorder()
	WriteError(w, storage)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
	want := `{"error":{"type":"Duplicate data","message":"dup key"}}`
	if got := strings.TrimSpace(w.Body.String()); got != want {
		t.Fatalf("body: got %s, want %s", got, want)
	}
}

func TestPipeline_RowNotFound(t *testing.T) {
	storage := database.Classify(fmt.Errorf("scan: %w", sql.ErrNoRows))

	t.Run("through the domain level", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, fmt.Errorf("save cart: %w", database.ToDomain(storage)))
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
		if env := decodeEnvelope(t, w); env.Error.Type != "Save error" {
			t.Fatalf("type: got %q", env.Error.Type)
		}
	})

	t.Run("raw storage error", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, storage)
		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
		if env := decodeEnvelope(t, w); env.Error.Type != "Not found" {
			t.Fatalf("type: got %q", env.Error.Type)
		}
	})
}

func TestWriteError_ContentTypeAndFields(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, ValidationFields("Validation error", map[string]string{"quantity": "This field is required"}))

	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("Content-Type: got %q", ct)
	}
	env := decodeEnvelope(t, w)
	if env.Error.Fields["quantity"] != "This field is required" {
		t.Fatalf("fields: got %v", env.Error.Fields)
	}
}

func TestWriteError_NilError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

func TestWriteErrorLogged(t *testing.T) {
	log := logger.New(&config.Config{LogLevel: "error"})
	r := httptest.NewRequest(http.MethodGet, "/api/cart/x", bytes.NewReader(nil))

	w := httptest.NewRecorder()
	WriteErrorLogged(w, r, log, errors.New("kaboom"))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	WriteErrorLogged(w, r, nil, cartdomain.ErrInvalidCartID)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestError_UnwrapReachesCause(t *testing.T) {
	e := FromDatabase(database.NotFound())
	if !errors.Is(e, &database.Error{Kind: database.KindNotFound}) {
		t.Fatal("transport error must unwrap to its storage cause")
	}
	if errors.Unwrap(Validation("x")) != nil {
		t.Fatal("validation error has no cause")
	}
}
