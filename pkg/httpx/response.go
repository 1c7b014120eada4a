package httpx

import (
	"bytes"
	"encoding/json"
	"net/http"
)

// JSON encodes v and writes it with status. The body is encoded before any
// header is sent, so a value that cannot be encoded yields a plain 500
// instead of a truncated response.
func JSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h := w.Header()
	h.Set("Content-Type", "application/json; charset=utf-8")
	h.Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

type errorEnvelope struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// JSONError writes the error envelope for failures raised by the router
// itself (unknown route, rate limit, oversized body). Handlers go through
// errhttp instead.
func JSONError(w http.ResponseWriter, status int, typ, message string) {
	var env errorEnvelope
	env.Error.Type = typ
	env.Error.Message = message
	JSON(w, status, env)
}
