// Package response provides helpers for writing consistent JSON HTTP responses.
//
// Every handler in this application sends JSON back to the client.
// Rather than repeating the same three lines (set header, set status,
// encode JSON) in every handler, we centralise them here. This is also
// the single place where error kinds become HTTP status codes.
package response

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/alumnos-api/internal/apperr"
)

// ─────────────────────────────────────────────────────────────────────────────
// Response is the standard envelope returned for error cases:
//
//	{ "status": "error", "error": "Alumno no encontrado" }
//
// ─────────────────────────────────────────────────────────────────────────────
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

// Message is the body of confirmations such as a successful delete.
type Message struct {
	Message string `json:"message"`
}

// StatusError is the envelope status of every error body.
const StatusError = "error"

// Client-facing messages per error kind.
const (
	MsgNotFound     = "Alumno no encontrado"
	MsgConflict     = "El email ya está registrado"
	MsgUnauthorized = "API key inválida o ausente"
	MsgInternal     = "Error interno del servidor"
)

// WriteJSON writes a JSON-encoded response with the given HTTP status code.
//
// IMPORTANT ORDER: Header() → WriteHeader() → body writes.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// GeneralError wraps any Go error into our standard Response shape.
// Only use it for errors whose text is safe to show (decode errors, bad
// ids); anything coming from the store goes through Error instead.
func GeneralError(err error) Response {
	return Response{
		Status: StatusError,
		Error:  err.Error(),
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Error maps err to a status code by its apperr kind and writes it:
//
//	NotFound     → 404
//	Conflict     → 400  (duplicate email; existing clients expect 400)
//	Unauthorized → 401
//	anything else→ 500, with a generic message; the real error is logged
//
// ─────────────────────────────────────────────────────────────────────────────
func Error(w http.ResponseWriter, err error) {
	status, msg := http.StatusInternalServerError, MsgInternal

	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		status, msg = http.StatusNotFound, MsgNotFound
	case apperr.KindConflict:
		status, msg = http.StatusBadRequest, MsgConflict
	case apperr.KindUnauthorized:
		status, msg = http.StatusUnauthorized, MsgUnauthorized
		w.Header().Set("WWW-Authenticate", `Bearer realm="alumnos"`)
	default:
		slog.Error("internal error",
			slog.String("kind", apperr.KindOf(err).String()),
			slog.String("error", err.Error()),
		)
	}

	WriteJSON(w, status, Response{Status: StatusError, Error: msg})
}

// ─────────────────────────────────────────────────────────────────────────────
// ValidationError converts a slice of validator.FieldError values into
// a single human-readable Response.
//
// Example output:
//
//	{ "status": "error", "error": "field nombre is required, field curso is required" }
//
// ─────────────────────────────────────────────────────────────────────────────
func ValidationError(errs validator.ValidationErrors) Response {
	var errMessages []string

	for _, e := range errs {
		switch e.ActualTag() {
		case "required":
			errMessages = append(errMessages,
				fmt.Sprintf("field %s is required", e.Field()))
		case "min":
			errMessages = append(errMessages,
				fmt.Sprintf("field %s must not be empty", e.Field()))
		default:
			errMessages = append(errMessages,
				fmt.Sprintf("field %s is invalid", e.Field()))
		}
	}

	return Response{
		Status: StatusError,
		Error:  strings.Join(errMessages, ", "),
	}
}
