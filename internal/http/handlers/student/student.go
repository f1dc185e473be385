// Package student contains all HTTP handlers for the /alumnos resource.
//
// HANDLER PATTERN USED HERE: THE CLOSURE / FACTORY PATTERN
// ────────────────────────────────────────────────────────
// A router expects handler functions with the signature:
//
//	func(http.ResponseWriter, *http.Request)
//
// To inject the roster we use factory functions that accept it once at
// startup and return the actual handler:
//
//	r.Get("/alumnos/{id}", student.GetByID(roster))
//
// Handlers only translate HTTP into roster calls and back. They never
// decide what an error means: response.Error does that.
package student

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/alumnos-api/internal/types"
	"github.com/aanand-mishra/alumnos-api/internal/utils/response"
)

// Roster is the subset of roster.Service these handlers need.
type Roster interface {
	List(filter types.Filter) ([]types.Student, error)
	Get(id int64) (types.Student, error)
	Create(input types.StudentInput) (types.Student, error)
	Update(id int64, patch types.StudentPatch) (types.Student, error)
	Delete(id int64) error
	Activate(id int64) error
	Deactivate(id int64) error
}

// Confirmation messages returned by the state-changing endpoints.
const (
	MsgDeleted     = "Alumno eliminado exitosamente"
	MsgActivated   = "Alumno activado exitosamente"
	MsgDeactivated = "Alumno desactivado exitosamente"
)

// validate is shared: a *validator.Validate caches struct metadata and is
// safe for concurrent use. Field names in messages come from json tags,
// so clients read "field nombre is required" rather than "FirstName".
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// parseID reads the {id} path segment. Only non-integers are rejected
// here; an integer that names no record (0 and negatives included) is left
// to the roster, which answers not found.
func parseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, errors.New("invalid id: must be an integer")
	}
	return id, nil
}

// parseBool reads a boolean query value. It accepts the spellings the
// existing clients send besides true/false: 1/0, yes/no, on/off, y/n, t/f,
// in any case.
func parseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "t", "1", "yes", "y", "on":
		return true, nil
	case "false", "f", "0", "no", "n", "off":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", raw)
}

// decodeBody decodes r's JSON body into dst and validates it, writing a
// 400 and returning false on any problem.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		response.WriteJSON(w, http.StatusBadRequest,
			response.GeneralError(errors.New("request body is empty")))
		return false
	}
	if err != nil {
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
		return false
	}

	if err := validate.Struct(dst); err != nil {
		var validateErrs validator.ValidationErrors
		if errors.As(err, &validateErrs) {
			response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(validateErrs))
			return false
		}
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
		return false
	}

	return true
}

// ─────────────────────────────────────────────────────────────────────────────
// GetList handles GET /alumnos?activo=&curso=&nivel=
//
// All filters are optional and combine with AND. curso and nivel match
// case-insensitively. Returns [] (not null) when nothing matches.
//
// Error responses:
//
//	400 Bad Request  - activo is not a boolean (true/false, 1/0, yes/no, on/off)
//	500 Internal     - store failure
//
// ─────────────────────────────────────────────────────────────────────────────
func GetList(roster Roster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filter := types.Filter{
			Course: q.Get("curso"),
			Level:  q.Get("nivel"),
		}

		if raw := q.Get("activo"); raw != "" {
			active, err := parseBool(raw)
			if err != nil {
				response.WriteJSON(w, http.StatusBadRequest,
					response.GeneralError(errors.New("invalid activo: must be a boolean")))
				return
			}
			filter.Active = &active
		}

		students, err := roster.List(filter)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, students)
	}
}

// GetByID handles GET /alumnos/{id}.
func GetByID(roster Roster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		student, err := roster.Get(id)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, student)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /alumnos
//
// Request body (JSON):
//
//	{ "nombre": "Ana", "apellido": "Ruiz", "email": "ana@email.com",
//	  "telefono": "600111222", "curso": "Física", "nivel": "Básico" }
//
// "activo" defaults to true when omitted.
//
// Success response (201 Created): the stored record, with id and
// fecha_registro filled in.
//
// Error responses:
//
//	400 Bad Request  - empty body, malformed JSON, failed validation,
//	                   or the email is already registered
//	401 Unauthorized - missing or wrong API key (enforced by the router)
//
// ─────────────────────────────────────────────────────────────────────────────
func New(roster Roster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input types.StudentInput
		if !decodeBody(w, r, &input) {
			return
		}

		student, err := roster.Create(input)
		if err != nil {
			response.Error(w, err)
			return
		}

		slog.Info("student created", slog.Int64("id", student.ID))
		response.WriteJSON(w, http.StatusCreated, student)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Update handles PUT /alumnos/{id}
//
// Only the fields present in the body change. "id" and "fecha_registro"
// are not part of StudentPatch, so the decoder drops them.
// ─────────────────────────────────────────────────────────────────────────────
func Update(roster Roster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		var patch types.StudentPatch
		if !decodeBody(w, r, &patch) {
			return
		}

		updated, err := roster.Update(id, patch)
		if err != nil {
			response.Error(w, err)
			return
		}

		slog.Info("student updated", slog.Int64("id", id))
		response.WriteJSON(w, http.StatusOK, updated)
	}
}

// Delete handles DELETE /alumnos/{id}. Not idempotent: deleting the same
// id twice yields 404 the second time.
func Delete(roster Roster) http.HandlerFunc {
	return byID(roster.Delete, MsgDeleted)
}

// Activate handles PATCH /alumnos/{id}/activar.
func Activate(roster Roster) http.HandlerFunc {
	return byID(roster.Activate, MsgActivated)
}

// Deactivate handles PATCH /alumnos/{id}/desactivar.
func Deactivate(roster Roster) http.HandlerFunc {
	return byID(roster.Deactivate, MsgDeactivated)
}

// byID builds a handler that runs op on the path id and confirms with msg.
func byID(op func(int64) error, msg string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		if err := op(id); err != nil {
			response.Error(w, err)
			return
		}

		slog.Info(msg, slog.Int64("id", id))
		response.WriteJSON(w, http.StatusOK, response.Message{Message: msg})
	}
}
