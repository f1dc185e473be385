// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles:
// handlers, storage, and the roster service can all import types without
// depending on each other.
//
// The JSON names follow the wire format the existing frontend consumes
// (nombre, apellido, curso, ...), while the Go names stay in English.
package types

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// Student represents a student record in our system.
//
// Struct tags serve two purposes:
//
//  1. json:"..."  controls how the field appears when encoded to JSON.
//  2. validate:"..." rules checked by the go-playground/validator package.
//
// ID and RegisteredAt are assigned by the store and never come from a
// request body, so they carry no validate tag.
type Student struct {
	ID           int64     `json:"id"`
	FirstName    string    `json:"nombre"`
	LastName     string    `json:"apellido"`
	Email        string    `json:"email"`
	Phone        *string   `json:"telefono"`
	Course       string    `json:"curso"`
	Level        string    `json:"nivel"`
	Active       bool      `json:"activo"`
	RegisteredAt time.Time `json:"fecha_registro"`
}

// StudentInput is the body accepted by POST /alumnos.
//
// Active is a pointer so an omitted "activo" can default to true
// instead of silently becoming false.
type StudentInput struct {
	FirstName string  `json:"nombre"   validate:"required"`
	LastName  string  `json:"apellido" validate:"required"`
	Email     string  `json:"email"    validate:"required"`
	Phone     *string `json:"telefono"`
	Course    string  `json:"curso"    validate:"required"`
	Level     string  `json:"nivel"    validate:"required"`
	Active    *bool   `json:"activo"`
}

// ToStudent builds the record the store will insert. ID and RegisteredAt
// are left zero for the store to fill in.
func (in StudentInput) ToStudent() Student {
	active := true
	if in.Active != nil {
		active = *in.Active
	}

	return Student{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Phone:     in.Phone,
		Course:    in.Course,
		Level:     in.Level,
		Active:    active,
	}
}

// StudentPatch is the body accepted by PUT /alumnos/{id}.
//
// Every field is a pointer: nil means "not supplied, leave unchanged".
// Phone is nullable on the record, so it needs a third state: an explicit
// "telefono": null clears it.
// There is deliberately no ID or RegisteredAt field, so a client that
// sends "id" or "fecha_registro" has them ignored by the decoder.
type StudentPatch struct {
	FirstName *string        `json:"nombre"   validate:"omitempty,min=1"`
	LastName  *string        `json:"apellido" validate:"omitempty,min=1"`
	Email     *string        `json:"email"`
	Phone     OptionalString `json:"telefono"`
	Course    *string        `json:"curso"`
	Level     *string        `json:"nivel"`
	Active    *bool          `json:"activo"`
}

// Apply copies the supplied fields onto s.
func (p StudentPatch) Apply(s *Student) {
	if p.FirstName != nil {
		s.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		s.LastName = *p.LastName
	}
	if p.Email != nil {
		s.Email = *p.Email
	}
	if p.Phone.Set {
		if p.Phone.Value == nil {
			s.Phone = nil
		} else {
			phone := *p.Phone.Value
			s.Phone = &phone
		}
	}
	if p.Course != nil {
		s.Course = *p.Course
	}
	if p.Level != nil {
		s.Level = *p.Level
	}
	if p.Active != nil {
		s.Active = *p.Active
	}
}

// OptionalString is a patch field that tells "absent" apart from "null".
// Set is true whenever the key appeared in the body; Value is nil when it
// appeared as null.
type OptionalString struct {
	Set   bool
	Value *string
}

// SetString returns a supplied OptionalString; a nil v means null.
func SetString(v *string) OptionalString {
	return OptionalString{Set: true, Value: v}
}

// UnmarshalJSON is only called when the key is present, null included.
func (o *OptionalString) UnmarshalJSON(b []byte) error {
	o.Set = true
	o.Value = nil
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		return nil
	}

	var v string
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// Filter narrows a listing. Zero-valued fields impose no constraint.
type Filter struct {
	Active *bool
	Course string
	Level  string
}

// Match reports whether s satisfies every constraint in f.
// Course and Level compare case-insensitively (Unicode-aware).
func (f Filter) Match(s Student) bool {
	if f.Active != nil && s.Active != *f.Active {
		return false
	}
	if f.Course != "" && !strings.EqualFold(s.Course, f.Course) {
		return false
	}
	if f.Level != "" && !strings.EqualFold(s.Level, f.Level) {
		return false
	}
	return true
}

// CourseCount is one entry of Statistics.ByCourse.
type CourseCount struct {
	Course string `json:"curso"`
	Count  int    `json:"cantidad"`
}

// LevelCount is one entry of Statistics.ByLevel.
type LevelCount struct {
	Level string `json:"nivel"`
	Count int    `json:"cantidad"`
}

// Statistics is the summary returned by GET /estadisticas.
type Statistics struct {
	Total    int           `json:"total_alumnos"`
	Active   int           `json:"alumnos_activos"`
	Inactive int           `json:"alumnos_inactivos"`
	ByCourse []CourseCount `json:"por_curso"`
	ByLevel  []LevelCount  `json:"por_nivel"`
}
