// Package memory provides the default, slice-backed implementation of
// storage.Storage.
//
// Records live in a slice so listing preserves insertion order. Lookups
// are linear scans; a demo roster never holds enough records for that to
// matter.
package memory

import (
	"fmt"

	"github.com/aanand-mishra/alumnos-api/internal/apperr"
	"github.com/aanand-mishra/alumnos-api/internal/types"
)

// Memory is the in-memory storage.Storage. Not safe for concurrent use.
type Memory struct {
	students []types.Student
	nextID   int64
}

// New returns an empty store whose first id will be 1.
func New() *Memory {
	return &Memory{
		students: make([]types.Student, 0),
		nextID:   1,
	}
}

// indexOf returns the slice position of id, or -1.
func (m *Memory) indexOf(id int64) int {
	for i := range m.students {
		if m.students[i].ID == id {
			return i
		}
	}
	return -1
}

func (m *Memory) List(filter types.Filter) ([]types.Student, error) {
	out := make([]types.Student, 0, len(m.students))
	for _, s := range m.students {
		if filter.Match(s) {
			out = append(out, clone(s))
		}
	}
	return out, nil
}

func (m *Memory) GetByID(id int64) (types.Student, error) {
	i := m.indexOf(id)
	if i < 0 {
		return types.Student{}, fmt.Errorf("student %d: %w", id, apperr.ErrNotFound)
	}
	return clone(m.students[i]), nil
}

func (m *Memory) Create(student types.Student) (types.Student, error) {
	for _, s := range m.students {
		if s.Email == student.Email {
			return types.Student{}, fmt.Errorf("email %q: %w", student.Email, apperr.ErrConflict)
		}
	}

	student.ID = m.nextID
	m.students = append(m.students, clone(student))
	m.nextID++

	return clone(student), nil
}

func (m *Memory) Update(id int64, patch types.StudentPatch) (types.Student, error) {
	i := m.indexOf(id)
	if i < 0 {
		return types.Student{}, fmt.Errorf("student %d: %w", id, apperr.ErrNotFound)
	}

	patch.Apply(&m.students[i])
	return clone(m.students[i]), nil
}

func (m *Memory) Delete(id int64) error {
	i := m.indexOf(id)
	if i < 0 {
		return fmt.Errorf("student %d: %w", id, apperr.ErrNotFound)
	}

	m.students = append(m.students[:i], m.students[i+1:]...)
	return nil
}

func (m *Memory) SetActive(id int64, active bool) error {
	i := m.indexOf(id)
	if i < 0 {
		return fmt.Errorf("student %d: %w", id, apperr.ErrNotFound)
	}

	m.students[i].Active = active
	return nil
}

func (m *Memory) Count() (int, error) {
	return len(m.students), nil
}

func (m *Memory) Replace(seed []types.Student, nextID int64) error {
	students := make([]types.Student, 0, len(seed))
	for _, s := range seed {
		students = append(students, clone(s))
	}

	m.students = students
	m.nextID = nextID
	return nil
}

func (m *Memory) Close() error { return nil }

// clone copies s so callers never share the Phone pointer with the store.
func clone(s types.Student) types.Student {
	if s.Phone != nil {
		phone := *s.Phone
		s.Phone = &phone
	}
	return s
}
