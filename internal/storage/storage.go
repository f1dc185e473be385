// Package storage defines the Storage interface: a contract that any
// backend holding student records must satisfy.
//
// Handlers never talk to a backend directly. They go through the roster
// service, which serialises access and applies the demo reset policy.
// That means implementations do NOT need to be goroutine-safe; the
// roster holds a single lock around every call.
//
// Two backends exist:
//
//   - memory: an ordered slice, the default.
//   - sqlite: the same semantics on top of database/sql, useful when you
//     want to poke at the data with the sqlite3 CLI during a demo.
package storage

import "github.com/aanand-mishra/alumnos-api/internal/types"

// Storage is the record store contract.
//
// Errors returned by implementations wrap apperr.ErrNotFound or
// apperr.ErrConflict where those apply; anything else is an unexpected
// backend fault.
type Storage interface {
	// List returns every record matching filter, in insertion order.
	// Returns an empty slice (not nil) when nothing matches.
	List(filter types.Filter) ([]types.Student, error)

	// GetByID fetches a single record.
	GetByID(id int64) (types.Student, error)

	// Create assigns the next id, appends the record and returns it.
	// RegisteredAt is stored as given; the caller stamps it. Fails with
	// ErrConflict if the email is already present.
	Create(student types.Student) (types.Student, error)

	// Update applies patch to an existing record and returns the result.
	// ID and RegisteredAt are never changed.
	Update(id int64, patch types.StudentPatch) (types.Student, error)

	// Delete removes a record. A second call for the same id fails with
	// ErrNotFound.
	Delete(id int64) error

	// SetActive flips the active flag of one record.
	SetActive(id int64, active bool) error

	// Count returns the number of records currently held.
	Count() (int, error)

	// Replace discards all records and loads seed in order, resetting the
	// id counter to nextID.
	Replace(seed []types.Student, nextID int64) error

	// Close releases any resources held by the backend.
	Close() error
}
