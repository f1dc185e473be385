// Package apperr defines the error kinds the application distinguishes.
//
// Lower layers wrap one of the sentinels below with extra context:
//
//	return fmt.Errorf("get student %d: %w", id, apperr.ErrNotFound)
//
// and the HTTP boundary inspects the kind with errors.Is to pick a status
// code. Core logic never decides status codes itself.
package apperr

import "errors"

var (
	// ErrNotFound means no record has the requested id.
	ErrNotFound = errors.New("not found")

	// ErrConflict means a create would duplicate an existing email.
	ErrConflict = errors.New("conflict")

	// ErrUnauthorized means the credential on a gated operation was
	// missing or wrong.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInternal marks an unexpected fault. Its details are logged but
	// never returned to the client.
	ErrInternal = errors.New("internal error")
)

// Kind is the taxonomy bucket an error falls into.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindConflict
	KindUnauthorized
)

// KindOf classifies err. Anything that does not wrap a known sentinel is
// treated as internal.
func KindOf(err error) Kind {
	switch {
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	default:
		return KindInternal
	}
}

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "internal"
	}
}
