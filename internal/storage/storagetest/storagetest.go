// Package storagetest checks that a storage.Storage backend behaves the
// way the roster expects. Each backend's tests call Run.
package storagetest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/alumnos-api/internal/apperr"
	"github.com/aanand-mishra/alumnos-api/internal/storage"
	"github.com/aanand-mishra/alumnos-api/internal/types"
)

var registered = time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool { return &b }

// Seed is the fixture loaded before every subtest: ids 1-3, next id 4.
func Seed() []types.Student {
	return []types.Student{
		{ID: 1, FirstName: "Juan", LastName: "Pérez", Email: "juan@email.com", Phone: strPtr("123456789"),
			Course: "Matemáticas", Level: "Básico", Active: true, RegisteredAt: registered},
		{ID: 2, FirstName: "María", LastName: "García", Email: "maria@email.com", Phone: strPtr("987654321"),
			Course: "Ciencias", Level: "Intermedio", Active: true, RegisteredAt: registered},
		{ID: 3, FirstName: "Carlos", LastName: "López", Email: "carlos@email.com",
			Course: "Historia", Level: "Avanzado", Active: false, RegisteredAt: registered},
	}
}

func newStudent(email string) types.Student {
	return types.Student{
		FirstName: "Ana", LastName: "Ruiz", Email: email,
		Course: "Física", Level: "Básico", Active: true, RegisteredAt: registered,
	}
}

func ids(students []types.Student) []int64 {
	out := make([]int64, 0, len(students))
	for _, s := range students {
		out = append(out, s.ID)
	}
	return out
}

// Run exercises newStore's backend. newStore must return an empty store.
func Run(t *testing.T, newStore func(t *testing.T) storage.Storage) {
	seeded := func(t *testing.T) storage.Storage {
		t.Helper()
		s := newStore(t)
		require.NoError(t, s.Replace(Seed(), 4))
		return s
	}

	t.Run("List preserves insertion order", func(t *testing.T) {
		s := seeded(t)
		all, err := s.List(types.Filter{})
		require.NoError(t, err)
		assert.Equal(t, []int64{1, 2, 3}, ids(all))
	})

	t.Run("List filters with AND and folds case", func(t *testing.T) {
		s := seeded(t)
		got, err := s.List(types.Filter{Active: boolPtr(true), Course: "MATEMÁTICAS"})
		require.NoError(t, err)
		assert.Equal(t, []int64{1}, ids(got))

		got, err = s.List(types.Filter{Active: boolPtr(false), Course: "Matemáticas"})
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("GetByID", func(t *testing.T) {
		s := seeded(t)
		got, err := s.GetByID(2)
		require.NoError(t, err)
		assert.Equal(t, "maria@email.com", got.Email)
		require.NotNil(t, got.Phone)
		assert.Equal(t, "987654321", *got.Phone)
		assert.True(t, got.RegisteredAt.Equal(registered))

		_, err = s.GetByID(99)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("Create assigns increasing ids", func(t *testing.T) {
		s := seeded(t)
		a, err := s.Create(newStudent("a@email.com"))
		require.NoError(t, err)
		b, err := s.Create(newStudent("b@email.com"))
		require.NoError(t, err)

		assert.Equal(t, int64(4), a.ID)
		assert.Equal(t, int64(5), b.ID)

		all, err := s.List(types.Filter{})
		require.NoError(t, err)
		assert.Equal(t, []int64{1, 2, 3, 4, 5}, ids(all))
	})

	t.Run("Create rejects duplicate email and changes nothing", func(t *testing.T) {
		s := seeded(t)
		_, err := s.Create(newStudent("juan@email.com"))
		assert.ErrorIs(t, err, apperr.ErrConflict)

		n, err := s.Count()
		require.NoError(t, err)
		assert.Equal(t, 3, n)

		// The failed create must not burn an id.
		created, err := s.Create(newStudent("new@email.com"))
		require.NoError(t, err)
		assert.Equal(t, int64(4), created.ID)
	})

	t.Run("email uniqueness is case-sensitive", func(t *testing.T) {
		s := seeded(t)
		_, err := s.Create(newStudent("JUAN@email.com"))
		assert.NoError(t, err)
	})

	t.Run("ids are never reused", func(t *testing.T) {
		s := seeded(t)
		created, err := s.Create(newStudent("a@email.com"))
		require.NoError(t, err)
		require.NoError(t, s.Delete(created.ID))

		next, err := s.Create(newStudent("b@email.com"))
		require.NoError(t, err)
		assert.Equal(t, int64(5), next.ID)
	})

	t.Run("Update applies supplied fields only", func(t *testing.T) {
		s := seeded(t)
		got, err := s.Update(1, types.StudentPatch{Course: strPtr("Ciencias"), Email: strPtr("maria@email.com")})
		require.NoError(t, err)

		assert.Equal(t, int64(1), got.ID)
		assert.Equal(t, "Juan", got.FirstName)
		assert.Equal(t, "Ciencias", got.Course)
		// Updates may introduce a duplicate email.
		assert.Equal(t, "maria@email.com", got.Email)
		assert.True(t, got.RegisteredAt.Equal(registered))

		stored, err := s.GetByID(1)
		require.NoError(t, err)
		assert.Equal(t, "Ciencias", stored.Course)

		_, err = s.Update(42, types.StudentPatch{})
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("Update with explicit null phone clears it", func(t *testing.T) {
		s := seeded(t)
		got, err := s.Update(1, types.StudentPatch{Phone: types.SetString(nil)})
		require.NoError(t, err)
		assert.Nil(t, got.Phone)

		stored, err := s.GetByID(1)
		require.NoError(t, err)
		assert.Nil(t, stored.Phone)

		got, err = s.Update(1, types.StudentPatch{Phone: types.SetString(strPtr("600111222"))})
		require.NoError(t, err)
		require.NotNil(t, got.Phone)
		assert.Equal(t, "600111222", *got.Phone)
	})

	t.Run("Delete is not idempotent", func(t *testing.T) {
		s := seeded(t)
		require.NoError(t, s.Delete(2))
		assert.ErrorIs(t, s.Delete(2), apperr.ErrNotFound)

		all, err := s.List(types.Filter{})
		require.NoError(t, err)
		assert.Equal(t, []int64{1, 3}, ids(all))
	})

	t.Run("SetActive", func(t *testing.T) {
		s := seeded(t)
		require.NoError(t, s.SetActive(3, true))
		got, err := s.GetByID(3)
		require.NoError(t, err)
		assert.True(t, got.Active)

		assert.ErrorIs(t, s.SetActive(99, true), apperr.ErrNotFound)
	})

	t.Run("Replace discards everything", func(t *testing.T) {
		s := seeded(t)
		_, err := s.Create(newStudent("a@email.com"))
		require.NoError(t, err)
		require.NoError(t, s.Delete(1))

		require.NoError(t, s.Replace(Seed(), 4))

		all, err := s.List(types.Filter{})
		require.NoError(t, err)
		assert.Equal(t, []int64{1, 2, 3}, ids(all))

		created, err := s.Create(newStudent("b@email.com"))
		require.NoError(t, err)
		assert.Equal(t, int64(4), created.ID)
	})
}
