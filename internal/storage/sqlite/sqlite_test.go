package sqlite

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/alumnos-api/internal/config"
	"github.com/aanand-mishra/alumnos-api/internal/storage"
	"github.com/aanand-mishra/alumnos-api/internal/storage/storagetest"
)

func newTestDB(t *testing.T) *SQLite {
	t.Helper()

	cfg := &config.Config{}
	cfg.Storage.Path = fmt.Sprintf("file:%s", filepath.Join(t.TempDir(), "alumnos.db"))

	db, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSQLite(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Storage {
		return newTestDB(t)
	})
}

func TestSQLite_NewIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{}
	cfg.Storage.Path = fmt.Sprintf("file:%s", filepath.Join(dir, "alumnos.db"))

	first, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, first.Replace(storagetest.Seed(), 4))
	require.NoError(t, first.Close())

	second, err := New(cfg)
	require.NoError(t, err)
	defer second.Close()

	n, err := second.Count()
	require.NoError(t, err)
	require.Equal(t, 3, n)
}
