package sqlstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// openTestStore opens a sqlite store in a temp dir without bootstrapping it.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	s := New(Options{
		Dialect: SQLite,
		DSN:     filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, s.Open())
	t.Cleanup(func() { s.Close() })
	return s
}

// bootstrappedStore returns a store with tbl_test created.
func bootstrappedStore(t *testing.T) *Store {
	t.Helper()
	s := openTestStore(t)
	require.NoError(t, s.Bootstrap(context.Background()))
	return s
}

// insertDirect writes rows bypassing InsertRecord, as an external seeder would.
func insertDirect(t *testing.T, s *Store, data ...string) {
	t.Helper()
	for _, d := range data {
		_, err := s.db.Exec(`INSERT INTO tbl_test (data) VALUES (?)`, d)
		require.NoError(t, err)
	}
}
