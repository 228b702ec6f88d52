package sqlite_test

import (
	"path/filepath"
	"testing"

	"github.com/202201638/security-project/internal/auth/store"
	"github.com/202201638/security-project/internal/auth/store/drivers/sqlite"
	"github.com/202201638/security-project/internal/auth/store/storetest"
	"github.com/stretchr/testify/require"
)

func newMemoryStore(t *testing.T) store.Store {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	return s
}

func TestStore_Memory(t *testing.T) {
	storetest.Run(t, newMemoryStore)
}

func TestStore_File(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		s, err := sqlite.NewStore(sqlite.FileDSN(filepath.Join(t.TempDir(), "auth.db")))
		require.NoError(t, err)
		require.NoError(t, s.ApplyMigrations())
		return s
	})
}

func TestApplyMigrations_Idempotent(t *testing.T) {
	s := newMemoryStore(t)
	defer s.Close()

	require.NoError(t, s.ApplyMigrations())
}
