//go:build cgo

package store

import (
	"context"
	"testing"

	"github.com/adforge/adforge/internal/config"
	"github.com/stretchr/testify/require"
)

func TestOpenMemoryStore(t *testing.T) {
	ctx := context.Background()
	cfg := config.StoreConfig{
		Driver: "libsql",
		Path:   ":memory:",
	}

	store, err := Open(ctx, cfg)
	require.NoError(t, err)
	require.NotNil(t, store)
	require.Equal(t, "libsql", store.Driver())
	require.NoError(t, store.Close())
}

func TestOpenLocalStore_ConfiguresSQLite(t *testing.T) {
	ctx := context.Background()

	cfg := config.StoreConfig{
		Driver: "libsql",
		Path:   "file:" + t.TempDir() + "/adforge.db",
	}

	store, err := Open(ctx, cfg)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	require.Equal(t, 1, store.DB.Stats().MaxOpenConnections)

	var journalMode string
	require.NoError(t, store.DB.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&journalMode))
	require.Contains(t, journalMode, "wal")

	var busyTimeout int
	require.NoError(t, store.DB.QueryRowContext(ctx, "PRAGMA busy_timeout").Scan(&busyTimeout))
	require.GreaterOrEqual(t, busyTimeout, 1000)
}
