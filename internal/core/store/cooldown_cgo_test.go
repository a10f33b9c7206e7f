//go:build cgo

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/adforge/adforge/internal/config"
	"github.com/adforge/adforge/internal/core"
)

func openMigratedStore(t *testing.T) *Store {
	t.Helper()

	ctx := context.Background()
	cfg := config.StoreConfig{
		Driver: "libsql",
		Path:   ":memory:",
	}

	store, err := Open(ctx, cfg)
	require.NoError(t, err)
	require.NoError(t, store.Migrate(ctx))
	t.Cleanup(func() { _ = store.Close() })

	return store
}

func TestCooldownRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openMigratedStore(t)

	missing, err := store.GetCooldown(ctx, "trends")
	require.NoError(t, err)
	require.Nil(t, missing)

	now := time.Now().UTC().Truncate(time.Second)
	expires := now.Add(60 * time.Second)
	require.NoError(t, store.PutCooldown(ctx, "trends", core.CooldownState{
		ExpiresAt:     &expires,
		LastRequestAt: now,
	}))

	state, err := store.GetCooldown(ctx, "trends")
	require.NoError(t, err)
	require.NotNil(t, state)
	require.NotNil(t, state.ExpiresAt)
	require.Equal(t, expires, *state.ExpiresAt)
	require.Equal(t, now, state.LastRequestAt)

	// Wholesale overwrite clears the expiry while keeping the last request.
	require.NoError(t, store.PutCooldown(ctx, "trends", core.CooldownState{LastRequestAt: now}))

	state, err = store.GetCooldown(ctx, "trends")
	require.NoError(t, err)
	require.NotNil(t, state)
	require.Nil(t, state.ExpiresAt)

	require.NoError(t, store.ClearCooldown(ctx, "trends"))
	state, err = store.GetCooldown(ctx, "trends")
	require.NoError(t, err)
	require.Nil(t, state)
}

func TestCooldownAdmin(t *testing.T) {
	ctx := context.Background()
	store := openMigratedStore(t)

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, store.PutCooldown(ctx, "trends", core.CooldownState{LastRequestAt: now}))
	require.NoError(t, store.PutCooldown(ctx, "translate", core.CooldownState{LastRequestAt: now}))

	entries, err := store.ListCooldowns(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "translate", entries[0].Key)
	require.Equal(t, "trends", entries[1].Key)

	affected, err := store.ResetCooldowns(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, affected)

	entries, err = store.ListCooldowns(ctx)
	require.NoError(t, err)
	require.Empty(t, entries)
}
