package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/adforge/adforge/internal/core"
)

// GetCooldown returns the persisted cooldown mirror for a key, or nil when no
// record exists.
func (s *Store) GetCooldown(ctx context.Context, key string) (*core.CooldownState, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return nil, errors.New("cooldown key is required")
	}

	var (
		expiresAt     sql.NullInt64
		lastRequestAt int64
	)

	row := s.DB.QueryRowContext(ctx, `
		SELECT expires_at, last_request_at
		FROM cooldowns
		WHERE key = ?
	`, key)

	if err := row.Scan(&expiresAt, &lastRequestAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch cooldown: %w", err)
	}

	state := &core.CooldownState{
		LastRequestAt: time.Unix(lastRequestAt, 0).UTC(),
	}
	if expiresAt.Valid {
		value := time.Unix(expiresAt.Int64, 0).UTC()
		state.ExpiresAt = &value
	}

	return state, nil
}

// PutCooldown overwrites the cooldown mirror for a key wholesale.
func (s *Store) PutCooldown(ctx context.Context, key string, state core.CooldownState) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("cooldown key is required")
	}

	var expiresAt sql.NullInt64
	if state.ExpiresAt != nil {
		expiresAt = sql.NullInt64{Int64: state.ExpiresAt.UTC().Unix(), Valid: true}
	}

	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO cooldowns (key, expires_at, last_request_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			expires_at = excluded.expires_at,
			last_request_at = excluded.last_request_at
	`, key, expiresAt, state.LastRequestAt.UTC().Unix())
	if err != nil {
		return fmt.Errorf("store cooldown: %w", err)
	}

	return nil
}

// ClearCooldown removes the persisted mirror for a key.
func (s *Store) ClearCooldown(ctx context.Context, key string) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("cooldown key is required")
	}

	if _, err := s.DB.ExecContext(ctx, `DELETE FROM cooldowns WHERE key = ?`, key); err != nil {
		return fmt.Errorf("clear cooldown: %w", err)
	}

	return nil
}

// CooldownEntry pairs a cooldown key with its persisted state for admin views.
type CooldownEntry struct {
	Key   string
	State core.CooldownState
}

// ListCooldowns returns all persisted cooldown mirrors ordered by key.
func (s *Store) ListCooldowns(ctx context.Context) ([]CooldownEntry, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT key, expires_at, last_request_at
		FROM cooldowns
		ORDER BY key
	`)
	if err != nil {
		return nil, fmt.Errorf("list cooldowns: %w", err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup

	entries := []CooldownEntry{}
	for rows.Next() {
		var (
			key           string
			expiresAt     sql.NullInt64
			lastRequestAt int64
		)
		if err := rows.Scan(&key, &expiresAt, &lastRequestAt); err != nil {
			return nil, fmt.Errorf("scan cooldowns: %w", err)
		}

		state := core.CooldownState{
			LastRequestAt: time.Unix(lastRequestAt, 0).UTC(),
		}
		if expiresAt.Valid {
			value := time.Unix(expiresAt.Int64, 0).UTC()
			state.ExpiresAt = &value
		}

		entries = append(entries, CooldownEntry{Key: key, State: state})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list cooldowns: %w", err)
	}

	return entries, nil
}

// ResetCooldowns deletes every persisted cooldown mirror and reports how many
// rows were removed.
func (s *Store) ResetCooldowns(ctx context.Context) (int64, error) {
	if s == nil || s.DB == nil {
		return 0, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	result, err := s.DB.ExecContext(ctx, `DELETE FROM cooldowns`)
	if err != nil {
		return 0, fmt.Errorf("reset cooldowns: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reset cooldowns: %w", err)
	}
	return affected, nil
}
