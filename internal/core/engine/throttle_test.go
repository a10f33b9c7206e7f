package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/adforge/adforge/internal/core"
)

type memoryCooldownStore struct {
	state map[string]*core.CooldownState

	getErr error
	putErr error
}

func (m *memoryCooldownStore) GetCooldown(ctx context.Context, key string) (*core.CooldownState, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.state == nil {
		return nil, nil
	}
	if val, ok := m.state[key]; ok {
		copied := *val
		return &copied, nil
	}
	return nil, nil
}

func (m *memoryCooldownStore) PutCooldown(ctx context.Context, key string, state core.CooldownState) error {
	if m.putErr != nil {
		return m.putErr
	}
	if m.state == nil {
		m.state = make(map[string]*core.CooldownState)
	}
	m.state[key] = &state
	return nil
}

func (m *memoryCooldownStore) ClearCooldown(ctx context.Context, key string) error {
	delete(m.state, key)
	return nil
}

func newTestThrottle(store CooldownStore, clock *time.Time) *Throttle {
	return &Throttle{
		Store: store,
		Key:   "trends",
		Clock: func() time.Time { return *clock },
		// Keep the real ticker out of clock-driven tests.
		TickInterval: time.Hour,
	}
}

func TestThrottleDeniesDuringWindow(t *testing.T) {
	store := &memoryCooldownStore{}
	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	throttle := newTestThrottle(store, &clock)
	defer throttle.Stop()

	require.True(t, throttle.TryAcquire().Granted)

	throttle.BeginCooldown(context.Background(), 60*time.Second)

	decision := throttle.TryAcquire()
	require.False(t, decision.Granted)
	require.Equal(t, 60*time.Second, decision.Remaining)

	// Remaining is recomputed from the absolute deadline, so it never
	// increases as the clock moves.
	clock = clock.Add(10 * time.Second)
	decision = throttle.TryAcquire()
	require.False(t, decision.Granted)
	require.Equal(t, 50*time.Second, decision.Remaining)

	clock = clock.Add(50 * time.Second)
	require.True(t, throttle.TryAcquire().Granted)
}

func TestThrottleTryAcquireIsPure(t *testing.T) {
	store := &memoryCooldownStore{}
	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	throttle := newTestThrottle(store, &clock)
	defer throttle.Stop()

	throttle.BeginCooldown(context.Background(), 60*time.Second)
	clock = clock.Add(20 * time.Second)

	first := throttle.TryAcquire()
	second := throttle.TryAcquire()
	require.Equal(t, first, second)
	require.Equal(t, 40*time.Second, first.Remaining)
}

func TestThrottleTryBeginClosesCheckThenActGap(t *testing.T) {
	store := &memoryCooldownStore{}
	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	throttle := newTestThrottle(store, &clock)
	defer throttle.Stop()

	first := throttle.TryBegin(context.Background(), 60*time.Second)
	require.True(t, first.Granted)

	// The grant itself opened the window, so a second caller arriving
	// before any BeginCooldown is refused.
	second := throttle.TryBegin(context.Background(), 60*time.Second)
	require.False(t, second.Granted)
	require.Equal(t, 60*time.Second, second.Remaining)

	persisted := store.state["trends"]
	require.NotNil(t, persisted)
	require.NotNil(t, persisted.ExpiresAt)
	require.Equal(t, clock.Add(60*time.Second), *persisted.ExpiresAt)

	clock = clock.Add(60 * time.Second)
	require.True(t, throttle.TryBegin(context.Background(), 60*time.Second).Granted)
}

func TestThrottlePersistsMirror(t *testing.T) {
	store := &memoryCooldownStore{}
	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	throttle := newTestThrottle(store, &clock)
	defer throttle.Stop()

	throttle.BeginCooldown(context.Background(), 60*time.Second)

	persisted := store.state["trends"]
	require.NotNil(t, persisted)
	require.NotNil(t, persisted.ExpiresAt)
	require.Equal(t, clock.Add(60*time.Second), *persisted.ExpiresAt)
	require.Equal(t, clock, persisted.LastRequestAt)
}

func TestThrottleRestoreResumesWindow(t *testing.T) {
	store := &memoryCooldownStore{}
	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	first := newTestThrottle(store, &clock)
	first.BeginCooldown(context.Background(), 60*time.Second)
	first.Stop()

	// Process dies at t=10 and comes back at t=15.
	clock = clock.Add(15 * time.Second)
	second := newTestThrottle(store, &clock)
	defer second.Stop()
	second.RestoreOnInit(context.Background())

	decision := second.TryAcquire()
	require.False(t, decision.Granted)
	require.Equal(t, 45*time.Second, decision.Remaining)
}

func TestThrottleRestoreFromLastRequestOnly(t *testing.T) {
	clock := time.Date(2025, 1, 1, 0, 0, 30, 0, time.UTC)
	store := &memoryCooldownStore{
		state: map[string]*core.CooldownState{
			"trends": {LastRequestAt: clock.Add(-20 * time.Second)},
		},
	}

	throttle := newTestThrottle(store, &clock)
	defer throttle.Stop()
	throttle.RestoreOnInit(context.Background())

	decision := throttle.TryAcquire()
	require.False(t, decision.Granted)
	require.Equal(t, 40*time.Second, decision.Remaining)
}

func TestThrottleRestoreStaleRecordStartsIdle(t *testing.T) {
	clock := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	expired := clock.Add(-5 * time.Minute)
	store := &memoryCooldownStore{
		state: map[string]*core.CooldownState{
			"trends": {ExpiresAt: &expired, LastRequestAt: expired.Add(-time.Minute)},
		},
	}

	throttle := newTestThrottle(store, &clock)
	defer throttle.Stop()
	throttle.RestoreOnInit(context.Background())

	require.True(t, throttle.TryAcquire().Granted)
	require.Empty(t, store.state)
}

func TestThrottleRestoreCorruptedStateStartsIdle(t *testing.T) {
	clock := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	store := &memoryCooldownStore{getErr: errors.New("malformed record")}

	throttle := newTestThrottle(store, &clock)
	defer throttle.Stop()
	throttle.RestoreOnInit(context.Background())

	require.True(t, throttle.TryAcquire().Granted)
}

func TestThrottlePersistFailureStillCoolsDown(t *testing.T) {
	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	store := &memoryCooldownStore{putErr: errors.New("disk full")}

	throttle := newTestThrottle(store, &clock)
	defer throttle.Stop()

	throttle.BeginCooldown(context.Background(), 60*time.Second)

	decision := throttle.TryAcquire()
	require.False(t, decision.Granted)
	require.Equal(t, 60*time.Second, decision.Remaining)
}

func TestThrottleBeginReplacesWindow(t *testing.T) {
	store := &memoryCooldownStore{}
	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	throttle := newTestThrottle(store, &clock)
	defer throttle.Stop()

	throttle.BeginCooldown(context.Background(), 60*time.Second)
	clock = clock.Add(30 * time.Second)
	throttle.BeginCooldown(context.Background(), 60*time.Second)

	decision := throttle.TryAcquire()
	require.False(t, decision.Granted)
	require.Equal(t, 60*time.Second, decision.Remaining)
}

func TestThrottleDefaultIntervalApplied(t *testing.T) {
	store := &memoryCooldownStore{}
	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	throttle := newTestThrottle(store, &clock)
	defer throttle.Stop()

	throttle.BeginCooldown(context.Background(), 0)

	decision := throttle.TryAcquire()
	require.False(t, decision.Granted)
	require.Equal(t, DefaultCooldownInterval, decision.Remaining)
}

func TestThrottleExpireEmitsReadyOnce(t *testing.T) {
	store := &memoryCooldownStore{}
	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	throttle := newTestThrottle(store, &clock)
	defer throttle.Stop()

	events := throttle.Events()
	throttle.BeginCooldown(context.Background(), 60*time.Second)

	clock = clock.Add(10 * time.Second)
	require.False(t, throttle.ExpireIfDue(context.Background()))

	tick := <-events
	require.Equal(t, EventTick, tick.Kind)
	require.Equal(t, 50*time.Second, tick.Remaining)

	clock = clock.Add(50 * time.Second)
	require.True(t, throttle.ExpireIfDue(context.Background()))
	require.False(t, throttle.ExpireIfDue(context.Background()))

	ready := <-events
	require.Equal(t, EventReady, ready.Kind)
	require.Empty(t, store.state)

	state, remaining := throttle.State()
	require.Equal(t, ThrottleIdle, state)
	require.Zero(t, remaining)
}
