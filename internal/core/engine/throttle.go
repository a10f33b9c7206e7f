package engine

import (
	"context"
	"sync"
	"time"

	"github.com/fulmenhq/gofulmen/logging"
	"go.uber.org/zap"

	"github.com/adforge/adforge/internal/core"
)

// DefaultCooldownInterval is applied when a gated call completes without an
// explicit duration.
const DefaultCooldownInterval = 60 * time.Second

// ThrottleState names the two controller states.
type ThrottleState string

const (
	ThrottleIdle        ThrottleState = "idle"
	ThrottleCoolingDown ThrottleState = "cooling_down"
)

// Decision is the result of a TryAcquire query.
type Decision struct {
	Granted   bool
	Remaining time.Duration
}

// EventKind distinguishes throttle notifications.
type EventKind string

const (
	EventTick  EventKind = "tick"
	EventReady EventKind = "ready"
)

// Event is emitted on cooldown progress. Tick events carry the remaining
// duration; a single Ready event marks the return to idle.
type Event struct {
	Kind      EventKind
	Remaining time.Duration
}

// CooldownStore persists the durable cooldown mirror.
type CooldownStore interface {
	GetCooldown(ctx context.Context, key string) (*core.CooldownState, error)
	PutCooldown(ctx context.Context, key string, state core.CooldownState) error
	ClearCooldown(ctx context.Context, key string) error
}

// Throttle gates an external call behind a single cooldown window. The window
// holds an absolute expiry; remaining time is always recomputed from the
// deadline against the clock, never counted down. Persistence failures are
// logged and swallowed so callers only ever see Granted or Denied.
type Throttle struct {
	Store        CooldownStore
	Key          string
	Interval     time.Duration
	TickInterval time.Duration
	Clock        func() time.Time
	Logger       *logging.Logger

	mu            sync.Mutex
	expiresAt     *time.Time
	lastRequestAt time.Time
	stopTicker    chan struct{}

	events chan Event
	once   sync.Once
}

// TryAcquire reports whether a gated call may be issued right now. It is a
// pure query and never mutates state.
func (t *Throttle) TryAcquire() Decision {
	if t == nil {
		return Decision{Granted: true}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	remaining := t.remainingLocked(t.now())
	if remaining > 0 {
		return Decision{Remaining: remaining}
	}
	return Decision{Granted: true}
}

// TryBegin checks the window and, when idle, begins a new cooldown inside the
// same critical section. Concurrent callers cannot both be granted. A
// non-positive duration falls back to the configured interval.
func (t *Throttle) TryBegin(ctx context.Context, duration time.Duration) Decision {
	if t == nil {
		return Decision{Granted: true}
	}
	if duration <= 0 {
		duration = t.interval()
	}

	now := t.now()
	expires := now.Add(duration)

	t.mu.Lock()
	if remaining := t.remainingLocked(now); remaining > 0 {
		t.mu.Unlock()
		return Decision{Remaining: remaining}
	}
	t.expiresAt = &expires
	t.lastRequestAt = now
	t.startTickerLocked()
	t.mu.Unlock()

	t.persist(ctx, core.CooldownState{ExpiresAt: &expires, LastRequestAt: now})
	return Decision{Granted: true}
}

// BeginCooldown unconditionally starts (or replaces) the cooldown window and
// persists the durable mirror. A non-positive duration falls back to the
// configured interval.
func (t *Throttle) BeginCooldown(ctx context.Context, duration time.Duration) {
	if t == nil {
		return
	}
	if duration <= 0 {
		duration = t.interval()
	}

	now := t.now()
	expires := now.Add(duration)

	t.mu.Lock()
	t.expiresAt = &expires
	t.lastRequestAt = now
	t.startTickerLocked()
	t.mu.Unlock()

	t.persist(ctx, core.CooldownState{ExpiresAt: &expires, LastRequestAt: now})
}

// RestoreOnInit reconstructs the window from the durable mirror. A future
// expiry resumes the cooldown with the correct remaining time; a recent last
// request without an expiry reconstructs the window from the configured
// interval; anything else (missing, stale, corrupted) yields idle.
func (t *Throttle) RestoreOnInit(ctx context.Context) {
	if t == nil || t.Store == nil {
		return
	}

	state, err := t.Store.GetCooldown(ctx, t.key())
	if err != nil {
		t.logWarn("cooldown restore failed, starting idle", zap.Error(err))
		return
	}
	if state == nil {
		return
	}

	now := t.now()

	var expires time.Time
	switch {
	case state.ExpiresAt != nil && state.ExpiresAt.After(now):
		expires = *state.ExpiresAt
	case state.ExpiresAt == nil && !state.LastRequestAt.IsZero() && now.Sub(state.LastRequestAt) < t.interval():
		expires = state.LastRequestAt.Add(t.interval())
	default:
		// Stale or unusable record; drop it and start idle.
		t.clearMirror(ctx)
		return
	}

	t.mu.Lock()
	t.expiresAt = &expires
	if !state.LastRequestAt.IsZero() {
		t.lastRequestAt = state.LastRequestAt
	}
	t.startTickerLocked()
	t.mu.Unlock()
}

// State returns the current controller state with the remaining duration.
func (t *Throttle) State() (ThrottleState, time.Duration) {
	if t == nil {
		return ThrottleIdle, 0
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	remaining := t.remainingLocked(t.now())
	if remaining > 0 {
		return ThrottleCoolingDown, remaining
	}
	return ThrottleIdle, 0
}

// LastRequestAt returns when the gated call was last issued.
func (t *Throttle) LastRequestAt() time.Time {
	if t == nil {
		return time.Time{}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastRequestAt
}

// Events exposes the notification stream. Consumers that fall behind miss
// ticks rather than blocking the controller.
func (t *Throttle) Events() <-chan Event {
	t.once.Do(func() {
		t.events = make(chan Event, 64)
	})
	return t.events
}

// Stop terminates any running ticker goroutine.
func (t *Throttle) Stop() {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopTicker != nil {
		close(t.stopTicker)
		t.stopTicker = nil
	}
}

// ExpireIfDue transitions to idle when the window has elapsed, clearing the
// mirror and emitting Ready. The ticker loop drives this once per second.
func (t *Throttle) ExpireIfDue(ctx context.Context) bool {
	if t == nil {
		return false
	}

	t.mu.Lock()
	if t.expiresAt == nil {
		t.mu.Unlock()
		return false
	}

	remaining := t.remainingLocked(t.now())
	if remaining > 0 {
		t.mu.Unlock()
		t.emit(Event{Kind: EventTick, Remaining: remaining})
		return false
	}

	t.expiresAt = nil
	if t.stopTicker != nil {
		close(t.stopTicker)
		t.stopTicker = nil
	}
	t.mu.Unlock()

	t.clearMirror(ctx)
	t.emit(Event{Kind: EventReady})
	return true
}

// startTickerLocked replaces any running ticker with a fresh one. Callers
// hold t.mu.
func (t *Throttle) startTickerLocked() {
	if t.stopTicker != nil {
		close(t.stopTicker)
	}
	stop := make(chan struct{})
	t.stopTicker = stop

	interval := t.TickInterval
	if interval <= 0 {
		interval = time.Second
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if t.ExpireIfDue(context.Background()) {
					return
				}
			}
		}
	}()
}

func (t *Throttle) remainingLocked(now time.Time) time.Duration {
	if t.expiresAt == nil {
		return 0
	}
	remaining := t.expiresAt.Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (t *Throttle) persist(ctx context.Context, state core.CooldownState) {
	if t.Store == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := t.Store.PutCooldown(ctx, t.key(), state); err != nil {
		t.logWarn("cooldown persist failed", zap.Error(err))
	}
}

func (t *Throttle) clearMirror(ctx context.Context) {
	if t.Store == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := t.Store.ClearCooldown(ctx, t.key()); err != nil {
		t.logWarn("cooldown clear failed", zap.Error(err))
	}
}

func (t *Throttle) emit(event Event) {
	t.once.Do(func() {
		t.events = make(chan Event, 64)
	})
	select {
	case t.events <- event:
	default:
	}
}

func (t *Throttle) key() string {
	if t.Key == "" {
		return "trends"
	}
	return t.Key
}

func (t *Throttle) interval() time.Duration {
	if t.Interval > 0 {
		return t.Interval
	}
	return DefaultCooldownInterval
}

func (t *Throttle) now() time.Time {
	if t.Clock != nil {
		return t.Clock()
	}
	return time.Now().UTC()
}

func (t *Throttle) logWarn(msg string, fields ...zap.Field) {
	if t.Logger == nil {
		return
	}
	t.Logger.Warn(msg, fields...)
}
