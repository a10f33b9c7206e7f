package core

import "time"

// CooldownState is the durable mirror of a throttle window. ExpiresAt is nil
// once the window has elapsed; LastRequestAt always records the most recent
// gated request.
type CooldownState struct {
	ExpiresAt     *time.Time
	LastRequestAt time.Time
}

// Active reports whether the state still holds an unexpired window at now.
func (s CooldownState) Active(now time.Time) bool {
	return s.ExpiresAt != nil && s.ExpiresAt.After(now)
}
