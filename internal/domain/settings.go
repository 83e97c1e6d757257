package domain

import "time"

// Interval bounds. The floor is a hard limit so a bad settings write
// can never turn the scheduler into an abusive poller.
const (
	DefaultCheckInterval = 60 * time.Second
	MinCheckInterval     = 30 * time.Second
)

// Settings are the persisted user preferences, loaded at startup and
// editable at runtime through the API.
type Settings struct {
	CheckInterval        time.Duration `json:"check_interval"`
	NotificationsEnabled bool          `json:"notifications_enabled"`
	ConsolidatedDisplay  bool          `json:"consolidated_display"`
}

// DefaultSettings returns the documented startup defaults.
func DefaultSettings() Settings {
	return Settings{
		CheckInterval:        DefaultCheckInterval,
		NotificationsEnabled: false,
		ConsolidatedDisplay:  false,
	}
}

// ClampInterval enforces the hard interval floor.
func ClampInterval(d time.Duration) time.Duration {
	if d < MinCheckInterval {
		return MinCheckInterval
	}
	return d
}
