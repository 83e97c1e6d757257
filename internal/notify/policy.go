package notify

import "isitdown/internal/domain"

// ShouldNotify decides whether a status transition warrants an alert.
// The rule is edge-triggered on Up→Down only: repeated Down
// observations do not re-alert and recovery does not alert.
func ShouldNotify(prev, next domain.Status, optedIn bool) bool {
	return optedIn && prev == domain.StatusUp && next == domain.StatusDown
}
