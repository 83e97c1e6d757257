// Package status turns probe results into asset state. Apply is the
// only entry point and is pure: the scheduler owns all persistence.
package status

import (
	"time"

	"isitdown/internal/domain"
)

// Apply folds one probe result into an asset. It returns the updated
// asset (the input is not mutated), the single status log emitted for
// this cycle, and whether the up/down status changed. A first result
// on an asset still in Checking always counts as a transition.
func Apply(a domain.Asset, r domain.ProbeResult, now time.Time) (domain.Asset, domain.StatusLog, bool) {
	newStatus := domain.StatusDown
	if r.Up() {
		newStatus = domain.StatusUp
	}
	transitioned := newStatus != a.Status

	a.Status = newStatus
	a.Code = r.StatusCode
	a.ResponseTime = r.ResponseTime
	a.LastUpdate = now
	if newStatus == domain.StatusDown {
		a.ErrorDesc = r.ErrorDesc
	} else {
		a.ErrorDesc = ""
	}

	log := domain.StatusLog{
		AssetID:      a.ID,
		Timestamp:    now,
		ResponseTime: r.ResponseTime,
		IsUp:         newStatus == domain.StatusUp,
	}
	return a, log, transitioned
}
