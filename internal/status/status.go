// Package status derives the time-aware effective status of usage logs.
// The stored status is never trusted on its own: a record silently
// becomes overdue when the clock passes its end time, without anyone
// writing to it. All functions here are pure; callers pass in "now".
package status

import (
	"time"

	"equipment-status-backend/internal/model"
)

// Resolve maps a usage log and the current instant to its effective
// status:
//
//   - an explicitly completed log stays completed regardless of time,
//   - before the start time the log is not-started,
//   - past a present end time the log is overdue (completion requires an
//     explicit action, so in-progress is not believed past the end),
//   - otherwise the log is running.
//
// A log without an end time is treated as still running once started;
// it never becomes overdue until an end time exists. A zero start time
// (malformed upstream data, parsed fail-soft to absent) is treated as
// already started.
func Resolve(log *model.UsageLog, now time.Time) model.UsageStatus {
	if log.Status == model.UsageCompleted {
		return model.UsageCompleted
	}
	if !log.StartTime.IsZero() && now.Before(log.StartTime) {
		return model.UsageNotStarted
	}
	if log.EndTime != nil && now.After(*log.EndTime) {
		return model.UsageOverdue
	}
	return model.UsageInProgress
}

// Occupying reports whether the log currently holds its asset busy.
// This is the sole test behind an asset's in-use status: running and
// overdue logs occupy, not-started and completed ones never do.
func Occupying(log *model.UsageLog, now time.Time) bool {
	switch Resolve(log, now) {
	case model.UsageInProgress, model.UsageOverdue:
		return true
	}
	return false
}

// AnyOccupying reports whether any of the given logs occupies its asset.
func AnyOccupying(logs []model.UsageLog, now time.Time) bool {
	for i := range logs {
		if Occupying(&logs[i], now) {
			return true
		}
	}
	return false
}
