package model

import "time"

// UsageStatus is the last explicitly stored status of a usage log. The
// displayed status is always recomputed against the clock (see
// internal/status); this value alone is never trusted.
type UsageStatus string

const (
	UsageNotStarted UsageStatus = "not-started"
	UsageInProgress UsageStatus = "in-progress"
	UsageCompleted  UsageStatus = "completed"
	UsageOverdue    UsageStatus = "overdue"
)

// Valid reports whether s is one of the known usage statuses.
func (s UsageStatus) Valid() bool {
	switch s {
	case UsageNotStarted, UsageInProgress, UsageCompleted, UsageOverdue:
		return true
	}
	return false
}

// UsageLog is a reservation/usage record for one asset. EndTime is
// optional: an open-ended log is still running (or its end is yet to be
// decided). Invariant: StartTime <= EndTime when both are present.
type UsageLog struct {
	ID        string      `gorm:"primaryKey;size:64" json:"id"`
	AssetID   string      `gorm:"size:64;index;not null" json:"assetId"`
	User      string      `gorm:"size:128;not null" json:"user"`
	StartTime time.Time   `gorm:"not null;index" json:"startTime"`
	EndTime   *time.Time  `gorm:"index" json:"endTime,omitempty"`
	Status    UsageStatus `gorm:"size:32;not null;index" json:"status"`
	Notes     string      `gorm:"size:1024" json:"notes,omitempty"`
	ProjectID string      `gorm:"size:64;index" json:"projectId,omitempty"`

	// Selected sub-resource configurations. A log with N selections fans
	// out into N timeline rows sharing the same interval.
	ConfigIDs StringList `gorm:"serializer:json" json:"configIds,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

// StringList is a JSON-serialized list of string IDs.
type StringList []string
