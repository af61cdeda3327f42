package model

import "time"

// RepairStatus is the lifecycle state of a repair ticket. Transitions
// only move forward; "completed" is terminal.
type RepairStatus string

const (
	RepairQuotePending  RepairStatus = "quote-pending"
	RepairRepairPending RepairStatus = "repair-pending"
	RepairCompleted     RepairStatus = "completed"
)

// Valid reports whether s is one of the known repair statuses.
func (s RepairStatus) Valid() bool {
	switch s {
	case RepairQuotePending, RepairRepairPending, RepairCompleted:
		return true
	}
	return false
}

// rank orders the repair states for the forward-only transition check.
func (s RepairStatus) rank() int {
	switch s {
	case RepairQuotePending:
		return 0
	case RepairRepairPending:
		return 1
	case RepairCompleted:
		return 2
	}
	return -1
}

// CanTransitionTo reports whether a ticket in state s may move to next.
// Skipping forward (quote-pending directly to completed) is permitted;
// any backward move is not, and completed accepts nothing.
func (s RepairStatus) CanTransitionTo(next RepairStatus) bool {
	if !s.Valid() || !next.Valid() {
		return false
	}
	return s.rank() < next.rank()
}

// TimelineEntry is one immutable entry in a ticket's audit trail.
// "From" is empty on the synthetic entry written at creation.
type TimelineEntry struct {
	At   time.Time    `json:"at"`
	From RepairStatus `json:"from,omitempty"`
	To   RepairStatus `json:"to"`
	Note string       `json:"note,omitempty"`
}

// Timeline is the append-only transition log, serialized as JSON.
type Timeline []TimelineEntry

// RepairTicket is one open or closed maintenance case for an asset.
// At most one non-completed ticket may exist per asset at any time.
type RepairTicket struct {
	ID          string       `gorm:"primaryKey;size:64" json:"id"`
	AssetID     string       `gorm:"size:64;index;not null" json:"assetId"`
	Status      RepairStatus `gorm:"size:32;not null;index" json:"status"`
	ProblemDesc string       `gorm:"size:1024;not null" json:"problemDesc"`

	VendorName  string   `gorm:"size:256" json:"vendorName,omitempty"`
	QuoteAmount *float64 `json:"quoteAmount,omitempty"`

	QuoteAt          *time.Time `json:"quoteAt,omitempty"`
	ExpectedReturnAt *time.Time `json:"expectedReturnAt,omitempty"`
	CompletedAt      *time.Time `json:"completedAt,omitempty"`

	Timeline Timeline `gorm:"serializer:json" json:"timeline,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

// Open reports whether the ticket still blocks its asset.
func (t *RepairTicket) Open() bool {
	return t.Status != RepairCompleted
}
