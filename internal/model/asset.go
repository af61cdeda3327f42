package model

import "time"

// AssetStatus is the displayed status of a piece of equipment. It is a
// derived cache: usage logs and repair tickets are the source of truth,
// and the reconciler keeps this column in agreement with them.
type AssetStatus string

const (
	AssetAvailable   AssetStatus = "available"
	AssetInUse       AssetStatus = "in-use"
	AssetMaintenance AssetStatus = "maintenance"
)

// Valid reports whether s is one of the known asset statuses.
func (s AssetStatus) Valid() bool {
	switch s {
	case AssetAvailable, AssetInUse, AssetMaintenance:
		return true
	}
	return false
}

// AssetType distinguishes schedulable chambers from other tracked
// equipment (instruments, fixtures) that never carries occupancy state.
type AssetType string

const (
	AssetTypeChamber    AssetType = "chamber"
	AssetTypeInstrument AssetType = "instrument"
)

// Asset represents a physical piece of lab equipment.
type Asset struct {
	ID              string      `gorm:"primaryKey;size:64" json:"id"`
	Type            AssetType   `gorm:"size:32;not null;default:chamber" json:"type"`
	Name            string      `gorm:"size:256;not null" json:"name"`
	Status          AssetStatus `gorm:"size:32;not null;index" json:"status"`
	Category        string      `gorm:"size:128" json:"category,omitempty"`
	Description     string      `gorm:"size:1024" json:"description,omitempty"`
	Manufacturer    string      `gorm:"size:256" json:"manufacturer,omitempty"`
	Model           string      `gorm:"size:256" json:"model,omitempty"`
	Location        string      `gorm:"size:256" json:"location,omitempty"`
	SerialNumber    string      `gorm:"size:128" json:"serialNumber,omitempty"`
	CalibrationDate *time.Time  `json:"calibrationDate,omitempty"`
	CreatedAt       time.Time   `gorm:"not null" json:"createdAt"`
	UpdatedAt       time.Time   `gorm:"not null" json:"updatedAt"`

	// Associations
	UsageLogs     []UsageLog     `gorm:"foreignKey:AssetID" json:"-"`
	RepairTickets []RepairTicket `gorm:"foreignKey:AssetID" json:"-"`
}
