// Package reconcile keeps the derived asset status column in agreement
// with the usage logs that are its source of truth. The plan functions
// are pure: they map a full state snapshot to the minimal set of
// corrective writes and never mutate anything, so the invariant can be
// re-verified and self-healed by simply running the pass again.
package reconcile

import (
	"time"

	"equipment-status-backend/internal/model"
	"equipment-status-backend/internal/status"
)

// StatusWrite is one corrective write: set the asset's status column.
type StatusWrite struct {
	AssetID string            `json:"assetId"`
	Status  model.AssetStatus `json:"newStatus"`
}

// Plan computes the corrective writes for the whole fleet. A chamber is
// in-use iff at least one of its logs currently occupies it, available
// otherwise; only assets whose stored status disagrees are written, so
// a second run over the updated snapshot plans nothing.
//
// Assets in maintenance are never touched: that status is owned by the
// repair-ticket machine, and usage-driven reconciliation must not
// clobber it. Non-chamber assets carry no occupancy state at all.
func Plan(assets []model.Asset, logs []model.UsageLog, now time.Time) []StatusWrite {
	occupied := make(map[string]bool)
	for i := range logs {
		if status.Occupying(&logs[i], now) {
			occupied[logs[i].AssetID] = true
		}
	}

	var writes []StatusWrite
	for i := range assets {
		asset := &assets[i]
		if asset.Type != model.AssetTypeChamber {
			continue
		}
		if asset.Status == model.AssetMaintenance {
			continue
		}

		target := model.AssetAvailable
		if occupied[asset.ID] {
			target = model.AssetInUse
		}
		if asset.Status == target {
			continue
		}
		writes = append(writes, StatusWrite{AssetID: asset.ID, Status: target})
	}
	return writes
}

// PlanForAsset is the single-asset variant used on every usage-log
// mutation. logs must already reflect the mutation (created log
// included, updated log replaced, deleted log removed); the derivation
// always runs against that full post-mutation set, never a cached prior
// value. Returns nil when no corrective write is needed.
func PlanForAsset(asset *model.Asset, logs []model.UsageLog, now time.Time) *StatusWrite {
	if asset == nil || asset.Type != model.AssetTypeChamber || asset.Status == model.AssetMaintenance {
		return nil
	}

	target := model.AssetAvailable
	for i := range logs {
		if logs[i].AssetID != asset.ID {
			continue
		}
		if status.Occupying(&logs[i], now) {
			target = model.AssetInUse
			break
		}
	}
	if asset.Status == target {
		return nil
	}
	return &StatusWrite{AssetID: asset.ID, Status: target}
}
