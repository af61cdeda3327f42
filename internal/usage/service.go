// Package usage orchestrates usage-log mutations. Every create, update
// and delete recomputes the owning asset's status from the full
// post-mutation log set and commits the log write together with the
// corrective status write as one atomic unit.
package usage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"equipment-status-backend/internal/model"
	"equipment-status-backend/internal/parse"
	"equipment-status-backend/internal/reconcile"
	"equipment-status-backend/internal/store"
)

// Validation errors, rejected before any write is attempted.
var (
	ErrAssetNotFound     = errors.New("asset not found")
	ErrLogNotFound       = errors.New("usage log not found")
	ErrInvalidStatus     = errors.New("invalid usage status")
	ErrMissingStartTime  = errors.New("start time is required")
	ErrInvalidTimeWindow = errors.New("start time must not be after end time")
)

// Service handles usage-log CRUD plus the per-asset status
// reconciliation each mutation triggers.
type Service struct {
	store store.Store

	// Now is injectable for tests; all status derivation in one request
	// uses a single instant.
	Now func() time.Time
}

// NewService creates a usage-log service backed by the given store.
func NewService(s store.Store) *Service {
	return &Service{store: s, Now: func() time.Time { return time.Now().UTC() }}
}

// CreateInput carries a new reservation. Times are incoming strings and
// parsed fail-soft; only a missing/unparsable start is rejected, since
// a log without a start cannot be placed at all.
type CreateInput struct {
	AssetID   string            `json:"assetId" binding:"required"`
	User      string            `json:"user" binding:"required"`
	StartTime string            `json:"startTime" binding:"required"`
	EndTime   string            `json:"endTime"`
	Status    model.UsageStatus `json:"status"`
	Notes     string            `json:"notes"`
	ProjectID string            `json:"projectId"`
	ConfigIDs []string          `json:"configIds"`
}

// UpdateInput carries a partial edit; nil fields are left untouched.
// An explicit empty EndTime clears the end time.
type UpdateInput struct {
	User      *string            `json:"user"`
	StartTime *string            `json:"startTime"`
	EndTime   *string            `json:"endTime"`
	Status    *model.UsageStatus `json:"status"`
	Notes     *string            `json:"notes"`
	ProjectID *string            `json:"projectId"`
	ConfigIDs *[]string          `json:"configIds"`
}

// Create validates and persists a new usage log, returning the log and
// the corrective asset-status write committed alongside it (nil when
// the stored status already agreed).
func (s *Service) Create(ctx context.Context, in CreateInput) (*model.UsageLog, *reconcile.StatusWrite, error) {
	start := parse.Instant(in.StartTime)
	if start == nil {
		return nil, nil, ErrMissingStartTime
	}
	end := parse.Instant(in.EndTime)
	if end != nil && start.After(*end) {
		return nil, nil, ErrInvalidTimeWindow
	}

	logStatus := in.Status
	if logStatus == "" {
		logStatus = model.UsageNotStarted
	}
	if !logStatus.Valid() {
		return nil, nil, fmt.Errorf("%w: %q", ErrInvalidStatus, in.Status)
	}

	asset, err := s.store.GetAsset(ctx, in.AssetID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrAssetNotFound, in.AssetID)
	}

	log := &model.UsageLog{
		ID:        uuid.NewString(),
		AssetID:   in.AssetID,
		User:      in.User,
		StartTime: *start,
		EndTime:   end,
		Status:    logStatus,
		Notes:     in.Notes,
		ProjectID: in.ProjectID,
		ConfigIDs: in.ConfigIDs,
	}

	write, err := s.planWith(ctx, asset, log, "")
	if err != nil {
		return nil, nil, err
	}
	if err := s.store.CreateUsageLog(ctx, log, write); err != nil {
		return nil, nil, err
	}
	return log, write, nil
}

// Update applies a partial edit. Marking a log completed with a
// missing or future end time stamps the end time to now, so a finished
// run never reads as still occupying its asset.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*model.UsageLog, *reconcile.StatusWrite, error) {
	log, err := s.store.GetUsageLog(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrLogNotFound, id)
	}
	now := s.Now()

	if in.User != nil {
		log.User = *in.User
	}
	if in.Notes != nil {
		log.Notes = *in.Notes
	}
	if in.ProjectID != nil {
		log.ProjectID = *in.ProjectID
	}
	if in.ConfigIDs != nil {
		log.ConfigIDs = *in.ConfigIDs
	}
	if in.StartTime != nil {
		start := parse.Instant(*in.StartTime)
		if start == nil {
			return nil, nil, ErrMissingStartTime
		}
		log.StartTime = *start
	}
	if in.EndTime != nil {
		// Empty string clears the end time, reopening the log.
		log.EndTime = parse.Instant(*in.EndTime)
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, nil, fmt.Errorf("%w: %q", ErrInvalidStatus, *in.Status)
		}
		log.Status = *in.Status
		if log.Status == model.UsageCompleted && (log.EndTime == nil || log.EndTime.After(now)) {
			log.EndTime = &now
		}
	}
	if log.EndTime != nil && log.StartTime.After(*log.EndTime) {
		return nil, nil, ErrInvalidTimeWindow
	}

	asset, err := s.store.GetAsset(ctx, log.AssetID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrAssetNotFound, log.AssetID)
	}

	write, err := s.planWith(ctx, asset, log, log.ID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.store.UpdateUsageLog(ctx, log, write); err != nil {
		return nil, nil, err
	}
	return log, write, nil
}

// Delete removes a log and re-derives the asset's status from the
// remaining logs.
func (s *Service) Delete(ctx context.Context, id string) (*reconcile.StatusWrite, error) {
	log, err := s.store.GetUsageLog(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrLogNotFound, id)
	}

	asset, err := s.store.GetAsset(ctx, log.AssetID)
	if err != nil {
		// Orphaned log: delete it alone, nothing to reconcile.
		return nil, s.store.DeleteUsageLog(ctx, id, nil)
	}

	write, err := s.planWith(ctx, asset, nil, id)
	if err != nil {
		return nil, err
	}
	if err := s.store.DeleteUsageLog(ctx, id, write); err != nil {
		return nil, err
	}
	return write, nil
}

// RemoveConfig drops one sub-resource selection from a log. Removing
// the last selection deletes the whole log, matching the timeline
// view's per-row delete affordance.
func (s *Service) RemoveConfig(ctx context.Context, logID, configID string) (*reconcile.StatusWrite, error) {
	log, err := s.store.GetUsageLog(ctx, logID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrLogNotFound, logID)
	}

	remaining := make(model.StringList, 0, len(log.ConfigIDs))
	for _, id := range log.ConfigIDs {
		if id != configID {
			remaining = append(remaining, id)
		}
	}
	if len(remaining) == 0 {
		return s.Delete(ctx, logID)
	}

	log.ConfigIDs = remaining
	asset, err := s.store.GetAsset(ctx, log.AssetID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrAssetNotFound, log.AssetID)
	}
	write, err := s.planWith(ctx, asset, log, log.ID)
	if err != nil {
		return nil, err
	}
	if err := s.store.UpdateUsageLog(ctx, log, write); err != nil {
		return nil, err
	}
	return write, nil
}

// ReconcileAll runs the fleet-wide reconciliation pass: re-derive every
// chamber's status from the current logs, persist the minimal
// corrective writes, and report them. Safe to re-run at any time.
func (s *Service) ReconcileAll(ctx context.Context) ([]reconcile.StatusWrite, error) {
	assets, err := s.store.ListAssets(ctx)
	if err != nil {
		return nil, err
	}
	logs, err := s.store.ListUsageLogs(ctx, store.UsageLogFilter{})
	if err != nil {
		return nil, err
	}

	writes := reconcile.Plan(assets, logs, s.Now())
	if err := s.store.ApplyStatusWrites(ctx, writes); err != nil {
		return nil, err
	}
	return writes, nil
}

// planWith re-derives the asset's status against the post-mutation log
// set: the current logs with excludeID removed and mutated (when
// non-nil) standing in for it.
func (s *Service) planWith(ctx context.Context, asset *model.Asset, mutated *model.UsageLog, excludeID string) (*reconcile.StatusWrite, error) {
	logs, err := s.store.ListUsageLogs(ctx, store.UsageLogFilter{AssetID: asset.ID})
	if err != nil {
		return nil, err
	}

	set := make([]model.UsageLog, 0, len(logs)+1)
	for _, l := range logs {
		if excludeID != "" && l.ID == excludeID {
			continue
		}
		set = append(set, l)
	}
	if mutated != nil {
		set = append(set, *mutated)
	}

	return reconcile.PlanForAsset(asset, set, s.Now()), nil
}
