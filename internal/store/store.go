package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"equipment-status-backend/internal/model"
	"equipment-status-backend/internal/reconcile"
)

// Store defines the persistence operations of the tracker. Every write
// that carries a corrective asset-status write commits both in one
// transaction: if the status write fails, the primary record write is
// rolled back with it.
type Store interface {
	DB() *gorm.DB

	ListAssets(ctx context.Context) ([]model.Asset, error)
	GetAsset(ctx context.Context, id string) (*model.Asset, error)
	CreateAsset(ctx context.Context, asset *model.Asset) error
	UpdateAsset(ctx context.Context, asset *model.Asset) error
	DeleteAsset(ctx context.Context, id string) error

	ListUsageLogs(ctx context.Context, filter UsageLogFilter) ([]model.UsageLog, error)
	GetUsageLog(ctx context.Context, id string) (*model.UsageLog, error)
	CreateUsageLog(ctx context.Context, log *model.UsageLog, write *reconcile.StatusWrite) error
	UpdateUsageLog(ctx context.Context, log *model.UsageLog, write *reconcile.StatusWrite) error
	DeleteUsageLog(ctx context.Context, id string, write *reconcile.StatusWrite) error

	ListRepairTickets(ctx context.Context, filter RepairTicketFilter) ([]model.RepairTicket, error)
	GetRepairTicket(ctx context.Context, id string) (*model.RepairTicket, error)
	CreateRepairTicket(ctx context.Context, ticket *model.RepairTicket, write *reconcile.StatusWrite) error
	UpdateRepairTicket(ctx context.Context, ticket *model.RepairTicket, write *reconcile.StatusWrite) error
	DeleteRepairTicket(ctx context.Context, id string, write *reconcile.StatusWrite) error

	ApplyStatusWrites(ctx context.Context, writes []reconcile.StatusWrite) error
}

// UsageLogFilter narrows usage-log listings. StartBefore/EndAfter
// together select logs overlapping a time window; open-ended logs
// always pass the EndAfter bound.
type UsageLogFilter struct {
	AssetID     string
	StartBefore time.Time
	EndAfter    time.Time
}

// RepairTicketFilter narrows ticket listings by simple equality.
type RepairTicketFilter struct {
	AssetID string
	Status  model.RepairStatus
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// DB exposes the underlying handle for callers that compose their own
// queries (subscription handlers, notification worker).
func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// --- Assets ---

func (s *gormStore) ListAssets(ctx context.Context) ([]model.Asset, error) {
	var assets []model.Asset
	if err := s.db.WithContext(ctx).Order("name").Find(&assets).Error; err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	return assets, nil
}

func (s *gormStore) GetAsset(ctx context.Context, id string) (*model.Asset, error) {
	var asset model.Asset
	if err := s.db.WithContext(ctx).First(&asset, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &asset, nil
}

func (s *gormStore) CreateAsset(ctx context.Context, asset *model.Asset) error {
	if err := s.db.WithContext(ctx).Create(asset).Error; err != nil {
		return fmt.Errorf("failed to create asset %s: %w", asset.ID, err)
	}
	return nil
}

func (s *gormStore) UpdateAsset(ctx context.Context, asset *model.Asset) error {
	if err := s.db.WithContext(ctx).Save(asset).Error; err != nil {
		return fmt.Errorf("failed to update asset %s: %w", asset.ID, err)
	}
	return nil
}

func (s *gormStore) DeleteAsset(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Delete(&model.Asset{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete asset %s: %w", id, err)
	}
	return nil
}

// --- Usage logs ---

func (s *gormStore) ListUsageLogs(ctx context.Context, filter UsageLogFilter) ([]model.UsageLog, error) {
	q := s.db.WithContext(ctx).Order("start_time")
	if filter.AssetID != "" {
		q = q.Where("asset_id = ?", filter.AssetID)
	}
	if !filter.StartBefore.IsZero() {
		q = q.Where("start_time < ?", filter.StartBefore)
	}
	if !filter.EndAfter.IsZero() {
		q = q.Where("(end_time IS NULL OR end_time > ?)", filter.EndAfter)
	}
	var logs []model.UsageLog
	if err := q.Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("failed to list usage logs: %w", err)
	}
	return logs, nil
}

func (s *gormStore) GetUsageLog(ctx context.Context, id string) (*model.UsageLog, error) {
	var log model.UsageLog
	if err := s.db.WithContext(ctx).First(&log, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &log, nil
}

func (s *gormStore) CreateUsageLog(ctx context.Context, log *model.UsageLog, write *reconcile.StatusWrite) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(log).Error; err != nil {
			return fmt.Errorf("failed to create usage log: %w", err)
		}
		return applyStatusWrite(tx, write)
	})
}

func (s *gormStore) UpdateUsageLog(ctx context.Context, log *model.UsageLog, write *reconcile.StatusWrite) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(log).Error; err != nil {
			return fmt.Errorf("failed to update usage log %s: %w", log.ID, err)
		}
		return applyStatusWrite(tx, write)
	})
}

func (s *gormStore) DeleteUsageLog(ctx context.Context, id string, write *reconcile.StatusWrite) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&model.UsageLog{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete usage log %s: %w", id, err)
		}
		return applyStatusWrite(tx, write)
	})
}

// --- Repair tickets ---

func (s *gormStore) ListRepairTickets(ctx context.Context, filter RepairTicketFilter) ([]model.RepairTicket, error) {
	q := s.db.WithContext(ctx).Order("updated_at DESC")
	if filter.AssetID != "" {
		q = q.Where("asset_id = ?", filter.AssetID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	var tickets []model.RepairTicket
	if err := q.Find(&tickets).Error; err != nil {
		return nil, fmt.Errorf("failed to list repair tickets: %w", err)
	}
	return tickets, nil
}

func (s *gormStore) GetRepairTicket(ctx context.Context, id string) (*model.RepairTicket, error) {
	var ticket model.RepairTicket
	if err := s.db.WithContext(ctx).First(&ticket, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (s *gormStore) CreateRepairTicket(ctx context.Context, ticket *model.RepairTicket, write *reconcile.StatusWrite) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(ticket).Error; err != nil {
			return fmt.Errorf("failed to create repair ticket: %w", err)
		}
		return applyStatusWrite(tx, write)
	})
}

func (s *gormStore) UpdateRepairTicket(ctx context.Context, ticket *model.RepairTicket, write *reconcile.StatusWrite) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(ticket).Error; err != nil {
			return fmt.Errorf("failed to update repair ticket %s: %w", ticket.ID, err)
		}
		return applyStatusWrite(tx, write)
	})
}

func (s *gormStore) DeleteRepairTicket(ctx context.Context, id string, write *reconcile.StatusWrite) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&model.RepairTicket{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete repair ticket %s: %w", id, err)
		}
		return applyStatusWrite(tx, write)
	})
}

// --- Status writes ---

// ApplyStatusWrites commits a batch of corrective writes from the
// global reconciliation pass as one all-or-nothing transaction.
func (s *gormStore) ApplyStatusWrites(ctx context.Context, writes []reconcile.StatusWrite) error {
	if len(writes) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range writes {
			if err := applyStatusWrite(tx, &writes[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func applyStatusWrite(tx *gorm.DB, write *reconcile.StatusWrite) error {
	if write == nil {
		return nil
	}
	err := tx.Model(&model.Asset{}).
		Where("id = ?", write.AssetID).
		Updates(map[string]any{
			"status":     write.Status,
			"updated_at": time.Now().UTC(),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to write status %s for asset %s: %w", write.Status, write.AssetID, err)
	}
	return nil
}
