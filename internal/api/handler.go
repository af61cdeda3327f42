package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"

	"equipment-status-backend/internal/holiday"
	"equipment-status-backend/internal/model"
	"equipment-status-backend/internal/notification"
	"equipment-status-backend/internal/reconcile"
	"equipment-status-backend/internal/repair"
	"equipment-status-backend/internal/store"
	"equipment-status-backend/internal/usage"
)

// TimelineOptions carries the timeline view defaults from config.
type TimelineOptions struct {
	DayStartHour int
	DaysBefore   int
	DaysAfter    int
	Region       string
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store    store.Store
	usage    *usage.Service
	repair   *repair.Service
	holidays *holiday.Client
	pool     *notification.WorkerPool
	webpush  *webpush.Options
	timeline TimelineOptions

	// Now is injectable for tests.
	Now func() time.Time
}

// NewHandler creates a new API handler. pool and holidays may be nil;
// the affected endpoints then degrade (no notifications, day-of-week
// classification only).
func NewHandler(s store.Store, us *usage.Service, rs *repair.Service,
	hc *holiday.Client, pool *notification.WorkerPool,
	webpushOptions *webpush.Options, tl TimelineOptions) *Handler {
	if tl.DayStartHour == 0 {
		tl.DayStartHour = 7
	}
	return &Handler{
		store:    s,
		usage:    us,
		repair:   rs,
		holidays: hc,
		pool:     pool,
		webpush:  webpushOptions,
		timeline: tl,
		Now:      func() time.Time { return time.Now().UTC() },
	}
}

// notifyAvailable dispatches availability notifications for every write
// that flipped an asset to available.
func (h *Handler) notifyAvailable(writes ...*reconcile.StatusWrite) {
	if h.pool == nil {
		return
	}
	for _, w := range writes {
		if w != nil && w.Status == model.AssetAvailable {
			h.pool.Dispatch(w.AssetID)
		}
	}
}
