// Package repair implements the repair-ticket lifecycle. Tickets move
// forward through quote-pending, repair-pending and completed; each
// transition is recorded on an append-only timeline and forces the
// asset's status, committed with the ticket write as one atomic unit.
package repair

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
	ErrTicketNotFound    = errors.New("repair ticket not found")
	ErrAssetInUse        = errors.New("asset is in use and cannot enter repair")
	ErrOpenTicketExists  = errors.New("asset already has a non-completed repair ticket")
	ErrQuoteRequired     = errors.New("vendor name and quote amount are both required to enter repair-pending")
	ErrIllegalTransition = errors.New("illegal repair ticket transition")
)

// Service governs repair tickets and the maintenance status they
// impose on their assets.
type Service struct {
	store store.Store

	// Now is injectable for tests.
	Now func() time.Time
}

// NewService creates a repair-ticket service backed by the given store.
func NewService(s store.Store) *Service {
	return &Service{store: s, Now: func() time.Time { return time.Now().UTC() }}
}

// CreateInput opens a new ticket for an asset.
type CreateInput struct {
	AssetID          string `json:"assetId" binding:"required"`
	ProblemDesc      string `json:"problemDesc" binding:"required"`
	ExpectedReturnAt string `json:"expectedReturnAt"`
}

// TransitionInput moves a ticket to its next state. Vendor and quote
// must be supplied together when entering repair-pending.
type TransitionInput struct {
	To          model.RepairStatus `json:"to" binding:"required"`
	Note        string             `json:"note"`
	VendorName  string             `json:"vendorName"`
	QuoteAmount *float64           `json:"quoteAmount"`
}

// Create opens a ticket in quote-pending and forces the asset into
// maintenance. Rejected when the asset is in use or already has an
// open ticket.
func (s *Service) Create(ctx context.Context, in CreateInput) (*model.RepairTicket, *reconcile.StatusWrite, error) {
	asset, err := s.store.GetAsset(ctx, in.AssetID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrAssetNotFound, in.AssetID)
	}
	if asset.Status == model.AssetInUse {
		return nil, nil, ErrAssetInUse
	}

	hasOpen, err := s.hasOtherOpenTicket(ctx, in.AssetID, "")
	if err != nil {
		return nil, nil, err
	}
	if hasOpen {
		return nil, nil, ErrOpenTicketExists
	}

	now := s.Now()
	ticket := &model.RepairTicket{
		ID:               uuid.NewString(),
		AssetID:          in.AssetID,
		Status:           model.RepairQuotePending,
		ProblemDesc:      in.ProblemDesc,
		ExpectedReturnAt: parse.Instant(in.ExpectedReturnAt),
		Timeline: model.Timeline{
			// Synthetic entry: the ticket's birth has no "from" state.
			{At: now, To: model.RepairQuotePending},
		},
	}

	var write *reconcile.StatusWrite
	if asset.Status != model.AssetMaintenance {
		write = &reconcile.StatusWrite{AssetID: asset.ID, Status: model.AssetMaintenance}
	}
	if err := s.store.CreateRepairTicket(ctx, ticket, write); err != nil {
		return nil, nil, err
	}
	return ticket, write, nil
}

// Transition moves a ticket forward. Completed is terminal and any
// backward move is rejected; skipping straight from quote-pending to
// completed is allowed. Completing the last open ticket returns the
// asset to available, never silently to in-use.
func (s *Service) Transition(ctx context.Context, id string, in TransitionInput) (*model.RepairTicket, *reconcile.StatusWrite, error) {
	ticket, err := s.store.GetRepairTicket(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrTicketNotFound, id)
	}

	if !ticket.Status.CanTransitionTo(in.To) {
		return nil, nil, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, ticket.Status, in.To)
	}

	now := s.Now()
	from := ticket.Status

	if in.To == model.RepairRepairPending {
		// Both-or-neither: a ticket cannot enter repair-pending without
		// a quote on record.
		if in.VendorName == "" || in.QuoteAmount == nil {
			return nil, nil, ErrQuoteRequired
		}
		ticket.VendorName = in.VendorName
		ticket.QuoteAmount = in.QuoteAmount
		ticket.QuoteAt = &now
	}
	if in.To == model.RepairCompleted {
		ticket.CompletedAt = &now
	}

	ticket.Status = in.To
	ticket.Timeline = append(ticket.Timeline, model.TimelineEntry{
		At: now, From: from, To: in.To, Note: in.Note,
	})

	write, err := s.assetWriteAfter(ctx, ticket, in.To == model.RepairCompleted)
	if err != nil {
		return nil, nil, err
	}
	if err := s.store.UpdateRepairTicket(ctx, ticket, write); err != nil {
		return nil, nil, err
	}
	return ticket, write, nil
}

// Delete removes a ticket at any state and re-derives the asset's
// status exactly as completion does.
func (s *Service) Delete(ctx context.Context, id string) (*reconcile.StatusWrite, error) {
	ticket, err := s.store.GetRepairTicket(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrTicketNotFound, id)
	}

	write, err := s.assetWriteAfter(ctx, ticket, true)
	if err != nil {
		return nil, err
	}
	if err := s.store.DeleteRepairTicket(ctx, id, write); err != nil {
		return nil, err
	}
	return write, nil
}

// assetWriteAfter computes the asset-status write accompanying a
// ticket mutation. While the ticket stays open the asset is held in
// maintenance; once it is released (completed or deleted) the asset
// stays in maintenance only if another open ticket remains, and
// becomes available otherwise — a freshly repaired asset is never
// assumed back in use.
func (s *Service) assetWriteAfter(ctx context.Context, ticket *model.RepairTicket, released bool) (*reconcile.StatusWrite, error) {
	target := model.AssetMaintenance
	if released {
		otherOpen, err := s.hasOtherOpenTicket(ctx, ticket.AssetID, ticket.ID)
		if err != nil {
			return nil, err
		}
		if !otherOpen {
			target = model.AssetAvailable
		}
	}

	asset, err := s.store.GetAsset(ctx, ticket.AssetID)
	if err != nil {
		// Ticket outlived its asset; nothing to force.
		return nil, nil
	}
	if asset.Status == target {
		return nil, nil
	}
	return &reconcile.StatusWrite{AssetID: asset.ID, Status: target}, nil
}

func (s *Service) hasOtherOpenTicket(ctx context.Context, assetID, excludeID string) (bool, error) {
	tickets, err := s.store.ListRepairTickets(ctx, store.RepairTicketFilter{AssetID: assetID})
	if err != nil {
		return false, err
	}
	for i := range tickets {
		if tickets[i].ID == excludeID {
			continue
		}
		if tickets[i].Open() {
			return true, nil
		}
	}
	return false, nil
}
