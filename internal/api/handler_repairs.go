package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"equipment-status-backend/internal/model"
	"equipment-status-backend/internal/repair"
	"equipment-status-backend/internal/store"
)

// repairErrStatus maps repair-service sentinel errors to HTTP statuses.
func repairErrStatus(err error) int {
	switch {
	case errors.Is(err, repair.ErrAssetNotFound), errors.Is(err, repair.ErrTicketNotFound):
		return http.StatusNotFound
	case errors.Is(err, repair.ErrAssetInUse),
		errors.Is(err, repair.ErrOpenTicketExists),
		errors.Is(err, repair.ErrIllegalTransition):
		return http.StatusConflict
	case errors.Is(err, repair.ErrQuoteRequired):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// ListRepairTickets handles the GET /api/repair-tickets request,
// optionally filtered by asset and status.
func (h *Handler) ListRepairTickets(c *gin.Context) {
	tickets, err := h.store.ListRepairTickets(c.Request.Context(), store.RepairTicketFilter{
		AssetID: c.Query("asset_id"),
		Status:  model.RepairStatus(c.Query("status")),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve repair tickets"})
		return
	}
	c.JSON(http.StatusOK, tickets)
}

// CreateRepairTicket handles the POST /api/repair-tickets request.
func (h *Handler) CreateRepairTicket(c *gin.Context) {
	var in repair.CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	ticket, _, err := h.repair.Create(c.Request.Context(), in)
	if err != nil {
		c.JSON(repairErrStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, ticket)
}

// TransitionRepairTicket handles the POST
// /api/repair-tickets/:id/transition request.
func (h *Handler) TransitionRepairTicket(c *gin.Context) {
	var in repair.TransitionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	ticket, write, err := h.repair.Transition(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		c.JSON(repairErrStatus(err), gin.H{"error": err.Error()})
		return
	}
	h.notifyAvailable(write)
	c.JSON(http.StatusOK, ticket)
}

// DeleteRepairTicket handles the DELETE /api/repair-tickets/:id request.
func (h *Handler) DeleteRepairTicket(c *gin.Context) {
	write, err := h.repair.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(repairErrStatus(err), gin.H{"error": err.Error()})
		return
	}
	h.notifyAvailable(write)
	c.Status(http.StatusNoContent)
}
