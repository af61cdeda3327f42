package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"equipment-status-backend/internal/status"
	"equipment-status-backend/internal/store"
	"equipment-status-backend/internal/usage"
)

// usageErrStatus maps usage-service sentinel errors to HTTP statuses.
func usageErrStatus(err error) int {
	switch {
	case errors.Is(err, usage.ErrAssetNotFound), errors.Is(err, usage.ErrLogNotFound):
		return http.StatusNotFound
	case errors.Is(err, usage.ErrInvalidStatus),
		errors.Is(err, usage.ErrMissingStartTime),
		errors.Is(err, usage.ErrInvalidTimeWindow):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// ListUsageLogs handles the GET /api/usage-logs request, optionally
// filtered by asset. Each log is returned with its effective status
// resolved against the current instant.
func (h *Handler) ListUsageLogs(c *gin.Context) {
	logs, err := h.store.ListUsageLogs(c.Request.Context(), store.UsageLogFilter{
		AssetID: c.Query("asset_id"),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve usage logs"})
		return
	}

	now := h.Now()
	response := make([]gin.H, 0, len(logs))
	for i := range logs {
		response = append(response, gin.H{
			"log":             logs[i],
			"effectiveStatus": status.Resolve(&logs[i], now),
		})
	}
	c.JSON(http.StatusOK, response)
}

// CreateUsageLog handles the POST /api/usage-logs request.
func (h *Handler) CreateUsageLog(c *gin.Context) {
	var in usage.CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	log, write, err := h.usage.Create(c.Request.Context(), in)
	if err != nil {
		c.JSON(usageErrStatus(err), gin.H{"error": err.Error()})
		return
	}
	h.notifyAvailable(write)
	c.JSON(http.StatusCreated, log)
}

// UpdateUsageLog handles the PUT /api/usage-logs/:id request.
func (h *Handler) UpdateUsageLog(c *gin.Context) {
	var in usage.UpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	log, write, err := h.usage.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		c.JSON(usageErrStatus(err), gin.H{"error": err.Error()})
		return
	}
	h.notifyAvailable(write)
	c.JSON(http.StatusOK, log)
}

// DeleteUsageLog handles the DELETE /api/usage-logs/:id request.
func (h *Handler) DeleteUsageLog(c *gin.Context) {
	write, err := h.usage.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(usageErrStatus(err), gin.H{"error": err.Error()})
		return
	}
	h.notifyAvailable(write)
	c.Status(http.StatusNoContent)
}

// RemoveUsageLogConfig handles the DELETE
// /api/usage-logs/:id/configs/:config_id request. Removing the last
// config deletes the whole log.
func (h *Handler) RemoveUsageLogConfig(c *gin.Context) {
	write, err := h.usage.RemoveConfig(c.Request.Context(), c.Param("id"), c.Param("config_id"))
	if err != nil {
		c.JSON(usageErrStatus(err), gin.H{"error": err.Error()})
		return
	}
	h.notifyAvailable(write)
	c.Status(http.StatusNoContent)
}

// Reconcile handles the POST /api/reconcile request: re-derive every
// asset's status from its logs, persist the corrective writes, and
// report them.
func (h *Handler) Reconcile(c *gin.Context) {
	writes, err := h.usage.ReconcileAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reconciliation failed"})
		return
	}
	for i := range writes {
		h.notifyAvailable(&writes[i])
	}
	c.JSON(http.StatusOK, gin.H{"corrected": writes})
}
