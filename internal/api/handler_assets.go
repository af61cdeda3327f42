package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"equipment-status-backend/internal/model"
	"equipment-status-backend/internal/parse"
)

// ListAssets handles the GET /api/assets request.
func (h *Handler) ListAssets(c *gin.Context) {
	assets, err := h.store.ListAssets(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve assets"})
		return
	}
	c.JSON(http.StatusOK, assets)
}

type assetRequest struct {
	Type            model.AssetType `json:"type"`
	Name            string          `json:"name" binding:"required"`
	Category        string          `json:"category"`
	Description     string          `json:"description"`
	Manufacturer    string          `json:"manufacturer"`
	Model           string          `json:"model"`
	Location        string          `json:"location"`
	SerialNumber    string          `json:"serialNumber"`
	CalibrationDate string          `json:"calibrationDate"`
}

// CreateAsset registers a new piece of equipment, starting available.
func (h *Handler) CreateAsset(c *gin.Context) {
	var req assetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if req.Type == "" {
		req.Type = model.AssetTypeChamber
	}

	asset := model.Asset{
		ID:              uuid.NewString(),
		Type:            req.Type,
		Name:            req.Name,
		Status:          model.AssetAvailable,
		Category:        req.Category,
		Description:     req.Description,
		Manufacturer:    req.Manufacturer,
		Model:           req.Model,
		Location:        req.Location,
		SerialNumber:    req.SerialNumber,
		CalibrationDate: parse.Instant(req.CalibrationDate),
	}
	if err := h.store.CreateAsset(c.Request.Context(), &asset); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create asset"})
		return
	}
	c.JSON(http.StatusCreated, asset)
}

// UpdateAsset edits an asset's descriptive fields. The status column is
// deliberately not editable here: it is owned by the usage and repair
// flows and the reconciler.
func (h *Handler) UpdateAsset(c *gin.Context) {
	asset, err := h.store.GetAsset(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "asset not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve asset"})
		}
		return
	}

	var req assetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	asset.Name = req.Name
	if req.Type != "" {
		asset.Type = req.Type
	}
	asset.Category = req.Category
	asset.Description = req.Description
	asset.Manufacturer = req.Manufacturer
	asset.Model = req.Model
	asset.Location = req.Location
	asset.SerialNumber = req.SerialNumber
	if req.CalibrationDate != "" {
		asset.CalibrationDate = parse.Instant(req.CalibrationDate)
	}
	asset.UpdatedAt = h.Now()

	if err := h.store.UpdateAsset(c.Request.Context(), asset); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update asset"})
		return
	}
	c.JSON(http.StatusOK, asset)
}

// DeleteAsset removes an asset.
func (h *Handler) DeleteAsset(c *gin.Context) {
	if err := h.store.DeleteAsset(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete asset"})
		return
	}
	c.Status(http.StatusNoContent)
}
