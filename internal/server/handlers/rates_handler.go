package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/parkos/parklot/internal/domain/models"
)

// RateStore is the rate-card persistence surface.
type RateStore interface {
	ListRates(ctx context.Context) ([]models.VehicleRate, error)
	UpsertRate(ctx context.Context, rate models.VehicleRate) error
}

// RatesHandler serves and updates the vehicle rate card.
type RatesHandler struct {
	store  RateStore
	logger *zap.Logger
}

// NewRatesHandler constructs the HTTP handler adapter.
func NewRatesHandler(store RateStore, logger *zap.Logger) *RatesHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RatesHandler{store: store, logger: logger}
}

// List returns the full rate card.
func (h *RatesHandler) List(c *gin.Context) {
	rates, err := h.store.ListRates(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rates": rates})
}

type upsertRateRequest struct {
	DailyRate float64 `json:"daily_rate"`
	IsActive  *bool   `json:"is_active"`
}

// Upsert creates or updates one vehicle type's daily rate. Admin only.
func (h *RatesHandler) Upsert(c *gin.Context) {
	vehicleType := strings.TrimSpace(c.Param("vehicleType"))
	if vehicleType == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "vehicle type is required"})
		return
	}

	var req upsertRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.DailyRate <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "daily_rate must be positive"})
		return
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	rate := models.VehicleRate{
		VehicleType: vehicleType,
		DailyRate:   req.DailyRate,
		IsActive:    active,
	}
	if err := h.store.UpsertRate(c.Request.Context(), rate); err != nil {
		writeError(c, h.logger, err)
		return
	}

	h.logger.Info("rate updated",
		zap.String("vehicle_type", vehicleType),
		zap.Float64("daily_rate", req.DailyRate),
		zap.String("updated_by", callerName(c)))
	c.JSON(http.StatusOK, rate)
}
