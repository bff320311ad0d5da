package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/parkos/parklot/internal/metrics"
	"github.com/parkos/parklot/internal/service/entries"
)

// EntriesHandler handles vehicle registration, listing and exit processing.
type EntriesHandler struct {
	svc     *entries.Service
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewEntriesHandler constructs the HTTP handler adapter.
func NewEntriesHandler(svc *entries.Service, m *metrics.Metrics, logger *zap.Logger) *EntriesHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EntriesHandler{svc: svc, metrics: m, logger: logger}
}

type registerEntryRequest struct {
	TransportName string `json:"transport_name" binding:"required"`
	VehicleType   string `json:"vehicle_type" binding:"required"`
	VehicleNumber string `json:"vehicle_number" binding:"required"`
	DriverName    string `json:"driver_name"`
	DriverPhone   string `json:"driver_phone"`
	Notes         string `json:"notes"`
}

// Register records a vehicle entering the lot.
func (h *EntriesHandler) Register(c *gin.Context) {
	var req registerEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	entry, err := h.svc.Register(c.Request.Context(), entries.RegisterRequest{
		TransportName: req.TransportName,
		VehicleType:   req.VehicleType,
		VehicleNumber: req.VehicleNumber,
		DriverName:    req.DriverName,
		DriverPhone:   req.DriverPhone,
		Notes:         req.Notes,
		CreatedBy:     callerName(c),
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	h.metrics.VehiclesRegistered.Inc()
	c.JSON(http.StatusCreated, entry)
}

// List returns entries, optionally filtered by status or plate.
func (h *EntriesHandler) List(c *gin.Context) {
	result, err := h.svc.List(c.Request.Context(), c.Query("status"), c.Query("vehicle_number"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": result})
}

// Get fetches one entry by id along with its duration and overstay status.
func (h *EntriesHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid entry id"})
		return
	}

	detail, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// Audit returns one entry's change history.
func (h *EntriesHandler) Audit(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid entry id"})
		return
	}

	trail, err := h.svc.AuditTrail(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"audit": trail})
}

type exitRequest struct {
	PaymentType   string `json:"payment_type" binding:"required"`
	PaymentStatus string `json:"payment_status"`
}

// Exit prices the stay and checks the vehicle out.
func (h *EntriesHandler) Exit(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid entry id"})
		return
	}

	var req exitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "payment_type is required"})
		return
	}

	result, err := h.svc.ProcessExit(c.Request.Context(), id, entries.ExitRequest{
		PaymentType:   req.PaymentType,
		PaymentStatus: req.PaymentStatus,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	h.metrics.VehiclesExited.Inc()
	h.metrics.FeesCollected.Add(result.Calculation.TotalFee)
	c.JSON(http.StatusOK, result)
}
