package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/parkos/parklot/internal/service/reports"
)

// ReportsHandler serves daily and per-shift summaries.
type ReportsHandler struct {
	svc    *reports.Service
	logger *zap.Logger
}

// NewReportsHandler constructs the HTTP handler adapter.
func NewReportsHandler(svc *reports.Service, logger *zap.Logger) *ReportsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportsHandler{svc: svc, logger: logger}
}

// Daily returns one calendar day's summary. Defaults to today.
func (h *ReportsHandler) Daily(c *gin.Context) {
	date := time.Now()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		date = parsed
	}

	report, err := h.svc.Daily(c.Request.Context(), date)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Shift returns one shift's ledger and reconciliation summary.
func (h *ReportsHandler) Shift(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid shift id"})
		return
	}

	report, err := h.svc.Shift(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
