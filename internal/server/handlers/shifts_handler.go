package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/parkos/parklot/internal/domain/models"
	"github.com/parkos/parklot/internal/metrics"
	"github.com/parkos/parklot/internal/service/shifts"
)

// ShiftsHandler handles the shift lifecycle and the shift-scoped ledgers.
type ShiftsHandler struct {
	svc     *shifts.Service
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewShiftsHandler constructs the HTTP handler adapter.
func NewShiftsHandler(svc *shifts.Service, m *metrics.Metrics, logger *zap.Logger) *ShiftsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShiftsHandler{svc: svc, metrics: m, logger: logger}
}

// actorFrom builds the shift-mutation actor from the authenticated caller.
func actorFrom(c *gin.Context) shifts.Actor {
	identity := Caller(c)
	if identity == nil {
		return shifts.Actor{}
	}
	return shifts.Actor{
		OperatorID: identity.OperatorID.String(),
		Username:   identity.Username,
		Admin:      identity.Role == models.RoleAdmin,
	}
}

// Active returns the running shift. When none is active the 404 body carries
// the suggested opening cash so the start screen can prefill it.
func (h *ShiftsHandler) Active(c *gin.Context) {
	shift, err := h.svc.Active(c.Request.Context())
	if err != nil {
		if errors.Is(err, models.ErrNoActiveShift) {
			suggested, serr := h.svc.SuggestedOpeningCash(c.Request.Context())
			if serr != nil {
				writeError(c, h.logger, serr)
				return
			}
			c.JSON(http.StatusNotFound, gin.H{
				"error":                  models.ErrNoActiveShift.Error(),
				"suggested_opening_cash": suggested,
			})
			return
		}
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, shift)
}

type startShiftRequest struct {
	EmployeeName string  `json:"employee_name" binding:"required"`
	OpeningCash  float64 `json:"opening_cash_amount"`
	Notes        string  `json:"notes"`
}

// Start opens a new shift for the authenticated operator.
func (h *ShiftsHandler) Start(c *gin.Context) {
	var req startShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "employee_name is required"})
		return
	}

	employeeID := ""
	if identity := Caller(c); identity != nil {
		employeeID = identity.OperatorID.String()
	}

	shift, err := h.svc.Start(c.Request.Context(), shifts.StartRequest{
		EmployeeID:   employeeID,
		EmployeeName: req.EmployeeName,
		OpeningCash:  req.OpeningCash,
		Notes:        req.Notes,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	h.metrics.ShiftsStarted.Inc()
	c.JSON(http.StatusCreated, shift)
}

type endShiftRequest struct {
	ClosingCash        float64 `json:"closing_cash_amount"`
	Notes              string  `json:"notes"`
	ConfirmDiscrepancy bool    `json:"confirm_discrepancy"`
}

// End closes the active shift after reconciliation. A significant unconfirmed
// discrepancy comes back as 409 with the reconciliation attached.
func (h *ShiftsHandler) End(c *gin.Context) {
	h.end(c, false)
}

// EmergencyEnd closes the active shift without the confirmation gate.
func (h *ShiftsHandler) EmergencyEnd(c *gin.Context) {
	h.end(c, true)
}

func (h *ShiftsHandler) end(c *gin.Context, emergency bool) {
	var req endShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.svc.End(c.Request.Context(), shifts.EndRequest{
		Actor:              actorFrom(c),
		EnteredClosingCash: req.ClosingCash,
		Notes:              req.Notes,
		ConfirmDiscrepancy: req.ConfirmDiscrepancy,
		Emergency:          emergency,
	})
	if err != nil {
		if errors.Is(err, models.ErrUnconfirmedDiscrepancy) && result != nil {
			c.JSON(http.StatusConflict, gin.H{
				"error":          err.Error(),
				"reconciliation": result.Reconciliation,
			})
			return
		}
		writeError(c, h.logger, err)
		return
	}

	h.metrics.ShiftsEnded.Inc()
	if result.Reconciliation != nil {
		h.metrics.Discrepancies.WithLabelValues(string(result.Reconciliation.Classification)).Inc()
	}
	c.JSON(http.StatusOK, result)
}

type handoverRequest struct {
	EmployeeName string `json:"employee_name" binding:"required"`
	EmployeeID   string `json:"employee_id"`
}

// Handover closes the active shift and opens the successor atomically.
func (h *ShiftsHandler) Handover(c *gin.Context) {
	var req handoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "employee_name is required"})
		return
	}

	next, err := h.svc.Handover(c.Request.Context(), shifts.HandoverRequest{
		Actor:            actorFrom(c),
		NextEmployeeID:   req.EmployeeID,
		NextEmployeeName: req.EmployeeName,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	h.metrics.ShiftsEnded.Inc()
	h.metrics.ShiftsStarted.Inc()
	c.JSON(http.StatusOK, next)
}

// Reconciliation compares an entered drawer count (or just reports expected
// cash when no count is supplied) against the active shift's ledgers.
func (h *ShiftsHandler) Reconciliation(c *gin.Context) {
	entered := c.Query("entered_cash")
	if entered == "" {
		expected, err := h.svc.CashOnHand(c.Request.Context())
		if err != nil {
			writeError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"expected_closing_cash": expected})
		return
	}

	enteredCash, err := strconv.ParseFloat(entered, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "entered_cash must be a number"})
		return
	}

	result, err := h.svc.Reconcile(c.Request.Context(), enteredCash)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
