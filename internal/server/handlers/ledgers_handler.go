package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/parkos/parklot/internal/service/shifts"
)

// LedgersHandler handles the active shift's expense and deposit ledgers.
type LedgersHandler struct {
	svc    *shifts.Service
	logger *zap.Logger
}

// NewLedgersHandler constructs the HTTP handler adapter.
func NewLedgersHandler(svc *shifts.Service, logger *zap.Logger) *LedgersHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgersHandler{svc: svc, logger: logger}
}

type expenseRequest struct {
	Category    string  `json:"expense_category" binding:"required"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
}

// AddExpense records an outflow against the active shift.
func (h *LedgersHandler) AddExpense(c *gin.Context) {
	var req expenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "expense_category is required"})
		return
	}

	expense, err := h.svc.AddExpense(c.Request.Context(), shifts.ExpenseRequest{
		Category:    req.Category,
		Amount:      req.Amount,
		Description: req.Description,
		CreatedBy:   callerName(c),
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, expense)
}

// ListExpenses returns the active shift's expenses.
func (h *LedgersHandler) ListExpenses(c *gin.Context) {
	expenses, err := h.svc.Expenses(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"expenses": expenses})
}

// DeleteExpense removes an expense from the active shift.
func (h *LedgersHandler) DeleteExpense(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid expense id"})
		return
	}

	if err := h.svc.RemoveExpense(c.Request.Context(), id); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type depositRequest struct {
	CashAmount    float64 `json:"cash_amount"`
	DigitalAmount float64 `json:"digital_amount"`
	Notes         string  `json:"notes"`
}

// AddDeposit records cash removed from the drawer mid-shift.
func (h *LedgersHandler) AddDeposit(c *gin.Context) {
	var req depositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	deposit, err := h.svc.AddDeposit(c.Request.Context(), shifts.DepositRequest{
		CashAmount:    req.CashAmount,
		DigitalAmount: req.DigitalAmount,
		Notes:         req.Notes,
		CreatedBy:     callerName(c),
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, deposit)
}

// ListDeposits returns the active shift's deposits.
func (h *LedgersHandler) ListDeposits(c *gin.Context) {
	deposits, err := h.svc.Deposits(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deposits": deposits})
}
