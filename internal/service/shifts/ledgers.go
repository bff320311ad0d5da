package shifts

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/parkos/parklot/internal/domain/models"
)

// ExpenseRequest carries the inputs for recording an expense against the
// active shift.
type ExpenseRequest struct {
	Category    string
	Amount      float64
	Description string
	CreatedBy   string
}

// AddExpense records an outflow against the active shift.
func (s *Service) AddExpense(ctx context.Context, req ExpenseRequest) (*models.Expense, error) {
	if strings.TrimSpace(req.Category) == "" {
		return nil, &models.ValidationError{Field: "expense_category", Message: "category is required"}
	}
	if err := models.ValidateCashAmount("amount", req.Amount); err != nil {
		return nil, err
	}

	shift, err := s.Active(ctx)
	if err != nil {
		return nil, err
	}

	expense := &models.Expense{
		ID:             uuid.New(),
		ShiftSessionID: shift.ID,
		Category:       strings.TrimSpace(req.Category),
		Amount:         req.Amount,
		Description:    req.Description,
		CreatedBy:      req.CreatedBy,
		CreatedAt:      s.now(),
	}
	if err := s.store.CreateExpense(ctx, expense); err != nil {
		return nil, fmt.Errorf("add expense: %w", err)
	}

	s.logger.Info("expense recorded",
		zap.String("shift_id", shift.ID.String()),
		zap.String("category", expense.Category),
		zap.Float64("amount", expense.Amount))
	return expense, nil
}

// RemoveExpense deletes an expense from the active shift. Ended shifts are
// immutable, so the store refuses deletes once the shift closes.
func (s *Service) RemoveExpense(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Active(ctx); err != nil {
		return err
	}
	if err := s.store.DeleteExpense(ctx, id); err != nil {
		return fmt.Errorf("remove expense: %w", err)
	}
	return nil
}

// Expenses lists the active shift's expenses.
func (s *Service) Expenses(ctx context.Context) ([]models.Expense, error) {
	shift, err := s.Active(ctx)
	if err != nil {
		return nil, err
	}
	expenses, err := s.store.ListExpenses(ctx, shift.ID)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return expenses, nil
}

// DepositRequest carries the inputs for recording a drawer deposit.
type DepositRequest struct {
	CashAmount    float64
	DigitalAmount float64
	Notes         string
	CreatedBy     string
}

// AddDeposit records cash removed from the drawer mid-shift.
func (s *Service) AddDeposit(ctx context.Context, req DepositRequest) (*models.Deposit, error) {
	if err := models.ValidateCashAmount("cash_amount", req.CashAmount); err != nil {
		return nil, err
	}
	if err := models.ValidateCashAmount("digital_amount", req.DigitalAmount); err != nil {
		return nil, err
	}

	shift, err := s.Active(ctx)
	if err != nil {
		return nil, err
	}

	deposit := &models.Deposit{
		ID:             uuid.New(),
		ShiftSessionID: shift.ID,
		CashAmount:     req.CashAmount,
		DigitalAmount:  req.DigitalAmount,
		Notes:          req.Notes,
		CreatedBy:      req.CreatedBy,
		CreatedAt:      s.now(),
	}
	if err := s.store.CreateDeposit(ctx, deposit); err != nil {
		return nil, fmt.Errorf("add deposit: %w", err)
	}

	s.logger.Info("deposit recorded",
		zap.String("shift_id", shift.ID.String()),
		zap.Float64("cash_amount", deposit.CashAmount),
		zap.Float64("digital_amount", deposit.DigitalAmount))
	return deposit, nil
}

// Deposits lists the active shift's deposits.
func (s *Service) Deposits(ctx context.Context) ([]models.Deposit, error) {
	shift, err := s.Active(ctx)
	if err != nil {
		return nil, err
	}
	deposits, err := s.store.ListDeposits(ctx, shift.ID)
	if err != nil {
		return nil, fmt.Errorf("list deposits: %w", err)
	}
	return deposits, nil
}
