package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/parkos/parklot/internal/domain/models"
)

// CreateExpense records a shift-scoped outflow.
func (s *Store) CreateExpense(ctx context.Context, e *models.Expense) error {
	query := `INSERT INTO shift_expenses
		(id, shift_session_id, expense_category, amount, description, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := s.db.ExecContext(ctx, query, e.ID, e.ShiftSessionID, e.Category,
		e.Amount, e.Description, e.CreatedBy, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}
	return nil
}

// DeleteExpense removes an expense, but only while its shift is still active:
// ended shifts are immutable historical records. The deleted row is preserved
// in the audit log.
func (s *Store) DeleteExpense(ctx context.Context, id uuid.UUID) error {
	return s.WithTx(ctx, func(ctx context.Context, tx DBTX) error {
		query := `DELETE FROM shift_expenses e
			USING shift_sessions sh
			WHERE e.id = $1 AND sh.id = e.shift_session_id AND sh.status = 'active'
			RETURNING e.id, e.shift_session_id, e.expense_category, e.amount, e.description, e.created_by, e.created_at`

		var old models.Expense
		err := tx.QueryRowContext(ctx, query, id).Scan(&old.ID, &old.ShiftSessionID,
			&old.Category, &old.Amount, &old.Description, &old.CreatedBy, &old.CreatedAt)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return models.ErrNotFound
			}
			return fmt.Errorf("delete expense: %w", err)
		}

		return insertAudit(ctx, tx, models.AuditOpDelete, "shift_expenses", old.ID.String(), old, "")
	})
}

// ListExpenses returns the shift's expenses, newest first.
func (s *Store) ListExpenses(ctx context.Context, shiftID uuid.UUID) ([]models.Expense, error) {
	query := `SELECT id, shift_session_id, expense_category, amount, description, created_by, created_at
		FROM shift_expenses WHERE shift_session_id = $1 ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, shiftID)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	var out []models.Expense
	for rows.Next() {
		var e models.Expense
		if err := rows.Scan(&e.ID, &e.ShiftSessionID, &e.Category, &e.Amount, &e.Description, &e.CreatedBy, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return out, nil
}
