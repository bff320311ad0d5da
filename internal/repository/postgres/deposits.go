package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/parkos/parklot/internal/domain/models"
)

// CreateDeposit records cash removed from the drawer. Deposits are
// append-only; there is no delete.
func (s *Store) CreateDeposit(ctx context.Context, d *models.Deposit) error {
	query := `INSERT INTO shift_deposits
		(id, shift_session_id, cash_amount, digital_amount, notes, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := s.db.ExecContext(ctx, query, d.ID, d.ShiftSessionID, d.CashAmount,
		d.DigitalAmount, d.Notes, d.CreatedBy, d.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert deposit: %w", err)
	}
	return nil
}

// ListDeposits returns the shift's deposits, newest first.
func (s *Store) ListDeposits(ctx context.Context, shiftID uuid.UUID) ([]models.Deposit, error) {
	query := `SELECT id, shift_session_id, cash_amount, digital_amount, notes, created_by, created_at
		FROM shift_deposits WHERE shift_session_id = $1 ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, shiftID)
	if err != nil {
		return nil, fmt.Errorf("query deposits: %w", err)
	}
	defer rows.Close()

	var out []models.Deposit
	for rows.Next() {
		var d models.Deposit
		if err := rows.Scan(&d.ID, &d.ShiftSessionID, &d.CashAmount, &d.DigitalAmount, &d.Notes, &d.CreatedBy, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan deposit: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate deposits: %w", err)
	}
	return out, nil
}
