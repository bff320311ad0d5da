package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/parkos/parklot/internal/domain/models"
)

const shiftColumns = `id, employee_id, employee_name, shift_start_time, shift_end_time,
	opening_cash_amount, closing_cash_amount, status, shift_notes`

func scanShift(row *sql.Row) (*models.ShiftSession, error) {
	var s models.ShiftSession
	var endTime sql.NullTime
	var closing sql.NullFloat64

	err := row.Scan(&s.ID, &s.EmployeeID, &s.EmployeeName, &s.ShiftStartTime, &endTime,
		&s.OpeningCashAmount, &closing, &s.Status, &s.ShiftNotes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("scan shift: %w", err)
	}

	if endTime.Valid {
		s.ShiftEndTime = &endTime.Time
	}
	if closing.Valid {
		s.ClosingCashAmount = &closing.Float64
	}
	return &s, nil
}

// GetActiveShift returns the single active shift, or models.ErrNotFound.
func (s *Store) GetActiveShift(ctx context.Context) (*models.ShiftSession, error) {
	return getActiveShift(ctx, s.db, false)
}

func getActiveShift(ctx context.Context, q DBTX, forUpdate bool) (*models.ShiftSession, error) {
	query := `SELECT ` + shiftColumns + ` FROM shift_sessions WHERE status = 'active'`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	return scanShift(q.QueryRowContext(ctx, query))
}

// GetShift fetches one shift by id.
func (s *Store) GetShift(ctx context.Context, id uuid.UUID) (*models.ShiftSession, error) {
	query := `SELECT ` + shiftColumns + ` FROM shift_sessions WHERE id = $1`
	return scanShift(s.db.QueryRowContext(ctx, query, id))
}

// GetLastEndedShift returns the most recently ended shift, used to suggest
// the next opening cash amount. models.ErrNotFound when no shift ever ended.
func (s *Store) GetLastEndedShift(ctx context.Context) (*models.ShiftSession, error) {
	query := `SELECT ` + shiftColumns + ` FROM shift_sessions
		WHERE shift_end_time IS NOT NULL
		ORDER BY shift_end_time DESC LIMIT 1`
	return scanShift(s.db.QueryRowContext(ctx, query))
}

// StartShift inserts a new active shift. The existing-active check and the
// insert share one transaction; the partial unique index on status backs the
// same invariant at the schema level.
func (s *Store) StartShift(ctx context.Context, shift *models.ShiftSession) error {
	return s.WithTx(ctx, func(ctx context.Context, tx DBTX) error {
		_, err := getActiveShift(ctx, tx, true)
		if err == nil {
			return models.ErrShiftAlreadyActive
		}
		if !errors.Is(err, models.ErrNotFound) {
			return err
		}
		return insertShift(ctx, tx, shift)
	})
}

func insertShift(ctx context.Context, q DBTX, shift *models.ShiftSession) error {
	query := `INSERT INTO shift_sessions
		(id, employee_id, employee_name, shift_start_time, opening_cash_amount, status, shift_notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := q.ExecContext(ctx, query, shift.ID, shift.EmployeeID, shift.EmployeeName,
		shift.ShiftStartTime, shift.OpeningCashAmount, shift.Status, shift.ShiftNotes)
	if err != nil {
		return fmt.Errorf("insert shift: %w", err)
	}
	return insertAudit(ctx, q, models.AuditOpInsert, "shift_sessions", shift.ID.String(), "", shift)
}

func getShiftForUpdate(ctx context.Context, q DBTX, id uuid.UUID) (*models.ShiftSession, error) {
	query := `SELECT ` + shiftColumns + ` FROM shift_sessions WHERE id = $1 FOR UPDATE`
	return scanShift(q.QueryRowContext(ctx, query, id))
}

// CloseShift ends the given shift: closing cash, end time, final status and
// notes are written together, and only if the shift is still active. A shift
// ended by another operator in the meantime surfaces as ErrShiftNotActive.
func (s *Store) CloseShift(ctx context.Context, id uuid.UUID, closingCash float64, endTime time.Time, status, notes string) error {
	return s.WithTx(ctx, func(ctx context.Context, tx DBTX) error {
		return closeShift(ctx, tx, id, closingCash, endTime, status, notes)
	})
}

func closeShift(ctx context.Context, q DBTX, id uuid.UUID, closingCash float64, endTime time.Time, status, notes string) error {
	old, err := getShiftForUpdate(ctx, q, id)
	if err != nil {
		return err
	}
	if old.Status != models.ShiftStatusActive {
		return models.ErrShiftNotActive
	}

	query := `UPDATE shift_sessions
		SET closing_cash_amount = $2, shift_end_time = $3, status = $4, shift_notes = $5
		WHERE id = $1 AND status = 'active'`

	if _, err := q.ExecContext(ctx, query, id, closingCash, endTime, status, notes); err != nil {
		return fmt.Errorf("close shift: %w", err)
	}

	closed := *old
	closed.ClosingCashAmount = &closingCash
	closed.ShiftEndTime = &endTime
	closed.Status = status
	closed.ShiftNotes = notes
	return insertAudit(ctx, q, models.AuditOpUpdate, "shift_sessions", id.String(), old, closed)
}

// HandoverShift atomically ends the current shift with status handover and
// starts the next one. Either both writes land or neither does.
func (s *Store) HandoverShift(ctx context.Context, currentID uuid.UUID, closingCash float64, endTime time.Time, notes string, next *models.ShiftSession) error {
	return s.WithTx(ctx, func(ctx context.Context, tx DBTX) error {
		if err := closeShift(ctx, tx, currentID, closingCash, endTime, models.ShiftStatusHandover, notes); err != nil {
			return err
		}
		return insertShift(ctx, tx, next)
	})
}

// ExpenseTotal sums recorded expenses for the shift.
func (s *Store) ExpenseTotal(ctx context.Context, shiftID uuid.UUID) (float64, error) {
	var total float64
	query := `SELECT COALESCE(SUM(amount), 0) FROM shift_expenses WHERE shift_session_id = $1`
	if err := s.db.QueryRowContext(ctx, query, shiftID).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum expenses: %w", err)
	}
	return total, nil
}

// DepositCashTotal sums cash physically removed from the drawer during the shift.
func (s *Store) DepositCashTotal(ctx context.Context, shiftID uuid.UUID) (float64, error) {
	var total float64
	query := `SELECT COALESCE(SUM(cash_amount), 0) FROM shift_deposits WHERE shift_session_id = $1`
	if err := s.db.QueryRowContext(ctx, query, shiftID).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum deposits: %w", err)
	}
	return total, nil
}
