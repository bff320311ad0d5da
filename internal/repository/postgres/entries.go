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

const entryColumns = `id, serial_number, transport_name, vehicle_type, vehicle_number,
	driver_name, driver_phone, notes, entry_time, exit_time, status, parking_fee,
	payment_status, payment_type, shift_session_id, created_by, last_modified`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*models.ParkingEntry, error) {
	var e models.ParkingEntry
	var exitTime sql.NullTime
	var shiftID uuid.NullUUID

	err := row.Scan(&e.ID, &e.Serial, &e.TransportName, &e.VehicleType, &e.VehicleNumber,
		&e.DriverName, &e.DriverPhone, &e.Notes, &e.EntryTime, &exitTime, &e.Status,
		&e.ParkingFee, &e.PaymentStatus, &e.PaymentType, &shiftID, &e.CreatedBy, &e.LastModified)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("scan parking entry: %w", err)
	}

	if exitTime.Valid {
		e.ExitTime = &exitTime.Time
	}
	if shiftID.Valid {
		id := shiftID.UUID
		e.ShiftSessionID = &id
	}
	return &e, nil
}

func queryEntries(ctx context.Context, q DBTX, query string, args ...any) ([]models.ParkingEntry, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query parking entries: %w", err)
	}
	defer rows.Close()

	var out []models.ParkingEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate parking entries: %w", err)
	}
	return out, nil
}

// CreateEntry inserts a new parking entry and writes the matching audit row
// in the same transaction. The serial number comes from the column's identity
// sequence, so concurrent registrations never collide.
func (s *Store) CreateEntry(ctx context.Context, entry *models.ParkingEntry) error {
	return s.WithTx(ctx, func(ctx context.Context, tx DBTX) error {
		query := `INSERT INTO parking_entries
			(id, transport_name, vehicle_type, vehicle_number, driver_name,
			 driver_phone, notes, entry_time, status, parking_fee, payment_status,
			 payment_type, created_by, last_modified)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
			RETURNING serial_number`

		err := tx.QueryRowContext(ctx, query, entry.ID, entry.TransportName, entry.VehicleType,
			entry.VehicleNumber, entry.DriverName, entry.DriverPhone, entry.Notes,
			entry.EntryTime, entry.Status, entry.ParkingFee, entry.PaymentStatus,
			entry.PaymentType, entry.CreatedBy, entry.LastModified).Scan(&entry.Serial)
		if err != nil {
			return fmt.Errorf("insert parking entry: %w", err)
		}

		return insertAudit(ctx, tx, models.AuditOpInsert, "parking_entries", entry.ID.String(), "", entry)
	})
}

// GetEntry fetches one entry by id.
func (s *Store) GetEntry(ctx context.Context, id uuid.UUID) (*models.ParkingEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM parking_entries WHERE id = $1`
	return scanEntry(s.db.QueryRowContext(ctx, query, id))
}

// EntryFilter narrows ListEntries. Zero values mean "no filter".
type EntryFilter struct {
	Status        string
	VehicleNumber string
}

// ListEntries returns entries newest-first, optionally filtered.
func (s *Store) ListEntries(ctx context.Context, filter EntryFilter) ([]models.ParkingEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM parking_entries`
	var args []any
	var where []string

	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.VehicleNumber != "" {
		args = append(args, models.NormalizeVehicleNumber(filter.VehicleNumber))
		where = append(where, fmt.Sprintf("vehicle_number = $%d", len(args)))
	}
	for i, cond := range where {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY entry_time DESC"

	return queryEntries(ctx, s.db, query, args...)
}

// FindUnexitedByVehicle returns the still-parked (or overstayed) entry for a
// plate, or models.ErrNotFound.
func (s *Store) FindUnexitedByVehicle(ctx context.Context, vehicleNumber string) (*models.ParkingEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM parking_entries
		WHERE vehicle_number = $1 AND status <> 'Exited'
		ORDER BY entry_time DESC LIMIT 1`
	return scanEntry(s.db.QueryRowContext(ctx, query, models.NormalizeVehicleNumber(vehicleNumber)))
}

// RecordExit finalizes an entry: exit time, fee, payment details, shift link
// and status move together with the audit row, or not at all.
func (s *Store) RecordExit(ctx context.Context, before, after *models.ParkingEntry) error {
	return s.WithTx(ctx, func(ctx context.Context, tx DBTX) error {
		query := `UPDATE parking_entries
			SET exit_time = $2, status = $3, parking_fee = $4, payment_status = $5,
			    payment_type = $6, shift_session_id = $7, last_modified = $8
			WHERE id = $1 AND status <> 'Exited'`

		res, err := tx.ExecContext(ctx, query, after.ID, after.ExitTime, after.Status,
			after.ParkingFee, after.PaymentStatus, after.PaymentType, after.ShiftSessionID,
			after.LastModified)
		if err != nil {
			return fmt.Errorf("record exit: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("record exit rows affected: %w", err)
		}
		if affected == 0 {
			return models.ErrNotFound
		}

		return insertAudit(ctx, tx, models.AuditOpUpdate, "parking_entries", after.ID.String(), before, after)
	})
}

// EntriesForShift lists entries linked to the shift, for revenue aggregation
// and shift reports.
func (s *Store) EntriesForShift(ctx context.Context, shiftID uuid.UUID) ([]models.ParkingEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM parking_entries
		WHERE shift_session_id = $1 ORDER BY exit_time`
	return queryEntries(ctx, s.db, query, shiftID)
}

// EntriesForDay lists entries whose entry time falls on the given calendar
// day in the supplied location.
func (s *Store) EntriesForDay(ctx context.Context, day time.Time, loc *time.Location) ([]models.ParkingEntry, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
	end := start.Add(24 * time.Hour)

	query := `SELECT ` + entryColumns + ` FROM parking_entries
		WHERE entry_time >= $1 AND entry_time < $2 ORDER BY entry_time`
	return queryEntries(ctx, s.db, query, start, end)
}

// MarkOverstayed promotes parked entries older than the cutoff to Overstay
// and returns the affected entries.
func (s *Store) MarkOverstayed(ctx context.Context, cutoff time.Time) ([]models.ParkingEntry, error) {
	var marked []models.ParkingEntry
	err := s.WithTx(ctx, func(ctx context.Context, tx DBTX) error {
		query := `UPDATE parking_entries
			SET status = 'Overstay', last_modified = now()
			WHERE status = 'Parked' AND entry_time < $1
			RETURNING ` + entryColumns

		var err error
		marked, err = queryEntries(ctx, tx, query, cutoff)
		if err != nil {
			return err
		}
		for i := range marked {
			if err := insertAudit(ctx, tx, models.AuditOpUpdate, "parking_entries", marked[i].ID.String(), "", &marked[i]); err != nil {
				return err
			}
		}
		return nil
	})
	return marked, err
}
