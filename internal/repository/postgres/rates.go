package postgres

import (
	"context"
	"fmt"

	"github.com/parkos/parklot/internal/domain/models"
)

// ActiveRates returns the current rate card as a vehicle-type -> daily-rate map.
func (s *Store) ActiveRates(ctx context.Context) (map[string]float64, error) {
	query := `SELECT vehicle_type, daily_rate FROM vehicle_rates WHERE is_active`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query rates: %w", err)
	}
	defer rows.Close()

	rates := make(map[string]float64)
	for rows.Next() {
		var vehicleType string
		var rate float64
		if err := rows.Scan(&vehicleType, &rate); err != nil {
			return nil, fmt.Errorf("scan rate: %w", err)
		}
		rates[vehicleType] = rate
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rates: %w", err)
	}
	return rates, nil
}

// ListRates returns the full rate card including inactive types.
func (s *Store) ListRates(ctx context.Context) ([]models.VehicleRate, error) {
	query := `SELECT vehicle_type, daily_rate, is_active, created_at
		FROM vehicle_rates ORDER BY vehicle_type`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query rate card: %w", err)
	}
	defer rows.Close()

	var out []models.VehicleRate
	for rows.Next() {
		var r models.VehicleRate
		if err := rows.Scan(&r.VehicleType, &r.DailyRate, &r.IsActive, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan rate card row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rate card: %w", err)
	}
	return out, nil
}

// UpsertRate creates or updates one vehicle type's rate and audit-logs the change.
func (s *Store) UpsertRate(ctx context.Context, rate models.VehicleRate) error {
	return s.WithTx(ctx, func(ctx context.Context, tx DBTX) error {
		query := `INSERT INTO vehicle_rates (vehicle_type, daily_rate, is_active)
			VALUES ($1, $2, $3)
			ON CONFLICT (vehicle_type)
			DO UPDATE SET daily_rate = EXCLUDED.daily_rate, is_active = EXCLUDED.is_active`

		if _, err := tx.ExecContext(ctx, query, rate.VehicleType, rate.DailyRate, rate.IsActive); err != nil {
			return fmt.Errorf("upsert rate: %w", err)
		}
		return insertAudit(ctx, tx, models.AuditOpUpdate, "vehicle_rates", rate.VehicleType, "", rate)
	})
}
