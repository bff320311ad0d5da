// Package reports builds daily and per-shift summaries and exports them.
package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/parkos/parklot/internal/domain/models"
	"github.com/parkos/parklot/internal/reconcile"
)

// Store is the persistence surface the service needs.
type Store interface {
	EntriesForDay(ctx context.Context, day time.Time, loc *time.Location) ([]models.ParkingEntry, error)
	GetShift(ctx context.Context, id uuid.UUID) (*models.ShiftSession, error)
	EntriesForShift(ctx context.Context, shiftID uuid.UUID) ([]models.ParkingEntry, error)
	ExpenseTotal(ctx context.Context, shiftID uuid.UUID) (float64, error)
	DepositCashTotal(ctx context.Context, shiftID uuid.UUID) (float64, error)
}

// SheetWriter appends report rows to a spreadsheet. Nil disables export.
type SheetWriter interface {
	WriteRow(ctx context.Context, sheetRange string, values []interface{}) error
}

const dailyReportRange = "Daily!A:J"

// Service exposes lot analytics.
type Service struct {
	store    Store
	sheets   SheetWriter
	location *time.Location
	logger   *zap.Logger
}

// NewService wires a new reporting service instance.
func NewService(store Store, sheets SheetWriter, location *time.Location, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if location == nil {
		location = time.Local
	}
	return &Service{store: store, sheets: sheets, location: location, logger: logger}
}

// BuildDailyReport folds a day's entries into the summary counters. Income
// counts exited, paid entries only; unpaid fees surface as a vehicle count.
func BuildDailyReport(date time.Time, entries []models.ParkingEntry) models.DailyReport {
	report := models.DailyReport{
		Date:         date,
		VehicleTypes: make(map[string]models.VehicleTypeStats),
	}

	for _, e := range entries {
		report.TotalEntries++
		switch e.Status {
		case models.EntryStatusParked:
			report.ParkedVehicles++
		case models.EntryStatusExited:
			report.ExitedVehicles++
		case models.EntryStatusOverstay:
			report.OverstayCount++
		}

		stats := report.VehicleTypes[e.VehicleType]
		stats.Count++

		if e.Status == models.EntryStatusExited && e.PaymentStatus == models.PaymentStatusPaid {
			report.TotalIncome += e.ParkingFee
			stats.Revenue += e.ParkingFee
		}
		if e.PaymentStatus == models.PaymentStatusUnpaid {
			report.UnpaidVehicles++
		}

		report.VehicleTypes[e.VehicleType] = stats
	}

	return report
}

// Daily aggregates one calendar day of lot activity.
func (s *Service) Daily(ctx context.Context, date time.Time) (*models.DailyReport, error) {
	entries, err := s.store.EntriesForDay(ctx, date, s.location)
	if err != nil {
		return nil, fmt.Errorf("load entries for day: %w", err)
	}
	report := BuildDailyReport(date, entries)
	return &report, nil
}

// Shift summarizes a finished (or running) shift's ledgers.
func (s *Service) Shift(ctx context.Context, id uuid.UUID) (*models.ShiftReport, error) {
	shift, err := s.store.GetShift(ctx, id)
	if err != nil {
		return nil, err
	}

	entries, err := s.store.EntriesForShift(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load shift entries: %w", err)
	}
	revenue := reconcile.AggregateRevenue(entries)

	expenses, err := s.store.ExpenseTotal(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("sum expenses: %w", err)
	}
	deposits, err := s.store.DepositCashTotal(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("sum deposits: %w", err)
	}

	return &models.ShiftReport{
		Shift:             *shift,
		CashRevenue:       revenue.CashRevenue,
		DigitalRevenue:    revenue.DigitalRevenue,
		VehiclesProcessed: revenue.VehiclesProcessed,
		TotalExpenses:     expenses,
		TotalCashDeposits: deposits,
		ExpectedCash: reconcile.ExpectedCash(reconcile.Inputs{
			OpeningCash:   shift.OpeningCashAmount,
			CashRevenue:   revenue.CashRevenue,
			TotalExpenses: expenses,
			CashDeposits:  deposits,
		}),
	}, nil
}

// ExportDaily appends the day's report as one spreadsheet row.
func (s *Service) ExportDaily(ctx context.Context, date time.Time) error {
	if s.sheets == nil {
		return nil
	}

	report, err := s.Daily(ctx, date)
	if err != nil {
		return err
	}

	row := []interface{}{
		report.Date.Format(time.DateOnly),
		report.TotalEntries,
		report.ParkedVehicles,
		report.ExitedVehicles,
		report.OverstayCount,
		report.TotalIncome,
		report.UnpaidVehicles,
	}
	if err := s.sheets.WriteRow(ctx, dailyReportRange, row); err != nil {
		return fmt.Errorf("export daily report: %w", err)
	}

	s.logger.Info("daily report exported", zap.String("date", report.Date.Format(time.DateOnly)))
	return nil
}
