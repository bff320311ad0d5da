package reports

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/parkos/parklot/internal/domain/models"
)

type fakeStore struct {
	shift      *models.ShiftSession
	dayEntries []models.ParkingEntry
	entries    []models.ParkingEntry
	expenses   float64
	deposits   float64
}

func (f *fakeStore) EntriesForDay(_ context.Context, _ time.Time, _ *time.Location) ([]models.ParkingEntry, error) {
	return f.dayEntries, nil
}

func (f *fakeStore) GetShift(_ context.Context, id uuid.UUID) (*models.ShiftSession, error) {
	if f.shift == nil || f.shift.ID != id {
		return nil, models.ErrNotFound
	}
	return f.shift, nil
}

func (f *fakeStore) EntriesForShift(_ context.Context, _ uuid.UUID) ([]models.ParkingEntry, error) {
	return f.entries, nil
}

func (f *fakeStore) ExpenseTotal(_ context.Context, _ uuid.UUID) (float64, error) {
	return f.expenses, nil
}

func (f *fakeStore) DepositCashTotal(_ context.Context, _ uuid.UUID) (float64, error) {
	return f.deposits, nil
}

type fakeSheet struct {
	rows [][]interface{}
}

func (f *fakeSheet) WriteRow(_ context.Context, _ string, values []interface{}) error {
	f.rows = append(f.rows, values)
	return nil
}

func exitedPaid(vehicleType string, fee float64) models.ParkingEntry {
	exit := time.Now()
	return models.ParkingEntry{
		VehicleType:   vehicleType,
		Status:        models.EntryStatusExited,
		ExitTime:      &exit,
		ParkingFee:    fee,
		PaymentStatus: models.PaymentStatusPaid,
		PaymentType:   models.PaymentTypeCash,
	}
}

func TestBuildDailyReport(t *testing.T) {
	entries := []models.ParkingEntry{
		exitedPaid("4 Wheeler", 100),
		exitedPaid("4 Wheeler", 200),
		exitedPaid("2 Wheeler", 50),
		{VehicleType: "Trailer", Status: models.EntryStatusParked, PaymentStatus: models.PaymentStatusUnpaid},
		{VehicleType: "6 Wheeler", Status: models.EntryStatusOverstay, PaymentStatus: models.PaymentStatusUnpaid},
	}

	report := BuildDailyReport(time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), entries)

	assert.Equal(t, 5, report.TotalEntries)
	assert.Equal(t, 1, report.ParkedVehicles)
	assert.Equal(t, 3, report.ExitedVehicles)
	assert.Equal(t, 1, report.OverstayCount)
	assert.Equal(t, 350.0, report.TotalIncome)
	assert.Equal(t, 2, report.UnpaidVehicles)

	assert.Equal(t, models.VehicleTypeStats{Count: 2, Revenue: 300}, report.VehicleTypes["4 Wheeler"])
	assert.Equal(t, models.VehicleTypeStats{Count: 1, Revenue: 50}, report.VehicleTypes["2 Wheeler"])
	// Parked and overstayed vehicles are counted but contribute no revenue.
	assert.Equal(t, models.VehicleTypeStats{Count: 1, Revenue: 0}, report.VehicleTypes["Trailer"])
}

func TestBuildDailyReportEmptyDay(t *testing.T) {
	report := BuildDailyReport(time.Now(), nil)

	assert.Zero(t, report.TotalEntries)
	assert.Zero(t, report.TotalIncome)
	assert.Empty(t, report.VehicleTypes)
}

func TestShiftReport(t *testing.T) {
	shiftID := uuid.New()
	store := &fakeStore{
		shift: &models.ShiftSession{ID: shiftID, OpeningCashAmount: 1000},
		entries: []models.ParkingEntry{
			exitedPaid("4 Wheeler", 300),
			func() models.ParkingEntry {
				e := exitedPaid("2 Wheeler", 120)
				e.PaymentType = models.PaymentTypeUPI
				return e
			}(),
		},
		expenses: 50,
		deposits: 200,
	}
	svc := NewService(store, nil, time.UTC, zap.NewNop())

	report, err := svc.Shift(context.Background(), shiftID)
	require.NoError(t, err)

	assert.Equal(t, 300.0, report.CashRevenue)
	assert.Equal(t, 120.0, report.DigitalRevenue)
	assert.Equal(t, 2, report.VehiclesProcessed)
	assert.Equal(t, 50.0, report.TotalExpenses)
	assert.Equal(t, 200.0, report.TotalCashDeposits)
	// 1000 + 300 - 50 - 200
	assert.Equal(t, 1050.0, report.ExpectedCash)
}

func TestShiftReportUnknownShift(t *testing.T) {
	svc := NewService(&fakeStore{}, nil, time.UTC, zap.NewNop())

	_, err := svc.Shift(context.Background(), uuid.New())
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestExportDaily(t *testing.T) {
	sheet := &fakeSheet{}
	store := &fakeStore{dayEntries: []models.ParkingEntry{exitedPaid("4 Wheeler", 100)}}
	svc := NewService(store, sheet, time.UTC, zap.NewNop())

	err := svc.ExportDaily(context.Background(), time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	require.Len(t, sheet.rows, 1)
	assert.Equal(t, "2026-03-14", sheet.rows[0][0])
	assert.Equal(t, 100.0, sheet.rows[0][5])
}

func TestExportDailyNoSheetConfigured(t *testing.T) {
	svc := NewService(&fakeStore{}, nil, time.UTC, zap.NewNop())

	assert.NoError(t, svc.ExportDaily(context.Background(), time.Now()))
}
