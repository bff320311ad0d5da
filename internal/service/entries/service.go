// Package entries handles vehicle registration and exit processing.
package entries

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/parkos/parklot/internal/domain/models"
	"github.com/parkos/parklot/internal/repository/postgres"
	"github.com/parkos/parklot/internal/tariff"
)

// Store is the persistence surface the service needs.
type Store interface {
	CreateEntry(ctx context.Context, entry *models.ParkingEntry) error
	GetEntry(ctx context.Context, id uuid.UUID) (*models.ParkingEntry, error)
	ListEntries(ctx context.Context, filter postgres.EntryFilter) ([]models.ParkingEntry, error)
	FindUnexitedByVehicle(ctx context.Context, vehicleNumber string) (*models.ParkingEntry, error)
	RecordExit(ctx context.Context, before, after *models.ParkingEntry) error
	MarkOverstayed(ctx context.Context, cutoff time.Time) ([]models.ParkingEntry, error)
	GetActiveShift(ctx context.Context) (*models.ShiftSession, error)
	ActiveRates(ctx context.Context) (map[string]float64, error)
	AuditTrail(ctx context.Context, tableName, recordID string) ([]models.AuditRecord, error)
}

// Service registers vehicles and processes exits.
type Service struct {
	store             Store
	logger            *zap.Logger
	overstayHours     float64
	penaltyMultiplier float64
	now               func() time.Time
}

// NewService wires a new entries service instance.
func NewService(store Store, overstayHours, penaltyMultiplier float64, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:             store,
		logger:            logger,
		overstayHours:     overstayHours,
		penaltyMultiplier: penaltyMultiplier,
		now:               time.Now,
	}
}

// RegisterRequest carries the inputs for a vehicle entering the lot.
type RegisterRequest struct {
	TransportName string
	VehicleType   string
	VehicleNumber string
	DriverName    string
	DriverPhone   string
	Notes         string
	CreatedBy     string
}

// Register validates and records a vehicle entering the lot.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*models.ParkingEntry, error) {
	if err := models.ValidateVehicleNumber(req.VehicleNumber); err != nil {
		return nil, err
	}
	if err := models.ValidateTransportName(req.TransportName); err != nil {
		return nil, err
	}

	rates, err := s.store.ActiveRates(ctx)
	if err != nil {
		return nil, fmt.Errorf("load rate card: %w", err)
	}
	if _, ok := rates[req.VehicleType]; !ok {
		return nil, &models.ValidationError{Field: "vehicle_type", Message: fmt.Sprintf("unknown vehicle type %q", req.VehicleType)}
	}

	plate := models.NormalizeVehicleNumber(req.VehicleNumber)
	if _, err := s.store.FindUnexitedByVehicle(ctx, plate); err == nil {
		return nil, models.ErrDuplicateEntry
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("check parked vehicle: %w", err)
	}

	now := s.now()
	entry := &models.ParkingEntry{
		ID:            uuid.New(),
		TransportName: strings.TrimSpace(req.TransportName),
		VehicleType:   req.VehicleType,
		VehicleNumber: plate,
		DriverName:    defaultNA(req.DriverName),
		DriverPhone:   defaultNA(req.DriverPhone),
		Notes:         req.Notes,
		EntryTime:     now,
		Status:        models.EntryStatusParked,
		PaymentStatus: models.PaymentStatusUnpaid,
		CreatedBy:     defaultSystem(req.CreatedBy),
		LastModified:  now,
	}

	if err := s.store.CreateEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("register entry: %w", err)
	}

	s.logger.Info("vehicle registered",
		zap.String("entry_id", entry.ID.String()),
		zap.String("vehicle_number", entry.VehicleNumber),
		zap.String("vehicle_type", entry.VehicleType))
	return entry, nil
}

// ExitRequest carries the inputs for a vehicle leaving the lot.
type ExitRequest struct {
	PaymentType   string
	PaymentStatus string
}

// ExitResult pairs the finalized entry with its fee breakdown.
type ExitResult struct {
	Entry       *models.ParkingEntry `json:"entry"`
	Calculation *tariff.Calculation  `json:"calculation"`
}

// ProcessExit prices the stay, records payment details and links the entry to
// the active shift. The entry update and its audit row persist atomically.
func (s *Service) ProcessExit(ctx context.Context, id uuid.UUID, req ExitRequest) (*ExitResult, error) {
	entry, err := s.store.GetEntry(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("load entry: %w", err)
	}
	if entry.Status == models.EntryStatusExited {
		return nil, &models.ValidationError{Field: "status", Message: "vehicle has already exited"}
	}

	switch req.PaymentType {
	case models.PaymentTypeCash, models.PaymentTypeCard, models.PaymentTypeUPI:
	default:
		return nil, &models.ValidationError{Field: "payment_type", Message: fmt.Sprintf("unknown payment type %q", req.PaymentType)}
	}
	paymentStatus := req.PaymentStatus
	if paymentStatus == "" {
		paymentStatus = models.PaymentStatusPaid
	}
	switch paymentStatus {
	case models.PaymentStatusPaid, models.PaymentStatusUnpaid, models.PaymentStatusPending:
	default:
		return nil, &models.ValidationError{Field: "payment_status", Message: fmt.Sprintf("invalid payment status %q", paymentStatus)}
	}

	rates, err := s.store.ActiveRates(ctx)
	if err != nil {
		return nil, fmt.Errorf("load rate card: %w", err)
	}
	calculator := tariff.NewCalculator(rates, tariff.WithOverstay(s.overstayHours, s.penaltyMultiplier))

	exitTime := s.now()
	calc, err := calculator.Calculate(entry.VehicleType, entry.EntryTime, exitTime)
	if err != nil {
		return nil, fmt.Errorf("calculate fee: %w", err)
	}

	var shiftID *uuid.UUID
	shift, err := s.store.GetActiveShift(ctx)
	switch {
	case err == nil:
		shiftID = &shift.ID
	case errors.Is(err, models.ErrNotFound):
		// Exits outside a shift stay unlinked; their revenue belongs to no drawer.
		s.logger.Warn("vehicle exit with no active shift", zap.String("entry_id", entry.ID.String()))
	default:
		return nil, fmt.Errorf("load active shift: %w", err)
	}

	before := *entry
	after := *entry
	after.ExitTime = &exitTime
	after.Status = models.EntryStatusExited
	after.ParkingFee = calc.TotalFee
	after.PaymentType = req.PaymentType
	after.PaymentStatus = paymentStatus
	after.ShiftSessionID = shiftID
	after.LastModified = exitTime

	if err := s.store.RecordExit(ctx, &before, &after); err != nil {
		return nil, fmt.Errorf("record exit: %w", err)
	}

	s.logger.Info("vehicle exited",
		zap.String("entry_id", after.ID.String()),
		zap.String("vehicle_number", after.VehicleNumber),
		zap.Float64("fee", after.ParkingFee),
		zap.String("payment_type", after.PaymentType))
	return &ExitResult{Entry: &after, Calculation: calc}, nil
}

// Detail pairs an entry with its live duration figures.
type Detail struct {
	Entry         *models.ParkingEntry `json:"entry"`
	DurationHours float64              `json:"duration_hours"`
	Overstayed    bool                 `json:"overstayed"`
}

// Get fetches one entry with how long the vehicle has been (or was) parked
// and whether it currently exceeds the overstay threshold.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Detail, error) {
	entry, err := s.store.GetEntry(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	return &Detail{
		Entry:         entry,
		DurationHours: entry.DurationHours(now),
		Overstayed:    entry.IsOverstayed(now, s.overstayHours),
	}, nil
}

// List returns entries, optionally filtered by status or plate.
func (s *Service) List(ctx context.Context, status, vehicleNumber string) ([]models.ParkingEntry, error) {
	return s.store.ListEntries(ctx, postgres.EntryFilter{Status: status, VehicleNumber: vehicleNumber})
}

// AuditTrail returns the change history of one entry, oldest first.
func (s *Service) AuditTrail(ctx context.Context, id uuid.UUID) ([]models.AuditRecord, error) {
	if _, err := s.store.GetEntry(ctx, id); err != nil {
		return nil, err
	}
	return s.store.AuditTrail(ctx, "parking_entries", id.String())
}

func defaultNA(v string) string {
	if strings.TrimSpace(v) == "" {
		return "N/A"
	}
	return strings.TrimSpace(v)
}

func defaultSystem(v string) string {
	if strings.TrimSpace(v) == "" {
		return "System"
	}
	return strings.TrimSpace(v)
}
