// Package shifts drives the shift lifecycle: start, end, handover and
// emergency end, plus the shift-scoped expense and deposit ledgers and the
// live cash reconciliation they feed.
package shifts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/parkos/parklot/internal/domain/models"
	"github.com/parkos/parklot/internal/reconcile"
)

// Store is the persistence surface the service needs. *postgres.Store
// satisfies it; tests substitute a fake.
type Store interface {
	GetActiveShift(ctx context.Context) (*models.ShiftSession, error)
	GetShift(ctx context.Context, id uuid.UUID) (*models.ShiftSession, error)
	GetLastEndedShift(ctx context.Context) (*models.ShiftSession, error)
	StartShift(ctx context.Context, shift *models.ShiftSession) error
	CloseShift(ctx context.Context, id uuid.UUID, closingCash float64, endTime time.Time, status, notes string) error
	HandoverShift(ctx context.Context, currentID uuid.UUID, closingCash float64, endTime time.Time, notes string, next *models.ShiftSession) error
	EntriesForShift(ctx context.Context, shiftID uuid.UUID) ([]models.ParkingEntry, error)
	ExpenseTotal(ctx context.Context, shiftID uuid.UUID) (float64, error)
	DepositCashTotal(ctx context.Context, shiftID uuid.UUID) (float64, error)
	CreateExpense(ctx context.Context, e *models.Expense) error
	DeleteExpense(ctx context.Context, id uuid.UUID) error
	ListExpenses(ctx context.Context, shiftID uuid.UUID) ([]models.Expense, error)
	CreateDeposit(ctx context.Context, d *models.Deposit) error
	ListDeposits(ctx context.Context, shiftID uuid.UUID) ([]models.Deposit, error)
}

// Notifier delivers out-of-band alerts. A nil Notifier disables alerting.
type Notifier interface {
	SendAlert(ctx context.Context, message string) error
}

// Service orchestrates shift state transitions and cash reconciliation.
type Service struct {
	store    Store
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires a new shift service instance.
func NewService(store Store, notifier Notifier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, notifier: notifier, logger: logger, now: time.Now}
}

// Active returns the currently active shift.
func (s *Service) Active(ctx context.Context) (*models.ShiftSession, error) {
	shift, err := s.store.GetActiveShift(ctx)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNoActiveShift
		}
		return nil, fmt.Errorf("load active shift: %w", err)
	}
	return shift, nil
}

// SuggestedOpeningCash proposes the previous shift's closing cash as the next
// opening amount. Zero when no shift has ever ended.
func (s *Service) SuggestedOpeningCash(ctx context.Context) (float64, error) {
	last, err := s.store.GetLastEndedShift(ctx)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("load last ended shift: %w", err)
	}
	if last.ClosingCashAmount == nil {
		return 0, nil
	}
	return *last.ClosingCashAmount, nil
}

// StartRequest carries the inputs for starting a shift.
type StartRequest struct {
	EmployeeID   string
	EmployeeName string
	OpeningCash  float64
	Notes        string
}

// Start opens a new shift. Fails with models.ErrShiftAlreadyActive when a
// shift is already running; the check and insert share one transaction in
// the store.
func (s *Service) Start(ctx context.Context, req StartRequest) (*models.ShiftSession, error) {
	if strings.TrimSpace(req.EmployeeName) == "" {
		return nil, &models.ValidationError{Field: "employee_name", Message: "operator name is required"}
	}
	if err := models.ValidateCashAmount("opening_cash_amount", req.OpeningCash); err != nil {
		return nil, err
	}

	shift := &models.ShiftSession{
		ID:                uuid.New(),
		EmployeeID:        req.EmployeeID,
		EmployeeName:      strings.TrimSpace(req.EmployeeName),
		ShiftStartTime:    s.now(),
		OpeningCashAmount: req.OpeningCash,
		Status:            models.ShiftStatusActive,
		ShiftNotes:        req.Notes,
	}

	if err := s.store.StartShift(ctx, shift); err != nil {
		if errors.Is(err, models.ErrShiftAlreadyActive) {
			return nil, models.ErrShiftAlreadyActive
		}
		return nil, fmt.Errorf("start shift: %w", err)
	}

	s.logger.Info("shift started",
		zap.String("shift_id", shift.ID.String()),
		zap.String("employee", shift.EmployeeName),
		zap.Float64("opening_cash", shift.OpeningCashAmount))
	return shift, nil
}

// inputs loads the reconciliation figures for a shift. Any load failure makes
// reconciliation unavailable rather than silently zero.
func (s *Service) inputs(ctx context.Context, shift *models.ShiftSession) (reconcile.Inputs, error) {
	entries, err := s.store.EntriesForShift(ctx, shift.ID)
	if err != nil {
		return reconcile.Inputs{}, fmt.Errorf("reconciliation unavailable: load shift entries: %w", err)
	}
	if unknown := reconcile.UnknownPaymentTypes(entries); len(unknown) > 0 {
		s.logger.Warn("entries with unknown payment type excluded from revenue buckets",
			zap.String("shift_id", shift.ID.String()),
			zap.Strings("payment_types", unknown))
	}
	revenue := reconcile.AggregateRevenue(entries)

	expenses, err := s.store.ExpenseTotal(ctx, shift.ID)
	if err != nil {
		return reconcile.Inputs{}, fmt.Errorf("reconciliation unavailable: sum expenses: %w", err)
	}
	deposits, err := s.store.DepositCashTotal(ctx, shift.ID)
	if err != nil {
		return reconcile.Inputs{}, fmt.Errorf("reconciliation unavailable: sum deposits: %w", err)
	}

	return reconcile.Inputs{
		OpeningCash:   shift.OpeningCashAmount,
		CashRevenue:   revenue.CashRevenue,
		TotalExpenses: expenses,
		CashDeposits:  deposits,
	}, nil
}

// Reconcile compares an entered drawer count against the active shift's
// expected cash.
func (s *Service) Reconcile(ctx context.Context, enteredCash float64) (*reconcile.Result, error) {
	shift, err := s.Active(ctx)
	if err != nil {
		return nil, err
	}
	in, err := s.inputs(ctx, shift)
	if err != nil {
		return nil, err
	}
	result := reconcile.Compare(in, enteredCash)
	return &result, nil
}

// CashOnHand returns the expected drawer amount for the active shift.
func (s *Service) CashOnHand(ctx context.Context) (float64, error) {
	shift, err := s.Active(ctx)
	if err != nil {
		return 0, err
	}
	in, err := s.inputs(ctx, shift)
	if err != nil {
		return 0, err
	}
	return reconcile.ExpectedCash(in), nil
}

// Actor identifies the operator performing a shift mutation.
type Actor struct {
	OperatorID string
	Username   string
	Admin      bool
}

// checkOwnership rejects mutations of a shift the actor does not own. Admins
// are exempt; shifts without a recorded owner accept any actor.
func checkOwnership(shift *models.ShiftSession, actor Actor) error {
	if actor.Admin || actor.OperatorID == "" || shift.EmployeeID == "" {
		return nil
	}
	if shift.EmployeeID != actor.OperatorID {
		return models.ErrNotShiftOwner
	}
	return nil
}

// EndRequest carries the inputs for ending a shift.
type EndRequest struct {
	Actor              Actor
	EnteredClosingCash float64
	Notes              string
	// ConfirmDiscrepancy acknowledges a significant discrepancy; without it,
	// a significant result blocks the normal end.
	ConfirmDiscrepancy bool
	// Emergency skips the confirmation gate entirely and tolerates
	// unavailable reconciliation data.
	Emergency bool
}

// EndResult reports what was persisted at shift end.
type EndResult struct {
	Shift          *models.ShiftSession `json:"shift"`
	Reconciliation *reconcile.Result    `json:"reconciliation,omitempty"`
}

// End closes the active shift. Only the owning operator or an admin may end
// it. A significant discrepancy returns models.ErrUnconfirmedDiscrepancy
// alongside the reconciliation result until the caller confirms; an emergency
// end bypasses the gate. Persistence failures leave the shift active.
func (s *Service) End(ctx context.Context, req EndRequest) (*EndResult, error) {
	if err := models.ValidateCashAmount("closing_cash_amount", req.EnteredClosingCash); err != nil {
		return nil, err
	}

	shift, err := s.Active(ctx)
	if err != nil {
		return nil, err
	}
	if err := checkOwnership(shift, req.Actor); err != nil {
		return nil, err
	}

	var result *reconcile.Result
	in, err := s.inputs(ctx, shift)
	if err != nil {
		if !req.Emergency {
			return nil, err
		}
		// An emergency end must not be blocked by an unreachable ledger; the
		// missing reconciliation is recorded in the notes instead.
		s.logger.Error("emergency end without reconciliation data", zap.Error(err))
	} else {
		r := reconcile.Compare(in, req.EnteredClosingCash)
		result = &r
	}

	if result != nil && result.IsSignificant() && !req.Emergency && !req.ConfirmDiscrepancy {
		return &EndResult{Reconciliation: result}, models.ErrUnconfirmedDiscrepancy
	}

	status := models.ShiftStatusCompleted
	if req.Emergency {
		status = models.ShiftStatusEmergencyEnded
	}

	endTime := s.now()
	notes := composeClosingNotes(shift.ShiftNotes, req.Notes, result)

	if err := s.store.CloseShift(ctx, shift.ID, req.EnteredClosingCash, endTime, status, notes); err != nil {
		return nil, fmt.Errorf("end shift: %w", err)
	}

	shift.ClosingCashAmount = &req.EnteredClosingCash
	shift.ShiftEndTime = &endTime
	shift.Status = status
	shift.ShiftNotes = notes

	s.logger.Info("shift ended",
		zap.String("shift_id", shift.ID.String()),
		zap.String("status", status),
		zap.Float64("closing_cash", req.EnteredClosingCash))

	if result != nil && result.IsSignificant() {
		s.alert(ctx, fmt.Sprintf(
			"Shift %s ended by %s with significant cash discrepancy: expected %.2f, counted %.2f (difference %+.2f)",
			shift.ID, shift.EmployeeName, result.ExpectedClosingCash, result.EnteredClosingCash, result.Discrepancy))
	}

	return &EndResult{Shift: shift, Reconciliation: result}, nil
}

// composeClosingNotes appends the audit annotation for abnormal outcomes to
// whatever the operator wrote.
func composeClosingNotes(existing, added string, result *reconcile.Result) string {
	notes := joinNotes(existing, added)
	switch {
	case result == nil:
		notes = joinNotes(notes, "reconciliation unavailable at shift end")
	case result.IsSignificant():
		direction := "shortage"
		if result.IsExcess() {
			direction = "excess"
		}
		notes = joinNotes(notes, fmt.Sprintf("CASH DISCREPANCY (%s): expected %.2f, counted %.2f, difference %+.2f",
			direction, result.ExpectedClosingCash, result.EnteredClosingCash, result.Discrepancy))
	}
	return notes
}

func joinNotes(parts ...string) string {
	joined := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			joined = append(joined, strings.TrimSpace(p))
		}
	}
	return strings.Join(joined, " | ")
}

// HandoverRequest names the incoming operator.
type HandoverRequest struct {
	Actor            Actor
	NextEmployeeID   string
	NextEmployeeName string
}

// Handover ends the active shift and starts the successor in one
// transaction, carrying the computed cash on hand forward as the new opening
// amount. Only the outgoing operator or an admin may hand over.
func (s *Service) Handover(ctx context.Context, req HandoverRequest) (*models.ShiftSession, error) {
	if strings.TrimSpace(req.NextEmployeeName) == "" {
		return nil, &models.ValidationError{Field: "employee_name", Message: "incoming operator name is required"}
	}

	current, err := s.Active(ctx)
	if err != nil {
		return nil, err
	}
	if err := checkOwnership(current, req.Actor); err != nil {
		return nil, err
	}

	in, err := s.inputs(ctx, current)
	if err != nil {
		return nil, err
	}
	cashOnHand := reconcile.ExpectedCash(in)

	endTime := s.now()
	next := &models.ShiftSession{
		ID:                uuid.New(),
		EmployeeID:        req.NextEmployeeID,
		EmployeeName:      strings.TrimSpace(req.NextEmployeeName),
		ShiftStartTime:    endTime,
		OpeningCashAmount: cashOnHand,
		Status:            models.ShiftStatusActive,
	}

	notes := joinNotes(current.ShiftNotes, fmt.Sprintf("handed over to %s", next.EmployeeName))

	if err := s.store.HandoverShift(ctx, current.ID, cashOnHand, endTime, notes, next); err != nil {
		return nil, fmt.Errorf("handover shift: %w", err)
	}

	s.logger.Info("shift handed over",
		zap.String("from_shift", current.ID.String()),
		zap.String("to_shift", next.ID.String()),
		zap.Float64("carried_cash", cashOnHand))
	return next, nil
}

func (s *Service) alert(ctx context.Context, message string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.SendAlert(ctx, message); err != nil {
		s.logger.Error("failed to send alert", zap.Error(err))
	}
}
