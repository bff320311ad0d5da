package shifts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parkos/parklot/internal/domain/models"
	"github.com/parkos/parklot/internal/reconcile"
)

// fakeStore is an in-memory Store for service tests.
type fakeStore struct {
	active       *models.ShiftSession
	lastEnded    *models.ShiftSession
	entries      []models.ParkingEntry
	expenses     []models.Expense
	deposits     []models.Deposit
	expenseTotal float64
	depositCash  float64

	entriesErr error
	closeErr   error

	started    []*models.ShiftSession
	closedWith []string // statuses passed to CloseShift/HandoverShift
	lastNotes  string
	handedOver *models.ShiftSession
}

func (f *fakeStore) GetActiveShift(ctx context.Context) (*models.ShiftSession, error) {
	if f.active == nil {
		return nil, models.ErrNotFound
	}
	return f.active, nil
}

func (f *fakeStore) GetShift(ctx context.Context, id uuid.UUID) (*models.ShiftSession, error) {
	if f.active != nil && f.active.ID == id {
		return f.active, nil
	}
	return nil, models.ErrNotFound
}

func (f *fakeStore) GetLastEndedShift(ctx context.Context) (*models.ShiftSession, error) {
	if f.lastEnded == nil {
		return nil, models.ErrNotFound
	}
	return f.lastEnded, nil
}

func (f *fakeStore) StartShift(ctx context.Context, shift *models.ShiftSession) error {
	if f.active != nil {
		return models.ErrShiftAlreadyActive
	}
	f.active = shift
	f.started = append(f.started, shift)
	return nil
}

func (f *fakeStore) CloseShift(ctx context.Context, id uuid.UUID, closingCash float64, endTime time.Time, status, notes string) error {
	if f.closeErr != nil {
		return f.closeErr
	}
	f.closedWith = append(f.closedWith, status)
	f.lastNotes = notes
	f.active = nil
	return nil
}

func (f *fakeStore) HandoverShift(ctx context.Context, currentID uuid.UUID, closingCash float64, endTime time.Time, notes string, next *models.ShiftSession) error {
	if f.closeErr != nil {
		return f.closeErr
	}
	f.closedWith = append(f.closedWith, models.ShiftStatusHandover)
	f.lastNotes = notes
	f.active = next
	f.handedOver = next
	return nil
}

func (f *fakeStore) EntriesForShift(ctx context.Context, shiftID uuid.UUID) ([]models.ParkingEntry, error) {
	if f.entriesErr != nil {
		return nil, f.entriesErr
	}
	return f.entries, nil
}

func (f *fakeStore) ExpenseTotal(ctx context.Context, shiftID uuid.UUID) (float64, error) {
	return f.expenseTotal, nil
}

func (f *fakeStore) DepositCashTotal(ctx context.Context, shiftID uuid.UUID) (float64, error) {
	return f.depositCash, nil
}

func (f *fakeStore) CreateExpense(ctx context.Context, e *models.Expense) error {
	f.expenses = append(f.expenses, *e)
	return nil
}

func (f *fakeStore) DeleteExpense(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (f *fakeStore) ListExpenses(ctx context.Context, shiftID uuid.UUID) ([]models.Expense, error) {
	return f.expenses, nil
}

func (f *fakeStore) CreateDeposit(ctx context.Context, d *models.Deposit) error {
	f.deposits = append(f.deposits, *d)
	return nil
}

func (f *fakeStore) ListDeposits(ctx context.Context, shiftID uuid.UUID) ([]models.Deposit, error) {
	return f.deposits, nil
}

type fakeNotifier struct {
	messages []string
}

func (f *fakeNotifier) SendAlert(ctx context.Context, message string) error {
	f.messages = append(f.messages, message)
	return nil
}

func activeShift(opening float64) *models.ShiftSession {
	return &models.ShiftSession{
		ID:                uuid.New(),
		EmployeeID:        "op-1",
		EmployeeName:      "Asha",
		ShiftStartTime:    time.Now().Add(-4 * time.Hour),
		OpeningCashAmount: opening,
		Status:            models.ShiftStatusActive,
	}
}

func cashEntry(fee float64) models.ParkingEntry {
	return models.ParkingEntry{
		Status:        models.EntryStatusExited,
		ParkingFee:    fee,
		PaymentType:   models.PaymentTypeCash,
		PaymentStatus: models.PaymentStatusPaid,
	}
}

func TestStart_RejectsWhenShiftActive(t *testing.T) {
	store := &fakeStore{active: activeShift(1000)}
	svc := NewService(store, nil, nil)

	_, err := svc.Start(context.Background(), StartRequest{EmployeeName: "Ravi", OpeningCash: 500})
	assert.ErrorIs(t, err, models.ErrShiftAlreadyActive)
	assert.Empty(t, store.started, "no second active row may be created")
}

func TestStart_Validation(t *testing.T) {
	svc := NewService(&fakeStore{}, nil, nil)

	_, err := svc.Start(context.Background(), StartRequest{EmployeeName: "  ", OpeningCash: 500})
	var verr *models.ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = svc.Start(context.Background(), StartRequest{EmployeeName: "Ravi", OpeningCash: -5})
	assert.ErrorAs(t, err, &verr)
}

func TestStart_Succeeds(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store, nil, nil)

	shift, err := svc.Start(context.Background(), StartRequest{EmployeeID: "op-2", EmployeeName: "Ravi", OpeningCash: 750})
	require.NoError(t, err)
	assert.Equal(t, models.ShiftStatusActive, shift.Status)
	assert.Equal(t, 750.0, shift.OpeningCashAmount)
	require.Len(t, store.started, 1)
}

func TestSuggestedOpeningCash(t *testing.T) {
	closing := 1250.0
	store := &fakeStore{lastEnded: &models.ShiftSession{ClosingCashAmount: &closing}}
	svc := NewService(store, nil, nil)

	got, err := svc.SuggestedOpeningCash(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1250.0, got)
}

func TestSuggestedOpeningCash_NoHistory(t *testing.T) {
	svc := NewService(&fakeStore{}, nil, nil)

	got, err := svc.SuggestedOpeningCash(context.Background())
	require.NoError(t, err)
	assert.Zero(t, got)
}

func TestReconcile_Scenario(t *testing.T) {
	store := &fakeStore{
		active:       activeShift(1000),
		entries:      []models.ParkingEntry{cashEntry(300), cashEntry(200)},
		expenseTotal: 50,
		depositCash:  200,
	}
	svc := NewService(store, nil, nil)

	result, err := svc.Reconcile(context.Background(), 1250)
	require.NoError(t, err)
	assert.Equal(t, 1250.0, result.ExpectedClosingCash)
	assert.Zero(t, result.Discrepancy)
	assert.Equal(t, reconcile.ClassMatch, result.Classification)
}

func TestReconcile_UnavailableOnFetchFailure(t *testing.T) {
	store := &fakeStore{
		active:     activeShift(1000),
		entriesErr: errors.New("connection refused"),
	}
	svc := NewService(store, nil, nil)

	_, err := svc.Reconcile(context.Background(), 1250)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reconciliation unavailable")
}

func TestEnd_NoActiveShift(t *testing.T) {
	svc := NewService(&fakeStore{}, nil, nil)

	_, err := svc.End(context.Background(), EndRequest{EnteredClosingCash: 100})
	assert.ErrorIs(t, err, models.ErrNoActiveShift)
}

func TestEnd_SignificantDiscrepancyRequiresConfirmation(t *testing.T) {
	store := &fakeStore{
		active:       activeShift(1000),
		entries:      []models.ParkingEntry{cashEntry(500)},
		expenseTotal: 50,
		depositCash:  200,
	}
	svc := NewService(store, nil, nil)

	// expected 1250, counted 1400: +150, significant.
	res, err := svc.End(context.Background(), EndRequest{EnteredClosingCash: 1400})
	assert.ErrorIs(t, err, models.ErrUnconfirmedDiscrepancy)
	require.NotNil(t, res.Reconciliation)
	assert.Equal(t, 150.0, res.Reconciliation.Discrepancy)
	assert.Empty(t, store.closedWith, "shift must stay active until confirmed")

	// Explicit confirmation passes the soft gate.
	res, err = svc.End(context.Background(), EndRequest{EnteredClosingCash: 1400, ConfirmDiscrepancy: true})
	require.NoError(t, err)
	assert.Equal(t, []string{models.ShiftStatusCompleted}, store.closedWith)
	assert.Contains(t, store.lastNotes, "CASH DISCREPANCY (excess)")
	assert.Equal(t, models.ShiftStatusCompleted, res.Shift.Status)
}

func TestEnd_ShortageAnnotation(t *testing.T) {
	store := &fakeStore{
		active:       activeShift(1000),
		entries:      []models.ParkingEntry{cashEntry(500)},
		expenseTotal: 50,
		depositCash:  200,
	}
	svc := NewService(store, nil, nil)

	res, err := svc.End(context.Background(), EndRequest{EnteredClosingCash: 1100, ConfirmDiscrepancy: true})
	require.NoError(t, err)
	assert.Equal(t, -150.0, res.Reconciliation.Discrepancy)
	assert.Contains(t, store.lastNotes, "CASH DISCREPANCY (shortage)")
}

func TestEnd_EmergencySkipsGate(t *testing.T) {
	store := &fakeStore{
		active:       activeShift(1000),
		entries:      []models.ParkingEntry{cashEntry(500)},
		expenseTotal: 50,
		depositCash:  200,
	}
	notifier := &fakeNotifier{}
	svc := NewService(store, notifier, nil)

	res, err := svc.End(context.Background(), EndRequest{EnteredClosingCash: 1400, Emergency: true})
	require.NoError(t, err)
	assert.Equal(t, []string{models.ShiftStatusEmergencyEnded}, store.closedWith)
	assert.Equal(t, models.ShiftStatusEmergencyEnded, res.Shift.Status)
	require.Len(t, notifier.messages, 1, "significant discrepancy still alerts")
}

func TestEnd_EmergencyToleratesUnavailableReconciliation(t *testing.T) {
	store := &fakeStore{
		active:     activeShift(1000),
		entriesErr: errors.New("connection refused"),
	}
	svc := NewService(store, nil, nil)

	res, err := svc.End(context.Background(), EndRequest{EnteredClosingCash: 900, Emergency: true})
	require.NoError(t, err)
	assert.Nil(t, res.Reconciliation)
	assert.Contains(t, store.lastNotes, "reconciliation unavailable")
}

func TestEnd_PersistenceFailureLeavesShiftActive(t *testing.T) {
	store := &fakeStore{
		active:   activeShift(1000),
		closeErr: errors.New("network down"),
	}
	svc := NewService(store, nil, nil)

	_, err := svc.End(context.Background(), EndRequest{EnteredClosingCash: 1000})
	require.Error(t, err)
	assert.NotNil(t, store.active, "failed persist must not transition state")
}

func TestHandover_CarriesCashForward(t *testing.T) {
	store := &fakeStore{
		active:       activeShift(1000),
		entries:      []models.ParkingEntry{cashEntry(500)},
		expenseTotal: 50,
		depositCash:  200,
	}
	svc := NewService(store, nil, nil)

	next, err := svc.Handover(context.Background(), HandoverRequest{NextEmployeeID: "op-2", NextEmployeeName: "Ravi"})
	require.NoError(t, err)
	assert.Equal(t, 1250.0, next.OpeningCashAmount)
	assert.Equal(t, models.ShiftStatusActive, next.Status)
	assert.Equal(t, []string{models.ShiftStatusHandover}, store.closedWith)
	assert.Contains(t, store.lastNotes, "handed over to Ravi")
}

func TestEnd_RejectsNonOwner(t *testing.T) {
	store := &fakeStore{active: activeShift(1000)}
	svc := NewService(store, nil, nil)

	_, err := svc.End(context.Background(), EndRequest{
		Actor:              Actor{OperatorID: "op-2", Username: "Ravi"},
		EnteredClosingCash: 1000,
	})
	assert.ErrorIs(t, err, models.ErrNotShiftOwner)
	assert.Empty(t, store.closedWith, "foreign operator must not close the shift")
}

func TestEnd_AllowsOwnerAndAdmin(t *testing.T) {
	store := &fakeStore{active: activeShift(1000)}
	svc := NewService(store, nil, nil)

	_, err := svc.End(context.Background(), EndRequest{
		Actor:              Actor{OperatorID: "op-1", Username: "Asha"},
		EnteredClosingCash: 1000,
	})
	require.NoError(t, err)

	store = &fakeStore{active: activeShift(1000)}
	svc = NewService(store, nil, nil)

	_, err = svc.End(context.Background(), EndRequest{
		Actor:              Actor{OperatorID: "admin-1", Username: "Boss", Admin: true},
		EnteredClosingCash: 1000,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{models.ShiftStatusCompleted}, store.closedWith)
}

func TestHandover_RejectsNonOwner(t *testing.T) {
	store := &fakeStore{active: activeShift(1000)}
	svc := NewService(store, nil, nil)

	_, err := svc.Handover(context.Background(), HandoverRequest{
		Actor:            Actor{OperatorID: "op-2", Username: "Ravi"},
		NextEmployeeID:   "op-2",
		NextEmployeeName: "Ravi",
	})
	assert.ErrorIs(t, err, models.ErrNotShiftOwner)
	assert.Empty(t, store.closedWith)
}

func TestHandover_AdminMayHandOverAnyShift(t *testing.T) {
	store := &fakeStore{active: activeShift(1000)}
	svc := NewService(store, nil, nil)

	next, err := svc.Handover(context.Background(), HandoverRequest{
		Actor:            Actor{OperatorID: "admin-1", Username: "Boss", Admin: true},
		NextEmployeeID:   "op-2",
		NextEmployeeName: "Ravi",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ravi", next.EmployeeName)
	assert.Equal(t, []string{models.ShiftStatusHandover}, store.closedWith)
}

func TestAddExpense_RequiresActiveShift(t *testing.T) {
	svc := NewService(&fakeStore{}, nil, nil)

	_, err := svc.AddExpense(context.Background(), ExpenseRequest{Category: "fuel", Amount: 20})
	assert.ErrorIs(t, err, models.ErrNoActiveShift)
}

func TestAddExpense_LinksToActiveShift(t *testing.T) {
	store := &fakeStore{active: activeShift(1000)}
	svc := NewService(store, nil, nil)

	expense, err := svc.AddExpense(context.Background(), ExpenseRequest{Category: "fuel", Amount: 20, CreatedBy: "Asha"})
	require.NoError(t, err)
	assert.Equal(t, store.active.ID, expense.ShiftSessionID)
	require.Len(t, store.expenses, 1)
}

func TestAddDeposit_RejectsNegative(t *testing.T) {
	store := &fakeStore{active: activeShift(1000)}
	svc := NewService(store, nil, nil)

	_, err := svc.AddDeposit(context.Background(), DepositRequest{CashAmount: -10})
	var verr *models.ValidationError
	assert.ErrorAs(t, err, &verr)
}
