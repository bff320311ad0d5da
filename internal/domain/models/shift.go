package models

import (
	"time"

	"github.com/google/uuid"
)

// Shift statuses. A shift is mutable only while active; completed,
// handover and emergency_ended shifts are immutable historical records.
const (
	ShiftStatusActive         = "active"
	ShiftStatusCompleted      = "completed"
	ShiftStatusHandover       = "handover"
	ShiftStatusEmergencyEnded = "emergency_ended"
)

// ShiftSession is one operator's working period. At most one active shift
// exists at a time; the constraint is enforced transactionally at start and
// backed by a partial unique index in the schema.
type ShiftSession struct {
	ID                uuid.UUID  `json:"id"`
	EmployeeID        string     `json:"employee_id"`
	EmployeeName      string     `json:"employee_name"`
	ShiftStartTime    time.Time  `json:"shift_start_time"`
	ShiftEndTime      *time.Time `json:"shift_end_time,omitempty"`
	OpeningCashAmount float64    `json:"opening_cash_amount"`
	ClosingCashAmount *float64   `json:"closing_cash_amount,omitempty"`
	Status            string     `json:"status"`
	ShiftNotes        string     `json:"shift_notes"`
}

// Expense is a shift-scoped cash outflow. Deletable only while its shift is
// active; immutable afterwards.
type Expense struct {
	ID             uuid.UUID `json:"id"`
	ShiftSessionID uuid.UUID `json:"shift_session_id"`
	Category       string    `json:"expense_category"`
	Amount         float64   `json:"amount"`
	Description    string    `json:"description"`
	CreatedBy      string    `json:"created_by"`
	CreatedAt      time.Time `json:"created_at"`
}

// Deposit records cash physically removed from the drawer mid-shift,
// optionally alongside a digital settlement amount. Append-only.
type Deposit struct {
	ID             uuid.UUID `json:"id"`
	ShiftSessionID uuid.UUID `json:"shift_session_id"`
	CashAmount     float64   `json:"cash_amount"`
	DigitalAmount  float64   `json:"digital_amount"`
	Notes          string    `json:"notes"`
	CreatedBy      string    `json:"created_by"`
	CreatedAt      time.Time `json:"created_at"`
}
