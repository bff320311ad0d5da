package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Entry statuses. A vehicle is Parked from registration until exit; the
// overstay sweep promotes long-parked vehicles to Overstay.
const (
	EntryStatusParked   = "Parked"
	EntryStatusExited   = "Exited"
	EntryStatusOverstay = "Overstay"
)

// Payment statuses.
const (
	PaymentStatusPaid     = "Paid"
	PaymentStatusUnpaid   = "Unpaid"
	PaymentStatusPending  = "Pending"
	PaymentStatusRefunded = "Refunded"
)

// Payment types. Card and UPI are both settled digitally; Cash goes into the
// drawer and counts toward shift cash reconciliation.
const (
	PaymentTypeCash = "Cash"
	PaymentTypeCard = "Card"
	PaymentTypeUPI  = "UPI"
)

// ParkingEntry is one vehicle's parking record. Entries are never deleted;
// mutations are captured in the audit log.
type ParkingEntry struct {
	ID             uuid.UUID  `json:"id"`
	Serial         int        `json:"serial"`
	TransportName  string     `json:"transport_name"`
	VehicleType    string     `json:"vehicle_type"`
	VehicleNumber  string     `json:"vehicle_number"`
	DriverName     string     `json:"driver_name"`
	DriverPhone    string     `json:"driver_phone"`
	Notes          string     `json:"notes"`
	EntryTime      time.Time  `json:"entry_time"`
	ExitTime       *time.Time `json:"exit_time,omitempty"`
	Status         string     `json:"status"`
	ParkingFee     float64    `json:"parking_fee"`
	PaymentStatus  string     `json:"payment_status"`
	PaymentType    string     `json:"payment_type,omitempty"`
	ShiftSessionID *uuid.UUID `json:"shift_session_id,omitempty"`
	CreatedBy      string     `json:"created_by"`
	LastModified   time.Time  `json:"last_modified"`
}

// NormalizeVehicleNumber uppercases and trims a plate the way entries are stored.
func NormalizeVehicleNumber(plate string) string {
	return strings.ToUpper(strings.TrimSpace(plate))
}

// DurationHours reports how long the vehicle has been (or was) parked,
// measured against now for vehicles that have not exited yet.
func (e *ParkingEntry) DurationHours(now time.Time) float64 {
	end := now
	if e.ExitTime != nil {
		end = *e.ExitTime
	}
	return end.Sub(e.EntryTime).Hours()
}

// IsOverstayed reports whether a still-parked vehicle has exceeded maxHours.
// Exited vehicles are never overstayed regardless of how long they stayed.
func (e *ParkingEntry) IsOverstayed(now time.Time, maxHours float64) bool {
	if e.Status == EntryStatusExited {
		return false
	}
	return e.DurationHours(now) > maxHours
}
