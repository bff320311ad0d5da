package models

import "time"

// VehicleTypeStats is the per-type slice of a daily report.
type VehicleTypeStats struct {
	Count   int     `json:"count"`
	Revenue float64 `json:"revenue"`
}

// DailyReport aggregates one calendar day of lot activity. Income counts paid
// entries only; unpaid fees show up in UnpaidVehicles instead.
type DailyReport struct {
	Date           time.Time                   `json:"date"`
	TotalEntries   int                         `json:"total_entries"`
	ParkedVehicles int                         `json:"parked_vehicles"`
	ExitedVehicles int                         `json:"exited_vehicles"`
	OverstayCount  int                         `json:"overstay_count"`
	TotalIncome    float64                     `json:"total_income"`
	UnpaidVehicles int                         `json:"unpaid_vehicles"`
	VehicleTypes   map[string]VehicleTypeStats `json:"vehicle_types"`
}

// ShiftReport combines a shift's ledger totals with its reconciliation
// outcome for display and audit.
type ShiftReport struct {
	Shift             ShiftSession `json:"shift"`
	CashRevenue       float64      `json:"cash_revenue"`
	DigitalRevenue    float64      `json:"digital_revenue"`
	VehiclesProcessed int          `json:"vehicles_processed"`
	TotalExpenses     float64      `json:"total_expenses"`
	TotalCashDeposits float64      `json:"total_cash_deposits"`
	ExpectedCash      float64      `json:"expected_cash"`
}
