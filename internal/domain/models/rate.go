package models

import "time"

// FallbackDailyRate is charged for vehicle types without a configured rate.
const FallbackDailyRate = 100

// VehicleRate is the per-day tariff for one vehicle type. Rates double as the
// lot's settings surface: admins adjust them through the rates endpoints.
type VehicleRate struct {
	VehicleType string    `json:"vehicle_type"`
	DailyRate   float64   `json:"daily_rate"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}
