// Package tariff computes parking fees. Billing is day-based with a ceiling:
// any started day bills in full, and even a zero-length stay bills one day.
package tariff

import (
	"math"
	"time"

	"github.com/parkos/parklot/internal/domain/models"
)

const (
	// DefaultOverstayHours is how long a vehicle may stay before penalty
	// billing kicks in.
	DefaultOverstayHours = 24.0
	// DefaultPenaltyMultiplier scales the daily rate for penalty days.
	// 1.5 means each penalty day costs half a day extra on top of base.
	DefaultPenaltyMultiplier = 1.5
)

// DefaultRates mirrors the lot's stock rate card. Live rates come from the
// vehicle_rates table; this map seeds it and backs the calculator in tests.
var DefaultRates = map[string]float64{
	"Trailer":   225,
	"6 Wheeler": 150,
	"4 Wheeler": 100,
	"2 Wheeler": 50,
}

// Calculation is the fully broken-down outcome of a fee computation.
type Calculation struct {
	VehicleType   string  `json:"vehicle_type"`
	DurationHours float64 `json:"duration_hours"`
	Days          int     `json:"calculated_days"`
	DailyRate     float64 `json:"daily_rate"`
	BaseFee       float64 `json:"base_fee"`
	IsOverstay    bool    `json:"is_overstay"`
	PenaltyFee    float64 `json:"penalty_fee"`
	TotalFee      float64 `json:"total_fee"`
}

// Calculator holds the rate card and overstay policy.
type Calculator struct {
	rates             map[string]float64
	overstayHours     float64
	penaltyMultiplier float64
}

// Option customizes a Calculator.
type Option func(*Calculator)

// WithOverstay overrides the overstay threshold (hours) and penalty multiplier.
func WithOverstay(hours, multiplier float64) Option {
	return func(c *Calculator) {
		c.overstayHours = hours
		c.penaltyMultiplier = multiplier
	}
}

// NewCalculator builds a Calculator. A nil rates map falls back to DefaultRates.
func NewCalculator(rates map[string]float64, opts ...Option) *Calculator {
	if rates == nil {
		rates = DefaultRates
	}
	c := &Calculator{
		rates:             rates,
		overstayHours:     DefaultOverstayHours,
		penaltyMultiplier: DefaultPenaltyMultiplier,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DailyRate returns the rate for a vehicle type, falling back to
// models.FallbackDailyRate for unconfigured types.
func (c *Calculator) DailyRate(vehicleType string) float64 {
	if rate, ok := c.rates[vehicleType]; ok {
		return rate
	}
	return models.FallbackDailyRate
}

// BillableDays converts a stay duration into billed days: every started day
// counts, and the minimum is one day.
func BillableDays(d time.Duration) int {
	days := int(d / (24 * time.Hour))
	if d%(24*time.Hour) > 0 {
		days++
	}
	if days < 1 {
		days = 1
	}
	return days
}

// Calculate computes the fee for a stay from entry to exit.
func (c *Calculator) Calculate(vehicleType string, entryTime, exitTime time.Time) (*Calculation, error) {
	d := exitTime.Sub(entryTime)
	if d < 0 {
		return nil, models.ErrExitBeforeEntry
	}

	rate := c.DailyRate(vehicleType)
	days := BillableDays(d)
	base := float64(days) * rate

	calc := &Calculation{
		VehicleType:   vehicleType,
		DurationHours: d.Hours(),
		Days:          days,
		DailyRate:     rate,
		BaseFee:       base,
		TotalFee:      base,
	}

	if calc.DurationHours > c.overstayHours {
		calc.IsOverstay = true
		calc.PenaltyFee = c.penaltyFor(rate, calc.DurationHours)
		calc.TotalFee = calc.BaseFee + calc.PenaltyFee
	}

	return calc, nil
}

// EstimateFee prices a stay of the given length without a concrete entry record.
func (c *Calculator) EstimateFee(vehicleType string, hours float64) float64 {
	days := BillableDays(time.Duration(hours * float64(time.Hour)))
	return float64(days) * c.DailyRate(vehicleType)
}

// OverstayPenalty returns the penalty portion alone for a stay of the given
// length, zero when within the threshold.
func (c *Calculator) OverstayPenalty(vehicleType string, hours float64) float64 {
	if hours <= c.overstayHours {
		return 0
	}
	return c.penaltyFor(c.DailyRate(vehicleType), hours)
}

// penaltyFor bills each started day past the threshold at
// rate * (multiplier - 1).
func (c *Calculator) penaltyFor(rate, totalHours float64) float64 {
	overHours := totalHours - c.overstayHours
	penaltyDays := math.Ceil(overHours / 24)
	return rate * penaltyDays * (c.penaltyMultiplier - 1)
}
