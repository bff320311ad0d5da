// Package reconcile holds the cash arithmetic for a shift: revenue bucketing
// by payment type and the expected-cash / discrepancy computation. Everything
// here is a pure function over already-loaded rows.
package reconcile

import (
	"github.com/parkos/parklot/internal/domain/models"
)

// RevenueBreakdown is realized parking revenue split by settlement channel.
type RevenueBreakdown struct {
	CashRevenue       float64 `json:"cash_revenue"`
	DigitalRevenue    float64 `json:"digital_revenue"`
	VehiclesProcessed int     `json:"vehicles_processed"`
}

// Total is cash and digital revenue combined.
func (r RevenueBreakdown) Total() float64 {
	return r.CashRevenue + r.DigitalRevenue
}

// AggregateRevenue buckets fees from the given entries. Only exited, paid
// entries count as realized revenue. Card and UPI settle digitally. Entries
// with a payment type outside the known set are counted as processed but land
// in neither bucket; the caller decides whether that deserves a warning.
func AggregateRevenue(entries []models.ParkingEntry) RevenueBreakdown {
	var out RevenueBreakdown
	for _, e := range entries {
		if e.Status != models.EntryStatusExited {
			continue
		}
		if e.PaymentStatus != models.PaymentStatusPaid {
			continue
		}
		out.VehiclesProcessed++
		switch e.PaymentType {
		case models.PaymentTypeCash:
			out.CashRevenue += e.ParkingFee
		case models.PaymentTypeCard, models.PaymentTypeUPI:
			out.DigitalRevenue += e.ParkingFee
		}
	}
	return out
}

// UnknownPaymentTypes lists the payment types among exited, paid entries that
// fall outside the known set, so callers can log them.
func UnknownPaymentTypes(entries []models.ParkingEntry) []string {
	seen := map[string]bool{}
	var unknown []string
	for _, e := range entries {
		if e.Status != models.EntryStatusExited || e.PaymentStatus != models.PaymentStatusPaid {
			continue
		}
		switch e.PaymentType {
		case models.PaymentTypeCash, models.PaymentTypeCard, models.PaymentTypeUPI:
		default:
			if !seen[e.PaymentType] {
				seen[e.PaymentType] = true
				unknown = append(unknown, e.PaymentType)
			}
		}
	}
	return unknown
}
