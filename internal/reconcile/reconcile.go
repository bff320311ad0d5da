package reconcile

import "math"

// Classification thresholds, in currency units.
const (
	// MatchTolerance: anything under this is treated as a rounding-level match.
	MatchTolerance = 10.0
	// DiscrepancyThreshold: at or above this the discrepancy is significant
	// and ending the shift requires explicit confirmation.
	DiscrepancyThreshold = 100.0
)

// Classification of a counted-vs-expected comparison.
type Classification string

const (
	ClassMatch       Classification = "match"
	ClassMinor       Classification = "minor_discrepancy"
	ClassSignificant Classification = "significant_discrepancy"
)

// Inputs are the four figures the drawer math runs on.
type Inputs struct {
	OpeningCash   float64 `json:"opening_cash"`
	CashRevenue   float64 `json:"cash_revenue"`
	TotalExpenses float64 `json:"total_expenses"`
	CashDeposits  float64 `json:"cash_deposits"`
}

// Result is one reconciliation outcome. Derived, never persisted as its own
// row; at shift end the significant case is annotated into shift notes.
type Result struct {
	Inputs
	ExpectedClosingCash float64        `json:"expected_closing_cash"`
	EnteredClosingCash  float64        `json:"entered_closing_cash"`
	Discrepancy         float64        `json:"discrepancy"`
	Classification      Classification `json:"classification"`
}

// ExpectedCash is the drawer figure implied by the ledgers alone.
func ExpectedCash(in Inputs) float64 {
	return in.OpeningCash + in.CashRevenue - in.TotalExpenses - in.CashDeposits
}

// Classify buckets a signed discrepancy. Exactly MatchTolerance is already a
// minor discrepancy; exactly DiscrepancyThreshold is already significant.
func Classify(discrepancy float64) Classification {
	abs := math.Abs(discrepancy)
	switch {
	case abs < MatchTolerance:
		return ClassMatch
	case abs < DiscrepancyThreshold:
		return ClassMinor
	default:
		return ClassSignificant
	}
}

// Compare reconciles an operator-entered count against the expected figure.
// Pure: identical inputs always produce identical output.
func Compare(in Inputs, enteredClosingCash float64) Result {
	expected := ExpectedCash(in)
	discrepancy := enteredClosingCash - expected
	return Result{
		Inputs:              in,
		ExpectedClosingCash: expected,
		EnteredClosingCash:  enteredClosingCash,
		Discrepancy:         discrepancy,
		Classification:      Classify(discrepancy),
	}
}

// IsSignificant reports whether the result requires the end-of-shift
// confirmation gate.
func (r Result) IsSignificant() bool {
	return r.Classification == ClassSignificant
}

// IsExcess reports whether the drawer held more cash than expected.
func (r Result) IsExcess() bool {
	return r.Discrepancy > 0
}
