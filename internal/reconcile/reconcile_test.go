package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpectedCash(t *testing.T) {
	in := Inputs{OpeningCash: 1000, CashRevenue: 500, TotalExpenses: 50, CashDeposits: 200}
	assert.Equal(t, 1250.0, ExpectedCash(in))
}

func TestCompare_Scenarios(t *testing.T) {
	in := Inputs{OpeningCash: 1000, CashRevenue: 500, TotalExpenses: 50, CashDeposits: 200}

	tests := []struct {
		name            string
		entered         float64
		wantDiscrepancy float64
		wantClass       Classification
		wantExcess      bool
	}{
		{"exact count matches", 1250, 0, ClassMatch, false},
		{"excess cash is significant", 1400, 150, ClassSignificant, true},
		{"shortage is significant", 1100, -150, ClassSignificant, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compare(in, tt.entered)
			assert.Equal(t, 1250.0, got.ExpectedClosingCash)
			assert.Equal(t, tt.wantDiscrepancy, got.Discrepancy)
			assert.Equal(t, tt.wantClass, got.Classification)
			assert.Equal(t, tt.wantExcess, got.IsExcess())
		})
	}
}

func TestClassify_Boundaries(t *testing.T) {
	tests := []struct {
		discrepancy float64
		want        Classification
	}{
		{0, ClassMatch},
		{9.99, ClassMatch},
		{-9.99, ClassMatch},
		{10, ClassMinor}, // exactly the tolerance is no longer a match
		{-10, ClassMinor},
		{99.99, ClassMinor},
		{100, ClassSignificant}, // exactly the threshold is significant
		{-100, ClassSignificant},
		{250, ClassSignificant},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.discrepancy), "discrepancy %v", tt.discrepancy)
	}
}

func TestCompare_Antisymmetric(t *testing.T) {
	in := Inputs{OpeningCash: 300, CashRevenue: 120, TotalExpenses: 20, CashDeposits: 50}
	expected := ExpectedCash(in)

	plus := Compare(in, expected+75)
	minus := Compare(in, expected-75)
	assert.Equal(t, plus.Discrepancy, -minus.Discrepancy)
}

func TestCompare_Idempotent(t *testing.T) {
	in := Inputs{OpeningCash: 500, CashRevenue: 321.5, TotalExpenses: 14.25, CashDeposits: 100}

	first := Compare(in, 700)
	second := Compare(in, 700)
	assert.Equal(t, first, second)
}

func TestExpectedCash_OrderOfLedgerRowsIrrelevant(t *testing.T) {
	// Summation order of individual expenses/deposits must not change the
	// total the engine sees.
	expenses := []float64{12.5, 7.25, 30, 0.25}
	var forward, backward float64
	for _, e := range expenses {
		forward += e
	}
	for i := len(expenses) - 1; i >= 0; i-- {
		backward += expenses[i]
	}

	a := ExpectedCash(Inputs{OpeningCash: 100, CashRevenue: 50, TotalExpenses: forward})
	b := ExpectedCash(Inputs{OpeningCash: 100, CashRevenue: 50, TotalExpenses: backward})
	assert.Equal(t, a, b)
}
