package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterestSchedule_TwelveMonths(t *testing.T) {
	steps, err := InterestSchedule(1000, 0.15, 12)
	require.NoError(t, err)
	require.Len(t, steps, 12)

	first := steps[0]
	assert.Equal(t, 1, first.Month)
	assert.InDelta(t, 1000, first.OutstandingBalance, 1e-9)
	assert.Greater(t, first.MonthlyInterest, 0.0)
	assert.InDelta(t, first.MonthlyInterest, first.CumulativeInterest, 1e-9)

	last := steps[len(steps)-1]
	assert.Equal(t, 12, last.Month)
	// constant amortization leaves one installment outstanding in the last month
	assert.InDelta(t, 1000.0/12, last.OutstandingBalance, 1e-9)
	assert.Greater(t, last.CumulativeInterest, first.CumulativeInterest)
}

func TestInterestSchedule_ZeroSelic(t *testing.T) {
	steps, err := InterestSchedule(1000, 0, 12)
	require.NoError(t, err)

	for _, step := range steps {
		assert.Zero(t, step.MonthlyInterest)
		assert.Zero(t, step.CumulativeInterest)
	}
}

func TestInterestSchedule_InvalidInputs(t *testing.T) {
	cases := []struct {
		name          string
		purchasePrice float64
		selicRate     float64
		totalMonths   int
	}{
		{"zero purchase price", 0, 0.15, 12},
		{"negative purchase price", -1000, 0.15, 12},
		{"zero months", 1000, 0.15, 0},
		{"negative months", 1000, 0.15, -12},
		{"negative selic", 1000, -0.15, 12},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := InterestSchedule(tc.purchasePrice, tc.selicRate, tc.totalMonths)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
		})
	}
}

func TestMinimumAcceptableInterest(t *testing.T) {
	rate, err := MinimumAcceptableInterest(1000, 0.15, 12)
	require.NoError(t, err)
	assert.Greater(t, rate, 0.0)

	again, err := MinimumAcceptableInterest(1000, 0.15, 12)
	require.NoError(t, err)
	assert.Equal(t, rate, again)

	other, err := MinimumAcceptableInterest(1000, 0.20, 12)
	require.NoError(t, err)
	assert.NotEqual(t, rate, other)
}

func TestMinimumAcceptableInterest_ZeroSelic(t *testing.T) {
	rate, err := MinimumAcceptableInterest(1000, 0, 12)
	require.NoError(t, err)
	assert.Zero(t, rate)
}

func TestMinimumAcceptableInterest_InvalidInput(t *testing.T) {
	_, err := MinimumAcceptableInterest(0, 0.15, 12)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}
