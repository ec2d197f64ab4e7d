package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseInput() Input {
	return Input{
		SaleType:      SaleAnnual,
		ProfitBasis:   ProfitOnPurchase,
		PurchasePrice: 100,
		TaxRate:       0.1743,
		ProfitRate:    0.20,
		InterestRate:  0.12,
	}
}

func TestCalculate_AnnualProfitOnPurchase(t *testing.T) {
	result, err := Calculate(baseInput())
	require.NoError(t, err)

	// price = purchase x netMultiplier x (1 + profit)
	assert.InDelta(t, 120/(1-0.1743), result.SalePrice, 1e-9)
	// after taxes the margin is exactly purchase x profit
	assert.InDelta(t, 20, result.GrossMargin, 1e-9)
	assert.InDelta(t, 1/(1-0.1743), result.Breakdown.NetMultiplier, 1e-9)
	assert.InDelta(t, result.SalePrice*0.1743, result.Breakdown.Taxes, 1e-9)
	assert.Zero(t, result.Breakdown.SaleDenominator)
	assert.Zero(t, result.Breakdown.InterestCost)
}

func TestCalculate_AnnualProfitOnSale(t *testing.T) {
	in := baseInput()
	in.ProfitBasis = ProfitOnSale

	result, err := Calculate(in)
	require.NoError(t, err)

	assert.InDelta(t, 100/(1-0.20-0.1743), result.SalePrice, 1e-9)
	// margin is the profit share of the sale price
	assert.InDelta(t, result.SalePrice*0.20, result.GrossMargin, 1e-9)
	assert.InDelta(t, 1-0.20-0.1743, result.Breakdown.SaleDenominator, 1e-9)
}

func TestCalculate_MonthlyProfitOnPurchase(t *testing.T) {
	in := baseInput()
	in.SaleType = SaleMonthly

	result, err := Calculate(in)
	require.NoError(t, err)

	wantAnnual := 132 / (1 - 0.1743)
	assert.InDelta(t, wantAnnual, result.Breakdown.AnnualPrice, 1e-9)
	assert.InDelta(t, wantAnnual/12, result.SalePrice, 1e-9)
	assert.InDelta(t, 12, result.Breakdown.InterestCost, 1e-9)
	// interest is passed through, so the margin is still purchase x profit
	assert.InDelta(t, 20, result.GrossMargin, 1e-9)
}

func TestCalculate_MonthlyProfitOnSale(t *testing.T) {
	in := baseInput()
	in.SaleType = SaleMonthly
	in.ProfitBasis = ProfitOnSale

	result, err := Calculate(in)
	require.NoError(t, err)

	wantAnnual := 100/(1-0.20-0.1743) + 100*0.12/(1-0.1743)
	assert.InDelta(t, wantAnnual, result.Breakdown.AnnualPrice, 1e-9)
	assert.InDelta(t, wantAnnual/12, result.SalePrice, 1e-9)
	assert.InDelta(t, wantAnnual-wantAnnual*0.1743-12-100, result.GrossMargin, 1e-9)
}

func TestCalculate_ZeroRatesYieldPurchasePrice(t *testing.T) {
	in := Input{
		SaleType:      SaleAnnual,
		ProfitBasis:   ProfitOnPurchase,
		PurchasePrice: 250,
	}

	result, err := Calculate(in)
	require.NoError(t, err)

	assert.InDelta(t, 250, result.SalePrice, 1e-9)
	assert.InDelta(t, 0, result.GrossMargin, 1e-9)
}

func TestCalculate_PriceNeverBelowPurchase(t *testing.T) {
	for _, basis := range []ProfitBasis{ProfitOnPurchase, ProfitOnSale} {
		in := baseInput()
		in.ProfitBasis = basis

		result, err := Calculate(in)
		require.NoError(t, err)
		assert.Greater(t, result.SalePrice, in.PurchasePrice)
	}
}

func TestCalculate_ValidationErrors(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Input)
	}{
		{"zero purchase price", func(in *Input) { in.PurchasePrice = 0 }},
		{"negative purchase price", func(in *Input) { in.PurchasePrice = -100 }},
		{"tax rate above 1", func(in *Input) { in.TaxRate = 1.5 }},
		{"tax rate exactly 1", func(in *Input) { in.TaxRate = 1 }},
		{"negative tax rate", func(in *Input) { in.TaxRate = -0.1 }},
		{"profit rate above 1", func(in *Input) { in.ProfitRate = 1.5 }},
		{"negative profit rate", func(in *Input) { in.ProfitRate = -0.2 }},
		{"negative interest rate", func(in *Input) { in.InterestRate = -0.12 }},
		{"unknown sale type", func(in *Input) { in.SaleType = "weekly" }},
		{"unknown profit basis", func(in *Input) { in.ProfitBasis = "both" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := baseInput()
			tc.mutate(&in)

			_, err := Calculate(in)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
		})
	}
}

func TestCalculate_ProfitPlusTaxImpossible(t *testing.T) {
	in := baseInput()
	in.ProfitBasis = ProfitOnSale
	in.ProfitRate = 0.85

	_, err := Calculate(in)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, err.Error(), "impossible")
}

func TestCalculate_MonotonicInProfitRate(t *testing.T) {
	low := baseInput()
	low.ProfitRate = 0.10

	high := baseInput()
	high.ProfitRate = 0.20

	lowResult, err := Calculate(low)
	require.NoError(t, err)
	highResult, err := Calculate(high)
	require.NoError(t, err)

	assert.Greater(t, highResult.SalePrice, lowResult.SalePrice)
}

func TestCalculate_MonotonicInInterestRate(t *testing.T) {
	low := baseInput()
	low.SaleType = SaleMonthly
	low.InterestRate = 0.10

	high := baseInput()
	high.SaleType = SaleMonthly
	high.InterestRate = 0.12

	lowResult, err := Calculate(low)
	require.NoError(t, err)
	highResult, err := Calculate(high)
	require.NoError(t, err)

	assert.Greater(t, highResult.SalePrice, lowResult.SalePrice)
}
