package pricing

import "fmt"

// AnnualMonths is the number of monthly installments a yearly sale price is split into.
const AnnualMonths = 12

// SaleType selects how the suggested price is charged.
type SaleType string

const (
	SaleAnnual  SaleType = "annual"
	SaleMonthly SaleType = "monthly"
)

// ProfitBasis selects the base the desired profit rate is applied on.
type ProfitBasis string

const (
	ProfitOnPurchase ProfitBasis = "purchase"
	ProfitOnSale     ProfitBasis = "sale"
)

// Input represents the parameters of a sale price calculation.
// All rates are decimals (0.20 means 20%).
type Input struct {
	SaleType      SaleType
	ProfitBasis   ProfitBasis
	PurchasePrice float64
	TaxRate       float64
	ProfitRate    float64
	InterestRate  float64
}

// Breakdown contains the intermediate values of the calculation, kept so the
// UI can explain how the suggested price was reached.
type Breakdown struct {
	NetMultiplier   float64
	SaleDenominator float64
	AnnualPrice     float64
	Taxes           float64
	InterestCost    float64
}

// Result groups the calculation output.
// SalePrice is the yearly price for annual sales and the monthly installment
// for monthly sales; GrossMargin is the profit left after taxes and interest.
type Result struct {
	SalePrice   float64
	GrossMargin float64
	Breakdown   Breakdown
}

// ValidationError reports an input that cannot produce a price.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func invalidf(format string, args ...any) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// Calculate computes the suggested sale price and its breakdown.
// It returns a *ValidationError when the inputs are out of range or the
// configured rates make the formula impossible (denominator <= 0).
func Calculate(in Input) (Result, error) {
	if in.PurchasePrice <= 0 {
		return Result{}, invalidf("purchase price must be greater than 0")
	}
	if in.TaxRate < 0 || in.TaxRate >= 1 {
		return Result{}, invalidf("tax rate must be in range [0, 1)")
	}
	if in.ProfitRate < 0 || in.ProfitRate >= 1 {
		return Result{}, invalidf("profit rate must be in range [0, 1)")
	}
	if in.InterestRate < 0 {
		return Result{}, invalidf("interest rate must be greater than or equal to 0")
	}

	netDenominator := 1 - in.TaxRate
	netMultiplier := 1 / netDenominator

	switch in.SaleType {
	case SaleAnnual:
		return calculateAnnual(in, netMultiplier)
	case SaleMonthly:
		return calculateMonthly(in, netMultiplier)
	default:
		return Result{}, invalidf("invalid sale type: %q", in.SaleType)
	}
}

func calculateAnnual(in Input, netMultiplier float64) (Result, error) {
	var salePrice, saleDenominator float64

	switch in.ProfitBasis {
	case ProfitOnPurchase:
		salePrice = in.PurchasePrice * netMultiplier * (1 + in.ProfitRate)
	case ProfitOnSale:
		saleDenominator = 1 - in.ProfitRate - in.TaxRate
		if saleDenominator <= 0 {
			return Result{}, invalidf("profit rate plus tax rate makes calculation impossible (>= 100%%)")
		}
		salePrice = in.PurchasePrice / saleDenominator
	default:
		return Result{}, invalidf("invalid profit basis: %q", in.ProfitBasis)
	}

	taxes := salePrice * in.TaxRate
	grossMargin := salePrice - taxes - in.PurchasePrice

	return Result{
		SalePrice:   salePrice,
		GrossMargin: grossMargin,
		Breakdown: Breakdown{
			NetMultiplier:   netMultiplier,
			SaleDenominator: saleDenominator,
			AnnualPrice:     salePrice,
			Taxes:           taxes,
		},
	}, nil
}

func calculateMonthly(in Input, netMultiplier float64) (Result, error) {
	var annualPrice, saleDenominator float64

	switch in.ProfitBasis {
	case ProfitOnPurchase:
		annualPrice = in.PurchasePrice * netMultiplier * (1 + in.ProfitRate + in.InterestRate)
	case ProfitOnSale:
		saleDenominator = 1 - in.ProfitRate - in.TaxRate
		if saleDenominator <= 0 {
			return Result{}, invalidf("profit rate plus tax rate makes calculation impossible (>= 100%%)")
		}
		annualPrice = in.PurchasePrice/saleDenominator + in.PurchasePrice*in.InterestRate*netMultiplier
	default:
		return Result{}, invalidf("invalid profit basis: %q", in.ProfitBasis)
	}

	taxes := annualPrice * in.TaxRate
	interestCost := in.PurchasePrice * in.InterestRate
	grossMargin := annualPrice - taxes - interestCost - in.PurchasePrice

	return Result{
		SalePrice:   annualPrice / AnnualMonths,
		GrossMargin: grossMargin,
		Breakdown: Breakdown{
			NetMultiplier:   netMultiplier,
			SaleDenominator: saleDenominator,
			AnnualPrice:     annualPrice,
			Taxes:           taxes,
			InterestCost:    interestCost,
		},
	}, nil
}
