package main

import (
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/eduardomiranda/resale-price-calculator/internal/pricing"
)

func calcForm() url.Values {
	form := url.Values{}
	form.Set("sale_type", "monthly")
	form.Set("profit_basis", "sale")
	form.Set("purchase_price", "100")
	form.Set("selic_percent", "15")
	form.Set("profit_percent", "20")
	form.Set("interest_percent", "12")
	form.Set("seller_margin_percent", "10")
	form.Set("show_sensitivity", "1")
	form.Set("profit_delta", "3")
	form.Set("interest_delta", "2")
	return form
}

func TestParseCalcForm_Success(t *testing.T) {
	req := httptest.NewRequest("POST", "/", nil)
	req.Form = calcForm()

	values, err := parseCalcForm(req)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	if values.SaleType != pricing.SaleMonthly || values.ProfitBasis != pricing.ProfitOnSale {
		t.Fatalf("unexpected enum values: %+v", values)
	}
	if values.PurchasePrice != 100 || values.ProfitPercent != 20 || values.InterestPercent != 12 {
		t.Fatalf("unexpected numeric values: %+v", values)
	}
	if !values.ShowSensitivity || values.ProfitDelta != 3 || values.InterestDelta != 2 {
		t.Fatalf("unexpected sensitivity values: %+v", values)
	}
}

func TestParseCalcForm_InvalidSaleType(t *testing.T) {
	form := calcForm()
	form.Set("sale_type", "weekly")

	req := httptest.NewRequest("POST", "/", nil)
	req.Form = form

	if _, err := parseCalcForm(req); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestParseCalcForm_NonNumericPurchasePrice(t *testing.T) {
	form := calcForm()
	form.Set("purchase_price", "abc")

	req := httptest.NewRequest("POST", "/", nil)
	req.Form = form

	if _, err := parseCalcForm(req); err == nil {
		t.Fatalf("expected numeric validation error")
	}
}

func TestParseCalcForm_NegativeInterest(t *testing.T) {
	form := calcForm()
	form.Set("interest_percent", "-1")

	req := httptest.NewRequest("POST", "/", nil)
	req.Form = form

	if _, err := parseCalcForm(req); err == nil {
		t.Fatalf("expected validation error for negative interest")
	}
}

func TestParseCalcForm_DeltaRequiredOnlyWithSensitivity(t *testing.T) {
	form := calcForm()
	form.Del("show_sensitivity")
	form.Del("profit_delta")
	form.Del("interest_delta")

	req := httptest.NewRequest("POST", "/", nil)
	req.Form = form

	values, err := parseCalcForm(req)
	if err != nil {
		t.Fatalf("unexpected err without sensitivity: %v", err)
	}
	if values.ShowSensitivity {
		t.Fatalf("sensitivity should be off")
	}
}

func TestParseCalcForm_InvalidDelta(t *testing.T) {
	form := calcForm()
	form.Set("profit_delta", "0")

	req := httptest.NewRequest("POST", "/", nil)
	req.Form = form

	if _, err := parseCalcForm(req); err == nil {
		t.Fatalf("expected validation error for zero delta")
	}
}

func TestBuildResultView_MonthlyShowsAnnualAndInterest(t *testing.T) {
	values := calcFormValues{
		SaleType:            pricing.SaleMonthly,
		ProfitBasis:         pricing.ProfitOnPurchase,
		PurchasePrice:       100,
		ProfitPercent:       20,
		InterestPercent:     12,
		SellerMarginPercent: 10,
	}

	result, err := pricing.Calculate(values.toPricingInput(0.1743))
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}

	view := buildResultView(values, result)
	if view.SaleTypeLabel != "mensal" {
		t.Fatalf("SaleTypeLabel = %q", view.SaleTypeLabel)
	}
	if view.AnnualPrice == "" || view.InterestCost == "" {
		t.Fatalf("monthly view should include annual price and interest: %+v", view)
	}
	if view.SaleDenominator != "" {
		t.Fatalf("profit on purchase should not show sale denominator")
	}
}

func TestBuildResultView_AnnualOnSaleShowsDenominator(t *testing.T) {
	values := calcFormValues{
		SaleType:            pricing.SaleAnnual,
		ProfitBasis:         pricing.ProfitOnSale,
		PurchasePrice:       100,
		ProfitPercent:       20,
		SellerMarginPercent: 10,
	}

	result, err := pricing.Calculate(values.toPricingInput(0.1743))
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}

	view := buildResultView(values, result)
	if view.SaleTypeLabel != "anual" {
		t.Fatalf("SaleTypeLabel = %q", view.SaleTypeLabel)
	}
	if view.SaleDenominator == "" {
		t.Fatalf("profit on sale should show the sale denominator")
	}
	if view.AnnualPrice != "" || view.InterestCost != "" {
		t.Fatalf("annual view should not include monthly-only fields: %+v", view)
	}
}
