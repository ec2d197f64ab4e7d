package main

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/eduardomiranda/resale-price-calculator/internal/format"
	"github.com/eduardomiranda/resale-price-calculator/internal/pricing"
)

type calcFormValues struct {
	SaleType            pricing.SaleType
	ProfitBasis         pricing.ProfitBasis
	PurchasePrice       float64
	SelicPercent        float64
	ProfitPercent       float64
	InterestPercent     float64
	SellerMarginPercent float64
	ShowSensitivity     bool
	ProfitDelta         int
	InterestDelta       int
	ShowSchedule        bool
	ShowTaxes           bool
}

type calcFormView struct {
	SaleType            string
	ProfitBasis         string
	PurchasePrice       string
	SelicPercent        string
	ProfitPercent       string
	InterestPercent     string
	SellerMarginPercent string
	ProfitDelta         string
	InterestDelta       string
	ShowSensitivity     bool
	ShowSchedule        bool
	ShowTaxes           bool
}

type resultView struct {
	SaleTypeLabel       string
	SalePrice           string
	SellerMarginPercent string
	SellerMarginShare   string
	NetMultiplier       string
	SaleDenominator     string
	AnnualPrice         string
	Taxes               string
	InterestCost        string
	GrossMargin         string
}

type annualPointView struct {
	ProfitLabel string
	Price       string
}

type gridCellView struct {
	Price  string
	Valid  bool
	Center bool
}

type gridRowView struct {
	ProfitLabel string
	Cells       []gridCellView
}

type gridView struct {
	InterestHeaders []string
	Rows            []gridRowView
}

type sensitivityView struct {
	Annual  []annualPointView
	Monthly *gridView
}

type scheduleRowView struct {
	Month              int
	OutstandingBalance string
	MonthlyInterest    string
	CumulativeInterest string
}

type scheduleView struct {
	Rows []scheduleRowView
}

type calcViewData struct {
	baseViewData
	Form                calcFormView
	EffectiveTaxPercent string
	MinInterestPercent  string
	Result              *resultView
	Sensitivity         *sensitivityView
	Schedule            *scheduleView
	TaxComponents       []taxComponentView
}

func (s *server) handleCalculatorForm(w http.ResponseWriter, r *http.Request) {
	defaults, err := s.getCalcDefaults()
	if err != nil {
		http.Error(w, "failed to load calculator defaults", http.StatusInternalServerError)
		return
	}

	taxRate, err := s.effectiveTaxRate()
	if err != nil {
		http.Error(w, "failed to load tax configuration", http.StatusInternalServerError)
		return
	}

	data := calcViewData{
		baseViewData: baseViewData{
			ErrorMessage: r.URL.Query().Get("error"),
		},
		Form:                formViewFromDefaults(defaults),
		EffectiveTaxPercent: format.Percent(taxRate),
	}

	minInterest, err := pricing.MinimumAcceptableInterest(defaults.PurchasePrice, defaults.SelicPercent/100, pricing.AnnualMonths)
	if err == nil {
		data.MinInterestPercent = format.Number(minInterest, 2)
	}

	s.renderTemplate(w, "home.html", data)
}

func (s *server) handleCalculatorSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	taxRate, err := s.effectiveTaxRate()
	if err != nil {
		http.Error(w, "failed to load tax configuration", http.StatusInternalServerError)
		return
	}

	data := calcViewData{
		Form:                formViewFromRequest(r),
		EffectiveTaxPercent: format.Percent(taxRate),
	}

	values, err := parseCalcForm(r)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		data.ErrorMessage = err.Error()
		s.renderTemplate(w, "home.html", data)
		return
	}

	input := values.toPricingInput(taxRate)
	result, err := pricing.Calculate(input)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		data.ErrorMessage = fmt.Sprintf("Erro no cálculo: %v", err)
		s.renderTemplate(w, "home.html", data)
		return
	}

	data.Result = buildResultView(values, result)

	if minInterest, err := pricing.MinimumAcceptableInterest(values.PurchasePrice, values.SelicPercent/100, pricing.AnnualMonths); err == nil {
		data.MinInterestPercent = format.Number(minInterest, 2)
	}

	if values.ShowSensitivity {
		data.Sensitivity = buildSensitivityView(input, values)
	}

	if values.ShowSchedule {
		steps, err := pricing.InterestSchedule(values.PurchasePrice, values.SelicPercent/100, pricing.AnnualMonths)
		if err == nil {
			data.Schedule = buildScheduleView(steps)
		}
	}

	if values.ShowTaxes {
		components, err := s.listTaxComponents()
		if err != nil {
			http.Error(w, "failed to load tax components", http.StatusInternalServerError)
			return
		}
		data.TaxComponents = taxComponentViews(components)
	}

	s.renderTemplate(w, "home.html", data)
}

func (v calcFormValues) toPricingInput(taxRate float64) pricing.Input {
	return pricing.Input{
		SaleType:      v.SaleType,
		ProfitBasis:   v.ProfitBasis,
		PurchasePrice: v.PurchasePrice,
		TaxRate:       taxRate,
		ProfitRate:    v.ProfitPercent / 100,
		InterestRate:  v.InterestPercent / 100,
	}
}

func parseCalcForm(r *http.Request) (calcFormValues, error) {
	values := calcFormValues{
		ShowSensitivity: r.FormValue("show_sensitivity") == "1",
		ShowSchedule:    r.FormValue("show_schedule") == "1",
		ShowTaxes:       r.FormValue("show_taxes") == "1",
	}

	switch r.FormValue("sale_type") {
	case "annual":
		values.SaleType = pricing.SaleAnnual
	case "monthly":
		values.SaleType = pricing.SaleMonthly
	default:
		return values, fmt.Errorf("sale_type deve ser annual ou monthly")
	}

	switch r.FormValue("profit_basis") {
	case "purchase":
		values.ProfitBasis = pricing.ProfitOnPurchase
	case "sale":
		values.ProfitBasis = pricing.ProfitOnSale
	default:
		return values, fmt.Errorf("profit_basis deve ser purchase ou sale")
	}

	var err error
	if values.PurchasePrice, err = parsePositiveFloat(r.FormValue("purchase_price"), "purchase_price"); err != nil {
		return values, err
	}
	if values.SelicPercent, err = parseNonNegativeFloat(r.FormValue("selic_percent"), "selic_percent"); err != nil {
		return values, err
	}
	if values.ProfitPercent, err = parsePercent(r.FormValue("profit_percent"), "profit_percent"); err != nil {
		return values, err
	}
	if values.InterestPercent, err = parseNonNegativeFloat(r.FormValue("interest_percent"), "interest_percent"); err != nil {
		return values, err
	}
	if values.SellerMarginPercent, err = parsePercent(r.FormValue("seller_margin_percent"), "seller_margin_percent"); err != nil {
		return values, err
	}

	if values.ShowSensitivity {
		if values.ProfitDelta, err = parseDelta(r.FormValue("profit_delta"), "profit_delta"); err != nil {
			return values, err
		}
		if values.InterestDelta, err = parseDelta(r.FormValue("interest_delta"), "interest_delta"); err != nil {
			return values, err
		}
	}

	return values, nil
}

func parseNonNegativeFloat(raw, field string) (float64, error) {
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s deve ser numérico", field)
	}
	if value < 0 {
		return 0, fmt.Errorf("%s deve ser maior ou igual a 0", field)
	}
	return value, nil
}

func parsePositiveFloat(raw, field string) (float64, error) {
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s deve ser numérico", field)
	}
	if value <= 0 {
		return 0, fmt.Errorf("%s deve ser maior que 0", field)
	}
	return value, nil
}

func parsePercent(raw, field string) (float64, error) {
	value, err := parseNonNegativeFloat(raw, field)
	if err != nil {
		return 0, err
	}
	if value > 100 {
		return 0, fmt.Errorf("%s deve estar entre 0 e 100", field)
	}
	return value, nil
}

func parseDelta(raw, field string) (int, error) {
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s deve ser um número inteiro", field)
	}
	if value < 1 {
		return 0, fmt.Errorf("%s deve ser maior ou igual a 1", field)
	}
	return value, nil
}

func formViewFromDefaults(defaults calcDefaults) calcFormView {
	return calcFormView{
		SaleType:            "annual",
		ProfitBasis:         "purchase",
		PurchasePrice:       strconv.FormatFloat(defaults.PurchasePrice, 'f', 2, 64),
		SelicPercent:        strconv.FormatFloat(defaults.SelicPercent, 'f', 2, 64),
		ProfitPercent:       strconv.FormatFloat(defaults.ProfitPercent, 'f', 2, 64),
		InterestPercent:     strconv.FormatFloat(defaults.InterestPercent, 'f', 2, 64),
		SellerMarginPercent: strconv.FormatFloat(defaults.SellerMarginPercent, 'f', 2, 64),
		ProfitDelta:         strconv.Itoa(defaults.ProfitDelta),
		InterestDelta:       strconv.Itoa(defaults.InterestDelta),
	}
}

func formViewFromRequest(r *http.Request) calcFormView {
	return calcFormView{
		SaleType:            r.FormValue("sale_type"),
		ProfitBasis:         r.FormValue("profit_basis"),
		PurchasePrice:       r.FormValue("purchase_price"),
		SelicPercent:        r.FormValue("selic_percent"),
		ProfitPercent:       r.FormValue("profit_percent"),
		InterestPercent:     r.FormValue("interest_percent"),
		SellerMarginPercent: r.FormValue("seller_margin_percent"),
		ProfitDelta:         r.FormValue("profit_delta"),
		InterestDelta:       r.FormValue("interest_delta"),
		ShowSensitivity:     r.FormValue("show_sensitivity") == "1",
		ShowSchedule:        r.FormValue("show_schedule") == "1",
		ShowTaxes:           r.FormValue("show_taxes") == "1",
	}
}

func buildResultView(values calcFormValues, result pricing.Result) *resultView {
	view := &resultView{
		SalePrice:           format.BRL(result.SalePrice),
		SellerMarginPercent: format.Percent(values.SellerMarginPercent / 100),
		SellerMarginShare:   format.BRL(result.GrossMargin * values.SellerMarginPercent / 100),
		NetMultiplier:       format.Number(result.Breakdown.NetMultiplier, 5),
		Taxes:               format.BRL(result.Breakdown.Taxes),
		GrossMargin:         format.BRL(result.GrossMargin),
	}

	switch values.SaleType {
	case pricing.SaleAnnual:
		view.SaleTypeLabel = "anual"
	case pricing.SaleMonthly:
		view.SaleTypeLabel = "mensal"
		view.AnnualPrice = format.BRL(result.Breakdown.AnnualPrice)
		view.InterestCost = format.BRL(result.Breakdown.InterestCost)
	}

	if values.ProfitBasis == pricing.ProfitOnSale {
		view.SaleDenominator = format.Percent(result.Breakdown.SaleDenominator)
	}

	return view
}

func buildSensitivityView(input pricing.Input, values calcFormValues) *sensitivityView {
	view := &sensitivityView{}

	switch values.SaleType {
	case pricing.SaleAnnual:
		for _, point := range pricing.AnnualSensitivity(input, values.ProfitDelta) {
			view.Annual = append(view.Annual, annualPointView{
				ProfitLabel: strconv.Itoa(point.ProfitPercent) + "%",
				Price:       format.BRL(point.SalePrice),
			})
		}
	case pricing.SaleMonthly:
		grid := pricing.MonthlySensitivity(input, values.ProfitDelta, values.InterestDelta)
		monthly := &gridView{}
		for _, interest := range grid.InterestPercents {
			monthly.InterestHeaders = append(monthly.InterestHeaders, format.Number(interest, 0)+"%")
		}
		for row, profit := range grid.ProfitPercents {
			rowView := gridRowView{ProfitLabel: format.Number(profit, 0) + "%"}
			for col, cell := range grid.Cells[row] {
				cellView := gridCellView{
					Valid:  cell.Valid,
					Center: row == grid.CenterRow && col == grid.CenterCol,
				}
				if cell.Valid {
					cellView.Price = format.Number(cell.SalePrice, 2)
				}
				rowView.Cells = append(rowView.Cells, cellView)
			}
			monthly.Rows = append(monthly.Rows, rowView)
		}
		view.Monthly = monthly
	}

	return view
}

func buildScheduleView(steps []pricing.InterestStep) *scheduleView {
	view := &scheduleView{}
	for _, step := range steps {
		view.Rows = append(view.Rows, scheduleRowView{
			Month:              step.Month,
			OutstandingBalance: format.BRL(step.OutstandingBalance),
			MonthlyInterest:    format.BRL(step.MonthlyInterest),
			CumulativeInterest: format.BRL(step.CumulativeInterest),
		})
	}
	return view
}
