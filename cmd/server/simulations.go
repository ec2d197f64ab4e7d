package main

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/eduardomiranda/resale-price-calculator/internal/format"
	"github.com/eduardomiranda/resale-price-calculator/internal/pricing"
)

type simulationInputs struct {
	SaleType         string  `json:"sale_type"`
	ProfitBasis      string  `json:"profit_basis"`
	PurchasePrice    float64 `json:"purchase_price"`
	TaxRate          float64 `json:"tax_rate"`
	ProfitRate       float64 `json:"profit_rate"`
	InterestRate     float64 `json:"interest_rate"`
	SellerMarginRate float64 `json:"seller_margin_rate"`
}

type simulationResult struct {
	SalePrice       float64 `json:"sale_price"`
	GrossMargin     float64 `json:"gross_margin"`
	NetMultiplier   float64 `json:"net_multiplier"`
	SaleDenominator float64 `json:"sale_denominator,omitempty"`
	AnnualPrice     float64 `json:"annual_price"`
	Taxes           float64 `json:"taxes"`
	InterestCost    float64 `json:"interest_cost,omitempty"`
}

type simulationListItem struct {
	PublicID  string
	CreatedAt string
	Title     string
	SalePrice float64
}

type simulationListItemView struct {
	PublicID  string
	CreatedAt string
	Title     string
	SalePrice string
}

type simulationsViewData struct {
	baseViewData
	Query       string
	Simulations []simulationListItemView
}

type simulationDetail struct {
	PublicID  string
	CreatedAt string
	Title     string
	Notes     string
	Inputs    simulationInputs
	Result    simulationResult
}

type simulationDetailViewData struct {
	baseViewData
	PublicID      string
	CreatedAt     string
	Title         string
	Notes         string
	SaleTypeLabel string
	BasisLabel    string
	PurchasePrice string
	TaxPercent    string
	ProfitPercent string
	InterestRate  string
	Result        *resultView
}

func (s *server) handleSimulationsList(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	simulations, err := s.listSimulations(query)
	if err != nil {
		http.Error(w, "failed to load simulations", http.StatusInternalServerError)
		return
	}

	views := make([]simulationListItemView, 0, len(simulations))
	for _, item := range simulations {
		views = append(views, simulationListItemView{
			PublicID:  item.PublicID,
			CreatedAt: item.CreatedAt,
			Title:     item.Title,
			SalePrice: format.BRL(item.SalePrice),
		})
	}

	s.renderTemplate(w, "simulations.html", simulationsViewData{
		baseViewData: baseViewData{
			SuccessMessage: r.URL.Query().Get("success"),
		},
		Query:       query,
		Simulations: views,
	})
}

func (s *server) handleSimulationCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	values, err := parseCalcForm(r)
	if err != nil {
		http.Redirect(w, r, "/?error="+url.QueryEscape(err.Error()), http.StatusSeeOther)
		return
	}

	taxRate, err := s.effectiveTaxRate()
	if err != nil {
		http.Error(w, "failed to load tax configuration", http.StatusInternalServerError)
		return
	}

	result, err := pricing.Calculate(values.toPricingInput(taxRate))
	if err != nil {
		http.Redirect(w, r, "/?error="+url.QueryEscape(err.Error()), http.StatusSeeOther)
		return
	}

	publicID, err := s.insertSimulation(r, values, taxRate, result)
	if err != nil {
		http.Error(w, "failed to save simulation", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/simulations/"+publicID, http.StatusSeeOther)
}

func (s *server) handleSimulationDetail(w http.ResponseWriter, r *http.Request) {
	publicID := chi.URLParam(r, "publicID")

	detail, err := s.getSimulationDetail(publicID)
	if errors.Is(err, sql.ErrNoRows) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, "failed to load simulation", http.StatusInternalServerError)
		return
	}

	s.renderTemplate(w, "simulation_detail.html", buildSimulationDetailView(detail))
}

func (s *server) insertSimulation(r *http.Request, values calcFormValues, taxRate float64, result pricing.Result) (string, error) {
	title := strings.TrimSpace(r.FormValue("title"))
	notes := strings.TrimSpace(r.FormValue("notes"))

	inputsJSON, err := json.Marshal(simulationInputs{
		SaleType:         string(values.SaleType),
		ProfitBasis:      string(values.ProfitBasis),
		PurchasePrice:    values.PurchasePrice,
		TaxRate:          taxRate,
		ProfitRate:       values.ProfitPercent / 100,
		InterestRate:     values.InterestPercent / 100,
		SellerMarginRate: values.SellerMarginPercent / 100,
	})
	if err != nil {
		return "", fmt.Errorf("marshal simulation inputs: %w", err)
	}

	resultJSON, err := json.Marshal(simulationResult{
		SalePrice:       result.SalePrice,
		GrossMargin:     result.GrossMargin,
		NetMultiplier:   result.Breakdown.NetMultiplier,
		SaleDenominator: result.Breakdown.SaleDenominator,
		AnnualPrice:     result.Breakdown.AnnualPrice,
		Taxes:           result.Breakdown.Taxes,
		InterestCost:    result.Breakdown.InterestCost,
	})
	if err != nil {
		return "", fmt.Errorf("marshal simulation result: %w", err)
	}

	publicID := uuid.NewString()
	_, err = s.db.Exec(`
		INSERT INTO simulations (public_id, title, notes, inputs_json, result_json)
		VALUES (?, ?, ?, ?, ?)
	`, publicID, title, notes, string(inputsJSON), string(resultJSON))
	if err != nil {
		return "", fmt.Errorf("insert simulation: %w", err)
	}

	return publicID, nil
}

func (s *server) listSimulations(query string) ([]simulationListItem, error) {
	search := "%" + query + "%"
	rows, err := s.db.Query(`
		SELECT
			public_id,
			created_at,
			COALESCE(title, ''),
			result_json
		FROM simulations
		WHERE (? = '' OR COALESCE(title, '') LIKE ? OR COALESCE(notes, '') LIKE ?)
		ORDER BY datetime(created_at) DESC, id DESC
	`, query, search, search)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	simulations := make([]simulationListItem, 0)
	for rows.Next() {
		var item simulationListItem
		var resultJSON string
		if err := rows.Scan(&item.PublicID, &item.CreatedAt, &item.Title, &resultJSON); err != nil {
			return nil, err
		}
		item.SalePrice = extractSalePriceFromJSON(resultJSON)
		simulations = append(simulations, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return simulations, nil
}

func extractSalePriceFromJSON(resultJSON string) float64 {
	var values map[string]float64
	if err := json.Unmarshal([]byte(resultJSON), &values); err != nil {
		return 0
	}

	for _, key := range []string{"sale_price", "price"} {
		if price, ok := values[key]; ok {
			return price
		}
	}

	return 0
}

// getSimulationDetail reads the stored snapshot; prices are never
// recalculated, so old simulations keep the tax configuration they were
// saved with.
func (s *server) getSimulationDetail(publicID string) (simulationDetail, error) {
	var detail simulationDetail
	var inputsJSON, resultJSON string

	err := s.db.QueryRow(`
		SELECT public_id, created_at, COALESCE(title, ''), COALESCE(notes, ''), inputs_json, result_json
		FROM simulations
		WHERE public_id = ?
	`, publicID).Scan(
		&detail.PublicID,
		&detail.CreatedAt,
		&detail.Title,
		&detail.Notes,
		&inputsJSON,
		&resultJSON,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return simulationDetail{}, err
		}
		return simulationDetail{}, fmt.Errorf("query simulation: %w", err)
	}

	if err := json.Unmarshal([]byte(inputsJSON), &detail.Inputs); err != nil {
		return simulationDetail{}, fmt.Errorf("unmarshal simulation inputs: %w", err)
	}
	if err := json.Unmarshal([]byte(resultJSON), &detail.Result); err != nil {
		return simulationDetail{}, fmt.Errorf("unmarshal simulation result: %w", err)
	}

	return detail, nil
}

func buildSimulationDetailView(detail simulationDetail) simulationDetailViewData {
	values := calcFormValues{
		SaleType:            pricing.SaleType(detail.Inputs.SaleType),
		ProfitBasis:         pricing.ProfitBasis(detail.Inputs.ProfitBasis),
		PurchasePrice:       detail.Inputs.PurchasePrice,
		ProfitPercent:       detail.Inputs.ProfitRate * 100,
		InterestPercent:     detail.Inputs.InterestRate * 100,
		SellerMarginPercent: detail.Inputs.SellerMarginRate * 100,
	}

	result := pricing.Result{
		SalePrice:   detail.Result.SalePrice,
		GrossMargin: detail.Result.GrossMargin,
		Breakdown: pricing.Breakdown{
			NetMultiplier:   detail.Result.NetMultiplier,
			SaleDenominator: detail.Result.SaleDenominator,
			AnnualPrice:     detail.Result.AnnualPrice,
			Taxes:           detail.Result.Taxes,
			InterestCost:    detail.Result.InterestCost,
		},
	}

	basisLabel := "aplicado na compra"
	if values.ProfitBasis == pricing.ProfitOnSale {
		basisLabel = "aplicado na venda"
	}

	view := simulationDetailViewData{
		PublicID:      detail.PublicID,
		CreatedAt:     detail.CreatedAt,
		Title:         detail.Title,
		Notes:         detail.Notes,
		BasisLabel:    basisLabel,
		PurchasePrice: format.BRL(detail.Inputs.PurchasePrice),
		TaxPercent:    format.Percent(detail.Inputs.TaxRate),
		ProfitPercent: format.Percent(detail.Inputs.ProfitRate),
		InterestRate:  format.Percent(detail.Inputs.InterestRate),
		Result:        buildResultView(values, result),
	}
	view.SaleTypeLabel = view.Result.SaleTypeLabel

	return view
}
