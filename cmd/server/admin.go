package main

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/eduardomiranda/resale-price-calculator/internal/format"
)

type taxComponent struct {
	ID          int64
	Name        string
	RatePercent float64
	Notes       string
	Active      bool
}

type taxComponentView struct {
	ID          int64
	Name        string
	RatePercent string
	RateRaw     string
	Notes       string
	Active      bool
}

type taxesViewData struct {
	baseViewData
	Components       []taxComponentView
	EffectivePercent string
}

type calcDefaults struct {
	PurchasePrice       float64
	SelicPercent        float64
	ProfitPercent       float64
	InterestPercent     float64
	SellerMarginPercent float64
	ProfitDelta         int
	InterestDelta       int
}

type defaultsViewData struct {
	baseViewData
	Defaults calcDefaults
}

func (s *server) handleAdminTaxesForm(w http.ResponseWriter, r *http.Request) {
	components, err := s.listTaxComponents()
	if err != nil {
		http.Error(w, "failed to load tax components", http.StatusInternalServerError)
		return
	}

	taxRate, err := s.effectiveTaxRate()
	if err != nil {
		http.Error(w, "failed to load tax configuration", http.StatusInternalServerError)
		return
	}

	s.renderTemplate(w, "admin_taxes.html", taxesViewData{
		baseViewData: baseViewData{
			ErrorMessage:   r.URL.Query().Get("error"),
			SuccessMessage: r.URL.Query().Get("success"),
		},
		Components:       taxComponentViews(components),
		EffectivePercent: format.Percent(taxRate),
	})
}

func (s *server) handleAdminTaxesCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	component, err := parseTaxComponentForm(r)
	if err != nil {
		http.Redirect(w, r, "/admin/taxes?error="+url.QueryEscape(err.Error()), http.StatusSeeOther)
		return
	}

	_, err = s.db.Exec(`
		INSERT INTO tax_components (name, rate_percent, notes, active)
		VALUES (?, ?, ?, ?)
	`, component.Name, component.RatePercent, component.Notes, component.Active)
	if err != nil {
		http.Error(w, "failed to create tax component", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/admin/taxes?success=Tributo+criado+com+sucesso", http.StatusSeeOther)
}

func (s *server) handleAdminTaxesUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid tax component id", http.StatusBadRequest)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	component, err := parseTaxComponentForm(r)
	if err != nil {
		http.Redirect(w, r, "/admin/taxes?error="+url.QueryEscape(err.Error()), http.StatusSeeOther)
		return
	}

	result, err := s.db.Exec(`
		UPDATE tax_components
		SET
			name = ?,
			rate_percent = ?,
			notes = ?,
			active = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, component.Name, component.RatePercent, component.Notes, component.Active, id)
	if err != nil {
		http.Error(w, "failed to update tax component", http.StatusInternalServerError)
		return
	}

	affected, err := result.RowsAffected()
	if err != nil {
		http.Error(w, "failed to update tax component", http.StatusInternalServerError)
		return
	}
	if affected == 0 {
		http.NotFound(w, r)
		return
	}

	http.Redirect(w, r, "/admin/taxes?success=Tributo+atualizado+com+sucesso", http.StatusSeeOther)
}

func (s *server) handleAdminDefaultsForm(w http.ResponseWriter, r *http.Request) {
	defaults, err := s.getCalcDefaults()
	if err != nil {
		http.Error(w, "failed to load calculator defaults", http.StatusInternalServerError)
		return
	}

	s.renderTemplate(w, "admin_defaults.html", defaultsViewData{Defaults: defaults})
}

func (s *server) handleAdminDefaultsSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	defaults, validationErr := parseCalcDefaultsForm(r)
	if validationErr != nil {
		w.WriteHeader(http.StatusBadRequest)
		s.renderTemplate(w, "admin_defaults.html", defaultsViewData{
			baseViewData: baseViewData{ErrorMessage: validationErr.Error()},
			Defaults:     defaults,
		})
		return
	}

	if err := s.updateCalcDefaults(defaults); err != nil {
		http.Error(w, "failed to save calculator defaults", http.StatusInternalServerError)
		return
	}

	s.renderTemplate(w, "admin_defaults.html", defaultsViewData{
		baseViewData: baseViewData{SuccessMessage: "Configuração salva com sucesso."},
		Defaults:     defaults,
	})
}

func parseTaxComponentForm(r *http.Request) (taxComponent, error) {
	component := taxComponent{
		Name:   strings.TrimSpace(r.FormValue("name")),
		Notes:  strings.TrimSpace(r.FormValue("notes")),
		Active: r.FormValue("active") == "1",
	}

	if component.Name == "" {
		return component, fmt.Errorf("name é obrigatório")
	}

	var err error
	component.RatePercent, err = parsePercent(r.FormValue("rate_percent"), "rate_percent")
	if err != nil {
		return component, err
	}

	return component, nil
}

func parseCalcDefaultsForm(r *http.Request) (calcDefaults, error) {
	defaults := calcDefaults{}

	var err error
	if defaults.PurchasePrice, err = parsePositiveFloat(r.FormValue("purchase_price"), "purchase_price"); err != nil {
		return defaults, err
	}
	if defaults.SelicPercent, err = parseNonNegativeFloat(r.FormValue("selic_percent"), "selic_percent"); err != nil {
		return defaults, err
	}
	if defaults.ProfitPercent, err = parsePercent(r.FormValue("profit_percent"), "profit_percent"); err != nil {
		return defaults, err
	}
	if defaults.InterestPercent, err = parseNonNegativeFloat(r.FormValue("interest_percent"), "interest_percent"); err != nil {
		return defaults, err
	}
	if defaults.SellerMarginPercent, err = parsePercent(r.FormValue("seller_margin_percent"), "seller_margin_percent"); err != nil {
		return defaults, err
	}
	if defaults.ProfitDelta, err = parseDelta(r.FormValue("profit_delta"), "profit_delta"); err != nil {
		return defaults, err
	}
	if defaults.InterestDelta, err = parseDelta(r.FormValue("interest_delta"), "interest_delta"); err != nil {
		return defaults, err
	}

	return defaults, nil
}

func (s *server) listTaxComponents() ([]taxComponent, error) {
	rows, err := s.db.Query(`
		SELECT id, name, rate_percent, COALESCE(notes, ''), active
		FROM tax_components
		ORDER BY rate_percent DESC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query tax components: %w", err)
	}
	defer rows.Close()

	components := make([]taxComponent, 0)
	for rows.Next() {
		var c taxComponent
		if err := rows.Scan(&c.ID, &c.Name, &c.RatePercent, &c.Notes, &c.Active); err != nil {
			return nil, fmt.Errorf("scan tax component: %w", err)
		}
		components = append(components, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tax components: %w", err)
	}

	return components, nil
}

func taxComponentViews(components []taxComponent) []taxComponentView {
	views := make([]taxComponentView, 0, len(components))
	for _, c := range components {
		views = append(views, taxComponentView{
			ID:          c.ID,
			Name:        c.Name,
			RatePercent: format.Percent(c.RatePercent / 100),
			RateRaw:     strconv.FormatFloat(c.RatePercent, 'f', 2, 64),
			Notes:       c.Notes,
			Active:      c.Active,
		})
	}
	return views
}

// effectiveTaxRate returns the decimal tax rate applied on sales: the sum of
// all active tax components.
func (s *server) effectiveTaxRate() (float64, error) {
	var totalPercent float64
	err := s.db.QueryRow(`
		SELECT COALESCE(SUM(rate_percent), 0)
		FROM tax_components
		WHERE active
	`).Scan(&totalPercent)
	if err != nil {
		return 0, fmt.Errorf("sum active tax components: %w", err)
	}
	return totalPercent / 100, nil
}

func (s *server) getCalcDefaults() (calcDefaults, error) {
	var d calcDefaults
	err := s.db.QueryRow(`
		SELECT purchase_price, selic_percent, profit_percent, interest_percent, seller_margin_percent, profit_delta, interest_delta
		FROM calc_defaults
		WHERE id = 1
	`).Scan(
		&d.PurchasePrice,
		&d.SelicPercent,
		&d.ProfitPercent,
		&d.InterestPercent,
		&d.SellerMarginPercent,
		&d.ProfitDelta,
		&d.InterestDelta,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return calcDefaults{}, fmt.Errorf("calc_defaults singleton not found")
		}
		return calcDefaults{}, fmt.Errorf("query calc_defaults: %w", err)
	}
	return d, nil
}

func (s *server) updateCalcDefaults(d calcDefaults) error {
	_, err := s.db.Exec(`
		UPDATE calc_defaults
		SET
			purchase_price = ?,
			selic_percent = ?,
			profit_percent = ?,
			interest_percent = ?,
			seller_margin_percent = ?,
			profit_delta = ?,
			interest_delta = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = 1
	`,
		d.PurchasePrice,
		d.SelicPercent,
		d.ProfitPercent,
		d.InterestPercent,
		d.SellerMarginPercent,
		d.ProfitDelta,
		d.InterestDelta,
	)
	if err != nil {
		return fmt.Errorf("update calc_defaults: %w", err)
	}

	return nil
}
