package seed

import (
	"database/sql"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// defaultTaxComponents is the Lucro Presumido breakdown the calculator ships
// with; the rates add up to the 17.43% effective tax rate.
var defaultTaxComponents = []struct {
	name        string
	ratePercent float64
	notes       string
}{
	{"PIS", 0.65, "Cumulativo, sobre o faturamento bruto."},
	{"COFINS", 3.00, "Cumulativo, sobre o faturamento bruto."},
	{"IRPJ", 4.80, "Lucro Presumido: 15% sobre a base presumida de 32%."},
	{"Adicional de IRPJ", 3.20, "10% sobre a base presumida acima de R$ 20.000/mês."},
	{"CSLL", 2.88, "Sobre a base presumida."},
	{"ISS", 2.90, "SP, software/serviço, sobre o faturamento bruto."},
}

// Config contains the values required by startup seed.
type Config struct {
	AdminEmail    string
	AdminPassword string
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
	Updates int
}

// Run executes the startup seed in an idempotent way.
func Run(db *sql.DB, cfg Config) (Stats, error) {
	tx, err := db.Begin()
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	if err := seedAdmin(tx, cfg.AdminEmail, cfg.AdminPassword, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if err := ensureTaxComponents(tx, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if err := ensureCalcDefaults(tx, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func seedAdmin(tx *sql.Tx, email, password string, stats *Stats) error {
	if email == "" || password == "" {
		return nil
	}

	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM users WHERE email = ? LIMIT 1)`, email).Scan(&exists); err != nil {
		return fmt.Errorf("check admin user existence: %w", err)
	}
	if exists {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	if _, err := tx.Exec(`INSERT INTO users (email, password_hash) VALUES (?, ?)`, email, string(hash)); err != nil {
		return fmt.Errorf("insert admin user: %w", err)
	}
	stats.Inserts++
	return nil
}

func ensureTaxComponents(tx *sql.Tx, stats *Stats) error {
	for _, component := range defaultTaxComponents {
		var exists bool
		if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM tax_components WHERE name = ? LIMIT 1)`, component.name).Scan(&exists); err != nil {
			return fmt.Errorf("check tax component existence: %w", err)
		}
		if exists {
			continue
		}

		if _, err := tx.Exec(`
			INSERT INTO tax_components (name, rate_percent, notes, active)
			VALUES (?, ?, ?, ?)
		`, component.name, component.ratePercent, component.notes, true); err != nil {
			return fmt.Errorf("insert tax component %q: %w", component.name, err)
		}
		stats.Inserts++
	}
	return nil
}

func ensureCalcDefaults(tx *sql.Tx, stats *Stats) error {
	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM calc_defaults WHERE id = 1)`).Scan(&exists); err != nil {
		return fmt.Errorf("check calc defaults existence: %w", err)
	}
	if exists {
		return nil
	}

	if _, err := tx.Exec(`
		INSERT INTO calc_defaults (
			id,
			purchase_price,
			selic_percent,
			profit_percent,
			interest_percent,
			seller_margin_percent,
			profit_delta,
			interest_delta
		)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?)
	`, 100.0, 15.0, 20.0, 12.0, 10.0, 3, 3); err != nil {
		return fmt.Errorf("insert calc defaults singleton: %w", err)
	}
	stats.Inserts++
	return nil
}
