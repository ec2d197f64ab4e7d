package config

import "testing"

func TestLoad_DefaultsWhenUnset(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("DB_PATH", "")
	t.Setenv("PORT", "")
	t.Setenv("ADMIN_EMAIL", "admin@example.com")
	t.Setenv("ADMIN_PASSWORD", "secret")
	t.Setenv("SESSION_SECRET", "session")

	cfg := Load()

	if cfg.Env != "dev" || !cfg.IsDev() {
		t.Fatalf("expected dev environment by default, got %q", cfg.Env)
	}
	if cfg.DBPath != "./calculadora.db" {
		t.Fatalf("unexpected default db path: %q", cfg.DBPath)
	}
	if cfg.Port != "8080" {
		t.Fatalf("unexpected default port: %q", cfg.Port)
	}
}

func TestLoad_ReadsEnvironment(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("DB_PATH", "/data/app.db")
	t.Setenv("PORT", "9090")
	t.Setenv("ADMIN_EMAIL", "admin@example.com")
	t.Setenv("ADMIN_PASSWORD", "secret")
	t.Setenv("SESSION_SECRET", "session")

	cfg := Load()

	if cfg.IsDev() {
		t.Fatal("prod environment should not report dev")
	}
	if cfg.DBPath != "/data/app.db" {
		t.Fatalf("DBPath = %q", cfg.DBPath)
	}
	if cfg.Port != "9090" {
		t.Fatalf("Port = %q", cfg.Port)
	}
	if cfg.AdminEmail != "admin@example.com" {
		t.Fatalf("AdminEmail = %q", cfg.AdminEmail)
	}
}
