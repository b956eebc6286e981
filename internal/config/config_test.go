package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 3000 {
		t.Errorf("expected default server port 3000, got %d", cfg.Server.Port)
	}
	if cfg.Database.Host != "localhost" || cfg.Database.Port != 5432 {
		t.Errorf("unexpected database defaults: %s:%d", cfg.Database.Host, cfg.Database.Port)
	}
	if cfg.Database.Name != "patient_registry" {
		t.Errorf("expected default database name patient_registry, got %q", cfg.Database.Name)
	}
	if cfg.Database.MaxConns != 10 {
		t.Errorf("expected default max conns 10, got %d", cfg.Database.MaxConns)
	}
	if cfg.Auth.TokenExpiry != time.Hour {
		t.Errorf("expected default token expiry 1h, got %s", cfg.Auth.TokenExpiry)
	}
	if cfg.Auth.AdminUser != "admin" {
		t.Errorf("expected default admin user, got %q", cfg.Auth.AdminUser)
	}
	if cfg.Audit.ElasticsearchURL != "http://localhost:9200" {
		t.Errorf("unexpected default elasticsearch url %q", cfg.Audit.ElasticsearchURL)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "8080")
	t.Setenv("DATABASE_HOST", "db.internal")
	t.Setenv("DATABASE_PASSWORD", "s3cret")
	t.Setenv("AUTH_JWT_SECRET", "env_secret")
	t.Setenv("AUTH_TOKEN_EXPIRY", "30m")
	t.Setenv("AUDIT_ELASTICSEARCH_URL", "http://es.internal:9200")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("expected server port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Database.Host != "db.internal" {
		t.Errorf("expected database host db.internal, got %q", cfg.Database.Host)
	}
	if cfg.Database.Password != "s3cret" {
		t.Errorf("expected database password override, got %q", cfg.Database.Password)
	}
	if cfg.Auth.JWTSecret != "env_secret" {
		t.Errorf("expected jwt secret override, got %q", cfg.Auth.JWTSecret)
	}
	if cfg.Auth.TokenExpiry != 30*time.Minute {
		t.Errorf("expected token expiry 30m, got %s", cfg.Auth.TokenExpiry)
	}
	if cfg.Audit.ElasticsearchURL != "http://es.internal:9200" {
		t.Errorf("unexpected elasticsearch url %q", cfg.Audit.ElasticsearchURL)
	}
}
