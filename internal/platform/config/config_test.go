package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var configEnv = []string{
	"CONFIG_FILE", "SERVICE_NAME", "HTTP_PORT", "POSTGRES_DSN", "AUTO_MIGRATE",
	"SITE_URL", "ID_DOMAIN", "IDENTITY_HEADER", "HARVEST_TOKEN", "MAX_BODY_BYTES",
	"FETCH_TIMEOUT", "SHUTDOWN_TIMEOUT", "FETCH_ATTEMPTS", "DB_MAX_OPEN_CONNS",
	"DB_MAX_IDLE_CONNS", "DB_CONN_MAX_LIFETIME", "DB_LOG_QUERIES",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range configEnv {
		t.Setenv(name, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg != Defaults() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SITE_URL", "https://events.example.org/")
	t.Setenv("AUTO_MIGRATE", "off")
	t.Setenv("FETCH_TIMEOUT", "2s")
	t.Setenv("FETCH_ATTEMPTS", "5")
	t.Setenv("HARVEST_TOKEN", "s3cret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.SiteURL != "https://events.example.org" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.SiteURL)
	}
	if cfg.AutoMigrate {
		t.Fatal("expected auto migrate disabled")
	}
	if cfg.FetchTimeout != 2*time.Second || cfg.FetchAttempts != 5 || cfg.HarvestToken != "s3cret" {
		t.Fatalf("unexpected overrides %+v", cfg)
	}
}

func TestLoadFileThenEnvironment(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	content := "service_name: catalog\nid_domain: events.example.org\nfetch_timeout: 4s\nidentity_header: X-Publisher\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("SERVICE_NAME", "catalog-env")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.ServiceName != "catalog-env" {
		t.Fatalf("expected environment to win, got %q", cfg.ServiceName)
	}
	if cfg.IDDomain != "events.example.org" || cfg.IdentityHeader != "X-Publisher" || cfg.FetchTimeout != 4*time.Second {
		t.Fatalf("expected file values, got %+v", cfg)
	}
	if cfg.HTTPPort != "8080" {
		t.Fatalf("expected default port to survive, got %q", cfg.HTTPPort)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"zero attempts":   {"FETCH_ATTEMPTS": "0"},
		"bad attempts":    {"FETCH_ATTEMPTS": "many"},
		"bad duration":    {"FETCH_TIMEOUT": "soon"},
		"relative site":   {"SITE_URL": "not a url"},
		"missing file":    {"CONFIG_FILE": "/does/not/exist.yaml"},
		"negative bodies": {"MAX_BODY_BYTES": "-1"},
		"negative pool":   {"DB_MAX_OPEN_CONNS": "-2"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for key, value := range env {
				t.Setenv(key, value)
			}
			if _, err := Load(); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("service_name: [unterminated\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "parse config file") {
		t.Fatalf("expected parse error, got %v", err)
	}
}
