package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv("PORT", "")
	t.Setenv("CATALOG_FILE", "")
	t.Setenv("PACKAGING_FILE", "")
	t.Setenv("RATE_LIMIT_RPS", "")
	t.Setenv("RATE_LIMIT_BURST", "")
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Port != defaultPort {
		t.Fatalf("expected default port %s, got %s", defaultPort, cfg.Port)
	}
	if len(cfg.Catalog) == 0 {
		t.Fatalf("expected default catalog, got none")
	}
	if len(cfg.PackagingTable) == 0 {
		t.Fatalf("expected default packaging table, got none")
	}
	if cfg.ShutdownGracePeriod != 10*time.Second {
		t.Fatalf("unexpected shutdown grace period: %s", cfg.ShutdownGracePeriod)
	}
	if cfg.RateLimitRPS != defaultRateLimitRPS || cfg.RateLimitBurst != defaultRateLimitBurst {
		t.Fatalf("unexpected rate limit defaults: %v/%v", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("RATE_LIMIT_RPS", "5")
	t.Setenv("RATE_LIMIT_BURST", "10")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Port != "9000" {
		t.Fatalf("expected overridden port, got %s", cfg.Port)
	}
	if cfg.RateLimitRPS != 5 || cfg.RateLimitBurst != 10 {
		t.Fatalf("expected overridden rate limit, got %v/%v", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
}

func TestLoadCLIOverridesWinOverEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")

	port := "7777"
	cfg, err := Load(&CLIOverrides{Port: &port})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Port != "7777" {
		t.Fatalf("expected CLI port to win, got %s", cfg.Port)
	}
}

func TestLoadYAMLConfigFile(t *testing.T) {
	clearEnv(t)

	path := writeTempFile(t, "config.yaml", `
port: "8181"
shutdown_grace_period: 3s
enable_request_logging: true
rate_limit:
  rps: 2
  burst: 4
`)

	cfg, err := Load(&CLIOverrides{ConfigFile: path})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Port != "8181" {
		t.Fatalf("expected YAML port, got %s", cfg.Port)
	}
	if cfg.ShutdownGracePeriod != 3*time.Second {
		t.Fatalf("unexpected grace period: %s", cfg.ShutdownGracePeriod)
	}
	if cfg.RateLimitRPS != 2 || cfg.RateLimitBurst != 4 {
		t.Fatalf("unexpected rate limit: %v/%v", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
}

func TestLoadCatalogFile(t *testing.T) {
	clearEnv(t)

	path := writeTempFile(t, "catalog.yaml", `
containers:
  - name: 20GP
    category: standard
    inner_length_cm: 589.8
    inner_width_cm: 235.2
    inner_height_cm: 239.3
    max_payload_kg: 28200
    tare_weight_kg: 2300
    cost: 1
  - name: FR
    category: flat-rack
    inner_length_cm: 1180
    inner_width_cm: 223
    inner_height_cm: 197
    max_payload_kg: 39300
    tare_weight_kg: 5500
    cost: 3.2
    packaging_codes: [CS, CR]
`)

	cfg, err := Load(&CLIOverrides{CatalogFile: &path})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if len(cfg.Catalog) != 2 {
		t.Fatalf("expected 2 container types, got %d", len(cfg.Catalog))
	}
	if cfg.Catalog[1].Name != "FR" || len(cfg.Catalog[1].PackagingCodes) != 2 {
		t.Fatalf("unexpected catalog entry: %+v", cfg.Catalog[1])
	}
}

func TestLoadPackagingFile(t *testing.T) {
	clearEnv(t)

	path := writeTempFile(t, "packaging.yaml", `
synonyms:
  case: CS
  "wooden case": CS
  drum: DR
`)
	t.Setenv("PACKAGING_FILE", path)

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if len(cfg.PackagingTable) != 3 || cfg.PackagingTable["wooden case"] != "CS" {
		t.Fatalf("unexpected packaging table: %v", cfg.PackagingTable)
	}
}

func TestLoadRejectsBadFiles(t *testing.T) {
	clearEnv(t)

	t.Run("missing catalog file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing.yaml")
		if _, err := Load(&CLIOverrides{CatalogFile: &path}); err == nil {
			t.Fatalf("expected error for missing file")
		}
	})

	t.Run("empty catalog file", func(t *testing.T) {
		path := writeTempFile(t, "catalog.yaml", "containers: []\n")
		if _, err := Load(&CLIOverrides{CatalogFile: &path}); err == nil {
			t.Fatalf("expected error for empty catalog")
		}
	})

	t.Run("invalid container entry", func(t *testing.T) {
		path := writeTempFile(t, "catalog.yaml", `
containers:
  - name: BROKEN
    category: standard
    inner_length_cm: 0
    inner_width_cm: 235.2
    inner_height_cm: 239.3
    max_payload_kg: 28200
`)
		if _, err := Load(&CLIOverrides{CatalogFile: &path}); err == nil {
			t.Fatalf("expected validation error")
		}
	})

	t.Run("empty packaging file", func(t *testing.T) {
		path := writeTempFile(t, "packaging.yaml", "synonyms: {}\n")
		if _, err := Load(&CLIOverrides{PackagingFile: &path}); err == nil {
			t.Fatalf("expected error for empty table")
		}
	})
}
