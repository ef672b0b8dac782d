package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadFull(t *testing.T) {
	path := writeConfig(t, `
paths:
  igrf_coeffs: /data/igrf13coeffs.txt
  coeff_prefix: /data/aacgm_coeffs-13-
cache:
  enabled: true
  dir: /var/cache/magconv
sites:
  db_path: /var/lib/magconv/sites.db
logging:
  enabled: true
  dir: /var/log/magconv
  retention_days: 30
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Paths.IGRFCoeffs != "/data/igrf13coeffs.txt" {
		t.Fatalf("igrf = %q", cfg.Paths.IGRFCoeffs)
	}
	if cfg.Paths.CoeffPrefix != "/data/aacgm_coeffs-13-" {
		t.Fatalf("prefix = %q", cfg.Paths.CoeffPrefix)
	}
	if !cfg.Cache.Enabled || cfg.Cache.Dir != "/var/cache/magconv" {
		t.Fatalf("cache = %+v", cfg.Cache)
	}
	if cfg.Sites.DBPath != "/var/lib/magconv/sites.db" {
		t.Fatalf("sites = %+v", cfg.Sites)
	}
	if !cfg.Logging.Enabled || cfg.Logging.RetentionDays != 30 {
		t.Fatalf("logging = %+v", cfg.Logging)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "cache:\n  enabled: true\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Cache.Dir != "cache" {
		t.Fatalf("cache dir = %q, want default", cfg.Cache.Dir)
	}
	if cfg.Sites.DBPath != "sites.db" {
		t.Fatalf("sites db = %q, want default", cfg.Sites.DBPath)
	}
	if cfg.Logging.Dir != "logs" || cfg.Logging.RetentionDays != 14 {
		t.Fatalf("logging = %+v, want defaults", cfg.Logging)
	}
	if cfg.Paths.IGRFCoeffs != "" {
		t.Fatalf("igrf = %q, want empty for env fallback", cfg.Paths.IGRFCoeffs)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := writeConfig(t, "paths: [broken")
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}
