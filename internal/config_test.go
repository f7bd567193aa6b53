package internal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadConfig_PartialOverridesDefaults(t *testing.T) {
	// WHY: A config file may set only some keys; everything else keeps its
	// default, and durations are written as Go duration strings.
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "conformkit.yaml")
	content := `
sources:
  trustList: ./snapshot/tsa.pem
fetch:
  timeout: 5s
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Sources.TrustList != "./snapshot/tsa.pem" {
		t.Errorf("TrustList = %q", cfg.Sources.TrustList)
	}
	if cfg.Sources.Products != DefaultProductsURL {
		t.Errorf("Products = %q, want default", cfg.Sources.Products)
	}
	if cfg.Fetch.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v", cfg.Fetch.Timeout)
	}
	if cfg.Fetch.MaxBytes != DefaultConfig().Fetch.MaxBytes || cfg.Serve.Listen != "127.0.0.1:8080" {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	// WHY: An explicit path that is missing, unparseable or invalid must fail
	// instead of silently running against the public registry.
	t.Parallel()
	dir := t.TempDir()

	if _, err := LoadConfig(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing explicit config")
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("sources: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(bad); err == nil || !strings.Contains(err.Error(), "parsing config") {
		t.Errorf("bad yaml: err = %v", err)
	}

	empty := filepath.Join(dir, "empty-source.yaml")
	if err := os.WriteFile(empty, []byte("sources:\n  products: \"\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(empty); err == nil || !strings.Contains(err.Error(), "sources.products") {
		t.Errorf("empty source: err = %v", err)
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	// WHY: The built-in defaults must pass validation and point at the public registry.
	t.Parallel()
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(cfg.Sources.Products, "https://") || !strings.HasSuffix(cfg.Sources.TrustList, ".pem") {
		t.Errorf("sources = %+v", cfg.Sources)
	}
}
