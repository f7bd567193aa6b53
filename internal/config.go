package internal

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Public conformance registry documents.
const (
	DefaultProductsURL  = "https://raw.githubusercontent.com/c2pa-org/conformance-public/refs/heads/main/conforming-products/conforming-products-list.json"
	DefaultTrustListURL = "https://raw.githubusercontent.com/c2pa-org/conformance-public/refs/heads/main/trust-list/C2PA-TSA-TRUST-LIST.pem"
)

// DefaultConfigFile is read from the working directory when no config path
// is given.
const DefaultConfigFile = "conformkit.yaml"

// SourcesConfig names where the two registry documents come from. Each
// value is an http(s) URL, a file:// URL or a local path.
type SourcesConfig struct {
	Products  string `yaml:"products"`
	TrustList string `yaml:"trustList"`
}

// FetchConfig controls document retrieval.
type FetchConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	MaxBytes  int64         `yaml:"maxBytes"`
	UserAgent string        `yaml:"userAgent"`
}

// ServeConfig controls the HTTP API.
type ServeConfig struct {
	Listen string `yaml:"listen"`
}

// Config is the conformkit.yaml structure.
type Config struct {
	Sources SourcesConfig `yaml:"sources"`
	Fetch   FetchConfig   `yaml:"fetch"`
	Serve   ServeConfig   `yaml:"serve"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		Sources: SourcesConfig{
			Products:  DefaultProductsURL,
			TrustList: DefaultTrustListURL,
		},
		Fetch: FetchConfig{
			Timeout:   30 * time.Second,
			MaxBytes:  16 << 20,
			UserAgent: "conformkit",
		},
		Serve: ServeConfig{
			Listen: "127.0.0.1:8080",
		},
	}
}

// LoadConfig reads a YAML config over the defaults. Keys absent from the
// file keep their default. An empty path reads DefaultConfigFile if it
// exists and otherwise returns the defaults; an explicit path must exist.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the values a config file may have broken.
func (c Config) Validate() error {
	if c.Sources.Products == "" {
		return errors.New("sources.products must not be empty")
	}
	if c.Sources.TrustList == "" {
		return errors.New("sources.trustList must not be empty")
	}
	if c.Fetch.Timeout < 0 {
		return errors.New("fetch.timeout must not be negative")
	}
	if c.Fetch.MaxBytes < 0 {
		return errors.New("fetch.maxBytes must not be negative")
	}
	return nil
}
