// Package config loads the converter configuration from a YAML file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the complete converter configuration.
type Config struct {
	Paths   PathsConfig   `yaml:"paths"`
	Cache   CacheConfig   `yaml:"cache"`
	Sites   SitesConfig   `yaml:"sites"`
	Logging LoggingConfig `yaml:"logging"`
}

// PathsConfig points at the coefficient tables. Empty values fall back to
// the environment and then the module defaults.
type PathsConfig struct {
	IGRFCoeffs  string `yaml:"igrf_coeffs"`
	CoeffPrefix string `yaml:"coeff_prefix"`
}

// CacheConfig controls the batch result cache.
type CacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
}

// SitesConfig points at the named site catalog.
type SitesConfig struct {
	DBPath string `yaml:"db_path"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Dir           string `yaml:"dir"`
	RetentionDays int    `yaml:"retention_days"`
}

// Default returns a configuration with usable defaults for every field.
func Default() *Config {
	return &Config{
		Cache:   CacheConfig{Enabled: false, Dir: "cache"},
		Sites:   SitesConfig{DBPath: "sites.db"},
		Logging: LoggingConfig{Enabled: false, Dir: "logs", RetentionDays: 14},
	}
}

// Load loads configuration from a YAML file, applying defaults for fields
// the file leaves unset.
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.applyDefaults()

	return cfg, nil
}

func (c *Config) applyDefaults() {
	d := Default()
	if c.Cache.Dir == "" {
		c.Cache.Dir = d.Cache.Dir
	}
	if c.Sites.DBPath == "" {
		c.Sites.DBPath = d.Sites.DBPath
	}
	if c.Logging.Dir == "" {
		c.Logging.Dir = d.Logging.Dir
	}
	if c.Logging.RetentionDays <= 0 {
		c.Logging.RetentionDays = d.Logging.RetentionDays
	}
}

// Print displays the configuration.
func (c *Config) Print() {
	igrf := c.Paths.IGRFCoeffs
	if igrf == "" {
		igrf = "(environment or module default)"
	}
	prefix := c.Paths.CoeffPrefix
	if prefix == "" {
		prefix = "(environment or module default)"
	}
	fmt.Printf("IGRF coefficients: %s\n", igrf)
	fmt.Printf("AACGM prefix: %s\n", prefix)
	if c.Cache.Enabled {
		fmt.Printf("Cache: %s\n", c.Cache.Dir)
	}
	fmt.Printf("Sites DB: %s\n", c.Sites.DBPath)
	if c.Logging.Enabled {
		fmt.Printf("Logging: %s (keep %d days)\n", c.Logging.Dir, c.Logging.RetentionDays)
	}
}
