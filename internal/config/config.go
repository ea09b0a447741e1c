// Package config provides configuration loading and management for retailcore.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the complete retailcore configuration.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Blob    BlobConfig    `yaml:"blob"`
	Reports ReportsConfig `yaml:"reports"`
	Logging LoggingConfig `yaml:"logging"`
	Seed    SeedConfig    `yaml:"seed"`
}

// StorageConfig selects the entity store backend.
type StorageConfig struct {
	// Driver is the storage backend: memory or sqlite (default memory).
	// Both hold state for the process lifetime only.
	Driver string `yaml:"driver"`
}

// BlobConfig selects where report export artifacts land.
type BlobConfig struct {
	// Driver is the blob backend: fs, s3, or memory (default fs).
	Driver string `yaml:"driver"`
	// FSRoot is the directory root when driver=fs (default ./exports).
	FSRoot string `yaml:"fs_root"`
	// S3Bucket is required when driver=s3.
	S3Bucket string `yaml:"s3_bucket"`
	// S3Region defaults to us-east-1.
	S3Region string `yaml:"s3_region"`
	// S3Endpoint overrides the endpoint, e.g. for MinIO.
	S3Endpoint string `yaml:"s3_endpoint"`
	// S3PathStyle enables path-style addressing.
	S3PathStyle bool `yaml:"s3_path_style"`
}

// ReportsConfig holds report parameter defaults.
type ReportsConfig struct {
	// TopProductsLimit is the default row cap for the top products report.
	TopProductsLimit int `yaml:"top_products_limit"`
	// LowStockThreshold is the default threshold for the low stock report.
	LowStockThreshold int `yaml:"low_stock_threshold"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error (default info).
	Level string `yaml:"level"`
	// Format is text or json (default text).
	Format string `yaml:"format"`
}

// SeedConfig controls demo dataset loading.
type SeedConfig struct {
	// Demo loads the demo dataset on startup (default true). A nil value means
	// the layer leaves the setting untouched.
	Demo *bool `yaml:"demo"`
}

// DemoEnabled reports whether demo seeding is on. Unset means enabled.
func (s SeedConfig) DemoEnabled() bool { return s.Demo == nil || *s.Demo }

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	demo := true
	return &Config{
		Storage: StorageConfig{Driver: "memory"},
		Blob:    BlobConfig{Driver: "fs", FSRoot: "./exports"},
		Reports: ReportsConfig{
			TopProductsLimit:  5,
			LowStockThreshold: 5,
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Seed:    SeedConfig{Demo: &demo},
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("storage.driver must be memory or sqlite, got %q", c.Storage.Driver)
	}
	switch c.Blob.Driver {
	case "fs", "s3", "memory":
	default:
		return fmt.Errorf("blob.driver must be fs, s3, or memory, got %q", c.Blob.Driver)
	}
	if c.Blob.Driver == "s3" && c.Blob.S3Bucket == "" {
		return fmt.Errorf("blob.s3_bucket is required when blob.driver is s3")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}
	if c.Reports.TopProductsLimit < 0 {
		return fmt.Errorf("reports.top_products_limit must not be negative")
	}
	if c.Reports.LowStockThreshold < 0 {
		return fmt.Errorf("reports.low_stock_threshold must not be negative")
	}
	return nil
}

// Merge overlays non-zero fields from other onto c.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}
	if other.Storage.Driver != "" {
		c.Storage.Driver = other.Storage.Driver
	}
	if other.Blob.Driver != "" {
		c.Blob.Driver = other.Blob.Driver
	}
	if other.Blob.FSRoot != "" {
		c.Blob.FSRoot = other.Blob.FSRoot
	}
	if other.Blob.S3Bucket != "" {
		c.Blob.S3Bucket = other.Blob.S3Bucket
	}
	if other.Blob.S3Region != "" {
		c.Blob.S3Region = other.Blob.S3Region
	}
	if other.Blob.S3Endpoint != "" {
		c.Blob.S3Endpoint = other.Blob.S3Endpoint
	}
	if other.Blob.S3PathStyle {
		c.Blob.S3PathStyle = true
	}
	if other.Reports.TopProductsLimit != 0 {
		c.Reports.TopProductsLimit = other.Reports.TopProductsLimit
	}
	if other.Reports.LowStockThreshold != 0 {
		c.Reports.LowStockThreshold = other.Reports.LowStockThreshold
	}
	if other.Logging.Level != "" {
		c.Logging.Level = other.Logging.Level
	}
	if other.Logging.Format != "" {
		c.Logging.Format = other.Logging.Format
	}
	if other.Seed.Demo != nil {
		c.Seed.Demo = other.Seed.Demo
	}
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &config, nil
}

// SaveToFile writes the configuration as YAML, creating parent directories.
func (c *Config) SaveToFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
