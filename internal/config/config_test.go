package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, "fs", cfg.Blob.Driver)
	assert.Equal(t, "./exports", cfg.Blob.FSRoot)
	assert.Equal(t, 5, cfg.Reports.TopProductsLimit)
	assert.Equal(t, 5, cfg.Reports.LowStockThreshold)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.True(t, cfg.Seed.DemoEnabled())
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"storage driver", func(c *Config) { c.Storage.Driver = "postgres" }, "storage.driver"},
		{"blob driver", func(c *Config) { c.Blob.Driver = "gcs" }, "blob.driver"},
		{"s3 bucket required", func(c *Config) { c.Blob.Driver = "s3"; c.Blob.S3Bucket = "" }, "s3_bucket"},
		{"log level", func(c *Config) { c.Logging.Level = "verbose" }, "logging.level"},
		{"log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"top products limit", func(c *Config) { c.Reports.TopProductsLimit = -1 }, "top_products_limit"},
		{"low stock threshold", func(c *Config) { c.Reports.LowStockThreshold = -1 }, "low_stock_threshold"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestMergeOverlaysNonZeroFields(t *testing.T) {
	demoOff := false
	base := DefaultConfig()
	base.Merge(&Config{
		Storage: StorageConfig{Driver: "sqlite"},
		Blob:    BlobConfig{Driver: "s3", S3Bucket: "retail-exports"},
		Reports: ReportsConfig{TopProductsLimit: 10},
		Logging: LoggingConfig{Level: "debug"},
		Seed:    SeedConfig{Demo: &demoOff},
	})

	assert.Equal(t, "sqlite", base.Storage.Driver)
	assert.Equal(t, "s3", base.Blob.Driver)
	assert.Equal(t, "retail-exports", base.Blob.S3Bucket)
	assert.Equal(t, "./exports", base.Blob.FSRoot, "unset field keeps default")
	assert.Equal(t, 10, base.Reports.TopProductsLimit)
	assert.Equal(t, 5, base.Reports.LowStockThreshold, "unset field keeps default")
	assert.Equal(t, "debug", base.Logging.Level)
	assert.Equal(t, "text", base.Logging.Format, "unset field keeps default")
	assert.False(t, base.Seed.DemoEnabled(), "seed overlay turns demo off")

	base.Merge(&Config{Storage: StorageConfig{Driver: "memory"}})
	assert.False(t, base.Seed.DemoEnabled(), "layer without seed section keeps prior value")

	base.Merge(nil)
	assert.Equal(t, "memory", base.Storage.Driver)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "retailcore.yaml")
	cfg := DefaultConfig()
	cfg.Storage.Driver = "sqlite"
	cfg.Logging.Format = "json"
	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", loaded.Storage.Driver)
	assert.Equal(t, "json", loaded.Logging.Format)
	assert.Equal(t, 5, loaded.Reports.TopProductsLimit)
}

func TestLoadFromFileRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage: [not a mapping"), 0o644))
	_, err := LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse")
}
