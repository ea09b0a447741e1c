package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir replicates testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Errorf("restoring working directory: %v", err)
		}
	})
}

func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoaderLayeredPrecedence(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	chdir(t, dir)

	writeConfig(t, filepath.Join(dir, UserConfigDir, UserConfigFile),
		"logging:\n  level: debug\nreports:\n  top_products_limit: 3\n")
	writeConfig(t, filepath.Join(dir, ProjectConfigFile),
		"logging:\n  level: warn\n")
	explicitPath := filepath.Join(dir, "override.yaml")
	writeConfig(t, explicitPath,
		"storage:\n  driver: sqlite\n")

	cfg, err := NewLoader(nil).Load(explicitPath)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, "warn", cfg.Logging.Level, "project layer overrides user layer")
	assert.Equal(t, 3, cfg.Reports.TopProductsLimit, "user layer survives when higher layers are silent")
	assert.Equal(t, "fs", cfg.Blob.Driver, "untouched field keeps default")
}

func TestLoaderSeedDemoCanBeDisabled(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	chdir(t, dir)

	path := filepath.Join(dir, "noseed.yaml")
	writeConfig(t, path, "seed:\n  demo: false\n")

	cfg, err := NewLoader(nil).Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.Seed.DemoEnabled())
}

func TestLoaderDefaultsWithoutAnyFiles(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	chdir(t, dir)

	cfg, err := NewLoader(nil).Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoaderMissingExplicitPathFails(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	chdir(t, dir)

	_, err := NewLoader(nil).Load(filepath.Join(dir, "absent.yaml"))
	require.Error(t, err)
}

func TestLoaderRejectsInvalidMergedConfig(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	chdir(t, dir)

	explicitPath := filepath.Join(dir, "bad.yaml")
	writeConfig(t, explicitPath, "storage:\n  driver: postgres\n")

	_, err := NewLoader(nil).Load(explicitPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage.driver")
}
