package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "server:\n  base_url: http://cluster.local:9000/\n  timeout_secs: 5\nanalysis:\n  default_k: 4\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	t.Setenv("CLUSTERVIEW_ANALYSIS_K_MAX", "6")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://cluster.local:9000", cfg.Server.BaseURL)
	assert.Equal(t, 5, cfg.Server.TimeoutSecs)
	assert.Equal(t, 4, cfg.Analysis.DefaultK)
	assert.Equal(t, 2, cfg.Analysis.KMin)
	assert.Equal(t, 6, cfg.Analysis.KMax)
}

func TestDefaultKClampedIntoRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "analysis:\n  default_k: 40\n  k_min: 2\n  k_max: 8\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Analysis.DefaultK)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	want := Default()
	want.Viewer.Addr = "127.0.0.1:9999"
	require.NoError(t, Save(path, want))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadDefaultWritesUserConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, path, err := LoadDefault()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", "clusterview", "config.yaml"), path)
	assert.FileExists(t, path)
	assert.Equal(t, Default(), cfg)
}
