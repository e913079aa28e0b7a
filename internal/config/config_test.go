package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for configuration:
// - The built-in defaults validate
// - Validation reports every violation at once, with typed sentinels
// - Load merges a config file over the defaults
// - Environment variables override the file
// - A malformed or missing explicit config file is an error

func TestDefault_IsValid(t *testing.T) {
	require.NoError(t, Validate(Default()))
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.Report.TopCount = -1
	cfg.Report.NameWidth = 0
	cfg.Report.Region = "flash"
	cfg.Report.Demangle = "none"

	err := Validate(cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidCount)
	assert.ErrorIs(t, err, ErrInvalidWidth)
	assert.ErrorIs(t, err, ErrInvalidRegion)
	assert.ErrorIs(t, err, ErrInvalidDemangle)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flashmap.yaml")
	require.NoError(t, os.WriteFile(path, []byte("report:\n  top_count: 5\n  region: ram\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Report.TopCount)
	assert.Equal(t, "ram", cfg.Report.Region)
	// Untouched keys keep their defaults.
	assert.Equal(t, Default().Report.NameWidth, cfg.Report.NameWidth)
	assert.Equal(t, "full", cfg.Report.Demangle)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flashmap.yaml")
	require.NoError(t, os.WriteFile(path, []byte("report:\n  region: ram\n"), 0o644))
	t.Setenv("FLASHMAP_REPORT_REGION", "rom")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "rom", cfg.Report.Region)
}

func TestLoad_InvalidValueFailsValidation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flashmap.yaml")
	require.NoError(t, os.WriteFile(path, []byte("report:\n  region: flash\n"), 0o644))

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrInvalidRegion)
}

func TestLoad_MalformedFileIsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flashmap.yaml")
	require.NoError(t, os.WriteFile(path, []byte("report: [not: a: map\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_MissingExplicitFileIsError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
