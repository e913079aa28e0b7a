// Package config loads and validates the flashmap configuration.
package config

import "github.com/flashmap/flashmap/internal/report"

// Config holds the tool configuration. Command-line flags override any
// value loaded from file or environment.
type Config struct {
	Report ReportConfig `mapstructure:"report"`
}

// ReportConfig controls report rendering defaults.
type ReportConfig struct {
	// TopCount is the default number of symbols in a listing; 0 lists all.
	TopCount int `mapstructure:"top_count"`
	// NameWidth is the wrap width of the symbol name column.
	NameWidth int `mapstructure:"name_width"`
	// Human switches sizes to human-readable units (KiB, MiB).
	Human bool `mapstructure:"human"`
	// Region is the default region filter: rom, ram, or both.
	Region string `mapstructure:"region"`
	// Demangle selects demangling detail: simplified, templates, or full.
	Demangle string `mapstructure:"demangle"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Report: ReportConfig{
			TopCount:  25,
			NameWidth: report.DefaultNameWidth,
			Human:     false,
			Region:    "both",
			Demangle:  "full",
		},
	}
}
