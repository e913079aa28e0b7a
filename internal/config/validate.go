package config

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
)

var (
	// ErrInvalidCount indicates a negative symbol count.
	ErrInvalidCount = errors.New("invalid top_count")

	// ErrInvalidWidth indicates a non-positive name column width.
	ErrInvalidWidth = errors.New("invalid name_width")

	// ErrInvalidRegion indicates an unknown region filter.
	ErrInvalidRegion = errors.New("invalid region")

	// ErrInvalidDemangle indicates an unknown demangle mode.
	ErrInvalidDemangle = errors.New("invalid demangle mode")
)

// Validate checks the configuration and reports every problem it finds,
// not just the first.
func Validate(cfg *Config) error {
	var err *multierror.Error

	if cfg.Report.TopCount < 0 {
		err = multierror.Append(err, fmt.Errorf("%w: %d", ErrInvalidCount, cfg.Report.TopCount))
	}
	if cfg.Report.NameWidth <= 0 {
		err = multierror.Append(err, fmt.Errorf("%w: %d", ErrInvalidWidth, cfg.Report.NameWidth))
	}
	switch cfg.Report.Region {
	case "rom", "ram", "both":
	default:
		err = multierror.Append(err, fmt.Errorf("%w: %q (expected rom, ram, or both)", ErrInvalidRegion, cfg.Report.Region))
	}
	switch cfg.Report.Demangle {
	case "simplified", "templates", "full":
	default:
		err = multierror.Append(err, fmt.Errorf("%w: %q (expected simplified, templates, or full)", ErrInvalidDemangle, cfg.Report.Demangle))
	}

	return err.ErrorOrNil()
}
