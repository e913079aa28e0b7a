package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/flashmap/flashmap/internal/config"
	"github.com/flashmap/flashmap/internal/pipeline"
	"github.com/flashmap/flashmap/internal/report"
	"github.com/flashmap/flashmap/internal/symbol"
)

// Flags shared by the analysis commands.
var (
	elfFlag    string
	dumpFlags  []string
	archFlags  []string
	regionFlag string
	humanFlag  bool
)

func addAnalysisFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&elfFlag, "elf", "", "path to the final linked binary (required)")
	cmd.Flags().StringArrayVar(&dumpFlags, "dump", nil, "nm-style symbol dump file (repeatable)")
	cmd.Flags().StringArrayVar(&archFlags, "archive", nil, "static archive used as the Rust oracle (repeatable)")
	cmd.Flags().StringVarP(&regionFlag, "region", "r", "", "memory region filter: rom, ram, or both")
	cmd.Flags().BoolVar(&humanFlag, "human", false, "print sizes in human-readable units")
	cmd.MarkFlagRequired("elf")
}

// loadConfig loads the file/env configuration and applies flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("region") {
		cfg.Report.Region = regionFlag
	}
	if cmd.Flags().Changed("human") {
		cfg.Report.Human = humanFlag
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// analyze runs the pipeline for the current flag set and returns the report.
func analyze(cmd *cobra.Command, cfg *config.Config) (*report.Report, error) {
	// Ctrl+C aborts the run without a partial report.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	in := pipeline.Inputs{
		Binary:   elfFlag,
		Dumps:    dumpFlags,
		Archives: archFlags,
	}
	opts := pipeline.Options{
		Progress: newProgressReporter(quiet || !verbose),
		Demangle: symbol.DemangleOptions(cfg.Report.Demangle),
	}
	return pipeline.Run(ctx, in, opts)
}

var warnColor = color.New(color.FgYellow)

// printWarnings surfaces recoverable issues after the report, never instead
// of it. The first line summarizes the count per kind.
func printWarnings(warnings []symbol.Warning) {
	if quiet || len(warnings) == 0 {
		return
	}
	counts := make(map[symbol.WarningKind]int)
	var kinds []symbol.WarningKind
	for _, w := range warnings {
		if counts[w.Kind] == 0 {
			kinds = append(kinds, w.Kind)
		}
		counts[w.Kind]++
	}
	parts := make([]string, 0, len(kinds))
	for _, k := range kinds {
		parts = append(parts, fmt.Sprintf("%s: %d", k, counts[k]))
	}
	warnColor.Fprintf(os.Stderr, "%d warning(s) (%s):\n", len(warnings), strings.Join(parts, ", "))
	for _, w := range warnings {
		warnColor.Fprintf(os.Stderr, "  %s\n", w)
	}
}

func parseRegion(s string) (symbol.RegionSet, error) {
	regions, err := symbol.ParseRegionSet(s)
	if err != nil {
		return 0, fmt.Errorf("--region: %w", err)
	}
	return regions, nil
}
