package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/flashmap/flashmap/internal/report"
	"github.com/flashmap/flashmap/internal/symbol"
)

var (
	langFlags []string
	countFlag int
	widthFlag int
)

// symbolsCmd represents the symbols command
var symbolsCmd = &cobra.Command{
	Use:   "symbols",
	Short: "List the largest symbols",
	Long: `Symbols prints the largest symbols of the binary, ranked by size, with
their attributed language, section kind, and memory region.

Examples:
  # Top 25 symbols in either region
  flashmap symbols --elf app.elf

  # The 10 largest Rust symbols in RAM
  flashmap symbols --elf app.elf --archive libapp.rlib \
      --lang rust --region ram --count 10
`,
	RunE: runSymbols,
}

func init() {
	rootCmd.AddCommand(symbolsCmd)
	addAnalysisFlags(symbolsCmd)
	symbolsCmd.Flags().StringArrayVarP(&langFlags, "lang", "l", nil, "language filter: c, cpp, rust, or any (repeatable)")
	symbolsCmd.Flags().IntVarP(&countFlag, "count", "c", 0, "max symbols to list (0 uses the configured default)")
	symbolsCmd.Flags().IntVar(&widthFlag, "width", 0, "wrap width of the name column")
}

func runSymbols(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("count") {
		cfg.Report.TopCount = countFlag
	}
	if cmd.Flags().Changed("width") {
		cfg.Report.NameWidth = widthFlag
	}

	regions, err := parseRegion(cfg.Report.Region)
	if err != nil {
		return err
	}
	langs := make([]symbol.Language, 0, len(langFlags))
	for _, l := range langFlags {
		lang, err := symbol.ParseLanguage(l)
		if err != nil {
			return fmt.Errorf("--lang: %w", err)
		}
		langs = append(langs, lang)
	}

	rep, err := analyze(cmd, cfg)
	if err != nil {
		return err
	}

	syms := rep.TopSymbols(langs, regions, cfg.Report.TopCount)
	report.WriteSymbols(os.Stdout, syms, cfg.Report.NameWidth, cfg.Report.Human)
	printWarnings(rep.Warnings)
	return nil
}
