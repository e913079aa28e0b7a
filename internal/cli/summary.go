package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// summaryCmd represents the summary command
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Per-language memory usage summary",
	Long: `Summary prints the total ROM and RAM usage per source language together
with each language's share of the selected region.

Examples:
  # ROM and RAM combined
  flashmap summary --elf app.elf

  # RAM only, with Rust attribution from an archive
  flashmap summary --elf app.elf --archive libapp.rlib --region ram
`,
	RunE: runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
	addAnalysisFlags(summaryCmd)
}

func runSummary(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	regions, err := parseRegion(cfg.Report.Region)
	if err != nil {
		return err
	}

	rep, err := analyze(cmd, cfg)
	if err != nil {
		return err
	}

	rep.WriteSummary(os.Stdout, regions, cfg.Report.Human)
	printWarnings(rep.Warnings)
	return nil
}
