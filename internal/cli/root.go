// Package cli implements the flashmap commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
	quiet   bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "flashmap",
	Short: "Attribute firmware memory footprint to source languages",
	Long: `Flashmap analyzes a statically linked firmware image and attributes its
ROM and RAM footprint to the contributing source languages (C, C++, Rust).

It reconciles the binary's own symbol table with optional nm-style symbol
dumps, and uses static archives as the ground truth for Rust attribution.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .flashmap.yaml in cwd or $HOME)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress progress and warning output")
}
