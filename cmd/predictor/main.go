// Package main provides the command-line front end for the college cutoff predictor
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"college-predictor/internal/utils"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// rootOptions are the flags shared by every subcommand.
type rootOptions struct {
	source   string
	csvPath  string
	format   string
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "predictor",
		Short: "Find colleges whose admission cutoffs fall near your percentile",
		Long: `Filter a table of college admission cutoffs by percentile, category,
branch and college name, and classify each match as Exact Match, Safe
or Near Miss.

The cutoff table is read from CUTOFF_SOURCE (file, s3 or postgres) unless
--csv is given.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return utils.InitLogger(opts.logLevel)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			utils.Sync()
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.source, "source", "", "Cutoff source: file, s3 or postgres (default from CUTOFF_SOURCE)")
	rootCmd.PersistentFlags().StringVar(&opts.csvPath, "csv", "", "Path to a cutoff CSV file (implies --source=file)")
	rootCmd.PersistentFlags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json or yaml")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level: debug, info, warn or error")

	rootCmd.AddCommand(predictCmd(opts))
	rootCmd.AddCommand(categoriesCmd(opts))
	rootCmd.AddCommand(branchesCmd(opts))
	rootCmd.AddCommand(validateCmd(opts))

	return rootCmd
}
