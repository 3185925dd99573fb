package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"college-predictor/internal/app"
	"college-predictor/internal/config"
	"college-predictor/internal/handlers"
	"college-predictor/internal/render"
	"college-predictor/internal/services/catalog"
	"college-predictor/internal/utils"
)

// loadApp resolves configuration with flag overrides and loads the table.
func loadApp(ctx context.Context, opts *rootOptions, overrides ...func(*config.Config)) (*app.App, error) {
	cfg := config.LoadUnvalidated()

	for _, override := range overrides {
		override(cfg)
	}

	if opts.source != "" {
		cfg.CutoffSource = opts.source
	}
	if opts.csvPath != "" {
		cfg.CutoffSource = config.SourceFile
		cfg.CutoffCSVPath = opts.csvPath
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return app.New(ctx, cfg)
}

// predictCmd runs a single query.
func predictCmd(opts *rootOptions) *cobra.Command {
	var (
		percentile float64
		category   string
		branches   []string
		college    string
		buffer     float64
		lower      float64
		order      string
	)

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "List cutoffs within range of a percentile",
		Long: `List cutoffs for a category that fall within -lower / +buffer of the
given percentile, grouped by college.

Examples:
  # Open category at 90 percentile
  predictor predict --csv=cutoffs.csv --percentile=90 --category=OPEN

  # Only computer and IT branches, wider upper range
  predictor predict --csv=cutoffs.csv -p 90 -c OPEN --branch=Computer --branch="Information Technology" --buffer=3.5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.Context(), opts, func(cfg *config.Config) {
				if order != "" {
					cfg.StatusOrder = order
				}
			})
			if err != nil {
				return err
			}
			defer a.Close()

			req := handlers.PredictRequest{
				Percentile: &percentile,
				Category:   category,
				Branches:   branches,
				College:    college,
				Buffer:     &buffer,
				LowerLimit: &lower,
			}
			defaults := handlers.QueryDefaults{Buffer: a.Config.DefaultBuffer, LowerTolerance: a.Config.LowerTolerance}
			if !cmd.Flags().Changed("buffer") {
				req.Buffer = nil
			}
			if !cmd.Flags().Changed("lower") {
				req.LowerLimit = nil
			}

			q, err := req.ToQuery(defaults)
			if err != nil {
				return err
			}

			result, err := a.Predictor.Predict(cmd.Context(), q)
			if err != nil {
				return err
			}

			return render.Result(cmd.OutOrStdout(), opts.format, result)
		},
	}

	cmd.Flags().Float64VarP(&percentile, "percentile", "p", 0, "Your entrance exam percentile (0-100)")
	cmd.Flags().StringVarP(&category, "category", "c", "", "Your admission category, e.g. OPEN")
	cmd.Flags().StringArrayVarP(&branches, "branch", "b", nil, "Branch name substring; repeat to match any of several")
	cmd.Flags().StringVar(&college, "college", "", "College name substring")
	cmd.Flags().Float64Var(&buffer, "buffer", 2.0, "Upper range: show near misses within +X percentile (0-10)")
	cmd.Flags().Float64Var(&lower, "lower", 5.0, "Lower range: show safe options within -X percentile")
	cmd.Flags().StringVar(&order, "order", "", "Status order: severity or label (default from STATUS_ORDER)")
	_ = cmd.MarkFlagRequired("percentile")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

// categoriesCmd lists the categories present in the table.
func categoriesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List admission categories in the cutoff table",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listSnapshot(cmd, opts, (*catalog.Snapshot).Categories)
		},
	}
}

// branchesCmd lists the branches present in the table.
func branchesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "branches",
		Short: "List branches in the cutoff table",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listSnapshot(cmd, opts, (*catalog.Snapshot).Branches)
		},
	}
}

func listSnapshot(cmd *cobra.Command, opts *rootOptions, list func(*catalog.Snapshot) []string) error {
	a, err := loadApp(cmd.Context(), opts)
	if err != nil {
		return err
	}
	defer a.Close()

	snap, err := a.Catalog.Current()
	if err != nil {
		return err
	}
	return render.List(cmd.OutOrStdout(), opts.format, list(snap))
}

// validateCmd checks a CSV file without running a query.
func validateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check that a cutoff CSV or XLSX file has the required columns and well-formed rows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}

			structure, err := validateTable(args[0], content)
			if err != nil {
				return err
			}

			if opts.format == render.FormatText || opts.format == "" {
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "rows: %d\n", structure.RowCount)
				if len(structure.MissingColumns) > 0 {
					fmt.Fprintf(out, "missing columns: %v\n", structure.MissingColumns)
				}
				for _, e := range structure.Errors {
					fmt.Fprintf(out, "error: %s\n", e)
				}
			} else if err := renderValue(cmd, opts.format, structure); err != nil {
				return err
			}

			if !structure.Valid {
				return fmt.Errorf("%s is not a valid cutoff table", args[0])
			}
			if opts.format == render.FormatText || opts.format == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "ok")
			}
			return nil
		},
	}
}

// validateTable checks the header and then parses every row.
func validateTable(name string, content []byte) (*utils.CSVValidationResult, error) {
	if strings.EqualFold(filepath.Ext(name), ".xlsx") {
		records, err := utils.ParseCutoffFile(name, content)
		result := &utils.CSVValidationResult{Valid: err == nil, RowCount: len(records)}
		if err != nil {
			result.Errors = append(result.Errors, err.Error())
		}
		return result, nil
	}

	structure, err := utils.ValidateCSVStructure(content)
	if err != nil {
		return nil, err
	}
	if structure.Valid {
		if _, err := utils.NewCSVParser().ParseCutoffs(content); err != nil {
			structure.Valid = false
			structure.Errors = append(structure.Errors, err.Error())
		}
	}
	return structure, nil
}

func renderValue(cmd *cobra.Command, format string, v interface{}) error {
	switch format {
	case render.FormatJSON:
		return render.JSON(cmd.OutOrStdout(), v)
	case render.FormatYAML, "yml":
		return render.YAML(cmd.OutOrStdout(), v)
	}
	return fmt.Errorf("unknown output format %q", format)
}
