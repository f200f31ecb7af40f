package main

import (
	"context"
	"fmt"
	"os"

	"coursemetry/adapters/render"
	"coursemetry/adapters/tabular"
	"coursemetry/app"
	"coursemetry/internal"
	"coursemetry/internal/config"
	"coursemetry/internal/profiling"
	"coursemetry/internal/testkit"
	"coursemetry/ports"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// Load .env if present; environment takes precedence over defaults.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "coursemetry",
		Short: "Statistical analysis report for online-course engagement data",
	}

	rootCmd.AddCommand(
		newAnalyzeCmd(),
		newSummarizeCmd(),
		newSynthCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newAnalyzeCmd() *cobra.Command {
	var threshold float64
	var outputDir string
	var formats []string
	var bins int

	cmd := &cobra.Command{
		Use:   "analyze [input-file]",
		Short: "Run the full analysis pipeline over an engagement dataset",
		Long: `Load a CSV/XLSX engagement dataset, compute descriptive statistics,
fit a binomial logistic regression of CourseCompletion on the engagement
predictors, run bidirectional stepwise AIC selection, and evaluate the
selected model with a confusion matrix and ROC/AUC.

Example: coursemetry analyze engagement.csv --format console --format html --out ./out`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if threshold != 0 {
				cfg.Model.Threshold = threshold
			}
			if outputDir != "" {
				cfg.Report.OutputDir = outputDir
			}
			if len(formats) > 0 {
				cfg.Report.Formats = formats
			}
			if bins != 0 {
				cfg.Report.BinCount = bins
			}

			renderers, err := buildRenderers(cfg)
			if err != nil {
				return err
			}

			service := app.NewReportService(tabular.NewDataReader(args[0]), renderers)
			_, err = service.Run(context.Background(), app.RunRequest{
				Threshold: cfg.Model.Threshold,
				BinCount:  cfg.Report.BinCount,
			})
			return err
		},
	}

	cmd.Flags().Float64Var(&threshold, "threshold", 0, "classification threshold (default 0.5)")
	cmd.Flags().StringVar(&outputDir, "out", "", "output directory for html/xlsx reports")
	cmd.Flags().StringArrayVar(&formats, "format", nil, "report format: console, html, xlsx (repeatable)")
	cmd.Flags().IntVar(&bins, "bins", 0, "histogram bin count (default Sturges' rule)")

	return cmd
}

func newSummarizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summarize [input-file]",
		Short: "Load a dataset and print descriptive statistics only",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := internal.DefaultLogger

			ds, err := tabular.NewDataReader(args[0]).ReadDataset()
			if err != nil {
				return err
			}
			logger.Info("loaded %d records", ds.Len())

			summary := profiling.NewSummarizer().Summarize(ds)
			fmt.Printf("rows %d, columns %d, missing cells %d\n",
				summary.Rows, summary.Columns, summary.MissingCells)
			for _, ns := range summary.Numeric {
				fmt.Printf("%-24s n=%-6d min=%.3f q1=%.3f median=%.3f mean=%.3f q3=%.3f max=%.3f\n",
					ns.Column, ns.Count, ns.Min, ns.Q1, ns.Median, ns.Mean, ns.Q3, ns.Max)
			}
			for _, cs := range summary.Categorical {
				fmt.Printf("%s:\n", cs.Column)
				for _, lc := range cs.Levels {
					fmt.Printf("  %-20s %d\n", lc.Level, lc.Count)
				}
			}
			return nil
		},
	}
}

func newSynthCmd() *cobra.Command {
	var rows int
	var seed int64
	var missingRate float64

	cmd := &cobra.Command{
		Use:   "synth [output-file]",
		Short: "Generate a synthetic engagement CSV with a known generating function",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := testkit.DefaultEngagementConfig()
			cfg.RecordCount = rows
			cfg.Seed = seed
			cfg.MissingRate = missingRate

			gen := testkit.NewEngagementDataGenerator(cfg, testkit.DefaultGeneratingCoefficients())
			if err := gen.WriteCSV(args[0]); err != nil {
				return err
			}
			fmt.Printf("wrote %d synthetic records to %s\n", rows, args[0])
			return nil
		},
	}

	cmd.Flags().IntVar(&rows, "rows", 1000, "number of records to generate")
	cmd.Flags().Int64Var(&seed, "seed", 42, "RNG seed")
	cmd.Flags().Float64Var(&missingRate, "missing-rate", 0, "fraction of numeric cells left blank")

	return cmd
}

func buildRenderers(cfg *config.Config) ([]ports.ReportRenderer, error) {
	if err := os.MkdirAll(cfg.Report.OutputDir, 0o755); err != nil {
		return nil, err
	}
	var renderers []ports.ReportRenderer
	for _, format := range cfg.Report.Formats {
		switch format {
		case "console":
			renderers = append(renderers, render.NewConsoleRenderer())
		case "html":
			renderers = append(renderers, render.NewHTMLRenderer(cfg.Report.OutputDir))
		case "xlsx":
			renderers = append(renderers, render.NewExcelRenderer(cfg.Report.OutputDir))
		}
	}
	return renderers, nil
}
