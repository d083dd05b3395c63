package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/datavue/datavue-cli/internal/analyze"
	"github.com/spf13/cobra"
)

var analyzeCfg analyze.Config

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the selected analyses over the active session",
	Long: `Analyze computes basic statistics locally and sends the advanced
analyses to the backend one at a time. Results are saved as JSON next to the
session so predict and report can reuse them. By default the local analyses
run; enable advanced ones with their flags.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		session, c, err := activeSession()
		if err != nil {
			return err
		}
		client, err := backendClient()
		if err != nil {
			return err
		}

		d := &analyze.Dispatcher{
			Client: client,
			Progress: func(done, total int) {
				fmt.Printf("\r[%d/%d] analyses complete", done, total)
				if done == total {
					fmt.Println()
				}
			},
			Logf: func(format string, args ...any) {
				fmt.Fprintf(os.Stderr, "⚠ "+format+"\n", args...)
			},
		}

		res, err := d.Run(context.Background(), session, analyzeCfg)
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal results: %w", err)
		}
		if err := os.WriteFile(c.ResultsPath, out, 0o644); err != nil {
			return fmt.Errorf("write results: %w", err)
		}

		fmt.Print(analyze.Render(res))
		fmt.Printf("✓ results saved to %s\n", c.ResultsPath)
		return nil
	},
}

func init() {
	def := analyze.DefaultConfig()
	f := analyzeCmd.Flags()
	f.BoolVar(&analyzeCfg.DescriptiveStats, "descriptive", def.DescriptiveStats, "descriptive statistics (local)")
	f.BoolVar(&analyzeCfg.Correlations, "correlations", def.Correlations, "correlation matrix (local)")
	f.BoolVar(&analyzeCfg.Distributions, "distributions", def.Distributions, "histograms (local)")
	f.BoolVar(&analyzeCfg.Outliers, "outliers", def.Outliers, "outlier detection (local)")
	f.BoolVar(&analyzeCfg.Categorical, "categorical", def.Categorical, "frequencies and chi-square tests (local)")
	f.BoolVar(&analyzeCfg.Regression, "regression", false, "regression models (backend)")
	f.BoolVar(&analyzeCfg.Classification, "classification", false, "classification models (backend)")
	f.BoolVar(&analyzeCfg.Discriminant, "discriminant", false, "discriminant analysis (backend)")
	f.BoolVar(&analyzeCfg.NeuralNetwork, "neural", false, "neural network (backend)")
	f.BoolVar(&analyzeCfg.TimeSeries, "time-series", false, "time series forecasting (backend)")
	f.BoolVar(&analyzeCfg.Clustering, "clustering", false, "clustering (backend)")
	f.BoolVar(&analyzeCfg.DataCleaning, "clean", false, "data cleaning (backend)")
	f.BoolVar(&analyzeCfg.AdvancedStats, "advanced-stats", false, "normality and correlation tests (backend)")
	f.BoolVar(&analyzeCfg.SymptomMatching, "symptom-matching", false, "symptom-disease matching (backend)")
	rootCmd.AddCommand(analyzeCmd)
}
