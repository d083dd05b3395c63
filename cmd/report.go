package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/datavue/datavue-cli/internal/backend"
	"github.com/spf13/cobra"
)

var flagReportOutput string

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a PDF report from the last analysis run",
	Long: `Report sends the saved analysis results to the backend's PDF generator
and writes the document to disk. Run 'datavue analyze' first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		session, c, err := activeSession()
		if err != nil {
			return err
		}

		raw, err := os.ReadFile(c.ResultsPath)
		if err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("no analysis results found: run 'datavue analyze' first")
			}
			return fmt.Errorf("read results: %w", err)
		}
		var saved struct {
			Summary  map[string]any `json:"summary"`
			Analyses map[string]any `json:"analyses"`
		}
		if err := json.Unmarshal(raw, &saved); err != nil {
			return fmt.Errorf("parse results: %w", err)
		}

		client, err := backendClient()
		if err != nil {
			return err
		}
		pdf, err := client.GenerateReport(context.Background(), backend.ReportRequest{
			Data:     rowMaps(session.Rows),
			Analyses: saved.Analyses,
			Summary:  saved.Summary,
			Title:    "Analysis report: " + session.Source,
		})
		if err != nil {
			return err
		}

		out := flagReportOutput
		if out == "" {
			out = backend.ReportFileName(time.Now())
		}
		if err := os.WriteFile(out, pdf, 0o644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		fmt.Printf("✓ report written to %s (%d bytes)\n", out, len(pdf))
		return nil
	},
}

func init() {
	reportCmd.Flags().StringVarP(&flagReportOutput, "output", "o", "", "output file (default rapport_analyse_<date>.pdf)")
	rootCmd.AddCommand(reportCmd)
}
