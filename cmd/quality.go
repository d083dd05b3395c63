package cmd

import (
	"fmt"
	"sort"

	"github.com/datavue/datavue-cli/internal/quality"
	"github.com/spf13/cobra"
)

var qualityCmd = &cobra.Command{
	Use:   "quality",
	Short: "Score the active dataset's quality",
	Long: `Quality analyzes the active session for completeness, duplicated rows
and problematic columns, and suggests what to fix before running analyses.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		session, _, err := activeSession()
		if err != nil {
			return err
		}

		report := quality.Validate(session.Rows, session.ColumnOrder())

		fmt.Printf("Quality of %s (%d rows)\n", session.Source, len(session.Rows))
		fmt.Printf("  completeness: %.2f%%  uniqueness: %.2f  duplicates: %d\n",
			report.Quality.Completeness, report.Quality.UniquenessRatio, report.Quality.DuplicateRows)

		var names []string
		for name := range report.Columns {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Println("\n  column | type | nulls | unique | variance")
		for _, name := range names {
			a := report.Columns[name]
			line := fmt.Sprintf("  %s | %s | %.1f%% | %d | %.2f", name, a.Type, a.NullPercentage, a.UniqueValues, a.Variance)
			if a.Issue != "" {
				line += "  ⚠ " + a.Issue
			}
			fmt.Println(line)
		}

		for _, msg := range report.Issues {
			fmt.Println("✗", msg)
		}
		for _, msg := range report.Warnings {
			fmt.Println("⚠", msg)
		}
		for _, msg := range report.Suggestions {
			fmt.Println("  suggestion:", msg)
		}
		if report.IsValid {
			fmt.Println("✓ dataset is usable: next: datavue columns")
		} else {
			fmt.Println("✗ dataset needs cleaning before analysis")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(qualityCmd)
}
