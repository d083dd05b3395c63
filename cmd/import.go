package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/datavue/datavue-cli/internal/dataset"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a CSV or JSON dataset and start a new session",
	Long: `Import parses the file, infers column types and stores the dataset as
the active session. A new import replaces any previous session. Files up to
10MB are supported in CSV and JSON format.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}

		res, err := dataset.LoadFile(args[0])
		if err != nil {
			return err
		}
		if len(res.Errors) > 0 {
			for _, e := range res.Errors {
				fmt.Fprintln(os.Stderr, "✗", e)
			}
			return fmt.Errorf("import failed: %d error(s)", len(res.Errors))
		}
		for _, w := range res.Warnings {
			fmt.Fprintln(os.Stderr, "⚠", w)
		}

		columns := dataset.InferColumns(res.Data, res.Headers)
		rows := res.Data

		// Backend boolean detection refines the local inference when the
		// service is up. An unreachable backend never blocks an import.
		if client, err := backendClient(); err == nil {
			if det, err := client.DetectBooleans(context.Background(), rowMaps(rows)); err == nil && det.ConvertedCount > 0 {
				applyBooleanDetection(rows, columns, det.BooleanColumns, det.Data)
				fmt.Printf("✓ %d boolean column(s) detected: %v\n", len(det.BooleanColumns), det.BooleanColumns)
			} else if debug && err != nil {
				fmt.Fprintf(os.Stderr, "⚠ boolean detection skipped: %v\n", err)
			}
		}

		session := dataset.NewSession(args[0], rows, columns)
		if err := session.Save(c.SessionPath); err != nil {
			return err
		}

		counts := map[dataset.ColumnType]int{}
		for _, col := range columns {
			counts[col.Type]++
		}
		fmt.Printf("✓ Imported %d rows, %d columns from %s\n", res.Stats.RowCount, res.Stats.ColumnCount, args[0])
		fmt.Printf("  number: %d  string: %d  categorical: %d  boolean: %d  date: %d\n",
			counts[dataset.TypeNumber], counts[dataset.TypeString], counts[dataset.TypeCategorical],
			counts[dataset.TypeBoolean], counts[dataset.TypeDate])
		fmt.Println("  next: datavue quality")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func rowMaps(rows []dataset.Row) []map[string]any {
	out := make([]map[string]any, len(rows))
	for i, r := range rows {
		out[i] = map[string]any(r)
	}
	return out
}

// applyBooleanDetection overwrites locally inferred types and values with the
// backend's conversion result.
func applyBooleanDetection(rows []dataset.Row, columns []dataset.Column, boolCols []string, converted []map[string]any) {
	set := make(map[string]bool, len(boolCols))
	for _, c := range boolCols {
		set[c] = true
	}
	for i := range columns {
		if set[columns[i].Name] {
			columns[i].Type = dataset.TypeBoolean
		}
	}
	if len(converted) != len(rows) {
		return
	}
	for i, rec := range converted {
		for _, c := range boolCols {
			if v, ok := rec[c]; ok {
				rows[i][c] = v
			}
		}
	}
}
