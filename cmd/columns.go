package cmd

import (
	"fmt"
	"strings"

	"github.com/datavue/datavue-cli/internal/dataset"
	"github.com/datavue/datavue-cli/internal/quality"
	"github.com/spf13/cobra"
)

var (
	flagSelect   []string
	flagDeselect []string
	flagTarget   string
	flagSuggest  bool
)

var columnsCmd = &cobra.Command{
	Use:   "columns",
	Short: "List and curate the session's columns",
	Long: `Columns shows the inferred column list and lets you select or deselect
columns for analysis and pick the target column. With --suggest the best
columns are chosen automatically by completeness and variance.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		session, c, err := activeSession()
		if err != nil {
			return err
		}

		changed := false
		if flagSuggest {
			best := quality.SuggestBestColumns(session.Rows, c.MaxColumns, c.MinCompleteness)
			keep := make(map[string]bool, len(best))
			for _, name := range best {
				keep[name] = true
			}
			for i := range session.Columns {
				session.Columns[i].Selected = keep[session.Columns[i].Name]
			}
			fmt.Printf("✓ selected %d column(s) by quality ranking\n", len(best))
			changed = true
		}
		for _, name := range flagSelect {
			col := dataset.ColumnByName(session.Columns, name)
			if col == nil {
				return fmt.Errorf("unknown column %q", name)
			}
			col.Selected = true
			changed = true
		}
		for _, name := range flagDeselect {
			col := dataset.ColumnByName(session.Columns, name)
			if col == nil {
				return fmt.Errorf("unknown column %q", name)
			}
			col.Selected = false
			changed = true
		}
		if cmd.Flags().Changed("target") {
			if flagTarget != "" {
				col := dataset.ColumnByName(session.Columns, flagTarget)
				if col == nil {
					return fmt.Errorf("unknown column %q", flagTarget)
				}
				col.Selected = true
			}
			session.Target = flagTarget
			changed = true
		}

		if n := len(dataset.SelectedColumns(session.Columns)); n > c.MaxColumns {
			return fmt.Errorf("%d columns selected: at most %d are allowed, deselect some or use --suggest", n, c.MaxColumns)
		}

		if changed {
			if err := session.Save(c.SessionPath); err != nil {
				return err
			}
		}

		for _, col := range session.Columns {
			mark := " "
			if col.Selected {
				mark = "x"
			}
			line := fmt.Sprintf("  [%s] %s (%s)", mark, col.Name, col.Type)
			if col.Name == session.Target {
				line += "  <- target"
			}
			if len(col.UniqueValues) > 0 {
				vals := make([]string, 0, len(col.UniqueValues))
				for _, v := range col.UniqueValues {
					vals = append(vals, fmt.Sprint(v))
				}
				line += "  {" + strings.Join(vals, ", ") + "}"
			}
			fmt.Println(line)
		}
		fmt.Printf("%d of %d columns selected\n", len(dataset.SelectedColumns(session.Columns)), len(session.Columns))
		return nil
	},
}

func init() {
	columnsCmd.Flags().StringSliceVar(&flagSelect, "select", nil, "column names to select")
	columnsCmd.Flags().StringSliceVar(&flagDeselect, "deselect", nil, "column names to deselect")
	columnsCmd.Flags().StringVar(&flagTarget, "target", "", "target column for supervised analyses (empty to clear)")
	columnsCmd.Flags().BoolVar(&flagSuggest, "suggest", false, "auto-select the best columns by quality")
	rootCmd.AddCommand(columnsCmd)
}
