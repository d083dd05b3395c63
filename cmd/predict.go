package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/datavue/datavue-cli/internal/dataset"
	"github.com/datavue/datavue-cli/internal/simulate"
	"github.com/spf13/cobra"
)

var (
	flagSet      []string
	flagScenario string
	flagAuto     bool
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Simulate a prediction for a hypothetical record",
	Long: `Predict builds a record from --set key=value pairs, a named --scenario
or --auto defaults, and estimates the target column by comparing the record
against the most similar rows of the dataset. When no similar rows exist the
backend's trained model is consulted instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		session, c, err := activeSession()
		if err != nil {
			return err
		}
		if session.Target == "" && !hasDiagnosticModel(c.ResultsPath) {
			return fmt.Errorf("no target column set and no trained diagnostic model found: run 'datavue columns --target <name>' or a diagnostic analysis first")
		}
		sim, err := simulate.New(session)
		if err != nil {
			return err
		}

		record := map[string]any{}
		switch {
		case flagScenario != "":
			record, err = sim.Scenario(flagScenario)
			if err != nil {
				return err
			}
		case flagAuto:
			record = sim.AutoFill()
		}
		for _, kv := range flagSet {
			name, raw, ok := strings.Cut(kv, "=")
			if !ok {
				return fmt.Errorf("invalid --set %q: expected key=value", kv)
			}
			field, err := fieldByName(sim, name)
			if err != nil {
				return err
			}
			record[name], err = parseFieldValue(field, raw)
			if err != nil {
				return err
			}
		}
		if len(record) == 0 {
			return fmt.Errorf("empty record: use --set, --scenario or --auto")
		}

		fmt.Println("Input record:")
		names := make([]string, 0, len(record))
		for name := range record {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("  %s = %v\n", name, record[name])
		}

		client, err := backendClient()
		if err != nil {
			return err
		}
		res, err := sim.Predict(context.Background(), record, client)
		if err != nil {
			return err
		}

		label := session.Target
		if label == "" {
			label = "diagnosis"
		}
		if res.Class != "" {
			fmt.Printf("✓ %s = %s (confidence %.1f%%, source %s)\n", label, res.Class, res.Confidence*100, res.Source)
		} else {
			fmt.Printf("✓ %s = %.4f (confidence %.1f%%, source %s)\n", label, res.Value, res.Confidence*100, res.Source)
		}
		if res.NeighborsUsed > 0 {
			fmt.Printf("  based on %d similar rows\n", res.NeighborsUsed)
		}
		if len(res.Distribution) > 0 {
			classes := make([]string, 0, len(res.Distribution))
			for class := range res.Distribution {
				classes = append(classes, class)
			}
			sort.Slice(classes, func(i, j int) bool {
				return res.Distribution[classes[i]] > res.Distribution[classes[j]]
			})
			for _, class := range classes {
				fmt.Printf("  %s: %.1f%%\n", class, res.Distribution[class]*100)
			}
		}
		return nil
	},
}

func init() {
	predictCmd.Flags().StringSliceVar(&flagSet, "set", nil, "field value as key=value (repeatable)")
	predictCmd.Flags().StringVar(&flagScenario, "scenario", "", "preset record: typical or extreme")
	predictCmd.Flags().BoolVar(&flagAuto, "auto", false, "fill missing fields with per-column defaults")
	rootCmd.AddCommand(predictCmd)
}

// hasDiagnosticModel reports whether a saved analysis run trained a model the
// backend can score against.
func hasDiagnosticModel(path string) bool {
	raw, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	var saved struct {
		Analyses map[string]json.RawMessage `json:"analyses"`
	}
	if json.Unmarshal(raw, &saved) != nil {
		return false
	}
	for _, kind := range []string{"symptomMatching", "classification", "neural"} {
		if _, ok := saved.Analyses[kind]; ok {
			return true
		}
	}
	return false
}

func fieldByName(sim *simulate.Simulator, name string) (simulate.Field, error) {
	for _, f := range sim.Fields() {
		if f.Name == name {
			return f, nil
		}
	}
	var names []string
	for _, f := range sim.Fields() {
		names = append(names, f.Name)
	}
	return simulate.Field{}, fmt.Errorf("unknown field %q: available fields: %s", name, strings.Join(names, ", "))
}

func parseFieldValue(field simulate.Field, raw string) (any, error) {
	switch field.Type {
	case dataset.TypeNumber:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("field %s expects a number: %w", field.Name, err)
		}
		return f, nil
	case dataset.TypeBoolean:
		switch strings.ToLower(raw) {
		case "1", "true", "yes", "oui":
			return true, nil
		case "0", "false", "no", "non":
			return false, nil
		}
		return nil, fmt.Errorf("field %s expects a boolean value", field.Name)
	default:
		return raw, nil
	}
}
