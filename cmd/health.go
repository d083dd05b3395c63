package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the analysis backend is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := backendClient()
		if err != nil {
			return err
		}
		status, err := client.Health(context.Background())
		if err != nil {
			return err
		}
		if status.Version != "" {
			fmt.Printf("✓ backend is %s (version %s)\n", status.Status, status.Version)
		} else {
			fmt.Printf("✓ backend is %s\n", status.Status)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
