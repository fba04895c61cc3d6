package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:     "health",
	Short:   "Check the health of the hatter service",
	GroupID: "system",
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := hatterClient.Health(context.Background())
		if err != nil {
			return fmt.Errorf("checking health: %w", err)
		}

		if jsonOutput {
			printJSON(map[string]string{"status": status})
		} else {
			fmt.Printf("Health: %s\n", status)
		}

		if status != "ok" {
			return fmt.Errorf("unhealthy: %s", status)
		}
		return nil
	},
}
