package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:     "status <id>",
	Short:   "Show a gate's live registry views",
	GroupID: "gates",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]

		st, err := hatterClient.GateStatus(context.Background(), id)
		if err != nil {
			return fmt.Errorf("getting status for %s: %w", id, err)
		}

		if jsonOutput {
			printJSON(st)
		} else {
			printStatusTable(st)
		}
		return nil
	},
}
