package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:     "show <id>",
	Short:   "Show details of a gate",
	GroupID: "gates",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		withEvents, _ := cmd.Flags().GetBool("events")

		gate, err := hatterClient.GetGate(context.Background(), id)
		if err != nil {
			return fmt.Errorf("getting gate %s: %w", id, err)
		}

		if jsonOutput && !withEvents {
			printJSON(gate)
			return nil
		}

		if !jsonOutput {
			printGateTable(gate)
		}

		if withEvents {
			events, err := hatterClient.GateEvents(context.Background(), id)
			if err != nil {
				return fmt.Errorf("getting events for %s: %w", id, err)
			}
			if jsonOutput {
				printJSON(map[string]any{"gate": gate, "events": events})
			} else {
				fmt.Println()
				fmt.Println("Audit Trail:")
				printEventsTable(events)
			}
		}
		return nil
	},
}

func init() {
	showCmd.Flags().Bool("events", false, "include the gate's audit trail")
}
