package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var enableCmd = &cobra.Command{
	Use:     "enable-claiming-for <id>",
	Short:   "Open claiming on behalf of others",
	GroupID: "claims",
	Args:    cobra.ExactArgs(1),
	RunE:    runToggle(true),
}

var disableCmd = &cobra.Command{
	Use:     "disable-claiming-for <id>",
	Short:   "Close claiming on behalf of others",
	GroupID: "claims",
	Args:    cobra.ExactArgs(1),
	RunE:    runToggle(false),
}

func runToggle(enabled bool) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		id := args[0]

		if err := hatterClient.SetClaimFor(context.Background(), id, actor, enabled); err != nil {
			return fmt.Errorf("toggling gate %s: %w", id, err)
		}

		if jsonOutput {
			printJSON(map[string]any{"gate": id, "claim_for_enabled": enabled})
		} else {
			fmt.Printf("Gate %s claim-for is now %s\n", id, flagLabel(enabled))
		}
		return nil
	}
}
