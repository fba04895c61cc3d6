package main

import (
	"context"
	"fmt"

	"github.com/omahs/claims-hatter/internal/ui"
	"github.com/spf13/cobra"
)

var claimCmd = &cobra.Command{
	Use:     "claim <id>",
	Short:   "Claim the gated hat for yourself",
	GroupID: "claims",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]

		if err := hatterClient.Claim(context.Background(), id, actor); err != nil {
			return fmt.Errorf("claiming via gate %s: %w", id, err)
		}

		if jsonOutput {
			printJSON(map[string]string{"gate": id, "wearer": actor, "result": "ok"})
		} else {
			fmt.Printf("%s %s now wears the gated hat\n", ui.RenderOK("claimed:"), actor)
		}
		return nil
	},
}

var claimForCmd = &cobra.Command{
	Use:     "claim-for <id> <wearer>",
	Short:   "Claim the gated hat for another account",
	GroupID: "claims",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, wearer := args[0], args[1]

		if err := hatterClient.ClaimFor(context.Background(), id, actor, wearer); err != nil {
			return fmt.Errorf("claiming via gate %s for %s: %w", id, wearer, err)
		}

		if jsonOutput {
			printJSON(map[string]string{"gate": id, "wearer": wearer, "caller": actor, "result": "ok"})
		} else {
			fmt.Printf("%s %s now wears the gated hat\n", ui.RenderOK("claimed:"), wearer)
		}
		return nil
	},
}
