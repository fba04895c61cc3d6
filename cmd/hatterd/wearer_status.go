package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var wearerStatusCmd = &cobra.Command{
	Use:     "wearer-status <id> <wearer>",
	Short:   "Check a wearer's eligibility at a gate's oracle",
	GroupID: "claims",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, wearer := args[0], args[1]

		st, err := hatterClient.WearerStatus(context.Background(), id, wearer)
		if err != nil {
			return fmt.Errorf("checking %s at gate %s: %w", wearer, id, err)
		}

		if jsonOutput {
			printJSON(st)
		} else {
			fmt.Printf("Wearer:    %s\n", st.Wearer)
			fmt.Printf("Eligible:  %s\n", boolMark(st.Eligible))
			fmt.Printf("Standing:  %s\n", boolMark(st.Standing))
			fmt.Printf("Explicit:  %s\n", boolMark(st.Explicit))
		}
		return nil
	},
}
