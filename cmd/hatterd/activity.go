package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var activityCmd = &cobra.Command{
	Use:     "activity",
	Short:   "Show the live claim activity roster",
	GroupID: "system",
	RunE: func(cmd *cobra.Command, args []string) error {
		staleSecs, _ := cmd.Flags().GetInt("stale-secs")

		entries, err := hatterClient.Activity(context.Background(), staleSecs)
		if err != nil {
			return fmt.Errorf("fetching activity: %w", err)
		}

		if jsonOutput {
			printJSON(entries)
		} else {
			printActivityTable(entries)
		}
		return nil
	},
}

func init() {
	activityCmd.Flags().Int("stale-secs", 0, "stale threshold in seconds (0 = server default)")
}
