package main

import (
	"context"
	"fmt"

	"github.com/omahs/claims-hatter/internal/client"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List claim gates",
	GroupID: "gates",
	RunE: func(cmd *cobra.Command, args []string) error {
		hat, _ := cmd.Flags().GetString("hat")
		adminOf, _ := cmd.Flags().GetString("admin-of")
		createdBy, _ := cmd.Flags().GetString("created-by")
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")
		sortBy, _ := cmd.Flags().GetString("sort")

		req := &client.ListGatesRequest{
			Hat:       hat,
			AdminOf:   adminOf,
			CreatedBy: createdBy,
			Limit:     limit,
			Offset:    offset,
			Sort:      sortBy,
		}
		if cmd.Flags().Changed("enabled") {
			enabled, _ := cmd.Flags().GetBool("enabled")
			req.Enabled = &enabled
		}

		resp, err := hatterClient.ListGates(context.Background(), req)
		if err != nil {
			return fmt.Errorf("listing gates: %w", err)
		}

		if jsonOutput {
			printJSON(resp)
		} else {
			printGateListTable(resp.Gates, resp.Total)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().String("hat", "", "filter by exact hat")
	listCmd.Flags().String("admin-of", "", "gates for hats anywhere under this hat")
	listCmd.Flags().String("created-by", "", "filter by creator")
	listCmd.Flags().Bool("enabled", false, "filter by claim-for flag (--enabled=false for closed gates)")
	listCmd.Flags().Int("limit", 20, "maximum number of gates to return")
	listCmd.Flags().Int("offset", 0, "offset for pagination")
	listCmd.Flags().String("sort", "", "sort column (hat, created_at, updated_at, id; prefix - for descending)")
}
