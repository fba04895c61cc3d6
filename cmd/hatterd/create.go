package main

import (
	"context"
	"fmt"

	"github.com/omahs/claims-hatter/internal/client"
	"github.com/omahs/claims-hatter/internal/model"
	"github.com/spf13/cobra"
)

var createCmd = &cobra.Command{
	Use:     "create <hat>",
	Short:   "Deploy a claim gate for a hat",
	GroupID: "gates",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hat := model.HatID(args[0])

		oracleURL, _ := cmd.Flags().GetString("oracle-url")
		enabled, _ := cmd.Flags().GetBool("enable-claim-for")

		gate, err := hatterClient.CreateGate(context.Background(), &client.CreateGateRequest{
			Hat:             hat,
			OracleURL:       oracleURL,
			ClaimForEnabled: enabled,
			CreatedBy:       actor,
		})
		if err != nil {
			return fmt.Errorf("creating gate: %w", err)
		}

		if jsonOutput {
			printJSON(gate)
		} else {
			printGateTable(gate)
		}
		return nil
	},
}

func init() {
	createCmd.Flags().String("oracle-url", "", "eligibility oracle base URL")
	createCmd.Flags().Bool("enable-claim-for", false, "open claiming on behalf of others immediately")
}
