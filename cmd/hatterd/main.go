package main

import (
	"os"
	"os/exec"
	"strings"

	"github.com/omahs/claims-hatter/internal/client"
	"github.com/spf13/cobra"
)

var (
	httpURL    string
	authToken  string
	jsonOutput bool
	actor      string

	hatterClient client.HatterClient
)

func defaultActor() string {
	out, err := exec.Command("git", "config", "user.name").Output()
	if err == nil {
		name := strings.TrimSpace(string(out))
		if name != "" {
			return name
		}
	}
	return "unknown"
}

func defaultHTTPURL() string {
	if s := os.Getenv("HATTER_HTTP_URL"); s != "" {
		return s
	}
	return "http://localhost:8080"
}

var rootCmd = &cobra.Command{
	Use:   "hatterd <command>",
	Short: "Claim gates for the hats registry",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		hatterClient = client.NewHTTPClient(httpURL, authToken)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if hatterClient != nil {
			hatterClient.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&httpURL, "http-url", defaultHTTPURL(), "hatter server URL")
	rootCmd.PersistentFlags().StringVar(&authToken, "token", os.Getenv("HATTER_AUTH_TOKEN"), "bearer token for the server")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().StringVar(&actor, "actor", defaultActor(), "account name sent as the caller")

	rootCmd.AddGroup(
		&cobra.Group{ID: "gates", Title: "Gates:"},
		&cobra.Group{ID: "claims", Title: "Claims:"},
		&cobra.Group{ID: "system", Title: "System:"},
	)

	cobra.EnableCommandSorting = false
	rootCmd.SetHelpFunc(colorizedHelpFunc())

	// Gates
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(statusCmd)

	// Claims
	rootCmd.AddCommand(claimCmd)
	rootCmd.AddCommand(claimForCmd)
	rootCmd.AddCommand(enableCmd)
	rootCmd.AddCommand(disableCmd)
	rootCmd.AddCommand(wearerStatusCmd)

	// System
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(activityCmd)
	rootCmd.AddCommand(healthCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
