package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/omahs/claims-hatter/internal/model"
	"github.com/omahs/claims-hatter/internal/presence"
	"github.com/omahs/claims-hatter/internal/ui"
)

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling JSON: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

func flagLabel(enabled bool) string {
	if enabled {
		return ui.RenderOK("open")
	}
	return ui.RenderErr("closed")
}

func printGateTable(gate *model.Gate) {
	fmt.Printf("ID:          %s\n", gate.ID)
	fmt.Printf("Hat:         %s\n", gate.Hat)
	fmt.Printf("Admin Hat:   %s\n", gate.Hat.Admin())
	fmt.Printf("Factory:     %s\n", gate.Factory)
	fmt.Printf("Self:        %s\n", gate.Self)
	if gate.OracleURL != "" {
		fmt.Printf("Oracle:      %s\n", gate.OracleURL)
	}
	fmt.Printf("Claim-for:   %s\n", flagLabel(gate.ClaimForEnabled))
	if gate.CreatedBy != "" {
		fmt.Printf("Created By:  %s\n", gate.CreatedBy)
	}
	if !gate.CreatedAt.IsZero() {
		fmt.Printf("Created At:  %s\n", gate.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	if !gate.UpdatedAt.IsZero() {
		fmt.Printf("Updated At:  %s\n", gate.UpdatedAt.Format("2006-01-02 15:04:05"))
	}
}

func printGateListTable(gates []*model.Gate, total int) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tHAT\tCLAIM-FOR\tCREATED BY\tCREATED AT")
	for _, g := range gates {
		state := "closed"
		if g.ClaimForEnabled {
			state = "open"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			g.ID,
			g.Hat,
			state,
			g.CreatedBy,
			g.CreatedAt.Format("2006-01-02 15:04:05"),
		)
	}
	w.Flush()
	fmt.Printf("\n%d gates (%d total)\n", len(gates), total)
}

func boolMark(v bool) string {
	if v {
		return ui.RenderOK("yes")
	}
	return ui.RenderErr("no")
}

func printStatusTable(st *model.GateStatus) {
	fmt.Printf("Gate:              %s\n", st.GateID)
	fmt.Printf("Hat:               %s\n", st.Hat)
	fmt.Printf("Hat Exists:        %s\n", boolMark(st.HatExists))
	fmt.Printf("Wears Admin:       %s\n", boolMark(st.WearsAdmin))
	fmt.Printf("Claimable:         %s\n", boolMark(st.Claimable))
	fmt.Printf("Claimable For:     %s\n", boolMark(st.ClaimableFor))
	fmt.Printf("Claim-for Flag:    %s\n", flagLabel(st.ClaimForEnabled))
}

func printEventsTable(events []*model.AuditEvent) {
	if len(events) == 0 {
		fmt.Println("No events.")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTOPIC\tACTOR\tAT")
	for _, e := range events {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n",
			e.ID,
			e.Topic,
			e.Actor,
			e.CreatedAt.Format("2006-01-02 15:04:05"),
		)
	}
	w.Flush()
}

func printActivityTable(entries []presence.Entry) {
	if len(entries) == 0 {
		fmt.Println("No recent activity.")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ACTOR\tACTION\tGATE\tHAT\tOUTCOME\tIDLE\tATTEMPTS")
	for _, e := range entries {
		outcome := e.LastOutcome
		if outcome == "ok" {
			outcome = ui.RenderOK(outcome)
		} else if outcome != "" {
			outcome = ui.RenderErr(outcome)
		}
		state := ""
		if e.Reaped {
			state = ui.RenderMuted(" (stale)")
		}
		fmt.Fprintf(w, "%s%s\t%s\t%s\t%s\t%s\t%.0fs\t%d/%d\n",
			e.Actor,
			state,
			e.LastAction,
			e.GateID,
			e.Hat,
			outcome,
			e.IdleSecs,
			e.SuccessCount,
			e.AttemptCount,
		)
	}
	w.Flush()
}
