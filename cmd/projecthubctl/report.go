package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Count issues per status",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := issueService()
		if err != nil {
			return err
		}
		rows, err := svc.StatusReport(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOut {
			enc := json.NewEncoder(ui.Out)
			enc.SetIndent("", "  ")
			return enc.Encode(rows)
		}
		if len(rows) == 0 {
			ui.Info("No issues yet.")
			return nil
		}
		return ui.StatusReport(rows)
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
}
