// Package cmd - trial and device-id commands
package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"pricing-detective/core/ui"
	"pricing-detective/internal/errors"
)

var trialJSON bool

// trialCmd shows the remaining free analyses
var trialCmd = &cobra.Command{
	Use:   "trial",
	Short: "Show the remaining free analyses for this device",
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := app.Engine().LoadTrialStatus(cmd.Context())
		if err != nil {
			return fmt.Errorf("%s", errors.UserMessage(err))
		}

		out := cmd.OutOrStdout()
		if trialJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(snap.Trial)
		}
		ui.NewAnalysisRunner(ui.NewWriter(out, app.Config().Output.NoColor), nil, false).DisplayTrial(*snap.Trial)
		return nil
	},
}

// deviceIDCmd prints the device identifier sent to the service
var deviceIDCmd = &cobra.Command{
	Use:   "device-id",
	Short: "Print the device identifier used for the free quota",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := app.Identity().DeviceID(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), id)
		return nil
	},
}

func init() {
	trialCmd.Flags().BoolVar(&trialJSON, "json", false, "print the status as JSON")
}
