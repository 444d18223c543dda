// Package cmd implements CLI commands.
package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/preesm/spider2/internal/control"
)

// stopCmd represents the stop command
var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the spider2 daemon",
	Long: `Stop the spider2 daemon gracefully.

This command sends a shutdown request to the running daemon via its
Unix domain socket. The daemon stops accepting new iterations, tears
down its control and metrics servers, removes its PID file, and exits.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStopCommand(cmd)
	},
}

func runStopCommand(cmd *cobra.Command) error {
	client := control.NewClient(socketPath, 10*time.Second)
	ctx := context.Background()

	resp, err := client.Stop(ctx)
	if err != nil {
		return fmt.Errorf("daemon is not running or socket is inaccessible: %w", err)
	}
	if resp.Error != nil {
		return fmt.Errorf("stop failed: %s", resp.Error.Message)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "stop requested; daemon is shutting down.")
	return nil
}
