// Package cmd implements CLI commands.
package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/preesm/spider2/internal/control"
)

// reloadCmd represents the reload command
var reloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Reload the spider2 daemon's configuration",
	Long: `Reload the global configuration of the spider2 daemon.

This command sends a config.reload signal to the running daemon via its
Unix domain socket. The daemon re-reads its log level/format from disk
and stores them, but its running logger keeps the settings it started
with; the loaded graph, platform and scheduling policy are fixed for the
process's lifetime and are not affected.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReloadCommand(cmd)
	},
}

func runReloadCommand(cmd *cobra.Command) error {
	client := control.NewClient(socketPath, 10*time.Second)
	ctx := context.Background()

	fmt.Fprintln(cmd.OutOrStdout(), "sending reload signal to daemon...")
	resp, err := client.ConfigReload(ctx)
	if err != nil {
		return fmt.Errorf("failed to send reload command: %w", err)
	}
	if resp.Error != nil {
		return fmt.Errorf("config.reload failed: %s", resp.Error.Message)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "configuration reloaded successfully.")
	return nil
}
