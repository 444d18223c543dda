// Package cmd implements CLI commands.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/preesm/spider2/internal/control"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon status",
	Long: `Query the spider2 daemon for its overall status.

Shows: whether it's running, which graph/scenario it has loaded, how
many LRTs it drives, and how many iterations it has completed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStatusCommand(cmd)
	},
}

func runStatusCommand(cmd *cobra.Command) error {
	client := control.NewClient(socketPath, 10*time.Second)
	ctx := context.Background()

	resp, err := client.Status(ctx)
	if err != nil {
		return fmt.Errorf("failed to query daemon status: %w", err)
	}
	if resp.Error != nil {
		return fmt.Errorf("status failed: %s", resp.Error.Message)
	}

	resultJSON, err := json.MarshalIndent(resp.Result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to format result: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(resultJSON))
	return nil
}
