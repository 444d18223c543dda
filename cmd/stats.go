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

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the most recent schedule's statistics",
	Long: `Query the spider2 daemon for its most recently completed
iteration's Schedule stats (§4.9): makespan, per-PE load, task count.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStatsCommand(cmd)
	},
}

func runStatsCommand(cmd *cobra.Command) error {
	client := control.NewClient(socketPath, 10*time.Second)
	ctx := context.Background()

	resp, err := client.Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to query stats: %w", err)
	}
	if resp.Error != nil {
		return fmt.Errorf("stats failed: %s", resp.Error.Message)
	}

	resultJSON, err := json.MarshalIndent(resp.Result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to format result: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(resultJSON))
	return nil
}
