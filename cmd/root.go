// Package cmd implements CLI commands using cobra framework.
package cmd

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	socketPath string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "spider2",
	Short: "Spider 2.0 SR-less dataflow scheduling runtime",
	Long: `spider2 runs applications expressed as Parameterized Interfaced
Synchronous Dataflow (PiSDF) graphs on a heterogeneous multi-core platform
model: it resolves parameters, computes firing counts, derives data
dependencies across hierarchy, schedules and maps firings onto processing
elements, allocates FIFOs, and dispatches jobs to local runtime threads.

Features:
  - Dynamic parameter resolution via CONFIG actors, mid-iteration
  - Best-fit / round-robin mapping with cross-cluster SEND/RECEIVE insertion
  - Reference-counted FIFO allocation with merge/repeat/external variants
  - Local control plane: status/stats/reload/stop over a Unix domain socket`,
	Version:       "2.0.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to happen
// once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "/etc/spider2/config.yml",
		"global configuration file path")
	rootCmd.PersistentFlags().StringVarP(&socketPath, "socket", "s", "/var/run/spider2.sock",
		"control socket the status/stats/reload/stop commands connect to (the daemon itself listens on the config file's control.socket)")

	// Add subcommands
	rootCmd.AddCommand(daemonCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(reloadCmd)
	rootCmd.AddCommand(stopCmd)
}
