// Package cmd implements CLI commands.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/preesm/spider2/internal/daemon"
	"github.com/preesm/spider2/internal/log"
)

// daemonCmd represents the daemon command
var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the spider2 daemon in the foreground",
	Long: `Run the spider2 daemon in the foreground.

The daemon will:
  1. Load global configuration from the config file
  2. Load the configured graph/platform scenario and build the GRT driver
  3. Start the Prometheus metrics server (if enabled)
  4. Start the Unix-domain-socket control server (status/stats/reload/stop)
  5. Run graph iterations back to back until stopped
  6. Handle SIGTERM/SIGINT (stop) and SIGHUP (config reload)`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDaemon()
	},
}

func runDaemon() error {
	d, err := daemon.New(configFile)
	if err != nil {
		return err
	}
	if err := d.Start(); err != nil {
		return err
	}
	log.GetLogger().Info("spider2 daemon is running")
	return d.Run()
}
