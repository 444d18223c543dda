// Package cmd implements CLI commands.
package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/preesm/spider2/internal/example"
	"github.com/preesm/spider2/internal/launcher"
	"github.com/preesm/spider2/internal/mapper"
)

var (
	runGraph      string
	runIterations int
	runMapper     string
	runExecPolicy string
	runQueueSize  int
)

// runCmd drives the scheduling core directly against a built-in
// scenario, without a daemon or control socket: loading a graph from an
// external file format is an out-of-scope front-end concern (spec.md
// §1), so this reuses internal/example's hand-assembled scenarios.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a built-in PiSDF scenario to completion and print its schedule stats",
	Long: `Run one of the built-in demo scenarios (chain, forkjoin) for the
requested number of iterations, printing the task count, makespan and
wall-clock time after each one.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRun(cmd)
	},
}

func init() {
	runCmd.Flags().StringVarP(&runGraph, "graph", "g", "chain", "built-in scenario to run (chain, forkjoin)")
	runCmd.Flags().IntVarP(&runIterations, "iterations", "n", 1, "number of iterations to run")
	runCmd.Flags().StringVar(&runMapper, "mapper", "bestfit", "mapper policy (bestfit, roundrobin)")
	runCmd.Flags().StringVar(&runExecPolicy, "exec-policy", "jit", "dispatch policy (jit, delayed)")
	runCmd.Flags().IntVar(&runQueueSize, "queue-size", 1024, "per-LRT job queue capacity")
}

func runRun(cmd *cobra.Command) error {
	scn, err := loadScenario(runGraph)
	if err != nil {
		return err
	}
	mapperPolicy, err := parseMapperFlag(runMapper)
	if err != nil {
		return err
	}
	execPolicy, err := parseExecPolicyFlag(runExecPolicy)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	d := scn.NewDriver(mapperPolicy, execPolicy, runQueueSize)

	fmt.Fprintf(out, "running scenario %q (%d PE, %d LRT)\n", scn.Name, scn.Platform.PECount(), scn.Platform.LRTCount())
	for i := 0; i < runIterations; i++ {
		start := time.Now()
		if err := d.RunIteration(); err != nil {
			return fmt.Errorf("iteration %d failed: %w", i, err)
		}
		fmt.Fprintf(out, "iteration %d: %d tasks, makespan=%d, wall=%s\n",
			i, d.Sched.TaskCount(), d.Sched.Stats.Makespan(), time.Since(start))
	}
	return nil
}

func loadScenario(name string) (*example.Scenario, error) {
	switch name {
	case "", "chain":
		return example.Chain(), nil
	case "forkjoin":
		return example.ForkJoin(), nil
	default:
		return nil, fmt.Errorf("unknown scenario %q (available: chain, forkjoin)", name)
	}
}

func parseMapperFlag(name string) (mapper.Policy, error) {
	switch name {
	case "", "bestfit":
		return mapper.BestFit, nil
	case "roundrobin":
		return mapper.RoundRobin, nil
	default:
		return 0, fmt.Errorf("unknown mapper policy %q", name)
	}
}

func parseExecPolicyFlag(name string) (launcher.ExecPolicy, error) {
	switch name {
	case "", "jit":
		return launcher.JIT, nil
	case "delayed":
		return launcher.Delayed, nil
	default:
		return 0, fmt.Errorf("unknown exec policy %q", name)
	}
}
