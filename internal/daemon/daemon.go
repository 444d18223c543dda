// Package daemon wires the scheduling core into a long-running process:
// a graph is loaded once, the GRT control-flow loop (§2) runs it
// iteration after iteration, and the local control plane (internal/control)
// lets a CLI invocation inspect or stop it without tearing down the
// process.
package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/tevino/abool"

	"github.com/preesm/spider2/internal/config"
	"github.com/preesm/spider2/internal/control"
	"github.com/preesm/spider2/internal/example"
	"github.com/preesm/spider2/internal/launcher"
	"github.com/preesm/spider2/internal/log"
	"github.com/preesm/spider2/internal/mapper"
	"github.com/preesm/spider2/internal/metrics"
	"github.com/preesm/spider2/internal/runtime"
)

// Daemon runs one loaded scenario's graph to completion, over and over,
// until asked to stop, while serving status/stats/reload/stop requests
// over internal/control's Unix-domain-socket JSON-RPC server.
type Daemon struct {
	cfg        *config.GlobalConfig
	configPath string

	scenario *example.Scenario
	driver   *runtime.Driver

	controlServer *control.Server
	metricsServer *metrics.Server

	ctx    context.Context
	cancel context.CancelFunc

	running    *abool.AtomicBool
	iterations atomic.Uint64
	sigChan    chan os.Signal
}

// New loads configPath and builds the Daemon's scenario and driver.
// RunConfig.GraphFile selects the demo scenario (internal/example only
// ships "chain" and "forkjoin" — loading a graph from an external file
// format is an out-of-scope front-end concern, see SPEC_FULL.md).
func New(configPath string) (*Daemon, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	scn, err := loadScenario(cfg.Run.GraphFile)
	if err != nil {
		return nil, err
	}

	mapperPolicy, err := parseMapperPolicy(cfg.Run.Mapper.Algorithm)
	if err != nil {
		return nil, err
	}
	execPolicy, err := parseExecPolicy(cfg.Run.ExecPolicy)
	if err != nil {
		return nil, err
	}

	d := &Daemon{
		cfg:        cfg,
		configPath: configPath,
		scenario:   scn,
		driver:     scn.NewDriver(mapperPolicy, execPolicy, cfg.Run.QueueSize),
		running:    abool.New(),
	}
	d.ctx, d.cancel = context.WithCancel(context.Background())
	return d, nil
}

func loadScenario(name string) (*example.Scenario, error) {
	switch name {
	case "", "chain":
		return example.Chain(), nil
	case "forkjoin":
		return example.ForkJoin(), nil
	default:
		return nil, fmt.Errorf("unknown run.graph_file scenario %q (available: chain, forkjoin)", name)
	}
}

func parseMapperPolicy(name string) (mapper.Policy, error) {
	switch name {
	case "", "bestfit":
		return mapper.BestFit, nil
	case "roundrobin":
		return mapper.RoundRobin, nil
	default:
		return 0, fmt.Errorf("unknown mapper algorithm %q", name)
	}
}

func parseExecPolicy(name string) (launcher.ExecPolicy, error) {
	switch name {
	case "", "jit":
		return launcher.JIT, nil
	case "delayed":
		return launcher.Delayed, nil
	default:
		return 0, fmt.Errorf("unknown exec policy %q", name)
	}
}

// Start initializes logging, the metrics server and the control server,
// and begins running graph iterations in the background.
func (d *Daemon) Start() error {
	loggerCfg := log.FromAppConfig(d.cfg.Log)
	if err := log.Init(&loggerCfg); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	logger := log.GetLogger().WithField("graph", d.scenario.Name)
	logger.Info("starting spider2 daemon")

	if err := d.writePIDFile(); err != nil {
		return fmt.Errorf("failed to write PID file: %w", err)
	}

	if d.cfg.Metrics.Enabled {
		d.metricsServer = metrics.NewServer(d.cfg.Metrics.Listen, d.cfg.Metrics.Path)
		if err := d.metricsServer.Start(d.ctx); err != nil {
			return fmt.Errorf("failed to start metrics server: %w", err)
		}
		logger.WithField("addr", d.cfg.Metrics.Listen).Info("metrics server started")
	}

	d.controlServer = control.NewServer(d.cfg.Control.Socket, d.buildHandler())
	if err := d.controlServer.Start(d.ctx); err != nil {
		return fmt.Errorf("failed to start control server: %w", err)
	}
	logger.WithField("socket", d.cfg.Control.Socket).Info("control server started")

	d.running.Set()
	go d.iterationLoop()

	return nil
}

// iterationLoop repeatedly runs the loaded graph to completion (§2),
// recording per-iteration metrics, until the daemon's context is
// cancelled or an iteration fails.
func (d *Daemon) iterationLoop() {
	logger := log.GetLogger()
	for {
		select {
		case <-d.ctx.Done():
			return
		default:
		}

		start := time.Now()
		err := d.driver.RunIteration()
		metrics.IterationDurationSeconds.Observe(time.Since(start).Seconds())

		if err != nil {
			metrics.IterationsTotal.WithLabelValues("error").Inc()
			logger.WithError(err).Error("iteration failed")
			return
		}
		metrics.IterationsTotal.WithLabelValues("ok").Inc()
		d.iterations.Add(1)
		d.recordScheduleMetrics()
	}
}

func (d *Daemon) recordScheduleMetrics() {
	sched := d.driver.Sched
	if sched == nil {
		return
	}
	metrics.ScheduleMakespan.Set(float64(sched.Stats.Makespan()))
	for pe := 0; pe < d.scenario.Platform.PECount(); pe++ {
		label := strconv.Itoa(pe)
		metrics.PEUtilization.WithLabelValues(label).Set(sched.Stats.UtilizationFactor(pe))
		metrics.PEJobCount.WithLabelValues(label).Set(float64(sched.Stats.JobCount(pe)))
	}
}

// Run blocks until a termination signal, a control-plane stop request,
// or the context is cancelled, then stops gracefully.
func (d *Daemon) Run() error {
	d.sigChan = make(chan os.Signal, 1)
	signal.Notify(d.sigChan, syscall.SIGTERM, syscall.SIGINT, syscall.SIGHUP)

	for {
		select {
		case sig := <-d.sigChan:
			switch sig {
			case syscall.SIGTERM, syscall.SIGINT:
				d.Stop()
				return nil
			case syscall.SIGHUP:
				if err := d.Reload(); err != nil {
					log.GetLogger().WithError(err).Error("config reload failed")
				}
			}
		case <-d.ctx.Done():
			d.Stop()
			return d.ctx.Err()
		}
	}
}

// Reload re-reads the config file and stores its log section in the
// daemon's config. The running logger is not re-initialised: log.Init
// only takes effect once, so the new level/format is not applied. The
// loaded graph, platform and scheduling policy are fixed for the
// process's lifetime (a cold-reload item, like the teacher's
// node.hostname).
func (d *Daemon) Reload() error {
	newCfg, err := config.Load(d.configPath)
	if err != nil {
		return fmt.Errorf("failed to reload config: %w", err)
	}
	d.cfg.Log = newCfg.Log
	log.GetLogger().Info("configuration reloaded")
	return nil
}

// Stop performs graceful shutdown: it stops accepting new iterations,
// tears down the control and metrics servers, and removes the PID file.
func (d *Daemon) Stop() {
	if !d.running.SetToIf(true, false) {
		return
	}
	logger := log.GetLogger()
	logger.Info("stopping spider2 daemon")

	d.cancel()
	if d.sigChan != nil {
		signal.Stop(d.sigChan)
	}

	if d.controlServer != nil {
		if err := d.controlServer.Stop(); err != nil {
			logger.WithError(err).Error("error stopping control server")
		}
	}
	if d.metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := d.metricsServer.Stop(shutdownCtx); err != nil {
			logger.WithError(err).Error("error stopping metrics server")
		}
	}
	if err := d.removePIDFile(); err != nil {
		logger.WithError(err).Error("error removing PID file")
	}
}

// buildHandler registers the status/stats/reload/stop JSON-RPC methods
// (internal/control's protocol, §6's "driver-visible" control surface)
// against this daemon's live state.
func (d *Daemon) buildHandler() *control.Handler {
	h := control.NewHandler()

	h.Register(control.MethodStatus, func(_ context.Context, _ json.RawMessage) (any, error) {
		return control.StatusResult{
			Running:    d.running.IsSet(),
			GraphFile:  d.scenario.Name,
			LRTCount:   d.scenario.Platform.LRTCount(),
			Iterations: d.iterations.Load(),
		}, nil
	})

	h.Register(control.MethodStats, func(_ context.Context, _ json.RawMessage) (any, error) {
		return d.statsResult(), nil
	})

	h.Register(control.MethodReload, func(_ context.Context, _ json.RawMessage) (any, error) {
		return nil, d.Reload()
	})

	h.Register(control.MethodStop, func(_ context.Context, _ json.RawMessage) (any, error) {
		go d.Stop()
		return map[string]bool{"stopping": true}, nil
	})

	return h
}

// statsResult reads the most recently completed iteration's Stats
// (§4.9); before the first iteration completes it reports zero values.
func (d *Daemon) statsResult() control.StatsResult {
	sched := d.driver.Sched
	if sched == nil {
		return control.StatsResult{PELoad: map[string]uint64{}}
	}
	load := make(map[string]uint64, d.scenario.Platform.PECount())
	for pe := 0; pe < d.scenario.Platform.PECount(); pe++ {
		load[strconv.Itoa(pe)] = uint64(sched.Stats.LoadTime(pe))
	}
	return control.StatsResult{
		Makespan:  uint64(sched.Stats.Makespan()),
		PELoad:    load,
		TaskCount: sched.TaskCount(),
	}
}

func (d *Daemon) writePIDFile() error {
	if d.cfg.Control.PIDFile == "" {
		return nil
	}
	data := []byte(strconv.Itoa(os.Getpid()) + "\n")
	return os.WriteFile(d.cfg.Control.PIDFile, data, 0644)
}

func (d *Daemon) removePIDFile() error {
	if d.cfg.Control.PIDFile == "" {
		return nil
	}
	if err := os.Remove(d.cfg.Control.PIDFile); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
