// Package config handles global configuration loading using viper.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// GlobalConfig is the top-level static configuration. Maps to the
// `spider2:` root key in YAML.
type GlobalConfig struct {
	Control  ControlConfig  `mapstructure:"control"`
	Run      RunConfig      `mapstructure:"run"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Log      LogConfig      `mapstructure:"log"`
	DataDir  string         `mapstructure:"data_dir"`
}

// ─── Control Plane ───

// ControlConfig contains local control plane settings: the daemon's PID
// file and the Unix socket a `status`/`stats`/`stop` invocation of the
// CLI connects to.
type ControlConfig struct {
	Socket  string `mapstructure:"socket"`
	PIDFile string `mapstructure:"pid_file"`
}

// ─── Run (graph execution) ───

// RunConfig configures one PiSDF graph execution: which platform and
// graph description to load, and the scheduling/mapping/dispatch
// policies the runtime driver applies.
type RunConfig struct {
	PlatformFile string         `mapstructure:"platform_file"`
	GraphFile    string         `mapstructure:"graph_file"`
	Scheduler    SchedulerConfig `mapstructure:"scheduler"`
	Mapper       MapperConfig    `mapstructure:"mapper"`
	ExecPolicy   string          `mapstructure:"exec_policy"` // "jit" | "delayed"
	QueueSize    int             `mapstructure:"queue_size"`  // per-LRT job queue capacity
}

// SchedulerConfig selects and tunes the list scheduler.
type SchedulerConfig struct {
	Algorithm string `mapstructure:"algorithm"` // "list" (only one implemented)
}

// MapperConfig selects and tunes the PE mapper.
type MapperConfig struct {
	Algorithm string `mapstructure:"algorithm"` // "bestfit" | "roundrobin"
}

// ─── Metrics ───

// MetricsConfig contains Prometheus metrics settings.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Listen  string `mapstructure:"listen"`
	Path    string `mapstructure:"path"`
}

// ─── Log ───

// LogConfig contains logging settings.
type LogConfig struct {
	Level   string           `mapstructure:"level"`  // debug / info / warn / error
	Format  string           `mapstructure:"format"` // json / text
	Outputs LogOutputsConfig `mapstructure:"outputs"`
}

// LogOutputsConfig contains structured log output destinations.
type LogOutputsConfig struct {
	File FileOutputConfig `mapstructure:"file"`
	Loki LokiOutputConfig `mapstructure:"loki"`
}

// FileOutputConfig configures file log output.
type FileOutputConfig struct {
	Enabled  bool           `mapstructure:"enabled"`
	Path     string         `mapstructure:"path"`
	Rotation RotationConfig `mapstructure:"rotation"`
}

// RotationConfig configures log file rotation.
type RotationConfig struct {
	MaxSizeMB  int  `mapstructure:"max_size_mb"`
	MaxAgeDays int  `mapstructure:"max_age_days"`
	MaxBackups int  `mapstructure:"max_backups"`
	Compress   bool `mapstructure:"compress"`
}

// LokiOutputConfig configures Loki log output.
type LokiOutputConfig struct {
	Enabled      bool              `mapstructure:"enabled"`
	Endpoint     string            `mapstructure:"endpoint"`
	Labels       map[string]string `mapstructure:"labels"`
	BatchSize    int               `mapstructure:"batch_size"`
	BatchTimeout string            `mapstructure:"batch_timeout"`
}

// ─── Loading ───

// configRoot is the top-level wrapper matching the YAML structure
// `spider2: ...`.
type configRoot struct {
	Spider2 GlobalConfig `mapstructure:"spider2"`
}

// Load loads configuration from path and returns a validated
// GlobalConfig with defaults applied. Env vars override file values
// with a SPIDER2_ prefix (e.g. SPIDER2_LOG_LEVEL), since the
// "spider2." key prefix naturally maps via the key replacer.
func Load(path string) (*GlobalConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	var root configRoot
	if err := v.Unmarshal(&root); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg := root.Spider2

	if err := cfg.ValidateAndApplyDefaults(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default values for configuration, all under the
// "spider2." prefix matching the YAML root wrapper.
func setDefaults(v *viper.Viper) {
	v.SetDefault("spider2.control.pid_file", "/var/run/spider2.pid")
	v.SetDefault("spider2.control.socket", "/var/run/spider2.sock")

	v.SetDefault("spider2.data_dir", "/var/lib/spider2")

	v.SetDefault("spider2.run.scheduler.algorithm", "list")
	v.SetDefault("spider2.run.mapper.algorithm", "bestfit")
	v.SetDefault("spider2.run.exec_policy", "jit")
	v.SetDefault("spider2.run.queue_size", 1024)

	v.SetDefault("spider2.log.level", "info")
	v.SetDefault("spider2.log.format", "json")
	v.SetDefault("spider2.log.outputs.file.enabled", false)
	v.SetDefault("spider2.log.outputs.file.path", "/var/log/spider2/spider2.log")
	v.SetDefault("spider2.log.outputs.file.rotation.max_size_mb", 100)
	v.SetDefault("spider2.log.outputs.file.rotation.max_age_days", 30)
	v.SetDefault("spider2.log.outputs.file.rotation.max_backups", 5)
	v.SetDefault("spider2.log.outputs.file.rotation.compress", true)

	v.SetDefault("spider2.metrics.enabled", true)
	v.SetDefault("spider2.metrics.listen", ":9091")
	v.SetDefault("spider2.metrics.path", "/metrics")
}

// ValidateAndApplyDefaults validates configuration invariants that
// can't be expressed as a static viper default.
func (cfg *GlobalConfig) ValidateAndApplyDefaults() error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Log.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug/info/warn/error)", cfg.Log.Level)
	}
	if cfg.Log.Format != "json" && cfg.Log.Format != "text" {
		return fmt.Errorf("invalid log format: %s (must be json/text)", cfg.Log.Format)
	}

	switch cfg.Run.Scheduler.Algorithm {
	case "list", "":
	default:
		return fmt.Errorf("unsupported scheduler algorithm: %s", cfg.Run.Scheduler.Algorithm)
	}

	switch cfg.Run.Mapper.Algorithm {
	case "bestfit", "roundrobin", "":
	default:
		return fmt.Errorf("unsupported mapper algorithm: %s", cfg.Run.Mapper.Algorithm)
	}

	switch cfg.Run.ExecPolicy {
	case "jit", "delayed", "":
	default:
		return fmt.Errorf("unsupported exec policy: %s", cfg.Run.ExecPolicy)
	}

	return nil
}
