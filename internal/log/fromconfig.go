package log

import "github.com/preesm/spider2/internal/config"

// FromAppConfig converts the application's viper-loaded LogConfig into
// the LoggerConfig this package's Init expects, translating the
// declarative file/Loki toggles into the appender list initByConfig
// walks.
func FromAppConfig(cfg config.LogConfig) LoggerConfig {
	lc := LoggerConfig{
		Level:   cfg.Level,
		Pattern: defaultPattern,
		Time:    defaultTimeFormat,
	}
	if cfg.Outputs.File.Enabled {
		lc.Appenders = append(lc.Appenders, AppenderConfig{
			Type: "file",
			File: FileAppenderOpt{
				Filename:   cfg.Outputs.File.Path,
				MaxSize:    cfg.Outputs.File.Rotation.MaxSizeMB,
				MaxBackups: cfg.Outputs.File.Rotation.MaxBackups,
				MaxAge:     cfg.Outputs.File.Rotation.MaxAgeDays,
				Compress:   cfg.Outputs.File.Rotation.Compress,
			},
		})
	}
	if cfg.Outputs.Loki.Enabled {
		lc.Appenders = append(lc.Appenders, AppenderConfig{
			Type: "loki",
			Loki: LokiConfig{
				Endpoint:      cfg.Outputs.Loki.Endpoint,
				Labels:        cfg.Outputs.Loki.Labels,
				BatchSize:     cfg.Outputs.Loki.BatchSize,
				FlushInterval: cfg.Outputs.Loki.BatchTimeout,
			},
		})
	}
	return lc
}
