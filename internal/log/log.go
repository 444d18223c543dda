package log

import (
	"sync"
)

type Logger interface {
	Print(args ...interface{})
	Printf(format string, args ...interface{})

	Trace(args ...interface{})
	Tracef(format string, args ...interface{})

	Debug(args ...interface{})
	Debugf(format string, args ...interface{})

	Info(args ...interface{})
	Infof(format string, args ...interface{})

	Warn(args ...interface{})
	Warnf(format string, args ...interface{})

	Error(args ...interface{})
	Errorf(format string, args ...interface{})

	Fatal(args ...interface{})
	Fatalf(format string, args ...interface{})

	Panic(args ...interface{})
	Panicf(format string, args ...interface{})

	WithField(field string, value interface{}) Logger
	WithFields(fields map[string]interface{}) Logger
	WithError(err error) Logger

	IsTraceEnabled() bool
	IsDebugEnabled() bool
	IsInfoEnabled() bool
}

var (
	once   sync.Once
	logger Logger
)

// GetLogger returns the process-wide Logger. Before Init is called it
// lazily falls back to a stdout-only default so packages (and tests)
// that log before the CLI/daemon has parsed its config still produce
// output instead of dereferencing a nil Logger.
func GetLogger() Logger {
	once.Do(func() {
		if logger == nil {
			_ = initByConfig(&LoggerConfig{Level: "info", Pattern: defaultPattern, Time: defaultTimeFormat})
		}
	})
	return logger
}

// Init wires the global Logger from cfg (§2 ambient stack): a logrus
// entry formatted by the pattern formatter, fanned out to stdout plus
// whatever file/Loki appenders cfg.Appenders enables. Init shares one
// sync.Once with GetLogger: it takes effect only if it runs before any
// GetLogger call and before any other Init call; otherwise it is a
// no-op returning nil.
func Init(cfg *LoggerConfig) error {
	var err error
	once.Do(func() {
		err = initByConfig(cfg)
	})
	return err
}
