package log

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

const (
	defaultPattern    = "%time [%level] %field %msg\n"
	defaultTimeFormat = "2006-01-02T15:04:05.000Z07:00"
)

// LoggerConfig is the adapter's own view of logging settings, decoupled
// from internal/config.LogConfig so this package stays importable
// without a dependency on the config package. FromAppConfig converts
// the two.
type LoggerConfig struct {
	Pattern   string           `mapstructure:"pattern"`
	Time      string           `mapstructure:"time"`
	Level     string           `mapstructure:"level"`
	Appenders []AppenderConfig `mapstructure:"appenders"`
}

// AppenderConfig names one MultiWriter appender to add on top of the
// always-present stdout appender.
type AppenderConfig struct {
	Type string          `mapstructure:"type"` // "file" | "loki"
	File FileAppenderOpt `mapstructure:"file"`
	Loki LokiConfig      `mapstructure:"loki"`
}

type logrusAdapter struct {
	entry *logrus.Entry
}

func initByConfig(cfg *LoggerConfig) error {
	l := logrus.New()
	pattern := cfg.Pattern
	if pattern == "" {
		pattern = defaultPattern
	}
	timeFmt := cfg.Time
	if timeFmt == "" {
		timeFmt = defaultTimeFormat
	}
	l.SetFormatter(&formatter{
		pattern: pattern,
		time:    timeFmt,
	})
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	mw := NewMultiWriter().Add(os.Stdout)
	for _, app := range cfg.Appenders {
		switch app.Type {
		case "file":
			mw.AddFileAppender(app.File)
		case "loki":
			lw, err := NewLokiWriter(app.Loki)
			if err != nil {
				return fmt.Errorf("log: loki appender: %w", err)
			}
			mw.Add(lw)
		default:
			return fmt.Errorf("log: unsupported appender type %q", app.Type)
		}
	}
	l.SetOutput(mw)

	logger = &logrusAdapter{
		entry: logrus.NewEntry(l),
	}
	return nil
}

func (l *logrusAdapter) Print(args ...interface{})                 { l.entry.Print(args...) }
func (l *logrusAdapter) Printf(format string, args ...interface{}) { l.entry.Printf(format, args...) }

func (l *logrusAdapter) Trace(args ...interface{})                 { l.entry.Trace(args...) }
func (l *logrusAdapter) Tracef(format string, args ...interface{}) { l.entry.Tracef(format, args...) }

func (l *logrusAdapter) Debug(args ...interface{})                 { l.entry.Debug(args...) }
func (l *logrusAdapter) Debugf(format string, args ...interface{}) { l.entry.Debugf(format, args...) }

func (l *logrusAdapter) Info(args ...interface{})                 { l.entry.Info(args...) }
func (l *logrusAdapter) Infof(format string, args ...interface{}) { l.entry.Infof(format, args...) }

func (l *logrusAdapter) Warn(args ...interface{})                 { l.entry.Warn(args...) }
func (l *logrusAdapter) Warnf(format string, args ...interface{}) { l.entry.Warnf(format, args...) }

func (l *logrusAdapter) Error(args ...interface{})                 { l.entry.Error(args...) }
func (l *logrusAdapter) Errorf(format string, args ...interface{}) { l.entry.Errorf(format, args...) }

func (l *logrusAdapter) Fatal(args ...interface{})                 { l.entry.Fatal(args...) }
func (l *logrusAdapter) Fatalf(format string, args ...interface{}) { l.entry.Fatalf(format, args...) }

func (l *logrusAdapter) Panic(args ...interface{})                 { l.entry.Panic(args...) }
func (l *logrusAdapter) Panicf(format string, args ...interface{}) { l.entry.Panicf(format, args...) }

func (l *logrusAdapter) WithField(field string, value interface{}) Logger {
	return &logrusAdapter{entry: l.entry.WithField(field, value)}
}
func (l *logrusAdapter) WithFields(fields map[string]interface{}) Logger {
	return &logrusAdapter{entry: l.entry.WithFields(fields)}
}
func (l *logrusAdapter) WithError(err error) Logger {
	return &logrusAdapter{entry: l.entry.WithError(err)}
}

func (l *logrusAdapter) IsTraceEnabled() bool {
	return l.entry.Logger.IsLevelEnabled(logrus.TraceLevel)
}
func (l *logrusAdapter) IsDebugEnabled() bool {
	return l.entry.Logger.IsLevelEnabled(logrus.DebugLevel)
}
func (l *logrusAdapter) IsInfoEnabled() bool {
	return l.entry.Logger.IsLevelEnabled(logrus.InfoLevel)
}
