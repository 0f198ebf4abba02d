package log

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/go-viper/mapstructure/v2"
	"github.com/sirupsen/logrus"
)

// logrusAdapter implements Logger on top of a logrus.Entry.
type logrusAdapter struct {
	entry *logrus.Entry
}

func newDefaultLogger() Logger {
	built, err := buildLogger(DefaultConfig())
	if err != nil {
		// DefaultConfig is a fixed literal; it cannot fail to build.
		panic(err)
	}
	return built
}

// buildLogger constructs a fresh logrusAdapter from cfg. It never mutates
// package-level state, so callers (Init, tests) control visibility.
func buildLogger(cfg *LoggerConfig) (Logger, error) {
	l := logrus.New()

	if cfg.Formatter != nil {
		l.SetFormatter(&logrus.TextFormatter{
			ForceColors:     cfg.Formatter.EnableColors,
			FullTimestamp:   cfg.Formatter.FullTimestamp,
			DisableSorting:  cfg.Formatter.DisableSorting,
			TimestampFormat: cfg.Time,
		})
	} else {
		l.SetFormatter(&formatter{pattern: cfg.Pattern, time: cfg.Time})
	}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)
	l.SetReportCaller(true)

	mw, err := buildAppenders(cfg.Appenders)
	if err != nil {
		return nil, fmt.Errorf("log: %w", err)
	}
	l.SetOutput(mw)

	// Every component in this daemon logs through stdlib log/slog rather
	// than importing this package's Logger directly; bridging slog's
	// default handler onto the same logrus instance means the configured
	// appenders (file rotation, Loki) actually receive those lines.
	slog.SetDefault(slog.New(newSlogBridge(l)))

	return &logrusAdapter{entry: logrus.NewEntry(l)}, nil
}

// buildAppenders wires one io.Writer per configured appender. An unknown
// appender type is a configuration error (fatal at Init).
func buildAppenders(appenders []AppenderConfig) (*MultiWriter, error) {
	mw := NewMultiWriter()
	if len(appenders) == 0 {
		return mw.Add(os.Stdout), nil
	}

	for i, a := range appenders {
		switch a.Type {
		case "", "console", "stdout":
			mw.Add(os.Stdout)
		case "file":
			var opt FileAppenderOpt
			if err := mapstructure.Decode(a.Options, &opt); err != nil {
				return nil, fmt.Errorf("appender[%d] file options: %w", i, err)
			}
			mw.AddFileAppender(opt)
		case "loki":
			var cfg LokiConfig
			if err := mapstructure.Decode(a.Options, &cfg); err != nil {
				return nil, fmt.Errorf("appender[%d] loki options: %w", i, err)
			}
			lw, err := NewLokiWriter(cfg)
			if err != nil {
				return nil, fmt.Errorf("appender[%d] loki: %w", i, err)
			}
			mw.Add(lw)
		default:
			return nil, fmt.Errorf("appender[%d]: unknown type %q", i, a.Type)
		}
	}
	return mw, nil
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
