package log

import (
	"context"
	"log/slog"

	"github.com/sirupsen/logrus"
)

// slogBridge adapts slog.Handler onto a *logrus.Logger, so every package
// that logs through stdlib log/slog (router, engine, control/server,
// metrics/server, daemonproc) lands on the same appender stack
// (console/file/loki, via buildAppenders) as the Logger facade in this
// package, instead of slog's handler-less default writing to stderr.
type slogBridge struct {
	logger *logrus.Logger
	attrs  []slog.Attr
	group  string
}

func newSlogBridge(l *logrus.Logger) slog.Handler {
	return &slogBridge{logger: l}
}

func (h *slogBridge) Enabled(_ context.Context, level slog.Level) bool {
	return h.logger.IsLevelEnabled(slogToLogrusLevel(level))
}

func (h *slogBridge) Handle(_ context.Context, r slog.Record) error {
	fields := make(logrus.Fields, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		fields[h.qualify(a.Key)] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		fields[h.qualify(a.Key)] = a.Value.Any()
		return true
	})

	entry := h.logger.WithFields(fields)
	entry.Time = r.Time
	entry.Log(slogToLogrusLevel(r.Level), r.Message)
	return nil
}

func (h *slogBridge) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := &slogBridge{logger: h.logger, group: h.group}
	out.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return out
}

func (h *slogBridge) WithGroup(name string) slog.Handler {
	out := &slogBridge{logger: h.logger, attrs: h.attrs, group: name}
	if h.group != "" {
		out.group = h.group + "." + name
	}
	return out
}

func (h *slogBridge) qualify(key string) string {
	if h.group == "" {
		return key
	}
	return h.group + "." + key
}

// slogToLogrusLevel maps slog's level range onto logrus's fixed levels; slog
// permits arbitrary integer levels between the named ones (e.g. Info+1), so
// this compares by range rather than exact value.
func slogToLogrusLevel(level slog.Level) logrus.Level {
	switch {
	case level >= slog.LevelError:
		return logrus.ErrorLevel
	case level >= slog.LevelWarn:
		return logrus.WarnLevel
	case level >= slog.LevelInfo:
		return logrus.InfoLevel
	default:
		return logrus.DebugLevel
	}
}
