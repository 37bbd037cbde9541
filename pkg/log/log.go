// Package log provides the structured logging used across the
// subscription manager, built on top of the standard library's
// log/slog.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
)

var defaultLogger = slog.Default()

const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// SetDefault replaces the package-wide default logger.
func SetDefault(l *slog.Logger) {
	defaultLogger = l
	slog.SetDefault(l)
}

// New creates a text-handler logger writing to w.
func New(w io.Writer, opts *slog.HandlerOptions) *slog.Logger {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// SetOutputWithLevel redirects the default logger's output and level,
// used by tests that want to inspect emitted log lines.
func SetOutputWithLevel(w io.Writer, level slog.Level) {
	opts := &slog.HandlerOptions{Level: level}
	defaultLogger = slog.New(slog.NewTextHandler(w, opts))
	slog.SetDefault(defaultLogger)
}

// Component is a lazily-resolving logger tagged with a component name.
// Each call reads slog.Default() fresh, so redirecting the default
// logger (e.g. in tests) affects loggers already handed out.
type Component struct {
	name string
}

// Logger returns a Component logger, e.g. log.Logger("subscription/registry").
func Logger(component string) *Component {
	return &Component{name: component}
}

func (c *Component) Debug(msg string, args ...any) {
	slog.Default().With("component", c.name).Debug(msg, args...)
}

func (c *Component) Info(msg string, args ...any) {
	slog.Default().With("component", c.name).Info(msg, args...)
}

func (c *Component) Warn(msg string, args ...any) {
	slog.Default().With("component", c.name).Warn(msg, args...)
}

func (c *Component) Error(msg string, args ...any) {
	slog.Default().With("component", c.name).Error(msg, args...)
}

func (c *Component) DebugContext(ctx context.Context, msg string, args ...any) {
	slog.Default().With("component", c.name).DebugContext(ctx, msg, args...)
}

func (c *Component) InfoContext(ctx context.Context, msg string, args ...any) {
	slog.Default().With("component", c.name).InfoContext(ctx, msg, args...)
}

// TruncateID safely truncates an id for log display, avoiding a
// slice-bounds panic on short ids.
func TruncateID(id string, maxLen int) string {
	if len(id) <= maxLen {
		return id
	}
	return id[:maxLen]
}

func init() {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	defaultLogger = slog.New(slog.NewTextHandler(os.Stderr, opts))
}
