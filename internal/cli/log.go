// Package cli implements the panetree command-line interface.
//
// Commands operate on one workspace at a time, selected with --workspace
// (-w) or the workspace setting of the config file. The store backend
// comes from the config file and can be overridden with --store.
//
// # Commands
//
//   - new, show, list, delete, validate: manage workspaces
//   - add, split, remove, move, swap, drop: apply layout operations
//   - dot, svg: export the layout tree
//   - serve: HTTP API over the configured store
//   - tui: interactive pane viewer
//   - config, cache, completion: housekeeping
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging; otherwise
// the level comes from the config file. The logger is attached to the
// command context and retrieved with loggerFromContext.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time, rounded to the millisecond.
// Example output: "Rendered default (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, or log.Default() when
// none is attached.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
