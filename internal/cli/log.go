// Package cli implements the topograph command-line interface.
//
// This package provides commands for laying out replication snapshots,
// computing hover highlights, rendering diagrams, serving the HTTP API and
// exploring a topology in the terminal. The CLI is built using cobra and
// supports verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - layout: Position a snapshot and print the layout as JSON
//   - highlight: Print the visual state for a hovered node
//   - render: Draw the layout as DOT, SVG, PDF or PNG
//   - serve: Watch the configured source and serve the HTTP API
//   - explore: Browse the topology interactively
//   - snapshot: Move snapshots between files and the cache
//   - cache: Manage the local snapshot cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context, and engine events reach the logger through
// the observability hooks.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/topograph/pkg/observability"
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

// done logs msg at info level along with the elapsed time.
// Example output: "Pushed 42 nodes (12ms)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, p.elapsed())
}

// debug is done at debug level.
func (p *progress) debug(msg string) {
	p.logger.Debugf("%s (%s)", msg, p.elapsed())
}

func (p *progress) elapsed() time.Duration {
	return time.Since(p.start).Round(time.Millisecond)
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// =============================================================================
// Logging Hooks
// =============================================================================

// logHooks reports engine events to the CLI logger at debug level.
type logHooks struct {
	logger *log.Logger
}

// registerLogHooks installs logHooks for every hook category.
func registerLogHooks(l *log.Logger) {
	h := logHooks{logger: l}
	observability.SetLayoutHooks(h)
	observability.SetHighlightHooks(h)
	observability.SetSourceHooks(h)
	observability.SetCacheHooks(h)
}

func (h logHooks) OnLayoutStart(_ context.Context, nodeCount, edgeCount int) {
	h.logger.Debug("layout started", "nodes", nodeCount, "edges", edgeCount)
}

func (h logHooks) OnLayoutComplete(_ context.Context, nodeCount, diagnostics int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("layout failed", "err", err, "duration", d)
		return
	}
	h.logger.Debug("layout complete", "nodes", nodeCount, "diagnostics", diagnostics, "duration", d)
}

// OnDiagnostic is a no-op; diagnostics are already logged at warn level by
// the caller.
func (h logHooks) OnDiagnostic(context.Context, string, string) {}

func (h logHooks) OnHoverEnter(_ context.Context, viewer, nodeID string, active int, err error) {
	if err != nil {
		h.logger.Debug("hover rejected", "viewer", viewer, "node", nodeID, "err", err)
		return
	}
	h.logger.Debug("hover", "viewer", viewer, "node", nodeID, "active", active)
}

func (h logHooks) OnHoverLeave(_ context.Context, viewer string) {
	h.logger.Debug("hover left", "viewer", viewer)
}

func (h logHooks) OnSnapshotLoaded(_ context.Context, src string, nodeCount, edgeCount int, changed bool, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("snapshot load failed", "source", src, "err", err, "duration", d)
		return
	}
	h.logger.Debug("snapshot loaded", "source", src, "nodes", nodeCount, "edges", edgeCount, "changed", changed, "duration", d)
}

func (h logHooks) OnCacheHit(_ context.Context, key string) {
	h.logger.Debug("cache hit", "key", key)
}

func (h logHooks) OnCacheMiss(_ context.Context, key string) {
	h.logger.Debug("cache miss", "key", key)
}

func (h logHooks) OnCacheSet(_ context.Context, key string, size int) {
	h.logger.Debug("cache set", "key", key, "bytes", size)
}
