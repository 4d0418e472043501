// Package bindifflog is the ambient structured-logging helper the
// core wraps around log/slog (spec.md says nothing about logging; the
// teacher carries none either — see SPEC_FULL.md §1 "Logging"). It
// exists only to attach a run's correlation id to every record a
// matching run emits, the way other_examples' trace-graph services use
// telemetry.LoggerWithTrace to thread a trace id through slog.Default()
// rather than passing it as a field on every log call.
package bindifflog

import (
	"log/slog"
	"os"

	"github.com/google/uuid"
)

// New returns a *slog.Logger writing leveled, key=value text output to
// os.Stderr, at the given minimum level. The driver
// never logs above Debug for per-candidate matching decisions (SPEC_FULL.md
// §1), so callers that want quiet default output should pass
// slog.LevelInfo or higher; tests and diagnostics pass slog.LevelDebug.
func New(level slog.Level) *slog.Logger {
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})

	return slog.New(h)
}

// WithRun returns a logger derived from base with a "run_id" attribute
// attached, so every record a matching run emits can be grepped or
// correlated by run without the driver repeating the attribute at every
// call site (matchctx.Context.Logger is typically built this way once,
// at construction, from a RunID already generated for the store/context).
func WithRun(base *slog.Logger, runID uuid.UUID) *slog.Logger {
	if base == nil {
		base = slog.Default()
	}

	return base.With("run_id", runID.String())
}

// Discard returns a logger that drops every record, for callers (tests,
// library embedders who already log elsewhere) that want the driver's
// Debug-level instrumentation fully silenced rather than routed to
// stderr.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(discardWriter{}, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }
