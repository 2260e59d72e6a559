// Package telemetry collects hierarchical timings of cooking, rate imports
// and command runs.
//
// Collectors travel through the context, so instrumented code never needs a
// collector argument:
//
//	collector := telemetry.NewTimingCollector()
//	ctx := telemetry.WithCollector(context.Background(), collector)
//
//	timer := telemetry.StartTimer(ctx, "ledger.cook")
//	defer timer.End()
//
//	collector.Report(os.Stderr, output.NewStyles(os.Stderr))
package telemetry

import (
	"context"
	"io"

	"github.com/robinvdvleuten/kasboek/output"
)

type contextKey int

const (
	collectorKey contextKey = iota
	rootTimerKey
)

// Collector gathers timers and reports them.
type Collector interface {
	// Start begins timing an operation.
	Start(name string) Timer

	// Report writes the collected timings. Styles may be nil for plain text.
	Report(w io.Writer, styles *output.Styles)
}

// Timer tracks one operation. Child timers nest under it.
type Timer interface {
	End()
	Child(name string) Timer
}

func WithCollector(ctx context.Context, collector Collector) context.Context {
	return context.WithValue(ctx, collectorKey, collector)
}

// FromContext returns the collector of ctx, or one that records nothing.
func FromContext(ctx context.Context) Collector {
	if collector, ok := ctx.Value(collectorKey).(Collector); ok {
		return collector
	}
	return noOpCollector{}
}

// WithRootTimer makes timers started from ctx children of timer.
func WithRootTimer(ctx context.Context, timer Timer) context.Context {
	return context.WithValue(ctx, rootTimerKey, timer)
}

// StartTimer starts a child of the root timer of ctx, or a new timer on the
// collector of ctx when there is no root.
func StartTimer(ctx context.Context, name string) Timer {
	if root, ok := ctx.Value(rootTimerKey).(Timer); ok {
		return root.Child(name)
	}
	return FromContext(ctx).Start(name)
}
