package telemetry

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"

	"github.com/robinvdvleuten/kasboek/output"
)

func TestNoOpCollector(t *testing.T) {
	collector := noOpCollector{}
	timer := collector.Start("test")
	timer.Child("child").End()
	timer.End()

	var buf bytes.Buffer
	collector.Report(&buf, nil)
	assert.Equal(t, 0, buf.Len())
}

func TestFromContext(t *testing.T) {
	_, ok := FromContext(context.Background()).(noOpCollector)
	assert.True(t, ok, "missing collector falls back to no-op")

	collector := NewTimingCollector()
	ctx := WithCollector(context.Background(), collector)
	assert.Equal(t, Collector(collector), FromContext(ctx))
}

func TestStartTimerNestsUnderRoot(t *testing.T) {
	collector := NewTimingCollector()
	ctx := WithCollector(context.Background(), collector)

	root := StartTimer(ctx, "kasboek convert")
	ctx = WithRootTimer(ctx, root)
	cook := StartTimer(ctx, "ledger.cook")
	cook.End()
	root.End()

	var buf bytes.Buffer
	collector.Report(&buf, nil)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, 2, len(lines))
	assert.True(t, strings.HasPrefix(lines[0], "kasboek convert: "))
	assert.True(t, strings.HasPrefix(lines[1], "└─ ledger.cook: "))
}

func TestStartTimerWithoutCollector(t *testing.T) {
	timer := StartTimer(context.Background(), "anything")
	_, ok := timer.(noOpTimer)
	assert.True(t, ok)
	timer.End()
}

func TestTimingCollectorHierarchy(t *testing.T) {
	collector := NewTimingCollector()
	total := collector.Start("Total")
	first := total.Child("Parse")
	time.Sleep(2 * time.Millisecond)
	first.End()
	second := collector.Start("Store")
	second.Child("Flush").End()
	second.End()
	total.End()

	var buf bytes.Buffer
	collector.Report(&buf, nil)
	out := buf.String()
	assert.Contains(t, out, "├─ Parse: ")
	assert.Contains(t, out, "└─ Store: ")
	assert.Contains(t, out, "   └─ Flush: ")

	durations := collector.Durations()
	assert.True(t, durations["Parse"] >= 2*time.Millisecond)
	assert.True(t, durations["Total"] >= durations["Parse"])
}

func TestReportWithStyles(t *testing.T) {
	collector := NewTimingCollector()
	collector.Start("Total").End()

	var buf bytes.Buffer
	collector.Report(&buf, output.NewStyles(&buf))
	assert.Contains(t, buf.String(), "Total")
}

func TestTimingCollectorEmptyReport(t *testing.T) {
	var buf bytes.Buffer
	NewTimingCollector().Report(&buf, nil)
	assert.Equal(t, 0, buf.Len())
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		duration time.Duration
		want     string
	}{
		{time.Millisecond, "1ms"},
		{100 * time.Millisecond, "100ms"},
		{999 * time.Millisecond, "999ms"},
		{time.Second, "1.00s"},
		{1500 * time.Millisecond, "1.50s"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatDuration(tt.duration))
	}
}
