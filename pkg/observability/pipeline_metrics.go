package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricArchivesTotal   = "codelex.archives.total"
	metricFilesTotal      = "codelex.files.total"
	metricDegradedTotal   = "codelex.metrics.degraded.total"
	metricArchiveDuration = "codelex.archive.duration.seconds"

	attrStatus = "status"
	attrMetric = "metric"
)

// Archive outcomes recorded on the archives counter.
const (
	StatusAnalyzed = "analyzed"
	StatusEmpty    = "empty"
	StatusFailed   = "failed"
)

// durationBucketBoundaries covers 10ms to 600s: small repositories finish in
// well under a second, large ones with a linter per file take minutes.
var durationBucketBoundaries = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600}

// metricBuilder accumulates instrument creation errors so a set of
// instruments needs a single error check.
type metricBuilder struct {
	meter metric.Meter
	err   error
}

func (b *metricBuilder) counter(name, desc, unit string) metric.Int64Counter {
	c, err := b.meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit(unit))
	b.setErr(name, err)

	return c
}

func (b *metricBuilder) histogram(name, desc, unit string, bounds ...float64) metric.Float64Histogram {
	h, err := b.meter.Float64Histogram(name,
		metric.WithDescription(desc),
		metric.WithUnit(unit),
		metric.WithExplicitBucketBoundaries(bounds...),
	)
	b.setErr(name, err)

	return h
}

func (b *metricBuilder) setErr(name string, err error) {
	if err != nil && b.err == nil {
		b.err = fmt.Errorf("create %s: %w", name, err)
	}
}

// PipelineMetrics holds the instruments of a batch run.
type PipelineMetrics struct {
	archives metric.Int64Counter
	files    metric.Int64Counter
	degraded metric.Int64Counter
	duration metric.Float64Histogram
}

// ArchiveStats describes one processed archive.
type ArchiveStats struct {
	Status   string
	Files    int
	Degraded map[string]int
	Duration time.Duration
}

// NewPipelineMetrics creates the batch instruments from mt.
func NewPipelineMetrics(mt metric.Meter) (*PipelineMetrics, error) {
	b := &metricBuilder{meter: mt}

	pm := &PipelineMetrics{
		archives: b.counter(metricArchivesTotal, "Archives processed by outcome", "{archive}"),
		files:    b.counter(metricFilesTotal, "Source files analyzed", "{file}"),
		degraded: b.counter(metricDegradedTotal, "Per-file metrics that fell back to their default", "{metric}"),
		duration: b.histogram(metricArchiveDuration, "Per-archive processing duration in seconds", "s",
			durationBucketBoundaries...),
	}

	if b.err != nil {
		return nil, b.err
	}

	return pm, nil
}

// RecordArchive records one processed archive.
// Safe to call on a nil receiver (no-op).
func (pm *PipelineMetrics) RecordArchive(ctx context.Context, stats ArchiveStats) {
	if pm == nil {
		return
	}

	pm.archives.Add(ctx, 1, metric.WithAttributes(attribute.String(attrStatus, stats.Status)))
	pm.files.Add(ctx, int64(stats.Files))
	pm.duration.Record(ctx, stats.Duration.Seconds())

	for name, n := range stats.Degraded {
		pm.degraded.Add(ctx, int64(n), metric.WithAttributes(attribute.String(attrMetric, name)))
	}
}
