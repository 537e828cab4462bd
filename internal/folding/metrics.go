package folding

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

const instrumentationName = "github.com/dshills/keyfold/internal/folding"

// Recompute outcomes.
const (
	OutcomeApplied = "applied"
	OutcomeStale   = "stale"
	OutcomeFailed  = "failed"
)

// Metrics holds the folding instruments. A nil *Metrics records nothing.
type Metrics struct {
	recomputes      metric.Int64Counter
	regionsCreated  metric.Int64Counter
	regionsDisposed metric.Int64Counter
	toggles         metric.Int64Counter
	computeDuration metric.Float64Histogram
}

// NewMetrics creates the instruments on mp, or on the global provider when
// mp is nil. Instruments that fail to register are logged and skipped.
func NewMetrics(mp metric.MeterProvider, logger *zap.Logger) *Metrics {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	meter := mp.Meter(instrumentationName)
	m := &Metrics{}

	var err error
	m.recomputes, err = meter.Int64Counter(
		"keyfold.folding.recomputes_total",
		metric.WithDescription("Folding range recomputations by outcome (applied, stale, failed)."),
		metric.WithUnit("{recompute}"),
	)
	if err != nil {
		logger.Warn("failed to create recompute counter", zap.Error(err))
	}

	m.regionsCreated, err = meter.Int64Counter(
		"keyfold.folding.regions_created_total",
		metric.WithDescription("Anchored regions created by reconciliation."),
		metric.WithUnit("{region}"),
	)
	if err != nil {
		logger.Warn("failed to create regions created counter", zap.Error(err))
	}

	m.regionsDisposed, err = meter.Int64Counter(
		"keyfold.folding.regions_disposed_total",
		metric.WithDescription("Anchored regions disposed by reconciliation or teardown."),
		metric.WithUnit("{region}"),
	)
	if err != nil {
		logger.Warn("failed to create regions disposed counter", zap.Error(err))
	}

	m.toggles, err = meter.Int64Counter(
		"keyfold.folding.toggles_total",
		metric.WithDescription("Collapsed state changes made by pointer or command."),
		metric.WithUnit("{toggle}"),
	)
	if err != nil {
		logger.Warn("failed to create toggle counter", zap.Error(err))
	}

	m.computeDuration, err = meter.Float64Histogram(
		"keyfold.folding.compute_duration_seconds",
		metric.WithDescription("Time from starting a range computation to its result reaching the editor loop."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1),
	)
	if err != nil {
		logger.Warn("failed to create compute duration histogram", zap.Error(err))
	}

	return m
}

func (m *Metrics) recordRecompute(ctx context.Context, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	if m.recomputes != nil {
		m.recomputes.Add(ctx, 1, attrs)
	}
	if m.computeDuration != nil {
		m.computeDuration.Record(ctx, d.Seconds(), attrs)
	}
}

func (m *Metrics) recordRegions(ctx context.Context, created, disposed int) {
	if m == nil {
		return
	}
	if m.regionsCreated != nil && created > 0 {
		m.regionsCreated.Add(ctx, int64(created))
	}
	if m.regionsDisposed != nil && disposed > 0 {
		m.regionsDisposed.Add(ctx, int64(disposed))
	}
}

func (m *Metrics) recordToggle(ctx context.Context, collapsed bool) {
	if m == nil || m.toggles == nil {
		return
	}
	m.toggles.Add(ctx, 1, metric.WithAttributes(attribute.Bool("collapsed", collapsed)))
}
