package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Run outcomes recorded against the execution counters.
const (
	OutcomeCompleted = "completed"
	OutcomeFailed    = "failed"
	OutcomeTimeout   = "timeout"
)

var (
	metricsOnce          sync.Once
	metricsInitErr       error
	runExecutionCounter  metric.Int64Counter
	runEmissionCounter   metric.Int64Counter
	runTimeoutCounter    metric.Int64Counter
	runLatencyHistogram  metric.Float64Histogram
	toolInvocationCount  metric.Int64Counter
	toolLatencyHistogram metric.Float64Histogram
)

// RunMetrics captures the fields needed to record one pipeline run.
type RunMetrics struct {
	Pipeline  string
	RunID     string
	Outcome   string
	Emissions int
	Duration  time.Duration
}

// RecordRunMetrics emits counters and histograms that describe run behaviour.
func RecordRunMetrics(ctx context.Context, metrics RunMetrics) {
	if err := ensureMetrics(); err != nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("pipeline.name", metrics.Pipeline),
		attribute.String("run.outcome", metrics.Outcome),
	}

	runExecutionCounter.Add(ctx, 1, metric.WithAttributes(attrs...))

	if metrics.Emissions > 0 {
		runEmissionCounter.Add(ctx, int64(metrics.Emissions), metric.WithAttributes(attrs...))
	}

	if metrics.Duration > 0 {
		runLatencyHistogram.Record(ctx, float64(metrics.Duration)/float64(time.Millisecond), metric.WithAttributes(attrs...))
	}

	if metrics.Outcome == OutcomeTimeout {
		runTimeoutCounter.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// ToolMetrics captures the fields needed to record one tool invocation.
type ToolMetrics struct {
	Tool     string
	Outcome  string
	Duration time.Duration
}

// RecordToolMetrics emits counters and histograms that describe tool
// invocation behaviour.
func RecordToolMetrics(ctx context.Context, metrics ToolMetrics) {
	if err := ensureMetrics(); err != nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("tool.name", metrics.Tool),
		attribute.String("tool.outcome", metrics.Outcome),
	}

	toolInvocationCount.Add(ctx, 1, metric.WithAttributes(attrs...))

	if metrics.Duration > 0 {
		toolLatencyHistogram.Record(ctx, float64(metrics.Duration)/float64(time.Millisecond), metric.WithAttributes(attrs...))
	}
}

func ensureMetrics() error {
	metricsOnce.Do(func() {
		meter := otel.GetMeterProvider().Meter("fluxion.engine")

		runExecutionCounter, metricsInitErr = meter.Int64Counter(
			"fluxion.run.executions_total",
			metric.WithDescription("Pipeline runs partitioned by outcome"),
			metric.WithUnit("{count}"),
		)
		if metricsInitErr != nil {
			return
		}

		runEmissionCounter, metricsInitErr = meter.Int64Counter(
			"fluxion.run.emissions_total",
			metric.WithDescription("Output snapshots emitted by pipeline runs"),
			metric.WithUnit("{count}"),
		)
		if metricsInitErr != nil {
			return
		}

		runTimeoutCounter, metricsInitErr = meter.Int64Counter(
			"fluxion.run.timeout_total",
			metric.WithDescription("Pipeline runs terminated by the run deadline"),
			metric.WithUnit("{count}"),
		)
		if metricsInitErr != nil {
			return
		}

		runLatencyHistogram, metricsInitErr = meter.Float64Histogram(
			"fluxion.run.duration_ms",
			metric.WithDescription("Observed pipeline run latency"),
			metric.WithUnit("ms"),
		)
		if metricsInitErr != nil {
			return
		}

		toolInvocationCount, metricsInitErr = meter.Int64Counter(
			"fluxion.tool.invocations_total",
			metric.WithDescription("Tool invocations partitioned by outcome"),
			metric.WithUnit("{count}"),
		)
		if metricsInitErr != nil {
			return
		}

		toolLatencyHistogram, metricsInitErr = meter.Float64Histogram(
			"fluxion.tool.duration_ms",
			metric.WithDescription("Observed tool invocation latency"),
			metric.WithUnit("ms"),
		)
	})

	return metricsInitErr
}
