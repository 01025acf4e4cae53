package engine

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fluxionai/fluxion-oss/pkg/domain"
	"github.com/fluxionai/fluxion-oss/pkg/stream"
	"github.com/fluxionai/fluxion-oss/pkg/telemetry"
)

const tracerName = "fluxion.engine"

// instrument wraps the run's output stream with a span, run metrics, and,
// when debug is set, per-emission logging. The wrapper is transparent to
// the subscriber: items pass through unchanged.
func (cp *CompiledPipeline) instrument(s *stream.Stream, runID string, debug bool) *stream.Stream {
	name := cp.pipeline.Name
	logger := cp.runtime.logger.With("pipeline", name, "run_id", runID)

	return stream.New(func(ctx context.Context, out chan<- stream.Item) {
		ctx, span := otel.Tracer(tracerName).Start(ctx, "pipeline.run", trace.WithAttributes(
			attribute.String("pipeline.name", name),
			attribute.String("run.id", runID),
		))
		defer span.End()

		start := time.Now()
		emissions := 0
		outcome := telemetry.OutcomeCompleted

		for item := range s.Subscribe(ctx) {
			if item.Err != nil {
				outcome = telemetry.OutcomeFailed
				if errors.Is(item.Err, domain.ErrTimeout) {
					outcome = telemetry.OutcomeTimeout
				}
				span.RecordError(item.Err)
				span.SetStatus(codes.Error, item.Err.Error())
				if debug {
					logger.Error("run failed", "error", item.Err)
				}
			} else {
				emissions++
				span.AddEvent("run.emission", trace.WithAttributes(
					attribute.Int("emission.index", emissions),
				))
				if debug {
					logger.Info("run emitted", "emission", emissions, "value", item.Value)
				}
			}
			select {
			case out <- item:
			case <-ctx.Done():
				return
			}
		}

		span.SetAttributes(attribute.Int("run.emissions", emissions))
		telemetry.RecordRunMetrics(ctx, telemetry.RunMetrics{
			Pipeline:  name,
			RunID:     runID,
			Outcome:   outcome,
			Emissions: emissions,
			Duration:  time.Since(start),
		})
		if debug {
			logger.Info("run finished",
				"outcome", outcome,
				"emissions", emissions,
				"duration", time.Since(start),
			)
		}
	})
}
