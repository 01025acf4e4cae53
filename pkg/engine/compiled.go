package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fluxionai/fluxion-oss/pkg/domain"
	"github.com/fluxionai/fluxion-oss/pkg/stream"
)

// Options are the cross-cutting policies applied to a single run. The zero
// value runs the pipeline with no deadline, no retries, and quiet logging.
type Options struct {
	// TimeoutMS bounds the whole run; 0 means no deadline.
	TimeoutMS int
	// Retries re-subscribes the whole run after a failure, up to this many
	// extra attempts, with exponential backoff between attempts.
	Retries int
	// Debug logs every emission and error of the run.
	Debug bool
}

// CompiledPipeline is an executable dataflow graph. Compilation is done
// once; each Run binds fresh inputs and instantiates a fresh set of step
// streams, so a compiled pipeline can be run many times and concurrently.
type CompiledPipeline struct {
	pipeline *domain.Pipeline
	order    []*domain.Step
	nodes    map[string]nodeFn
	runtime  *Runtime
}

// Name returns the pipeline's declared name.
func (cp *CompiledPipeline) Name() string { return cp.pipeline.Name }

// StepNames lists the step names in execution order.
func (cp *CompiledPipeline) StepNames() []string {
	names := make([]string, len(cp.order))
	for i, step := range cp.order {
		names[i] = step.Name
	}
	return names
}

// Run binds the given inputs and returns the stream of aggregated outputs.
// Each emission is a map from output name to the latest value of the step
// backing it; a pipeline with no declared outputs emits a single empty map.
// Missing required inputs are reported synchronously, before any step runs.
func (cp *CompiledPipeline) Run(inputs map[string]any, opts Options) (*stream.Stream, error) {
	sc, err := cp.bind(inputs)
	if err != nil {
		return nil, err
	}

	result := cp.aggregateOutputs(sc)

	// Timeout applies inside retry so a timed-out attempt is retried like
	// any other failure.
	if opts.TimeoutMS > 0 {
		bound := time.Duration(opts.TimeoutMS) * time.Millisecond
		result = stream.Timeout(result, bound, &domain.RuntimeError{
			Err:    domain.ErrTimeout,
			Stage:  cp.pipeline.Name,
			Detail: fmt.Sprintf("run exceeded %s", bound),
		})
	}
	if opts.Retries > 0 {
		retried := stream.RetryWithDelay(result, opts.Retries+1, retryBackoff())
		result = stream.Catch(retried, func(_ context.Context, cause error) *stream.Stream {
			return stream.Error(&domain.RuntimeError{
				Err:   domain.ErrRetryExhausted,
				Stage: cp.pipeline.Name,
				Cause: cause,
			})
		})
	}

	runID := uuid.NewString()
	return cp.instrument(result, runID, opts.Debug), nil
}

// Step binds the given inputs and returns the stream of a single step, for
// partial observation of a graph without running its outputs.
func (cp *CompiledPipeline) Step(name string, inputs map[string]any) (*stream.Stream, error) {
	sc, err := cp.bind(inputs)
	if err != nil {
		return nil, err
	}
	st, ok := sc.steps[name]
	if !ok {
		return nil, &domain.RuntimeError{
			Err:    domain.ErrUnresolvedReference,
			Stage:  cp.pipeline.Name,
			Detail: fmt.Sprintf("no step named %q", name),
		}
	}
	return st, nil
}

// bind validates the inputs against the pipeline's declarations and
// instantiates every step stream in execution order.
func (cp *CompiledPipeline) bind(inputs map[string]any) (*scope, error) {
	vars := make(map[string]*stream.Stream, len(cp.pipeline.Inputs))
	for i := range cp.pipeline.Inputs {
		in := &cp.pipeline.Inputs[i]
		value, ok := inputs[in.Name]
		if !ok && in.Default != nil {
			value = in.Default
			ok = true
		}
		if !ok && !in.Optional {
			return nil, &domain.RuntimeError{
				Err:    domain.ErrMissingRequiredInput,
				Stage:  cp.pipeline.Name,
				Detail: in.Name,
			}
		}
		vars[in.Name] = stream.Just(value)
	}

	sc := &scope{vars: vars, steps: make(map[string]*stream.Stream, len(cp.order))}
	for _, step := range cp.order {
		sc.steps[step.Name] = cp.nodes[step.Name](sc)
	}
	return sc, nil
}

// aggregateOutputs tags each output's backing stream with its output name
// and combines the latest values into one map per emission.
func (cp *CompiledPipeline) aggregateOutputs(sc *scope) *stream.Stream {
	outputs := cp.pipeline.Outputs
	if len(outputs) == 0 {
		return stream.Just(map[string]any{})
	}

	names := make([]string, len(outputs))
	tagged := make([]*stream.Stream, len(outputs))
	for i := range outputs {
		out := &outputs[i]
		names[i] = out.Name
		st, ok := sc.steps[out.StepName]
		if !ok {
			st = stream.Error(&domain.RuntimeError{
				Err:    domain.ErrUnresolvedReference,
				Stage:  cp.pipeline.Name,
				Detail: fmt.Sprintf("output %q names missing step %q", out.Name, out.StepName),
			})
		}
		tagged[i] = st
	}

	combined := stream.CombineLatest(tagged...)
	return stream.Map(combined, func(_ context.Context, snapshot any) (any, error) {
		values := snapshot.([]any)
		result := make(map[string]any, len(names))
		for i, name := range names {
			result[name] = values[i]
		}
		return result, nil
	})
}
