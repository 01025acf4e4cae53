package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fluxionai/fluxion-oss/internal/governance"
	"github.com/fluxionai/fluxion-oss/pkg/domain"
	"github.com/fluxionai/fluxion-oss/pkg/stream"
	"github.com/fluxionai/fluxion-oss/pkg/telemetry"
	"github.com/fluxionai/fluxion-oss/pkg/tool"
)

// Fixed defaults for the retry and timeout operators, used when the optional
// count/duration operand is absent or not a numeric literal.
const (
	defaultRetryAttempts = 3
	defaultOpTimeout     = 5000 * time.Millisecond
)

// Config holds the dependencies for creating a Runtime.
type Config struct {
	// Tools is the capability table compiled pipelines invoke. Defaults to
	// the built-in mock registry.
	Tools *tool.Registry
	// Logger receives engine logs. Defaults to slog.Default().
	Logger *slog.Logger
}

// Runtime compiles pipeline IR against an injected tool registry. A Runtime
// is safe for concurrent use once constructed; the registry it holds is
// treated as read-only from that point on.
type Runtime struct {
	tools  *tool.Registry
	logger *slog.Logger
}

// New creates a runtime with the given configuration.
func New(cfg Config) *Runtime {
	tools := cfg.Tools
	if tools == nil {
		tools = tool.Default()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Runtime{tools: tools, logger: logger}
}

// Tools returns the runtime's registry.
func (r *Runtime) Tools() *tool.Registry { return r.tools }

// nodeFn instantiates a compiled expression against a run's scope.
type nodeFn func(sc *scope) *stream.Stream

// applier is a compiled function operand: given the run scope and one
// incoming value, it produces the stream of the function's results.
type applier func(sc *scope, value any) *stream.Stream

// scope carries one run's bindings. Root scopes hold the bound inputs and
// the step streams instantiated in resolver order; child scopes add function
// parameter bindings on top.
type scope struct {
	parent *scope
	vars   map[string]*stream.Stream
	steps  map[string]*stream.Stream
}

func (sc *scope) lookup(name string) (*stream.Stream, bool) {
	for s := sc; s != nil; s = s.parent {
		if st, ok := s.vars[name]; ok {
			return st, true
		}
		if st, ok := s.steps[name]; ok {
			return st, true
		}
	}
	return nil, false
}

func (sc *scope) child(name string, binding *stream.Stream) *scope {
	return &scope{parent: sc, vars: map[string]*stream.Stream{name: binding}}
}

// compileContext tracks the names statically in scope while compiling one
// step's expression.
type compileContext struct {
	runtime *Runtime
	step    string
	known   map[string]bool
}

func (cc *compileContext) withName(name string) *compileContext {
	known := make(map[string]bool, len(cc.known)+1)
	for k := range cc.known {
		known[k] = true
	}
	known[name] = true
	return &compileContext{runtime: cc.runtime, step: cc.step, known: known}
}

// Compile turns a validated pipeline into an executable graph. Structural
// failures (cycles, malformed operations, references to names that exist
// nowhere in the pipeline) abort compilation; no partial pipeline is
// returned.
func (r *Runtime) Compile(p *domain.Pipeline) (*CompiledPipeline, error) {
	order, err := resolveOrder(p.Steps)
	if err != nil {
		return nil, err
	}

	known := make(map[string]bool, len(p.Inputs)+len(p.Steps))
	for i := range p.Inputs {
		known[p.Inputs[i].Name] = true
	}
	for i := range p.Steps {
		known[p.Steps[i].Name] = true
	}

	nodes := make(map[string]nodeFn, len(order))
	for _, step := range order {
		cc := &compileContext{runtime: r, step: step.Name, known: known}
		node, err := cc.compileExpression(step.Expression)
		if err != nil {
			return nil, err
		}
		nodes[step.Name] = node
	}

	r.logger.Debug("pipeline compiled",
		"pipeline", p.Name,
		"steps", len(order),
		"tools", len(r.tools.List()),
	)

	return &CompiledPipeline{
		pipeline: p,
		order:    order,
		nodes:    nodes,
		runtime:  r,
	}, nil
}

func (cc *compileContext) compileExpression(expr domain.Expression) (nodeFn, error) {
	switch e := expr.(type) {
	case *domain.Literal:
		value := e.Value
		return func(*scope) *stream.Stream {
			return stream.Just(value)
		}, nil

	case *domain.Variable:
		if !cc.known[e.Name] {
			return nil, &domain.CompileError{
				Err:      domain.ErrUnresolvedReference,
				Step:     cc.step,
				Detail:   fmt.Sprintf("variable %q names no input or step", e.Name),
				Location: e.Location,
			}
		}
		name := e.Name
		stage := cc.step
		return func(sc *scope) *stream.Stream {
			if st, ok := sc.lookup(name); ok {
				return st
			}
			// Statically known but absent from the run scope: a reference
			// to a step that orders after this one. Only the dependent
			// computation fails.
			return stream.Error(&domain.RuntimeError{
				Err:    domain.ErrUnresolvedReference,
				Stage:  stage,
				Detail: fmt.Sprintf("variable %q is not bound at this point in the graph", name),
			})
		}, nil

	case *domain.Operation:
		return cc.compileOperation(e)

	case *domain.Tool:
		return cc.compileTool(e), nil

	case *domain.Function, *domain.Conditional, *domain.Loop:
		return nil, &domain.CompileError{
			Err:    domain.ErrUnsupportedExpression,
			Step:   cc.step,
			Detail: fmt.Sprintf("%s expressions are not part of the executable core subset", expr.Kind()),
		}

	default:
		return nil, &domain.CompileError{
			Err:    domain.ErrUnsupportedExpression,
			Step:   cc.step,
			Detail: fmt.Sprintf("unrecognized expression variant %T", expr),
		}
	}
}

//nolint:gocyclo // One arm per operator; splitting would obscure the operator table.
func (cc *compileContext) compileOperation(op *domain.Operation) (nodeFn, error) {
	stage := cc.step

	switch op.Operator {
	case domain.OpMap, domain.OpFlatMap:
		if len(op.Inputs) != 2 {
			return nil, cc.arityError(op, "exactly 2 inputs")
		}
		src, err := cc.compileExpression(op.Inputs[0])
		if err != nil {
			return nil, err
		}
		apply, err := cc.compileApplier(op.Inputs[1])
		if err != nil {
			return nil, err
		}
		return func(sc *scope) *stream.Stream {
			return stream.FlatMap(src(sc), func(_ context.Context, value any) *stream.Stream {
				return apply(sc, value)
			})
		}, nil

	case domain.OpFilter:
		if len(op.Inputs) != 2 {
			return nil, cc.arityError(op, "exactly 2 inputs")
		}
		src, err := cc.compileExpression(op.Inputs[0])
		if err != nil {
			return nil, err
		}
		apply, err := cc.compileApplier(op.Inputs[1])
		if err != nil {
			return nil, err
		}
		return func(sc *scope) *stream.Stream {
			return stream.FlatMap(src(sc), func(_ context.Context, value any) *stream.Stream {
				verdicts := apply(sc, value)
				return stream.FlatMap(verdicts, func(_ context.Context, verdict any) *stream.Stream {
					if truthy(verdict) {
						return stream.Just(value)
					}
					return stream.Empty()
				})
			})
		}, nil

	case domain.OpZip:
		if len(op.Inputs) != 2 {
			return nil, cc.arityError(op, "exactly 2 inputs")
		}
		left, err := cc.compileExpression(op.Inputs[0])
		if err != nil {
			return nil, err
		}
		right, err := cc.compileExpression(op.Inputs[1])
		if err != nil {
			return nil, err
		}
		return func(sc *scope) *stream.Stream {
			return stream.CombineLatest(left(sc), right(sc))
		}, nil

	case domain.OpMerge, domain.OpConcat:
		if len(op.Inputs) < 1 {
			return nil, cc.arityError(op, "at least 1 input")
		}
		srcs := make([]nodeFn, len(op.Inputs))
		for i, in := range op.Inputs {
			src, err := cc.compileExpression(in)
			if err != nil {
				return nil, err
			}
			srcs[i] = src
		}
		combine := stream.Merge
		if op.Operator == domain.OpConcat {
			combine = stream.Concat
		}
		return func(sc *scope) *stream.Stream {
			instantiated := make([]*stream.Stream, len(srcs))
			for i, src := range srcs {
				instantiated[i] = src(sc)
			}
			return combine(instantiated...)
		}, nil

	case domain.OpOnError:
		if len(op.Inputs) != 2 {
			return nil, cc.arityError(op, "exactly 2 inputs")
		}
		src, err := cc.compileExpression(op.Inputs[0])
		if err != nil {
			return nil, err
		}
		apply, err := cc.compileApplier(op.Inputs[1])
		if err != nil {
			return nil, err
		}
		return func(sc *scope) *stream.Stream {
			return stream.Catch(src(sc), func(_ context.Context, cause error) *stream.Stream {
				return apply(sc, cause)
			})
		}, nil

	case domain.OpRetry:
		if len(op.Inputs) < 1 || len(op.Inputs) > 2 {
			return nil, cc.arityError(op, "1 input plus an optional attempt count")
		}
		src, err := cc.compileExpression(op.Inputs[0])
		if err != nil {
			return nil, err
		}
		attempts := defaultRetryAttempts
		if len(op.Inputs) == 2 {
			if n, ok := literalInt(op.Inputs[1]); ok && n > 0 {
				attempts = n
			}
		}
		return func(sc *scope) *stream.Stream {
			retried := stream.Retry(src(sc), attempts)
			return stream.Catch(retried, func(_ context.Context, cause error) *stream.Stream {
				return stream.Error(&domain.RuntimeError{
					Err:   domain.ErrRetryExhausted,
					Stage: stage,
					Cause: cause,
				})
			})
		}, nil

	case domain.OpTimeout:
		if len(op.Inputs) < 1 || len(op.Inputs) > 2 {
			return nil, cc.arityError(op, "1 input plus an optional duration")
		}
		src, err := cc.compileExpression(op.Inputs[0])
		if err != nil {
			return nil, err
		}
		bound := defaultOpTimeout
		if len(op.Inputs) == 2 {
			if ms, ok := literalInt(op.Inputs[1]); ok && ms > 0 {
				bound = time.Duration(ms) * time.Millisecond
			}
		}
		return func(sc *scope) *stream.Stream {
			return stream.Timeout(src(sc), bound, &domain.RuntimeError{
				Err:    domain.ErrTimeout,
				Stage:  stage,
				Detail: fmt.Sprintf("no value within %s", bound),
			})
		}, nil

	default:
		return nil, &domain.CompileError{
			Err:      domain.ErrMalformedOperation,
			Step:     cc.step,
			Detail:   fmt.Sprintf("unknown operator %q", op.Operator),
			Location: op.Location,
		}
	}
}

func (cc *compileContext) arityError(op *domain.Operation, want string) error {
	return &domain.CompileError{
		Err:      domain.ErrMalformedOperation,
		Step:     cc.step,
		Detail:   fmt.Sprintf("%s requires %s, got %d", op.Operator, want, len(op.Inputs)),
		Location: op.Location,
	}
}

// compileApplier compiles the function operand of map/flatMap/filter/onError.
// A Function variant gets genuine application: its first parameter is bound
// to the incoming value in a child scope and its body is evaluated per value.
// A Tool variant is invoked with the incoming value as its upstream input.
// Any other expression acts as a constant function: its own emissions are the
// result, regardless of the incoming value.
func (cc *compileContext) compileApplier(expr domain.Expression) (applier, error) {
	switch e := expr.(type) {
	case *domain.Function:
		if len(e.Params) == 0 {
			body, err := cc.compileExpression(e.Body)
			if err != nil {
				return nil, err
			}
			return func(sc *scope, _ any) *stream.Stream {
				return body(sc)
			}, nil
		}
		param := e.Params[0].Name
		body, err := cc.withName(param).compileExpression(e.Body)
		if err != nil {
			return nil, err
		}
		return func(sc *scope, value any) *stream.Stream {
			return body(sc.child(param, stream.Just(value)))
		}, nil

	case *domain.Tool:
		invoke := cc.toolInvoker(e)
		return func(_ *scope, value any) *stream.Stream {
			return invoke(value)
		}, nil

	default:
		node, err := cc.compileExpression(expr)
		if err != nil {
			return nil, err
		}
		return func(sc *scope, _ any) *stream.Stream {
			return node(sc)
		}, nil
	}
}

func (cc *compileContext) compileTool(e *domain.Tool) nodeFn {
	invoke := cc.toolInvoker(e)
	return func(*scope) *stream.Stream {
		// Top-of-dataflow tools have no upstream value.
		return invoke(nil)
	}
}

// toolInvoker resolves the tool at compile time. An unknown tool yields a
// stream that fails at run time rather than aborting compilation, so a
// single bad capability reference only poisons its dependents.
func (cc *compileContext) toolInvoker(e *domain.Tool) func(input any) *stream.Stream {
	fn, ok := cc.runtime.tools.Get(e.ToolName)
	if !ok {
		name := e.ToolName
		stage := cc.step
		return func(any) *stream.Stream {
			return stream.Error(&domain.RuntimeError{
				Err:    domain.ErrUnknownTool,
				Stage:  stage,
				Detail: name,
			})
		}
	}
	name := e.ToolName
	config := e.Config
	return func(input any) *stream.Stream {
		return stream.New(func(ctx context.Context, out chan<- stream.Item) {
			start := time.Now()
			outcome := telemetry.OutcomeCompleted
			for item := range fn(input, config).Subscribe(ctx) {
				if item.Err != nil {
					outcome = telemetry.OutcomeFailed
					item = stream.Item{Err: &domain.RuntimeError{
						Err:   domain.ErrToolInvocationFailure,
						Stage: name,
						Cause: item.Err,
					}}
				}
				select {
				case out <- item:
				case <-ctx.Done():
					return
				}
			}
			telemetry.RecordToolMetrics(ctx, telemetry.ToolMetrics{
				Tool:     name,
				Outcome:  outcome,
				Duration: time.Since(start),
			})
		})
	}
}

// literalInt extracts a non-negative integer from a numeric literal operand.
func literalInt(expr domain.Expression) (int, bool) {
	lit, ok := expr.(*domain.Literal)
	if !ok {
		return 0, false
	}
	switch v := lit.Value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

// truthy mirrors the DSL's loose boolean coercion: nil, false, zero numbers,
// and empty strings are false; everything else is true.
func truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	case string:
		return v != ""
	default:
		return true
	}
}

// retryBackoff builds the delay schedule used between run-level retry
// attempts.
func retryBackoff() func(attempt int) time.Duration {
	policy := governance.NewRetryPolicy(governance.DefaultRetryConfig())
	return policy.CalculateBackoff
}
