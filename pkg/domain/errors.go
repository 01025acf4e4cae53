package domain

import "errors"

// Sentinel errors forming the engine's failure taxonomy. Callers match them
// with errors.Is; wrapped forms carry the failing step, tool, or input name.
var (
	ErrUnresolvedReference   = errors.New("unresolved reference")
	ErrUnknownTool           = errors.New("unknown tool")
	ErrMalformedOperation    = errors.New("malformed operation")
	ErrCircularDependency    = errors.New("circular dependency")
	ErrMissingRequiredInput  = errors.New("missing required input")
	ErrTimeout               = errors.New("timeout exceeded")
	ErrToolInvocationFailure = errors.New("tool invocation failed")
	ErrRetryExhausted        = errors.New("retry attempts exhausted")
	ErrUnsupportedExpression = errors.New("unsupported expression variant")
)

// CompileError is a fatal compile-time structural failure. No partial
// pipeline is returned alongside one.
type CompileError struct {
	Err      error  // one of the sentinel errors above
	Step     string // step being compiled when the failure surfaced
	Detail   string
	Location *SourceLocation
}

func (e *CompileError) Error() string {
	msg := e.Err.Error()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Step != "" {
		msg += " (step " + e.Step + ")"
	}
	return msg
}

func (e *CompileError) Unwrap() error { return e.Err }

// RuntimeError identifies the failing stage of a run-time stream failure.
type RuntimeError struct {
	Err    error  // sentinel classifying the failure
	Stage  string // step, output, or tool name
	Detail string
	Cause  error // underlying failure, when wrapping one
}

func (e *RuntimeError) Error() string {
	msg := e.Err.Error()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Stage != "" {
		msg += " (stage " + e.Stage + ")"
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *RuntimeError) Unwrap() error {
	if e.Cause != nil {
		return errors.Join(e.Err, e.Cause)
	}
	return e.Err
}
