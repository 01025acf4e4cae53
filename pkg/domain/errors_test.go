package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestCompileErrorUnwrapsSentinel(t *testing.T) {
	err := &CompileError{Err: ErrMalformedOperation, Step: "fetch", Detail: "map requires exactly 2 inputs"}
	if !errors.Is(err, ErrMalformedOperation) {
		t.Fatalf("expected sentinel match")
	}
	msg := err.Error()
	if !strings.Contains(msg, "fetch") || !strings.Contains(msg, "map requires") {
		t.Fatalf("expected step and detail in message, got %q", msg)
	}
}

func TestRuntimeErrorMatchesSentinelAndCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := &RuntimeError{Err: ErrToolInvocationFailure, Stage: "callApi", Cause: cause}
	if !errors.Is(err, ErrToolInvocationFailure) {
		t.Fatalf("expected sentinel match")
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause match")
	}
}

func TestRuntimeErrorNestsThroughWrappers(t *testing.T) {
	inner := &RuntimeError{Err: ErrTimeout, Stage: "fetch"}
	outer := &RuntimeError{Err: ErrRetryExhausted, Stage: "run", Cause: inner}
	if !errors.Is(outer, ErrRetryExhausted) || !errors.Is(outer, ErrTimeout) {
		t.Fatalf("expected both sentinels reachable, got %v", outer)
	}
}
