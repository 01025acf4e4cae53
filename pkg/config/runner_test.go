package config

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluxionai/fluxion-oss/pkg/domain"
	"github.com/fluxionai/fluxion-oss/pkg/engine"
	"github.com/fluxionai/fluxion-oss/pkg/stream"
	"github.com/fluxionai/fluxion-oss/pkg/tool"
)

func echoRuntime() *engine.Runtime {
	reg := tool.NewRegistry()
	reg.Register("echo", func(input any, _ map[string]any) *stream.Stream {
		return stream.Just(input)
	})
	return engine.New(engine.Config{Tools: reg})
}

func TestSelectPipelineByName(t *testing.T) {
	program := &domain.Program{Pipelines: []domain.Pipeline{
		{Name: "one"},
		{Name: "two"},
	}}
	p, err := SelectPipeline(program, "two")
	require.NoError(t, err)
	assert.Equal(t, "two", p.Name)
}

func TestSelectPipelineDefaultsToOnlyPipeline(t *testing.T) {
	program := &domain.Program{Pipelines: []domain.Pipeline{{Name: "solo"}}}
	p, err := SelectPipeline(program, "")
	require.NoError(t, err)
	assert.Equal(t, "solo", p.Name)
}

func TestSelectPipelineAmbiguousWithoutName(t *testing.T) {
	program := &domain.Program{Pipelines: []domain.Pipeline{{Name: "a"}, {Name: "b"}}}
	_, err := SelectPipeline(program, "")
	require.Error(t, err)
}

func TestSelectPipelineUnknownName(t *testing.T) {
	program := &domain.Program{Pipelines: []domain.Pipeline{{Name: "a"}}}
	_, err := SelectPipeline(program, "ghost")
	require.Error(t, err)
}

func TestSelectPipelineRefusesInvalidProgram(t *testing.T) {
	program := &domain.Program{
		Pipelines: []domain.Pipeline{{Name: "a"}},
		Errors: []domain.Diagnostic{{
			Severity: domain.SeverityError,
			Code:     "DOC001",
			Message:  "broken",
		}},
	}
	_, err := SelectPipeline(program, "a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}

func TestRunDocumentEndToEnd(t *testing.T) {
	doc := `
pipelines:
  - name: passthrough
    inputs:
      - name: payload
        type: string
    steps:
      - name: echoed
        expression:
          type: operation
          operator: map
          inputs:
            - type: variable
              name: payload
            - type: tool
              toolName: echo
    outputs:
      - name: result
        step: echoed
`
	out, err := RunDocument(echoRuntime(), []byte(doc), "", map[string]any{"payload": "ping"}, engine.Options{})
	require.NoError(t, err)

	values, err := stream.Collect(context.Background(), out)
	require.NoError(t, err)
	require.NotEmpty(t, values)

	snapshot := values[len(values)-1].(map[string]any)
	assert.Equal(t, "ping", snapshot["result"])
}

func TestRunDocumentSurfacesCompileErrors(t *testing.T) {
	doc := `
pipelines:
  - name: bad
    steps:
      - name: dangling
        expression:
          type: variable
          name: nowhere
`
	_, err := RunDocument(echoRuntime(), []byte(doc), "", nil, engine.Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnresolvedReference)
}
