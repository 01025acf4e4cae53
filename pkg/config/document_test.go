package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluxionai/fluxion-oss/pkg/domain"
)

const sampleYAML = `
version: "1"
pipelines:
  - name: enrichment
    metadata:
      version: "0.2.0"
      description: Enrich a query through an API
      tags: [demo]
    inputs:
      - name: query
        type: string
      - name: limit
        type: number
        optional: true
        default: 10
    steps:
      - name: fetched
        expression:
          type: operation
          operator: map
          inputs:
            - type: variable
              name: query
            - type: tool
              toolName: callApi
              config:
                url: https://api.example.com/search
      - name: shaped
        expression:
          type: variable
          name: fetched
        dependencies: [fetched]
    outputs:
      - name: result
        step: shaped
        type: object
`

func TestDecodeYAMLDocument(t *testing.T) {
	doc, err := Decode([]byte(sampleYAML))
	require.NoError(t, err)
	require.Len(t, doc.Pipelines, 1)

	p := doc.Pipelines[0]
	assert.Equal(t, "enrichment", p.Name)
	require.Len(t, p.Inputs, 2)
	assert.Equal(t, 10, p.Inputs[1].Default)
	require.Len(t, p.Steps, 2)
	assert.Equal(t, "operation", p.Steps[0].Expression.Type)
	assert.Equal(t, []string{"fetched"}, p.Steps[1].Dependencies)
}

func TestDecodeJSONFallback(t *testing.T) {
	payload := `{"pipelines":[{"name":"tiny","steps":[{"name":"one","expression":{"type":"literal","valueType":"number","value":5}}]}]}`
	doc, err := Decode([]byte(payload))
	require.NoError(t, err)
	require.Len(t, doc.Pipelines, 1)
	assert.Equal(t, "tiny", doc.Pipelines[0].Name)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode([]byte("{unbalanced: [yaml"))
	require.Error(t, err)
}

func TestToDomainConvertsExpressions(t *testing.T) {
	doc, err := Decode([]byte(sampleYAML))
	require.NoError(t, err)

	program := doc.ToDomain()
	require.Empty(t, program.Errors)
	require.Len(t, program.Pipelines, 1)

	p := program.Pipelines[0]
	assert.Equal(t, "enrichment", p.Name)
	require.NotNil(t, p.Metadata)
	assert.Equal(t, "0.2.0", p.Metadata.Version)

	op, ok := p.Steps[0].Expression.(*domain.Operation)
	require.True(t, ok, "expected an operation expression")
	assert.Equal(t, domain.OpMap, op.Operator)
	require.Len(t, op.Inputs, 2)

	v, ok := op.Inputs[0].(*domain.Variable)
	require.True(t, ok)
	assert.Equal(t, "query", v.Name)

	tl, ok := op.Inputs[1].(*domain.Tool)
	require.True(t, ok)
	assert.Equal(t, "callApi", tl.ToolName)
	assert.Equal(t, "https://api.example.com/search", tl.Config["url"])

	require.Len(t, p.Outputs, 1)
	assert.Equal(t, "shaped", p.Outputs[0].StepName)
	assert.Equal(t, domain.TypeObject, p.Outputs[0].Type)
}

func TestToDomainFlagsUnknownOperator(t *testing.T) {
	doc := &Document{Pipelines: []PipelineDoc{{
		Name: "bad",
		Steps: []StepDoc{{
			Name:       "warp",
			Expression: &ExpressionDoc{Type: "operation", Operator: "teleport"},
		}},
	}}}
	program := doc.ToDomain()
	require.NotEmpty(t, program.Errors)
	assert.Equal(t, codeUnknownOperator, program.Errors[0].Code)
}

func TestToDomainFlagsUnknownExpressionType(t *testing.T) {
	doc := &Document{Pipelines: []PipelineDoc{{
		Name: "bad",
		Steps: []StepDoc{{
			Name:       "odd",
			Expression: &ExpressionDoc{Type: "quantum"},
		}},
	}}}
	program := doc.ToDomain()
	require.NotEmpty(t, program.Errors)
	assert.Equal(t, codeUnknownExpressionType, program.Errors[0].Code)
}

func TestToDomainFlagsMissingExpression(t *testing.T) {
	doc := &Document{Pipelines: []PipelineDoc{{
		Name:  "bad",
		Steps: []StepDoc{{Name: "hollow"}},
	}}}
	program := doc.ToDomain()
	require.NotEmpty(t, program.Errors)
	assert.Equal(t, codeMissingField, program.Errors[0].Code)
}

func TestToDomainRunsValidation(t *testing.T) {
	doc := &Document{Pipelines: []PipelineDoc{{
		Name: "bad",
		Steps: []StepDoc{{
			Name:       "ok",
			Expression: &ExpressionDoc{Type: "literal", Value: 1},
		}},
		Outputs: []OutputDoc{{Name: "result", Step: "ghost"}},
	}}}
	program := doc.ToDomain()
	require.NotEmpty(t, program.Errors)
	assert.Equal(t, domain.CodeUnknownStepRef, program.Errors[0].Code)
}

func TestValueTypeFallsBackToAny(t *testing.T) {
	assert.Equal(t, domain.TypeString, valueType("string"))
	assert.Equal(t, domain.TypeAny, valueType(""))
	assert.Equal(t, domain.TypeAny, valueType("tensor"))
}
