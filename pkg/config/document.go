package config

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/fluxionai/fluxion-oss/pkg/domain"
)

// Diagnostic codes raised at the document boundary, before IR validation.
const (
	codeUnknownExpressionType = "DOC001"
	codeUnknownOperator       = "DOC002"
	codeMissingField          = "DOC003"
)

// Document is the wire form of a pipeline program.
type Document struct {
	Version   string        `yaml:"version" json:"version"`
	Pipelines []PipelineDoc `yaml:"pipelines" json:"pipelines"`
}

// PipelineDoc is the wire form of one pipeline.
type PipelineDoc struct {
	Name     string       `yaml:"name" json:"name"`
	Inputs   []InputDoc   `yaml:"inputs" json:"inputs"`
	Steps    []StepDoc    `yaml:"steps" json:"steps"`
	Outputs  []OutputDoc  `yaml:"outputs" json:"outputs"`
	Metadata *MetadataDoc `yaml:"metadata" json:"metadata"`
}

// MetadataDoc carries the optional descriptive fields of a pipeline.
type MetadataDoc struct {
	Version     string   `yaml:"version" json:"version"`
	Description string   `yaml:"description" json:"description"`
	Author      string   `yaml:"author" json:"author"`
	Tags        []string `yaml:"tags" json:"tags"`
}

// InputDoc declares a runtime input.
type InputDoc struct {
	Name     string `yaml:"name" json:"name"`
	Type     string `yaml:"type" json:"type"`
	Optional bool   `yaml:"optional" json:"optional"`
	Default  any    `yaml:"default" json:"default"`
}

// StepDoc declares a named step and its expression.
type StepDoc struct {
	Name         string         `yaml:"name" json:"name"`
	Expression   *ExpressionDoc `yaml:"expression" json:"expression"`
	Dependencies []string       `yaml:"dependencies" json:"dependencies"`
}

// OutputDoc surfaces a step's values under an output name.
type OutputDoc struct {
	Name string `yaml:"name" json:"name"`
	Step string `yaml:"step" json:"step"`
	Type string `yaml:"type" json:"type"`
}

// ExpressionDoc is the wire form of the recursive expression tree. The Type
// field discriminates the variant; the remaining fields are variant-specific.
type ExpressionDoc struct {
	Type string `yaml:"type" json:"type"`

	// literal
	ValueType string `yaml:"valueType" json:"valueType"`
	Value     any    `yaml:"value" json:"value"`

	// variable, function
	Name string `yaml:"name" json:"name"`

	// operation
	Operator string          `yaml:"operator" json:"operator"`
	Inputs   []ExpressionDoc `yaml:"inputs" json:"inputs"`

	// tool
	ToolName string         `yaml:"toolName" json:"toolName"`
	Config   map[string]any `yaml:"config" json:"config"`

	// function
	Params []ParameterDoc `yaml:"params" json:"params"`
	Body   *ExpressionDoc `yaml:"body" json:"body"`

	// conditional
	Condition *ExpressionDoc `yaml:"condition" json:"condition"`
	Then      *ExpressionDoc `yaml:"then" json:"then"`
	Else      *ExpressionDoc `yaml:"else" json:"else"`

	// loop
	Iterable *ExpressionDoc `yaml:"iterable" json:"iterable"`
	Variable string         `yaml:"variable" json:"variable"`
}

// ParameterDoc declares one function parameter.
type ParameterDoc struct {
	Name     string `yaml:"name" json:"name"`
	Type     string `yaml:"type" json:"type"`
	Optional bool   `yaml:"optional" json:"optional"`
}

// Decode parses a document from YAML, falling back to JSON when the payload
// is not valid YAML.
func Decode(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		if jsonErr := json.Unmarshal(data, &doc); jsonErr != nil {
			return nil, fmt.Errorf("parse pipeline document: %w", err)
		}
	}
	return &doc, nil
}

// LoadFile reads and decodes a document from disk.
func LoadFile(path string) (*Document, error) {
	// #nosec G304 -- File path is configured at startup
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pipeline document: %w", err)
	}
	return Decode(data)
}

// ToDomain converts the document into a validated Program. Structural
// problems in the document and IR validation findings both land in the
// Program's Errors and Warnings; the conversion itself only fails on nil
// receivers.
func (d *Document) ToDomain() *domain.Program {
	program := &domain.Program{}
	if d == nil {
		return program
	}

	for i := range d.Pipelines {
		pd := &d.Pipelines[i]
		conv := &converter{pipeline: pd.Name}

		pipeline := domain.Pipeline{Name: pd.Name}
		for _, in := range pd.Inputs {
			pipeline.Inputs = append(pipeline.Inputs, domain.Input{
				Name:     in.Name,
				Type:     valueType(in.Type),
				Optional: in.Optional,
				Default:  in.Default,
			})
		}
		for j := range pd.Steps {
			sd := &pd.Steps[j]
			step := domain.Step{Name: sd.Name, Dependencies: sd.Dependencies}
			if sd.Expression == nil {
				conv.errorf(codeMissingField, "step %q has no expression", sd.Name)
			} else {
				step.Expression = conv.expression(sd.Expression)
			}
			pipeline.Steps = append(pipeline.Steps, step)
		}
		for _, out := range pd.Outputs {
			pipeline.Outputs = append(pipeline.Outputs, domain.Output{
				Name:     out.Name,
				StepName: out.Step,
				Type:     valueType(out.Type),
			})
		}
		if pd.Metadata != nil {
			pipeline.Metadata = &domain.Metadata{
				Version:     pd.Metadata.Version,
				Description: pd.Metadata.Description,
				Author:      pd.Metadata.Author,
				Tags:        pd.Metadata.Tags,
			}
		}

		program.Errors = append(program.Errors, conv.errors...)
		if len(conv.errors) == 0 {
			result := domain.Validate(&pipeline)
			program.Errors = append(program.Errors, result.Errors...)
			program.Warnings = append(program.Warnings, result.Warnings...)
		}
		program.Pipelines = append(program.Pipelines, pipeline)
	}

	return program
}

type converter struct {
	pipeline string
	errors   []domain.Diagnostic
}

func (c *converter) errorf(code, format string, args ...any) {
	c.errors = append(c.errors, domain.Diagnostic{
		Severity: domain.SeverityError,
		Code:     code,
		Message:  fmt.Sprintf("pipeline %q: ", c.pipeline) + fmt.Sprintf(format, args...),
	})
}

func (c *converter) expression(doc *ExpressionDoc) domain.Expression {
	if doc == nil {
		return nil
	}
	switch doc.Type {
	case "literal":
		return &domain.Literal{ValueType: valueType(doc.ValueType), Value: doc.Value}

	case "variable":
		return &domain.Variable{Name: doc.Name, ValueType: valueType(doc.ValueType)}

	case "operation":
		op, ok := operators[doc.Operator]
		if !ok {
			c.errorf(codeUnknownOperator, "unknown operator %q", doc.Operator)
			return nil
		}
		inputs := make([]domain.Expression, 0, len(doc.Inputs))
		for i := range doc.Inputs {
			inputs = append(inputs, c.expression(&doc.Inputs[i]))
		}
		return &domain.Operation{Operator: op, Inputs: inputs, OutputType: valueType(doc.ValueType)}

	case "tool":
		if doc.ToolName == "" {
			c.errorf(codeMissingField, "tool expression has no toolName")
			return nil
		}
		return &domain.Tool{ToolName: doc.ToolName, Config: doc.Config, OutputType: valueType(doc.ValueType)}

	case "function":
		params := make([]domain.Parameter, 0, len(doc.Params))
		for _, p := range doc.Params {
			params = append(params, domain.Parameter{Name: p.Name, Type: valueType(p.Type), Optional: p.Optional})
		}
		return &domain.Function{
			Name:       doc.Name,
			Params:     params,
			Body:       c.expression(doc.Body),
			ReturnType: valueType(doc.ValueType),
		}

	case "conditional":
		return &domain.Conditional{
			Condition:  c.expression(doc.Condition),
			Then:       c.expression(doc.Then),
			Else:       c.expression(doc.Else),
			OutputType: valueType(doc.ValueType),
		}

	case "loop":
		return &domain.Loop{
			Iterable:   c.expression(doc.Iterable),
			Variable:   doc.Variable,
			Body:       c.expression(doc.Body),
			OutputType: valueType(doc.ValueType),
		}

	default:
		c.errorf(codeUnknownExpressionType, "unknown expression type %q", doc.Type)
		return nil
	}
}

var operators = map[string]domain.Operator{
	"map":     domain.OpMap,
	"flatMap": domain.OpFlatMap,
	"filter":  domain.OpFilter,
	"zip":     domain.OpZip,
	"merge":   domain.OpMerge,
	"concat":  domain.OpConcat,
	"onError": domain.OpOnError,
	"retry":   domain.OpRetry,
	"timeout": domain.OpTimeout,
}

func valueType(s string) domain.ValueType {
	switch domain.ValueType(s) {
	case domain.TypeString, domain.TypeNumber, domain.TypeBoolean, domain.TypeObject, domain.TypeArray:
		return domain.ValueType(s)
	default:
		return domain.TypeAny
	}
}
