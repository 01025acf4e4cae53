package domain

// ValueType is the declared static type of an IR value. The engine does not
// enforce these at runtime; they are carried through from the type checker
// for diagnostics and tooling.
type ValueType string

const (
	TypeString  ValueType = "string"
	TypeNumber  ValueType = "number"
	TypeBoolean ValueType = "boolean"
	TypeObject  ValueType = "object"
	TypeArray   ValueType = "array"
	TypeAny     ValueType = "any"
)

// SourceLocation points back at the DSL source that produced an IR node.
type SourceLocation struct {
	Line   int
	Column int
	File   string
}

// Pipeline is a validated, read-only description of an agent pipeline: a
// directed graph of named steps fed by declared inputs and drained through
// declared outputs.
type Pipeline struct {
	Name     string
	Inputs   []Input
	Steps    []Step
	Outputs  []Output
	Metadata *Metadata
}

// Metadata carries optional descriptive fields attached to a pipeline.
type Metadata struct {
	Version     string
	Description string
	Author      string
	Tags        []string
}

// Step is a named node in the pipeline graph. Its value is defined by exactly
// one Expression. Dependencies list the step names that must be compiled
// before this one; they drive ordering independently of any dataflow
// references embedded in the expression.
type Step struct {
	Name         string
	Expression   Expression
	Dependencies []string
	Location     *SourceLocation
}

// Input declares a named runtime input. Optional inputs may be omitted by the
// caller; Default, when non-nil, is used whenever the caller supplies nothing.
type Input struct {
	Name     string
	Type     ValueType
	Optional bool
	Default  any
	Location *SourceLocation
}

// Output names a step whose values are surfaced in the run result.
type Output struct {
	Name     string
	StepName string
	Type     ValueType
	Location *SourceLocation
}

// Program is the top-level artifact produced by the DSL front end: the
// pipelines it compiled plus any diagnostics raised while doing so.
type Program struct {
	Pipelines []Pipeline
	Errors    []Diagnostic
	Warnings  []Diagnostic
}

// Step returns the step with the given name, or nil.
func (p *Pipeline) Step(name string) *Step {
	for i := range p.Steps {
		if p.Steps[i].Name == name {
			return &p.Steps[i]
		}
	}
	return nil
}

// Input returns the input declaration with the given name, or nil.
func (p *Pipeline) Input(name string) *Input {
	for i := range p.Inputs {
		if p.Inputs[i].Name == name {
			return &p.Inputs[i]
		}
	}
	return nil
}
