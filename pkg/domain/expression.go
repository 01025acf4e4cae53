package domain

// Operator names a reactive combinator applied by an Operation expression.
type Operator string

const (
	OpMap     Operator = "map"
	OpFlatMap Operator = "flatMap"
	OpFilter  Operator = "filter"
	OpZip     Operator = "zip"
	OpMerge   Operator = "merge"
	OpConcat  Operator = "concat"
	OpOnError Operator = "onError"
	OpRetry   Operator = "retry"
	OpTimeout Operator = "timeout"
)

// Expression is the closed sum of IR expression variants. The compiler
// dispatches over the concrete types exhaustively; adding a variant is a
// compile-time decision, not a runtime discovery.
//
// Variants: *Literal, *Variable, *Operation, *Tool, *Function, *Conditional,
// *Loop.
type Expression interface {
	// Kind returns the wire discriminator for this variant ("literal",
	// "variable", "operation", "tool", "function", "conditional", "loop").
	Kind() string

	expression()
}

// Literal is a fixed value with a declared type.
type Literal struct {
	ValueType ValueType
	Value     any
	Location  *SourceLocation
}

// Variable references a declared Input or a prior Step's result by name.
type Variable struct {
	Name      string
	ValueType ValueType
	Location  *SourceLocation
}

// Operation applies a named reactive operator to a list of input expressions.
type Operation struct {
	Operator   Operator
	Inputs     []Expression
	OutputType ValueType
	Location   *SourceLocation
}

// Tool invokes a named external capability with a tool-specific config map.
type Tool struct {
	ToolName   string
	Config     map[string]any
	InputType  ValueType
	OutputType ValueType
	Location   *SourceLocation
}

// Parameter declares a named function parameter.
type Parameter struct {
	Name     string
	Type     ValueType
	Optional bool
}

// Function is an anonymous or named function expression. When used as the
// function operand of map/flatMap/filter/onError, its first parameter is
// bound to each incoming value and its body is evaluated per value.
type Function struct {
	Name       string
	Params     []Parameter
	Body       Expression
	ReturnType ValueType
	Location   *SourceLocation
}

// Conditional is part of the IR contract; the core compiler rejects it as an
// unsupported variant. See the engine package for the extension point.
type Conditional struct {
	Condition  Expression
	Then       Expression
	Else       Expression
	OutputType ValueType
	Location   *SourceLocation
}

// Loop is part of the IR contract; the core compiler rejects it as an
// unsupported variant.
type Loop struct {
	Iterable   Expression
	Variable   string
	Body       Expression
	OutputType ValueType
	Location   *SourceLocation
}

func (*Literal) Kind() string     { return "literal" }
func (*Variable) Kind() string    { return "variable" }
func (*Operation) Kind() string   { return "operation" }
func (*Tool) Kind() string        { return "tool" }
func (*Function) Kind() string    { return "function" }
func (*Conditional) Kind() string { return "conditional" }
func (*Loop) Kind() string        { return "loop" }

func (*Literal) expression()     {}
func (*Variable) expression()    {}
func (*Operation) expression()   {}
func (*Tool) expression()        {}
func (*Function) expression()    {}
func (*Conditional) expression() {}
func (*Loop) expression()        {}
