package domain

import (
	"fmt"
	"regexp"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Diagnostic codes produced by Validate.
const (
	CodeInvalidIdentifier = "IR001"
	CodeDuplicateName     = "IR002"
	CodeUnknownStepRef    = "IR003"
	CodeMissingExpression = "IR004"
)

// Validate checks the structural invariants of a pipeline document: names
// match the identifier pattern and are unique within their collection, and
// every output references an existing step. It does not type-check
// expressions; that is the DSL front end's job.
func Validate(p *Pipeline) ValidationResult {
	var result ValidationResult

	stepNames := make(map[string]bool, len(p.Steps))
	for i := range p.Steps {
		step := &p.Steps[i]
		if !identifierPattern.MatchString(step.Name) {
			result.addError(CodeInvalidIdentifier, fmt.Sprintf("step name %q is not a valid identifier", step.Name), step.Location)
		}
		if stepNames[step.Name] {
			result.addError(CodeDuplicateName, fmt.Sprintf("duplicate step name %q", step.Name), step.Location)
		}
		stepNames[step.Name] = true
		if step.Expression == nil {
			result.addError(CodeMissingExpression, fmt.Sprintf("step %q has no expression", step.Name), step.Location)
		}
	}

	inputNames := make(map[string]bool, len(p.Inputs))
	for i := range p.Inputs {
		in := &p.Inputs[i]
		if !identifierPattern.MatchString(in.Name) {
			result.addError(CodeInvalidIdentifier, fmt.Sprintf("input name %q is not a valid identifier", in.Name), in.Location)
		}
		if inputNames[in.Name] {
			result.addError(CodeDuplicateName, fmt.Sprintf("duplicate input name %q", in.Name), in.Location)
		}
		inputNames[in.Name] = true
	}

	outputNames := make(map[string]bool, len(p.Outputs))
	for i := range p.Outputs {
		out := &p.Outputs[i]
		if !identifierPattern.MatchString(out.Name) {
			result.addError(CodeInvalidIdentifier, fmt.Sprintf("output name %q is not a valid identifier", out.Name), out.Location)
		}
		if outputNames[out.Name] {
			result.addError(CodeDuplicateName, fmt.Sprintf("duplicate output name %q", out.Name), out.Location)
		}
		outputNames[out.Name] = true
		if !stepNames[out.StepName] {
			result.addError(CodeUnknownStepRef, fmt.Sprintf("output %q references unknown step %q", out.Name, out.StepName), out.Location)
		}
	}

	// Dependency names that resolve to neither a step nor an input are
	// tolerated by the resolver (it skips them), so they surface here as
	// errors instead.
	for i := range p.Steps {
		step := &p.Steps[i]
		for _, dep := range step.Dependencies {
			if !stepNames[dep] && !inputNames[dep] {
				result.addError(CodeUnknownStepRef, fmt.Sprintf("step %q depends on unknown step %q", step.Name, dep), step.Location)
			}
		}
	}

	return result
}
