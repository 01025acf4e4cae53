package config

import (
	"fmt"
	"strings"

	"github.com/fluxionai/fluxion-oss/pkg/domain"
	"github.com/fluxionai/fluxion-oss/pkg/engine"
	"github.com/fluxionai/fluxion-oss/pkg/stream"
)

// SelectPipeline picks a pipeline out of a validated program. An empty name
// selects the only pipeline in single-pipeline programs.
func SelectPipeline(program *domain.Program, name string) (*domain.Pipeline, error) {
	if len(program.Errors) > 0 {
		msgs := make([]string, 0, len(program.Errors))
		for _, d := range program.Errors {
			msgs = append(msgs, d.String())
		}
		return nil, fmt.Errorf("invalid pipeline document:\n%s", strings.Join(msgs, "\n"))
	}

	if name == "" {
		if len(program.Pipelines) != 1 {
			return nil, fmt.Errorf("document declares %d pipelines, name one explicitly", len(program.Pipelines))
		}
		return &program.Pipelines[0], nil
	}
	for i := range program.Pipelines {
		if program.Pipelines[i].Name == name {
			return &program.Pipelines[i], nil
		}
	}
	return nil, fmt.Errorf("no pipeline named %q in document", name)
}

// RunDocument decodes a document, compiles the named pipeline against the
// runtime, and starts a run with the supplied inputs and options.
func RunDocument(rt *engine.Runtime, data []byte, pipeline string, inputs map[string]any, opts engine.Options) (*stream.Stream, error) {
	doc, err := Decode(data)
	if err != nil {
		return nil, err
	}
	selected, err := SelectPipeline(doc.ToDomain(), pipeline)
	if err != nil {
		return nil, err
	}
	compiled, err := rt.Compile(selected)
	if err != nil {
		return nil, err
	}
	return compiled.Run(inputs, opts)
}
