package engine

import (
	"github.com/fluxionai/fluxion-oss/pkg/domain"
)

// visit marks for the depth-first traversal.
type visitMark int

const (
	unvisited visitMark = iota
	inProgress
	done
)

// resolveOrder returns the steps reordered so that every step's declared
// dependencies appear before it. Traversal walks the step list in
// declaration order, so ties between independent steps preserve that order.
// Dependency names that resolve to no step are skipped; Validate reports
// them at the ingestion boundary. A dependency cycle is a fatal compile
// failure naming the offending step.
func resolveOrder(steps []domain.Step) ([]*domain.Step, error) {
	byName := make(map[string]*domain.Step, len(steps))
	for i := range steps {
		byName[steps[i].Name] = &steps[i]
	}

	marks := make(map[string]visitMark, len(steps))
	ordered := make([]*domain.Step, 0, len(steps))

	var visit func(name string) error
	visit = func(name string) error {
		switch marks[name] {
		case done:
			return nil
		case inProgress:
			return &domain.CompileError{
				Err:  domain.ErrCircularDependency,
				Step: name,
			}
		}

		step, ok := byName[name]
		if !ok {
			return nil
		}

		marks[name] = inProgress
		for _, dep := range step.Dependencies {
			if err := visit(dep); err != nil {
				return err
			}
		}
		marks[name] = done
		ordered = append(ordered, step)
		return nil
	}

	for i := range steps {
		if err := visit(steps[i].Name); err != nil {
			return nil, err
		}
	}

	return ordered, nil
}
