// Package storage provides pipeline storage and versioning capabilities for
// the engine. Stored pipelines are keyed by name and version so callers can
// pin a version or follow the latest.
package storage

import (
	"context"
	"errors"

	"github.com/fluxionai/fluxion-oss/pkg/domain"
)

// ErrNotFound is returned when a requested pipeline does not exist in the store.
var ErrNotFound = errors.New("pipeline not found")

// PipelineStore exposes persistence operations for pipelines.
type PipelineStore interface {
	GetPipeline(ctx context.Context, name, version string) (*domain.Pipeline, error)
	LatestPipeline(ctx context.Context, name string) (*domain.Pipeline, error)
	SavePipeline(ctx context.Context, pipeline *domain.Pipeline) error
	ListPipelines(ctx context.Context) ([]string, error)
	Close() error
}
