package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/fluxionai/fluxion-oss/pkg/domain"
)

// MemoryPipelineStore is an in-memory implementation of PipelineStore.
type MemoryPipelineStore struct {
	mu        sync.RWMutex
	pipelines map[string]*domain.Pipeline
	latest    map[string]string
}

// NewMemoryPipelineStore creates a new MemoryPipelineStore.
func NewMemoryPipelineStore() *MemoryPipelineStore {
	return &MemoryPipelineStore{
		pipelines: make(map[string]*domain.Pipeline),
		latest:    make(map[string]string),
	}
}

func (s *MemoryPipelineStore) key(name, version string) string {
	return fmt.Sprintf("%s:%s", name, version)
}

// GetPipeline retrieves a pipeline at a specific version from memory.
func (s *MemoryPipelineStore) GetPipeline(_ context.Context, name, version string) (*domain.Pipeline, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pipeline, ok := s.pipelines[s.key(name, version)]
	if !ok {
		return nil, fmt.Errorf("%w: %s@%s", ErrNotFound, name, version)
	}
	return pipeline, nil
}

// LatestPipeline retrieves the most recently saved version of a pipeline.
func (s *MemoryPipelineStore) LatestPipeline(_ context.Context, name string) (*domain.Pipeline, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	version, ok := s.latest[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return s.pipelines[s.key(name, version)], nil
}

// SavePipeline saves a pipeline to memory and marks its version as latest.
// Pipelines without metadata are stored under the empty version.
func (s *MemoryPipelineStore) SavePipeline(_ context.Context, pipeline *domain.Pipeline) error {
	if pipeline == nil || pipeline.Name == "" {
		return fmt.Errorf("pipeline must have a name")
	}

	version := ""
	if pipeline.Metadata != nil {
		version = pipeline.Metadata.Version
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pipelines[s.key(pipeline.Name, version)] = pipeline
	s.latest[pipeline.Name] = version
	return nil
}

// ListPipelines returns the distinct pipeline names in the store, sorted.
func (s *MemoryPipelineStore) ListPipelines(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.latest))
	for name := range s.latest {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Close is a no-op for memory store.
func (s *MemoryPipelineStore) Close() error {
	return nil
}
