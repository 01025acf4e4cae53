package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluxionai/fluxion-oss/pkg/domain"
)

func writeDocument(t *testing.T, path, pipelineName string) {
	t.Helper()
	doc := `
pipelines:
  - name: ` + pipelineName + `
    steps:
      - name: answer
        expression:
          type: literal
          valueType: number
          value: 42
    outputs:
      - name: result
        step: answer
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
}

func TestFileProviderLoadsInitialDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pipelines.yaml")
	writeDocument(t, path, "first")

	provider, err := NewFileProvider(path)
	require.NoError(t, err)
	defer func() { _ = provider.Close() }()

	program := provider.CurrentProgram()
	require.Len(t, program.Pipelines, 1)
	assert.Equal(t, "first", program.Pipelines[0].Name)
}

func TestFileProviderStartsEmptyWhenFileMissing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "missing.yaml")

	provider, err := NewFileProvider(path)
	require.NoError(t, err)
	defer func() { _ = provider.Close() }()

	assert.Empty(t, provider.CurrentProgram().Pipelines)
}

func TestFileProviderSubscribeDeliversCurrentState(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pipelines.yaml")
	writeDocument(t, path, "initial")

	provider, err := NewFileProvider(path)
	require.NoError(t, err)
	defer func() { _ = provider.Close() }()

	select {
	case program := <-provider.Subscribe():
		require.Len(t, program.Pipelines, 1)
		assert.Equal(t, "initial", program.Pipelines[0].Name)
	case <-time.After(time.Second):
		t.Fatal("expected immediate delivery of the current program")
	}
}

func TestFileProviderReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pipelines.yaml")
	writeDocument(t, path, "before")

	provider, err := NewFileProvider(path)
	require.NoError(t, err)
	defer func() { _ = provider.Close() }()

	writeDocument(t, path, "after")

	require.Eventually(t, func() bool {
		program := provider.CurrentProgram()
		return len(program.Pipelines) == 1 && program.Pipelines[0].Name == "after"
	}, 5*time.Second, 50*time.Millisecond, "expected the reloaded document to become current")
}

func TestFileProviderKeepsDiagnosticsFromReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pipelines.yaml")
	doc := `
pipelines:
  - name: broken
    steps:
      - name: odd
        expression:
          type: quantum
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	provider, err := NewFileProvider(path)
	require.NoError(t, err)
	defer func() { _ = provider.Close() }()

	program := provider.CurrentProgram()
	require.NotEmpty(t, program.Errors)
	assert.Equal(t, domain.SeverityError, program.Errors[0].Severity)
}
