package tool

import (
	"context"
	"fmt"
	"time"

	"github.com/fluxionai/fluxion-oss/pkg/stream"
)

// Simulated latencies for the mock tools, mirroring the behavior the
// compiler's tests and examples were written against.
const (
	mockAPILatency   = 100 * time.Millisecond
	mockShellLatency = 50 * time.Millisecond
	mockMCPLatency   = 100 * time.Millisecond
)

// Default returns a registry pre-populated with the built-in mock tools:
// callApi, runShell, useMCP, readFile, and writeFile. None of them performs
// real network, process, or disk work.
func Default() *Registry {
	r := NewRegistry()
	r.Register("callApi", CallAPI)
	r.Register("runShell", RunShell)
	r.Register("useMCP", UseMCP)
	r.Register("readFile", ReadFile)
	r.Register("writeFile", WriteFile)
	return r
}

// CallAPI simulates an HTTP API call.
func CallAPI(input any, config map[string]any) *stream.Stream {
	return stream.Func(func(ctx context.Context) (any, error) {
		url := configString(config, "url", "")
		method := configString(config, "method", "POST")
		if !pause(ctx, mockAPILatency) {
			return nil, ctx.Err()
		}
		return map[string]any{
			"status": 200,
			"data":   map[string]any{"message": fmt.Sprintf("Mock response from %s", url), "input": input},
			"url":    url,
			"method": method,
		}, nil
	})
}

// RunShell simulates executing a shell command.
func RunShell(input any, config map[string]any) *stream.Stream {
	return stream.Func(func(ctx context.Context) (any, error) {
		command := configString(config, "command", "")
		cwd := configString(config, "cwd", "")
		if !pause(ctx, mockShellLatency) {
			return nil, ctx.Err()
		}
		return map[string]any{
			"stdout":    fmt.Sprintf("Mock output from: %s", command),
			"stderr":    "",
			"exit_code": 0,
			"command":   command,
			"cwd":       cwd,
		}, nil
	})
}

// UseMCP simulates a Model Context Protocol service call.
func UseMCP(input any, config map[string]any) *stream.Stream {
	return stream.Func(func(ctx context.Context) (any, error) {
		service := configString(config, "service", "")
		method := configString(config, "method", "")
		params, _ := config["params"].(map[string]any)
		if !pause(ctx, mockMCPLatency) {
			return nil, ctx.Err()
		}
		return map[string]any{
			"result":  fmt.Sprintf("Mock MCP result from %s.%s", service, method),
			"service": service,
			"method":  method,
			"params":  params,
			"input":   input,
		}, nil
	})
}

// ReadFile simulates reading a file.
func ReadFile(_ any, config map[string]any) *stream.Stream {
	return stream.Func(func(_ context.Context) (any, error) {
		path := configString(config, "path", "")
		encoding := configString(config, "encoding", "utf8")
		content := fmt.Sprintf("Mock file content from %s", path)
		return map[string]any{
			"content":  content,
			"path":     path,
			"encoding": encoding,
			"size":     len(content),
		}, nil
	})
}

// WriteFile simulates writing the upstream value to a file.
func WriteFile(input any, config map[string]any) *stream.Stream {
	return stream.Func(func(_ context.Context) (any, error) {
		path := configString(config, "path", "")
		encoding := configString(config, "encoding", "utf8")
		content := ""
		if input != nil {
			content = fmt.Sprint(input)
		}
		return map[string]any{
			"success":       true,
			"path":          path,
			"encoding":      encoding,
			"bytes_written": len(content),
		}, nil
	})
}

func configString(config map[string]any, key, fallback string) string {
	if config == nil {
		return fallback
	}
	if v, ok := config[key].(string); ok {
		return v
	}
	return fallback
}

func pause(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
