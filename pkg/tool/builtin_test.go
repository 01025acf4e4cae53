package tool

import (
	"context"
	"testing"

	"github.com/fluxionai/fluxion-oss/pkg/stream"
)

func invoke(t *testing.T, fn Func, input any, config map[string]any) map[string]any {
	t.Helper()
	value, err := stream.First(context.Background(), fn(input, config))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result, ok := value.(map[string]any)
	if !ok {
		t.Fatalf("expected a map result, got %T", value)
	}
	return result
}

func TestCallAPIEchoesConfigAndInput(t *testing.T) {
	result := invoke(t, CallAPI, "payload", map[string]any{
		"url":    "https://api.example.com/things",
		"method": "GET",
	})

	if result["status"] != 200 {
		t.Fatalf("expected status 200, got %v", result["status"])
	}
	if result["url"] != "https://api.example.com/things" || result["method"] != "GET" {
		t.Fatalf("expected config echoed back, got %v", result)
	}
	data := result["data"].(map[string]any)
	if data["input"] != "payload" {
		t.Fatalf("expected upstream input in response data, got %v", data)
	}
}

func TestCallAPIDefaultsMethodToPost(t *testing.T) {
	result := invoke(t, CallAPI, nil, map[string]any{"url": "https://x"})
	if result["method"] != "POST" {
		t.Fatalf("expected POST default, got %v", result["method"])
	}
}

func TestRunShellReportsZeroExit(t *testing.T) {
	result := invoke(t, RunShell, nil, map[string]any{"command": "ls -la"})
	if result["exit_code"] != 0 {
		t.Fatalf("expected exit code 0, got %v", result["exit_code"])
	}
	if result["stdout"] != "Mock output from: ls -la" {
		t.Fatalf("unexpected stdout %v", result["stdout"])
	}
}

func TestUseMCPCarriesParams(t *testing.T) {
	result := invoke(t, UseMCP, "in", map[string]any{
		"service": "search",
		"method":  "query",
		"params":  map[string]any{"q": "fluxion"},
	})
	if result["service"] != "search" || result["method"] != "query" {
		t.Fatalf("expected service and method echoed, got %v", result)
	}
	params := result["params"].(map[string]any)
	if params["q"] != "fluxion" {
		t.Fatalf("expected params carried through, got %v", params)
	}
	if result["input"] != "in" {
		t.Fatalf("expected upstream input carried through, got %v", result["input"])
	}
}

func TestReadFileReturnsMockContent(t *testing.T) {
	result := invoke(t, ReadFile, nil, map[string]any{"path": "/tmp/notes.txt"})
	content := result["content"].(string)
	if content != "Mock file content from /tmp/notes.txt" {
		t.Fatalf("unexpected content %q", content)
	}
	if result["size"] != len(content) {
		t.Fatalf("expected size %d, got %v", len(content), result["size"])
	}
}

func TestWriteFileCountsBytes(t *testing.T) {
	result := invoke(t, WriteFile, "hello", map[string]any{"path": "/tmp/out.txt"})
	if result["success"] != true {
		t.Fatalf("expected success, got %v", result)
	}
	if result["bytes_written"] != 5 {
		t.Fatalf("expected 5 bytes written, got %v", result["bytes_written"])
	}
}

func TestWriteFileNilInput(t *testing.T) {
	result := invoke(t, WriteFile, nil, nil)
	if result["bytes_written"] != 0 {
		t.Fatalf("expected 0 bytes for nil input, got %v", result["bytes_written"])
	}
}

func TestCallAPICancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := stream.First(ctx, CallAPI(nil, nil)); err == nil {
		t.Fatalf("expected an error after cancellation")
	}
}
