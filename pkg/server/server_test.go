package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pipeweave/graphc/pkg/schema"
)

// registryWithBWA returns a tool registry with a single two-argument tool,
// the same shape used across pkg/schema's own tests.
func registryWithBWA(t *testing.T) *schema.Registry {
	t.Helper()
	reg := schema.NewRegistry()
	tool := schema.ToolSchema{
		Description: "aligns reads",
		Arguments: map[string]schema.Argument{
			"--reference": {LongForm: "--reference", Description: "reference", Type: schema.ArgumentFile, IsInput: true, AllowedExtensions: []string{"fa"}},
			"--output":    {LongForm: "--output", Description: "output", Type: schema.ArgumentFile, AllowedExtensions: []string{"bam"}},
		},
	}
	if err := reg.Add("bwa_mem", tool); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	return reg
}

func samplePipelineDoc() []byte {
	return []byte(`{
		"tasks": {"align": "bwa_mem"},
		"nodes": [
			{"ID": "ref", "tasks": [{"task": "align", "argument": "--reference"}]}
		]
	}`)
}

func TestHandleCompileSuccess(t *testing.T) {
	srv, err := New(DefaultConfig(), registryWithBWA(t))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	reqBody := CompileRequest{Pipeline: json.RawMessage(samplePipelineDoc())}
	body, err := json.Marshal(reqBody)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/compile", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	srv.handleCompile(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp["success"] != true {
		t.Errorf("Expected success=true, got %v", resp["success"])
	}
	if resp["compilationId"] == "" || resp["compilationId"] == nil {
		t.Errorf("Expected a non-empty compilationId, got %v", resp["compilationId"])
	}
	workflow, ok := resp["workflow"].([]interface{})
	if !ok || len(workflow) != 1 || workflow[0] != "align" {
		t.Errorf("Expected workflow=[align], got %v", resp["workflow"])
	}
}

func TestHandleCompileMethodNotAllowed(t *testing.T) {
	srv, err := New(DefaultConfig(), registryWithBWA(t))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/compile", nil)
	rr := httptest.NewRecorder()

	srv.handleCompile(rr, req)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected status %d for GET, got %d", http.StatusMethodNotAllowed, rr.Code)
	}
}

func TestHandleCompileInvalidJSON(t *testing.T) {
	srv, err := New(DefaultConfig(), registryWithBWA(t))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/compile", bytes.NewReader([]byte("{not json")))
	rr := httptest.NewRecorder()

	srv.handleCompile(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp["success"] != false {
		t.Errorf("Expected success=false, got %v", resp["success"])
	}
}

func TestHandleCompileUnknownTool(t *testing.T) {
	srv, err := New(DefaultConfig(), schema.NewRegistry())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	reqBody := CompileRequest{Pipeline: json.RawMessage(samplePipelineDoc())}
	body, _ := json.Marshal(reqBody)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/compile", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	srv.handleCompile(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Expected status %d for unknown tool, got %d: %s", http.StatusBadRequest, rr.Code, rr.Body.String())
	}
}

func TestHandleCompileCompilationFailure(t *testing.T) {
	// a required argument with no source anywhere in the pipeline fails
	// verifyRequiredArguments inside compiler.Compile, which the handler
	// must surface as 422 rather than 400 (the document itself is valid).
	reg := schema.NewRegistry()
	tool := schema.ToolSchema{
		Description: "aligns reads",
		Arguments: map[string]schema.Argument{
			"--reference": {LongForm: "--reference", Description: "reference", Type: schema.ArgumentFile, IsInput: true, IsRequired: true, AllowedExtensions: []string{"fa"}},
		},
	}
	if err := reg.Add("bwa_mem", tool); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	srv, err := New(DefaultConfig(), reg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	pipelineDoc := []byte(`{"tasks": {"align": "bwa_mem"}}`)
	reqBody := CompileRequest{Pipeline: json.RawMessage(pipelineDoc)}
	body, _ := json.Marshal(reqBody)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/compile", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	srv.handleCompile(rr, req)

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusUnprocessableEntity, rr.Code, rr.Body.String())
	}
}

func TestCorsMiddlewareHandlesPreflight(t *testing.T) {
	srv, err := New(DefaultConfig(), registryWithBWA(t))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/compile", nil)
	rr := httptest.NewRecorder()

	srv.corsMiddleware(next).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("Expected status %d for OPTIONS preflight, got %d", http.StatusOK, rr.Code)
	}
	if rr.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("Expected Access-Control-Allow-Origin header to be set")
	}
	if called {
		t.Errorf("Expected the wrapped handler not to run for an OPTIONS preflight")
	}
}

func TestRecoveryMiddlewareRecoversPanic(t *testing.T) {
	srv, err := New(DefaultConfig(), registryWithBWA(t))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	panics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/compile", nil)
	rr := httptest.NewRecorder()

	srv.recoveryMiddleware(panics).ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("Expected status %d after recovered panic, got %d", http.StatusInternalServerError, rr.Code)
	}
}

func TestPathID(t *testing.T) {
	cases := []struct {
		path, prefix, want string
	}{
		{"/api/v1/tools/abc-123", "/api/v1/tools/", "abc-123"},
		{"/api/v1/tools/", "/api/v1/tools/", ""},
	}
	for _, c := range cases {
		if got := pathID(c.path, c.prefix); got != c.want {
			t.Errorf("pathID(%q, %q) = %q, want %q", c.path, c.prefix, got, c.want)
		}
	}
}
