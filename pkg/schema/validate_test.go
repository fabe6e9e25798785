package schema

import (
	"errors"
	"testing"
)

func TestValidateToolDocumentAccepts(t *testing.T) {
	if err := ValidateToolDocument(sampleToolJSON()); err != nil {
		t.Fatalf("ValidateToolDocument() error = %v", err)
	}
}

func TestValidateToolDocumentRejectsMissingRequired(t *testing.T) {
	raw := []byte(`{"description": "aligns reads"}`)
	if err := ValidateToolDocument(raw); !errors.Is(err, ErrSchemaValidationFailed) {
		t.Fatalf("ValidateToolDocument() error = %v, want ErrSchemaValidationFailed", err)
	}
}

func TestValidateToolDocumentRejectsInvalidJSON(t *testing.T) {
	raw := []byte(`{not json`)
	if err := ValidateToolDocument(raw); !errors.Is(err, ErrInvalidJSON) {
		t.Fatalf("ValidateToolDocument() error = %v, want ErrInvalidJSON", err)
	}
}

func TestDecodeToolDocument(t *testing.T) {
	tool, err := DecodeToolDocument(sampleToolJSON())
	if err != nil {
		t.Fatalf("DecodeToolDocument() error = %v", err)
	}
	if tool.Executable != "bwa" {
		t.Fatalf("Executable = %q, want bwa", tool.Executable)
	}
	if tool.Arguments["--reference"].LongForm != "--reference" {
		t.Fatalf("expected LongForm to be filled in from decode")
	}
}

func TestDecodeToolDocumentRejectsSchemaFailure(t *testing.T) {
	raw := []byte(`{"description": "x"}`)
	if _, err := DecodeToolDocument(raw); err == nil {
		t.Fatalf("DecodeToolDocument() error = nil, want error")
	}
}

func samplePipelineJSON() []byte {
	return []byte(`{
		"tasks": {"align": "bwa_mem"},
		"nodes": [
			{"ID": "ref", "tasks": [{"task": "align", "argument": "--reference"}]}
		]
	}`)
}

func TestValidatePipelineDocumentAccepts(t *testing.T) {
	if err := ValidatePipelineDocument(samplePipelineJSON()); err != nil {
		t.Fatalf("ValidatePipelineDocument() error = %v", err)
	}
}

func TestValidatePipelineDocumentRejectsMissingTasks(t *testing.T) {
	raw := []byte(`{"nodes": []}`)
	if err := ValidatePipelineDocument(raw); !errors.Is(err, ErrSchemaValidationFailed) {
		t.Fatalf("ValidatePipelineDocument() error = %v, want ErrSchemaValidationFailed", err)
	}
}

func TestDecodePipelineDocument(t *testing.T) {
	reg := registryWithBWA(t)
	p, err := DecodePipelineDocument(samplePipelineJSON(), reg)
	if err != nil {
		t.Fatalf("DecodePipelineDocument() error = %v", err)
	}
	if p.Tasks["align"] != "bwa_mem" {
		t.Fatalf("Tasks[align] = %q, want bwa_mem", p.Tasks["align"])
	}
}

func TestDecodePipelineDocumentRejectsUnknownTool(t *testing.T) {
	reg := NewRegistry()
	if _, err := DecodePipelineDocument(samplePipelineJSON(), reg); err == nil {
		t.Fatalf("DecodePipelineDocument() error = nil, want error for unknown tool")
	}
}
