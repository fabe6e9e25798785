package schema

import (
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// toolSchemaJSONSchema is the JSON Schema a raw tool-configuration document
// must satisfy before being decoded into a ToolSchema. It only checks
// document shape (required top-level keys, argument object shape); the
// richer cross-field rules (stub extensions, descriptions) are checked by
// ToolSchema.Validate after decoding.
const toolSchemaJSONSchema = `{
  "type": "object",
  "required": ["description", "executable", "path", "arguments"],
  "properties": {
    "description": {"type": "string"},
    "executable": {"type": "string"},
    "path": {"type": "string"},
    "precommand": {"type": "string"},
    "modifier": {"type": "string"},
    "isHidden": {"type": "boolean"},
    "argumentOrder": {"type": "array", "items": {"type": "string"}},
    "parameterSets": {"type": "object"},
    "arguments": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "required": ["description", "type"],
        "properties": {
          "shortForm": {"type": "string"},
          "description": {"type": "string"},
          "type": {"enum": ["flag", "string", "integer", "float", "file"]},
          "isInput": {"type": "boolean"},
          "isOutput": {"type": "boolean"},
          "isRequired": {"type": "boolean"},
          "allowedExtensions": {"type": "array", "items": {"type": "string"}},
          "isFilenameStub": {"type": "boolean"},
          "filenameExtensions": {"type": "array", "items": {"type": "string"}},
          "outputStream": {"type": "boolean"},
          "ifOutputIsStream": {"enum": ["do not include", "include"]},
          "canBeSetByArgument": {"type": "array", "items": {"type": "string"}},
          "allowMultipleValues": {"type": "boolean"}
        }
      }
    }
  }
}`

// pipelineSchemaJSONSchema is the JSON Schema a raw pipeline-configuration
// document must satisfy before being decoded into a PipelineSchema.
const pipelineSchemaJSONSchema = `{
  "type": "object",
  "required": ["tasks"],
  "properties": {
    "tasks": {
      "type": "object",
      "additionalProperties": {"type": "string"}
    },
    "nodes": {"type": "array"},
    "originatingEdges": {"type": "array"},
    "greedyTasks": {"type": "array"},
    "tasksOutputtingToStream": {"type": "array", "items": {"type": "string"}},
    "additionalNodes": {"type": "array"},
    "unassignedArguments": {"type": "array", "items": {"type": "string"}},
    "pipelineArguments": {"type": "object"},
    "evaluateCommands": {"type": "array"},
    "parameterSets": {"type": "object"}
  }
}`

// ValidateToolDocument checks a raw tool-configuration document against the
// tool JSON Schema before any decoding happens, giving a precise schema
// error (spec section 7's "Schema error: invalid tool/pipeline
// configuration") instead of a field-by-field decode failure.
func ValidateToolDocument(raw []byte) error {
	return validateAgainstSchema(toolSchemaJSONSchema, raw)
}

// ValidatePipelineDocument checks a raw pipeline-configuration document
// against the pipeline JSON Schema before any decoding happens.
func ValidatePipelineDocument(raw []byte) error {
	return validateAgainstSchema(pipelineSchemaJSONSchema, raw)
}

func validateAgainstSchema(schemaJSON string, raw []byte) error {
	var probe json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}

	schemaLoader := gojsonschema.NewStringLoader(schemaJSON)
	docLoader := gojsonschema.NewBytesLoader(raw)

	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaValidationFailed, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("%w: %v", ErrSchemaValidationFailed, msgs)
	}
	return nil
}

// DecodeToolDocument validates then decodes a raw tool-configuration
// document.
func DecodeToolDocument(raw []byte) (ToolSchema, error) {
	if err := ValidateToolDocument(raw); err != nil {
		return ToolSchema{}, err
	}
	var tool ToolSchema
	if err := json.Unmarshal(raw, &tool); err != nil {
		return ToolSchema{}, fmt.Errorf("decode tool document: %w", err)
	}
	if err := tool.Validate(); err != nil {
		return ToolSchema{}, err
	}
	return tool, nil
}

// DecodePipelineDocument validates then decodes a raw pipeline-configuration
// document.
func DecodePipelineDocument(raw []byte, tools *Registry) (PipelineSchema, error) {
	if err := ValidatePipelineDocument(raw); err != nil {
		return PipelineSchema{}, err
	}
	var pipeline PipelineSchema
	if err := json.Unmarshal(raw, &pipeline); err != nil {
		return PipelineSchema{}, fmt.Errorf("decode pipeline document: %w", err)
	}
	if err := pipeline.Validate(tools); err != nil {
		return PipelineSchema{}, err
	}
	return pipeline, nil
}
