package schema

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ArgumentType is the declared type of a tool argument's value.
type ArgumentType string

const (
	ArgumentFlag    ArgumentType = "flag"
	ArgumentString  ArgumentType = "string"
	ArgumentInteger ArgumentType = "integer"
	ArgumentFloat   ArgumentType = "float"
	ArgumentFile    ArgumentType = "file"
)

// Argument describes one argument a tool accepts.
type Argument struct {
	LongForm            string   `json:"-"`
	ShortForm           string   `json:"shortForm,omitempty"`
	Description         string   `json:"description"`
	Type                ArgumentType `json:"type"`
	IsInput             bool     `json:"isInput,omitempty"`
	IsOutput            bool     `json:"isOutput,omitempty"`
	IsRequired          bool     `json:"isRequired,omitempty"`
	AllowedExtensions   []string `json:"allowedExtensions,omitempty"`
	IsFilenameStub      bool     `json:"isFilenameStub,omitempty"`
	FilenameExtensions  []string `json:"filenameExtensions,omitempty"`
	OutputStream        bool     `json:"outputStream,omitempty"`
	IfOutputIsStream    string   `json:"ifOutputIsStream,omitempty"`
	CanBeSetByArgument  []string `json:"canBeSetByArgument,omitempty"`
	AllowMultipleValues bool     `json:"allowMultipleValues,omitempty"`
}

// IsFile reports whether the argument's declared type is file.
func (a Argument) IsFile() bool {
	return a.Type == ArgumentFile
}

// Extensions splits the allowedExtensions array into a clean, leading-dot
// slice; each array entry may itself be a "|"-joined list. The field is a
// JSON array, so a bare string does not decode.
func (a Argument) Extensions() []string {
	return splitExtensions(a.AllowedExtensions)
}

// StubExtensions returns the per-file extensions a filename-stub argument
// expands into, one file node per entry, in declared order. A non-stub
// argument has no stub extensions.
func (a Argument) StubExtensions() []string {
	if !a.IsFilenameStub {
		return nil
	}
	return splitExtensions(a.FilenameExtensions)
}

func splitExtensions(raw []string) []string {
	var out []string
	for _, entry := range raw {
		for _, part := range strings.Split(entry, "|") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if !strings.HasPrefix(part, ".") {
				part = "." + part
			}
			out = append(out, part)
		}
	}
	return out
}

// ToolSchema is a single tool's argument schema, as the configuration
// parser (an external collaborator) decodes it from its tool definition
// file.
type ToolSchema struct {
	Description   string              `json:"description"`
	Executable    string              `json:"executable"`
	Path          string              `json:"path"`
	Precommand    string              `json:"precommand,omitempty"`
	Modifier      string              `json:"modifier,omitempty"`
	IsHidden      bool                `json:"isHidden,omitempty"`
	ArgumentOrder []string            `json:"argumentOrder,omitempty"`
	Arguments     map[string]Argument `json:"arguments"`

	// ParameterSets holds tool-mode parameter-set overlays, keyed by set
	// name, applied directly against the single task bound to this tool
	// rather than through a pipeline common node.
	ParameterSets map[string][]ParameterSetEntry `json:"parameterSets,omitempty"`
}

// UnmarshalJSON decodes a tool schema and fills each Argument's LongForm
// from its map key, so later lookups don't need to carry the key alongside
// the value.
func (t *ToolSchema) UnmarshalJSON(data []byte) error {
	type alias ToolSchema
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return fmt.Errorf("decode tool schema: %w", err)
	}
	for long, arg := range a.Arguments {
		arg.LongForm = long
		a.Arguments[long] = arg
	}
	*t = ToolSchema(a)
	return nil
}

// Attribute is the single, consolidated accessor for a tool's argument
// data (the original configuration class defined this twice, with the
// second definition silently shadowing the first; this is the one
// surviving version). Accepts either the long form or a declared short
// form.
func (t ToolSchema) Attribute(argument string) (Argument, error) {
	if arg, ok := t.Arguments[argument]; ok {
		return arg, nil
	}
	for long, arg := range t.Arguments {
		if arg.ShortForm == argument {
			return t.Arguments[long], nil
		}
	}
	return Argument{}, fmt.Errorf("%w: %s", ErrUnknownArgument, argument)
}

// LongFormOf resolves a short or long form argument to its long form.
func (t ToolSchema) LongFormOf(argument string) (string, error) {
	arg, err := t.Attribute(argument)
	if err != nil {
		return "", err
	}
	return arg.LongForm, nil
}

// Validate checks structural requirements of the tool schema: every
// argument has a description, and every filename-stub argument declares
// at least one filename extension.
func (t ToolSchema) Validate() error {
	for long, arg := range t.Arguments {
		if strings.TrimSpace(arg.Description) == "" {
			return fmt.Errorf("%w: %s", ErrMissingDescription, long)
		}
		if arg.IsFilenameStub && len(arg.FilenameExtensions) == 0 {
			return fmt.Errorf("%w: %s", ErrStubMissingExtensions, long)
		}
	}
	return nil
}

// Registry holds every tool schema known to a compilation, keyed by tool
// name.
type Registry struct {
	tools map[string]ToolSchema
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{tools: map[string]ToolSchema{}}
}

// Add registers a tool schema, validating it first.
func (r *Registry) Add(name string, tool ToolSchema) error {
	if err := tool.Validate(); err != nil {
		return fmt.Errorf("tool %q: %w", name, err)
	}
	r.tools[name] = tool
	return nil
}

// Get returns the schema for a tool.
func (r *Registry) Get(name string) (ToolSchema, error) {
	tool, ok := r.tools[name]
	if !ok {
		return ToolSchema{}, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	return tool, nil
}

// Names returns every registered tool name.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.tools))
	for name := range r.tools {
		out = append(out, name)
	}
	return out
}
