package graphmodel

import "github.com/pipeweave/graphc/pkg/ids"

// Kind identifies which attribute record a Node carries.
type Kind string

const (
	KindTask   Kind = "task"
	KindOption Kind = "option"
	KindFile   Kind = "file"
)

// DataType is the declared type of an option's value.
type DataType string

const (
	DataTypeString DataType = "string"
	DataTypeInt    DataType = "int"
	DataTypeFloat  DataType = "float"
	DataTypeFlag   DataType = "flag"
	DataTypeFile   DataType = "file"
)

// TaskData holds the attributes of a task node.
type TaskData struct {
	BoundTool        string
	OutputToStream   bool
	NumberOfDataSets int
	IsGreedy         bool

	// ArgumentOrder is carried through unchanged from the tool schema so a
	// downstream command-line emitter can lay arguments out as declared.
	ArgumentOrder []string
}

// OptionData holds the attributes of an option node.
type OptionData struct {
	LongFormArgument    string
	ShortFormArgument   string
	DataType            DataType
	IsFile              bool
	IsInput             bool
	IsOutput            bool
	IsRequired          bool
	IsFilenameStub      bool
	AllowMultipleValues bool
	AllowedExtensions   map[string]struct{}
	LinkedExtension     *string
	DeleteFiles         bool
	IsConstructed       bool
	IsMarkedForRemoval  bool
	AssociatedFileNodes []ids.ID
	Values              Values
	IsCommandToEvaluate bool

	// CanBeSetByArgument lists alternative argument names that satisfy the
	// same logical requirement (spec.md 4.7's argument-alias acceptance).
	CanBeSetByArgument []string

	// Description survives from the tool schema for error reporting.
	Description string
}

// NewOptionData returns an OptionData with its maps/slices initialized.
func NewOptionData() *OptionData {
	return &OptionData{
		AllowedExtensions:   map[string]struct{}{},
		AssociatedFileNodes: nil,
		Values:              Values{},
	}
}

// AddAllowedExtension records an allowed extension (each beginning with ".").
func (o *OptionData) AddAllowedExtension(ext string) {
	o.AllowedExtensions[ext] = struct{}{}
}

// HasExtension reports whether ext is one of the option's allowed extensions.
func (o *OptionData) HasExtension(ext string) bool {
	_, ok := o.AllowedExtensions[ext]
	return ok
}

// FileData holds the attributes of a file node.
type FileData struct {
	Description         string
	AllowedExtension     string
	AllowMultipleValues  bool
	Values               Values
	IsStreaming          bool
	IsMarkedForRemoval   bool
}

// NewFileData returns a FileData with its Values map initialized.
func NewFileData() *FileData {
	return &FileData{Values: Values{}}
}

// Node is a single vertex in the pipeline graph: exactly one of Task,
// Option or File is populated, selected by Kind.
type Node struct {
	ID   ids.ID
	Kind Kind

	Task   *TaskData
	Option *OptionData
	File   *FileData
}

// NewTaskNode creates a task node bound to the given tool.
func NewTaskNode(id ids.ID, tool string) *Node {
	return &Node{
		ID:   id,
		Kind: KindTask,
		Task: &TaskData{BoundTool: tool, NumberOfDataSets: 1},
	}
}

// NewOptionNode creates an option node with zeroed attribute data.
func NewOptionNode(id ids.ID) *Node {
	return &Node{
		ID:     id,
		Kind:   KindOption,
		Option: NewOptionData(),
	}
}

// NewFileNode creates a file node with zeroed attribute data.
func NewFileNode(id ids.ID) *Node {
	return &Node{
		ID:   id,
		Kind: KindFile,
		File: NewFileData(),
	}
}

// IsMarkedForRemoval reports whether the node (option or file) is slated
// for purge.
func (n *Node) IsMarkedForRemoval() bool {
	switch n.Kind {
	case KindOption:
		return n.Option != nil && n.Option.IsMarkedForRemoval
	case KindFile:
		return n.File != nil && n.File.IsMarkedForRemoval
	default:
		return false
	}
}

// MarkForRemoval flags an option or file node for purge.
func (n *Node) MarkForRemoval() {
	switch n.Kind {
	case KindOption:
		if n.Option != nil {
			n.Option.IsMarkedForRemoval = true
		}
	case KindFile:
		if n.File != nil {
			n.File.IsMarkedForRemoval = true
		}
	}
}
