package ids

import "fmt"

// Kind identifies which node namespace an ID belongs to.
type Kind string

const (
	KindTask        Kind = "task"
	KindOption      Kind = "option"
	KindFile        Kind = "file"
	KindPlaceholder Kind = "placeholder"
)

// ID is a tagged identifier. Task IDs carry the pipeline-unique task name
// in Name; option and placeholder IDs carry a monotonic Counter; file IDs
// carry the Counter of their owning option plus a Suffix such as "_FILE",
// "_FILE_2" or "_1".
type ID struct {
	Kind    Kind
	Name    string
	Counter int
	Suffix  string
}

// Task returns the ID of a task node.
func Task(name string) ID {
	return ID{Kind: KindTask, Name: name}
}

// Option returns the ID of an option node allocated with the given counter.
func Option(counter int) ID {
	return ID{Kind: KindOption, Counter: counter}
}

// Placeholder returns a CREATE_NODE_<k> placeholder ID used during merge
// phase M1 for a common node with no pre-existing survivor.
func Placeholder(counter int) ID {
	return ID{Kind: KindPlaceholder, Counter: counter}
}

// File derives a file-node ID owned by the option with the given counter,
// using the supplied suffix ("_FILE", "_FILE_2", "_1", ...).
func File(optionCounter int, suffix string) ID {
	return ID{Kind: KindFile, Counter: optionCounter, Suffix: suffix}
}

// WithSuffix returns a copy of a file ID with a different suffix, used when
// the merger renames a surviving file node during stub expansion.
func (id ID) WithSuffix(suffix string) ID {
	id.Suffix = suffix
	return id
}

// IsZero reports whether the ID was never assigned.
func (id ID) IsZero() bool {
	return id.Kind == "" && id.Name == "" && id.Counter == 0 && id.Suffix == ""
}

// String renders the debug form of the ID, matching the string-tagged
// namespaces the graph model is built from (task names as-is,
// "OPTION_<n>", "OPTION_<n><suffix>", "CREATE_NODE_<k>").
func (id ID) String() string {
	switch id.Kind {
	case KindTask:
		return id.Name
	case KindOption:
		return fmt.Sprintf("OPTION_%d", id.Counter)
	case KindFile:
		return fmt.Sprintf("OPTION_%d%s", id.Counter, id.Suffix)
	case KindPlaceholder:
		return fmt.Sprintf("CREATE_NODE_%d", id.Counter)
	default:
		return fmt.Sprintf("<unknown-id:%+v>", struct {
			Kind    Kind
			Name    string
			Counter int
			Suffix  string
		}{id.Kind, id.Name, id.Counter, id.Suffix})
	}
}

// Allocator hands out monotonically increasing counters for option and
// placeholder IDs. It is not safe for concurrent use: graph compilation
// runs single-threaded within one compiler invocation.
type Allocator struct {
	nextOption      int
	nextPlaceholder int
}

// NewAllocator creates a fresh, zeroed Allocator.
func NewAllocator() *Allocator {
	return &Allocator{}
}

// NextOption allocates and returns the next OPTION_<n> ID.
func (a *Allocator) NextOption() ID {
	a.nextOption++
	return Option(a.nextOption)
}

// NextPlaceholder allocates and returns the next CREATE_NODE_<k> ID.
func (a *Allocator) NextPlaceholder() ID {
	a.nextPlaceholder++
	return Placeholder(a.nextPlaceholder)
}
