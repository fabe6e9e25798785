package ids

import "testing"

func TestTaskID(t *testing.T) {
	id := Task("align_reads")
	if id.Kind != KindTask {
		t.Fatalf("Kind = %v, want %v", id.Kind, KindTask)
	}
	if id.Name != "align_reads" {
		t.Fatalf("Name = %q, want %q", id.Name, "align_reads")
	}
	if id.String() != "align_reads" {
		t.Fatalf("String() = %q, want %q", id.String(), "align_reads")
	}
}

func TestOptionID(t *testing.T) {
	id := Option(3)
	if id.Kind != KindOption {
		t.Fatalf("Kind = %v, want %v", id.Kind, KindOption)
	}
	if got, want := id.String(), "OPTION_3"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestPlaceholderID(t *testing.T) {
	id := Placeholder(5)
	if got, want := id.String(), "CREATE_NODE_5"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestFileID(t *testing.T) {
	id := File(2, "_FILE")
	if got, want := id.String(), "OPTION_2_FILE"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}

	second := File(2, "_FILE_2")
	if got, want := second.String(), "OPTION_2_FILE_2"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestWithSuffix(t *testing.T) {
	id := File(4, "_FILE")
	renamed := id.WithSuffix("_1")

	if id.Suffix != "_FILE" {
		t.Fatalf("original suffix mutated: got %q", id.Suffix)
	}
	if renamed.Suffix != "_1" {
		t.Fatalf("renamed.Suffix = %q, want %q", renamed.Suffix, "_1")
	}
	if renamed.Counter != id.Counter || renamed.Kind != id.Kind {
		t.Fatalf("WithSuffix changed non-suffix fields: %+v", renamed)
	}
}

func TestIsZero(t *testing.T) {
	var zero ID
	if !zero.IsZero() {
		t.Fatalf("zero value should report IsZero")
	}
	if Task("x").IsZero() {
		t.Fatalf("Task(\"x\") should not report IsZero")
	}
	if Option(1).IsZero() {
		t.Fatalf("Option(1) should not report IsZero")
	}
}

func TestStringUnknownKind(t *testing.T) {
	id := ID{Kind: "bogus"}
	got := id.String()
	if got == "" {
		t.Fatalf("expected non-empty fallback string for unknown kind")
	}
}

func TestAllocatorSequencing(t *testing.T) {
	a := NewAllocator()

	o1 := a.NextOption()
	o2 := a.NextOption()
	p1 := a.NextPlaceholder()
	o3 := a.NextOption()
	p2 := a.NextPlaceholder()

	if o1.Counter != 1 || o2.Counter != 2 || o3.Counter != 3 {
		t.Fatalf("option counters not sequential: %d, %d, %d", o1.Counter, o2.Counter, o3.Counter)
	}
	if p1.Counter != 1 || p2.Counter != 2 {
		t.Fatalf("placeholder counters not sequential: %d, %d", p1.Counter, p2.Counter)
	}
	if p1.Kind != KindPlaceholder || o1.Kind != KindOption {
		t.Fatalf("allocator returned wrong kinds: %+v %+v", p1, o1)
	}
}

func TestAllocatorIndependentSequences(t *testing.T) {
	a := NewAllocator()
	a.NextPlaceholder()
	a.NextPlaceholder()
	o := a.NextOption()

	if o.Counter != 1 {
		t.Fatalf("option sequence should be independent of placeholder sequence, got counter %d", o.Counter)
	}
}
