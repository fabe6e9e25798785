package graphmodel

import (
	"reflect"
	"testing"
)

func TestValuesAtFallsBackToIterationOne(t *testing.T) {
	v := Values{1: {"a.bam"}}

	if got := v.At(1); !reflect.DeepEqual(got, []string{"a.bam"}) {
		t.Fatalf("At(1) = %v, want [a.bam]", got)
	}
	if got := v.At(3); !reflect.DeepEqual(got, []string{"a.bam"}) {
		t.Fatalf("At(3) should fall back to iteration 1, got %v", got)
	}
}

func TestValuesAtNilWhenEmpty(t *testing.T) {
	v := Values{}
	if got := v.At(1); got != nil {
		t.Fatalf("At(1) on empty Values = %v, want nil", got)
	}
}

func TestValuesAtPrefersExactIteration(t *testing.T) {
	v := Values{1: {"a"}, 2: {"b"}}
	if got := v.At(2); !reflect.DeepEqual(got, []string{"b"}) {
		t.Fatalf("At(2) = %v, want [b]", got)
	}
}

func TestValuesIterationCount(t *testing.T) {
	v := Values{1: {"a"}, 2: {"b"}, 3: {"c"}}
	if got := v.IterationCount(); got != 3 {
		t.Fatalf("IterationCount() = %d, want 3", got)
	}
}

func TestValuesIterations(t *testing.T) {
	v := Values{3: {"c"}, 1: {"a"}, 2: {"b"}}
	got := v.Iterations()
	want := []int{1, 2, 3}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Iterations() = %v, want %v", got, want)
	}
}

func TestValuesValidateDenseRange(t *testing.T) {
	v := Values{1: {"a"}, 2: {"b"}}
	if err := v.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}

func TestValuesValidateEmptyIsValid(t *testing.T) {
	v := Values{}
	if err := v.Validate(); err != nil {
		t.Fatalf("Validate() on empty Values = %v, want nil", err)
	}
}

func TestValuesValidateRejectsGap(t *testing.T) {
	v := Values{1: {"a"}, 3: {"c"}}
	if err := v.Validate(); err != ErrNonDenseIterations {
		t.Fatalf("Validate() = %v, want ErrNonDenseIterations", err)
	}
}

func TestValuesSet(t *testing.T) {
	v := Values{}
	v.Set(1, []string{"x"})
	if !reflect.DeepEqual(v.At(1), []string{"x"}) {
		t.Fatalf("Set/At roundtrip failed: %v", v.At(1))
	}
}

func TestMax(t *testing.T) {
	a := Values{1: {"a"}}
	b := Values{1: {"a"}, 2: {"b"}, 3: {"c"}}
	c := Values{}

	if got := Max(a, b, c); got != 3 {
		t.Fatalf("Max() = %d, want 3", got)
	}
	if got := Max(); got != 0 {
		t.Fatalf("Max() with no args = %d, want 0", got)
	}
	if got := Max(c); got != 0 {
		t.Fatalf("Max() of empty Values = %d, want 0", got)
	}
}
