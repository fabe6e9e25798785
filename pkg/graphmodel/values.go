package graphmodel

import "sort"

// Values maps a one-based iteration number to the ordered list of string
// values bound for that iteration. Small dense integer keys are kept as a
// map rather than a slice because most options only ever populate key 1;
// a slice would force callers to reason about a phantom index 0.
type Values map[int][]string

// At returns the values for the requested iteration. If no values were
// recorded for that iteration, it falls back to iteration 1 (the common
// case of a single-valued option read during a later, multi-iteration
// task's binding pass). Returns nil if neither is present.
func (v Values) At(iteration int) []string {
	if vals, ok := v[iteration]; ok {
		return vals
	}
	if vals, ok := v[1]; ok {
		return vals
	}
	return nil
}

// IterationCount returns the number of distinct iterations stored.
func (v Values) IterationCount() int {
	return len(v)
}

// Iterations returns the sorted list of iteration numbers present.
func (v Values) Iterations() []int {
	out := make([]int, 0, len(v))
	for k := range v {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}

// Validate checks invariant 6: the iteration keys must form a dense
// {1..N} range (or be empty).
func (v Values) Validate() error {
	if len(v) == 0 {
		return nil
	}
	n := len(v)
	for i := 1; i <= n; i++ {
		if _, ok := v[i]; !ok {
			return ErrNonDenseIterations
		}
	}
	return nil
}

// Set overwrites the values for a single iteration.
func (v Values) Set(iteration int, values []string) {
	v[iteration] = values
}

// Max returns the maximum iteration count stored across the supplied
// Values, per the scheduler's dataset-count rule: the max over the number
// of iterations present in each predecessor option.
func Max(vs ...Values) int {
	max := 0
	for _, v := range vs {
		if n := v.IterationCount(); n > max {
			max = n
		}
	}
	return max
}
