// Package config centralizes the graph compiler's size limits: how many
// tasks and common nodes a pipeline may declare, how many extensions a
// filename-stub argument may expand into, how many dataset iterations an
// option's values may carry, and how many parameter sets a tool or
// pipeline may register. Every limit defaults to a generous value and
// treats 0 as unlimited.
package config
