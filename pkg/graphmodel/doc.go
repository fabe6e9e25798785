// Package graphmodel defines the closed-record node and edge attribute
// types the graph compiler builds, merges, and schedules.
//
// Nodes come in three kinds (task, option, file); rather than a single
// struct with every field optional and meaningful only for some kinds,
// each kind gets its own attribute record (TaskData, OptionData,
// FileData) and Node holds exactly one of them, selected by Kind. This
// mirrors how the source configuration class carried these as three
// distinct Python classes rather than one dynamic attribute bag.
package graphmodel
