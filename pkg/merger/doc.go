// Package merger collapses the builder's disjoint per-task subgraphs into
// one unified graph by applying the pipeline's common-node table. Each
// common-node entry names a set of (task, argument) pairs that denote the
// same logical value; merging rewires every edge that touched a removed
// pair's node onto the surviving node and purges the rest.
//
// Merge walks the common-node table in order. For each entry it runs
// selection and placeholder materialisation (resolveTarget) and then the
// option-edge and file-node rewiring of every other pair (mergePair) before
// moving to the next entry, so these four phases are not separated across
// common nodes: a later entry's selection sees the rewiring already done
// for earlier entries. Once the table is done, purge, the consistency
// check (checkEdges), retention/streaming annotation (applyStreamTargets)
// and greedy marking (applyGreedyMarking) run in that order over the whole
// graph.
package merger
