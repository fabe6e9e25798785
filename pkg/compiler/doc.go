// Package compiler orchestrates a full compilation: builder, merger,
// originating-edge/additional-node/unset-flag passes, the parameter-set
// and evaluate-commands binders, required-argument verification, the
// scheduler, and the isolated-node check. It is the single entry point an
// external caller (the HTTP server, the one-shot CLI) drives.
package compiler
