// Package schema defines the wire types the builder consumes: tool
// argument schemas and pipeline definitions, plus the JSON Schema
// validation gate they pass through before being decoded into Go
// structs. Parsing and validating the surrounding configuration file
// format (YAML includes, comments, CLI flag files) remains an external
// collaborator's job; this package only owns the JSON documents the
// compiler itself reads, the same way the teacher's node decoders own
// validating their own node-data JSON shape before building a workflow
// graph from it.
package schema
