// Package registry provides storage and retrieval of tool definitions,
// pipeline definitions, and exported parameter sets.
//
// # Usage
//
//	store := registry.NewInMemoryStore()
//
//	// Save a pipeline definition
//	id, err := store.Save(registry.KindPipeline, "etl-daily", "", pipelineJSON)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Load it back
//	record, err := store.Load(id)
//
//	// List every stored tool definition
//	tools := store.List(registry.KindTool)
//
// # Persistence
//
// InMemoryStore is suitable for a single compiler process. Callers that
// need registry contents to survive a restart should implement Store
// against a persistent backend.
package registry
