package registry

import (
	"encoding/json"
	"testing"
)

func TestInMemoryStore_Save(t *testing.T) {
	store := NewInMemoryStore()

	data := json.RawMessage(`{"tasks": [], "nodes": []}`)

	tests := []struct {
		name        string
		recordName  string
		description string
		data        json.RawMessage
		wantErr     bool
	}{
		{
			name:        "valid pipeline",
			recordName:  "etl-daily",
			description: "nightly ETL pipeline",
			data:        data,
			wantErr:     false,
		},
		{
			name:        "empty name",
			recordName:  "",
			description: "description",
			data:        data,
			wantErr:     true,
		},
		{
			name:        "empty data",
			recordName:  "test",
			description: "description",
			data:        json.RawMessage{},
			wantErr:     true,
		},
		{
			name:        "invalid JSON data",
			recordName:  "test",
			description: "description",
			data:        json.RawMessage(`{invalid json`),
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := store.Save(KindPipeline, tt.recordName, tt.description, tt.data)

			if tt.wantErr {
				if err == nil {
					t.Error("Expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Errorf("Unexpected error: %v", err)
				return
			}

			if id == "" {
				t.Error("Expected non-empty ID")
			}
		})
	}
}

func TestInMemoryStore_Load(t *testing.T) {
	store := NewInMemoryStore()

	data := json.RawMessage(`{"tasks": [{"id": "t1"}]}`)
	id, err := store.Save(KindPipeline, "etl-daily", "nightly ETL", data)
	if err != nil {
		t.Fatalf("Failed to save record: %v", err)
	}

	record, err := store.Load(id)
	if err != nil {
		t.Fatalf("Failed to load record: %v", err)
	}

	if record.ID != id {
		t.Errorf("Expected ID %s, got %s", id, record.ID)
	}
	if record.Kind != KindPipeline {
		t.Errorf("Expected kind %s, got %s", KindPipeline, record.Kind)
	}
	if record.Name != "etl-daily" {
		t.Errorf("Expected name 'etl-daily', got %s", record.Name)
	}

	if _, err := store.Load("nonexistent"); err == nil {
		t.Error("Expected error loading nonexistent record")
	}

	if _, err := store.Load(""); err == nil {
		t.Error("Expected error loading with empty ID")
	}
}

func TestInMemoryStore_Update(t *testing.T) {
	store := NewInMemoryStore()

	data := json.RawMessage(`{"arguments": []}`)
	id, err := store.Save(KindTool, "samtools", "", data)
	if err != nil {
		t.Fatalf("Failed to save record: %v", err)
	}

	newData := json.RawMessage(`{"arguments": [{"longForm": "--input"}]}`)
	if err := store.Update(id, "samtools-sort", "updated description", newData); err != nil {
		t.Fatalf("Failed to update record: %v", err)
	}

	record, err := store.Load(id)
	if err != nil {
		t.Fatalf("Failed to load record: %v", err)
	}
	if record.Name != "samtools-sort" {
		t.Errorf("Expected updated name, got %s", record.Name)
	}
	if record.Description != "updated description" {
		t.Errorf("Expected updated description, got %s", record.Description)
	}

	if err := store.Update("nonexistent", "x", "", data); err == nil {
		t.Error("Expected error updating nonexistent record")
	}
}

func TestInMemoryStore_Delete(t *testing.T) {
	store := NewInMemoryStore()

	data := json.RawMessage(`{}`)
	id, err := store.Save(KindParameterSet, "default-extensions", "", data)
	if err != nil {
		t.Fatalf("Failed to save record: %v", err)
	}

	if !store.Exists(id) {
		t.Error("Expected record to exist before deletion")
	}

	if err := store.Delete(id); err != nil {
		t.Fatalf("Failed to delete record: %v", err)
	}

	if store.Exists(id) {
		t.Error("Expected record to not exist after deletion")
	}

	if err := store.Delete(id); err == nil {
		t.Error("Expected error deleting already-deleted record")
	}
}

func TestInMemoryStore_List(t *testing.T) {
	store := NewInMemoryStore()

	data := json.RawMessage(`{}`)
	if _, err := store.Save(KindTool, "samtools", "", data); err != nil {
		t.Fatalf("Failed to save tool: %v", err)
	}
	if _, err := store.Save(KindPipeline, "etl-daily", "", data); err != nil {
		t.Fatalf("Failed to save pipeline: %v", err)
	}
	if _, err := store.Save(KindPipeline, "etl-weekly", "", data); err != nil {
		t.Fatalf("Failed to save pipeline: %v", err)
	}

	all := store.List("")
	if len(all) != 3 {
		t.Errorf("Expected 3 records, got %d", len(all))
	}

	pipelines := store.List(KindPipeline)
	if len(pipelines) != 2 {
		t.Errorf("Expected 2 pipelines, got %d", len(pipelines))
	}

	tools := store.List(KindTool)
	if len(tools) != 1 {
		t.Errorf("Expected 1 tool, got %d", len(tools))
	}
}

func TestInMemoryStore_LoadReturnsACopy(t *testing.T) {
	store := NewInMemoryStore()

	data := json.RawMessage(`{"a":1}`)
	id, err := store.Save(KindTool, "samtools", "", data)
	if err != nil {
		t.Fatalf("Failed to save record: %v", err)
	}

	first, err := store.Load(id)
	if err != nil {
		t.Fatalf("Failed to load record: %v", err)
	}
	first.Data[0] = 'X'

	second, err := store.Load(id)
	if err != nil {
		t.Fatalf("Failed to load record: %v", err)
	}
	if string(second.Data) != `{"a":1}` {
		t.Errorf("Expected stored data to be unaffected by caller mutation, got %s", second.Data)
	}
}
