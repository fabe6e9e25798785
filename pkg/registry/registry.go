// Package registry provides storage and retrieval of tool definitions,
// pipeline definitions, and exported parameter sets.
package registry

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind identifies what a Record holds.
type Kind string

const (
	KindTool         Kind = "tool"
	KindPipeline     Kind = "pipeline"
	KindParameterSet Kind = "parameterset"
)

// Record is a stored tool document, pipeline document, or exported
// parameter set, keyed by a generated ID.
type Record struct {
	ID          string          `json:"id"`
	Kind        Kind            `json:"kind"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Data        json.RawMessage `json:"data"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Summary is a lightweight reference to a Record for listing.
type Summary struct {
	ID          string    `json:"id"`
	Kind        Kind      `json:"kind"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Store defines the interface for registry storage operations.
type Store interface {
	// Save creates a new record and returns its ID.
	Save(kind Kind, name, description string, data json.RawMessage) (string, error)

	// Update replaces an existing record's name, description, and data.
	Update(id, name, description string, data json.RawMessage) error

	// Load retrieves a record by ID.
	Load(id string) (*Record, error)

	// Delete removes a record by ID.
	Delete(id string) error

	// List returns summaries of every stored record, optionally filtered
	// by kind. Pass "" to list all kinds.
	List(kind Kind) []Summary

	// Exists checks whether a record exists.
	Exists(id string) bool
}

// InMemoryStore implements Store using in-memory storage. Suitable for a
// single compiler process; callers needing durability across restarts
// should implement Store against a persistent backend.
type InMemoryStore struct {
	records map[string]*Record
	mu      sync.RWMutex
}

// NewInMemoryStore creates a new in-memory registry store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		records: make(map[string]*Record),
	}
}

// Save creates a new record and returns its ID.
func (s *InMemoryStore) Save(kind Kind, name, description string, data json.RawMessage) (string, error) {
	if name == "" {
		return "", ErrNameRequired
	}

	if len(data) == 0 {
		return "", ErrDataRequired
	}

	var temp interface{}
	if err := json.Unmarshal(data, &temp); err != nil {
		return "", ErrInvalidData
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New().String()
	now := time.Now()

	s.records[id] = &Record{
		ID:          id,
		Kind:        kind,
		Name:        name,
		Description: description,
		Data:        data,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	return id, nil
}

// Update replaces an existing record's name, description, and data.
func (s *InMemoryStore) Update(id, name, description string, data json.RawMessage) error {
	if id == "" {
		return ErrIDRequired
	}

	if name == "" {
		return ErrNameRequired
	}

	if len(data) == 0 {
		return ErrDataRequired
	}

	var temp interface{}
	if err := json.Unmarshal(data, &temp); err != nil {
		return ErrInvalidData
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record, exists := s.records[id]
	if !exists {
		return ErrNotFound
	}

	record.Name = name
	record.Description = description
	record.Data = data
	record.UpdatedAt = time.Now()

	return nil
}

// Load retrieves a record by ID.
func (s *InMemoryStore) Load(id string) (*Record, error) {
	if id == "" {
		return nil, ErrIDRequired
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	record, exists := s.records[id]
	if !exists {
		return nil, ErrNotFound
	}

	cp := *record
	cp.Data = make(json.RawMessage, len(record.Data))
	copy(cp.Data, record.Data)

	return &cp, nil
}

// Delete removes a record by ID.
func (s *InMemoryStore) Delete(id string) error {
	if id == "" {
		return ErrIDRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[id]; !exists {
		return ErrNotFound
	}

	delete(s.records, id)

	return nil
}

// List returns summaries of every stored record, optionally filtered by
// kind. Pass "" to list all kinds.
func (s *InMemoryStore) List(kind Kind) []Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]Summary, 0, len(s.records))

	for _, record := range s.records {
		if kind != "" && record.Kind != kind {
			continue
		}
		summaries = append(summaries, Summary{
			ID:          record.ID,
			Kind:        record.Kind,
			Name:        record.Name,
			Description: record.Description,
			CreatedAt:   record.CreatedAt,
			UpdatedAt:   record.UpdatedAt,
		})
	}

	return summaries
}

// Exists checks whether a record exists.
func (s *InMemoryStore) Exists(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.records[id]
	return exists
}
