package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/pipeweave/graphc/pkg/registry"
)

// SaveRecordRequest is the body of a registry save request.
type SaveRecordRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Data        json.RawMessage `json:"data"`
}

// SaveRecordResponse is the response from a registry save request.
type SaveRecordResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id,omitempty"`
	Error   string `json:"error,omitempty"`
}

// LoadRecordResponse is the response from a registry load request.
type LoadRecordResponse struct {
	Success bool             `json:"success"`
	Record  *registry.Record `json:"record,omitempty"`
	Error   string           `json:"error,omitempty"`
}

// ListRecordsResponse is the response from a registry list request.
type ListRecordsResponse struct {
	Success bool               `json:"success"`
	Records []registry.Summary `json:"records"`
	Count   int                `json:"count"`
}

// handlePipelines handles POST (save) and GET (list) for pipeline definitions.
func (s *Server) handlePipelines(w http.ResponseWriter, r *http.Request) {
	s.handleKindCollection(w, r, registry.KindPipeline)
}

// handlePipelineByID handles GET/DELETE for a single pipeline definition.
func (s *Server) handlePipelineByID(w http.ResponseWriter, r *http.Request) {
	id := pathID(r.URL.Path, "/api/v1/pipelines/")
	s.handleKindRecord(w, r, id)
}

// handleTools handles POST (save) and GET (list) for tool definitions.
func (s *Server) handleTools(w http.ResponseWriter, r *http.Request) {
	s.handleKindCollection(w, r, registry.KindTool)
}

// handleToolByID handles GET/DELETE for a single tool definition.
func (s *Server) handleToolByID(w http.ResponseWriter, r *http.Request) {
	id := pathID(r.URL.Path, "/api/v1/tools/")
	s.handleKindRecord(w, r, id)
}

func (s *Server) handleKindCollection(w http.ResponseWriter, r *http.Request, kind registry.Kind) {
	switch r.Method {
	case http.MethodPost:
		s.handleSaveRecord(w, r, kind)
	case http.MethodGet:
		s.handleListRecords(w, r, kind)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleKindRecord(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		s.handleLoadRecord(w, r, id)
	case http.MethodDelete:
		s.handleDeleteRecord(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleSaveRecord(w http.ResponseWriter, r *http.Request, kind registry.Kind) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxRequestBodySize)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeErrorResponse(w, "Failed to read request body", http.StatusBadRequest, err)
		return
	}

	var req SaveRecordRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeErrorResponse(w, "Failed to parse request", http.StatusBadRequest, err)
		return
	}

	id, err := s.registry.Save(kind, req.Name, req.Description, req.Data)
	if err != nil {
		s.writeJSONResponse(w, http.StatusBadRequest, SaveRecordResponse{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	s.logger.WithField("id", id).WithField("name", req.Name).Info("record saved")

	s.writeJSONResponse(w, http.StatusCreated, SaveRecordResponse{
		Success: true,
		ID:      id,
	})
}

func (s *Server) handleLoadRecord(w http.ResponseWriter, r *http.Request, id string) {
	if id == "" {
		s.writeJSONResponse(w, http.StatusBadRequest, LoadRecordResponse{
			Success: false,
			Error:   "id is required",
		})
		return
	}

	record, err := s.registry.Load(id)
	if err != nil {
		s.writeJSONResponse(w, http.StatusNotFound, LoadRecordResponse{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	s.writeJSONResponse(w, http.StatusOK, LoadRecordResponse{
		Success: true,
		Record:  record,
	})
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request, kind registry.Kind) {
	records := s.registry.List(kind)

	s.writeJSONResponse(w, http.StatusOK, ListRecordsResponse{
		Success: true,
		Records: records,
		Count:   len(records),
	})
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request, id string) {
	if id == "" {
		s.writeErrorResponse(w, "id is required", http.StatusBadRequest, nil)
		return
	}

	if err := s.registry.Delete(id); err != nil {
		s.writeJSONResponse(w, http.StatusNotFound, map[string]interface{}{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	s.logger.WithField("id", id).Info("record deleted")

	s.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"success": true,
	})
}
