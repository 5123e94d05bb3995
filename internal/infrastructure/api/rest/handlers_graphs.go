package rest

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/flowgraph/core/internal/infrastructure/storage"
	"github.com/flowgraph/core/pkg/compiler"
)

// CreateGraphRequest is the request body for POST /api/v1/graphs.
type CreateGraphRequest struct {
	Name  string              `json:"name"`
	Draft compiler.DraftGraph `json:"draft"`
}

// GraphResponse is the JSON rendering of a GraphRecord.
type GraphResponse struct {
	ID        string              `json:"id"`
	Name      string              `json:"name"`
	Draft     compiler.DraftGraph `json:"draft"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

func graphToResponse(g storage.GraphRecord) GraphResponse {
	return GraphResponse{
		ID:        g.ID.String(),
		Name:      g.Name,
		Draft:     g.Draft,
		CreatedAt: g.CreatedAt,
		UpdatedAt: g.UpdatedAt,
	}
}

// handleCreateGraph handles POST /api/v1/graphs
func (s *Server) handleCreateGraph(w http.ResponseWriter, r *http.Request) {
	var req CreateGraphRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		s.respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	now := time.Now()
	record := storage.GraphRecord{
		ID:        uuid.New(),
		Name:      req.Name,
		Draft:     req.Draft,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.SaveGraph(r.Context(), record); err != nil {
		s.logger.Error("failed to save graph", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to save graph")
		return
	}

	s.respondJSON(w, http.StatusCreated, graphToResponse(record))
}

// handleListGraphs handles GET /api/v1/graphs
func (s *Server) handleListGraphs(w http.ResponseWriter, r *http.Request) {
	graphs, err := s.store.ListGraphs(r.Context())
	if err != nil {
		s.logger.Error("failed to list graphs", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to list graphs")
		return
	}

	response := make([]GraphResponse, 0, len(graphs))
	for _, g := range graphs {
		response = append(response, graphToResponse(g))
	}
	s.respondJSON(w, http.StatusOK, response)
}

// handleGetGraph handles GET /api/v1/graphs/{id}
func (s *Server) handleGetGraph(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid graph id")
		return
	}

	graph, err := s.store.GetGraph(r.Context(), id)
	if err != nil {
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusNotFound, "graph not found")
			return
		}
		s.logger.Error("failed to get graph", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to get graph")
		return
	}

	s.respondJSON(w, http.StatusOK, graphToResponse(graph))
}

// handleDeleteGraph handles DELETE /api/v1/graphs/{id}
func (s *Server) handleDeleteGraph(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid graph id")
		return
	}

	if err := s.store.DeleteGraph(r.Context(), id); err != nil {
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusNotFound, "graph not found")
			return
		}
		s.logger.Error("failed to delete graph", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to delete graph")
		return
	}

	s.respondJSON(w, http.StatusNoContent, nil)
}
