package rest

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/flowgraph/core/internal/infrastructure/storage"
	"github.com/flowgraph/core/internal/infrastructure/websocket"
	"github.com/flowgraph/core/pkg/compiler"
)

// CompileGraphRequest is the optional request body for
// POST /api/v1/graphs/{id}/compiles. An empty body compiles with the
// package defaults.
type CompileGraphRequest struct {
	MaxIterations int  `json:"max_iterations,omitempty"`
	Trace         bool `json:"trace,omitempty"`
}

// CompileResponse is the JSON rendering of a CompileRecord.
type CompileResponse struct {
	ID          string                   `json:"id"`
	GraphID     string                   `json:"graph_id"`
	Status      storage.CompileStatus    `json:"status"`
	Iterations  int                      `json:"iterations"`
	Diagnostics []compiler.Diagnostic    `json:"diagnostics,omitempty"`
	Program     *storage.ProgramSnapshot `json:"program,omitempty"`
	CreatedAt   time.Time                `json:"created_at"`
}

func compileToResponse(c storage.CompileRecord) CompileResponse {
	return CompileResponse{
		ID:          c.ID.String(),
		GraphID:     c.GraphID.String(),
		Status:      c.Status,
		Iterations:  c.Iterations,
		Diagnostics: c.Diagnostics,
		Program:     c.Program,
		CreatedAt:   c.CreatedAt,
	}
}

// handleCompileGraph handles POST /api/v1/graphs/{id}/compiles. It runs
// the extract/solve/elaborate/lower pipeline against the stored draft,
// persists the outcome, and streams iteration-by-iteration progress to
// any websocket client subscribed to this graph or compile run.
func (s *Server) handleCompileGraph(w http.ResponseWriter, r *http.Request) {
	graphID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid graph id")
		return
	}

	graph, err := s.store.GetGraph(r.Context(), graphID)
	if err != nil {
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusNotFound, "graph not found")
			return
		}
		s.logger.Error("failed to get graph", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to get graph")
		return
	}

	var req CompileGraphRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	compileID := uuid.New()
	opts := compiler.Options{MaxIterations: req.MaxIterations, Trace: req.Trace}
	if s.broadcast != nil {
		s.broadcast.Broadcast("", graphID.String(), compileID.String(),
			websocket.NewWSEvent(websocket.EventCompileStarted, graphID.String(), compileID.String()))
		opts.Observer = websocket.NewSocketObserver(s.broadcast, graphID.String(), compileID.String())
	}

	result, diags := compiler.Compile(r.Context(), graph.Draft, s.registry, opts)

	record := storage.CompileRecord{
		ID:          compileID,
		GraphID:     graphID,
		Diagnostics: diags,
		CreatedAt:   time.Now(),
	}
	if result != nil {
		record.Status = storage.CompileStatusSucceeded
		record.Iterations = result.Iterations
		record.Program = storage.NewProgramSnapshot(result.Program)
	} else {
		record.Status = storage.CompileStatusFailed
	}

	if err := s.store.SaveCompile(r.Context(), record); err != nil {
		s.logger.Error("failed to save compile record", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to save compile record")
		return
	}

	status := http.StatusOK
	if result == nil {
		status = http.StatusUnprocessableEntity
	}
	s.respondJSON(w, status, compileToResponse(record))
}

// handleListCompiles handles GET /api/v1/graphs/{id}/compiles
func (s *Server) handleListCompiles(w http.ResponseWriter, r *http.Request) {
	graphID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid graph id")
		return
	}

	compiles, err := s.store.ListCompilesByGraph(r.Context(), graphID)
	if err != nil {
		s.logger.Error("failed to list compiles", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to list compiles")
		return
	}

	response := make([]CompileResponse, 0, len(compiles))
	for _, c := range compiles {
		response = append(response, compileToResponse(c))
	}
	s.respondJSON(w, http.StatusOK, response)
}

// handleGetCompile handles GET /api/v1/compiles/{id}
func (s *Server) handleGetCompile(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid compile id")
		return
	}

	compile, err := s.store.GetCompile(r.Context(), id)
	if err != nil {
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusNotFound, "compile not found")
			return
		}
		s.logger.Error("failed to get compile", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to get compile")
		return
	}

	s.respondJSON(w, http.StatusOK, compileToResponse(compile))
}
