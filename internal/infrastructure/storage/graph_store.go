// Package storage persists authored graphs and their compile runs.
package storage

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/flowgraph/core/pkg/compiler"
)

var ErrNotFound = errors.New("storage: not found")

// GraphRecord is a named, persisted draft graph.
type GraphRecord struct {
	ID        uuid.UUID
	Name      string
	Draft     compiler.DraftGraph
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CompileStatus is the outcome of one compile run against a graph.
type CompileStatus string

const (
	CompileStatusSucceeded CompileStatus = "succeeded"
	CompileStatusFailed    CompileStatus = "failed"
)

// CompileRecord is one persisted compile run: its diagnostics and,
// when it succeeded, a snapshot of its lowered program.
type CompileRecord struct {
	ID          uuid.UUID
	GraphID     uuid.UUID
	Status      CompileStatus
	Iterations  int
	Diagnostics []compiler.Diagnostic
	Program     *ProgramSnapshot
	CreatedAt   time.Time
}

// GraphStore persists graphs and their compile history. Both the
// in-memory and Postgres-backed implementations satisfy it, the same
// swap-without-callers-noticing shape the workflow aggregate's
// repository interface gave the runtime engine.
type GraphStore interface {
	SaveGraph(ctx context.Context, g GraphRecord) error
	GetGraph(ctx context.Context, id uuid.UUID) (GraphRecord, error)
	ListGraphs(ctx context.Context) ([]GraphRecord, error)
	DeleteGraph(ctx context.Context, id uuid.UUID) error

	SaveCompile(ctx context.Context, c CompileRecord) error
	GetCompile(ctx context.Context, id uuid.UUID) (CompileRecord, error)
	ListCompilesByGraph(ctx context.Context, graphID uuid.UUID) ([]CompileRecord, error)

	Ping(ctx context.Context) error
	Close() error
}

// MemoryGraphStore is a mutex-guarded in-memory GraphStore, useful for
// tests and for running flowgraphd without a Postgres instance.
type MemoryGraphStore struct {
	mu       sync.RWMutex
	graphs   map[uuid.UUID]GraphRecord
	compiles map[uuid.UUID]CompileRecord
}

func NewMemoryGraphStore() *MemoryGraphStore {
	return &MemoryGraphStore{
		graphs:   make(map[uuid.UUID]GraphRecord),
		compiles: make(map[uuid.UUID]CompileRecord),
	}
}

func (s *MemoryGraphStore) SaveGraph(ctx context.Context, g GraphRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.graphs[g.ID] = g
	return nil
}

func (s *MemoryGraphStore) GetGraph(ctx context.Context, id uuid.UUID) (GraphRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.graphs[id]
	if !ok {
		return GraphRecord{}, ErrNotFound
	}
	return g, nil
}

func (s *MemoryGraphStore) ListGraphs(ctx context.Context) ([]GraphRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]GraphRecord, 0, len(s.graphs))
	for _, g := range s.graphs {
		out = append(out, g)
	}
	return out, nil
}

func (s *MemoryGraphStore) DeleteGraph(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.graphs[id]; !ok {
		return ErrNotFound
	}
	delete(s.graphs, id)
	return nil
}

func (s *MemoryGraphStore) SaveCompile(ctx context.Context, c CompileRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.compiles[c.ID] = c
	return nil
}

func (s *MemoryGraphStore) GetCompile(ctx context.Context, id uuid.UUID) (CompileRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.compiles[id]
	if !ok {
		return CompileRecord{}, ErrNotFound
	}
	return c, nil
}

func (s *MemoryGraphStore) ListCompilesByGraph(ctx context.Context, graphID uuid.UUID) ([]CompileRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []CompileRecord
	for _, c := range s.compiles {
		if c.GraphID == graphID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *MemoryGraphStore) Ping(ctx context.Context) error { return nil }
func (s *MemoryGraphStore) Close() error                   { return nil }
