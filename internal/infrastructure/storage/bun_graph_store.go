package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/flowgraph/core/pkg/compiler"
)

// BunGraphStore is the Postgres-backed GraphStore, used by flowgraphd
// when a DATABASE_DSN is configured.
type BunGraphStore struct {
	db *bun.DB
}

func NewBunGraphStore(dsn string) *BunGraphStore {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	return &BunGraphStore{db: db}
}

func (s *BunGraphStore) InitSchema(ctx context.Context) error {
	models := []interface{}{
		(*GraphModel)(nil),
		(*CompileModel)(nil),
	}
	for _, model := range models {
		if _, err := s.db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}

type GraphModel struct {
	bun.BaseModel `bun:"table:graphs,alias:g"`

	ID        uuid.UUID           `bun:"id,pk"`
	Name      string              `bun:"name"`
	Draft     compiler.DraftGraph `bun:"draft,type:jsonb"`
	CreatedAt time.Time           `bun:"created_at"`
	UpdatedAt time.Time           `bun:"updated_at"`
}

func newGraphModel(g GraphRecord) *GraphModel {
	return &GraphModel{
		ID:        g.ID,
		Name:      g.Name,
		Draft:     g.Draft,
		CreatedAt: g.CreatedAt,
		UpdatedAt: g.UpdatedAt,
	}
}

func (m *GraphModel) toRecord() GraphRecord {
	return GraphRecord{
		ID:        m.ID,
		Name:      m.Name,
		Draft:     m.Draft,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

type CompileModel struct {
	bun.BaseModel `bun:"table:compiles,alias:c"`

	ID          uuid.UUID             `bun:"id,pk"`
	GraphID     uuid.UUID             `bun:"graph_id"`
	Status      CompileStatus         `bun:"status"`
	Iterations  int                   `bun:"iterations"`
	Diagnostics []compiler.Diagnostic `bun:"diagnostics,type:jsonb"`
	Program     *ProgramSnapshot      `bun:"program,type:jsonb"`
	CreatedAt   time.Time             `bun:"created_at"`
}

func newCompileModel(c CompileRecord) *CompileModel {
	return &CompileModel{
		ID:          c.ID,
		GraphID:     c.GraphID,
		Status:      c.Status,
		Iterations:  c.Iterations,
		Diagnostics: c.Diagnostics,
		Program:     c.Program,
		CreatedAt:   c.CreatedAt,
	}
}

func (m *CompileModel) toRecord() CompileRecord {
	return CompileRecord{
		ID:          m.ID,
		GraphID:     m.GraphID,
		Status:      m.Status,
		Iterations:  m.Iterations,
		Diagnostics: m.Diagnostics,
		Program:     m.Program,
		CreatedAt:   m.CreatedAt,
	}
}

func (s *BunGraphStore) SaveGraph(ctx context.Context, g GraphRecord) error {
	model := newGraphModel(g)
	_, err := s.db.NewInsert().Model(model).
		On("CONFLICT (id) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("draft = EXCLUDED.draft").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

func (s *BunGraphStore) GetGraph(ctx context.Context, id uuid.UUID) (GraphRecord, error) {
	model := new(GraphModel)
	err := s.db.NewSelect().Model(model).Where("id = ?", id).Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return GraphRecord{}, ErrNotFound
		}
		return GraphRecord{}, err
	}
	return model.toRecord(), nil
}

func (s *BunGraphStore) ListGraphs(ctx context.Context) ([]GraphRecord, error) {
	var models []GraphModel
	if err := s.db.NewSelect().Model(&models).Order("created_at DESC").Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]GraphRecord, len(models))
	for i, m := range models {
		out[i] = m.toRecord()
	}
	return out, nil
}

func (s *BunGraphStore) DeleteGraph(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.NewDelete().Model((*GraphModel)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *BunGraphStore) SaveCompile(ctx context.Context, c CompileRecord) error {
	model := newCompileModel(c)
	_, err := s.db.NewInsert().Model(model).Exec(ctx)
	return err
}

func (s *BunGraphStore) GetCompile(ctx context.Context, id uuid.UUID) (CompileRecord, error) {
	model := new(CompileModel)
	err := s.db.NewSelect().Model(model).Where("id = ?", id).Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return CompileRecord{}, ErrNotFound
		}
		return CompileRecord{}, err
	}
	return model.toRecord(), nil
}

func (s *BunGraphStore) ListCompilesByGraph(ctx context.Context, graphID uuid.UUID) ([]CompileRecord, error) {
	var models []CompileModel
	if err := s.db.NewSelect().Model(&models).Where("graph_id = ?", graphID).Order("created_at DESC").Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]CompileRecord, len(models))
	for i, m := range models {
		out[i] = m.toRecord()
	}
	return out, nil
}

func (s *BunGraphStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *BunGraphStore) Close() error {
	return s.db.Close()
}
