package observability

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// breadcrumbRow is one flushed breadcrumb, timestamped on arrival.
type breadcrumbRow struct {
	Timestamp time.Time
	CompileID string
	Breadcrumb
}

// BufferedSQLObserverConfig configures a BufferedSQLObserver. Unlike
// the ClickHouse-specific logger this is generalized from, DB is any
// database/sql connection — this module has no ClickHouse dependency
// to justify, and every SQL dialect in the pack (pgdriver included)
// speaks database/sql.
type BufferedSQLObserverConfig struct {
	DB            *sql.DB
	TableName     string
	CompileID     string
	BatchSize     int
	FlushInterval time.Duration
}

// BufferedSQLObserver batches breadcrumb rows and writes them
// asynchronously, the same batched-background-flush shape this
// codebase uses to ship execution log events to ClickHouse — durable
// replay of exactly why a particular compile failed to converge.
type BufferedSQLObserver struct {
	db            *sql.DB
	tableName     string
	compileID     string
	batchSize     int
	flushInterval time.Duration

	mu     sync.Mutex
	buffer []breadcrumbRow
	closed bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewBufferedSQLObserver creates a BufferedSQLObserver and starts its
// background flusher.
func NewBufferedSQLObserver(cfg BufferedSQLObserverConfig) (*BufferedSQLObserver, error) {
	if cfg.DB == nil {
		return nil, fmt.Errorf("observability: BufferedSQLObserver requires a non-nil DB")
	}
	tableName := cfg.TableName
	if tableName == "" {
		tableName = "compile_breadcrumbs"
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 50
	}
	flushInterval := cfg.FlushInterval
	if flushInterval <= 0 {
		flushInterval = 5 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())
	o := &BufferedSQLObserver{
		db:            cfg.DB,
		tableName:     tableName,
		compileID:     cfg.CompileID,
		batchSize:     batchSize,
		flushInterval: flushInterval,
		buffer:        make([]breadcrumbRow, 0, batchSize),
		ctx:           ctx,
		cancel:        cancel,
	}
	o.wg.Add(1)
	go o.backgroundFlusher()
	return o, nil
}

func (o *BufferedSQLObserver) backgroundFlusher() {
	defer o.wg.Done()
	ticker := time.NewTicker(o.flushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-o.ctx.Done():
			o.flush()
			return
		case <-ticker.C:
			o.flush()
		}
	}
}

func (o *BufferedSQLObserver) enqueue(b Breadcrumb) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	o.buffer = append(o.buffer, breadcrumbRow{Timestamp: time.Now(), CompileID: o.compileID, Breadcrumb: b})
	if len(o.buffer) >= o.batchSize {
		go o.flush()
	}
}

func (o *BufferedSQLObserver) flush() {
	o.mu.Lock()
	if len(o.buffer) == 0 {
		o.mu.Unlock()
		return
	}
	rows := o.buffer
	o.buffer = make([]breadcrumbRow, 0, o.batchSize)
	o.mu.Unlock()

	if err := o.writeRows(rows); err != nil {
		log.Warn().Err(err).Str("table", o.tableName).Int("rows", len(rows)).Msg("observability: failed to flush compile breadcrumbs")
	}
}

func (o *BufferedSQLObserver) writeRows(rows []breadcrumbRow) error {
	// Not o.ctx: Close cancels it before the final flush runs.
	ctx := context.Background()
	tx, err := o.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		`INSERT INTO %s (timestamp, compile_id, kind, iteration, open_obligations, derived, total, applied, blocked) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		o.tableName,
	))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.Timestamp, r.CompileID, string(r.Kind), r.Iteration, r.OpenObligations, r.Derived, r.Total, r.Applied, r.Blocked); err != nil {
			return fmt.Errorf("insert breadcrumb row: %w", err)
		}
	}
	return tx.Commit()
}

// Close flushes any remaining breadcrumbs and stops the background
// flusher.
func (o *BufferedSQLObserver) Close() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.closed = true
	o.mu.Unlock()
	o.cancel()
	o.wg.Wait()
}

func (o *BufferedSQLObserver) OnIterationStart(iteration int, openObligations int) {
	o.enqueue(Breadcrumb{Kind: BreadcrumbIterationStart, Iteration: iteration, OpenObligations: openObligations})
}

func (o *BufferedSQLObserver) OnObligationsDerived(iteration int, derived int, total int) {
	o.enqueue(Breadcrumb{Kind: BreadcrumbObligationsDerived, Iteration: iteration, Derived: derived, Total: total})
}

func (o *BufferedSQLObserver) OnPlansApplied(iteration int, applied int, blocked int) {
	o.enqueue(Breadcrumb{Kind: BreadcrumbPlansApplied, Iteration: iteration, Applied: applied, Blocked: blocked})
}

func (o *BufferedSQLObserver) OnConverged(iteration int) {
	o.enqueue(Breadcrumb{Kind: BreadcrumbConverged, Iteration: iteration})
}

func (o *BufferedSQLObserver) OnNonConvergence(iteration int, openObligations int) {
	o.enqueue(Breadcrumb{Kind: BreadcrumbNonConvergence, Iteration: iteration, OpenObligations: openObligations})
}
