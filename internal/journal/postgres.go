package journal

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// TableName is the journal table.
const TableName = "quote_journal"

// DefaultBatchSize triggers a flush from Record once this many entries are buffered.
const DefaultBatchSize = 500

// Schema creates the journal table. On TimescaleDB the table can be turned
// into a hypertable on ts; plain PostgreSQL works as is.
const Schema = `
CREATE TABLE IF NOT EXISTS quote_journal (
	ts       TIMESTAMPTZ      NOT NULL,
	strategy TEXT             NOT NULL,
	ticker   TEXT             NOT NULL,
	spot     DOUBLE PRECISION,
	strike   DOUBLE PRECISION,
	hours    DOUBLE PRECISION,
	fair     DOUBLE PRECISION,
	bid      SMALLINT         NOT NULL,
	ask      SMALLINT         NOT NULL,
	outcome  TEXT             NOT NULL,
	sides    TEXT[]
)`

var columns = []string{"ts", "strategy", "ticker", "spot", "strike", "hours", "fair", "bid", "ask", "outcome", "sides"}

// DB is the subset of *pgxpool.Pool the journal needs.
type DB interface {
	CopyFrom(ctx context.Context, table pgx.Identifier, columns []string, src pgx.CopyFromSource) (int64, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Ping(ctx context.Context) error
}

// Postgres buffers entries and writes them with COPY.
type Postgres struct {
	db        DB
	batchSize int
	logger    *slog.Logger

	mu    sync.Mutex
	batch []Entry

	// Metrics
	inserts int64
	errors  int64
}

// NewPostgres creates a Postgres journal. batchSize <= 0 uses DefaultBatchSize.
func NewPostgres(db DB, batchSize int, logger *slog.Logger) *Postgres {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Postgres{
		db:        db,
		batchSize: batchSize,
		logger:    logger,
		batch:     make([]Entry, 0, batchSize),
	}
}

// EnsureSchema creates the journal table if it does not exist.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("journal: create %s: %w", TableName, err)
	}
	return nil
}

// Record buffers e, flushing when the batch is full.
func (p *Postgres) Record(ctx context.Context, e Entry) error {
	p.mu.Lock()
	p.batch = append(p.batch, e)
	shouldFlush := len(p.batch) >= p.batchSize
	p.mu.Unlock()

	if shouldFlush {
		return p.Flush(ctx)
	}
	return nil
}

// Flush writes the buffered batch. On failure the batch is dropped and counted.
func (p *Postgres) Flush(ctx context.Context) error {
	p.mu.Lock()
	if len(p.batch) == 0 {
		p.mu.Unlock()
		return nil
	}

	// Take ownership of current batch
	batch := p.batch
	p.batch = make([]Entry, 0, p.batchSize)
	p.mu.Unlock()

	n, err := p.db.CopyFrom(ctx, pgx.Identifier{TableName}, columns, pgx.CopyFromSlice(len(batch), func(i int) ([]any, error) {
		e := batch[i]
		return []any{e.Time, e.Strategy, e.Ticker, e.Spot, e.Strike, e.Hours, e.Fair, int16(e.Bid), int16(e.Ask), e.Outcome, e.Sides}, nil
	}))

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.errors++
		p.logger.Error("journal copy failed", "error", err, "count", len(batch))
		return fmt.Errorf("journal: copy %d entries: %w", len(batch), err)
	}
	p.inserts += n

	p.logger.Debug("journal flushed", "count", n)
	return nil
}

// Stats returns inserted rows and failed flushes.
func (p *Postgres) Stats() (inserts, errors int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inserts, p.errors
}

// Ping checks the database connection.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.db.Ping(ctx)
}

// Close flushes whatever is buffered. The pool is owned by the caller.
func (p *Postgres) Close() error {
	return p.Flush(context.Background())
}
