package repository

import (
	"context"
	"errors"
	"time"

	"marketpulse/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/trace"
)

const createQuotesTable = `
CREATE TABLE IF NOT EXISTS quotes (
    symbol        TEXT        NOT NULL,
    source        TEXT        NOT NULL,
    price         NUMERIC     NOT NULL,
    change_24h    NUMERIC,
    change_30d    NUMERIC,
    observed_at   TIMESTAMPTZ NOT NULL,
    PRIMARY KEY (symbol, source)
);
`

type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// QuoteRepository is the durable last-known-quote store, keyed by
// (symbol, source). Upserts are single-row ON CONFLICT writes, so a
// concurrent reader never observes a torn record and concurrent
// writers resolve last-write-wins per key.
type QuoteRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewQuoteRepository(pool PgxPool, tracer trace.Tracer) *QuoteRepository {
	return &QuoteRepository{pool: pool, tracer: tracer}
}

func (r *QuoteRepository) RunMigrations(ctx context.Context) error {
	_, span := r.tracer.Start(ctx, "quote-repo.run-migrations")
	defer span.End()

	_, err := r.pool.Exec(ctx, createQuotesTable)
	return err
}

// Upsert overwrites the record for the quote's key, stamping
// observed_at with the current time.
func (r *QuoteRepository) Upsert(ctx context.Context, quote domain.Quote) error {
	_, span := r.tracer.Start(ctx, "quote-repo.upsert")
	defer span.End()

	_, err := r.pool.Exec(ctx,
		`INSERT INTO quotes (symbol, source, price, change_24h, change_30d, observed_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (symbol, source) DO UPDATE SET
		     price = EXCLUDED.price,
		     change_24h = EXCLUDED.change_24h,
		     change_30d = EXCLUDED.change_30d,
		     observed_at = EXCLUDED.observed_at`,
		quote.Symbol, string(quote.Source), quote.Price, quote.Change24h, quote.Change30d, time.Now().UTC(),
	)
	return err
}

// Get returns the stored quote for a key, or (nil, nil) when absent.
func (r *QuoteRepository) Get(ctx context.Context, symbol string, source domain.AssetClass) (*domain.Quote, error) {
	_, span := r.tracer.Start(ctx, "quote-repo.get")
	defer span.End()

	row := r.pool.QueryRow(ctx,
		`SELECT symbol, source, price, change_24h, change_30d, observed_at
		 FROM quotes
		 WHERE symbol = $1 AND source = $2`,
		symbol, string(source),
	)

	var q domain.Quote
	if err := row.Scan(&q.Symbol, &q.Source, &q.Price, &q.Change24h, &q.Change30d, &q.ObservedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &q, nil
}

// ListAll returns every stored quote ordered by symbol.
func (r *QuoteRepository) ListAll(ctx context.Context) ([]domain.Quote, error) {
	_, span := r.tracer.Start(ctx, "quote-repo.list-all")
	defer span.End()

	rows, err := r.pool.Query(ctx,
		`SELECT symbol, source, price, change_24h, change_30d, observed_at
		 FROM quotes
		 ORDER BY symbol, source`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var quotes []domain.Quote
	for rows.Next() {
		var q domain.Quote
		if err := rows.Scan(&q.Symbol, &q.Source, &q.Price, &q.Change24h, &q.Change30d, &q.ObservedAt); err != nil {
			return nil, err
		}
		quotes = append(quotes, q)
	}
	return quotes, rows.Err()
}
