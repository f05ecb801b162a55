package repository

import (
	"context"
	"strings"
	"testing"

	"marketpulse/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/trace"
)

var testTracer = trace.NewNoopTracerProvider().Tracer("test")

type fakeRow struct {
	err  error
	scan func(dest ...any) error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if r.scan != nil {
		return r.scan(dest...)
	}
	return nil
}

type fakePool struct {
	execSQL  []string
	execArgs [][]any
	row      fakeRow
}

func (p *fakePool) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	p.execSQL = append(p.execSQL, sql)
	p.execArgs = append(p.execArgs, args)
	return pgconn.CommandTag{}, nil
}

func (p *fakePool) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	return nil
}

func (p *fakePool) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, pgx.ErrNoRows
}

func (p *fakePool) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return p.row
}

func TestQuoteRepositoryUpsertWritesFullRecord(t *testing.T) {
	t.Parallel()

	pool := &fakePool{}
	repo := NewQuoteRepository(pool, testTracer)

	change := 2.11
	err := repo.Upsert(context.Background(), domain.Quote{
		Symbol:    "ETH",
		Source:    domain.AssetCrypto,
		Price:     3456.78,
		Change24h: &change,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pool.execSQL) != 1 {
		t.Fatalf("expected one statement, got %d", len(pool.execSQL))
	}
	if !strings.Contains(pool.execSQL[0], "ON CONFLICT (symbol, source) DO UPDATE") {
		t.Fatalf("expected atomic upsert statement, got %s", pool.execSQL[0])
	}
	args := pool.execArgs[0]
	if args[0] != "ETH" || args[1] != "crypto" || args[2] != 3456.78 {
		t.Fatalf("unexpected upsert args: %+v", args)
	}
}

func TestQuoteRepositoryGetAbsent(t *testing.T) {
	t.Parallel()

	pool := &fakePool{row: fakeRow{err: pgx.ErrNoRows}}
	repo := NewQuoteRepository(pool, testTracer)

	quote, err := repo.Get(context.Background(), "BTC", domain.AssetCrypto)
	if err != nil {
		t.Fatalf("expected absent key to return nil error, got %v", err)
	}
	if quote != nil {
		t.Fatalf("expected nil quote for absent key, got %+v", quote)
	}
}
