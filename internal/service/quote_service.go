package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"marketpulse/internal/domain"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
)

const quoteCacheTTL = 90 * time.Second

// QuoteStore is the durable last-known-quote store contract.
type QuoteStore interface {
	Upsert(ctx context.Context, quote domain.Quote) error
	Get(ctx context.Context, symbol string, source domain.AssetClass) (*domain.Quote, error)
	ListAll(ctx context.Context) ([]domain.Quote, error)
}

// QuoteProvider is the live-fetch slice of a market data provider.
type QuoteProvider interface {
	FetchQuote(ctx context.Context, symbol string) (*domain.Quote, error)
}

type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

// QuoteUpdate is one bulk-refresh input row.
type QuoteUpdate struct {
	Symbol    string   `json:"symbol"`
	Source    string   `json:"source"`
	Price     float64  `json:"price"`
	Change24h *float64 `json:"change_24h_pct,omitempty"`
	Change30d *float64 `json:"change_30d_pct,omitempty"`
}

// QuoteService layers the hot Redis cache over the durable store and
// falls back to a live provider fetch when both miss.
type QuoteService struct {
	tracer    trace.Tracer
	store     QuoteStore
	redis     RedisClient
	providers map[domain.AssetClass]QuoteProvider
}

func NewQuoteService(
	tracer trace.Tracer,
	store QuoteStore,
	redisClient RedisClient,
	providers map[domain.AssetClass]QuoteProvider,
) *QuoteService {
	return &QuoteService{
		tracer:    tracer,
		store:     store,
		redis:     redisClient,
		providers: providers,
	}
}

// GetQuote returns the freshest known quote for a key: Redis first,
// then the durable store, then a live provider fetch that refills
// both layers.
func (s *QuoteService) GetQuote(ctx context.Context, symbol string, class domain.AssetClass) (*domain.Quote, error) {
	ctx, span := s.tracer.Start(ctx, "quote-service.get-quote")
	defer span.End()

	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("%w: symbol is required", domain.ErrInvalidArgument)
	}
	provider, ok := s.providers[class]
	if !ok {
		return nil, fmt.Errorf("%w: unknown asset class %q", domain.ErrInvalidArgument, class)
	}

	if s.redis != nil {
		cached, err := s.getQuoteCache(ctx, symbol, class)
		if err != nil {
			log.Printf("redis cache read error: %v", err)
		}
		if cached != nil {
			return cached, nil
		}
	}

	if s.store != nil {
		stored, err := s.store.Get(ctx, symbol, class)
		if err != nil {
			log.Printf("quote store read error: %v", err)
		}
		if stored != nil {
			if s.redis != nil {
				_ = s.setQuoteCache(ctx, stored)
			}
			return stored, nil
		}
	}

	quote, err := provider.FetchQuote(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if err := s.SaveQuote(ctx, *quote); err != nil {
		log.Printf("quote save error for %s/%s: %v", class, symbol, err)
	}
	return quote, nil
}

// ListQuotes returns every stored quote ordered by symbol.
func (s *QuoteService) ListQuotes(ctx context.Context) ([]domain.Quote, error) {
	_, span := s.tracer.Start(ctx, "quote-service.list-quotes")
	defer span.End()

	if s.store == nil {
		return nil, nil
	}
	return s.store.ListAll(ctx)
}

// SaveQuote writes through to the durable store and the Redis cache.
func (s *QuoteService) SaveQuote(ctx context.Context, quote domain.Quote) error {
	if quote.ObservedAt.IsZero() {
		quote.ObservedAt = time.Now().UTC()
	}
	if s.store != nil {
		if err := s.store.Upsert(ctx, quote); err != nil {
			return err
		}
	}
	if s.redis != nil {
		if err := s.setQuoteCache(ctx, &quote); err != nil {
			log.Printf("redis cache write error for %s/%s: %v", quote.Source, quote.Symbol, err)
		}
	}
	return nil
}

// BulkRefresh applies a batch of quote updates as independent per-key
// upserts. Malformed items are skipped and tallied, never aborting the
// batch; the returned count is the number applied.
func (s *QuoteService) BulkRefresh(ctx context.Context, updates []QuoteUpdate) (int, error) {
	ctx, span := s.tracer.Start(ctx, "quote-service.bulk-refresh")
	defer span.End()

	updated := 0
	skipped := 0
	for _, u := range updates {
		symbol := strings.ToUpper(strings.TrimSpace(u.Symbol))
		class, ok := domain.ParseAssetClass(u.Source)
		if symbol == "" || !ok || u.Price <= 0 {
			skipped++
			continue
		}
		quote := domain.Quote{
			Symbol:     symbol,
			Source:     class,
			Price:      u.Price,
			Change24h:  u.Change24h,
			Change30d:  u.Change30d,
			ObservedAt: time.Now().UTC(),
		}
		if err := s.SaveQuote(ctx, quote); err != nil {
			log.Printf("bulk refresh: upsert failed for %s/%s: %v", class, symbol, err)
			skipped++
			continue
		}
		updated++
	}
	if skipped > 0 {
		log.Printf("bulk refresh: applied %d, skipped %d", updated, skipped)
	}
	return updated, nil
}

// RefreshAll live-fetches every tracked symbol per asset class and
// applies the results. Per-symbol failures are logged and skipped.
func (s *QuoteService) RefreshAll(ctx context.Context) int {
	ctx, span := s.tracer.Start(ctx, "quote-service.refresh-all")
	defer span.End()

	refreshed := 0
	for class, provider := range s.providers {
		for _, symbol := range domain.TrackedSymbols(class) {
			quote, err := provider.FetchQuote(ctx, symbol)
			if err != nil {
				log.Printf("refresh: fetch failed for %s/%s: %v", class, symbol, err)
				continue
			}
			if err := s.SaveQuote(ctx, *quote); err != nil {
				log.Printf("refresh: save failed for %s/%s: %v", class, symbol, err)
				continue
			}
			refreshed++
		}
	}
	log.Printf("refreshed quotes for %d assets", refreshed)
	return refreshed
}

func quoteCacheKey(symbol string, class domain.AssetClass) string {
	return "quote:" + string(class) + ":" + symbol
}

func (s *QuoteService) setQuoteCache(ctx context.Context, quote *domain.Quote) error {
	data, err := json.Marshal(quote)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, quoteCacheKey(quote.Symbol, quote.Source), data, quoteCacheTTL).Err()
}

func (s *QuoteService) getQuoteCache(ctx context.Context, symbol string, class domain.AssetClass) (*domain.Quote, error) {
	data, err := s.redis.Get(ctx, quoteCacheKey(symbol, class)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var quote domain.Quote
	if err := json.Unmarshal(data, &quote); err != nil {
		return nil, err
	}
	return &quote, nil
}
