package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"marketpulse/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

// MarketDataProvider is the per-asset-class upstream adapter contract.
type MarketDataProvider interface {
	FetchQuote(ctx context.Context, symbol string) (*domain.Quote, error)
	FetchCandles(ctx context.Context, symbol string, lookbackDays int) ([]domain.Candle, error)
	FetchSentiment(ctx context.Context, symbol string) (*domain.Sentiment, error)
}

// NewsFetcher supplies headlines for a symbol.
type NewsFetcher interface {
	FetchNews(ctx context.Context, symbol string, class domain.AssetClass, limit int) ([]domain.NewsItem, error)
}

// IndicatorEngine derives an indicator snapshot from a candle series.
type IndicatorEngine interface {
	Compute(candles []domain.Candle) (*domain.IndicatorSnapshot, error)
}

// QuoteWriter persists a freshly observed quote.
type QuoteWriter interface {
	SaveQuote(ctx context.Context, quote domain.Quote) error
}

// CandleStore persists and serves candle history.
type CandleStore interface {
	UpsertCandles(ctx context.Context, candles []domain.Candle) error
	GetCandles(ctx context.Context, symbol string, source domain.AssetClass, interval string, limit int) ([]domain.Candle, error)
}

const defaultLookbackDays = 365

// Aggregator fans out the four upstream fetches for one asset and
// assembles the composite view. Branch failures degrade their own
// field; only malformed arguments fail the whole call.
type Aggregator struct {
	tracer       trace.Tracer
	providers    map[domain.AssetClass]MarketDataProvider
	news         NewsFetcher
	engine       IndicatorEngine
	quotes       QuoteWriter
	candles      CandleStore
	fetchTimeout time.Duration
	newsLimit    int
}

func NewAggregator(
	tracer trace.Tracer,
	providers map[domain.AssetClass]MarketDataProvider,
	news NewsFetcher,
	engine IndicatorEngine,
	quotes QuoteWriter,
	candles CandleStore,
	fetchTimeoutSecs int,
) *Aggregator {
	if fetchTimeoutSecs <= 0 {
		fetchTimeoutSecs = 5
	}
	return &Aggregator{
		tracer:       tracer,
		providers:    providers,
		news:         news,
		engine:       engine,
		quotes:       quotes,
		candles:      candles,
		fetchTimeout: time.Duration(fetchTimeoutSecs) * time.Second,
		newsLimit:    20,
	}
}

// Aggregate returns the composite view for one symbol. The four
// upstream fetches run concurrently and all settle before assembly;
// a slow or failing branch only empties its own field.
func (a *Aggregator) Aggregate(ctx context.Context, symbol string, class domain.AssetClass, lookbackDays int) (*domain.AggregatedAssetView, error) {
	ctx, span := a.tracer.Start(ctx, "aggregator.aggregate")
	defer span.End()

	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("%w: symbol is required", domain.ErrInvalidArgument)
	}
	provider, ok := a.providers[class]
	if !ok {
		return nil, fmt.Errorf("%w: unknown asset class %q", domain.ErrInvalidArgument, class)
	}
	if lookbackDays <= 0 {
		lookbackDays = defaultLookbackDays
	}

	view := &domain.AggregatedAssetView{
		Symbol: symbol,
		Source: class,
		News:   []domain.NewsItem{},
	}

	// The branches write disjoint fields; wg.Wait orders the writes
	// before assembly reads them.
	var wg sync.WaitGroup
	wg.Add(4)

	go func() {
		defer wg.Done()
		quote, err := withTimeout(ctx, a.fetchTimeout, func(ctx context.Context) (*domain.Quote, error) {
			return provider.FetchQuote(ctx, symbol)
		})
		if err != nil {
			log.Printf("aggregate %s/%s: quote fetch degraded: %v", class, symbol, err)
			return
		}
		view.Quote = quote
	}()

	go func() {
		defer wg.Done()
		candles, err := withTimeout(ctx, a.fetchTimeout, func(ctx context.Context) ([]domain.Candle, error) {
			return provider.FetchCandles(ctx, symbol, lookbackDays)
		})
		if err != nil {
			log.Printf("aggregate %s/%s: candle fetch degraded: %v", class, symbol, err)
			view.Chart = a.chartFromStore(ctx, symbol, class, lookbackDays)
			return
		}
		view.Chart = candles
	}()

	go func() {
		defer wg.Done()
		news, err := withTimeout(ctx, a.fetchTimeout, func(ctx context.Context) ([]domain.NewsItem, error) {
			return a.news.FetchNews(ctx, symbol, class, a.newsLimit)
		})
		if err != nil {
			log.Printf("aggregate %s/%s: news fetch degraded: %v", class, symbol, err)
			return
		}
		view.News = news
	}()

	go func() {
		defer wg.Done()
		sentiment, err := withTimeout(ctx, a.fetchTimeout, func(ctx context.Context) (*domain.Sentiment, error) {
			return provider.FetchSentiment(ctx, symbol)
		})
		if err != nil {
			log.Printf("aggregate %s/%s: sentiment fetch degraded: %v", class, symbol, err)
			return
		}
		view.Sentiment = sentiment
	}()

	wg.Wait()

	if view.News == nil {
		view.News = []domain.NewsItem{}
	}

	if len(view.Chart) >= domain.MinIndicatorHistory {
		snapshot, err := a.engine.Compute(view.Chart)
		if err != nil {
			log.Printf("aggregate %s/%s: indicator compute failed: %v", class, symbol, err)
		} else {
			view.Indicators = snapshot
		}
	}

	a.persist(ctx, view)

	return view, nil
}

// withTimeout bounds one branch fetch so a slow provider delays only
// the field it populates.
func withTimeout[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	branchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(branchCtx)
}

// chartFromStore serves previously persisted history when the live
// fetch fails.
func (a *Aggregator) chartFromStore(ctx context.Context, symbol string, class domain.AssetClass, lookbackDays int) []domain.Candle {
	if a.candles == nil {
		return nil
	}
	stored, err := a.candles.GetCandles(ctx, symbol, class, "1d", lookbackDays)
	if err != nil {
		log.Printf("aggregate %s/%s: stored chart fallback failed: %v", class, symbol, err)
		return nil
	}
	return stored
}

// persist applies the successful branches to the durable stores,
// best-effort.
func (a *Aggregator) persist(ctx context.Context, view *domain.AggregatedAssetView) {
	if view.Quote != nil && a.quotes != nil {
		if err := a.quotes.SaveQuote(ctx, *view.Quote); err != nil {
			log.Printf("aggregate %s/%s: quote persist failed: %v", view.Source, view.Symbol, err)
		}
	}
	if len(view.Chart) > 0 && a.candles != nil {
		if err := a.candles.UpsertCandles(ctx, view.Chart); err != nil {
			log.Printf("aggregate %s/%s: candle persist failed: %v", view.Source, view.Symbol, err)
		}
	}
}
