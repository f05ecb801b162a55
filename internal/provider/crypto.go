package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"marketpulse/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const (
	coingeckoBaseURL = "https://api.coingecko.com/api/v3"
	fearGreedBaseURL = "https://api.alternative.me"
)

// CryptoProvider fetches quotes, candles, and fear/greed sentiment
// for crypto assets from the CoinGecko and alternative.me free APIs.
type CryptoProvider struct {
	client       *http.Client
	baseURL      string
	sentimentURL string
	apiKey       string
	tracer       trace.Tracer
	limiter      *RateLimiter
}

// NewCryptoProvider creates a provider with built-in rate limiting.
// Rate limited to 8 requests per minute (one token every 7.5 seconds).
func NewCryptoProvider(cfg Config, tracer trace.Tracer) *CryptoProvider {
	return &CryptoProvider{
		client:       &http.Client{Timeout: cfg.timeoutOr(30 * time.Second)},
		baseURL:      cfg.baseURLOr(coingeckoBaseURL),
		sentimentURL: fearGreedBaseURL,
		apiKey:       cfg.APIKey,
		tracer:       tracer,
		limiter:      NewRateLimiter(8, 7500*time.Millisecond),
	}
}

// FetchQuote fetches the current price plus 24h/30d change for one symbol.
func (p *CryptoProvider) FetchQuote(ctx context.Context, symbol string) (*domain.Quote, error) {
	_, span := p.tracer.Start(ctx, "crypto-provider.fetch-quote")
	defer span.End()

	cgID, ok := domain.CoinGeckoID[symbol]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported crypto symbol %s", domain.ErrNotFound, symbol)
	}

	url := fmt.Sprintf("%s/coins/markets?vs_currency=usd&ids=%s&price_change_percentage=24h,30d",
		p.baseURL, cgID)

	body, err := p.doRequest(ctx, url)
	if err != nil {
		return nil, err
	}

	var rows []struct {
		CurrentPrice float64  `json:"current_price"`
		Change24h    *float64 `json:"price_change_percentage_24h_in_currency"`
		Change30d    *float64 `json:"price_change_percentage_30d_in_currency"`
	}
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, transportError("coingecko", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: coingecko has no market row for %s", domain.ErrNotFound, symbol)
	}

	row := rows[0]
	return &domain.Quote{
		Symbol:     symbol,
		Source:     domain.AssetCrypto,
		Price:      row.CurrentPrice,
		Change24h:  row.Change24h,
		Change30d:  row.Change30d,
		ObservedAt: time.Now().UTC(),
	}, nil
}

// FetchCandles fetches market_chart data and buckets it into daily
// candles covering lookbackDays. The returned series satisfies the
// normalization invariants (ascending, deduplicated, no future rows).
func (p *CryptoProvider) FetchCandles(ctx context.Context, symbol string, lookbackDays int) ([]domain.Candle, error) {
	_, span := p.tracer.Start(ctx, "crypto-provider.fetch-candles")
	defer span.End()

	cgID, ok := domain.CoinGeckoID[symbol]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported crypto symbol %s", domain.ErrNotFound, symbol)
	}
	if lookbackDays <= 0 {
		lookbackDays = 1
	}

	url := fmt.Sprintf("%s/coins/%s/market_chart?vs_currency=usd&days=%d",
		p.baseURL, cgID, lookbackDays)

	body, err := p.doRequest(ctx, url)
	if err != nil {
		return nil, err
	}

	var raw struct {
		Prices       [][]float64 `json:"prices"`
		TotalVolumes [][]float64 `json:"total_volumes"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, transportError("coingecko", err)
	}

	candles, err := buildDailyCandles(symbol, raw.Prices, raw.TotalVolumes)
	if err != nil {
		return nil, err
	}
	return domain.NormalizeCandles(candles, time.Now().UTC()), nil
}

// FetchSentiment fetches the latest fear & greed index reading. The
// index is market-wide, so the symbol only keys the result.
func (p *CryptoProvider) FetchSentiment(ctx context.Context, symbol string) (*domain.Sentiment, error) {
	_, span := p.tracer.Start(ctx, "crypto-provider.fetch-sentiment")
	defer span.End()

	url := strings.TrimRight(p.sentimentURL, "/") + "/fng/?limit=1"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, transportError("feargreed", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, transportError("feargreed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, statusError("feargreed", resp.StatusCode, body)
	}

	var payload struct {
		Data []struct {
			Value          string `json:"value"`
			Classification string `json:"value_classification"`
			Timestamp      string `json:"timestamp"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, transportError("feargreed", err)
	}
	if len(payload.Data) == 0 {
		return nil, fmt.Errorf("%w: feargreed response has no rows", domain.ErrProviderUnavailable)
	}

	row := payload.Data[0]
	value, err := strconv.Atoi(strings.TrimSpace(row.Value))
	if err != nil {
		return nil, transportError("feargreed", err)
	}
	ts, err := strconv.ParseInt(strings.TrimSpace(row.Timestamp), 10, 64)
	if err != nil {
		return nil, transportError("feargreed", err)
	}
	if ts > 1_000_000_000_000 {
		ts = ts / 1000
	}

	return &domain.Sentiment{
		Score:          value,
		Classification: row.Classification,
		ObservedAt:     time.Unix(ts, 0).UTC(),
	}, nil
}

func (p *CryptoProvider) doRequest(ctx context.Context, url string) ([]byte, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, transportError("coingecko", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, transportError("coingecko", err)
	}
	req.Header.Set("Accept", "application/json")
	if p.apiKey != "" {
		req.Header.Set("x-cg-demo-api-key", p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, transportError("coingecko", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, statusError("coingecko", resp.StatusCode, body)
	}

	return io.ReadAll(resp.Body)
}

type dayBucket struct {
	open     float64
	high     float64
	low      float64
	close    float64
	volume   float64
	openTime time.Time
}

// buildDailyCandles buckets raw market_chart price points into daily
// candles. A structurally broken row fails the whole payload; the
// series is rejected wholesale rather than patched.
func buildDailyCandles(symbol string, prices, volumes [][]float64) ([]domain.Candle, error) {
	if len(prices) == 0 {
		return nil, fmt.Errorf("%w: coingecko market chart has no price points", domain.ErrProviderUnavailable)
	}

	volByDay := make(map[int64]float64, len(volumes))
	for _, v := range volumes {
		if len(v) < 2 {
			return nil, fmt.Errorf("%w: coingecko market chart has malformed volume row", domain.ErrProviderUnavailable)
		}
		day := time.UnixMilli(int64(v[0])).UTC().Truncate(24 * time.Hour).UnixMilli()
		volByDay[day] = v[1]
	}

	buckets := make(map[int64]*dayBucket)
	for _, pt := range prices {
		if len(pt) < 2 {
			return nil, fmt.Errorf("%w: coingecko market chart has malformed price row", domain.ErrProviderUnavailable)
		}
		t := time.UnixMilli(int64(pt[0])).UTC()
		price := pt[1]
		day := t.Truncate(24 * time.Hour).UnixMilli()

		b, exists := buckets[day]
		if !exists {
			buckets[day] = &dayBucket{
				open:     price,
				high:     price,
				low:      price,
				close:    price,
				openTime: time.UnixMilli(day).UTC(),
			}
			continue
		}
		b.high = math.Max(b.high, price)
		b.low = math.Min(b.low, price)
		b.close = price
	}

	candles := make([]domain.Candle, 0, len(buckets))
	for day, b := range buckets {
		candles = append(candles, domain.Candle{
			Symbol:   symbol,
			Source:   domain.AssetCrypto,
			Interval: "1d",
			OpenTime: b.openTime,
			Open:     b.open,
			High:     b.high,
			Low:      b.low,
			Close:    b.close,
			Volume:   volByDay[day],
		})
	}
	return candles, nil
}
