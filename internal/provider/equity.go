package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"

	"marketpulse/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const yahooBaseURL = "https://query1.finance.yahoo.com"

// EquityProvider fetches quotes, candles, and analyst-rating sentiment
// for equities from the Yahoo Finance public API.
type EquityProvider struct {
	client  *http.Client
	baseURL string
	tracer  trace.Tracer
	limiter *RateLimiter
}

func NewEquityProvider(cfg Config, tracer trace.Tracer) *EquityProvider {
	return &EquityProvider{
		client:  &http.Client{Timeout: cfg.timeoutOr(30 * time.Second)},
		baseURL: cfg.baseURLOr(yahooBaseURL),
		tracer:  tracer,
		limiter: NewRateLimiter(10, 6*time.Second),
	}
}

type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				PreviousClose      float64 `json:"chartPreviousClose"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchQuote derives the current price plus 24h/30d change from a one
// month daily chart: the meta price against the prior close and the
// first close in range.
func (p *EquityProvider) FetchQuote(ctx context.Context, symbol string) (*domain.Quote, error) {
	_, span := p.tracer.Start(ctx, "equity-provider.fetch-quote")
	defer span.End()

	chart, err := p.fetchChart(ctx, symbol, "1d", "1mo")
	if err != nil {
		return nil, err
	}

	price := chart.meta.RegularMarketPrice
	quote := &domain.Quote{
		Symbol:     symbol,
		Source:     domain.AssetEquity,
		Price:      price,
		ObservedAt: time.Now().UTC(),
	}
	if prev := chart.meta.PreviousClose; prev > 0 {
		change := (price/prev - 1) * 100
		quote.Change24h = &change
	}
	if len(chart.candles) > 0 {
		if first := chart.candles[0].Close; first > 0 {
			change := (price/first - 1) * 100
			quote.Change30d = &change
		}
	}
	return quote, nil
}

// FetchCandles fetches daily candles covering lookbackDays. The series
// is rejected wholesale if any bar is incomplete.
func (p *EquityProvider) FetchCandles(ctx context.Context, symbol string, lookbackDays int) ([]domain.Candle, error) {
	_, span := p.tracer.Start(ctx, "equity-provider.fetch-candles")
	defer span.End()

	if lookbackDays <= 0 {
		lookbackDays = 1
	}
	chart, err := p.fetchChart(ctx, symbol, "1d", chartRange(lookbackDays))
	if err != nil {
		return nil, err
	}
	candles := domain.NormalizeCandles(chart.candles, time.Now().UTC())
	if len(candles) > lookbackDays {
		candles = candles[len(candles)-lookbackDays:]
	}
	return candles, nil
}

// chartRange maps a day count onto the range tokens the chart API
// accepts. Yahoo range: max 2y for daily interval.
func chartRange(days int) string {
	switch {
	case days <= 5:
		return "5d"
	case days <= 30:
		return "1mo"
	case days <= 90:
		return "3mo"
	case days <= 180:
		return "6mo"
	case days <= 365:
		return "1y"
	default:
		return "2y"
	}
}

// FetchSentiment maps the analyst recommendation distribution onto a
// 0-100 bullishness score and attaches the next earnings date.
func (p *EquityProvider) FetchSentiment(ctx context.Context, symbol string) (*domain.Sentiment, error) {
	_, span := p.tracer.Start(ctx, "equity-provider.fetch-sentiment")
	defer span.End()

	u := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=recommendationTrend,calendarEvents",
		p.baseURL, url.PathEscape(symbol))

	body, err := p.doRequest(ctx, u)
	if err != nil {
		return nil, err
	}

	var raw struct {
		QuoteSummary struct {
			Result []struct {
				RecommendationTrend struct {
					Trend []struct {
						StrongBuy  int `json:"strongBuy"`
						Buy        int `json:"buy"`
						Hold       int `json:"hold"`
						Sell       int `json:"sell"`
						StrongSell int `json:"strongSell"`
					} `json:"trend"`
				} `json:"recommendationTrend"`
				CalendarEvents struct {
					Earnings struct {
						EarningsDate []struct {
							Raw int64 `json:"raw"`
						} `json:"earningsDate"`
					} `json:"earnings"`
				} `json:"calendarEvents"`
			} `json:"result"`
		} `json:"quoteSummary"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, transportError("yahoo", err)
	}
	if len(raw.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("%w: yahoo has no summary for %s", domain.ErrNotFound, symbol)
	}

	result := raw.QuoteSummary.Result[0]
	if len(result.RecommendationTrend.Trend) == 0 {
		return nil, fmt.Errorf("%w: yahoo has no analyst trend for %s", domain.ErrNotFound, symbol)
	}

	trend := result.RecommendationTrend.Trend[0]
	total := trend.StrongBuy + trend.Buy + trend.Hold + trend.Sell + trend.StrongSell
	if total == 0 {
		return nil, fmt.Errorf("%w: yahoo analyst trend is empty for %s", domain.ErrNotFound, symbol)
	}

	weighted := 100*trend.StrongBuy + 75*trend.Buy + 50*trend.Hold + 25*trend.Sell
	score := int(math.Round(float64(weighted) / float64(total)))

	sentiment := &domain.Sentiment{
		Score:          score,
		Classification: ratingClassification(score),
		ObservedAt:     time.Now().UTC(),
	}
	if dates := result.CalendarEvents.Earnings.EarningsDate; len(dates) > 0 && dates[0].Raw > 0 {
		d := time.Unix(dates[0].Raw, 0).UTC()
		sentiment.EarningsDate = &d
	}
	return sentiment, nil
}

func ratingClassification(score int) string {
	switch {
	case score >= 80:
		return "Strong Buy"
	case score >= 60:
		return "Buy"
	case score >= 40:
		return "Hold"
	case score >= 20:
		return "Sell"
	default:
		return "Strong Sell"
	}
}

type parsedChart struct {
	meta struct {
		RegularMarketPrice float64
		PreviousClose      float64
	}
	candles []domain.Candle
}

func (p *EquityProvider) fetchChart(ctx context.Context, symbol, interval, rng string) (*parsedChart, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=%s&range=%s",
		p.baseURL, url.PathEscape(symbol), interval, rng)

	body, err := p.doRequest(ctx, u)
	if err != nil {
		return nil, err
	}

	var raw yahooChart
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, transportError("yahoo", err)
	}
	if raw.Chart.Error != nil {
		if raw.Chart.Error.Code == "Not Found" {
			return nil, fmt.Errorf("%w: yahoo: %s", domain.ErrNotFound, raw.Chart.Error.Description)
		}
		return nil, fmt.Errorf("%w: yahoo: %s: %s", domain.ErrProviderUnavailable, raw.Chart.Error.Code, raw.Chart.Error.Description)
	}
	if len(raw.Chart.Result) == 0 || len(raw.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("%w: yahoo chart has no result for %s", domain.ErrNotFound, symbol)
	}

	result := raw.Chart.Result[0]
	bars := result.Indicators.Quote[0]
	n := len(result.Timestamp)
	if len(bars.Open) != n || len(bars.High) != n || len(bars.Low) != n || len(bars.Close) != n || len(bars.Volume) != n {
		return nil, fmt.Errorf("%w: yahoo chart arrays are inconsistent for %s", domain.ErrProviderUnavailable, symbol)
	}

	candles := make([]domain.Candle, 0, n)
	for i := 0; i < n; i++ {
		if bars.Open[i] == nil || bars.High[i] == nil || bars.Low[i] == nil || bars.Close[i] == nil {
			return nil, fmt.Errorf("%w: yahoo chart bar %d is incomplete for %s", domain.ErrProviderUnavailable, i, symbol)
		}
		volume := 0.0
		if bars.Volume[i] != nil {
			volume = *bars.Volume[i]
		}
		candles = append(candles, domain.Candle{
			Symbol:   symbol,
			Source:   domain.AssetEquity,
			Interval: interval,
			OpenTime: time.Unix(result.Timestamp[i], 0).UTC(),
			Open:     *bars.Open[i],
			High:     *bars.High[i],
			Low:      *bars.Low[i],
			Close:    *bars.Close[i],
			Volume:   volume,
		})
	}

	out := &parsedChart{candles: candles}
	out.meta.RegularMarketPrice = result.Meta.RegularMarketPrice
	out.meta.PreviousClose = result.Meta.PreviousClose
	return out, nil
}

func (p *EquityProvider) doRequest(ctx context.Context, url string) ([]byte, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, transportError("yahoo", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, transportError("yahoo", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, transportError("yahoo", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, statusError("yahoo", resp.StatusCode, body)
	}

	return io.ReadAll(resp.Body)
}
