package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"marketpulse/internal/domain"
)

func newTestEquityProvider(rt roundTripFunc) *EquityProvider {
	p := NewEquityProvider(Config{BaseURL: "http://example"}, testTracer)
	p.client = &http.Client{Transport: rt}
	p.limiter = NewRateLimiter(1000, time.Millisecond)
	return p
}

func chartPayload(timestamps []int64, closes []float64, price, prevClose float64) string {
	ts := make([]string, len(timestamps))
	open := make([]string, len(closes))
	high := make([]string, len(closes))
	low := make([]string, len(closes))
	cl := make([]string, len(closes))
	vol := make([]string, len(closes))
	for i := range timestamps {
		ts[i] = fmt.Sprintf("%d", timestamps[i])
		open[i] = fmt.Sprintf("%f", closes[i]*0.99)
		high[i] = fmt.Sprintf("%f", closes[i]*1.01)
		low[i] = fmt.Sprintf("%f", closes[i]*0.98)
		cl[i] = fmt.Sprintf("%f", closes[i])
		vol[i] = "1000000"
	}
	return fmt.Sprintf(`{"chart":{"result":[{"meta":{"regularMarketPrice":%f,"chartPreviousClose":%f},"timestamp":[%s],"indicators":{"quote":[{"open":[%s],"high":[%s],"low":[%s],"close":[%s],"volume":[%s]}]}}],"error":null}}`,
		price, prevClose,
		strings.Join(ts, ","), strings.Join(open, ","), strings.Join(high, ","),
		strings.Join(low, ","), strings.Join(cl, ","), strings.Join(vol, ","))
}

func TestEquityFetchQuote(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	timestamps := []int64{now.AddDate(0, 0, -30).Unix(), now.AddDate(0, 0, -1).Unix()}
	payload := chartPayload(timestamps, []float64{200, 210}, 220, 200)

	p := newTestEquityProvider(func(req *http.Request) (*http.Response, error) {
		if !strings.Contains(req.URL.Path, "/v8/finance/chart/AAPL") {
			t.Errorf("unexpected path %s", req.URL.Path)
		}
		return jsonResponse(http.StatusOK, payload), nil
	})

	quote, err := p.FetchQuote(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quote.Source != domain.AssetEquity || quote.Price != 220 {
		t.Fatalf("unexpected quote: %+v", quote)
	}
	if quote.Change24h == nil || *quote.Change24h != 10 {
		t.Fatalf("expected 10%% 24h change, got %+v", quote.Change24h)
	}
	if quote.Change30d == nil || *quote.Change30d != 10 {
		t.Fatalf("expected 10%% 30d change, got %+v", quote.Change30d)
	}
}

func TestEquityFetchCandles(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	timestamps := []int64{now.AddDate(0, 0, -2).Unix(), now.AddDate(0, 0, -1).Unix()}
	payload := chartPayload(timestamps, []float64{100, 101}, 101, 100)

	p := newTestEquityProvider(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, payload), nil
	})

	candles, err := p.FetchCandles(context.Background(), "AAPL", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candles) != 2 {
		t.Fatalf("expected 2 candles, got %d", len(candles))
	}
	if candles[0].Close != 100 || candles[1].Close != 101 {
		t.Fatalf("unexpected closes: %+v", candles)
	}
}

func TestEquityFetchCandlesUsesEnumeratedRange(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	timestamps := []int64{now.AddDate(0, 0, -3).Unix(), now.AddDate(0, 0, -2).Unix(), now.AddDate(0, 0, -1).Unix()}
	payload := chartPayload(timestamps, []float64{100, 101, 102}, 102, 100)

	var gotRange string
	p := newTestEquityProvider(func(req *http.Request) (*http.Response, error) {
		gotRange = req.URL.Query().Get("range")
		return jsonResponse(http.StatusOK, payload), nil
	})

	candles, err := p.FetchCandles(context.Background(), "AAPL", 365)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotRange != "1y" {
		t.Fatalf("expected range=1y for a 365 day lookback, got %q", gotRange)
	}
	if len(candles) != 3 {
		t.Fatalf("expected 3 candles, got %d", len(candles))
	}

	// A wider range than requested is trimmed to the newest bars.
	candles, err = p.FetchCandles(context.Background(), "AAPL", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotRange != "5d" {
		t.Fatalf("expected range=5d for a 2 day lookback, got %q", gotRange)
	}
	if len(candles) != 2 || candles[1].Close != 102 {
		t.Fatalf("expected the 2 newest candles, got %+v", candles)
	}
}

func TestChartRangeMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		days int
		want string
	}{
		{1, "5d"},
		{30, "1mo"},
		{90, "3mo"},
		{180, "6mo"},
		{365, "1y"},
		{730, "2y"},
	}
	for _, tc := range cases {
		if got := chartRange(tc.days); got != tc.want {
			t.Errorf("chartRange(%d) = %q, want %q", tc.days, got, tc.want)
		}
	}
}

func TestEquityFetchCandlesRejectsIncompleteBar(t *testing.T) {
	t.Parallel()

	payload := `{"chart":{"result":[{"meta":{"regularMarketPrice":1,"chartPreviousClose":1},"timestamp":[1700000000,1700086400],"indicators":{"quote":[{"open":[1,null],"high":[1,1],"low":[1,1],"close":[1,1],"volume":[1,1]}]}}],"error":null}}`
	p := newTestEquityProvider(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, payload), nil
	})

	_, err := p.FetchCandles(context.Background(), "AAPL", 2)
	if !errors.Is(err, domain.ErrProviderUnavailable) {
		t.Fatalf("expected wholesale rejection of incomplete bar, got %v", err)
	}
}

func TestEquityFetchCandlesNotFound(t *testing.T) {
	t.Parallel()

	payload := `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`
	p := newTestEquityProvider(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, payload), nil
	})

	_, err := p.FetchCandles(context.Background(), "ZZZZ", 30)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestEquityFetchSentiment(t *testing.T) {
	t.Parallel()

	earnings := time.Now().UTC().AddDate(0, 0, 14).Unix()
	payload := fmt.Sprintf(`{"quoteSummary":{"result":[{"recommendationTrend":{"trend":[{"strongBuy":8,"buy":4,"hold":4,"sell":0,"strongSell":0}]},"calendarEvents":{"earnings":{"earningsDate":[{"raw":%d}]}}}]}}`, earnings)

	p := newTestEquityProvider(func(req *http.Request) (*http.Response, error) {
		if !strings.Contains(req.URL.Path, "/v10/finance/quoteSummary/AAPL") {
			t.Errorf("unexpected path %s", req.URL.Path)
		}
		return jsonResponse(http.StatusOK, payload), nil
	})

	sentiment, err := p.FetchSentiment(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// (8*100 + 4*75 + 4*50) / 16 = 81.25 -> 81
	if sentiment.Score != 81 {
		t.Fatalf("expected score 81, got %d", sentiment.Score)
	}
	if sentiment.Classification != "Strong Buy" {
		t.Fatalf("unexpected classification %q", sentiment.Classification)
	}
	if sentiment.EarningsDate == nil || sentiment.EarningsDate.Unix() != earnings {
		t.Fatalf("unexpected earnings date: %+v", sentiment.EarningsDate)
	}
}

func TestEquityFetchSentimentNoAnalysts(t *testing.T) {
	t.Parallel()

	payload := `{"quoteSummary":{"result":[{"recommendationTrend":{"trend":[{"strongBuy":0,"buy":0,"hold":0,"sell":0,"strongSell":0}]},"calendarEvents":{"earnings":{"earningsDate":[]}}}]}}`
	p := newTestEquityProvider(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, payload), nil
	})

	_, err := p.FetchSentiment(context.Background(), "ZZZZ")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
