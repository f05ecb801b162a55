package provider

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"marketpulse/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

var testTracer = trace.NewNoopTracerProvider().Tracer("test")

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     make(http.Header),
	}
}

func newTestCryptoProvider(rt roundTripFunc) *CryptoProvider {
	p := NewCryptoProvider(Config{BaseURL: "http://example"}, testTracer)
	p.sentimentURL = "http://example-fng"
	p.client = &http.Client{Transport: rt}
	p.limiter = NewRateLimiter(1000, time.Millisecond)
	return p
}

func TestCryptoFetchQuote(t *testing.T) {
	t.Parallel()

	p := newTestCryptoProvider(func(req *http.Request) (*http.Response, error) {
		if !strings.Contains(req.URL.String(), "ids=bitcoin") {
			t.Errorf("expected bitcoin id in url, got %s", req.URL)
		}
		return jsonResponse(http.StatusOK, `[{"current_price":67890.5,"price_change_percentage_24h_in_currency":2.11,"price_change_percentage_30d_in_currency":-4.2}]`), nil
	})

	quote, err := p.FetchQuote(context.Background(), "BTC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quote.Symbol != "BTC" || quote.Source != domain.AssetCrypto {
		t.Fatalf("unexpected quote key: %+v", quote)
	}
	if quote.Price != 67890.5 {
		t.Fatalf("unexpected price: %f", quote.Price)
	}
	if quote.Change24h == nil || *quote.Change24h != 2.11 {
		t.Fatalf("unexpected 24h change: %+v", quote.Change24h)
	}
	if quote.Change30d == nil || *quote.Change30d != -4.2 {
		t.Fatalf("unexpected 30d change: %+v", quote.Change30d)
	}
}

func TestCryptoFetchQuoteUnknownSymbol(t *testing.T) {
	t.Parallel()

	p := newTestCryptoProvider(func(req *http.Request) (*http.Response, error) {
		t.Error("no request expected for unknown symbol")
		return nil, nil
	})

	_, err := p.FetchQuote(context.Background(), "NOPE")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCryptoFetchQuoteUpstreamError(t *testing.T) {
	t.Parallel()

	p := newTestCryptoProvider(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusServiceUnavailable, `{"status":"down"}`), nil
	})

	_, err := p.FetchQuote(context.Background(), "BTC")
	if !errors.Is(err, domain.ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
}

func TestCryptoFetchCandlesBucketsDaily(t *testing.T) {
	t.Parallel()

	base := time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, -3)
	var prices, volumes []string
	for day := 0; day < 3; day++ {
		for hour := 0; hour < 4; hour++ {
			ts := base.AddDate(0, 0, day).Add(time.Duration(hour) * 6 * time.Hour)
			prices = append(prices, fmt.Sprintf("[%d,%d]", ts.UnixMilli(), 100+day*10+hour))
		}
		volumes = append(volumes, fmt.Sprintf("[%d,%d]", base.AddDate(0, 0, day).UnixMilli(), 5000+day))
	}
	payload := fmt.Sprintf(`{"prices":[%s],"total_volumes":[%s]}`,
		strings.Join(prices, ","), strings.Join(volumes, ","))

	p := newTestCryptoProvider(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, payload), nil
	})

	candles, err := p.FetchCandles(context.Background(), "BTC", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candles) != 3 {
		t.Fatalf("expected 3 daily candles, got %d", len(candles))
	}
	first := candles[0]
	if first.Open != 100 || first.Close != 103 || first.High != 103 || first.Low != 100 {
		t.Fatalf("unexpected first candle: %+v", first)
	}
	if first.Volume != 5000 {
		t.Fatalf("expected volume 5000, got %f", first.Volume)
	}
	for i := 1; i < len(candles); i++ {
		if !candles[i-1].OpenTime.Before(candles[i].OpenTime) {
			t.Fatalf("candles not ascending at %d", i)
		}
	}
}

func TestCryptoFetchCandlesRejectsMalformedRow(t *testing.T) {
	t.Parallel()

	p := newTestCryptoProvider(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"prices":[[1700000000000,10],[1700086400000]],"total_volumes":[]}`), nil
	})

	_, err := p.FetchCandles(context.Background(), "BTC", 2)
	if !errors.Is(err, domain.ErrProviderUnavailable) {
		t.Fatalf("expected wholesale rejection, got %v", err)
	}
}

func TestCryptoFetchSentiment(t *testing.T) {
	t.Parallel()

	p := newTestCryptoProvider(func(req *http.Request) (*http.Response, error) {
		if !strings.Contains(req.URL.String(), "/fng/") {
			t.Errorf("expected fng endpoint, got %s", req.URL)
		}
		return jsonResponse(http.StatusOK, `{"data":[{"value":"72","value_classification":"Greed","timestamp":"1767225600"}]}`), nil
	})

	sentiment, err := p.FetchSentiment(context.Background(), "BTC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sentiment.Score != 72 || sentiment.Classification != "Greed" {
		t.Fatalf("unexpected sentiment: %+v", sentiment)
	}
}
