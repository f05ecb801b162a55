package provider

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"marketpulse/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

// NewsProvider fetches headlines from configured RSS feeds, one feed
// set per asset class, and filters them to the requested symbol.
type NewsProvider struct {
	client      *http.Client
	cryptoFeeds []string
	equityFeeds []string
	tracer      trace.Tracer
}

func NewNewsProvider(cfg Config, cryptoFeeds, equityFeeds []string, tracer trace.Tracer) *NewsProvider {
	return &NewsProvider{
		client:      &http.Client{Timeout: cfg.timeoutOr(20 * time.Second)},
		cryptoFeeds: cryptoFeeds,
		equityFeeds: equityFeeds,
		tracer:      tracer,
	}
}

// cryptoNames widens symbol matching to full asset names in headlines.
var cryptoNames = map[string]string{
	"BTC":   "bitcoin",
	"ETH":   "ethereum",
	"SOL":   "solana",
	"XRP":   "ripple",
	"ADA":   "cardano",
	"DOGE":  "dogecoin",
	"DOT":   "polkadot",
	"AVAX":  "avalanche",
	"LINK":  "chainlink",
	"MATIC": "polygon",
}

// FetchNews returns up to limit items mentioning the symbol, newest
// first. Individual feed failures are tolerated; the call only fails
// when every configured feed does.
func (p *NewsProvider) FetchNews(ctx context.Context, symbol string, class domain.AssetClass, limit int) ([]domain.NewsItem, error) {
	_, span := p.tracer.Start(ctx, "news-provider.fetch-news")
	defer span.End()

	feeds := p.cryptoFeeds
	if class == domain.AssetEquity {
		feeds = p.equityFeeds
	}
	if len(feeds) == 0 {
		return nil, fmt.Errorf("%w: no news feeds configured for %s", domain.ErrNotFound, class)
	}
	if limit <= 0 {
		limit = 20
	}

	var items []domain.NewsItem
	failures := 0
	var lastErr error
	for _, feed := range feeds {
		fetched, err := p.fetchFeed(ctx, feed)
		if err != nil {
			failures++
			lastErr = err
			continue
		}
		items = append(items, fetched...)
	}
	if failures == len(feeds) {
		return nil, fmt.Errorf("%w: all news feeds failed: %v", domain.ErrProviderUnavailable, lastErr)
	}

	matched := filterBySymbol(items, symbol, class)
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].PublishedAt.After(matched[j].PublishedAt)
	})
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func filterBySymbol(items []domain.NewsItem, symbol string, class domain.AssetClass) []domain.NewsItem {
	terms := []string{strings.ToLower(symbol)}
	if class == domain.AssetCrypto {
		if name, ok := cryptoNames[symbol]; ok {
			terms = append(terms, name)
		}
	}

	matched := make([]domain.NewsItem, 0, len(items))
	for _, item := range items {
		title := strings.ToLower(item.Title)
		for _, term := range terms {
			if containsToken(title, term) {
				matched = append(matched, item)
				break
			}
		}
	}
	return matched
}

// containsToken matches term as a whole word so "V" does not match
// "Volatility".
func containsToken(text, term string) bool {
	for len(text) > 0 {
		idx := strings.Index(text, term)
		if idx < 0 {
			return false
		}
		beforeOK := idx == 0 || !isWordChar(text[idx-1])
		afterIdx := idx + len(term)
		afterOK := afterIdx >= len(text) || !isWordChar(text[afterIdx])
		if beforeOK && afterOK {
			return true
		}
		text = text[idx+len(term):]
	}
	return false
}

func isWordChar(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}

func (p *NewsProvider) fetchFeed(ctx context.Context, feedURL string) ([]domain.NewsItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, transportError("rss", err)
	}
	req.Header.Set("Accept", "application/rss+xml, application/xml, text/xml")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, transportError("rss", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, statusError("rss", resp.StatusCode, body)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError("rss", err)
	}

	var rss struct {
		Channel struct {
			Title string `xml:"title"`
			Items []struct {
				Title   string `xml:"title"`
				Link    string `xml:"link"`
				PubDate string `xml:"pubDate"`
			} `xml:"item"`
		} `xml:"channel"`
	}
	if err := xml.Unmarshal(body, &rss); err != nil {
		return nil, transportError("rss", err)
	}

	items := make([]domain.NewsItem, 0, len(rss.Channel.Items))
	for _, row := range rss.Channel.Items {
		title := strings.TrimSpace(row.Title)
		if title == "" {
			continue
		}
		publishedAt := parseRSSDate(row.PubDate)
		if publishedAt.IsZero() {
			publishedAt = time.Now().UTC()
		}
		items = append(items, domain.NewsItem{
			Title:       title,
			URL:         strings.TrimSpace(row.Link),
			Source:      strings.TrimSpace(rss.Channel.Title),
			PublishedAt: publishedAt,
		})
	}
	return items, nil
}

func parseRSSDate(v string) time.Time {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}
	}
	layouts := []string{time.RFC1123Z, time.RFC1123, time.RFC822Z, time.RFC822, time.RFC3339}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
