package domain

import (
	"strings"
	"time"
)

// AssetClass distinguishes the two quote/candle universes we track.
type AssetClass string

const (
	AssetCrypto AssetClass = "crypto"
	AssetEquity AssetClass = "equity"
)

// ParseAssetClass normalizes a raw asset class string.
func ParseAssetClass(raw string) (AssetClass, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "crypto":
		return AssetCrypto, true
	case "equity", "stock", "stocks":
		return AssetEquity, true
	default:
		return "", false
	}
}

// Quote is the latest observed price state for one (symbol, source) key.
type Quote struct {
	Symbol     string     `json:"symbol"`
	Source     AssetClass `json:"source"`
	Price      float64    `json:"price"`
	Change24h  *float64   `json:"change_24h_pct,omitempty"`
	Change30d  *float64   `json:"change_30d_pct,omitempty"`
	ObservedAt time.Time  `json:"observed_at"`
}

// NewsItem is a single headline attributed to an asset.
type NewsItem struct {
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
}

// Sentiment is a bounded market-mood score for an asset class.
// Crypto maps the fear/greed index; equities map analyst rating
// distributions onto the same 0-100 scale.
type Sentiment struct {
	Score          int        `json:"score"`
	Classification string     `json:"classification"`
	EarningsDate   *time.Time `json:"earnings_date,omitempty"`
	ObservedAt     time.Time  `json:"observed_at"`
}

// IndicatorSnapshot bundles the technical indicators derived from one
// candle series. It is computed fresh per request and never persisted.
type IndicatorSnapshot struct {
	Symbol     string     `json:"symbol"`
	Source     AssetClass `json:"source"`
	AsOf       time.Time  `json:"as_of"`
	SMA20      float64    `json:"sma_20"`
	SMA50      float64    `json:"sma_50"`
	SMA200     float64    `json:"sma_200"`
	RSI14      float64    `json:"rsi_14"`
	MACDLine   float64    `json:"macd_line"`
	MACDSignal float64    `json:"macd_signal"`
	MACDHist   float64    `json:"macd_hist"`
	BBMiddle   float64    `json:"bb_middle"`
	BBUpper    float64    `json:"bb_upper"`
	BBLower    float64    `json:"bb_lower"`
}

// AggregatedAssetView is the composite response for one asset. Each
// field is independently nullable: a failed branch leaves its field
// empty without affecting the others.
type AggregatedAssetView struct {
	Symbol     string             `json:"symbol"`
	Source     AssetClass         `json:"source"`
	Chart      []Candle           `json:"chart,omitempty"`
	Quote      *Quote             `json:"quote,omitempty"`
	News       []NewsItem         `json:"news"`
	Sentiment  *Sentiment         `json:"sentiment,omitempty"`
	Indicators *IndicatorSnapshot `json:"indicators,omitempty"`
}

// CoinGeckoID maps internal crypto symbols to CoinGecko API identifiers.
var CoinGeckoID = map[string]string{
	"BTC":   "bitcoin",
	"ETH":   "ethereum",
	"SOL":   "solana",
	"XRP":   "ripple",
	"ADA":   "cardano",
	"DOGE":  "dogecoin",
	"DOT":   "polkadot",
	"AVAX":  "avalanche-2",
	"LINK":  "chainlink",
	"MATIC": "matic-network",
}

// CoinGeckoIDToSymbol is the reverse mapping.
var CoinGeckoIDToSymbol map[string]string

func init() {
	CoinGeckoIDToSymbol = make(map[string]string, len(CoinGeckoID))
	for sym, id := range CoinGeckoID {
		CoinGeckoIDToSymbol[id] = sym
	}
}

// SupportedCryptoSymbols lists all tracked crypto symbols.
var SupportedCryptoSymbols = []string{
	"BTC", "ETH", "SOL", "XRP", "ADA",
	"DOGE", "DOT", "AVAX", "LINK", "MATIC",
}

// SupportedEquitySymbols lists all tracked equity tickers.
var SupportedEquitySymbols = []string{
	"AAPL", "MSFT", "GOOGL", "AMZN", "NVDA",
	"META", "TSLA", "JPM", "V", "SPY",
}

// TrackedSymbols returns the tracked universe for an asset class.
func TrackedSymbols(class AssetClass) []string {
	if class == AssetEquity {
		return SupportedEquitySymbols
	}
	return SupportedCryptoSymbols
}
