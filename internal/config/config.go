package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	DatabaseURL string
	RedisURL    string
	Port        string
	APIKey      string

	CoinGeckoAPIKey  string
	CoinGeckoBaseURL string
	YahooBaseURL     string

	ProviderTimeoutSecs int
	FetchTimeoutSecs    int

	RefreshSchedule     string
	RefreshIntervalSecs int

	CryptoNewsFeeds []string
	EquityNewsFeeds []string
}

var defaultCryptoFeeds = []string{
	"https://www.coindesk.com/arc/outboundfeeds/rss/",
	"https://cointelegraph.com/rss",
}

var defaultEquityFeeds = []string{
	"https://feeds.content.dowjones.io/public/rss/mw_topstories",
	"https://www.cnbc.com/id/100003114/device/rss/rss.html",
}

func Load() *Config {
	cfg := &Config{
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisURL:        os.Getenv("REDIS_URL"),
		APIKey:          os.Getenv("API_KEY"),
		CoinGeckoAPIKey: os.Getenv("COINGECKO_API_KEY"),
	}

	if cfg.DatabaseURL == "" {
		log.Println("Warning: DATABASE_URL not set")
	}
	if cfg.RedisURL == "" {
		log.Println("Warning: REDIS_URL not set, defaulting to localhost:6379")
		cfg.RedisURL = "localhost:6379"
	}

	cfg.Port = strings.TrimSpace(os.Getenv("PORT"))
	if cfg.Port == "" {
		cfg.Port = "8080"
	}

	cfg.CoinGeckoBaseURL = strings.TrimSpace(os.Getenv("COINGECKO_BASE_URL"))
	cfg.YahooBaseURL = strings.TrimSpace(os.Getenv("YAHOO_BASE_URL"))

	cfg.ProviderTimeoutSecs = 30
	if v := strings.TrimSpace(os.Getenv("PROVIDER_TIMEOUT_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ProviderTimeoutSecs = n
		}
	}

	cfg.FetchTimeoutSecs = 5
	if v := strings.TrimSpace(os.Getenv("FETCH_TIMEOUT_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.FetchTimeoutSecs = n
		}
	}

	cfg.RefreshSchedule = strings.TrimSpace(os.Getenv("REFRESH_SCHEDULE"))

	cfg.RefreshIntervalSecs = 300
	if v := strings.TrimSpace(os.Getenv("REFRESH_INTERVAL_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RefreshIntervalSecs = n
		}
	}

	cfg.CryptoNewsFeeds = feedList("CRYPTO_NEWS_FEEDS", defaultCryptoFeeds)
	cfg.EquityNewsFeeds = feedList("EQUITY_NEWS_FEEDS", defaultEquityFeeds)

	return cfg
}

// feedList reads a comma-separated feed URL list, falling back to the
// built-in defaults when the variable is unset.
func feedList(key string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	var feeds []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			feeds = append(feeds, part)
		}
	}
	if len(feeds) == 0 {
		return fallback
	}
	return feeds
}
