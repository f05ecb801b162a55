package domain

import (
	"sort"
	"time"
)

// Candle represents a single OHLCV candle for an asset at a given interval.
type Candle struct {
	Symbol   string     `json:"symbol"`
	Source   AssetClass `json:"source"`
	Interval string     `json:"interval"`
	OpenTime time.Time  `json:"open_time"`
	Open     float64    `json:"open"`
	High     float64    `json:"high"`
	Low      float64    `json:"low"`
	Close    float64    `json:"close"`
	Volume   float64    `json:"volume"`
}

// MinIndicatorHistory is the minimum candle count required before
// indicators are computed over a series.
const MinIndicatorHistory = 200

// NormalizeCandles enforces the series invariants providers must
// guarantee: ascending open times, no duplicate timestamps (the last
// observation for a timestamp wins), and no future-dated candles.
// The input slice is not modified.
func NormalizeCandles(candles []Candle, now time.Time) []Candle {
	if len(candles) == 0 {
		return nil
	}

	byTime := make(map[int64]Candle, len(candles))
	for _, c := range candles {
		if c.OpenTime.After(now) {
			continue
		}
		byTime[c.OpenTime.UnixMilli()] = c
	}
	if len(byTime) == 0 {
		return nil
	}

	out := make([]Candle, 0, len(byTime))
	for _, c := range byTime {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].OpenTime.Before(out[j].OpenTime)
	})
	return out
}

// Closes extracts the close-price sequence in series order.
func Closes(candles []Candle) []float64 {
	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}
	return closes
}
