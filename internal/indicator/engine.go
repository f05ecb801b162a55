package indicator

import (
	"fmt"

	"marketpulse/internal/domain"
	"marketpulse/internal/ta"
)

// Default indicator windows, in candles.
const (
	smaShortPeriod  = 20
	smaMidPeriod    = 50
	smaLongPeriod   = 200
	rsiPeriod       = 14
	macdFastPeriod  = 12
	macdSlowPeriod  = 26
	macdSignalSpan  = 9
	bollingerPeriod = 20
	bollingerStdDev = 2.0
)

// Engine computes indicator snapshots from candle series. It is
// stateless; Compute is a pure function of its input.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// Compute derives the full indicator bundle from a normalized candle
// series. The series must be chronological and at least
// domain.MinIndicatorHistory long; shorter input fails with
// domain.ErrInsufficientHistory rather than producing a snapshot with
// undefined values.
func (e *Engine) Compute(candles []domain.Candle) (*domain.IndicatorSnapshot, error) {
	if len(candles) < domain.MinIndicatorHistory {
		return nil, fmt.Errorf("%w: have %d candles, need %d",
			domain.ErrInsufficientHistory, len(candles), domain.MinIndicatorHistory)
	}

	closes := domain.Closes(candles)
	last := candles[len(candles)-1]

	rsi := ta.RSISeries(closes, rsiPeriod)
	macdLine, macdSignal := ta.MACDSeries(closes, macdFastPeriod, macdSlowPeriod, macdSignalSpan)
	bbMid, bbUpper, bbLower := ta.Bollinger(closes, bollingerPeriod, bollingerStdDev)

	macd := macdLine[len(macdLine)-1]
	signal := macdSignal[len(macdSignal)-1]

	return &domain.IndicatorSnapshot{
		Symbol:     last.Symbol,
		Source:     last.Source,
		AsOf:       last.OpenTime,
		SMA20:      ta.SMA(closes, smaShortPeriod),
		SMA50:      ta.SMA(closes, smaMidPeriod),
		SMA200:     ta.SMA(closes, smaLongPeriod),
		RSI14:      rsi[len(rsi)-1],
		MACDLine:   macd,
		MACDSignal: signal,
		MACDHist:   macd - signal,
		BBMiddle:   bbMid,
		BBUpper:    bbUpper,
		BBLower:    bbLower,
	}, nil
}
