package ta

import (
	"math"
	"testing"
)

func TestSMA(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6}
	if got := SMA(values, 3); got != 5 {
		t.Fatalf("expected SMA 5, got %f", got)
	}
	if got := SMA(values, 10); !math.IsNaN(got) {
		t.Fatalf("expected NaN for short input, got %f", got)
	}
}

func TestMeanStd(t *testing.T) {
	mean, std := MeanStd([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	if mean != 5 {
		t.Fatalf("expected mean 5, got %f", mean)
	}
	if std != 2 {
		t.Fatalf("expected std 2, got %f", std)
	}
}

func TestEMASeries(t *testing.T) {
	values := []float64{10, 20, 30}
	out := EMASeries(values, 2)
	if len(out) != 3 {
		t.Fatalf("expected 3 values, got %d", len(out))
	}
	if out[0] != 10 {
		t.Fatalf("expected seed 10, got %f", out[0])
	}
	// alpha = 2/3
	want := (2.0/3.0)*20 + (1.0/3.0)*10
	if math.Abs(out[1]-want) > 1e-12 {
		t.Fatalf("expected %f, got %f", want, out[1])
	}
}

func TestRSISeriesBounds(t *testing.T) {
	// Monotonically increasing closes: zero average loss pins RSI at 100.
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = float64(100 + i)
	}
	series := RSISeries(closes, 14)
	last := series[len(series)-1]
	if last != 100 {
		t.Fatalf("expected RSI 100 on all-gain series, got %f", last)
	}

	// Alternating closes stay strictly inside (0, 100).
	for i := range closes {
		if i%2 == 0 {
			closes[i] = 100
		} else {
			closes[i] = 101
		}
	}
	series = RSISeries(closes, 14)
	last = series[len(series)-1]
	if last <= 0 || last >= 100 {
		t.Fatalf("expected RSI inside (0, 100), got %f", last)
	}
}

func TestRSISeriesTooShort(t *testing.T) {
	if got := RSISeries([]float64{1, 2, 3}, 14); got != nil {
		t.Fatalf("expected nil for short input, got %v", got)
	}
}

func TestMACDSeries(t *testing.T) {
	values := make([]float64, 60)
	for i := range values {
		values[i] = float64(i + 1)
	}
	line, signal := MACDSeries(values, 12, 26, 9)
	if len(line) != len(values) || len(signal) != len(values) {
		t.Fatalf("expected full-length series, got %d/%d", len(line), len(signal))
	}
	// A steadily rising series keeps the fast EMA above the slow EMA.
	if line[len(line)-1] <= 0 {
		t.Fatalf("expected positive MACD on rising series, got %f", line[len(line)-1])
	}
}

func TestBollinger(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	mid, upper, lower := Bollinger(values, 5, 2)
	if mid != 3 {
		t.Fatalf("expected midline 3, got %f", mid)
	}
	if upper <= mid || lower >= mid {
		t.Fatalf("bands not straddling midline: %f %f %f", lower, mid, upper)
	}
	if math.Abs((upper-mid)-(mid-lower)) > 1e-12 {
		t.Fatalf("bands not symmetric: %f %f %f", lower, mid, upper)
	}

	// Zero variance collapses the bands onto the midline.
	flat := []float64{7, 7, 7, 7, 7}
	mid, upper, lower = Bollinger(flat, 5, 2)
	if mid != 7 || upper != 7 || lower != 7 {
		t.Fatalf("expected collapsed bands at 7, got %f %f %f", mid, upper, lower)
	}
}
