package indicators

import (
	"math"

	"Hindsight/internal/domain/models"

	"github.com/markcheno/go-talib"
)

// RSIPeriod is the lookback used for the relative strength index.
const RSIPeriod = 14

// Snapshot holds the technical attributes of one observation, computed from
// (or verified against) a trailing window. DistToHighPct is the distance to
// the trailing 52-week high in percentage points; negative below the high.
type Snapshot struct {
	Close         float64
	RSI           float64
	MA20          float64
	MA60          float64
	MA250         float64
	DistToHighPct float64
}

// TrailingSnapshot computes the attributes of series[idx] using only bars up
// to and including idx, looking back at most window bars. This is the
// no-lookahead path: a historical candidate gets exactly the attributes that
// were knowable on its date.
func TrailingSnapshot(series []models.Bar, idx, window int) Snapshot {
	lo := idx - window + 1
	if lo < 0 {
		lo = 0
	}
	bars := series[lo : idx+1]
	closes := make([]float64, len(bars))
	highs := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
		h := b.High
		if h <= 0 {
			h = b.Close
		}
		highs[i] = h
	}

	cur := closes[len(closes)-1]
	return Snapshot{
		Close:         cur,
		RSI:           lastRSI(closes),
		MA20:          tailMean(closes, 20),
		MA60:          tailMean(closes, 60),
		MA250:         tailMean(closes, 250),
		DistToHighPct: distToHigh(cur, highs),
	}
}

// FromBar builds the snapshot of series[idx] preferring the attributes the
// upstream pipeline attached to the bar, and backfilling any missing one
// from the trailing window. The returned slice names every attribute that
// had to be backfilled, so callers can tell "missing" from "measured".
func FromBar(series []models.Bar, idx, window int) (Snapshot, []string) {
	computed := TrailingSnapshot(series, idx, window)
	bar := series[idx]

	var backfilled []string
	pick := func(name string, fallback float64) float64 {
		if v, ok := bar.Attr(name); ok && !math.IsNaN(v) {
			return v
		}
		backfilled = append(backfilled, name)
		return fallback
	}

	s := Snapshot{
		Close:         bar.Close,
		RSI:           pick(models.AttrRSI, computed.RSI),
		MA20:          pick(models.AttrMA20, computed.MA20),
		MA60:          pick(models.AttrMA60, computed.MA60),
		MA250:         pick(models.AttrMA250, computed.MA250),
		DistToHighPct: pick(models.AttrDistToHighPct, computed.DistToHighPct),
	}
	return s, backfilled
}

// lastRSI returns the latest RSI over closes, or 50 (a neutral reading) when
// the window is too short for the lookback. The neutral substitution only
// happens here at the boundary, never inside downstream formulas.
func lastRSI(closes []float64) float64 {
	if len(closes) < RSIPeriod+1 {
		return 50
	}
	rsi := talib.Rsi(closes, RSIPeriod)
	v := rsi[len(rsi)-1]
	if math.IsNaN(v) {
		return 50
	}
	return v
}

// tailMean is the mean of the last min(period, len) closes. For windows
// shorter than the period this degrades to the mean of what is available,
// matching rolling-mean-with-min-periods semantics upstream.
func tailMean(closes []float64, period int) float64 {
	n := len(closes)
	if n == 0 {
		return 0
	}
	if n >= period {
		sma := talib.Sma(closes, period)
		return sma[len(sma)-1]
	}
	sum := 0.0
	for _, c := range closes {
		sum += c
	}
	return sum / float64(n)
}

func distToHigh(cur float64, highs []float64) float64 {
	high := 0.0
	for _, h := range highs {
		if h > high {
			high = h
		}
	}
	if high <= 0 {
		return 0
	}
	return (cur/high - 1) * 100
}
