package analog

import (
	"math"
	"testing"
	"time"

	"Hindsight/internal/domain/models"
	"Hindsight/internal/services/indicators"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSeries(n int, price func(i int) float64) []models.Bar {
	start := time.Date(2018, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]models.Bar, n)
	for i := range bars {
		p := price(i)
		bars[i] = models.Bar{
			Timestamp: start.AddDate(0, 0, i),
			Symbol:    "TEST",
			Open:      p,
			High:      p * 1.01,
			Low:       p * 0.99,
			Close:     p,
			Volume:    1e6,
		}
	}
	return bars
}

func TestFindAnalogsToleranceBand(t *testing.T) {
	series := testSeries(400, func(i int) float64 {
		return 80 + 40*math.Abs(math.Sin(float64(i)/25))
	})
	const price, tol = 100.0, 0.05
	ms := FindAnalogs(series, price, tol, 5)
	require.NotEmpty(t, ms)

	inSet := make(map[int]bool, len(ms))
	for _, a := range ms {
		inSet[a.Index] = true
		assert.GreaterOrEqual(t, a.Bar.Close, price*(1-tol))
		assert.LessOrEqual(t, a.Bar.Close, price*(1+tol))
	}

	// Completeness: every in-band bar outside the min gap must be a member.
	cutoff := series[len(series)-1].Timestamp.AddDate(0, 0, -5)
	for i, b := range series {
		if b.Close >= price*(1-tol) && b.Close <= price*(1+tol) && !b.Timestamp.After(cutoff) {
			assert.True(t, inSet[i], "bar %d in band but excluded", i)
		}
	}
}

func TestFindAnalogsNoSelfMatch(t *testing.T) {
	series := testSeries(100, func(i int) float64 { return 100 })
	ms := FindAnalogs(series, 100, 0.05, 5)
	require.NotEmpty(t, ms)
	last := series[len(series)-1].Timestamp
	for _, a := range ms {
		gap := last.Sub(a.Bar.Timestamp)
		assert.GreaterOrEqual(t, gap, 5*24*time.Hour, "match %s too close to now", a.Bar.Timestamp)
	}
}

func TestFindAnalogsEmptyInputs(t *testing.T) {
	assert.Empty(t, FindAnalogs(nil, 100, 0.05, 5))
	assert.Empty(t, FindAnalogs(testSeries(10, func(int) float64 { return 1 }), 0, 0.05, 5))
	// No candidate in band is a valid, empty result.
	assert.Empty(t, FindAnalogs(testSeries(10, func(int) float64 { return 1 }), 100, 0.05, 5))
}

func TestFindAnalogsEnhancedDropsShortHistory(t *testing.T) {
	p := DefaultParams()
	series := testSeries(500, func(i int) float64 { return 100 })
	cur := indicators.TrailingSnapshot(series, len(series)-1, p.TrailingWindow)

	ms := FindAnalogsEnhanced(series, cur, p, true)
	require.NotEmpty(t, ms)
	for _, a := range ms {
		assert.GreaterOrEqual(t, a.Index+1, p.MinTrailingObs,
			"candidate %d kept with insufficient trailing history", a.Index)
	}
}

func TestFindAnalogsEnhancedFiltersByRSI(t *testing.T) {
	p := DefaultParams()
	p.RSITolerance = 0.0001 // effectively require identical momentum
	p.DistTolerancePct = 100

	// A steadily rising series: late candidates share the current RSI
	// profile, but the shape ensures the filter rejects dissimilar ones
	// when tolerance is this tight relative to the flat stretch below.
	series := testSeries(600, func(i int) float64 {
		if i < 300 {
			return 100
		}
		return 100 + 0.05*float64(i-300)
	})
	cur := indicators.TrailingSnapshot(series, len(series)-1, p.TrailingWindow)

	loose := DefaultParams()
	looseMS := FindAnalogsEnhanced(series, cur, loose, true)
	tightMS := FindAnalogsEnhanced(series, cur, p, true)
	assert.LessOrEqual(t, len(tightMS), len(looseMS), "tighter tolerance must not widen the match set")

	for _, a := range tightMS {
		cand := indicators.TrailingSnapshot(series, a.Index, p.TrailingWindow)
		assert.InDelta(t, cur.RSI, cand.RSI, p.RSITolerance)
	}
}

func TestFindAnalogsEnhancedStageOneOnly(t *testing.T) {
	p := DefaultParams()
	series := testSeries(400, func(i int) float64 { return 100 })
	cur := indicators.TrailingSnapshot(series, len(series)-1, p.TrailingWindow)

	stage1 := FindAnalogs(series, cur.Close, p.PriceTolerance, p.MinGapDays)
	got := FindAnalogsEnhanced(series, cur, p, false)
	assert.Equal(t, stage1, got)
}
