package indicators

import (
	"math"
	"testing"
	"time"

	"Hindsight/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func barSeries(n int, price func(i int) float64) []models.Bar {
	start := time.Date(2019, 3, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]models.Bar, n)
	for i := range bars {
		p := price(i)
		bars[i] = models.Bar{
			Timestamp: start.AddDate(0, 0, i),
			Symbol:    "TEST",
			Open:      p, High: p * 1.02, Low: p * 0.98, Close: p,
			Volume: 1e6,
		}
	}
	return bars
}

// A candidate's attributes must be identical whether computed from a series
// truncated at the candidate's date or from the full series: the trailing
// window never sees the future.
func TestTrailingSnapshotNoLookahead(t *testing.T) {
	full := barSeries(600, func(i int) float64 {
		return 100 + 20*math.Sin(float64(i)/30) + 0.02*float64(i)
	})
	for _, idx := range []int{80, 250, 400, 599} {
		truncated := full[:idx+1]
		fromFull := TrailingSnapshot(full, idx, 250)
		fromTrunc := TrailingSnapshot(truncated, idx, 250)
		assert.Equal(t, fromTrunc, fromFull, "lookahead at index %d", idx)
	}
}

func TestTrailingSnapshotValues(t *testing.T) {
	series := barSeries(300, func(i int) float64 { return 100 })
	s := TrailingSnapshot(series, 299, 250)
	assert.InDelta(t, 100, s.MA20, 1e-9)
	assert.InDelta(t, 100, s.MA60, 1e-9)
	assert.InDelta(t, 100, s.MA250, 1e-9)
	// Flat closes, high = close*1.02: about -1.96% below the trailing high.
	assert.InDelta(t, (100/102.0-1)*100, s.DistToHighPct, 1e-6)
}

func TestTrailingSnapshotShortWindowDegrades(t *testing.T) {
	series := barSeries(30, func(i int) float64 { return float64(i + 1) })
	s := TrailingSnapshot(series, 29, 250)
	// Fewer closes than the MA period: mean of what is available.
	assert.InDelta(t, 15.5, s.MA250, 1e-9)
	assert.InDelta(t, 15.5, s.MA60, 1e-9)
	// MA20 has a full window: mean of 11..30.
	assert.InDelta(t, 20.5, s.MA20, 1e-9)
}

func TestTrailingSnapshotNeutralRSIWhenTooShort(t *testing.T) {
	series := barSeries(5, func(i int) float64 { return 100 + float64(i) })
	s := TrailingSnapshot(series, 4, 250)
	assert.InDelta(t, 50, s.RSI, 1e-9)
}

func TestFromBarPrefersPipelineAttributes(t *testing.T) {
	series := barSeries(300, func(i int) float64 { return 100 })
	idx := len(series) - 1
	series[idx].Attrs = map[string]float64{
		models.AttrRSI:           63.2,
		models.AttrMA20:          101,
		models.AttrMA60:          99,
		models.AttrMA250:         95,
		models.AttrDistToHighPct: -7.5,
	}

	s, backfilled := FromBar(series, idx, 250)
	assert.Empty(t, backfilled)
	assert.InDelta(t, 63.2, s.RSI, 1e-12)
	assert.InDelta(t, -7.5, s.DistToHighPct, 1e-12)
}

func TestFromBarBackfillsMissing(t *testing.T) {
	series := barSeries(300, func(i int) float64 { return 100 })
	idx := len(series) - 1
	series[idx].Attrs = map[string]float64{models.AttrRSI: 63.2}

	s, backfilled := FromBar(series, idx, 250)
	require.Contains(t, backfilled, models.AttrMA20)
	require.Contains(t, backfilled, models.AttrDistToHighPct)
	assert.NotContains(t, backfilled, models.AttrRSI)
	assert.InDelta(t, 63.2, s.RSI, 1e-12)
	assert.InDelta(t, 100, s.MA20, 1e-9)
}

func TestFromBarTreatsNaNAsMissing(t *testing.T) {
	series := barSeries(300, func(i int) float64 { return 100 })
	idx := len(series) - 1
	series[idx].Attrs = map[string]float64{models.AttrRSI: math.NaN()}

	_, backfilled := FromBar(series, idx, 250)
	assert.Contains(t, backfilled, models.AttrRSI)
}
