package analog

import (
	"math"
	"testing"

	"Hindsight/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleForwardReturns(t *testing.T) {
	series := testSeries(10, func(i int) float64 { return 100 + float64(i) })
	matches := models.MatchSet{
		{Index: 0, Bar: series[0]},
		{Index: 8, Bar: series[8]},
	}

	fr := SampleForwardReturns(series, matches, []int{5, 20})
	require.Len(t, fr.Rows, 2)

	// Index 0 + 5 exists: (105-100)/100.
	assert.InDelta(t, 0.05, fr.Rows[0].Returns[5], 1e-12)
	// Index 0 + 20 is past the end: missing, marked NaN and not zero.
	assert.True(t, math.IsNaN(fr.Rows[0].Returns[20]))

	// Index 8 has no horizon with enough future bars, but the row stays.
	assert.True(t, math.IsNaN(fr.Rows[1].Returns[5]))
	assert.True(t, math.IsNaN(fr.Rows[1].Returns[20]))
}

func TestSampleForwardReturnsEmptyMatchSet(t *testing.T) {
	series := testSeries(50, func(i int) float64 { return 100 })
	fr := SampleForwardReturns(series, models.MatchSet{}, []int{5, 10})
	assert.Empty(t, fr.Rows)
	assert.Equal(t, []int{5, 10}, fr.Horizons)
}

func TestForwardReturnsColumn(t *testing.T) {
	series := testSeries(30, func(i int) float64 { return 100 + float64(i) })
	matches := models.MatchSet{{Index: 2, Bar: series[2]}, {Index: 28, Bar: series[28]}}
	fr := SampleForwardReturns(series, matches, []int{10})
	col := fr.Column(10)
	require.Len(t, col, 2)
	assert.InDelta(t, 10.0/102.0, col[0], 1e-12)
	assert.True(t, math.IsNaN(col[1]))
}
