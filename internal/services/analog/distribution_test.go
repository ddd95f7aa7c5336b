package analog

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeEmptySample(t *testing.T) {
	s := Summarize(nil, 20)
	assert.True(t, s.Insufficient)
	assert.Zero(t, s.SampleSize)
	assert.Zero(t, s.Mean)
	assert.Zero(t, s.UpProbability)
	assert.Zero(t, s.DownProbability)

	// All-missing columns behave like empty samples.
	s = Summarize([]float64{math.NaN(), math.NaN()}, 20)
	assert.True(t, s.Insufficient)
	assert.Zero(t, s.SampleSize)
}

func TestSummarizeDropsMissingAndExcludesTies(t *testing.T) {
	s := Summarize([]float64{0.10, math.NaN(), -0.05, 0, 0.20, math.NaN()}, 10)
	require.False(t, s.Insufficient)
	assert.Equal(t, 4, s.SampleSize)
	assert.Equal(t, 2, s.UpCount)
	assert.Equal(t, 1, s.DownCount)
	assert.LessOrEqual(t, s.UpCount+s.DownCount, s.SampleSize)
	assert.InDelta(t, 0.50, s.UpProbability, 1e-12)
	assert.InDelta(t, 0.25, s.DownProbability, 1e-12)
	assert.InDelta(t, 0.0625, s.Mean, 1e-12)
	assert.InDelta(t, -0.05, s.Min, 1e-12)
	assert.InDelta(t, 0.20, s.Max, 1e-12)
}

func TestSummarizeStatistics(t *testing.T) {
	s := Summarize([]float64{0.01, 0.02, 0.03, 0.04, 0.05}, 5)
	assert.Equal(t, 5, s.SampleSize)
	assert.InDelta(t, 0.03, s.Mean, 1e-12)
	assert.InDelta(t, 0.03, s.Median, 1e-12)
	// Linear interpolation at index (n-1)*p over the sorted sample.
	assert.InDelta(t, 0.02, s.P25, 1e-12)
	assert.InDelta(t, 0.04, s.P75, 1e-12)

	// Sample stddev with ddof=1.
	two := Summarize([]float64{0.01, 0.03}, 5)
	assert.InDelta(t, 0.0141421356, two.StdDev, 1e-9)

	// A single observation has no dispersion estimate.
	one := Summarize([]float64{0.02}, 5)
	assert.Equal(t, 1, one.SampleSize)
	assert.Zero(t, one.StdDev)
}

func TestSummarizeQuantileConvention(t *testing.T) {
	// Even sample: median is the mean of the two middles, quarter points
	// interpolate between neighbors.
	even := Summarize([]float64{0.04, 0.01, 0.03, 0.02}, 10)
	assert.InDelta(t, 0.025, even.Median, 1e-12)
	assert.InDelta(t, 0.0175, even.P25, 1e-12)
	assert.InDelta(t, 0.0325, even.P75, 1e-12)

	// Odd sample: median is the middle element exactly.
	odd := Summarize([]float64{0.05, 0.01, 0.03}, 10)
	assert.InDelta(t, 0.03, odd.Median, 1e-12)
	assert.InDelta(t, 0.02, odd.P25, 1e-12)
	assert.InDelta(t, 0.04, odd.P75, 1e-12)

	// Degenerate single-point sample collapses every quantile to it.
	single := Summarize([]float64{0.02}, 10)
	assert.InDelta(t, 0.02, single.Median, 1e-12)
	assert.InDelta(t, 0.02, single.P25, 1e-12)
	assert.InDelta(t, 0.02, single.P75, 1e-12)
}

func TestSummarizeAllPreservesHorizonOrder(t *testing.T) {
	series := testSeries(100, func(i int) float64 { return 100 + float64(i) })
	ms := FindAnalogs(series, 110, 0.02, 5)
	require.NotEmpty(t, ms)
	fr := SampleForwardReturns(series, ms, []int{5, 10, 20})
	sums := SummarizeAll(fr)
	require.Len(t, sums, 3)
	assert.Equal(t, 5, sums[0].Horizon)
	assert.Equal(t, 10, sums[1].Horizon)
	assert.Equal(t, 20, sums[2].Horizon)
}
