package analog

import (
	"math"
	"sort"

	"Hindsight/internal/domain/models"

	"gonum.org/v1/gonum/stat"
)

// Summarize aggregates one horizon's forward-return sample. Missing values
// (NaN) are dropped first; an empty remainder yields a zeroed summary with
// Insufficient set — never a panic, never a fabricated statistic. Returns of
// exactly zero count toward neither up nor down. StdDev is the sample
// standard deviation (ddof=1), 0 for n < 2; quantiles use linear
// interpolation.
func Summarize(returns []float64, horizon int) models.ReturnSummary {
	sample := make([]float64, 0, len(returns))
	for _, r := range returns {
		if !math.IsNaN(r) {
			sample = append(sample, r)
		}
	}

	s := models.ReturnSummary{Horizon: horizon, SampleSize: len(sample)}
	if len(sample) == 0 {
		s.Insufficient = true
		return s
	}

	for _, r := range sample {
		switch {
		case r > 0:
			s.UpCount++
		case r < 0:
			s.DownCount++
		}
	}
	n := float64(len(sample))
	s.UpProbability = float64(s.UpCount) / n
	s.DownProbability = float64(s.DownCount) / n

	sort.Float64s(sample)
	s.Min = sample[0]
	s.Max = sample[len(sample)-1]
	s.Mean = stat.Mean(sample, nil)
	s.Median = quantile(sample, 0.5)
	s.P25 = quantile(sample, 0.25)
	s.P75 = quantile(sample, 0.75)
	if len(sample) > 1 {
		s.StdDev = stat.StdDev(sample, nil)
	}
	return s
}

// quantile interpolates linearly between the sorted neighbors of index
// (n-1)*p. At p=0.5 this is the conventional median: the middle element for
// odd n, the mean of the two middle elements for even n.
func quantile(sorted []float64, p float64) float64 {
	idx := float64(len(sorted)-1) * p
	lo := int(math.Floor(idx))
	hi := int(math.Ceil(idx))
	if lo == hi {
		return sorted[lo]
	}
	frac := idx - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// SummarizeAll runs Summarize over every horizon column of a sampled table,
// preserving horizon order.
func SummarizeAll(fr models.ForwardReturns) []models.ReturnSummary {
	out := make([]models.ReturnSummary, 0, len(fr.Horizons))
	for _, h := range fr.Horizons {
		out = append(out, Summarize(fr.Column(h), h))
	}
	return out
}
