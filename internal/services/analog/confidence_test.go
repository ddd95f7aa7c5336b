package analog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfidenceMonotonicInSampleSize(t *testing.T) {
	assert.Greater(t, Confidence(100, 0.9), Confidence(5, 0.9))
	assert.Greater(t, Confidence(50, 0.9), Confidence(20, 0.9))
}

func TestConfidenceMonotonicInConsistency(t *testing.T) {
	assert.Greater(t, Confidence(50, 0.95), Confidence(50, 0.55))
}

func TestConfidenceBounds(t *testing.T) {
	for _, n := range []int{0, 1, 5, 20, 100, 10000} {
		for _, c := range []float64{0, 0.5, 0.75, 1} {
			v := Confidence(n, c)
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 1.0)
		}
	}
}

func TestConfidenceAnchors(t *testing.T) {
	// n=20 puts the size sigmoid at exactly 0.5; consistency 0.5 rescales
	// to 0, so confidence is 0.6*0.5 = 0.30.
	assert.InDelta(t, 0.30, Confidence(20, 0.5), 1e-12)

	// An empty sample trends to ~0: size term ~0.12, consistency floored.
	assert.Less(t, Confidence(0, 0), 0.1)

	// Consistency below 0.5 cannot happen with max(up, down), but the
	// rescale still floors instead of going negative.
	assert.Equal(t, Confidence(20, 0.3), Confidence(20, 0.5))
}
