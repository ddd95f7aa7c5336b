package analog

import "math"

// Confidence converts sample size and directional consistency into a single
// score in [0, 1]. Consistency is max(up_probability, down_probability); by
// construction that is >= 0.5 whenever the sample is non-empty, but the
// rescale floors at 0 anyway for robustness. The size term saturates toward
// 1 as the sample grows past ~20 analogs (sigmoid centered at 20, scale 10),
// so confidence(0 analogs) is near 0 without any special-casing.
func Confidence(sampleSize int, consistency float64) float64 {
	sizeScore := sigmoid((float64(sampleSize) - 20) / 10)

	consistencyScore := (consistency - 0.5) / 0.5
	if consistencyScore < 0 {
		consistencyScore = 0
	}

	return clamp(0.6*sizeScore+0.4*consistencyScore, 0, 1)
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
