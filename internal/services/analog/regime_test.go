package analog

import (
	"testing"

	"Hindsight/internal/domain/models"
	"Hindsight/internal/services/indicators"

	"github.com/stretchr/testify/assert"
)

func TestClassifyMAState(t *testing.T) {
	cases := []struct {
		name string
		s    indicators.Snapshot
		want models.MAState
	}{
		{"bullish strict", indicators.Snapshot{Close: 110, MA20: 105, MA60: 100, MA250: 90}, models.MABullishStack},
		{"bearish strict", indicators.Snapshot{Close: 80, MA20: 85, MA60: 90, MA250: 100}, models.MABearishStack},
		{"equal is mixed", indicators.Snapshot{Close: 100, MA20: 100, MA60: 90, MA250: 80}, models.MAMixed},
		{"crossed is mixed", indicators.Snapshot{Close: 110, MA20: 100, MA60: 105, MA250: 90}, models.MAMixed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifyMAState(tc.s))
		})
	}
}

func TestClassifyEnvironment(t *testing.T) {
	th := DefaultParams().Thresholds
	bull := indicators.Snapshot{Close: 110, MA20: 105, MA60: 100, MA250: 90}
	bear := indicators.Snapshot{Close: 80, MA20: 85, MA60: 90, MA250: 100}

	cases := []struct {
		name string
		s    indicators.Snapshot
		want models.Regime
	}{
		{"bull top", withMomentum(bull, 75, -2), models.RegimeBullTop},
		{"bull mid", withMomentum(bull, 60, -10), models.RegimeBullMid},
		{"bear bottom", withMomentum(bear, 25, -50), models.RegimeBearBottom},
		{"bear mid", withMomentum(bear, 45, -30), models.RegimeBearMid},
		{"overbought without stack is choppy", withMomentum(bear, 75, -2), models.RegimeChoppy},
		{"deep drawdown without oversold is choppy", withMomentum(bear, 45, -50), models.RegimeChoppy},
		{"bullish stack far from high is choppy", withMomentum(bull, 60, -30), models.RegimeChoppy},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifyEnvironment(tc.s, th))
		})
	}
}

// Every snapshot must classify to exactly one label; spot-check totality
// over a coarse grid.
func TestClassifyEnvironmentTotal(t *testing.T) {
	th := DefaultParams().Thresholds
	valid := map[models.Regime]bool{
		models.RegimeBullTop: true, models.RegimeBullMid: true,
		models.RegimeBearBottom: true, models.RegimeBearMid: true,
		models.RegimeChoppy: true,
	}
	for rsi := 0.0; rsi <= 100; rsi += 10 {
		for dist := -80.0; dist <= 0; dist += 5 {
			s := indicators.Snapshot{Close: 100, MA20: 99, MA60: 98, MA250: 97, RSI: rsi, DistToHighPct: dist}
			assert.True(t, valid[ClassifyEnvironment(s, th)])
		}
	}
}

func withMomentum(s indicators.Snapshot, rsi, dist float64) indicators.Snapshot {
	s.RSI = rsi
	s.DistToHighPct = dist
	return s
}
