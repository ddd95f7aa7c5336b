package analog

import (
	"testing"

	"Hindsight/internal/domain/models"

	"github.com/stretchr/testify/assert"
)

func TestSizePositionStrongBuyBullMid(t *testing.T) {
	p := DefaultParams()
	// 30 analogs, 80% up, confidence 0.85: strong-buy row, half-Kelly
	// saturates, blend 0.7*0.80+0.3*1.0 = 0.86, bull-mid factor 0.85.
	advice := SizePosition(0.80, 0.85, 0.03, 0.10, models.RegimeBullMid, p)
	assert.Equal(t, models.SignalStrongBuy, advice.Signal)
	assert.InDelta(t, 0.80, advice.BasePosition, 1e-12)
	assert.InDelta(t, 1.0, advice.Kelly, 1e-12)
	assert.InDelta(t, 0.85, advice.RegimeFactor, 1e-12)
	assert.InDelta(t, 0.731, advice.Position, 1e-9)
	assert.Contains(t, advice.Rationale, "regime bull_mid")
}

func TestSizePositionBullTopOverride(t *testing.T) {
	p := DefaultParams()
	advice := SizePosition(0.80, 0.85, 0.03, 0.10, models.RegimeBullTop, p)
	assert.Equal(t, models.SignalCautionHold, advice.Signal)
	assert.InDelta(t, 0.60, advice.RegimeFactor, 1e-12)
	assert.InDelta(t, 0.516, advice.Position, 1e-9)
	assert.Equal(t, "near cycle top, reduce exposure", advice.Warning)
}

func TestSizePositionBearBottomOverride(t *testing.T) {
	p := DefaultParams()
	advice := SizePosition(0.20, 0.85, -0.02, 0.10, models.RegimeBearBottom, p)
	assert.Equal(t, models.SignalAwaitStabilization, advice.Signal)
	assert.InDelta(t, 0.20, advice.BasePosition, 1e-12)
	// Negative mean: no Kelly blend, base * 1.20.
	assert.Zero(t, advice.Kelly)
	assert.InDelta(t, 0.24, advice.Position, 1e-9)
}

func TestSizePositionNeutral(t *testing.T) {
	p := DefaultParams()
	advice := SizePosition(0.5, 0, 0, 0, models.RegimeChoppy, p)
	assert.Equal(t, models.SignalNeutral, advice.Signal)
	assert.InDelta(t, 0.50, advice.BasePosition, 1e-12)
	assert.InDelta(t, 0.50, advice.Position, 1e-12)
}

func TestSizePositionBounds(t *testing.T) {
	p := DefaultParams()
	regimes := []models.Regime{
		models.RegimeBullTop, models.RegimeBullMid, models.RegimeBearBottom,
		models.RegimeBearMid, models.RegimeChoppy,
	}
	for up := 0.0; up <= 1.0; up += 0.125 {
		for conf := 0.0; conf <= 1.0; conf += 0.25 {
			for _, mean := range []float64{-0.05, 0, 0.001, 0.5} {
				for _, std := range []float64{0, 1e-9, 0.02, 0.5} {
					for _, r := range regimes {
						advice := SizePosition(up, conf, mean, std, r, p)
						assert.GreaterOrEqual(t, advice.Position, 0.10)
						assert.LessOrEqual(t, advice.Position, 0.90)
					}
				}
			}
		}
	}
}

// Near-zero variance with positive mean: the variance floor keeps the Kelly
// term clamped instead of dividing by ~0, and the clamp bounds the blend.
func TestSizePositionVarianceFloor(t *testing.T) {
	p := DefaultParams()
	advice := SizePosition(0.80, 0.85, 0.0001, 1e-12, models.RegimeChoppy, p)
	assert.LessOrEqual(t, advice.Kelly, 1.0)
	assert.LessOrEqual(t, advice.Position, 0.90)
}

func TestNeutralAdvice(t *testing.T) {
	p := DefaultParams()
	advice := NeutralAdvice(models.RegimeBearMid, p, "no reliable historical analog")
	assert.Equal(t, models.SignalNeutral, advice.Signal)
	assert.True(t, advice.NoEvidence)
	assert.InDelta(t, 0.50, advice.Position, 1e-12)
	assert.InDelta(t, 0.90, advice.RegimeFactor, 1e-12)
}

func TestParamsValidate(t *testing.T) {
	assert.NoError(t, DefaultParams().Validate())

	p := DefaultParams()
	p.PriceTolerance = 0
	assert.Error(t, p.Validate())

	p = DefaultParams()
	p.PrimaryHorizon = 7
	assert.Error(t, p.Validate())

	p = DefaultParams()
	p.TrailingWindow = 10
	assert.Error(t, p.Validate())
}
