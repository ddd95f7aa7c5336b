package analog

import (
	"fmt"

	"Hindsight/internal/domain/models"
)

// Thresholds externalizes the regime-classification cut-offs so unit tests
// can inject their own. Distances are in percentage points relative to the
// trailing 52-week high (negative below the high).
type Thresholds struct {
	OverboughtRSI   float64 // bull_top requires RSI above this
	OversoldRSI     float64 // bear_bottom requires RSI below this
	NearHighPct     float64 // bull_top requires distance above this
	MidRangePct     float64 // bull_mid / bear_mid boundary
	DeepDrawdownPct float64 // bear_bottom requires distance below this
}

// SizingRule is one row of the base signal table, evaluated in order with
// first match winning. A zero UpProbAtLeast / a 1.0 UpProbAtMost disables
// that side of the check.
type SizingRule struct {
	UpProbAtLeast     float64
	UpProbAtMost      float64
	ConfidenceAtLeast float64
	Base              float64
	Signal            models.Signal
}

// RegimeAdjustment scales the blended position and may override the signal
// label with a warning.
type RegimeAdjustment struct {
	Factor        float64
	OverridesBuys bool
	OverridesSell bool
	Override      models.Signal
	Warning       string
}

// Params collects every tunable of the engine. There is no hidden
// module-level state: each component receives the Params it needs.
type Params struct {
	PriceTolerance   float64 // fraction of current price, Stage-1 band
	MinGapDays       int     // calendar days a match must precede "now" by
	RSITolerance     float64 // points, Stage-2
	DistTolerancePct float64 // percentage points, Stage-2
	TrailingWindow   int     // bars used to recompute candidate attributes
	MinTrailingObs   int     // candidates with fewer trailing bars are dropped
	Horizons         []int   // forward-return horizons, trading periods
	PrimaryHorizon   int     // horizon feeding confidence and sizing

	Thresholds Thresholds

	SizingRules []SizingRule
	NeutralBase float64
	KellyWeight float64 // weight of the half-Kelly term in the blend
	MinStd      float64 // variance floor for the Kelly denominator
	MinPosition float64
	MaxPosition float64
	Regimes     map[models.Regime]RegimeAdjustment
}

// DefaultParams returns the production defaults.
func DefaultParams() Params {
	return Params{
		PriceTolerance:   0.05,
		MinGapDays:       5,
		RSITolerance:     15.0,
		DistTolerancePct: 15.0,
		TrailingWindow:   250,
		MinTrailingObs:   60,
		Horizons:         []int{5, 10, 20, 60},
		PrimaryHorizon:   20,
		Thresholds: Thresholds{
			OverboughtRSI:   70,
			OversoldRSI:     30,
			NearHighPct:     -5,
			MidRangePct:     -20,
			DeepDrawdownPct: -40,
		},
		SizingRules: []SizingRule{
			{UpProbAtLeast: 0.75, UpProbAtMost: 1, ConfidenceAtLeast: 0.8, Base: 0.80, Signal: models.SignalStrongBuy},
			{UpProbAtLeast: 0.65, UpProbAtMost: 1, ConfidenceAtLeast: 0.7, Base: 0.65, Signal: models.SignalBuy},
			{UpProbAtLeast: 0, UpProbAtMost: 0.25, ConfidenceAtLeast: 0.8, Base: 0.20, Signal: models.SignalStrongSell},
			{UpProbAtLeast: 0, UpProbAtMost: 0.35, ConfidenceAtLeast: 0.7, Base: 0.30, Signal: models.SignalSell},
		},
		NeutralBase: 0.50,
		KellyWeight: 0.3,
		MinStd:      1e-4,
		MinPosition: 0.10,
		MaxPosition: 0.90,
		Regimes: map[models.Regime]RegimeAdjustment{
			models.RegimeBullTop: {
				Factor:        0.60,
				OverridesBuys: true,
				Override:      models.SignalCautionHold,
				Warning:       "near cycle top, reduce exposure",
			},
			models.RegimeBullMid: {
				Factor:  0.85,
				Warning: "mid-cycle, watch for pullback",
			},
			models.RegimeBearBottom: {
				Factor:        1.20,
				OverridesSell: true,
				Override:      models.SignalAwaitStabilization,
				Warning:       "possible capitulation low",
			},
			models.RegimeBearMid: {Factor: 0.90},
			models.RegimeChoppy:  {Factor: 1.00},
		},
	}
}

// Validate checks Params for configuration mistakes that would silently
// distort results.
func (p Params) Validate() error {
	if p.PriceTolerance <= 0 || p.PriceTolerance > 0.5 {
		return fmt.Errorf("price_tolerance must be in (0, 0.5], got %v", p.PriceTolerance)
	}
	if p.MinGapDays < 0 {
		return fmt.Errorf("min_gap_days must be >= 0, got %d", p.MinGapDays)
	}
	if p.MinTrailingObs <= 0 || p.TrailingWindow < p.MinTrailingObs {
		return fmt.Errorf("trailing window %d must be >= min trailing obs %d > 0", p.TrailingWindow, p.MinTrailingObs)
	}
	if len(p.Horizons) == 0 {
		return fmt.Errorf("at least one horizon required")
	}
	for _, h := range p.Horizons {
		if h <= 0 {
			return fmt.Errorf("horizons must be positive, got %d", h)
		}
	}
	primaryOK := false
	for _, h := range p.Horizons {
		if h == p.PrimaryHorizon {
			primaryOK = true
		}
	}
	if !primaryOK {
		return fmt.Errorf("primary horizon %d not in horizons %v", p.PrimaryHorizon, p.Horizons)
	}
	if p.MinPosition < 0 || p.MaxPosition > 1 || p.MinPosition >= p.MaxPosition {
		return fmt.Errorf("position bounds [%v, %v] invalid", p.MinPosition, p.MaxPosition)
	}
	return nil
}
