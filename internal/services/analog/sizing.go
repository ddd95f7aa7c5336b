package analog

import (
	"fmt"
	"strings"
	"time"

	"Hindsight/internal/domain/models"
)

// SizePosition combines signal direction, confidence, the return/variance
// proxy and the prevailing regime into a recommended position fraction.
//
// The base table in p.SizingRules is evaluated in order, first match wins;
// no match falls through to the neutral base. When mean and std are both
// positive a half-Kelly term clamp(0.5*mean/std^2, 0, 1) is blended in with
// weight p.KellyWeight (std floored at p.MinStd so near-zero variance cannot
// spuriously saturate the Kelly term). The regime factor scales the blend,
// possibly overriding the signal label, and the result is hard clamped to
// [p.MinPosition, p.MaxPosition].
//
// Precondition: finite inputs. Callers guard NaN mean/std upstream (empty
// samples never reach this function with NaN because the use case
// short-circuits to neutral advice first).
func SizePosition(upProb, confidence, meanReturn, stdReturn float64, regime models.Regime, p Params) models.PositionAdvice {
	base := p.NeutralBase
	signal := models.SignalNeutral
	for _, rule := range p.SizingRules {
		if upProb >= rule.UpProbAtLeast && upProb <= rule.UpProbAtMost && confidence >= rule.ConfidenceAtLeast {
			base = rule.Base
			signal = rule.Signal
			break
		}
	}

	kelly := 0.0
	blended := base
	if meanReturn > 0 && stdReturn > 0 {
		std := stdReturn
		if std < p.MinStd {
			std = p.MinStd
		}
		kelly = clamp(0.5*meanReturn/(std*std), 0, 1)
		blended = (1-p.KellyWeight)*base + p.KellyWeight*kelly
	}

	adj, ok := p.Regimes[regime]
	if !ok {
		adj = RegimeAdjustment{Factor: 1}
	}
	warning := adj.Warning
	switch {
	case adj.OverridesBuys && (signal == models.SignalBuy || signal == models.SignalStrongBuy):
		signal = adj.Override
	case adj.OverridesSell && (signal == models.SignalSell || signal == models.SignalStrongSell):
		signal = adj.Override
	}

	final := clamp(blended*adj.Factor, p.MinPosition, p.MaxPosition)

	return models.PositionAdvice{
		Timestamp:    time.Now().UTC(),
		Signal:       signal,
		Position:     final,
		BasePosition: base,
		Kelly:        kelly,
		RegimeFactor: adj.Factor,
		Regime:       regime,
		Confidence:   confidence,
		Warning:      warning,
		Rationale:    rationale(upProb, confidence, base, kelly, blended, adj.Factor, final, regime, warning),
	}
}

// NeutralAdvice is the well-formed "no reliable historical analog" outcome:
// neutral signal at the neutral base, regime factor still reported.
func NeutralAdvice(regime models.Regime, p Params, reason string) models.PositionAdvice {
	adj, ok := p.Regimes[regime]
	if !ok {
		adj = RegimeAdjustment{Factor: 1}
	}
	return models.PositionAdvice{
		Timestamp:    time.Now().UTC(),
		Signal:       models.SignalNeutral,
		Position:     clamp(p.NeutralBase, p.MinPosition, p.MaxPosition),
		BasePosition: p.NeutralBase,
		RegimeFactor: adj.Factor,
		Regime:       regime,
		NoEvidence:   true,
		Rationale:    reason,
		Warning:      adj.Warning,
	}
}

func rationale(upProb, confidence, base, kelly, blended, factor, final float64, regime models.Regime, warning string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "analogs resolved up %.0f%% of the time (confidence %.2f), base position %.2f", upProb*100, confidence, base)
	if kelly > 0 {
		fmt.Fprintf(&b, "; half-Kelly %.2f blends to %.2f", kelly, blended)
	}
	fmt.Fprintf(&b, "; regime %s factor %.2f gives %.2f", regime, factor, final)
	if warning != "" {
		fmt.Fprintf(&b, " (%s)", warning)
	}
	return b.String()
}
