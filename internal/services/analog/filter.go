package analog

import (
	"math"
	"time"

	"Hindsight/internal/domain/models"
	"Hindsight/internal/services/indicators"
)

// FindAnalogs is Stage 1 of similarity filtering: every historical bar whose
// close lies within currentPrice*(1±priceTolerance), minus anything within
// minGapDays calendar days of the series' last timestamp (prevents matching
// "now" against itself). Pure filtering; an empty MatchSet is a valid result.
func FindAnalogs(series []models.Bar, currentPrice, priceTolerance float64, minGapDays int) models.MatchSet {
	if len(series) == 0 || currentPrice <= 0 {
		return models.MatchSet{}
	}
	lo := currentPrice * (1 - priceTolerance)
	hi := currentPrice * (1 + priceTolerance)
	cutoff := series[len(series)-1].Timestamp.Add(-time.Duration(minGapDays) * 24 * time.Hour)

	out := models.MatchSet{}
	for i, b := range series {
		if b.Close < lo || b.Close > hi {
			continue
		}
		if b.Timestamp.After(cutoff) {
			continue
		}
		out = append(out, models.Analog{Index: i, Bar: b})
	}
	return out
}

// FindAnalogsEnhanced is Stage 2: it tightens the Stage-1 set by comparing
// technical attributes. A candidate's attributes are recomputed from a
// trailing window ending at the candidate's own date — using full-history
// indicators here would leak future information into a historical match.
// Candidates with fewer than p.MinTrailingObs trailing bars are dropped
// silently (insufficient data, not an error). A candidate survives only if
// its RSI and distance-to-high are within tolerance of the current snapshot
// and its MA ordering label equals the current one.
func FindAnalogsEnhanced(series []models.Bar, current indicators.Snapshot, p Params, useIndicatorFilter bool) models.MatchSet {
	stage1 := FindAnalogs(series, current.Close, p.PriceTolerance, p.MinGapDays)
	if !useIndicatorFilter || len(stage1) == 0 {
		return stage1
	}

	currentState := ClassifyMAState(current)

	out := models.MatchSet{}
	for _, a := range stage1 {
		if a.Index+1 < p.MinTrailingObs {
			continue
		}
		cand := indicators.TrailingSnapshot(series, a.Index, p.TrailingWindow)
		if math.Abs(current.RSI-cand.RSI) > p.RSITolerance {
			continue
		}
		if math.Abs(current.DistToHighPct-cand.DistToHighPct) > p.DistTolerancePct {
			continue
		}
		if ClassifyMAState(cand) != currentState {
			continue
		}
		out = append(out, a)
	}
	return out
}
