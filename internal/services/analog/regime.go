package analog

import (
	"Hindsight/internal/domain/models"
	"Hindsight/internal/services/indicators"
)

// ClassifyMAState labels the strict ordering of close vs MA20/MA60/MA250.
func ClassifyMAState(s indicators.Snapshot) models.MAState {
	switch {
	case s.Close > s.MA20 && s.MA20 > s.MA60 && s.MA60 > s.MA250:
		return models.MABullishStack
	case s.Close < s.MA20 && s.MA20 < s.MA60 && s.MA60 < s.MA250:
		return models.MABearishStack
	default:
		return models.MAMixed
	}
}

// ClassifyEnvironment maps a snapshot to its market regime. Rules are
// evaluated in priority order against the injected thresholds; the function
// is total and always returns exactly one label.
func ClassifyEnvironment(s indicators.Snapshot, th Thresholds) models.Regime {
	state := ClassifyMAState(s)
	dist := s.DistToHighPct

	switch {
	case s.RSI > th.OverboughtRSI && dist > th.NearHighPct && state == models.MABullishStack:
		return models.RegimeBullTop
	case dist > th.MidRangePct && dist < th.NearHighPct && state == models.MABullishStack:
		return models.RegimeBullMid
	case s.RSI < th.OversoldRSI && dist < th.DeepDrawdownPct && state == models.MABearishStack:
		return models.RegimeBearBottom
	case dist > th.DeepDrawdownPct && dist < th.MidRangePct && state == models.MABearishStack:
		return models.RegimeBearMid
	default:
		return models.RegimeChoppy
	}
}
