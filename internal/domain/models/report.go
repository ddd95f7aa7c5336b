package models

import "time"

// AnalysisReport is the consolidated result of one analog analysis run:
// regime of the live observation, the matched analog dates, the per-horizon
// forward-return summaries, confidence and the sizing advice.
// Note: no transport (json/http) concerns beyond field tags here.
type AnalysisReport struct {
	Symbol     string          `json:"symbol"`
	Timestamp  time.Time       `json:"timestamp"`
	Regime     Regime          `json:"regime"`
	MAState    MAState         `json:"ma_state"`
	Matches    []time.Time     `json:"matches"`
	MatchCount int             `json:"match_count"`
	Summaries  []ReturnSummary `json:"summaries"`
	Confidence float64         `json:"confidence"`
	Advice     PositionAdvice  `json:"advice"`
	Backfilled []string        `json:"backfilled_attrs,omitempty"`
}

// ScanResult is the per-symbol outcome of a batch scan.
type ScanResult struct {
	Symbol string          `json:"symbol"`
	Report *AnalysisReport `json:"report,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// ScanReport aggregates a batch scan over a symbol list.
type ScanReport struct {
	Timestamp time.Time    `json:"timestamp"`
	Results   []ScanResult `json:"results"`
}
