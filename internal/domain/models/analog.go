package models

import "time"

// Analog is one historical bar that passed similarity filtering, together
// with its position in the source series (needed for forward sampling).
type Analog struct {
	Index int `json:"index"`
	Bar   Bar `json:"bar"`
}

// MatchSet is the ordered (by timestamp, ascending) set of analogs produced
// by the similarity filter. May be empty; empty is a normal, reportable
// outcome, not an error.
type MatchSet []Analog

// Timestamps returns the matched dates in series order.
func (m MatchSet) Timestamps() []time.Time {
	out := make([]time.Time, len(m))
	for i, a := range m {
		out[i] = a.Bar.Timestamp
	}
	return out
}

// ForwardReturnRow holds the realized simple returns of a single analog over
// each sampled horizon. A missing cell (fewer than h future bars) is NaN,
// never zero; rows with all-missing cells are retained.
type ForwardReturnRow struct {
	Timestamp time.Time
	Returns   map[int]float64
}

// ForwardReturns is the sampled table: one row per analog, one column per
// horizon (in trading periods).
type ForwardReturns struct {
	Horizons []int
	Rows     []ForwardReturnRow
}

// Column extracts one horizon column, preserving row order. Missing cells
// come back as NaN.
func (f ForwardReturns) Column(horizon int) []float64 {
	out := make([]float64, len(f.Rows))
	for i, r := range f.Rows {
		out[i] = r.Returns[horizon]
	}
	return out
}
