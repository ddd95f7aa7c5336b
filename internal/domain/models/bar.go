package models

import "time"

// Attribute names produced by the upstream indicator pipeline. Bars loaded
// from storage carry whichever subset the pipeline had computed; the engine
// backfills the rest from the trailing window (see services/indicators).
const (
	AttrRSI           = "rsi"
	AttrMA20          = "ma20"
	AttrMA60          = "ma60"
	AttrMA250         = "ma250"
	AttrDistToHighPct = "dist_52w_high_pct"
)

// Bar is one daily observation of a symbol: OHLCV plus named technical
// attributes. Immutable once loaded; the timestamp is the series index and
// must be strictly increasing within a series.
type Bar struct {
	Timestamp time.Time          `json:"timestamp"`
	Symbol    string             `json:"symbol"`
	Open      float64            `json:"open"`
	High      float64            `json:"high"`
	Low       float64            `json:"low"`
	Close     float64            `json:"close"`
	Volume    float64            `json:"volume"`
	Attrs     map[string]float64 `json:"attrs,omitempty"`
}

// Attr returns a named attribute and whether it was present.
func (b Bar) Attr(name string) (float64, bool) {
	if b.Attrs == nil {
		return 0, false
	}
	v, ok := b.Attrs[name]
	return v, ok
}
