package models

import "time"

// Signal is the direction label attached to a position recommendation.
type Signal string

const (
	SignalStrongBuy  Signal = "strong_buy"
	SignalBuy        Signal = "buy"
	SignalSell       Signal = "sell"
	SignalStrongSell Signal = "strong_sell"
	SignalNeutral    Signal = "neutral"

	// Regime overrides. Near a cycle top a buy becomes a hold; near a
	// capitulation low a sell becomes "wait for stabilization".
	SignalCautionHold        Signal = "caution_hold"
	SignalAwaitStabilization Signal = "await_stabilization"
)

// PositionAdvice is the final output of the sizing module. Position is hard
// clamped to [0.10, 0.90]: the engine never recommends going fully flat or
// fully leveraged.
type PositionAdvice struct {
	Symbol       string    `json:"symbol,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
	Signal       Signal    `json:"signal"`
	Position     float64   `json:"position"`
	BasePosition float64   `json:"base_position"`
	Kelly        float64   `json:"kelly"`
	RegimeFactor float64   `json:"regime_factor"`
	Regime       Regime    `json:"regime"`
	Confidence   float64   `json:"confidence"`
	Rationale    string    `json:"rationale"`
	Warning      string    `json:"warning,omitempty"`
	NoEvidence   bool      `json:"no_evidence,omitempty"`
}
