package models

// MAState describes the strict ordering of close vs the 20/60/250 day moving
// averages. The ordering label, not the raw MA values, is what analog matching
// and sizing consume; it is insensitive to absolute price scale across eras.
type MAState string

const (
	MABullishStack MAState = "bullish_stack" // close > MA20 > MA60 > MA250
	MABearishStack MAState = "bearish_stack" // close < MA20 < MA60 < MA250
	MAMixed        MAState = "mixed"
)

// Regime is the market-environment tag derived from RSI, distance to the
// 52-week high, and the MA stack. Closed set; classification is total.
type Regime string

const (
	RegimeBullTop    Regime = "bull_top"
	RegimeBullMid    Regime = "bull_mid"
	RegimeBearBottom Regime = "bear_bottom"
	RegimeBearMid    Regime = "bear_mid"
	RegimeChoppy     Regime = "choppy"
)
