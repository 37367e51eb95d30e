package domain

// SignalClass is the heuristic buy/hold/sell classification.
type SignalClass string

// Signal classifications, strongest buy to strongest sell.
const (
	SignalStrongBuy  SignalClass = "strong_buy"
	SignalBuy        SignalClass = "buy"
	SignalHold       SignalClass = "hold"
	SignalSell       SignalClass = "sell"
	SignalStrongSell SignalClass = "strong_sell"
)

// TradingSignal is the output of the signal engine for one token.
// Keyed by the pool's non-reference token mint, not the pool address.
// Overwritten wholesale on each recompute.
type TradingSignal struct {
	Mint       string      `json:"mint"`
	Signal     SignalClass `json:"signal"`
	Confidence float64     `json:"confidence"` // [0,100]
	Reasons    []string    `json:"reasons"`    // evaluation order of contributing rules
	Timestamp  int64       `json:"timestamp"`  // when computed, Unix ms
}

// PreviousState is the prior price/liquidity pair a signal is computed against.
type PreviousState struct {
	Price     float64
	Liquidity float64 // native reserve at that time
}

// VolumeStats carries optional recent-volume input for signal computation.
type VolumeStats struct {
	Volume24h float64 // approximate 24h volume in native units
}
