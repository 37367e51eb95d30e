// Package signal computes heuristic trading signals from pool state changes.
package signal

import (
	"fmt"
	"math"
	"time"

	"github.com/xbxaxd26/pump-swap-screen/internal/domain"
)

// Classification bounds over total points (inclusive).
const (
	strongBuyPoints  = 35
	buyPoints        = 15
	sellPoints       = -15
	strongSellPoints = -35
)

// Engine scores a pool's current state against its previous snapshot.
// Rules fire in fixed order and each contributes signed points; there is
// no early exit once historical data exists.
type Engine struct {
	nowFn func() time.Time
}

// NewEngine creates a signal engine.
func NewEngine() *Engine {
	return &Engine{nowFn: time.Now}
}

// Compute derives a trading signal for the pool's non-reference token.
// previous and vol may be nil. Without a previous snapshot, or when either
// price is the zero sentinel, the result is a hold with zero confidence.
func (e *Engine) Compute(current *domain.PoolRecord, previous *domain.PreviousState, vol *domain.VolumeStats) domain.TradingSignal {
	sig := domain.TradingSignal{
		Mint:      current.TokenMint(),
		Signal:    domain.SignalHold,
		Timestamp: e.nowFn().UnixMilli(),
	}

	if previous == nil || previous.Price == 0 || current.Price == 0 {
		sig.Reasons = []string{"Insufficient historical data"}
		return sig
	}

	points := 0.0
	var reasons []string

	// Price momentum
	priceChange := (current.Price - previous.Price) / previous.Price * 100
	switch {
	case priceChange > 20:
		points += 20
		reasons = append(reasons, fmt.Sprintf("Strong price increase: +%.2f%%", priceChange))
	case priceChange > 10:
		points += 10
		reasons = append(reasons, fmt.Sprintf("Price increase: +%.2f%%", priceChange))
	case priceChange < -20:
		points -= 20
		reasons = append(reasons, fmt.Sprintf("Strong price drop: %.2f%%", priceChange))
	case priceChange < -10:
		points -= 10
		reasons = append(reasons, fmt.Sprintf("Price drop: %.2f%%", priceChange))
	}

	// Liquidity change
	if previous.Liquidity > 0 {
		liquidityChange := (current.Reserves.Native - previous.Liquidity) / previous.Liquidity * 100
		switch {
		case liquidityChange > 50:
			points += 25
			reasons = append(reasons, fmt.Sprintf("Large liquidity inflow: +%.2f%%", liquidityChange))
		case liquidityChange > 20:
			points += 15
			reasons = append(reasons, fmt.Sprintf("Liquidity inflow: +%.2f%%", liquidityChange))
		case liquidityChange < -30:
			points -= 25
			reasons = append(reasons, fmt.Sprintf("Severe liquidity outflow: %.2f%%", liquidityChange))
		case liquidityChange < -15:
			points -= 15
			reasons = append(reasons, fmt.Sprintf("Liquidity outflow: %.2f%%", liquidityChange))
		}
	}

	// Absolute liquidity size in native units
	native := current.Reserves.Native
	switch {
	case native > 100:
		points += 15
		reasons = append(reasons, fmt.Sprintf("Deep liquidity: %.2f SOL", native))
	case native > 50:
		points += 10
		reasons = append(reasons, fmt.Sprintf("Healthy liquidity: %.2f SOL", native))
	case native < 5:
		points -= 10
		reasons = append(reasons, fmt.Sprintf("Thin liquidity: %.2f SOL", native))
	}

	// Volume-to-liquidity ratio
	if vol != nil && vol.Volume24h > 0 && native > 0 {
		ratio := vol.Volume24h / native
		switch {
		case ratio > 0.5:
			points += 15
			reasons = append(reasons, fmt.Sprintf("High volume/liquidity ratio: %.2f", ratio))
		case ratio > 0.2:
			points += 8
			reasons = append(reasons, fmt.Sprintf("Elevated volume/liquidity ratio: %.2f", ratio))
		}
	}

	sig.Signal = classify(points)
	sig.Confidence = math.Min(100, math.Abs(points))
	sig.Reasons = reasons
	return sig
}

// classify maps total points to a signal class. Bounds are inclusive.
func classify(points float64) domain.SignalClass {
	switch {
	case points >= strongBuyPoints:
		return domain.SignalStrongBuy
	case points >= buyPoints:
		return domain.SignalBuy
	case points <= strongSellPoints:
		return domain.SignalStrongSell
	case points <= sellPoints:
		return domain.SignalSell
	default:
		return domain.SignalHold
	}
}
