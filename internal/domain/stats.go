package domain

// MarketStats is a derived summary over pools meeting the minimum-liquidity
// filter. Recomputed from scratch; no persisted history.
type MarketStats struct {
	TotalPools       int     `json:"totalPools"`
	TotalLiquidity   float64 `json:"totalLiquidity"` // native units
	AverageLiquidity float64 `json:"averageLiquidity"`
	MedianLiquidity  float64 `json:"medianLiquidity"`
	MinLiquidity     float64 `json:"minLiquidity"`
	MaxLiquidity     float64 `json:"maxLiquidity"`
	NewPools24h      int     `json:"newPools24h"`
	UpdatedAt        int64   `json:"updatedAt"` // Unix ms
}
