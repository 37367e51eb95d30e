package domain

// PoolMonitoringState tracks transaction-volume sampling for one pool.
// Lifecycle is independent from PoolRecord. Buy/sell volumes accumulate
// across samples and are reset only by explicit re-activation.
type PoolMonitoringState struct {
	Pool               string  `json:"pool"`
	LastSignatureCount int     `json:"lastSignatureCount"`
	LastLiquidity      float64 `json:"lastLiquidity"` // native reserve at last check
	BuyVolume          float64 `json:"buyVolume"`     // cumulative, native units
	SellVolume         float64 `json:"sellVolume"`    // cumulative, native units
	LastChecked        int64   `json:"lastChecked"`   // Unix ms
	IsActive           bool    `json:"isActive"`
}
