package domain

// Reserves holds the two current balances of a pool.
type Reserves struct {
	Native float64 `json:"native"` // reference-asset side (WSOL)
	Token  float64 `json:"token"`  // non-reference side
}

// HistoryPoint is one observation in a bounded pool history.
type HistoryPoint struct {
	Value     float64 `json:"value"`
	Timestamp int64   `json:"timestamp"` // Unix timestamp in milliseconds
}

// PoolSnapshot is a freshly derived observation of a pool, before any
// history merge. Price 0 is the fetch-failure sentinel, not a valid price.
type PoolSnapshot struct {
	Address      string   `json:"address"`
	IsNativeBase bool     `json:"isNativeBase"`
	BaseMint     string   `json:"baseMint"`
	QuoteMint    string   `json:"quoteMint"`
	Price        float64  `json:"price"`
	Reserves     Reserves `json:"reserves"`
	Timestamp    int64    `json:"timestamp"` // Unix timestamp in milliseconds
}

// PoolRecord is the authoritative state of one liquidity pool.
// Address, BaseMint and QuoteMint never change after creation; only price,
// reserves, timestamp and the histories mutate on update. Histories are
// bounded FIFO sequences of the pool's previous states.
type PoolRecord struct {
	Address          string         `json:"address"`
	IsNativeBase     bool           `json:"isNativeBase"`
	BaseMint         string         `json:"baseMint"`
	QuoteMint        string         `json:"quoteMint"`
	Price            float64        `json:"price"`
	Reserves         Reserves       `json:"reserves"`
	Timestamp        int64          `json:"timestamp"` // last update, Unix ms
	PriceHistory     []HistoryPoint `json:"priceHistory"`
	LiquidityHistory []HistoryPoint `json:"liquidityHistory"`
}

// TokenMint returns the pool's non-reference token mint.
func (p *PoolRecord) TokenMint() string {
	if p.IsNativeBase {
		return p.QuoteMint
	}
	return p.BaseMint
}
