package pumpswap

import "github.com/xbxaxd26/pump-swap-screen/internal/solana"

// BaseMintFilters matches pool accounts whose base mint is the given token.
// In such pools the quote side holds the reference asset.
func BaseMintFilters(mint string) []solana.AccountFilter {
	return []solana.AccountFilter{
		solana.DataSizeFilter(PoolAccountSize),
		solana.MemcmpAt(BaseMintOffset, mint),
	}
}

// QuoteMintFilters matches pool accounts whose quote mint is the given
// token. In such pools the base side holds the reference asset.
func QuoteMintFilters(mint string) []solana.AccountFilter {
	return []solana.AccountFilter{
		solana.DataSizeFilter(PoolAccountSize),
		solana.MemcmpAt(QuoteMintOffset, mint),
	}
}

// AllPoolFilters matches every pool account of the program.
func AllPoolFilters() []solana.AccountFilter {
	return []solana.AccountFilter{
		solana.DataSizeFilter(PoolAccountSize),
	}
}
