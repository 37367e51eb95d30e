package solana

// SignatureInfo from getSignaturesForAddress.
type SignatureInfo struct {
	Signature string
	Slot      int64
	BlockTime *int64
	Err       interface{}
}

// SignaturesOpts defines optional pagination parameters for getSignaturesForAddress.
type SignaturesOpts struct {
	Before string // Start searching backwards from this signature
	Until  string // Search until this signature
	Limit  int    // Maximum number of signatures to return
}

// AccountFilter narrows a program-account scan or subscription.
type AccountFilter struct {
	// DataSize matches accounts of exactly this byte length when non-nil.
	DataSize *int
	// Memcmp matches accounts whose data at Offset equals Bytes.
	Memcmp *MemcmpFilter
}

// MemcmpFilter is a byte-comparison filter on account data.
type MemcmpFilter struct {
	Offset int
	Bytes  string // base58-encoded bytes to compare
}

// DataSizeFilter builds a filter on exact account data length.
func DataSizeFilter(size int) AccountFilter {
	return AccountFilter{DataSize: &size}
}

// MemcmpAt builds a memcmp filter at the given offset.
func MemcmpAt(offset int, b58 string) AccountFilter {
	return AccountFilter{Memcmp: &MemcmpFilter{Offset: offset, Bytes: b58}}
}

// ProgramAccount is one account returned by a program scan.
type ProgramAccount struct {
	Pubkey string
	Data   []byte // decoded account data
	Owner  string
}

// TokenBalance is the uiAmount view of an SPL token account balance.
// UIAmount is nil when the RPC node reports a null amount.
type TokenBalance struct {
	Amount   string
	Decimals int
	UIAmount *float64
}

// AccountInfo represents Solana account information.
type AccountInfo struct {
	Lamports   uint64
	Owner      string
	Data       []byte // decoded account data
	Executable bool
	RentEpoch  uint64
}
