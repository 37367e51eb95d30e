// Package pumpswap decodes PumpSwap AMM pool accounts.
package pumpswap

import (
	"encoding/binary"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// PumpSwap program and reference-asset identifiers.
const (
	ProgramID = "pAMMBay6oceH9fJKBRHGP5D4bD4sWpmSwMn52FMfXEA"
	WSOLMint  = "So11111111111111111111111111111111111111112"
)

// Pool account layout:
// discriminator(8) | poolBump(1) | index(2) | creator(32) | baseMint(32) |
// quoteMint(32) | lpMint(32) | poolBaseTokenAccount(32) |
// poolQuoteTokenAccount(32) | lpSupply(8)
const (
	PoolAccountSize = 211

	poolBumpOffset     = 8
	indexOffset        = 9
	creatorOffset      = 11
	BaseMintOffset     = 43
	QuoteMintOffset    = 75
	lpMintOffset       = 107
	baseAccountOffset  = 139
	quoteAccountOffset = 171
	lpSupplyOffset     = 203
)

// PoolAccount is a decoded PumpSwap pool account.
type PoolAccount struct {
	PoolBump              byte
	Index                 uint16
	Creator               string
	BaseMint              string
	QuoteMint             string
	LPMint                string
	PoolBaseTokenAccount  string
	PoolQuoteTokenAccount string
	LPSupply              uint64
}

// DecodePoolAccount decodes raw pool account bytes. The pool's token
// accounts are associated token accounts of the pool authority, so they
// must be program derived (off the ed25519 curve); an on-curve vault means
// the bytes are not a pool account.
func DecodePoolAccount(data []byte) (*PoolAccount, error) {
	if len(data) != PoolAccountSize {
		return nil, fmt.Errorf("pool account size %d, want %d", len(data), PoolAccountSize)
	}

	pool := &PoolAccount{
		PoolBump:              data[poolBumpOffset],
		Index:                 binary.LittleEndian.Uint16(data[indexOffset:creatorOffset]),
		Creator:               base58.Encode(data[creatorOffset:BaseMintOffset]),
		BaseMint:              base58.Encode(data[BaseMintOffset:QuoteMintOffset]),
		QuoteMint:             base58.Encode(data[QuoteMintOffset:lpMintOffset]),
		LPMint:                base58.Encode(data[lpMintOffset:baseAccountOffset]),
		PoolBaseTokenAccount:  base58.Encode(data[baseAccountOffset:quoteAccountOffset]),
		PoolQuoteTokenAccount: base58.Encode(data[quoteAccountOffset:lpSupplyOffset]),
		LPSupply:              binary.LittleEndian.Uint64(data[lpSupplyOffset:PoolAccountSize]),
	}

	if isOnCurve(data[baseAccountOffset:quoteAccountOffset]) {
		return nil, fmt.Errorf("base token account %s is on-curve, not a pool vault", pool.PoolBaseTokenAccount)
	}
	if isOnCurve(data[quoteAccountOffset:lpSupplyOffset]) {
		return nil, fmt.Errorf("quote token account %s is on-curve, not a pool vault", pool.PoolQuoteTokenAccount)
	}

	return pool, nil
}

// isOnCurve reports whether a 32-byte public key lies on the ed25519 curve.
// Program derived addresses are off-curve by construction.
func isOnCurve(point []byte) bool {
	if len(point) != 32 {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(point)
	return err == nil
}
