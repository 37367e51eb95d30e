// Package stub provides in-memory test doubles for the solana interfaces.
package stub

import (
	"context"
	"errors"

	"github.com/xbxaxd26/pump-swap-screen/internal/solana"
)

// ErrNotFound is returned when a requested entity is not in the stub store.
var ErrNotFound = errors.New("not found")

// RPCClient implements solana.RPCClient for testing. Per-key error
// injection simulates fetch failures.
type RPCClient struct {
	ProgramAccounts map[string][]solana.ProgramAccount // keyed by program ID
	Balances        map[string]*solana.TokenBalance    // keyed by token account
	Signatures      map[string][]solana.SignatureInfo  // keyed by address
	Transactions    map[string]*solana.Transaction     // keyed by signature
	Accounts        map[string]*solana.AccountInfo     // keyed by pubkey

	BalanceErrs map[string]error // force GetTokenAccountBalance failures
	TxErrs      map[string]error // force GetTransaction failures
}

// NewRPCClient creates a new stub RPC client.
func NewRPCClient() *RPCClient {
	return &RPCClient{
		ProgramAccounts: make(map[string][]solana.ProgramAccount),
		Balances:        make(map[string]*solana.TokenBalance),
		Signatures:      make(map[string][]solana.SignatureInfo),
		Transactions:    make(map[string]*solana.Transaction),
		Accounts:        make(map[string]*solana.AccountInfo),
		BalanceErrs:     make(map[string]error),
		TxErrs:          make(map[string]error),
	}
}

// GetProgramAccounts returns the stubbed accounts for a program.
// Filters are ignored; tests stage exactly what a scan should see.
func (c *RPCClient) GetProgramAccounts(_ context.Context, program string, _ []solana.AccountFilter) ([]solana.ProgramAccount, error) {
	return c.ProgramAccounts[program], nil
}

// GetTokenAccountBalance returns the stubbed balance for a token account.
func (c *RPCClient) GetTokenAccountBalance(_ context.Context, account string) (*solana.TokenBalance, error) {
	if err, ok := c.BalanceErrs[account]; ok {
		return nil, err
	}
	bal, ok := c.Balances[account]
	if !ok {
		return nil, ErrNotFound
	}
	return bal, nil
}

// GetSignaturesForAddress retrieves signatures for an address from the stub store.
func (c *RPCClient) GetSignaturesForAddress(_ context.Context, address string, opts *solana.SignaturesOpts) ([]solana.SignatureInfo, error) {
	sigs, ok := c.Signatures[address]
	if !ok {
		return nil, nil
	}

	if opts != nil && opts.Limit > 0 && opts.Limit < len(sigs) {
		return sigs[:opts.Limit], nil
	}

	return sigs, nil
}

// GetTransaction retrieves a transaction by signature from the stub store.
// Unknown signatures return nil like the real client.
func (c *RPCClient) GetTransaction(_ context.Context, signature string) (*solana.Transaction, error) {
	if err, ok := c.TxErrs[signature]; ok {
		return nil, err
	}
	return c.Transactions[signature], nil
}

// GetAccountInfo retrieves account info from the stub store.
func (c *RPCClient) GetAccountInfo(_ context.Context, pubkey string) (*solana.AccountInfo, error) {
	return c.Accounts[pubkey], nil
}

// SetBalance stages a token-account balance.
func (c *RPCClient) SetBalance(account string, uiAmount float64) {
	c.Balances[account] = &solana.TokenBalance{UIAmount: &uiAmount}
}

// AddSignatures stages signatures for an address.
func (c *RPCClient) AddSignatures(address string, sigs []solana.SignatureInfo) {
	c.Signatures[address] = sigs
}

// AddTransaction stages a transaction.
func (c *RPCClient) AddTransaction(tx *solana.Transaction) {
	c.Transactions[tx.Signature] = tx
}

var _ solana.RPCClient = (*RPCClient)(nil)
