package solana

import "context"

// WSClient defines the Solana WebSocket subscription interface.
type WSClient interface {
	// SubscribeProgram subscribes to account updates for a program,
	// optionally narrowed by filters.
	SubscribeProgram(ctx context.Context, filter ProgramFilter) (<-chan ProgramNotification, error)

	// Close closes the WebSocket connection.
	Close() error
}

// ProgramFilter defines a programSubscribe filter.
type ProgramFilter struct {
	// Program is the owner program ID.
	Program string
	// Filters narrow matched accounts (dataSize/memcmp).
	Filters []AccountFilter
}

// ProgramNotification is one pushed account update.
type ProgramNotification struct {
	Pubkey string
	Data   []byte // decoded account data
	Slot   int64
}
