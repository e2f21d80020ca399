package port

import (
	"context"
	"math/big"
)

// TokenState carries the on-chain view of the tracked token for one wallet:
// raw balance plus the contract's decimals and symbol.
type TokenState struct {
	Balance  *big.Int
	Decimals uint8
	Symbol   string
}

// BlockchainClient defines the interface for interacting with a blockchain
// network. The implementation is EVM-specific; amounts cross this boundary
// in raw base units.
type BlockchainClient interface {
	// GetNativeBalance fetches the native coin balance (e.g. ETH) for a wallet.
	GetNativeBalance(ctx context.Context, walletAddress string) (*big.Int, error)

	// GetTokenState reads balanceOf, decimals and symbol from the configured
	// token contract for a wallet.
	GetTokenState(ctx context.Context, walletAddress string) (TokenState, error)

	// SenderAddress returns the address derived from the configured signing
	// key, or "" when no key is configured.
	SenderAddress() string

	// SubmitTokenTransfer signs and sends a token transfer, returning the
	// transaction hash as soon as the transaction is accepted by the node.
	SubmitTokenTransfer(ctx context.Context, toAddress string, amount *big.Int) (string, error)

	// WaitForConfirmation blocks until the transaction is mined or ctx
	// expires. A mined-but-reverted transaction is an error.
	WaitForConfirmation(ctx context.Context, txHash string) error
}
