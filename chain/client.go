// Package chain is the relay's view of one EVM network: contract reads,
// raw transaction dispatch and receipt confirmation.
package chain

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrNetwork wraps transport failures: unreachable node, timeouts,
	// rejected submissions. Nothing in the relay retries them.
	ErrNetwork = errors.New("chain network error")
	// ErrReverted marks an on-chain execution failure.
	ErrReverted = errors.New("execution reverted")
)

// Reader executes read-only contract calls.
type Reader interface {
	CallContract(ctx context.Context, to common.Address, data []byte) ([]byte, error)
}

// Client is the capability set every component shares: read, send and
// wait for a receipt. One Client exists per network and is passed by
// reference.
type Client interface {
	Reader

	// Name labels the network in logs and metrics ("home", "side").
	Name() string
	// NonceAt returns the pending transaction count of account.
	NonceAt(ctx context.Context, account common.Address) (uint64, error)
	// Send signs a call to `to` with the given nonce and dispatches it.
	Send(ctx context.Context, to common.Address, data []byte, nonce uint64) (common.Hash, error)
	// WaitReceipt blocks until the transaction is mined.
	WaitReceipt(ctx context.Context, txHash common.Hash) (*Receipt, error)
}

// Receipt is the structured outcome of a mined transaction.
type Receipt struct {
	TxHash       common.Hash
	Status       bool
	BlockNumber  uint64
	GasUsed      uint64
	RevertReason string
}

// Err returns a *RevertedError for failed receipts and nil otherwise.
func (r *Receipt) Err() error {
	if r.Status {
		return nil
	}
	return &RevertedError{Receipt: r}
}

// RevertedError reports a transaction that was mined but reverted.
type RevertedError struct {
	Receipt *Receipt
}

func (e *RevertedError) Error() string {
	if e.Receipt.RevertReason != "" {
		return fmt.Sprintf("transaction %s reverted: %s", e.Receipt.TxHash.Hex(), e.Receipt.RevertReason)
	}
	return fmt.Sprintf("transaction %s reverted", e.Receipt.TxHash.Hex())
}

func (e *RevertedError) Unwrap() error {
	return ErrReverted
}
