// Package chaintest provides an in-memory chain.Client with simulated
// Bridge, SharedDB and ERC20 contracts. Calldata is decoded with the real
// ABIs, so a test exercises the same packing code as production.
package chaintest

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/rony4d/go-bridge-relay/chain"
)

// Contract is a simulated contract.
type Contract interface {
	// Call answers a read-only call.
	Call(from common.Address, data []byte) ([]byte, error)
	// Exec applies a transaction; an error reverts it with that reason.
	Exec(from common.Address, data []byte) error
}

// Tx is a dispatch attempt seen by the chain.
type Tx struct {
	Hash  common.Hash
	Nonce uint64
	To    common.Address
	Data  []byte
}

// Chain implements chain.Client. Transactions are executed as soon as
// they are sent.
type Chain struct {
	name string
	from common.Address

	mu        sync.Mutex
	contracts map[common.Address]Contract
	nonces    map[common.Address]uint64
	receipts  map[common.Hash]*chain.Receipt
	attempts  []Tx
	sent      []Tx

	// SendErr, when set, fails every dispatch with a network error.
	SendErr error
	// CallErr, when set, fails every read with a network error.
	CallErr error
	// SendDelay stretches each dispatch. A context cancelled during the
	// delay fails the dispatch like a dropped connection would.
	SendDelay time.Duration
}

var _ chain.Client = (*Chain)(nil)

// New creates a chain whose calls and transactions come from `from`.
func New(name string, from common.Address) *Chain {
	return &Chain{
		name:      name,
		from:      from,
		contracts: make(map[common.Address]Contract),
		nonces:    make(map[common.Address]uint64),
		receipts:  make(map[common.Hash]*chain.Receipt),
	}
}

// Deploy places a contract at address.
func (c *Chain) Deploy(address common.Address, contract Contract) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.contracts[address] = contract
}

// SetNonce sets the pending nonce NonceAt reports for account.
func (c *Chain) SetNonce(account common.Address, nonce uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nonces[account] = nonce
}

func (c *Chain) Name() string {
	return c.name
}

func (c *Chain) CallContract(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.CallErr != nil {
		return nil, fmt.Errorf("%w: %v", chain.ErrNetwork, c.CallErr)
	}
	contract, ok := c.contracts[to]
	if !ok {
		return nil, nil
	}
	out, err := contract.Call(c.from, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", chain.ErrReverted, err)
	}
	return out, nil
}

func (c *Chain) NonceAt(ctx context.Context, account common.Address) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nonces[account], nil
}

func (c *Chain) Send(ctx context.Context, to common.Address, data []byte, nonce uint64) (common.Hash, error) {
	if c.SendDelay > 0 {
		select {
		case <-time.After(c.SendDelay):
		case <-ctx.Done():
			return common.Hash{}, fmt.Errorf("%w: %v", chain.ErrNetwork, ctx.Err())
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	var n [8]byte
	binary.BigEndian.PutUint64(n[:], nonce)
	tx := Tx{
		Hash:  crypto.Keccak256Hash([]byte(c.name), n[:], to.Bytes(), data),
		Nonce: nonce,
		To:    to,
		Data:  common.CopyBytes(data),
	}
	c.attempts = append(c.attempts, tx)
	if c.SendErr != nil {
		return common.Hash{}, fmt.Errorf("%w: %v", chain.ErrNetwork, c.SendErr)
	}
	c.sent = append(c.sent, tx)

	receipt := &chain.Receipt{
		TxHash:      tx.Hash,
		Status:      true,
		BlockNumber: uint64(len(c.sent)),
		GasUsed:     21000,
	}
	if contract, ok := c.contracts[to]; ok {
		if err := contract.Exec(c.from, data); err != nil {
			receipt.Status = false
			receipt.RevertReason = err.Error()
		}
	}
	c.receipts[tx.Hash] = receipt
	if nonce >= c.nonces[c.from] {
		c.nonces[c.from] = nonce + 1
	}
	return tx.Hash, nil
}

func (c *Chain) WaitReceipt(ctx context.Context, txHash common.Hash) (*chain.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", chain.ErrNetwork, err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.receipts[txHash]
	if !ok {
		return nil, fmt.Errorf("%w: unknown transaction %s", chain.ErrNetwork, txHash.Hex())
	}
	cp := *r
	return &cp, nil
}

// Attempts returns every dispatch attempt in arrival order, failed ones
// included.
func (c *Chain) Attempts() []Tx {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Tx(nil), c.attempts...)
}

// Sent returns the successfully dispatched transactions.
func (c *Chain) Sent() []Tx {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Tx(nil), c.sent...)
}
