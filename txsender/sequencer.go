// Package txsender serializes outbound transactions of one validator on
// one chain.
package txsender

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"

	"github.com/rony4d/go-bridge-relay/chain"
	"github.com/rony4d/go-bridge-relay/metrics"
)

// DefaultDispatchTimeout bounds one Send, independent of the caller.
const DefaultDispatchTimeout = time.Minute

// Sequencer owns the nonce counter of (chain, identity). The counter is
// seeded once from the chain and only ever moves forward; a failed
// dispatch leaves a gap that is not repaired.
//
// Once a nonce is assigned, dispatch and receipt wait run to completion
// even if the caller's context is cancelled.
type Sequencer struct {
	client  chain.Client
	from    common.Address
	log     logrus.FieldLogger
	metrics *metrics.Collector

	// DispatchTimeout bounds Send. Receipt waits have no bound.
	DispatchTimeout time.Duration

	mu    sync.Mutex
	nonce uint64
}

// New seeds the counter from the pending transaction count of `from`.
func New(ctx context.Context, client chain.Client, from common.Address, log logrus.FieldLogger, m *metrics.Collector) (*Sequencer, error) {
	nonce, err := client.NonceAt(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("seed %s nonce: %w", client.Name(), err)
	}
	log = log.WithField("chain", client.Name())
	log.WithField("nonce", nonce).Info("Sequencer seeded")
	return &Sequencer{
		client:          client,
		from:            from,
		log:             log,
		metrics:         m,
		DispatchTimeout: DefaultDispatchTimeout,
		nonce:           nonce,
	}, nil
}

// Chain is the network the sequencer submits to.
func (s *Sequencer) Chain() chain.Client {
	return s.client
}

// Submit assigns the next nonce to the call and dispatches it. The lock
// is held through dispatch only, not until the transaction is mined.
func (s *Sequencer) Submit(ctx context.Context, data []byte, to common.Address) (common.Hash, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	nonce := s.nonce
	s.nonce++

	log := s.log.WithFields(logrus.Fields{
		"nonce": nonce,
		"to":    to.Hex(),
	})
	sendCtx, cancel := context.WithTimeout(detach(ctx), s.DispatchTimeout)
	defer cancel()
	txHash, err := s.client.Send(sendCtx, to, data, nonce)
	if err != nil {
		s.metrics.TxDispatchFailed(s.client.Name(), s.nonce)
		log.WithError(err).Error("Dispatch failed, nonce is not reused")
		return common.Hash{}, err
	}
	s.metrics.TxSubmitted(s.client.Name(), s.nonce)
	log.WithField("tx", txHash.Hex()).Debug("Transaction submitted")
	return txHash, nil
}

// SubmitAndWait submits the call and blocks until it is mined. A revert
// is not an error here: callers read it from Receipt.Status.
func (s *Sequencer) SubmitAndWait(ctx context.Context, data []byte, to common.Address) (*chain.Receipt, error) {
	txHash, err := s.Submit(ctx, data, to)
	if err != nil {
		return nil, err
	}
	receipt, err := s.client.WaitReceipt(detach(ctx), txHash)
	if err != nil {
		return nil, err
	}
	if !receipt.Status {
		s.metrics.TxReverted(s.client.Name())
		s.log.WithFields(logrus.Fields{
			"tx":     txHash.Hex(),
			"reason": receipt.RevertReason,
		}).Info("Transaction reverted")
	}
	return receipt, nil
}

// detached keeps the values of its parent but none of its cancellation.
type detached struct {
	parent context.Context
}

func detach(ctx context.Context) context.Context {
	return detached{parent: ctx}
}

func (detached) Deadline() (time.Time, bool)         { return time.Time{}, false }
func (detached) Done() <-chan struct{}               { return nil }
func (detached) Err() error                          { return nil }
func (d detached) Value(key interface{}) interface{} { return d.parent.Value(key) }
