// Package confirm submits the validator's bridge confirmations: the group
// key produced by keygen, the end of a funds transfer and releases of
// tokens to home accounts.
package confirm

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"

	"github.com/rony4d/go-bridge-relay/contracts/bridge"
	"github.com/rony4d/go-bridge-relay/txsender"
)

type Confirmer struct {
	bridge common.Address
	home   *txsender.Sequencer
	log    logrus.FieldLogger
}

func New(bridgeAddr common.Address, home *txsender.Sequencer, log logrus.FieldLogger) *Confirmer {
	return &Confirmer{
		bridge: bridgeAddr,
		home:   home,
		log:    log,
	}
}

// ConfirmKeygen publishes the new group key (x, y).
func (c *Confirmer) ConfirmKeygen(ctx context.Context, x, y *big.Int) (common.Hash, error) {
	data, err := bridge.PackConfirmKeygen(x, y)
	if err != nil {
		return common.Hash{}, err
	}
	c.log.WithFields(logrus.Fields{
		"x": x.Text(16),
		"y": y.Text(16),
	}).Info("Confirming keygen")
	return c.home.Submit(ctx, data, c.bridge)
}

func (c *Confirmer) ConfirmFundsTransfer(ctx context.Context) (common.Hash, error) {
	data, err := bridge.PackConfirmFundsTransfer()
	if err != nil {
		return common.Hash{}, err
	}
	c.log.Info("Confirming funds transfer")
	return c.home.Submit(ctx, data, c.bridge)
}

// Transfer releases value tokens to `to` for the foreign transaction hash.
// A malformed recipient is skipped; sent reports whether anything was
// submitted.
func (c *Confirmer) Transfer(ctx context.Context, hash common.Hash, to string, value *big.Int) (txHash common.Hash, sent bool, err error) {
	log := c.log.WithFields(logrus.Fields{
		"hash":  hash.Hex(),
		"to":    to,
		"value": value,
	})
	if !common.IsHexAddress(to) {
		log.Warn("Transfer recipient is not an address, skipping")
		return common.Hash{}, false, nil
	}
	data, err := bridge.PackTransfer(hash, common.HexToAddress(to), value)
	if err != nil {
		return common.Hash{}, false, err
	}
	log.Info("Calling transfer")
	txHash, err = c.home.Submit(ctx, data, c.bridge)
	if err != nil {
		return common.Hash{}, false, err
	}
	return txHash, true, nil
}
