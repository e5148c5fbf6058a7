// Package adapter moves MPC round payloads between peers and SharedDB.
package adapter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"

	"github.com/rony4d/go-bridge-relay/contracts/bridge"
	"github.com/rony4d/go-bridge-relay/contracts/shareddb"
	"github.com/rony4d/go-bridge-relay/inter"
	"github.com/rony4d/go-bridge-relay/metrics"
	"github.com/rony4d/go-bridge-relay/txsender"
)

// DefaultUnavailableDelay is how long Get holds an empty answer.
const DefaultUnavailableDelay = time.Second

// ErrNotAvailable means the sender has not published the slot yet.
var ErrNotAvailable = errors.New("data not yet available")

type Adapter struct {
	bridge *bridge.Bridge
	db     *shareddb.SharedDB
	side   *txsender.Sequencer

	unavailableDelay time.Duration
	log              logrus.FieldLogger
	metrics          *metrics.Collector
}

// New wires the adapter. side must submit to the chain hosting db.
func New(b *bridge.Bridge, db *shareddb.SharedDB, side *txsender.Sequencer, unavailableDelay time.Duration, log logrus.FieldLogger, m *metrics.Collector) *Adapter {
	return &Adapter{
		bridge:           b,
		db:               db,
		side:             side,
		unavailableDelay: unavailableDelay,
		log:              log,
		metrics:          m,
	}
}

// Set publishes payload under the validator's own account. It returns once
// the transaction is dispatched.
func (a *Adapter) Set(ctx context.Context, key inter.ProtocolKey, payload []byte) (common.Hash, error) {
	encoded, err := Encode(key.Session.IsKeygen(), key.Round, payload)
	if err != nil {
		return common.Hash{}, err
	}
	slot := key.Slot()
	data, err := shareddb.PackSetData(slot.Session, slot.Round, encoded)
	if err != nil {
		return common.Hash{}, err
	}
	a.log.WithFields(logrus.Fields{
		"session": key.Session.String(),
		"round":   key.Round,
		"target":  key.Target,
		"size":    len(payload),
		"encoded": len(encoded),
	}).Debug("Publishing round payload")
	return a.side.Submit(ctx, data, a.db.Address)
}

// Get reads what peer key.PeerIndex published for the slot. Absent data is
// reported as ErrNotAvailable only after the unavailable delay.
func (a *Adapter) Get(ctx context.Context, key inter.ProtocolKey) ([]byte, error) {
	from, err := a.sender(ctx, key)
	if err != nil {
		return nil, err
	}
	var data []byte
	if from != (common.Address{}) {
		slot := key.Slot()
		data, err = a.db.Data(ctx, from, slot.Session, slot.Round)
		if err != nil {
			return nil, err
		}
	}
	if len(data) == 0 {
		return nil, a.unavailable(ctx, key)
	}
	return Decode(key.Session.IsKeygen(), key.Round, data)
}

// sender resolves the account a peer publishes under. The zero address
// means the peer is not known yet.
func (a *Adapter) sender(ctx context.Context, key inter.ProtocolKey) (common.Address, error) {
	if key.Session.IsKeygen() {
		next, err := a.bridge.NextValidators(ctx)
		if err != nil {
			return common.Address{}, err
		}
		if key.PeerIndex == 0 || key.PeerIndex > uint64(len(next)) {
			return common.Address{}, nil
		}
		return next[key.PeerIndex-1], nil
	}

	hash, ok := key.Session.SigningHash()
	if !ok {
		return common.Address{}, fmt.Errorf("session %v has no kind", key.Session)
	}
	validators, err := a.bridge.Validators(ctx)
	if err != nil {
		return common.Address{}, err
	}
	return a.db.SignupAddress(ctx, hash, validators, key.PeerIndex)
}

func (a *Adapter) unavailable(ctx context.Context, key inter.ProtocolKey) error {
	a.metrics.Unavailable()
	a.log.WithFields(logrus.Fields{
		"session": key.Session.String(),
		"round":   key.Round,
		"peer":    key.PeerIndex,
	}).Trace("Round payload not published yet")

	timer := time.NewTimer(a.unavailableDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return ErrNotAvailable
	case <-ctx.Done():
		return ctx.Err()
	}
}
