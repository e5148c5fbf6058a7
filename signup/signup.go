// Package signup registers the validator for MPC sessions.
package signup

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/sirupsen/logrus"

	"github.com/rony4d/go-bridge-relay/contracts/bridge"
	"github.com/rony4d/go-bridge-relay/contracts/shareddb"
	"github.com/rony4d/go-bridge-relay/inter"
	"github.com/rony4d/go-bridge-relay/txsender"
)

// ErrNotAuthorized is returned to identities outside the next validator set.
var ErrNotAuthorized = errors.New("not a validator")

type Coordinator struct {
	self   common.Address
	bridge *bridge.Bridge
	db     *shareddb.SharedDB
	side   *txsender.Sequencer
	log    logrus.FieldLogger
}

func New(self common.Address, b *bridge.Bridge, db *shareddb.SharedDB, side *txsender.Sequencer, log logrus.FieldLogger) *Coordinator {
	return &Coordinator{
		self:   self,
		bridge: b,
		db:     db,
		side:   side,
		log:    log,
	}
}

// SignupKeygen returns the keygen session of the pending epoch and the
// validator's party index in it. Nothing is submitted: the index is
// fixed by the next validator set.
func (c *Coordinator) SignupKeygen(ctx context.Context) (inter.SessionID, uint64, error) {
	next, err := c.bridge.NextEpoch(ctx)
	if err != nil {
		return inter.SessionID{}, 0, err
	}
	epoch, ok := inter.EpochFromBig(next)
	if !ok {
		return inter.SessionID{}, 0, errors.New("next epoch out of range")
	}
	party, err := c.bridge.NextPartyID(ctx, c.self)
	if err != nil {
		return inter.SessionID{}, 0, err
	}
	if party.Sign() == 0 {
		c.log.WithField("epoch", epoch).Debug("Not a validator")
		return inter.SessionID{}, 0, ErrNotAuthorized
	}
	if !party.IsUint64() {
		return inter.SessionID{}, 0, errors.New("party index out of range")
	}
	return inter.KeygenSession(epoch), party.Uint64(), nil
}

// SignupSign registers the validator for signing input. A reverted
// registration means the validator is already signed up and yields party
// index 0. Any revert cause is read that way.
func (c *Coordinator) SignupSign(ctx context.Context, input []byte) (inter.SessionID, uint64, error) {
	hash := crypto.Keccak256Hash(input)
	session := inter.SigningSession(hash)
	log := c.log.WithField("session", session.String())

	data, err := shareddb.PackSignupSign(hash)
	if err != nil {
		return inter.SessionID{}, 0, err
	}
	receipt, err := c.side.SubmitAndWait(ctx, data, c.db.Address)
	if err != nil {
		return inter.SessionID{}, 0, err
	}
	if !receipt.Status {
		log.Debug("Already have signup")
		return session, 0, nil
	}

	validators, err := c.bridge.Validators(ctx)
	if err != nil {
		return inter.SessionID{}, 0, err
	}
	number, err := c.db.SignupNumber(ctx, hash, validators, c.self)
	if err != nil {
		return inter.SessionID{}, 0, err
	}
	if !number.IsUint64() {
		return inter.SessionID{}, 0, errors.New("signup number out of range")
	}
	log.WithField("party", number.Uint64()).Debug("Signed up")
	return session, number.Uint64(), nil
}
