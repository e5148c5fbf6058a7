// Package voting relays the validator's governance votes to the Bridge.
package voting

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"

	"github.com/rony4d/go-bridge-relay/contracts/bridge"
	"github.com/rony4d/go-bridge-relay/metrics"
	"github.com/rony4d/go-bridge-relay/txsender"
)

// Outcome is the definite result of a vote. Every error a vote can run
// into ends up as Failed.
type Outcome bool

const (
	Failed Outcome = false
	Voted  Outcome = true
)

func (o Outcome) String() string {
	if o == Voted {
		return "Voted"
	}
	return "Failed"
}

// Action names a governance vote.
type Action string

const (
	ActionStartVoting     Action = "startVoting"
	ActionStartKeygen     Action = "startKeygen"
	ActionCancelKeygen    Action = "cancelKeygen"
	ActionAddValidator    Action = "addValidator"
	ActionRemoveValidator Action = "removeValidator"
	ActionChangeThreshold Action = "changeThreshold"
)

var maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

type Relay struct {
	bridge  common.Address
	home    *txsender.Sequencer
	log     logrus.FieldLogger
	metrics *metrics.Collector
}

// New returns a relay voting on the Bridge at bridgeAddr through home.
func New(bridgeAddr common.Address, home *txsender.Sequencer, log logrus.FieldLogger, m *metrics.Collector) *Relay {
	return &Relay{
		bridge:  bridgeAddr,
		home:    home,
		log:     log,
		metrics: m,
	}
}

func (r *Relay) StartVoting(ctx context.Context) Outcome {
	r.log.Info("Voting for starting new epoch voting process")
	return r.vote(ctx, ActionStartVoting, bridge.PackStartVoting)
}

func (r *Relay) StartKeygen(ctx context.Context) Outcome {
	r.log.Info("Voting for starting new epoch keygen")
	return r.vote(ctx, ActionStartKeygen, bridge.PackVoteStartKeygen)
}

func (r *Relay) CancelKeygen(ctx context.Context) Outcome {
	r.log.Info("Voting for cancelling new epoch keygen")
	return r.vote(ctx, ActionCancelKeygen, bridge.PackVoteCancelKeygen)
}

// AddValidator votes to add the validator given as a hex address.
func (r *Relay) AddValidator(ctx context.Context, validator string) Outcome {
	r.log.WithField("validator", validator).Info("Voting for adding new validator")
	return r.vote(ctx, ActionAddValidator, func() ([]byte, error) {
		addr, err := parseAddress(validator)
		if err != nil {
			return nil, err
		}
		return bridge.PackVoteAddValidator(addr)
	})
}

// RemoveValidator votes to remove the validator given as a hex address.
func (r *Relay) RemoveValidator(ctx context.Context, validator string) Outcome {
	r.log.WithField("validator", validator).Info("Voting for removing validator")
	return r.vote(ctx, ActionRemoveValidator, func() ([]byte, error) {
		addr, err := parseAddress(validator)
		if err != nil {
			return nil, err
		}
		return bridge.PackVoteRemoveValidator(addr)
	})
}

// ChangeThreshold votes for a new threshold given in decimal.
func (r *Relay) ChangeThreshold(ctx context.Context, threshold string) Outcome {
	r.log.WithField("threshold", threshold).Info("Voting for changing threshold")
	return r.vote(ctx, ActionChangeThreshold, func() ([]byte, error) {
		n, ok := new(big.Int).SetString(threshold, 10)
		if !ok || n.Sign() < 0 || n.Cmp(maxUint256) > 0 {
			return nil, fmt.Errorf("invalid threshold %q", threshold)
		}
		return bridge.PackVoteChangeThreshold(n)
	})
}

func (r *Relay) vote(ctx context.Context, action Action, pack func() ([]byte, error)) Outcome {
	log := r.log.WithField("action", string(action))
	outcome := r.submit(ctx, log, pack)
	r.metrics.Vote(string(action), outcome.String())
	if outcome == Voted {
		log.Info("Voted successfully")
	} else {
		log.Info("Failed to vote")
	}
	return outcome
}

func (r *Relay) submit(ctx context.Context, log logrus.FieldLogger, pack func() ([]byte, error)) Outcome {
	data, err := pack()
	if err != nil {
		log.WithError(err).Debug("Vote not submitted")
		return Failed
	}
	receipt, err := r.home.SubmitAndWait(ctx, data, r.bridge)
	if err != nil {
		log.WithError(err).Debug("Vote submission failed")
		return Failed
	}
	if err := receipt.Err(); err != nil {
		log.WithError(err).Debug("Vote reverted")
		return Failed
	}
	return Voted
}

func parseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("invalid address %q", s)
	}
	return common.HexToAddress(s), nil
}
