// Package status assembles the bridge snapshot served on /info.
package status

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/rony4d/go-bridge-relay/contracts/bridge"
	"github.com/rony4d/go-bridge-relay/contracts/erc20"
	"github.com/rony4d/go-bridge-relay/inter"
	"github.com/rony4d/go-bridge-relay/inter/validatorpk"
)

const (
	tokenDecimals   = 18
	displayDecimals = 8
)

// BalanceLookup resolves balances on the foreign ledger. It never fails;
// an unknown account is an empty mapping.
type BalanceLookup interface {
	Balances(ctx context.Context, address string) map[string]string
}

type Config struct {
	HomeBridge   common.Address
	ForeignHRP   string
	ForeignAsset string
	NativeAsset  string
}

// Info is the /info document.
type Info struct {
	Epoch                         uint64             `json:"epoch"`
	NextEpoch                     uint64             `json:"nextEpoch"`
	Threshold                     uint64             `json:"threshold"`
	NextThreshold                 uint64             `json:"nextThreshold"`
	HomeBridgeAddress             common.Address     `json:"homeBridgeAddress"`
	ForeignBridgeAddress          string             `json:"foreignBridgeAddress"`
	Validators                    []common.Address   `json:"validators"`
	NextValidators                []common.Address   `json:"nextValidators"`
	HomeBalance                   json.Number        `json:"homeBalance"`
	ForeignBalanceTokens          float64            `json:"foreignBalanceTokens"`
	ForeignBalanceNative          float64            `json:"foreignBalanceNative"`
	BridgeStatus                  inter.BridgeStatus `json:"bridgeStatus"`
	VotesForVoting                int64              `json:"votesForVoting"`
	VotesForKeygen                int64              `json:"votesForKeygen"`
	VotesForCancelKeygen          int64              `json:"votesForCancelKeygen"`
	ConfirmationsForFundsTransfer int64              `json:"confirmationsForFundsTransfer"`
}

type Aggregator struct {
	cfg     Config
	bridge  *bridge.Bridge
	token   *erc20.Token
	foreign BalanceLookup
	log     logrus.FieldLogger
}

func New(cfg Config, b *bridge.Bridge, token *erc20.Token, foreign BalanceLookup, log logrus.FieldLogger) *Aggregator {
	return &Aggregator{
		cfg:     cfg,
		bridge:  b,
		token:   token,
		foreign: foreign,
		log:     log,
	}
}

// Snapshot reads the bridge in parallel. Reads are independent and may
// observe different blocks. A failed chain read fails the snapshot, a
// failed foreign lookup only zeroes the foreign balances.
func (a *Aggregator) Snapshot(ctx context.Context) (*Info, error) {
	var (
		state      inter.EpochState
		x, y       *big.Int
		epoch      *big.Int
		nextEpoch  *big.Int
		threshold  *big.Int
		nextThresh *big.Int
		balance    *big.Int
		status     uint8
	)

	g, gctx := errgroup.WithContext(ctx)
	read := func(dst **big.Int, f func(context.Context) (*big.Int, error)) {
		g.Go(func() error {
			v, err := f(gctx)
			*dst = v
			return err
		})
	}
	read(&x, a.bridge.X)
	read(&y, a.bridge.Y)
	read(&epoch, a.bridge.Epoch)
	read(&nextEpoch, a.bridge.NextEpoch)
	read(&threshold, a.bridge.Threshold)
	read(&nextThresh, a.bridge.NextThreshold)
	read(&balance, func(ctx context.Context) (*big.Int, error) {
		return a.token.BalanceOf(ctx, a.cfg.HomeBridge)
	})
	g.Go(func() (err error) {
		state.Validators, err = a.bridge.Validators(gctx)
		return err
	})
	g.Go(func() (err error) {
		state.NextValidators, err = a.bridge.NextValidators(gctx)
		return err
	})
	g.Go(func() (err error) {
		status, err = a.bridge.Status(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var ok bool
	if state.Epoch, ok = inter.EpochFromBig(epoch); !ok {
		return nil, fmt.Errorf("epoch %v out of range", epoch)
	}
	if state.NextEpoch, ok = inter.EpochFromBig(nextEpoch); !ok {
		return nil, fmt.Errorf("next epoch %v out of range", nextEpoch)
	}
	if !threshold.IsUint64() || !nextThresh.IsUint64() {
		return nil, fmt.Errorf("threshold %v/%v out of range", threshold, nextThresh)
	}
	state.Threshold = threshold.Uint64()
	state.NextThreshold = nextThresh.Uint64()
	state.Status = inter.BridgeStatus(status)

	tallies, err := a.tallies(ctx, nextEpoch)
	if err != nil {
		return nil, err
	}

	group := validatorpk.GroupKey{X: x, Y: y}
	foreignAddr, err := group.ForeignAddress(a.cfg.ForeignHRP)
	if err != nil {
		return nil, err
	}
	balances := a.foreign.Balances(ctx, foreignAddr)

	info := &Info{
		Epoch:                         uint64(state.Epoch),
		NextEpoch:                     uint64(state.NextEpoch),
		Threshold:                     state.Threshold,
		NextThreshold:                 state.NextThreshold,
		HomeBridgeAddress:             a.cfg.HomeBridge,
		ForeignBridgeAddress:          foreignAddr,
		Validators:                    nonNil(state.Validators),
		NextValidators:                nonNil(state.NextValidators),
		HomeBalance:                   TruncateUnits(balance, tokenDecimals, displayDecimals),
		ForeignBalanceTokens:          parseAmount(balances[a.cfg.ForeignAsset]),
		ForeignBalanceNative:          parseAmount(balances[a.cfg.NativeAsset]),
		BridgeStatus:                  state.Status,
		ConfirmationsForFundsTransfer: tallies[inter.ActionConfirmFundsTransfer],
		VotesForVoting:                tallies[inter.ActionStartVoting],
		VotesForKeygen:                tallies[inter.ActionStartKeygen],
		VotesForCancelKeygen:          tallies[inter.ActionCancelKeygen],
	}
	a.log.WithFields(logrus.Fields{
		"epoch":  info.Epoch,
		"status": info.BridgeStatus.String(),
	}).Debug("Info assembled")
	return info, nil
}

var talliedActions = []inter.ActionCode{
	inter.ActionConfirmFundsTransfer,
	inter.ActionStartVoting,
	inter.ActionStartKeygen,
	inter.ActionCancelKeygen,
}

// tallies reads the vote counters of the next epoch. Counts beyond int64
// are reported as -1.
func (a *Aggregator) tallies(ctx context.Context, nextEpoch *big.Int) (map[inter.ActionCode]int64, error) {
	counts := make([]*big.Int, len(talliedActions))
	g, gctx := errgroup.WithContext(ctx)
	for i, action := range talliedActions {
		i, key := i, inter.TallyKey(action, nextEpoch)
		g.Go(func() (err error) {
			counts[i], err = a.bridge.VotesCount(gctx, key)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	res := make(map[inter.ActionCode]int64, len(talliedActions))
	for i, action := range talliedActions {
		res[action] = boundInt64(counts[i])
	}
	return res, nil
}

func boundInt64(v *big.Int) int64 {
	if v == nil || !v.IsInt64() {
		return -1
	}
	return v.Int64()
}

// TruncateUnits renders a fixed point amount with `decimals` decimals,
// truncated (never rounded) to `keep` digits, without trailing zeros.
func TruncateUnits(amount *big.Int, decimals, keep int) json.Number {
	if amount == nil {
		return "0"
	}
	neg := amount.Sign() < 0
	abs := new(big.Int).Abs(amount)
	if decimals > keep {
		abs.Quo(abs, new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals-keep)), nil))
	} else {
		keep = decimals
	}
	digits := abs.String()
	if len(digits) <= keep {
		digits = strings.Repeat("0", keep-len(digits)+1) + digits
	}
	whole, frac := digits[:len(digits)-keep], strings.TrimRight(digits[len(digits)-keep:], "0")
	res := whole
	if frac != "" {
		res += "." + frac
	}
	if neg && res != "0" {
		res = "-" + res
	}
	return json.Number(res)
}

func parseAmount(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func nonNil(v []common.Address) []common.Address {
	if v == nil {
		return []common.Address{}
	}
	return v
}
