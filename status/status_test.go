package status

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/rony4d/go-bridge-relay/chain"
	"github.com/rony4d/go-bridge-relay/chain/chaintest"
	"github.com/rony4d/go-bridge-relay/contracts/bridge"
	"github.com/rony4d/go-bridge-relay/contracts/erc20"
	"github.com/rony4d/go-bridge-relay/inter"
	"github.com/rony4d/go-bridge-relay/inter/validatorpk"
)

var (
	self       = common.HexToAddress("0x1000000000000000000000000000000000000001")
	peer       = common.HexToAddress("0x1000000000000000000000000000000000000002")
	bridgeAddr = common.HexToAddress("0xb000000000000000000000000000000000000000")
	tokenAddr  = common.HexToAddress("0xc000000000000000000000000000000000000000")
)

type staticBalances map[string]string

func (s staticBalances) Balances(ctx context.Context, address string) map[string]string {
	return s
}

type recordingBalances struct {
	address string
}

func (r *recordingBalances) Balances(ctx context.Context, address string) map[string]string {
	r.address = address
	return map[string]string{}
}

func newAggregator(t *testing.T, foreign BalanceLookup) (*Aggregator, *chaintest.Chain, *chaintest.Bridge) {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	home := chaintest.New("home", self)
	b := chaintest.NewBridge()
	b.Epoch = big.NewInt(3)
	b.NextEpoch = big.NewInt(4)
	b.Threshold = big.NewInt(1)
	b.NextThreshold = big.NewInt(2)
	b.Validators = []common.Address{self}
	b.NextValidators = []common.Address{self, peer}
	b.Status = uint8(inter.StatusVoting)
	b.X, _ = new(big.Int).SetString("79be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798", 16)
	b.Y, _ = new(big.Int).SetString("483ada7726a3c4655da4fbfc0e1108a8fd17b448a68554199c47d08ffb10d4b8", 16)
	home.Deploy(bridgeAddr, b)

	token := chaintest.NewToken()
	token.Balances[bridgeAddr], _ = new(big.Int).SetString("123456789987654321012", 10)
	home.Deploy(tokenAddr, token)

	cfg := Config{
		HomeBridge:   bridgeAddr,
		ForeignHRP:   "tbnb",
		ForeignAsset: "DEV-BE4",
		NativeAsset:  "BNB",
	}
	return New(cfg, bridge.New(bridgeAddr, home), erc20.New(tokenAddr, home), foreign, log), home, b
}

func TestSnapshot(t *testing.T) {
	require := require.New(t)
	agg, _, b := newAggregator(t, staticBalances{"DEV-BE4": "10.5", "BNB": "0.25"})

	next := big.NewInt(4)
	b.Votes[inter.TallyKey(inter.ActionStartVoting, next)] = big.NewInt(2)
	b.Votes[inter.TallyKey(inter.ActionStartKeygen, next)] = big.NewInt(1)
	b.Votes[inter.TallyKey(inter.ActionConfirmFundsTransfer, next)] = new(big.Int).Lsh(big.NewInt(1), 70)
	// votes of the current epoch are not reported
	b.Votes[inter.TallyKey(inter.ActionCancelKeygen, big.NewInt(3))] = big.NewInt(9)

	info, err := agg.Snapshot(context.Background())
	require.NoError(err)

	require.Equal(uint64(3), info.Epoch)
	require.Equal(uint64(4), info.NextEpoch)
	require.Equal(uint64(1), info.Threshold)
	require.Equal(uint64(2), info.NextThreshold)
	require.Equal([]common.Address{self, peer}, info.NextValidators)
	require.Equal(inter.StatusVoting, info.BridgeStatus)
	require.Equal(json.Number("123.45678998"), info.HomeBalance)
	require.Equal(10.5, info.ForeignBalanceTokens)
	require.Equal(0.25, info.ForeignBalanceNative)
	require.Equal(int64(2), info.VotesForVoting)
	require.Equal(int64(1), info.VotesForKeygen)
	require.Equal(int64(0), info.VotesForCancelKeygen)
	require.Equal(int64(-1), info.ConfirmationsForFundsTransfer)

	want, err := validatorpk.GroupKey{X: b.X, Y: b.Y}.ForeignAddress("tbnb")
	require.NoError(err)
	require.Equal(want, info.ForeignBridgeAddress)

	raw, err := json.Marshal(info)
	require.NoError(err)
	var doc map[string]interface{}
	require.NoError(json.Unmarshal(raw, &doc))
	require.Equal("voting", doc["bridgeStatus"])
	require.Equal(123.45678998, doc["homeBalance"])
	for _, key := range []string{"epoch", "nextEpoch", "threshold", "nextThreshold", "homeBridgeAddress",
		"foreignBridgeAddress", "validators", "nextValidators", "homeBalance", "foreignBalanceTokens",
		"foreignBalanceNative", "bridgeStatus", "votesForVoting", "votesForKeygen", "votesForCancelKeygen",
		"confirmationsForFundsTransfer"} {
		require.Contains(doc, key)
	}
}

func TestSnapshotForeignFailure(t *testing.T) {
	require := require.New(t)
	lookup := &recordingBalances{}
	agg, _, _ := newAggregator(t, lookup)

	info, err := agg.Snapshot(context.Background())
	require.NoError(err)
	require.Zero(info.ForeignBalanceTokens)
	require.Zero(info.ForeignBalanceNative)
	require.Equal(info.ForeignBridgeAddress, lookup.address)
}

func TestSnapshotUnparseableForeignBalance(t *testing.T) {
	agg, _, _ := newAggregator(t, staticBalances{"DEV-BE4": "lots", "BNB": "NaN"})
	info, err := agg.Snapshot(context.Background())
	require.NoError(t, err)
	require.Zero(t, info.ForeignBalanceTokens)
	require.Zero(t, info.ForeignBalanceNative)
}

func TestSnapshotChainFailure(t *testing.T) {
	agg, home, _ := newAggregator(t, staticBalances{})
	home.CallErr = errors.New("node down")
	_, err := agg.Snapshot(context.Background())
	require.ErrorIs(t, err, chain.ErrNetwork)
}

func TestTruncateUnits(t *testing.T) {
	for _, tc := range []struct {
		amount string
		want   json.Number
	}{
		{"0", "0"},
		{"5", "0"},
		{"1000000000000000000", "1"},
		{"1500000000000000000", "1.5"},
		{"999999999999999999", "0.99999999"},
		{"123456789987654321012", "123.45678998"},
		{"10000000000", "0.00000001"},
		{"-1500000000000000000", "-1.5"},
	} {
		v, ok := new(big.Int).SetString(tc.amount, 10)
		require.True(t, ok)
		require.Equal(t, tc.want, TruncateUnits(v, 18, 8), tc.amount)
	}
}
