package chaintest

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/rony4d/go-bridge-relay/chain"
	"github.com/rony4d/go-bridge-relay/contracts/bridge"
	"github.com/rony4d/go-bridge-relay/contracts/shareddb"
)

var (
	self       = common.HexToAddress("0x1000000000000000000000000000000000000001")
	other      = common.HexToAddress("0x1000000000000000000000000000000000000002")
	bridgeAddr = common.HexToAddress("0xb000000000000000000000000000000000000000")
	dbAddr     = common.HexToAddress("0xd000000000000000000000000000000000000000")
)

func TestBridgeReads(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	c := New("home", self)
	sim := NewBridge()
	sim.Validators = []common.Address{self, other}
	sim.NextValidators = []common.Address{other, self}
	sim.NextEpoch = big.NewInt(4)
	sim.Status = 2
	c.Deploy(bridgeAddr, sim)

	b := bridge.New(bridgeAddr, c)

	vals, err := b.Validators(ctx)
	require.NoError(err)
	require.Equal([]common.Address{self, other}, vals)

	id, err := b.NextPartyID(ctx, self)
	require.NoError(err)
	require.Equal(int64(2), id.Int64())

	epoch, err := b.NextEpoch(ctx)
	require.NoError(err)
	require.Equal(int64(4), epoch.Int64())

	status, err := b.Status(ctx)
	require.NoError(err)
	require.Equal(uint8(2), status)

	c.CallErr = errors.New("down")
	_, err = b.Epoch(ctx)
	require.ErrorIs(err, chain.ErrNetwork)
}

func TestSendExecutesAndRecordsReceipt(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	c := New("side", self)
	db := NewSharedDB()
	c.Deploy(dbAddr, db)
	c.SetNonce(self, 7)

	hash := common.HexToHash("0x01")
	data, err := shareddb.PackSignupSign(hash)
	require.NoError(err)

	// Case 1: first signup succeeds
	tx, err := c.Send(ctx, dbAddr, data, 7)
	require.NoError(err)
	r, err := c.WaitReceipt(ctx, tx)
	require.NoError(err)
	require.True(r.Status)

	nonce, err := c.NonceAt(ctx, self)
	require.NoError(err)
	require.Equal(uint64(8), nonce)

	// Case 2: a duplicate signup reverts
	tx, err = c.Send(ctx, dbAddr, data, 8)
	require.NoError(err)
	r, err = c.WaitReceipt(ctx, tx)
	require.NoError(err)
	require.False(r.Status)
	require.ErrorIs(r.Err(), chain.ErrReverted)

	// Case 3: dispatch failure is recorded as an attempt only
	c.SendErr = errors.New("refused")
	_, err = c.Send(ctx, dbAddr, data, 9)
	require.ErrorIs(err, chain.ErrNetwork)
	require.Len(c.Attempts(), 3)
	require.Len(c.Sent(), 2)
}
