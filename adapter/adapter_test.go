package adapter

import (
	"context"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/rony4d/go-bridge-relay/chain/chaintest"
	"github.com/rony4d/go-bridge-relay/contracts/bridge"
	"github.com/rony4d/go-bridge-relay/contracts/shareddb"
	"github.com/rony4d/go-bridge-relay/inter"
	"github.com/rony4d/go-bridge-relay/metrics"
	"github.com/rony4d/go-bridge-relay/txsender"
)

var (
	self       = common.HexToAddress("0x1000000000000000000000000000000000000001")
	peer       = common.HexToAddress("0x1000000000000000000000000000000000000002")
	bridgeAddr = common.HexToAddress("0xb000000000000000000000000000000000000000")
	dbAddr     = common.HexToAddress("0xd000000000000000000000000000000000000000")
)

type testEnv struct {
	adapter *Adapter
	bridge  *chaintest.Bridge
	db      *chaintest.SharedDB
	side    *chaintest.Chain
}

func newTestEnv(t *testing.T, delay time.Duration) *testEnv {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	home := chaintest.New("home", self)
	b := chaintest.NewBridge()
	b.Validators = []common.Address{self, peer}
	b.NextValidators = []common.Address{self, peer}
	home.Deploy(bridgeAddr, b)

	side := chaintest.New("side", self)
	db := chaintest.NewSharedDB()
	side.Deploy(dbAddr, db)

	m := metrics.New(prometheus.NewRegistry())
	seq, err := txsender.New(context.Background(), side, self, log, m)
	require.NoError(t, err)

	a := New(bridge.New(bridgeAddr, home), shareddb.New(dbAddr, side), seq, delay, log, m)
	return &testEnv{adapter: a, bridge: b, db: db, side: side}
}

func TestSetThenGetKeygen(t *testing.T) {
	require := require.New(t)
	env := newTestEnv(t, 10*time.Millisecond)
	ctx := context.Background()

	key := inter.ProtocolKey{
		PeerIndex: 1,
		Round:     "0",
		Session:   inter.KeygenSession(5),
		Target:    inter.Broadcast,
	}
	payload := []byte(`{"parties":[1,2],"commitment":"deadbeef"}`)

	_, err := env.adapter.Set(ctx, key, payload)
	require.NoError(err)

	// stored under the keygen session hash and round "0_0"
	stored, ok := env.db.Stored(self, crypto.Keccak256Hash([]byte("k5")), crypto.Keccak256Hash([]byte("0_0")))
	require.True(ok)
	require.NotEmpty(stored)

	got, err := env.adapter.Get(ctx, key)
	require.NoError(err)
	require.Equal(payload, got)

	// Case: the same slot of another target is still empty
	key.Target = 2
	_, err = env.adapter.Get(ctx, key)
	require.ErrorIs(err, ErrNotAvailable)
}

func TestGetSigningResolvesSignupAddress(t *testing.T) {
	require := require.New(t)
	env := newTestEnv(t, 10*time.Millisecond)
	ctx := context.Background()

	hash := crypto.Keccak256Hash([]byte("message"))
	session := inter.SigningSession(hash)
	require.NoError(env.db.Signup(peer, hash))
	require.NoError(env.db.Signup(self, hash))

	payload := []byte("signing round payload")
	enc, err := Encode(false, "2", payload)
	require.NoError(err)
	slot := inter.SlotOf(session, "2", 0)
	env.db.Put(peer, slot.Session, slot.Round, enc)

	// peer signed up first, so it is party 1
	got, err := env.adapter.Get(ctx, inter.ProtocolKey{PeerIndex: 1, Round: "2", Session: session})
	require.NoError(err)
	require.Equal(payload, got)

	// party 2 is self, which published nothing
	_, err = env.adapter.Get(ctx, inter.ProtocolKey{PeerIndex: 2, Round: "2", Session: session})
	require.ErrorIs(err, ErrNotAvailable)

	// party 3 does not exist
	_, err = env.adapter.Get(ctx, inter.ProtocolKey{PeerIndex: 3, Round: "2", Session: session})
	require.ErrorIs(err, ErrNotAvailable)
}

func TestGetUnavailableIsDelayed(t *testing.T) {
	require := require.New(t)
	env := newTestEnv(t, DefaultUnavailableDelay)

	key := inter.ProtocolKey{PeerIndex: 2, Round: "1", Session: inter.KeygenSession(5)}
	start := time.Now()
	_, err := env.adapter.Get(context.Background(), key)
	require.ErrorIs(err, ErrNotAvailable)
	require.GreaterOrEqual(int64(time.Since(start)), int64(DefaultUnavailableDelay))
}

func TestGetOutOfRangeKeygenPeer(t *testing.T) {
	require := require.New(t)
	env := newTestEnv(t, time.Millisecond)

	for _, idx := range []uint64{0, 3} {
		key := inter.ProtocolKey{PeerIndex: idx, Round: "1", Session: inter.KeygenSession(5)}
		_, err := env.adapter.Get(context.Background(), key)
		require.ErrorIs(err, ErrNotAvailable)
	}
}

func TestGetHonoursContext(t *testing.T) {
	require := require.New(t)
	env := newTestEnv(t, time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := env.adapter.Get(ctx, inter.ProtocolKey{PeerIndex: 2, Round: "1", Session: inter.KeygenSession(5)})
	require.ErrorIs(err, context.DeadlineExceeded)
}
