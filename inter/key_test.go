package inter

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

func TestSlotOfIsPure(t *testing.T) {
	require := require.New(t)

	s := KeygenSession(5)
	require.Equal(SlotOf(s, "round1", 0), SlotOf(s, "round1", 0))
	require.Equal(crypto.Keccak256Hash([]byte("round1_0")), SlotOf(s, "round1", 0).Round)
	require.Equal(s.Hash(), SlotOf(s, "round1", 0).Session)

	k := ProtocolKey{PeerIndex: 3, Round: "round1", Session: s, Target: 2}
	require.Equal(SlotOf(s, "round1", 2), k.Slot())
}

func TestSlotOfSeparatesInputs(t *testing.T) {
	require := require.New(t)

	s := SigningSession(common.HexToHash("0xabcdef"))
	seen := map[StorageSlot]string{}
	for _, round := range []string{"round1", "round2", "round1_1", "round11", "1", ""} {
		for target := uint64(0); target < 12; target++ {
			slot := SlotOf(s, round, target)
			_, dup := seen[slot]
			require.False(dup, "%s/%d collides", round, target)
			seen[slot] = round
		}
	}

	require.NotEqual(SlotOf(KeygenSession(1), "r", 0), SlotOf(KeygenSession(2), "r", 0))
}

func TestTallyKey(t *testing.T) {
	require := require.New(t)

	epoch := big.NewInt(3)
	packed := append([]byte{2}, common.LeftPadBytes(epoch.Bytes(), 32)...)
	require.Equal(crypto.Keccak256Hash(packed), TallyKey(ActionStartVoting, epoch))
	require.NotEqual(TallyKey(ActionStartVoting, epoch), TallyKey(ActionStartKeygen, epoch))
}

func TestEpochFromBig(t *testing.T) {
	require := require.New(t)

	e, ok := EpochFromBig(big.NewInt(7))
	require.True(ok)
	require.EqualValues(7, e)

	_, ok = EpochFromBig(new(big.Int).Lsh(big.NewInt(1), 40))
	require.False(ok)
	_, ok = EpochFromBig(nil)
	require.False(ok)
}

func TestBridgeStatusString(t *testing.T) {
	require := require.New(t)
	require.Equal("ready", StatusReady.String())
	require.Equal("voting", StatusVoting.String())
	require.Equal("keygen", StatusKeygen.String())
	require.Equal("funds_transfer", StatusFundsTransfer.String())
	require.Equal("unknown", BridgeStatus(9).String())
}
