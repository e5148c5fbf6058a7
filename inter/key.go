package inter

import (
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Broadcast is the Target of a message addressed to every peer.
const Broadcast uint64 = 0

// ProtocolKey addresses one MPC message: what PeerIndex published in Round
// of Session for Target.
type ProtocolKey struct {
	PeerIndex uint64
	Round     string
	Session   SessionID
	Target    uint64
}

// StorageSlot is the SharedDB location of a message: the session key and
// the round key under the sender's account.
type StorageSlot struct {
	Session common.Hash
	Round   common.Hash
}

// RoundKey hashes "<round>_<target>". The target is rendered in decimal and
// never contains '_', so the last underscore splits the preimage uniquely.
func RoundKey(round string, target uint64) common.Hash {
	return crypto.Keccak256Hash([]byte(round + "_" + strconv.FormatUint(target, 10)))
}

// SlotOf is the pure mapping from a message coordinate to its slot.
func SlotOf(session SessionID, round string, target uint64) StorageSlot {
	return StorageSlot{
		Session: session.Hash(),
		Round:   RoundKey(round, target),
	}
}

// Slot returns the storage slot of k. The sender is not part of the slot,
// it selects the account the slot is read under.
func (k ProtocolKey) Slot() StorageSlot {
	return SlotOf(k.Session, k.Round, k.Target)
}
