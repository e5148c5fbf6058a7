package inter

import (
	"math/big"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/ethereum/go-ethereum/common"
)

// BridgeStatus mirrors the bridge contract's state machine.
type BridgeStatus uint8

const (
	StatusReady BridgeStatus = iota
	StatusVoting
	StatusKeygen
	StatusFundsTransfer
)

func (s BridgeStatus) String() string {
	switch s {
	case StatusReady:
		return "ready"
	case StatusVoting:
		return "voting"
	case StatusKeygen:
		return "keygen"
	case StatusFundsTransfer:
		return "funds_transfer"
	default:
		return "unknown"
	}
}

func (s BridgeStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// EpochState is a read-only view of the bridge's epoch configuration. It is
// assembled from independent reads and is not cached.
type EpochState struct {
	Epoch          idx.Epoch
	NextEpoch      idx.Epoch
	Threshold      uint64
	NextThreshold  uint64
	Validators     []common.Address
	NextValidators []common.Address
	Status         BridgeStatus
}

// EpochFromBig narrows an on-chain epoch counter. ok is false when the value
// does not fit an idx.Epoch.
func EpochFromBig(v *big.Int) (epoch idx.Epoch, ok bool) {
	if v == nil || v.Sign() < 0 || !v.IsUint64() || v.Uint64() > uint64(^uint32(0)) {
		return 0, false
	}
	return idx.Epoch(v.Uint64()), true
}
