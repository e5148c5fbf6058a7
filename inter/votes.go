package inter

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
)

// ActionCode is the bridge contract's vote type discriminator.
type ActionCode uint8

const (
	ActionConfirmFundsTransfer ActionCode = 1
	ActionStartVoting          ActionCode = 2
	ActionStartKeygen          ActionCode = 6
	ActionCancelKeygen         ActionCode = 7
)

// TallyKey is keccak256(abi.encodePacked(uint8 action, uint256 epoch)),
// the key of the bridge's votesCount mapping.
func TallyKey(action ActionCode, epoch *big.Int) common.Hash {
	packed := make([]byte, 0, 33)
	packed = append(packed, byte(action))
	packed = append(packed, math.U256Bytes(new(big.Int).Set(epoch))...)
	return crypto.Keccak256Hash(packed)
}
