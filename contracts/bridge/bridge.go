// Package bridge binds the home-chain Bridge contract: validator sets,
// epochs, group key, governance votes and funds confirmations.
package bridge

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/rony4d/go-bridge-relay/chain"
)

// ContractABI lists the Bridge methods the relay reads or calls.
const ContractABI = `[
{"constant":true,"inputs":[],"name":"getValidators","outputs":[{"name":"","type":"address[]"}],"stateMutability":"view","type":"function"},
{"constant":true,"inputs":[],"name":"getNextValidators","outputs":[{"name":"","type":"address[]"}],"stateMutability":"view","type":"function"},
{"constant":true,"inputs":[],"name":"epoch","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
{"constant":true,"inputs":[],"name":"nextEpoch","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
{"constant":true,"inputs":[{"name":"a","type":"address"}],"name":"getNextPartyId","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
{"constant":true,"inputs":[],"name":"getX","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
{"constant":true,"inputs":[],"name":"getY","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
{"constant":true,"inputs":[],"name":"getThreshold","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
{"constant":true,"inputs":[],"name":"getNextThreshold","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
{"constant":true,"inputs":[],"name":"status","outputs":[{"name":"","type":"uint8"}],"stateMutability":"view","type":"function"},
{"constant":true,"inputs":[{"name":"","type":"bytes32"}],"name":"votesCount","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
{"constant":false,"inputs":[{"name":"x","type":"uint256"},{"name":"y","type":"uint256"}],"name":"confirmKeygen","outputs":[],"stateMutability":"nonpayable","type":"function"},
{"constant":false,"inputs":[],"name":"confirmFundsTransfer","outputs":[],"stateMutability":"nonpayable","type":"function"},
{"constant":false,"inputs":[],"name":"startVoting","outputs":[],"stateMutability":"nonpayable","type":"function"},
{"constant":false,"inputs":[],"name":"voteStartKeygen","outputs":[],"stateMutability":"nonpayable","type":"function"},
{"constant":false,"inputs":[],"name":"voteCancelKeygen","outputs":[],"stateMutability":"nonpayable","type":"function"},
{"constant":false,"inputs":[{"name":"validator","type":"address"}],"name":"voteAddValidator","outputs":[],"stateMutability":"nonpayable","type":"function"},
{"constant":false,"inputs":[{"name":"validator","type":"address"}],"name":"voteRemoveValidator","outputs":[],"stateMutability":"nonpayable","type":"function"},
{"constant":false,"inputs":[{"name":"threshold","type":"uint256"}],"name":"voteChangeThreshold","outputs":[],"stateMutability":"nonpayable","type":"function"},
{"constant":false,"inputs":[{"name":"hash","type":"bytes32"},{"name":"to","type":"address"},{"name":"value","type":"uint256"}],"name":"transfer","outputs":[],"stateMutability":"nonpayable","type":"function"}
]`

// ABI is parsed once at start.
var ABI abi.ABI

func init() {
	ABI = chain.MustParseABI(ContractABI)
}

// Bridge reads the contract and packs calls for the home sequencer.
type Bridge struct {
	*chain.Contract
}

func New(address common.Address, reader chain.Reader) *Bridge {
	return &Bridge{chain.NewContract(address, ABI, reader)}
}

func (b *Bridge) addresses(ctx context.Context, method string) ([]common.Address, error) {
	var out []common.Address
	if err := b.CallOne(ctx, &out, method); err != nil {
		return nil, err
	}
	return out, nil
}

func (b *Bridge) number(ctx context.Context, method string, args ...interface{}) (*big.Int, error) {
	var out *big.Int
	if err := b.CallOne(ctx, &out, method, args...); err != nil {
		return nil, err
	}
	return out, nil
}

// Validators is the current epoch's ordered validator set.
func (b *Bridge) Validators(ctx context.Context) ([]common.Address, error) {
	return b.addresses(ctx, "getValidators")
}

// NextValidators is the validator set of the epoch being formed.
func (b *Bridge) NextValidators(ctx context.Context) ([]common.Address, error) {
	return b.addresses(ctx, "getNextValidators")
}

func (b *Bridge) Epoch(ctx context.Context) (*big.Int, error) {
	return b.number(ctx, "epoch")
}

func (b *Bridge) NextEpoch(ctx context.Context) (*big.Int, error) {
	return b.number(ctx, "nextEpoch")
}

// NextPartyID is the 1-based keygen party index of a validator in the next
// epoch, 0 if it is not part of it.
func (b *Bridge) NextPartyID(ctx context.Context, validator common.Address) (*big.Int, error) {
	return b.number(ctx, "getNextPartyId", validator)
}

func (b *Bridge) X(ctx context.Context) (*big.Int, error) {
	return b.number(ctx, "getX")
}

func (b *Bridge) Y(ctx context.Context) (*big.Int, error) {
	return b.number(ctx, "getY")
}

func (b *Bridge) Threshold(ctx context.Context) (*big.Int, error) {
	return b.number(ctx, "getThreshold")
}

func (b *Bridge) NextThreshold(ctx context.Context) (*big.Int, error) {
	return b.number(ctx, "getNextThreshold")
}

func (b *Bridge) Status(ctx context.Context) (uint8, error) {
	var out uint8
	if err := b.CallOne(ctx, &out, "status"); err != nil {
		return 0, err
	}
	return out, nil
}

// VotesCount reads a tally keyed by inter.TallyKey.
func (b *Bridge) VotesCount(ctx context.Context, key common.Hash) (*big.Int, error) {
	return b.number(ctx, "votesCount", key)
}

func PackConfirmKeygen(x, y *big.Int) ([]byte, error) {
	return ABI.Pack("confirmKeygen", x, y)
}

func PackConfirmFundsTransfer() ([]byte, error) {
	return ABI.Pack("confirmFundsTransfer")
}

func PackStartVoting() ([]byte, error) {
	return ABI.Pack("startVoting")
}

func PackVoteStartKeygen() ([]byte, error) {
	return ABI.Pack("voteStartKeygen")
}

func PackVoteCancelKeygen() ([]byte, error) {
	return ABI.Pack("voteCancelKeygen")
}

func PackVoteAddValidator(validator common.Address) ([]byte, error) {
	return ABI.Pack("voteAddValidator", validator)
}

func PackVoteRemoveValidator(validator common.Address) ([]byte, error) {
	return ABI.Pack("voteRemoveValidator", validator)
}

func PackVoteChangeThreshold(threshold *big.Int) ([]byte, error) {
	return ABI.Pack("voteChangeThreshold", threshold)
}

// PackTransfer releases value tokens to `to` for the foreign transfer
// identified by hash.
func PackTransfer(hash common.Hash, to common.Address, value *big.Int) ([]byte, error) {
	return ABI.Pack("transfer", hash, to, value)
}
