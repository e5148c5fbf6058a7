// Package shareddb binds the side-chain SharedDB contract, the on-chain
// key/value store MPC peers exchange round payloads through.
package shareddb

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/rony4d/go-bridge-relay/chain"
)

const ContractABI = `[
{"constant":false,"inputs":[{"name":"hash","type":"bytes32"},{"name":"key","type":"bytes32"},{"name":"data","type":"bytes"}],"name":"setData","outputs":[],"stateMutability":"nonpayable","type":"function"},
{"constant":true,"inputs":[{"name":"from","type":"address"},{"name":"hash","type":"bytes32"},{"name":"key","type":"bytes32"}],"name":"getData","outputs":[{"name":"","type":"bytes"}],"stateMutability":"view","type":"function"},
{"constant":false,"inputs":[{"name":"hash","type":"bytes32"}],"name":"signupSign","outputs":[],"stateMutability":"nonpayable","type":"function"},
{"constant":true,"inputs":[{"name":"hash","type":"bytes32"},{"name":"validators","type":"address[]"},{"name":"validator","type":"address"}],"name":"getSignupNumber","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
{"constant":true,"inputs":[{"name":"hash","type":"bytes32"},{"name":"validators","type":"address[]"},{"name":"signupNumber","type":"uint256"}],"name":"getSignupAddress","outputs":[{"name":"","type":"address"}],"stateMutability":"view","type":"function"}
]`

var ABI abi.ABI

func init() {
	ABI = chain.MustParseABI(ContractABI)
}

type SharedDB struct {
	*chain.Contract
}

func New(address common.Address, reader chain.Reader) *SharedDB {
	return &SharedDB{chain.NewContract(address, ABI, reader)}
}

// Data returns what `from` stored under (session, round). An empty result
// means nothing was stored yet.
func (s *SharedDB) Data(ctx context.Context, from common.Address, session, round common.Hash) ([]byte, error) {
	var out []byte
	if err := s.CallOne(ctx, &out, "getData", from, session, round); err != nil {
		return nil, err
	}
	return out, nil
}

// SignupNumber is the 1-based order in which validator signed up for the
// signing session hash, 0 if it did not.
func (s *SharedDB) SignupNumber(ctx context.Context, hash common.Hash, validators []common.Address, validator common.Address) (*big.Int, error) {
	var out *big.Int
	if err := s.CallOne(ctx, &out, "getSignupNumber", hash, validators, validator); err != nil {
		return nil, err
	}
	return out, nil
}

// SignupAddress resolves a signup number back to the validator address.
func (s *SharedDB) SignupAddress(ctx context.Context, hash common.Hash, validators []common.Address, number uint64) (common.Address, error) {
	var out common.Address
	if err := s.CallOne(ctx, &out, "getSignupAddress", hash, validators, new(big.Int).SetUint64(number)); err != nil {
		return common.Address{}, err
	}
	return out, nil
}

func PackSetData(session, round common.Hash, data []byte) ([]byte, error) {
	return ABI.Pack("setData", session, round, data)
}

func PackSignupSign(hash common.Hash) ([]byte, error) {
	return ABI.Pack("signupSign", hash)
}
