// Package erc20 binds the read side of the home token.
package erc20

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/rony4d/go-bridge-relay/chain"
)

const ContractABI = `[
{"constant":true,"inputs":[{"name":"account","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"}
]`

var ABI abi.ABI

func init() {
	ABI = chain.MustParseABI(ContractABI)
}

type Token struct {
	*chain.Contract
}

func New(address common.Address, reader chain.Reader) *Token {
	return &Token{chain.NewContract(address, ABI, reader)}
}

func (t *Token) BalanceOf(ctx context.Context, account common.Address) (*big.Int, error) {
	var out *big.Int
	if err := t.CallOne(ctx, &out, "balanceOf", account); err != nil {
		return nil, err
	}
	return out, nil
}
