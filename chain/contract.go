package chain

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// MustParseABI parses a JSON ABI definition and panics on error. It is
// meant for package-level ABI constants.
func MustParseABI(definition string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(definition))
	if err != nil {
		panic(err)
	}
	return parsed
}

// Contract binds an ABI to an address on one network.
type Contract struct {
	Address common.Address
	ABI     abi.ABI
	reader  Reader
}

func NewContract(address common.Address, parsed abi.ABI, reader Reader) *Contract {
	return &Contract{
		Address: address,
		ABI:     parsed,
		reader:  reader,
	}
}

// Pack encodes a call to method.
func (c *Contract) Pack(method string, args ...interface{}) ([]byte, error) {
	return c.ABI.Pack(method, args...)
}

// Call runs a read-only call and returns the unpacked outputs.
func (c *Contract) Call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	data, err := c.ABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	out, err := c.reader.CallContract(ctx, c.Address, data)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	res, err := c.ABI.Unpack(method, out)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	return res, nil
}

// CallOne runs a call with a single output and stores it in out, which
// must point to a variable of the output's Go type (e.g. **big.Int).
func (c *Contract) CallOne(ctx context.Context, out interface{}, method string, args ...interface{}) error {
	res, err := c.Call(ctx, method, args...)
	if err != nil {
		return err
	}
	if len(res) != 1 {
		return fmt.Errorf("call %s: %d outputs, want 1", method, len(res))
	}
	abi.ConvertType(res[0], out)
	return nil
}
