package chaintest

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/rony4d/go-bridge-relay/contracts/bridge"
	"github.com/rony4d/go-bridge-relay/contracts/erc20"
	"github.com/rony4d/go-bridge-relay/contracts/shareddb"
)

// Call is an executed transaction as seen by a simulated contract.
type Call struct {
	From     common.Address
	Method   string
	Args     []interface{}
	Reverted bool
}

func decode(parsed abi.ABI, data []byte) (*abi.Method, []interface{}, error) {
	if len(data) < 4 {
		return nil, nil, errors.New("short calldata")
	}
	method, err := parsed.MethodById(data[:4])
	if err != nil {
		return nil, nil, err
	}
	args, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, nil, err
	}
	return method, args, nil
}

// Bridge simulates the home Bridge contract.
type Bridge struct {
	Validators     []common.Address
	NextValidators []common.Address
	Epoch          *big.Int
	NextEpoch      *big.Int
	Threshold      *big.Int
	NextThreshold  *big.Int
	X, Y           *big.Int
	Status         uint8
	Votes          map[common.Hash]*big.Int

	// Reverts maps a method name to the reason its transactions revert with.
	Reverts map[string]string
	// Execs lists executed transactions, reverted ones included.
	Execs []Call
}

func NewBridge() *Bridge {
	return &Bridge{
		Epoch:         big.NewInt(0),
		NextEpoch:     big.NewInt(0),
		Threshold:     big.NewInt(0),
		NextThreshold: big.NewInt(0),
		X:             big.NewInt(0),
		Y:             big.NewInt(0),
		Votes:         make(map[common.Hash]*big.Int),
		Reverts:       make(map[string]string),
	}
}

func (b *Bridge) Call(from common.Address, data []byte) ([]byte, error) {
	method, args, err := decode(bridge.ABI, data)
	if err != nil {
		return nil, err
	}
	var out interface{}
	switch method.Name {
	case "getValidators":
		out = b.Validators
	case "getNextValidators":
		out = b.NextValidators
	case "epoch":
		out = b.Epoch
	case "nextEpoch":
		out = b.NextEpoch
	case "getThreshold":
		out = b.Threshold
	case "getNextThreshold":
		out = b.NextThreshold
	case "getX":
		out = b.X
	case "getY":
		out = b.Y
	case "status":
		out = b.Status
	case "getNextPartyId":
		id := int64(0)
		for i, v := range b.NextValidators {
			if v == args[0].(common.Address) {
				id = int64(i + 1)
				break
			}
		}
		out = big.NewInt(id)
	case "votesCount":
		n, ok := b.Votes[common.Hash(args[0].([32]byte))]
		if !ok {
			n = big.NewInt(0)
		}
		out = n
	default:
		return nil, fmt.Errorf("%s is not a view", method.Name)
	}
	return method.Outputs.Pack(out)
}

func (b *Bridge) Exec(from common.Address, data []byte) error {
	method, args, err := decode(bridge.ABI, data)
	if err != nil {
		return err
	}
	reason, revert := b.Reverts[method.Name]
	b.Execs = append(b.Execs, Call{From: from, Method: method.Name, Args: args, Reverted: revert})
	if revert {
		return errors.New(reason)
	}
	return nil
}

// Executed returns the successful transactions calling method.
func (b *Bridge) Executed(method string) []Call {
	var res []Call
	for _, c := range b.Execs {
		if c.Method == method && !c.Reverted {
			res = append(res, c)
		}
	}
	return res
}

type slot struct {
	from    common.Address
	session common.Hash
	round   common.Hash
}

// SharedDB simulates the side SharedDB contract.
type SharedDB struct {
	data    map[slot][]byte
	signups map[common.Hash][]common.Address
}

func NewSharedDB() *SharedDB {
	return &SharedDB{
		data:    make(map[slot][]byte),
		signups: make(map[common.Hash][]common.Address),
	}
}

// Put stores data as if `from` had called setData.
func (s *SharedDB) Put(from common.Address, session, round common.Hash, data []byte) {
	s.data[slot{from, session, round}] = common.CopyBytes(data)
}

// Stored returns what `from` stored in a slot.
func (s *SharedDB) Stored(from common.Address, session, round common.Hash) ([]byte, bool) {
	d, ok := s.data[slot{from, session, round}]
	return d, ok
}

// Signup registers `from` for a signing session as signupSign would.
func (s *SharedDB) Signup(from common.Address, hash common.Hash) error {
	for _, a := range s.signups[hash] {
		if a == from {
			return errors.New("Already signed up")
		}
	}
	s.signups[hash] = append(s.signups[hash], from)
	return nil
}

func (s *SharedDB) Call(from common.Address, data []byte) ([]byte, error) {
	method, args, err := decode(shareddb.ABI, data)
	if err != nil {
		return nil, err
	}
	switch method.Name {
	case "getData":
		d := s.data[slot{args[0].(common.Address), common.Hash(args[1].([32]byte)), common.Hash(args[2].([32]byte))}]
		if d == nil {
			d = []byte{}
		}
		return method.Outputs.Pack(d)
	case "getSignupNumber":
		hash := common.Hash(args[0].([32]byte))
		validators := args[1].([]common.Address)
		who := args[2].(common.Address)
		n := int64(0)
		if contains(validators, who) {
			for i, a := range s.signups[hash] {
				if a == who {
					n = int64(i + 1)
				}
			}
		}
		return method.Outputs.Pack(big.NewInt(n))
	case "getSignupAddress":
		hash := common.Hash(args[0].([32]byte))
		validators := args[1].([]common.Address)
		n := args[2].(*big.Int)
		var who common.Address
		list := s.signups[hash]
		if n.Sign() > 0 && n.IsInt64() && n.Int64() <= int64(len(list)) && contains(validators, list[n.Int64()-1]) {
			who = list[n.Int64()-1]
		}
		return method.Outputs.Pack(who)
	}
	return nil, fmt.Errorf("%s is not a view", method.Name)
}

func (s *SharedDB) Exec(from common.Address, data []byte) error {
	method, args, err := decode(shareddb.ABI, data)
	if err != nil {
		return err
	}
	switch method.Name {
	case "setData":
		s.Put(from, common.Hash(args[0].([32]byte)), common.Hash(args[1].([32]byte)), args[2].([]byte))
		return nil
	case "signupSign":
		return s.Signup(from, common.Hash(args[0].([32]byte)))
	}
	return fmt.Errorf("%s is not a transaction", method.Name)
}

func contains(list []common.Address, a common.Address) bool {
	for _, v := range list {
		if v == a {
			return true
		}
	}
	return false
}

// Token simulates an ERC20 balance table.
type Token struct {
	Balances map[common.Address]*big.Int
}

func NewToken() *Token {
	return &Token{Balances: make(map[common.Address]*big.Int)}
}

func (t *Token) Call(from common.Address, data []byte) ([]byte, error) {
	method, args, err := decode(erc20.ABI, data)
	if err != nil {
		return nil, err
	}
	bal, ok := t.Balances[args[0].(common.Address)]
	if !ok {
		bal = big.NewInt(0)
	}
	return method.Outputs.Pack(bal)
}

func (t *Token) Exec(from common.Address, data []byte) error {
	return errors.New("read-only token")
}
