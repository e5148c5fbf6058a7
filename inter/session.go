package inter

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// SessionKind discriminates the two MPC ceremonies a relay takes part in.
type SessionKind uint8

const (
	// KeygenKind sessions generate the key of the next epoch.
	KeygenKind SessionKind = iota + 1
	// SigningKind sessions sign one message with the current key.
	SigningKind
)

const keygenWirePrefix = "k"

// ErrBadSessionID is returned by ParseSessionID for identifiers that are
// neither a keygen epoch nor a 32-byte signing hash.
var ErrBadSessionID = errors.New("bad session id")

// SessionID identifies one MPC ceremony. It is a tagged union: a keygen
// session is keyed by the epoch it produces a key for, a signing session
// by the hash of the signing input. The kind is carried explicitly and is
// never recovered from the textual form outside ParseSessionID.
type SessionID struct {
	kind  SessionKind
	epoch idx.Epoch
	hash  common.Hash
}

// KeygenSession returns the session generating the key for epoch.
func KeygenSession(epoch idx.Epoch) SessionID {
	return SessionID{kind: KeygenKind, epoch: epoch}
}

// SigningSession returns the session signing the input hashed to h.
func SigningSession(h common.Hash) SessionID {
	return SessionID{kind: SigningKind, hash: h}
}

func (s SessionID) Kind() SessionKind { return s.kind }

func (s SessionID) IsKeygen() bool { return s.kind == KeygenKind }

// IsZero reports whether s is the zero value.
func (s SessionID) IsZero() bool { return s.kind == 0 }

// Epoch returns the keygen epoch; ok is false for signing sessions.
func (s SessionID) Epoch() (epoch idx.Epoch, ok bool) {
	return s.epoch, s.kind == KeygenKind
}

// SigningHash returns the signing input hash; ok is false for keygen sessions.
func (s SessionID) SigningHash() (h common.Hash, ok bool) {
	return s.hash, s.kind == SigningKind
}

// String returns the wire form used by MPC peers: "k<epoch>" or "0x<hash>".
func (s SessionID) String() string {
	switch s.kind {
	case KeygenKind:
		return keygenWirePrefix + strconv.FormatUint(uint64(s.epoch), 10)
	case SigningKind:
		return s.hash.Hex()
	default:
		return ""
	}
}

// Hash is the SharedDB key of the session. The keygen form hashes the
// textual id, the signing form hashes the raw 32 bytes, which is what
// web3's sha3 does with each wire form.
func (s SessionID) Hash() common.Hash {
	switch s.kind {
	case KeygenKind:
		return crypto.Keccak256Hash([]byte(s.String()))
	case SigningKind:
		return crypto.Keccak256Hash(s.hash.Bytes())
	default:
		return common.Hash{}
	}
}

// ParseSessionID decodes the wire form produced by String.
func ParseSessionID(raw string) (SessionID, error) {
	if strings.HasPrefix(raw, keygenWirePrefix) {
		digits := raw[len(keygenWirePrefix):]
		epoch, err := strconv.ParseUint(digits, 10, 32)
		// leading zeros would not survive String()
		if err != nil || (len(digits) > 1 && digits[0] == '0') {
			return SessionID{}, fmt.Errorf("%w: %q", ErrBadSessionID, raw)
		}
		return KeygenSession(idx.Epoch(epoch)), nil
	}
	b, err := hexutil.Decode(raw)
	if err != nil || len(b) != common.HashLength {
		return SessionID{}, fmt.Errorf("%w: %q", ErrBadSessionID, raw)
	}
	return SigningSession(common.BytesToHash(b)), nil
}

func (s SessionID) MarshalText() ([]byte, error) {
	if s.IsZero() {
		return nil, ErrBadSessionID
	}
	return []byte(s.String()), nil
}

func (s *SessionID) UnmarshalText(input []byte) error {
	res, err := ParseSessionID(string(input))
	if err != nil {
		return err
	}
	*s = res
	return nil
}
