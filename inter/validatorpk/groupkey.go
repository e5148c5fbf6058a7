package validatorpk

import (
	"crypto/sha256"
	"math/big"

	"github.com/btcsuite/btcutil/bech32"
	"github.com/ethereum/go-ethereum/common/math"
	"golang.org/x/crypto/ripemd160"
)

// GroupKey is the bridge's MPC public key as published by the bridge
// contract (getX, getY). The zero value is the "no key yet" state.
type GroupKey struct {
	X *big.Int
	Y *big.Int
}

// Compressed returns the 33-byte SEC1 compressed point.
func (g GroupKey) Compressed() []byte {
	out := make([]byte, 33)
	out[0] = 0x02
	if g.Y != nil && g.Y.Bit(0) == 1 {
		out[0] = 0x03
	}
	x := g.X
	if x == nil {
		x = new(big.Int)
	}
	copy(out[1:], math.PaddedBigBytes(x, 32))
	return out
}

// ForeignAddress renders the bech32 account address controlled by the
// group key on the foreign ledger: hrp + hash160(compressed point).
func (g GroupKey) ForeignAddress(hrp string) (string, error) {
	sha := sha256.Sum256(g.Compressed())
	rip := ripemd160.New()
	rip.Write(sha[:])
	conv, err := bech32.ConvertBits(rip.Sum(nil), 8, 5, true)
	if err != nil {
		return "", err
	}
	return bech32.Encode(hrp, conv)
}

// XHex is the unpadded lowercase hex of X, the form the MPC peers use.
func (g GroupKey) XHex() string {
	return hexOf(g.X)
}

// YHex is the unpadded lowercase hex of Y.
func (g GroupKey) YHex() string {
	return hexOf(g.Y)
}

func hexOf(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.Text(16)
}
