// Package validatorpk handles the two keys a relay deals with: the
// validator's own secp256k1 account key, which signs transactions on the
// home and side chains, and the bridge's group public key produced by MPC
// keygen, which controls the bridge account on the foreign ledger.
package validatorpk

import (
	"crypto/ecdsa"
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// ErrEmptyKey is returned when no private key material was configured.
var ErrEmptyKey = errors.New("empty validator key")

// Key is a validator identity. The same account submits on both chains.
type Key struct {
	priv    *ecdsa.PrivateKey
	address common.Address
}

// FromHex parses a hex private key, with or without the 0x prefix.
func FromHex(str string) (*Key, error) {
	str = strings.TrimPrefix(strings.TrimSpace(str), "0x")
	if str == "" {
		return nil, ErrEmptyKey
	}
	priv, err := crypto.HexToECDSA(str)
	if err != nil {
		return nil, err
	}
	return FromECDSA(priv), nil
}

// FromECDSA wraps an already loaded private key.
func FromECDSA(priv *ecdsa.PrivateKey) *Key {
	return &Key{
		priv:    priv,
		address: crypto.PubkeyToAddress(priv.PublicKey),
	}
}

// Address is the account the key signs for.
func (k *Key) Address() common.Address {
	return k.address
}

// PrivateKey exposes the signing key to the chain client.
func (k *Key) PrivateKey() *ecdsa.PrivateKey {
	return k.priv
}

// String never prints key material.
func (k *Key) String() string {
	return k.address.Hex()
}
