package validatorpk

import (
	"math/big"
	"strings"
	"testing"

	"github.com/btcsuite/btcutil/bech32"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

const testKeyHex = "b71c71a67e1177ad4e901695e1b4b9ee17ae16c6668d313eac2f96dbcda3f291"

// TestFromHex verifies both accepted spellings and the derived address.
func TestFromHex(t *testing.T) {
	require := require.New(t)

	priv, err := crypto.HexToECDSA(testKeyHex)
	require.NoError(err)
	want := crypto.PubkeyToAddress(priv.PublicKey)

	// Case 1: bare hex.
	k, err := FromHex(testKeyHex)
	require.NoError(err)
	require.Equal(want, k.Address())

	// Case 2: 0x prefix.
	k, err = FromHex("0x" + testKeyHex)
	require.NoError(err)
	require.Equal(want, k.Address())
	require.Equal(want.Hex(), k.String())

	// Case 3: empty.
	_, err = FromHex("")
	require.ErrorIs(err, ErrEmptyKey)

	// Case 4: garbage.
	_, err = FromHex("zz")
	require.Error(err)
}

func TestGroupKeyCompressed(t *testing.T) {
	require := require.New(t)

	g := GroupKey{X: big.NewInt(1), Y: big.NewInt(3)}
	c := g.Compressed()
	require.Len(c, 33)
	require.Equal(byte(0x03), c[0])
	require.Equal(common.LeftPadBytes([]byte{1}, 32), c[1:])

	g.Y = big.NewInt(4)
	require.Equal(byte(0x02), g.Compressed()[0])

	require.Len(GroupKey{}.Compressed(), 33)
}

func TestForeignAddress(t *testing.T) {
	require := require.New(t)

	priv, err := crypto.HexToECDSA(testKeyHex)
	require.NoError(err)
	g := GroupKey{X: priv.PublicKey.X, Y: priv.PublicKey.Y}
	require.Equal(crypto.CompressPubkey(&priv.PublicKey), g.Compressed())

	addr, err := g.ForeignAddress("tbnb")
	require.NoError(err)
	require.True(strings.HasPrefix(addr, "tbnb1"))

	hrp, data, err := bech32.Decode(addr)
	require.NoError(err)
	require.Equal("tbnb", hrp)
	raw, err := bech32.ConvertBits(data, 5, 8, false)
	require.NoError(err)
	require.Len(raw, 20)

	again, err := g.ForeignAddress("tbnb")
	require.NoError(err)
	require.Equal(addr, again)
}

func TestGroupKeyHex(t *testing.T) {
	require := require.New(t)

	g := GroupKey{X: big.NewInt(0xabc), Y: big.NewInt(0)}
	require.Equal("abc", g.XHex())
	require.Equal("0", g.YHex())
	require.Equal("0", GroupKey{}.XHex())
}
