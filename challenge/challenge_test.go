// Copyright (c) 2024-2026 The eccgame developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package challenge

import (
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/Rizato/eccgame-sub003/address"
	"github.com/Rizato/eccgame-sub003/curve"
	"github.com/satori/go.uuid"
	"github.com/stretchr/testify/require"
)

const (
	compressedGHex   = "0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798"
	uncompressedGHex = "0479be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798" +
		"483ada7726a3c4655da4fbfc0e1108a8fd17b448a68554199c47d08ffb10d4b8"
	addressForG = "1BgGZ9tcN4rm9KBzDn7KprQz87SZ26SAMH"
)

// pubKeyHex returns the canonical compressed encoding of k*G.
func pubKeyHex(t *testing.T, k int64) string {
	t.Helper()

	c := curve.S256()
	point, err := c.Multiply(big.NewInt(k), c.Generator())
	require.NoError(t, err)
	compressed, err := c.SerializeCompressed(point)
	require.NoError(t, err)
	return hex.EncodeToString(compressed)
}

func TestNewCanonicalizesKey(t *testing.T) {
	// Both serializations of the generator produce the same challenge
	// record with the compressed form and its address.
	for _, pubKey := range []string{compressedGHex, uncompressedGHex} {
		ch, err := New(pubKey, "", nil, &address.MainNetParams)
		require.NoErrorf(t, err, "key %q", pubKey)

		require.Equal(t, compressedGHex, ch.PublicKey)
		require.Equal(t, addressForG, ch.P2PKHAddress)
		require.Equal(t, explorerURLPrefix+addressForG, ch.ExplorerLink)
		require.False(t, ch.Active)
		require.Empty(t, ch.ActiveDate)
		require.False(t, ch.CreatedAt.IsZero())

		_, err = uuid.FromString(ch.UUID)
		require.NoError(t, err, "challenge uuid must be well formed")
	}
}

func TestNewKeepsLinkAndMetadata(t *testing.T) {
	ch, err := New(pubKeyHex(t, 3), "https://example.com/target",
		[]string{"practice", "easy"}, &address.MainNetParams)
	require.NoError(t, err)

	require.Equal(t, "https://example.com/target", ch.ExplorerLink)
	require.Equal(t, []string{"practice", "easy"}, ch.Metadata)
}

func TestNewRejectsBadKeys(t *testing.T) {
	for _, pubKey := range []string{
		"",
		"zz",
		"12345",
		"gg0000000000000000000000000000000000000000000000000000000000000000",
	} {
		_, err := New(pubKey, "", nil, &address.MainNetParams)
		require.Errorf(t, err, "key %q", pubKey)
		require.Truef(t, curve.IsErrorCode(err, curve.ErrInvalidPoint),
			"key %q: unexpected error %v", pubKey, err)
	}
}

func TestGenerateFromScalar(t *testing.T) {
	ch, err := GenerateFromScalar(big.NewInt(1), "", nil, &address.MainNetParams)
	require.NoError(t, err)
	require.Equal(t, compressedGHex, ch.PublicKey)
	require.Equal(t, addressForG, ch.P2PKHAddress)

	// The scalar is reduced modulo the group order, so n+1 is key 1 again.
	n := curve.S256().N
	wrapped, err := GenerateFromScalar(new(big.Int).Add(n, big.NewInt(1)), "",
		nil, &address.MainNetParams)
	require.NoError(t, err)
	require.Equal(t, ch.PublicKey, wrapped.PublicKey)
}

func TestGenerateFromScalarZero(t *testing.T) {
	// Zero maps to the point at infinity, which has no public key form.
	_, err := GenerateFromScalar(big.NewInt(0), "", nil, &address.MainNetParams)
	require.Error(t, err)
	require.True(t, curve.IsErrorCode(err, curve.ErrInvalidPoint))
}

func TestGenerateRandom(t *testing.T) {
	first, err := Generate("", nil, &address.MainNetParams)
	require.NoError(t, err)
	second, err := Generate("", nil, &address.MainNetParams)
	require.NoError(t, err)

	require.NotEqual(t, first.UUID, second.UUID)
	require.NotEqual(t, first.PublicKey, second.PublicKey)

	_, err = curve.S256().ParsePointHex(first.PublicKey)
	require.NoError(t, err)

	decoded, err := address.DecodeAddress(first.P2PKHAddress, &address.MainNetParams)
	require.NoError(t, err)
	require.True(t, decoded.IsForNet(&address.MainNetParams))
}

func TestGenerateTestnet(t *testing.T) {
	ch, err := GenerateFromScalar(big.NewInt(9), "", nil, &address.TestNet3Params)
	require.NoError(t, err)
	require.Truef(t, ch.P2PKHAddress[0] == 'm' || ch.P2PKHAddress[0] == 'n',
		"testnet address %q", ch.P2PKHAddress)
}
