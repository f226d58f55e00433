// Copyright (c) 2024-2026 The eccgame developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package challenge implements the daily challenge domain: published
// target keys, signed solution submissions, saved points and their
// persistence on a key/value engine.
package challenge

import (
	"encoding/hex"
	"math/big"
	"time"

	"github.com/Rizato/eccgame-sub003/address"
	"github.com/Rizato/eccgame-sub003/curve"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/satori/go.uuid"
)

const (
	// explorerURLPrefix is where a challenge address links when no
	// explorer link is supplied at creation.
	explorerURLPrefix = "https://blockchair.com/bitcoin/address/"

	// dateLayout is the wire form of ActiveDate.
	dateLayout = "2006-01-02"
)

// Challenge is one published target: a secp256k1 public key whose private
// key players attempt to derive.  Winning comparisons happen on the exact
// pay-to-pubkey-hash string, so the address is derived once at creation and
// stored with the record.
type Challenge struct {
	UUID         string    `json:"uuid"`
	PublicKey    string    `json:"public_key"`
	P2PKHAddress string    `json:"p2pkh_address"`
	ExplorerLink string    `json:"explorer_link"`
	Metadata     []string  `json:"metadata,omitempty"`
	Active       bool      `json:"active"`
	ActiveDate   string    `json:"active_date,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// New builds a challenge around an externally supplied public key.  The key
// is parsed and re-serialized so the stored form is always the canonical
// compressed encoding, and the paying address is derived for net.
func New(pubKeyHex, explorerLink string, metadata []string, net *address.Params) (*Challenge, error) {
	c := curve.S256()
	point, err := c.ParsePointHex(pubKeyHex)
	if err != nil {
		return nil, err
	}
	return fromPoint(c, point, explorerLink, metadata, net)
}

// Generate builds a challenge from a fresh random private key.  The key is
// discarded before returning, so no record of the solution exists anywhere.
func Generate(explorerLink string, metadata []string, net *address.Params) (*Challenge, error) {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, err
	}
	c := curve.S256()
	point, err := c.ParsePoint(priv.PubKey().SerializeCompressed())
	if err != nil {
		return nil, err
	}
	return fromPoint(c, point, explorerLink, metadata, net)
}

// GenerateFromScalar builds a practice challenge whose private key is the
// given scalar.  The caller keeps the scalar; the challenge record never
// contains it.
func GenerateFromScalar(k *big.Int, explorerLink string, metadata []string, net *address.Params) (*Challenge, error) {
	c := curve.S256()
	point, err := c.Multiply(k, c.Generator())
	if err != nil {
		return nil, err
	}
	return fromPoint(c, point, explorerLink, metadata, net)
}

func fromPoint(c *curve.Params, point *curve.Point, explorerLink string, metadata []string, net *address.Params) (*Challenge, error) {
	compressed, err := c.SerializeCompressed(point)
	if err != nil {
		return nil, err
	}
	addr, err := address.FromPublicKey(compressed, net)
	if err != nil {
		return nil, err
	}
	encoded := addr.EncodeAddress()
	if explorerLink == "" {
		explorerLink = explorerURLPrefix + encoded
	}
	return &Challenge{
		UUID:         uuid.NewV4().String(),
		PublicKey:    hex.EncodeToString(compressed),
		P2PKHAddress: encoded,
		ExplorerLink: explorerLink,
		Metadata:     metadata,
		CreatedAt:    time.Now().UTC(),
	}, nil
}
