// Copyright (c) 2024-2026 The eccgame developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package address derives and encodes the pay-to-pubkey-hash form of a
// serialized public key.  Challenge targets are published as P2PKH strings,
// so winning comparisons happen on the exact base58check encoding rather
// than on raw points.
package address

import (
	"crypto/sha256"
	"errors"
	"hash"

	"github.com/btcsuite/btcd/btcutil/base58"
	"golang.org/x/crypto/ripemd160"
)

var (
	// ErrInvalidHashLength describes an error where a pubkey hash is not
	// the ripemd160 digest size.
	ErrInvalidHashLength = errors.New("pubkey hash must be 20 bytes")

	// ErrMismatchedNet describes an error where an address version byte
	// belongs to a different network than requested.
	ErrMismatchedNet = errors.New("address is for a different network")
)

// Params identifies the version byte space of a network's addresses.
type Params struct {
	// Name is the human-readable network name.
	Name string

	// PubKeyHashAddrID is the version byte prepended to a pubkey hash
	// before base58check encoding.
	PubKeyHashAddrID byte
}

var (
	// MainNetParams encodes addresses with version 0x00, so they start
	// with 1.
	MainNetParams = Params{Name: "mainnet", PubKeyHashAddrID: 0x00}

	// TestNet3Params encodes addresses with version 0x6f, so they start
	// with m or n.
	TestNet3Params = Params{Name: "testnet3", PubKeyHashAddrID: 0x6f}
)

// Calculate the hash of hasher over buf.
func calcHash(buf []byte, hasher hash.Hash) []byte {
	hasher.Write(buf)
	return hasher.Sum(nil)
}

// Hash160 calculates the hash ripemd160(sha256(b)).
func Hash160(buf []byte) []byte {
	return calcHash(calcHash(buf, sha256.New()), ripemd160.New())
}

// PubKeyHash is a pay-to-pubkey-hash destination on a particular network.
type PubKeyHash struct {
	hash  [ripemd160.Size]byte
	netID byte
}

// NewPubKeyHash returns the address for an already-computed pubkey hash.
func NewPubKeyHash(pkHash []byte, net *Params) (*PubKeyHash, error) {
	if len(pkHash) != ripemd160.Size {
		return nil, ErrInvalidHashLength
	}

	addr := &PubKeyHash{netID: net.PubKeyHashAddrID}
	copy(addr.hash[:], pkHash)
	return addr, nil
}

// FromPublicKey hashes a serialized public key and returns its address.
// Compressed and uncompressed serializations of the same point hash to
// different addresses, so the serialization passed in decides which one.
func FromPublicKey(serialized []byte, net *Params) (*PubKeyHash, error) {
	return NewPubKeyHash(Hash160(serialized), net)
}

// DecodeAddress parses a base58check address and verifies it carries the
// given network's version byte.
func DecodeAddress(addr string, net *Params) (*PubKeyHash, error) {
	decoded, netID, err := base58.CheckDecode(addr)
	if err != nil {
		return nil, err
	}
	if netID != net.PubKeyHashAddrID {
		return nil, ErrMismatchedNet
	}
	return NewPubKeyHash(decoded, net)
}

// EncodeAddress returns the base58check string form of the address.
func (a *PubKeyHash) EncodeAddress() string {
	return base58.CheckEncode(a.hash[:], a.netID)
}

// String returns the same value as EncodeAddress.
func (a *PubKeyHash) String() string {
	return a.EncodeAddress()
}

// Hash160 returns the underlying pubkey hash.
func (a *PubKeyHash) Hash160() *[ripemd160.Size]byte {
	return &a.hash
}

// IsForNet reports whether the address carries the given network's version
// byte.
func (a *PubKeyHash) IsForNet(net *Params) bool {
	return a.netID == net.PubKeyHashAddrID
}
