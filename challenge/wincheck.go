// Copyright (c) 2024-2026 The eccgame developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package challenge

import (
	"math/big"

	"github.com/Rizato/eccgame-sub003/address"
	"github.com/Rizato/eccgame-sub003/pointgraph"
)

// WinResult reports the two independent conditions of a win check.
type WinResult struct {
	// AddressMatch is whether the node's pay-to-pubkey-hash address
	// equals the target exactly.
	AddressMatch bool

	// Derived is whether the graph can produce the node's private key
	// from recorded operations.
	Derived bool

	// PrivateKey is the derived scalar when Derived is true.
	PrivateKey *big.Int

	// Win is true only when both conditions hold.
	Win bool
}

// CheckWin decides whether the point at nodeID beats targetAddr on net.
// Matching the address alone is not enough: the player must also be able to
// derive the private key, otherwise recreating a published key would count
// as solving it.
func CheckWin(g *pointgraph.Graph, nodeID pointgraph.NodeID, targetAddr string, net *address.Params) (*WinResult, error) {
	node, err := g.Node(nodeID)
	if err != nil {
		return nil, err
	}

	result := &WinResult{}

	// The point at infinity has no public key form and therefore no
	// address to match.
	if !node.Point.Infinity {
		compressed, err := g.Curve().SerializeCompressed(node.Point)
		if err != nil {
			return nil, err
		}
		addr, err := address.FromPublicKey(compressed, net)
		if err != nil {
			return nil, err
		}
		result.AddressMatch = addr.EncodeAddress() == targetAddr
	}

	scalar, err := g.DerivePrivateKey(nodeID)
	if err != nil {
		return nil, err
	}
	if scalar != nil {
		result.Derived = true
		result.PrivateKey = scalar
	}

	result.Win = result.AddressMatch && result.Derived
	return result, nil
}
