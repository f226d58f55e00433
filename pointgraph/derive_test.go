// Copyright (c) 2024-2026 The eccgame developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package pointgraph

import (
	"math/big"
	"testing"

	"github.com/Rizato/eccgame-sub003/curve"
	"github.com/stretchr/testify/require"
)

// TestDeriveStoredScalar verifies nodes with stored scalars answer without
// traversal.
func TestDeriveStoredScalar(t *testing.T) {
	g := New(nil)

	derived, err := g.DerivePrivateKey(g.GeneratorID())
	require.NoError(t, err)
	require.NotNil(t, derived)
	require.Equal(t, int64(1), derived.Int64())

	_, err = g.DerivePrivateKey(NodeID(77))
	require.ErrorIs(t, err, ErrNodeNotFound)
}

// TestDeriveComposesPath verifies multiply-then-subtract composition across
// a path whose intermediate nodes hold no stored scalars: 3*G minus the
// generator derives to 2.
func TestDeriveComposesPath(t *testing.T) {
	g := New(nil)
	genID := g.GeneratorID()

	three, err := g.AddNode(testPoint(t, 3), NodeHints{})
	require.NoError(t, err)
	two, err := g.AddNode(testPoint(t, 2), NodeHints{})
	require.NoError(t, err)

	_, err = g.AddEdge(genID, three.ID, MultiplyOp(big.NewInt(3)))
	require.NoError(t, err)
	_, err = g.AddEdge(three.ID, two.ID,
		SubtractPointOp(curve.S256().Generator()))
	require.NoError(t, err)

	derived, err := g.DerivePrivateKey(two.ID)
	require.NoError(t, err)
	require.NotNil(t, derived)
	require.Equal(t, int64(2), derived.Int64())

	// Derivation reads the graph without assigning scalars along the way.
	node, err := g.Node(three.ID)
	require.NoError(t, err)
	require.Nil(t, node.PrivateKey)
	node, err = g.Node(two.ID)
	require.NoError(t, err)
	require.Nil(t, node.PrivateKey)
}

// TestDeriveChallengeByDivide verifies the canonical winning line: dividing
// a challenge of 5*G by 5 lands on the generator and leaves the challenge
// derivable as 5.
func TestDeriveChallengeByDivide(t *testing.T) {
	g := New(nil)

	challenge, err := g.SetChallenge(pointHex(t, testPoint(t, 5)))
	require.NoError(t, err)

	node, edge, err := g.ApplyOperation(challenge.ID, DivideOp(big.NewInt(5)))
	require.NoError(t, err)
	require.Equal(t, g.GeneratorID(), node.ID)
	require.Equal(t, challenge.ID, edge.From)
	require.Equal(t, node.ID, edge.To)

	// Propagation flowed backward across the divide edge.
	stored, err := g.Node(challenge.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.PrivateKey)
	require.Equal(t, int64(5), stored.PrivateKey.Int64())

	derived, err := g.DerivePrivateKey(challenge.ID)
	require.NoError(t, err)
	require.NotNil(t, derived)
	require.Equal(t, int64(5), derived.Int64())
}

// TestDeriveDivideForward verifies forward propagation across a divide edge
// assigns the modular inverse.
func TestDeriveDivideForward(t *testing.T) {
	g := New(nil)
	n := curve.S256().N

	node, _, err := g.ApplyOperation(g.GeneratorID(), DivideOp(big.NewInt(2)))
	require.NoError(t, err)

	wantScalar, err := curve.ModInverse(big.NewInt(2), n)
	require.NoError(t, err)
	require.NotNil(t, node.PrivateKey)
	require.Zero(t, node.PrivateKey.Cmp(wantScalar))

	// Doubling the half point returns to the generator.
	back, _, err := g.ApplyOperation(node.ID, MultiplyOp(big.NewInt(2)))
	require.NoError(t, err)
	require.Equal(t, g.GeneratorID(), back.ID)
}

// TestDeriveUnreachable verifies disconnected nodes report no scalar and no
// error.
func TestDeriveUnreachable(t *testing.T) {
	g := New(nil)

	island, err := g.AddNode(testPoint(t, 9), NodeHints{})
	require.NoError(t, err)

	derived, err := g.DerivePrivateKey(island.ID)
	require.NoError(t, err)
	require.Nil(t, derived)

	// A pasted challenge with no recorded operations behaves the same.
	challenge, err := g.SetChallenge(pointHex(t, testPoint(t, 13)))
	require.NoError(t, err)

	derived, err = g.DerivePrivateKey(challenge.ID)
	require.NoError(t, err)
	require.Nil(t, derived)
}

// TestDeriveOperandGate verifies add edges stay unusable until their operand
// point's scalar is known, and that learning it unlocks pending flow.
func TestDeriveOperandGate(t *testing.T) {
	g := New(nil)

	four, err := g.AddNode(testPoint(t, 4), NodeHints{})
	require.NoError(t, err)
	five, err := g.AddNode(testPoint(t, 5), NodeHints{})
	require.NoError(t, err)
	nine, err := g.AddNode(testPoint(t, 9), NodeHints{})
	require.NoError(t, err)

	_, err = g.AddEdge(four.ID, nine.ID, AddPointOp(testPoint(t, 5)))
	require.NoError(t, err)

	count, err := g.PropagateScalar(four.ID, big.NewInt(4))
	require.NoError(t, err)
	require.Equal(t, 1, count)

	// The operand's scalar is unknown, so the edge cannot carry the
	// known 4 across.
	derived, err := g.DerivePrivateKey(nine.ID)
	require.NoError(t, err)
	require.Nil(t, derived)

	// Learning the operand's scalar unlocks the edge and the pending
	// propagation flows through it.
	count, err = g.PropagateScalar(five.ID, big.NewInt(5))
	require.NoError(t, err)
	require.Equal(t, 2, count)

	node, err := g.Node(nine.ID)
	require.NoError(t, err)
	require.NotNil(t, node.PrivateKey)
	require.Equal(t, int64(9), node.PrivateKey.Int64())

	derived, err = g.DerivePrivateKey(nine.ID)
	require.NoError(t, err)
	require.NotNil(t, derived)
	require.Equal(t, int64(9), derived.Int64())
}

// TestDeriveBlockedInverse verifies a multiply-by-zero edge cannot be walked
// backward, since zero has no inverse in the scalar group.
func TestDeriveBlockedInverse(t *testing.T) {
	g := New(nil)

	inf, err := g.AddNode(curve.PointAtInfinity(), NodeHints{})
	require.NoError(t, err)

	three, err := g.AddNode(testPoint(t, 3), NodeHints{})
	require.NoError(t, err)
	_, err = g.AddEdge(three.ID, inf.ID, MultiplyOp(big.NewInt(0)))
	require.NoError(t, err)

	count, err := g.PropagateScalar(inf.ID, big.NewInt(0))
	require.NoError(t, err)
	require.Equal(t, 1, count)

	// The infinity node knows its scalar, but the only path to the
	// starting node runs backward across the uninvertible edge.
	derived, err := g.DerivePrivateKey(three.ID)
	require.NoError(t, err)
	require.Nil(t, derived)
}

// TestPropagateWorklist verifies assignments ripple across multiple edges in
// one pass and agree with values already stored.
func TestPropagateWorklist(t *testing.T) {
	g := New(nil)
	genID := g.GeneratorID()

	two, err := g.AddNode(testPoint(t, 2), NodeHints{})
	require.NoError(t, err)
	six, err := g.AddNode(testPoint(t, 6), NodeHints{})
	require.NoError(t, err)

	_, err = g.AddEdge(genID, two.ID, MultiplyOp(big.NewInt(2)))
	require.NoError(t, err)
	_, err = g.AddEdge(two.ID, six.ID, MultiplyOp(big.NewInt(3)))
	require.NoError(t, err)

	// Propagating from the far end assigns the intermediate node and
	// confirms consistency against the generator's stored 1.
	count, err := g.PropagateScalar(six.ID, big.NewInt(6))
	require.NoError(t, err)
	require.Equal(t, 2, count)

	node, err := g.Node(two.ID)
	require.NoError(t, err)
	require.NotNil(t, node.PrivateKey)
	require.Equal(t, int64(2), node.PrivateKey.Int64())

	metrics := g.GetMetrics()
	require.Equal(t, 2, metrics.ScalarsPropagated)
	require.Zero(t, metrics.Contradictions)
}

// TestPropagateReducesScalar verifies propagated values are reduced into the
// scalar group before storage and comparison.
func TestPropagateReducesScalar(t *testing.T) {
	g := New(nil)
	n := curve.S256().N

	two, err := g.AddNode(testPoint(t, 2), NodeHints{})
	require.NoError(t, err)
	_, err = g.AddEdge(g.GeneratorID(), two.ID, MultiplyOp(big.NewInt(2)))
	require.NoError(t, err)

	count, err := g.PropagateScalar(two.ID,
		new(big.Int).Add(n, big.NewInt(2)))
	require.NoError(t, err)
	require.Equal(t, 1, count)

	node, err := g.Node(two.ID)
	require.NoError(t, err)
	require.Equal(t, int64(2), node.PrivateKey.Int64())
}

// TestPropagateContradiction verifies disagreeing scalars are reported and
// never overwrite stored values.
func TestPropagateContradiction(t *testing.T) {
	g := New(nil)
	genID := g.GeneratorID()

	two, err := g.AddNode(testPoint(t, 2), NodeHints{})
	require.NoError(t, err)
	_, err = g.AddEdge(genID, two.ID, MultiplyOp(big.NewInt(2)))
	require.NoError(t, err)

	// A wrong claim for 2*G is assigned at the origin but collides with
	// the generator's stored 1 when pushed backward.
	count, err := g.PropagateScalar(two.ID, big.NewInt(5))
	require.ErrorIs(t, err, ErrScalarContradiction)
	require.Equal(t, 1, count)

	// Assignments made before the contradiction are kept, and the stored
	// generator scalar is untouched.
	node, err := g.Node(two.ID)
	require.NoError(t, err)
	require.Equal(t, int64(5), node.PrivateKey.Int64())
	gen, err := g.Node(genID)
	require.NoError(t, err)
	require.Equal(t, int64(1), gen.PrivateKey.Int64())

	// Direct disagreement with a stored scalar reports immediately.
	count, err = g.PropagateScalar(genID, big.NewInt(7))
	require.ErrorIs(t, err, ErrScalarContradiction)
	require.Zero(t, count)

	// Even a consistent origin value rediscovers the poisoned node.
	_, err = g.PropagateScalar(genID, big.NewInt(1))
	require.ErrorIs(t, err, ErrScalarContradiction)

	require.Equal(t, 3, g.GetMetrics().Contradictions)
}

// TestPropagateScalarErrors verifies argument validation.
func TestPropagateScalarErrors(t *testing.T) {
	g := New(nil)

	_, err := g.PropagateScalar(NodeID(400), big.NewInt(1))
	require.ErrorIs(t, err, ErrNodeNotFound)

	_, err = g.PropagateScalar(g.GeneratorID(), nil)
	require.True(t, curve.IsErrorCode(err, curve.ErrInvalidOperand))
}

// TestDeriveAfterRemoval verifies cascade removal cuts derivation paths.
func TestDeriveAfterRemoval(t *testing.T) {
	g := New(nil)

	three, err := g.AddNode(testPoint(t, 3), NodeHints{})
	require.NoError(t, err)
	six, err := g.AddNode(testPoint(t, 6), NodeHints{})
	require.NoError(t, err)

	_, err = g.AddEdge(g.GeneratorID(), three.ID, MultiplyOp(big.NewInt(3)))
	require.NoError(t, err)
	_, err = g.AddEdge(three.ID, six.ID, MultiplyOp(big.NewInt(2)))
	require.NoError(t, err)

	derived, err := g.DerivePrivateKey(six.ID)
	require.NoError(t, err)
	require.Equal(t, int64(6), derived.Int64())

	require.NoError(t, g.RemoveNode(three.ID))

	derived, err = g.DerivePrivateKey(six.ID)
	require.NoError(t, err)
	require.Nil(t, derived)
}

// TestDeriveConvergentRoutes verifies a node reachable both through a long
// doubling chain and a direct multiply edge derives the same scalar, with
// derivation stopping at the nearest stored scalar.
func TestDeriveConvergentRoutes(t *testing.T) {
	g := New(nil)
	genID := g.GeneratorID()

	// Build 8*G two ways without propagating: a doubling chain through
	// 2*G and 4*G, and one direct multiply edge.
	var ids []NodeID
	prev := genID
	for _, k := range []int64{2, 4, 8} {
		node, err := g.AddNode(testPoint(t, k), NodeHints{})
		require.NoError(t, err)
		_, err = g.AddEdge(prev, node.ID, MultiplyOp(big.NewInt(2)))
		require.NoError(t, err)
		ids = append(ids, node.ID)
		prev = node.ID
	}
	_, err := g.AddEdge(genID, ids[2], MultiplyOp(big.NewInt(8)))
	require.NoError(t, err)

	derived, err := g.DerivePrivateKey(ids[2])
	require.NoError(t, err)
	require.Equal(t, int64(8), derived.Int64())

	// The chain intermediates were only traversed, never assigned.
	for _, id := range ids {
		node, err := g.Node(id)
		require.NoError(t, err)
		require.Nil(t, node.PrivateKey)
	}
}
