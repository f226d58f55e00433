// Copyright (c) 2024-2026 The eccgame developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package pointgraph implements an in-memory graph of secp256k1 points linked
by the group operations that produced them.

# Overview

Every node in the graph is a curve point (or the point at infinity) and every
edge records a single operation application: multiplying a point by a scalar,
dividing by a scalar (multiplication by its modular inverse), adding or
subtracting a second point, or negating.  The graph always contains one
generator node holding the base point with private key 1, seeded when the
graph is created and again after every reset.  A challenge node carrying the
target public key may be added alongside it.

# Canonical Point Identity

Nodes are deduplicated by the canonical identity of their point: the 33-byte
compressed encoding, with an all-zero key reserved for the point at infinity.
Inserting a point whose canonical key is already present returns the existing
node, so paths that arrive at the same point from different directions
converge on a single node.  The mapping is total for valid points, so two
points compare equal exactly when their keys do.

# Operations and Edges

Edges are directed from operand to result but are traversed in both
directions, since every recorded operation is invertible in the scalar
group.  Repeated applications of an identical operation between the same
pair of nodes collapse into one edge with a bundle count rather than
parallel edges.  Every edge insertion re-evaluates the operation against the
from node's point and rejects edges whose recorded result does not match the
to node, so the graph never holds an edge that disagrees with the curve
arithmetic.

# Scalar Derivation

Each node optionally stores the scalar (private key) that produces its point
from the generator.  DerivePrivateKey walks the graph breadth-first from a
node to the nearest node with a stored scalar and composes the per-edge
scalar transformations back along the discovered path.  PropagateScalar
pushes a known scalar outward across every usable edge, comparing before
overwriting so that a value disagreeing with an already-stored scalar is
reported as a contradiction instead of silently replaced.

All exported methods are safe for concurrent access.
*/
package pointgraph
