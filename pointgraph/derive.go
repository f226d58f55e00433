// Copyright (c) 2024-2026 The eccgame developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package pointgraph

import (
	"math/big"
	"sync/atomic"

	"github.com/Rizato/eccgame-sub003/curve"
)

// bfsStep records how a node was discovered: the edge crossed from its
// parent and whether composing back toward the start crosses that edge in
// its recorded direction.
type bfsStep struct {
	parent  NodeID
	edge    EdgeID
	forward bool
}

// DerivePrivateKey computes the scalar that produces a node's point from the
// generator, when the recorded operations determine one.  A node holding a
// stored scalar returns it directly.  Otherwise the graph is searched
// breadth-first, treating edges as bidirectional, for the nearest node with
// a stored scalar, and the per-edge scalar transformations are composed back
// along the discovered path.
//
// A nil scalar with a nil error means the node is not connected to any known
// scalar through usable edges.  That is a normal outcome for freshly pasted
// points, not a failure.
func (g *Graph) DerivePrivateKey(id NodeID) (*big.Int, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.derivePrivateKey(id)
}

// derivePrivateKey implements DerivePrivateKey.  It must be called with the
// lock held.
func (g *Graph) derivePrivateKey(start NodeID) (*big.Int, error) {
	startNode, ok := g.nodes[start]
	if !ok {
		return nil, ErrNodeNotFound
	}
	if startNode.PrivateKey != nil {
		atomic.AddInt32(&g.metrics.derivations, 1)
		return new(big.Int).Set(startNode.PrivateKey), nil
	}

	// Expanding edges in ascending id order makes ties between equally
	// distant known nodes resolve by operation insertion order, so
	// repeated derivations walk the same path.
	prev := make(map[NodeID]bfsStep)
	visited := map[NodeID]struct{}{start: {}}
	queue := []NodeID{start}
	var goal NodeID
	found := false

search:
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]

		for _, eid := range g.incidentEdges(u) {
			edge := g.edges[eid]

			// The walk back from the known node crosses each edge
			// opposite to the direction it is expanded here, so an
			// out edge of u is composed backward and an in edge
			// forward.
			var w NodeID
			var forward bool
			if edge.From == u {
				w, forward = edge.To, false
			} else {
				w, forward = edge.From, true
			}
			if w == u {
				continue
			}
			if _, ok := visited[w]; ok {
				continue
			}
			if !g.canTraverse(&edge.Operation, forward) {
				continue
			}

			visited[w] = struct{}{}
			prev[w] = bfsStep{parent: u, edge: eid, forward: forward}
			if g.nodes[w].PrivateKey != nil {
				goal = w
				found = true
				break search
			}
			queue = append(queue, w)
		}
	}
	if !found {
		return nil, nil
	}

	scalar := new(big.Int).Set(g.nodes[goal].PrivateKey)
	for cur := goal; cur != start; {
		step := prev[cur]
		edge := g.edges[step.edge]
		composed, err := g.composeAcross(&edge.Operation, scalar,
			step.forward)
		if err != nil {
			return nil, err
		}
		scalar = composed
		cur = step.parent
	}

	atomic.AddInt32(&g.metrics.derivations, 1)
	return scalar, nil
}

// PropagateScalar stores a scalar on a node and pushes composed values to
// every node reachable across usable edges.  Nodes that already hold a
// scalar are compared instead of overwritten, and a mismatch stops the walk
// with ErrScalarContradiction.  Assignments made before the contradiction
// was found are kept.
//
// The returned count is the number of nodes that gained a scalar, including
// the origin itself.
func (g *Graph) PropagateScalar(id NodeID, scalar *big.Int) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	node, ok := g.nodes[id]
	if !ok {
		return 0, ErrNodeNotFound
	}
	if scalar == nil {
		return 0, curve.Error{
			ErrorCode:   curve.ErrInvalidOperand,
			Description: "no scalar to propagate",
		}
	}

	reduced := new(big.Int).Mod(scalar, g.config.Curve.N)
	if node.PrivateKey != nil {
		if node.PrivateKey.Cmp(reduced) != 0 {
			atomic.AddInt32(&g.metrics.contradictions, 1)
			log.Warnf("Rejected contradictory scalar for node %d", id)
			return 0, ErrScalarContradiction
		}
		return g.flood(id)
	}

	node.PrivateKey = reduced
	atomic.AddInt32(&g.metrics.propagated, 1)
	count, err := g.flood(id)
	return count + 1, err
}

// flood pushes stored scalars outward from a node across every usable edge
// until no new assignment is possible.  Neighbors that already hold a scalar
// are checked for consistency rather than overwritten.  It must be called
// with the write lock held and the starting node must hold a scalar.
func (g *Graph) flood(start NodeID) (int, error) {
	// The starting node's scalar may have made add or subtract edges
	// using its point as their operand usable, so their known endpoints
	// are queued alongside it.
	queue := append([]NodeID{start}, g.operandHolders(g.nodes[start].Key)...)
	count := 0

	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		uNode := g.nodes[u]

		for _, eid := range g.incidentEdges(u) {
			edge := g.edges[eid]

			// Pushing from the known side means an out edge of u is
			// composed forward and an in edge backward, the mirror
			// image of the derivation walk.
			var w NodeID
			var forward bool
			if edge.From == u {
				w, forward = edge.To, true
			} else {
				w, forward = edge.From, false
			}
			if w == u {
				continue
			}
			if !g.canTraverse(&edge.Operation, forward) {
				continue
			}

			composed, err := g.composeAcross(&edge.Operation,
				uNode.PrivateKey, forward)
			if err != nil {
				return count, err
			}

			wNode := g.nodes[w]
			if wNode.PrivateKey != nil {
				if wNode.PrivateKey.Cmp(composed) != 0 {
					atomic.AddInt32(&g.metrics.contradictions, 1)
					log.Warnf("Scalar contradiction at node "+
						"%d via edge %d", w, eid)
					return count, ErrScalarContradiction
				}
				continue
			}

			wNode.PrivateKey = composed
			count++
			atomic.AddInt32(&g.metrics.propagated, 1)
			queue = append(queue, w)

			// Add and subtract edges using this node's point as
			// their operand may have become usable, so their known
			// endpoints get another pass.
			queue = append(queue, g.operandHolders(wNode.Key)...)
		}
	}

	return count, nil
}

// operandHolders returns the known-scalar endpoints of edges whose point
// operand has the given canonical key.  Once the operand's scalar is known,
// those endpoints can push their scalars across the edge.  It must be called
// with the lock held.
func (g *Graph) operandHolders(key PointKey) []NodeID {
	var holders []NodeID
	for eid := range g.indexes.operandEdges[key] {
		edge := g.edges[eid]
		if n := g.nodes[edge.From]; n != nil && n.PrivateKey != nil {
			holders = append(holders, edge.From)
		}
		if n := g.nodes[edge.To]; n != nil && n.PrivateKey != nil {
			holders = append(holders, edge.To)
		}
	}
	return holders
}

// canTraverse reports whether scalar composition can cross an edge in the
// given direction.  Multiply edges with operand 0 map every scalar to 0 and
// cannot be walked backward, and add or subtract edges require a known
// scalar for their operand point.
func (g *Graph) canTraverse(op *Operation, forward bool) bool {
	switch op.Kind {
	case OpMultiply:
		return forward || op.Scalar.Sign() != 0
	case OpDivide:
		return true
	case OpAdd, OpSubtract:
		_, ok := g.operandScalar(op)
		return ok
	case OpNegate:
		return true
	default:
		return false
	}
}

// composeAcross transforms a known scalar across one edge.  With forward set
// the given scalar belongs to the edge's from node and the result is the to
// node's scalar; otherwise the roles are reversed.
func (g *Graph) composeAcross(op *Operation, scalar *big.Int, forward bool) (*big.Int, error) {
	n := g.config.Curve.N

	switch op.Kind {
	case OpMultiply, OpDivide:
		// Multiplying forward and dividing backward scale by the
		// operand; the opposite directions scale by its inverse.
		v := op.Scalar
		if (op.Kind == OpMultiply) != forward {
			inv, err := curve.ModInverse(v, n)
			if err != nil {
				return nil, err
			}
			v = inv
		}
		return new(big.Int).Mod(new(big.Int).Mul(scalar, v), n), nil

	case OpAdd, OpSubtract:
		t, ok := g.operandScalar(op)
		if !ok {
			return nil, ErrUnknownOperandScalar
		}
		// Adding forward and subtracting backward shift the scalar up
		// by the operand; the opposite directions shift it down.
		if (op.Kind == OpAdd) != forward {
			t = new(big.Int).Neg(t)
		}
		return new(big.Int).Mod(new(big.Int).Add(scalar, t), n), nil

	case OpNegate:
		return new(big.Int).Mod(new(big.Int).Neg(scalar), n), nil

	default:
		return nil, ErrUnknownOperation
	}
}

// operandScalar resolves the scalar of an add or subtract operand.  Scalar
// form operands name the point Scalar*G and resolve to themselves.  Point
// form operands resolve through the node holding the point, and only when
// that node currently stores a scalar.  It must be called with the lock
// held.
func (g *Graph) operandScalar(op *Operation) (*big.Int, bool) {
	if op.Scalar != nil {
		return op.Scalar, true
	}

	key, err := canonicalKey(g.config.Curve, op.Point)
	if err != nil {
		return nil, false
	}
	id, ok := g.indexes.pointKeys[key]
	if !ok {
		return nil, false
	}
	node := g.nodes[id]
	if node.PrivateKey == nil {
		return nil, false
	}
	return node.PrivateKey, true
}
