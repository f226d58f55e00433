// Copyright (c) 2024-2026 The eccgame developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package pointgraph

import (
	"encoding/hex"
	"errors"
	"math/big"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/Rizato/eccgame-sub003/curve"
)

var (
	// ErrNodeNotFound is returned when a node is not found in the graph.
	ErrNodeNotFound = errors.New("node not found in graph")

	// ErrEdgeNotFound is returned when an edge is not found in the graph.
	ErrEdgeNotFound = errors.New("edge not found in graph")

	// ErrNodeExists is returned when adding a node for a point whose
	// canonical key is already present.
	ErrNodeExists = errors.New("node for the point already exists in graph")

	// ErrGraphFull is returned when an addition would exceed the
	// configured node or edge capacity.
	ErrGraphFull = errors.New("graph capacity reached")

	// ErrGeneratorNode is returned when attempting to remove the
	// generator node.
	ErrGeneratorNode = errors.New("the generator node cannot be removed")

	// ErrPointMismatch is returned when an edge's operation applied to
	// the from node does not produce the to node's point.
	ErrPointMismatch = errors.New("operation result does not match the " +
		"to node's point")

	// ErrScalarContradiction is returned when a derived scalar disagrees
	// with a scalar already stored on a node.
	ErrScalarContradiction = errors.New("derived scalar contradicts a " +
		"stored scalar")

	// ErrUnknownOperandScalar is returned when composing across an add or
	// subtract edge whose operand point has no known scalar.
	ErrUnknownOperandScalar = errors.New("operand point scalar is not known")

	// ErrUnknownOperation is returned for an operation kind outside the
	// closed set.
	ErrUnknownOperation = errors.New("unknown operation kind")
)

// Labels attached to the nodes the graph seeds itself.
const (
	generatorLabel = "Generator"
	challengeLabel = "Challenge"
)

// NodeID uniquely identifies a node within a graph.  IDs are never reused,
// not even across resets.
type NodeID uint64

// EdgeID uniquely identifies an edge within a graph.
type EdgeID uint64

// PointKey is the canonical identity of a curve point: the 33-byte
// compressed encoding for finite points and the reserved all-zero key for
// the point at infinity.  Compressed encodings always begin with 0x02 or
// 0x03, so the sentinel cannot collide with a finite point.
type PointKey [33]byte

// String returns the key as a hex string.
func (k PointKey) String() string {
	return hex.EncodeToString(k[:])
}

// canonicalKey maps a point to its canonical identity.  The mapping is total
// for valid points plus infinity, so two points compare equal exactly when
// their keys do.
func canonicalKey(c *curve.Params, p *curve.Point) (PointKey, error) {
	var key PointKey
	if p != nil && p.Infinity {
		return key, nil
	}
	serialized, err := c.SerializeCompressed(p)
	if err != nil {
		return key, err
	}
	copy(key[:], serialized)
	return key, nil
}

// Node is a single point tracked by the graph.  Accessors hand out deep
// copies, so callers may hold a Node across graph mutations and serialize it
// without further locking.
type Node struct {
	// ID uniquely identifies the node.
	ID NodeID

	// Key is the canonical identity of Point.
	Key PointKey

	// Point is the curve point the node represents.
	Point *curve.Point

	// PrivateKey is the scalar that produces Point from the generator, or
	// nil when no scalar is known for the node.
	PrivateKey *big.Int

	// Label is a free-form display name.
	Label string

	// IsGenerator marks the node seeded with the base point.
	IsGenerator bool

	// IsChallenge marks the node holding the active challenge key.
	IsChallenge bool
}

// snapshot returns a deep copy safe to hand outside the graph lock.
func (n *Node) snapshot() Node {
	cp := *n
	cp.Point = n.Point.Copy()
	if n.PrivateKey != nil {
		cp.PrivateKey = new(big.Int).Set(n.PrivateKey)
	}
	return cp
}

// Edge records one operation application linking two nodes.  Edges are
// directed from operand to result, but scalar derivation traverses them in
// both directions.
type Edge struct {
	// ID uniquely identifies the edge.
	ID EdgeID

	// From is the node the operation was applied to.
	From NodeID

	// To is the node holding the operation's result.
	To NodeID

	// Operation is the recorded operation, normalized so its scalar
	// operand lies in [0, N-1].
	Operation Operation

	// BundleCount is the number of times this exact operation was
	// recorded between the two nodes.  Repeats collapse into one edge
	// instead of accumulating parallel edges.
	BundleCount int
}

// snapshot returns a deep copy safe to hand outside the graph lock.
func (e *Edge) snapshot() Edge {
	cp := *e
	cp.Operation = e.Operation.copy()
	return cp
}

// NodeHints carries optional decoration applied when a point is inserted.
// Hints merge onto an existing node: a non-empty label overwrites the
// current one and the challenge flag only ever turns on.
type NodeHints struct {
	// Label names the node for display.
	Label string

	// IsChallenge marks the node as holding the active challenge key.
	IsChallenge bool
}

// SavedPoint is a bookmark a player attached to a node.
type SavedPoint struct {
	// NodeID is the bookmarked node.
	NodeID NodeID

	// Label is the bookmark's display name.
	Label string
}

// Config controls graph capacity and the arithmetic domain.
type Config struct {
	// Curve supplies the group parameters used to evaluate operations
	// and compose scalars.  Nil selects the secp256k1 parameters.
	Curve *curve.Params

	// MaxNodes limits graph capacity to prevent unbounded memory growth.
	// When reached, new node insertions are rejected with ErrGraphFull.
	// Zero or negative means unlimited.
	MaxNodes int

	// MaxEdges limits the total number of recorded operations.  Zero or
	// negative means unlimited.
	MaxEdges int
}

// DefaultConfig returns the configuration used when New is given nil.  The
// capacity limits are far beyond what interactive exploration produces.
func DefaultConfig() *Config {
	return &Config{
		Curve:    curve.S256(),
		MaxNodes: 4096,
		MaxEdges: 16384,
	}
}

// Graph is a concurrency-safe graph of curve points connected by group
// operations.  It always contains a generator node holding the base point
// with private key 1.
type Graph struct {
	config *Config

	// nodes stores all tracked points keyed by id.
	nodes map[NodeID]*Node

	// edges stores all recorded operations keyed by id.
	edges map[EdgeID]*Edge

	// indexes contains auxiliary structures for O(1) lookups that would
	// otherwise require scanning the node or edge maps.
	indexes struct {
		// pointKeys maps a canonical point key to the node that owns
		// it.  This is what deduplicates insertions: a point arriving
		// through a second path resolves to the node created by the
		// first.
		pointKeys map[PointKey]NodeID

		// outEdges and inEdges track the edge ids incident to each
		// node by direction, enabling traversal and cascade removal
		// without scanning every edge.
		outEdges map[NodeID]map[EdgeID]struct{}
		inEdges  map[NodeID]map[EdgeID]struct{}

		// operandEdges maps the canonical key of a point-form add or
		// subtract operand to the edges using it.  When a node with
		// that key learns its scalar, the edges become usable for
		// composition and their endpoints are revisited.
		operandEdges map[PointKey]map[EdgeID]struct{}
	}

	// generatorID is the node seeded with the base point.  It survives
	// every mutation except Reset, which reseeds it under a fresh id.
	generatorID NodeID

	// challengeID is the node holding the active challenge key, or zero
	// when no challenge is set.
	challengeID NodeID

	// saved holds player bookmarks in insertion order.
	saved []SavedPoint

	// nextNodeID and nextEdgeID generate monotonically increasing ids.
	nextNodeID atomic.Uint64
	nextEdgeID atomic.Uint64

	// metrics tracks aggregate statistics using atomic operations to
	// enable lock-free reads.
	metrics struct {
		nodeCount      int32
		edgeCount      int32
		savedCount     int32
		derivations    int32
		propagated     int32
		contradictions int32
	}

	// mu protects the graph structure.  RWMutex allows concurrent reads
	// while serializing mutations.
	mu sync.RWMutex
}

// GraphMetrics provides a snapshot of graph statistics.
type GraphMetrics struct {
	// NodeCount and EdgeCount are the current graph dimensions.
	NodeCount int
	EdgeCount int

	// SavedCount is the number of player bookmarks.
	SavedCount int

	// Derivations counts successful private key derivations.
	Derivations int

	// ScalarsPropagated counts scalar assignments made by propagation.
	ScalarsPropagated int

	// Contradictions counts propagation passes that found a scalar
	// disagreeing with a stored value.
	Contradictions int
}

// New creates a graph with the given configuration and seeds the generator
// node.  A nil config selects DefaultConfig.
func New(config *Config) *Graph {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Curve == nil {
		cfg := *config
		cfg.Curve = curve.S256()
		config = &cfg
	}

	g := &Graph{config: config}
	g.initLocked()
	return g
}

// initLocked clears all graph state and seeds the generator node.  It must
// be called with the write lock held, except from New where the graph is not
// yet shared.
func (g *Graph) initLocked() {
	g.nodes = make(map[NodeID]*Node)
	g.edges = make(map[EdgeID]*Edge)
	g.indexes.pointKeys = make(map[PointKey]NodeID)
	g.indexes.outEdges = make(map[NodeID]map[EdgeID]struct{})
	g.indexes.inEdges = make(map[NodeID]map[EdgeID]struct{})
	g.indexes.operandEdges = make(map[PointKey]map[EdgeID]struct{})
	g.challengeID = 0
	g.saved = nil

	gen := g.config.Curve.Generator()
	key, err := canonicalKey(g.config.Curve, gen)
	if err != nil {
		// The base point always serializes.
		panic(err)
	}
	id := NodeID(g.nextNodeID.Add(1))
	node := &Node{
		ID:          id,
		Key:         key,
		Point:       gen,
		PrivateKey:  big.NewInt(1),
		Label:       generatorLabel,
		IsGenerator: true,
	}
	g.nodes[id] = node
	g.indexes.pointKeys[key] = id
	g.generatorID = id

	atomic.StoreInt32(&g.metrics.nodeCount, 1)
	atomic.StoreInt32(&g.metrics.edgeCount, 0)
	atomic.StoreInt32(&g.metrics.savedCount, 0)
}

// Reset clears all nodes, edges, and bookmarks and seeds a fresh generator
// node.  Node and edge ids are not reused.
func (g *Graph) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.initLocked()
	log.Debugf("Graph reset, generator reseeded as node %d", g.generatorID)
}

// SetChallenge resets the graph and seeds a challenge node holding the
// public key given as a compressed or uncompressed hex string.  The graph is
// left untouched when the key does not parse to a valid point.
func (g *Graph) SetChallenge(pubKeyHex string) (Node, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	point, err := g.config.Curve.ParsePointHex(pubKeyHex)
	if err != nil {
		return Node{}, err
	}

	g.initLocked()
	node, _, err := g.findOrCreateNode(point, NodeHints{
		Label:       challengeLabel,
		IsChallenge: true,
	})
	if err != nil {
		return Node{}, err
	}

	log.Infof("Challenge set to %s as node %d", node.Key, node.ID)
	return node.snapshot(), nil
}

// Curve returns the group parameters the graph evaluates operations over.
func (g *Graph) Curve() *curve.Params {
	return g.config.Curve
}

// GeneratorID returns the id of the generator node.
func (g *Graph) GeneratorID() NodeID {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.generatorID
}

// ChallengeID returns the id of the challenge node and whether a challenge
// is currently set.
func (g *Graph) ChallengeID() (NodeID, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.challengeID, g.challengeID != 0
}

// Node returns a copy of the node with the given id.
func (g *Graph) Node(id NodeID) (Node, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	node, ok := g.nodes[id]
	if !ok {
		return Node{}, ErrNodeNotFound
	}
	return node.snapshot(), nil
}

// Nodes returns copies of all nodes ordered by id.
func (g *Graph) Nodes() []Node {
	g.mu.RLock()
	defer g.mu.RUnlock()

	nodes := make([]Node, 0, len(g.nodes))
	for _, node := range g.nodes {
		nodes = append(nodes, node.snapshot())
	}
	sort.Slice(nodes, func(i, j int) bool {
		return nodes[i].ID < nodes[j].ID
	})
	return nodes
}

// Edge returns a copy of the edge with the given id.
func (g *Graph) Edge(id EdgeID) (Edge, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	edge, ok := g.edges[id]
	if !ok {
		return Edge{}, ErrEdgeNotFound
	}
	return edge.snapshot(), nil
}

// Edges returns copies of all edges ordered by id.
func (g *Graph) Edges() []Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()

	edges := make([]Edge, 0, len(g.edges))
	for _, edge := range g.edges {
		edges = append(edges, edge.snapshot())
	}
	sort.Slice(edges, func(i, j int) bool {
		return edges[i].ID < edges[j].ID
	})
	return edges
}

// NodeByPoint returns a copy of the node whose point has the same canonical
// key as the given point, if one exists.
func (g *Graph) NodeByPoint(p *curve.Point) (Node, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	key, err := canonicalKey(g.config.Curve, p)
	if err != nil {
		return Node{}, false
	}
	id, ok := g.indexes.pointKeys[key]
	if !ok {
		return Node{}, false
	}
	return g.nodes[id].snapshot(), true
}

// FindOrCreateNode returns the node for the point's canonical key, creating
// it when no node holds the point yet.  Hints merge onto the node either
// way.  The returned bool reports whether a new node was created.
func (g *Graph) FindOrCreateNode(p *curve.Point, hints NodeHints) (Node, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	node, created, err := g.findOrCreateNode(p, hints)
	if err != nil {
		return Node{}, false, err
	}
	return node.snapshot(), created, nil
}

// AddNode inserts a node for the given point and fails with ErrNodeExists
// when a node with the same canonical key is already present.
func (g *Graph) AddNode(p *curve.Point, hints NodeHints) (Node, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	key, err := canonicalKey(g.config.Curve, p)
	if err != nil {
		return Node{}, err
	}
	if _, ok := g.indexes.pointKeys[key]; ok {
		return Node{}, ErrNodeExists
	}

	node, _, err := g.findOrCreateNode(p, hints)
	if err != nil {
		return Node{}, err
	}
	return node.snapshot(), nil
}

// findOrCreateNode resolves a point to its node, creating one when needed
// and merging hints.  It must be called with the write lock held.
func (g *Graph) findOrCreateNode(p *curve.Point, hints NodeHints) (*Node, bool, error) {
	key, err := canonicalKey(g.config.Curve, p)
	if err != nil {
		return nil, false, err
	}

	if id, ok := g.indexes.pointKeys[key]; ok {
		node := g.nodes[id]
		g.applyHints(node, hints)
		return node, false, nil
	}

	if g.config.MaxNodes > 0 && len(g.nodes) >= g.config.MaxNodes {
		return nil, false, ErrGraphFull
	}

	id := NodeID(g.nextNodeID.Add(1))
	node := &Node{
		ID:    id,
		Key:   key,
		Point: p.Copy(),
	}
	g.nodes[id] = node
	g.indexes.pointKeys[key] = id
	g.applyHints(node, hints)

	atomic.AddInt32(&g.metrics.nodeCount, 1)
	log.Debugf("Added node %d for point %s", id, key)
	return node, true, nil
}

// applyHints merges node decoration.  Marking a node as the challenge clears
// the flag from whichever node held it before.
func (g *Graph) applyHints(node *Node, hints NodeHints) {
	if hints.Label != "" {
		node.Label = hints.Label
	}
	if hints.IsChallenge && !node.IsChallenge {
		if prev, ok := g.nodes[g.challengeID]; ok {
			prev.IsChallenge = false
		}
		node.IsChallenge = true
		g.challengeID = node.ID
	}
}

// AddEdge records an operation linking two existing nodes.  The operation is
// re-evaluated against the from node and rejected with ErrPointMismatch when
// its result is not the to node's point, so stored edges always agree with
// the curve arithmetic.  Recording an identical operation between the same
// pair of nodes bumps the existing edge's bundle count instead of creating a
// parallel edge.
func (g *Graph) AddEdge(from, to NodeID, op Operation) (Edge, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	edge, err := g.addEdge(from, to, op)
	if err != nil {
		return Edge{}, err
	}
	return edge.snapshot(), nil
}

// addEdge implements AddEdge.  It must be called with the write lock held.
func (g *Graph) addEdge(from, to NodeID, op Operation) (*Edge, error) {
	fromNode, ok := g.nodes[from]
	if !ok {
		return nil, ErrNodeNotFound
	}
	toNode, ok := g.nodes[to]
	if !ok {
		return nil, ErrNodeNotFound
	}

	result, err := op.Apply(g.config.Curve, fromNode.Point)
	if err != nil {
		return nil, err
	}
	if !result.Equal(toNode.Point) {
		return nil, ErrPointMismatch
	}

	norm := op.normalize(g.config.Curve)

	// Collapse repeats of the same operation between the same nodes.
	for _, id := range g.sortedEdgeIDs(g.indexes.outEdges[from]) {
		edge := g.edges[id]
		if edge.To == to && edge.Operation.equal(&norm) {
			edge.BundleCount++
			log.Tracef("Bundled edge %d (%v) count %d", id,
				edge.Operation, edge.BundleCount)
			return edge, nil
		}
	}

	if g.config.MaxEdges > 0 && len(g.edges) >= g.config.MaxEdges {
		return nil, ErrGraphFull
	}

	id := EdgeID(g.nextEdgeID.Add(1))
	edge := &Edge{
		ID:          id,
		From:        from,
		To:          to,
		Operation:   norm,
		BundleCount: 1,
	}
	g.edges[id] = edge

	if g.indexes.outEdges[from] == nil {
		g.indexes.outEdges[from] = make(map[EdgeID]struct{})
	}
	g.indexes.outEdges[from][id] = struct{}{}
	if g.indexes.inEdges[to] == nil {
		g.indexes.inEdges[to] = make(map[EdgeID]struct{})
	}
	g.indexes.inEdges[to][id] = struct{}{}

	if norm.Point != nil {
		key, err := canonicalKey(g.config.Curve, norm.Point)
		if err != nil {
			return nil, err
		}
		if g.indexes.operandEdges[key] == nil {
			g.indexes.operandEdges[key] = make(map[EdgeID]struct{})
		}
		g.indexes.operandEdges[key][id] = struct{}{}
	}

	atomic.AddInt32(&g.metrics.edgeCount, 1)
	log.Debugf("Added edge %d: node %d %v-> node %d", id, from,
		edge.Operation, to)
	return edge, nil
}

// ApplyOperation evaluates an operation against a node's point, resolves the
// result to a node (creating one when the point is new), records the
// connecting edge, and propagates scalars across the new connection from
// whichever side already knows one.  It returns copies of the result node
// and the edge.
//
// A scalar contradiction discovered while propagating is returned after the
// node and edge are in place.  The structural mutation is kept in that case,
// matching the rule that contradictions are surfaced rather than papered
// over by rolling back.
func (g *Graph) ApplyOperation(from NodeID, op Operation) (Node, Edge, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	fromNode, ok := g.nodes[from]
	if !ok {
		return Node{}, Edge{}, ErrNodeNotFound
	}

	result, err := op.Apply(g.config.Curve, fromNode.Point)
	if err != nil {
		return Node{}, Edge{}, err
	}

	toNode, _, err := g.findOrCreateNode(result, NodeHints{})
	if err != nil {
		return Node{}, Edge{}, err
	}

	edge, err := g.addEdge(from, toNode.ID, op)
	if err != nil {
		return Node{}, Edge{}, err
	}

	var floodErr error
	switch {
	case fromNode.PrivateKey != nil:
		_, floodErr = g.flood(from)
	case toNode.PrivateKey != nil:
		_, floodErr = g.flood(toNode.ID)
	}

	return toNode.snapshot(), edge.snapshot(), floodErr
}

// RemoveNode deletes a node and cascades to its incident edges and
// bookmarks.  The generator node cannot be removed.
func (g *Graph) RemoveNode(id NodeID) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	node, ok := g.nodes[id]
	if !ok {
		return ErrNodeNotFound
	}
	if node.IsGenerator {
		return ErrGeneratorNode
	}

	for _, eid := range g.incidentEdges(id) {
		g.removeEdge(eid)
	}

	delete(g.nodes, id)
	delete(g.indexes.pointKeys, node.Key)
	delete(g.indexes.outEdges, id)
	delete(g.indexes.inEdges, id)
	if g.challengeID == id {
		g.challengeID = 0
	}

	if len(g.saved) > 0 {
		kept := g.saved[:0]
		for _, sp := range g.saved {
			if sp.NodeID != id {
				kept = append(kept, sp)
			}
		}
		g.saved = kept
		atomic.StoreInt32(&g.metrics.savedCount, int32(len(g.saved)))
	}

	atomic.AddInt32(&g.metrics.nodeCount, -1)
	log.Debugf("Removed node %d and its incident edges", id)
	return nil
}

// RemoveEdge deletes a single edge.
func (g *Graph) RemoveEdge(id EdgeID) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.edges[id]; !ok {
		return ErrEdgeNotFound
	}
	g.removeEdge(id)
	return nil
}

// removeEdge deletes an edge and its index entries.  It must be called with
// the write lock held and the edge present.
func (g *Graph) removeEdge(id EdgeID) {
	edge := g.edges[id]

	delete(g.indexes.outEdges[edge.From], id)
	delete(g.indexes.inEdges[edge.To], id)
	if edge.Operation.Point != nil {
		key, err := canonicalKey(g.config.Curve, edge.Operation.Point)
		if err == nil {
			delete(g.indexes.operandEdges[key], id)
			if len(g.indexes.operandEdges[key]) == 0 {
				delete(g.indexes.operandEdges, key)
			}
		}
	}
	delete(g.edges, id)

	atomic.AddInt32(&g.metrics.edgeCount, -1)
}

// SavePoint bookmarks a node under the given label.  Duplicate bookmarks for
// the same node are kept, matching how players save intermediate results.
func (g *Graph) SavePoint(id NodeID, label string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.nodes[id]; !ok {
		return ErrNodeNotFound
	}
	g.saved = append(g.saved, SavedPoint{NodeID: id, Label: label})
	atomic.AddInt32(&g.metrics.savedCount, 1)
	return nil
}

// SavedPoints returns the bookmarks in insertion order.
func (g *Graph) SavedPoints() []SavedPoint {
	g.mu.RLock()
	defer g.mu.RUnlock()

	saved := make([]SavedPoint, len(g.saved))
	copy(saved, g.saved)
	return saved
}

// incidentEdges returns the ids of all edges touching a node in ascending
// order, counting self-loops once.  It must be called with the lock held.
func (g *Graph) incidentEdges(id NodeID) []EdgeID {
	seen := make(map[EdgeID]struct{},
		len(g.indexes.outEdges[id])+len(g.indexes.inEdges[id]))
	for eid := range g.indexes.outEdges[id] {
		seen[eid] = struct{}{}
	}
	for eid := range g.indexes.inEdges[id] {
		seen[eid] = struct{}{}
	}
	return g.sortedEdgeIDs(seen)
}

// sortedEdgeIDs flattens an edge id set into ascending order so traversal is
// deterministic.  Edge ids increase with insertion, so ascending id order is
// insertion order.
func (g *Graph) sortedEdgeIDs(set map[EdgeID]struct{}) []EdgeID {
	ids := make([]EdgeID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// GetMetrics returns current graph metrics.
func (g *Graph) GetMetrics() GraphMetrics {
	return GraphMetrics{
		NodeCount:         int(atomic.LoadInt32(&g.metrics.nodeCount)),
		EdgeCount:         int(atomic.LoadInt32(&g.metrics.edgeCount)),
		SavedCount:        int(atomic.LoadInt32(&g.metrics.savedCount)),
		Derivations:       int(atomic.LoadInt32(&g.metrics.derivations)),
		ScalarsPropagated: int(atomic.LoadInt32(&g.metrics.propagated)),
		Contradictions:    int(atomic.LoadInt32(&g.metrics.contradictions)),
	}
}
