// Copyright (C) 2026 Strandworks Bio (dev@strandworks.bio)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package graph

import (
	"fmt"

	"github.com/strandworks/ravel/seq"
)

// NodeID is a stable handle into the node arena.
type NodeID int32

// EdgeID is a stable handle into the edge arena.
type EdgeID int32

// EdgeState is the resolution state of an edge.
type EdgeState int

const (
	// EdgeUnique marks an edge whose sequence occurs once in the genome.
	EdgeUnique EdgeState = iota

	// EdgeRepeatPending marks a repeat edge awaiting resolution.
	EdgeRepeatPending

	// EdgeSeparated marks either a new chain created for one resolved repeat
	// copy, or an original repeat edge whose copies are fully consumed.
	EdgeSeparated

	// EdgeUnresolvedRetained marks an edge resolution gave up on: unsafe to
	// remove, or inconsistent evidence. Terminal for the run.
	EdgeUnresolvedRetained
)

// edgeStateNames maps EdgeState values to their string representations.
var edgeStateNames = map[EdgeState]string{
	EdgeUnique:             "unique",
	EdgeRepeatPending:      "repeat_pending",
	EdgeSeparated:          "separated",
	EdgeUnresolvedRetained: "unresolved_retained",
}

// String returns the string representation of the EdgeState.
func (s EdgeState) String() string {
	if name, ok := edgeStateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Node is a junction: identity and incident-edge lists only.
type Node struct {
	// ID is this node's handle in the arena.
	ID NodeID

	// Out lists edges leaving this junction, in insertion order.
	Out []EdgeID

	// In lists edges entering this junction, in insertion order.
	In []EdgeID

	alive bool
}

// Degree returns the total number of incident edges.
func (n *Node) Degree() int {
	return len(n.Out) + len(n.In)
}

// Edge is an assembled sequence segment between two junctions.
type Edge struct {
	// ID is this edge's handle in the arena.
	ID EdgeID

	// From and To are the junctions this edge connects.
	From NodeID
	To   NodeID

	// Segment references the edge's sequence content.
	Segment seq.Segment

	// Length is the sequence length in bases.
	Length int

	// Multiplicity is the remaining number of unconsumed copies.
	Multiplicity int

	// OriginalMultiplicity is the copy number the edge started the run with.
	OriginalMultiplicity int

	// SeparatedCopies counts copies consumed by accepted separations.
	// Invariant: SeparatedCopies + Multiplicity == OriginalMultiplicity.
	SeparatedCopies int

	// State is the resolution state tag.
	State EdgeState

	// Support is the number of spanning connections observed for this edge,
	// accumulated across all resolution iterations so far.
	Support int

	alive bool
}

// Graph is the repeat graph under resolution.
//
// Handles returned by AddNode/AddEdge stay valid for the lifetime of the
// graph; removal tombstones the arena entry rather than reusing it.
type Graph struct {
	nodes []Node
	edges []Edge

	liveNodes int
	liveEdges int
}

// New creates an empty repeat graph.
func New() *Graph {
	return &Graph{}
}

// AddNode creates a junction and returns its handle.
func (g *Graph) AddNode() NodeID {
	id := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, Node{ID: id, alive: true})
	g.liveNodes++
	return id
}

// AddEdge creates an edge between two live junctions.
//
// The edge starts in EdgeUnique state with the given multiplicity recorded
// as both remaining and original copy number. Classification to
// EdgeRepeatPending is the resolver's job.
func (g *Graph) AddEdge(from, to NodeID, segment seq.Segment, length, multiplicity int) (EdgeID, error) {
	if !g.nodeAlive(from) {
		return 0, fmt.Errorf("%w: %d", ErrNodeNotFound, from)
	}
	if !g.nodeAlive(to) {
		return 0, fmt.Errorf("%w: %d", ErrNodeNotFound, to)
	}
	if multiplicity < 1 {
		return 0, fmt.Errorf("multiplicity must be >= 1, got %d", multiplicity)
	}

	id := EdgeID(len(g.edges))
	g.edges = append(g.edges, Edge{
		ID:                   id,
		From:                 from,
		To:                   to,
		Segment:              segment,
		Length:               length,
		Multiplicity:         multiplicity,
		OriginalMultiplicity: multiplicity,
		State:                EdgeUnique,
		alive:                true,
	})
	g.nodes[from].Out = append(g.nodes[from].Out, id)
	g.nodes[to].In = append(g.nodes[to].In, id)
	g.liveEdges++
	return id, nil
}

// Node returns the live junction for id.
func (g *Graph) Node(id NodeID) (*Node, error) {
	if !g.nodeAlive(id) {
		return nil, fmt.Errorf("%w: %d", ErrNodeNotFound, id)
	}
	return &g.nodes[id], nil
}

// Edge returns the live edge for id.
func (g *Graph) Edge(id EdgeID) (*Edge, error) {
	if !g.edgeAlive(id) {
		return nil, fmt.Errorf("%w: %d", ErrEdgeNotFound, id)
	}
	return &g.edges[id], nil
}

// Nodes returns the handles of all live junctions in ascending order.
func (g *Graph) Nodes() []NodeID {
	out := make([]NodeID, 0, g.liveNodes)
	for i := range g.nodes {
		if g.nodes[i].alive {
			out = append(out, g.nodes[i].ID)
		}
	}
	return out
}

// Edges returns the handles of all live edges in ascending order.
//
// Ascending handle order is the canonical iteration order; detection,
// extraction and pruning all rely on it for reproducible runs.
func (g *Graph) Edges() []EdgeID {
	out := make([]EdgeID, 0, g.liveEdges)
	for i := range g.edges {
		if g.edges[i].alive {
			out = append(out, g.edges[i].ID)
		}
	}
	return out
}

// NodeCount returns the number of live junctions.
func (g *Graph) NodeCount() int { return g.liveNodes }

// EdgeCount returns the number of live edges.
func (g *Graph) EdgeCount() int { return g.liveEdges }

func (g *Graph) nodeAlive(id NodeID) bool {
	return id >= 0 && int(id) < len(g.nodes) && g.nodes[id].alive
}

func (g *Graph) edgeAlive(id EdgeID) bool {
	return id >= 0 && int(id) < len(g.edges) && g.edges[id].alive
}
