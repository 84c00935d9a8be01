// Copyright (C) 2026 Strandworks Bio (dev@strandworks.bio)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package graph

import "fmt"

// RedirectTarget reroutes edge e to end at node to.
//
// Adjacency on both the old and new target junction is updated in the same
// step, so observers between mutations never see a half-applied rewire.
func (g *Graph) RedirectTarget(e EdgeID, to NodeID) error {
	if !g.edgeAlive(e) {
		return fmt.Errorf("%w: %d", ErrEdgeNotFound, e)
	}
	if !g.nodeAlive(to) {
		return fmt.Errorf("%w: %d", ErrNodeNotFound, to)
	}
	edge := &g.edges[e]
	removeHandle(&g.nodes[edge.To].In, e)
	edge.To = to
	g.nodes[to].In = append(g.nodes[to].In, e)
	return nil
}

// RedirectSource reroutes edge e to start at node from.
func (g *Graph) RedirectSource(e EdgeID, from NodeID) error {
	if !g.edgeAlive(e) {
		return fmt.Errorf("%w: %d", ErrEdgeNotFound, e)
	}
	if !g.nodeAlive(from) {
		return fmt.Errorf("%w: %d", ErrNodeNotFound, from)
	}
	edge := &g.edges[e]
	removeHandle(&g.nodes[edge.From].Out, e)
	edge.From = from
	g.nodes[from].Out = append(g.nodes[from].Out, e)
	return nil
}

// RemoveEdge deletes edge e from the graph.
//
// Removal is refused with ErrUnsafeRemoval when it would drop either
// endpoint junction to degree zero: a junction that was connected must stay
// connected. Callers recover by retaining the edge.
func (g *Graph) RemoveEdge(e EdgeID) error {
	if !g.edgeAlive(e) {
		return fmt.Errorf("%w: %d", ErrEdgeNotFound, e)
	}
	edge := &g.edges[e]

	if wouldIsolate(&g.nodes[edge.From], e) || wouldIsolate(&g.nodes[edge.To], e) {
		return fmt.Errorf("%w: edge %d", ErrUnsafeRemoval, e)
	}

	removeHandle(&g.nodes[edge.From].Out, e)
	removeHandle(&g.nodes[edge.To].In, e)
	edge.alive = false
	g.liveEdges--
	return nil
}

// ConsumeCopy decrements edge e's remaining multiplicity by one, crediting
// the copy to its separated descendants.
//
// Returns ErrMultiplicityExhausted when no copies remain; the edge is left
// untouched in that case.
func (g *Graph) ConsumeCopy(e EdgeID) error {
	if !g.edgeAlive(e) {
		return fmt.Errorf("%w: %d", ErrEdgeNotFound, e)
	}
	edge := &g.edges[e]
	if edge.Multiplicity < 1 {
		return fmt.Errorf("%w: edge %d", ErrMultiplicityExhausted, e)
	}
	edge.Multiplicity--
	edge.SeparatedCopies++
	return nil
}

// wouldIsolate reports whether removing edge e leaves node n with no
// incident edges. Counts every occurrence, so a self-loop (present in both
// lists) isolates its node.
func wouldIsolate(n *Node, e EdgeID) bool {
	for _, id := range n.Out {
		if id != e {
			return false
		}
	}
	for _, id := range n.In {
		if id != e {
			return false
		}
	}
	return true
}

// removeHandle deletes the first occurrence of e from list, preserving order.
// Insertion order is part of the deterministic iteration contract.
func removeHandle(list *[]EdgeID, e EdgeID) {
	s := *list
	for i, id := range s {
		if id == e {
			*list = append(s[:i], s[i+1:]...)
			return
		}
	}
}
