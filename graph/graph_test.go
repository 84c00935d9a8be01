// Copyright (C) 2026 Strandworks Bio (dev@strandworks.bio)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package graph

import (
	"errors"
	"testing"

	"github.com/strandworks/ravel/seq"
)

// chain builds n0 -e0-> n1 -e1-> n2 ... with the given multiplicities.
func chain(t *testing.T, mults ...int) (*Graph, []NodeID, []EdgeID) {
	t.Helper()
	g := New()
	nodes := []NodeID{g.AddNode()}
	edges := make([]EdgeID, 0, len(mults))
	for i, m := range mults {
		nodes = append(nodes, g.AddNode())
		seg := seq.Segment{ID: seq.ID("contig"), Start: i * 100, End: (i + 1) * 100}
		e, err := g.AddEdge(nodes[i], nodes[i+1], seg, 100, m)
		if err != nil {
			t.Fatalf("AddEdge: %v", err)
		}
		edges = append(edges, e)
	}
	return g, nodes, edges
}

func TestGraph_AddAndLookup(t *testing.T) {
	g, nodes, edges := chain(t, 1, 2, 1)

	if g.NodeCount() != 4 || g.EdgeCount() != 3 {
		t.Fatalf("got %d nodes, %d edges", g.NodeCount(), g.EdgeCount())
	}

	e, err := g.Edge(edges[1])
	if err != nil {
		t.Fatalf("Edge: %v", err)
	}
	if e.From != nodes[1] || e.To != nodes[2] {
		t.Errorf("edge endpoints %d->%d, want %d->%d", e.From, e.To, nodes[1], nodes[2])
	}
	if e.Multiplicity != 2 || e.OriginalMultiplicity != 2 {
		t.Errorf("multiplicity %d/%d, want 2/2", e.Multiplicity, e.OriginalMultiplicity)
	}
	if e.State != EdgeUnique {
		t.Errorf("state %s, want unique", e.State)
	}

	n, err := g.Node(nodes[1])
	if err != nil {
		t.Fatalf("Node: %v", err)
	}
	if n.Degree() != 2 {
		t.Errorf("degree %d, want 2", n.Degree())
	}
}

func TestGraph_AddEdgeValidation(t *testing.T) {
	g := New()
	n := g.AddNode()

	if _, err := g.AddEdge(n, NodeID(99), seq.Segment{}, 10, 1); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("bad target: got %v", err)
	}
	m := g.AddNode()
	if _, err := g.AddEdge(n, m, seq.Segment{}, 10, 0); err == nil {
		t.Error("multiplicity 0 accepted")
	}
}

func TestGraph_EdgesAscendingAndStableAfterRemoval(t *testing.T) {
	g, _, edges := chain(t, 1, 1, 1, 1)

	// Middle removal keeps both endpoints connected.
	if err := g.RemoveEdge(edges[1]); err != nil {
		t.Fatalf("RemoveEdge: %v", err)
	}

	got := g.Edges()
	want := []EdgeID{edges[0], edges[2], edges[3]}
	if len(got) != len(want) {
		t.Fatalf("Edges() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Edges() = %v, want %v", got, want)
		}
	}

	// Handles of removed edges are dead, others untouched.
	if _, err := g.Edge(edges[1]); !errors.Is(err, ErrEdgeNotFound) {
		t.Errorf("removed edge lookup: got %v", err)
	}
	if _, err := g.Edge(edges[2]); err != nil {
		t.Errorf("live edge lookup: %v", err)
	}
}

func TestGraph_RemoveEdgeRefusesIsolation(t *testing.T) {
	g, nodes, edges := chain(t, 1, 1)

	// edges[0] is the only edge at nodes[0]: removal would isolate it.
	err := g.RemoveEdge(edges[0])
	if !errors.Is(err, ErrUnsafeRemoval) {
		t.Fatalf("got %v, want ErrUnsafeRemoval", err)
	}
	if g.EdgeCount() != 2 {
		t.Errorf("edge count changed on refused removal")
	}

	// With a second incident edge at both endpoints, removal is allowed.
	extra0 := g.AddNode()
	extra1 := g.AddNode()
	if _, err := g.AddEdge(extra0, nodes[0], seq.Segment{}, 10, 1); err != nil {
		t.Fatal(err)
	}
	if _, err := g.AddEdge(nodes[1], extra1, seq.Segment{}, 10, 1); err != nil {
		t.Fatal(err)
	}
	if err := g.RemoveEdge(edges[0]); err != nil {
		t.Fatalf("safe removal refused: %v", err)
	}

	// No junction dropped to degree zero.
	for _, id := range g.Nodes() {
		n, _ := g.Node(id)
		if n.Degree() == 0 {
			t.Errorf("node %d isolated", id)
		}
	}
}

func TestGraph_RemoveSelfLoop(t *testing.T) {
	g := New()
	n := g.AddNode()
	m := g.AddNode()
	if _, err := g.AddEdge(n, m, seq.Segment{}, 10, 1); err != nil {
		t.Fatal(err)
	}
	loop, err := g.AddEdge(m, m, seq.Segment{}, 50, 2)
	if err != nil {
		t.Fatal(err)
	}

	// m keeps the incoming edge from n, so the loop can go.
	if err := g.RemoveEdge(loop); err != nil {
		t.Fatalf("RemoveEdge(loop): %v", err)
	}

	// A loop on an otherwise bare node must stay.
	solo := g.AddNode()
	g2loop, err := g.AddEdge(solo, solo, seq.Segment{}, 50, 2)
	if err != nil {
		t.Fatal(err)
	}
	if err := g.RemoveEdge(g2loop); !errors.Is(err, ErrUnsafeRemoval) {
		t.Errorf("bare self-loop removal: got %v", err)
	}
}

func TestGraph_RedirectTarget(t *testing.T) {
	g, nodes, edges := chain(t, 1, 1)
	split := g.AddNode()

	if err := g.RedirectTarget(edges[0], split); err != nil {
		t.Fatalf("RedirectTarget: %v", err)
	}

	e, _ := g.Edge(edges[0])
	if e.To != split {
		t.Errorf("target %d, want %d", e.To, split)
	}
	old, _ := g.Node(nodes[1])
	for _, in := range old.In {
		if in == edges[0] {
			t.Error("old target still lists redirected edge")
		}
	}
	nw, _ := g.Node(split)
	if len(nw.In) != 1 || nw.In[0] != edges[0] {
		t.Errorf("new target In = %v", nw.In)
	}
}

func TestGraph_RedirectSource(t *testing.T) {
	g, _, edges := chain(t, 1, 1)
	split := g.AddNode()

	if err := g.RedirectSource(edges[1], split); err != nil {
		t.Fatalf("RedirectSource: %v", err)
	}
	e, _ := g.Edge(edges[1])
	if e.From != split {
		t.Errorf("source %d, want %d", e.From, split)
	}
}

func TestGraph_ConsumeCopy(t *testing.T) {
	g, _, edges := chain(t, 2)
	e := edges[0]

	if err := g.ConsumeCopy(e); err != nil {
		t.Fatalf("ConsumeCopy: %v", err)
	}
	edge, _ := g.Edge(e)
	if edge.Multiplicity != 1 || edge.SeparatedCopies != 1 {
		t.Errorf("after one consume: remaining=%d separated=%d", edge.Multiplicity, edge.SeparatedCopies)
	}

	if err := g.ConsumeCopy(e); err != nil {
		t.Fatalf("ConsumeCopy: %v", err)
	}
	err := g.ConsumeCopy(e)
	if !errors.Is(err, ErrMultiplicityExhausted) {
		t.Fatalf("overconsume: got %v", err)
	}

	// Refused consume leaves the edge untouched.
	edge, _ = g.Edge(e)
	if edge.Multiplicity != 0 || edge.SeparatedCopies != 2 {
		t.Errorf("after refusal: remaining=%d separated=%d", edge.Multiplicity, edge.SeparatedCopies)
	}
	if edge.SeparatedCopies+edge.Multiplicity != edge.OriginalMultiplicity {
		t.Error("conservation violated")
	}
}

func TestPath_Validate(t *testing.T) {
	g, _, edges := chain(t, 1, 2, 1)

	if err := g.Validate(Path{edges[0], edges[1], edges[2]}); err != nil {
		t.Errorf("valid path rejected: %v", err)
	}
	if err := g.Validate(Path{edges[0], edges[2]}); !errors.Is(err, ErrBadPath) {
		t.Errorf("gap not caught: %v", err)
	}
	if err := g.Validate(Path{}); !errors.Is(err, ErrBadPath) {
		t.Errorf("empty path: %v", err)
	}

	g.RemoveEdge(edges[1])
	if err := g.Validate(Path{edges[0], edges[1], edges[2]}); !errors.Is(err, ErrBadPath) {
		t.Errorf("dead edge not caught: %v", err)
	}
}

func TestPath_KeyAndInterior(t *testing.T) {
	p := Path{3, 7, 9}
	if p.Key() != "3-7-9" {
		t.Errorf("Key() = %q", p.Key())
	}
	in := p.Interior()
	if len(in) != 1 || in[0] != 7 {
		t.Errorf("Interior() = %v", in)
	}
	if (Path{3}).Interior() != nil {
		t.Error("short path interior not nil")
	}
}

func TestPath_Length(t *testing.T) {
	g, _, edges := chain(t, 1, 1)
	if got := g.PathLength(Path{edges[0], edges[1]}); got != 200 {
		t.Errorf("PathLength = %d, want 200", got)
	}
}
