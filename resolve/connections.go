// Copyright (C) 2026 Strandworks Bio (dev@strandworks.bio)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package resolve

import (
	"context"
	"fmt"
	"slices"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/strandworks/ravel/graph"
	"github.com/strandworks/ravel/seq"
)

// Connection pairs one traversal path through a repeat region with the
// read segment that fully spans it. Connections are ephemeral: built fresh
// each iteration against current graph and alignment state, consumed within
// the same iteration, never persisted.
type Connection struct {
	// Path is the traversed path, bounded by distinct unique edges.
	Path graph.Path

	// Read references the spanning portion of the supporting read.
	Read seq.Segment

	// order is the discovery index within this iteration, used for
	// deterministic tie-breaks during acceptance.
	order int
}

// collectConnections gathers spanning connections for every repeat-pending
// edge.
//
// Aligner queries run in parallel (they are independent and CPU-bound), but
// all results are collected behind the errgroup barrier before anything is
// scored: acceptance needs the complete set for deterministic greedy
// conflict resolution. Per-edge batches are flattened in ascending edge
// handle order, so discovery order does not depend on goroutine scheduling.
func (r *Resolver) collectConnections(ctx context.Context) ([]Connection, error) {
	ctx, span := tracer.Start(ctx, "resolve.collectConnections")
	defer span.End()

	pending := r.pendingEdges()
	batches := make([][]Connection, len(pending))

	eg, ectx := errgroup.WithContext(ctx)
	eg.SetLimit(r.options.WorkerCount)
	for i, e := range pending {
		eg.Go(func() error {
			alns, err := r.aligner.EdgeAlignments(ectx, e)
			if err != nil {
				return fmt.Errorf("align edge %d: %w", e, err)
			}
			batches[i] = r.spanningConnections(e, alns)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	// A path crossing several repeat edges is discovered once per edge;
	// keep the first sighting of each (read, path) pair.
	seen := make(map[string]struct{})
	var conns []Connection
	for _, batch := range batches {
		for _, c := range batch {
			key := string(c.Read.ID) + "|" + c.Path.Key()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			c.order = len(conns)
			conns = append(conns, c)
		}
	}

	span.SetAttributes(
		attribute.Int("pending_edges", len(pending)),
		attribute.Int("connections", len(conns)),
	)
	return conns, nil
}

// spanningConnections filters one edge's alignments down to unambiguous,
// fully spanning traversals.
//
// A read reported with more than one distinct candidate path is excluded
// entirely: it provides no path-discriminating evidence. Reads with partial
// spans, or whose path does not start and end on distinct unique edges, are
// likewise excluded. Reads only the graph state; safe to run while other
// edges are being queried.
func (r *Resolver) spanningConnections(e graph.EdgeID, alns []ReadAlignment) []Connection {
	type readEvidence struct {
		aln   ReadAlignment
		paths map[string]struct{}
	}
	order := make([]seq.ID, 0, len(alns))
	byRead := make(map[seq.ID]*readEvidence, len(alns))
	for _, a := range alns {
		ev := byRead[a.Read]
		if ev == nil {
			ev = &readEvidence{aln: a, paths: make(map[string]struct{})}
			byRead[a.Read] = ev
			order = append(order, a.Read)
		}
		ev.paths[a.Path.Key()] = struct{}{}
	}

	var out []Connection
	for _, id := range order {
		ev := byRead[id]
		if len(ev.paths) != 1 {
			continue // ambiguous across multiple possible paths
		}
		if !r.spans(e, ev.aln) {
			continue
		}
		out = append(out, Connection{
			Path: slices.Clone(ev.aln.Path),
			Read: seq.Segment{ID: id, Start: ev.aln.SpanStart, End: ev.aln.SpanEnd},
		})
	}
	return out
}

// spans reports whether aln is a fully spanning, unambiguous traversal
// relevant to repeat edge e: it enters via one unique flanking edge,
// traverses e among one or more repeat edges, and exits via another unique
// flanking edge, with a nonempty spanning range on the read.
func (r *Resolver) spans(e graph.EdgeID, aln ReadAlignment) bool {
	p := aln.Path
	if len(p) < 3 {
		return false
	}
	if p[0] == p[len(p)-1] {
		return false
	}
	if aln.SpanStart < 0 || aln.SpanStart >= aln.SpanEnd {
		return false
	}
	if r.graph.Validate(p) != nil {
		return false
	}

	first, err := r.graph.Edge(p[0])
	if err != nil || first.State != graph.EdgeUnique {
		return false
	}
	last, err := r.graph.Edge(p[len(p)-1])
	if err != nil || last.State != graph.EdgeUnique {
		return false
	}

	traversesQueried := false
	for _, id := range p.Interior() {
		edge, err := r.graph.Edge(id)
		if err != nil {
			return false
		}
		if id == e && edge.State == graph.EdgeRepeatPending {
			traversesQueried = true
		}
	}
	return traversesQueried
}
