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

	"github.com/strandworks/ravel/graph"
	"github.com/strandworks/ravel/seq"
)

// separatePath rewrites the graph for one accepted path.
//
// Description:
//
//	The usual outcome splices a dedicated chain between fresh junctions:
//	the entry flank is rewired into a new left junction, a new separated
//	edge (multiplicity 1, sequence duplicated from the spanning read under
//	a fresh identifier) bridges to a new right junction, and the exit flank
//	departs from there. Each traversed repeat edge gives up one copy; an
//	edge giving up its last copy is tagged separated.
//
//	When every traversed repeat edge is at its last copy and claimed by
//	only this path, there is nothing left to fork: the edges are
//	reclassified in place as unique and no chain is created.
//
//	The operation is atomic: all candidates are validated before the first
//	mutation, and a validation failure is a multiplicity inconsistency —
//	the offending edge is retained as unresolved, a diagnostic recorded,
//	and the graph left untouched.
//
// Inputs:
//
//	path - The accepted traversal, flanked by unique edges.
//	segment - The representative spanning read segment.
//	acceptable - Distinct threshold-passing path count per repeat edge.
func (r *Resolver) separatePath(ctx context.Context, path graph.Path, segment seq.Segment, acceptable map[graph.EdgeID]int) error {
	interior := r.pendingInterior(path)

	// Validate every decrement before applying any.
	for _, e := range interior {
		edge, err := r.graph.Edge(e)
		if err != nil {
			return err
		}
		if edge.Multiplicity < 1 {
			err := fmt.Errorf("%w: edge %d has no copies left of %d",
				ErrInconsistentMultiplicity, e, edge.OriginalMultiplicity)
			edge.State = graph.EdgeUnresolvedRetained
			delete(r.pending, e)
			r.diags = append(r.diags, Diagnostic{Edge: e, Iteration: r.iteration, Err: err})
			recordRetained(ctx, "inconsistent_multiplicity")
			r.logger.Error("multiplicity inconsistency",
				"edge", int(e),
				"iteration", r.iteration,
				"path", path.Key())
			return err
		}
	}

	if r.lastCopy(interior, acceptable) {
		for _, e := range interior {
			edge, err := r.graph.Edge(e)
			if err != nil {
				return err
			}
			edge.State = graph.EdgeUnique
		}
		r.logger.Debug("reclassified last repeat copy in place", "path", path.Key())
		return nil
	}

	newID, err := r.registry.MaterializeSegment(ctx, segment)
	if err != nil {
		return fmt.Errorf("separate path %s: %w", path.Key(), err)
	}
	length := segment.Len()

	left := r.graph.AddNode()
	right := r.graph.AddNode()
	entry := path[0]
	exit := path[len(path)-1]
	if err := r.graph.RedirectTarget(entry, left); err != nil {
		return err
	}
	if err := r.graph.RedirectSource(exit, right); err != nil {
		return err
	}
	sepEdge, err := r.graph.AddEdge(left, right, seq.Segment{ID: newID, Start: 0, End: length}, length, 1)
	if err != nil {
		return err
	}
	se, err := r.graph.Edge(sepEdge)
	if err != nil {
		return err
	}
	se.State = graph.EdgeSeparated

	for _, e := range interior {
		if err := r.graph.ConsumeCopy(e); err != nil {
			// Unreachable after validation above; surface loudly if it
			// ever happens.
			return err
		}
		edge, err := r.graph.Edge(e)
		if err != nil {
			return err
		}
		if edge.Multiplicity == 0 {
			edge.State = graph.EdgeSeparated
		}
	}

	r.logger.Debug("separated repeat path",
		"path", path.Key(),
		"edge", int(sepEdge),
		"sequence", string(newID),
		"length", length)
	return nil
}

// lastCopy reports whether the in-place reclassification applies: every
// traversed repeat edge is down to a single copy claimed by exactly one
// acceptable path.
func (r *Resolver) lastCopy(interior []graph.EdgeID, acceptable map[graph.EdgeID]int) bool {
	for _, e := range interior {
		edge, err := r.graph.Edge(e)
		if err != nil {
			return false
		}
		if edge.Multiplicity != 1 || acceptable[e] != 1 {
			return false
		}
	}
	return len(interior) > 0
}
