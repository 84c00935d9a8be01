// Copyright (C) 2026 Strandworks Bio (dev@strandworks.bio)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package resolve

import (
	"context"
	"errors"

	"github.com/strandworks/ravel/graph"
)

// removeUnsupportedEdges prunes repeat edges that look spurious: zero
// supporting connections accumulated across all iterations so far and
// estimator confidence below the configured minimum.
//
// Removal is refused when it would isolate a junction; the edge is then
// retained and tagged unresolved instead — terminal for this run. Returns
// the number of edges removed.
func (r *Resolver) removeUnsupportedEdges(ctx context.Context) int {
	removed := 0
	for _, e := range r.pendingEdges() {
		edge, err := r.graph.Edge(e)
		if err != nil {
			delete(r.pending, e)
			continue
		}
		if edge.State != graph.EdgeRepeatPending || edge.Support > 0 {
			continue
		}

		est, err := r.estimator.Estimate(e)
		if err != nil {
			r.logger.Warn("estimate failed during pruning", "edge", int(e), "error", err)
			continue
		}
		if est.Confidence >= r.options.MinConfidence {
			continue
		}

		if err := r.graph.RemoveEdge(e); err != nil {
			if errors.Is(err, graph.ErrUnsafeRemoval) {
				edge.State = graph.EdgeUnresolvedRetained
				delete(r.pending, e)
				recordRetained(ctx, "unsafe_removal")
				r.logger.Debug("retained unsupported edge", "edge", int(e))
				continue
			}
			r.logger.Warn("unexpected removal failure", "edge", int(e), "error", err)
			continue
		}
		delete(r.pending, e)
		removed++
		r.logger.Debug("pruned unsupported edge",
			"edge", int(e),
			"confidence", est.Confidence)
	}
	return removed
}

// clearResolvedRepeats drops bookkeeping for edges that left the
// repeat-pending state this iteration, so later detection and extraction
// passes skip them. Pure bookkeeping, no topology change.
func (r *Resolver) clearResolvedRepeats() {
	for _, e := range r.pendingEdges() {
		edge, err := r.graph.Edge(e)
		if err != nil || edge.State != graph.EdgeRepeatPending {
			delete(r.pending, e)
		}
	}
}
