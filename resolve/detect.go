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

	"go.opentelemetry.io/otel/attribute"

	"github.com/strandworks/ravel/graph"
)

// FindRepeats classifies every edge as unique or repeat-pending.
//
// Description:
//
//	An edge is marked repeat-pending when its estimated multiplicity
//	exceeds one, or when local topology routes more than one path through
//	it at the same apparent copy (multiple entries at its source junction
//	and multiple exits at its target). Edges already separated or retained
//	as unresolved are left alone.
//
//	Purely a classification pass: no mutation beyond the state tag.
//	Idempotent — re-running on an unchanged graph yields the same
//	classification.
func (r *Resolver) FindRepeats(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "resolve.FindRepeats")
	defer span.End()

	total := 0
	repeats := 0
	for _, id := range r.graph.Edges() {
		if err := ctx.Err(); err != nil {
			return err
		}
		edge, err := r.graph.Edge(id)
		if err != nil {
			return err
		}
		switch edge.State {
		case graph.EdgeSeparated, graph.EdgeUnresolvedRetained:
			continue
		}
		total++

		est, err := r.estimator.Estimate(id)
		if err != nil {
			return fmt.Errorf("estimate edge %d: %w", id, err)
		}

		if est.Multiplicity > 1 || r.onFork(edge) {
			edge.State = graph.EdgeRepeatPending
			r.pending[id] = struct{}{}
			repeats++
		} else {
			edge.State = graph.EdgeUnique
			delete(r.pending, id)
		}
	}

	span.SetAttributes(
		attribute.Int("edges", total),
		attribute.Int("repeats", repeats),
	)
	r.logger.Info("repeat detection finished", "edges", total, "repeats", repeats)
	return nil
}

// onFork reports whether edge sits between a merging and a branching
// junction: several paths enter its source and several leave its target,
// so distinct genomic traversals share this one copy.
func (r *Resolver) onFork(edge *graph.Edge) bool {
	from, err := r.graph.Node(edge.From)
	if err != nil {
		return false
	}
	to, err := r.graph.Node(edge.To)
	if err != nil {
		return false
	}
	return len(from.In) > 1 && len(to.Out) > 1
}
