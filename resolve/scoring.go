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
	"fmt"
	"sort"

	"github.com/strandworks/ravel/graph"
	"github.com/strandworks/ravel/seq"
)

// pathGroup aggregates the connections confirming one distinct path.
type pathGroup struct {
	path    graph.Path
	support int
	first   int         // discovery order of the earliest connection
	segment seq.Segment // representative spanning read segment
}

// resolveConnections scores the iteration's connections and rewrites the
// graph for every accepted path. Returns the number of paths accepted.
//
// Description:
//
//	Connections are grouped by the distinct path they confirm; support is
//	the group size. A path is acceptable when its support meets the
//	estimator threshold for the repeat edges it traverses (the strictest
//	edge wins). When more acceptable paths compete for a repeat edge than
//	it has remaining copies, paths are accepted greedily in descending
//	support order, earliest discovery first, until the budget is exhausted;
//	the rest wait for a future iteration.
func (r *Resolver) resolveConnections(ctx context.Context, conns []Connection) (int, error) {
	ctx, span := tracer.Start(ctx, "resolve.resolveConnections")
	defer span.End()

	if len(conns) == 0 {
		return 0, nil
	}

	r.accumulateSupport(conns)

	groups := r.groupByPath(conns)
	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].support != groups[j].support {
			return groups[i].support > groups[j].support
		}
		return groups[i].first < groups[j].first
	})

	// Count acceptable paths per repeat edge before any rewriting; the
	// last-copy rule needs to know whether an edge is claimed by exactly
	// one threshold-passing path.
	acceptable := make(map[graph.EdgeID]int)
	for _, grp := range groups {
		interior := r.pendingInterior(grp.path)
		if len(interior) == 0 {
			continue
		}
		thr, err := r.pathThreshold(interior)
		if err != nil {
			return 0, err
		}
		if grp.support < thr {
			continue
		}
		for _, e := range interior {
			acceptable[e]++
		}
	}

	accepted := 0
	for _, grp := range groups {
		if err := ctx.Err(); err != nil {
			return accepted, err
		}
		// Earlier separations this pass may have rewired a shared flank out
		// from under this path; it then waits for re-extraction against the
		// new topology.
		if r.graph.Validate(grp.path) != nil {
			continue
		}
		interior := r.pendingInterior(grp.path)
		if len(interior) == 0 {
			continue
		}
		thr, err := r.pathThreshold(interior)
		if err != nil {
			return accepted, err
		}
		if grp.support < thr {
			continue
		}
		if !r.hasBudget(interior) {
			continue // copies exhausted by better-supported paths
		}

		if err := r.separatePath(ctx, grp.path, grp.segment, acceptable); err != nil {
			if errors.Is(err, ErrInconsistentMultiplicity) {
				continue // localized: edge tagged, diagnostic recorded
			}
			return accepted, err
		}
		accepted++
	}
	return accepted, nil
}

// accumulateSupport credits each connection to the repeat edges it spans.
// Support accumulates across iterations; pruning keys off persistent zero.
func (r *Resolver) accumulateSupport(conns []Connection) {
	for _, c := range conns {
		for _, id := range c.Path.Interior() {
			edge, err := r.graph.Edge(id)
			if err != nil {
				continue
			}
			if edge.State == graph.EdgeRepeatPending {
				edge.Support++
			}
		}
	}
}

// groupByPath buckets connections by distinct path, preserving first
// discovery order.
func (r *Resolver) groupByPath(conns []Connection) []*pathGroup {
	byKey := make(map[string]*pathGroup)
	var ordered []*pathGroup
	for _, c := range conns {
		key := c.Path.Key()
		grp, ok := byKey[key]
		if !ok {
			grp = &pathGroup{path: c.Path, first: c.order, segment: c.Read}
			byKey[key] = grp
			ordered = append(ordered, grp)
		}
		grp.support++
	}
	return ordered
}

// pendingInterior returns the repeat-pending edges strictly inside p.
func (r *Resolver) pendingInterior(p graph.Path) []graph.EdgeID {
	var out []graph.EdgeID
	for _, id := range p.Interior() {
		edge, err := r.graph.Edge(id)
		if err != nil {
			continue
		}
		if edge.State == graph.EdgeRepeatPending {
			out = append(out, id)
		}
	}
	return out
}

// pathThreshold returns the acceptance threshold for a path: the strictest
// estimator threshold across the repeat edges it traverses. The exact
// mapping from estimator confidence to threshold is the estimator's
// business; the resolver only compares counts.
func (r *Resolver) pathThreshold(interior []graph.EdgeID) (int, error) {
	thr := 1
	for _, e := range interior {
		est, err := r.estimator.Estimate(e)
		if err != nil {
			return 0, fmt.Errorf("estimate edge %d: %w", e, err)
		}
		if est.SupportThreshold > thr {
			thr = est.SupportThreshold
		}
	}
	return thr, nil
}

// hasBudget reports whether every edge still has an unconsumed copy.
func (r *Resolver) hasBudget(interior []graph.EdgeID) bool {
	for _, e := range interior {
		edge, err := r.graph.Edge(e)
		if err != nil || edge.Multiplicity < 1 {
			return false
		}
	}
	return true
}
