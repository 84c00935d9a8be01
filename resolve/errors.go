// Copyright (C) 2026 Strandworks Bio (dev@strandworks.bio)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package resolve disambiguates repeated regions of a repeat graph using
// long-read evidence.
//
// The resolver marks candidate repeat edges from multiplicity estimates,
// then iterates to a fixed point: collect read connections spanning repeats,
// score distinct traversal paths, accept well-supported non-conflicting
// paths by rewriting the graph, and prune edges with persistent zero
// support. The loop converges when an iteration accepts no separations and
// removes no edges; a bounded iteration cap guards liveness.
//
// # Collaborators
//
// The read aligner and multiplicity estimator are injected capabilities:
// Aligner answers which reads traverse a repeat edge and how, and
// MultiplicityEstimator supplies expected copy numbers with acceptance
// thresholds. Sequence stores are read-only; bytes for newly separated
// edges are minted through a seq.Registry overlay.
//
// # Thread Safety
//
// A Resolver is single-writer: FindRepeats and ResolveRepeats must not run
// concurrently with each other or with any other graph mutator. Connection
// extraction parallelizes aligner queries internally, with all results
// collected behind a barrier before any acceptance decision.
package resolve

import "errors"

// Sentinel errors for resolution.
var (
	// ErrInconsistentMultiplicity is reported when a separation would consume
	// more copies than an edge has remaining. Fatal for that edge only; the
	// edge is retained as unresolved and resolution continues elsewhere.
	ErrInconsistentMultiplicity = errors.New("multiplicity inconsistency")

	// ErrMissingDependency is returned by NewResolver when a required
	// collaborator is nil.
	ErrMissingDependency = errors.New("missing resolver dependency")
)
