// Copyright (C) 2026 Strandworks Bio (dev@strandworks.bio)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package graph provides the mutable repeat graph being resolved.
//
// The graph is a directed multigraph: nodes are junctions (identity plus
// incident-edge lists, no other payload), edges are assembled sequence
// segments tagged with multiplicity and a resolution state. Nodes and edges
// live in arenas addressed by stable integer handles; adjacency is kept as
// index lists. Mutation primitives update arena entries and adjacency tables
// together, so each operation leaves the graph consistent.
//
// # Ownership Model
//
// Edges reference sequence through seq.Segment values and never own the
// underlying bytes. Removing an edge does not touch any sequence store.
//
// # Thread Safety
//
// Graph is NOT safe for concurrent mutation. It is designed for single-writer
// access: the resolution driver performs one exclusive pass at a time.
// Concurrent reads are safe between mutations.
package graph

import "errors"

// Sentinel errors for graph operations.
var (
	// ErrNodeNotFound is returned when a node handle does not identify a
	// live node.
	ErrNodeNotFound = errors.New("node not found")

	// ErrEdgeNotFound is returned when an edge handle does not identify a
	// live edge.
	ErrEdgeNotFound = errors.New("edge not found")

	// ErrUnsafeRemoval is returned when deleting an edge would drop a
	// previously connected junction to degree zero. The caller retains the
	// edge instead.
	ErrUnsafeRemoval = errors.New("removal would isolate a junction")

	// ErrMultiplicityExhausted is returned when consuming a copy of an edge
	// whose remaining multiplicity is already zero. It signals upstream
	// inconsistency: scoring accepted more paths than the edge has copies.
	ErrMultiplicityExhausted = errors.New("multiplicity exhausted")

	// ErrBadPath is returned when a path's edges are not live or not
	// connected end to end.
	ErrBadPath = errors.New("invalid path")
)
