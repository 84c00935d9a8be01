// Copyright (C) 2026 Strandworks Bio (dev@strandworks.bio)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package graph

import (
	"fmt"
	"strconv"
	"strings"
)

// Path is an ordered traversal through consecutive edges, connecting the
// source junction of its first edge to the target junction of its last.
type Path []EdgeID

// Key returns a canonical string for grouping identical traversals.
func (p Path) Key() string {
	var b strings.Builder
	for i, e := range p {
		if i > 0 {
			b.WriteByte('-')
		}
		b.WriteString(strconv.Itoa(int(e)))
	}
	return b.String()
}

// Interior returns the edges strictly between the two flanks.
func (p Path) Interior() Path {
	if len(p) < 2 {
		return nil
	}
	return p[1 : len(p)-1]
}

// Validate checks that every edge of p is live and that consecutive edges
// share a junction.
func (g *Graph) Validate(p Path) error {
	if len(p) == 0 {
		return fmt.Errorf("%w: empty", ErrBadPath)
	}
	for i, e := range p {
		if !g.edgeAlive(e) {
			return fmt.Errorf("%w: edge %d not live", ErrBadPath, e)
		}
		if i > 0 && g.edges[p[i-1]].To != g.edges[e].From {
			return fmt.Errorf("%w: edges %d and %d not adjacent", ErrBadPath, p[i-1], e)
		}
	}
	return nil
}

// PathLength returns the total sequence length along p. The path must be
// valid.
func (g *Graph) PathLength(p Path) int {
	total := 0
	for _, e := range p {
		total += g.edges[e].Length
	}
	return total
}
