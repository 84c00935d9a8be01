// Copyright (C) 2026 Strandworks Bio (dev@strandworks.bio)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package pipeline

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/strandworks/ravel/graph"
)

// EdgeResult is one live edge of the resolved graph.
type EdgeResult struct {
	ID                   int    `yaml:"id"`
	From                 int    `yaml:"from"`
	To                   int    `yaml:"to"`
	State                string `yaml:"state"`
	Multiplicity         int    `yaml:"multiplicity"`
	OriginalMultiplicity int    `yaml:"original_multiplicity"`
	SeparatedCopies      int    `yaml:"separated_copies"`
	Support              int    `yaml:"support"`
	Sequence             string `yaml:"sequence"`
	Start                int    `yaml:"start"`
	End                  int    `yaml:"end"`
}

// DiagnosticResult records an edge retired with an unrecoverable
// inconsistency.
type DiagnosticResult struct {
	Edge      int    `yaml:"edge"`
	Iteration int    `yaml:"iteration"`
	Error     string `yaml:"error"`
}

// Result is the output handed back to the assembler: the resolved graph,
// sequences minted during separation, and any retained inconsistencies.
type Result struct {
	Nodes       int                `yaml:"nodes"`
	Edges       []EdgeResult       `yaml:"edges"`
	Sequences   map[string]string  `yaml:"sequences,omitempty"`
	Diagnostics []DiagnosticResult `yaml:"diagnostics,omitempty"`
}

// Result snapshots the resolved graph. Edges appear in ascending handle
// order; minted sequences are inlined so the assembler needs no access to
// this process's store.
func (r *Runner) Result(ctx context.Context) (*Result, error) {
	registry := r.resolver.Registry()

	res := &Result{Nodes: r.graph.NodeCount()}
	for _, id := range r.graph.Edges() {
		e, err := r.graph.Edge(id)
		if err != nil {
			return nil, err
		}
		res.Edges = append(res.Edges, EdgeResult{
			ID:                   int(e.ID),
			From:                 int(e.From),
			To:                   int(e.To),
			State:                e.State.String(),
			Multiplicity:         e.Multiplicity,
			OriginalMultiplicity: e.OriginalMultiplicity,
			SeparatedCopies:      e.SeparatedCopies,
			Support:              e.Support,
			Sequence:             string(e.Segment.ID),
			Start:                e.Segment.Start,
			End:                  e.Segment.End,
		})

		// Separated edges carry freshly minted sequence identifiers the
		// assembler has never seen. Inline their bytes. A repeat fully
		// consumed in place keeps its original identifier and is skipped.
		if e.State != graph.EdgeSeparated || !registry.Minted(e.Segment.ID) {
			continue
		}
		data, err := registry.Sequence(ctx, e.Segment.ID)
		if err != nil {
			return nil, err
		}
		if res.Sequences == nil {
			res.Sequences = make(map[string]string)
		}
		res.Sequences[string(e.Segment.ID)] = string(data)
	}

	for _, d := range r.resolver.Diagnostics() {
		res.Diagnostics = append(res.Diagnostics, DiagnosticResult{
			Edge:      int(d.Edge),
			Iteration: d.Iteration,
			Error:     d.Err.Error(),
		})
	}
	return res, nil
}

// WriteResult encodes the result as YAML at path.
func (r *Runner) WriteResult(ctx context.Context, path string) error {
	res, err := r.Result(ctx)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}
