// Copyright (C) 2026 Strandworks Bio (dev@strandworks.bio)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package pipeline connects the repeat resolver to the owning assembler.
//
// The surrounding pipeline hands over its state as a YAML dump: the graph
// (junction count plus edge records), read alignments, a per-edge coverage
// table, and optionally inline sequences. JSON dumps parse through the same
// loader, JSON being a YAML subset. This package decodes the dump,
// wires up the sequence store, a table-driven aligner and estimator, runs
// detection and resolution, and encodes the resolved graph back out.
//
// Edges are referenced by their position in the dump's edge list, which is
// also their graph handle: the graph assigns handles sequentially.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/strandworks/ravel/config"
	"github.com/strandworks/ravel/graph"
	"github.com/strandworks/ravel/pkg/validation"
	"github.com/strandworks/ravel/resolve"
	"github.com/strandworks/ravel/seq"
)

// MaxDumpFileSize caps dump files (256MB). Inline sequences dominate; real
// deployments keep reads in a badger store and stay far below this.
const MaxDumpFileSize = 256 * 1024 * 1024

// Sentinel errors for dump handling.
var (
	// ErrDumpTooLarge is returned when a dump file exceeds MaxDumpFileSize.
	ErrDumpTooLarge = errors.New("dump file too large")

	// ErrBadDump is returned when a dump fails structural validation.
	ErrBadDump = errors.New("invalid dump")
)

// EdgeRecord is one edge of the input graph.
type EdgeRecord struct {
	From         int    `yaml:"from"`
	To           int    `yaml:"to"`
	Sequence     string `yaml:"sequence"`
	Start        int    `yaml:"start"`
	End          int    `yaml:"end"`
	Multiplicity int    `yaml:"multiplicity"`
}

// GraphRecord is the input graph: a junction count and edge records.
type GraphRecord struct {
	Nodes int          `yaml:"nodes"`
	Edges []EdgeRecord `yaml:"edges"`
}

// AlignmentRecord is one read traversal reported by the upstream aligner.
type AlignmentRecord struct {
	Read      string `yaml:"read"`
	Path      []int  `yaml:"path"`
	SpanStart int    `yaml:"span_start"`
	SpanEnd   int    `yaml:"span_end"`
}

// CoverageRecord is one edge's multiplicity estimate.
type CoverageRecord struct {
	Edge             int     `yaml:"edge"`
	Multiplicity     int     `yaml:"multiplicity"`
	SupportThreshold int     `yaml:"support_threshold"`
	Confidence       float64 `yaml:"confidence"`
}

// Dump is the full input handed over by the assembler.
type Dump struct {
	// Sequences holds inline sequence bytes by identifier. Optional when an
	// external store is supplied to NewRunner.
	Sequences map[string]string `yaml:"sequences"`

	Graph      GraphRecord       `yaml:"graph"`
	Alignments []AlignmentRecord `yaml:"alignments"`
	Coverage   []CoverageRecord  `yaml:"coverage"`
}

// LoadDump reads and validates a dump file.
func LoadDump(path string) (*Dump, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat dump: %w", err)
	}
	if info.Size() > MaxDumpFileSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrDumpTooLarge, info.Size())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dump: %w", err)
	}
	var d Dump
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parse dump: %w", err)
	}
	if err := d.validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

func (d *Dump) validate() error {
	if d.Graph.Nodes < 0 {
		return fmt.Errorf("%w: negative node count", ErrBadDump)
	}
	for id := range d.Sequences {
		if err := validation.ValidateSeqID(id); err != nil {
			return fmt.Errorf("%w: %v", ErrBadDump, err)
		}
	}
	for i, e := range d.Graph.Edges {
		if e.From < 0 || e.From >= d.Graph.Nodes || e.To < 0 || e.To >= d.Graph.Nodes {
			return fmt.Errorf("%w: edge %d endpoints out of range", ErrBadDump, i)
		}
		if err := validation.ValidateSeqID(e.Sequence); err != nil {
			return fmt.Errorf("%w: edge %d: %v", ErrBadDump, i, err)
		}
		if e.Multiplicity < 1 {
			return fmt.Errorf("%w: edge %d multiplicity %d", ErrBadDump, i, e.Multiplicity)
		}
		if e.Start < 0 || e.End < e.Start {
			return fmt.Errorf("%w: edge %d segment range", ErrBadDump, i)
		}
	}
	for i, a := range d.Alignments {
		if err := validation.ValidateSeqID(a.Read); err != nil {
			return fmt.Errorf("%w: alignment %d: %v", ErrBadDump, i, err)
		}
		for _, e := range a.Path {
			if e < 0 || e >= len(d.Graph.Edges) {
				return fmt.Errorf("%w: alignment %d references edge %d", ErrBadDump, i, e)
			}
		}
	}
	for i, c := range d.Coverage {
		if c.Edge < 0 || c.Edge >= len(d.Graph.Edges) {
			return fmt.Errorf("%w: coverage %d references edge %d", ErrBadDump, i, c.Edge)
		}
	}
	return nil
}

// tableAligner serves dump alignments: a query for an edge returns every
// recorded traversal whose path crosses it.
type tableAligner struct {
	byEdge map[graph.EdgeID][]resolve.ReadAlignment
}

func newTableAligner(records []AlignmentRecord) *tableAligner {
	a := &tableAligner{byEdge: make(map[graph.EdgeID][]resolve.ReadAlignment)}
	for _, rec := range records {
		path := make(graph.Path, len(rec.Path))
		for i, e := range rec.Path {
			path[i] = graph.EdgeID(e)
		}
		aln := resolve.ReadAlignment{
			Read:      seq.ID(rec.Read),
			Path:      path,
			SpanStart: rec.SpanStart,
			SpanEnd:   rec.SpanEnd,
		}
		seen := make(map[graph.EdgeID]bool, len(path))
		for _, e := range path {
			if seen[e] {
				continue
			}
			seen[e] = true
			a.byEdge[e] = append(a.byEdge[e], aln)
		}
	}
	return a
}

func (a *tableAligner) EdgeAlignments(_ context.Context, e graph.EdgeID) ([]resolve.ReadAlignment, error) {
	return a.byEdge[e], nil
}

// tableEstimator serves the dump's coverage table. Edges without a record
// default to a confident single copy. A positive threshold override pins
// the acceptance threshold regardless of the table.
type tableEstimator struct {
	byEdge   map[graph.EdgeID]resolve.Estimate
	override int
}

func newTableEstimator(records []CoverageRecord, override int) *tableEstimator {
	t := &tableEstimator{
		byEdge:   make(map[graph.EdgeID]resolve.Estimate, len(records)),
		override: override,
	}
	for _, rec := range records {
		t.byEdge[graph.EdgeID(rec.Edge)] = resolve.Estimate{
			Multiplicity:     rec.Multiplicity,
			SupportThreshold: rec.SupportThreshold,
			Confidence:       rec.Confidence,
		}
	}
	return t
}

func (t *tableEstimator) Estimate(e graph.EdgeID) (resolve.Estimate, error) {
	est, ok := t.byEdge[e]
	if !ok {
		est = resolve.Estimate{Multiplicity: 1, SupportThreshold: 1, Confidence: 1}
	}
	if t.override > 0 {
		est.SupportThreshold = t.override
	}
	return est, nil
}

// Runner owns one resolution run over a decoded dump.
type Runner struct {
	graph    *graph.Graph
	resolver *resolve.Resolver
	logger   *slog.Logger
}

// NewRunner builds the graph and collaborators from a dump.
//
// Inputs:
//
//	dump - Decoded assembler state. Required.
//	cfg - Resolver settings.
//	store - Sequence store for read/contig bytes. May be nil; the dump's
//	        inline sequences are used then.
//	logger - Structured logger. May be nil.
func NewRunner(dump *Dump, cfg config.Config, store seq.Store, logger *slog.Logger) (*Runner, error) {
	if dump == nil {
		return nil, fmt.Errorf("%w: nil dump", ErrBadDump)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	if store == nil {
		mem := seq.NewMemStore()
		for id, data := range dump.Sequences {
			mem.Put(seq.ID(id), []byte(data))
		}
		store = mem
	}

	g := graph.New()
	for i := 0; i < dump.Graph.Nodes; i++ {
		g.AddNode()
	}
	for i, rec := range dump.Graph.Edges {
		segment := seq.Segment{ID: seq.ID(rec.Sequence), Start: rec.Start, End: rec.End}
		if _, err := g.AddEdge(graph.NodeID(rec.From), graph.NodeID(rec.To), segment, segment.Len(), rec.Multiplicity); err != nil {
			return nil, fmt.Errorf("build edge %d: %w", i, err)
		}
	}

	opts := []resolve.Option{
		resolve.WithMaxIterations(cfg.MaxIterations),
		resolve.WithMinConfidence(cfg.MinConfidence),
		resolve.WithLogger(logger),
	}
	if cfg.WorkerCount > 0 {
		opts = append(opts, resolve.WithWorkerCount(cfg.WorkerCount))
	}

	resolver, err := resolve.NewResolver(
		g,
		store,
		newTableAligner(dump.Alignments),
		newTableEstimator(dump.Coverage, cfg.SupportThreshold),
		opts...,
	)
	if err != nil {
		return nil, err
	}

	return &Runner{graph: g, resolver: resolver, logger: logger}, nil
}

// Graph exposes the graph under resolution.
func (r *Runner) Graph() *graph.Graph {
	return r.graph
}

// Run executes detection followed by resolution.
func (r *Runner) Run(ctx context.Context) error {
	if err := r.resolver.FindRepeats(ctx); err != nil {
		return fmt.Errorf("repeat detection: %w", err)
	}
	if err := r.resolver.ResolveRepeats(ctx); err != nil {
		return fmt.Errorf("repeat resolution: %w", err)
	}
	for _, d := range r.resolver.Diagnostics() {
		r.logger.Warn("unresolved inconsistency",
			"edge", int(d.Edge),
			"iteration", d.Iteration,
			"error", d.Err)
	}
	return nil
}
