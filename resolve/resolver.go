// Copyright (C) 2026 Strandworks Bio (dev@strandworks.bio)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package resolve

import (
	"context"
	"log/slog"
	"runtime"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/strandworks/ravel/graph"
	"github.com/strandworks/ravel/seq"
)

// Default resolver configuration values.
const (
	// DefaultMaxIterations bounds the fixed-point loop. The cap is a
	// liveness guard against oscillating support, not an expected terminal
	// condition; well-behaved inputs converge in a handful of iterations.
	DefaultMaxIterations = 10

	// DefaultMinConfidence is the estimator confidence below which a
	// zero-support repeat edge is considered spurious and eligible for
	// pruning.
	DefaultMinConfidence = 0.1

	// maxExtractionWorkers caps parallel aligner queries regardless of CPU
	// count.
	maxExtractionWorkers = 8
)

// Estimate is a multiplicity estimator's answer for one edge.
type Estimate struct {
	// Multiplicity is the expected copy number.
	Multiplicity int

	// SupportThreshold is the minimum number of spanning connections a
	// distinct path must gather before it is accepted through this edge.
	SupportThreshold int

	// Confidence is the estimator's confidence in the estimate, in [0, 1].
	Confidence float64
}

// MultiplicityEstimator supplies expected copy numbers for edges.
//
// Implementations are read-only shared resources during resolution and must
// be safe for concurrent calls.
type MultiplicityEstimator interface {
	Estimate(edge graph.EdgeID) (Estimate, error)
}

// ReadAlignment is one read's traversal through the graph as reported by
// the aligner: the traversed path and the spanning range on the read.
type ReadAlignment struct {
	Read      seq.ID
	Path      graph.Path
	SpanStart int
	SpanEnd   int
}

// Aligner answers which reads traverse a repeat edge and how.
//
// A read that aligns plausibly to several distinct paths must be reported
// with one ReadAlignment per candidate path; the resolver discards such
// reads as ambiguous. Implementations must be safe for concurrent calls:
// extraction queries edges in parallel.
type Aligner interface {
	EdgeAlignments(ctx context.Context, edge graph.EdgeID) ([]ReadAlignment, error)
}

// Diagnostic reports a multiplicity inconsistency encountered during a run.
// Inconsistencies are fatal for the offending edge only.
type Diagnostic struct {
	Edge      graph.EdgeID
	Iteration int
	Err       error
}

// Options configures Resolver behavior.
type Options struct {
	// MaxIterations is the fixed-point loop bound. Default: 10.
	MaxIterations int

	// WorkerCount is the number of parallel aligner queries during
	// connection extraction. Default: min(NumCPU, 8).
	WorkerCount int

	// MinConfidence is the pruning confidence floor. Default: 0.1.
	MinConfidence float64

	// Logger receives structured progress logs. Default: slog.Default().
	Logger *slog.Logger
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{
		MaxIterations: DefaultMaxIterations,
		WorkerCount:   min(runtime.NumCPU(), maxExtractionWorkers),
		MinConfidence: DefaultMinConfidence,
	}
}

// Option is a functional option for configuring Resolver.
type Option func(*Options)

// WithMaxIterations sets the fixed-point loop bound.
func WithMaxIterations(n int) Option {
	return func(o *Options) {
		o.MaxIterations = n
	}
}

// WithWorkerCount sets the number of parallel aligner queries.
func WithWorkerCount(n int) Option {
	return func(o *Options) {
		o.WorkerCount = n
	}
}

// WithMinConfidence sets the pruning confidence floor.
func WithMinConfidence(c float64) Option {
	return func(o *Options) {
		o.MinConfidence = c
	}
}

// WithLogger sets the logger for progress logs.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

// Resolver orchestrates repeat detection, evidence collection, conflict
// resolution, and graph rewriting.
//
// The graph is mutated in place across the run. The aligner, estimator and
// read store are externally owned and read-only from the resolver's
// perspective; bytes for separated edges are minted into an internal
// seq.Registry reachable via Registry().
type Resolver struct {
	graph     *graph.Graph
	reads     seq.Store
	registry  *seq.Registry
	aligner   Aligner
	estimator MultiplicityEstimator

	options Options
	logger  *slog.Logger

	// pending tracks edges awaiting resolution. Detection fills it,
	// extraction reads it, cleanup drains entries whose edge left the
	// repeat-pending state.
	pending map[graph.EdgeID]struct{}

	iteration int
	diags     []Diagnostic
}

// NewResolver creates a resolver over g.
//
// Inputs:
//
//	g - The repeat graph to resolve. Mutated in place.
//	reads - Read-only store holding raw read sequence.
//	aligner - Read-to-graph alignment capability.
//	estimator - Edge copy-number estimation capability.
//	opts - Optional configuration.
//
// Outputs:
//
//	*Resolver - Ready to run FindRepeats and ResolveRepeats.
//	error - ErrMissingDependency if any collaborator is nil.
func NewResolver(g *graph.Graph, reads seq.Store, aligner Aligner, estimator MultiplicityEstimator, opts ...Option) (*Resolver, error) {
	if g == nil || reads == nil || aligner == nil || estimator == nil {
		return nil, ErrMissingDependency
	}

	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	if options.MaxIterations < 1 {
		options.MaxIterations = DefaultMaxIterations
	}
	if options.WorkerCount < 1 {
		options.WorkerCount = 1
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Resolver{
		graph:     g,
		reads:     reads,
		registry:  seq.NewRegistry(reads),
		aligner:   aligner,
		estimator: estimator,
		options:   options,
		logger:    logger,
		pending:   make(map[graph.EdgeID]struct{}),
	}, nil
}

// Registry exposes the overlay store holding sequence minted for separated
// edges, layered over the read store.
func (r *Resolver) Registry() *seq.Registry {
	return r.registry
}

// Diagnostics returns the multiplicity inconsistencies recorded so far.
func (r *Resolver) Diagnostics() []Diagnostic {
	return slices.Clone(r.diags)
}

// ResolveRepeats runs the iterative fixed-point resolution loop.
//
// Description:
//
//	Each iteration collects spanning connections, resolves them (scoring,
//	greedy acceptance, graph rewriting), clears bookkeeping on resolved
//	edges, and prunes repeat edges with persistent zero support. The loop
//	ends when an iteration accepts zero separations and performs zero
//	removals, or when the iteration cap is hit.
//
//	The outcome is observed through the final graph state; multiplicity
//	inconsistencies are available from Diagnostics().
//
// Thread Safety: NOT safe for concurrent use; exclusive, non-reentrant.
func (r *Resolver) ResolveRepeats(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "resolve.ResolveRepeats")
	defer span.End()
	start := time.Now()

	converged := false
	iterations := 0
	for iter := 1; iter <= r.options.MaxIterations; iter++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.iteration = iter
		iterations = iter

		conns, err := r.collectConnections(ctx)
		if err != nil {
			return err
		}

		separated, err := r.resolveConnections(ctx, conns)
		if err != nil {
			return err
		}

		r.clearResolvedRepeats()
		pruned := r.removeUnsupportedEdges(ctx)

		recordIteration(ctx, len(conns), separated, pruned)
		r.logger.Info("resolution iteration",
			"iteration", iter,
			"connections", len(conns),
			"separated", separated,
			"pruned", pruned,
			"pending", len(r.pending))

		if separated == 0 && pruned == 0 {
			converged = true
			break
		}
	}

	span.SetAttributes(
		attribute.Int("iterations", iterations),
		attribute.Bool("converged", converged),
	)
	recordRun(ctx, start, iterations, converged)

	if !converged {
		r.logger.Warn("iteration cap reached before convergence",
			"cap", r.options.MaxIterations,
			"pending", len(r.pending))
	}
	return nil
}

// pendingEdges returns the pending set in ascending handle order, the
// canonical order for deterministic extraction and pruning.
func (r *Resolver) pendingEdges() []graph.EdgeID {
	out := make([]graph.EdgeID, 0, len(r.pending))
	for e := range r.pending {
		out = append(out, e)
	}
	slices.Sort(out)
	return out
}
