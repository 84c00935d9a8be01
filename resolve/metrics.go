// Copyright (C) 2026 Strandworks Bio (dev@strandworks.bio)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package resolve

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Package-level tracer and meter for resolution operations.
var (
	tracer = otel.Tracer("ravel.resolve")
	meter  = otel.Meter("ravel.resolve")
)

// Metrics for resolution runs.
var (
	resolveLatency  metric.Float64Histogram
	iterationsRun   metric.Int64Histogram
	pathsSeparated  metric.Int64Counter
	edgesPruned     metric.Int64Counter
	edgesRetained   metric.Int64Counter
	connectionsSeen metric.Int64Histogram

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		resolveLatency, err = meter.Float64Histogram(
			"resolve_duration_seconds",
			metric.WithDescription("Duration of full resolution runs"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		iterationsRun, err = meter.Int64Histogram(
			"resolve_iterations",
			metric.WithDescription("Iterations needed per resolution run"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		pathsSeparated, err = meter.Int64Counter(
			"resolve_paths_separated_total",
			metric.WithDescription("Total repeat traversal paths separated"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		edgesPruned, err = meter.Int64Counter(
			"resolve_edges_pruned_total",
			metric.WithDescription("Total unsupported repeat edges removed"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		edgesRetained, err = meter.Int64Counter(
			"resolve_edges_retained_total",
			metric.WithDescription("Total repeat edges retained as unresolved"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		connectionsSeen, err = meter.Int64Histogram(
			"resolve_connections_per_iteration",
			metric.WithDescription("Spanning connections collected per iteration"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// recordRun records metrics for one completed resolution run.
func recordRun(ctx context.Context, start time.Time, iterations int, converged bool) {
	if initMetrics() != nil {
		return
	}
	attrs := metric.WithAttributes(attribute.Bool("converged", converged))
	resolveLatency.Record(ctx, time.Since(start).Seconds(), attrs)
	iterationsRun.Record(ctx, int64(iterations), attrs)
}

// recordIteration records metrics for one resolution iteration.
func recordIteration(ctx context.Context, connections, separated, pruned int) {
	if initMetrics() != nil {
		return
	}
	connectionsSeen.Record(ctx, int64(connections))
	if separated > 0 {
		pathsSeparated.Add(ctx, int64(separated))
	}
	if pruned > 0 {
		edgesPruned.Add(ctx, int64(pruned))
	}
}

// recordRetained counts an edge parked as unresolved.
func recordRetained(ctx context.Context, reason string) {
	if initMetrics() != nil {
		return
	}
	edgesRetained.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}
