// Copyright (C) 2026 Strandworks Bio (dev@strandworks.bio)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Command ravel resolves repeats in an assembly graph.
//
// It consumes a YAML dump produced by the owning assembler (graph, read
// alignments, coverage table, inline sequences), runs repeat detection and
// iterative resolution, and writes the resolved graph back out.
//
// # Usage
//
//	# Resolve with defaults
//	ravel resolve --graph dump.yaml --out resolved.yaml
//
//	# With a settings file and an on-disk sequence store
//	ravel resolve --graph dump.yaml --out resolved.yaml \
//	    --config ravel.yaml --store-dir /data/seqdb
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/strandworks/ravel/config"
	"github.com/strandworks/ravel/pipeline"
	"github.com/strandworks/ravel/pkg/logging"
	"github.com/strandworks/ravel/seq"
)

var (
	rootCmd = &cobra.Command{
		Use:   "ravel",
		Short: "Resolve repeats in an assembly graph using long-read evidence",
		Long: `Ravel disambiguates repeated edges of an assembly graph by tracing
reads that span a repeat from unique flank to unique flank, separating
well-supported traversals into dedicated copies.`,
	}

	resolveCmd = &cobra.Command{
		Use:   "resolve",
		Short: "Run repeat resolution over an assembler dump",
		Long: `Reads a graph dump (graph, alignments, coverage, sequences), runs
repeat detection followed by iterative resolution, and writes the
resolved graph as YAML.`,
		Run: runResolve,
	}

	graphPath  string
	outPath    string
	configPath string
	storeDir   string
	logDir     string
	verbose    bool
)

func init() {
	resolveCmd.Flags().StringVar(&graphPath, "graph", "", "Path to the assembler dump (required)")
	resolveCmd.Flags().StringVar(&outPath, "out", "", "Path for the resolved graph (required)")
	resolveCmd.Flags().StringVar(&configPath, "config", "", "Optional resolver settings file")
	resolveCmd.Flags().StringVar(&storeDir, "store-dir", "", "Optional badger sequence store directory; inline dump sequences are used when unset")
	resolveCmd.Flags().StringVar(&logDir, "log-dir", "", "Optional directory for JSON log files")
	resolveCmd.Flags().BoolVar(&verbose, "verbose", false, "Enable debug logging")
	_ = resolveCmd.MarkFlagRequired("graph")
	_ = resolveCmd.MarkFlagRequired("out")

	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) {
	level := logging.LevelInfo
	if verbose {
		level = logging.LevelDebug
	}
	appLog := logging.New(logging.Config{Level: level, LogDir: logDir, Service: "ravel"})
	defer appLog.Close()
	logger := appLog.Slog()

	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}

	dump, err := pipeline.LoadDump(graphPath)
	if err != nil {
		log.Fatalf("Failed to load dump: %v", err)
	}

	var store seq.Store
	if storeDir != "" {
		badgerStore, err := seq.OpenBadger(seq.BadgerConfig{Path: storeDir, Logger: logger})
		if err != nil {
			log.Fatalf("Failed to open sequence store: %v", err)
		}
		defer badgerStore.Close()
		store = badgerStore
	}

	runner, err := pipeline.NewRunner(dump, cfg, store, logger)
	if err != nil {
		log.Fatalf("Failed to initialize resolver: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting repeat resolution",
		"edges", len(dump.Graph.Edges),
		"alignments", len(dump.Alignments),
		"max_iterations", cfg.MaxIterations,
	)

	if err := runner.Run(ctx); err != nil {
		log.Fatalf("Resolution failed: %v", err)
	}
	if err := runner.WriteResult(ctx, outPath); err != nil {
		log.Fatalf("Failed to write result: %v", err)
	}

	logger.Info("Resolution complete", "output", outPath)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
