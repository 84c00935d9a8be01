// Copyright (C) 2026 Strandworks Bio (dev@strandworks.bio)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package config provides configuration loading for the repeat resolver.
//
// Settings that the core deliberately does not hard-code — the iteration
// cap, extraction parallelism, the pruning confidence floor, and an optional
// override of the estimator's support threshold — are loaded from YAML.
//
// Thread Safety:
//
//	Load returns a fresh Config per call; Config values are plain data and
//	safe to share read-only.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	// MaxYAMLFileSize is the maximum allowed configuration file size (1MB).
	// Prevents memory issues from malformed or hostile files.
	MaxYAMLFileSize = 1024 * 1024

	// DefaultMaxIterations bounds the resolution loop.
	DefaultMaxIterations = 10

	// DefaultWorkerCount of 0 lets the resolver pick from CPU count.
	DefaultWorkerCount = 0

	// DefaultMinConfidence is the pruning confidence floor.
	DefaultMinConfidence = 0.1
)

// Sentinel errors for configuration loading.
var (
	// ErrFileTooLarge is returned when the config file exceeds MaxYAMLFileSize.
	ErrFileTooLarge = errors.New("config file too large")

	// ErrInvalidConfig is returned when a loaded config fails validation.
	ErrInvalidConfig = errors.New("invalid config")
)

// Config holds resolver settings.
type Config struct {
	// MaxIterations bounds the fixed-point resolution loop.
	MaxIterations int `yaml:"max_iterations"`

	// WorkerCount is the parallelism of connection extraction.
	// 0 means derive from CPU count.
	WorkerCount int `yaml:"worker_count"`

	// MinConfidence is the estimator confidence below which zero-support
	// repeat edges are pruned.
	MinConfidence float64 `yaml:"min_confidence"`

	// SupportThreshold, when positive, overrides the estimator's per-edge
	// acceptance threshold. The mapping from estimator confidence to a
	// threshold is not fixed by the estimator interface, so deployments can
	// pin it here.
	SupportThreshold int `yaml:"support_threshold"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		MaxIterations: DefaultMaxIterations,
		WorkerCount:   DefaultWorkerCount,
		MinConfidence: DefaultMinConfidence,
	}
}

// Load reads and validates configuration from a YAML file.
//
// Missing keys keep their defaults. Returns ErrFileTooLarge for oversized
// files and ErrInvalidConfig (wrapped with detail) for out-of-range values.
func Load(path string) (Config, error) {
	cfg := Default()

	info, err := os.Stat(path)
	if err != nil {
		return cfg, fmt.Errorf("stat config: %w", err)
	}
	if info.Size() > MaxYAMLFileSize {
		return cfg, fmt.Errorf("%w: %d bytes", ErrFileTooLarge, info.Size())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.MaxIterations < 1 {
		return fmt.Errorf("%w: max_iterations must be >= 1, got %d", ErrInvalidConfig, c.MaxIterations)
	}
	if c.WorkerCount < 0 {
		return fmt.Errorf("%w: worker_count must be >= 0, got %d", ErrInvalidConfig, c.WorkerCount)
	}
	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		return fmt.Errorf("%w: min_confidence must be in [0, 1], got %g", ErrInvalidConfig, c.MinConfidence)
	}
	if c.SupportThreshold < 0 {
		return fmt.Errorf("%w: support_threshold must be >= 0, got %d", ErrInvalidConfig, c.SupportThreshold)
	}
	return nil
}
