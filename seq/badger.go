// Copyright (C) 2026 Strandworks Bio (dev@strandworks.bio)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package seq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for store traffic. Read corpora for a mammalian
// assembly run into the hundreds of gigabytes, so lookup volume is worth
// watching.
var (
	storeLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ravel_seqstore_lookups_total",
		Help: "Total sequence store lookups by result",
	}, []string{"result"})

	storeBytesRead = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ravel_seqstore_bytes_read_total",
		Help: "Total bytes read from the sequence store",
	})
)

// BadgerConfig holds configuration for a badger-backed sequence store.
type BadgerConfig struct {
	// Path is the directory for database files.
	// Required unless InMemory is true.
	Path string

	// InMemory enables in-memory mode (no disk persistence).
	// Useful for testing.
	InMemory bool

	// SyncWrites enables synchronous writes during ingest.
	// Default: false; the store is write-once, read-many.
	SyncWrites bool

	// Logger is the logger for database operations.
	// If nil, badger's internal logging is disabled.
	Logger *slog.Logger
}

// DefaultBadgerConfig returns defaults for an on-disk store.
func DefaultBadgerConfig(path string) BadgerConfig {
	return BadgerConfig{Path: path}
}

// InMemoryBadgerConfig returns configuration for tests.
func InMemoryBadgerConfig() BadgerConfig {
	return BadgerConfig{InMemory: true}
}

// badgerLogger adapts slog.Logger to badger's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// BadgerStore is a persistent Store backed by BadgerDB.
//
// Sequence bytes are stored verbatim under their identifier. The store is
// populated once by the owning pipeline (Put) and read-only during
// resolution, matching the Store contract.
//
// Thread Safety: safe for concurrent use.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadger creates and opens a badger-backed store.
//
// Description:
//
//	Opens a BadgerDB database at the configured path, or in memory if
//	InMemory is true. Creates the directory if it doesn't exist.
//
// Inputs:
//
//	cfg - Store configuration. Path is required unless InMemory is true.
//
// Outputs:
//
//	*BadgerStore - The opened store. Caller must call Close() when done.
//	error - Non-nil if path is invalid or the database cannot be opened.
func OpenBadger(cfg BadgerConfig) (*BadgerStore, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent store")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create store directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}

	opts = opts.WithSyncWrites(cfg.SyncWrites)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open sequence store: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// Close releases the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// Put stores data under id. Ingest only; not part of the Store interface.
func (s *BadgerStore) Put(id ID, data []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(id), data)
	})
}

// Sequence returns the full bytes stored under id.
func (s *BadgerStore) Sequence(ctx context.Context, id ID) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(id))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		storeLookups.WithLabelValues("miss").Inc()
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		storeLookups.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("read sequence %s: %w", id, err)
	}
	storeLookups.WithLabelValues("hit").Inc()
	storeBytesRead.Add(float64(len(out)))
	return out, nil
}

// Length returns the length of the sequence stored under id.
func (s *BadgerStore) Length(ctx context.Context, id ID) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var n int
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(id))
		if err != nil {
			return err
		}
		n = int(item.ValueSize())
		return nil
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		storeLookups.WithLabelValues("miss").Inc()
		return 0, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		storeLookups.WithLabelValues("error").Inc()
		return 0, fmt.Errorf("read sequence length %s: %w", id, err)
	}
	storeLookups.WithLabelValues("hit").Inc()
	return n, nil
}

// Slice returns a copy of the bytes referenced by seg.
func (s *BadgerStore) Slice(ctx context.Context, seg Segment) ([]byte, error) {
	data, err := s.Sequence(ctx, seg.ID)
	if err != nil {
		return nil, err
	}
	return sliceOf(data, seg)
}
