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
	"sync"

	"github.com/google/uuid"
)

// Registry is a writable overlay on top of a read-only Store.
//
// Resolution never mutates the underlying stores, but separating a repeat
// copy needs a home for the duplicated bytes: Materialize mints a fresh
// identifier for them. Lookups check the overlay first, then fall through
// to the base store, so downstream consumers can read original and
// separated sequence through one Store.
type Registry struct {
	base Store

	mu    sync.RWMutex
	extra map[ID][]byte
}

// NewRegistry creates a registry over base. A nil base is allowed; lookups
// then resolve against materialized sequence only.
func NewRegistry(base Store) *Registry {
	return &Registry{
		base:  base,
		extra: make(map[ID][]byte),
	}
}

// Materialize stores a copy of data under a fresh identifier and returns it.
// Identifiers are unique across the process lifetime.
func (r *Registry) Materialize(data []byte) ID {
	cp := make([]byte, len(data))
	copy(cp, data)

	id := ID("sep_" + uuid.NewString())
	r.mu.Lock()
	r.extra[id] = cp
	r.mu.Unlock()
	return id
}

// MaterializeSegment resolves seg against the registry (overlay plus base)
// and stores the referenced bytes under a fresh identifier.
func (r *Registry) MaterializeSegment(ctx context.Context, seg Segment) (ID, error) {
	data, err := r.Slice(ctx, seg)
	if err != nil {
		return "", fmt.Errorf("materialize %s: %w", seg, err)
	}
	return r.Materialize(data), nil
}

// Sequence returns the bytes stored under id, overlay first.
func (r *Registry) Sequence(ctx context.Context, id ID) ([]byte, error) {
	r.mu.RLock()
	data, ok := r.extra[id]
	r.mu.RUnlock()
	if ok {
		out := make([]byte, len(data))
		copy(out, data)
		return out, nil
	}
	if r.base == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return r.base.Sequence(ctx, id)
}

// Length returns the length of the sequence stored under id, overlay first.
func (r *Registry) Length(ctx context.Context, id ID) (int, error) {
	r.mu.RLock()
	data, ok := r.extra[id]
	r.mu.RUnlock()
	if ok {
		return len(data), nil
	}
	if r.base == nil {
		return 0, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return r.base.Length(ctx, id)
}

// Slice returns a copy of the bytes referenced by seg, overlay first.
func (r *Registry) Slice(ctx context.Context, seg Segment) ([]byte, error) {
	r.mu.RLock()
	data, ok := r.extra[seg.ID]
	r.mu.RUnlock()
	if ok {
		return sliceOf(data, seg)
	}
	if r.base == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, seg.ID)
	}
	out, err := r.base.Slice(ctx, seg)
	if err != nil && errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, seg.ID)
	}
	return out, err
}

// Minted reports whether id was materialized by this registry, as opposed
// to living in the base store.
func (r *Registry) Minted(id ID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.extra[id]
	return ok
}

// Materialized returns the number of sequences minted by this registry.
func (r *Registry) Materialized() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.extra)
}
