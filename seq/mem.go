// Copyright (C) 2026 Strandworks Bio (dev@strandworks.bio)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package seq

import (
	"context"
	"fmt"
	"sync"
)

// MemStore is an in-memory Store. It is the backing used by the pipeline
// loader for inline sequence dumps and by tests.
type MemStore struct {
	mu   sync.RWMutex
	data map[ID][]byte
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{data: make(map[ID][]byte)}
}

// Put stores data under id, replacing any previous value. The store keeps
// its own copy of the bytes.
func (m *MemStore) Put(id ID, data []byte) {
	cp := make([]byte, len(data))
	copy(cp, data)
	m.mu.Lock()
	m.data[id] = cp
	m.mu.Unlock()
}

// Sequence returns the full bytes stored under id.
func (m *MemStore) Sequence(_ context.Context, id ID) ([]byte, error) {
	m.mu.RLock()
	data, ok := m.data[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Length returns the length of the sequence stored under id.
func (m *MemStore) Length(_ context.Context, id ID) (int, error) {
	m.mu.RLock()
	data, ok := m.data[id]
	m.mu.RUnlock()
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return len(data), nil
}

// Slice returns a copy of the bytes referenced by seg.
func (m *MemStore) Slice(_ context.Context, seg Segment) ([]byte, error) {
	m.mu.RLock()
	data, ok := m.data[seg.ID]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, seg.ID)
	}
	return sliceOf(data, seg)
}

// Len returns the number of stored sequences.
func (m *MemStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
