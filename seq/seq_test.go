// Copyright (C) 2026 Strandworks Bio (dev@strandworks.bio)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package seq

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	store.Put("contig_1", []byte("ACGTACGT"))

	data, err := store.Sequence(ctx, "contig_1")
	require.NoError(t, err)
	assert.Equal(t, []byte("ACGTACGT"), data)

	n, err := store.Length(ctx, "contig_1")
	require.NoError(t, err)
	assert.Equal(t, 8, n)

	slice, err := store.Slice(ctx, Segment{ID: "contig_1", Start: 2, End: 6})
	require.NoError(t, err)
	assert.Equal(t, []byte("GTAC"), slice)
}

func TestMemStore_NotFound(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()

	_, err := store.Sequence(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.Slice(ctx, Segment{ID: "missing", Start: 0, End: 1})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemStore_BadSegment(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	store.Put("read_1", []byte("ACGT"))

	cases := []Segment{
		{ID: "read_1", Start: -1, End: 2},
		{ID: "read_1", Start: 0, End: 5},
		{ID: "read_1", Start: 3, End: 2},
	}
	for _, seg := range cases {
		_, err := store.Slice(ctx, seg)
		assert.ErrorIs(t, err, ErrBadSegment, "segment %s", seg)
	}
}

func TestMemStore_SliceIsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	store.Put("read_1", []byte("ACGT"))

	slice, err := store.Slice(ctx, Segment{ID: "read_1", Start: 0, End: 4})
	require.NoError(t, err)
	slice[0] = 'T'

	again, err := store.Sequence(ctx, "read_1")
	require.NoError(t, err)
	assert.Equal(t, []byte("ACGT"), again)
}

func TestRegistry_MaterializeMintsFreshIDs(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(nil)

	a := reg.Materialize([]byte("AAAA"))
	b := reg.Materialize([]byte("AAAA"))
	assert.NotEqual(t, a, b, "identical content must still get distinct identifiers")
	assert.Equal(t, 2, reg.Materialized())

	data, err := reg.Sequence(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, []byte("AAAA"), data)
}

func TestRegistry_FallsThroughToBase(t *testing.T) {
	ctx := context.Background()
	base := NewMemStore()
	base.Put("read_7", []byte("ACGTACGTAC"))
	reg := NewRegistry(base)

	n, err := reg.Length(ctx, "read_7")
	require.NoError(t, err)
	assert.Equal(t, 10, n)

	id, err := reg.MaterializeSegment(ctx, Segment{ID: "read_7", Start: 2, End: 8})
	require.NoError(t, err)

	data, err := reg.Sequence(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []byte("GTACGT"), data)

	// Base store is untouched.
	assert.Equal(t, 1, base.Len())
}

func TestRegistry_MaterializeSegmentMissing(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(NewMemStore())

	_, err := reg.MaterializeSegment(ctx, Segment{ID: "nope", Start: 0, End: 4})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBadgerStore_InMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := OpenBadger(InMemoryBadgerConfig())
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Put("contig_9", []byte("TTAGGGTTAGGG")))

	data, err := store.Sequence(ctx, "contig_9")
	require.NoError(t, err)
	assert.Equal(t, []byte("TTAGGGTTAGGG"), data)

	n, err := store.Length(ctx, "contig_9")
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	slice, err := store.Slice(ctx, Segment{ID: "contig_9", Start: 6, End: 12})
	require.NoError(t, err)
	assert.Equal(t, []byte("TTAGGG"), slice)

	_, err = store.Sequence(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBadgerStore_RequiresPath(t *testing.T) {
	_, err := OpenBadger(BadgerConfig{})
	assert.Error(t, err)
}
