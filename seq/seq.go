// Copyright (C) 2026 Strandworks Bio (dev@strandworks.bio)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package seq provides read-only sequence storage and segment references.
//
// A Store resolves opaque identifiers to nucleotide sequence. Two corpora are
// kept in separate stores by convention: assembled segments and raw reads.
// A Segment is a cheap reference (identifier + offsets) into a store; it never
// copies the underlying bytes. Segments become invalid only if the referenced
// identifier is removed from the store, which must not happen while resolution
// is running — stores are read-only from the resolver's perspective.
//
// # Thread Safety
//
// All Store implementations in this package are safe for concurrent reads.
// MemStore and Registry writes (Put, Materialize) are internally locked but
// callers must not interleave them with a resolution pass that reads the
// same identifiers.
package seq

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors for sequence lookup.
var (
	// ErrNotFound is returned when an identifier is not present in the store.
	ErrNotFound = errors.New("sequence not found")

	// ErrBadSegment is returned when a segment's offsets fall outside the
	// referenced sequence, or Start > End.
	ErrBadSegment = errors.New("segment out of range")
)

// ID is an opaque handle to a stored sequence. It carries no ownership of
// the underlying data.
type ID string

// Segment references the half-open range [Start, End) of a stored sequence.
type Segment struct {
	ID    ID
	Start int
	End   int
}

// Len returns the number of bases the segment spans.
func (s Segment) Len() int {
	return s.End - s.Start
}

// String returns a compact representation for logging.
func (s Segment) String() string {
	return fmt.Sprintf("%s[%d:%d]", string(s.ID), s.Start, s.End)
}

// Store is read-only lookup of sequence content by identifier.
type Store interface {
	// Sequence returns the full bytes stored under id.
	Sequence(ctx context.Context, id ID) ([]byte, error)

	// Length returns the length of the sequence stored under id.
	Length(ctx context.Context, id ID) (int, error)

	// Slice returns the bytes referenced by seg. The returned slice is a copy
	// and may be retained by the caller.
	Slice(ctx context.Context, seg Segment) ([]byte, error)
}

// sliceOf bounds-checks seg against data and copies the referenced range.
func sliceOf(data []byte, seg Segment) ([]byte, error) {
	if seg.Start < 0 || seg.End > len(data) || seg.Start > seg.End {
		return nil, fmt.Errorf("%w: %s against length %d", ErrBadSegment, seg, len(data))
	}
	out := make([]byte, seg.Len())
	copy(out, data[seg.Start:seg.End])
	return out, nil
}
