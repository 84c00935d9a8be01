// Copyright (C) 2026 Strandworks Bio (dev@strandworks.bio)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package validation provides input validation for externally supplied
// identifiers.
//
// Dump files arrive from an external process and their identifiers end up
// in store keys and output files. Validating them up front prevents path
// traversal through crafted identifiers and catches corrupted dumps early.
package validation

import (
	"fmt"
	"regexp"
)

// seqIDPattern matches sequence identifiers as emitted by assemblers:
// FASTA-style names of letters, digits, underscores, dots, hyphens.
// Max length 256 covers every real naming scheme we have seen.
var seqIDPattern = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_.\-]{0,255}$`)

// ValidateSeqID validates a sequence identifier from an external dump.
//
// Valid identifiers:
//   - 1-256 characters
//   - letters, digits, underscores
//   - dots and hyphens after the first character
//
// Returns an error naming the offending identifier otherwise.
func ValidateSeqID(id string) error {
	if id == "" {
		return fmt.Errorf("sequence identifier is empty")
	}
	if len(id) > 256 {
		return fmt.Errorf("sequence identifier too long (%d chars, max 256)", len(id))
	}
	if !seqIDPattern.MatchString(id) {
		return fmt.Errorf("invalid sequence identifier %q", id)
	}
	return nil
}
