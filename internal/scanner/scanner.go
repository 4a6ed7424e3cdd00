// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

// Package scanner finds delimiters inside a rope.Rope without ever
// requiring the caller to materialize the whole unread region first.
// It plays the role the Rust original's helpers::parser module plays
// (look_for_delimiter, look_for_crlf), generalized to byte slices of
// any length and adapted to operate on rope.Rope's cursor instead of
// its own outstanding-buffer bookkeeping.
package scanner

import (
	"github.com/coreproto/httpreq/internal/herr"
	"github.com/coreproto/httpreq/internal/rope"
)

var (
	crlf       = []byte{'\r', '\n'}
	doubleCRLF = []byte{'\r', '\n', '\r', '\n'}
)

// Find scans forward from r's read cursor for the first occurrence of
// delim. On a match it returns the bytes strictly before the
// delimiter, advances the cursor past the delimiter, and reports true.
// If delim does not yet appear in the unread region, it returns
// (nil, false) and leaves the cursor untouched — the caller should
// wait for more input and retry.
func Find(r *rope.Rope, delim []byte) ([]byte, bool) {
	dl := len(delim)
	avail := r.Unread()
	if avail < dl {
		return nil, false
	}
	limit := avail - dl
	for i := 0; i <= limit; i++ {
		matched := true
		for j := 0; j < dl; j++ {
			b, _ := r.PeekAt(i + j)
			if b != delim[j] {
				matched = false
				break
			}
		}
		if matched {
			prefix, _ := r.CopyRange(i)
			r.Advance(i + dl)
			return prefix, true
		}
	}
	return nil, false
}

// FindCRLF finds the next CRLF-terminated line.
func FindCRLF(r *rope.Rope) ([]byte, bool) { return Find(r, crlf) }

// FindDoubleCRLF finds the blank line that ends a header block.
func FindDoubleCRLF(r *rope.Rope) ([]byte, bool) { return Find(r, doubleCRLF) }

// SkipInitialCRLF consumes leading CRLF pairs (and lone LFs, tolerated
// the way a lenient server tolerates a stray newline between
// pipelined requests) from r's read cursor until a byte that is
// neither CR nor LF becomes visible, or input runs out.
//
// It returns (true, nil) once such a byte is visible — the caller may
// proceed to the request-line phase. It returns (false, nil) if input
// ran out before that could be determined; the caller should wait for
// more bytes. A CR not followed by LF is a protocol error.
func SkipInitialCRLF(r *rope.Rope) (bool, error) {
	for {
		b, ok := r.PeekAt(0)
		if !ok {
			return false, nil
		}
		switch b {
		case '\r':
			nb, ok := r.PeekAt(1)
			if !ok {
				return false, nil
			}
			if nb != '\n' {
				return false, herr.New(herr.InvalidCRLF, "")
			}
			r.Advance(2)
		case '\n':
			r.Advance(1)
		default:
			return true, nil
		}
	}
}
