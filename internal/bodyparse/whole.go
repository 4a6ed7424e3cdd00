// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

// Package bodyparse implements the two BodyParser variants: Whole, for
// a Content-Length-framed body, and Chunked, for a chunked-coding body.
// The variant names are preserved from the Rust original's
// request_body.rs (RequestBody::Whole / RequestBody::Chunked) since
// they survived unchanged across every iteration kept in the retrieval
// pack.
package bodyparse

import "github.com/coreproto/httpreq/internal/rope"

// Whole watches a shared rope for N bytes to accumulate past the read
// cursor. It owns no bytes itself; the assembler copies them out of
// the shared rope once Ready reports true.
type Whole struct {
	N int
}

// NewWhole returns a Whole body parser expecting exactly n bytes.
func NewWhole(n int) *Whole { return &Whole{N: n} }

// Ready reports whether r has accumulated at least N unread bytes.
func (w *Whole) Ready(r *rope.Rope) bool {
	return r.Unread() >= w.N
}
