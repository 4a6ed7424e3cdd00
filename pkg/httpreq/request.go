// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package httpreq

import (
	"github.com/coreproto/httpreq/internal/headers"
	"github.com/coreproto/httpreq/internal/rope"
)

// Version is the only HTTP version this engine accepts; any
// request-line version field that does not fold to this is a parse
// error before a Request is ever produced.
const Version = "HTTP/1.1"

// BodyKind identifies which framing, if any, a completed request's
// body used.
type BodyKind uint8

const (
	// BodyNone: no Content-Length, no Transfer-Encoding. The request
	// has no body.
	BodyNone BodyKind = iota
	// BodyWhole: the body was framed by Content-Length.
	BodyWhole
	// BodyChunked: the body was framed by a chunked Transfer-Encoding.
	BodyChunked
)

// Body is the assembled request body. Rope is nil when Kind is
// BodyNone; otherwise it holds exactly the decoded payload bytes
// (chunk framing and trailers already stripped for BodyChunked).
type Body struct {
	Kind BodyKind
	Rope *rope.Rope
}

// Bytes returns the body's decoded payload, or nil if there is none.
func (b Body) Bytes() []byte {
	if b.Rope == nil {
		return nil
	}
	return b.Rope.Bytes()
}

// Request is one fully parsed HTTP/1.1 request: method, request-target
// (opaque, unvalidated beyond non-empty), the fixed HTTP/1.1 version,
// the parsed header set, and the assembled body.
type Request struct {
	Method  Method
	Target  []byte
	Version string
	Headers headers.Set
	Body    Body
}
