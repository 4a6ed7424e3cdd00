// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package bodyparse

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/coreproto/httpreq/internal/herr"
	"github.com/coreproto/httpreq/internal/rope"
	"github.com/coreproto/httpreq/internal/scanner"
)

type chunkState uint8

const (
	awaitChunkHeader chunkState = iota
	awaitChunkData
	awaitChunkTerminator
	awaitTrailerOrEnd
	chunkDone
)

// Chunked decodes a chunked-coding body straight off the shared rope,
// accumulating the decoded payload (chunk data only, framing and
// trailers stripped) into an output rope of its own. Grounded on
// intuitivelabs/httpsp's parse_chunk.go state split (sCnkParse /
// sCnkPTrailer), expanded into the explicit AwaitChunkHeader /
// AwaitChunkData / AwaitChunkTerminator / AwaitTrailerOrEnd states.
type Chunked struct {
	state chunkState
	size  int64
	out   rope.Rope
}

// NewChunked returns a fresh Chunked body parser.
func NewChunked() *Chunked { return &Chunked{} }

// Feed drives the chunk decoder as far as r's unread bytes allow. It
// returns (true, nil) once the terminating zero-size chunk and its
// trailer section (if any) have been consumed.
func (c *Chunked) Feed(r *rope.Rope) (bool, error) {
	for {
		switch c.state {
		case awaitChunkHeader:
			line, ok := scanner.FindCRLF(r)
			if !ok {
				return false, nil
			}
			size, err := parseChunkSizeLine(line)
			if err != nil {
				return false, err
			}
			c.size = size
			if size == 0 {
				c.state = awaitTrailerOrEnd
			} else {
				c.state = awaitChunkData
			}
		case awaitChunkData:
			data, ok := r.CopyRange(int(c.size))
			if !ok {
				return false, nil
			}
			r.Advance(int(c.size))
			c.out.Push(data)
			c.state = awaitChunkTerminator
		case awaitChunkTerminator:
			b0, ok0 := r.PeekAt(0)
			b1, ok1 := r.PeekAt(1)
			if !ok0 || !ok1 {
				return false, nil
			}
			if b0 != '\r' || b1 != '\n' {
				return false, herr.New(herr.InvalidCRLF, "")
			}
			r.Advance(2)
			c.state = awaitChunkHeader
		case awaitTrailerOrEnd:
			line, ok := scanner.FindCRLF(r)
			if !ok {
				return false, nil
			}
			if len(line) == 0 {
				c.state = chunkDone
				return true, nil
			}
			// A trailer field line; this engine does not promote
			// trailers into Request.Headers, so it is only validated
			// syntactically by being a CRLF-terminated line at all,
			// then discarded.
		case chunkDone:
			return true, nil
		}
	}
}

// Output returns the decoded payload accumulated so far.
func (c *Chunked) Output() *rope.Rope { return &c.out }

// parseChunkSizeLine decodes a chunk-size line: a hex size, optionally
// followed by ";"-delimited chunk extensions which are accepted
// syntactically and otherwise ignored.
func parseChunkSizeLine(line []byte) (int64, error) {
	if !utf8.Valid(line) {
		return 0, herr.New(herr.InvalidUTF8String, string(line))
	}
	s := string(line)
	sizeField := s
	if i := strings.IndexByte(s, ';'); i >= 0 {
		sizeField = s[:i]
	}
	sizeField = strings.TrimSpace(sizeField)
	n, err := strconv.ParseInt(sizeField, 16, 64)
	if err != nil || n < 0 {
		return 0, herr.New(herr.ParseIntError, sizeField)
	}
	return n, nil
}
