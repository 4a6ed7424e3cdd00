// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

// Package httpreq is the public surface of the push-fed HTTP/1.1
// request engine: feed it bytes as they arrive off the wire, and it
// hands back a complete Request once one has been assembled, without
// ever needing the whole message buffered up front.
//
// The state machine is a direct generalization of
// intuitivelabs/httpsp's ParseMsg (parse_msg.go): a top-level switch
// over phases, each phase consuming as much of the shared byte rope as
// it can before either advancing to the next phase or reporting that
// more input is needed. Where the teacher's ParseMsg is "whole buffer
// in, offset out", this one is "fragment in, phase-progress out" —
// the same state identity, restructured for a caller that cannot
// promise the whole message arrives at once.
package httpreq

import (
	"bytes"

	"github.com/coreproto/httpreq/internal/bodyparse"
	"github.com/coreproto/httpreq/internal/grammar"
	"github.com/coreproto/httpreq/internal/headers"
	"github.com/coreproto/httpreq/internal/herr"
	"github.com/coreproto/httpreq/internal/rope"
	"github.com/coreproto/httpreq/internal/scanner"
)

// Progress reports what Feed accomplished during one call.
type Progress uint8

const (
	// NeedMore: the assembler consumed what it could and is waiting
	// for more bytes.
	NeedMore Progress = iota
	// Complete: a Request is fully assembled; Build may be called.
	Complete
)

type phase uint8

const (
	phasePreamble phase = iota
	phaseRequestLine
	phaseHeaders
	phaseBody
	phaseComplete
	phaseErrored
)

// Assembler is the incremental request-line-plus-headers-plus-body
// state machine. The zero value is not usable; construct one with
// NewAssembler.
type Assembler struct {
	buf   rope.Rope
	phase phase

	method  Method
	target  []byte
	headers headers.Set

	bodyKind BodyKind
	whole    *bodyparse.Whole
	chunked  *bodyparse.Chunked
	body     Body

	err     error
	built   bool
}

// NewAssembler returns a fresh Assembler ready to parse one request
// (and, via TakeRemaining, to seed the next pipelined one).
func NewAssembler() *Assembler {
	return &Assembler{phase: phasePreamble}
}

// Feed appends p to the assembler's internal rope and drives the
// state machine as far forward as the accumulated bytes allow. p is
// copied; the caller's buffer may be reused immediately after Feed
// returns.
//
// Once the assembler has entered an error state, every subsequent
// Feed call returns that same error without consuming p.
func (a *Assembler) Feed(p []byte) (Progress, error) {
	if a.phase == phaseErrored {
		return NeedMore, a.err
	}
	if len(p) > 0 {
		owned := make([]byte, len(p))
		copy(owned, p)
		a.buf.Push(owned)
	}
	return a.drive()
}

// CanParseMore reports whether the assembler is still able to make
// progress, i.e. it has neither completed nor errored.
func (a *Assembler) CanParseMore() bool {
	return a.phase != phaseComplete && a.phase != phaseErrored
}

// Build returns the assembled Request once the assembler has reached
// Complete. It may be called only once: a successful Build consumes
// the assembler, and a second call reports RequestNotParsed just as
// calling Build before completion does.
func (a *Assembler) Build() (*Request, error) {
	if a.phase != phaseComplete || a.built {
		return nil, herr.New(herr.RequestNotParsed, "")
	}
	a.built = true
	return &Request{
		Method:  a.method,
		Target:  a.target,
		Version: Version,
		Headers: a.headers,
		Body:    a.body,
	}, nil
}

// TakeRemaining returns the bytes left in the assembler's rope past
// the completed request's end, and empties the rope. It is how a
// server hands a completed assembler's unconsumed trailing bytes to
// the assembler for the next pipelined request.
func (a *Assembler) TakeRemaining() []byte {
	return a.buf.TakeRemaining()
}

func (a *Assembler) fail(err error) (Progress, error) {
	a.phase = phaseErrored
	a.err = err
	return NeedMore, err
}

func (a *Assembler) drive() (Progress, error) {
	for {
		switch a.phase {
		case phasePreamble:
			ok, err := scanner.SkipInitialCRLF(&a.buf)
			if err != nil {
				return a.fail(err)
			}
			if !ok {
				return NeedMore, nil
			}
			a.phase = phaseRequestLine

		case phaseRequestLine:
			line, ok := scanner.FindCRLF(&a.buf)
			if !ok {
				return NeedMore, nil
			}
			if err := a.parseRequestLine(line); err != nil {
				return a.fail(err)
			}
			a.phase = phaseHeaders

		case phaseHeaders:
			// The request-line's own CRLF is already consumed, so a
			// CRLF right here is an empty header section, which
			// FindDoubleCRLF alone cannot see.
			b0, ok0 := a.buf.PeekAt(0)
			b1, ok1 := a.buf.PeekAt(1)
			if !ok0 || (b0 == '\r' && !ok1) {
				return NeedMore, nil
			}
			var block []byte
			if b0 == '\r' && b1 == '\n' {
				a.buf.Advance(2)
			} else {
				var ok bool
				block, ok = scanner.FindDoubleCRLF(&a.buf)
				if !ok {
					return NeedMore, nil
				}
			}
			set, err := headers.ParseBlock(block)
			if err != nil {
				return a.fail(err)
			}
			a.headers = set
			a.buf.Prune()
			a.phase = phaseBody

		case phaseBody:
			prog, err := a.driveBody()
			if err != nil {
				return a.fail(err)
			}
			return prog, nil

		case phaseComplete:
			return Complete, nil

		case phaseErrored:
			return NeedMore, a.err
		}
	}
}

func (a *Assembler) parseRequestLine(line []byte) error {
	fields := bytes.Split(line, []byte{' '})
	if len(fields) != 3 {
		return herr.New(herr.InvalidRequestLine, string(line))
	}
	methodField, targetField, versionField := fields[0], fields[1], fields[2]

	if !grammar.IsToken(methodField) {
		return herr.New(herr.InvalidTokenChar, string(methodField))
	}
	if len(targetField) == 0 {
		return herr.New(herr.InvalidRequestLine, "empty request-target")
	}

	lowerVersion := string(grammar.LowerASCII(versionField))
	if lowerVersion != "http/1.1" {
		return herr.New(herr.InvalidHTTPVersion, lowerVersion)
	}

	lowerMethod := grammar.LowerASCII(methodField)
	a.method = Method{Known: resolveMethod(methodField), Raw: string(lowerMethod)}
	a.target = append([]byte(nil), targetField...)
	return nil
}

// driveBody selects the body framing on first entry, then asks the
// selected BodyParser whether it has accumulated a complete body yet.
func (a *Assembler) driveBody() (Progress, error) {
	if a.whole == nil && a.chunked == nil && a.bodyKind == BodyNone {
		te, hasTE := a.headers.TransferEncoding()
		cl, hasCL := a.headers.ContentLength()
		switch {
		case hasTE:
			if !te.IsChunkedLast() {
				return NeedMore, herr.New(herr.NoChunkedCoding, "")
			}
			a.chunked = bodyparse.NewChunked()
			a.bodyKind = BodyChunked
		case hasCL:
			a.whole = bodyparse.NewWhole(int(cl.Bytes))
			a.bodyKind = BodyWhole
		default:
			a.body = Body{Kind: BodyNone}
			a.phase = phaseComplete
			return Complete, nil
		}
	}

	switch a.bodyKind {
	case BodyWhole:
		if !a.whole.Ready(&a.buf) {
			return NeedMore, nil
		}
		data, _ := a.buf.CopyRange(a.whole.N)
		a.buf.Advance(a.whole.N)
		a.body = Body{Kind: BodyWhole, Rope: rope.FromBytes(data)}
		a.phase = phaseComplete
		return Complete, nil

	case BodyChunked:
		done, err := a.chunked.Feed(&a.buf)
		if err != nil {
			return NeedMore, err
		}
		if !done {
			return NeedMore, nil
		}
		a.body = Body{Kind: BodyChunked, Rope: a.chunked.Output()}
		a.phase = phaseComplete
		return Complete, nil
	}
	return NeedMore, nil
}
