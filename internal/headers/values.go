// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package headers

import (
	"strconv"
	"strings"

	"github.com/coreproto/httpreq/internal/grammar"
	"github.com/coreproto/httpreq/internal/herr"
)

// Value is the tagged-union header value: every recognised header
// parses into one of the concrete types below, and every other header
// parses into Extension. The unexported marker method seals the set
// of implementers the way a Rust enum seals its variants.
type Value interface {
	headerValue()
}

// ContentLength is the decoded decimal value of a Content-Length
// header.
type ContentLength struct {
	Bytes uint64
}

func (ContentLength) headerValue() {}

// Coding is one element of a Transfer-Encoding value list:
// either the literal "chunked" coding or an arbitrary extension token.
type Coding struct {
	Chunked bool
	Name    string // lower-cased; empty when Chunked is true
}

// TransferEncoding is the ordered, comma-split list of codings from a
// Transfer-Encoding header.
type TransferEncoding struct {
	Codings []Coding
}

func (TransferEncoding) headerValue() {}

// IsChunkedLast reports whether the final coding in the list is
// "chunked", the only configuration this engine accepts for a framed
// body (RFC 7230 §3.3.3 requires chunked to be the last coding
// applied, and forbids reconstructing content-codings).
func (t TransferEncoding) IsChunkedLast() bool {
	if len(t.Codings) == 0 {
		return false
	}
	return t.Codings[len(t.Codings)-1].Chunked
}

// Trailer is the comma-split list of header field names a chunked
// message declares it will send as trailer fields.
type Trailer struct {
	Names []string
}

func (Trailer) headerValue() {}

// Upgrade is the comma-split list of protocol tokens offered by an
// Upgrade header. It plays no role in body framing; it exists purely
// for a caller to inspect before deciding whether to hand the
// connection to a different protocol handler.
type Upgrade struct {
	Protocols []string
}

func (Upgrade) headerValue() {}

// Extension is any header this catalog does not recognise, carried
// as its raw (collapsed-whitespace) value string.
type Extension struct {
	Raw string
}

func (Extension) headerValue() {}

// Set maps lower-cased header field names to their parsed Value.
// Duplicate field names within a header block overwrite: the last
// occurrence wins.
type Set map[string]Value

// Get returns the value stored for name, folded to lower case.
func (s Set) Get(name string) (Value, bool) {
	v, ok := s[strings.ToLower(name)]
	return v, ok
}

// ContentLength returns the decoded Content-Length value, if present.
func (s Set) ContentLength() (ContentLength, bool) {
	v, ok := s["content-length"]
	if !ok {
		return ContentLength{}, false
	}
	cl, ok := v.(ContentLength)
	return cl, ok
}

// TransferEncoding returns the parsed Transfer-Encoding value, if
// present.
func (s Set) TransferEncoding() (TransferEncoding, bool) {
	v, ok := s["transfer-encoding"]
	if !ok {
		return TransferEncoding{}, false
	}
	te, ok := v.(TransferEncoding)
	return te, ok
}

// Trailer returns the parsed Trailer value, if present.
func (s Set) Trailer() (Trailer, bool) {
	v, ok := s["trailer"]
	if !ok {
		return Trailer{}, false
	}
	tr, ok := v.(Trailer)
	return tr, ok
}

// Upgrade returns the parsed Upgrade value, if present.
func (s Set) Upgrade() (Upgrade, bool) {
	v, ok := s["upgrade"]
	if !ok {
		return Upgrade{}, false
	}
	u, ok := v.(Upgrade)
	return u, ok
}

// ParseBlock parses a header block (the bytes scanner.FindDoubleCRLF
// returns, i.e. with the trailing blank line already stripped) into a
// Set. Lines are split on CRLF; a line beginning with SP or HT is
// obsolete line folding and is rejected rather than joined to the
// previous line.
func ParseBlock(block []byte) (Set, error) {
	set := make(Set)
	if len(block) == 0 {
		return set, nil
	}
	lines := strings.Split(string(block), "\r\n")
	for _, line := range lines {
		if line == "" {
			continue
		}
		if line[0] == ' ' || line[0] == '\t' {
			return nil, herr.New(herr.InvalidHeaderFormat, line)
		}
		colon := strings.IndexByte(line, ':')
		if colon < 0 {
			return nil, herr.New(herr.InvalidHeaderFormat, line)
		}
		rawName := line[:colon]
		if !grammar.IsToken([]byte(rawName)) {
			return nil, herr.New(herr.InvalidHeaderField, rawName)
		}
		value, err := collapseValue(line[colon+1:])
		if err != nil {
			return nil, err
		}
		if value == "" {
			continue
		}
		name := strings.ToLower(rawName)
		v, err := buildValue(name, value)
		if err != nil {
			return nil, err
		}
		set[name] = v
	}
	return set, nil
}

// collapseValue trims leading/trailing OWS and collapses every
// internal run of SP/HT into a single space, then validates every
// remaining byte is a VCHAR or that single space.
func collapseValue(raw string) (string, error) {
	b := []byte(raw)
	start := 0
	for start < len(b) && grammar.IsSPOrHTab(b[start]) {
		start++
	}
	end := len(b)
	for end > start && grammar.IsSPOrHTab(b[end-1]) {
		end--
	}
	b = b[start:end]

	out := make([]byte, 0, len(b))
	inWS := false
	for _, c := range b {
		if grammar.IsSPOrHTab(c) {
			inWS = true
			continue
		}
		if inWS {
			out = append(out, ' ')
			inWS = false
		}
		out = append(out, c)
	}
	for _, c := range out {
		if !grammar.IsVisibleOrSP(c) {
			return "", herr.New(herr.InvalidHeaderFieldValue, string(out))
		}
	}
	return string(out), nil
}

func buildValue(name, value string) (Value, error) {
	switch resolve([]byte(name)) {
	case ContentLengthT:
		n, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return nil, herr.New(herr.InvalidContentLengthValue, value)
		}
		return ContentLength{Bytes: n}, nil
	case TransferEncodingT:
		return TransferEncoding{Codings: parseCodings(value)}, nil
	case TrailerT:
		names := splitCSV(value)
		for _, n := range names {
			if !grammar.IsToken([]byte(n)) {
				return nil, herr.New(herr.InvalidHeaderField, n)
			}
		}
		return Trailer{Names: names}, nil
	case UpgradeT:
		return Upgrade{Protocols: splitCSV(value)}, nil
	default:
		return Extension{Raw: value}, nil
	}
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

func parseCodings(value string) []Coding {
	parts := splitCSV(value)
	out := make([]Coding, 0, len(parts))
	for _, p := range parts {
		lower := strings.ToLower(p)
		if lower == "chunked" {
			out = append(out, Coding{Chunked: true})
		} else {
			out = append(out, Coding{Name: lower})
		}
	}
	return out
}
