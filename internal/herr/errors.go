// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

// Package herr defines the error kinds the parser can report. It
// plays the role the teacher's ErrorHdr constants play in
// intuitivelabs/httpsp (ErrHdrOk, ErrHdrMoreBytes, ErrHdrBadChar, ...),
// except that "need more bytes" is not an error here: it is a normal
// NeedMore return, not a Kind, since the parser is push-fed rather than
// buffer-complete.
package herr

import "fmt"

// Kind identifies the category of parse failure.
type Kind uint8

const (
	// NewLine: a bare LF was expected to close a CRLF pair but the
	// preceding byte was not CR, or vice versa.
	NewLine Kind = iota
	// Token: a token-char predicate failed with no further context
	// worth carrying.
	Token
	// InvalidTokenChar: a token-char predicate failed on a request-line
	// token; Context carries the raw offending field.
	InvalidTokenChar
	// InvalidURI: reserved for future request-target structural checks;
	// unused by this engine, which treats the target as opaque.
	InvalidURI
	// InvalidRequestLine: the request-line did not split into exactly
	// three SP-delimited fields, or the request-target was empty.
	InvalidRequestLine
	// InvalidHTTPVersion: the version field was not "http/1.1"
	// case-insensitively; Context carries the lower-cased field.
	InvalidHTTPVersion
	// InvalidCRLF: a CR was not followed by LF where one was required.
	InvalidCRLF
	// InvalidHeaderFormat: a header line had no colon, or started with
	// whitespace (obsolete line folding, rejected).
	InvalidHeaderFormat
	// InvalidHeaderField: the header name was not a valid token;
	// Context carries the raw (possibly space-containing) name.
	InvalidHeaderField
	// InvalidHeaderFieldValue: the collapsed header value contained a
	// byte that is neither VCHAR nor SP.
	InvalidHeaderFieldValue
	// InvalidContentLengthValue: the Content-Length value was not a
	// valid non-negative decimal integer.
	InvalidContentLengthValue
	// NoChunkedCoding: a Transfer-Encoding header was present whose
	// final coding was not "chunked".
	NoChunkedCoding
	// InvalidUTF8String: a chunk-size line was not valid UTF-8.
	InvalidUTF8String
	// ParseIntError: a chunk-size line's hex field did not parse.
	ParseIntError
	// RequestNotParsed: Build was called before the assembler reached
	// Complete, or was called a second time after a successful Build.
	RequestNotParsed
	// Bug: an invariant the parser relies on was violated internally;
	// should never be observed.
	Bug
)

var kindNames = [...]string{
	NewLine:                   "NewLine",
	Token:                     "Token",
	InvalidTokenChar:          "InvalidTokenChar",
	InvalidURI:                "InvalidURI",
	InvalidRequestLine:        "InvalidRequestLine",
	InvalidHTTPVersion:        "InvalidHTTPVersion",
	InvalidCRLF:               "InvalidCRLF",
	InvalidHeaderFormat:       "InvalidHeaderFormat",
	InvalidHeaderField:        "InvalidHeaderField",
	InvalidHeaderFieldValue:   "InvalidHeaderFieldValue",
	InvalidContentLengthValue: "InvalidContentLengthValue",
	NoChunkedCoding:           "NoChunkedCoding",
	InvalidUTF8String:         "InvalidUTF8String",
	ParseIntError:             "ParseIntError",
	RequestNotParsed:          "RequestNotParsed",
	Bug:                       "Bug",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// Error is the concrete error value the parser returns. Context is a
// human-readable fragment of the offending input, empty when the kind
// carries none.
type Error struct {
	Kind    Kind
	Context string
}

// New builds an *Error of the given kind with the given context.
func New(k Kind, context string) *Error {
	return &Error{Kind: k, Context: context}
}

func (e *Error) Error() string {
	if e.Context == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %q", e.Kind, e.Context)
}

// Is reports whether err is an *Error of kind k.
func Is(err error, k Kind) bool {
	he, ok := err.(*Error)
	return ok && he.Kind == k
}
