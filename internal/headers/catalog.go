// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

// Package headers implements the header catalog: a lookup from field
// name to a typed value variant (ContentLength, TransferEncoding,
// Trailer, Upgrade) with Extension as the catch-all, plus the block
// parser that turns a header block into a Set of them.
//
// The name -> type lookup is adapted from intuitivelabs/httpsp's
// hashHdrName/GetHdrType table in parse_headers.go: a small hash on
// the first byte and the length buckets the handful of recognised
// names, with bytescase.CmpEq doing the final case-insensitive
// compare so no name is ever allocated just to lower-case it.
package headers

import "github.com/intuitivelabs/bytescase"

// Type identifies which catalog entry, if any, a header name resolved
// to.
type Type uint8

const (
	Other Type = iota
	ContentLengthT
	TransferEncodingT
	TrailerT
	UpgradeT
)

type entry struct {
	name []byte
	typ  Type
}

var catalog = [...]entry{
	{name: []byte("content-length"), typ: ContentLengthT},
	{name: []byte("transfer-encoding"), typ: TransferEncodingT},
	{name: []byte("trailer"), typ: TrailerT},
	{name: []byte("upgrade"), typ: UpgradeT},
}

const (
	bitsLen   uint = 2
	bitsFChar uint = 5
)

var lookup [1 << (bitsLen + bitsFChar)][]entry

func hash(n []byte) int {
	const (
		mC = (1 << bitsFChar) - 1
		mL = (1 << bitsLen) - 1
	)
	if len(n) == 0 {
		return 0
	}
	return (int(bytescase.ByteToLower(n[0])) & mC) | ((len(n) & mL) << bitsFChar)
}

func init() {
	for _, e := range catalog {
		i := hash(e.name)
		lookup[i] = append(lookup[i], e)
	}
}

// resolve returns the catalog Type for a lower-cased header name.
func resolve(name []byte) Type {
	if len(name) == 0 {
		return Other
	}
	i := hash(name)
	for _, e := range lookup[i] {
		if bytescase.CmpEq(name, e.name) {
			return e.typ
		}
	}
	return Other
}
