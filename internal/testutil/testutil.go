// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

// Package testutil holds small randomized-input generators shared by
// this repository's test files: whitespace noise and case-randomizing
// helpers, adapted from intuitivelabs/httpsp's utils_test.go
// (randWS/randLWS/randCase) and exported so more than one package's
// tests can use them instead of each re-implementing their own copy.
package testutil

import (
	"math/rand"

	"github.com/intuitivelabs/bytescase"
)

// RandWS returns a random run of 0-4 space/tab "tokens", for tests
// that want to confirm OWS handling is insensitive to how much
// whitespace a sender used.
func RandWS(r *rand.Rand) string {
	ws := [...]string{"", " ", "\t"}
	var s string
	n := r.Intn(5)
	for i := 0; i < n; i++ {
		s += ws[r.Intn(len(ws))]
	}
	return s
}

// RandLWS returns a random run of 0-4 whitespace-or-line-folding
// "tokens".
func RandLWS(r *rand.Rand) string {
	ws := [...]string{"", " ", "  ", "\r\n ", "\r\n   ", "\n ", "\r "}
	var s string
	n := r.Intn(5)
	for i := 0; i < n; i++ {
		s += ws[r.Intn(len(ws))]
	}
	return s
}

// RandCase returns s with each byte's case randomly flipped, for tests
// that want to confirm a comparison is truly case-insensitive rather
// than accidentally exact-case.
func RandCase(r *rand.Rand, s string) string {
	out := make([]byte, len(s))
	for i, b := range []byte(s) {
		switch r.Intn(3) {
		case 0:
			out[i] = bytescase.ByteToLower(b)
		case 1:
			out[i] = bytescase.ByteToUpper(b)
		default:
			out[i] = b
		}
	}
	return string(out)
}
