// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package httpreq

import "github.com/intuitivelabs/bytescase"

// KnownMethod identifies one of the eight HTTP methods this engine
// recognises by name; every other token becomes MethodExtension.
type KnownMethod uint8

const (
	MethodGet KnownMethod = iota
	MethodHead
	MethodPost
	MethodPut
	MethodDelete
	MethodConnect
	MethodOptions
	MethodTrace
	MethodExtension // must be last
)

var methodNames = [MethodExtension + 1][]byte{
	MethodGet:       []byte("GET"),
	MethodHead:      []byte("HEAD"),
	MethodPost:      []byte("POST"),
	MethodPut:       []byte("PUT"),
	MethodDelete:    []byte("DELETE"),
	MethodConnect:   []byte("CONNECT"),
	MethodOptions:   []byte("OPTIONS"),
	MethodTrace:     []byte("TRACE"),
	MethodExtension: []byte(""),
}

const (
	mthBitsLen   uint = 2
	mthBitsFChar uint = 3
)

type mth2Known struct {
	n []byte
	k KnownMethod
}

var mthLookup [1 << (mthBitsLen + mthBitsFChar)][]mth2Known

func hashMethodName(n []byte) int {
	const (
		mC = (1 << mthBitsFChar) - 1
		mL = (1 << mthBitsLen) - 1
	)
	if len(n) == 0 {
		return 0
	}
	return (int(bytescase.ByteToLower(n[0])) & mC) | ((len(n) & mL) << mthBitsFChar)
}

func init() {
	for k := MethodGet; k < MethodExtension; k++ {
		h := hashMethodName(methodNames[k])
		mthLookup[h] = append(mthLookup[h], mth2Known{methodNames[k], k})
	}
}

func resolveMethod(raw []byte) KnownMethod {
	h := hashMethodName(raw)
	for _, m := range mthLookup[h] {
		if bytescase.CmpEq(raw, m.n) {
			return m.k
		}
	}
	return MethodExtension
}

// Method is the request-line method: one of the eight known methods,
// or MethodExtension carrying the raw token as it appeared on the
// wire, lower-cased.
type Method struct {
	Known KnownMethod
	Raw   string
}

func (m Method) String() string {
	if m.Known == MethodExtension {
		return m.Raw
	}
	return string(methodNames[m.Known])
}
