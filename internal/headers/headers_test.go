// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package headers

import (
	"testing"

	"github.com/coreproto/httpreq/internal/herr"
)

func TestParseBlockBasic(t *testing.T) {
	set, err := ParseBlock([]byte("Host: example.com\r\nContent-Length: 5"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cl, ok := set.ContentLength()
	if !ok || cl.Bytes != 5 {
		t.Fatalf("got %+v,%v", cl, ok)
	}
	v, ok := set.Get("Host")
	if !ok {
		t.Fatal("expected Host to be present")
	}
	ext, ok := v.(Extension)
	if !ok || ext.Raw != "example.com" {
		t.Fatalf("got %+v", v)
	}
}

func TestParseBlockCollapsesWhitespace(t *testing.T) {
	set, err := ParseBlock([]byte("X-Foo:  a   b\t c  "))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, _ := set.Get("x-foo")
	ext := v.(Extension)
	if ext.Raw != "a b c" {
		t.Fatalf("got %q", ext.Raw)
	}
}

func TestParseBlockEmptyValueDropped(t *testing.T) {
	set, err := ParseBlock([]byte("X-Empty: \r\nHost: h"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := set.Get("x-empty"); ok {
		t.Fatal("empty-valued header must be silently dropped")
	}
	if _, ok := set.Get("host"); !ok {
		t.Fatal("host should still be present")
	}
}

func TestParseBlockRejectsSpaceBeforeColon(t *testing.T) {
	_, err := ParseBlock([]byte("accept : */*"))
	if !herr.Is(err, herr.InvalidHeaderField) {
		t.Fatalf("expected InvalidHeaderField, got %v", err)
	}
	he := err.(*herr.Error)
	if he.Context != "accept " {
		t.Fatalf("expected context %q, got %q", "accept ", he.Context)
	}
}

func TestParseBlockRejectsObsFold(t *testing.T) {
	_, err := ParseBlock([]byte("X-Foo: a\r\n continuation"))
	if !herr.Is(err, herr.InvalidHeaderFormat) {
		t.Fatalf("expected InvalidHeaderFormat, got %v", err)
	}
}

func TestParseBlockRejectsMissingColon(t *testing.T) {
	_, err := ParseBlock([]byte("not-a-header-line"))
	if !herr.Is(err, herr.InvalidHeaderFormat) {
		t.Fatalf("expected InvalidHeaderFormat, got %v", err)
	}
}

func TestTransferEncodingChunkedLast(t *testing.T) {
	set, err := ParseBlock([]byte("Transfer-Encoding: gzip, chunked"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	te, ok := set.TransferEncoding()
	if !ok || !te.IsChunkedLast() {
		t.Fatalf("got %+v,%v", te, ok)
	}
}

func TestContentLengthInvalid(t *testing.T) {
	_, err := ParseBlock([]byte("Content-Length: 4x"))
	if !herr.Is(err, herr.InvalidContentLengthValue) {
		t.Fatalf("expected InvalidContentLengthValue, got %v", err)
	}
}

func TestUpgradeHeader(t *testing.T) {
	set, err := ParseBlock([]byte("Upgrade: websocket, h2c"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	u, ok := set.Upgrade()
	if !ok || len(u.Protocols) != 2 || u.Protocols[0] != "websocket" {
		t.Fatalf("got %+v,%v", u, ok)
	}
}

func TestDuplicateHeaderLastWins(t *testing.T) {
	set, err := ParseBlock([]byte("X-Foo: one\r\nX-Foo: two"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, _ := set.Get("x-foo")
	if v.(Extension).Raw != "two" {
		t.Fatalf("expected last-write-wins, got %+v", v)
	}
}
