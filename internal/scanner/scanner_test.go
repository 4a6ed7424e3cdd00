// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package scanner

import (
	"testing"

	"github.com/coreproto/httpreq/internal/rope"
)

func TestFindCRLFSingleFragment(t *testing.T) {
	var r rope.Rope
	r.Push([]byte("GET / HTTP/1.1\r\nHost: x\r\n"))
	line, ok := FindCRLF(&r)
	if !ok || string(line) != "GET / HTTP/1.1" {
		t.Fatalf("got %q,%v", line, ok)
	}
	line, ok = FindCRLF(&r)
	if !ok || string(line) != "Host: x" {
		t.Fatalf("got %q,%v", line, ok)
	}
}

func TestFindCRLFAcrossFragments(t *testing.T) {
	var r rope.Rope
	r.Push([]byte("GET / HTTP/1.1\r"))
	if _, ok := FindCRLF(&r); ok {
		t.Fatal("must not find CRLF before the LF half arrives")
	}
	r.Push([]byte("\nHost: x\r\n"))
	line, ok := FindCRLF(&r)
	if !ok || string(line) != "GET / HTTP/1.1" {
		t.Fatalf("got %q,%v", line, ok)
	}
}

func TestFindDoubleCRLF(t *testing.T) {
	var r rope.Rope
	r.Push([]byte("Host: x\r\nAccept: */*\r\n\r\nbody"))
	block, ok := FindDoubleCRLF(&r)
	if !ok {
		t.Fatal("expected to find the blank line")
	}
	if string(block) != "Host: x\r\nAccept: */*" {
		t.Fatalf("got %q", block)
	}
	if string(r.Bytes()) != "body" {
		t.Fatalf("cursor should sit right after the blank line, got %q", r.Bytes())
	}
}

func TestSkipInitialCRLF(t *testing.T) {
	var r rope.Rope
	r.Push([]byte("\r\n\r\nGET"))
	ok, err := SkipInitialCRLF(&r)
	if err != nil || !ok {
		t.Fatalf("got ok=%v err=%v", ok, err)
	}
	if string(r.Bytes()) != "GET" {
		t.Fatalf("cursor landed wrong, got %q", r.Bytes())
	}
}

func TestSkipInitialCRLFNeedsMore(t *testing.T) {
	var r rope.Rope
	r.Push([]byte("\r\n\r"))
	ok, err := SkipInitialCRLF(&r)
	if err != nil || ok {
		t.Fatalf("expected need-more, got ok=%v err=%v", ok, err)
	}
}

func TestSkipInitialCRLFBareCR(t *testing.T) {
	var r rope.Rope
	r.Push([]byte("\rX"))
	_, err := SkipInitialCRLF(&r)
	if err == nil {
		t.Fatal("expected InvalidCRLF for a CR not followed by LF")
	}
}
