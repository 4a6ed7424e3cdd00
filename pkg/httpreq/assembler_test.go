// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package httpreq

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"testing"

	"github.com/coreproto/httpreq/internal/herr"
	"github.com/coreproto/httpreq/internal/testutil"
)

var seed int64

func TestMain(m *testing.M) {
	flag.Int64Var(&seed, "seed", 1, "random seed for randomized test input")
	flag.Parse()
	fmt.Printf("using random seed %d (\"-seed\" to change)\n", seed)
	os.Exit(m.Run())
}

// TestRandomizedWhitespaceAndCasing feeds the same request through the
// assembler with randomized OWS padding and randomized header-name
// casing, confirming both are handled uniformly.
func TestRandomizedWhitespaceAndCasing(t *testing.T) {
	r := rand.New(rand.NewSource(seed))
	for i := 0; i < 20; i++ {
		headerName := testutil.RandCase(r, "content-length")
		ws := testutil.RandWS(r)
		msg := "GET / HTTP/1.1\r\n" + headerName + ":" + ws + "5\r\n\r\nHELLO"
		a := NewAssembler()
		prog, err := a.Feed([]byte(msg))
		if err != nil {
			t.Fatalf("iteration %d: unexpected error: %v (msg=%q)", i, err, msg)
		}
		if prog != Complete {
			t.Fatalf("iteration %d: expected Complete", i)
		}
		req, err := a.Build()
		if err != nil {
			t.Fatalf("iteration %d: Build failed: %v", i, err)
		}
		if string(req.Body.Bytes()) != "HELLO" {
			t.Fatalf("iteration %d: got body %q", i, req.Body.Bytes())
		}
	}
}

func TestSimpleGetNoBody(t *testing.T) {
	a := NewAssembler()
	prog, err := a.Feed([]byte("GET /index.html HTTP/1.1\r\nHost: example.com\r\n\r\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prog != Complete {
		t.Fatalf("expected Complete, got %v", prog)
	}
	req, err := a.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if req.Method.Known != MethodGet || string(req.Target) != "/index.html" {
		t.Fatalf("got method=%v target=%q", req.Method, req.Target)
	}
	if req.Body.Kind != BodyNone {
		t.Fatalf("expected no body, got %v", req.Body.Kind)
	}
}

func TestByteAtATimeFeed(t *testing.T) {
	msg := "GET / HTTP/1.1\r\nHost: h\r\n\r\n"
	a := NewAssembler()
	var prog Progress
	var err error
	for i := 0; i < len(msg); i++ {
		prog, err = a.Feed([]byte{msg[i]})
		if err != nil {
			t.Fatalf("unexpected error at byte %d: %v", i, err)
		}
	}
	if prog != Complete {
		t.Fatalf("expected Complete after full message fed, got %v", prog)
	}
	if _, err := a.Build(); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
}

func TestContentLengthBody(t *testing.T) {
	a := NewAssembler()
	prog, err := a.Feed([]byte("POST /x HTTP/1.1\r\nContent-Length: 5\r\n\r\nHELLO"))
	if err != nil || prog != Complete {
		t.Fatalf("got prog=%v err=%v", prog, err)
	}
	req, err := a.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if req.Body.Kind != BodyWhole || string(req.Body.Bytes()) != "HELLO" {
		t.Fatalf("got body kind=%v bytes=%q", req.Body.Kind, req.Body.Bytes())
	}
}

func TestContentLengthBodyArrivesLater(t *testing.T) {
	a := NewAssembler()
	prog, err := a.Feed([]byte("POST /x HTTP/1.1\r\nContent-Length: 5\r\n\r\nHEL"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prog != NeedMore {
		t.Fatalf("expected NeedMore, got %v", prog)
	}
	prog, err = a.Feed([]byte("LO"))
	if err != nil || prog != Complete {
		t.Fatalf("got prog=%v err=%v", prog, err)
	}
}

func TestChunkedBody(t *testing.T) {
	a := NewAssembler()
	msg := "POST /x HTTP/1.1\r\nTransfer-Encoding: chunked\r\n\r\n" +
		"5\r\nhello\r\n0\r\n\r\n"
	prog, err := a.Feed([]byte(msg))
	if err != nil || prog != Complete {
		t.Fatalf("got prog=%v err=%v", prog, err)
	}
	req, err := a.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if req.Body.Kind != BodyChunked || string(req.Body.Bytes()) != "hello" {
		t.Fatalf("got body kind=%v bytes=%q", req.Body.Kind, req.Body.Bytes())
	}
}

func TestPipeliningResidualBytes(t *testing.T) {
	a := NewAssembler()
	first := "GET /a HTTP/1.1\r\n\r\n"
	second := "GET /b HTTP/1.1\r\n\r\n"
	prog, err := a.Feed([]byte(first + second))
	if err != nil || prog != Complete {
		t.Fatalf("got prog=%v err=%v", prog, err)
	}
	if _, err := a.Build(); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	rest := a.TakeRemaining()
	if string(rest) != second {
		t.Fatalf("got residual %q, want %q", rest, second)
	}
}

func TestBuildBeforeCompleteFails(t *testing.T) {
	a := NewAssembler()
	if _, err := a.Feed([]byte("GET / HTTP/1.1\r\n")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := a.Build(); !herr.Is(err, herr.RequestNotParsed) {
		t.Fatalf("expected RequestNotParsed, got %v", err)
	}
}

func TestBuildTwiceFails(t *testing.T) {
	a := NewAssembler()
	if _, err := a.Feed([]byte("GET / HTTP/1.1\r\n\r\n")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := a.Build(); err != nil {
		t.Fatalf("first Build failed: %v", err)
	}
	if _, err := a.Build(); !herr.Is(err, herr.RequestNotParsed) {
		t.Fatalf("expected RequestNotParsed on second Build, got %v", err)
	}
}

func TestInvalidRequestLineFieldCount(t *testing.T) {
	a := NewAssembler()
	_, err := a.Feed([]byte("GET /x\r\n\r\n"))
	if !herr.Is(err, herr.InvalidRequestLine) {
		t.Fatalf("expected InvalidRequestLine, got %v", err)
	}
}

func TestInvalidHTTPVersion(t *testing.T) {
	a := NewAssembler()
	_, err := a.Feed([]byte("GET / HTTP/1.0\r\n\r\n"))
	if !herr.Is(err, herr.InvalidHTTPVersion) {
		t.Fatalf("expected InvalidHTTPVersion, got %v", err)
	}
	he := err.(*herr.Error)
	if he.Context != "http/1.0" {
		t.Fatalf("expected context http/1.0, got %q", he.Context)
	}
}

func TestErrorStateIsSticky(t *testing.T) {
	a := NewAssembler()
	_, err1 := a.Feed([]byte("GET /x\r\n\r\n"))
	if err1 == nil {
		t.Fatal("expected an error")
	}
	_, err2 := a.Feed([]byte("more bytes that should be ignored"))
	if err2 != err1 {
		t.Fatalf("expected the same sticky error, got %v vs %v", err1, err2)
	}
	if a.CanParseMore() {
		t.Fatal("an errored assembler must not report CanParseMore")
	}
}

func TestExtensionMethod(t *testing.T) {
	a := NewAssembler()
	_, err := a.Feed([]byte("PATCH /x HTTP/1.1\r\n\r\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	req, err := a.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if req.Method.Known != MethodExtension || req.Method.String() != "patch" {
		t.Fatalf("got %+v", req.Method)
	}
}

func TestNoChunkedCoding(t *testing.T) {
	a := NewAssembler()
	_, err := a.Feed([]byte("POST /x HTTP/1.1\r\nTransfer-Encoding: gzip\r\n\r\n"))
	if !herr.Is(err, herr.NoChunkedCoding) {
		t.Fatalf("expected NoChunkedCoding, got %v", err)
	}
}
