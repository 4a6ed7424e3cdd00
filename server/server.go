// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

// Package server is the TCP accept loop around pkg/httpreq: the
// "external, multi-task" collaborator the assembler itself has no
// knowledge of. Grounded on original_source's connection/mod.rs and
// http11_server.rs (process_socket's read-feed-build loop, the
// FRAME_SIZE constant, and the 127.0.0.1:8080 reference bind address),
// restructured around goroutines and golang.org/x/sync/errgroup
// instead of the original's async task spawner.
package server

import (
	"context"
	"errors"
	"net"

	"golang.org/x/sync/errgroup"

	"github.com/coreproto/httpreq/internal/connid"
	"github.com/coreproto/httpreq/internal/herr"
	"github.com/coreproto/httpreq/internal/logging"
	"github.com/coreproto/httpreq/internal/metrics"
	"github.com/coreproto/httpreq/pkg/httpreq"
)

// Handler answers one parsed Request with the raw bytes to write back
// to the connection. Response formatting is outside this engine's
// scope (spec Non-goal); Handler exists so a caller can plug in
// whatever does that.
type Handler interface {
	ServeRequest(req *httpreq.Request) []byte
}

// HandlerFunc adapts a function to a Handler.
type HandlerFunc func(req *httpreq.Request) []byte

// ServeRequest calls f.
func (f HandlerFunc) ServeRequest(req *httpreq.Request) []byte { return f(req) }

// Server accepts connections and feeds each one through its own
// httpreq.Assembler, handing completed requests to Handler.
type Server struct {
	Addr      string
	FrameSize int
	MaxConns  int
	Handler   Handler
	Log       logging.Logger
}

func (s *Server) frameSize() int {
	if s.FrameSize <= 0 {
		return 1024
	}
	return s.FrameSize
}

func (s *Server) maxConns() int64 {
	if s.MaxConns <= 0 {
		return 256
	}
	return int64(s.MaxConns)
}

// ListenAndServe binds Addr and serves connections until ctx is
// cancelled or Accept returns a non-temporary error.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	defer ln.Close()
	return s.serve(ctx, ln)
}

func (s *Server) serve(ctx context.Context, ln net.Listener) error {
	g, ctx := errgroup.WithContext(ctx)
	gate := make(chan struct{}, s.maxConns())

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return g.Wait()
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			return err
		}
		select {
		case gate <- struct{}{}:
		case <-ctx.Done():
			conn.Close()
			return g.Wait()
		}
		g.Go(func() error {
			defer func() { <-gate }()
			s.serveConn(ctx, conn)
			return nil
		})
	}
}

// serveConn drives one connection: each loop iteration builds a fresh
// Assembler, seeds it with whatever bytes the previous request's
// Assembler left unconsumed, reads frames off the wire until that
// Assembler completes or errors, hands a completed Request to
// Handler, and carries the new residual bytes into the next iteration
// — this is the pipelining behavior TakeRemaining exists for.
func (s *Server) serveConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	id := connid.New()
	log := s.Log.With("conn", id.String())
	metrics.ActiveConnections.Inc()
	defer metrics.ActiveConnections.Dec()

	buf := make([]byte, s.frameSize())
	var leftover []byte

	for {
		asm := httpreq.NewAssembler()
		if len(leftover) > 0 {
			if _, err := asm.Feed(leftover); err != nil {
				s.respondError(conn, log, err)
				return
			}
			leftover = nil
		}

		for asm.CanParseMore() {
			n, rerr := conn.Read(buf)
			if n > 0 {
				prog, ferr := asm.Feed(buf[:n])
				if ferr != nil {
					s.respondError(conn, log, ferr)
					return
				}
				if prog == httpreq.Complete {
					break
				}
			}
			if rerr != nil {
				// Connection closed (or failed) with a request still
				// in progress: nothing meaningful to respond with.
				return
			}
		}

		req, err := asm.Build()
		if err != nil {
			s.respondError(conn, log, err)
			return
		}
		metrics.RequestsParsed.Inc()
		metrics.RequestBodyBytes.Observe(float64(len(req.Body.Bytes())))

		resp := s.Handler.ServeRequest(req)
		if _, err := conn.Write(resp); err != nil {
			return
		}

		leftover = asm.TakeRemaining()
	}
}

// respondError writes the status line a parse failure maps to and
// logs it; it never attempts to keep the connection alive afterward.
func (s *Server) respondError(conn net.Conn, log logging.Logger, err error) {
	status := "400 Bad Request"
	if he, ok := err.(*herr.Error); ok {
		metrics.ParseErrors.WithLabelValues(he.Kind.String()).Inc()
		if he.Kind == herr.Bug {
			status = "500 Internal Server Error"
		}
		log.Warnf("request rejected: %v", he)
	} else {
		log.Errorf("unexpected error: %v", err)
		status = "500 Internal Server Error"
	}
	conn.Write([]byte("HTTP/1.1 " + status + "\r\nConnection: close\r\nContent-Length: 0\r\n\r\n"))
}
