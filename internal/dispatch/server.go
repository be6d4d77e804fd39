// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dispatch

import (
	"context"
	"encoding/binary"
	"io"
	"net"
	"os"
	"strconv"
	"sync"

	"github.com/opendax/daxd/internal/group"
	"github.com/opendax/daxd/internal/tagdb"
	"github.com/opendax/daxd/pkg/daxproto"
	"github.com/opendax/daxd/pkg/log"
	"golang.org/x/time/rate"
)

// Server owns the listeners and shared subsystem state for one daxd
// instance.
type Server struct {
	DB      *tagdb.DB
	Groups  *group.Registry
	Conns   *ConnectionRegistry
	Metrics *Metrics

	MaxMessageSize  int
	EventQueueCap   int
	RateLimitPerSec float64
	RateLimitBurst  int

	listeners []net.Listener
	unixPaths []string
	wg        sync.WaitGroup
}

// NewServer builds a Server around an already-initialized tag
// database.
func NewServer(db *tagdb.DB, maxMessageSize, eventQueueCap int) *Server {
	s := &Server{
		DB:              db,
		Groups:          group.NewRegistry(),
		Conns:           NewConnectionRegistry(),
		MaxMessageSize:  maxMessageSize,
		EventQueueCap:   eventQueueCap,
		RateLimitPerSec: 2000,
		RateLimitBurst:  4000,
	}
	s.Metrics = NewMetrics(s)
	return s
}

// ListenUnix starts accepting connections on a UNIX domain socket,
// removing any stale socket file left behind by a previous run first.
func (s *Server) ListenUnix(path string) error {
	if path == "" {
		return nil
	}
	_ = os.Remove(path)
	l, err := net.Listen("unix", path)
	if err != nil {
		return err
	}
	s.unixPaths = append(s.unixPaths, path)
	s.serve(l)
	return nil
}

// ListenTCP starts accepting connections on a TCP port, for clients
// that cannot reach the UNIX socket (e.g. a module on another host).
func (s *Server) ListenTCP(port int) error {
	if port == 0 {
		return nil
	}
	l, err := net.Listen("tcp", net.JoinHostPort("", strconv.Itoa(port)))
	if err != nil {
		return err
	}
	s.serve(l)
	return nil
}

func (s *Server) serve(l net.Listener) {
	s.listeners = append(s.listeners, l)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			c, err := l.Accept()
			if err != nil {
				log.Minorf("[DISPATCH] listener %s stopped: %s", l.Addr(), err.Error())
				return
			}
			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				s.handleConn(c)
			}()
		}
	}()
}

func (s *Server) handleConn(c net.Conn) {
	conn := newConnection(nextConnID(), c, s.EventQueueCap, s.Metrics)
	s.Conns.add(conn)
	defer func() {
		s.cleanupConnection(conn)
		s.Conns.remove(conn)
		conn.close()
	}()

	go conn.pumpNotifications()

	limiter := rate.NewLimiter(rate.Limit(s.RateLimitPerSec), s.RateLimitBurst)
	ctx := context.Background()

	for {
		if err := limiter.Wait(ctx); err != nil {
			return
		}
		if err := s.readAndHandleOne(conn); err != nil {
			return
		}
	}
}

// cleanupConnection frees every resource a connection owned, matching
// spec.md §5: events, mappings, groups, and overrides created by a
// module that disconnects without explicit teardown do not linger.
func (s *Server) cleanupConnection(conn *Connection) {
	s.DB.Lock()
	s.DB.Events().DeleteOwnedBy(conn)
	s.DB.Mappings().DeleteOwnedBy(conn.ID)
	s.DB.ClearOverridesOwnedByLocked(conn.ID)
	s.Groups.DeleteOwnedBy(conn.ID)
	s.DB.Unlock()
}

func (s *Server) readAndHandleOne(conn *Connection) error {
	hdr, err := daxproto.ReadHeader(conn.conn)
	if err != nil {
		return err
	}
	if int(hdr.Size) > s.MaxMessageSize {
		_ = conn.writeReply(daxproto.Header{Command: hdr.Command.Base().WithError(), ID: hdr.ID}, encodeCode(daxproto.TOOBIG))
		return discard(conn.conn, hdr.Size)
	}
	payload := make([]byte, hdr.Size)
	if _, err := io.ReadFull(conn.conn, payload); err != nil {
		return err
	}

	reply, code := s.handle(conn, hdr.Command, payload)
	if code != daxproto.OK {
		return conn.writeReply(daxproto.Header{Command: hdr.Command.WithError(), ID: hdr.ID}, encodeCode(code))
	}
	return conn.writeReply(daxproto.Header{Command: hdr.Command, ID: hdr.ID}, reply)
}

func discard(r io.Reader, n uint32) error {
	_, err := io.CopyN(io.Discard, r, int64(n))
	return err
}

func encodeCode(c daxproto.Code) []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, uint32(int32(c)))
	return buf
}

// Shutdown closes every listener, unlinks any UNIX socket path it
// bound (spec.md §6's "clean shutdown ... unlink socket path"), and
// waits for in-flight connections to drain, bounded by ctx.
func (s *Server) Shutdown(ctx context.Context) error {
	for _, l := range s.listeners {
		_ = l.Close()
	}
	for _, p := range s.unixPaths {
		_ = os.Remove(p)
	}
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
