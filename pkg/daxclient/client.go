// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package daxclient is the module-side SDK for talking to daxd: it
// builds request frames, round-trips them over the connection, and
// decodes replies, the same client-wraps-wire-protocol shape as
// internal/metricstoreclient's CCMetricStore, adapted from JSON-over-
// HTTP to the binary daxproto framing (spec.md §6's client surface).
//
// A single background goroutine reads frames off the socket and
// demultiplexes them by request id, mirroring internal/dispatch's own
// read-loop/notification-queue split so a pending event notification
// never stalls a request/response round trip, and vice versa.
package daxclient

import (
	"encoding/binary"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/opendax/daxd/pkg/daxproto"
)

const (
	// DefaultTimeout is the request round-trip timeout used when
	// Client.Timeout is left at its zero value (spec.md §5).
	DefaultTimeout = 1000 * time.Millisecond
	minTimeout     = 500 * time.Millisecond
	maxTimeout     = 30000 * time.Millisecond

	notifyQueueCap = 256
)

// Notification is one event delivery, decoded off the wire for
// EventPoll/EventWait/EventGetData.
type Notification struct {
	EventID     uint32
	TagIndex    uint32
	BytesMissed uint32
	Data        []byte
}

// ErrClosed is returned by any call made after Disconnect.
var ErrClosed = errors.New("daxclient: connection closed")

// Client is one module's connection to daxd. It is safe for
// concurrent use by multiple goroutines.
type Client struct {
	Timeout time.Duration

	conn net.Conn

	writeMu sync.Mutex
	nextID  uint32

	pendingMu sync.Mutex
	pending   map[uint32]chan reply

	notifications chan Notification

	closeOnce sync.Once
	closed    chan struct{}
}

type reply struct {
	payload []byte
	err     error
}

// Connect dials addr, which is either a filesystem path to daxd's UNIX
// socket or a "host:port" TCP address -- Init/Configure/Connect's three
// separate steps in the original C API collapse into this one call
// plus the exported Timeout field.
func Connect(addr string) (*Client, error) {
	network := "unix"
	if looksLikeTCP(addr) {
		network = "tcp"
	}
	conn, err := net.Dial(network, addr)
	if err != nil {
		return nil, err
	}
	c := &Client{
		conn:          conn,
		Timeout:       DefaultTimeout,
		pending:       make(map[uint32]chan reply),
		notifications: make(chan Notification, notifyQueueCap),
		closed:        make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

func looksLikeTCP(addr string) bool {
	_, _, err := net.SplitHostPort(addr)
	return err == nil
}

// Disconnect closes the underlying connection and stops the read loop.
func (c *Client) Disconnect() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closed)
		err = c.conn.Close()
	})
	return err
}

// timeout clamps Client.Timeout into [minTimeout, maxTimeout], applying
// DefaultTimeout when unset, per spec.md §5's request timeout bounds.
func (c *Client) timeout() time.Duration {
	t := c.Timeout
	if t == 0 {
		t = DefaultTimeout
	}
	if t < minTimeout {
		t = minTimeout
	}
	if t > maxTimeout {
		t = maxTimeout
	}
	return t
}

// readLoop is the Client's single reader: it never blocks request
// callers on each other the way a synchronous read-after-write client
// would, since a notification or a reply to someone else's
// outstanding request can arrive in either order.
func (c *Client) readLoop() {
	defer c.failPending(errors.New("daxclient: connection closed"))
	for {
		hdr, err := daxproto.ReadHeader(c.conn)
		if err != nil {
			return
		}
		body := make([]byte, hdr.Size)
		if hdr.Size > 0 {
			if _, err := readFull(c.conn, body); err != nil {
				return
			}
		}

		if hdr.Command == daxproto.EventNotify {
			c.deliverNotification(body)
			continue
		}

		c.pendingMu.Lock()
		ch, ok := c.pending[hdr.ID]
		if ok {
			delete(c.pending, hdr.ID)
		}
		c.pendingMu.Unlock()
		if !ok {
			continue
		}
		if hdr.Command.IsError() {
			ch <- reply{err: daxproto.DecodeErrorPayload(body)}
		} else {
			ch <- reply{payload: body}
		}
	}
}

func (c *Client) deliverNotification(body []byte) {
	if len(body) < daxproto.NotifyHeaderSize {
		return
	}
	h := daxproto.DecodeNotifyHeader(body[:daxproto.NotifyHeaderSize])
	n := Notification{
		EventID:     h.EventID,
		TagIndex:    h.Index,
		BytesMissed: h.BytesMissed,
		Data:        append([]byte(nil), body[daxproto.NotifyHeaderSize:]...),
	}
	select {
	case c.notifications <- n:
	default:
		// Local queue full: drop the oldest to make room rather than
		// block the reader goroutine, matching the server's own
		// drop-oldest overflow policy for its outbound queues.
		select {
		case <-c.notifications:
		default:
		}
		select {
		case c.notifications <- n:
		default:
		}
	}
}

func (c *Client) failPending(err error) {
	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()
	for id, ch := range c.pending {
		ch <- reply{err: err}
		delete(c.pending, id)
	}
}

// roundTrip sends one request frame and waits for its matching reply.
func (c *Client) roundTrip(cmd daxproto.Command, payload []byte) ([]byte, error) {
	select {
	case <-c.closed:
		return nil, ErrClosed
	default:
	}

	ch := make(chan reply, 1)
	c.pendingMu.Lock()
	c.nextID++
	id := c.nextID
	c.pending[id] = ch
	c.pendingMu.Unlock()

	c.writeMu.Lock()
	err := daxproto.WriteFrame(c.conn, daxproto.Header{Command: cmd, ID: id}, payload)
	c.writeMu.Unlock()
	if err != nil {
		c.pendingMu.Lock()
		delete(c.pending, id)
		c.pendingMu.Unlock()
		return nil, err
	}

	select {
	case r := <-ch:
		return r.payload, r.err
	case <-time.After(c.timeout()):
		c.pendingMu.Lock()
		delete(c.pending, id)
		c.pendingMu.Unlock()
		return nil, daxproto.TIMEOUT
	case <-c.closed:
		return nil, ErrClosed
	}
}

func readFull(conn net.Conn, buf []byte) (int, error) {
	n := 0
	for n < len(buf) {
		m, err := conn.Read(buf[n:])
		n += m
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

func encodeU32(v uint32) []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, v)
	return buf
}

func decodeU32(b []byte) (uint32, error) {
	if len(b) < 4 {
		return 0, fmt.Errorf("daxclient: short u32 reply")
	}
	return binary.LittleEndian.Uint32(b), nil
}

// Register declares the module's name to daxd (MOD_REG), matching the
// original API's implicit registration on dax_init_module.
func (c *Client) Register(name string) error {
	_, err := c.roundTrip(daxproto.MOD_REG, daxproto.PutString(nil, name))
	return err
}

// Unregister tells daxd this module is done; its events, mappings,
// groups, and overrides are torn down (spec.md §4.6).
func (c *Client) Unregister() error {
	_, err := c.roundTrip(daxproto.MOD_UNREG, nil)
	return err
}
