// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package dispatch wires the wire protocol (pkg/daxproto) to the
// in-memory subsystems (internal/tagdb, internal/group): one goroutine
// per connection reads and handles requests under the tag database's
// single lock, while a second goroutine per connection drains that
// connection's event notification queue so a slow event consumer
// never blocks a request/response round trip on another connection.
package dispatch

import (
	"net"
	"sync"
	"sync/atomic"

	"github.com/opendax/daxd/internal/events"
	"github.com/opendax/daxd/pkg/daxproto"
	"github.com/opendax/daxd/pkg/log"
)

// Connection is one accepted client socket plus the resources it owns:
// its module registration, and every event/mapping/group/override it
// created, all freed together on disconnect (spec.md §4.6).
type Connection struct {
	ID   uint32
	conn net.Conn

	moduleName string
	registered bool

	outbound   *events.Queue
	queueMu    sync.Mutex // guards outbound only
	sockMu     sync.Mutex // serializes writes onto conn
	notifyWake chan struct{}
	closeOnce  sync.Once
	closed     chan struct{}

	metrics *Metrics
}

func newConnection(id uint32, c net.Conn, eventQueueCap int, metrics *Metrics) *Connection {
	return &Connection{
		ID:         id,
		conn:       c,
		outbound:   events.NewQueue(eventQueueCap),
		notifyWake: make(chan struct{}, 1),
		closed:     make(chan struct{}),
		metrics:    metrics,
	}
}

// Notify implements events.Subscriber: it queues the notification and
// wakes this connection's writer goroutine. Called by the tag database
// while its lock is held, so it must never block.
func (c *Connection) Notify(n events.Notification) {
	c.queueMu.Lock()
	c.outbound.Push(n)
	c.queueMu.Unlock()
	select {
	case c.notifyWake <- struct{}{}:
	default:
	}
}

// pumpNotifications drains the outbound queue onto the socket until
// the connection closes. Runs on its own goroutine so a burst of
// events never stalls behind whatever request the read loop is
// currently blocked handling.
func (c *Connection) pumpNotifications() {
	for {
		select {
		case <-c.closed:
			return
		case <-c.notifyWake:
		}
		for {
			c.queueMu.Lock()
			n, ok := c.outbound.Pop()
			c.queueMu.Unlock()
			if !ok {
				break
			}
			if err := c.sendNotification(n); err != nil {
				log.Commf("[DISPATCH] conn %d: notification write failed: %s", c.ID, err.Error())
				return
			}
			if c.metrics != nil {
				c.metrics.EventsSent.Inc()
			}
		}
	}
}

func (c *Connection) sendNotification(n events.Notification) error {
	hdr := daxproto.NotifyHeader{EventID: n.EventID, Index: n.TagIndex, BytesMissed: n.BytesMissed}
	payload := make([]byte, daxproto.NotifyHeaderSize+len(n.Data))
	hdr.Encode(payload[:daxproto.NotifyHeaderSize])
	copy(payload[daxproto.NotifyHeaderSize:], n.Data)

	c.sockMu.Lock()
	defer c.sockMu.Unlock()
	return daxproto.WriteFrame(c.conn, daxproto.Header{Command: daxproto.EventNotify}, payload)
}

// writeReply sends a command reply, serialized against any concurrent
// event notification on the same socket.
func (c *Connection) writeReply(h daxproto.Header, payload []byte) error {
	c.sockMu.Lock()
	defer c.sockMu.Unlock()
	return daxproto.WriteFrame(c.conn, h, payload)
}

func (c *Connection) close() {
	c.closeOnce.Do(func() {
		close(c.closed)
		c.conn.Close()
	})
}

var connIDSeq uint32

func nextConnID() uint32 { return atomic.AddUint32(&connIDSeq, 1) }
