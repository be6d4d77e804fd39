// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package events implements the event-subscription engine of spec.md
// §4.2: per-tag-region predicates evaluated on every write, delivering
// matches to a per-connection notification FIFO.
//
// Engine keeps no lock of its own. internal/tagdb owns the single
// coarse read/write lock described in spec.md §5 and only ever calls
// into Engine while holding it, so Engine's maps are safe to mutate
// without a second lock.
package events

import (
	"github.com/opendax/daxd/pkg/daxproto"
)

// Subscriber receives notifications for events it owns. A connection
// in internal/dispatch implements this by pushing onto its own Queue.
type Subscriber interface {
	Notify(n Notification)
}

// Notification is one delivered event match, carrying the data that
// triggered it.
type Notification struct {
	EventID     uint32
	TagIndex    uint32
	BytesMissed uint32
	Data        []byte
}

// Event is one active subscription.
type Event struct {
	ID         uint32
	TagIndex   uint32
	ByteOffset uint32
	BitOffset  uint8
	Size       int
	Kind       daxproto.EventKind
	ValueKind  daxproto.Kind // how to interpret Compare/Deadband numerically
	Compare    []byte        // operand for EQUAL/NOT_EQUAL/GREATER/LESS
	Deadband   float64       // operand for EventDeadband

	Owner Subscriber

	last    []byte // last value seen at this region; predicates compare against the write's old bytes instead
	hasLast bool   // false until the first write to this region, which matches() treats as firstWrite
}

// overlaps reports whether the byte range [offset, offset+size) this
// event watches intersects the range a write touched.
func (e *Event) overlaps(offset uint32, size int) bool {
	evEnd := e.ByteOffset + uint32(e.Size)
	wEnd := offset + uint32(size)
	return e.ByteOffset < wEnd && offset < evEnd
}
