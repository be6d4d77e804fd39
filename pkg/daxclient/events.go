// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package daxclient

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/opendax/daxd/pkg/daxproto"
)

// EventAdd registers a predicate on addr, delivering a Notification
// through EventPoll/EventWait whenever it fires (spec.md §4.2). compare
// and deadband are only meaningful for the kinds that use them (EQUAL/
// NOT_EQUAL/GREATER/LESS and DEADBAND respectively); pass nil/0 for the
// rest.
func (c *Client) EventAdd(addr string, kind daxproto.EventKind, valueKind daxproto.Kind, compare []byte, deadband float64) (uint32, error) {
	payload := daxproto.PutString(nil, addr)
	payload = append(payload, encodeEventSpec(kind, valueKind, compare, deadband)...)
	body, err := c.roundTrip(daxproto.EVENT_ADD, payload)
	if err != nil {
		return 0, err
	}
	return decodeU32(body)
}

// EventDel removes a previously registered event by id.
func (c *Client) EventDel(id uint32) error {
	_, err := c.roundTrip(daxproto.EVENT_DEL, encodeU32(id))
	return err
}

// EventMod replaces the kind/compare/deadband of an existing event
// without reassigning its id.
func (c *Client) EventMod(id uint32, kind daxproto.EventKind, compare []byte, deadband float64) error {
	payload := encodeU32(id)
	payload = append(payload, encodeEventSpec(kind, 0, compare, deadband)...)
	_, err := c.roundTrip(daxproto.EVENT_MOD, payload)
	return err
}

func encodeEventSpec(kind daxproto.EventKind, valueKind daxproto.Kind, compare []byte, deadband float64) []byte {
	buf := make([]byte, 0, 20+len(compare))
	buf = append(buf, encodeU32(uint32(kind))...)
	buf = append(buf, encodeU32(uint32(valueKind))...)
	buf = append(buf, encodeU32(uint32(len(compare)))...)
	buf = append(buf, compare...)
	dbBuf := make([]byte, 8)
	binary.LittleEndian.PutUint64(dbBuf, math.Float64bits(deadband))
	return append(buf, dbBuf...)
}

// EventPoll returns the next queued notification without blocking; ok
// is false if none are pending (spec.md §4.2 "event_poll").
func (c *Client) EventPoll() (Notification, bool) {
	select {
	case n := <-c.notifications:
		return n, true
	default:
		return Notification{}, false
	}
}

// EventWait blocks for up to timeout for the next notification
// (spec.md §4.2 "event_wait"). A zero timeout waits indefinitely.
func (c *Client) EventWait(timeout time.Duration) (Notification, error) {
	if timeout <= 0 {
		select {
		case n := <-c.notifications:
			return n, nil
		case <-c.closed:
			return Notification{}, ErrClosed
		}
	}
	select {
	case n := <-c.notifications:
		return n, nil
	case <-time.After(timeout):
		return Notification{}, daxproto.TIMEOUT
	case <-c.closed:
		return Notification{}, ErrClosed
	}
}

// EventGetData returns the value that accompanied a notification
// (spec.md §4.2 "event_get_data"); it is a plain accessor, kept as a
// named method to mirror the original API's separate retrieval step.
func EventGetData(n Notification) []byte { return n.Data }
