// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package daxclient

import (
	"encoding/binary"

	"github.com/opendax/daxd/pkg/daxproto"
)

// TagDescriptor mirrors internal/dispatch's encodeTagDescriptor wire
// layout client-side.
type TagDescriptor struct {
	Index uint32
	Type  daxproto.Type
	Count uint32
	Attr  uint32
	Name  string
}

func decodeTagDescriptor(b []byte) (TagDescriptor, []byte, error) {
	if len(b) < 16 {
		return TagDescriptor{}, nil, daxproto.ARG
	}
	t := TagDescriptor{
		Index: binary.LittleEndian.Uint32(b[0:4]),
		Type:  daxproto.Type(binary.LittleEndian.Uint32(b[4:8])),
		Count: binary.LittleEndian.Uint32(b[8:12]),
		Attr:  binary.LittleEndian.Uint32(b[12:16]),
	}
	name, rest, err := daxproto.GetString(b[16:])
	if err != nil {
		return TagDescriptor{}, nil, err
	}
	t.Name = name
	return t, rest, nil
}

// tagAttrQueue and tagAttrRetain mirror internal/dispatch's
// handleTagAdd attr-byte bit layout.
const (
	tagAttrQueue  = 1 << 0
	tagAttrRetain = 1 << 1
)

// TagAdd registers a new tag. count of zero is treated as 1 by daxd.
func (c *Client) TagAdd(name, typeName string, count uint32) (uint32, error) {
	return c.tagAdd(name, typeName, count, 0)
}

// TagAddQueue registers a QUEUE-attributed tag (spec.md §4.1 "Queue
// tags").
func (c *Client) TagAddQueue(name, typeName string, count uint32) (uint32, error) {
	return c.tagAdd(name, typeName, count, tagAttrQueue)
}

// TagAddRetain registers a tag flagged RETAIN (spec.md §3, §4.6): the
// retention layer persists its value across daxd restarts.
func (c *Client) TagAddRetain(name, typeName string, count uint32) (uint32, error) {
	return c.tagAdd(name, typeName, count, tagAttrRetain)
}

func (c *Client) tagAdd(name, typeName string, count uint32, attr byte) (uint32, error) {
	payload := make([]byte, 0, 5+len(typeName)+len(name)+4)
	payload = append(payload, attr)
	payload = append(payload, encodeU32(count)...)
	payload = daxproto.PutString(payload, typeName)
	payload = daxproto.PutString(payload, name)

	body, err := c.roundTrip(daxproto.TAG_ADD, payload)
	if err != nil {
		return 0, err
	}
	return decodeU32(body)
}

// TagDel removes a tag by index.
func (c *Client) TagDel(index uint32) error {
	_, err := c.roundTrip(daxproto.TAG_DEL, encodeU32(index))
	return err
}

// TagGetByName looks up a tag's descriptor by name.
func (c *Client) TagGetByName(name string) (TagDescriptor, error) {
	body, err := c.roundTrip(daxproto.TAG_GET, daxproto.PutString(nil, name))
	if err != nil {
		return TagDescriptor{}, err
	}
	t, _, err := decodeTagDescriptor(body)
	return t, err
}

// TagGetByIndex looks up a tag's descriptor by index.
func (c *Client) TagGetByIndex(index uint32) (TagDescriptor, error) {
	body, err := c.roundTrip(daxproto.TAG_GET, encodeU32(index))
	if err != nil {
		return TagDescriptor{}, err
	}
	t, _, err := decodeTagDescriptor(body)
	return t, err
}

// TagList returns every live tag's descriptor.
func (c *Client) TagList() ([]TagDescriptor, error) {
	body, err := c.roundTrip(daxproto.TAG_LIST, nil)
	if err != nil {
		return nil, err
	}
	if len(body) < 4 {
		return nil, daxproto.ARG
	}
	n := binary.LittleEndian.Uint32(body[0:4])
	rest := body[4:]
	out := make([]TagDescriptor, 0, n)
	for i := uint32(0); i < n; i++ {
		t, r, err := decodeTagDescriptor(rest)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
		rest = r
	}
	return out, nil
}

// TagRead reads the bytes addressed by addr.
func (c *Client) TagRead(addr string) ([]byte, error) {
	return c.roundTrip(daxproto.TAG_READ, daxproto.PutString(nil, addr))
}

// TagWrite writes data to the region addressed by addr.
func (c *Client) TagWrite(addr string, data []byte) error {
	payload := daxproto.PutString(nil, addr)
	payload = append(payload, data...)
	_, err := c.roundTrip(daxproto.TAG_WRITE, payload)
	return err
}

// TagMaskWrite writes data to addr under mask: only bytes with a set
// mask bit are changed (spec.md §4.1). data and mask must be the same
// length as the region addr resolves to.
func (c *Client) TagMaskWrite(addr string, data, mask []byte) error {
	payload := daxproto.PutString(nil, addr)
	payload = append(payload, data...)
	payload = append(payload, mask...)
	_, err := c.roundTrip(daxproto.TAG_MWRITE, payload)
	return err
}

// AtomicOp performs an atomic read-modify-write on addr and returns
// the region's new value.
func (c *Client) AtomicOp(addr string, op daxproto.AtomicOp, operand []byte) ([]byte, error) {
	payload := daxproto.PutString(nil, addr)
	payload = append(payload, encodeU32(uint32(op))...)
	payload = append(payload, operand...)
	return c.roundTrip(daxproto.ATOMIC_OP, payload)
}
