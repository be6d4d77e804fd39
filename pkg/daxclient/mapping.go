// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package daxclient

import "github.com/opendax/daxd/pkg/daxproto"

// Mapping is a single registered src-to-dst copy rule, as reported by
// MapGet.
type Mapping struct {
	Src daxproto.Handle
	Dst daxproto.Handle
}

// MapAdd registers a fan-out copy rule: every write to src is mirrored
// to dst (spec.md §4.3), returning the mapping's id.
func (c *Client) MapAdd(src, dst string) (uint32, error) {
	payload := daxproto.PutString(nil, src)
	payload = daxproto.PutString(payload, dst)
	body, err := c.roundTrip(daxproto.MAP_ADD, payload)
	if err != nil {
		return 0, err
	}
	return decodeU32(body)
}

// MapDel removes a mapping by id.
func (c *Client) MapDel(id uint32) error {
	_, err := c.roundTrip(daxproto.MAP_DEL, encodeU32(id))
	return err
}

// MapGet returns the resolved src/dst handles of a registered mapping.
func (c *Client) MapGet(id uint32) (Mapping, error) {
	body, err := c.roundTrip(daxproto.MAP_GET, encodeU32(id))
	if err != nil {
		return Mapping{}, err
	}
	if len(body) < daxproto.HandleWireSize*2 {
		return Mapping{}, daxproto.ARG
	}
	var m Mapping
	m.Src = daxproto.DecodeHandle(body[:daxproto.HandleWireSize])
	m.Dst = daxproto.DecodeHandle(body[daxproto.HandleWireSize : daxproto.HandleWireSize*2])
	return m, nil
}
