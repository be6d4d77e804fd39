// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package daxclient

import "github.com/opendax/daxd/pkg/daxproto"

// GroupAdd bundles addrs into a single ordered handle group scoped to
// this connection (spec.md §4.4), returning the group id used by
// GroupRead/GroupWrite/GroupDel.
func (c *Client) GroupAdd(addrs ...string) (uint32, error) {
	payload := encodeU32(uint32(len(addrs)))
	for _, a := range addrs {
		payload = daxproto.PutString(payload, a)
	}
	body, err := c.roundTrip(daxproto.GROUP_ADD, payload)
	if err != nil {
		return 0, err
	}
	return decodeU32(body)
}

// GroupRead reads every member's bytes back-to-back in one round trip.
// There is no cross-member atomicity: a concurrent write to one member
// can interleave with the read of another.
func (c *Client) GroupRead(id uint32) ([]byte, error) {
	return c.roundTrip(daxproto.GROUP_READ, encodeU32(id))
}

// GroupWrite writes data across every member in order; data must equal
// the concatenated size of the group's members.
func (c *Client) GroupWrite(id uint32, data []byte) error {
	payload := encodeU32(id)
	payload = append(payload, data...)
	_, err := c.roundTrip(daxproto.GROUP_WRITE, payload)
	return err
}

// GroupDel discards a group. Groups are also torn down implicitly on
// Unregister/Disconnect.
func (c *Client) GroupDel(id uint32) error {
	_, err := c.roundTrip(daxproto.GROUP_DEL, encodeU32(id))
	return err
}
