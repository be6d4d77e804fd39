// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package daxclient

import "github.com/opendax/daxd/pkg/daxproto"

// OverrideAdd stores a shadow value for addr without arming it
// (spec.md §4.5 override_add). Reads of addr are unaffected until
// OverrideSet arms the shadow.
func (c *Client) OverrideAdd(addr string, data []byte) error {
	payload := daxproto.PutString(nil, addr)
	payload = append(payload, data...)
	_, err := c.roundTrip(daxproto.OVR_ADD, payload)
	return err
}

// OverrideSet arms the previously stored shadow value, so reads of
// addr return it until OverrideClear (override_set).
func (c *Client) OverrideSet(addr string) error {
	_, err := c.roundTrip(daxproto.OVR_SET, daxproto.PutString(nil, addr))
	return err
}

// OverrideClear disarms addr's override while retaining the shadow
// value for a later OverrideSet (override_clr).
func (c *Client) OverrideClear(addr string) error {
	_, err := c.roundTrip(daxproto.OVR_CLR, daxproto.PutString(nil, addr))
	return err
}

// OverrideDel drops addr's shadow value entirely (override_del).
func (c *Client) OverrideDel(addr string) error {
	_, err := c.roundTrip(daxproto.OVR_DEL, daxproto.PutString(nil, addr))
	return err
}
