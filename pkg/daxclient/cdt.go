// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package daxclient

import (
	"encoding/binary"

	"github.com/opendax/daxd/pkg/daxproto"
)

// CDTMemberSpec is one member of a custom data type under construction
// (spec.md §3 "Custom Data Types").
type CDTMemberSpec struct {
	Name     string
	TypeName string
	Count    uint32
}

// CDTBuilder accumulates members client-side before a single CDT_CREATE
// round trip, mirroring the original API's cdt_new/cdt_member/cdt_create
// sequence without needing a partially-created CDT on the server.
type CDTBuilder struct {
	name    string
	members []CDTMemberSpec
}

// CDTNew starts a new CDT builder named name.
func CDTNew(name string) *CDTBuilder {
	return &CDTBuilder{name: name}
}

// Member appends a member to the CDT under construction.
func (b *CDTBuilder) Member(name, typeName string, count uint32) *CDTBuilder {
	b.members = append(b.members, CDTMemberSpec{Name: name, TypeName: typeName, Count: count})
	return b
}

// Create registers the accumulated CDT with daxd, returning its
// registry index.
func (b *CDTBuilder) Create(c *Client) (uint32, error) {
	payload := daxproto.PutString(nil, b.name)
	payload = append(payload, encodeU32(uint32(len(b.members)))...)
	for _, m := range b.members {
		payload = daxproto.PutString(payload, m.Name)
		payload = daxproto.PutString(payload, m.TypeName)
		payload = append(payload, encodeU32(m.Count)...)
	}
	body, err := c.roundTrip(daxproto.CDT_CREATE, payload)
	if err != nil {
		return 0, err
	}
	return decodeU32(body)
}

// CDTMemberInfo is one member of an already-registered CDT, as
// reported by CDT_GET.
type CDTMemberInfo struct {
	Type  daxproto.Type
	Count uint32
	Name  string
}

// CDTGet fetches the member layout of the CDT registered under name.
func (c *Client) CDTGet(name string) ([]CDTMemberInfo, error) {
	body, err := c.roundTrip(daxproto.CDT_GET, daxproto.PutString(nil, name))
	if err != nil {
		return nil, err
	}
	if len(body) < 4 {
		return nil, daxproto.ARG
	}
	n := binary.LittleEndian.Uint32(body[0:4])
	rest := body[4:]
	out := make([]CDTMemberInfo, 0, n)
	for i := uint32(0); i < n; i++ {
		if len(rest) < 8 {
			return nil, daxproto.ARG
		}
		m := CDTMemberInfo{
			Type:  daxproto.Type(binary.LittleEndian.Uint32(rest[0:4])),
			Count: binary.LittleEndian.Uint32(rest[4:8]),
		}
		name, r, err := daxproto.GetString(rest[8:])
		if err != nil {
			return nil, err
		}
		m.Name = name
		rest = r
		out = append(out, m)
	}
	return out, nil
}
