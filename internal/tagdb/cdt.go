// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tagdb

import (
	"github.com/opendax/daxd/pkg/daxproto"
)

// CDTMember is one named, typed field of a custom data type. Members are
// laid out in declaration order with no padding beyond what bit-packing
// of consecutive BOOL members requires, mirroring the original OpenDAX
// cdt_member byte/bit offset bookkeeping.
type CDTMember struct {
	Name       string
	Type       daxproto.Type
	Count      uint32 // array length, 1 for a scalar member
	ByteOffset uint32
	BitOffset  uint8
}

// CDT is a custom data type: an ordered, fixed list of members with a
// computed total byte size. Once created a CDT's layout never changes --
// tags referencing it only ever see the schema they were created against.
type CDT struct {
	Index   uint32
	Name    string
	Members []CDTMember
	Size    uint32 // total byte footprint of one instance
}

// newCDT computes member offsets and the total size for a freshly
// declared member list. Consecutive scalar BOOL members (count 1) are
// bit-packed into a shared byte run, exactly like the type registry
// packs a tag's own top-level BOOL array. A BOOL member with count > 1
// always starts its own byte run and occupies ceil(count/8) bytes,
// matching address.go's indexed and whole-member access arithmetic for
// an array member.
func newCDT(index uint32, name string, members []CDTMember) (*CDT, error) {
	if len(members) == 0 {
		return nil, daxproto.ARG
	}
	seen := make(map[string]bool, len(members))
	laid := make([]CDTMember, len(members))

	var byteOff uint32
	var bitOff uint8
	for i, m := range members {
		if m.Name == "" {
			return nil, daxproto.ARG
		}
		if seen[m.Name] {
			return nil, daxproto.TAG_DUPL
		}
		seen[m.Name] = true
		if m.Count == 0 {
			m.Count = 1
		}

		if m.Type.IsBool() && m.Count == 1 {
			m.ByteOffset = byteOff
			m.BitOffset = bitOff
			bitOff++
			if bitOff == 8 {
				bitOff = 0
				byteOff++
			}
		} else {
			if bitOff != 0 {
				bitOff = 0
				byteOff++
			}
			m.ByteOffset = byteOff
			m.BitOffset = 0
			if m.Type.IsBool() {
				byteOff += (m.Count + 7) / 8
			} else {
				byteOff += uint32(m.Type.Bytes()) * m.Count
			}
		}
		laid[i] = m
	}
	if bitOff != 0 {
		byteOff++
	}

	return &CDT{Index: index, Name: name, Members: laid, Size: byteOff}, nil
}

// Member looks up a member by name, returning its layout and ok=false if
// no such member exists.
func (c *CDT) Member(name string) (CDTMember, bool) {
	for _, m := range c.Members {
		if m.Name == name {
			return m, true
		}
	}
	return CDTMember{}, false
}
