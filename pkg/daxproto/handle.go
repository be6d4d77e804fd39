// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package daxproto

import "encoding/binary"

// Handle is the client-side coordinate into a tag region (spec.md §3,
// "Handle"). It is produced by parsing an address string against the
// current type schema and stays valid only as long as the tag is alive
// and its type schema is unchanged.
type Handle struct {
	Index      uint32
	Type       Type
	ByteOffset uint32
	BitOffset  uint8
	Count      uint32
	Size       uint32 // total bytes spanned by Count elements of Type
}

// WholeTag reports whether h addresses the tag's entire payload from
// offset zero, as opposed to a member/array-element sub-region.
func (h Handle) WholeTag(tagByteLen uint32) bool {
	return h.ByteOffset == 0 && h.BitOffset == 0 && h.Size == tagByteLen
}

// HandleWireSize is Handle's fixed on-the-wire encoding: index, type,
// byte offset, bit offset (padded to 4 bytes), count, size.
const HandleWireSize = 4 + 4 + 4 + 4 + 4 + 4

// Encode writes h in wire format to buf, which must be at least
// HandleWireSize bytes.
func (h Handle) Encode(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:4], h.Index)
	binary.LittleEndian.PutUint32(buf[4:8], uint32(h.Type))
	binary.LittleEndian.PutUint32(buf[8:12], h.ByteOffset)
	binary.LittleEndian.PutUint32(buf[12:16], uint32(h.BitOffset))
	binary.LittleEndian.PutUint32(buf[16:20], h.Count)
	binary.LittleEndian.PutUint32(buf[20:24], h.Size)
}

// DecodeHandle parses a wire-format Handle from buf.
func DecodeHandle(buf []byte) Handle {
	return Handle{
		Index:      binary.LittleEndian.Uint32(buf[0:4]),
		Type:       Type(binary.LittleEndian.Uint32(buf[4:8])),
		ByteOffset: binary.LittleEndian.Uint32(buf[8:12]),
		BitOffset:  uint8(binary.LittleEndian.Uint32(buf[12:16])),
		Count:      binary.LittleEndian.Uint32(buf[16:20]),
		Size:       binary.LittleEndian.Uint32(buf[20:24]),
	}
}
