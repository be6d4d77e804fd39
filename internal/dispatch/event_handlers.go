// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dispatch

import (
	"encoding/binary"
	"math"

	"github.com/opendax/daxd/internal/events"
	"github.com/opendax/daxd/pkg/daxproto"
)

// handleEventAdd's payload is { address_string, kind u32, value_kind
// u32, compare_len u32, compare bytes, deadband_bits u64 }.
func (s *Server) handleEventAdd(conn *Connection, payload []byte) ([]byte, daxproto.Code) {
	h, rest, code := s.resolveHandle(payload)
	if code != daxproto.OK {
		return nil, code
	}
	kind, valueKind, compare, deadband, ok := decodeEventSpec(rest)
	if !ok {
		return nil, daxproto.ARG
	}

	s.DB.Lock()
	id := s.DB.Events().Add(&events.Event{
		TagIndex:   h.Index,
		ByteOffset: h.ByteOffset,
		BitOffset:  h.BitOffset,
		Size:       int(h.Size),
		Kind:       kind,
		ValueKind:  valueKind,
		Compare:    compare,
		Deadband:   deadband,
		Owner:      conn,
	})
	s.DB.Unlock()

	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, id)
	return buf, daxproto.OK
}

func (s *Server) handleEventDel(payload []byte) ([]byte, daxproto.Code) {
	id, ok := decodeU32(payload)
	if !ok {
		return nil, daxproto.ARG
	}
	s.DB.Lock()
	removed := s.DB.Events().Del(id)
	s.DB.Unlock()
	if !removed {
		return nil, daxproto.NOTFOUND
	}
	return nil, daxproto.OK
}

func (s *Server) handleEventMod(payload []byte) ([]byte, daxproto.Code) {
	if len(payload) < 4 {
		return nil, daxproto.ARG
	}
	id := binary.LittleEndian.Uint32(payload[0:4])
	kind, _, compare, deadband, ok := decodeEventSpec(payload[4:])
	if !ok {
		return nil, daxproto.ARG
	}
	s.DB.Lock()
	modded := s.DB.Events().Mod(id, kind, compare, deadband)
	s.DB.Unlock()
	if !modded {
		return nil, daxproto.NOTFOUND
	}
	return nil, daxproto.OK
}

func decodeEventSpec(b []byte) (kind daxproto.EventKind, valueKind daxproto.Kind, compare []byte, deadband float64, ok bool) {
	if len(b) < 4+4+4 {
		return
	}
	kind = daxproto.EventKind(binary.LittleEndian.Uint32(b[0:4]))
	valueKind = daxproto.Kind(binary.LittleEndian.Uint32(b[4:8]))
	compareLen := binary.LittleEndian.Uint32(b[8:12])
	b = b[12:]
	if uint32(len(b)) < compareLen+8 {
		return
	}
	compare = append([]byte(nil), b[:compareLen]...)
	deadband = math.Float64frombits(binary.LittleEndian.Uint64(b[compareLen : compareLen+8]))
	ok = true
	return
}
