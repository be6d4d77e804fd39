// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dispatch

import (
	"encoding/binary"

	"github.com/opendax/daxd/pkg/daxproto"
)

// handleGroupAdd's payload is { member_count u32, address strings... }
// (spec.md §4.4): each address is resolved to a handle under the
// database lock so the group's member list is fixed at registration
// time, exactly as the teacher's batched-query handlers fix their
// sub-query list once per request.
func (s *Server) handleGroupAdd(conn *Connection, payload []byte) ([]byte, daxproto.Code) {
	if len(payload) < 4 {
		return nil, daxproto.ARG
	}
	n := binary.LittleEndian.Uint32(payload[0:4])
	rest := payload[4:]

	handles := make([]daxproto.Handle, 0, n)
	s.DB.RLock()
	for i := uint32(0); i < n; i++ {
		addr, r, err := daxproto.GetString(rest)
		if err != nil {
			s.DB.RUnlock()
			return nil, daxproto.ARG
		}
		rest = r
		h, perr := s.DB.ParseHandleLocked(addr)
		if perr != nil {
			s.DB.RUnlock()
			return nil, daxproto.AsCode(perr)
		}
		handles = append(handles, h)
	}
	s.DB.RUnlock()

	id := s.Groups.Add(conn.ID, handles)
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, id)
	return buf, daxproto.OK
}

// handleGroupRead's payload is { group_id u32 }.
func (s *Server) handleGroupRead(payload []byte) ([]byte, daxproto.Code) {
	id, ok := decodeU32(payload)
	if !ok {
		return nil, daxproto.ARG
	}
	data, err := s.Groups.Read(s.DB, id)
	if err != nil {
		return nil, daxproto.AsCode(err)
	}
	return data, daxproto.OK
}

// handleGroupWrite's payload is { group_id u32, data }.
func (s *Server) handleGroupWrite(payload []byte) ([]byte, daxproto.Code) {
	if len(payload) < 4 {
		return nil, daxproto.ARG
	}
	id := binary.LittleEndian.Uint32(payload[0:4])
	if err := s.Groups.Write(s.DB, id, payload[4:]); err != nil {
		return nil, daxproto.AsCode(err)
	}
	return nil, daxproto.OK
}

func (s *Server) handleGroupDel(payload []byte) ([]byte, daxproto.Code) {
	id, ok := decodeU32(payload)
	if !ok {
		return nil, daxproto.ARG
	}
	if !s.Groups.Del(id) {
		return nil, daxproto.NOTFOUND
	}
	return nil, daxproto.OK
}

// handleAtomicOp's payload is { address_string, op u32, operand }
// (spec.md §4.7/SPEC_FULL.md §4 "Atomic operations").
func (s *Server) handleAtomicOp(payload []byte) ([]byte, daxproto.Code) {
	h, rest, code := s.resolveHandle(payload)
	if code != daxproto.OK {
		return nil, code
	}
	if len(rest) < 4 {
		return nil, daxproto.ARG
	}
	op := daxproto.AtomicOp(binary.LittleEndian.Uint32(rest[0:4]))
	operand := rest[4:]

	result, err := s.DB.AtomicOp(h, op, operand)
	if err != nil {
		return nil, daxproto.AsCode(err)
	}
	return result, daxproto.OK
}
