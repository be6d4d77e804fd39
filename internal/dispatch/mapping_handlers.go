// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dispatch

import (
	"encoding/binary"

	"github.com/opendax/daxd/pkg/daxproto"
)

// handleMapAdd's payload is { src_address, dst_address }.
func (s *Server) handleMapAdd(conn *Connection, payload []byte) ([]byte, daxproto.Code) {
	srcName, rest, err := daxproto.GetString(payload)
	if err != nil {
		return nil, daxproto.ARG
	}
	dstName, _, err := daxproto.GetString(rest)
	if err != nil {
		return nil, daxproto.ARG
	}

	s.DB.Lock()
	defer s.DB.Unlock()
	src, serr := s.DB.ParseHandleLocked(srcName)
	if serr != nil {
		return nil, daxproto.AsCode(serr)
	}
	dst, derr := s.DB.ParseHandleLocked(dstName)
	if derr != nil {
		return nil, daxproto.AsCode(derr)
	}
	id, aerr := s.DB.Mappings().Add(conn.ID, src, dst)
	if aerr != nil {
		return nil, daxproto.AsCode(aerr)
	}
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, id)
	return buf, daxproto.OK
}

func (s *Server) handleMapDel(payload []byte) ([]byte, daxproto.Code) {
	id, ok := decodeU32(payload)
	if !ok {
		return nil, daxproto.ARG
	}
	s.DB.Lock()
	removed := s.DB.Mappings().Del(id)
	s.DB.Unlock()
	if !removed {
		return nil, daxproto.NOTFOUND
	}
	return nil, daxproto.OK
}

func (s *Server) handleMapGet(payload []byte) ([]byte, daxproto.Code) {
	id, ok := decodeU32(payload)
	if !ok {
		return nil, daxproto.ARG
	}
	s.DB.Lock()
	m, found := s.DB.Mappings().Get(id)
	s.DB.Unlock()
	if !found {
		return nil, daxproto.NOTFOUND
	}
	buf := make([]byte, daxproto.HandleWireSize*2)
	m.Src.Encode(buf[:daxproto.HandleWireSize])
	m.Dst.Encode(buf[daxproto.HandleWireSize:])
	return buf, daxproto.OK
}
