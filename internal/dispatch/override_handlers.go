// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dispatch

import "github.com/opendax/daxd/pkg/daxproto"

// handleOverrideAdd's payload is { address_string, data }: store a
// shadow value without arming it (spec.md §4.5 override_add). The
// shadow is recorded as owned by conn so it is freed automatically if
// conn disconnects without an explicit override_del.
func (s *Server) handleOverrideAdd(conn *Connection, payload []byte) ([]byte, daxproto.Code) {
	h, rest, code := s.resolveHandle(payload)
	if code != daxproto.OK {
		return nil, code
	}
	if err := s.DB.OverrideAdd(conn.ID, h, rest); err != nil {
		return nil, daxproto.AsCode(err)
	}
	return nil, daxproto.OK
}

// handleOverrideSet's payload is { address_string }: arm the
// previously-stored shadow (override_set).
func (s *Server) handleOverrideSet(payload []byte) ([]byte, daxproto.Code) {
	h, _, code := s.resolveHandle(payload)
	if code != daxproto.OK {
		return nil, code
	}
	if err := s.DB.OverrideSet(h); err != nil {
		return nil, daxproto.AsCode(err)
	}
	return nil, daxproto.OK
}

// handleOverrideClear's payload is { address_string }: disarm while
// retaining the shadow value (override_clr).
func (s *Server) handleOverrideClear(payload []byte) ([]byte, daxproto.Code) {
	h, _, code := s.resolveHandle(payload)
	if code != daxproto.OK {
		return nil, code
	}
	if err := s.DB.OverrideClear(h); err != nil {
		return nil, daxproto.AsCode(err)
	}
	return nil, daxproto.OK
}

// handleOverrideDel's payload is { address_string }: drop the shadow
// value entirely (override_del).
func (s *Server) handleOverrideDel(payload []byte) ([]byte, daxproto.Code) {
	h, _, code := s.resolveHandle(payload)
	if code != daxproto.OK {
		return nil, code
	}
	if err := s.DB.OverrideDel(h); err != nil {
		return nil, daxproto.AsCode(err)
	}
	return nil, daxproto.OK
}
