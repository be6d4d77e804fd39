// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package override implements the shadow-value layer described in
// spec.md §4.1 "Override": a per-tag-region shadow payload plus an
// armed bit. While armed, reads return the shadow bytes instead of the
// tag's real payload; the underlying write path still runs so the real
// value stays current for when the override is cleared.
//
// Shadow carries no lock of its own -- every exported method here is
// only ever called by internal/tagdb while it holds the tag database's
// single read/write lock, consistent with spec.md §5's single
// coarse-grained lock covering the tag database, events, mappings,
// groups, and overrides together.
package override

// Shadow is the override state attached to one Tag. A zero Shadow is
// "no override armed".
type Shadow struct {
	armed      bool
	byteOffset uint32
	bitOffset  uint8
	data       []byte
}

// Armed reports whether an override shadow is currently in effect for
// the given byte/bit region. Overrides are region-specific: a shadow
// armed over one member of a CDT tag does not mask reads of a sibling
// member.
func (s *Shadow) Armed(byteOffset uint32, bitOffset uint8, size int) bool {
	return s.armed && s.byteOffset == byteOffset && s.bitOffset == bitOffset && len(s.data) == size
}

// Store installs shadow bytes for the region without arming it
// (spec.md §4.1 override_add): the value is held ready but does not yet
// mask reads.
func (s *Shadow) Store(byteOffset uint32, bitOffset uint8, data []byte) {
	s.byteOffset = byteOffset
	s.bitOffset = bitOffset
	s.data = append([]byte(nil), data...)
}

// Arm marks the already-stored shadow active (override_set), reporting
// whether this call transitioned the region from disarmed to armed (the
// caller uses that to decide whether to fire a CHANGE event). Arming a
// region with no stored shadow is a no-op that reports no transition.
func (s *Shadow) Arm() bool {
	if s.data == nil {
		return false
	}
	wasArmed := s.armed
	s.armed = true
	return !wasArmed
}

// Disarm masks the override off while retaining the shadow bytes
// (override_clr), so a later Arm call restores the same value. Reports
// whether it had been armed.
func (s *Shadow) Disarm() bool {
	wasArmed := s.armed
	s.armed = false
	return wasArmed
}

// Drop removes the shadow entirely (override_del), reporting whether it
// had been armed.
func (s *Shadow) Drop() bool {
	wasArmed := s.armed
	s.armed = false
	s.data = nil
	return wasArmed
}

// Data returns the current shadow bytes; callers must check Armed
// first.
func (s *Shadow) Data() []byte {
	return s.data
}
