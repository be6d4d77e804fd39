// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package events

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/opendax/daxd/pkg/daxproto"
)

// matches evaluates e's predicate given the region's previous bytes
// (old, nil for a QUEUE tag push) and its new bytes; firstWrite is true
// for the first write the event sees. Both slices are already sliced
// down to exactly e's watched region.
func matches(e *Event, old, new []byte, firstWrite bool) bool {
	switch e.Kind {
	case daxproto.EventWrite:
		return true
	case daxproto.EventChange:
		return firstWrite || !bytes.Equal(old, new)
	case daxproto.EventSet:
		return !allZero(new) && (firstWrite || allZero(old))
	case daxproto.EventReset:
		return allZero(new) && (firstWrite || !allZero(old))
	case daxproto.EventEqual:
		return bytes.Equal(new, e.Compare)
	case daxproto.EventNotEqual:
		return !bytes.Equal(new, e.Compare)
	case daxproto.EventGreater:
		threshold := asFloat(e.ValueKind, e.Compare)
		satisfied := asFloat(e.ValueKind, new) > threshold
		wasSatisfied := !firstWrite && asFloat(e.ValueKind, old) > threshold
		return satisfied && !wasSatisfied
	case daxproto.EventLess:
		threshold := asFloat(e.ValueKind, e.Compare)
		satisfied := asFloat(e.ValueKind, new) < threshold
		wasSatisfied := !firstWrite && asFloat(e.ValueKind, old) < threshold
		return satisfied && !wasSatisfied
	case daxproto.EventDeadband:
		if firstWrite {
			return false
		}
		delta := asFloat(e.ValueKind, new) - asFloat(e.ValueKind, old)
		if delta < 0 {
			delta = -delta
		}
		return delta >= e.Deadband
	default:
		return false
	}
}

func allZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}

// asFloat decodes b as the numeric type named by kind for GREATER,
// LESS, and DEADBAND comparisons. Unrecognized kinds or short buffers
// decode as zero rather than panicking -- a malformed comparison value
// should never crash the dispatcher.
func asFloat(kind daxproto.Kind, b []byte) float64 {
	switch kind {
	case daxproto.KindReal:
		if len(b) < 4 {
			return 0
		}
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
	case daxproto.KindLreal:
		if len(b) < 8 {
			return 0
		}
		return math.Float64frombits(binary.LittleEndian.Uint64(b))
	case daxproto.KindSint:
		if len(b) < 1 {
			return 0
		}
		return float64(int8(b[0]))
	case daxproto.KindByte:
		if len(b) < 1 {
			return 0
		}
		return float64(b[0])
	case daxproto.KindInt:
		if len(b) < 2 {
			return 0
		}
		return float64(int16(binary.LittleEndian.Uint16(b)))
	case daxproto.KindWord, daxproto.KindUint:
		if len(b) < 2 {
			return 0
		}
		return float64(binary.LittleEndian.Uint16(b))
	case daxproto.KindDint, daxproto.KindTime:
		if len(b) < 4 {
			return 0
		}
		return float64(int32(binary.LittleEndian.Uint32(b)))
	case daxproto.KindDword, daxproto.KindUdint:
		if len(b) < 4 {
			return 0
		}
		return float64(binary.LittleEndian.Uint32(b))
	case daxproto.KindLint, daxproto.KindLtime:
		if len(b) < 8 {
			return 0
		}
		return float64(int64(binary.LittleEndian.Uint64(b)))
	case daxproto.KindLword, daxproto.KindUlint:
		if len(b) < 8 {
			return 0
		}
		return float64(binary.LittleEndian.Uint64(b))
	default:
		return 0
	}
}
