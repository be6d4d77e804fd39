// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tagdb

import (
	"encoding/binary"

	"github.com/opendax/daxd/pkg/daxproto"
)

// applyAtomic performs op against old, treating both old and operand
// as little-endian unsigned integers of the same width (1, 2, 4, or 8
// bytes). INC/DEC add/subtract operand as the delta (spec.md §8's
// "atomic_op(INC, h, delta): post-value == pre-value + delta"),
// defaulting the delta to 1 when no operand is supplied. AtomicNot
// ignores operand. Unsigned results wrap on overflow per spec.md §8.
func applyAtomic(op daxproto.AtomicOp, old, operand []byte) ([]byte, error) {
	switch len(old) {
	case 1:
		a := old[0]
		b := defaultOperand(op)
		if len(operand) == 1 {
			b = uint64(operand[0])
		}
		return []byte{atomic8(op, a, byte(b))}, nil
	case 2:
		a := binary.LittleEndian.Uint16(old)
		b := defaultOperand(op)
		if len(operand) == 2 {
			b = uint64(binary.LittleEndian.Uint16(operand))
		}
		out := make([]byte, 2)
		binary.LittleEndian.PutUint16(out, uint16(atomic64(op, uint64(a), b)))
		return out, nil
	case 4:
		a := binary.LittleEndian.Uint32(old)
		b := defaultOperand(op)
		if len(operand) == 4 {
			b = uint64(binary.LittleEndian.Uint32(operand))
		}
		out := make([]byte, 4)
		binary.LittleEndian.PutUint32(out, uint32(atomic64(op, uint64(a), b)))
		return out, nil
	case 8:
		a := binary.LittleEndian.Uint64(old)
		b := defaultOperand(op)
		if len(operand) == 8 {
			b = binary.LittleEndian.Uint64(operand)
		}
		out := make([]byte, 8)
		binary.LittleEndian.PutUint64(out, atomic64(op, a, b))
		return out, nil
	default:
		return nil, daxproto.BADTYPE
	}
}

// defaultOperand is the implicit delta used when the caller supplies
// no operand bytes: INC/DEC step by 1 (spec.md §8's
// "atomic_op(INC, h, delta)" with an implied delta of 1), every other
// op defaults to 0 since AND/OR/XOR/NOT are meaningless without an
// explicit operand.
func defaultOperand(op daxproto.AtomicOp) uint64 {
	if op == daxproto.AtomicInc || op == daxproto.AtomicDec {
		return 1
	}
	return 0
}

func atomic8(op daxproto.AtomicOp, a, b byte) byte {
	return byte(atomic64(op, uint64(a), uint64(b)))
}

func atomic64(op daxproto.AtomicOp, a, b uint64) uint64 {
	switch op {
	case daxproto.AtomicInc:
		return a + b
	case daxproto.AtomicDec:
		return a - b
	case daxproto.AtomicAnd:
		return a & b
	case daxproto.AtomicOr:
		return a | b
	case daxproto.AtomicXor:
		return a ^ b
	case daxproto.AtomicNot:
		return ^a
	default:
		return a
	}
}
