// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tagdb

import "github.com/opendax/daxd/pkg/daxproto"

type baseType struct {
	Type daxproto.Type
	Kind daxproto.Kind
}

var baseTypesByName = map[string]baseType{
	"BOOL":  {daxproto.BOOL, daxproto.KindBool},
	"BYTE":  {daxproto.BYTE, daxproto.KindByte},
	"SINT":  {daxproto.SINT, daxproto.KindSint},
	"WORD":  {daxproto.WORD, daxproto.KindWord},
	"INT":   {daxproto.INT, daxproto.KindInt},
	"UINT":  {daxproto.UINT, daxproto.KindUint},
	"DWORD": {daxproto.DWORD, daxproto.KindDword},
	"DINT":  {daxproto.DINT, daxproto.KindDint},
	"UDINT": {daxproto.UDINT, daxproto.KindUdint},
	"TIME":  {daxproto.TIME, daxproto.KindTime},
	"REAL":  {daxproto.REAL, daxproto.KindReal},
	"LWORD": {daxproto.LWORD, daxproto.KindLword},
	"LINT":  {daxproto.LINT, daxproto.KindLint},
	"ULINT": {daxproto.ULINT, daxproto.KindUlint},
	"LREAL": {daxproto.LREAL, daxproto.KindLreal},
	"LTIME": {daxproto.LTIME, daxproto.KindLtime},
}

// LookupBaseType resolves name against the fixed set of base scalar
// type names only (no CDTs), for callers building up a CDT member
// list who need to fall back to a registry lookup for custom member
// types themselves.
func LookupBaseType(name string) (daxproto.Type, daxproto.Kind, bool) {
	bt, ok := baseTypesByName[name]
	return bt.Type, bt.Kind, ok
}

// resolveType looks up a type name against the base scalar types and,
// failing that, the registered CDTs, returning both the wire Type code
// and the disambiguating Kind (zero for custom types, whose layout is
// carried by the CDT itself rather than a single Kind).
func (db *DB) resolveType(name string) (daxproto.Type, daxproto.Kind, error) {
	if bt, ok := baseTypesByName[name]; ok {
		return bt.Type, bt.Kind, nil
	}
	if idx, ok := db.cdtByName[name]; ok {
		return daxproto.CustomType(idx), 0, nil
	}
	return 0, 0, daxproto.BADTYPE
}
