/*
Licensed to the Apache Software Foundation (ASF) under one
or more contributor license agreements.  See the NOTICE file
distributed with this work for additional information
regarding copyright ownership.  The ASF licenses this file
to you under the Apache License, Version 2.0 (the
"License"); you may not use this file except in compliance
with the License.  You may obtain a copy of the License at

  http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing,
software distributed under the License is distributed on an
"AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
KIND, either express or implied.  See the License for the
specific language governing permissions and limitations
under the License.
*/

package amqp

import (
	"encoding/binary"
	"math"
)

// initialBufferSize is the starting buffer size for EncodeGrow. A message
// with a handful of header and property fields usually fits in one try at
// this size, so the common case avoids a reallocation and retry.
const initialBufferSize = 512

// Encode serializes the tree's top-level value sequence into buf, choosing
// the minimal valid wire form for every value outside an array; array
// elements share one full-width constructor (see arrayElementConstructor).
// If buf is too
// small it returns ErrOverflow and leaves buf's observable contents
// untouched; the caller should retry with a larger buffer (see EncodeGrow).
func (t *Tree) Encode(buf []byte) ([]byte, error) {
	full, err := t.encodeFull()
	if err != nil {
		return nil, err
	}
	if len(full) > len(buf) {
		return nil, ErrOverflow
	}
	n := copy(buf, full)
	return buf[:n], nil
}

// EncodeGrow encodes the tree into buf, doubling the buffer and retrying
// whenever Encode reports overflow.
func (t *Tree) EncodeGrow(buf []byte) ([]byte, error) {
	return EncodeGrow(buf, initialBufferSize, t.Encode)
}

// encodeFn encodes into buf, returning the written prefix or ErrOverflow.
type encodeFn func(buf []byte) ([]byte, error)

// EncodeGrow calls encode(buf), growing buf by doubling and retrying for as
// long as encode reports ErrOverflow. It is shared by Tree.EncodeGrow and
// Message.Encode.
func EncodeGrow(buf []byte, startSize int, encode encodeFn) ([]byte, error) {
	if len(buf) == 0 {
		buf = make([]byte, startSize)
	}
	for {
		out, err := encode(buf)
		if err == nil {
			return out, nil
		}
		if ferr, ok := err.(*Error); ok && ferr.Kind == KindOverflow {
			buf = make([]byte, 2*len(buf))
			continue
		}
		return nil, err
	}
}

func (t *Tree) encodeFull() ([]byte, error) {
	var out []byte
	for _, v := range t.top {
		b, err := encodeValue(v)
		if err != nil {
			return nil, err
		}
		out = append(out, b...)
	}
	return out, nil
}

// encodeValue encodes v and its full subtree, choosing the minimal valid
// wire form, and returns the bytes including v's own constructor.
func encodeValue(v *Value) ([]byte, error) {
	return encodeValueForced(v, 0)
}

// encodeValueForced is like encodeValue but, when forced is non-zero, uses
// it as the constructor instead of choosing the minimal one. This is used
// only for array elements, which must all share one constructor rather
// than each pick its own minimal form.
func encodeValueForced(v *Value, forced constructor) ([]byte, error) {
	switch v.tag {
	case Null:
		return []byte{byte(codeNull)}, nil

	case Bool:
		if forced == codeBool {
			if v.boolVal() {
				return []byte{byte(codeBool), 1}, nil
			}
			return []byte{byte(codeBool), 0}, nil
		}
		if v.boolVal() {
			return []byte{byte(codeBoolTrue)}, nil
		}
		return []byte{byte(codeBoolFalse)}, nil

	case Ubyte:
		return []byte{byte(codeUbyte), uint8(v.uint64Val())}, nil

	case Byte:
		return []byte{byte(codeByte), byte(int8(v.int64Val()))}, nil

	case Ushort:
		b := make([]byte, 3)
		b[0] = byte(codeUshort)
		binary.BigEndian.PutUint16(b[1:], uint16(v.uint64Val()))
		return b, nil

	case Short:
		b := make([]byte, 3)
		b[0] = byte(codeShort)
		binary.BigEndian.PutUint16(b[1:], uint16(int16(v.int64Val())))
		return b, nil

	case Uint:
		return encodeUintLike(v.uint64Val(), forced, codeUint0, codeSmallUint, codeUint, 4), nil

	case Int:
		return encodeIntLike(v.int64Val(), forced, codeSmallInt, codeInt, 4), nil

	case Ulong:
		return encodeUintLike(v.uint64Val(), forced, codeUlong0, codeSmallUlong, codeUlong, 8), nil

	case Long:
		return encodeIntLike(v.int64Val(), forced, codeSmallLong, codeLong, 8), nil

	case Float:
		b := make([]byte, 5)
		b[0] = byte(codeFloat)
		binary.BigEndian.PutUint32(b[1:], math.Float32bits(v.float32Val()))
		return b, nil

	case Double:
		b := make([]byte, 9)
		b[0] = byte(codeDouble)
		binary.BigEndian.PutUint64(b[1:], math.Float64bits(v.float64Val()))
		return b, nil

	case Char:
		b := make([]byte, 5)
		b[0] = byte(codeChar)
		binary.BigEndian.PutUint32(b[1:], uint32(v.charVal()))
		return b, nil

	case Timestamp:
		b := make([]byte, 9)
		b[0] = byte(codeTimestamp)
		binary.BigEndian.PutUint64(b[1:], uint64(v.timestampVal()))
		return b, nil

	case UUIDTag:
		b := make([]byte, 17)
		b[0] = byte(codeUUID)
		u := v.uuidVal()
		copy(b[1:], u[:])
		return b, nil

	case BinaryTag:
		return encodeVarBytes(v.Bytes(), forced, codeVbin8, codeVbin32), nil

	case String:
		return encodeVarBytes(v.Bytes(), forced, codeStr8, codeStr32), nil

	case SymbolTag:
		return encodeVarBytes(v.Bytes(), forced, codeSym8, codeSym32), nil

	case List:
		return encodeCompound(v.kids, false, forced == codeList32)

	case Map:
		return encodeCompound(v.kids, true, forced == codeMap32)

	case Array:
		return encodeArray(v, forced == codeArray32)

	case Described:
		return encodeDescribed(v)

	default:
		return nil, newTagError(KindEncoding, v.tag, "cannot encode")
	}
}

// encodeUintLike encodes an unsigned value as code0 (value 0), codeSmall
// (value in [1,255]) or codeFull (width bytes, big-endian), auto-selecting
// the minimal form unless forced requests the full width.
func encodeUintLike(n uint64, forced, code0, codeSmall, codeFull constructor, width int) []byte {
	if forced == 0 {
		if n == 0 {
			return []byte{byte(code0)}
		}
		if n <= 255 {
			return []byte{byte(codeSmall), byte(n)}
		}
	}
	b := make([]byte, 1+width)
	b[0] = byte(codeFull)
	if width == 4 {
		binary.BigEndian.PutUint32(b[1:], uint32(n))
	} else {
		binary.BigEndian.PutUint64(b[1:], n)
	}
	return b
}

// encodeIntLike encodes a signed value as codeSmall (fits in an int8) or
// codeFull (width bytes, big-endian), auto-selecting the minimal form
// unless forced requests the full width.
func encodeIntLike(n int64, forced, codeSmall, codeFull constructor, width int) []byte {
	if forced == 0 && n >= -128 && n <= 127 {
		return []byte{byte(codeSmall), byte(int8(n))}
	}
	b := make([]byte, 1+width)
	b[0] = byte(codeFull)
	if width == 4 {
		binary.BigEndian.PutUint32(b[1:], uint32(int32(n)))
	} else {
		binary.BigEndian.PutUint64(b[1:], uint64(n))
	}
	return b
}

// encodeVarBytes encodes a variable-length payload with an 8- or 32-bit
// length prefix, auto-selecting the minimal width unless forced requests
// one explicitly (used when a shared array element constructor was chosen
// to fit every element, not just this one).
func encodeVarBytes(payload []byte, forced, c8, c32 constructor) []byte {
	useWide := forced == c32 || (forced == 0 && len(payload) > 255)
	if !useWide {
		b := make([]byte, 0, 2+len(payload))
		b = append(b, byte(c8), byte(len(payload)))
		return append(b, payload...)
	}
	b := make([]byte, 0, 5+len(payload))
	b = append(b, byte(c32))
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], uint32(len(payload)))
	b = append(b, tmp[:]...)
	return append(b, payload...)
}

// encodeCompound encodes a List or Map's children, auto-selecting list0/
// list8/list32 (or map8/map32) unless force32 requests the wide form
// unconditionally (used for composite array elements, which must share a
// single, uniform-width constructor across the whole array).
func encodeCompound(kids []*Value, isMap, force32 bool) ([]byte, error) {
	if !isMap && len(kids) == 0 && !force32 {
		return []byte{byte(codeList0)}, nil
	}

	elems := make([][]byte, 0, len(kids))
	total := 0
	for _, k := range kids {
		b, err := encodeValue(k)
		if err != nil {
			return nil, err
		}
		elems = append(elems, b)
		total += len(b)
	}

	count := len(kids)
	size8, size32 := codeList8, codeList32
	if isMap {
		size8, size32 = codeMap8, codeMap32
	}
	sizeField := total + 1

	if !force32 && count <= 255 && sizeField <= 255 {
		out := make([]byte, 0, 3+total)
		out = append(out, byte(size8), byte(sizeField), byte(count))
		for _, e := range elems {
			out = append(out, e...)
		}
		return out, nil
	}

	out := make([]byte, 0, 9+total)
	out = append(out, byte(size32))
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], uint32(total+4))
	out = append(out, tmp[:]...)
	binary.BigEndian.PutUint32(tmp[:], uint32(count))
	out = append(out, tmp[:]...)
	for _, e := range elems {
		out = append(out, e...)
	}
	return out, nil
}

// encodeArray encodes an Array value: one shared element constructor
// followed by payload-only element bytes. Described arrays are rejected
// symmetrically with decodeArray.
func encodeArray(v *Value, force32 bool) ([]byte, error) {
	if v.elemDescribed || v.elemTag == Described {
		return nil, newError(KindEncoding, "described arrays not supported on the wire")
	}

	elemConstructor, err := arrayElementConstructor(v.elemTag, v.kids)
	if err != nil {
		return nil, err
	}

	var payload []byte
	for _, k := range v.kids {
		if k.Tag() != v.elemTag {
			return nil, newTagError(KindEncoding, k.Tag(), "array element does not match declared element tag %s", v.elemTag)
		}
		full, err := encodeValueForced(k, elemConstructor)
		if err != nil {
			return nil, err
		}
		payload = append(payload, full[1:]...)
	}

	count := len(v.kids)
	elemAndPayload := 1 + len(payload)

	if !force32 && count <= 255 && 1+elemAndPayload <= 255 {
		out := make([]byte, 0, 3+elemAndPayload)
		out = append(out, byte(codeArray8), byte(1+elemAndPayload), byte(count))
		out = append(out, byte(elemConstructor))
		out = append(out, payload...)
		return out, nil
	}

	out := make([]byte, 0, 9+elemAndPayload)
	out = append(out, byte(codeArray32))
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], uint32(4+elemAndPayload))
	out = append(out, tmp[:]...)
	binary.BigEndian.PutUint32(tmp[:], uint32(count))
	out = append(out, tmp[:]...)
	out = append(out, byte(elemConstructor))
	out = append(out, payload...)
	return out, nil
}

// arrayElementConstructor picks the single constructor shared by every
// element of an array of elemTag. Fixed-width scalars always use their
// full (non-compact) constructor; variable-width scalars use the widest
// length prefix any element needs; nested composites always use their
// 32-bit form — a deliberate simplification.
func arrayElementConstructor(elemTag Tag, kids []*Value) (constructor, error) {
	switch elemTag {
	case Null:
		return codeNull, nil
	case Bool:
		return codeBool, nil
	case Ubyte:
		return codeUbyte, nil
	case Byte:
		return codeByte, nil
	case Ushort:
		return codeUshort, nil
	case Short:
		return codeShort, nil
	case Uint:
		return codeUint, nil
	case Int:
		return codeInt, nil
	case Ulong:
		return codeUlong, nil
	case Long:
		return codeLong, nil
	case Float:
		return codeFloat, nil
	case Double:
		return codeDouble, nil
	case Char:
		return codeChar, nil
	case Timestamp:
		return codeTimestamp, nil
	case UUIDTag:
		return codeUUID, nil
	case BinaryTag:
		if maxByteLen(kids) > 255 {
			return codeVbin32, nil
		}
		return codeVbin8, nil
	case String:
		if maxByteLen(kids) > 255 {
			return codeStr32, nil
		}
		return codeStr8, nil
	case SymbolTag:
		if maxByteLen(kids) > 255 {
			return codeSym32, nil
		}
		return codeSym8, nil
	case List:
		return codeList32, nil
	case Map:
		return codeMap32, nil
	case Array:
		return codeArray32, nil
	case Described:
		return 0, newError(KindEncoding, "described arrays not supported on the wire")
	default:
		return 0, newTagError(KindEncoding, elemTag, "unsupported array element tag")
	}
}

func maxByteLen(kids []*Value) int {
	max := 0
	for _, k := range kids {
		if l := len(k.Bytes()); l > max {
			max = l
		}
	}
	return max
}

// encodeDescribed encodes a Described value as its descriptor followed by
// its body, each fully self-describing.
func encodeDescribed(v *Value) ([]byte, error) {
	if len(v.kids) != 2 {
		return nil, newError(KindEncoding, "described value must have exactly 2 children, got %d", len(v.kids))
	}
	descBytes, err := encodeValue(v.kids[0])
	if err != nil {
		return nil, err
	}
	bodyBytes, err := encodeValue(v.kids[1])
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, 1+len(descBytes)+len(bodyBytes))
	out = append(out, byte(codeDescribed))
	out = append(out, descBytes...)
	out = append(out, bodyBytes...)
	return out, nil
}
