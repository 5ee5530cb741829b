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
	"unicode/utf8"
)

// Decode parses one complete top-level value, including all nested
// children, from the prefix of data and appends it to the tree. It returns
// the number of bytes consumed. Any prefix of a valid encoding that is not
// itself a complete value yields ErrUnderflow with consumed == 0 and no
// change to the tree.
func (t *Tree) Decode(data []byte) (int, error) {
	v, n, err := decodeValue(data)
	if err != nil {
		return 0, err
	}
	t.top = append(t.top, v)
	return n, nil
}

func isUnderflow(err error) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == KindUnderflow
}

// decodeValue parses exactly one value (and its full subtree) from the
// prefix of data, returning the bytes consumed. It never mutates any tree;
// the caller commits the result only after full success.
func decodeValue(data []byte) (*Value, int, error) {
	if len(data) < 1 {
		return nil, 0, ErrUnderflow
	}
	c := constructor(data[0])

	switch c {
	case codeNull:
		return newNull(), 1, nil
	case codeBoolTrue:
		return newBool(true), 1, nil
	case codeBoolFalse:
		return newBool(false), 1, nil
	case codeBool:
		if len(data) < 2 {
			return nil, 0, ErrUnderflow
		}
		return newBool(data[1] != 0), 2, nil

	case codeUbyte:
		if len(data) < 2 {
			return nil, 0, ErrUnderflow
		}
		return newUintValue(Ubyte, uint64(data[1])), 2, nil
	case codeByte:
		if len(data) < 2 {
			return nil, 0, ErrUnderflow
		}
		return newIntValue(Byte, int64(int8(data[1]))), 2, nil

	case codeSmallUint:
		if len(data) < 2 {
			return nil, 0, ErrUnderflow
		}
		return newUintValue(Uint, uint64(data[1])), 2, nil
	case codeUint0:
		return newUintValue(Uint, 0), 1, nil
	case codeUint:
		if len(data) < 5 {
			return nil, 0, ErrUnderflow
		}
		return newUintValue(Uint, uint64(binary.BigEndian.Uint32(data[1:5]))), 5, nil

	case codeSmallUlong:
		if len(data) < 2 {
			return nil, 0, ErrUnderflow
		}
		return newUintValue(Ulong, uint64(data[1])), 2, nil
	case codeUlong0:
		return newUintValue(Ulong, 0), 1, nil
	case codeUlong:
		if len(data) < 9 {
			return nil, 0, ErrUnderflow
		}
		return newUintValue(Ulong, binary.BigEndian.Uint64(data[1:9])), 9, nil

	case codeSmallInt:
		if len(data) < 2 {
			return nil, 0, ErrUnderflow
		}
		return newIntValue(Int, int64(int8(data[1]))), 2, nil
	case codeInt:
		if len(data) < 5 {
			return nil, 0, ErrUnderflow
		}
		return newIntValue(Int, int64(int32(binary.BigEndian.Uint32(data[1:5])))), 5, nil

	case codeSmallLong:
		if len(data) < 2 {
			return nil, 0, ErrUnderflow
		}
		return newIntValue(Long, int64(int8(data[1]))), 2, nil
	case codeLong:
		if len(data) < 9 {
			return nil, 0, ErrUnderflow
		}
		return newIntValue(Long, int64(binary.BigEndian.Uint64(data[1:9]))), 9, nil

	case codeUshort:
		if len(data) < 3 {
			return nil, 0, ErrUnderflow
		}
		return newUintValue(Ushort, uint64(binary.BigEndian.Uint16(data[1:3]))), 3, nil
	case codeShort:
		if len(data) < 3 {
			return nil, 0, ErrUnderflow
		}
		return newIntValue(Short, int64(int16(binary.BigEndian.Uint16(data[1:3])))), 3, nil

	case codeFloat:
		if len(data) < 5 {
			return nil, 0, ErrUnderflow
		}
		return newFloat32Value(math.Float32frombits(binary.BigEndian.Uint32(data[1:5]))), 5, nil
	case codeDouble:
		if len(data) < 9 {
			return nil, 0, ErrUnderflow
		}
		return newFloat64Value(math.Float64frombits(binary.BigEndian.Uint64(data[1:9]))), 9, nil

	case codeChar:
		if len(data) < 5 {
			return nil, 0, ErrUnderflow
		}
		r := rune(binary.BigEndian.Uint32(data[1:5]))
		return newCharValue(r), 5, nil

	case codeTimestamp:
		if len(data) < 9 {
			return nil, 0, ErrUnderflow
		}
		return newTimestampValue(int64(binary.BigEndian.Uint64(data[1:9]))), 9, nil

	case codeUUID:
		if len(data) < 17 {
			return nil, 0, ErrUnderflow
		}
		var b [16]byte
		copy(b[:], data[1:17])
		return newUUIDValue(b), 17, nil

	case codeDecimal32, codeDecimal64, codeDecimal128:
		return nil, 0, unsupportedDecimalError(c)

	case codeVbin8:
		return decodeVarBytes(data, BinaryTag, false)
	case codeVbin32:
		return decodeVarBytes(data, BinaryTag, true)
	case codeStr8:
		return decodeVarBytes(data, String, false)
	case codeStr32:
		return decodeVarBytes(data, String, true)
	case codeSym8:
		return decodeVarBytes(data, SymbolTag, false)
	case codeSym32:
		return decodeVarBytes(data, SymbolTag, true)

	case codeList0:
		return newCompositeValue(List), 1, nil
	case codeList8:
		return decodeCompound(data, false, false)
	case codeList32:
		return decodeCompound(data, false, true)
	case codeMap8:
		return decodeCompound(data, true, false)
	case codeMap32:
		return decodeCompound(data, true, true)

	case codeArray8:
		return decodeArray(data, false)
	case codeArray32:
		return decodeArray(data, true)

	case codeDescribed:
		return decodeDescribed(data)

	default:
		return nil, 0, newError(KindEncoding, "unrecognized constructor %#02x", data[0])
	}
}

// decodeVarBytes parses a variable-width Binary/String/Symbol value with an
// 8- or 32-bit length prefix.
func decodeVarBytes(data []byte, tag Tag, wide bool) (*Value, int, error) {
	var length, headerLen int
	if wide {
		if len(data) < 5 {
			return nil, 0, ErrUnderflow
		}
		length = int(binary.BigEndian.Uint32(data[1:5]))
		headerLen = 5
	} else {
		if len(data) < 2 {
			return nil, 0, ErrUnderflow
		}
		length = int(data[1])
		headerLen = 2
	}
	if len(data) < headerLen+length {
		return nil, 0, ErrUnderflow
	}
	payload := data[headerLen : headerLen+length]

	if tag == String && !utf8.Valid(payload) {
		return nil, 0, newError(KindEncoding, "string payload is not valid UTF-8")
	}
	if tag == SymbolTag {
		for _, b := range payload {
			if b > 0x7f {
				return nil, 0, newError(KindEncoding, "symbol payload contains a non-ASCII byte")
			}
		}
	}

	return newBytesValue(tag, payload), headerLen + length, nil
}

// decodeCompound parses a List or Map value. The size field covers the
// count field plus every contained element's full (self-describing) bytes.
func decodeCompound(data []byte, isMap, wide bool) (*Value, int, error) {
	sizeWidth, countWidth := 1, 1
	if wide {
		sizeWidth, countWidth = 4, 4
	}
	headerLen := 1 + sizeWidth + countWidth
	if len(data) < headerLen {
		return nil, 0, ErrUnderflow
	}

	var sizeField, count int
	if wide {
		sizeField = int(binary.BigEndian.Uint32(data[1:5]))
		count = int(binary.BigEndian.Uint32(data[5:9]))
	} else {
		sizeField = int(data[1])
		count = int(data[2])
	}

	elementsLen := sizeField - countWidth
	if elementsLen < 0 {
		return nil, 0, newError(KindEncoding, "invalid compound size field")
	}
	if len(data) < headerLen+elementsLen {
		return nil, 0, ErrUnderflow
	}

	childData := data[headerLen : headerLen+elementsLen]
	children := make([]*Value, 0, count)
	pos := 0
	for i := 0; i < count; i++ {
		cv, n, err := decodeValue(childData[pos:])
		if err != nil {
			if isUnderflow(err) {
				return nil, 0, newError(KindEncoding, "compound size field does not match its contained elements")
			}
			return nil, 0, err
		}
		children = append(children, cv)
		pos += n
	}
	if pos != elementsLen {
		return nil, 0, newError(KindEncoding, "compound has trailing bytes inconsistent with its size field")
	}

	tag := List
	if isMap {
		tag = Map
	}
	cv := newCompositeValue(tag)
	cv.kids = children
	return cv, headerLen + elementsLen, nil
}

// decodeArray parses an Array value: a shared element constructor followed
// by payload-only element bytes. Described arrays (element constructor 0x00)
// are rejected with an encoding error, symmetric with encodeArray's refusal
// to produce them.
func decodeArray(data []byte, wide bool) (*Value, int, error) {
	sizeWidth, countWidth := 1, 1
	if wide {
		sizeWidth, countWidth = 4, 4
	}
	headerLen := 1 + sizeWidth + countWidth
	if len(data) < headerLen {
		return nil, 0, ErrUnderflow
	}

	var sizeField, count int
	if wide {
		sizeField = int(binary.BigEndian.Uint32(data[1:5]))
		count = int(binary.BigEndian.Uint32(data[5:9]))
	} else {
		sizeField = int(data[1])
		count = int(data[2])
	}

	totalNeeded := 1 + sizeWidth + sizeField
	if len(data) < totalNeeded {
		return nil, 0, ErrUnderflow
	}

	body := data[headerLen:totalNeeded]
	if len(body) < 1 {
		return nil, 0, newError(KindEncoding, "array missing element constructor")
	}
	elemConstructorByte := constructor(body[0])
	if elemConstructorByte == codeDescribed {
		return nil, 0, newError(KindEncoding, "described arrays not supported on the wire")
	}
	elemTag, err := tagForConstructor(elemConstructorByte)
	if err != nil {
		return nil, 0, err
	}

	payload := body[1:]
	children := make([]*Value, 0, count)
	pos := 0
	for i := 0; i < count; i++ {
		synth := make([]byte, 0, 1+len(payload)-pos)
		synth = append(synth, byte(elemConstructorByte))
		synth = append(synth, payload[pos:]...)
		cv, n, err := decodeValue(synth)
		if err != nil {
			if isUnderflow(err) {
				return nil, 0, newError(KindEncoding, "array size field does not match its contained elements")
			}
			return nil, 0, err
		}
		children = append(children, cv)
		pos += n - 1
	}
	if pos != len(payload) {
		return nil, 0, newError(KindEncoding, "array has trailing bytes inconsistent with its size field")
	}

	av := newArrayValue(elemTag, false)
	av.kids = children
	return av, totalNeeded, nil
}

// tagForConstructor maps a shared array-element constructor byte back to its
// Tag. It accepts the constructors arrayElementConstructor can produce plus
// the list0/list8, map8 and array8 forms; the compact scalar forms (true,
// false, uint0, smalluint, ulong0, smallulong, smallint, smalllong) are
// rejected.
func tagForConstructor(c constructor) (Tag, error) {
	switch c {
	case codeNull:
		return Null, nil
	case codeBool:
		return Bool, nil
	case codeUbyte:
		return Ubyte, nil
	case codeByte:
		return Byte, nil
	case codeUshort:
		return Ushort, nil
	case codeShort:
		return Short, nil
	case codeUint:
		return Uint, nil
	case codeInt:
		return Int, nil
	case codeUlong:
		return Ulong, nil
	case codeLong:
		return Long, nil
	case codeFloat:
		return Float, nil
	case codeDouble:
		return Double, nil
	case codeChar:
		return Char, nil
	case codeTimestamp:
		return Timestamp, nil
	case codeUUID:
		return UUIDTag, nil
	case codeVbin8, codeVbin32:
		return BinaryTag, nil
	case codeStr8, codeStr32:
		return String, nil
	case codeSym8, codeSym32:
		return SymbolTag, nil
	case codeList0, codeList8, codeList32:
		return List, nil
	case codeMap8, codeMap32:
		return Map, nil
	case codeArray8, codeArray32:
		return Array, nil
	case codeDecimal32, codeDecimal64, codeDecimal128:
		return Invalid, unsupportedDecimalError(c)
	default:
		return Invalid, newError(KindEncoding, "unsupported array element constructor %#02x", uint8(c))
	}
}

// decodeDescribed parses a described value: one descriptor value followed
// by one body value, each fully self-describing.
func decodeDescribed(data []byte) (*Value, int, error) {
	descV, descN, err := decodeValue(data[1:])
	if err != nil {
		return nil, 0, err
	}
	bodyV, bodyN, err := decodeValue(data[1+descN:])
	if err != nil {
		return nil, 0, err
	}
	dv := newCompositeValue(Described)
	dv.kids = []*Value{descV, bodyV}
	return dv, 1 + descN + bodyN, nil
}
