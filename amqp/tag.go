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

import "fmt"

// Tag is the closed enumeration of AMQP 1.0 primitive and composite types.
type Tag uint8

const (
	Invalid Tag = iota
	Null
	Bool
	Ubyte
	Byte
	Ushort
	Short
	Uint
	Int
	Ulong
	Long
	Float
	Double
	Char
	Timestamp
	UUIDTag
	BinaryTag
	String
	SymbolTag
	Described
	Array
	List
	Map
)

func (t Tag) String() string {
	switch t {
	case Invalid:
		return "invalid"
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Ubyte:
		return "ubyte"
	case Byte:
		return "byte"
	case Ushort:
		return "ushort"
	case Short:
		return "short"
	case Uint:
		return "uint"
	case Int:
		return "int"
	case Ulong:
		return "ulong"
	case Long:
		return "long"
	case Float:
		return "float"
	case Double:
		return "double"
	case Char:
		return "char"
	case Timestamp:
		return "timestamp"
	case UUIDTag:
		return "uuid"
	case BinaryTag:
		return "binary"
	case String:
		return "string"
	case SymbolTag:
		return "symbol"
	case Described:
		return "described"
	case Array:
		return "array"
	case List:
		return "list"
	case Map:
		return "map"
	default:
		return fmt.Sprintf("tag(%d)", uint8(t))
	}
}

// isComposite reports whether values of this tag can be entered with Cursor.Enter.
func (t Tag) isComposite() bool {
	switch t {
	case List, Map, Array, Described:
		return true
	default:
		return false
	}
}

// constructor is the one or more bytes that identify an encoded value's type
// and (for variable/compound types) its size class on the wire.
type constructor uint8

// Fixed-width primitive constructors.
const (
	codeNull      constructor = 0x40
	codeBoolTrue  constructor = 0x41
	codeBoolFalse constructor = 0x42
	codeBool      constructor = 0x56
	codeUbyte     constructor = 0x50
	codeByte      constructor = 0x51
	codeSmallUint constructor = 0x52
	codeSmallUlong constructor = 0x53
	codeSmallInt  constructor = 0x54
	codeSmallLong constructor = 0x55
	codeUshort    constructor = 0x60
	codeShort     constructor = 0x61
	codeUint0     constructor = 0x43
	codeUint      constructor = 0x70
	codeInt       constructor = 0x71
	codeFloat     constructor = 0x72
	codeChar      constructor = 0x73
	codeDecimal32 constructor = 0x74
	codeUlong0    constructor = 0x44
	codeUlong     constructor = 0x80
	codeLong      constructor = 0x81
	codeDouble    constructor = 0x82
	codeTimestamp constructor = 0x83
	codeDecimal64 constructor = 0x84
	codeUUID      constructor = 0x98
	codeDecimal128 constructor = 0x94

	codeVbin8  constructor = 0xa0
	codeStr8   constructor = 0xa1
	codeSym8   constructor = 0xa3
	codeVbin32 constructor = 0xb0
	codeStr32  constructor = 0xb1
	codeSym32  constructor = 0xb3

	codeList0  constructor = 0x45
	codeList8  constructor = 0xc0
	codeMap8   constructor = 0xc1
	codeList32 constructor = 0xd0
	codeMap32  constructor = 0xd1
	codeArray8  constructor = 0xe0
	codeArray32 constructor = 0xf0

	codeDescribed constructor = 0x00
)

// isDecimal reports whether the constructor identifies one of the AMQP
// decimal32/64/128 types, which this module explicitly does not support.
func (c constructor) isDecimal() bool {
	switch c {
	case codeDecimal32, codeDecimal64, codeDecimal128:
		return true
	default:
		return false
	}
}
