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

import "math"

// Value is one node of the in-memory AMQP value tree. Every
// Value has exactly one Tag; which fields are meaningful is determined by
// that tag alone.
type Value struct {
	tag Tag

	// num holds the bit pattern for every fixed-width scalar: the raw
	// two's-complement or IEEE-754 bits, zero- or sign-extended into a
	// uint64. Interpretation is driven entirely by tag.
	num uint64

	bin []byte   // Binary/String/Symbol payload, owned by this Value
	uid [16]byte // UUIDTag payload

	elemTag       Tag  // Array: the declared, shared element tag
	elemDescribed bool // Array: true when elements are Described values

	kids []*Value // List/Map/Array/Described children; Described is always [descriptor, body]
}

func newNull() *Value { return &Value{tag: Null} }

func newBool(b bool) *Value {
	v := &Value{tag: Bool}
	if b {
		v.num = 1
	}
	return v
}

func newIntValue(tag Tag, n int64) *Value { return &Value{tag: tag, num: uint64(n)} }
func newUintValue(tag Tag, n uint64) *Value { return &Value{tag: tag, num: n} }

func newFloat32Value(f float32) *Value {
	return &Value{tag: Float, num: uint64(math.Float32bits(f))}
}

func newFloat64Value(f float64) *Value {
	return &Value{tag: Double, num: math.Float64bits(f)}
}

func newCharValue(r rune) *Value { return &Value{tag: Char, num: uint64(uint32(r))} }

func newTimestampValue(ms int64) *Value { return &Value{tag: Timestamp, num: uint64(ms)} }

func newUUIDValue(b [16]byte) *Value { return &Value{tag: UUIDTag, uid: b} }

func newBytesValue(tag Tag, b []byte) *Value {
	owned := make([]byte, len(b))
	copy(owned, b)
	return &Value{tag: tag, bin: owned}
}

func newCompositeValue(tag Tag) *Value { return &Value{tag: tag} }

func newArrayValue(elemTag Tag, described bool) *Value {
	return &Value{tag: Array, elemTag: elemTag, elemDescribed: described}
}

// Tag reports the value's type tag, Invalid if v is nil.
func (v *Value) Tag() Tag {
	if v == nil {
		return Invalid
	}
	return v.tag
}

func (v *Value) boolVal() bool       { return v.num != 0 }
func (v *Value) int64Val() int64     { return int64(v.num) }
func (v *Value) uint64Val() uint64   { return v.num }
func (v *Value) float32Val() float32 { return math.Float32frombits(uint32(v.num)) }
func (v *Value) float64Val() float64 { return math.Float64frombits(v.num) }
func (v *Value) charVal() rune       { return rune(uint32(v.num)) }
func (v *Value) timestampVal() int64 { return int64(v.num) }
func (v *Value) uuidVal() [16]byte   { return v.uid }

// Bytes returns the owned Binary/String/Symbol payload. The caller must not
// retain it past the next mutation of the enclosing tree.
func (v *Value) Bytes() []byte { return v.bin }

// Children returns the List/Map/Array/Described child sequence in insertion
// order. For Map this is the raw 2N-entry sequence, not N pairs.
func (v *Value) Children() []*Value { return v.kids }

// ElemTag returns the declared element tag of an Array value.
func (v *Value) ElemTag() Tag { return v.elemTag }

// Count returns the number of entries at a composite value: list/array
// element count, or the raw 2N map entry count. Zero for scalars.
func (v *Value) Count() int {
	if v == nil || !v.tag.isComposite() {
		return 0
	}
	return len(v.kids)
}

// clone deep-copies a subtree, giving it independent ownership of its byte
// payloads and children.
func (v *Value) clone() *Value {
	if v == nil {
		return nil
	}
	out := &Value{
		tag:           v.tag,
		num:           v.num,
		uid:           v.uid,
		elemTag:       v.elemTag,
		elemDescribed: v.elemDescribed,
	}
	if v.bin != nil {
		out.bin = make([]byte, len(v.bin))
		copy(out.bin, v.bin)
	}
	if v.kids != nil {
		out.kids = make([]*Value, len(v.kids))
		for i, k := range v.kids {
			out.kids[i] = k.clone()
		}
	}
	return out
}

// Tree is the top-level, implicitly-sequenced root of a value tree.
// A zero-value Tree is ready to use.
type Tree struct {
	top []*Value
}

// NewTree returns an empty Tree.
func NewTree() *Tree { return &Tree{} }

// Clear drops every value the tree owns, including byte payloads.
func (t *Tree) Clear() { t.top = nil }

// Cursor returns a new, rewound Cursor positioned over this tree.
func (t *Tree) Cursor() *Cursor {
	c := &Cursor{tree: t}
	c.Rewind()
	return c
}

// Count returns the number of top-level values currently in the tree.
func (t *Tree) Count() int { return len(t.top) }
