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
	"github.com/google/uuid"
)

// Symbol is an ASCII-only host string mapped to the AMQP Symbol type. It
// is a distinct type from string so callers don't have to pass a bare
// string and rely on Put's default STRING mapping when a SYMBOL was meant.
type Symbol string

// Char is a Unicode scalar value mapped to the AMQP Char type. It is a
// distinct type from rune so Cursor.Put can tell a caller's intentional Char
// apart from an Int/Long (runes and int32s share a host type otherwise).
type Char rune

// Binary is a byte sequence mapped to the AMQP Binary type, as distinct
// from String (which must be valid UTF-8) and Symbol (which must be ASCII).
type Binary []byte

// UUID is a 16-byte AMQP UUID value, with host-convenience string
// conversion via github.com/google/uuid — the wire form always carries the
// raw 16 bytes, never the textual representation.
type UUID [16]byte

// String formats u in the canonical 8-4-4-4-12 hyphenated form.
func (u UUID) String() string {
	return uuid.UUID(u).String()
}

// ParseUUID parses a canonical hyphenated UUID string into a UUID.
func ParseUUID(s string) (UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return UUID{}, wrapError(err, "parse uuid %q", s)
	}
	return UUID(id), nil
}

// NewUUID returns a random (version 4) UUID, for callers that need to mint
// a fresh MessageID or delivery tag.
func NewUUID() UUID {
	return UUID(uuid.New())
}

// Described pairs an AMQP descriptor with its body value, for host code
// that wants to construct or inspect a described value without going
// through the Tree/Cursor API directly.
type Described struct {
	Descriptor interface{}
	Value      interface{}
}

// MessageID is the restricted union of scalar types AMQP permits for a
// message-id or correlation-id: ULONG, UUID, BINARY or STRING. The zero
// value is an absent id.
type MessageID struct {
	tag  Tag
	num  uint64
	uid  UUID
	bin  []byte
	str  string
}

// NewMessageID wraps v as a MessageID. A bare string defaults to STRING
// (not Symbol, which has no place in a message-id); uint64, UUID and
// Binary/[]byte are accepted directly.
func NewMessageID(v interface{}) (MessageID, error) {
	switch x := v.(type) {
	case uint64:
		return MessageID{tag: Ulong, num: x}, nil
	case UUID:
		return MessageID{tag: UUIDTag, uid: x}, nil
	case Binary:
		return MessageID{tag: BinaryTag, bin: append([]byte(nil), x...)}, nil
	case []byte:
		return MessageID{tag: BinaryTag, bin: append([]byte(nil), x...)}, nil
	case string:
		return MessageID{tag: String, str: x}, nil
	default:
		return MessageID{}, noConversionError(v)
	}
}

// IsZero reports whether the MessageID was never set.
func (m MessageID) IsZero() bool { return m.tag == Invalid }

// Tag reports which of the four restricted scalar types this id carries.
func (m MessageID) Tag() Tag { return m.tag }

// Value unwraps m back to its underlying uint64, UUID, Binary or string.
func (m MessageID) Value() interface{} {
	switch m.tag {
	case Ulong:
		return m.num
	case UUIDTag:
		return m.uid
	case BinaryTag:
		return Binary(m.bin)
	case String:
		return m.str
	default:
		return nil
	}
}

// AnnotationKey is the restricted union AMQP permits as a map key in the
// delivery-annotations, message-annotations and footer sections: ULONG or
// SYMBOL. A bare string defaults to SYMBOL.
type AnnotationKey struct {
	tag Tag
	num uint64
	sym Symbol
}

// NewAnnotationKey wraps v as an AnnotationKey.
func NewAnnotationKey(v interface{}) (AnnotationKey, error) {
	switch x := v.(type) {
	case uint64:
		return AnnotationKey{tag: Ulong, num: x}, nil
	case Symbol:
		return AnnotationKey{tag: SymbolTag, sym: x}, nil
	case string:
		return AnnotationKey{tag: SymbolTag, sym: Symbol(x)}, nil
	default:
		return AnnotationKey{}, noConversionError(v)
	}
}

func (k AnnotationKey) Tag() Tag { return k.tag }

func (k AnnotationKey) Value() interface{} {
	switch k.tag {
	case Ulong:
		return k.num
	case SymbolTag:
		return k.sym
	default:
		return nil
	}
}

// OrderedMap is an insertion-order-preserving map, used wherever an AMQP
// MAP value's entry order must survive a decode-mutate-encode round trip:
// message sections and any host map value built through Put/GetAny.
type OrderedMap[K comparable, V any] struct {
	keys   []K
	index  map[K]int
	values []V
}

// NewOrderedMap returns an empty OrderedMap.
func NewOrderedMap[K comparable, V any]() *OrderedMap[K, V] {
	return &OrderedMap[K, V]{index: make(map[K]int)}
}

// Set inserts or updates the value for key. Updating an existing key does
// not change its position in iteration order.
func (m *OrderedMap[K, V]) Set(key K, value V) {
	if i, ok := m.index[key]; ok {
		m.values[i] = value
		return
	}
	m.index[key] = len(m.keys)
	m.keys = append(m.keys, key)
	m.values = append(m.values, value)
}

// Get returns the value for key and whether it was present.
func (m *OrderedMap[K, V]) Get(key K) (V, bool) {
	i, ok := m.index[key]
	if !ok {
		var zero V
		return zero, false
	}
	return m.values[i], true
}

// Delete removes key if present, preserving the relative order of the rest.
func (m *OrderedMap[K, V]) Delete(key K) {
	i, ok := m.index[key]
	if !ok {
		return
	}
	m.keys = append(m.keys[:i], m.keys[i+1:]...)
	m.values = append(m.values[:i], m.values[i+1:]...)
	delete(m.index, key)
	for j := i; j < len(m.keys); j++ {
		m.index[m.keys[j]] = j
	}
}

// Len reports the number of entries.
func (m *OrderedMap[K, V]) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns the keys in insertion order. The caller must not mutate it.
func (m *OrderedMap[K, V]) Keys() []K {
	if m == nil {
		return nil
	}
	return m.keys
}

// Range calls fn for every entry in insertion order, stopping early if fn
// returns false.
func (m *OrderedMap[K, V]) Range(fn func(key K, value V) bool) {
	if m == nil {
		return
	}
	for i, k := range m.keys {
		if !fn(k, m.values[i]) {
			return
		}
	}
}
