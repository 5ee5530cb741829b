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
	"reflect"
	"time"
)

// Put maps a host value onto an AMQP value at the cursor's current
// position, dispatching on the concrete Go type first and falling back to
// reflect.Kind for unnamed maps and slices it doesn't special-case.
func (c *Cursor) Put(v interface{}) error {
	switch x := v.(type) {
	case nil:
		return c.PutNull()
	case bool:
		return c.PutBool(x)
	case int8:
		return c.PutByte(x)
	case int16:
		return c.PutShort(x)
	case int32:
		return c.PutInt(x)
	case int64:
		return c.PutLong(x)
	case int:
		return c.PutLong(int64(x))
	case uint8:
		return c.PutUbyte(x)
	case uint16:
		return c.PutUshort(x)
	case uint32:
		return c.PutUint(x)
	case uint64:
		return c.PutUlong(x)
	case uint:
		return c.PutUlong(uint64(x))
	case float32:
		return c.PutFloat(x)
	case float64:
		return c.PutDouble(x)
	case string:
		return c.PutString(x)
	case Symbol:
		return c.PutSymbol(string(x))
	case []byte:
		return c.PutBinary(x)
	case Binary:
		return c.PutBinary([]byte(x))
	case Char:
		return c.PutChar(rune(x))
	case time.Time:
		return c.PutTimestamp(x.UnixNano() / int64(time.Millisecond))
	case UUID:
		return c.PutUUID(x)
	case MessageID:
		return c.putMessageID(x)
	case AnnotationKey:
		return c.putAnnotationKey(x)
	case Described:
		return c.putDescribed(x)
	case *OrderedMap[string, interface{}]:
		return c.putOrderedMapString(x)
	case *OrderedMap[AnnotationKey, interface{}]:
		return c.putOrderedMapAnnotation(x)
	default:
		return c.putReflect(v)
	}
}

func (c *Cursor) putMessageID(m MessageID) error {
	switch m.tag {
	case Ulong:
		return c.PutUlong(m.num)
	case UUIDTag:
		return c.PutUUID(m.uid)
	case BinaryTag:
		return c.PutBinary(m.bin)
	case String:
		return c.PutString(m.str)
	default:
		return newError(KindArgument, "message-id was never set")
	}
}

func (c *Cursor) putAnnotationKey(k AnnotationKey) error {
	switch k.tag {
	case Ulong:
		return c.PutUlong(k.num)
	case SymbolTag:
		return c.PutSymbol(string(k.sym))
	default:
		return newError(KindArgument, "annotation key was never set")
	}
}

func (c *Cursor) putDescribed(d Described) error {
	if err := c.PutDescribed(); err != nil {
		return err
	}
	if err := c.Enter(); err != nil {
		return err
	}
	if err := c.Put(d.Descriptor); err != nil {
		return err
	}
	if err := c.Put(d.Value); err != nil {
		return err
	}
	return c.Exit()
}

func (c *Cursor) putOrderedMapString(m *OrderedMap[string, interface{}]) error {
	if err := c.PutMap(); err != nil {
		return err
	}
	if err := c.Enter(); err != nil {
		return err
	}
	var putErr error
	m.Range(func(key string, value interface{}) bool {
		if err := c.PutString(key); err != nil {
			putErr = err
			return false
		}
		if err := c.Put(value); err != nil {
			putErr = err
			return false
		}
		return true
	})
	if putErr != nil {
		return putErr
	}
	return c.Exit()
}

func (c *Cursor) putOrderedMapAnnotation(m *OrderedMap[AnnotationKey, interface{}]) error {
	if err := c.PutMap(); err != nil {
		return err
	}
	if err := c.Enter(); err != nil {
		return err
	}
	var putErr error
	m.Range(func(key AnnotationKey, value interface{}) bool {
		if err := c.putAnnotationKey(key); err != nil {
			putErr = err
			return false
		}
		if err := c.Put(value); err != nil {
			putErr = err
			return false
		}
		return true
	})
	if putErr != nil {
		return putErr
	}
	return c.Exit()
}

// putReflect is the fallback path for host types this module has no direct
// case for: maps, slices and arrays are walked structurally; everything
// else (funcs, chans, unconverted structs, complex numbers, pointers to
// unsupported types) is rejected with noConversionError.
func (c *Cursor) putReflect(v interface{}) error {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr:
		if rv.IsNil() {
			return c.PutNull()
		}
		return c.Put(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		if err := c.PutList(); err != nil {
			return err
		}
		if err := c.Enter(); err != nil {
			return err
		}
		for i := 0; i < rv.Len(); i++ {
			if err := c.Put(rv.Index(i).Interface()); err != nil {
				return err
			}
		}
		return c.Exit()
	case reflect.Map:
		if err := c.PutMap(); err != nil {
			return err
		}
		if err := c.Enter(); err != nil {
			return err
		}
		iter := rv.MapRange()
		for iter.Next() {
			if err := c.Put(iter.Key().Interface()); err != nil {
				return err
			}
			if err := c.Put(iter.Value().Interface()); err != nil {
				return err
			}
		}
		return c.Exit()
	default:
		return noConversionError(v)
	}
}

// anyToValue builds a standalone Value subtree from a host value, reusing
// Cursor.Put's dispatch table. Used by message.go to serialize section
// entries and body values without a caller-visible Tree/Cursor.
func anyToValue(v interface{}) (*Value, error) {
	t := NewTree()
	c := t.Cursor()
	if err := c.Put(v); err != nil {
		return nil, err
	}
	return t.top[0], nil
}

// Get maps the AMQP value at the cursor's current position onto target,
// which must be a pointer. Integer and float targets accept any source
// width that widens losslessly (e.g. *int64 accepts Byte, Short or Int as
// well as Long); see widenInt/widenUint below for the exact rules.
func (c *Cursor) Get(target interface{}) error {
	// A described value read into any target other than *Described or
	// *interface{} yields its body; the descriptor is dropped.
	switch target.(type) {
	case *Described, *interface{}:
	default:
		if c.Type() == Described {
			if err := c.Enter(); err != nil {
				return err
			}
			c.Next()
			c.Next()
			err := c.Get(target)
			c.Exit()
			return err
		}
	}
	switch p := target.(type) {
	case *bool:
		v, err := c.GetBool()
		*p = v
		return err
	case *int8:
		v, err := c.GetByte()
		*p = v
		return err
	case *int16:
		n, err := c.widenInt(16)
		*p = int16(n)
		return err
	case *int32:
		n, err := c.widenInt(32)
		*p = int32(n)
		return err
	case *int64:
		n, err := c.widenInt(64)
		*p = n
		return err
	case *int:
		n, err := c.widenInt(64)
		*p = int(n)
		return err
	case *uint8:
		v, err := c.GetUbyte()
		*p = v
		return err
	case *uint16:
		n, err := c.widenUint(16)
		*p = uint16(n)
		return err
	case *uint32:
		n, err := c.widenUint(32)
		*p = uint32(n)
		return err
	case *uint64:
		n, err := c.widenUint(64)
		*p = n
		return err
	case *uint:
		n, err := c.widenUint(64)
		*p = uint(n)
		return err
	case *float32:
		v, err := c.GetFloat()
		*p = v
		return err
	case *float64:
		if c.Type() == Float {
			v, err := c.GetFloat()
			*p = float64(v)
			return err
		}
		v, err := c.GetDouble()
		*p = v
		return err
	case *string:
		return c.getString(p)
	case *Symbol:
		v, err := c.GetSymbol()
		*p = Symbol(v)
		return err
	case *[]byte:
		v, err := c.GetBinary()
		*p = v
		return err
	case *Binary:
		v, err := c.GetBinary()
		*p = Binary(v)
		return err
	case *Char:
		r, err := c.getChar()
		*p = Char(r)
		return err
	case *rune:
		return c.getRune(p)
	case *time.Time:
		ms, err := c.GetTimestamp()
		if err != nil {
			return err
		}
		*p = time.Unix(0, ms*int64(time.Millisecond)).UTC()
		return nil
	case *UUID:
		u, err := c.GetUUID()
		*p = UUID(u)
		return err
	case *MessageID:
		m, err := c.getMessageID()
		*p = m
		return err
	case *AnnotationKey:
		k, err := c.getAnnotationKey()
		*p = k
		return err
	case *Described:
		d, err := c.getDescribed()
		*p = d
		return err
	case *interface{}:
		v, err := c.GetAny()
		*p = v
		return err
	default:
		return newHostError(KindArgument, target, "unsupported decode target")
	}
}

// widenInt reads the current signed scalar and widens it to bits, returning
// an error if the source type is wider than the requested width or not an
// integer at all. CHAR widens to a signed integer when its code point fits.
func (c *Cursor) widenInt(bits int) (int64, error) {
	switch c.Type() {
	case Byte:
		v, err := c.GetByte()
		return int64(v), err
	case Short:
		if bits < 16 {
			return 0, newTagError(KindArgument, Short, "does not fit in %d bits", bits)
		}
		v, err := c.GetShort()
		return int64(v), err
	case Int:
		if bits < 32 {
			return 0, newTagError(KindArgument, Int, "does not fit in %d bits", bits)
		}
		v, err := c.GetInt()
		return int64(v), err
	case Long:
		if bits < 64 {
			return 0, newTagError(KindArgument, Long, "does not fit in %d bits", bits)
		}
		return c.GetLong()
	case Char:
		r, err := c.GetChar()
		if err != nil {
			return 0, err
		}
		if bits < 32 && (r < 0 || r > 0x7FFF) {
			return 0, newTagError(KindArgument, Char, "does not fit in %d bits", bits)
		}
		return int64(r), nil
	default:
		return 0, tagMismatch(Long, c.current())
	}
}

func (c *Cursor) widenUint(bits int) (uint64, error) {
	switch c.Type() {
	case Ubyte:
		v, err := c.GetUbyte()
		return uint64(v), err
	case Ushort:
		if bits < 16 {
			return 0, newTagError(KindArgument, Ushort, "does not fit in %d bits", bits)
		}
		v, err := c.GetUshort()
		return uint64(v), err
	case Uint:
		if bits < 32 {
			return 0, newTagError(KindArgument, Uint, "does not fit in %d bits", bits)
		}
		v, err := c.GetUint()
		return uint64(v), err
	case Ulong:
		if bits < 64 {
			return 0, newTagError(KindArgument, Ulong, "does not fit in %d bits", bits)
		}
		return c.GetUlong()
	default:
		return 0, tagMismatch(Ulong, c.current())
	}
}

func (c *Cursor) getString(p *string) error {
	if c.Type() == SymbolTag {
		v, err := c.GetSymbol()
		*p = v
		return err
	}
	v, err := c.GetString()
	*p = v
	return err
}

func (c *Cursor) getChar() (rune, error) {
	return c.GetChar()
}

func (c *Cursor) getRune(p *rune) error {
	r, err := c.GetChar()
	*p = r
	return err
}

func (c *Cursor) getMessageID() (MessageID, error) {
	switch c.Type() {
	case Ulong:
		n, err := c.GetUlong()
		return MessageID{tag: Ulong, num: n}, err
	case UUIDTag:
		u, err := c.GetUUID()
		return MessageID{tag: UUIDTag, uid: UUID(u)}, err
	case BinaryTag:
		b, err := c.GetBinary()
		return MessageID{tag: BinaryTag, bin: b}, err
	case String:
		s, err := c.GetString()
		return MessageID{tag: String, str: s}, err
	default:
		return MessageID{}, newTagError(KindArgument, c.Type(), "not a valid message-id type")
	}
}

func (c *Cursor) getAnnotationKey() (AnnotationKey, error) {
	switch c.Type() {
	case Ulong:
		n, err := c.GetUlong()
		return AnnotationKey{tag: Ulong, num: n}, err
	case SymbolTag:
		s, err := c.GetSymbol()
		return AnnotationKey{tag: SymbolTag, sym: Symbol(s)}, err
	default:
		return AnnotationKey{}, newTagError(KindArgument, c.Type(), "not a valid annotation key type")
	}
}

// getDescribed reads the described value under the cursor, preserving its
// descriptor; GetAny and Get(*interface{}) do the same. Contrast with Get
// into any other target, which drops the descriptor and reads the body.
func (c *Cursor) getDescribed() (Described, error) {
	if c.Type() != Described {
		return Described{}, tagMismatch(Described, c.current())
	}
	kids := c.current().Children()
	desc, err := valueToAny(kids[0])
	if err != nil {
		return Described{}, err
	}
	body, err := valueToAny(kids[1])
	if err != nil {
		return Described{}, err
	}
	return Described{Descriptor: desc, Value: body}, nil
}

// GetAny reads the value at the cursor's current position into its natural
// Go representation: MAP becomes *OrderedMap[interface{}, interface{}],
// LIST becomes []interface{}, an ARRAY of bool, integer, float, string,
// symbol or binary elements becomes a typed slice, any other ARRAY (char,
// timestamp, uuid, null or composite elements) becomes []interface{}, and
// NULL becomes a nil interface.
func (c *Cursor) GetAny() (interface{}, error) {
	return valueToAny(c.current())
}

// valueToAny performs the same mapping as GetAny directly over a Value
// subtree, without disturbing any Cursor's position.
func valueToAny(v *Value) (interface{}, error) {
	switch v.Tag() {
	case Invalid:
		return nil, newError(KindArgument, "no value")
	case Null:
		return nil, nil
	case Bool:
		return v.boolVal(), nil
	case Ubyte:
		return uint8(v.uint64Val()), nil
	case Byte:
		return int8(v.int64Val()), nil
	case Ushort:
		return uint16(v.uint64Val()), nil
	case Short:
		return int16(v.int64Val()), nil
	case Uint:
		return uint32(v.uint64Val()), nil
	case Int:
		return int32(v.int64Val()), nil
	case Ulong:
		return v.uint64Val(), nil
	case Long:
		return v.int64Val(), nil
	case Float:
		return v.float32Val(), nil
	case Double:
		return v.float64Val(), nil
	case Char:
		return Char(v.charVal()), nil
	case Timestamp:
		return time.Unix(0, v.timestampVal()*int64(time.Millisecond)).UTC(), nil
	case UUIDTag:
		return UUID(v.uuidVal()), nil
	case BinaryTag:
		return Binary(v.Bytes()), nil
	case String:
		return string(v.Bytes()), nil
	case SymbolTag:
		return Symbol(v.Bytes()), nil
	case List:
		out := make([]interface{}, 0, v.Count())
		for _, k := range v.Children() {
			e, err := valueToAny(k)
			if err != nil {
				return nil, err
			}
			out = append(out, e)
		}
		return out, nil
	case Map:
		out := NewOrderedMap[interface{}, interface{}]()
		kids := v.Children()
		for i := 0; i+1 < len(kids); i += 2 {
			key, err := valueToAny(kids[i])
			if err != nil {
				return nil, err
			}
			val, err := valueToAny(kids[i+1])
			if err != nil {
				return nil, err
			}
			out.Set(key, val)
		}
		return out, nil
	case Array:
		return arrayToAny(v)
	case Described:
		kids := v.Children()
		desc, err := valueToAny(kids[0])
		if err != nil {
			return nil, err
		}
		body, err := valueToAny(kids[1])
		if err != nil {
			return nil, err
		}
		return Described{Descriptor: desc, Value: body}, nil
	default:
		return nil, newTagError(KindArgument, v.Tag(), "cannot convert to a host value")
	}
}

// arrayToAny converts an ARRAY value to a typed Go slice when its element
// tag is bool, an integer, a float, string, symbol or binary, and to
// []interface{} otherwise (char, timestamp, uuid, null and composite
// elements).
func arrayToAny(v *Value) (interface{}, error) {
	kids := v.Children()
	switch v.ElemTag() {
	case Bool:
		out := make([]bool, len(kids))
		for i, k := range kids {
			out[i] = k.boolVal()
		}
		return out, nil
	case Ubyte:
		out := make([]uint8, len(kids))
		for i, k := range kids {
			out[i] = uint8(k.uint64Val())
		}
		return out, nil
	case Byte:
		out := make([]int8, len(kids))
		for i, k := range kids {
			out[i] = int8(k.int64Val())
		}
		return out, nil
	case Ushort:
		out := make([]uint16, len(kids))
		for i, k := range kids {
			out[i] = uint16(k.uint64Val())
		}
		return out, nil
	case Short:
		out := make([]int16, len(kids))
		for i, k := range kids {
			out[i] = int16(k.int64Val())
		}
		return out, nil
	case Uint:
		out := make([]uint32, len(kids))
		for i, k := range kids {
			out[i] = uint32(k.uint64Val())
		}
		return out, nil
	case Int:
		out := make([]int32, len(kids))
		for i, k := range kids {
			out[i] = int32(k.int64Val())
		}
		return out, nil
	case Ulong:
		out := make([]uint64, len(kids))
		for i, k := range kids {
			out[i] = k.uint64Val()
		}
		return out, nil
	case Long:
		out := make([]int64, len(kids))
		for i, k := range kids {
			out[i] = k.int64Val()
		}
		return out, nil
	case Float:
		out := make([]float32, len(kids))
		for i, k := range kids {
			out[i] = k.float32Val()
		}
		return out, nil
	case Double:
		out := make([]float64, len(kids))
		for i, k := range kids {
			out[i] = k.float64Val()
		}
		return out, nil
	case String:
		out := make([]string, len(kids))
		for i, k := range kids {
			out[i] = string(k.Bytes())
		}
		return out, nil
	case SymbolTag:
		out := make([]Symbol, len(kids))
		for i, k := range kids {
			out[i] = Symbol(k.Bytes())
		}
		return out, nil
	case BinaryTag:
		out := make([]Binary, len(kids))
		for i, k := range kids {
			out[i] = Binary(k.Bytes())
		}
		return out, nil
	default:
		out := make([]interface{}, 0, len(kids))
		for _, k := range kids {
			e, err := valueToAny(k)
			if err != nil {
				return nil, err
			}
			out = append(out, e)
		}
		return out, nil
	}
}
