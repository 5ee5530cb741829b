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
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roundTrip(t *testing.T, build func(c *Cursor) error) *Tree {
	t.Helper()
	tree := NewTree()
	require.NoError(t, build(tree.Cursor()))

	buf, err := tree.EncodeGrow(nil)
	require.NoError(t, err)

	// Tree.Decode reads one top-level value per call.
	out := NewTree()
	pos := 0
	for pos < len(buf) {
		n, err := out.Decode(buf[pos:])
		require.NoError(t, err)
		pos += n
	}
	assert.Equal(t, len(buf), pos)
	return out
}

func TestRoundTripScalars(t *testing.T) {
	out := roundTrip(t, func(c *Cursor) error {
		for _, step := range []func() error{
			func() error { return c.PutBool(true) },
			func() error { return c.PutUbyte(7) },
			func() error { return c.PutInt(-12345) },
			func() error { return c.PutUlong(1 << 40) },
			func() error { return c.PutDouble(3.5) },
			func() error { return c.PutString("hello world") },
			func() error { return c.PutSymbol("my-symbol") },
			func() error { return c.PutBinary([]byte{0xde, 0xad, 0xbe, 0xef}) },
			func() error { return c.PutChar('λ') },
			func() error { return c.PutTimestamp(1700000000000) },
			func() error { return c.PutUUID([16]byte{1, 2, 3}) },
		} {
			if err := step(); err != nil {
				return err
			}
		}
		return nil
	})

	c := out.Cursor()
	require.True(t, c.Next())
	b, err := c.GetBool()
	require.NoError(t, err)
	assert.True(t, b)

	require.True(t, c.Next())
	ub, err := c.GetUbyte()
	require.NoError(t, err)
	assert.Equal(t, uint8(7), ub)

	require.True(t, c.Next())
	n, err := c.GetInt()
	require.NoError(t, err)
	assert.Equal(t, int32(-12345), n)

	require.True(t, c.Next())
	ul, err := c.GetUlong()
	require.NoError(t, err)
	assert.Equal(t, uint64(1<<40), ul)

	require.True(t, c.Next())
	d, err := c.GetDouble()
	require.NoError(t, err)
	assert.Equal(t, 3.5, d)

	require.True(t, c.Next())
	s, err := c.GetString()
	require.NoError(t, err)
	assert.Equal(t, "hello world", s)

	require.True(t, c.Next())
	sym, err := c.GetSymbol()
	require.NoError(t, err)
	assert.Equal(t, "my-symbol", sym)

	require.True(t, c.Next())
	bin, err := c.GetBinary()
	require.NoError(t, err)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, bin)

	require.True(t, c.Next())
	ch, err := c.GetChar()
	require.NoError(t, err)
	assert.Equal(t, 'λ', ch)

	require.True(t, c.Next())
	ts, err := c.GetTimestamp()
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000000), ts)

	require.True(t, c.Next())
	u, err := c.GetUUID()
	require.NoError(t, err)
	assert.Equal(t, [16]byte{1, 2, 3}, u)
}

func TestRoundTripListPreservesOrder(t *testing.T) {
	out := roundTrip(t, func(c *Cursor) error {
		if err := c.PutList(); err != nil {
			return err
		}
		if err := c.Enter(); err != nil {
			return err
		}
		for _, n := range []int32{3, 1, 4, 1, 5} {
			if err := c.PutInt(n); err != nil {
				return err
			}
		}
		return c.Exit()
	})

	c := out.Cursor()
	require.True(t, c.Next())
	assert.Equal(t, List, c.Type())
	assert.Equal(t, 5, c.Count())
	require.NoError(t, c.Enter())
	var got []int32
	for c.Next() {
		n, err := c.GetInt()
		require.NoError(t, err)
		got = append(got, n)
	}
	assert.Equal(t, []int32{3, 1, 4, 1, 5}, got)
}

func TestRoundTripMapPreservesInsertionOrder(t *testing.T) {
	out := roundTrip(t, func(c *Cursor) error {
		if err := c.PutMap(); err != nil {
			return err
		}
		if err := c.Enter(); err != nil {
			return err
		}
		for _, kv := range []struct {
			k string
			v int32
		}{{"z", 1}, {"a", 2}, {"m", 3}} {
			if err := c.PutString(kv.k); err != nil {
				return err
			}
			if err := c.PutInt(kv.v); err != nil {
				return err
			}
		}
		return c.Exit()
	})

	c := out.Cursor()
	require.True(t, c.Next())
	assert.Equal(t, Map, c.Type())
	assert.Equal(t, 6, c.Count())
	require.NoError(t, c.Enter())
	var keys []string
	for c.Next() {
		k, err := c.GetString()
		require.NoError(t, err)
		keys = append(keys, k)
		require.True(t, c.Next())
		_, err = c.GetInt()
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"z", "a", "m"}, keys)
}

func TestRoundTripArrayOfInt(t *testing.T) {
	out := roundTrip(t, func(c *Cursor) error {
		if err := c.PutArray(Int, false); err != nil {
			return err
		}
		if err := c.Enter(); err != nil {
			return err
		}
		for _, n := range []int32{100, 200, 300} {
			if err := c.PutInt(n); err != nil {
				return err
			}
		}
		return c.Exit()
	})

	c := out.Cursor()
	require.True(t, c.Next())
	assert.Equal(t, Array, c.Type())
	assert.Equal(t, Int, c.current().ElemTag())
	assert.Equal(t, 3, c.Count())
	require.NoError(t, c.Enter())
	var got []int32
	for c.Next() {
		n, err := c.GetInt()
		require.NoError(t, err)
		got = append(got, n)
	}
	assert.Equal(t, []int32{100, 200, 300}, got)
}

func TestRoundTripDescribed(t *testing.T) {
	out := roundTrip(t, func(c *Cursor) error {
		if err := c.PutDescribed(); err != nil {
			return err
		}
		if err := c.Enter(); err != nil {
			return err
		}
		if err := c.PutUlong(0x73); err != nil {
			return err
		}
		if err := c.PutString("properties"); err != nil {
			return err
		}
		return c.Exit()
	})

	c := out.Cursor()
	require.True(t, c.Next())
	assert.Equal(t, Described, c.Type())
	kids := c.current().Children()
	require.Len(t, kids, 2)
	assert.Equal(t, uint64(0x73), kids[0].uint64Val())
	assert.Equal(t, "properties", string(kids[1].Bytes()))
}

func TestArrayRejectsDescribedElements(t *testing.T) {
	tree := NewTree()
	c := tree.Cursor()
	require.NoError(t, c.PutArray(Described, true))
	require.NoError(t, c.Enter())
	require.NoError(t, c.PutDescribed())
	require.NoError(t, c.Enter())
	require.NoError(t, c.PutUlong(1))
	require.NoError(t, c.PutInt(1))
	require.NoError(t, c.Exit())
	require.NoError(t, c.Exit())

	_, err := tree.Encode(make([]byte, 4096))
	require.Error(t, err)
	var amqpErr *Error
	require.ErrorAs(t, err, &amqpErr)
	assert.Equal(t, KindEncoding, amqpErr.Kind)
}

func TestEncodeOverflowReportsErrOverflow(t *testing.T) {
	tree := NewTree()
	c := tree.Cursor()
	require.NoError(t, c.PutString("this string needs more than zero bytes"))

	_, err := tree.Encode(make([]byte, 1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrOverflow))
}

func TestEncodeGrowDoublesUntilItFits(t *testing.T) {
	tree := NewTree()
	c := tree.Cursor()
	// 1000 bytes of payload encode as str32 (1005 bytes), more than the
	// initial 512-byte buffer.
	require.NoError(t, c.PutString(strings.Repeat("0123456789", 100)))

	buf, err := tree.EncodeGrow(nil)
	require.NoError(t, err)
	assert.Equal(t, 1005, len(buf))
}

func TestDecodeUnderflowReportsZeroConsumed(t *testing.T) {
	tree := NewTree()
	c := tree.Cursor()
	require.NoError(t, c.PutUlong(1<<40))
	buf, err := tree.EncodeGrow(nil)
	require.NoError(t, err)

	out := NewTree()
	n, err := out.Decode(buf[:len(buf)-1])
	assert.True(t, errors.Is(err, ErrUnderflow))
	assert.Equal(t, 0, n)
}

func TestDecodeAcceptsNonMinimalEncodings(t *testing.T) {
	// A uint normally minimally-encodes 0 as codeUint0; a wire producer is
	// still free to send the full 5-byte form, and decode must accept it.
	data := []byte{byte(codeUint), 0, 0, 0, 0}
	tree := NewTree()
	n, err := tree.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, len(data), n)
	c := tree.Cursor()
	require.True(t, c.Next())
	v, err := c.GetUint()
	require.NoError(t, err)
	assert.Equal(t, uint32(0), v)
}

func TestTreeClearIsIdempotent(t *testing.T) {
	tree := NewTree()
	c := tree.Cursor()
	require.NoError(t, c.PutInt(1))
	tree.Clear()
	assert.Equal(t, 0, tree.Count())
	tree.Clear()
	assert.Equal(t, 0, tree.Count())
}
