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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorPutGetScalarRoundTrip(t *testing.T) {
	tree := NewTree()
	c := tree.Cursor()
	require.NoError(t, c.PutUint(42))
	require.NoError(t, c.PutString("hello"))
	require.NoError(t, c.PutBool(true))

	c.Rewind()
	require.True(t, c.Next())
	n, err := c.GetUint()
	require.NoError(t, err)
	assert.Equal(t, uint32(42), n)

	require.True(t, c.Next())
	s, err := c.GetString()
	require.NoError(t, err)
	assert.Equal(t, "hello", s)

	require.True(t, c.Next())
	b, err := c.GetBool()
	require.NoError(t, err)
	assert.True(t, b)

	assert.False(t, c.Next())
}

func TestCursorListEnterExit(t *testing.T) {
	tree := NewTree()
	c := tree.Cursor()
	require.NoError(t, c.PutList())
	require.NoError(t, c.Enter())
	require.NoError(t, c.PutInt(1))
	require.NoError(t, c.PutInt(2))
	require.NoError(t, c.Exit())

	c.Rewind()
	require.True(t, c.Next())
	assert.Equal(t, List, c.Type())
	assert.Equal(t, 2, c.Count())

	require.NoError(t, c.Enter())
	require.True(t, c.Next())
	v, err := c.GetInt()
	require.NoError(t, err)
	assert.Equal(t, int32(1), v)
}

func TestCursorExitAtRootFails(t *testing.T) {
	tree := NewTree()
	c := tree.Cursor()
	err := c.Exit()
	require.Error(t, err)
	var amqpErr *Error
	require.ErrorAs(t, err, &amqpErr)
	assert.Equal(t, KindArgument, amqpErr.Kind)
}

func TestCursorArrayRejectsMismatchedElementTag(t *testing.T) {
	tree := NewTree()
	c := tree.Cursor()
	require.NoError(t, c.PutArray(Int, false))
	require.NoError(t, c.Enter())
	require.NoError(t, c.PutInt(1))
	err := c.PutString("oops")
	require.Error(t, err)
}

func TestCursorDescribedAcceptsExactlyTwoChildren(t *testing.T) {
	tree := NewTree()
	c := tree.Cursor()
	require.NoError(t, c.PutDescribed())
	require.NoError(t, c.Enter())
	require.NoError(t, c.PutUlong(0x73))
	require.NoError(t, c.PutString("body"))
	err := c.PutString("extra")
	require.Error(t, err)
}

func TestCursorCopyToIsIndependent(t *testing.T) {
	src := NewTree()
	sc := src.Cursor()
	require.NoError(t, sc.PutBinary([]byte{1, 2, 3}))
	sc.Rewind()
	require.True(t, sc.Next())

	dst := NewTree()
	dc := dst.Cursor()
	require.NoError(t, sc.CopyTo(dc))

	b, err := sc.GetBinary()
	require.NoError(t, err)
	b[0] = 0xff

	dc.Rewind()
	require.True(t, dc.Next())
	db, err := dc.GetBinary()
	require.NoError(t, err)
	assert.Equal(t, byte(1), db[0], "CopyTo must not alias the source payload")
}

func TestCursorGetWrongTagErrors(t *testing.T) {
	tree := NewTree()
	c := tree.Cursor()
	require.NoError(t, c.PutInt(5))
	c.Rewind()
	require.True(t, c.Next())
	_, err := c.GetString()
	require.Error(t, err)
	var amqpErr *Error
	require.ErrorAs(t, err, &amqpErr)
	assert.Equal(t, KindEncoding, amqpErr.Kind)
}

func TestCursorPutCharRejectsSurrogates(t *testing.T) {
	tree := NewTree()
	c := tree.Cursor()
	err := c.PutChar(0xD800)
	require.Error(t, err)
	require.NoError(t, c.PutChar('A'))
}
