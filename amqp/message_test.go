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

func TestNewMessageHasDefaultPriority(t *testing.T) {
	m := New()
	assert.Equal(t, uint8(4), m.Priority)
	assert.True(t, m.headerEmpty())
	assert.True(t, m.propertiesEmpty())
}

func TestMessageHeaderPropertiesRoundTrip(t *testing.T) {
	m := New()
	m.Durable = true
	m.Priority = 9
	m.TTL = 60000
	id, err := NewMessageID("order-42")
	require.NoError(t, err)
	m.ID = id
	m.Subject = "orders"
	m.ContentType = "application/json"
	m.SetBody("payload")

	buf, err := m.EncodeGrow(nil)
	require.NoError(t, err)

	out := New()
	require.NoError(t, out.Decode(buf))
	assert.True(t, out.Durable)
	assert.Equal(t, uint8(9), out.Priority)
	assert.Equal(t, uint32(60000), out.TTL)
	assert.Equal(t, "order-42", out.ID.Value())
	assert.Equal(t, "orders", out.Subject)
	assert.Equal(t, Symbol("application/json"), out.ContentType)
	assert.Equal(t, "payload", out.Body())
}

func TestMessageDataBodyRoundTrip(t *testing.T) {
	m := New()
	m.Inferred = true
	m.SetBody([]byte{1, 2, 3, 4})

	buf, err := m.EncodeGrow(nil)
	require.NoError(t, err)

	out := New()
	require.NoError(t, out.Decode(buf))
	assert.Equal(t, Binary{1, 2, 3, 4}, out.Body())
}

func TestMessageSequenceBodyRoundTrip(t *testing.T) {
	m := New()
	m.SetBodySequence([]interface{}{int32(1), "two", int32(3)})

	buf, err := m.EncodeGrow(nil)
	require.NoError(t, err)

	out := New()
	require.NoError(t, out.Decode(buf))
	assert.Equal(t, []interface{}{int32(1), "two", int32(3)}, out.Body())
}

// TestLazySectionCacheTransitions exercises the three-state cache: a fresh
// message starts empty, materializing the map switches it to host-authoritative,
// and encoding switches it back to wire-authoritative without losing entries.
func TestLazySectionCacheTransitions(t *testing.T) {
	m := New()
	assert.True(t, m.messageAnnotations.isEmpty())

	ann, err := m.Annotations()
	require.NoError(t, err)
	ann.Set(AnnotationKey{tag: SymbolTag, sym: "priority-hint"}, int32(1))
	assert.Nil(t, m.messageAnnotations.wire)

	buf, err := m.EncodeGrow(nil)
	require.NoError(t, err)
	assert.Nil(t, m.messageAnnotations.m, "commit must hand authority back to the wire subtree")

	out := New()
	require.NoError(t, out.Decode(buf))
	assert.NotNil(t, out.messageAnnotations.wire)
	assert.Nil(t, out.messageAnnotations.m)

	gotAnn, err := out.Annotations()
	require.NoError(t, err)
	v, ok := gotAnn.Get(AnnotationKey{tag: SymbolTag, sym: "priority-hint"})
	require.True(t, ok)
	assert.Equal(t, int32(1), v)
}

func TestMessageApplicationPropertiesStringKeyed(t *testing.T) {
	m := New()
	props, err := m.ApplicationProperties()
	require.NoError(t, err)
	props.Set("retry-count", int32(2))

	buf, err := m.EncodeGrow(nil)
	require.NoError(t, err)

	out := New()
	require.NoError(t, out.Decode(buf))
	gotProps, err := out.ApplicationProperties()
	require.NoError(t, err)
	v, ok := gotProps.Get("retry-count")
	require.True(t, ok)
	assert.Equal(t, int32(2), v)
}

func TestMessageFooterRoundTrip(t *testing.T) {
	m := New()
	foot, err := m.Footer()
	require.NoError(t, err)
	foot.Set(AnnotationKey{tag: Ulong, num: 1}, "checksum-ok")
	m.SetBody("x")

	buf, err := m.EncodeGrow(nil)
	require.NoError(t, err)

	out := New()
	require.NoError(t, out.Decode(buf))
	gotFoot, err := out.Footer()
	require.NoError(t, err)
	v, ok := gotFoot.Get(AnnotationKey{tag: Ulong, num: 1})
	require.True(t, ok)
	assert.Equal(t, "checksum-ok", v)
}

func TestMessageDecodeMalformedResetsToClear(t *testing.T) {
	m := New()
	m.Durable = true
	m.SetBody("will be lost")

	err := m.Decode([]byte{0xff})
	require.Error(t, err)
	assert.False(t, m.Durable)
	assert.Nil(t, m.Body())
	assert.Equal(t, uint8(4), m.Priority)
}

func TestMessageClearIsIdempotent(t *testing.T) {
	m := New()
	m.SetBody("x")
	m.Clear()
	assert.Nil(t, m.Body())
	m.Clear()
	assert.Nil(t, m.Body())
	assert.Equal(t, uint8(4), m.Priority)
}
