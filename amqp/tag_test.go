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
)

func TestTagString(t *testing.T) {
	cases := map[Tag]string{
		Invalid:   "invalid",
		Null:      "null",
		Bool:      "bool",
		Ulong:     "ulong",
		UUIDTag:   "uuid",
		BinaryTag: "binary",
		SymbolTag: "symbol",
		Described: "described",
		Array:     "array",
		List:      "list",
		Map:       "map",
	}
	for tag, want := range cases {
		assert.Equal(t, want, tag.String())
	}
	assert.Contains(t, Tag(200).String(), "tag(200)")
}

func TestTagIsComposite(t *testing.T) {
	for _, tag := range []Tag{List, Map, Array, Described} {
		assert.True(t, tag.isComposite(), "%s should be composite", tag)
	}
	for _, tag := range []Tag{Null, Bool, Ubyte, Ulong, BinaryTag, String, SymbolTag} {
		assert.False(t, tag.isComposite(), "%s should not be composite", tag)
	}
}

func TestConstructorIsDecimal(t *testing.T) {
	assert.True(t, codeDecimal32.isDecimal())
	assert.True(t, codeDecimal64.isDecimal())
	assert.True(t, codeDecimal128.isDecimal())
	assert.False(t, codeUlong.isDecimal())
}
