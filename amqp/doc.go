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

/*
Package amqp implements the AMQP 1.0 value codec and message model: a
tagged value tree, a cursor for navigating and building it, a binary codec
to and from the wire, host-type conversion via Cursor.Put/Cursor.Get, and a
Message container assembled from the standard message sections.

Cursor.Put/anyToValue accept Go values and produce AMQP-tagged tree nodes
as follows:

 +-------------------------------------+--------------------------------------------+
 |Go type                              |AMQP type                                   |
 +-------------------------------------+--------------------------------------------+
 |bool                                 |bool                                        |
 +-------------------------------------+--------------------------------------------+
 |int8, int16, int32, int64 (int)      |byte, short, int, long (long)               |
 +-------------------------------------+--------------------------------------------+
 |uint8, uint16, uint32, uint64 (uint) |ubyte, ushort, uint, ulong (ulong)          |
 +-------------------------------------+--------------------------------------------+
 |float32, float64                     |float, double                               |
 +-------------------------------------+--------------------------------------------+
 |string                               |string                                      |
 +-------------------------------------+--------------------------------------------+
 |[]byte, Binary                       |binary                                      |
 +-------------------------------------+--------------------------------------------+
 |Symbol                               |symbol                                      |
 +-------------------------------------+--------------------------------------------+
 |Char                                 |char                                        |
 +-------------------------------------+--------------------------------------------+
 |nil                                  |null                                        |
 +-------------------------------------+--------------------------------------------+
 |map[K]T, *OrderedMap (see below)     |map, K and T converted as above             |
 +-------------------------------------+--------------------------------------------+
 |[]T                                  |list, T converted as above                  |
 +-------------------------------------+--------------------------------------------+
 |Described                            |described type                              |
 +-------------------------------------+--------------------------------------------+
 |time.Time                            |timestamp                                   |
 +-------------------------------------+--------------------------------------------+
 |UUID                                 |uuid                                        |
 +-------------------------------------+--------------------------------------------+
 |MessageID, AnnotationKey             |ulong, uuid, binary or string/symbol        |
 +-------------------------------------+--------------------------------------------+

A rune is an int32 and maps to int; only Char maps to char. Of the
OrderedMap instantiations, only *OrderedMap[string, interface{}] and
*OrderedMap[AnnotationKey, interface{}] are accepted; any other OrderedMap
is rejected with an ARGUMENT error.

Cursor.Get/valueToAny perform the reverse mapping, widening a narrower
integer wire type to a wider requested Go type, and rejecting a wider wire
type with an ARGUMENT error (a CHAR widens when its code point fits).

An AMQP array whose elements are char, timestamp, uuid, null or a composite
type (for example an array of arrays) decodes to []interface{} rather than
a typed slice.

decimal32, decimal64 and decimal128 are recognized on the wire but return an
UNSUPPORTED error on decode; there is no corresponding Go type.
*/
package amqp
