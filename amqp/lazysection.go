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

import "github.com/Connecterra/qpid-proton-go/internal/log"

// lazySection implements the "authoritative-on-one-side" cache for one
// message map section: at any observable moment exactly one of {m, wire}
// is non-empty. K is the section's key type (AnnotationKey for
// delivery-annotations/message-annotations/footer, string for
// application-properties).
//
// A plain Go map cannot preserve insertion order across a
// read-materialize-mutate-encode round trip, so this wraps an OrderedMap
// instead (see DESIGN.md).
type lazySection[K comparable] struct {
	name string
	m    *OrderedMap[K, interface{}]
	wire *Value // nil, or a Map-tagged Value holding raw key/value children
}

func newLazySection[K comparable](name string) *lazySection[K] {
	return &lazySection[K]{name: name}
}

func (l *lazySection[K]) isEmpty() bool {
	return (l.m == nil || l.m.Len() == 0) && (l.wire == nil || l.wire.Count() == 0)
}

func (l *lazySection[K]) clear() {
	l.m = nil
	l.wire = nil
}

// materialize is the read-access transition: AUTH-WIRE -> AUTH-MAP. If the
// wire subtree holds entries and the host map is empty, it decodes the
// subtree into the map and drops the subtree.
func (l *lazySection[K]) materialize(keyFromAny func(interface{}) (K, error)) (*OrderedMap[K, interface{}], error) {
	if l.m == nil {
		l.m = NewOrderedMap[K, interface{}]()
	}
	if l.wire != nil && l.wire.Count() > 0 && l.m.Len() == 0 {
		kids := l.wire.Children()
		for i := 0; i+1 < len(kids); i += 2 {
			keyAny, err := valueToAny(kids[i])
			if err != nil {
				return nil, err
			}
			key, err := keyFromAny(keyAny)
			if err != nil {
				return nil, err
			}
			val, err := valueToAny(kids[i+1])
			if err != nil {
				return nil, err
			}
			l.m.Set(key, val)
		}
		log.SectionTransition(l.name, "auth-wire", "auth-map")
		l.wire = nil
	}
	return l.m, nil
}

// commit is the encode-phase transition: AUTH-MAP -> AUTH-WIRE. If the host
// map holds entries and the wire subtree is empty, it builds the subtree
// from the map and drops the map.
func (l *lazySection[K]) commit(keyToAny func(K) interface{}) error {
	if l.m == nil || l.m.Len() == 0 {
		return nil
	}
	if l.wire != nil && l.wire.Count() > 0 {
		return nil
	}
	mv := newCompositeValue(Map)
	var kids []*Value
	var failure error
	l.m.Range(func(k K, v interface{}) bool {
		kv, err := anyToValue(keyToAny(k))
		if err != nil {
			failure = err
			return false
		}
		vv, err := anyToValue(v)
		if err != nil {
			failure = err
			return false
		}
		kids = append(kids, kv, vv)
		return true
	})
	if failure != nil {
		return failure
	}
	mv.kids = kids
	l.wire = mv
	log.SectionTransition(l.name, "auth-map", "auth-wire")
	l.m = nil
	return nil
}

func annotationKeyFromAny(v interface{}) (AnnotationKey, error) {
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

func annotationKeyToAny(k AnnotationKey) interface{} { return k }

func stringKeyFromAny(v interface{}) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", noConversionError(v)
	}
	return s, nil
}

func stringKeyToAny(k string) interface{} { return k }
