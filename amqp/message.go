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

// bodyKind records which of the three AMQP body section encodings a
// Message's body was set through.
type bodyKind int

const (
	bodyNone bodyKind = iota
	bodyData
	bodySequence
	bodyValue
)

// Message is the AMQP 1.0 message container: fixed header and properties
// fields as plain struct fields, four map sections with the lazy
// "authoritative-on-one-side" cache (delivery-annotations,
// message-annotations, application-properties, and the footer), and a
// single body value.
//
// A Message is not safe for concurrent use; callers provide
// external synchronization.
type Message struct {
	// Header fields.
	Durable       bool
	Priority      uint8 // default 4
	TTL           uint32
	FirstAcquirer bool
	DeliveryCount uint32

	// Properties fields.
	ID              MessageID
	UserID          Binary
	Address         string
	Subject         string
	ReplyTo         string
	CorrelationID   MessageID
	ContentType     Symbol
	ContentEncoding Symbol
	ExpiryTime      int64 // ms since epoch; 0 means unset
	CreationTime    int64
	GroupID         string
	GroupSequence   int32
	ReplyToGroupID  string

	// Inferred governs which wire section an untyped binary body is
	// carried in: data (0x75) when true, amqp-value (0x77) when false.
	// It is a message-level flag, not a member of the properties
	// composite — the real AMQP 1.0 properties list has no such field.
	Inferred bool

	deliveryAnnotations *lazySection[AnnotationKey]
	messageAnnotations  *lazySection[AnnotationKey]
	applicationProps    *lazySection[string]
	footer              *lazySection[AnnotationKey]

	body     interface{}
	bodyKind bodyKind
}

// New returns an empty Message with header defaults applied (priority 4).
func New() *Message {
	return &Message{
		Priority:            4,
		deliveryAnnotations: newLazySection[AnnotationKey]("delivery-annotations"),
		messageAnnotations:  newLazySection[AnnotationKey]("message-annotations"),
		applicationProps:    newLazySection[string]("application-properties"),
		footer:              newLazySection[AnnotationKey]("footer"),
	}
}

// Clear wipes all state back to a fresh Message.
func (m *Message) Clear() { *m = *New() }

// Instructions returns the delivery-annotations map by reference,
// materializing it from the wire subtree if a prior Decode left it there.
func (m *Message) Instructions() (*OrderedMap[AnnotationKey, interface{}], error) {
	return m.deliveryAnnotations.materialize(annotationKeyFromAny)
}

// Annotations returns the message-annotations map by reference.
func (m *Message) Annotations() (*OrderedMap[AnnotationKey, interface{}], error) {
	return m.messageAnnotations.materialize(annotationKeyFromAny)
}

// ApplicationProperties returns the application-properties map by
// reference. Keys are restricted to STRING.
func (m *Message) ApplicationProperties() (*OrderedMap[string, interface{}], error) {
	return m.applicationProps.materialize(stringKeyFromAny)
}

// Footer returns the footer map by reference.
func (m *Message) Footer() (*OrderedMap[AnnotationKey, interface{}], error) {
	return m.footer.materialize(annotationKeyFromAny)
}

// Body returns the current body value: a Binary for a data-section body, a
// []interface{} for an amqp-sequence body, or the decoded host value for an
// amqp-value body.
func (m *Message) Body() interface{} { return m.body }

// SetBody sets an amqp-value body, except that a []byte or Binary value is
// carried as a data-section body when Inferred is true.
func (m *Message) SetBody(v interface{}) {
	m.body = v
	switch v.(type) {
	case []byte, Binary:
		if m.Inferred {
			m.bodyKind = bodyData
			return
		}
	}
	m.bodyKind = bodyValue
}

// SetBodySequence sets an amqp-sequence body (wire descriptor 0x76).
func (m *Message) SetBodySequence(seq []interface{}) {
	m.body = seq
	m.bodyKind = bodySequence
}

func (m *Message) headerEmpty() bool {
	return !m.Durable && m.Priority == 4 && m.TTL == 0 && !m.FirstAcquirer && m.DeliveryCount == 0
}

func (m *Message) propertiesEmpty() bool {
	return m.ID.IsZero() && len(m.UserID) == 0 && m.Address == "" && m.Subject == "" &&
		m.ReplyTo == "" && m.CorrelationID.IsZero() && m.ContentType == "" && m.ContentEncoding == "" &&
		m.ExpiryTime == 0 && m.CreationTime == 0 && m.GroupID == "" && m.GroupSequence == 0 &&
		m.ReplyToGroupID == ""
}

// Encode applies the put-phase transition to every map section, then
// serializes the whole message into buf, choosing the minimal wire form
// for every value outside an array (see Tree.Encode). See EncodeGrow for the grow-on-overflow entry point
// used when buf's size is not known in advance.
func (m *Message) Encode(buf []byte) ([]byte, error) {
	if err := m.commitSections(); err != nil {
		return nil, err
	}
	tree, err := m.buildWireTree()
	if err != nil {
		return nil, err
	}
	return tree.Encode(buf)
}

// EncodeGrow encodes the message, doubling the buffer (starting from buf, or
// from 512 bytes when buf is empty) and retrying on OVERFLOW until the
// encode succeeds.
func (m *Message) EncodeGrow(buf []byte) ([]byte, error) {
	return EncodeGrow(buf, initialBufferSize, m.Encode)
}

func (m *Message) commitSections() error {
	if err := m.deliveryAnnotations.commit(annotationKeyToAny); err != nil {
		return err
	}
	if err := m.messageAnnotations.commit(annotationKeyToAny); err != nil {
		return err
	}
	if err := m.applicationProps.commit(stringKeyToAny); err != nil {
		return err
	}
	if err := m.footer.commit(annotationKeyToAny); err != nil {
		return err
	}
	return nil
}

func (m *Message) buildWireTree() (*Tree, error) {
	t := NewTree()
	put := func(descriptor uint64, body *Value) {
		dv := newCompositeValue(Described)
		dv.kids = []*Value{newUintValue(Ulong, descriptor), body}
		t.top = append(t.top, dv)
	}

	if !m.headerEmpty() {
		hv, err := m.buildHeaderValue()
		if err != nil {
			return nil, err
		}
		put(0x70, hv)
	}
	if m.deliveryAnnotations.wire != nil && m.deliveryAnnotations.wire.Count() > 0 {
		put(0x71, m.deliveryAnnotations.wire)
	}
	if m.messageAnnotations.wire != nil && m.messageAnnotations.wire.Count() > 0 {
		put(0x72, m.messageAnnotations.wire)
	}
	if !m.propertiesEmpty() {
		pv, err := m.buildPropertiesValue()
		if err != nil {
			return nil, err
		}
		put(0x73, pv)
	}
	if m.applicationProps.wire != nil && m.applicationProps.wire.Count() > 0 {
		put(0x74, m.applicationProps.wire)
	}

	descriptor, bodyVal, present, err := m.buildBodyValue()
	if err != nil {
		return nil, err
	}
	if present {
		put(descriptor, bodyVal)
	}

	if m.footer.wire != nil && m.footer.wire.Count() > 0 {
		put(0x78, m.footer.wire)
	}
	return t, nil
}

func (m *Message) buildHeaderValue() (*Value, error) {
	t := NewTree()
	c := t.Cursor()
	if err := c.PutList(); err != nil {
		return nil, err
	}
	if err := c.Enter(); err != nil {
		return nil, err
	}
	if err := c.PutBool(m.Durable); err != nil {
		return nil, err
	}
	if err := c.PutUbyte(m.Priority); err != nil {
		return nil, err
	}
	if err := c.PutUint(m.TTL); err != nil {
		return nil, err
	}
	if err := c.PutBool(m.FirstAcquirer); err != nil {
		return nil, err
	}
	if err := c.PutUint(m.DeliveryCount); err != nil {
		return nil, err
	}
	if err := c.Exit(); err != nil {
		return nil, err
	}
	return t.top[0], nil
}

func (m *Message) buildPropertiesValue() (*Value, error) {
	t := NewTree()
	c := t.Cursor()
	if err := c.PutList(); err != nil {
		return nil, err
	}
	if err := c.Enter(); err != nil {
		return nil, err
	}
	steps := []func() error{
		func() error { return putMessageIDOrNull(c, m.ID) },
		func() error { return putBinaryOrNull(c, m.UserID) },
		func() error { return c.PutString(m.Address) },
		func() error { return c.PutString(m.Subject) },
		func() error { return c.PutString(m.ReplyTo) },
		func() error { return putMessageIDOrNull(c, m.CorrelationID) },
		func() error { return putSymbolOrNull(c, m.ContentType) },
		func() error { return putSymbolOrNull(c, m.ContentEncoding) },
		func() error { return c.PutTimestamp(m.ExpiryTime) },
		func() error { return c.PutTimestamp(m.CreationTime) },
		func() error { return c.PutString(m.GroupID) },
		func() error { return c.PutInt(m.GroupSequence) },
		func() error { return c.PutString(m.ReplyToGroupID) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}
	if err := c.Exit(); err != nil {
		return nil, err
	}
	return t.top[0], nil
}

func putMessageIDOrNull(c *Cursor, id MessageID) error {
	if id.IsZero() {
		return c.PutNull()
	}
	return c.Put(id)
}

func putBinaryOrNull(c *Cursor, b Binary) error {
	if b == nil {
		return c.PutNull()
	}
	return c.PutBinary([]byte(b))
}

func putSymbolOrNull(c *Cursor, s Symbol) error {
	if s == "" {
		return c.PutNull()
	}
	return c.PutSymbol(string(s))
}

func (m *Message) buildBodyValue() (descriptor uint64, body *Value, present bool, err error) {
	switch m.bodyKind {
	case bodyNone:
		return 0, nil, false, nil
	case bodyData:
		var b []byte
		switch x := m.body.(type) {
		case Binary:
			b = []byte(x)
		case []byte:
			b = x
		default:
			return 0, nil, false, newHostError(KindArgument, m.body, "data-section body must be bytes")
		}
		return 0x75, newBytesValue(BinaryTag, b), true, nil
	case bodySequence:
		seq, ok := m.body.([]interface{})
		if !ok {
			return 0, nil, false, newHostError(KindArgument, m.body, "sequence-section body must be []interface{}")
		}
		v, err := anyToValue(seq)
		if err != nil {
			return 0, nil, false, err
		}
		return 0x76, v, true, nil
	case bodyValue:
		v, err := anyToValue(m.body)
		if err != nil {
			return 0, nil, false, err
		}
		return 0x77, v, true, nil
	default:
		return 0, nil, false, nil
	}
}

// Decode clears the message (moving the three former map sections' and
// footer's authority conceptually back to the cursor subtree, then
// starting fresh.5) and parses data as a sequence of
// top-level described message sections. Malformed input leaves the message
// in the same state as Clear().
func (m *Message) Decode(data []byte) error {
	fresh := New()
	t := NewTree()
	pos := 0
	for pos < len(data) {
		n, err := t.Decode(data[pos:])
		if err != nil {
			*m = *New()
			return err
		}
		pos += n
	}

	c := t.Cursor()
	for c.Next() {
		v := c.current()
		if v.Tag() != Described {
			*m = *New()
			return newTagError(KindEncoding, v.Tag(), "top-level message section must be a described value")
		}
		kids := v.Children()
		if len(kids) != 2 || kids[0].Tag() != Ulong {
			*m = *New()
			return newError(KindEncoding, "message section descriptor must be a ulong")
		}
		descriptor := kids[0].uint64Val()
		body := kids[1]

		var err error
		switch descriptor {
		case 0x70:
			err = fresh.decodeHeader(body)
		case 0x71:
			err = setMapSection(fresh.deliveryAnnotations, body)
		case 0x72:
			err = setMapSection(fresh.messageAnnotations, body)
		case 0x73:
			err = fresh.decodeProperties(body)
		case 0x74:
			err = setMapSection(fresh.applicationProps, body)
		case 0x75:
			if body.Tag() != BinaryTag {
				err = tagMismatch(BinaryTag, body)
			} else {
				fresh.body = Binary(body.Bytes())
				fresh.bodyKind = bodyData
			}
		case 0x76:
			var val interface{}
			val, err = valueToAny(body)
			fresh.body = val
			fresh.bodyKind = bodySequence
		case 0x77:
			var val interface{}
			val, err = valueToAny(body)
			fresh.body = val
			fresh.bodyKind = bodyValue
		case 0x78:
			err = setMapSection(fresh.footer, body)
		default:
			err = newError(KindEncoding, "unrecognized message section descriptor %#x", descriptor)
		}
		if err != nil {
			*m = *New()
			return err
		}

		log.DecodeSection(sectionName(descriptor), body.Count())
	}

	*m = *fresh
	return nil
}

func sectionName(descriptor uint64) string {
	switch descriptor {
	case 0x70:
		return "header"
	case 0x71:
		return "delivery-annotations"
	case 0x72:
		return "message-annotations"
	case 0x73:
		return "properties"
	case 0x74:
		return "application-properties"
	case 0x75:
		return "data"
	case 0x76:
		return "amqp-sequence"
	case 0x77:
		return "amqp-value"
	case 0x78:
		return "footer"
	default:
		return "unknown"
	}
}

func setMapSection[K comparable](l *lazySection[K], body *Value) error {
	if body.Tag() != Map {
		return tagMismatch(Map, body)
	}
	l.wire = body
	return nil
}

func (m *Message) decodeHeader(body *Value) error {
	if body.Tag() != List {
		return tagMismatch(List, body)
	}
	kids := body.Children()
	durable, err := asBool(fieldValue(kids, 0))
	if err != nil {
		return err
	}
	m.Durable = durable

	priority, ok, err := asUbyte(fieldValue(kids, 1))
	if err != nil {
		return err
	}
	if ok {
		m.Priority = priority
	}

	ttl, err := asUint32(fieldValue(kids, 2))
	if err != nil {
		return err
	}
	m.TTL = ttl

	firstAcquirer, err := asBool(fieldValue(kids, 3))
	if err != nil {
		return err
	}
	m.FirstAcquirer = firstAcquirer

	deliveryCount, err := asUint32(fieldValue(kids, 4))
	if err != nil {
		return err
	}
	m.DeliveryCount = deliveryCount
	return nil
}

func (m *Message) decodeProperties(body *Value) error {
	if body.Tag() != List {
		return tagMismatch(List, body)
	}
	kids := body.Children()
	var err error
	if m.ID, err = asMessageID(fieldValue(kids, 0)); err != nil {
		return err
	}
	if m.UserID, err = asBinary(fieldValue(kids, 1)); err != nil {
		return err
	}
	if m.Address, err = asString(fieldValue(kids, 2)); err != nil {
		return err
	}
	if m.Subject, err = asString(fieldValue(kids, 3)); err != nil {
		return err
	}
	if m.ReplyTo, err = asString(fieldValue(kids, 4)); err != nil {
		return err
	}
	if m.CorrelationID, err = asMessageID(fieldValue(kids, 5)); err != nil {
		return err
	}
	if m.ContentType, err = asSymbol(fieldValue(kids, 6)); err != nil {
		return err
	}
	if m.ContentEncoding, err = asSymbol(fieldValue(kids, 7)); err != nil {
		return err
	}
	if m.ExpiryTime, err = asTimestamp(fieldValue(kids, 8)); err != nil {
		return err
	}
	if m.CreationTime, err = asTimestamp(fieldValue(kids, 9)); err != nil {
		return err
	}
	if m.GroupID, err = asString(fieldValue(kids, 10)); err != nil {
		return err
	}
	if m.GroupSequence, err = asInt32(fieldValue(kids, 11)); err != nil {
		return err
	}
	if m.ReplyToGroupID, err = asString(fieldValue(kids, 12)); err != nil {
		return err
	}
	return nil
}

func fieldValue(children []*Value, i int) *Value {
	if i < len(children) {
		return children[i]
	}
	return nil
}

func isPresent(v *Value) bool { return v != nil && v.Tag() != Null && v.Tag() != Invalid }

func asBool(v *Value) (bool, error) {
	if !isPresent(v) {
		return false, nil
	}
	if v.Tag() != Bool {
		return false, tagMismatch(Bool, v)
	}
	return v.boolVal(), nil
}

func asUbyte(v *Value) (uint8, bool, error) {
	if !isPresent(v) {
		return 0, false, nil
	}
	if v.Tag() != Ubyte {
		return 0, false, tagMismatch(Ubyte, v)
	}
	return uint8(v.uint64Val()), true, nil
}

func asUint32(v *Value) (uint32, error) {
	if !isPresent(v) {
		return 0, nil
	}
	if v.Tag() != Uint {
		return 0, tagMismatch(Uint, v)
	}
	return uint32(v.uint64Val()), nil
}

func asInt32(v *Value) (int32, error) {
	if !isPresent(v) {
		return 0, nil
	}
	if v.Tag() != Int {
		return 0, tagMismatch(Int, v)
	}
	return int32(v.int64Val()), nil
}

func asTimestamp(v *Value) (int64, error) {
	if !isPresent(v) {
		return 0, nil
	}
	if v.Tag() != Timestamp {
		return 0, tagMismatch(Timestamp, v)
	}
	return v.timestampVal(), nil
}

func asString(v *Value) (string, error) {
	if !isPresent(v) {
		return "", nil
	}
	switch v.Tag() {
	case String, SymbolTag:
		return string(v.Bytes()), nil
	default:
		return "", tagMismatch(String, v)
	}
}

func asSymbol(v *Value) (Symbol, error) {
	if !isPresent(v) {
		return "", nil
	}
	switch v.Tag() {
	case SymbolTag, String:
		return Symbol(v.Bytes()), nil
	default:
		return "", tagMismatch(SymbolTag, v)
	}
}

func asBinary(v *Value) (Binary, error) {
	if !isPresent(v) {
		return nil, nil
	}
	if v.Tag() != BinaryTag {
		return nil, tagMismatch(BinaryTag, v)
	}
	return Binary(v.Bytes()), nil
}

func asMessageID(v *Value) (MessageID, error) {
	if !isPresent(v) {
		return MessageID{}, nil
	}
	switch v.Tag() {
	case Ulong:
		return MessageID{tag: Ulong, num: v.uint64Val()}, nil
	case UUIDTag:
		return MessageID{tag: UUIDTag, uid: UUID(v.uuidVal())}, nil
	case BinaryTag:
		return MessageID{tag: BinaryTag, bin: v.Bytes()}, nil
	case String:
		return MessageID{tag: String, str: string(v.Bytes())}, nil
	default:
		return MessageID{}, newTagError(KindEncoding, v.Tag(), "not a valid message-id type")
	}
}
