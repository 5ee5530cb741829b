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
	"fmt"
	"reflect"

	"github.com/pkg/errors"
)

// ErrorKind classifies why an operation failed. It is never matched on by
// string, only by Error's Kind field or errors.Is against the package
// sentinels below.
type ErrorKind int

const (
	// KindOverflow: the output buffer was too small. Not a logical error;
	// the caller should retry with a larger buffer.
	KindOverflow ErrorKind = iota
	// KindUnderflow: the input does not contain a complete value. Not a
	// logical error; the caller should supply more bytes.
	KindUnderflow
	// KindEncoding: the input bytes (or the tree being encoded) violate
	// the wire grammar or an invariant of this package.
	KindEncoding
	// KindArgument: a host value could not be mapped to an AMQP type, or
	// vice versa.
	KindArgument
	// KindUnsupported: the wire contains an AMQP type this module
	// deliberately does not implement (decimal32/64/128).
	KindUnsupported
)

func (k ErrorKind) String() string {
	switch k {
	case KindOverflow:
		return "overflow"
	case KindUnderflow:
		return "underflow"
	case KindEncoding:
		return "encoding"
	case KindArgument:
		return "argument"
	case KindUnsupported:
		return "unsupported"
	default:
		return "unknown"
	}
}

// Error is the structured error type returned by this package's encode,
// decode, marshal and unmarshal operations. It identifies the AMQP tag
// and/or host type involved when the failing operation has one to report.
type Error struct {
	Kind     ErrorKind
	AMQPTag  Tag
	HostType reflect.Type
	msg      string
	cause    error
}

func (e *Error) Error() string {
	switch {
	case e.HostType != nil && e.AMQPTag != Invalid:
		return fmt.Sprintf("amqp: %s: tag=%s host=%s: %s", e.Kind, e.AMQPTag, e.HostType, e.msg)
	case e.HostType != nil:
		return fmt.Sprintf("amqp: %s: host=%s: %s", e.Kind, e.HostType, e.msg)
	case e.AMQPTag != Invalid:
		return fmt.Sprintf("amqp: %s: tag=%s: %s", e.Kind, e.AMQPTag, e.msg)
	default:
		return fmt.Sprintf("amqp: %s: %s", e.Kind, e.msg)
	}
}

func (e *Error) Unwrap() error { return e.cause }

// Is lets errors.Is(err, ErrOverflow) and errors.Is(err, ErrUnderflow) match
// any *Error carrying that kind, not just the package sentinels themselves.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func newError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, AMQPTag: Invalid, msg: fmt.Sprintf(format, args...)}
}

func newTagError(kind ErrorKind, tag Tag, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, AMQPTag: tag, msg: fmt.Sprintf(format, args...)}
}

func newHostError(kind ErrorKind, v interface{}, format string, args ...interface{}) *Error {
	var t reflect.Type
	if v != nil {
		t = reflect.TypeOf(v)
	}
	return &Error{Kind: kind, AMQPTag: Invalid, HostType: t, msg: fmt.Sprintf(format, args...)}
}

func wrapError(cause error, format string, args ...interface{}) error {
	return errors.Wrapf(cause, format, args...)
}

// ErrOverflow is returned (as the Kind of a *Error) when an output buffer is
// too small to hold an encoded value. The caller should double the buffer
// and retry; see EncodeGrow.
var ErrOverflow = &Error{Kind: KindOverflow, msg: "buffer too small"}

// ErrUnderflow is returned when the decoder's input does not contain a
// complete top-level value. The caller should supply more bytes; consumed
// is always 0 in this case.
var ErrUnderflow = &Error{Kind: KindUnderflow, msg: "incomplete value"}

// noConversionError reports that a host value has no defined AMQP mapping.
func noConversionError(v interface{}) error {
	return newHostError(KindArgument, v, "no conversion to an AMQP type")
}

// unsupportedDecimalError reports a decimal32/64/128 constructor on the
// wire, explicitly unsupported.
func unsupportedDecimalError(c constructor) error {
	return newError(KindUnsupported, "decimal type (constructor %#02x) is not supported", uint8(c))
}
