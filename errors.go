// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bottle

import (
	"errors"
	"fmt"
)

// Kind categorizes the distinct ways a read or write operation can fail,
// per the container's error-handling design.
type Kind uint8

const (
	// KindUnexpectedEOF means the transport ended inside a structure:
	// header, table field, frame body, or frame-length continuation byte.
	KindUnexpectedEOF Kind = iota + 1

	// KindInvalidInput means the bytes on the wire, or the value passed to
	// an encoder, violate the format. See Error.Reason for specifics.
	KindInvalidInput
)

func (k Kind) String() string {
	switch k {
	case KindUnexpectedEOF:
		return "unexpected EOF"
	case KindInvalidInput:
		return "invalid input"
	default:
		return "unknown error kind"
	}
}

// Error is the error type returned by every decode/encode operation in
// this package that fails for a reason internal to the format (as opposed
// to an error surfaced verbatim from the underlying transport).
type Error struct {
	Kind   Kind
	Reason string
}

func (e *Error) Error() string {
	if e.Reason == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

// Is reports whether target is an *Error of the same Kind (and, when
// target carries a Reason, the same Reason), so callers can use
// errors.Is(err, bottle.ErrUnexpectedEOF) style checks.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	if other.Reason == "" {
		return e.Kind == other.Kind
	}
	return *e == *other
}

func newUnexpectedEOF(reason string) *Error {
	return &Error{Kind: KindUnexpectedEOF, Reason: reason}
}

func newInvalidInput(reason string) *Error {
	return &Error{Kind: KindInvalidInput, Reason: reason}
}

// Sentinel Kind-only errors for errors.Is comparisons that don't care
// about the specific Reason.
var (
	// ErrUnexpectedEOF matches any Error of KindUnexpectedEOF.
	ErrUnexpectedEOF = &Error{Kind: KindUnexpectedEOF}
	// ErrInvalidInput matches any Error of KindInvalidInput.
	ErrInvalidInput = &Error{Kind: KindInvalidInput}
)

// IsInvalidInput reports whether err is, or wraps, a bottle format error
// of KindInvalidInput.
func IsInvalidInput(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == KindInvalidInput
	}
	return false
}

// IsUnexpectedEOF reports whether err is, or wraps, a bottle format error
// of KindUnexpectedEOF.
func IsUnexpectedEOF(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == KindUnexpectedEOF
	}
	return false
}
