// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package channel

import (
	"errors"
	"fmt"
)

var (
	// ErrEncoding is matched by every EncodingError.
	ErrEncoding = errors.New("channel encoding error")
	// ErrDecoding is matched by every DecodingError.
	ErrDecoding = errors.New("channel decoding error")
	// ErrRecordSize is returned when raw bytes do not form a whole record.
	ErrRecordSize = errors.New("record must be exactly 32 bytes")
)

// EncodingError reports a channel value the active encoding cannot represent.
type EncodingError struct {
	Slot   int // 1-based, 0 when not tied to a slot
	Field  string
	Value  float64
	Reason string
}

func (e *EncodingError) Error() string {
	if e.Slot > 0 {
		return fmt.Sprintf("slot %d: cannot encode %s %g: %s", e.Slot, e.Field, e.Value, e.Reason)
	}
	return fmt.Sprintf("cannot encode %s %g: %s", e.Field, e.Value, e.Reason)
}

// Is reports whether target is ErrEncoding.
func (e *EncodingError) Is(target error) bool {
	return target == ErrEncoding
}

// DecodingError reports record bytes that do not decode under the active encoding.
type DecodingError struct {
	Slot   int
	Field  string
	Bytes  []byte
	Reason string
}

func (e *DecodingError) Error() string {
	if e.Slot > 0 {
		return fmt.Sprintf("slot %d: cannot decode %s [% X]: %s", e.Slot, e.Field, e.Bytes, e.Reason)
	}
	return fmt.Sprintf("cannot decode %s [% X]: %s", e.Field, e.Bytes, e.Reason)
}

// Is reports whether target is ErrDecoding.
func (e *DecodingError) Is(target error) bool {
	return target == ErrDecoding
}

// withSlot stamps a slot number on codec errors raised below the record level.
func withSlot(err error, slot int) error {
	var encErr *EncodingError
	if errors.As(err, &encErr) {
		encErr.Slot = slot
		return encErr
	}
	var decErr *DecodingError
	if errors.As(err, &decErr) {
		decErr.Slot = slot
		return decErr
	}
	return err
}
