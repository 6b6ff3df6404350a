// SPDX-FileCopyrightText: (C) 2025 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package sbon

import (
	"bytes"
	"errors"
	"fmt"
)

// Type tags (first byte of every encoded value)
const (
	nilTag    byte = 0x01
	doubleTag byte = 0x02
	boolTag   byte = 0x03
	intTag    byte = 0x04
	stringTag byte = 0x05
	listTag   byte = 0x06
	mapTag    byte = 0x07
)

// MaxNestingDepth limits how deeply lists and maps may nest, on both encode
// and decode. Decoding fails with [ErrDepthExceeded] before recursing past
// the limit rather than exhausting the goroutine stack; encoding and [FromGo]
// conversion apply the same bound, which also catches values, slices, and
// maps that contain themselves.
const MaxNestingDepth = 512

// Sentinel errors
var (
	// ErrVarintOverflow means that a decoded variable-length integer does
	// not fit in 64 bits.
	ErrVarintOverflow = errors.New("sbon: varint overflows 64 bits")

	// ErrDepthExceeded means that a value nests lists/maps deeper than
	// MaxNestingDepth.
	ErrDepthExceeded = errors.New("sbon: max nesting depth exceeded")
)

// ErrUnsupportedType means that a value of this type cannot be encoded.
type ErrUnsupportedType struct {
	typeName string
}

func (e ErrUnsupportedType) Error() string {
	return fmt.Sprintf("unsupported type: %s", e.typeName)
}

// ErrUintOverflow means that a native unsigned integer value lies above the
// int64 range of the integer kind.
type ErrUintOverflow struct {
	Value uint64
}

func (e ErrUintOverflow) Error() string {
	return fmt.Sprintf("uint value %d overflows the signed integer range", e.Value)
}

// ErrUnknownTag means that a decoded tag byte does not identify any value
// kind.
type ErrUnknownTag struct {
	Tag byte
}

func (e ErrUnknownTag) Error() string {
	return fmt.Sprintf("unknown dynamic type 0x%02x", e.Tag)
}

// Marshal a value into SBON. v may be a [Value] or any native type accepted
// by [FromGo].
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal exactly one SBON value. Trailing bytes after the value are an
// error; to decode a value embedded in surrounding data, use a [Decoder],
// which reads no further than the value itself.
func Unmarshal(data []byte) (Value, error) {
	buf := bytes.NewBuffer(data)
	v, err := NewDecoder(buf).Decode()
	if err != nil {
		return Value{}, err
	}
	if buf.Len() > 0 {
		return Value{}, fmt.Errorf("unmarshal did not consume all data, had extra %d bytes: % x", buf.Len(), buf.Bytes())
	}
	return v, nil
}
