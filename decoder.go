// SPDX-FileCopyrightText: (C) 2025 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package sbon

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// Untrusted length handling: payload lengths and element counts come from
// the wire, so allocation up front is capped and anything larger grows as
// bytes actually arrive. A corrupt length prefix then fails at end of input
// instead of exhausting memory.
const (
	maxPreallocBytes = 64 << 10
	maxPreallocItems = 256
)

// Decoder iteratively consumes a reader, decoding SBON values.
//
// The Decoder reads exactly the bytes of each value and never looks ahead,
// so the reader may carry unrelated framing between values. Calls must not
// be made concurrently. After a decode error other than a clean [io.EOF],
// the reader is positioned mid-value and should not be reused.
type Decoder struct {
	r io.Reader
}

// NewDecoder returns a new Decoder. The [io.Reader] is not copied.
func NewDecoder(r io.Reader) *Decoder { return &Decoder{r: r} }

// Decode a single tagged value from the internal [io.Reader]. If the reader
// is exhausted before the tag byte, the error is [io.EOF]; exhaustion at any
// later point is [io.ErrUnexpectedEOF].
func (d *Decoder) Decode() (Value, error) {
	return d.decodeValue(0)
}

func (d *Decoder) decodeValue(depth int) (Value, error) {
	if depth >= MaxNestingDepth {
		return Value{}, ErrDepthExceeded
	}

	// io.EOF on the tag byte means a clean end of input
	tag, err := d.readByte()
	if err != nil {
		return Value{}, err
	}

	switch tag {
	case nilTag:
		return Nil(), nil

	case doubleTag:
		var b [8]byte
		if _, err := io.ReadFull(d.r, b[:]); err != nil {
			return Value{}, eofIsUnexpected(err)
		}
		return Double(math.Float64frombits(binary.BigEndian.Uint64(b[:]))), nil

	case boolTag:
		b, err := d.readByte()
		if err != nil {
			return Value{}, eofIsUnexpected(err)
		}
		// Any payload byte other than 0x01 decodes as false
		return Bool(b == 0x01), nil

	case intTag:
		i, err := d.ReadVarint()
		if err != nil {
			return Value{}, eofIsUnexpected(err)
		}
		return Int(i), nil

	case stringTag:
		s, err := d.ReadString()
		if err != nil {
			return Value{}, eofIsUnexpected(err)
		}
		return Str(s), nil

	case listTag:
		list, err := d.readList(depth + 1)
		if err != nil {
			return Value{}, eofIsUnexpected(err)
		}
		return Value{kind: KindList, list: list}, nil

	case mapTag:
		m, err := d.readMap(depth + 1)
		if err != nil {
			return Value{}, eofIsUnexpected(err)
		}
		return Value{kind: KindMap, dict: m}, nil
	}

	return Value{}, ErrUnknownTag{Tag: tag}
}

// ReadUvarint decodes a variable-length unsigned integer: seven value bits
// per byte, most significant group first, terminated by the first byte with
// a clear high bit. An encoding of more than 64 bits of magnitude fails with
// [ErrVarintOverflow]. Exhaustion before the first byte is [io.EOF];
// mid-encoding it is [io.ErrUnexpectedEOF].
func (d *Decoder) ReadUvarint() (uint64, error) {
	var v uint64
	for i := 0; ; i++ {
		b, err := d.readByte()
		if err != nil {
			if i > 0 {
				return 0, eofIsUnexpected(err)
			}
			return 0, err
		}
		if v > math.MaxUint64>>7 {
			return 0, ErrVarintOverflow
		}
		v = v<<7 | uint64(b&0x7f)
		if b&0x80 == 0 {
			return v, nil
		}
	}
}

// ReadVarint decodes a zigzag-mapped signed integer.
func (d *Decoder) ReadVarint() (int64, error) {
	u, err := d.ReadUvarint()
	if err != nil {
		return 0, err
	}
	return unzigzag(u), nil
}

// ReadBytes decodes a length-prefixed byte string. The result is never nil:
// a zero length prefix decodes as an empty slice after consuming exactly the
// one prefix byte.
func (d *Decoder) ReadBytes() ([]byte, error) {
	length, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	return d.readN(length)
}

// ReadString decodes a length-prefixed string. The bytes are not validated
// as UTF-8.
func (d *Decoder) ReadString() (string, error) {
	b, err := d.ReadBytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ReadList decodes a count prefix followed by that many tagged values. The
// result is never nil.
func (d *Decoder) ReadList() ([]Value, error) { return d.readList(1) }

// ReadMap decodes a count prefix followed by that many key-value pairs,
// each a length-prefixed string key and a tagged value. A repeated key keeps
// the pair decoded last. The result is never nil.
func (d *Decoder) ReadMap() (map[string]Value, error) { return d.readMap(1) }

func (d *Decoder) readList(depth int) ([]Value, error) {
	count, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	if count > math.MaxInt {
		return nil, fmt.Errorf("list count overflows int: %d", count)
	}

	n := int(count)
	list := make([]Value, 0, min(n, maxPreallocItems))
	for i := range n {
		v, err := d.decodeValue(depth)
		if err != nil {
			return nil, fmt.Errorf("error decoding list item %d: %w", i, eofIsUnexpected(err))
		}
		list = append(list, v)
	}
	return list, nil
}

func (d *Decoder) readMap(depth int) (map[string]Value, error) {
	count, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	if count > math.MaxInt {
		return nil, fmt.Errorf("map count overflows int: %d", count)
	}

	n := int(count)
	m := make(map[string]Value, min(n, maxPreallocItems))
	for i := range n {
		key, err := d.ReadString()
		if err != nil {
			return nil, fmt.Errorf("error decoding map key %d: %w", i, eofIsUnexpected(err))
		}
		v, err := d.decodeValue(depth)
		if err != nil {
			return nil, fmt.Errorf("error decoding map value for key %q: %w", key, eofIsUnexpected(err))
		}
		m[key] = v
	}
	return m, nil
}

func (d *Decoder) readByte() (byte, error) {
	var b [1]byte
	if _, err := io.ReadFull(d.r, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

func (d *Decoder) readN(length uint64) ([]byte, error) {
	if length > math.MaxInt {
		return nil, fmt.Errorf("length prefix overflows int: %d", length)
	}
	if length <= maxPreallocBytes {
		b := make([]byte, length)
		if _, err := io.ReadFull(d.r, b); err != nil {
			return nil, eofIsUnexpected(err)
		}
		return b, nil
	}

	var buf bytes.Buffer
	if _, err := io.CopyN(&buf, d.r, int64(length)); err != nil {
		return nil, eofIsUnexpected(err)
	}
	return buf.Bytes(), nil
}

// Call sites that have already consumed part of an item treat a clean EOF
// from the reader as mid-value truncation.
func eofIsUnexpected(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
