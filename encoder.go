// SPDX-FileCopyrightText: (C) 2025 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package sbon

import (
	"encoding/binary"
	"io"
	"maps"
	"slices"
)

// Encoder writes SBON values to a stream.
//
// Calls must not be made concurrently. If a write fails partway through a
// composite value, the bytes already written are not recalled and the stream
// contents are unspecified.
type Encoder struct {
	w io.Writer
}

// NewEncoder returns a new Encoder. The [io.Writer] is not automatically
// flushed.
func NewEncoder(w io.Writer) *Encoder { return &Encoder{w: w} }

// Encode a value to the underlying [io.Writer] as a tagged value. v may be a
// [Value] or any native type accepted by [FromGo].
func (e *Encoder) Encode(v any) error {
	val, err := FromGo(v)
	if err != nil {
		return err
	}
	_, err = e.writeValue(val, 0)
	return err
}

// WriteValue encodes a tagged value: one tag byte identifying the kind, then
// the payload in the kind's wire form. Like all Write methods, the returned
// count covers only the final write issued for the value, not a running
// total.
func (e *Encoder) WriteValue(v Value) (int, error) {
	return e.writeValue(v, 0)
}

// WriteUvarint encodes a variable-length unsigned integer. The encoding is
// built in full and issued to the writer as a single write; the returned
// count is its length.
func (e *Encoder) WriteUvarint(v uint64) (int, error) {
	return e.w.Write(AppendUvarint(make([]byte, 0, maxVarintLen), v))
}

// WriteVarint encodes a zigzag-mapped signed integer as a single write.
func (e *Encoder) WriteVarint(v int64) (int, error) {
	return e.w.Write(AppendVarint(make([]byte, 0, maxVarintLen), v))
}

// WriteBytes encodes a length-prefixed byte string. The returned count
// covers only the final write: the payload, or the length prefix when the
// payload is empty.
func (e *Encoder) WriteBytes(b []byte) (int, error) {
	n, err := e.WriteUvarint(uint64(len(b)))
	if err != nil {
		return 0, err
	}
	if len(b) == 0 {
		return n, nil
	}
	return e.w.Write(b)
}

// WriteString encodes a length-prefixed string. The bytes are written
// verbatim, with no UTF-8 validation.
func (e *Encoder) WriteString(s string) (int, error) {
	n, err := e.WriteUvarint(uint64(len(s)))
	if err != nil {
		return 0, err
	}
	if len(s) == 0 {
		return n, nil
	}
	return io.WriteString(e.w, s)
}

// WriteList encodes a count prefix followed by each element as a tagged
// value. The returned count covers only the final write: the last element's
// final write, or the count prefix for an empty list.
func (e *Encoder) WriteList(list []Value) (int, error) { return e.writeList(list, 1) }

// WriteMap encodes a count prefix followed by each key-value pair, the key
// as a length-prefixed string and the value as a tagged value. Keys are
// written in bytewise sorted order so that equal maps encode to equal bytes;
// decoding accepts any key order. The returned count covers only the final
// write.
func (e *Encoder) WriteMap(m map[string]Value) (int, error) { return e.writeMap(m, 1) }

func (e *Encoder) writeValue(v Value, depth int) (int, error) {
	if depth >= MaxNestingDepth {
		return 0, ErrDepthExceeded
	}

	switch v.kind {
	case KindNil:
		return e.w.Write([]byte{nilTag})

	case KindDouble:
		if _, err := e.w.Write([]byte{doubleTag}); err != nil {
			return 0, err
		}
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], v.num)
		return e.w.Write(b[:])

	case KindBool:
		if _, err := e.w.Write([]byte{boolTag}); err != nil {
			return 0, err
		}
		if v.num != 0 {
			return e.w.Write([]byte{0x01})
		}
		return e.w.Write([]byte{0x00})

	case KindInt:
		if _, err := e.w.Write([]byte{intTag}); err != nil {
			return 0, err
		}
		return e.WriteVarint(int64(v.num))

	case KindString:
		if _, err := e.w.Write([]byte{stringTag}); err != nil {
			return 0, err
		}
		return e.WriteString(v.str)

	case KindList:
		if _, err := e.w.Write([]byte{listTag}); err != nil {
			return 0, err
		}
		return e.writeList(v.list, depth+1)

	case KindMap:
		if _, err := e.w.Write([]byte{mapTag}); err != nil {
			return 0, err
		}
		return e.writeMap(v.dict, depth+1)
	}

	return 0, ErrUnsupportedType{typeName: "invalid sbon.Value"}
}

func (e *Encoder) writeList(list []Value, depth int) (int, error) {
	n, err := e.WriteUvarint(uint64(len(list)))
	if err != nil {
		return 0, err
	}
	for _, v := range list {
		if n, err = e.writeValue(v, depth); err != nil {
			return 0, err
		}
	}
	return n, nil
}

func (e *Encoder) writeMap(m map[string]Value, depth int) (int, error) {
	n, err := e.WriteUvarint(uint64(len(m)))
	if err != nil {
		return 0, err
	}
	for _, key := range slices.Sorted(maps.Keys(m)) {
		if _, err := e.WriteString(key); err != nil {
			return 0, err
		}
		if n, err = e.writeValue(m[key], depth); err != nil {
			return 0, err
		}
	}
	return n, nil
}
