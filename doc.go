// SPDX-FileCopyrightText: (C) 2025 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

/*
Package sbon implements an encoding/decoding API for SBON, a compact
self-describing binary value format for nested dynamic data.

A value is one of seven kinds: nil, double, bool, int, string, list, or map.
On the wire each value is a tag byte identifying its kind followed by a
kind-specific payload. Integers, lengths, and element counts use a
variable-length encoding of seven bits per byte, most significant group
first, with the high bit of every byte except the last set as a continuation
flag. Signed integers are first zigzag-mapped so small negative values stay
small. Doubles are 8 bytes of big-endian IEEE 754 binary64. Strings are a
length prefix followed by UTF-8 bytes. Lists and maps are a count prefix
followed by their elements, with map keys encoded as strings.

Not supported:

  - Integers wider than 64 bits (decoding one fails with [ErrVarintOverflow])
  - Lists or maps nested deeper than [MaxNestingDepth]
  - UTF-8 validation of strings
  - Struct tags or any reflection-driven struct encoding

# Encoding

Values are built with the constructor functions and encoded with [Marshal] or
an [Encoder]. Using an Encoder may be more efficient when writing many values
if a buffered writer is used.

	b, _ := sbon.Marshal(sbon.Nil())          // 0x01
	b, _ = sbon.Marshal(sbon.Double(10.5))    // 0x02 0x40 0x25 0x00 ...
	b, _ = sbon.Marshal(sbon.Bool(true))      // 0x03 0x01
	b, _ = sbon.Marshal(sbon.Int(-1))         // 0x04 0x01
	b, _ = sbon.Marshal(sbon.Str("name"))     // 0x05 0x04 0x6e 0x61 0x6d 0x65
	b, _ = sbon.Marshal(sbon.List(sbon.Str("a"))) // 0x06 0x01 0x05 0x01 0x61
	b, _ = sbon.Marshal(sbon.Map(map[string]sbon.Value{
		"key": sbon.Str("val"),
	}))

Native Go values are accepted anywhere a value is, classified by [FromGo]:

	b, _ = sbon.Marshal(nil)           // nil
	b, _ = sbon.Marshal(1916)          // int
	b, _ = sbon.Marshal(10.5)          // double
	b, _ = sbon.Marshal("name")        // string
	b, _ = sbon.Marshal([]any{1, "a"}) // list

The Encoder also exposes the wire primitives directly, for callers embedding
SBON fields in an outer format:

	enc := sbon.NewEncoder(&buf)
	_, _ = enc.WriteUvarint(1916) // 0x8e 0x7c
	_, _ = enc.WriteVarint(-1)    // 0x01
	_, _ = enc.WriteString("sbon")

# Decoding

Decoding with [Unmarshal] requires the input to be exactly one value;
[Decoder.Decode] reads one value and leaves the reader positioned directly
after it, so values can be embedded in outer framing or concatenated.

	v, _ := sbon.Unmarshal(b)
	switch v.Kind() {
	case sbon.KindInt:
		fmt.Println(v.Int())
	case sbon.KindList:
		fmt.Println(len(v.List()))
	}

	dec := sbon.NewDecoder(r)
	for {
		v, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		// ...
	}

[Value.Go] converts a decoded value to its native Go representation:

	Nil    -> nil
	Double -> float64
	Bool   -> bool
	Int    -> int64
	String -> string
	List   -> []any
	Map    -> map[string]any

# Integer range

The format itself places no ceiling on integer magnitude, but this
implementation uses 64-bit arithmetic: the unsigned primitives cover the full
uint64 range and tagged int values cover the full int64 range. Decoding an
encoding that needs more than 64 bits fails rather than truncating.
*/
package sbon
