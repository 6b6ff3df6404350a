// SPDX-FileCopyrightText: (C) 2025 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package sbon

// maxVarintLen is the most bytes a 64-bit value can occupy at seven bits per
// byte.
const maxVarintLen = 10

// AppendUvarint appends the variable-length encoding of v to dst and returns
// the extended buffer. Seven value bits are packed per byte, most
// significant group first, and every byte except the last has the high bit
// set. Zero encodes as the single byte 0x00.
func AppendUvarint(dst []byte, v uint64) []byte {
	// Split into 7-bit groups, least significant first
	var groups [maxVarintLen]byte
	n := 0
	for {
		groups[n] = byte(v & 0x7f)
		n++
		v >>= 7
		if v == 0 {
			break
		}
	}

	// Emit most significant group first, flagging all but the last byte
	for i := n - 1; i > 0; i-- {
		dst = append(dst, groups[i]|0x80)
	}
	return append(dst, groups[0])
}

// AppendVarint appends the zigzag variable-length encoding of v to dst and
// returns the extended buffer.
func AppendVarint(dst []byte, v int64) []byte {
	return AppendUvarint(dst, zigzag(v))
}

// Zigzag maps signed integers onto unsigned so that magnitude, not sign,
// determines encoded width: 0, -1, 1, -2, 2, ... map to 0, 1, 2, 3, 4, ...
func zigzag(v int64) uint64 { return uint64((v << 1) ^ (v >> 63)) }

func unzigzag(u uint64) int64 { return int64(u>>1) ^ -int64(u&1) }
