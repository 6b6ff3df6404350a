// SPDX-FileCopyrightText: (C) 2025 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

// Package sbontest contains test helpers for exercising SBON encoding and
// decoding with generated values.
package sbontest

import (
	"bytes"
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/fido-device-onboard/go-sbon"
)

// Runes used for generated string contents. Multibyte runes keep UTF-8
// handling honest.
const stringAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789_ßσ内"

// RandomValue generates a pseudorandom value of any kind. Lists and maps
// nest at most maxDepth levels. The distribution intentionally favors
// multi-byte integer encodings and includes NaN and infinite doubles.
func RandomValue(r *rand.Rand, maxDepth int) sbon.Value {
	kinds := 7
	if maxDepth <= 0 {
		kinds = 5 // scalars only
	}

	switch r.Intn(kinds) {
	case 0:
		return sbon.Nil()

	case 1:
		switch r.Intn(8) {
		case 0:
			return sbon.Double(math.NaN())
		case 1:
			return sbon.Double(math.Inf(1 - 2*r.Intn(2)))
		default:
			return sbon.Double(math.Float64frombits(r.Uint64()))
		}

	case 2:
		return sbon.Bool(r.Intn(2) == 1)

	case 3:
		return sbon.Int(randomInt(r))

	case 4:
		return sbon.Str(randomString(r))

	case 5:
		list := make([]sbon.Value, r.Intn(5))
		for i := range list {
			list[i] = RandomValue(r, maxDepth-1)
		}
		return sbon.List(list...)

	default:
		m := make(map[string]sbon.Value)
		for range r.Intn(5) {
			m[randomString(r)] = RandomValue(r, maxDepth-1)
		}
		return sbon.Map(m)
	}
}

// Shifting by a random amount spreads values across every encoded width,
// rather than clustering near 64 bits.
func randomInt(r *rand.Rand) int64 {
	v := int64(r.Uint64() >> r.Intn(64))
	if r.Intn(2) == 1 {
		v = -v
	}
	return v
}

func randomString(r *rand.Rand) string {
	var b strings.Builder
	runes := []rune(stringAlphabet)
	for range r.Intn(16) {
		b.WriteRune(runes[r.Intn(len(runes))])
	}
	return b.String()
}

// RoundTrip asserts that v marshals, unmarshals back to an equal value, and
// re-marshals to identical bytes.
func RoundTrip(t *testing.T, v sbon.Value) {
	t.Helper()

	b, err := sbon.Marshal(v)
	if err != nil {
		t.Errorf("error marshaling %v: %v", v, err)
		return
	}
	got, err := sbon.Unmarshal(b)
	if err != nil {
		t.Errorf("error unmarshaling % x (from %v): %v", b, v, err)
		return
	}
	if !got.Equal(v) {
		t.Errorf("round trip of %v; got %v", v, got)
		return
	}

	// Map keys encode in sorted order, so equal values must produce
	// identical bytes
	again, err := sbon.Marshal(got)
	if err != nil {
		t.Errorf("error re-marshaling %v: %v", got, err)
		return
	}
	if !bytes.Equal(b, again) {
		t.Errorf("re-encoding %v; expected % x, got % x", v, b, again)
	}
}
