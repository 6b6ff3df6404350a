// SPDX-FileCopyrightText: (C) 2025 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

// Package sdn implements SBON Diagnostic Notation.
//
// SBON is a binary interchange format. To facilitate documentation and
// debugging, and in particular to facilitate communication between entities
// cooperating in debugging, this package defines a simple human-readable
// diagnostic notation. All actual interchange always happens in the binary
// format.
//
// The notation is JSON-like: null, true and false, decimal integers, quoted
// strings, [lists], and {"string": keyed} maps. A double is always written
// in a form that cannot be read back as an integer: a fraction point, an
// exponent, or one of the tokens +Inf, -Inf, and NaN.
//
//	10      // int
//	10.0    // double
//	-1e-3   // double
//
// Example:
//
//	s, _ := sdn.FromSBON(sbonBytes)
//
//	sbonBytes, _ := sdn.ToSBON(s)
package sdn

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/fido-device-onboard/go-sbon"
)

// Sentinel errors
var (
	ErrInvalidInput        = errors.New("sdn: unexpected input")
	ErrInvalidEncodingType = errors.New("sdn: invalid encoding type")
)

// FromSBON re-encodes SBON bytes as a diagnostic string.
func FromSBON(b []byte) (string, error) {
	v, err := sbon.Unmarshal(b)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	var buf bytes.Buffer
	if err := encodeValue(&buf, v); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// ToSBON marshals a diagnostic string into SBON. The input must hold a
// single value: anything but whitespace after it fails with
// [ErrInvalidInput], and nesting deeper than [sbon.MaxNestingDepth] fails
// with [sbon.ErrDepthExceeded].
func ToSBON(s string) ([]byte, error) {
	r := bufio.NewReader(strings.NewReader(s))
	v, err := decodeValue(r, 0)
	if err != nil {
		return nil, err
	}

	val, ok := v.(sbon.Value)
	if !ok {
		return nil, ErrInvalidInput
	}

	if err := discardSpaces(r); err != nil {
		return nil, err
	}
	if b, err := r.ReadByte(); err == nil {
		return nil, fmt.Errorf("%w: trailing %q after value", ErrInvalidInput, b)
	} else if !errors.Is(err, io.EOF) {
		return nil, err
	}

	return sbon.Marshal(val)
}

func encodeValue(b *bytes.Buffer, v sbon.Value) error {
	switch v.Kind() {
	case sbon.KindNil:
		_, _ = b.WriteString("null")

	case sbon.KindBool:
		_, _ = b.WriteString(strconv.FormatBool(v.Bool()))

	case sbon.KindInt:
		_, _ = b.WriteString(strconv.FormatInt(v.Int(), 10))

	case sbon.KindDouble:
		_, _ = b.WriteString(formatDouble(v.Double()))

	case sbon.KindString:
		d, err := json.Marshal(v.Str())
		if err != nil {
			return err
		}
		_, _ = b.Write(d)

	case sbon.KindList:
		_, _ = b.WriteString("[")
		for index, element := range v.List() {
			if index > 0 {
				_, _ = b.WriteString(", ")
			}
			if err := encodeValue(b, element); err != nil {
				return err
			}
		}
		_, _ = b.WriteString("]")

	case sbon.KindMap:
		m := v.Map()
		_, _ = b.WriteString("{")
		for index, key := range slices.Sorted(maps.Keys(m)) {
			if index > 0 {
				_, _ = b.WriteString(", ")
			}
			d, err := json.Marshal(key)
			if err != nil {
				return err
			}
			_, _ = b.Write(d)
			_, _ = b.WriteString(": ")
			if err := encodeValue(b, m[key]); err != nil {
				return err
			}
		}
		_, _ = b.WriteString("}")

	default:
		return ErrInvalidEncodingType
	}

	return nil
}

// Integers and doubles share a decimal surface form, so an integral double
// gains a trailing ".0" unless an exponent or non-finite token already
// marks it.
func formatDouble(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEIN") {
		s += ".0"
	}
	return s
}

func decodeValue(r *bufio.Reader, depth int) (any, error) {
	if err := discardSpaces(r); err != nil {
		return nil, err
	}

	b, err := r.ReadByte()
	if err != nil {
		return nil, err
	}

	if err := r.UnreadByte(); err != nil {
		return nil, err
	}

	switch b {
	case '[':
		return decodeList(r, depth)
	case '{':
		return decodeMap(r, depth)
	case '"':
		return decodeString(r)
	case 't':
		return sbon.Bool(true), decodeLiteral(r, "true")
	case 'f':
		return sbon.Bool(false), decodeLiteral(r, "false")
	case 'n':
		return sbon.Nil(), decodeLiteral(r, "null")
	case '-', '+', 'I', 'N':
		return decodeNumber(r)
	case '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return decodeNumber(r)
	case ',':
		return commaToken{}, skipToken(r)
	case ']':
		return endListToken{}, skipToken(r)
	case '}':
		return endMapToken{}, skipToken(r)
	}

	return nil, ErrInvalidInput
}

func decodeLiteral(r *bufio.Reader, t string) error {
	b := make([]byte, len(t))
	if _, err := io.ReadFull(r, b); err != nil {
		return err
	}
	if string(b) != t {
		return ErrInvalidInput
	}
	return nil
}

// A numeric token runs until a delimiter. It decodes as an int unless a
// fraction point, exponent, or non-finite marker makes it a double; the two
// kinds never share a surface form.
func decodeNumber(r *bufio.Reader) (any, error) {
	var buf bytes.Buffer
	for {
		b, err := r.ReadByte()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		if isDelimiter(b) {
			if err := r.UnreadByte(); err != nil {
				return nil, err
			}
			break
		}

		buf.WriteByte(b)
	}

	token := buf.String()
	if strings.ContainsAny(token, ".eEIN") {
		f, err := strconv.ParseFloat(token, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		return sbon.Double(f), nil
	}

	i, err := strconv.ParseInt(token, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return sbon.Int(i), nil
}

func decodeString(r *bufio.Reader) (any, error) {
	if _, err := r.ReadString('"'); err != nil {
		return nil, err
	}

	// Collect the full JSON-quoted form, tracking backslashes so an escaped
	// quote does not terminate the string
	quoted := bytes.NewBufferString(`"`)
	escaped := false
	for {
		b, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		quoted.WriteByte(b)

		if escaped {
			escaped = false
			continue
		}
		switch b {
		case '\\':
			escaped = true
		case '"':
			var s string
			if err := json.Unmarshal(quoted.Bytes(), &s); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
			}
			return sbon.Str(s), nil
		}
	}
}

// The parser recurses once per nesting level, so lists and maps apply the
// encoding depth limit before descending. A run of open brackets then fails
// with [sbon.ErrDepthExceeded] instead of exhausting the stack.
func decodeList(r *bufio.Reader, depth int) (any, error) {
	if depth >= sbon.MaxNestingDepth {
		return nil, sbon.ErrDepthExceeded
	}
	if _, err := r.ReadString('['); err != nil {
		return nil, err
	}

	elems := []sbon.Value{}
	for {
		v, err := decodeValue(r, depth+1)
		if err != nil {
			return nil, err
		}
		if isEndListToken(v) {
			return sbon.List(elems...), nil
		}

		switch _, isCommaToken := v.(commaToken); {
		case len(elems) == 0 && isCommaToken:
			return nil, ErrInvalidInput
		case len(elems) > 0 && !isCommaToken:
			return nil, ErrInvalidInput
		case len(elems) == 0 && !isCommaToken:
			// use current value
		case len(elems) > 0 && isCommaToken:
			// use next value
			if v, err = decodeValue(r, depth+1); err != nil {
				return nil, err
			}
		}

		val, ok := v.(sbon.Value)
		if !ok {
			return nil, ErrInvalidInput
		}
		elems = append(elems, val)
	}
}

func decodeMap(r *bufio.Reader, depth int) (any, error) { //nolint:gocyclo
	if depth >= sbon.MaxNestingDepth {
		return nil, sbon.ErrDepthExceeded
	}
	if _, err := r.ReadString('{'); err != nil {
		return nil, err
	}

	m := make(map[string]sbon.Value)
	first := true
	for {
		k, err := decodeValue(r, depth+1)
		if err != nil {
			return nil, err
		}
		if isEndMapToken(k) {
			return sbon.Map(m), nil
		}

		switch _, isCommaToken := k.(commaToken); {
		case first && isCommaToken:
			return nil, ErrInvalidInput
		case !first && !isCommaToken:
			return nil, ErrInvalidInput
		case first && !isCommaToken:
			// use current key
		case !first && isCommaToken:
			// use next key
			if k, err = decodeValue(r, depth+1); err != nil {
				return nil, err
			}
		}
		first = false

		// Map keys must be strings
		key, ok := k.(sbon.Value)
		if !ok || key.Kind() != sbon.KindString {
			return nil, ErrInvalidInput
		}

		if err := decodeDelim(r, ':'); err != nil {
			return nil, err
		}

		v, err := decodeValue(r, depth+1)
		if err != nil {
			return nil, err
		}
		val, ok := v.(sbon.Value)
		if !ok {
			return nil, ErrInvalidInput
		}

		// A repeated key keeps the last pair, as in the binary decoder
		m[key.Str()] = val
	}
}

func decodeDelim(r *bufio.Reader, d byte) error {
	if err := discardSpaces(r); err != nil {
		return err
	}

	b, err := r.ReadByte()
	if err != nil {
		return err
	}
	if d != b {
		return ErrInvalidInput
	}

	return nil
}

func skipToken(r *bufio.Reader) error {
	_, err := r.ReadByte()
	return err
}

func isDelimiter(b byte) bool {
	switch b {
	case ',', ']', '}', ':':
		return true
	}
	return unicode.IsSpace(rune(b))
}

type commaToken struct{}

type endListToken struct{}

func isEndListToken(v any) bool {
	_, ok := v.(endListToken)
	return ok
}

type endMapToken struct{}

func isEndMapToken(v any) bool {
	_, ok := v.(endMapToken)
	return ok
}

func discardSpaces(r *bufio.Reader) error {
	for {
		b, err := r.ReadByte()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if !unicode.IsSpace(rune(b)) {
			return r.UnreadByte()
		}
	}
}
