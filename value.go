// SPDX-FileCopyrightText: (C) 2025 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package sbon

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Kind identifies the dynamic type of a [Value].
type Kind int

// Kinds of Value. The zero Kind is invalid: a zero Value stands for the
// absence of a value and cannot be encoded.
const (
	KindInvalid Kind = iota
	KindNil
	KindDouble
	KindBool
	KindInt
	KindString
	KindList
	KindMap
)

var kindNames = [...]string{
	KindInvalid: "invalid",
	KindNil:     "nil",
	KindDouble:  "double",
	KindBool:    "bool",
	KindInt:     "int",
	KindString:  "string",
	KindList:    "list",
	KindMap:     "map",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "kind" + strconv.Itoa(int(k))
	}
	return kindNames[k]
}

// Value is one dynamically typed SBON value: nil, a double, a bool, an int,
// a string, a list of values, or a map from strings to values. Values are
// built with the constructor functions ([Nil], [Double], [Bool], [Int],
// [Str], [List], [Map]) and inspected with [Value.Kind] and the accessor
// methods. The zero Value has no kind and cannot be encoded.
type Value struct {
	kind Kind
	num  uint64 // Double bits, Bool 0/1, or Int as two's complement
	str  string
	list []Value
	dict map[string]Value
}

// Nil returns the nil value.
func Nil() Value { return Value{kind: KindNil} }

// Double returns a double-precision float value.
func Double(f float64) Value { return Value{kind: KindDouble, num: math.Float64bits(f)} }

// Bool returns a boolean value.
func Bool(b bool) Value {
	var u uint64
	if b {
		u = 1
	}
	return Value{kind: KindBool, num: u}
}

// Int returns a signed integer value.
func Int(i int64) Value { return Value{kind: KindInt, num: uint64(i)} }

// Str returns a string value.
func Str(s string) Value { return Value{kind: KindString, str: s} }

// List returns a list value of the given elements. The backing array is
// shared, not copied, so the caller must not modify it while the value is in
// use.
func List(elems ...Value) Value {
	if elems == nil {
		elems = []Value{}
	}
	return Value{kind: KindList, list: elems}
}

// Map returns a map value. The map is shared, not copied, so the caller must
// not modify it while the value is in use.
func Map(m map[string]Value) Value {
	if m == nil {
		m = map[string]Value{}
	}
	return Value{kind: KindMap, dict: m}
}

// Kind reports the dynamic type of the value.
func (v Value) Kind() Kind { return v.kind }

// IsNil reports whether the value is the nil value.
func (v Value) IsNil() bool { return v.kind == KindNil }

func (v Value) mustBe(method string, k Kind) {
	if v.kind != k {
		panic("sbon: Value." + method + " called on " + v.kind.String() + " value")
	}
}

// Double returns the float contents. It panics if the value is not a double.
func (v Value) Double() float64 {
	v.mustBe("Double", KindDouble)
	return math.Float64frombits(v.num)
}

// Bool returns the bool contents. It panics if the value is not a bool.
func (v Value) Bool() bool {
	v.mustBe("Bool", KindBool)
	return v.num != 0
}

// Int returns the integer contents. It panics if the value is not an int.
func (v Value) Int() int64 {
	v.mustBe("Int", KindInt)
	return int64(v.num)
}

// Str returns the string contents. It panics if the value is not a string.
func (v Value) Str() string {
	v.mustBe("Str", KindString)
	return v.str
}

// List returns the backing slice of a list value. It panics if the value is
// not a list. The slice is shared, not copied.
func (v Value) List() []Value {
	v.mustBe("List", KindList)
	return v.list
}

// Map returns the backing map of a map value. It panics if the value is not
// a map. The map is shared, not copied.
func (v Value) Map() map[string]Value {
	v.mustBe("Map", KindMap)
	return v.dict
}

// Equal reports whether two values have the same kind and contents. Lists
// compare elementwise in order; map comparison ignores key order. Unlike
// the == operator on float64, two NaN doubles compare equal.
func (v Value) Equal(w Value) bool {
	if v.kind != w.kind {
		return false
	}
	switch v.kind {
	case KindDouble:
		a, b := math.Float64frombits(v.num), math.Float64frombits(w.num)
		return a == b || (math.IsNaN(a) && math.IsNaN(b))
	case KindBool, KindInt:
		return v.num == w.num
	case KindString:
		return v.str == w.str
	case KindList:
		if len(v.list) != len(w.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(w.list[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(v.dict) != len(w.dict) {
			return false
		}
		for key, vv := range v.dict {
			wv, ok := w.dict[key]
			if !ok || !vv.Equal(wv) {
				return false
			}
		}
		return true
	default:
		// KindInvalid and KindNil carry no contents
		return true
	}
}

// Go converts the value to its native Go representation: nil, float64, bool,
// int64, string, []any, or map[string]any, recursively. The zero Value also
// converts to nil.
func (v Value) Go() any {
	switch v.kind {
	case KindDouble:
		return math.Float64frombits(v.num)
	case KindBool:
		return v.num != 0
	case KindInt:
		return int64(v.num)
	case KindString:
		return v.str
	case KindList:
		a := make([]any, len(v.list))
		for i, e := range v.list {
			a[i] = e.Go()
		}
		return a
	case KindMap:
		m := make(map[string]any, len(v.dict))
		for key, e := range v.dict {
			m[key] = e.Go()
		}
		return m
	default:
		return nil
	}
}

// String formats the value for logs and error messages. The output resembles
// the diagnostic notation of the sdn package, with map keys in sorted order,
// but makes no round-trip guarantee.
func (v Value) String() string {
	var b strings.Builder
	v.format(&b)
	return b.String()
}

func (v Value) format(b *strings.Builder) {
	switch v.kind {
	case KindNil:
		b.WriteString("nil")
	case KindDouble:
		b.WriteString(strconv.FormatFloat(math.Float64frombits(v.num), 'g', -1, 64))
	case KindBool:
		b.WriteString(strconv.FormatBool(v.num != 0))
	case KindInt:
		b.WriteString(strconv.FormatInt(int64(v.num), 10))
	case KindString:
		b.WriteString(strconv.Quote(v.str))
	case KindList:
		b.WriteByte('[')
		for i, e := range v.list {
			if i > 0 {
				b.WriteString(", ")
			}
			e.format(b)
		}
		b.WriteByte(']')
	case KindMap:
		b.WriteByte('{')
		for i, key := range slices.Sorted(maps.Keys(v.dict)) {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(strconv.Quote(key))
			b.WriteString(": ")
			v.dict[key].format(b)
		}
		b.WriteByte('}')
	default:
		b.WriteString("<invalid>")
	}
}

// FromGo converts a native Go value to a [Value]. A Value passes through
// unchanged. Accepted native types, converted recursively for composites:
//
//	nil                      -> Nil
//	float64, float32         -> Double
//	bool                     -> Bool
//	int variants, uint variants -> Int
//	string, []byte           -> Str
//	[]Value, []any           -> List
//	map[string]Value, map[string]any -> Map
//
// The checks apply in that order, so for highly dynamic inputs the float
// case wins over the integer case; callers that need an exact kind should
// construct the Value directly. A uint or uint64 above [math.MaxInt64] does
// not fit the signed integer encoding and fails with [ErrUintOverflow]; any
// other type fails with [ErrUnsupportedType]. Conversion applies
// [MaxNestingDepth] while descending into []any and map[string]any, so a
// slice or map that contains itself fails with [ErrDepthExceeded].
func FromGo(x any) (Value, error) {
	return fromGo(x, 0)
}

func fromGo(x any, depth int) (Value, error) {
	if depth >= MaxNestingDepth {
		return Value{}, ErrDepthExceeded
	}

	switch x := x.(type) {
	case Value:
		return x, nil
	case nil:
		return Nil(), nil
	case float64:
		return Double(x), nil
	case float32:
		return Double(float64(x)), nil
	case bool:
		return Bool(x), nil
	case int:
		return Int(int64(x)), nil
	case int8:
		return Int(int64(x)), nil
	case int16:
		return Int(int64(x)), nil
	case int32:
		return Int(int64(x)), nil
	case int64:
		return Int(x), nil
	case uint:
		return fromUint(uint64(x))
	case uint8:
		return Int(int64(x)), nil
	case uint16:
		return Int(int64(x)), nil
	case uint32:
		return Int(int64(x)), nil
	case uint64:
		return fromUint(x)
	case string:
		return Str(x), nil
	case []byte:
		return Str(string(x)), nil
	case []Value:
		return Value{kind: KindList, list: x}, nil
	case []any:
		list := make([]Value, len(x))
		for i, e := range x {
			v, err := fromGo(e, depth+1)
			if err != nil {
				return Value{}, err
			}
			list[i] = v
		}
		return Value{kind: KindList, list: list}, nil
	case map[string]Value:
		return Value{kind: KindMap, dict: x}, nil
	case map[string]any:
		m := make(map[string]Value, len(x))
		for key, e := range x {
			v, err := fromGo(e, depth+1)
			if err != nil {
				return Value{}, err
			}
			m[key] = v
		}
		return Value{kind: KindMap, dict: m}, nil
	default:
		return Value{}, ErrUnsupportedType{typeName: fmt.Sprintf("%T", x)}
	}
}

func fromUint(u uint64) (Value, error) {
	if u > math.MaxInt64 {
		return Value{}, ErrUintOverflow{Value: u}
	}
	return Int(int64(u)), nil
}
