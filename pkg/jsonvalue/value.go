package jsonvalue

import (
	"bytes"
	stdjson "encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/goccy/go-json"
)

// Kind identifies which JSON type a Value holds.
type Kind int

const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is an immutable JSON value. The zero Value is JSON null.
// Numbers keep their literal text so large integers survive a round trip.
type Value struct {
	kind Kind
	b    bool
	num  string
	str  string
	arr  []Value
	obj  map[string]Value
}

// NullValue returns JSON null.
func NullValue() Value { return Value{} }

// BoolValue wraps a boolean.
func BoolValue(b bool) Value { return Value{kind: Bool, b: b} }

// NumberValue wraps a JSON number literal. It panics if lit is not a valid number,
// use ParseNumber when the literal comes from untrusted input.
func NumberValue(lit string) Value {
	v, err := ParseNumber(lit)
	if err != nil {
		panic(err)
	}
	return v
}

// ParseNumber validates lit as a JSON number literal. Literals outside the
// float64 range are accepted and kept verbatim.
func ParseNumber(lit string) (Value, error) {
	if !stdjson.Valid([]byte(lit)) {
		return Value{}, fmt.Errorf("invalid number literal %q", lit)
	}
	if _, err := strconv.ParseFloat(lit, 64); err != nil {
		// Out of float64 range is still a valid JSON number.
		if ne, ok := err.(*strconv.NumError); !ok || ne.Err != strconv.ErrRange {
			return Value{}, fmt.Errorf("invalid number literal %q", lit)
		}
	}
	return Value{kind: Number, num: lit}, nil
}

// IntValue wraps an integer.
func IntValue(i int64) Value { return Value{kind: Number, num: strconv.FormatInt(i, 10)} }

// FloatValue wraps a float. NaN and infinities are not representable in JSON and become null.
func FloatValue(f float64) Value {
	lit := strconv.FormatFloat(f, 'g', -1, 64)
	if _, err := ParseNumber(lit); err != nil {
		return NullValue()
	}
	return Value{kind: Number, num: lit}
}

// StringValue wraps a string.
func StringValue(s string) Value { return Value{kind: String, str: s} }

// ArrayValue builds an array from the given elements.
func ArrayValue(items ...Value) Value {
	cp := make([]Value, len(items))
	copy(cp, items)
	return Value{kind: Array, arr: cp}
}

// ObjectValue builds an object from the given members.
func ObjectValue(members map[string]Value) Value {
	cp := make(map[string]Value, len(members))
	for k, v := range members {
		cp[k] = v
	}
	return Value{kind: Object, obj: cp}
}

func (v Value) Kind() Kind      { return v.kind }
func (v Value) IsNull() bool    { return v.kind == Null }
func (v Value) Bool() bool      { return v.kind == Bool && v.b }
func (v Value) Str() string     { return v.str }
func (v Value) Literal() string { return v.num }

// Float64 returns the numeric value as a float64.
func (v Value) Float64() (float64, error) {
	if v.kind != Number {
		return 0, fmt.Errorf("value is %s, not number", v.kind)
	}
	return strconv.ParseFloat(v.num, 64)
}

// Int64 returns the numeric value as an int64 when the literal is integral.
func (v Value) Int64() (int64, error) {
	if v.kind != Number {
		return 0, fmt.Errorf("value is %s, not number", v.kind)
	}
	return strconv.ParseInt(v.num, 10, 64)
}

// Len returns the element count of arrays and objects, the byte length of strings and 0 otherwise.
func (v Value) Len() int {
	switch v.kind {
	case Array:
		return len(v.arr)
	case Object:
		return len(v.obj)
	case String:
		return len(v.str)
	default:
		return 0
	}
}

// Index returns the i-th array element.
func (v Value) Index(i int) (Value, bool) {
	if v.kind != Array || i < 0 || i >= len(v.arr) {
		return Value{}, false
	}
	return v.arr[i], true
}

// Get returns the object member stored under key.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != Object {
		return Value{}, false
	}
	m, ok := v.obj[key]
	return m, ok
}

// Items returns a copy of the array elements.
func (v Value) Items() []Value {
	if v.kind != Array {
		return nil
	}
	out := make([]Value, len(v.arr))
	copy(out, v.arr)
	return out
}

// Keys returns the object member names in sorted order.
func (v Value) Keys() []string {
	if v.kind != Object {
		return nil
	}
	keys := make([]string, 0, len(v.obj))
	for k := range v.obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Equal reports whether v and o are deep-equal JSON values. Numbers compare by
// value, so 1 and 1.0 are equal.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case Null:
		return true
	case Bool:
		return v.b == o.b
	case String:
		return v.str == o.str
	case Number:
		if v.num == o.num {
			return true
		}
		a, errA := strconv.ParseFloat(v.num, 64)
		b, errB := strconv.ParseFloat(o.num, 64)
		return errA == nil && errB == nil && a == b
	case Array:
		if len(v.arr) != len(o.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(o.arr[i]) {
				return false
			}
		}
		return true
	case Object:
		if len(v.obj) != len(o.obj) {
			return false
		}
		for k, a := range v.obj {
			b, ok := o.obj[k]
			if !ok || !a.Equal(b) {
				return false
			}
		}
		return true
	}
	return false
}

// Interface converts v into plain Go values: nil, bool, json.Number, string,
// []any and map[string]any.
func (v Value) Interface() any {
	switch v.kind {
	case Bool:
		return v.b
	case Number:
		return json.Number(v.num)
	case String:
		return v.str
	case Array:
		out := make([]any, len(v.arr))
		for i, item := range v.arr {
			out[i] = item.Interface()
		}
		return out
	case Object:
		out := make(map[string]any, len(v.obj))
		for k, item := range v.obj {
			out[k] = item.Interface()
		}
		return out
	default:
		return nil
	}
}

// MarshalJSON encodes v with object keys in sorted order.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) encode(buf *bytes.Buffer) error {
	switch v.kind {
	case Null:
		buf.WriteString("null")
	case Bool:
		buf.WriteString(strconv.FormatBool(v.b))
	case Number:
		buf.WriteString(v.num)
	case String:
		raw, err := json.Marshal(v.str)
		if err != nil {
			return err
		}
		buf.Write(raw)
	case Array:
		buf.WriteByte('[')
		for i, item := range v.arr {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case Object:
		buf.WriteByte('{')
		for i, k := range v.Keys() {
			if i > 0 {
				buf.WriteByte(',')
			}
			raw, err := json.Marshal(k)
			if err != nil {
				return err
			}
			buf.Write(raw)
			buf.WriteByte(':')
			if err := v.obj[k].encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("unknown json kind %d", int(v.kind))
	}
	return nil
}

// UnmarshalJSON replaces v with the decoded value.
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// String returns the compact JSON encoding of v.
func (v Value) String() string {
	raw, err := v.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("<invalid json: %v>", err)
	}
	return string(raw)
}
