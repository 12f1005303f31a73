package jsonvalue

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"encoding/json"
	"sort"
)

// ErrTrailingData is returned when a document holds more than one JSON value.
var ErrTrailingData = errors.New("unexpected data after top-level json value")

// Parse decodes exactly one JSON document into a Value.
func Parse(data []byte) (Value, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Value{}, io.ErrUnexpectedEOF
	}
	return Decode(bytes.NewReader(data))
}

// Decode reads exactly one JSON document from r. The grammar is checked
// strictly: truncated literals, leading zeros and raw control characters in
// strings are rejected, and number literals are kept as written.
func Decode(r io.Reader) (Value, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return Value{}, io.ErrUnexpectedEOF
		}
		return Value{}, err
	}

	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return Value{}, ErrTrailingData
	}

	return FromInterface(raw)
}

type numberLiteral interface {
	String() string
	Float64() (float64, error)
}

// FromInterface converts decoded Go values (the shapes produced by a JSON
// decoder, plus common Go scalars) into a Value.
func FromInterface(in any) (Value, error) {
	switch t := in.(type) {
	case nil:
		return NullValue(), nil
	case Value:
		return t, nil
	case bool:
		return BoolValue(t), nil
	case string:
		return StringValue(t), nil
	case numberLiteral:
		return ParseNumber(t.String())
	case int:
		return IntValue(int64(t)), nil
	case int64:
		return IntValue(t), nil
	case float64:
		return FloatValue(t), nil
	case []any:
		items := make([]Value, len(t))
		for i, item := range t {
			v, err := FromInterface(item)
			if err != nil {
				return Value{}, fmt.Errorf("index %d: %w", i, err)
			}
			items[i] = v
		}
		return Value{kind: Array, arr: items}, nil
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		members := make(map[string]Value, len(t))
		for _, k := range keys {
			v, err := FromInterface(t[k])
			if err != nil {
				return Value{}, fmt.Errorf("member %q: %w", k, err)
			}
			members[k] = v
		}
		return Value{kind: Object, obj: members}, nil
	default:
		return Value{}, fmt.Errorf("unsupported json type %T", in)
	}
}

// MustParse is Parse for literals known to be valid; it panics on error.
func MustParse(s string) Value {
	v, err := Parse([]byte(s))
	if err != nil {
		panic(fmt.Sprintf("jsonvalue: parse %q: %v", s, err))
	}
	return v
}
