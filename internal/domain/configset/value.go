// Package configset provides typed, validated configuration settings with
// defaults, constraints, and precedence-based merging. A workspace carries a
// Settings layer that is merged over schema defaults and global settings to
// produce the effective configuration for a pipeline run.
package configset

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies the type of a configuration value.
type Kind string

const (
	KindString     Kind = "string"
	KindInt        Kind = "int"
	KindFloat      Kind = "float"
	KindBool       Kind = "bool"
	KindStringList Kind = "string_list"
)

// IsValid returns true if the kind is one of the defined constants.
func (k Kind) IsValid() bool {
	switch k {
	case KindString, KindInt, KindFloat, KindBool, KindStringList:
		return true
	default:
		return false
	}
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	return string(k)
}

// Value is a typed configuration setting. The zero value is invalid; construct
// values with the typed constructors or Coerce.
type Value struct {
	kind Kind
	raw  any
}

// String creates a string value.
func String(s string) Value { return Value{kind: KindString, raw: s} }

// Int creates an integer value.
func Int(i int64) Value { return Value{kind: KindInt, raw: i} }

// Float creates a float value.
func Float(f float64) Value { return Value{kind: KindFloat, raw: f} }

// Bool creates a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, raw: b} }

// StringList creates a string-list value. The slice is copied.
func StringList(items ...string) Value {
	list := make([]string, len(items))
	copy(list, items)
	return Value{kind: KindStringList, raw: list}
}

// Kind returns the value's kind.
func (v Value) Kind() Kind { return v.kind }

// IsZero reports whether the value is the uninitialized zero Value.
func (v Value) IsZero() bool { return v.kind == "" }

// AsString returns the string payload. Returns "" for non-string kinds.
func (v Value) AsString() string {
	s, _ := v.raw.(string)
	return s
}

// AsInt returns the integer payload. Returns 0 for non-int kinds.
func (v Value) AsInt() int64 {
	i, _ := v.raw.(int64)
	return i
}

// AsFloat returns the numeric payload for int and float kinds. Returns 0
// otherwise.
func (v Value) AsFloat() float64 {
	switch raw := v.raw.(type) {
	case float64:
		return raw
	case int64:
		return float64(raw)
	default:
		return 0
	}
}

// AsBool returns the boolean payload. Returns false for non-bool kinds.
func (v Value) AsBool() bool {
	b, _ := v.raw.(bool)
	return b
}

// AsStringList returns a copy of the string-list payload. Returns nil for
// non-list kinds.
func (v Value) AsStringList() []string {
	list, ok := v.raw.([]string)
	if !ok {
		return nil
	}
	out := make([]string, len(list))
	copy(out, list)
	return out
}

// Interface returns the untyped payload for display and encoding.
func (v Value) Interface() any { return v.raw }

// String implements fmt.Stringer with a stable human-readable form.
func (v Value) String() string {
	switch v.kind {
	case KindStringList:
		return strings.Join(v.raw.([]string), ",")
	case KindString:
		return v.raw.(string)
	default:
		return fmt.Sprint(v.raw)
	}
}

// Coerce converts untyped input into a Value of the requested kind. String
// forms are accepted for every kind ("42", "0.7", "true", "a,b,c") so that
// CLI flags and env-style input can populate any setting. Numeric JSON input
// (float64) is accepted for int settings when it has no fractional part.
func Coerce(kind Kind, input any) (Value, error) {
	if !kind.IsValid() {
		return Value{}, fmt.Errorf("unknown kind %q", kind)
	}

	switch kind {
	case KindString:
		return coerceString(input)
	case KindInt:
		return coerceInt(input)
	case KindFloat:
		return coerceFloat(input)
	case KindBool:
		return coerceBool(input)
	case KindStringList:
		return coerceStringList(input)
	}
	return Value{}, fmt.Errorf("unknown kind %q", kind)
}

func coerceString(input any) (Value, error) {
	s, ok := input.(string)
	if !ok {
		return Value{}, fmt.Errorf("expected string, got %T", input)
	}
	return String(s), nil
}

func coerceInt(input any) (Value, error) {
	switch raw := input.(type) {
	case int:
		return Int(int64(raw)), nil
	case int64:
		return Int(raw), nil
	case float64:
		if raw != float64(int64(raw)) {
			return Value{}, fmt.Errorf("expected integer, got %v", raw)
		}
		return Int(int64(raw)), nil
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("cannot parse %q as integer", raw)
		}
		return Int(i), nil
	default:
		return Value{}, fmt.Errorf("expected integer, got %T", input)
	}
}

func coerceFloat(input any) (Value, error) {
	switch raw := input.(type) {
	case int:
		return Float(float64(raw)), nil
	case int64:
		return Float(float64(raw)), nil
	case float64:
		return Float(raw), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return Value{}, fmt.Errorf("cannot parse %q as float", raw)
		}
		return Float(f), nil
	default:
		return Value{}, fmt.Errorf("expected float, got %T", input)
	}
}

func coerceBool(input any) (Value, error) {
	switch raw := input.(type) {
	case bool:
		return Bool(raw), nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return Value{}, fmt.Errorf("cannot parse %q as bool", raw)
		}
		return Bool(b), nil
	default:
		return Value{}, fmt.Errorf("expected bool, got %T", input)
	}
}

func coerceStringList(input any) (Value, error) {
	switch raw := input.(type) {
	case []string:
		return StringList(raw...), nil
	case []any:
		items := make([]string, 0, len(raw))
		for _, item := range raw {
			s, ok := item.(string)
			if !ok {
				return Value{}, fmt.Errorf("expected string list element, got %T", item)
			}
			items = append(items, s)
		}
		return StringList(items...), nil
	case string:
		if strings.TrimSpace(raw) == "" {
			return StringList(), nil
		}
		parts := strings.Split(raw, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return StringList(parts...), nil
	default:
		return Value{}, fmt.Errorf("expected string list, got %T", input)
	}
}

// valueJSON is the wire form for persisted values.
type valueJSON struct {
	Kind  Kind `json:"kind"`
	Value any  `json:"value"`
}

// MarshalJSON encodes the value with its kind tag so that typed settings
// round-trip through JSON storage columns.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.IsZero() {
		return nil, fmt.Errorf("cannot marshal zero Value")
	}
	return json.Marshal(valueJSON{Kind: v.kind, Value: v.raw})
}

// UnmarshalJSON decodes a kind-tagged value, coercing the payload back to
// its declared kind (JSON numbers arrive as float64).
func (v *Value) UnmarshalJSON(data []byte) error {
	var wire valueJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	decoded, err := Coerce(wire.Kind, wire.Value)
	if err != nil {
		return fmt.Errorf("decoding %s value: %w", wire.Kind, err)
	}
	*v = decoded
	return nil
}

// Equal reports whether two values have the same kind and payload.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	if v.kind == KindStringList {
		a, b := v.raw.([]string), other.raw.([]string)
		if len(a) != len(b) {
			return false
		}
		for i := range a {
			if a[i] != b[i] {
				return false
			}
		}
		return true
	}
	return v.raw == other.raw
}
