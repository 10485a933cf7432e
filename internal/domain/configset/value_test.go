package configset

import (
	"encoding/json"
	"testing"
)

func TestCoerce(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		kind    Kind
		input   any
		want    Value
		wantErr bool
	}{
		{name: "string passthrough", kind: KindString, input: "hello", want: String("hello")},
		{name: "string rejects int", kind: KindString, input: 42, wantErr: true},
		{name: "int from int", kind: KindInt, input: 42, want: Int(42)},
		{name: "int from string", kind: KindInt, input: " 42 ", want: Int(42)},
		{name: "int from whole float", kind: KindInt, input: float64(7), want: Int(7)},
		{name: "int rejects fractional float", kind: KindInt, input: 7.5, wantErr: true},
		{name: "int rejects garbage string", kind: KindInt, input: "forty-two", wantErr: true},
		{name: "float from string", kind: KindFloat, input: "0.7", want: Float(0.7)},
		{name: "float from int", kind: KindFloat, input: 2, want: Float(2)},
		{name: "bool from string", kind: KindBool, input: "true", want: Bool(true)},
		{name: "bool rejects yes", kind: KindBool, input: "yes", wantErr: true},
		{name: "list from comma string", kind: KindStringList, input: "a, b ,c", want: StringList("a", "b", "c")},
		{name: "list from empty string", kind: KindStringList, input: "", want: StringList()},
		{name: "list rejects mixed elements", kind: KindStringList, input: []any{"a", 1}, wantErr: true},
		{name: "unknown kind", kind: Kind("duration"), input: "5s", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Coerce(tt.kind, tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Coerce(%v, %v) error = nil, want error", tt.kind, tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("Coerce(%v, %v) error = %v, want nil", tt.kind, tt.input, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("Coerce(%v, %v) = %v, want %v", tt.kind, tt.input, got, tt.want)
			}
		})
	}
}

func TestValueJSONRoundTrip(t *testing.T) {
	t.Parallel()

	// JSON decoding turns every number into float64; the round trip must
	// restore the declared kind.
	original := Int(2048)

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var restored Value
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if restored.Kind() != KindInt {
		t.Errorf("restored kind = %v, want %v", restored.Kind(), KindInt)
	}
	if restored.AsInt() != 2048 {
		t.Errorf("restored value = %d, want 2048", restored.AsInt())
	}
}

func TestValueString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value Value
		want  string
	}{
		{String("casual"), "casual"},
		{Int(42), "42"},
		{Bool(false), "false"},
		{StringList("a", "b"), "a,b"},
	}
	for _, tt := range tests {
		if got := tt.value.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestValueAsStringListIsolation(t *testing.T) {
	t.Parallel()

	v := StringList("a", "b")
	list := v.AsStringList()
	list[0] = "mutated"

	if got := v.AsStringList()[0]; got != "a" {
		t.Errorf("AsStringList() leaked mutation, got %q, want %q", got, "a")
	}
}
