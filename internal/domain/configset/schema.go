package configset

import (
	"fmt"
	"slices"

	"github.com/writeit-dev/writeit/internal/domain"
)

// Field describes a single setting in a Schema: its key, kind, default, and
// optional constraints. Min and Max bound numeric kinds (inclusive); Enum
// restricts string kinds to a fixed set.
type Field struct {
	Key         string
	Kind        Kind
	Default     Value
	Description string
	Min         *float64
	Max         *float64
	Enum        []string
}

// validate checks a typed value against this field's kind and constraints.
func (f Field) validate(v Value) error {
	if v.Kind() != f.Kind {
		return fmt.Errorf("expected %s, got %s", f.Kind, v.Kind())
	}

	switch f.Kind {
	case KindInt, KindFloat:
		n := v.AsFloat()
		if f.Min != nil && n < *f.Min {
			return fmt.Errorf("must be >= %v, got %v", *f.Min, v.Interface())
		}
		if f.Max != nil && n > *f.Max {
			return fmt.Errorf("must be <= %v, got %v", *f.Max, v.Interface())
		}
	case KindString:
		if len(f.Enum) > 0 && !slices.Contains(f.Enum, v.AsString()) {
			return fmt.Errorf("must be one of %v, got %q", f.Enum, v.AsString())
		}
	}

	return nil
}

// Schema is an ordered set of setting definitions. Order is preserved for
// display; lookup is by key.
type Schema struct {
	fields []Field
	byKey  map[string]int
}

// NewSchema builds a schema from field definitions. Panics on duplicate
// keys, invalid kinds, or defaults that violate the field's own constraints;
// schemas are program constants and a bad one is a programming error.
func NewSchema(fields ...Field) *Schema {
	s := &Schema{
		fields: slices.Clone(fields),
		byKey:  make(map[string]int, len(fields)),
	}
	for i, f := range fields {
		if f.Key == "" {
			panic("configset: field with empty key")
		}
		if !f.Kind.IsValid() {
			panic(fmt.Sprintf("configset: field %q has invalid kind %q", f.Key, f.Kind))
		}
		if _, dup := s.byKey[f.Key]; dup {
			panic(fmt.Sprintf("configset: duplicate field %q", f.Key))
		}
		if !f.Default.IsZero() {
			if err := f.validate(f.Default); err != nil {
				panic(fmt.Sprintf("configset: field %q default: %v", f.Key, err))
			}
		}
		s.byKey[f.Key] = i
	}
	return s
}

// Fields returns the schema's fields in definition order.
func (s *Schema) Fields() []Field {
	return slices.Clone(s.fields)
}

// Field returns the definition for key and whether it exists.
func (s *Schema) Field(key string) (Field, bool) {
	i, ok := s.byKey[key]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

// Coerce converts untyped input into a validated Value for the given key.
// Unknown keys and constraint violations return a *domain.ValidationError.
func (s *Schema) Coerce(key string, input any) (Value, error) {
	f, ok := s.Field(key)
	if !ok {
		return Value{}, &domain.ValidationError{Fields: map[string]string{key: "unknown setting"}}
	}

	v, err := Coerce(f.Kind, input)
	if err != nil {
		return Value{}, &domain.ValidationError{Fields: map[string]string{key: err.Error()}}
	}
	if err := f.validate(v); err != nil {
		return Value{}, &domain.ValidationError{Fields: map[string]string{key: err.Error()}}
	}
	return v, nil
}

// Validate checks every entry in settings against the schema. Unknown keys
// are rejected. All failures are collected into a single
// *domain.ValidationError.
func (s *Schema) Validate(settings Settings) error {
	fields := make(map[string]string)

	for _, key := range settings.Keys() {
		f, ok := s.Field(key)
		if !ok {
			fields[key] = "unknown setting"
			continue
		}
		if err := f.validate(settings[key]); err != nil {
			fields[key] = err.Error()
		}
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// Defaults returns a Settings layer holding every field's default value.
// Fields without a default are omitted.
func (s *Schema) Defaults() Settings {
	out := make(Settings, len(s.fields))
	for _, f := range s.fields {
		if !f.Default.IsZero() {
			out[f.Key] = f.Default
		}
	}
	return out
}

// ApplyDefaults returns settings with unset keys filled from field defaults.
// The input map is not modified.
func (s *Schema) ApplyDefaults(settings Settings) Settings {
	return Merge(s.Defaults(), settings)
}

// floatPtr is a constraint literal helper for schema definitions.
func floatPtr(f float64) *float64 { return &f }

// DefaultSchema returns the built-in WriteIt setting schema shared by global
// and per-workspace configuration.
func DefaultSchema() *Schema {
	return NewSchema(
		Field{
			Key:         "model",
			Kind:        KindString,
			Default:     String("gpt-4o-mini"),
			Description: "Default model for pipeline steps that do not name one",
		},
		Field{
			Key:         "temperature",
			Kind:        KindFloat,
			Default:     Float(0.7),
			Min:         floatPtr(0),
			Max:         floatPtr(2),
			Description: "Sampling temperature passed to the model",
		},
		Field{
			Key:         "max_tokens",
			Kind:        KindInt,
			Default:     Int(2048),
			Min:         floatPtr(1),
			Max:         floatPtr(128000),
			Description: "Token budget for a single step completion",
		},
		Field{
			Key:         "style",
			Kind:        KindString,
			Default:     String("standard"),
			Enum:        []string{"standard", "concise", "academic", "casual"},
			Description: "House style applied to generated prose",
		},
		Field{
			Key:         "word_count_goal",
			Kind:        KindInt,
			Default:     Int(1000),
			Min:         floatPtr(50),
			Max:         floatPtr(100000),
			Description: "Target word count for generated articles",
		},
		Field{
			Key:         "auto_save",
			Kind:        KindBool,
			Default:     Bool(true),
			Description: "Persist step outputs to the workspace root after each run",
		},
		Field{
			Key:         "tags",
			Kind:        KindStringList,
			Description: "Free-form labels attached to runs from this scope",
		},
	)
}
