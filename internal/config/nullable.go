package config

import (
	"encoding"
	"encoding/json"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Nullable is a configuration value which may be explicitly unset.
type Nullable[T any] struct {
	value T
	exist bool
}

func Null[T any]() Nullable[T] {
	return Nullable[T]{exist: false}
}

func NullableValue[T any](v T) Nullable[T] {
	return Nullable[T]{value: v, exist: true}
}

func (v Nullable[T]) Value() (T, bool) {
	return v.value, v.exist
}

func (v Nullable[T]) MarshalJSON() ([]byte, error) {
	if !v.exist {
		return []byte("null"), nil
	}
	return json.Marshal(v.value)
}

func (v Nullable[T]) MarshalYAML() (any, error) {
	if !v.exist {
		return nil, nil
	}
	return v.value, nil
}

func (v *Nullable[T]) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		v.exist = false
		return nil
	} else if err := json.Unmarshal(b, &v.value); err != nil {
		v.exist = false
		return err
	} else {
		v.exist = true
		return nil
	}
}

func (v *Nullable[T]) UnmarshalYAML(node *yaml.Node) error {
	if node.Value == "" || node.Value == "~" || node.Value == "null" {
		v.exist = false
		return nil
	} else if err := node.Decode(&v.value); err != nil {
		v.exist = false
		return err
	} else {
		v.exist = true
		return nil
	}
}

// MarshalTOML implements toml.Marshaler, null values are written as empty
// strings.
func (v Nullable[T]) MarshalTOML() ([]byte, error) {
	if !v.exist {
		return []byte(`""`), nil
	}
	switch x := any(v.value).(type) {
	case encoding.TextMarshaler:
		b, err := x.MarshalText()
		if err != nil {
			return nil, err
		}
		return []byte(strconv.Quote(string(b))), nil
	case fmt.Stringer:
		return []byte(strconv.Quote(x.String())), nil
	case string:
		return []byte(strconv.Quote(x)), nil
	default:
		return []byte(fmt.Sprint(x)), nil
	}
}

// UnmarshalTOML implements toml.Unmarshaler. TOML has no null value, an empty
// string unsets the value.
func (v *Nullable[T]) UnmarshalTOML(data any) error {
	if s, ok := data.(string); ok {
		if s == "" {
			v.exist = false
			return nil
		}
		if u, ok := any(&v.value).(encoding.TextUnmarshaler); ok {
			if err := u.UnmarshalText([]byte(s)); err != nil {
				v.exist = false
				return err
			}
			v.exist = true
			return nil
		}
	}
	x, ok := data.(T)
	if !ok {
		v.exist = false
		return fmt.Errorf("cannot decode TOML value of type %T into %T", data, v.value)
	}
	v.value, v.exist = x, true
	return nil
}
