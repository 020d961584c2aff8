// Package textprint writes streams of values for terminals: aligned tables of
// struct fields, or values printed one after the other with a format string.
package textprint

import (
	"fmt"
	"io"
	"reflect"
	"strconv"
)

type encodeFunc func(io.Writer, reflect.Value) error

var (
	formatterType = reflect.TypeOf((*fmt.Formatter)(nil)).Elem()
	stringerType  = reflect.TypeOf((*fmt.Stringer)(nil)).Elem()
)

// encoderOf returns the function writing the cells of values of type t.
// Formatters print with %v, which lets types like human.Bytes choose their
// representation.
func encoderOf(t reflect.Type) encodeFunc {
	switch {
	case t.Implements(formatterType):
		return func(w io.Writer, v reflect.Value) error {
			_, err := fmt.Fprintf(w, "%v", v.Interface())
			return err
		}
	case t.Implements(stringerType):
		return func(w io.Writer, v reflect.Value) error {
			_, err := io.WriteString(w, v.Interface().(fmt.Stringer).String())
			return err
		}
	}

	switch t.Kind() {
	case reflect.Bool:
		return func(w io.Writer, v reflect.Value) error {
			_, err := io.WriteString(w, strconv.FormatBool(v.Bool()))
			return err
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return func(w io.Writer, v reflect.Value) error {
			_, err := io.WriteString(w, strconv.FormatInt(v.Int(), 10))
			return err
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return func(w io.Writer, v reflect.Value) error {
			_, err := io.WriteString(w, strconv.FormatUint(v.Uint(), 10))
			return err
		}
	case reflect.Float32, reflect.Float64:
		return func(w io.Writer, v reflect.Value) error {
			_, err := io.WriteString(w, strconv.FormatFloat(v.Float(), 'g', -1, 64))
			return err
		}
	case reflect.String:
		return func(w io.Writer, v reflect.Value) error {
			_, err := io.WriteString(w, v.String())
			return err
		}
	case reflect.Pointer:
		elem := encoderOf(t.Elem())
		return func(w io.Writer, v reflect.Value) error {
			if v.IsNil() {
				_, err := io.WriteString(w, "(none)")
				return err
			}
			return elem(w, v.Elem())
		}
	case reflect.Slice, reflect.Array:
		elem := encoderOf(t.Elem())
		return func(w io.Writer, v reflect.Value) error {
			for i := 0; i < v.Len(); i++ {
				if i != 0 {
					if _, err := io.WriteString(w, ", "); err != nil {
						return err
					}
				}
				if err := elem(w, v.Index(i)); err != nil {
					return err
				}
			}
			return nil
		}
	default:
		panic("textprint: cannot print values of type " + t.String())
	}
}
