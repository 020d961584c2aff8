// Package jsonprint writes streams of values as indented JSON documents, one
// after the other.
package jsonprint

import (
	"bufio"
	"encoding/json"
	"io"

	"github.com/stealthrocket/dawnwire/internal/stream"
)

func NewWriter[T any](w io.Writer) stream.WriteCloser[T] {
	b := bufio.NewWriter(w)
	e := json.NewEncoder(b)
	e.SetEscapeHTML(false)
	e.SetIndent("", "  ")
	return &writer[T]{output: b, encoder: e}
}

type writer[T any] struct {
	output  *bufio.Writer
	encoder *json.Encoder
}

func (w *writer[T]) Write(values []T) (int, error) {
	for n := range values {
		if err := w.encoder.Encode(values[n]); err != nil {
			return n, err
		}
	}
	return len(values), nil
}

func (w *writer[T]) Close() error {
	return w.output.Flush()
}
