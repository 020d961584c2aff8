// Package yamlprint writes streams of values as a sequence of YAML documents.
package yamlprint

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/stealthrocket/dawnwire/internal/stream"
)

func NewWriter[T any](w io.Writer) stream.WriteCloser[T] {
	e := yaml.NewEncoder(w)
	e.SetIndent(2)
	return &writer[T]{encoder: e}
}

type writer[T any] struct {
	encoder *yaml.Encoder
	count   int
}

func (w *writer[T]) Write(values []T) (int, error) {
	for i := range values {
		if err := w.encoder.Encode(values[i]); err != nil {
			return i, err
		}
		w.count++
	}
	return len(values), nil
}

// Close terminates the document stream. Nothing is written when no values
// were encoded, the encoder would otherwise fail on the missing stream start.
func (w *writer[T]) Close() error {
	if w.count == 0 {
		return nil
	}
	return w.encoder.Close()
}
