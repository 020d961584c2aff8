package stream

import "io"

// iteratorBufferSize is the number of values an Iterator reads from its base
// reader at once.
const iteratorBufferSize = 32

// Iterator adapts a Reader to a for loop:
//
//	it := stream.Iter(r)
//	for it.Next() {
//		v := it.Value()
//		...
//	}
//	if err := it.Err(); err != nil {
//		...
//	}
type Iterator[T any] struct {
	base   Reader[T]
	err    error
	values []T
	index  int
	buf    [iteratorBufferSize]T
}

func Iter[T any](r Reader[T]) *Iterator[T] {
	return &Iterator[T]{base: r, index: -1}
}

// Values drains the iterator into a slice.
func Values[T any](it *Iterator[T]) ([]T, error) {
	var values []T
	for it.Next() {
		values = append(values, it.Value())
	}
	return values, it.Err()
}

func (it *Iterator[T]) Next() bool {
	if it.index++; it.index < len(it.values) {
		return true
	}
	return it.fill()
}

func (it *Iterator[T]) fill() bool {
	for it.err == nil && it.base != nil {
		n, err := it.base.Read(it.buf[:])
		it.values, it.index, it.err = it.buf[:n], 0, err
		if n > 0 {
			return true
		}
	}
	it.values, it.index = nil, 0
	return false
}

// Value returns the value that the last call to Next moved to.
func (it *Iterator[T]) Value() T {
	return it.values[it.index]
}

// Err returns the error that ended the iteration, or nil if the base reader
// reached io.EOF.
func (it *Iterator[T]) Err() error {
	if it.err == io.EOF {
		return nil
	}
	return it.err
}
