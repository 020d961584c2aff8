package stream

func ConvertReader[To, From any](base Reader[From], conv func(From) (To, error)) Reader[To] {
	return &convertReader[To, From]{base: base, conv: conv}
}

type convertReader[To, From any] struct {
	base Reader[From]
	from []From
	conv func(From) (To, error)
}

func (r *convertReader[To, From]) Read(values []To) (n int, err error) {
	for n < len(values) {
		if i := len(values) - n; i <= cap(r.from) {
			r.from = r.from[:i]
		} else {
			r.from = make([]From, i)
		}

		rn, err := r.base.Read(r.from)

		for _, from := range r.from[:rn] {
			to, err := r.conv(from)
			if err != nil {
				return n, err
			}
			values[n] = to
			n++
		}

		if err != nil {
			return n, err
		}
	}
	return n, nil
}

// Filter returns a reader of the values of base for which keep returns true.
func Filter[T any](base Reader[T], keep func(T) bool) Reader[T] {
	return &filterReader[T]{base: base, keep: keep}
}

type filterReader[T any] struct {
	base Reader[T]
	keep func(T) bool
}

func (r *filterReader[T]) Read(values []T) (int, error) {
	for {
		n, err := r.base.Read(values)
		i := 0
		for _, v := range values[:n] {
			if r.keep(v) {
				values[i] = v
				i++
			}
		}
		if i > 0 || err != nil || n == 0 {
			return i, err
		}
	}
}
