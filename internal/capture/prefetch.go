package capture

import "io"

const prefetchSize = 32 * 1024

// prefetchReader reads ahead of its consumer on a separate goroutine, so
// decompressing and decoding a batch overlaps with reading the next one from
// the file. The input is only read sequentially.
type prefetchReader struct {
	chunk  []byte
	offset int
	err    error

	chunks <-chan []byte
	errs   <-chan error
	free   chan<- []byte
}

func newPrefetchReader(input io.Reader) *prefetchReader {
	chunks := make(chan []byte)
	errs := make(chan error, 1)
	free := make(chan []byte, 2)

	buf := make([]byte, 2*prefetchSize)
	free <- buf[:prefetchSize:prefetchSize]
	free <- buf[prefetchSize:]
	go prefetch(input, chunks, errs, free)

	return &prefetchReader{chunks: chunks, errs: errs, free: free}
}

func (r *prefetchReader) Read(b []byte) (int, error) {
	for r.offset == len(r.chunk) {
		if r.err != nil {
			return 0, r.err
		}
		if r.chunk != nil {
			r.free <- r.chunk
			r.chunk, r.offset = nil, 0
		}
		chunk, ok := <-r.chunks
		if !ok {
			r.err = <-r.errs
			if r.err == nil {
				r.err = io.EOF
			}
			continue
		}
		r.chunk = chunk
	}
	n := copy(b, r.chunk[r.offset:])
	r.offset += n
	return n, nil
}

// Close stops the prefetching goroutine, it does not close the input.
func (r *prefetchReader) Close() error {
	if r.free != nil {
		close(r.free)
		r.free = nil
	}
	for range r.chunks {
	}
	for range r.errs {
	}
	if r.err == nil {
		r.err = io.ErrClosedPipe
	}
	return nil
}

func prefetch(input io.Reader, chunks chan<- []byte, errs chan<- error, free <-chan []byte) {
	defer close(errs)
	defer close(chunks)

	for b := range free {
		n, err := input.Read(b[:cap(b)])
		if n > 0 {
			chunks <- b[:n]
		}
		if err != nil {
			errs <- err
			return
		}
	}
}
