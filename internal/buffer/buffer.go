// Package buffer provides pooled byte buffers, used to stage outgoing
// commands and as scratch memory when decoding them.
package buffer

import "sync"

const DefaultSize = 4096

type Buffer struct{ Data []byte }

func (buf *Buffer) Len() int { return len(buf.Data) }

func (buf *Buffer) Reset() { buf.Data = buf.Data[:0] }

// Grow extends the buffer by n bytes and returns the region that was added.
// The content of the region is undefined.
func (buf *Buffer) Grow(n int) []byte {
	size := len(buf.Data)
	if size+n > cap(buf.Data) {
		data := make([]byte, size, Align(size+n, DefaultSize))
		copy(data, buf.Data)
		buf.Data = data
	}
	buf.Data = buf.Data[:size+n]
	return buf.Data[size : size+n : size+n]
}

type Pool struct{ pool sync.Pool }

// Get returns a buffer of length size, recycled from the pool if one with
// enough capacity is available.
func (p *Pool) Get(size int) *Buffer {
	b, _ := p.pool.Get().(*Buffer)
	if b != nil {
		if size <= cap(b.Data) {
			b.Data = b.Data[:size]
			return b
		}
		p.Put(b)
	}
	return New(size)
}

func (p *Pool) Put(b *Buffer) {
	if b != nil {
		p.pool.Put(b)
	}
}

func New(size int) *Buffer {
	return &Buffer{Data: make([]byte, size, Align(size, DefaultSize))}
}

// Release returns *buf to the pool and clears the pointer.
func Release(buf **Buffer, pool *Pool) {
	if b := *buf; b != nil {
		*buf = nil
		pool.Put(b)
	}
}

func Align(size, to int) int {
	return ((size + (to - 1)) / to) * to
}
