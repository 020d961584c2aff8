package wire

import "github.com/stealthrocket/dawnwire/internal/buffer"

// Allocator provides the memory variable length members are copied into when
// a command is deserialized.
type Allocator interface {
	Alloc(size int) []byte
}

// HeapAllocator allocates every request on the heap. Decoded commands may be
// retained indefinitely.
type HeapAllocator struct{}

func (HeapAllocator) Alloc(size int) []byte { return make([]byte, size) }

// ArenaInlineSize is the size of the block an Arena serves small requests
// from before reaching for pooled buffers.
const ArenaInlineSize = 2048

var arenaPool buffer.Pool

// Arena is a bump allocator reset after every command. Memory it returns is
// only valid until the next call to Reset.
type Arena struct {
	inline   [ArenaInlineSize]byte
	used     int
	overflow []*buffer.Buffer
}

func (a *Arena) Alloc(size int) []byte {
	n := Align(size)
	if a.used+n <= len(a.inline) {
		b := a.inline[a.used : a.used+size : a.used+size]
		a.used += n
		clear(b)
		return b
	}
	buf := arenaPool.Get(size)
	a.overflow = append(a.overflow, buf)
	return buf.Data[:size:size]
}

// Reset releases all the memory handed out since the last reset.
func (a *Arena) Reset() {
	a.used = 0
	for i := range a.overflow {
		buffer.Release(&a.overflow[i], &arenaPool)
	}
	a.overflow = a.overflow[:0]
}
