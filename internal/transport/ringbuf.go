package transport

// ringbuf is a bounded byte queue. Writes reserve contiguous regions at the
// end of the buffer, packing the unread bytes to the front when the tail is
// too short, so a region handed out is never split.
//
// While the buffer is pinned, the unread bytes are never moved in place:
// packing copies them to a new array, leaving slices returned by bytes intact.
type ringbuf struct {
	buf    []byte
	off    int
	end    int
	pinned bool
}

func makeRingBuffer(n int) ringbuf {
	return ringbuf{buf: make([]byte, n)}
}

func (rb *ringbuf) len() int { return rb.end - rb.off }

func (rb *ringbuf) cap() int { return len(rb.buf) }

func (rb *ringbuf) avail() int { return rb.off + (len(rb.buf) - rb.end) }

func (rb *ringbuf) bytes() []byte { return rb.buf[rb.off:rb.end] }

func (rb *ringbuf) discard(n int) {
	if n < 0 {
		panic("BUG: discard negative count")
	}
	if n > rb.len() {
		panic("BUG: discard more bytes than exist in the buffer")
	}
	if rb.off += n; rb.off == rb.end {
		rb.off = 0
		rb.end = 0
	}
}

// reserve returns a zeroed region of n bytes at the end of the buffer, or nil
// if there is not enough room.
func (rb *ringbuf) reserve(n int) []byte {
	if n > rb.avail() {
		return nil
	}
	if len(rb.buf)-rb.end < n {
		rb.pack()
	}
	b := rb.buf[rb.end : rb.end+n : rb.end+n]
	clear(b)
	rb.end += n
	return b
}

func (rb *ringbuf) pack() {
	if rb.off == 0 {
		return
	}
	buf := rb.buf
	if rb.pinned {
		buf = make([]byte, len(rb.buf))
	}
	rb.end = copy(buf, rb.buf[rb.off:rb.end])
	rb.off = 0
	rb.buf = buf
}
