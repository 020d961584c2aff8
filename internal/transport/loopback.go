package transport

import (
	"fmt"
	"log/slog"

	"github.com/stealthrocket/dawnwire/internal/wire"
)

// DefaultRingSize is the capacity of the rings of a loopback transport when
// its options leave it unset.
const DefaultRingSize = 4 << 20

// Ring is a serializer writing commands to a fixed size ring buffer.
//
// Commands become visible to the reading end when the ring is flushed. If the
// ring was created with a handler, flushing also delivers them; otherwise
// they wait for a call to Poll. A ring with a handler flushes itself when it
// runs out of space.
type Ring struct {
	rb      ringbuf
	handler wire.CommandHandler
	// ready is the number of flushed bytes at the front of the ring.
	ready      int
	flushing   bool
	delivering bool
	// err is the delivery failure after which the ring is unusable.
	err error
}

// NewRing creates a ring of size bytes delivering commands to handler, which
// may be nil.
func NewRing(size int, handler wire.CommandHandler) *Ring {
	return &Ring{rb: makeRingBuffer(size), handler: handler}
}

// Len returns the number of bytes in the ring, flushed or not.
func (r *Ring) Len() int { return r.rb.len() }

func (r *Ring) MaximumAllocationSize() int { return r.rb.cap() }

func (r *Ring) GetCmdSpace(size int) ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}
	if size > r.rb.cap() {
		return nil, fmt.Errorf("%w: %d bytes, the ring holds %d", wire.ErrCommandTooLarge, size, r.rb.cap())
	}
	if b := r.rb.reserve(size); b != nil {
		return b, nil
	}
	if r.handler == nil || r.flushing {
		return nil, ErrFull
	}
	if err := r.Flush(); err != nil {
		return nil, err
	}
	if b := r.rb.reserve(size); b != nil {
		return b, nil
	}
	return nil, ErrFull
}

// Flush makes the commands written so far visible to the reading end, and
// delivers them if the ring has a handler. Flushing from within the handler
// only marks the commands ready: they are delivered by the outer call.
func (r *Ring) Flush() error {
	if r.err != nil {
		return r.err
	}
	r.ready = r.rb.len()
	if r.handler == nil || r.flushing {
		return nil
	}
	r.flushing = true
	defer func() { r.flushing = false }()
	for r.ready > 0 {
		if err := r.deliver(r.handler); err != nil {
			return err
		}
		if err := flush(r.handler); err != nil {
			r.err = err
			return err
		}
		r.ready = r.rb.len()
	}
	return nil
}

// Poll delivers the flushed commands to handler, including those flushed
// while it runs. Polling from within the handler has no effect.
func (r *Ring) Poll(handler wire.CommandHandler) error {
	if r.err != nil {
		return r.err
	}
	if r.delivering {
		return nil
	}
	for r.ready > 0 {
		if err := r.deliver(handler); err != nil {
			return err
		}
	}
	return nil
}

// deliver hands the flushed commands to h. The handler may write and flush
// more commands to the ring; they stay ready for the next delivery.
func (r *Ring) deliver(h wire.CommandHandler) error {
	r.delivering, r.rb.pinned = true, true
	b := r.rb.bytes()[:r.ready]
	rest, err := handle(h, b)
	r.delivering, r.rb.pinned = false, false

	if err == nil && len(rest) > 0 {
		err = fmt.Errorf("%w: ring holds a partial command of %d bytes", wire.ErrMalformedCommand, len(rest))
	}
	if err != nil {
		// The connection is dead, nothing else will be read from the ring.
		r.rb.discard(r.rb.len())
		r.ready = 0
		r.err = err
		return err
	}
	r.rb.discard(len(b))
	r.ready -= len(b)
	return nil
}

// Loopback connects a client to a server living in the same process through
// a pair of rings.
//
// Flushing the client delivers its commands to the server synchronously; the
// return commands of the server are delivered to the client by Poll. Once the
// server failed, Poll returns its error.
type Loopback struct {
	toServer *Ring
	toClient *Ring
	server   wire.CommandHandler
}

var _ Transport = (*Loopback)(nil)

// NewLoopback creates a loopback transport with rings of size bytes in each
// direction, and a server end created by accept.
func NewLoopback(size int, accept Accept) (*Loopback, error) {
	if size <= 0 {
		size = DefaultRingSize
	}
	l := &Loopback{toClient: NewRing(size, nil)}
	h, err := accept(l.toClient)
	if err != nil {
		return nil, err
	}
	l.toServer = NewRing(size, h)
	l.server = h
	wire.Logger().Info("loopback transport established", slog.Int("ring_size", size))
	return l, nil
}

func (l *Loopback) GetCmdSpace(size int) ([]byte, error) { return l.toServer.GetCmdSpace(size) }

func (l *Loopback) Flush() error { return l.toServer.Flush() }

func (l *Loopback) MaximumAllocationSize() int { return l.toServer.MaximumAllocationSize() }

func (l *Loopback) Poll(handler wire.CommandHandler) error {
	if err := l.toServer.err; err != nil {
		return err
	}
	return l.toClient.Poll(handler)
}

// Close releases the server end.
func (l *Loopback) Close() error {
	if l.server == nil {
		return ErrClosed
	}
	h := l.server
	l.server = nil
	return closeHandler(h)
}
