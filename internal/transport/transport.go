// Package transport provides the byte pipes connecting clients to servers.
//
// A client writes commands through a Transport, which is a
// wire.CommandSerializer, and periodically calls Poll to hand the return
// commands received so far to its handler. Server ends are created by an
// Accept function for every connection the transport establishes.
package transport

import (
	"errors"
	"fmt"
	"io"

	"github.com/stealthrocket/dawnwire/internal/wire"
)

var (
	// ErrClosed is returned by operations on a closed transport.
	ErrClosed = errors.New("transport: closed")
	// ErrFull is returned when a bounded buffer cannot make room for a
	// command.
	ErrFull = errors.New("transport: buffer full")
)

// DefaultMaxAllocationSize is the largest command a transport accepts when
// its options leave the limit unset.
const DefaultMaxAllocationSize = 1 << 20

// Transport is the client end of a connection.
type Transport interface {
	wire.CommandSerializer
	// Poll hands the return commands received so far to handler. It does
	// not block waiting for more.
	Poll(handler wire.CommandHandler) error
	Close() error
}

// Accept creates the server end of a new connection, writing return commands
// to serializer.
//
// If the returned handler has a Flush method, transports call it after every
// batch of commands so return commands are sent back promptly. If it has a
// Close method, it is called once the connection ends.
type Accept func(serializer wire.CommandSerializer) (wire.CommandHandler, error)

type flusher interface {
	Flush() error
}

func flush(h wire.CommandHandler) error {
	if f, ok := h.(flusher); ok {
		return f.Flush()
	}
	return nil
}

func closeHandler(h wire.CommandHandler) error {
	if c, ok := h.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Buffer is an unbounded serializer accumulating commands in memory until
// they are taken.
type Buffer struct {
	buf   []byte
	limit int
}

// NewBuffer creates a buffer accepting commands of up to limit bytes.
func NewBuffer(limit int) *Buffer {
	if limit <= 0 {
		limit = DefaultMaxAllocationSize
	}
	return &Buffer{limit: limit}
}

func (b *Buffer) GetCmdSpace(size int) ([]byte, error) {
	if size > b.limit {
		return nil, fmt.Errorf("%w: %d bytes", wire.ErrCommandTooLarge, size)
	}
	n := len(b.buf)
	b.buf = append(b.buf, make([]byte, size)...)
	return b.buf[n : n+size : n+size], nil
}

func (b *Buffer) Flush() error { return nil }

func (b *Buffer) MaximumAllocationSize() int { return b.limit }

// Len returns the number of bytes buffered.
func (b *Buffer) Len() int { return len(b.buf) }

// Take returns the buffered bytes and empties the buffer.
func (b *Buffer) Take() []byte {
	buf := b.buf
	b.buf = nil
	return buf
}

// handle hands b to h and returns the bytes that were not consumed because
// they hold an incomplete command.
func handle(h wire.CommandHandler, b []byte) ([]byte, error) {
	n, err := h.HandleCommands(b)
	if err != nil && !errors.Is(err, wire.ErrShortCommand) {
		return nil, err
	}
	return b[n:], nil
}
