package transport

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"

	"github.com/stealthrocket/dawnwire/internal/wire"
	"golang.org/x/sync/errgroup"
)

const readBufferSize = 32 * 1024

// Conn is a transport over a byte stream such as a pipe or a socket.
//
// Commands are buffered in memory and written to the stream on Flush. A
// goroutine reads from the stream in the background; the data it receives is
// handed to handlers by Poll and Wait, on the goroutine calling them.
type Conn struct {
	conn    io.ReadWriteCloser
	out     *Buffer
	in      []byte
	polling bool

	chunks chan []byte
	errs   chan error
	done   chan struct{}
	err    error
	once   sync.Once
}

var _ Transport = (*Conn)(nil)

// NewConn creates a transport over conn, accepting commands of up to limit
// bytes.
func NewConn(conn io.ReadWriteCloser, limit int) *Conn {
	c := &Conn{
		conn:   conn,
		out:    NewBuffer(limit),
		chunks: make(chan []byte, 16),
		errs:   make(chan error, 1),
		done:   make(chan struct{}),
	}
	go c.read()
	return c
}

func (c *Conn) read() {
	defer close(c.chunks)
	for {
		buf := make([]byte, readBufferSize)
		n, err := c.conn.Read(buf)
		if n > 0 {
			select {
			case c.chunks <- buf[:n]:
			case <-c.done:
				return
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) && !errors.Is(err, io.ErrClosedPipe) {
				c.errs <- err
			}
			return
		}
	}
}

func (c *Conn) GetCmdSpace(size int) ([]byte, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.out.GetCmdSpace(size)
}

func (c *Conn) MaximumAllocationSize() int { return c.out.MaximumAllocationSize() }

// Flush writes the buffered commands to the stream.
func (c *Conn) Flush() error {
	if c.err != nil {
		return c.err
	}
	if c.out.Len() == 0 {
		return nil
	}
	if _, err := c.conn.Write(c.out.Take()); err != nil {
		c.err = err
		return err
	}
	return nil
}

// Poll hands the data received so far to handler. Polling from within the
// handler has no effect; the data is handed over when the outer call returns
// to its loop.
func (c *Conn) Poll(handler wire.CommandHandler) error {
	if c.polling {
		return nil
	}
	for {
		select {
		case chunk, ok := <-c.chunks:
			if !ok {
				return c.closed()
			}
			if err := c.handle(handler, chunk); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

// Wait blocks until data is received, or ctx is canceled, then hands the
// data received so far to handler. It returns io.EOF when the peer closed
// the stream.
func (c *Conn) Wait(ctx context.Context, handler wire.CommandHandler) error {
	if c.polling {
		return nil
	}
	select {
	case chunk, ok := <-c.chunks:
		if !ok {
			return c.closed()
		}
		if err := c.handle(handler, chunk); err != nil {
			return err
		}
		return c.Poll(handler)
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Conn) handle(h wire.CommandHandler, chunk []byte) error {
	c.in = append(c.in, chunk...)
	c.polling = true
	rest, err := handle(h, c.in)
	c.polling = false
	if err != nil {
		return err
	}
	c.in = append(c.in[:0], rest...)
	return nil
}

func (c *Conn) closed() error {
	select {
	case err := <-c.errs:
		return err
	default:
		if len(c.in) != 0 {
			return io.ErrUnexpectedEOF
		}
		return io.EOF
	}
}

func (c *Conn) Close() error {
	err := ErrClosed
	c.once.Do(func() {
		close(c.done)
		err = c.conn.Close()
	})
	return err
}

// Serve runs the server end of a connection over conn until the peer closes
// it, ctx is canceled, or the server fails.
func Serve(ctx context.Context, conn io.ReadWriteCloser, limit int, accept Accept) error {
	c := NewConn(conn, limit)
	defer c.Close()

	h, err := accept(c)
	if err != nil {
		return err
	}
	defer closeHandler(h)

	group, ctx := errgroup.WithContext(ctx)
	done := make(chan struct{})
	group.Go(func() error {
		select {
		case <-ctx.Done():
			c.Close()
		case <-done:
		}
		return nil
	})
	group.Go(func() error {
		defer close(done)
		for {
			if err := c.Wait(ctx, h); err != nil {
				if errors.Is(err, io.EOF) || ctx.Err() != nil {
					return nil
				}
				return err
			}
			if err := flush(h); err != nil {
				return err
			}
		}
	})
	return group.Wait()
}

// ListenAndServe accepts connections on the given network address and serves
// each of them on its own goroutine, until ctx is canceled.
func ListenAndServe(ctx context.Context, network, address string, limit int, accept Accept) error {
	l, err := net.Listen(network, address)
	if err != nil {
		return err
	}
	return ServeListener(ctx, l, limit, accept)
}

// ServeListener is like ListenAndServe for an existing listener, which it
// closes before returning.
func ServeListener(ctx context.Context, l net.Listener, limit int, accept Accept) error {
	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		<-ctx.Done()
		return l.Close()
	})
	group.Go(func() error {
		for {
			conn, err := l.Accept()
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
			wire.Logger().Info("connection accepted", slog.String("remote", conn.RemoteAddr().String()))
			group.Go(func() error {
				if err := Serve(ctx, conn, limit, accept); err != nil {
					wire.Logger().Error("connection terminated", slog.String("remote", conn.RemoteAddr().String()), slog.Any("err", err))
				}
				return nil
			})
		}
	})
	err := group.Wait()
	if errors.Is(err, net.ErrClosed) {
		err = nil
	}
	return err
}
