package transport

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/stealthrocket/dawnwire/internal/wire"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Options select and configure a transport.
type Options struct {
	// Kind is the name of the transport, one of Kinds().
	Kind string
	// Address is the network address of the server, for the unix and http
	// transports.
	Address string
	// RingSize is the capacity of the loopback rings.
	RingSize int
	// MaxAllocationSize bounds the size of a single command.
	MaxAllocationSize int
}

type kind struct {
	// dial connects a client. accept is only used by the transports running
	// the server in the same process.
	dial func(ctx context.Context, opts Options, accept Accept) (Transport, error)
	// listen serves connections until ctx is canceled, nil for transports
	// that cannot accept remote clients.
	listen func(ctx context.Context, opts Options, accept Accept) error
}

var kinds = map[string]kind{
	"loopback": {
		dial: func(ctx context.Context, opts Options, accept Accept) (Transport, error) {
			return NewLoopback(opts.RingSize, accept)
		},
	},
	"pipe": {
		dial: func(ctx context.Context, opts Options, accept Accept) (Transport, error) {
			client, server := net.Pipe()
			go func() {
				if err := Serve(ctx, server, opts.MaxAllocationSize, accept); err != nil {
					wire.Logger().Error("pipe server terminated", slog.Any("err", err))
				}
			}()
			return NewConn(client, opts.MaxAllocationSize), nil
		},
	},
	"unix": {
		dial: func(ctx context.Context, opts Options, _ Accept) (Transport, error) {
			var d net.Dialer
			conn, err := d.DialContext(ctx, "unix", opts.Address)
			if err != nil {
				return nil, err
			}
			return NewConn(conn, opts.MaxAllocationSize), nil
		},
		listen: func(ctx context.Context, opts Options, accept Accept) error {
			return ListenAndServe(ctx, "unix", opts.Address, opts.MaxAllocationSize, accept)
		},
	},
	"http": {
		dial: func(ctx context.Context, opts Options, _ Accept) (Transport, error) {
			return DialHTTP(opts.Address, opts.MaxAllocationSize), nil
		},
		listen: func(ctx context.Context, opts Options, accept Accept) error {
			handler := NewHTTPHandler(opts.MaxAllocationSize, accept)
			defer handler.Close()
			server := &http.Server{
				Addr:    opts.Address,
				Handler: handler,
			}
			go func() {
				<-ctx.Done()
				server.Close()
			}()
			if err := server.ListenAndServe(); err != http.ErrServerClosed {
				return err
			}
			return nil
		},
	},
}

// Kinds returns the names of the available transports.
func Kinds() []string {
	names := maps.Keys(kinds)
	slices.Sort(names)
	return names
}

func lookup(name string) (kind, error) {
	k, ok := kinds[name]
	if !ok {
		return kind{}, fmt.Errorf("unknown transport %q (expected one of %q)", name, Kinds())
	}
	return k, nil
}

// Dial connects a client with the transport selected by opts.
func Dial(ctx context.Context, opts Options, accept Accept) (Transport, error) {
	k, err := lookup(opts.Kind)
	if err != nil {
		return nil, err
	}
	return k.dial(ctx, opts, accept)
}

// Listen serves the server ends of the connections established with the
// transport selected by opts, until ctx is canceled.
func Listen(ctx context.Context, opts Options, accept Accept) error {
	k, err := lookup(opts.Kind)
	if err != nil {
		return err
	}
	if k.listen == nil {
		return fmt.Errorf("transport %q does not accept remote connections", opts.Kind)
	}
	return k.listen(ctx, opts, accept)
}
