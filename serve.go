package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/stealthrocket/dawnwire/internal/capture"
	"github.com/stealthrocket/dawnwire/internal/config"
	"github.com/stealthrocket/dawnwire/internal/print/human"
	"github.com/stealthrocket/dawnwire/internal/transport"
	"github.com/stealthrocket/dawnwire/internal/wire"
	"golang.org/x/sync/errgroup"
)

const serveUsage = `
Usage:	dawnwire serve [options]

   The serve command accepts wire connections with the unix or http transport
   and runs a server on the null GPU for each of them, until interrupted.

   Each connection is recorded to its own trace when a capture location is
   set, either in the configuration or with --capture.

Options:
   -c, --config path         Path to the dawnwire configuration file (overrides DAWNWIRECONFIG)
   -a, --address addr        Address to listen on (a socket path for unix, host:port for http)
       --capture path        Record each connection to a trace in this directory
       --compression type    Compression of the recorded traces, one of: none, snappy, zstd
   -h, --help                Show this usage information
   -t, --transport kind      Transport to listen with, one of: http, unix
`

func serve(ctx context.Context, args []string) error {
	var (
		address     string
		capturePath human.Path
		compress    compression
		kind        transportKind
	)

	flagSet := newFlagSet("dawnwire serve", serveUsage)
	flagSet.StringVar(&address, "a", "", "")
	flagSet.StringVar(&address, "address", "", "")
	customVar(flagSet, &capturePath, "capture")
	customVar(flagSet, &compress, "compression")
	customVar(flagSet, &kind, "t", "transport")

	if args = parseFlags(flagSet, args); len(args) != 0 {
		return usageError("dawnwire serve: unexpected argument %q", args[0])
	}

	c, err := loadConfig()
	if err != nil {
		return err
	}
	if kind != "" {
		c.Transport.Kind = string(kind)
	}
	if address != "" {
		c.Transport.Address = address
	}
	if capturePath != "" {
		c.Capture.Location = config.NullableValue(capturePath)
	}
	if compress != "" {
		c.Capture.Compression = string(compress)
	}
	if err := c.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	accept := nullServer(c)
	if dir, ok := c.CaptureDirectory(); ok {
		accept = recordConnections(dir, c.CaptureOptions(), accept)
	}

	opts := c.TransportOptions()
	group, ctx := errgroup.WithContext(ctx)
	ctx, cancel := context.WithCancel(ctx)
	group.Go(func() error {
		defer cancel()
		wire.Logger().Info("serving wire connections",
			slog.String("transport", opts.Kind),
			slog.String("address", opts.Address))
		return transport.Listen(ctx, opts, accept)
	})
	group.Go(func() error {
		<-ctx.Done()
		wire.Logger().Info("shutting down", slog.Any("cause", context.Cause(ctx)))
		return nil
	})
	return group.Wait()
}

// recordConnections wraps accept so every connection is recorded to a new
// trace in dir.
func recordConnections(dir string, opts capture.Options, accept transport.Accept) transport.Accept {
	return func(s wire.CommandSerializer) (wire.CommandHandler, error) {
		rec, err := capture.Create(dir, opts)
		if err != nil {
			return nil, err
		}
		h, err := rec.Accept(accept)(s)
		if err != nil {
			rec.Close()
			return nil, err
		}
		wire.Logger().Info("recording connection",
			slog.String("trace", rec.Header().TraceID.String()))
		return h, nil
	}
}
