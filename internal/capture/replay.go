package capture

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/stealthrocket/dawnwire/internal/stream"
	"github.com/stealthrocket/dawnwire/internal/wire"
)

// ReplayStats summarizes a replay.
type ReplayStats struct {
	// Records is the number of client-to-server records fed to the handler.
	Records int
	// Bytes is the number of command bytes consumed by the handler.
	Bytes int64
}

// Replay feeds the commands that the client sent in a trace to handler, in
// order, skipping the return commands. If handler has a Flush method it is
// called after every record, like transports do.
//
// Replay stops at the first error of the handler, which it returns with the
// statistics of the records replayed before it.
func Replay(records stream.Reader[Record], handler wire.CommandHandler) (ReplayStats, error) {
	var stats ReplayStats
	var pending []byte
	var values [32]Record

	for {
		n, err := records.Read(values[:])
		for i := range values[:n] {
			r := &values[i]
			if r.Direction() != ClientToServer {
				continue
			}
			pending = append(pending, r.Data()...)
			consumed, err := handler.HandleCommands(pending)
			stats.Bytes += int64(consumed)
			stats.Records++
			if err != nil && !errors.Is(err, wire.ErrShortCommand) {
				return stats, fmt.Errorf("replaying record %d: %w", stats.Records-1, err)
			}
			pending = append(pending[:0], pending[consumed:]...)
			if f, ok := handler.(interface{ Flush() error }); ok {
				if err := f.Flush(); err != nil {
					return stats, err
				}
			}
		}
		if err != nil {
			if err == io.EOF {
				break
			}
			return stats, err
		}
	}

	if len(pending) != 0 {
		return stats, fmt.Errorf("trace ends with a partial command of %d bytes: %w", len(pending), io.ErrUnexpectedEOF)
	}
	wire.Logger().Info("trace replayed",
		slog.Int("records", stats.Records),
		slog.Int64("bytes", stats.Bytes))
	return stats, nil
}

// Command is a command decoded from a trace.
type Command struct {
	Direction Direction
	Offset    int
	wire.Command
}

// DecodeRecord decodes the commands of a record. Object references are
// decoded as wire.ObjectHandle values.
func DecodeRecord(r *Record) ([]Command, error) {
	var cmds []Command
	data := r.Data()
	b := data
	for len(b) > 0 {
		cmd, rest, err := wire.DecodeCommand(b, wire.HeapAllocator{}, wire.HandleResolver{})
		if err != nil && !errors.Is(err, wire.ErrErrorObject) {
			return cmds, fmt.Errorf("decoding command at offset %d: %w", len(data)-len(b), err)
		}
		cmds = append(cmds, Command{
			Direction: r.Direction(),
			Offset:    len(data) - len(b),
			Command:   cmd,
		})
		b = rest
	}
	return cmds, nil
}
