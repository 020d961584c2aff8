// Package server implements the consuming end of a wire connection.
//
// A Server decodes the commands sent by a client, translates the object
// handles they carry into the objects of a backend, and calls the matching
// procedure of the backend's Procs table. Completions of asynchronous
// procedures and device notifications are serialized back to the client as
// return commands.
//
// Any command that cannot be decoded, or that references an object the
// client could not legitimately know about, is a protocol error: the server
// stops processing commands and every later call to HandleCommands returns
// the same error.
package server

import (
	"errors"
	"log/slog"

	"github.com/gogpu/gputypes"
	"github.com/stealthrocket/dawnwire/internal/wire"
)

type Config struct {
	// MaxIDGap bounds how far past the known ids the client may allocate.
	// Zero selects wire.DefaultMaxIDGap.
	MaxIDGap int
}

// bufferData is the value stored in the buffer table. It tracks the range
// the client was granted a mapping for, which bounds the data it may write
// back.
type bufferData struct {
	value     wire.Object
	handle    wire.ObjectHandle
	mapped    bool
	writable  bool
	mapOffset uint64
	mapSize   uint64
}

type Server struct {
	procs      Procs
	serializer wire.CommandSerializer
	objects    [wire.NumObjectTypes]*wire.ObjectTable[wire.Object]
	device     wire.Object
	arena      wire.Arena
	err        error
}

// New creates a server driving procs. device is the backend device the
// client's device proxy is bound to, return commands are written to
// serializer.
func New(procs Procs, device wire.Object, serializer wire.CommandSerializer, config Config) *Server {
	s := &Server{procs: procs, serializer: serializer, device: device}
	for i := range s.objects {
		s.objects[i] = wire.NewKnownObjects[wire.Object](config.MaxIDGap)
	}
	if err := s.objects[wire.ObjectTypeDevice].AllocateAt(wire.DeviceHandle, device); err != nil {
		panic(err)
	}
	procs.DeviceSetCallbacks(device, DeviceCallbacks{
		UncapturedError: s.onUncapturedError,
		Lost:            s.onDeviceLost,
		Logging:         s.onLogging,
	})
	return s
}

// Err returns the protocol error that stopped the server, if any.
func (s *Server) Err() error { return s.err }

// Flush sends the buffered return commands to the client.
func (s *Server) Flush() error { return s.serializer.Flush() }

// HandleCommands implements wire.CommandHandler.
func (s *Server) HandleCommands(b []byte) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	consumed := 0
	for len(b) > 0 {
		id, cmd, rest, err := wire.NextCommand(b)
		if err != nil {
			if errors.Is(err, wire.ErrShortCommand) {
				return consumed, err
			}
			return consumed, s.fatal(id, err)
		}
		h, ok := lookupHandler(id)
		if !ok {
			return consumed, s.fatal(id, wire.ErrUnknownCommand)
		}
		wire.Logger().Debug("handling command", slog.Any("cmd", h.cmd), slog.Int("size", len(cmd)))
		err = h.fn(s, cmd)
		s.arena.Reset()
		if err != nil {
			return consumed, s.fatal(id, err)
		}
		consumed += len(cmd)
		b = rest
	}
	return consumed, nil
}

func (s *Server) fatal(id uint32, err error) error {
	s.err = &wire.ProtocolError{Command: id, Err: err}
	wire.Logger().Error("closing connection", slog.Any("err", s.err))
	return s.err
}

// GetFromID implements wire.ObjectIDResolver.
func (s *Server) GetFromID(t wire.ObjectType, h wire.ObjectHandle) (wire.Object, wire.Result) {
	if int(t) >= len(s.objects) {
		return nil, wire.FatalError
	}
	v, res := s.objects[t].GetFromID(h)
	if b, ok := v.(*bufferData); ok {
		v = b.value
	}
	return v, res
}

// GetOptionalFromID implements wire.ObjectIDResolver.
func (s *Server) GetOptionalFromID(t wire.ObjectType, h wire.ObjectHandle) (wire.Object, wire.Result) {
	if h.IsNull() {
		return nil, wire.Success
	}
	return s.GetFromID(t, h)
}

// Objects returns the number of live objects of type t, error objects and
// reservations included.
func (s *Server) Objects(t wire.ObjectType) int { return s.objects[t].Len() }

// State returns the state of the slot holding the object with the given id.
func (s *Server) State(t wire.ObjectType, id uint32) (wire.ObjectHandle, wire.SlotState) {
	return s.objects[t].State(id)
}

// known resolves a handle decoded with a wire.HandleResolver, for commands
// which need the handle of the object they operate on.
func (s *Server) known(t wire.ObjectType, obj wire.Object) (wire.ObjectHandle, wire.Object, error) {
	h, _ := obj.(wire.ObjectHandle)
	v, err := s.objects[t].Get(h)
	if err != nil && !errors.Is(err, wire.ErrErrorObject) {
		return h, nil, err
	}
	return h, v, nil
}

func (s *Server) buffer(obj wire.Object) (*bufferData, error) {
	_, v, err := s.known(wire.ObjectTypeBuffer, obj)
	if err != nil {
		return nil, err
	}
	return v.(*bufferData), nil
}

// create registers the object returned by fn under the handle chosen by the
// client. A failed creation leaves an error object in the slot.
func (s *Server) create(t wire.ObjectType, h wire.ObjectHandle, fn func() (wire.Object, error)) (wire.Object, bool, error) {
	table := s.objects[t]
	if err := table.ReserveAt(h); err != nil {
		return nil, false, err
	}
	obj, err := fn()
	if err != nil {
		wire.Logger().Debug("object creation failed",
			slog.String("type", t.String()),
			slog.String("handle", h.String()),
			slog.Any("err", err))
		return obj, false, table.MarkError(h.ID, obj)
	}
	return obj, true, table.FillReservation(h.ID, obj)
}

// emit serializes a return command.
func (s *Server) emit(cmd wire.Command) {
	if s.err != nil {
		return
	}
	if err := wire.SerializeTo(s.serializer, cmd, wire.HandleProvider{}); err != nil {
		wire.Logger().Error("sending return command",
			slog.String("cmd", wire.CommandName(cmd.ID())),
			slog.Any("err", err))
	}
}

func (s *Server) onUncapturedError(t wire.ErrorType, message string) {
	s.emit(&wire.ReturnDeviceUncapturedErrorCallbackCmd{
		Device:  wire.DeviceHandle,
		Type:    t,
		Message: message,
	})
}

func (s *Server) onDeviceLost(reason wire.DeviceLostReason, message string) {
	s.emit(&wire.ReturnDeviceLostCallbackCmd{
		Device:  wire.DeviceHandle,
		Reason:  reason,
		Message: message,
	})
}

func (s *Server) onLogging(t wire.LoggingType, message string) {
	s.emit(&wire.ReturnDeviceLoggingCallbackCmd{
		Device:  wire.DeviceHandle,
		Type:    t,
		Message: message,
	})
}

func (b *bufferData) grant(mode gputypes.MapMode, offset, size uint64) {
	b.mapped = true
	b.writable = mode&gputypes.MapModeWrite != 0
	b.mapOffset, b.mapSize = offset, size
}

func (b *bufferData) revoke() {
	b.mapped, b.writable = false, false
	b.mapOffset, b.mapSize = 0, 0
}

// contains reports whether a write of size bytes at offset falls within the
// writable mapping.
func (b *bufferData) contains(offset, size uint64) bool {
	if !b.mapped || !b.writable || offset < b.mapOffset {
		return false
	}
	start := offset - b.mapOffset
	return start <= b.mapSize && size <= b.mapSize-start
}
