package server

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/gogpu/gputypes"
	"github.com/stealthrocket/dawnwire/internal/wire"
)

var (
	errMappedRange   = errors.New("write outside of the mapped range of the buffer")
	errDestroyDevice = errors.New("the device cannot be released by the client")
)

type handler struct {
	cmd wire.WireCmd
	fn  func(*Server, []byte) error
}

// handlers is the dispatch table, sorted by command id so it can be
// searched in logarithmic time.
var handlers = sortHandlers(
	handler{wire.BufferDestroy, handleBufferDestroy},
	handler{wire.BufferMapAsync, handleBufferMapAsync},
	handler{wire.BufferUnmap, handleBufferUnmap},
	handler{wire.BufferUpdateMappedData, handleBufferUpdateMappedData},
	handler{wire.CommandEncoderCopyBufferToBuffer, handleCommandEncoderCopyBufferToBuffer},
	handler{wire.CommandEncoderFinish, handleCommandEncoderFinish},
	handler{wire.DestroyObject, handleDestroyObject},
	handler{wire.DeviceCreateBindGroupLayout, handleDeviceCreateBindGroupLayout},
	handler{wire.DeviceCreateBuffer, handleDeviceCreateBuffer},
	handler{wire.DeviceCreateCommandEncoder, handleDeviceCreateCommandEncoder},
	handler{wire.DeviceCreateComputePipelineAsync, handleDeviceCreateComputePipelineAsync},
	handler{wire.DeviceCreatePipelineLayout, handleDeviceCreatePipelineLayout},
	handler{wire.DeviceCreateRenderPipelineAsync, handleDeviceCreateRenderPipelineAsync},
	handler{wire.DeviceCreateShaderModule, handleDeviceCreateShaderModule},
	handler{wire.DeviceCreateTexture, handleDeviceCreateTexture},
	handler{wire.DeviceDestroy, handleDeviceDestroy},
	handler{wire.DeviceGetQueue, handleDeviceGetQueue},
	handler{wire.DeviceInjectError, handleDeviceInjectError},
	handler{wire.DevicePopErrorScope, handleDevicePopErrorScope},
	handler{wire.DevicePushErrorScope, handleDevicePushErrorScope},
	handler{wire.DeviceTick, handleDeviceTick},
	handler{wire.QueueOnSubmittedWorkDone, handleQueueOnSubmittedWorkDone},
	handler{wire.QueueSubmit, handleQueueSubmit},
	handler{wire.QueueWriteBuffer, handleQueueWriteBuffer},
)

func sortHandlers(h ...handler) []handler {
	slices.SortFunc(h, func(a, b handler) int { return cmp.Compare(a.cmd, b.cmd) })
	return h
}

func lookupHandler(id uint32) (handler, bool) {
	i, found := slices.BinarySearchFunc(handlers, wire.WireCmd(id), func(h handler, cmd wire.WireCmd) int {
		switch {
		case h.cmd < cmd:
			return -1
		case h.cmd > cmd:
			return +1
		default:
			return 0
		}
	})
	if !found {
		return handler{}, false
	}
	return handlers[i], true
}

// decode deserializes a command. References to error objects are not an
// error: the command is forwarded to the procedures which know how to deal
// with them.
func decode[T any, P interface {
	*T
	wire.Command
}](s *Server, b []byte, ids wire.ObjectIDResolver) (P, error) {
	cmd := P(new(T))
	_, err := cmd.Deserialize(b, &s.arena, ids)
	if errors.Is(err, wire.ErrErrorObject) {
		wire.Logger().Debug("forwarding command referencing an error object",
			slog.String("cmd", wire.CommandName(cmd.ID())))
		err = nil
	}
	return cmd, err
}

func handleBufferDestroy(s *Server, b []byte) error {
	cmd, err := decode[wire.BufferDestroyCmd](s, b, wire.HandleResolver{})
	if err != nil {
		return err
	}
	buf, err := s.buffer(cmd.Self)
	if err != nil {
		return err
	}
	buf.revoke()
	s.procs.BufferDestroy(buf.value)
	return nil
}

func handleBufferMapAsync(s *Server, b []byte) error {
	cmd, err := decode[wire.BufferMapAsyncCmd](s, b, wire.HandleResolver{})
	if err != nil {
		return err
	}
	buf, err := s.buffer(cmd.Self)
	if err != nil {
		return err
	}
	serial, mode, offset, size := cmd.RequestSerial, cmd.Mode, cmd.Offset, cmd.Size
	s.procs.BufferMapAsync(buf.value, mode, offset, size, func(status wire.MapAsyncStatus, message string) {
		s.completeMap(buf, serial, mode, offset, size, status, message)
	})
	return nil
}

func (s *Server) completeMap(buf *bufferData, serial uint64, mode gputypes.MapMode, offset, size uint64, status wire.MapAsyncStatus, message string) {
	ret := &wire.ReturnBufferMapAsyncCallbackCmd{
		Buffer:        buf.handle,
		RequestSerial: serial,
		Status:        status,
		Message:       message,
	}
	if status == wire.MapAsyncStatusSuccess {
		if mode&gputypes.MapModeRead != 0 {
			data := s.procs.BufferGetMappedRange(buf.value, offset, size)
			if uint64(len(data)) != size {
				ret.Status = wire.MapAsyncStatusError
				ret.Message = fmt.Sprintf("mapped range of %d bytes at offset %d is not available", size, offset)
				s.emit(ret)
				return
			}
			ret.ReadData = data
			if data == nil {
				ret.ReadData = []byte{}
			}
		}
		buf.grant(mode, offset, size)
	}
	s.emit(ret)
}

func handleBufferUnmap(s *Server, b []byte) error {
	cmd, err := decode[wire.BufferUnmapCmd](s, b, wire.HandleResolver{})
	if err != nil {
		return err
	}
	buf, err := s.buffer(cmd.Self)
	if err != nil {
		return err
	}
	buf.revoke()
	s.procs.BufferUnmap(buf.value)
	return nil
}

func handleBufferUpdateMappedData(s *Server, b []byte) error {
	cmd, err := decode[wire.BufferUpdateMappedDataCmd](s, b, wire.HandleResolver{})
	if err != nil {
		return err
	}
	buf, err := s.buffer(cmd.Self)
	if err != nil {
		return err
	}
	size := uint64(len(cmd.Data))
	if !buf.contains(cmd.Offset, size) {
		return fmt.Errorf("%w: %d bytes at offset %d of buffer %s", errMappedRange, size, cmd.Offset, buf.handle)
	}
	// Error buffers have no memory, the data is discarded.
	if dst := s.procs.BufferGetMappedRange(buf.value, cmd.Offset, size); dst != nil {
		copy(dst, cmd.Data)
	}
	return nil
}

func handleCommandEncoderCopyBufferToBuffer(s *Server, b []byte) error {
	cmd, err := decode[wire.CommandEncoderCopyBufferToBufferCmd](s, b, s)
	if err != nil {
		return err
	}
	s.procs.CommandEncoderCopyBufferToBuffer(cmd.Self, cmd.Source, cmd.SourceOffset, cmd.Destination, cmd.DestinationOffset, cmd.Size)
	return nil
}

func handleCommandEncoderFinish(s *Server, b []byte) error {
	cmd, err := decode[wire.CommandEncoderFinishCmd](s, b, s)
	if err != nil {
		return err
	}
	_, _, err = s.create(wire.ObjectTypeCommandBuffer, cmd.Result, func() (wire.Object, error) {
		return s.procs.CommandEncoderFinish(cmd.Self, cmd.Descriptor)
	})
	return err
}

func handleDestroyObject(s *Server, b []byte) error {
	cmd, err := decode[wire.DestroyObjectCmd](s, b, s)
	if err != nil {
		return err
	}
	t, h := cmd.ObjectType, cmd.ObjectID
	switch {
	case int(t) >= wire.NumObjectTypes:
		return fmt.Errorf("%w: invalid object type %d", wire.ErrMalformedCommand, uint32(t))
	case t == wire.ObjectTypeDevice:
		return errDestroyDevice
	case h.IsNull():
		return wire.ErrNullObject
	}
	table := s.objects[t]
	v, err := table.Get(h)
	if err != nil && !errors.Is(err, wire.ErrErrorObject) {
		return err
	}
	if err := table.Free(h.ID); err != nil {
		return err
	}
	if buf, ok := v.(*bufferData); ok {
		v = buf.value
	}
	s.procs.Release(t, v)
	return nil
}

func handleDeviceCreateBindGroupLayout(s *Server, b []byte) error {
	cmd, err := decode[wire.DeviceCreateBindGroupLayoutCmd](s, b, s)
	if err != nil {
		return err
	}
	_, _, err = s.create(wire.ObjectTypeBindGroupLayout, cmd.Result, func() (wire.Object, error) {
		return s.procs.DeviceCreateBindGroupLayout(cmd.Self, &cmd.Descriptor)
	})
	return err
}

func handleDeviceCreateBuffer(s *Server, b []byte) error {
	cmd, err := decode[wire.DeviceCreateBufferCmd](s, b, s)
	if err != nil {
		return err
	}
	obj, _, err := s.create(wire.ObjectTypeBuffer, cmd.Result, func() (wire.Object, error) {
		v, err := s.procs.DeviceCreateBuffer(cmd.Self, &cmd.Descriptor)
		return &bufferData{value: v, handle: cmd.Result}, err
	})
	if err != nil {
		return err
	}
	// The client maps the buffer at creation even when the creation fails,
	// so it is allowed to send the contents back.
	if cmd.Descriptor.MappedAtCreation {
		obj.(*bufferData).grant(gputypes.MapModeWrite, 0, cmd.Descriptor.Size)
	}
	return nil
}

func handleDeviceCreateCommandEncoder(s *Server, b []byte) error {
	cmd, err := decode[wire.DeviceCreateCommandEncoderCmd](s, b, s)
	if err != nil {
		return err
	}
	_, _, err = s.create(wire.ObjectTypeCommandEncoder, cmd.Result, func() (wire.Object, error) {
		return s.procs.DeviceCreateCommandEncoder(cmd.Self, cmd.Descriptor)
	})
	return err
}

func handleDeviceCreateComputePipelineAsync(s *Server, b []byte) error {
	cmd, err := decode[wire.DeviceCreateComputePipelineAsyncCmd](s, b, s)
	if err != nil {
		return err
	}
	h, serial := cmd.Result, cmd.RequestSerial
	if err := s.objects[wire.ObjectTypeComputePipeline].ReserveAt(h); err != nil {
		return err
	}
	s.procs.DeviceCreateComputePipelineAsync(cmd.Self, &cmd.Descriptor, func(r PipelineResult) {
		status, message := s.completePipeline(wire.ObjectTypeComputePipeline, h, r)
		s.emit(&wire.ReturnDeviceCreateComputePipelineAsyncCallbackCmd{
			Device:        wire.DeviceHandle,
			RequestSerial: serial,
			Status:        status,
			Message:       message,
		})
	})
	return nil
}

func handleDeviceCreateRenderPipelineAsync(s *Server, b []byte) error {
	cmd, err := decode[wire.DeviceCreateRenderPipelineAsyncCmd](s, b, s)
	if err != nil {
		return err
	}
	h, serial := cmd.Result, cmd.RequestSerial
	if err := s.objects[wire.ObjectTypeRenderPipeline].ReserveAt(h); err != nil {
		return err
	}
	s.procs.DeviceCreateRenderPipelineAsync(cmd.Self, &cmd.Descriptor, func(r PipelineResult) {
		status, message := s.completePipeline(wire.ObjectTypeRenderPipeline, h, r)
		s.emit(&wire.ReturnDeviceCreateRenderPipelineAsyncCallbackCmd{
			Device:        wire.DeviceHandle,
			RequestSerial: serial,
			Status:        status,
			Message:       message,
		})
	})
	return nil
}

// completePipeline fills the reservation of a pipeline created
// asynchronously, or frees it if the creation failed.
func (s *Server) completePipeline(t wire.ObjectType, h wire.ObjectHandle, r PipelineResult) (wire.CreatePipelineAsyncStatus, string) {
	table := s.objects[t]
	if r.Status != wire.CreatePipelineAsyncStatusSuccess {
		if err := table.Free(h.ID); err != nil {
			wire.Logger().Warn("freeing pipeline reservation", slog.String("handle", h.String()), slog.Any("err", err))
		}
		if r.Pipeline != nil {
			s.procs.Release(t, r.Pipeline)
		}
		return r.Status, r.Message
	}
	if err := table.FillReservation(h.ID, r.Pipeline); err != nil {
		wire.Logger().Error("completing pipeline creation", slog.String("handle", h.String()), slog.Any("err", err))
		s.procs.Release(t, r.Pipeline)
		return wire.CreatePipelineAsyncStatusInternalError, err.Error()
	}
	return r.Status, r.Message
}

func handleDeviceCreatePipelineLayout(s *Server, b []byte) error {
	cmd, err := decode[wire.DeviceCreatePipelineLayoutCmd](s, b, s)
	if err != nil {
		return err
	}
	_, _, err = s.create(wire.ObjectTypePipelineLayout, cmd.Result, func() (wire.Object, error) {
		return s.procs.DeviceCreatePipelineLayout(cmd.Self, &cmd.Descriptor)
	})
	return err
}

func handleDeviceCreateShaderModule(s *Server, b []byte) error {
	cmd, err := decode[wire.DeviceCreateShaderModuleCmd](s, b, s)
	if err != nil {
		return err
	}
	_, _, err = s.create(wire.ObjectTypeShaderModule, cmd.Result, func() (wire.Object, error) {
		return s.procs.DeviceCreateShaderModule(cmd.Self, &cmd.Descriptor)
	})
	return err
}

func handleDeviceCreateTexture(s *Server, b []byte) error {
	cmd, err := decode[wire.DeviceCreateTextureCmd](s, b, s)
	if err != nil {
		return err
	}
	_, _, err = s.create(wire.ObjectTypeTexture, cmd.Result, func() (wire.Object, error) {
		return s.procs.DeviceCreateTexture(cmd.Self, &cmd.Descriptor)
	})
	return err
}

func handleDeviceDestroy(s *Server, b []byte) error {
	cmd, err := decode[wire.DeviceDestroyCmd](s, b, s)
	if err != nil {
		return err
	}
	s.procs.DeviceDestroy(cmd.Self)
	return nil
}

func handleDeviceGetQueue(s *Server, b []byte) error {
	cmd, err := decode[wire.DeviceGetQueueCmd](s, b, s)
	if err != nil {
		return err
	}
	_, _, err = s.create(wire.ObjectTypeQueue, cmd.Result, func() (wire.Object, error) {
		return s.procs.DeviceGetQueue(cmd.Self), nil
	})
	return err
}

func handleDeviceInjectError(s *Server, b []byte) error {
	cmd, err := decode[wire.DeviceInjectErrorCmd](s, b, s)
	if err != nil {
		return err
	}
	s.procs.DeviceInjectError(cmd.Self, cmd.Type, cmd.Message)
	return nil
}

func handleDevicePopErrorScope(s *Server, b []byte) error {
	cmd, err := decode[wire.DevicePopErrorScopeCmd](s, b, s)
	if err != nil {
		return err
	}
	serial := cmd.RequestSerial
	s.procs.DevicePopErrorScope(cmd.Self, func(r PopErrorScopeResult) {
		s.emit(&wire.ReturnDevicePopErrorScopeCallbackCmd{
			Device:        wire.DeviceHandle,
			RequestSerial: serial,
			Status:        r.Status,
			Type:          r.Type,
			Message:       r.Message,
		})
	})
	return nil
}

func handleDevicePushErrorScope(s *Server, b []byte) error {
	cmd, err := decode[wire.DevicePushErrorScopeCmd](s, b, s)
	if err != nil {
		return err
	}
	s.procs.DevicePushErrorScope(cmd.Self, cmd.Filter)
	return nil
}

func handleDeviceTick(s *Server, b []byte) error {
	cmd, err := decode[wire.DeviceTickCmd](s, b, s)
	if err != nil {
		return err
	}
	s.procs.DeviceTick(cmd.Self)
	return nil
}

func handleQueueOnSubmittedWorkDone(s *Server, b []byte) error {
	cmd, err := decode[wire.QueueOnSubmittedWorkDoneCmd](s, b, wire.HandleResolver{})
	if err != nil {
		return err
	}
	h, queue, err := s.known(wire.ObjectTypeQueue, cmd.Self)
	if err != nil {
		return err
	}
	serial := cmd.RequestSerial
	s.procs.QueueOnSubmittedWorkDone(queue, func(status wire.QueueWorkDoneStatus) {
		s.emit(&wire.ReturnQueueWorkDoneCallbackCmd{
			Queue:         h,
			RequestSerial: serial,
			Status:        status,
		})
	})
	return nil
}

func handleQueueSubmit(s *Server, b []byte) error {
	cmd, err := decode[wire.QueueSubmitCmd](s, b, s)
	if err != nil {
		return err
	}
	s.procs.QueueSubmit(cmd.Self, cmd.Commands)
	return nil
}

func handleQueueWriteBuffer(s *Server, b []byte) error {
	cmd, err := decode[wire.QueueWriteBufferCmd](s, b, s)
	if err != nil {
		return err
	}
	s.procs.QueueWriteBuffer(cmd.Self, cmd.Buffer, cmd.BufferOffset, cmd.Data)
	return nil
}
