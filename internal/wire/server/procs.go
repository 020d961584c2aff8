package server

import (
	"github.com/gogpu/gputypes"
	"github.com/stealthrocket/dawnwire/internal/wire"
)

// Procs is the procedure table commands are replayed against.
//
// Objects are opaque to the server, they are the values returned by the
// creation procedures and must be comparable. A creation that fails still
// returns an object along with the error: the server records it as an error
// object and passes it back to later calls referencing it, which must treat
// it as a no-op producing more errors.
//
// Byte slices passed to the procedures are only valid for the duration of
// the call.
type Procs interface {
	DeviceSetCallbacks(device wire.Object, callbacks DeviceCallbacks)
	DeviceCreateBuffer(device wire.Object, desc *wire.BufferDescriptor) (wire.Object, error)
	DeviceCreateTexture(device wire.Object, desc *wire.TextureDescriptor) (wire.Object, error)
	DeviceCreateShaderModule(device wire.Object, desc *wire.ShaderModuleDescriptor) (wire.Object, error)
	DeviceCreateBindGroupLayout(device wire.Object, desc *wire.BindGroupLayoutDescriptor) (wire.Object, error)
	DeviceCreatePipelineLayout(device wire.Object, desc *wire.PipelineLayoutDescriptor) (wire.Object, error)
	DeviceCreateCommandEncoder(device wire.Object, desc *wire.CommandEncoderDescriptor) (wire.Object, error)
	DeviceCreateComputePipelineAsync(device wire.Object, desc *wire.ComputePipelineDescriptor, done func(PipelineResult))
	DeviceCreateRenderPipelineAsync(device wire.Object, desc *wire.RenderPipelineDescriptor, done func(PipelineResult))
	DeviceGetQueue(device wire.Object) wire.Object
	DevicePushErrorScope(device wire.Object, filter wire.ErrorFilter)
	DevicePopErrorScope(device wire.Object, done func(PopErrorScopeResult))
	DeviceInjectError(device wire.Object, t wire.ErrorType, message string)
	DeviceTick(device wire.Object)
	DeviceDestroy(device wire.Object)

	BufferMapAsync(buffer wire.Object, mode gputypes.MapMode, offset, size uint64, done func(wire.MapAsyncStatus, string))
	// BufferGetMappedRange returns the memory of a mapped range, or nil if
	// the range is not mapped.
	BufferGetMappedRange(buffer wire.Object, offset, size uint64) []byte
	BufferUnmap(buffer wire.Object)
	BufferDestroy(buffer wire.Object)

	CommandEncoderCopyBufferToBuffer(encoder, source wire.Object, sourceOffset uint64, destination wire.Object, destinationOffset, size uint64)
	CommandEncoderFinish(encoder wire.Object, desc *wire.CommandBufferDescriptor) (wire.Object, error)

	QueueSubmit(queue wire.Object, commands []wire.Object)
	QueueWriteBuffer(queue, buffer wire.Object, offset uint64, data []byte)
	QueueOnSubmittedWorkDone(queue wire.Object, done func(wire.QueueWorkDoneStatus))

	// Release drops the reference the server held on an object.
	Release(t wire.ObjectType, obj wire.Object)
}

// DeviceCallbacks are the notifications a device raises outside of any
// request.
type DeviceCallbacks struct {
	UncapturedError func(wire.ErrorType, string)
	Lost            func(wire.DeviceLostReason, string)
	Logging         func(wire.LoggingType, string)
}

// PipelineResult is the completion of an asynchronous pipeline creation.
// Pipeline is ignored unless Status is Success.
type PipelineResult struct {
	Status   wire.CreatePipelineAsyncStatus
	Pipeline wire.Object
	Message  string
}

type PopErrorScopeResult struct {
	Status  wire.PopErrorScopeStatus
	Type    wire.ErrorType
	Message string
}
