package nullgpu

import (
	"github.com/gogpu/gputypes"
	"github.com/stealthrocket/dawnwire/internal/wire"
	"github.com/stealthrocket/dawnwire/internal/wire/server"
)

// Procs implements server.Procs on top of the objects of this package.
//
// Calls on objects of the wrong type are ignored, as the server only passes
// back the values returned by the creation procedures.
type Procs struct{}

var _ server.Procs = Procs{}

func device(obj wire.Object) *Device {
	d, _ := obj.(*Device)
	return d
}

func (Procs) DeviceSetCallbacks(obj wire.Object, callbacks server.DeviceCallbacks) {
	if d := device(obj); d != nil {
		d.callbacks = callbacks
	}
}

func (Procs) DeviceCreateBuffer(obj wire.Object, desc *wire.BufferDescriptor) (wire.Object, error) {
	return device(obj).createBuffer(desc)
}

func (Procs) DeviceCreateTexture(obj wire.Object, desc *wire.TextureDescriptor) (wire.Object, error) {
	return device(obj).createTexture(desc)
}

func (Procs) DeviceCreateShaderModule(obj wire.Object, desc *wire.ShaderModuleDescriptor) (wire.Object, error) {
	return device(obj).createShaderModule(desc)
}

func (Procs) DeviceCreateBindGroupLayout(obj wire.Object, desc *wire.BindGroupLayoutDescriptor) (wire.Object, error) {
	return device(obj).createBindGroupLayout(desc)
}

func (Procs) DeviceCreatePipelineLayout(obj wire.Object, desc *wire.PipelineLayoutDescriptor) (wire.Object, error) {
	return device(obj).createPipelineLayout(desc)
}

func (Procs) DeviceCreateCommandEncoder(obj wire.Object, desc *wire.CommandEncoderDescriptor) (wire.Object, error) {
	return device(obj).createCommandEncoder(desc)
}

func (Procs) DeviceCreateComputePipelineAsync(obj wire.Object, desc *wire.ComputePipelineDescriptor, done func(server.PipelineResult)) {
	device(obj).createComputePipelineAsync(desc, done)
}

func (Procs) DeviceCreateRenderPipelineAsync(obj wire.Object, desc *wire.RenderPipelineDescriptor, done func(server.PipelineResult)) {
	device(obj).createRenderPipelineAsync(desc, done)
}

func (Procs) DeviceGetQueue(obj wire.Object) wire.Object { return device(obj).queue }

func (Procs) DevicePushErrorScope(obj wire.Object, filter wire.ErrorFilter) {
	device(obj).pushErrorScope(filter)
}

func (Procs) DevicePopErrorScope(obj wire.Object, done func(server.PopErrorScopeResult)) {
	device(obj).popErrorScope(done)
}

func (Procs) DeviceInjectError(obj wire.Object, t wire.ErrorType, message string) {
	device(obj).injectError(t, message)
}

func (Procs) DeviceTick(obj wire.Object) { device(obj).Tick() }

func (Procs) DeviceDestroy(obj wire.Object) { device(obj).Destroy() }

func (Procs) BufferMapAsync(obj wire.Object, mode gputypes.MapMode, offset, size uint64, done func(wire.MapAsyncStatus, string)) {
	if b, ok := obj.(*Buffer); ok {
		b.mapAsync(mode, offset, size, done)
	}
}

func (Procs) BufferGetMappedRange(obj wire.Object, offset, size uint64) []byte {
	if b, ok := obj.(*Buffer); ok {
		return b.mappedRange(offset, size)
	}
	return nil
}

func (Procs) BufferUnmap(obj wire.Object) {
	if b, ok := obj.(*Buffer); ok {
		b.unmap()
	}
}

func (Procs) BufferDestroy(obj wire.Object) {
	if b, ok := obj.(*Buffer); ok {
		b.destroy()
	}
}

func (Procs) CommandEncoderCopyBufferToBuffer(obj, source wire.Object, sourceOffset uint64, destination wire.Object, destinationOffset, size uint64) {
	if e, ok := obj.(*CommandEncoder); ok {
		src, _ := source.(*Buffer)
		dst, _ := destination.(*Buffer)
		e.copyBufferToBuffer(src, sourceOffset, dst, destinationOffset, size)
	}
}

func (Procs) CommandEncoderFinish(obj wire.Object, desc *wire.CommandBufferDescriptor) (wire.Object, error) {
	e, ok := obj.(*CommandEncoder)
	if !ok {
		return nil, ErrValidation
	}
	return e.finish(desc)
}

func (Procs) QueueSubmit(obj wire.Object, commands []wire.Object) {
	if q, ok := obj.(*Queue); ok {
		q.submit(commands)
	}
}

func (Procs) QueueWriteBuffer(obj, buffer wire.Object, offset uint64, data []byte) {
	if q, ok := obj.(*Queue); ok {
		b, _ := buffer.(*Buffer)
		q.writeBuffer(b, offset, data)
	}
}

func (Procs) QueueOnSubmittedWorkDone(obj wire.Object, done func(wire.QueueWorkDoneStatus)) {
	if q, ok := obj.(*Queue); ok {
		q.onSubmittedWorkDone(done)
		return
	}
	done(wire.QueueWorkDoneStatusError)
}

func (Procs) Release(t wire.ObjectType, obj wire.Object) {
	if b, ok := obj.(*Buffer); ok {
		b.destroy()
	}
	if r, ok := obj.(interface{ owner() *Device }); ok {
		r.owner().released()
	}
}
