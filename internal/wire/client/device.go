package client

import (
	"github.com/stealthrocket/dawnwire/internal/wire"
)

// PipelineResult is the completion of an asynchronous pipeline creation.
// Pipeline is nil unless Status is Success.
type PipelineResult[P any] struct {
	Status   wire.CreatePipelineAsyncStatus
	Pipeline P
	Message  string
}

type PopErrorScopeResult struct {
	Status  wire.PopErrorScopeStatus
	Type    wire.ErrorType
	Message string
}

type pipelineRequest[P proxy] struct {
	pipeline P
	future   *Future[PipelineResult[P]]
}

type Device struct {
	object
	queue *Queue

	onUncapturedError func(wire.ErrorType, string)
	onLost            func(wire.DeviceLostReason, string)
	onLogging         func(wire.LoggingType, string)

	lost        bool
	lostReason  wire.DeviceLostReason
	lostMessage string
}

func (d *Device) base() *object {
	if d == nil {
		return nil
	}
	return &d.object
}

// SetUncapturedErrorCallback installs the function called for errors that
// no error scope captured.
func (d *Device) SetUncapturedErrorCallback(fn func(wire.ErrorType, string)) {
	d.onUncapturedError = fn
}

// SetDeviceLostCallback installs the function called once when the device is
// lost. It is called immediately if the device is already lost.
func (d *Device) SetDeviceLostCallback(fn func(wire.DeviceLostReason, string)) {
	d.onLost = fn
	if d.lost && fn != nil {
		d.onLost = nil
		fn(d.lostReason, d.lostMessage)
	}
}

func (d *Device) SetLoggingCallback(fn func(wire.LoggingType, string)) {
	d.onLogging = fn
}

// IsLost reports whether the device was lost, and why.
func (d *Device) IsLost() (bool, wire.DeviceLostReason, string) {
	return d.lost, d.lostReason, d.lostMessage
}

func (d *Device) lose(reason wire.DeviceLostReason, message string) {
	if d.lost {
		return
	}
	d.lost, d.lostReason, d.lostMessage = true, reason, message
	if fn := d.onLost; fn != nil {
		d.onLost = nil
		fn(reason, message)
	}
}

func (d *Device) uncapturedError(t wire.ErrorType, message string) {
	if fn := d.onUncapturedError; fn != nil && !d.lost {
		fn(t, message)
	}
}

func (d *Device) logging(t wire.LoggingType, message string) {
	if fn := d.onLogging; fn != nil {
		fn(t, message)
	}
}

func (d *Device) CreateBuffer(desc wire.BufferDescriptor) *Buffer {
	b := &Buffer{size: desc.Size, usage: desc.Usage}
	d.client.allocate(wire.ObjectTypeBuffer, b)
	if desc.MappedAtCreation {
		b.mapAtCreation()
	}
	d.client.serialize(&wire.DeviceCreateBufferCmd{
		Self:       d,
		Descriptor: desc,
		Result:     b.handle,
	}, b)
	return b
}

func (d *Device) CreateTexture(desc wire.TextureDescriptor) *Texture {
	t := new(Texture)
	d.client.allocate(wire.ObjectTypeTexture, t)
	d.client.serialize(&wire.DeviceCreateTextureCmd{
		Self:       d,
		Descriptor: desc,
		Result:     t.handle,
	}, t)
	return t
}

func (d *Device) CreateShaderModule(desc wire.ShaderModuleDescriptor) *ShaderModule {
	m := new(ShaderModule)
	d.client.allocate(wire.ObjectTypeShaderModule, m)
	d.client.serialize(&wire.DeviceCreateShaderModuleCmd{
		Self:       d,
		Descriptor: desc,
		Result:     m.handle,
	}, m)
	return m
}

func (d *Device) CreateBindGroupLayout(desc wire.BindGroupLayoutDescriptor) *BindGroupLayout {
	l := new(BindGroupLayout)
	d.client.allocate(wire.ObjectTypeBindGroupLayout, l)
	d.client.serialize(&wire.DeviceCreateBindGroupLayoutCmd{
		Self:       d,
		Descriptor: desc,
		Result:     l.handle,
	}, l)
	return l
}

func (d *Device) CreatePipelineLayout(desc wire.PipelineLayoutDescriptor) *PipelineLayout {
	l := new(PipelineLayout)
	d.client.allocate(wire.ObjectTypePipelineLayout, l)
	d.client.serialize(&wire.DeviceCreatePipelineLayoutCmd{
		Self:       d,
		Descriptor: desc,
		Result:     l.handle,
	}, l)
	return l
}

func (d *Device) CreateCommandEncoder(desc *wire.CommandEncoderDescriptor) *CommandEncoder {
	e := new(CommandEncoder)
	d.client.allocate(wire.ObjectTypeCommandEncoder, e)
	d.client.serialize(&wire.DeviceCreateCommandEncoderCmd{
		Self:       d,
		Descriptor: desc,
		Result:     e.handle,
	}, e)
	return e
}

// CreateComputePipelineAsync starts compiling a compute pipeline. The id of
// the pipeline is reserved right away, the proxy is handed out with the
// successful completion.
func (d *Device) CreateComputePipelineAsync(desc wire.ComputePipelineDescriptor) *Future[PipelineResult[*ComputePipeline]] {
	c := d.client
	if c.disconnected {
		return completed(PipelineResult[*ComputePipeline]{
			Status:  wire.CreatePipelineAsyncStatusInstanceDropped,
			Message: ConnectionLostMessage,
		})
	}
	req := &pipelineRequest[*ComputePipeline]{
		pipeline: new(ComputePipeline),
		future:   new(Future[PipelineResult[*ComputePipeline]]),
	}
	c.reserve(wire.ObjectTypeComputePipeline, req.pipeline)
	serial := c.nextSerial()
	c.computePipelines.add(serial, req)

	cmd := &wire.DeviceCreateComputePipelineAsyncCmd{
		Self:          d,
		RequestSerial: serial,
		Result:        req.pipeline.handle,
		Descriptor:    desc,
	}
	if !c.serialize(cmd, nil) {
		if r, ok, _ := c.computePipelines.take(serial); ok {
			c.dropPipeline(&r.pipeline.object)
			r.future.complete(PipelineResult[*ComputePipeline]{
				Status:  wire.CreatePipelineAsyncStatusValidationError,
				Message: "pipeline creation could not be sent",
			})
		}
	}
	return req.future
}

func (d *Device) CreateRenderPipelineAsync(desc wire.RenderPipelineDescriptor) *Future[PipelineResult[*RenderPipeline]] {
	c := d.client
	if c.disconnected {
		return completed(PipelineResult[*RenderPipeline]{
			Status:  wire.CreatePipelineAsyncStatusInstanceDropped,
			Message: ConnectionLostMessage,
		})
	}
	req := &pipelineRequest[*RenderPipeline]{
		pipeline: new(RenderPipeline),
		future:   new(Future[PipelineResult[*RenderPipeline]]),
	}
	c.reserve(wire.ObjectTypeRenderPipeline, req.pipeline)
	serial := c.nextSerial()
	c.renderPipelines.add(serial, req)

	cmd := &wire.DeviceCreateRenderPipelineAsyncCmd{
		Self:          d,
		RequestSerial: serial,
		Result:        req.pipeline.handle,
		Descriptor:    desc,
	}
	if !c.serialize(cmd, nil) {
		if r, ok, _ := c.renderPipelines.take(serial); ok {
			c.dropPipeline(&r.pipeline.object)
			r.future.complete(PipelineResult[*RenderPipeline]{
				Status:  wire.CreatePipelineAsyncStatusValidationError,
				Message: "pipeline creation could not be sent",
			})
		}
	}
	return req.future
}

// GetQueue returns the queue of the device. The queue is owned by the device,
// callers which keep it beyond the device must add a reference.
func (d *Device) GetQueue() *Queue {
	if d.queue == nil {
		q := new(Queue)
		d.client.allocate(wire.ObjectTypeQueue, q)
		d.client.serialize(&wire.DeviceGetQueueCmd{Self: d, Result: q.handle}, q)
		d.queue = q
	}
	return d.queue
}

func (d *Device) PushErrorScope(filter wire.ErrorFilter) {
	d.client.serialize(&wire.DevicePushErrorScopeCmd{Self: d, Filter: filter}, nil)
}

func (d *Device) PopErrorScope() *Future[PopErrorScopeResult] {
	c := d.client
	if c.disconnected {
		return completed(PopErrorScopeResult{
			Status:  wire.PopErrorScopeStatusInstanceDropped,
			Message: ConnectionLostMessage,
		})
	}
	f := new(Future[PopErrorScopeResult])
	serial := c.nextSerial()
	c.errorScopes.add(serial, f)
	if !c.serialize(&wire.DevicePopErrorScopeCmd{Self: d, RequestSerial: serial}, nil) {
		if f, ok, _ := c.errorScopes.take(serial); ok {
			f.complete(PopErrorScopeResult{Status: wire.PopErrorScopeStatusEmptyStack})
		}
	}
	return f
}

// InjectError makes the server raise an error of the given type, for tests.
func (d *Device) InjectError(t wire.ErrorType, message string) {
	d.client.serialize(&wire.DeviceInjectErrorCmd{Self: d, Type: t, Message: message}, nil)
}

// Tick lets the server make progress on asynchronous work.
func (d *Device) Tick() {
	d.client.serialize(&wire.DeviceTickCmd{Self: d}, nil)
}

// Destroy destroys the device. The server reports the loss with reason
// Destroyed.
func (d *Device) Destroy() {
	d.client.serialize(&wire.DeviceDestroyCmd{Self: d}, nil)
}
