package server_test

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/google/go-cmp/cmp"
	"github.com/stealthrocket/dawnwire/internal/assert"
	"github.com/stealthrocket/dawnwire/internal/nullgpu"
	"github.com/stealthrocket/dawnwire/internal/transport"
	"github.com/stealthrocket/dawnwire/internal/wire"
	"github.com/stealthrocket/dawnwire/internal/wire/client"
	"github.com/stealthrocket/dawnwire/internal/wire/server"
)

const computeShader = `
@compute @workgroup_size(1)
fn main() {}
`

var device = wire.DeviceHandle

type harness struct {
	t      *testing.T
	device *nullgpu.Device
	server *server.Server
	out    *transport.Buffer
}

func newHarness(t *testing.T) *harness {
	h := &harness{
		t:      t,
		device: nullgpu.NewDevice(nullgpu.DefaultLimits),
		out:    transport.NewBuffer(0),
	}
	h.server = server.New(nullgpu.Procs{}, h.device, h.out, server.Config{})
	return h
}

func (h *harness) send(cmds ...wire.Command) error {
	h.t.Helper()
	var b []byte
	for _, cmd := range cmds {
		p, err := wire.SerializeCommand(cmd, wire.HandleProvider{})
		assert.OK(h.t, err)
		b = append(b, p...)
	}
	n, err := h.server.HandleCommands(b)
	if err == nil {
		assert.Equal(h.t, n, len(b))
	}
	return err
}

// returns decodes the return commands emitted so far.
func (h *harness) returns() []wire.Command {
	h.t.Helper()
	var cmds []wire.Command
	for b := h.out.Take(); len(b) > 0; {
		cmd, rest, err := wire.DecodeCommand(b, wire.HeapAllocator{}, wire.HandleResolver{})
		assert.OK(h.t, err)
		cmds = append(cmds, cmd)
		b = rest
	}
	return cmds
}

func protocolError(t *testing.T, err error, cmd wire.WireCmd, cause error) {
	t.Helper()
	var perr *wire.ProtocolError
	if !errors.As(err, &perr) {
		t.Fatalf("expected a protocol error, got %v", err)
	}
	assert.Equal(t, perr.Command, uint32(cmd))
	assert.Error(t, err, cause)
}

func mappableBuffer(id uint32, size uint64) *wire.DeviceCreateBufferCmd {
	return &wire.DeviceCreateBufferCmd{
		Self: device,
		Descriptor: wire.BufferDescriptor{
			Label: "staging",
			Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
			Size:  size,
		},
		Result: wire.ObjectHandle{ID: id},
	}
}

func TestCommandsAreProcessedInOrder(t *testing.T) {
	h := newHarness(t)
	buffer := wire.ObjectHandle{ID: 5}

	err := h.send(
		mappableBuffer(5, 16),
		&wire.DestroyObjectCmd{ObjectType: wire.ObjectTypeBuffer, ObjectID: buffer},
		&wire.BufferMapAsyncCmd{Self: buffer, RequestSerial: 1, Mode: gputypes.MapModeRead, Size: 16},
	)
	protocolError(t, err, wire.BufferMapAsync, wire.ErrUnknownObject)
	assert.Equal(t, h.device.Live(), 0)
	assert.Equal(t, h.device.Pending(), 0)

	// The connection is dead, everything after the error is refused.
	_, err = h.server.HandleCommands(nil)
	assert.Error(t, err, wire.ErrUnknownObject)
	assert.Error(t, h.send(&wire.DeviceTickCmd{Self: device}), wire.ErrUnknownObject)
	assert.Equal(t, len(h.returns()), 0)
}

func TestStaleGenerationIsFatal(t *testing.T) {
	h := newHarness(t)
	gen0 := wire.ObjectHandle{ID: 1, Generation: 0}
	gen1 := wire.ObjectHandle{ID: 1, Generation: 1}

	assert.OK(t, h.send(
		mappableBuffer(1, 16),
		&wire.DestroyObjectCmd{ObjectType: wire.ObjectTypeBuffer, ObjectID: gen0},
	))
	_, res := h.server.GetFromID(wire.ObjectTypeBuffer, gen0)
	assert.Equal(t, res, wire.FatalError)

	create := mappableBuffer(1, 16)
	create.Result = gen1
	assert.OK(t, h.send(create))
	b, res := h.server.GetFromID(wire.ObjectTypeBuffer, gen1)
	assert.Equal(t, res, wire.Success)
	assert.True(t, b.(*nullgpu.Buffer).IsValid(), "buffer is invalid")

	err := h.send(&wire.BufferMapAsyncCmd{Self: gen0, RequestSerial: 1, Mode: gputypes.MapModeRead, Size: 16})
	protocolError(t, err, wire.BufferMapAsync, wire.ErrStaleGeneration)
}

func TestGenerationMustIncrease(t *testing.T) {
	h := newHarness(t)
	handle := wire.ObjectHandle{ID: 1, Generation: 3}

	create := mappableBuffer(1, 16)
	create.Result = handle
	assert.OK(t, h.send(create, &wire.DestroyObjectCmd{ObjectType: wire.ObjectTypeBuffer, ObjectID: handle}))

	err := h.send(create)
	protocolError(t, err, wire.DeviceCreateBuffer, wire.ErrStaleGeneration)
}

func TestComputePipelineCompletion(t *testing.T) {
	h := newHarness(t)
	module := wire.ObjectHandle{ID: 1}
	pipeline := wire.ObjectHandle{ID: 1}

	assert.OK(t, h.send(
		&wire.DeviceCreateShaderModuleCmd{
			Self: device,
			Descriptor: wire.ShaderModuleDescriptor{
				Label:       "compute",
				NextInChain: []wire.ChainedStruct{&wire.ShaderSourceWGSL{Code: computeShader}},
			},
			Result: module,
		},
		&wire.DeviceCreateComputePipelineAsyncCmd{
			Self:          device,
			RequestSerial: 42,
			Result:        pipeline,
			Descriptor: wire.ComputePipelineDescriptor{
				Label:   "main",
				Compute: wire.ProgrammableStage{Module: module, EntryPoint: "main"},
			},
		},
	))
	_, state := h.server.State(wire.ObjectTypeComputePipeline, pipeline.ID)
	assert.Equal(t, state, wire.SlotReserved)
	assert.Equal(t, len(h.returns()), 0)

	assert.OK(t, h.send(&wire.DeviceTickCmd{Self: device}))
	want := []wire.Command{
		&wire.ReturnDeviceCreateComputePipelineAsyncCallbackCmd{
			Device:        device,
			RequestSerial: 42,
			Status:        wire.CreatePipelineAsyncStatusSuccess,
		},
		&wire.ReturnDeviceLoggingCallbackCmd{
			Device:  device,
			Type:    wire.LoggingTypeVerbose,
			Message: "completed 1 asynchronous operations",
		},
	}
	if diff := cmp.Diff(want, h.returns()); diff != "" {
		t.Fatalf("return commands mismatch (-want +got):\n%s", diff)
	}

	p, res := h.server.GetFromID(wire.ObjectTypeComputePipeline, pipeline)
	assert.Equal(t, res, wire.Success)
	assert.Equal(t, p.(*nullgpu.ComputePipeline).EntryPoint(), "main")
}

func TestComputePipelineFailureFreesTheID(t *testing.T) {
	h := newHarness(t)
	module := wire.ObjectHandle{ID: 1}
	pipeline := wire.ObjectHandle{ID: 1}

	assert.OK(t, h.send(
		&wire.DeviceCreateShaderModuleCmd{
			Self: device,
			Descriptor: wire.ShaderModuleDescriptor{
				NextInChain: []wire.ChainedStruct{&wire.ShaderSourceWGSL{Code: computeShader}},
			},
			Result: module,
		},
		&wire.DeviceCreateComputePipelineAsyncCmd{
			Self:          device,
			RequestSerial: 1,
			Result:        pipeline,
			Descriptor: wire.ComputePipelineDescriptor{
				Compute: wire.ProgrammableStage{Module: module, EntryPoint: "missing"},
			},
		},
		&wire.DeviceTickCmd{Self: device},
	))

	cmds := h.returns()
	assert.True(t, len(cmds) > 0, "no return command")
	cb, ok := cmds[0].(*wire.ReturnDeviceCreateComputePipelineAsyncCallbackCmd)
	assert.True(t, ok, "unexpected return command")
	assert.Equal(t, cb.Status, wire.CreatePipelineAsyncStatusValidationError)
	assert.True(t, cb.Message != "", "missing error message")

	_, state := h.server.State(wire.ObjectTypeComputePipeline, pipeline.ID)
	assert.Equal(t, state, wire.SlotFree)
	assert.Equal(t, h.device.Live(), 1) // the shader module
}

func TestReferenceToReservedObjectIsFatal(t *testing.T) {
	h := newHarness(t)
	module := wire.ObjectHandle{ID: 1}
	pipeline := wire.ObjectHandle{ID: 1}

	assert.OK(t, h.send(
		&wire.DeviceCreateShaderModuleCmd{
			Self: device,
			Descriptor: wire.ShaderModuleDescriptor{
				NextInChain: []wire.ChainedStruct{&wire.ShaderSourceWGSL{Code: computeShader}},
			},
			Result: module,
		},
		&wire.DeviceCreateComputePipelineAsyncCmd{
			Self:          device,
			RequestSerial: 1,
			Result:        pipeline,
			Descriptor: wire.ComputePipelineDescriptor{
				Compute: wire.ProgrammableStage{Module: module},
			},
		},
	))
	err := h.send(&wire.DestroyObjectCmd{ObjectType: wire.ObjectTypeComputePipeline, ObjectID: pipeline})
	protocolError(t, err, wire.DestroyObject, wire.ErrReservedObject)
}

func TestErrorObjectsAreForwarded(t *testing.T) {
	h := newHarness(t)
	queue := wire.ObjectHandle{ID: 1}
	buffer := wire.ObjectHandle{ID: 1}

	assert.OK(t, h.send(
		&wire.DeviceGetQueueCmd{Self: device, Result: queue},
		&wire.DeviceCreateBufferCmd{
			Self:       device,
			Descriptor: wire.BufferDescriptor{Label: "unusable", Size: 4},
			Result:     buffer,
		},
		&wire.QueueWriteBufferCmd{Self: queue, Buffer: buffer, Data: []byte{1, 2, 3, 4}},
	))
	assert.OK(t, h.server.Err())

	_, state := h.server.State(wire.ObjectTypeBuffer, buffer.ID)
	assert.Equal(t, state, wire.SlotError)
	_, res := h.server.GetFromID(wire.ObjectTypeBuffer, buffer)
	assert.Equal(t, res, wire.ErrorObject)

	var errs []string
	for _, cmd := range h.returns() {
		if e, ok := cmd.(*wire.ReturnDeviceUncapturedErrorCallbackCmd); ok {
			assert.Equal(t, e.Type, wire.ErrorTypeValidation)
			errs = append(errs, e.Message)
		}
	}
	assert.Equal(t, len(errs), 2)
	assert.HasPrefix(t, errs[0], "validation error: buffer \"unusable\" has no usage")
	assert.HasPrefix(t, errs[1], "validation error: queue write: buffer \"unusable\" is invalid")
}

func TestMappedDataUpdates(t *testing.T) {
	h := newHarness(t)
	buffer := wire.ObjectHandle{ID: 1}

	assert.OK(t, h.send(
		&wire.DeviceCreateBufferCmd{
			Self: device,
			Descriptor: wire.BufferDescriptor{
				Usage:            gputypes.BufferUsageMapWrite | gputypes.BufferUsageCopySrc,
				Size:             16,
				MappedAtCreation: true,
			},
			Result: buffer,
		},
		&wire.BufferUpdateMappedDataCmd{Self: buffer, Offset: 4, Data: []byte{1, 2, 3, 4}},
		&wire.BufferUnmapCmd{Self: buffer},
	))
	b, _ := h.server.GetFromID(wire.ObjectTypeBuffer, buffer)
	assert.EqualAll(t, b.(*nullgpu.Buffer).Bytes(), []byte{0, 0, 0, 0, 1, 2, 3, 4, 0, 0, 0, 0, 0, 0, 0, 0})

	// The mapping was revoked by the unmap.
	err := h.send(&wire.BufferUpdateMappedDataCmd{Self: buffer, Data: []byte{1, 2, 3, 4}})
	var perr *wire.ProtocolError
	assert.True(t, errors.As(err, &perr), "expected a protocol error")
	assert.Equal(t, perr.Command, uint32(wire.BufferUpdateMappedData))
}

func TestMappedDataUpdateOutOfRangeIsFatal(t *testing.T) {
	h := newHarness(t)
	buffer := wire.ObjectHandle{ID: 1}

	err := h.send(
		&wire.DeviceCreateBufferCmd{
			Self: device,
			Descriptor: wire.BufferDescriptor{
				Usage:            gputypes.BufferUsageMapWrite | gputypes.BufferUsageCopySrc,
				Size:             16,
				MappedAtCreation: true,
			},
			Result: buffer,
		},
		&wire.BufferUpdateMappedDataCmd{Self: buffer, Offset: 8, Data: make([]byte, 16)},
	)
	var perr *wire.ProtocolError
	assert.True(t, errors.As(err, &perr), "expected a protocol error")
	assert.Equal(t, perr.Command, uint32(wire.BufferUpdateMappedData))
}

func TestDestroyingTheDeviceIsFatal(t *testing.T) {
	h := newHarness(t)
	err := h.send(&wire.DestroyObjectCmd{ObjectType: wire.ObjectTypeDevice, ObjectID: device})
	var perr *wire.ProtocolError
	assert.True(t, errors.As(err, &perr), "expected a protocol error")
	assert.Equal(t, perr.Command, uint32(wire.DestroyObject))
}

func TestDestroyingTheNullObjectIsFatal(t *testing.T) {
	h := newHarness(t)
	err := h.send(&wire.DestroyObjectCmd{ObjectType: wire.ObjectTypeBuffer})
	protocolError(t, err, wire.DestroyObject, wire.ErrNullObject)
}

func TestUnknownCommandIsFatal(t *testing.T) {
	h := newHarness(t)
	b := make([]byte, wire.HeaderSize)
	b[0] = wire.HeaderSize
	b[4] = 0xFF
	b[5] = 0xFF
	_, err := h.server.HandleCommands(b)
	assert.Error(t, err, wire.ErrUnknownCommand)
}

func TestPartialCommandIsNotConsumed(t *testing.T) {
	h := newHarness(t)
	b, err := wire.SerializeCommand(&wire.DeviceInjectErrorCmd{
		Self:    device,
		Type:    wire.ErrorTypeInternal,
		Message: "injected",
	}, wire.HandleProvider{})
	assert.OK(t, err)

	n, err := h.server.HandleCommands(b[:len(b)-1])
	assert.Error(t, err, wire.ErrShortCommand)
	assert.Equal(t, n, 0)
	assert.OK(t, h.server.Err())

	n, err = h.server.HandleCommands(b)
	assert.OK(t, err)
	assert.Equal(t, n, len(b))

	want := []wire.Command{
		&wire.ReturnDeviceUncapturedErrorCallbackCmd{Device: device, Type: wire.ErrorTypeInternal, Message: "injected"},
	}
	if diff := cmp.Diff(want, h.returns()); diff != "" {
		t.Fatalf("return commands mismatch (-want +got):\n%s", diff)
	}
}

func TestErrorScopes(t *testing.T) {
	h := newHarness(t)
	assert.OK(t, h.send(
		&wire.DevicePushErrorScopeCmd{Self: device, Filter: wire.ErrorFilterValidation},
		&wire.DeviceCreateBufferCmd{Self: device, Descriptor: wire.BufferDescriptor{Size: 4}, Result: wire.ObjectHandle{ID: 1}},
		&wire.DevicePopErrorScopeCmd{Self: device, RequestSerial: 7},
		&wire.DevicePopErrorScopeCmd{Self: device, RequestSerial: 8},
	))

	cmds := h.returns()
	assert.Equal(t, len(cmds), 2)
	first := cmds[0].(*wire.ReturnDevicePopErrorScopeCallbackCmd)
	assert.Equal(t, first.RequestSerial, 7)
	assert.Equal(t, first.Status, wire.PopErrorScopeStatusSuccess)
	assert.Equal(t, first.Type, wire.ErrorTypeValidation)
	second := cmds[1].(*wire.ReturnDevicePopErrorScopeCallbackCmd)
	assert.Equal(t, second.RequestSerial, 8)
	assert.Equal(t, second.Status, wire.PopErrorScopeStatusEmptyStack)
}

func TestDeviceDestroyReportsLoss(t *testing.T) {
	h := newHarness(t)
	buffer := wire.ObjectHandle{ID: 1}
	assert.OK(t, h.send(
		mappableBuffer(1, 16),
		&wire.BufferMapAsyncCmd{Self: buffer, RequestSerial: 3, Mode: gputypes.MapModeRead, Size: 16},
		&wire.DeviceDestroyCmd{Self: device},
	))

	want := []wire.Command{
		&wire.ReturnDeviceLostCallbackCmd{
			Device:  device,
			Reason:  wire.DeviceLostReasonDestroyed,
			Message: "device was destroyed",
		},
		&wire.ReturnBufferMapAsyncCallbackCmd{
			Buffer:        buffer,
			RequestSerial: 3,
			Status:        wire.MapAsyncStatusAborted,
			Message:       nullgpu.ErrDeviceLost.Error(),
		},
		&wire.ReturnDeviceLoggingCallbackCmd{
			Device:  device,
			Type:    wire.LoggingTypeVerbose,
			Message: "completed 1 asynchronous operations",
		},
	}
	if diff := cmp.Diff(want, h.returns()); diff != "" {
		t.Fatalf("return commands mismatch (-want +got):\n%s", diff)
	}
}

// pipe connects a client to a server over a loopback transport.
type pipe struct {
	t      *testing.T
	device *nullgpu.Device
	server *server.Server
	client *client.Client
	loop   *transport.Loopback
}

func newPipe(t *testing.T) *pipe {
	p := &pipe{t: t, device: nullgpu.NewDevice(nullgpu.DefaultLimits)}
	loop, err := transport.NewLoopback(64<<10, func(s wire.CommandSerializer) (wire.CommandHandler, error) {
		p.server = server.New(nullgpu.Procs{}, p.device, s, server.Config{})
		return p.server, nil
	})
	assert.OK(t, err)
	p.loop = loop
	p.client = client.New(loop, client.Config{StrictSerials: true})
	return p
}

// sync delivers the commands of the client, ticks the device, and delivers
// the return commands of the server.
func (p *pipe) sync() {
	p.t.Helper()
	p.client.Device().Tick()
	assert.OK(p.t, p.client.Flush())
	assert.OK(p.t, p.loop.Poll(p.client))
}

func TestDestroyedBufferIDIsRecycled(t *testing.T) {
	p := newPipe(t)
	d := p.client.Device()

	desc := wire.BufferDescriptor{Usage: gputypes.BufferUsageCopyDst, Size: 64}
	b0 := d.CreateBuffer(desc)
	assert.Equal(t, b0.Handle(), wire.ObjectHandle{ID: 1, Generation: 0})
	p.sync()
	_, res := p.server.GetFromID(wire.ObjectTypeBuffer, b0.Handle())
	assert.Equal(t, res, wire.Success)

	b0.Release()
	p.sync()
	_, res = p.server.GetFromID(wire.ObjectTypeBuffer, wire.ObjectHandle{ID: 1, Generation: 0})
	assert.Equal(t, res, wire.FatalError)

	b1 := d.CreateBuffer(desc)
	assert.Equal(t, b1.Handle(), wire.ObjectHandle{ID: 1, Generation: 1})
	p.sync()
	_, res = p.server.GetFromID(wire.ObjectTypeBuffer, b1.Handle())
	assert.Equal(t, res, wire.Success)
	assert.Equal(t, p.device.Live(), 1)
}

func TestReadBackThroughCopy(t *testing.T) {
	p := newPipe(t)
	d := p.client.Device()
	q := d.GetQueue()

	src := d.CreateBuffer(wire.BufferDescriptor{Usage: gputypes.BufferUsageCopySrc | gputypes.BufferUsageCopyDst, Size: 8})
	dst := d.CreateBuffer(wire.BufferDescriptor{Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst, Size: 8})
	q.WriteBuffer(src, 0, []byte{1, 2, 3, 4, 5, 6, 7, 8})

	e := d.CreateCommandEncoder(nil)
	e.CopyBufferToBuffer(src, 4, dst, 0, 4)
	q.Submit(e.Finish(nil))

	done := q.OnSubmittedWorkDone()
	m := dst.MapAsync(gputypes.MapModeRead, 0, 8)
	p.sync()

	assert.True(t, done.Done(), "work done future did not complete")
	assert.Equal(t, done.Result(), wire.QueueWorkDoneStatusSuccess)
	assert.True(t, m.Done(), "map future did not complete")
	assert.Equal(t, m.Result().Status, wire.MapAsyncStatusSuccess)
	assert.EqualAll(t, dst.GetMappedRange(0, 8), []byte{5, 6, 7, 8, 0, 0, 0, 0})
	assert.Equal(t, p.client.PendingRequests(), 0)
}

func TestComputePipelineEndToEnd(t *testing.T) {
	p := newPipe(t)
	d := p.client.Device()

	module := d.CreateShaderModule(wire.ShaderModuleDescriptor{
		NextInChain: []wire.ChainedStruct{&wire.ShaderSourceWGSL{Code: computeShader}},
	})
	f := d.CreateComputePipelineAsync(wire.ComputePipelineDescriptor{
		Compute: wire.ProgrammableStage{Module: module},
	})

	calls := 0
	f.OnComplete(func(r client.PipelineResult[*client.ComputePipeline]) { calls++ })
	assert.False(t, f.Done(), "pipeline completed before the device was ticked")

	p.sync()
	assert.Equal(t, calls, 1)
	assert.Equal(t, f.Result().Status, wire.CreatePipelineAsyncStatusSuccess)
	pipeline := f.Result().Pipeline
	assert.True(t, pipeline != nil, "missing pipeline")

	_, res := p.server.GetFromID(wire.ObjectTypeComputePipeline, pipeline.Handle())
	assert.Equal(t, res, wire.Success)

	p.sync()
	assert.Equal(t, calls, 1)
}

func TestInvalidShaderModule(t *testing.T) {
	p := newPipe(t)
	d := p.client.Device()

	var errs []string
	d.SetUncapturedErrorCallback(func(t wire.ErrorType, message string) { errs = append(errs, message) })

	module := d.CreateShaderModule(wire.ShaderModuleDescriptor{
		Label:       "broken",
		NextInChain: []wire.ChainedStruct{&wire.ShaderSourceWGSL{Code: "fn main( {"}},
	})
	f := d.CreateComputePipelineAsync(wire.ComputePipelineDescriptor{
		Compute: wire.ProgrammableStage{Module: module, EntryPoint: "main"},
	})
	p.sync()

	assert.Equal(t, len(errs), 1)
	assert.HasPrefix(t, errs[0], "validation error: shader module \"broken\"")
	assert.Equal(t, f.Result().Status, wire.CreatePipelineAsyncStatusValidationError)
	assert.True(t, f.Result().Pipeline == nil, "unexpected pipeline")
}

func TestServerFatalErrorDisconnectsTheClient(t *testing.T) {
	p := newPipe(t)
	d := p.client.Device()

	lost := 0
	d.SetDeviceLostCallback(func(reason wire.DeviceLostReason, message string) {
		lost++
		assert.Equal(t, reason, wire.DeviceLostReasonInstanceDropped)
	})
	f := d.PopErrorScope()

	// Forge a reference the server never heard about.
	space, err := p.loop.GetCmdSpace((&wire.DestroyObjectCmd{}).RequiredSize())
	assert.OK(t, err)
	cmd := &wire.DestroyObjectCmd{ObjectType: wire.ObjectTypeTexture, ObjectID: wire.ObjectHandle{ID: 9}}
	assert.OK(t, cmd.Serialize(space, wire.HandleProvider{}))

	assert.Error(t, p.client.Flush(), wire.ErrUnknownObject)
	assert.True(t, p.client.IsDisconnected(), "client is still connected")
	assert.Equal(t, lost, 1)
	assert.Equal(t, f.Result().Status, wire.PopErrorScopeStatusInstanceDropped)
	assert.Error(t, p.server.Err(), wire.ErrUnknownObject)
}
