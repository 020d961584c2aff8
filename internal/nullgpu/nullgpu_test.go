package nullgpu_test

import (
	"strings"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/stealthrocket/dawnwire/internal/assert"
	"github.com/stealthrocket/dawnwire/internal/nullgpu"
	"github.com/stealthrocket/dawnwire/internal/wire"
	"github.com/stealthrocket/dawnwire/internal/wire/server"
)

var procs nullgpu.Procs

const shaders = `
@vertex
fn vs_main(@builtin(vertex_index) index: u32) -> @builtin(position) vec4<f32> {
    return vec4<f32>(0.0, 0.0, 0.0, 1.0);
}

@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0, 0.0, 0.0, 1.0);
}

@compute @workgroup_size(64)
fn cs_main() {}
`

type events struct {
	errors []string
	lost   []wire.DeviceLostReason
	logs   []string
}

func newDevice(t *testing.T) (*nullgpu.Device, *events) {
	t.Helper()
	d := nullgpu.NewDevice(nullgpu.DefaultLimits)
	e := new(events)
	procs.DeviceSetCallbacks(d, server.DeviceCallbacks{
		UncapturedError: func(_ wire.ErrorType, message string) { e.errors = append(e.errors, message) },
		Lost:            func(reason wire.DeviceLostReason, _ string) { e.lost = append(e.lost, reason) },
		Logging:         func(_ wire.LoggingType, message string) { e.logs = append(e.logs, message) },
	})
	return d, e
}

func wgsl(code string) wire.ShaderModuleDescriptor {
	return wire.ShaderModuleDescriptor{
		Label:       "test",
		NextInChain: []wire.ChainedStruct{&wire.ShaderSourceWGSL{Code: code}},
	}
}

func createShaderModule(t *testing.T, d *nullgpu.Device, desc wire.ShaderModuleDescriptor) *nullgpu.ShaderModule {
	t.Helper()
	obj, err := procs.DeviceCreateShaderModule(d, &desc)
	assert.OK(t, err)
	return obj.(*nullgpu.ShaderModule)
}

func createBuffer(t *testing.T, d *nullgpu.Device, usage gputypes.BufferUsage, size uint64) *nullgpu.Buffer {
	t.Helper()
	obj, err := procs.DeviceCreateBuffer(d, &wire.BufferDescriptor{Label: "test", Usage: usage, Size: size})
	assert.OK(t, err)
	return obj.(*nullgpu.Buffer)
}

func TestWGSLEntryPoints(t *testing.T) {
	d, _ := newDevice(t)
	m := createShaderModule(t, d, wgsl(shaders))
	assert.True(t, m.IsValid(), "module is invalid")
	assert.DeepEqual(t, m.EntryPoints(), map[string]gputypes.ShaderStage{
		"vs_main": gputypes.ShaderStageVertex,
		"fs_main": gputypes.ShaderStageFragment,
		"cs_main": gputypes.ShaderStageCompute,
	})
}

func TestWGSLSyntaxError(t *testing.T) {
	d, e := newDevice(t)
	obj, err := procs.DeviceCreateShaderModule(d, ptr(wgsl("fn main( {")))
	assert.Error(t, err, nullgpu.ErrValidation)
	assert.False(t, obj.(*nullgpu.ShaderModule).IsValid(), "module is valid")
	assert.Equal(t, len(e.errors), 1)
	assert.HasPrefix(t, e.errors[0], `validation error: shader module "test": `)
	assert.Equal(t, d.Live(), 1)
}

func TestShaderModuleSources(t *testing.T) {
	d, e := newDevice(t)
	for _, desc := range []wire.ShaderModuleDescriptor{
		{Label: "none"},
		{Label: "both", NextInChain: []wire.ChainedStruct{
			&wire.ShaderSourceWGSL{Code: shaders},
			&wire.ShaderSourceSPIRV{Code: spirv(5, "main")},
		}},
	} {
		_, err := procs.DeviceCreateShaderModule(d, &desc)
		assert.Error(t, err, nullgpu.ErrValidation)
	}
	assert.Equal(t, len(e.errors), 2)
	assert.HasPrefix(t, e.errors[0], `validation error: shader module "none" must have exactly one source, got 0`)
	assert.HasPrefix(t, e.errors[1], `validation error: shader module "both" must have exactly one source, got 2`)
}

// spirv assembles a module made of a header and one OpEntryPoint.
func spirv(model uint32, name string) []uint32 {
	b := append([]byte(name), 0)
	for len(b)%4 != 0 {
		b = append(b, 0)
	}
	words := []uint32{0x07230203, 0x00010000, 0, 16, 0}
	words = append(words, uint32(3+len(b)/4)<<16|15, model, 1)
	for i := 0; i < len(b); i += 4 {
		words = append(words, uint32(b[i])|uint32(b[i+1])<<8|uint32(b[i+2])<<16|uint32(b[i+3])<<24)
	}
	return words
}

func TestSPIRVEntryPoints(t *testing.T) {
	d, _ := newDevice(t)

	tests := []struct {
		model uint32
		name  string
		stage gputypes.ShaderStage
	}{
		{model: 0, name: "vert", stage: gputypes.ShaderStageVertex},
		{model: 4, name: "frag", stage: gputypes.ShaderStageFragment},
		{model: 5, name: "main", stage: gputypes.ShaderStageCompute},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			m := createShaderModule(t, d, wire.ShaderModuleDescriptor{
				NextInChain: []wire.ChainedStruct{&wire.ShaderSourceSPIRV{Code: spirv(test.model, test.name)}},
			})
			assert.DeepEqual(t, m.EntryPoints(), map[string]gputypes.ShaderStage{test.name: test.stage})
		})
	}
}

func TestSPIRVInvalidModule(t *testing.T) {
	d, e := newDevice(t)
	truncated := spirv(5, "main")
	truncated = truncated[:len(truncated)-1]

	for _, code := range [][]uint32{nil, {1, 2, 3, 4, 5}, truncated} {
		_, err := procs.DeviceCreateShaderModule(d, &wire.ShaderModuleDescriptor{
			NextInChain: []wire.ChainedStruct{&wire.ShaderSourceSPIRV{Code: code}},
		})
		assert.Error(t, err, nullgpu.ErrValidation)
	}
	assert.Equal(t, len(e.errors), 3)
}

func TestBufferUsage(t *testing.T) {
	tests := []struct {
		scenario string
		desc     wire.BufferDescriptor
		valid    bool
	}{
		{
			scenario: "vertex buffer",
			desc:     wire.BufferDescriptor{Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst, Size: 64},
			valid:    true,
		},
		{
			scenario: "read back buffer",
			desc:     wire.BufferDescriptor{Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst, Size: 64},
			valid:    true,
		},
		{
			scenario: "no usage",
			desc:     wire.BufferDescriptor{Size: 64},
		},
		{
			scenario: "map read with storage",
			desc:     wire.BufferDescriptor{Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageStorage, Size: 64},
		},
		{
			scenario: "map write with copy destination",
			desc:     wire.BufferDescriptor{Usage: gputypes.BufferUsageMapWrite | gputypes.BufferUsageCopyDst, Size: 64},
		},
		{
			scenario: "mapped at creation with unaligned size",
			desc:     wire.BufferDescriptor{Usage: gputypes.BufferUsageCopySrc, Size: 6, MappedAtCreation: true},
		},
		{
			scenario: "larger than the device limit",
			desc:     wire.BufferDescriptor{Usage: gputypes.BufferUsageCopySrc, Size: nullgpu.DefaultLimits.MaxBufferSize + 1},
		},
	}

	for _, test := range tests {
		t.Run(test.scenario, func(t *testing.T) {
			d, e := newDevice(t)
			obj, err := procs.DeviceCreateBuffer(d, &test.desc)
			b := obj.(*nullgpu.Buffer)
			assert.Equal(t, b.IsValid(), test.valid)
			if test.valid {
				assert.OK(t, err)
				assert.Equal(t, len(b.Bytes()), int(test.desc.Size))
				assert.Equal(t, len(e.errors), 0)
			} else {
				assert.Error(t, err, nullgpu.ErrValidation)
				assert.True(t, b.Bytes() == nil, "buffer memory was not freed")
			}
			assert.Equal(t, d.Live(), 1)
		})
	}
}

func TestBufferLargerThanTheLimitIsOutOfMemory(t *testing.T) {
	d := nullgpu.NewDevice(nullgpu.DefaultLimits)
	var types []wire.ErrorType
	procs.DeviceSetCallbacks(d, server.DeviceCallbacks{
		UncapturedError: func(t wire.ErrorType, _ string) { types = append(types, t) },
	})
	_, err := procs.DeviceCreateBuffer(d, &wire.BufferDescriptor{
		Usage: gputypes.BufferUsageStorage,
		Size:  nullgpu.DefaultLimits.MaxBufferSize * 2,
	})
	assert.Error(t, err, nullgpu.ErrValidation)
	assert.EqualAll(t, types, []wire.ErrorType{wire.ErrorTypeOutOfMemory})
}

type mapResult struct {
	status  wire.MapAsyncStatus
	message string
	calls   int
}

func (r *mapResult) done(status wire.MapAsyncStatus, message string) {
	r.status, r.message = status, message
	r.calls++
}

func TestBufferMapping(t *testing.T) {
	d, e := newDevice(t)
	b := createBuffer(t, d, gputypes.BufferUsageMapWrite|gputypes.BufferUsageCopySrc, 32)

	var r mapResult
	procs.BufferMapAsync(b, gputypes.MapModeWrite, 8, 16, r.done)
	assert.Equal(t, r.calls, 0)
	assert.Equal(t, d.Pending(), 1)
	assert.Equal(t, len(procs.BufferGetMappedRange(b, 8, 16)), 0)

	procs.DeviceTick(d)
	assert.Equal(t, r.calls, 1)
	assert.Equal(t, r.status, wire.MapAsyncStatusSuccess)
	assert.EqualAll(t, e.logs, []string{"completed 1 asynchronous operations"})

	copy(procs.BufferGetMappedRange(b, 8, 16), "0123456789abcdef")
	assert.Equal(t, len(procs.BufferGetMappedRange(b, 0, 8)), 0)
	assert.Equal(t, len(procs.BufferGetMappedRange(b, 16, 16)), 0)

	procs.BufferUnmap(b)
	assert.Equal(t, string(b.Bytes()[8:24]), "0123456789abcdef")
	assert.Equal(t, len(procs.BufferGetMappedRange(b, 8, 16)), 0)
	assert.Equal(t, len(e.errors), 0)
}

func TestBufferMappingErrors(t *testing.T) {
	tests := []struct {
		scenario string
		mode     gputypes.MapMode
		offset   uint64
		size     uint64
		message  string
	}{
		{
			scenario: "wrong mode",
			mode:     gputypes.MapModeWrite,
			size:     16,
			message:  `buffer "test" does not have the MapWrite usage`,
		},
		{
			scenario: "unaligned offset",
			mode:     gputypes.MapModeRead,
			offset:   4,
			size:     4,
			message:  "map offset 4 is not a multiple of 8",
		},
		{
			scenario: "unaligned size",
			mode:     gputypes.MapModeRead,
			size:     6,
			message:  "map size 6 is not a multiple of 4",
		},
		{
			scenario: "out of range",
			mode:     gputypes.MapModeRead,
			offset:   8,
			size:     32,
			message:  `mapped range [8,40) exceeds the size of buffer "test" (32)`,
		},
	}

	for _, test := range tests {
		t.Run(test.scenario, func(t *testing.T) {
			d, e := newDevice(t)
			b := createBuffer(t, d, gputypes.BufferUsageMapRead|gputypes.BufferUsageCopyDst, 32)

			var r mapResult
			procs.BufferMapAsync(b, test.mode, test.offset, test.size, r.done)
			assert.Equal(t, r.calls, 1)
			assert.Equal(t, r.status, wire.MapAsyncStatusError)
			assert.Equal(t, r.message, "validation error: "+test.message)
			assert.EqualAll(t, e.errors, []string{r.message})
			assert.Equal(t, d.Pending(), 0)
		})
	}
}

func TestUnmapAbortsPendingMapping(t *testing.T) {
	d, _ := newDevice(t)
	b := createBuffer(t, d, gputypes.BufferUsageMapRead|gputypes.BufferUsageCopyDst, 16)

	var first, second mapResult
	procs.BufferMapAsync(b, gputypes.MapModeRead, 0, 16, first.done)
	procs.BufferMapAsync(b, gputypes.MapModeRead, 0, 16, second.done)
	assert.Equal(t, second.status, wire.MapAsyncStatusError)

	procs.BufferUnmap(b)
	assert.Equal(t, first.calls, 1)
	assert.Equal(t, first.status, wire.MapAsyncStatusAborted)

	procs.DeviceTick(d)
	assert.Equal(t, first.calls, 1)
	assert.Equal(t, len(procs.BufferGetMappedRange(b, 0, 16)), 0)
}

func TestCopyBufferToBuffer(t *testing.T) {
	d, e := newDevice(t)
	src := createBuffer(t, d, gputypes.BufferUsageCopySrc|gputypes.BufferUsageCopyDst, 16)
	dst := createBuffer(t, d, gputypes.BufferUsageMapRead|gputypes.BufferUsageCopyDst, 16)
	queue := procs.DeviceGetQueue(d)

	procs.QueueWriteBuffer(queue, src, 0, []byte("0123456789abcdef"))

	encoder, err := procs.DeviceCreateCommandEncoder(d, nil)
	assert.OK(t, err)
	procs.CommandEncoderCopyBufferToBuffer(encoder, src, 8, dst, 4, 8)
	cb, err := procs.CommandEncoderFinish(encoder, &wire.CommandBufferDescriptor{Label: "copy"})
	assert.OK(t, err)
	assert.True(t, cb.(*nullgpu.CommandBuffer).IsValid(), "command buffer is invalid")

	procs.QueueSubmit(queue, []wire.Object{cb})
	assert.Equal(t, string(dst.Bytes()[4:12]), "89abcdef")
	assert.Equal(t, queue.(*nullgpu.Queue).Submitted(), 1)

	// A command buffer executes only once.
	procs.QueueSubmit(queue, []wire.Object{cb})
	assert.Equal(t, queue.(*nullgpu.Queue).Submitted(), 1)
	assert.EqualAll(t, e.errors, []string{`validation error: command buffer "copy" was already submitted`})

	var status wire.QueueWorkDoneStatus = wire.QueueWorkDoneStatusError
	procs.QueueOnSubmittedWorkDone(queue, func(s wire.QueueWorkDoneStatus) { status = s })
	procs.DeviceTick(d)
	assert.Equal(t, status, wire.QueueWorkDoneStatusSuccess)
}

func TestInvalidCopyInvalidatesTheEncoder(t *testing.T) {
	d, e := newDevice(t)
	src := createBuffer(t, d, gputypes.BufferUsageCopySrc, 16)
	dst := createBuffer(t, d, gputypes.BufferUsageCopyDst, 16)
	queue := procs.DeviceGetQueue(d)

	encoder, err := procs.DeviceCreateCommandEncoder(d, &wire.CommandEncoderDescriptor{Label: "encoder"})
	assert.OK(t, err)
	procs.CommandEncoderCopyBufferToBuffer(encoder, src, 0, dst, 8, 16)
	procs.CommandEncoderCopyBufferToBuffer(encoder, src, 0, dst, 0, 16)

	cb, err := procs.CommandEncoderFinish(encoder, nil)
	assert.Error(t, err, nullgpu.ErrValidation)
	procs.QueueSubmit(queue, []wire.Object{cb})

	assert.Equal(t, queue.(*nullgpu.Queue).Submitted(), 0)
	assert.Equal(t, len(e.errors), 3)
	assert.HasPrefix(t, e.errors[0], `validation error: copy overruns destination buffer "test"`)
	assert.HasPrefix(t, e.errors[1], `validation error: encoder "encoder" is invalid`)
	assert.HasPrefix(t, e.errors[2], "validation error: submitting invalid command buffer 0")
}

func TestSubmitMappedBuffer(t *testing.T) {
	d, e := newDevice(t)
	obj, err := procs.DeviceCreateBuffer(d, &wire.BufferDescriptor{
		Label:            "mapped",
		Usage:            gputypes.BufferUsageCopySrc,
		Size:             16,
		MappedAtCreation: true,
	})
	assert.OK(t, err)
	dst := createBuffer(t, d, gputypes.BufferUsageCopyDst, 16)

	encoder, _ := procs.DeviceCreateCommandEncoder(d, nil)
	procs.CommandEncoderCopyBufferToBuffer(encoder, obj, 0, dst, 0, 16)
	cb, err := procs.CommandEncoderFinish(encoder, nil)
	assert.OK(t, err)

	queue := procs.DeviceGetQueue(d)
	procs.QueueSubmit(queue, []wire.Object{cb})
	assert.EqualAll(t, e.errors, []string{`validation error: submit: buffer "mapped" is mapped`})
	assert.Equal(t, queue.(*nullgpu.Queue).Submitted(), 0)
}

func TestTextureValidation(t *testing.T) {
	valid := wire.TextureDescriptor{
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
		Dimension:     gputypes.TextureDimension2D,
		Size:          gputypes.Extent3D{Width: 256, Height: 256, DepthOrArrayLayers: 1},
		Format:        gputypes.TextureFormatRGBA8Unorm,
		MipLevelCount: 9,
		SampleCount:   1,
	}

	tests := []struct {
		scenario string
		change   func(*wire.TextureDescriptor)
		valid    bool
	}{
		{scenario: "2D texture with a full mip chain", change: func(*wire.TextureDescriptor) {}, valid: true},
		{
			scenario: "1D texture",
			change: func(d *wire.TextureDescriptor) {
				d.Dimension, d.Size.Height, d.MipLevelCount = gputypes.TextureDimension1D, 1, 1
			},
			valid: true,
		},
		{
			scenario: "1D texture with a height",
			change:   func(d *wire.TextureDescriptor) { d.Dimension, d.MipLevelCount = gputypes.TextureDimension1D, 1 },
		},
		{scenario: "no usage", change: func(d *wire.TextureDescriptor) { d.Usage = gputypes.TextureUsageNone }},
		{scenario: "undefined format", change: func(d *wire.TextureDescriptor) { d.Format = gputypes.TextureFormatUndefined }},
		{scenario: "empty", change: func(d *wire.TextureDescriptor) { d.Size.Width = 0 }},
		{scenario: "too large", change: func(d *wire.TextureDescriptor) { d.Size.Width, d.MipLevelCount = 16384, 1 }},
		{scenario: "too many mip levels", change: func(d *wire.TextureDescriptor) { d.MipLevelCount = 10 }},
		{scenario: "no mip level", change: func(d *wire.TextureDescriptor) { d.MipLevelCount = 0 }},
		{scenario: "two samples", change: func(d *wire.TextureDescriptor) { d.SampleCount = 2 }},
		{scenario: "multisampled mip chain", change: func(d *wire.TextureDescriptor) { d.SampleCount = 4 }},
		{
			scenario: "multisampled",
			change:   func(d *wire.TextureDescriptor) { d.SampleCount, d.MipLevelCount = 4, 1 },
			valid:    true,
		},
		{
			scenario: "3D depth texture",
			change: func(d *wire.TextureDescriptor) {
				d.Dimension, d.Format, d.MipLevelCount = gputypes.TextureDimension3D, gputypes.TextureFormatDepth32Float, 1
			},
		},
	}

	for _, test := range tests {
		t.Run(test.scenario, func(t *testing.T) {
			d, e := newDevice(t)
			desc := valid
			test.change(&desc)
			obj, err := procs.DeviceCreateTexture(d, &desc)
			assert.Equal(t, obj.(*nullgpu.Texture).IsValid(), test.valid)
			if test.valid {
				assert.OK(t, err)
				assert.Equal(t, len(e.errors), 0)
			} else {
				assert.Error(t, err, nullgpu.ErrValidation)
				assert.Equal(t, len(e.errors), 1)
			}
		})
	}
}

func TestBindGroupLayoutValidation(t *testing.T) {
	uniform := wire.BindGroupLayoutEntry{
		Binding:    0,
		Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
		Buffer:     wire.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
	}
	storage := wire.BindGroupLayoutEntry{
		Binding:    1,
		Visibility: gputypes.ShaderStageCompute,
		Buffer:     wire.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage},
	}
	vertexStorage := storage
	vertexStorage.Visibility = gputypes.ShaderStageVertex
	unbound := wire.BindGroupLayoutEntry{Binding: 2, Visibility: gputypes.ShaderStageCompute}
	hidden := uniform
	hidden.Visibility = 1 << 7

	tests := []struct {
		scenario string
		entries  []wire.BindGroupLayoutEntry
		message  string
	}{
		{scenario: "valid", entries: []wire.BindGroupLayoutEntry{uniform, storage}},
		{scenario: "duplicate", entries: []wire.BindGroupLayoutEntry{uniform, uniform}, message: "duplicate binding 0"},
		{scenario: "writable storage in vertex stage", entries: []wire.BindGroupLayoutEntry{vertexStorage}, message: "writable storage buffer"},
		{scenario: "no resource", entries: []wire.BindGroupLayoutEntry{unbound}, message: "does not bind any resource"},
		{scenario: "unknown stage", entries: []wire.BindGroupLayoutEntry{hidden}, message: "invalid visibility"},
	}

	for _, test := range tests {
		t.Run(test.scenario, func(t *testing.T) {
			d, e := newDevice(t)
			obj, err := procs.DeviceCreateBindGroupLayout(d, &wire.BindGroupLayoutDescriptor{Entries: test.entries})
			l := obj.(*nullgpu.BindGroupLayout)
			if test.message == "" {
				assert.OK(t, err)
				assert.True(t, l.IsValid(), "layout is invalid")
				return
			}
			assert.Error(t, err, nullgpu.ErrValidation)
			assert.False(t, l.IsValid(), "layout is valid")
			assert.Equal(t, len(e.errors), 1)
			assert.True(t, strings.Contains(e.errors[0], test.message), e.errors[0])
		})
	}
}

func TestPipelineLayout(t *testing.T) {
	d, e := newDevice(t)
	bgl, err := procs.DeviceCreateBindGroupLayout(d, &wire.BindGroupLayoutDescriptor{})
	assert.OK(t, err)
	invalid, _ := procs.DeviceCreateBindGroupLayout(d, &wire.BindGroupLayoutDescriptor{
		Entries: []wire.BindGroupLayoutEntry{{Visibility: gputypes.ShaderStageCompute}},
	})

	l, err := procs.DeviceCreatePipelineLayout(d, &wire.PipelineLayoutDescriptor{BindGroupLayouts: []wire.Object{bgl, bgl}})
	assert.OK(t, err)
	assert.True(t, l.(*nullgpu.PipelineLayout).IsValid(), "layout is invalid")

	_, err = procs.DeviceCreatePipelineLayout(d, &wire.PipelineLayoutDescriptor{BindGroupLayouts: []wire.Object{bgl, invalid}})
	assert.Error(t, err, nullgpu.ErrValidation)
	_, err = procs.DeviceCreatePipelineLayout(d, &wire.PipelineLayoutDescriptor{BindGroupLayouts: []wire.Object{bgl, bgl, bgl, bgl, bgl}})
	assert.Error(t, err, nullgpu.ErrValidation)
	assert.Equal(t, len(e.errors), 3)
	assert.Equal(t, d.Live(), 5)
}

type pipelineResult struct {
	result server.PipelineResult
	calls  int
}

func (r *pipelineResult) done(result server.PipelineResult) {
	r.result = result
	r.calls++
}

func TestComputePipeline(t *testing.T) {
	d, e := newDevice(t)
	m := createShaderModule(t, d, wgsl(shaders))

	var r pipelineResult
	procs.DeviceCreateComputePipelineAsync(d, &wire.ComputePipelineDescriptor{
		Compute: wire.ProgrammableStage{Module: m},
	}, r.done)
	assert.Equal(t, r.calls, 0)

	procs.DeviceTick(d)
	assert.Equal(t, r.calls, 1)
	assert.Equal(t, r.result.Status, wire.CreatePipelineAsyncStatusSuccess)
	assert.Equal(t, r.result.Pipeline.(*nullgpu.ComputePipeline).EntryPoint(), "cs_main")
	assert.Equal(t, d.Live(), 2)
	assert.Equal(t, len(e.errors), 0)
}

func TestComputePipelineErrors(t *testing.T) {
	tests := []struct {
		scenario string
		stage    func(*nullgpu.ShaderModule) wire.ProgrammableStage
		message  string
	}{
		{
			scenario: "missing module",
			stage:    func(*nullgpu.ShaderModule) wire.ProgrammableStage { return wire.ProgrammableStage{} },
			message:  `pipeline "compute": Compute shader module is invalid`,
		},
		{
			scenario: "wrong stage",
			stage: func(m *nullgpu.ShaderModule) wire.ProgrammableStage {
				return wire.ProgrammableStage{Module: m, EntryPoint: "vs_main"}
			},
			message: `pipeline "compute": shader module "test" has no Compute entry point named "vs_main"`,
		},
		{
			scenario: "unnamed constant",
			stage: func(m *nullgpu.ShaderModule) wire.ProgrammableStage {
				return wire.ProgrammableStage{Module: m, Constants: []wire.ConstantEntry{{Value: 1}}}
			},
			message: `pipeline "compute": Compute stage has a constant without a name`,
		},
	}

	for _, test := range tests {
		t.Run(test.scenario, func(t *testing.T) {
			d, e := newDevice(t)
			m := createShaderModule(t, d, wgsl(shaders))

			var r pipelineResult
			procs.DeviceCreateComputePipelineAsync(d, &wire.ComputePipelineDescriptor{
				Label:   "compute",
				Compute: test.stage(m),
			}, r.done)
			procs.DeviceTick(d)

			assert.Equal(t, r.result.Status, wire.CreatePipelineAsyncStatusValidationError)
			assert.Equal(t, r.result.Message, test.message)
			assert.Equal(t, r.result.Pipeline, nil)
			assert.Equal(t, len(e.errors), 0)
			assert.Equal(t, d.Live(), 1)
		})
	}
}

func TestRenderPipeline(t *testing.T) {
	d, _ := newDevice(t)
	m := createShaderModule(t, d, wgsl(shaders))

	desc := &wire.RenderPipelineDescriptor{
		Label:     "render",
		Vertex:    wire.ProgrammableStage{Module: m},
		Primitive: wire.PrimitiveState{Topology: gputypes.PrimitiveTopologyTriangleList},
		Fragment: &wire.FragmentState{
			ProgrammableStage: wire.ProgrammableStage{Module: m, EntryPoint: "fs_main"},
			Targets: []wire.ColorTargetState{
				{Format: gputypes.TextureFormatBGRA8Unorm, WriteMask: gputypes.ColorWriteMaskAll},
			},
		},
	}

	var r pipelineResult
	procs.DeviceCreateRenderPipelineAsync(d, desc, r.done)
	procs.DeviceTick(d)
	assert.Equal(t, r.result.Status, wire.CreatePipelineAsyncStatusSuccess)
	vertex, fragment := r.result.Pipeline.(*nullgpu.RenderPipeline).EntryPoints()
	assert.Equal(t, vertex, "vs_main")
	assert.Equal(t, fragment, "fs_main")

	desc.Fragment.Targets[0].Format = gputypes.TextureFormatDepth24Plus
	procs.DeviceCreateRenderPipelineAsync(d, desc, r.done)
	procs.DeviceTick(d)
	assert.Equal(t, r.result.Status, wire.CreatePipelineAsyncStatusValidationError)
	assert.True(t, strings.Contains(r.result.Message, "depth stencil format"), r.result.Message)
}

func TestErrorScopes(t *testing.T) {
	d, e := newDevice(t)

	var results []server.PopErrorScopeResult
	pop := func() {
		procs.DevicePopErrorScope(d, func(r server.PopErrorScopeResult) { results = append(results, r) })
	}

	procs.DevicePushErrorScope(d, wire.ErrorFilterValidation)
	procs.DevicePushErrorScope(d, wire.ErrorFilterOutOfMemory)
	procs.DeviceInjectError(d, wire.ErrorTypeValidation, "first")
	procs.DeviceInjectError(d, wire.ErrorTypeValidation, "second")
	procs.DeviceInjectError(d, wire.ErrorTypeInternal, "uncaptured")
	pop()
	pop()
	pop()

	assert.EqualAll(t, results, []server.PopErrorScopeResult{
		{Status: wire.PopErrorScopeStatusSuccess, Type: wire.ErrorTypeNoError},
		{Status: wire.PopErrorScopeStatusSuccess, Type: wire.ErrorTypeValidation, Message: "first"},
		{Status: wire.PopErrorScopeStatusEmptyStack, Message: "no error scope to pop"},
	})
	assert.EqualAll(t, e.errors, []string{"uncaptured"})
}

func TestInjectInvalidErrorType(t *testing.T) {
	d, e := newDevice(t)
	procs.DeviceInjectError(d, wire.ErrorTypeDeviceLost, "lost")
	assert.EqualAll(t, e.errors, []string{"validation error: cannot inject an error of type DeviceLost"})
}

func TestDeviceLoss(t *testing.T) {
	d, e := newDevice(t)
	b := createBuffer(t, d, gputypes.BufferUsageMapRead|gputypes.BufferUsageCopyDst, 16)
	m := createShaderModule(t, d, wgsl(shaders))

	var mapping mapResult
	var pipeline pipelineResult
	procs.BufferMapAsync(b, gputypes.MapModeRead, 0, 16, mapping.done)
	procs.DeviceCreateComputePipelineAsync(d, &wire.ComputePipelineDescriptor{
		Compute: wire.ProgrammableStage{Module: m},
	}, pipeline.done)
	procs.DevicePushErrorScope(d, wire.ErrorFilterValidation)

	procs.DeviceDestroy(d)
	assert.True(t, d.IsLost(), "device is not lost")
	assert.EqualAll(t, e.lost, []wire.DeviceLostReason{wire.DeviceLostReasonDestroyed})
	assert.Equal(t, mapping.status, wire.MapAsyncStatusAborted)
	assert.Equal(t, pipeline.result.Status, wire.CreatePipelineAsyncStatusInternalError)
	assert.Equal(t, d.Pending(), 0)

	// Objects created on a lost device are invalid, silently.
	obj, err := procs.DeviceCreateBuffer(d, &wire.BufferDescriptor{Size: 4})
	assert.Error(t, err, nullgpu.ErrDeviceLost)
	assert.False(t, obj.(*nullgpu.Buffer).IsValid(), "buffer is valid")
	assert.Equal(t, len(e.errors), 0)

	procs.DevicePopErrorScope(d, func(r server.PopErrorScopeResult) {
		assert.Equal(t, r.Status, wire.PopErrorScopeStatusSuccess)
	})

	var status wire.QueueWorkDoneStatus
	procs.QueueOnSubmittedWorkDone(procs.DeviceGetQueue(d), func(s wire.QueueWorkDoneStatus) { status = s })
	procs.DeviceTick(d)
	assert.Equal(t, status, wire.QueueWorkDoneStatusError)

	procs.DeviceDestroy(d)
	assert.Equal(t, len(e.lost), 1)
}

func TestReleaseTracksLiveObjects(t *testing.T) {
	d, _ := newDevice(t)
	b := createBuffer(t, d, gputypes.BufferUsageCopyDst, 16)
	m := createShaderModule(t, d, wgsl(shaders))
	encoder, _ := procs.DeviceCreateCommandEncoder(d, nil)
	assert.Equal(t, d.Live(), 3)

	procs.Release(wire.ObjectTypeBuffer, b)
	procs.Release(wire.ObjectTypeShaderModule, m)
	procs.Release(wire.ObjectTypeCommandEncoder, encoder)
	assert.Equal(t, d.Live(), 0)
	assert.True(t, b.Bytes() == nil, "buffer memory was not freed")
}

func ptr[T any](v T) *T { return &v }
