package nullgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/stealthrocket/dawnwire/internal/wire"
	"github.com/stealthrocket/dawnwire/internal/wire/server"
)

const (
	maxColorAttachments = 8
	allShaderStages     = gputypes.ShaderStageVertex | gputypes.ShaderStageFragment | gputypes.ShaderStageCompute
)

type BindGroupLayout struct {
	resource
	label   string
	entries []wire.BindGroupLayoutEntry
	invalid bool
}

func (l *BindGroupLayout) IsValid() bool { return !l.invalid }

type PipelineLayout struct {
	resource
	label   string
	layouts []*BindGroupLayout
	invalid bool
}

func (l *PipelineLayout) IsValid() bool { return !l.invalid }

type ComputePipeline struct {
	resource
	label      string
	layout     *PipelineLayout
	entryPoint string
}

// EntryPoint returns the name of the compute entry point the pipeline runs.
func (p *ComputePipeline) EntryPoint() string { return p.entryPoint }

type RenderPipeline struct {
	resource
	label    string
	layout   *PipelineLayout
	vertex   string
	fragment string
	targets  []wire.ColorTargetState
}

func (p *RenderPipeline) EntryPoints() (vertex, fragment string) { return p.vertex, p.fragment }

func (d *Device) createBindGroupLayout(desc *wire.BindGroupLayoutDescriptor) (*BindGroupLayout, error) {
	l := &BindGroupLayout{resource: resource{d}, label: desc.Label, invalid: true}
	l.entries = append(l.entries, desc.Entries...)
	d.created()
	if err := d.check(); err != nil {
		return l, err
	}
	if n := len(desc.Entries); uint32(n) > d.limits.MaxBindingsPerBindGroup {
		return l, d.validation("bind group layout %q has %d entries, the limit is %d", desc.Label, n, d.limits.MaxBindingsPerBindGroup)
	}
	seen := make(map[uint32]struct{}, len(desc.Entries))
	for _, e := range desc.Entries {
		if _, dup := seen[e.Binding]; dup {
			return l, d.validation("bind group layout %q has duplicate binding %d", desc.Label, e.Binding)
		}
		seen[e.Binding] = struct{}{}

		switch {
		case e.Visibility&^allShaderStages != 0:
			return l, d.validation("binding %d has an invalid visibility %#x", e.Binding, uint32(e.Visibility))
		case e.Buffer.Type > gputypes.BufferBindingTypeReadOnlyStorage:
			return l, d.validation("binding %d has an invalid buffer type %d", e.Binding, e.Buffer.Type)
		case e.Buffer.Type == gputypes.BufferBindingTypeUndefined:
			return l, d.validation("binding %d does not bind any resource", e.Binding)
		case e.Buffer.Type == gputypes.BufferBindingTypeStorage && e.Visibility.Contains(gputypes.ShaderStageVertex):
			return l, d.validation("binding %d is a writable storage buffer visible to the vertex stage", e.Binding)
		}
	}
	l.invalid = false
	return l, nil
}

func (d *Device) createPipelineLayout(desc *wire.PipelineLayoutDescriptor) (*PipelineLayout, error) {
	l := &PipelineLayout{resource: resource{d}, label: desc.Label, invalid: true}
	d.created()
	if err := d.check(); err != nil {
		return l, err
	}
	if n := len(desc.BindGroupLayouts); n > d.limits.MaxBindGroups {
		return l, d.validation("pipeline layout %q has %d bind groups, the limit is %d", desc.Label, n, d.limits.MaxBindGroups)
	}
	for i, obj := range desc.BindGroupLayouts {
		bgl, _ := obj.(*BindGroupLayout)
		if bgl == nil || bgl.invalid {
			return l, d.validation("pipeline layout %q: bind group layout %d is invalid", desc.Label, i)
		}
		l.layouts = append(l.layouts, bgl)
	}
	l.invalid = false
	return l, nil
}

// layout resolves the optional pipeline layout of a pipeline descriptor.
func layout(obj wire.Object) (*PipelineLayout, error) {
	if obj == nil {
		return nil, nil
	}
	l, _ := obj.(*PipelineLayout)
	if l == nil || l.invalid {
		return nil, fmt.Errorf("pipeline layout is invalid")
	}
	return l, nil
}

func stage(s *wire.ProgrammableStage, want gputypes.ShaderStage) (string, error) {
	m, _ := s.Module.(*ShaderModule)
	if m == nil || m.invalid {
		return "", fmt.Errorf("%s shader module is invalid", want)
	}
	for _, c := range s.Constants {
		if c.Key == "" {
			return "", fmt.Errorf("%s stage has a constant without a name", want)
		}
	}
	return m.entryPoint(s.EntryPoint, want)
}

// pipelineResult completes an asynchronous pipeline creation on the next
// tick. Validation failures of asynchronous creations are not raised on the
// device, they are only returned to the caller.
func (d *Device) pipelineResult(label string, done func(server.PipelineResult), build func() (wire.Object, error)) {
	d.created()
	if d.lost {
		d.schedule(func() {
			d.released()
			done(server.PipelineResult{
				Status:  wire.CreatePipelineAsyncStatusInternalError,
				Message: ErrDeviceLost.Error(),
			})
		})
		return
	}
	p, err := build()
	d.schedule(func() {
		switch {
		case err != nil:
			d.released()
			done(server.PipelineResult{
				Status:  wire.CreatePipelineAsyncStatusValidationError,
				Message: fmt.Sprintf("pipeline %q: %v", label, err),
			})
		case d.lost:
			d.released()
			done(server.PipelineResult{
				Status:  wire.CreatePipelineAsyncStatusInternalError,
				Message: ErrDeviceLost.Error(),
			})
		default:
			done(server.PipelineResult{Status: wire.CreatePipelineAsyncStatusSuccess, Pipeline: p})
		}
	})
}

func (d *Device) createComputePipelineAsync(desc *wire.ComputePipelineDescriptor, done func(server.PipelineResult)) {
	d.pipelineResult(desc.Label, done, func() (wire.Object, error) {
		l, err := layout(desc.Layout)
		if err != nil {
			return nil, err
		}
		entryPoint, err := stage(&desc.Compute, gputypes.ShaderStageCompute)
		if err != nil {
			return nil, err
		}
		return &ComputePipeline{resource: resource{d}, label: desc.Label, layout: l, entryPoint: entryPoint}, nil
	})
}

func (d *Device) createRenderPipelineAsync(desc *wire.RenderPipelineDescriptor, done func(server.PipelineResult)) {
	d.pipelineResult(desc.Label, done, func() (wire.Object, error) {
		l, err := layout(desc.Layout)
		if err != nil {
			return nil, err
		}
		if desc.Primitive.Topology > gputypes.PrimitiveTopologyTriangleStrip {
			return nil, fmt.Errorf("invalid primitive topology %d", desc.Primitive.Topology)
		}
		p := &RenderPipeline{resource: resource{d}, label: desc.Label, layout: l}
		if p.vertex, err = stage(&desc.Vertex, gputypes.ShaderStageVertex); err != nil {
			return nil, err
		}
		if f := desc.Fragment; f != nil {
			if p.fragment, err = stage(&f.ProgrammableStage, gputypes.ShaderStageFragment); err != nil {
				return nil, err
			}
			if len(f.Targets) > maxColorAttachments {
				return nil, fmt.Errorf("%d color targets, the limit is %d", len(f.Targets), maxColorAttachments)
			}
			for i, t := range f.Targets {
				switch {
				case t.Format == gputypes.TextureFormatUndefined || t.Format.String() == "Unknown":
					return nil, fmt.Errorf("color target %d has an invalid format", i)
				case t.Format.IsDepthStencil():
					return nil, fmt.Errorf("color target %d has the depth stencil format %s", i, t.Format)
				case t.WriteMask&^gputypes.ColorWriteMaskAll != 0:
					return nil, fmt.Errorf("color target %d has an invalid write mask %#x", i, uint32(t.WriteMask))
				}
			}
			p.targets = append(p.targets, f.Targets...)
		}
		return p, nil
	})
}
