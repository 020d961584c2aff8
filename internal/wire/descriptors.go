package wire

import "github.com/gogpu/gputypes"

// WholeMapSize requests a mapping extending to the end of a buffer.
const WholeMapSize = ^uint64(0)

// WholeSize requests a copy or write extending to the end of a buffer.
const WholeSize = ^uint64(0)

type BufferDescriptor struct {
	Label            string
	Usage            gputypes.BufferUsage
	Size             uint64
	MappedAtCreation bool
}

func (d *BufferDescriptor) walk(w walker) {
	w.str(&d.Label)
	flags(w, &d.Usage)
	w.u64(&d.Size)
	w.boolean(&d.MappedAtCreation)
}

type TextureDescriptor struct {
	Label         string
	Usage         gputypes.TextureUsage
	Dimension     gputypes.TextureDimension
	Size          gputypes.Extent3D
	Format        gputypes.TextureFormat
	MipLevelCount uint32
	SampleCount   uint32
	ViewFormats   []gputypes.TextureFormat
}

func (d *TextureDescriptor) walk(w walker) {
	w.str(&d.Label)
	flags(w, &d.Usage)
	enum(w, &d.Dimension)
	w.u32(&d.Size.Width)
	w.u32(&d.Size.Height)
	w.u32(&d.Size.DepthOrArrayLayers)
	enum(w, &d.Format)
	w.u32(&d.MipLevelCount)
	w.u32(&d.SampleCount)
	slice(w, &d.ViewFormats, func(f *gputypes.TextureFormat, w walker) { enum(w, f) })
}

// ShaderModuleDescriptor carries the shader source in its chain, as a
// ShaderSourceWGSL or ShaderSourceSPIRV struct.
type ShaderModuleDescriptor struct {
	Label       string
	NextInChain []ChainedStruct
}

func (d *ShaderModuleDescriptor) walk(w walker) {
	w.str(&d.Label)
	chain(w, &d.NextInChain)
}

// BufferBindingLayout describes a buffer binding. An undefined type means the
// entry does not bind a buffer.
type BufferBindingLayout struct {
	Type             gputypes.BufferBindingType
	HasDynamicOffset bool
	MinBindingSize   uint64
}

func (b *BufferBindingLayout) walk(w walker) {
	enum(w, &b.Type)
	w.boolean(&b.HasDynamicOffset)
	w.u64(&b.MinBindingSize)
}

// BindGroupLayoutEntry describes a single binding.
type BindGroupLayoutEntry struct {
	Binding    uint32
	Visibility gputypes.ShaderStage
	Buffer     BufferBindingLayout
}

func (e *BindGroupLayoutEntry) walk(w walker) {
	w.u32(&e.Binding)
	enum(w, &e.Visibility)
	e.Buffer.walk(w)
}

type BindGroupLayoutDescriptor struct {
	Label   string
	Entries []BindGroupLayoutEntry
}

func (d *BindGroupLayoutDescriptor) walk(w walker) {
	w.str(&d.Label)
	slice(w, &d.Entries, (*BindGroupLayoutEntry).walk)
}

type PipelineLayoutDescriptor struct {
	Label            string
	BindGroupLayouts []Object
}

func (d *PipelineLayoutDescriptor) walk(w walker) {
	w.str(&d.Label)
	objects(w, ObjectTypeBindGroupLayout, &d.BindGroupLayouts)
}

type ConstantEntry struct {
	Key   string
	Value float64
}

func (c *ConstantEntry) walk(w walker) {
	w.str(&c.Key)
	w.f64(&c.Value)
}

// ProgrammableStage selects the entry point of a shader module.
type ProgrammableStage struct {
	Module     Object
	EntryPoint string
	Constants  []ConstantEntry
}

func (s *ProgrammableStage) walk(w walker) {
	w.object(ObjectTypeShaderModule, &s.Module)
	w.str(&s.EntryPoint)
	slice(w, &s.Constants, (*ConstantEntry).walk)
}

// ComputePipelineDescriptor describes a compute pipeline. A nil Layout
// requests a layout derived from the shader.
type ComputePipelineDescriptor struct {
	Label   string
	Layout  Object
	Compute ProgrammableStage
}

func (d *ComputePipelineDescriptor) walk(w walker) {
	w.str(&d.Label)
	w.optionalObject(ObjectTypePipelineLayout, &d.Layout)
	d.Compute.walk(w)
}

type ColorTargetState struct {
	Format    gputypes.TextureFormat
	WriteMask gputypes.ColorWriteMask
}

func (c *ColorTargetState) walk(w walker) {
	enum(w, &c.Format)
	enum(w, &c.WriteMask)
}

type FragmentState struct {
	ProgrammableStage
	Targets []ColorTargetState
}

func (f *FragmentState) walk(w walker) {
	f.ProgrammableStage.walk(w)
	slice(w, &f.Targets, (*ColorTargetState).walk)
}

type PrimitiveState struct {
	Topology gputypes.PrimitiveTopology
}

// RenderPipelineDescriptor describes a render pipeline. The fragment stage
// is optional.
type RenderPipelineDescriptor struct {
	Label     string
	Layout    Object
	Vertex    ProgrammableStage
	Primitive PrimitiveState
	Fragment  *FragmentState
}

func (d *RenderPipelineDescriptor) walk(w walker) {
	w.str(&d.Label)
	w.optionalObject(ObjectTypePipelineLayout, &d.Layout)
	d.Vertex.walk(w)
	enum(w, &d.Primitive.Topology)
	optional(w, &d.Fragment, (*FragmentState).walk)
}

type CommandEncoderDescriptor struct {
	Label string
}

func (d *CommandEncoderDescriptor) walk(w walker) { w.str(&d.Label) }

type CommandBufferDescriptor struct {
	Label string
}

func (d *CommandBufferDescriptor) walk(w walker) { w.str(&d.Label) }
