package wire

import "github.com/gogpu/gputypes"

type BufferDestroyCmd struct {
	Self Object
}

func (*BufferDestroyCmd) ID() uint32 { return uint32(BufferDestroy) }

func (c *BufferDestroyCmd) RequiredSize() int { return requiredSize(c) }

func (c *BufferDestroyCmd) Serialize(buf []byte, ids ObjectIDProvider) error {
	return serialize(c, buf, ids)
}

func (c *BufferDestroyCmd) Deserialize(buf []byte, alloc Allocator, ids ObjectIDResolver) ([]byte, error) {
	return deserialize(c, buf, alloc, ids)
}

func (c *BufferDestroyCmd) walk(w walker) {
	w.object(ObjectTypeBuffer, &c.Self)
}

type BufferMapAsyncCmd struct {
	Self          Object
	RequestSerial uint64
	Mode          gputypes.MapMode
	Offset        uint64
	Size          uint64
}

func (*BufferMapAsyncCmd) ID() uint32 { return uint32(BufferMapAsync) }

func (c *BufferMapAsyncCmd) RequiredSize() int { return requiredSize(c) }

func (c *BufferMapAsyncCmd) Serialize(buf []byte, ids ObjectIDProvider) error {
	return serialize(c, buf, ids)
}

func (c *BufferMapAsyncCmd) Deserialize(buf []byte, alloc Allocator, ids ObjectIDResolver) ([]byte, error) {
	return deserialize(c, buf, alloc, ids)
}

func (c *BufferMapAsyncCmd) walk(w walker) {
	w.object(ObjectTypeBuffer, &c.Self)
	w.u64(&c.RequestSerial)
	enum(w, &c.Mode)
	w.u64(&c.Offset)
	w.u64(&c.Size)
}

type BufferUnmapCmd struct {
	Self Object
}

func (*BufferUnmapCmd) ID() uint32 { return uint32(BufferUnmap) }

func (c *BufferUnmapCmd) RequiredSize() int { return requiredSize(c) }

func (c *BufferUnmapCmd) Serialize(buf []byte, ids ObjectIDProvider) error {
	return serialize(c, buf, ids)
}

func (c *BufferUnmapCmd) Deserialize(buf []byte, alloc Allocator, ids ObjectIDResolver) ([]byte, error) {
	return deserialize(c, buf, alloc, ids)
}

func (c *BufferUnmapCmd) walk(w walker) {
	w.object(ObjectTypeBuffer, &c.Self)
}

// BufferUpdateMappedDataCmd writes the client shadow of a mapped range back
// to the server before the buffer is unmapped.
type BufferUpdateMappedDataCmd struct {
	Self   Object
	Offset uint64
	Data   []byte
}

func (*BufferUpdateMappedDataCmd) ID() uint32 { return uint32(BufferUpdateMappedData) }

func (c *BufferUpdateMappedDataCmd) RequiredSize() int { return requiredSize(c) }

func (c *BufferUpdateMappedDataCmd) Serialize(buf []byte, ids ObjectIDProvider) error {
	return serialize(c, buf, ids)
}

func (c *BufferUpdateMappedDataCmd) Deserialize(buf []byte, alloc Allocator, ids ObjectIDResolver) ([]byte, error) {
	return deserialize(c, buf, alloc, ids)
}

func (c *BufferUpdateMappedDataCmd) walk(w walker) {
	w.object(ObjectTypeBuffer, &c.Self)
	w.u64(&c.Offset)
	w.data(&c.Data)
}

type CommandEncoderCopyBufferToBufferCmd struct {
	Self              Object
	Source            Object
	SourceOffset      uint64
	Destination       Object
	DestinationOffset uint64
	Size              uint64
}

func (*CommandEncoderCopyBufferToBufferCmd) ID() uint32 { return uint32(CommandEncoderCopyBufferToBuffer) }

func (c *CommandEncoderCopyBufferToBufferCmd) RequiredSize() int { return requiredSize(c) }

func (c *CommandEncoderCopyBufferToBufferCmd) Serialize(buf []byte, ids ObjectIDProvider) error {
	return serialize(c, buf, ids)
}

func (c *CommandEncoderCopyBufferToBufferCmd) Deserialize(buf []byte, alloc Allocator, ids ObjectIDResolver) ([]byte, error) {
	return deserialize(c, buf, alloc, ids)
}

func (c *CommandEncoderCopyBufferToBufferCmd) walk(w walker) {
	w.object(ObjectTypeCommandEncoder, &c.Self)
	w.object(ObjectTypeBuffer, &c.Source)
	w.u64(&c.SourceOffset)
	w.object(ObjectTypeBuffer, &c.Destination)
	w.u64(&c.DestinationOffset)
	w.u64(&c.Size)
}

type CommandEncoderFinishCmd struct {
	Self       Object
	Descriptor *CommandBufferDescriptor
	Result     ObjectHandle
}

func (*CommandEncoderFinishCmd) ID() uint32 { return uint32(CommandEncoderFinish) }

func (c *CommandEncoderFinishCmd) RequiredSize() int { return requiredSize(c) }

func (c *CommandEncoderFinishCmd) Serialize(buf []byte, ids ObjectIDProvider) error {
	return serialize(c, buf, ids)
}

func (c *CommandEncoderFinishCmd) Deserialize(buf []byte, alloc Allocator, ids ObjectIDResolver) ([]byte, error) {
	return deserialize(c, buf, alloc, ids)
}

func (c *CommandEncoderFinishCmd) walk(w walker) {
	w.object(ObjectTypeCommandEncoder, &c.Self)
	optional(w, &c.Descriptor, (*CommandBufferDescriptor).walk)
	w.handle(&c.Result)
}

// DestroyObjectCmd releases the last client reference to an object.
type DestroyObjectCmd struct {
	ObjectType ObjectType
	ObjectID   ObjectHandle
}

func (*DestroyObjectCmd) ID() uint32 { return uint32(DestroyObject) }

func (c *DestroyObjectCmd) RequiredSize() int { return requiredSize(c) }

func (c *DestroyObjectCmd) Serialize(buf []byte, ids ObjectIDProvider) error {
	return serialize(c, buf, ids)
}

func (c *DestroyObjectCmd) Deserialize(buf []byte, alloc Allocator, ids ObjectIDResolver) ([]byte, error) {
	return deserialize(c, buf, alloc, ids)
}

func (c *DestroyObjectCmd) walk(w walker) {
	enum(w, &c.ObjectType)
	w.handle(&c.ObjectID)
}

type DeviceCreateBindGroupLayoutCmd struct {
	Self       Object
	Descriptor BindGroupLayoutDescriptor
	Result     ObjectHandle
}

func (*DeviceCreateBindGroupLayoutCmd) ID() uint32 { return uint32(DeviceCreateBindGroupLayout) }

func (c *DeviceCreateBindGroupLayoutCmd) RequiredSize() int { return requiredSize(c) }

func (c *DeviceCreateBindGroupLayoutCmd) Serialize(buf []byte, ids ObjectIDProvider) error {
	return serialize(c, buf, ids)
}

func (c *DeviceCreateBindGroupLayoutCmd) Deserialize(buf []byte, alloc Allocator, ids ObjectIDResolver) ([]byte, error) {
	return deserialize(c, buf, alloc, ids)
}

func (c *DeviceCreateBindGroupLayoutCmd) walk(w walker) {
	w.object(ObjectTypeDevice, &c.Self)
	c.Descriptor.walk(w)
	w.handle(&c.Result)
}

type DeviceCreateBufferCmd struct {
	Self       Object
	Descriptor BufferDescriptor
	Result     ObjectHandle
}

func (*DeviceCreateBufferCmd) ID() uint32 { return uint32(DeviceCreateBuffer) }

func (c *DeviceCreateBufferCmd) RequiredSize() int { return requiredSize(c) }

func (c *DeviceCreateBufferCmd) Serialize(buf []byte, ids ObjectIDProvider) error {
	return serialize(c, buf, ids)
}

func (c *DeviceCreateBufferCmd) Deserialize(buf []byte, alloc Allocator, ids ObjectIDResolver) ([]byte, error) {
	return deserialize(c, buf, alloc, ids)
}

func (c *DeviceCreateBufferCmd) walk(w walker) {
	w.object(ObjectTypeDevice, &c.Self)
	c.Descriptor.walk(w)
	w.handle(&c.Result)
}

type DeviceCreateCommandEncoderCmd struct {
	Self       Object
	Descriptor *CommandEncoderDescriptor
	Result     ObjectHandle
}

func (*DeviceCreateCommandEncoderCmd) ID() uint32 { return uint32(DeviceCreateCommandEncoder) }

func (c *DeviceCreateCommandEncoderCmd) RequiredSize() int { return requiredSize(c) }

func (c *DeviceCreateCommandEncoderCmd) Serialize(buf []byte, ids ObjectIDProvider) error {
	return serialize(c, buf, ids)
}

func (c *DeviceCreateCommandEncoderCmd) Deserialize(buf []byte, alloc Allocator, ids ObjectIDResolver) ([]byte, error) {
	return deserialize(c, buf, alloc, ids)
}

func (c *DeviceCreateCommandEncoderCmd) walk(w walker) {
	w.object(ObjectTypeDevice, &c.Self)
	optional(w, &c.Descriptor, (*CommandEncoderDescriptor).walk)
	w.handle(&c.Result)
}

// DeviceCreateComputePipelineAsyncCmd creates a pipeline in the reserved slot
// Result; completion is reported with the request serial.
type DeviceCreateComputePipelineAsyncCmd struct {
	Self          Object
	RequestSerial uint64
	Result        ObjectHandle
	Descriptor    ComputePipelineDescriptor
}

func (*DeviceCreateComputePipelineAsyncCmd) ID() uint32 { return uint32(DeviceCreateComputePipelineAsync) }

func (c *DeviceCreateComputePipelineAsyncCmd) RequiredSize() int { return requiredSize(c) }

func (c *DeviceCreateComputePipelineAsyncCmd) Serialize(buf []byte, ids ObjectIDProvider) error {
	return serialize(c, buf, ids)
}

func (c *DeviceCreateComputePipelineAsyncCmd) Deserialize(buf []byte, alloc Allocator, ids ObjectIDResolver) ([]byte, error) {
	return deserialize(c, buf, alloc, ids)
}

func (c *DeviceCreateComputePipelineAsyncCmd) walk(w walker) {
	w.object(ObjectTypeDevice, &c.Self)
	w.u64(&c.RequestSerial)
	w.handle(&c.Result)
	c.Descriptor.walk(w)
}

type DeviceCreatePipelineLayoutCmd struct {
	Self       Object
	Descriptor PipelineLayoutDescriptor
	Result     ObjectHandle
}

func (*DeviceCreatePipelineLayoutCmd) ID() uint32 { return uint32(DeviceCreatePipelineLayout) }

func (c *DeviceCreatePipelineLayoutCmd) RequiredSize() int { return requiredSize(c) }

func (c *DeviceCreatePipelineLayoutCmd) Serialize(buf []byte, ids ObjectIDProvider) error {
	return serialize(c, buf, ids)
}

func (c *DeviceCreatePipelineLayoutCmd) Deserialize(buf []byte, alloc Allocator, ids ObjectIDResolver) ([]byte, error) {
	return deserialize(c, buf, alloc, ids)
}

func (c *DeviceCreatePipelineLayoutCmd) walk(w walker) {
	w.object(ObjectTypeDevice, &c.Self)
	c.Descriptor.walk(w)
	w.handle(&c.Result)
}

type DeviceCreateRenderPipelineAsyncCmd struct {
	Self          Object
	RequestSerial uint64
	Result        ObjectHandle
	Descriptor    RenderPipelineDescriptor
}

func (*DeviceCreateRenderPipelineAsyncCmd) ID() uint32 { return uint32(DeviceCreateRenderPipelineAsync) }

func (c *DeviceCreateRenderPipelineAsyncCmd) RequiredSize() int { return requiredSize(c) }

func (c *DeviceCreateRenderPipelineAsyncCmd) Serialize(buf []byte, ids ObjectIDProvider) error {
	return serialize(c, buf, ids)
}

func (c *DeviceCreateRenderPipelineAsyncCmd) Deserialize(buf []byte, alloc Allocator, ids ObjectIDResolver) ([]byte, error) {
	return deserialize(c, buf, alloc, ids)
}

func (c *DeviceCreateRenderPipelineAsyncCmd) walk(w walker) {
	w.object(ObjectTypeDevice, &c.Self)
	w.u64(&c.RequestSerial)
	w.handle(&c.Result)
	c.Descriptor.walk(w)
}

type DeviceCreateShaderModuleCmd struct {
	Self       Object
	Descriptor ShaderModuleDescriptor
	Result     ObjectHandle
}

func (*DeviceCreateShaderModuleCmd) ID() uint32 { return uint32(DeviceCreateShaderModule) }

func (c *DeviceCreateShaderModuleCmd) RequiredSize() int { return requiredSize(c) }

func (c *DeviceCreateShaderModuleCmd) Serialize(buf []byte, ids ObjectIDProvider) error {
	return serialize(c, buf, ids)
}

func (c *DeviceCreateShaderModuleCmd) Deserialize(buf []byte, alloc Allocator, ids ObjectIDResolver) ([]byte, error) {
	return deserialize(c, buf, alloc, ids)
}

func (c *DeviceCreateShaderModuleCmd) walk(w walker) {
	w.object(ObjectTypeDevice, &c.Self)
	c.Descriptor.walk(w)
	w.handle(&c.Result)
}

type DeviceCreateTextureCmd struct {
	Self       Object
	Descriptor TextureDescriptor
	Result     ObjectHandle
}

func (*DeviceCreateTextureCmd) ID() uint32 { return uint32(DeviceCreateTexture) }

func (c *DeviceCreateTextureCmd) RequiredSize() int { return requiredSize(c) }

func (c *DeviceCreateTextureCmd) Serialize(buf []byte, ids ObjectIDProvider) error {
	return serialize(c, buf, ids)
}

func (c *DeviceCreateTextureCmd) Deserialize(buf []byte, alloc Allocator, ids ObjectIDResolver) ([]byte, error) {
	return deserialize(c, buf, alloc, ids)
}

func (c *DeviceCreateTextureCmd) walk(w walker) {
	w.object(ObjectTypeDevice, &c.Self)
	c.Descriptor.walk(w)
	w.handle(&c.Result)
}

type DeviceDestroyCmd struct {
	Self Object
}

func (*DeviceDestroyCmd) ID() uint32 { return uint32(DeviceDestroy) }

func (c *DeviceDestroyCmd) RequiredSize() int { return requiredSize(c) }

func (c *DeviceDestroyCmd) Serialize(buf []byte, ids ObjectIDProvider) error {
	return serialize(c, buf, ids)
}

func (c *DeviceDestroyCmd) Deserialize(buf []byte, alloc Allocator, ids ObjectIDResolver) ([]byte, error) {
	return deserialize(c, buf, alloc, ids)
}

func (c *DeviceDestroyCmd) walk(w walker) {
	w.object(ObjectTypeDevice, &c.Self)
}

type DeviceGetQueueCmd struct {
	Self   Object
	Result ObjectHandle
}

func (*DeviceGetQueueCmd) ID() uint32 { return uint32(DeviceGetQueue) }

func (c *DeviceGetQueueCmd) RequiredSize() int { return requiredSize(c) }

func (c *DeviceGetQueueCmd) Serialize(buf []byte, ids ObjectIDProvider) error {
	return serialize(c, buf, ids)
}

func (c *DeviceGetQueueCmd) Deserialize(buf []byte, alloc Allocator, ids ObjectIDResolver) ([]byte, error) {
	return deserialize(c, buf, alloc, ids)
}

func (c *DeviceGetQueueCmd) walk(w walker) {
	w.object(ObjectTypeDevice, &c.Self)
	w.handle(&c.Result)
}

type DeviceInjectErrorCmd struct {
	Self    Object
	Type    ErrorType
	Message string
}

func (*DeviceInjectErrorCmd) ID() uint32 { return uint32(DeviceInjectError) }

func (c *DeviceInjectErrorCmd) RequiredSize() int { return requiredSize(c) }

func (c *DeviceInjectErrorCmd) Serialize(buf []byte, ids ObjectIDProvider) error {
	return serialize(c, buf, ids)
}

func (c *DeviceInjectErrorCmd) Deserialize(buf []byte, alloc Allocator, ids ObjectIDResolver) ([]byte, error) {
	return deserialize(c, buf, alloc, ids)
}

func (c *DeviceInjectErrorCmd) walk(w walker) {
	w.object(ObjectTypeDevice, &c.Self)
	enum(w, &c.Type)
	w.str(&c.Message)
}

type DevicePopErrorScopeCmd struct {
	Self          Object
	RequestSerial uint64
}

func (*DevicePopErrorScopeCmd) ID() uint32 { return uint32(DevicePopErrorScope) }

func (c *DevicePopErrorScopeCmd) RequiredSize() int { return requiredSize(c) }

func (c *DevicePopErrorScopeCmd) Serialize(buf []byte, ids ObjectIDProvider) error {
	return serialize(c, buf, ids)
}

func (c *DevicePopErrorScopeCmd) Deserialize(buf []byte, alloc Allocator, ids ObjectIDResolver) ([]byte, error) {
	return deserialize(c, buf, alloc, ids)
}

func (c *DevicePopErrorScopeCmd) walk(w walker) {
	w.object(ObjectTypeDevice, &c.Self)
	w.u64(&c.RequestSerial)
}

type DevicePushErrorScopeCmd struct {
	Self   Object
	Filter ErrorFilter
}

func (*DevicePushErrorScopeCmd) ID() uint32 { return uint32(DevicePushErrorScope) }

func (c *DevicePushErrorScopeCmd) RequiredSize() int { return requiredSize(c) }

func (c *DevicePushErrorScopeCmd) Serialize(buf []byte, ids ObjectIDProvider) error {
	return serialize(c, buf, ids)
}

func (c *DevicePushErrorScopeCmd) Deserialize(buf []byte, alloc Allocator, ids ObjectIDResolver) ([]byte, error) {
	return deserialize(c, buf, alloc, ids)
}

func (c *DevicePushErrorScopeCmd) walk(w walker) {
	w.object(ObjectTypeDevice, &c.Self)
	enum(w, &c.Filter)
}

// DeviceTickCmd lets the server make progress on deferred work, and flush
// the completions it produced.
type DeviceTickCmd struct {
	Self Object
}

func (*DeviceTickCmd) ID() uint32 { return uint32(DeviceTick) }

func (c *DeviceTickCmd) RequiredSize() int { return requiredSize(c) }

func (c *DeviceTickCmd) Serialize(buf []byte, ids ObjectIDProvider) error {
	return serialize(c, buf, ids)
}

func (c *DeviceTickCmd) Deserialize(buf []byte, alloc Allocator, ids ObjectIDResolver) ([]byte, error) {
	return deserialize(c, buf, alloc, ids)
}

func (c *DeviceTickCmd) walk(w walker) {
	w.object(ObjectTypeDevice, &c.Self)
}

type QueueOnSubmittedWorkDoneCmd struct {
	Self          Object
	RequestSerial uint64
}

func (*QueueOnSubmittedWorkDoneCmd) ID() uint32 { return uint32(QueueOnSubmittedWorkDone) }

func (c *QueueOnSubmittedWorkDoneCmd) RequiredSize() int { return requiredSize(c) }

func (c *QueueOnSubmittedWorkDoneCmd) Serialize(buf []byte, ids ObjectIDProvider) error {
	return serialize(c, buf, ids)
}

func (c *QueueOnSubmittedWorkDoneCmd) Deserialize(buf []byte, alloc Allocator, ids ObjectIDResolver) ([]byte, error) {
	return deserialize(c, buf, alloc, ids)
}

func (c *QueueOnSubmittedWorkDoneCmd) walk(w walker) {
	w.object(ObjectTypeQueue, &c.Self)
	w.u64(&c.RequestSerial)
}

type QueueSubmitCmd struct {
	Self     Object
	Commands []Object
}

func (*QueueSubmitCmd) ID() uint32 { return uint32(QueueSubmit) }

func (c *QueueSubmitCmd) RequiredSize() int { return requiredSize(c) }

func (c *QueueSubmitCmd) Serialize(buf []byte, ids ObjectIDProvider) error {
	return serialize(c, buf, ids)
}

func (c *QueueSubmitCmd) Deserialize(buf []byte, alloc Allocator, ids ObjectIDResolver) ([]byte, error) {
	return deserialize(c, buf, alloc, ids)
}

func (c *QueueSubmitCmd) walk(w walker) {
	w.object(ObjectTypeQueue, &c.Self)
	objects(w, ObjectTypeCommandBuffer, &c.Commands)
}

type QueueWriteBufferCmd struct {
	Self         Object
	Buffer       Object
	BufferOffset uint64
	Data         []byte
}

func (*QueueWriteBufferCmd) ID() uint32 { return uint32(QueueWriteBuffer) }

func (c *QueueWriteBufferCmd) RequiredSize() int { return requiredSize(c) }

func (c *QueueWriteBufferCmd) Serialize(buf []byte, ids ObjectIDProvider) error {
	return serialize(c, buf, ids)
}

func (c *QueueWriteBufferCmd) Deserialize(buf []byte, alloc Allocator, ids ObjectIDResolver) ([]byte, error) {
	return deserialize(c, buf, alloc, ids)
}

func (c *QueueWriteBufferCmd) walk(w walker) {
	w.object(ObjectTypeQueue, &c.Self)
	w.object(ObjectTypeBuffer, &c.Buffer)
	w.u64(&c.BufferOffset)
	w.data(&c.Data)
}
