package wire

// ReturnBufferMapAsyncCallbackCmd completes a map request. For reads the
// mapped bytes travel with the completion.
type ReturnBufferMapAsyncCallbackCmd struct {
	Buffer        ObjectHandle
	RequestSerial uint64
	Status        MapAsyncStatus
	Message       string
	ReadData      []byte
}

func (*ReturnBufferMapAsyncCallbackCmd) ID() uint32 { return uint32(ReturnBufferMapAsyncCallback) }

func (c *ReturnBufferMapAsyncCallbackCmd) RequiredSize() int { return requiredSize(c) }

func (c *ReturnBufferMapAsyncCallbackCmd) Serialize(buf []byte, ids ObjectIDProvider) error {
	return serialize(c, buf, ids)
}

func (c *ReturnBufferMapAsyncCallbackCmd) Deserialize(buf []byte, alloc Allocator, ids ObjectIDResolver) ([]byte, error) {
	return deserialize(c, buf, alloc, ids)
}

func (c *ReturnBufferMapAsyncCallbackCmd) walk(w walker) {
	w.handle(&c.Buffer)
	w.u64(&c.RequestSerial)
	enum(w, &c.Status)
	w.str(&c.Message)
	w.optionalData(&c.ReadData)
}

type ReturnDeviceCreateComputePipelineAsyncCallbackCmd struct {
	Device        ObjectHandle
	RequestSerial uint64
	Status        CreatePipelineAsyncStatus
	Message       string
}

func (*ReturnDeviceCreateComputePipelineAsyncCallbackCmd) ID() uint32 { return uint32(ReturnDeviceCreateComputePipelineAsyncCallback) }

func (c *ReturnDeviceCreateComputePipelineAsyncCallbackCmd) RequiredSize() int { return requiredSize(c) }

func (c *ReturnDeviceCreateComputePipelineAsyncCallbackCmd) Serialize(buf []byte, ids ObjectIDProvider) error {
	return serialize(c, buf, ids)
}

func (c *ReturnDeviceCreateComputePipelineAsyncCallbackCmd) Deserialize(buf []byte, alloc Allocator, ids ObjectIDResolver) ([]byte, error) {
	return deserialize(c, buf, alloc, ids)
}

func (c *ReturnDeviceCreateComputePipelineAsyncCallbackCmd) walk(w walker) {
	w.handle(&c.Device)
	w.u64(&c.RequestSerial)
	enum(w, &c.Status)
	w.str(&c.Message)
}

type ReturnDeviceCreateRenderPipelineAsyncCallbackCmd struct {
	Device        ObjectHandle
	RequestSerial uint64
	Status        CreatePipelineAsyncStatus
	Message       string
}

func (*ReturnDeviceCreateRenderPipelineAsyncCallbackCmd) ID() uint32 { return uint32(ReturnDeviceCreateRenderPipelineAsyncCallback) }

func (c *ReturnDeviceCreateRenderPipelineAsyncCallbackCmd) RequiredSize() int { return requiredSize(c) }

func (c *ReturnDeviceCreateRenderPipelineAsyncCallbackCmd) Serialize(buf []byte, ids ObjectIDProvider) error {
	return serialize(c, buf, ids)
}

func (c *ReturnDeviceCreateRenderPipelineAsyncCallbackCmd) Deserialize(buf []byte, alloc Allocator, ids ObjectIDResolver) ([]byte, error) {
	return deserialize(c, buf, alloc, ids)
}

func (c *ReturnDeviceCreateRenderPipelineAsyncCallbackCmd) walk(w walker) {
	w.handle(&c.Device)
	w.u64(&c.RequestSerial)
	enum(w, &c.Status)
	w.str(&c.Message)
}

type ReturnDeviceLoggingCallbackCmd struct {
	Device  ObjectHandle
	Type    LoggingType
	Message string
}

func (*ReturnDeviceLoggingCallbackCmd) ID() uint32 { return uint32(ReturnDeviceLoggingCallback) }

func (c *ReturnDeviceLoggingCallbackCmd) RequiredSize() int { return requiredSize(c) }

func (c *ReturnDeviceLoggingCallbackCmd) Serialize(buf []byte, ids ObjectIDProvider) error {
	return serialize(c, buf, ids)
}

func (c *ReturnDeviceLoggingCallbackCmd) Deserialize(buf []byte, alloc Allocator, ids ObjectIDResolver) ([]byte, error) {
	return deserialize(c, buf, alloc, ids)
}

func (c *ReturnDeviceLoggingCallbackCmd) walk(w walker) {
	w.handle(&c.Device)
	enum(w, &c.Type)
	w.str(&c.Message)
}

// ReturnDeviceLostCallbackCmd is sent unsolicited when the device is lost.
type ReturnDeviceLostCallbackCmd struct {
	Device  ObjectHandle
	Reason  DeviceLostReason
	Message string
}

func (*ReturnDeviceLostCallbackCmd) ID() uint32 { return uint32(ReturnDeviceLostCallback) }

func (c *ReturnDeviceLostCallbackCmd) RequiredSize() int { return requiredSize(c) }

func (c *ReturnDeviceLostCallbackCmd) Serialize(buf []byte, ids ObjectIDProvider) error {
	return serialize(c, buf, ids)
}

func (c *ReturnDeviceLostCallbackCmd) Deserialize(buf []byte, alloc Allocator, ids ObjectIDResolver) ([]byte, error) {
	return deserialize(c, buf, alloc, ids)
}

func (c *ReturnDeviceLostCallbackCmd) walk(w walker) {
	w.handle(&c.Device)
	enum(w, &c.Reason)
	w.str(&c.Message)
}

type ReturnDevicePopErrorScopeCallbackCmd struct {
	Device        ObjectHandle
	RequestSerial uint64
	Status        PopErrorScopeStatus
	Type          ErrorType
	Message       string
}

func (*ReturnDevicePopErrorScopeCallbackCmd) ID() uint32 { return uint32(ReturnDevicePopErrorScopeCallback) }

func (c *ReturnDevicePopErrorScopeCallbackCmd) RequiredSize() int { return requiredSize(c) }

func (c *ReturnDevicePopErrorScopeCallbackCmd) Serialize(buf []byte, ids ObjectIDProvider) error {
	return serialize(c, buf, ids)
}

func (c *ReturnDevicePopErrorScopeCallbackCmd) Deserialize(buf []byte, alloc Allocator, ids ObjectIDResolver) ([]byte, error) {
	return deserialize(c, buf, alloc, ids)
}

func (c *ReturnDevicePopErrorScopeCallbackCmd) walk(w walker) {
	w.handle(&c.Device)
	w.u64(&c.RequestSerial)
	enum(w, &c.Status)
	enum(w, &c.Type)
	w.str(&c.Message)
}

// ReturnDeviceUncapturedErrorCallbackCmd is sent unsolicited for errors that
// no error scope captured.
type ReturnDeviceUncapturedErrorCallbackCmd struct {
	Device  ObjectHandle
	Type    ErrorType
	Message string
}

func (*ReturnDeviceUncapturedErrorCallbackCmd) ID() uint32 { return uint32(ReturnDeviceUncapturedErrorCallback) }

func (c *ReturnDeviceUncapturedErrorCallbackCmd) RequiredSize() int { return requiredSize(c) }

func (c *ReturnDeviceUncapturedErrorCallbackCmd) Serialize(buf []byte, ids ObjectIDProvider) error {
	return serialize(c, buf, ids)
}

func (c *ReturnDeviceUncapturedErrorCallbackCmd) Deserialize(buf []byte, alloc Allocator, ids ObjectIDResolver) ([]byte, error) {
	return deserialize(c, buf, alloc, ids)
}

func (c *ReturnDeviceUncapturedErrorCallbackCmd) walk(w walker) {
	w.handle(&c.Device)
	enum(w, &c.Type)
	w.str(&c.Message)
}

type ReturnQueueWorkDoneCallbackCmd struct {
	Queue         ObjectHandle
	RequestSerial uint64
	Status        QueueWorkDoneStatus
}

func (*ReturnQueueWorkDoneCallbackCmd) ID() uint32 { return uint32(ReturnQueueWorkDoneCallback) }

func (c *ReturnQueueWorkDoneCallbackCmd) RequiredSize() int { return requiredSize(c) }

func (c *ReturnQueueWorkDoneCallbackCmd) Serialize(buf []byte, ids ObjectIDProvider) error {
	return serialize(c, buf, ids)
}

func (c *ReturnQueueWorkDoneCallbackCmd) Deserialize(buf []byte, alloc Allocator, ids ObjectIDResolver) ([]byte, error) {
	return deserialize(c, buf, alloc, ids)
}

func (c *ReturnQueueWorkDoneCallbackCmd) walk(w walker) {
	w.handle(&c.Queue)
	w.u64(&c.RequestSerial)
	enum(w, &c.Status)
}
