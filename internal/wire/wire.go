// Package wire implements the command encoding shared by both ends of a GPU
// command-buffer connection.
//
// A client records API calls as commands into a byte stream, a server decodes
// them and replays the calls against a real implementation, and sends back
// return commands carrying completions of asynchronous requests and device
// notifications. Objects never cross the wire by pointer: each side keeps its
// own ObjectTable per object type and refers to objects by ObjectHandle.
//
// Every command starts with an 8 byte header holding the total size of the
// command and its identifier. The fixed fields follow, then the variable
// length payloads (strings, arrays, optional structs), each aligned to 8
// bytes. All integers are little endian.
package wire

import "fmt"

// ObjectType enumerates the kinds of objects referenced across the wire.
type ObjectType uint32

const (
	ObjectTypeDevice ObjectType = iota
	ObjectTypeQueue
	ObjectTypeBuffer
	ObjectTypeTexture
	ObjectTypeShaderModule
	ObjectTypeBindGroupLayout
	ObjectTypePipelineLayout
	ObjectTypeComputePipeline
	ObjectTypeRenderPipeline
	ObjectTypeCommandEncoder
	ObjectTypeCommandBuffer
)

// NumObjectTypes is the number of distinct object types.
const NumObjectTypes = int(ObjectTypeCommandBuffer) + 1

func (t ObjectType) String() string {
	if int(t) < len(objectTypeStrings) {
		return objectTypeStrings[t]
	}
	return fmt.Sprintf("ObjectType(%d)", uint32(t))
}

var objectTypeStrings = [...]string{
	ObjectTypeDevice:          "Device",
	ObjectTypeQueue:           "Queue",
	ObjectTypeBuffer:          "Buffer",
	ObjectTypeTexture:         "Texture",
	ObjectTypeShaderModule:    "ShaderModule",
	ObjectTypeBindGroupLayout: "BindGroupLayout",
	ObjectTypePipelineLayout:  "PipelineLayout",
	ObjectTypeComputePipeline: "ComputePipeline",
	ObjectTypeRenderPipeline:  "RenderPipeline",
	ObjectTypeCommandEncoder:  "CommandEncoder",
	ObjectTypeCommandBuffer:   "CommandBuffer",
}

// ObjectHandle is the wire representation of an object reference.
//
// The id indexes the per-type table of both ends; the generation is bumped
// every time the slot is reused so that stale references are detected instead
// of silently aliasing a newer object. Id zero is the null reference.
type ObjectHandle struct {
	ID         uint32
	Generation uint32
}

// DeviceHandle is the handle of the device bootstrapped on both ends of a
// connection before any command is exchanged.
var DeviceHandle = ObjectHandle{ID: 1}

func (h ObjectHandle) IsNull() bool { return h.ID == 0 }

func (h ObjectHandle) String() string {
	return fmt.Sprintf("#%d/%d", h.ID, h.Generation)
}

// Object is the local value an ObjectHandle resolves to. The client resolves
// handles to proxies, the server to objects of the backend it drives.
type Object = any

// Result is the outcome of resolving an object reference or decoding a
// command.
type Result int

const (
	// Success means the command or reference is valid.
	Success Result = iota
	// FatalError means the input is corrupted or malicious; the connection
	// must be terminated.
	FatalError
	// ErrorObject means the reference resolved to an object whose creation
	// failed. Operations on error objects are valid and produce more errors,
	// so this outcome is not a protocol violation.
	ErrorObject
)

func (r Result) String() string {
	switch r {
	case Success:
		return "Success"
	case FatalError:
		return "FatalError"
	case ErrorObject:
		return "ErrorObject"
	default:
		return fmt.Sprintf("Result(%d)", int(r))
	}
}

// ObjectIDProvider translates local objects into wire handles when
// serializing commands.
type ObjectIDProvider interface {
	GetID(t ObjectType, obj Object) (ObjectHandle, error)
	GetOptionalID(t ObjectType, obj Object) (ObjectHandle, error)
}

// ObjectIDResolver translates wire handles back into local objects when
// deserializing commands.
type ObjectIDResolver interface {
	GetFromID(t ObjectType, h ObjectHandle) (Object, Result)
	GetOptionalFromID(t ObjectType, h ObjectHandle) (Object, Result)
}

// HandleResolver resolves every handle to itself. It is used to decode
// commands outside of a live connection, for example to inspect a trace.
type HandleResolver struct{}

func (HandleResolver) GetFromID(t ObjectType, h ObjectHandle) (Object, Result) {
	if h.IsNull() {
		return nil, FatalError
	}
	return h, Success
}

func (HandleResolver) GetOptionalFromID(t ObjectType, h ObjectHandle) (Object, Result) {
	if h.IsNull() {
		return nil, Success
	}
	return h, Success
}

// HandleProvider is the counterpart of HandleResolver: objects are expected
// to already be ObjectHandle values.
type HandleProvider struct{}

func (HandleProvider) GetID(t ObjectType, obj Object) (ObjectHandle, error) {
	h, ok := obj.(ObjectHandle)
	if !ok || h.IsNull() {
		return ObjectHandle{}, fmt.Errorf("%w: %s reference is not a handle: %T", ErrNullObject, t, obj)
	}
	return h, nil
}

func (HandleProvider) GetOptionalID(t ObjectType, obj Object) (ObjectHandle, error) {
	if obj == nil {
		return ObjectHandle{}, nil
	}
	h, ok := obj.(ObjectHandle)
	if !ok {
		return ObjectHandle{}, fmt.Errorf("%w: %s reference is not a handle: %T", ErrUnknownObject, t, obj)
	}
	return h, nil
}
