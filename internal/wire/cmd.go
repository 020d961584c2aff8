package wire

import "fmt"

// WireCmd identifies commands sent from the client to the server.
//
// Values are dense, start at one, and are ordered alphabetically; the server
// relies on the ordering to keep its dispatch table sorted.
type WireCmd uint32

const (
	BufferDestroy WireCmd = iota + 1
	BufferMapAsync
	BufferUnmap
	BufferUpdateMappedData
	CommandEncoderCopyBufferToBuffer
	CommandEncoderFinish
	DestroyObject
	DeviceCreateBindGroupLayout
	DeviceCreateBuffer
	DeviceCreateCommandEncoder
	DeviceCreateComputePipelineAsync
	DeviceCreatePipelineLayout
	DeviceCreateRenderPipelineAsync
	DeviceCreateShaderModule
	DeviceCreateTexture
	DeviceDestroy
	DeviceGetQueue
	DeviceInjectError
	DevicePopErrorScope
	DevicePushErrorScope
	DeviceTick
	QueueOnSubmittedWorkDone
	QueueSubmit
	QueueWriteBuffer
	numWireCmds
)

// WireCmds lists every client command, in dispatch order.
func WireCmds() []WireCmd {
	cmds := make([]WireCmd, 0, numWireCmds-1)
	for c := BufferDestroy; c < numWireCmds; c++ {
		cmds = append(cmds, c)
	}
	return cmds
}

func (c WireCmd) String() string {
	if c > 0 && c < numWireCmds {
		return wireCmdStrings[c]
	}
	return fmt.Sprintf("WireCmd(%d)", uint32(c))
}

var wireCmdStrings = [...]string{
	BufferDestroy:                    "BufferDestroy",
	BufferMapAsync:                   "BufferMapAsync",
	BufferUnmap:                      "BufferUnmap",
	BufferUpdateMappedData:           "BufferUpdateMappedData",
	CommandEncoderCopyBufferToBuffer: "CommandEncoderCopyBufferToBuffer",
	CommandEncoderFinish:             "CommandEncoderFinish",
	DestroyObject:                    "DestroyObject",
	DeviceCreateBindGroupLayout:      "DeviceCreateBindGroupLayout",
	DeviceCreateBuffer:               "DeviceCreateBuffer",
	DeviceCreateCommandEncoder:       "DeviceCreateCommandEncoder",
	DeviceCreateComputePipelineAsync: "DeviceCreateComputePipelineAsync",
	DeviceCreatePipelineLayout:       "DeviceCreatePipelineLayout",
	DeviceCreateRenderPipelineAsync:  "DeviceCreateRenderPipelineAsync",
	DeviceCreateShaderModule:         "DeviceCreateShaderModule",
	DeviceCreateTexture:              "DeviceCreateTexture",
	DeviceDestroy:                    "DeviceDestroy",
	DeviceGetQueue:                   "DeviceGetQueue",
	DeviceInjectError:                "DeviceInjectError",
	DevicePopErrorScope:              "DevicePopErrorScope",
	DevicePushErrorScope:             "DevicePushErrorScope",
	DeviceTick:                       "DeviceTick",
	QueueOnSubmittedWorkDone:         "QueueOnSubmittedWorkDone",
	QueueSubmit:                      "QueueSubmit",
	QueueWriteBuffer:                 "QueueWriteBuffer",
}

// ReturnWireCmd identifies commands sent from the server to the client.
//
// The values live in a range disjoint from WireCmd so a command can never be
// mistaken for a return command even if both end up in the same buffer.
type ReturnWireCmd uint32

const returnWireCmdBase = 1 << 16

const (
	ReturnBufferMapAsyncCallback ReturnWireCmd = returnWireCmdBase + iota
	ReturnDeviceCreateComputePipelineAsyncCallback
	ReturnDeviceCreateRenderPipelineAsyncCallback
	ReturnDeviceLoggingCallback
	ReturnDeviceLostCallback
	ReturnDevicePopErrorScopeCallback
	ReturnDeviceUncapturedErrorCallback
	ReturnQueueWorkDoneCallback
	numReturnWireCmds
)

// ReturnWireCmds lists every return command, in dispatch order.
func ReturnWireCmds() []ReturnWireCmd {
	cmds := make([]ReturnWireCmd, 0, numReturnWireCmds-returnWireCmdBase)
	for c := ReturnBufferMapAsyncCallback; c < numReturnWireCmds; c++ {
		cmds = append(cmds, c)
	}
	return cmds
}

func (c ReturnWireCmd) String() string {
	if c >= returnWireCmdBase && c < numReturnWireCmds {
		return returnWireCmdStrings[c-returnWireCmdBase]
	}
	return fmt.Sprintf("ReturnWireCmd(%d)", uint32(c))
}

var returnWireCmdStrings = [...]string{
	ReturnBufferMapAsyncCallback - returnWireCmdBase:                   "ReturnBufferMapAsyncCallback",
	ReturnDeviceCreateComputePipelineAsyncCallback - returnWireCmdBase: "ReturnDeviceCreateComputePipelineAsyncCallback",
	ReturnDeviceCreateRenderPipelineAsyncCallback - returnWireCmdBase:  "ReturnDeviceCreateRenderPipelineAsyncCallback",
	ReturnDeviceLoggingCallback - returnWireCmdBase:                    "ReturnDeviceLoggingCallback",
	ReturnDeviceLostCallback - returnWireCmdBase:                       "ReturnDeviceLostCallback",
	ReturnDevicePopErrorScopeCallback - returnWireCmdBase:              "ReturnDevicePopErrorScopeCallback",
	ReturnDeviceUncapturedErrorCallback - returnWireCmdBase:            "ReturnDeviceUncapturedErrorCallback",
	ReturnQueueWorkDoneCallback - returnWireCmdBase:                    "ReturnQueueWorkDoneCallback",
}

// IsReturnCommand reports whether id belongs to the ReturnWireCmd space.
func IsReturnCommand(id uint32) bool { return id >= returnWireCmdBase }

// CommandName returns the name of a command or return command id.
func CommandName(id uint32) string {
	if IsReturnCommand(id) {
		return ReturnWireCmd(id).String()
	}
	return WireCmd(id).String()
}

// Command is implemented by every command and return command.
//
// RequiredSize, Serialize and Deserialize walk the same member list in the
// same order, which is what guarantees that the size reported before
// serializing is exactly the number of bytes written and later consumed.
type Command interface {
	// ID returns the numeric command id written in the header.
	ID() uint32

	// RequiredSize returns the number of bytes Serialize writes, header and
	// padding included.
	RequiredSize() int

	// Serialize writes the command to buf, which must be exactly
	// RequiredSize bytes long, translating object references with ids.
	Serialize(buf []byte, ids ObjectIDProvider) error

	// Deserialize decodes the command at the front of buf and returns the
	// bytes following it. Variable length members are copied into memory
	// obtained from alloc and object references are resolved with ids.
	//
	// A reference to an error object is reported with ErrErrorObject after
	// the command was fully decoded; any other error is fatal.
	Deserialize(buf []byte, alloc Allocator, ids ObjectIDResolver) ([]byte, error)
}

// NewCommand returns a zero value of the command type identified by id, or
// nil if the id is unknown.
func NewCommand(id uint32) Command {
	switch WireCmd(id) {
	case BufferDestroy:
		return new(BufferDestroyCmd)
	case BufferMapAsync:
		return new(BufferMapAsyncCmd)
	case BufferUnmap:
		return new(BufferUnmapCmd)
	case BufferUpdateMappedData:
		return new(BufferUpdateMappedDataCmd)
	case CommandEncoderCopyBufferToBuffer:
		return new(CommandEncoderCopyBufferToBufferCmd)
	case CommandEncoderFinish:
		return new(CommandEncoderFinishCmd)
	case DestroyObject:
		return new(DestroyObjectCmd)
	case DeviceCreateBindGroupLayout:
		return new(DeviceCreateBindGroupLayoutCmd)
	case DeviceCreateBuffer:
		return new(DeviceCreateBufferCmd)
	case DeviceCreateCommandEncoder:
		return new(DeviceCreateCommandEncoderCmd)
	case DeviceCreateComputePipelineAsync:
		return new(DeviceCreateComputePipelineAsyncCmd)
	case DeviceCreatePipelineLayout:
		return new(DeviceCreatePipelineLayoutCmd)
	case DeviceCreateRenderPipelineAsync:
		return new(DeviceCreateRenderPipelineAsyncCmd)
	case DeviceCreateShaderModule:
		return new(DeviceCreateShaderModuleCmd)
	case DeviceCreateTexture:
		return new(DeviceCreateTextureCmd)
	case DeviceDestroy:
		return new(DeviceDestroyCmd)
	case DeviceGetQueue:
		return new(DeviceGetQueueCmd)
	case DeviceInjectError:
		return new(DeviceInjectErrorCmd)
	case DevicePopErrorScope:
		return new(DevicePopErrorScopeCmd)
	case DevicePushErrorScope:
		return new(DevicePushErrorScopeCmd)
	case DeviceTick:
		return new(DeviceTickCmd)
	case QueueOnSubmittedWorkDone:
		return new(QueueOnSubmittedWorkDoneCmd)
	case QueueSubmit:
		return new(QueueSubmitCmd)
	case QueueWriteBuffer:
		return new(QueueWriteBufferCmd)
	}
	switch ReturnWireCmd(id) {
	case ReturnBufferMapAsyncCallback:
		return new(ReturnBufferMapAsyncCallbackCmd)
	case ReturnDeviceCreateComputePipelineAsyncCallback:
		return new(ReturnDeviceCreateComputePipelineAsyncCallbackCmd)
	case ReturnDeviceCreateRenderPipelineAsyncCallback:
		return new(ReturnDeviceCreateRenderPipelineAsyncCallbackCmd)
	case ReturnDeviceLoggingCallback:
		return new(ReturnDeviceLoggingCallbackCmd)
	case ReturnDeviceLostCallback:
		return new(ReturnDeviceLostCallbackCmd)
	case ReturnDevicePopErrorScopeCallback:
		return new(ReturnDevicePopErrorScopeCallbackCmd)
	case ReturnDeviceUncapturedErrorCallback:
		return new(ReturnDeviceUncapturedErrorCallbackCmd)
	case ReturnQueueWorkDoneCallback:
		return new(ReturnQueueWorkDoneCallbackCmd)
	}
	return nil
}

// DecodeCommand decodes the command at the front of buf, whatever its type.
func DecodeCommand(buf []byte, alloc Allocator, ids ObjectIDResolver) (Command, []byte, error) {
	id, _, _, err := NextCommand(buf)
	if err != nil {
		return nil, buf, err
	}
	cmd := NewCommand(id)
	if cmd == nil {
		return nil, buf, &ProtocolError{Command: id, Err: ErrUnknownCommand}
	}
	rest, err := cmd.Deserialize(buf, alloc, ids)
	return cmd, rest, err
}

// SerializeCommand allocates a buffer of the required size and serializes cmd
// into it.
func SerializeCommand(cmd Command, ids ObjectIDProvider) ([]byte, error) {
	buf := make([]byte, cmd.RequiredSize())
	if err := cmd.Serialize(buf, ids); err != nil {
		return nil, err
	}
	return buf, nil
}
