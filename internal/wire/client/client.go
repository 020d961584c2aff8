// Package client implements the producing end of a wire connection.
//
// A Client exposes proxies for the objects of a GPU device. Every method call
// on a proxy is serialized as a command; asynchronous calls return a Future
// completed when the matching return command is handled. The client is not
// safe for concurrent use: it is driven by a single goroutine which makes the
// API calls and periodically hands the bytes received from the server to
// HandleCommands.
package client

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/stealthrocket/dawnwire/internal/wire"
)

// ConnectionLostMessage is the message of the device lost notification
// fired when the client disconnects.
const ConnectionLostMessage = "GPU connection lost"

type Config struct {
	// StrictSerials makes a completion for a request the client does not
	// know about a protocol error. When false such completions are logged
	// and dropped.
	StrictSerials bool
}

type Client struct {
	serializer   wire.CommandSerializer
	config       Config
	disconnected bool
	serial       uint64
	objects      [wire.NumObjectTypes]*wire.ObjectTable[proxy]
	device       *Device
	arena        wire.Arena

	bufferMaps       tracker[*mapRequest]
	computePipelines tracker[*pipelineRequest[*ComputePipeline]]
	renderPipelines  tracker[*pipelineRequest[*RenderPipeline]]
	errorScopes      tracker[*Future[PopErrorScopeResult]]
	workDone         tracker[*Future[wire.QueueWorkDoneStatus]]
}

// New creates a client writing commands to serializer. The device is
// registered with the well known handle both ends agree on.
func New(serializer wire.CommandSerializer, config Config) *Client {
	c := &Client{serializer: serializer, config: config}
	for i := range c.objects {
		c.objects[i] = wire.NewObjectTable[proxy]()
	}
	c.device = &Device{}
	c.allocate(wire.ObjectTypeDevice, c.device)
	if c.device.handle != wire.DeviceHandle {
		panic("device must be the first object allocated")
	}
	return c
}

// Device returns the proxy of the device served by the peer.
func (c *Client) Device() *Device { return c.device }

// IsDisconnected reports whether Disconnect was called.
func (c *Client) IsDisconnected() bool { return c.disconnected }

// Flush sends the buffered commands to the server.
func (c *Client) Flush() error {
	if c.disconnected {
		return nil
	}
	if err := c.serializer.Flush(); err != nil {
		wire.Logger().Error("flushing commands", slog.Any("err", err))
		c.Disconnect()
		return err
	}
	return nil
}

// Poller is the receiving end of a transport.
type Poller interface {
	Poll(handler wire.CommandHandler) error
}

// Poll hands the return commands received by p to the client. A failure of p
// disconnects the client, so requests waiting for a completion from the peer
// complete with an InstanceDropped status.
func (c *Client) Poll(p Poller) error {
	err := p.Poll(c)
	if err != nil && !errors.Is(err, wire.ErrShortCommand) {
		wire.Logger().Error("polling return commands", slog.Any("err", err))
		c.Disconnect()
	}
	return err
}

// Disconnect tears the connection down. Every pending request completes
// with an InstanceDropped status, the device lost callback fires, and all
// subsequent calls complete immediately without reaching the transport.
// Calling Disconnect more than once has no effect.
func (c *Client) Disconnect() {
	if c.disconnected {
		return
	}
	c.disconnected = true
	c.serializer = wire.NoopSerializer{}
	wire.Logger().Info("client disconnected")

	for _, req := range c.bufferMaps.drain() {
		req.buffer.clearMapping()
		req.future.complete(MapAsyncResult{
			Status:  wire.MapAsyncStatusInstanceDropped,
			Message: ConnectionLostMessage,
		})
	}
	for _, req := range c.computePipelines.drain() {
		c.dropPipeline(&req.pipeline.object)
		req.future.complete(PipelineResult[*ComputePipeline]{
			Status:  wire.CreatePipelineAsyncStatusInstanceDropped,
			Message: ConnectionLostMessage,
		})
	}
	for _, req := range c.renderPipelines.drain() {
		c.dropPipeline(&req.pipeline.object)
		req.future.complete(PipelineResult[*RenderPipeline]{
			Status:  wire.CreatePipelineAsyncStatusInstanceDropped,
			Message: ConnectionLostMessage,
		})
	}
	for _, f := range c.errorScopes.drain() {
		f.complete(PopErrorScopeResult{
			Status:  wire.PopErrorScopeStatusInstanceDropped,
			Message: ConnectionLostMessage,
		})
	}
	for _, f := range c.workDone.drain() {
		f.complete(wire.QueueWorkDoneStatusInstanceDropped)
	}

	c.device.lose(wire.DeviceLostReasonInstanceDropped, ConnectionLostMessage)
}

// PendingRequests returns the number of requests waiting for a completion.
func (c *Client) PendingRequests() int {
	return c.bufferMaps.len() +
		c.computePipelines.len() +
		c.renderPipelines.len() +
		c.errorScopes.len() +
		c.workDone.len()
}

func (c *Client) nextSerial() uint64 {
	c.serial++
	return c.serial
}

func (c *Client) allocate(t wire.ObjectType, p proxy) {
	o := p.base()
	o.client, o.typ, o.refs = c, t, 1
	o.handle = c.objects[t].Allocate(p)
}

func (c *Client) reserve(t wire.ObjectType, p proxy) {
	o := p.base()
	o.client, o.typ, o.refs, o.reserved = c, t, 1, true
	o.handle = c.objects[t].Reserve()
}

func (c *Client) dropPipeline(o *object) {
	if err := c.objects[o.typ].Free(o.handle.ID); err != nil {
		wire.Logger().Warn("freeing pipeline reservation", slog.Any("err", err))
	}
	o.refs = 0
}

func (c *Client) destroy(o *object) {
	if r, ok := c.lookup(o.typ, o.handle).(releaser); ok {
		r.released()
	}
	if !o.unsent {
		c.serialize(&wire.DestroyObjectCmd{ObjectType: o.typ, ObjectID: o.handle}, nil)
	}
	if err := c.objects[o.typ].Free(o.handle.ID); err != nil {
		wire.Logger().Warn("releasing object", slog.Any("type", o.typ), slog.Any("handle", o.handle), slog.Any("err", err))
	}
}

func (c *Client) lookup(t wire.ObjectType, h wire.ObjectHandle) proxy {
	p, err := c.objects[t].Get(h)
	if err != nil {
		return nil
	}
	return p
}

// serialize writes cmd to the transport. created is the proxy the command
// creates, if any; it is flagged as unsent when the command is dropped.
func (c *Client) serialize(cmd wire.Command, created proxy) bool {
	if c.disconnected {
		if created != nil {
			created.base().unsent = true
		}
		return false
	}
	err := wire.SerializeTo(c.serializer, cmd, c)
	if err == nil {
		return true
	}
	if created != nil {
		created.base().unsent = true
	}
	switch {
	case errors.Is(err, wire.ErrCommandTooLarge),
		errors.Is(err, wire.ErrReservedObject),
		errors.Is(err, wire.ErrNullObject),
		errors.Is(err, wire.ErrUnknownObject):
		c.localError(fmt.Errorf("%s: %w", wire.CommandName(cmd.ID()), err))
	default:
		wire.Logger().Error("serializing command",
			slog.String("cmd", wire.CommandName(cmd.ID())),
			slog.Any("err", err))
		c.Disconnect()
	}
	return false
}

// localError reports an error detected on the client side as if the server
// had raised it.
func (c *Client) localError(err error) {
	wire.Logger().Warn("command dropped", slog.Any("err", err))
	c.device.uncapturedError(wire.ErrorTypeValidation, err.Error())
}

// GetID implements wire.ObjectIDProvider.
func (c *Client) GetID(t wire.ObjectType, obj wire.Object) (wire.ObjectHandle, error) {
	p, ok := obj.(proxy)
	if !ok || p.base() == nil {
		return wire.ObjectHandle{}, fmt.Errorf("%w: missing %s", wire.ErrNullObject, t)
	}
	o := p.base()
	switch {
	case o.client != c:
		return wire.ObjectHandle{}, fmt.Errorf("%w: %s belongs to another client", wire.ErrUnknownObject, t)
	case o.typ != t:
		return wire.ObjectHandle{}, fmt.Errorf("%w: got a %s where a %s was expected", wire.ErrUnknownObject, o.typ, t)
	case o.reserved:
		return wire.ObjectHandle{}, fmt.Errorf("%w: %s %s", wire.ErrReservedObject, t, o.handle)
	case o.unsent:
		return wire.ObjectHandle{}, fmt.Errorf("%w: %s %s was never created", wire.ErrUnknownObject, t, o.handle)
	case o.refs <= 0:
		return wire.ObjectHandle{}, fmt.Errorf("%w: %s %s was released", wire.ErrUnknownObject, t, o.handle)
	}
	return o.handle, nil
}

// GetOptionalID implements wire.ObjectIDProvider.
func (c *Client) GetOptionalID(t wire.ObjectType, obj wire.Object) (wire.ObjectHandle, error) {
	if obj == nil {
		return wire.ObjectHandle{}, nil
	}
	if p, ok := obj.(proxy); ok && p.base() == nil {
		return wire.ObjectHandle{}, nil
	}
	return c.GetID(t, obj)
}
