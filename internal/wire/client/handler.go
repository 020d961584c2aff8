package client

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/stealthrocket/dawnwire/internal/wire"
)

var (
	errUnknownSerial = errors.New("completion for an unknown request serial")
	errMapDataSize   = errors.New("map completion carries data of the wrong size")
	errWrongObject   = errors.New("completion references the wrong object")
)

// HandleCommands processes return commands received from the server. It
// implements wire.CommandHandler.
//
// A malformed return command disconnects the client; the error is returned
// wrapped in a *wire.ProtocolError.
func (c *Client) HandleCommands(b []byte) (int, error) {
	consumed := 0
	for len(b) > 0 {
		if c.disconnected {
			return consumed + len(b), nil
		}
		id, cmd, rest, err := wire.NextCommand(b)
		if err != nil {
			if errors.Is(err, wire.ErrShortCommand) {
				return consumed, err
			}
			return consumed, c.fatal(id, err)
		}
		err = c.handleCommand(id, cmd)
		c.arena.Reset()
		if err != nil {
			return consumed, c.fatal(id, err)
		}
		consumed += len(cmd)
		b = rest
	}
	return consumed, nil
}

func (c *Client) fatal(id uint32, err error) error {
	perr := &wire.ProtocolError{Command: id, Err: err}
	wire.Logger().Error("invalid return command", slog.Any("err", perr))
	c.Disconnect()
	return perr
}

func (c *Client) handleCommand(id uint32, b []byte) error {
	switch wire.ReturnWireCmd(id) {
	case wire.ReturnBufferMapAsyncCallback:
		return decodeAndHandle(c, b, c.handleBufferMapAsyncCallback)
	case wire.ReturnDeviceCreateComputePipelineAsyncCallback:
		return decodeAndHandle(c, b, c.handleComputePipelineCallback)
	case wire.ReturnDeviceCreateRenderPipelineAsyncCallback:
		return decodeAndHandle(c, b, c.handleRenderPipelineCallback)
	case wire.ReturnDeviceLoggingCallback:
		return decodeAndHandle(c, b, c.handleLoggingCallback)
	case wire.ReturnDeviceLostCallback:
		return decodeAndHandle(c, b, c.handleLostCallback)
	case wire.ReturnDevicePopErrorScopeCallback:
		return decodeAndHandle(c, b, c.handlePopErrorScopeCallback)
	case wire.ReturnDeviceUncapturedErrorCallback:
		return decodeAndHandle(c, b, c.handleUncapturedErrorCallback)
	case wire.ReturnQueueWorkDoneCallback:
		return decodeAndHandle(c, b, c.handleQueueWorkDoneCallback)
	default:
		return wire.ErrUnknownCommand
	}
}

func decodeAndHandle[T any, P interface {
	*T
	wire.Command
}](c *Client, b []byte, handle func(P) error) error {
	cmd := P(new(T))
	if _, err := cmd.Deserialize(b, &c.arena, wire.HandleResolver{}); err != nil {
		return err
	}
	return handle(cmd)
}

// unknownSerial decides what to do with a completion matching no request.
func (c *Client) unknownSerial(id wire.ReturnWireCmd, serial uint64, cancelled bool) error {
	if cancelled {
		wire.Logger().Debug("dropping completion of a cancelled request",
			slog.String("cmd", id.String()), slog.Uint64("serial", serial))
		return nil
	}
	if c.config.StrictSerials {
		return fmt.Errorf("%w: %d", errUnknownSerial, serial)
	}
	wire.Logger().Warn("dropping completion of an unknown request",
		slog.String("cmd", id.String()), slog.Uint64("serial", serial))
	return nil
}

func (c *Client) checkDevice(h wire.ObjectHandle) error {
	if h != c.device.handle {
		return fmt.Errorf("%w: device %s", errWrongObject, h)
	}
	return nil
}

func (c *Client) handleBufferMapAsyncCallback(cmd *wire.ReturnBufferMapAsyncCallbackCmd) error {
	req, ok, cancelled := c.bufferMaps.take(cmd.RequestSerial)
	if !ok {
		return c.unknownSerial(wire.ReturnBufferMapAsyncCallback, cmd.RequestSerial, cancelled)
	}
	if req.buffer.handle != cmd.Buffer {
		return fmt.Errorf("%w: buffer %s, the request was for %s", errWrongObject, cmd.Buffer, req.buffer.handle)
	}
	return req.buffer.completeMap(req, cmd)
}

func (c *Client) handleComputePipelineCallback(cmd *wire.ReturnDeviceCreateComputePipelineAsyncCallbackCmd) error {
	if err := c.checkDevice(cmd.Device); err != nil {
		return err
	}
	req, ok, cancelled := c.computePipelines.take(cmd.RequestSerial)
	if !ok {
		return c.unknownSerial(wire.ReturnDeviceCreateComputePipelineAsyncCallback, cmd.RequestSerial, cancelled)
	}
	result, err := completePipeline(c, req, cmd.Status, cmd.Message)
	if err != nil {
		return err
	}
	req.future.complete(result)
	return nil
}

func (c *Client) handleRenderPipelineCallback(cmd *wire.ReturnDeviceCreateRenderPipelineAsyncCallbackCmd) error {
	if err := c.checkDevice(cmd.Device); err != nil {
		return err
	}
	req, ok, cancelled := c.renderPipelines.take(cmd.RequestSerial)
	if !ok {
		return c.unknownSerial(wire.ReturnDeviceCreateRenderPipelineAsyncCallback, cmd.RequestSerial, cancelled)
	}
	result, err := completePipeline(c, req, cmd.Status, cmd.Message)
	if err != nil {
		return err
	}
	req.future.complete(result)
	return nil
}

// completePipeline turns the reservation of the pipeline into a usable
// object on success, and releases it otherwise.
func completePipeline[P proxy](c *Client, req *pipelineRequest[P], status wire.CreatePipelineAsyncStatus, message string) (PipelineResult[P], error) {
	o := req.pipeline.base()
	if status != wire.CreatePipelineAsyncStatusSuccess {
		c.dropPipeline(o)
		return PipelineResult[P]{Status: status, Message: message}, nil
	}
	if err := c.objects[o.typ].FillReservation(o.handle.ID, req.pipeline); err != nil {
		return PipelineResult[P]{}, err
	}
	o.reserved = false
	return PipelineResult[P]{Status: status, Pipeline: req.pipeline, Message: message}, nil
}

func (c *Client) handlePopErrorScopeCallback(cmd *wire.ReturnDevicePopErrorScopeCallbackCmd) error {
	if err := c.checkDevice(cmd.Device); err != nil {
		return err
	}
	f, ok, cancelled := c.errorScopes.take(cmd.RequestSerial)
	if !ok {
		return c.unknownSerial(wire.ReturnDevicePopErrorScopeCallback, cmd.RequestSerial, cancelled)
	}
	f.complete(PopErrorScopeResult{Status: cmd.Status, Type: cmd.Type, Message: cmd.Message})
	return nil
}

func (c *Client) handleQueueWorkDoneCallback(cmd *wire.ReturnQueueWorkDoneCallbackCmd) error {
	f, ok, cancelled := c.workDone.take(cmd.RequestSerial)
	if !ok {
		return c.unknownSerial(wire.ReturnQueueWorkDoneCallback, cmd.RequestSerial, cancelled)
	}
	f.complete(cmd.Status)
	return nil
}

func (c *Client) handleLoggingCallback(cmd *wire.ReturnDeviceLoggingCallbackCmd) error {
	if err := c.checkDevice(cmd.Device); err != nil {
		return err
	}
	c.device.logging(cmd.Type, cmd.Message)
	return nil
}

func (c *Client) handleLostCallback(cmd *wire.ReturnDeviceLostCallbackCmd) error {
	if err := c.checkDevice(cmd.Device); err != nil {
		return err
	}
	c.device.lose(cmd.Reason, cmd.Message)
	return nil
}

func (c *Client) handleUncapturedErrorCallback(cmd *wire.ReturnDeviceUncapturedErrorCallbackCmd) error {
	if err := c.checkDevice(cmd.Device); err != nil {
		return err
	}
	c.device.uncapturedError(cmd.Type, cmd.Message)
	return nil
}
