package client

import (
	"github.com/gogpu/gputypes"
	"github.com/stealthrocket/dawnwire/internal/wire"
)

// maxShadowSize bounds the size of the client side copy of a mapped range.
const maxShadowSize = 1 << 30

type MapAsyncResult struct {
	Status  wire.MapAsyncStatus
	Message string
}

type mapState uint8

const (
	unmapped mapState = iota
	mappingPending
	mapped
)

type mapRequest struct {
	buffer *Buffer
	serial uint64
	mode   gputypes.MapMode
	offset uint64
	size   uint64
	future *Future[MapAsyncResult]
}

// Buffer is the proxy of a GPU buffer.
//
// Mapped ranges are shadowed in client memory: data read by the GPU is
// shipped with the map completion, data written by the application is sent
// back to the server when the buffer is unmapped.
type Buffer struct {
	object
	size  uint64
	usage gputypes.BufferUsage

	state     mapState
	pending   *mapRequest
	writable  bool
	mapOffset uint64
	mapping   []byte
	destroyed bool
}

func (b *Buffer) base() *object {
	if b == nil {
		return nil
	}
	return &b.object
}

func (b *Buffer) Size() uint64 { return b.size }

func (b *Buffer) Usage() gputypes.BufferUsage { return b.usage }

func (b *Buffer) mapAtCreation() {
	if b.size > maxShadowSize {
		b.client.device.uncapturedError(wire.ErrorTypeOutOfMemory, "buffer is too large to be mapped at creation")
		return
	}
	b.state, b.writable = mapped, true
	b.mapOffset, b.mapping = 0, make([]byte, b.size)
}

// MapAsync requests access to a range of the buffer. Size may be
// wire.WholeMapSize to map up to the end of the buffer.
func (b *Buffer) MapAsync(mode gputypes.MapMode, offset, size uint64) *Future[MapAsyncResult] {
	c := b.client
	if c.disconnected {
		return completed(MapAsyncResult{
			Status:  wire.MapAsyncStatusInstanceDropped,
			Message: ConnectionLostMessage,
		})
	}
	if size == wire.WholeMapSize {
		if offset > b.size {
			size = 0
		} else {
			size = b.size - offset
		}
	}
	switch {
	case b.state != unmapped:
		return completed(MapAsyncResult{
			Status:  wire.MapAsyncStatusError,
			Message: "buffer is already mapped or has a pending map request",
		})
	case b.destroyed:
		return completed(MapAsyncResult{
			Status:  wire.MapAsyncStatusError,
			Message: "buffer is destroyed",
		})
	case size > maxShadowSize:
		return completed(MapAsyncResult{
			Status:  wire.MapAsyncStatusError,
			Message: "mapped range is too large",
		})
	}

	req := &mapRequest{
		buffer: b,
		serial: c.nextSerial(),
		mode:   mode,
		offset: offset,
		size:   size,
		future: new(Future[MapAsyncResult]),
	}
	c.bufferMaps.add(req.serial, req)
	b.state, b.pending = mappingPending, req

	cmd := &wire.BufferMapAsyncCmd{
		Self:          b,
		RequestSerial: req.serial,
		Mode:          mode,
		Offset:        offset,
		Size:          size,
	}
	if !c.serialize(cmd, nil) {
		if r, ok, _ := c.bufferMaps.take(req.serial); ok {
			b.clearMapping()
			r.future.complete(MapAsyncResult{
				Status:  wire.MapAsyncStatusError,
				Message: "map request could not be sent",
			})
		}
	}
	return req.future
}

// GetMappedRange returns the shadow of a mapped range, or nil if the range
// is not within the mapping.
func (b *Buffer) GetMappedRange(offset, size uint64) []byte {
	if b.state != mapped {
		return nil
	}
	if size == wire.WholeMapSize {
		if offset < b.mapOffset || offset-b.mapOffset > uint64(len(b.mapping)) {
			return nil
		}
		size = uint64(len(b.mapping)) - (offset - b.mapOffset)
	}
	if offset < b.mapOffset {
		return nil
	}
	start := offset - b.mapOffset
	if start > uint64(len(b.mapping)) || size > uint64(len(b.mapping))-start {
		return nil
	}
	return b.mapping[start : start+size : start+size]
}

// Unmap ends the mapping. Written data is sent to the server first. A
// pending map request completes with Aborted.
func (b *Buffer) Unmap() {
	c := b.client
	b.abortPendingMap()
	if b.state == mapped && b.writable && !b.unsent {
		c.serialize(&wire.BufferUpdateMappedDataCmd{
			Self:   b,
			Offset: b.mapOffset,
			Data:   b.mapping,
		}, nil)
	}
	b.clearMapping()
	c.serialize(&wire.BufferUnmapCmd{Self: b}, nil)
}

// Destroy releases the GPU memory of the buffer. The proxy remains valid
// until its last reference is released.
func (b *Buffer) Destroy() {
	b.abortPendingMap()
	b.clearMapping()
	b.destroyed = true
	b.client.serialize(&wire.BufferDestroyCmd{Self: b}, nil)
}

func (b *Buffer) released() {
	b.abortPendingMap()
	b.clearMapping()
}

func (b *Buffer) abortPendingMap() {
	req := b.pending
	if req == nil {
		return
	}
	b.pending = nil
	if r, ok := b.client.bufferMaps.cancel(req.serial); ok {
		b.state = unmapped
		r.future.complete(MapAsyncResult{
			Status:  wire.MapAsyncStatusAborted,
			Message: "buffer was unmapped or destroyed before the mapping completed",
		})
	}
}

func (b *Buffer) clearMapping() {
	b.state, b.pending = unmapped, nil
	b.writable, b.mapOffset, b.mapping = false, 0, nil
}

func (b *Buffer) completeMap(req *mapRequest, cmd *wire.ReturnBufferMapAsyncCallbackCmd) error {
	b.pending = nil
	if cmd.Status != wire.MapAsyncStatusSuccess {
		b.clearMapping()
		req.future.complete(MapAsyncResult{Status: cmd.Status, Message: cmd.Message})
		return nil
	}

	mapping := make([]byte, req.size)
	if req.mode&gputypes.MapModeRead != 0 {
		if uint64(len(cmd.ReadData)) != req.size {
			return errMapDataSize
		}
		copy(mapping, cmd.ReadData)
	}
	b.state, b.writable = mapped, req.mode&gputypes.MapModeWrite != 0
	b.mapOffset, b.mapping = req.offset, mapping
	req.future.complete(MapAsyncResult{Status: wire.MapAsyncStatusSuccess})
	return nil
}
