package nullgpu

import (
	"github.com/gogpu/gputypes"
	"github.com/stealthrocket/dawnwire/internal/wire"
)

const (
	mapOffsetAlignment = 8
	mapSizeAlignment   = 4
	copyAlignment      = 4
)

type mapState uint8

const (
	unmapped mapState = iota
	mappingPending
	mapped
)

type mapRequest struct {
	mode         gputypes.MapMode
	offset, size uint64
	done         func(wire.MapAsyncStatus, string)
}

func (r *mapRequest) complete(status wire.MapAsyncStatus, message string) {
	if done := r.done; done != nil {
		r.done = nil
		done(status, message)
	}
}

type Buffer struct {
	resource
	label     string
	usage     gputypes.BufferUsage
	size      uint64
	data      []byte
	invalid   bool
	destroyed bool

	state   mapState
	pending *mapRequest
	mapMode gputypes.MapMode
	// mapOffset and mapSize delimit the mapped range.
	mapOffset uint64
	mapSize   uint64
}

// Size returns the size of the buffer in bytes.
func (b *Buffer) Size() uint64 { return b.size }

// Bytes returns the contents of the buffer, nil if it is invalid or destroyed.
func (b *Buffer) Bytes() []byte { return b.data }

// IsValid reports whether the buffer was created successfully.
func (b *Buffer) IsValid() bool { return !b.invalid }

func (d *Device) createBuffer(desc *wire.BufferDescriptor) (*Buffer, error) {
	b := &Buffer{resource: resource{d}, label: desc.Label, usage: desc.Usage, size: desc.Size, invalid: true}
	d.created()
	if desc.MappedAtCreation {
		// Buffers are mapped at creation even when they are invalid, so the
		// application can write to them without checking.
		b.state, b.mapMode, b.mapSize = mapped, gputypes.MapModeWrite, desc.Size
	}
	if err := d.check(); err != nil {
		return b, err
	}

	const mapFlags = gputypes.BufferUsageMapRead | gputypes.BufferUsageMapWrite
	switch {
	case desc.Usage == 0:
		return b, d.validation("buffer %q has no usage", desc.Label)
	case desc.Usage.Contains(gputypes.BufferUsageMapRead) && desc.Usage&^(gputypes.BufferUsageMapRead|gputypes.BufferUsageCopyDst) != 0:
		return b, d.validation("buffer %q: MapRead can only be combined with CopyDst", desc.Label)
	case desc.Usage.Contains(gputypes.BufferUsageMapWrite) && desc.Usage&^(gputypes.BufferUsageMapWrite|gputypes.BufferUsageCopySrc) != 0:
		return b, d.validation("buffer %q: MapWrite can only be combined with CopySrc", desc.Label)
	case desc.Usage&mapFlags == mapFlags:
		return b, d.validation("buffer %q cannot be mapped for both reading and writing", desc.Label)
	case desc.MappedAtCreation && desc.Size%mapSizeAlignment != 0:
		return b, d.validation("buffer %q is mapped at creation and its size %d is not a multiple of %d", desc.Label, desc.Size, mapSizeAlignment)
	case desc.Size > d.limits.MaxBufferSize:
		d.report(wire.ErrorTypeOutOfMemory, "buffer size exceeds the device limit")
		return b, ErrValidation
	}
	b.invalid = false
	b.data = make([]byte, desc.Size)
	return b, nil
}

func (b *Buffer) mapAsync(mode gputypes.MapMode, offset, size uint64, done func(wire.MapAsyncStatus, string)) {
	d := b.device
	req := &mapRequest{mode: mode, offset: offset, size: size, done: done}
	if d.lost {
		req.complete(wire.MapAsyncStatusError, ErrDeviceLost.Error())
		return
	}
	var err error
	switch {
	case b.invalid:
		err = d.validation("mapping invalid buffer %q", b.label)
	case b.destroyed:
		err = d.validation("mapping destroyed buffer %q", b.label)
	case b.state != unmapped:
		err = d.validation("buffer %q is already mapped or has a pending map request", b.label)
	case mode != gputypes.MapModeRead && mode != gputypes.MapModeWrite:
		err = d.validation("invalid map mode %d", mode)
	case mode == gputypes.MapModeRead && !b.usage.Contains(gputypes.BufferUsageMapRead):
		err = d.validation("buffer %q does not have the MapRead usage", b.label)
	case mode == gputypes.MapModeWrite && !b.usage.Contains(gputypes.BufferUsageMapWrite):
		err = d.validation("buffer %q does not have the MapWrite usage", b.label)
	case offset%mapOffsetAlignment != 0:
		err = d.validation("map offset %d is not a multiple of %d", offset, mapOffsetAlignment)
	case size%mapSizeAlignment != 0:
		err = d.validation("map size %d is not a multiple of %d", size, mapSizeAlignment)
	case offset > b.size || size > b.size-offset:
		err = d.validation("mapped range [%d,%d) exceeds the size of buffer %q (%d)", offset, offset+size, b.label, b.size)
	}
	if err != nil {
		req.complete(wire.MapAsyncStatusError, err.Error())
		return
	}

	b.state, b.pending = mappingPending, req
	d.schedule(func() {
		if b.pending != req {
			return
		}
		b.pending = nil
		if d.lost {
			b.state = unmapped
			req.complete(wire.MapAsyncStatusAborted, ErrDeviceLost.Error())
			return
		}
		b.state, b.mapMode = mapped, mode
		b.mapOffset, b.mapSize = offset, size
		req.complete(wire.MapAsyncStatusSuccess, "")
	})
}

// mappedRange returns the memory of a range within the current mapping.
func (b *Buffer) mappedRange(offset, size uint64) []byte {
	if b.state != mapped || b.data == nil || offset < b.mapOffset {
		return nil
	}
	if start := offset - b.mapOffset; start > b.mapSize || size > b.mapSize-start {
		return nil
	}
	return b.data[offset : offset+size : offset+size]
}

func (b *Buffer) abortPendingMap() {
	if req := b.pending; req != nil {
		b.pending = nil
		req.complete(wire.MapAsyncStatusAborted, "buffer was unmapped before the mapping completed")
	}
}

func (b *Buffer) unmap() {
	b.abortPendingMap()
	b.state, b.mapMode = unmapped, 0
	b.mapOffset, b.mapSize = 0, 0
}

func (b *Buffer) destroy() {
	b.unmap()
	b.destroyed = true
	b.data = nil
}

// usable validates that the buffer can be used in a GPU operation.
func (b *Buffer) usable(usage gputypes.BufferUsage, what string) error {
	d := b.device
	switch {
	case b.invalid:
		return d.validation("%s: buffer %q is invalid", what, b.label)
	case b.destroyed:
		return d.validation("%s: buffer %q is destroyed", what, b.label)
	case b.state != unmapped:
		return d.validation("%s: buffer %q is mapped", what, b.label)
	case !b.usage.Contains(usage):
		return d.validation("%s: buffer %q lacks the required usage", what, b.label)
	}
	return nil
}

func checkRange(size, offset, length uint64) bool {
	return offset <= size && length <= size-offset
}
