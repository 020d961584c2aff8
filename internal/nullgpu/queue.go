package nullgpu

import (
	"github.com/gogpu/gputypes"
	"github.com/stealthrocket/dawnwire/internal/wire"
)

type copyBufferToBuffer struct {
	source, destination             *Buffer
	sourceOffset, destinationOffset uint64
	size                            uint64
}

// CommandEncoder records copies. The first error makes the encoder, and the
// command buffer it finishes into, invalid.
type CommandEncoder struct {
	resource
	label    string
	copies   []copyBufferToBuffer
	err      error
	finished bool
}

type CommandBuffer struct {
	resource
	label     string
	copies    []copyBufferToBuffer
	invalid   bool
	submitted bool
}

func (b *CommandBuffer) IsValid() bool { return !b.invalid }

// Queue executes command buffers and writes to buffers, in order.
type Queue struct {
	device    *Device
	submitted int
}

// Submitted returns the number of command buffers executed by the queue.
func (q *Queue) Submitted() int { return q.submitted }

func (d *Device) createCommandEncoder(desc *wire.CommandEncoderDescriptor) (*CommandEncoder, error) {
	e := &CommandEncoder{resource: resource{d}}
	if desc != nil {
		e.label = desc.Label
	}
	d.created()
	if err := d.check(); err != nil {
		e.err = err
		return e, err
	}
	return e, nil
}

func (e *CommandEncoder) copyBufferToBuffer(src *Buffer, srcOffset uint64, dst *Buffer, dstOffset, size uint64) {
	if e.finished {
		e.device.validation("encoder %q is finished", e.label)
		return
	}
	if e.err != nil {
		return
	}
	c := copyBufferToBuffer{src, dst, srcOffset, dstOffset, size}
	e.err = c.validate(e.device)
	if e.err == nil {
		e.copies = append(e.copies, c)
	}
}

func (c *copyBufferToBuffer) validate(d *Device) error {
	switch {
	case c.source == nil || c.destination == nil:
		return d.validation("copy between invalid buffers")
	case c.source == c.destination:
		return d.validation("copy from buffer %q to itself", c.source.label)
	case c.size%copyAlignment != 0 || c.sourceOffset%copyAlignment != 0 || c.destinationOffset%copyAlignment != 0:
		return d.validation("copy offsets and size must be multiples of %d", copyAlignment)
	case !checkRange(c.source.size, c.sourceOffset, c.size):
		return d.validation("copy overruns source buffer %q", c.source.label)
	case !checkRange(c.destination.size, c.destinationOffset, c.size):
		return d.validation("copy overruns destination buffer %q", c.destination.label)
	}
	if c.source.invalid || c.destination.invalid {
		return d.validation("copy between invalid buffers")
	}
	return nil
}

func (e *CommandEncoder) finish(desc *wire.CommandBufferDescriptor) (*CommandBuffer, error) {
	d := e.device
	cb := &CommandBuffer{resource: resource{d}, invalid: true}
	if desc != nil {
		cb.label = desc.Label
	}
	d.created()
	if err := d.check(); err != nil {
		return cb, err
	}
	switch {
	case e.finished:
		return cb, d.validation("encoder %q was already finished", e.label)
	case e.err != nil:
		e.finished = true
		return cb, d.validation("encoder %q is invalid: %v", e.label, e.err)
	}
	e.finished = true
	cb.copies, e.copies = e.copies, nil
	cb.invalid = false
	return cb, nil
}

func (q *Queue) submit(commands []wire.Object) {
	d := q.device
	if d.lost {
		return
	}
	buffers := make([]*CommandBuffer, 0, len(commands))
	for i, obj := range commands {
		cb, _ := obj.(*CommandBuffer)
		switch {
		case cb == nil || cb.invalid:
			d.validation("submitting invalid command buffer %d", i)
			return
		case cb.submitted:
			d.validation("command buffer %q was already submitted", cb.label)
			return
		}
		for _, c := range cb.copies {
			if err := c.source.usable(gputypes.BufferUsageCopySrc, "submit"); err != nil {
				return
			}
			if err := c.destination.usable(gputypes.BufferUsageCopyDst, "submit"); err != nil {
				return
			}
		}
		buffers = append(buffers, cb)
	}
	for _, cb := range buffers {
		for _, c := range cb.copies {
			copy(c.destination.data[c.destinationOffset:c.destinationOffset+c.size], c.source.data[c.sourceOffset:])
		}
		cb.submitted = true
		q.submitted++
	}
}

func (q *Queue) writeBuffer(b *Buffer, offset uint64, data []byte) {
	d := q.device
	if d.lost || b == nil {
		return
	}
	size := uint64(len(data))
	switch {
	case b.usable(gputypes.BufferUsageCopyDst, "queue write") != nil:
	case offset%copyAlignment != 0 || size%copyAlignment != 0:
		d.validation("queue write offset and size must be multiples of %d", copyAlignment)
	case !checkRange(b.size, offset, size):
		d.validation("queue write overruns buffer %q", b.label)
	default:
		copy(b.data[offset:], data)
	}
}

func (q *Queue) onSubmittedWorkDone(done func(wire.QueueWorkDoneStatus)) {
	d := q.device
	d.schedule(func() {
		if d.lost {
			done(wire.QueueWorkDoneStatusError)
			return
		}
		done(wire.QueueWorkDoneStatusSuccess)
	})
}
