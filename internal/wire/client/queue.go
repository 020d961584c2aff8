package client

import (
	"github.com/stealthrocket/dawnwire/internal/wire"
)

type Queue struct{ object }

func (q *Queue) base() *object {
	if q == nil {
		return nil
	}
	return &q.object
}

func (q *Queue) released() {
	if d := q.client.device; d.queue == q {
		d.queue = nil
	}
}

// Submit schedules the execution of command buffers.
func (q *Queue) Submit(commands ...*CommandBuffer) {
	objects := make([]wire.Object, len(commands))
	for i, cb := range commands {
		objects[i] = cb
	}
	if len(objects) == 0 {
		objects = nil
	}
	q.client.serialize(&wire.QueueSubmitCmd{Self: q, Commands: objects}, nil)
}

// WriteBuffer copies data into the buffer at the given offset once the
// previously submitted work completed.
func (q *Queue) WriteBuffer(buffer *Buffer, offset uint64, data []byte) {
	q.client.serialize(&wire.QueueWriteBufferCmd{
		Self:         q,
		Buffer:       buffer,
		BufferOffset: offset,
		Data:         data,
	}, nil)
}

// OnSubmittedWorkDone returns a future completed when all the work submitted
// so far has finished executing.
func (q *Queue) OnSubmittedWorkDone() *Future[wire.QueueWorkDoneStatus] {
	c := q.client
	if c.disconnected {
		return completed(wire.QueueWorkDoneStatusInstanceDropped)
	}
	f := new(Future[wire.QueueWorkDoneStatus])
	serial := c.nextSerial()
	c.workDone.add(serial, f)
	if !c.serialize(&wire.QueueOnSubmittedWorkDoneCmd{Self: q, RequestSerial: serial}, nil) {
		if f, ok, _ := c.workDone.take(serial); ok {
			f.complete(wire.QueueWorkDoneStatusError)
		}
	}
	return f
}

type CommandEncoder struct{ object }

func (e *CommandEncoder) base() *object {
	if e == nil {
		return nil
	}
	return &e.object
}

func (e *CommandEncoder) CopyBufferToBuffer(src *Buffer, srcOffset uint64, dst *Buffer, dstOffset, size uint64) {
	e.client.serialize(&wire.CommandEncoderCopyBufferToBufferCmd{
		Self:              e,
		Source:            src,
		SourceOffset:      srcOffset,
		Destination:       dst,
		DestinationOffset: dstOffset,
		Size:              size,
	}, nil)
}

// Finish ends the recording and returns the command buffer to submit.
func (e *CommandEncoder) Finish(desc *wire.CommandBufferDescriptor) *CommandBuffer {
	cb := new(CommandBuffer)
	e.client.allocate(wire.ObjectTypeCommandBuffer, cb)
	e.client.serialize(&wire.CommandEncoderFinishCmd{
		Self:       e,
		Descriptor: desc,
		Result:     cb.handle,
	}, cb)
	return cb
}
