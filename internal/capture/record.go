package capture

import (
	"time"

	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/stealthrocket/dawnwire/format/tracesegment"
	"github.com/stealthrocket/dawnwire/internal/buffer"
)

// Direction tells which peer produced the commands of a record.
type Direction = tracesegment.Direction

const (
	ClientToServer Direction = tracesegment.DirectionClientToServer
	ServerToClient Direction = tracesegment.DirectionServerToClient
)

// Record is a read-only record from a trace: a chunk of commands consumed by
// one side of the connection.
type Record struct {
	startTime time.Time
	record    tracesegment.Record
}

// MakeRecord creates a record from a size-prefixed buffer. The buffer must
// live as long as the record.
func MakeRecord(startTime time.Time, buf []byte) Record {
	return Record{
		startTime: startTime,
		record:    *tracesegment.GetSizePrefixedRootAsRecord(buf, 0),
	}
}

// Timestamp is the time at which the chunk was consumed.
func (r *Record) Timestamp() time.Time {
	return r.startTime.Add(time.Duration(r.record.Timestamp()))
}

func (r *Record) Direction() Direction {
	return r.record.Direction()
}

// Data returns the commands of the record.
func (r *Record) Data() []byte {
	return r.record.DataBytes()
}

// RecordBuilder is a builder for records.
type RecordBuilder struct {
	startTime time.Time
	builder   *flatbuffers.Builder
	timestamp int64
	direction Direction
	data      []byte
	finished  bool
}

// Reset resets the builder.
func (b *RecordBuilder) Reset(startTime time.Time) {
	b.startTime = startTime
	if b.builder == nil {
		b.builder = flatbuffers.NewBuilder(buffer.DefaultSize)
	} else {
		b.builder.Reset()
	}
	b.timestamp = 0
	b.direction = ClientToServer
	b.data = nil
	b.finished = false
}

// SetTimestamp sets the timestamp.
func (b *RecordBuilder) SetTimestamp(t time.Time) {
	if b.finished {
		panic("builder must be reset before timestamp can be set")
	}
	b.timestamp = int64(t.Sub(b.startTime))
}

// SetDirection sets the direction.
func (b *RecordBuilder) SetDirection(dir Direction) {
	if b.finished {
		panic("builder must be reset before direction can be set")
	}
	b.direction = dir
}

// SetData sets the commands of the record.
//
// The provided slice is retained until Bytes() is called and the record is
// serialized.
func (b *RecordBuilder) SetData(data []byte) {
	if b.finished {
		panic("builder must be reset before data can be set")
	}
	b.data = data
}

// Bytes returns the serialized representation of the record.
func (b *RecordBuilder) Bytes() []byte {
	if !b.finished {
		b.build()
		b.finished = true
	}
	return b.builder.FinishedBytes()
}

func (b *RecordBuilder) build() {
	if b.builder == nil {
		panic("builder is not initialized")
	}
	data := b.builder.CreateByteVector(b.data)
	tracesegment.RecordStart(b.builder)
	tracesegment.RecordAddTimestamp(b.builder, b.timestamp)
	tracesegment.RecordAddDirection(b.builder, b.direction)
	tracesegment.RecordAddData(b.builder, data)
	tracesegment.FinishSizePrefixedRecordBuffer(b.builder, tracesegment.RecordEnd(b.builder))
}
