package capture

import (
	"fmt"
	"io"
	"time"

	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/stealthrocket/dawnwire/format/tracesegment"
	"github.com/stealthrocket/dawnwire/internal/buffer"
	"github.com/stealthrocket/dawnwire/internal/stream"
)

var (
	compressedBufferPool   buffer.Pool
	uncompressedBufferPool buffer.Pool
)

// RecordBatch is a batch of records read from a trace.
//
// The records follow the batch metadata in the trace. They are only read,
// checked and decompressed on the first call to Read, so the metadata of
// batches can be scanned cheaply.
type RecordBatch struct {
	startTime time.Time
	batch     tracesegment.RecordBatch
	input     io.LimitedReader
	records   *buffer.Buffer
	offset    int
}

// Reset makes b read the batch whose metadata frame is buf, with its records
// to be read from input.
func (b *RecordBatch) Reset(startTime time.Time, buf []byte, input io.Reader) {
	buffer.Release(&b.records, &uncompressedBufferPool)
	b.startTime, b.offset = startTime, 0
	b.batch = tracesegment.RecordBatch{}
	b.input = io.LimitedReader{}
	if len(buf) > 0 {
		b.batch = *tracesegment.GetSizePrefixedRootAsRecordBatch(buf, 0)
		b.input = io.LimitedReader{R: input, N: b.Size()}
	}
}

func (b *RecordBatch) discard() error {
	if b.input.N <= 0 {
		return nil
	}
	_, err := io.Copy(io.Discard, &b.input)
	return err
}

// Size is the number of bytes that the records occupy in the trace.
func (b *RecordBatch) Size() int64 {
	if b.Compression() == Uncompressed {
		return b.UncompressedSize()
	}
	return b.CompressedSize()
}

func (b *RecordBatch) Compression() Compression { return b.batch.Compression() }

// FirstOffset is the index of the first record of the batch in the trace.
func (b *RecordBatch) FirstOffset() int64 { return b.batch.FirstOffset() }

// NextOffset is the index of the first record of the next batch.
func (b *RecordBatch) NextOffset() int64 { return b.FirstOffset() + int64(b.NumRecords()) }

func (b *RecordBatch) FirstTimestamp() time.Time {
	return b.startTime.Add(time.Duration(b.batch.FirstTimestamp()))
}

func (b *RecordBatch) LastTimestamp() time.Time {
	return b.startTime.Add(time.Duration(b.batch.LastTimestamp()))
}

func (b *RecordBatch) CompressedSize() int64 { return int64(b.batch.CompressedSize()) }

func (b *RecordBatch) UncompressedSize() int64 { return int64(b.batch.UncompressedSize()) }

func (b *RecordBatch) NumRecords() int { return int(b.batch.NumRecords()) }

// Read reads records from the batch. The records share memory with the batch
// and remain valid until the parent LogReader moves to the next batch.
func (b *RecordBatch) Read(records []Record) (int, error) {
	data, err := b.load()
	if err != nil {
		return 0, err
	}
	for n := range records {
		if b.offset == len(data) {
			return n, io.EOF
		}
		if len(data)-b.offset < framePrefixSize {
			return n, fmt.Errorf("record at offset %d of %dB batch: %w", b.offset, len(data), io.ErrUnexpectedEOF)
		}
		end := b.offset + framePrefixSize + int(flatbuffers.GetSizePrefix(data, flatbuffers.UOffsetT(b.offset)))
		if end > len(data) || end < b.offset {
			return n, fmt.Errorf("record at [%d:%d] of %dB batch: %w", b.offset, end, len(data), io.ErrUnexpectedEOF)
		}
		records[n] = MakeRecord(b.startTime, data[b.offset:end])
		b.offset = end
	}
	return len(records), nil
}

func (b *RecordBatch) load() ([]byte, error) {
	if b.records != nil {
		return b.records.Data, nil
	}

	compression := b.Compression()
	pool := &uncompressedBufferPool
	if compression != Uncompressed {
		pool = &compressedBufferPool
	}
	raw := pool.Get(int(b.Size()))

	if _, err := io.ReadFull(&b.input, raw.Data); err != nil {
		pool.Put(raw)
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("reading %dB record batch: %w", b.Size(), err)
	}
	if sum := checksum(raw.Data); sum != b.batch.Checksum() {
		pool.Put(raw)
		return nil, fmt.Errorf("bad record data: expect checksum %#x, got %#x", b.batch.Checksum(), sum)
	}

	if compression == Uncompressed {
		b.records = raw
		return raw.Data, nil
	}
	defer pool.Put(raw)

	out := uncompressedBufferPool.Get(int(b.UncompressedSize()))
	data, err := decompress(out.Data, raw.Data, compression)
	if err != nil {
		uncompressedBufferPool.Put(out)
		return nil, err
	}
	out.Data = data
	b.records = out
	return data, nil
}

var _ stream.Reader[Record] = (*RecordBatch)(nil)

// RecordBatchBuilder accumulates records and serializes them as a batch.
type RecordBatchBuilder struct {
	builder        *flatbuffers.Builder
	compression    Compression
	firstOffset    int64
	firstTimestamp int64
	lastTimestamp  int64
	count          uint32
	uncompressed   []byte
	compressed     []byte
}

// Reset starts a new batch whose first record has the index firstOffset in
// the trace.
func (b *RecordBatchBuilder) Reset(compression Compression, firstOffset int64) {
	if b.builder == nil {
		b.builder = flatbuffers.NewBuilder(buffer.DefaultSize)
	}
	b.builder.Reset()
	b.compression = compression
	b.firstOffset = firstOffset
	b.firstTimestamp, b.lastTimestamp = 0, 0
	b.count = 0
	b.uncompressed = b.uncompressed[:0]
	b.compressed = b.compressed[:0]
}

// AddRecord copies the serialized record into the batch.
func (b *RecordBatchBuilder) AddRecord(record *RecordBuilder) {
	b.uncompressed = append(b.uncompressed, record.Bytes()...)
	if b.count == 0 {
		b.firstTimestamp = record.timestamp
	}
	b.lastTimestamp = record.timestamp
	b.count++
}

// Len is the number of records in the batch.
func (b *RecordBatchBuilder) Len() int { return int(b.count) }

// Write serializes the batch to w: its metadata frame, then the records.
func (b *RecordBatchBuilder) Write(w io.Writer) (int, error) {
	if b.builder == nil {
		b.Reset(b.compression, b.firstOffset)
	}
	records := b.uncompressed
	if b.compression != Uncompressed {
		b.compressed = compress(b.compressed[:cap(b.compressed)], b.uncompressed, b.compression)
		records = b.compressed
	}

	b.builder.Reset()
	tracesegment.RecordBatchStart(b.builder)
	tracesegment.RecordBatchAddFirstOffset(b.builder, b.firstOffset)
	tracesegment.RecordBatchAddFirstTimestamp(b.builder, b.firstTimestamp)
	tracesegment.RecordBatchAddLastTimestamp(b.builder, b.lastTimestamp)
	tracesegment.RecordBatchAddCompressedSize(b.builder, uint32(len(b.compressed)))
	tracesegment.RecordBatchAddUncompressedSize(b.builder, uint32(len(b.uncompressed)))
	tracesegment.RecordBatchAddChecksum(b.builder, checksum(records))
	tracesegment.RecordBatchAddNumRecords(b.builder, b.count)
	tracesegment.RecordBatchAddCompression(b.builder, b.compression)
	tracesegment.FinishSizePrefixedRecordBatchBuffer(b.builder, tracesegment.RecordBatchEnd(b.builder))

	n, err := w.Write(b.builder.FinishedBytes())
	if err != nil {
		return n, err
	}
	m, err := w.Write(records)
	return n + m, err
}
