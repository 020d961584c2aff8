package capture

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/stealthrocket/dawnwire/internal/buffer"
	"github.com/stealthrocket/dawnwire/internal/stream"
)

// A trace is a sequence of size-prefixed frames: the header first, then
// record batches each followed by their (possibly compressed) records.
const (
	framePrefixSize = 4
	maxFrameSize    = 1<<20 - framePrefixSize
	readBufferSize  = 64 * 1024
)

var frameBufferPool buffer.Pool

// ErrNoHeader is returned when reading records before the trace header.
var ErrNoHeader = errors.New("trace header has not been read")

// LogReader reads the frames of a trace.
//
// ReadLogHeader must be called first, the start time it carries is the base
// of all record timestamps.
type LogReader struct {
	input  *bufio.Reader
	header *Header
	batch  RecordBatch
	frame  *buffer.Buffer
}

func NewLogReader(input io.Reader) *LogReader {
	return &LogReader{input: bufio.NewReaderSize(input, readBufferSize)}
}

func (r *LogReader) Close() error {
	r.batch.Reset(time.Time{}, nil, nil)
	buffer.Release(&r.frame, &frameBufferPool)
	return nil
}

// ReadLogHeader reads the trace header. Subsequent calls return the header
// read the first time.
func (r *LogReader) ReadLogHeader() (*Header, error) {
	if r.header != nil {
		return r.header, nil
	}
	f, err := r.readFrame()
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("reading trace header: %w", err)
	}
	defer frameBufferPool.Put(f)

	h, err := ParseHeader(f.Data)
	if err != nil {
		return nil, err
	}
	r.header = h
	return h, nil
}

// ReadRecordBatch reads the next record batch, skipping the records of the
// previous one if they were not read. It returns io.EOF after the last batch.
//
// The batch is only valid until the next call to ReadRecordBatch.
func (r *LogReader) ReadRecordBatch() (*RecordBatch, error) {
	if r.header == nil {
		return nil, ErrNoHeader
	}
	if err := r.batch.discard(); err != nil {
		return nil, err
	}
	buffer.Release(&r.frame, &frameBufferPool)

	f, err := r.readFrame()
	if err != nil {
		return nil, err
	}
	r.frame = f
	r.batch.Reset(r.header.StartTime, f.Data, r.input)
	return &r.batch, nil
}

// readFrame returns io.EOF only when the input ends exactly on a frame
// boundary.
func (r *LogReader) readFrame() (*buffer.Buffer, error) {
	var prefix [framePrefixSize]byte
	if n, err := io.ReadFull(r.input, prefix[:]); err != nil {
		if n == 0 && err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("reading trace frame: %w", err)
	}

	size := binary.LittleEndian.Uint32(prefix[:])
	if size > maxFrameSize {
		return nil, fmt.Errorf("trace frame is too large (%d>%d)", size, maxFrameSize)
	}

	f := frameBufferPool.Get(framePrefixSize + int(size))
	copy(f.Data, prefix[:])
	if _, err := io.ReadFull(r.input, f.Data[framePrefixSize:]); err != nil {
		frameBufferPool.Put(f)
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("reading %dB trace frame: %w", len(f.Data), err)
	}
	return f, nil
}

// LogRecordReader reads the records of a trace in order, across batches.
type LogRecordReader struct {
	reader *LogReader
	batch  *RecordBatch
}

// NewLogRecordReader creates a record reader. The trace header is read on the
// first call to Read if it was not already.
func NewLogRecordReader(r *LogReader) *LogRecordReader {
	return &LogRecordReader{reader: r}
}

// Read reads records from r. The records share memory with the reader and
// remain valid until the next call to Read.
func (r *LogRecordReader) Read(records []Record) (int, error) {
	if _, err := r.reader.ReadLogHeader(); err != nil {
		return 0, err
	}
	for {
		if r.batch == nil {
			b, err := r.reader.ReadRecordBatch()
			if err != nil {
				return 0, err
			}
			r.batch = b
		}
		n, err := r.batch.Read(records)
		switch {
		case n > 0:
			return n, nil
		case err != io.EOF:
			return 0, err
		}
		r.batch = nil
	}
}

var _ stream.Reader[Record] = (*LogRecordReader)(nil)

// LogWriter writes the frames of a trace.
//
// WriteLogHeader must be called first and only once. The first error writing
// to the output is returned by every following call, until Reset.
type LogWriter struct {
	output  io.Writer
	builder *flatbuffers.Builder
	err     error
}

func NewLogWriter(output io.Writer) *LogWriter {
	return &LogWriter{
		output:  output,
		builder: flatbuffers.NewBuilder(buffer.DefaultSize),
	}
}

// Reset makes w write a new trace to output.
func (w *LogWriter) Reset(output io.Writer) {
	w.output, w.err = output, nil
	w.builder.Reset()
}

func (w *LogWriter) WriteLogHeader(header *Header) error {
	if w.err != nil {
		return w.err
	}
	w.builder.Reset()
	header.build(w.builder)
	_, err := w.output.Write(w.builder.FinishedBytes())
	return w.check(err)
}

func (w *LogWriter) WriteRecordBatch(batch *RecordBatchBuilder) error {
	if w.err != nil {
		return w.err
	}
	_, err := batch.Write(w.output)
	return w.check(err)
}

func (w *LogWriter) check(err error) error {
	if err != nil {
		w.err = err
	}
	return err
}
