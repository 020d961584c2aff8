package capture

import (
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/stealthrocket/dawnwire/internal/transport"
	"github.com/stealthrocket/dawnwire/internal/wire"
)

// DefaultBatchSize is the number of records per batch when unspecified.
const DefaultBatchSize = 1024

// Recorder writes the commands exchanged on one connection to a trace.
//
// Both ends of a connection may record concurrently. The first error writing
// the trace is logged and stops the recording; it never interrupts the
// connection.
type Recorder struct {
	mu     sync.Mutex
	header Header
	output io.Writer
	writer *LogWriter
	batch  RecordBatchBuilder
	size   int
	record RecordBuilder
	now    func() time.Time
	count  int64
	err    error
	closed bool
}

// NewRecorder writes the trace header to output and returns a recorder
// appending records to it. Close flushes the last batch and closes output if
// it is an io.Closer.
func NewRecorder(output io.Writer, header Header, batchSize int) (*Recorder, error) {
	w := NewLogWriter(output)
	if err := w.WriteLogHeader(&header); err != nil {
		return nil, err
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	r := &Recorder{
		header: header,
		output: output,
		writer: w,
		size:   batchSize,
		now:    time.Now,
	}
	r.batch.Reset(header.Compression, 0)
	wire.Logger().Info("trace started",
		slog.String("trace_id", header.TraceID.String()),
		slog.String("compression", header.Compression.String()))
	return r, nil
}

func (r *Recorder) Header() Header { return r.header }

// Records returns the number of records written so far.
func (r *Recorder) Records() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Record appends a chunk of commands to the trace.
func (r *Recorder) Record(dir Direction, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if r.closed {
		return transport.ErrClosed
	}
	r.record.Reset(r.header.StartTime)
	r.record.SetTimestamp(r.now())
	r.record.SetDirection(dir)
	r.record.SetData(data)
	r.batch.AddRecord(&r.record)
	r.count++
	if r.batch.Len() < r.size {
		return nil
	}
	if err := r.flush(); err != nil {
		r.fail(err)
		return err
	}
	return nil
}

// flush writes the pending batch and starts the next one at the index of the
// following record.
func (r *Recorder) flush() error {
	if r.batch.Len() == 0 {
		return nil
	}
	if err := r.writer.WriteRecordBatch(&r.batch); err != nil {
		return err
	}
	r.batch.Reset(r.header.Compression, r.count)
	return nil
}

func (r *Recorder) fail(err error) {
	r.err = err
	wire.Logger().Error("trace recording stopped",
		slog.String("trace_id", r.header.TraceID.String()),
		slog.Any("err", err))
}

// Flush writes the pending batch of records.
func (r *Recorder) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if err := r.flush(); err != nil {
		r.fail(err)
		return err
	}
	return nil
}

func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return transport.ErrClosed
	}
	r.closed = true
	err := r.err
	if err == nil {
		err = r.flush()
	}
	if c, ok := r.output.(io.Closer); ok {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}
	wire.Logger().Info("trace completed",
		slog.String("trace_id", r.header.TraceID.String()),
		slog.Int64("records", r.count))
	return err
}

// Handler returns a handler recording the bytes h consumes, as commands
// travelling in direction dir.
func (r *Recorder) Handler(dir Direction, h wire.CommandHandler) wire.CommandHandler {
	return &handlerTap{rec: r, dir: dir, handler: h}
}

// Serializer returns a serializer recording the commands written to s, as
// commands travelling in direction dir. Commands are recorded when the next
// one is requested or when the serializer is flushed, once they are fully
// written.
func (r *Recorder) Serializer(dir Direction, s wire.CommandSerializer) wire.CommandSerializer {
	return &serializerTap{rec: r, dir: dir, serializer: s}
}

// Accept wraps accept so the server ends it creates record both the commands
// they consume and the return commands they produce. The recorder is closed
// when the connection ends.
func (r *Recorder) Accept(accept transport.Accept) transport.Accept {
	return func(s wire.CommandSerializer) (wire.CommandHandler, error) {
		tap := &serializerTap{rec: r, dir: ServerToClient, serializer: s}
		h, err := accept(tap)
		if err != nil {
			return nil, err
		}
		return &handlerTap{rec: r, dir: ClientToServer, handler: h, tap: tap, owner: true}, nil
	}
}

// Transport wraps the client end of a connection so the commands it sends
// and the return commands it receives are recorded. Closing the transport
// closes the recorder.
func (r *Recorder) Transport(t transport.Transport) transport.Transport {
	return &recordedTransport{
		serializerTap: serializerTap{rec: r, dir: ClientToServer, serializer: t},
		transport:     t,
	}
}

type handlerTap struct {
	rec     *Recorder
	dir     Direction
	handler wire.CommandHandler
	// Return commands of the server end, flushed with the handler.
	tap *serializerTap
	// Set when the tap owns the recorder and closes it.
	owner bool
}

func (h *handlerTap) HandleCommands(b []byte) (int, error) {
	n, err := h.handler.HandleCommands(b)
	if n > 0 {
		h.rec.Record(h.dir, b[:n])
	}
	return n, err
}

func (h *handlerTap) Flush() error {
	if f, ok := h.handler.(interface{ Flush() error }); ok {
		if err := f.Flush(); err != nil {
			return err
		}
	}
	if h.tap != nil {
		h.tap.commit()
	}
	return nil
}

func (h *handlerTap) Close() error {
	var err error
	if c, ok := h.handler.(io.Closer); ok {
		err = c.Close()
	}
	if h.owner {
		if h.tap != nil {
			h.tap.commit()
		}
		if cerr := h.rec.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

type serializerTap struct {
	rec        *Recorder
	dir        Direction
	serializer wire.CommandSerializer
	// Region returned by the last call to GetCmdSpace, not recorded yet.
	pending []byte
	chunk   []byte
}

func (s *serializerTap) GetCmdSpace(size int) ([]byte, error) {
	s.stage()
	b, err := s.serializer.GetCmdSpace(size)
	if err == nil {
		s.pending = b
	}
	return b, err
}

func (s *serializerTap) Flush() error {
	s.commit()
	return s.serializer.Flush()
}

func (s *serializerTap) MaximumAllocationSize() int {
	return s.serializer.MaximumAllocationSize()
}

// stage copies the last region, which the caller finished writing, to the
// chunk of commands waiting to be recorded.
func (s *serializerTap) stage() {
	if s.pending != nil {
		s.chunk = append(s.chunk, s.pending...)
		s.pending = nil
	}
}

func (s *serializerTap) commit() {
	s.stage()
	if len(s.chunk) > 0 {
		s.rec.Record(s.dir, s.chunk)
		s.chunk = s.chunk[:0]
	}
}

type recordedTransport struct {
	serializerTap
	transport transport.Transport
}

func (t *recordedTransport) Poll(handler wire.CommandHandler) error {
	return t.transport.Poll(&handlerTap{rec: t.rec, dir: ServerToClient, handler: handler})
}

func (t *recordedTransport) Close() error {
	t.commit()
	err := t.transport.Close()
	if cerr := t.rec.Close(); err == nil {
		err = cerr
	}
	return err
}
