// Package capture records the commands exchanged on wire connections to
// trace files and reads them back.
//
// A trace is a size-prefixed header frame followed by record batches. Each
// batch is a size-prefixed metadata frame followed by its data section, the
// (optionally compressed) sequence of size-prefixed records. Every record
// holds a chunk of commands consumed by one side of the connection.
package capture

import (
	"fmt"
	"os"
	"path/filepath"
)

// Extension is the file extension of traces.
const Extension = ".trace"

// Options configure the traces created by Create.
type Options struct {
	// Compression of the record batches.
	Compression Compression
	// BatchSize is the number of records per batch.
	BatchSize int
}

// Create creates a new trace in dir, named after its trace id.
func Create(dir string, opts Options) (*Recorder, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	header := NewHeader(opts.Compression)
	path := filepath.Join(dir, header.TraceID.String()+Extension)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	r, err := NewRecorder(f, header, opts.BatchSize)
	if err != nil {
		f.Close()
		os.Remove(path)
		return nil, err
	}
	return r, nil
}

// Trace is a trace file open for reading.
type Trace struct {
	*LogReader
	Header *Header

	prefetch *prefetchReader
	file     *os.File
}

// Open opens the trace at path and reads its header.
func Open(path string) (*Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	p := newPrefetchReader(f)
	r := NewLogReader(p)
	h, err := r.ReadLogHeader()
	if err != nil {
		p.Close()
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &Trace{LogReader: r, Header: h, prefetch: p, file: f}, nil
}

// Records returns a reader of the records in the trace.
func (t *Trace) Records() *LogRecordReader {
	return NewLogRecordReader(t.LogReader)
}

func (t *Trace) Close() error {
	t.LogReader.Close()
	t.prefetch.Close()
	return t.file.Close()
}
