package capture_test

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stealthrocket/dawnwire/internal/assert"
	"github.com/stealthrocket/dawnwire/internal/capture"
	"github.com/stealthrocket/dawnwire/internal/stream"
)

type record struct {
	Timestamp time.Time
	Direction capture.Direction
	Data      []byte
}

func writeTrace(t *testing.T, header capture.Header, batches [][]record) []byte {
	t.Helper()
	buffer := new(bytes.Buffer)
	writer := capture.NewLogWriter(buffer)
	assert.OK(t, writer.WriteLogHeader(&header))

	var recordBuilder capture.RecordBuilder
	var recordBatchBuilder capture.RecordBatchBuilder
	var firstOffset int64
	for _, batch := range batches {
		recordBatchBuilder.Reset(header.Compression, firstOffset)
		for _, r := range batch {
			recordBuilder.Reset(header.StartTime)
			recordBuilder.SetTimestamp(r.Timestamp)
			recordBuilder.SetDirection(r.Direction)
			recordBuilder.SetData(r.Data)
			recordBatchBuilder.AddRecord(&recordBuilder)
		}
		assert.OK(t, writer.WriteRecordBatch(&recordBatchBuilder))
		firstOffset += int64(len(batch))
	}
	return buffer.Bytes()
}

func TestReadRecordBatch(t *testing.T) {
	for _, compression := range []capture.Compression{capture.Uncompressed, capture.Snappy, capture.Zstd} {
		t.Run(compression.String(), func(t *testing.T) {
			header := capture.NewHeader(compression)
			startTime := header.StartTime

			batches := [][]record{
				{
					{
						Timestamp: startTime.Add(1 * time.Millisecond),
						Direction: capture.ClientToServer,
						Data:      []byte("commands 0"),
					},
				},
				{
					{
						Timestamp: startTime.Add(2 * time.Millisecond),
						Direction: capture.ServerToClient,
						Data:      []byte("return commands 1"),
					},
					{
						Timestamp: startTime.Add(3 * time.Millisecond),
						Direction: capture.ClientToServer,
						Data:      bytes.Repeat([]byte("commands 2"), 1000),
					},
				},
				{
					{
						Timestamp: startTime.Add(4 * time.Millisecond),
						Direction: capture.ClientToServer,
						Data:      []byte("commands: A, B, C, D"),
					},
					{
						Timestamp: startTime.Add(5 * time.Millisecond),
						Direction: capture.ServerToClient,
						Data:      []byte("hello world!"),
					},
				},
			}

			reader := capture.NewLogReader(bytes.NewReader(writeTrace(t, header, batches)))
			defer reader.Close()

			h, err := reader.ReadLogHeader()
			assert.OK(t, err)
			assert.Equal(t, h.TraceID, header.TraceID)
			assert.Equal(t, h.Protocol, capture.ProtocolVersion)
			assert.Equal(t, h.StartTime.UnixNano(), startTime.UnixNano())
			assert.Equal(t, h.Compression, compression)

			batchesRead := make([][]record, 0, len(batches))
			var nextOffset int64
			for {
				batch, err := reader.ReadRecordBatch()
				if err != nil {
					if err == io.EOF {
						break
					}
					t.Fatal(err)
				}
				assert.Equal(t, batch.Compression(), compression)
				assert.Equal(t, batch.FirstOffset(), nextOffset)
				nextOffset = batch.NextOffset()

				records := make([]record, batch.NumRecords())
				count := 0
				iter := stream.Iter[capture.Record](batch)

				for iter.Next() {
					r := iter.Value()
					assert.Less(t, count, len(records))
					records[count] = record{
						Timestamp: r.Timestamp(),
						Direction: r.Direction(),
						Data:      append([]byte{}, r.Data()...),
					}
					count++
				}

				assert.OK(t, iter.Err())
				assert.Equal(t, count, len(records))
				assert.Equal(t, batch.FirstTimestamp().UnixNano(), records[0].Timestamp.UnixNano())
				assert.Equal(t, batch.LastTimestamp().UnixNano(), records[count-1].Timestamp.UnixNano())
				batchesRead = append(batchesRead, records)
			}

			if diff := cmp.Diff(batches, batchesRead); diff != "" {
				t.Fatal(diff)
			}
		})
	}
}

func TestSkipRecordBatches(t *testing.T) {
	header := capture.NewHeader(capture.Snappy)
	batches := [][]record{
		{{Timestamp: header.StartTime, Data: []byte("first")}},
		{{Timestamp: header.StartTime, Data: []byte("second")}, {Timestamp: header.StartTime, Data: []byte("third")}},
		{{Timestamp: header.StartTime, Data: []byte("fourth")}},
	}
	reader := capture.NewLogReader(bytes.NewReader(writeTrace(t, header, batches)))
	_, err := reader.ReadLogHeader()
	assert.OK(t, err)

	// Batches are read without touching their records.
	var numRecords []int
	for {
		batch, err := reader.ReadRecordBatch()
		if err == io.EOF {
			break
		}
		assert.OK(t, err)
		numRecords = append(numRecords, batch.NumRecords())
	}
	assert.EqualAll(t, numRecords, []int{1, 2, 1})
}

func TestLogRecordReader(t *testing.T) {
	header := capture.NewHeader(capture.Zstd)
	batches := [][]record{
		{{Timestamp: header.StartTime, Data: []byte("A")}, {Timestamp: header.StartTime, Data: []byte("B")}},
		{{Timestamp: header.StartTime, Data: []byte("C")}},
		{{Timestamp: header.StartTime, Data: []byte("D")}, {Timestamp: header.StartTime, Data: []byte("E")}},
	}
	reader := capture.NewLogRecordReader(capture.NewLogReader(bytes.NewReader(writeTrace(t, header, batches))))

	var data []string
	iter := stream.Iter[capture.Record](reader)
	for iter.Next() {
		r := iter.Value()
		data = append(data, string(r.Data()))
	}
	assert.OK(t, iter.Err())
	assert.EqualAll(t, data, []string{"A", "B", "C", "D", "E"})
}

func TestReadRecordBatchChecksumMismatch(t *testing.T) {
	header := capture.NewHeader(capture.Uncompressed)
	trace := writeTrace(t, header, [][]record{
		{{Timestamp: header.StartTime, Data: []byte("some commands")}},
	})
	trace[len(trace)-1] ^= 0xFF

	reader := capture.NewLogReader(bytes.NewReader(trace))
	_, err := reader.ReadLogHeader()
	assert.OK(t, err)
	batch, err := reader.ReadRecordBatch()
	assert.OK(t, err)

	_, err = batch.Read(make([]capture.Record, 1))
	assert.True(t, err != nil && strings.HasPrefix(err.Error(), "bad record data"), "checksum mismatch was not detected")
}

func TestReadTruncatedTrace(t *testing.T) {
	header := capture.NewHeader(capture.Uncompressed)
	trace := writeTrace(t, header, [][]record{
		{{Timestamp: header.StartTime, Data: []byte("some commands")}},
	})

	reader := capture.NewLogReader(bytes.NewReader(trace[:len(trace)-4]))
	_, err := reader.ReadLogHeader()
	assert.OK(t, err)
	batch, err := reader.ReadRecordBatch()
	assert.OK(t, err)
	_, err = batch.Read(make([]capture.Record, 1))
	assert.Error(t, err, io.ErrUnexpectedEOF)

	reader = capture.NewLogReader(bytes.NewReader(trace[:2]))
	_, err = reader.ReadLogHeader()
	assert.Error(t, err, io.ErrUnexpectedEOF)
}

func TestReadRecordBatchBeforeHeader(t *testing.T) {
	reader := capture.NewLogReader(bytes.NewReader(nil))
	_, err := reader.ReadRecordBatch()
	assert.Error(t, err, capture.ErrNoHeader)
}

func TestStickyWriteError(t *testing.T) {
	w := capture.NewLogWriter(failingWriter{})
	header := capture.NewHeader(capture.Uncompressed)
	assert.Error(t, w.WriteLogHeader(&header), errWriteFailed)

	var batch capture.RecordBatchBuilder
	batch.Reset(capture.Uncompressed, 0)
	assert.Error(t, w.WriteRecordBatch(&batch), errWriteFailed)

	w.Reset(io.Discard)
	assert.OK(t, w.WriteLogHeader(&header))
}

var errWriteFailed = errors.New("write failed")

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errWriteFailed }

func TestParseCompression(t *testing.T) {
	tests := []struct {
		name        string
		compression capture.Compression
	}{
		{"", capture.Uncompressed},
		{"none", capture.Uncompressed},
		{"snappy", capture.Snappy},
		{"ZSTD", capture.Zstd},
	}
	for _, test := range tests {
		c, err := capture.ParseCompression(test.name)
		assert.OK(t, err)
		assert.Equal(t, c, test.compression)
	}
	_, err := capture.ParseCompression("gzip")
	assert.True(t, err != nil, "gzip should not be supported")
}
