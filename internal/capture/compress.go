package capture

import (
	"fmt"
	"strings"
	"sync"

	"github.com/klauspost/compress/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/stealthrocket/dawnwire/format/tracesegment"
)

// Compression is the algorithm that the records of a batch are compressed
// with. A trace uses the same algorithm for all its batches.
type Compression = tracesegment.Compression

const (
	Uncompressed Compression = tracesegment.CompressionUncompressed
	Snappy       Compression = tracesegment.CompressionSnappy
	Zstd         Compression = tracesegment.CompressionZstd
)

// ParseCompression parses the name of a compression algorithm as it appears
// in configuration files and on the command line.
func ParseCompression(s string) (Compression, error) {
	switch strings.ToLower(s) {
	case "", "none", "uncompressed":
		return Uncompressed, nil
	case "snappy":
		return Snappy, nil
	case "zstd":
		return Zstd, nil
	}
	return Uncompressed, fmt.Errorf("unsupported compression: %q (expected none, snappy, or zstd)", s)
}

// Zstd coders are single threaded and reused across batches.
var (
	zstdEncoders = sync.Pool{
		New: func() any {
			e, _ := zstd.NewWriter(nil,
				zstd.WithEncoderCRC(false),
				zstd.WithEncoderConcurrency(1),
				zstd.WithEncoderLevel(zstd.SpeedFastest),
			)
			return e
		},
	}
	zstdDecoders = sync.Pool{
		New: func() any {
			d, _ := zstd.NewReader(nil,
				zstd.IgnoreChecksum(true),
				zstd.WithDecoderConcurrency(1),
			)
			return d
		},
	}
)

// compress writes the compressed form of src to dst, growing it if needed.
// Zstd frames carry no checksum, batches have their own.
func compress(dst, src []byte, compression Compression) []byte {
	switch compression {
	case Snappy:
		return snappy.Encode(dst, src)
	case Zstd:
		e := zstdEncoders.Get().(*zstd.Encoder)
		defer zstdEncoders.Put(e)
		return e.EncodeAll(src, dst[:0])
	}
	return append(dst[:0], src...)
}

func decompress(dst, src []byte, compression Compression) ([]byte, error) {
	switch compression {
	case Snappy:
		return snappy.Decode(dst, src)
	case Zstd:
		d := zstdDecoders.Get().(*zstd.Decoder)
		defer zstdDecoders.Put(d)
		return d.DecodeAll(src, dst[:0])
	}
	return dst, fmt.Errorf("cannot decompress records: unknown compression %d", compression)
}
