package capture

import (
	"fmt"
	"time"

	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/google/uuid"
	"github.com/stealthrocket/dawnwire/format/tracesegment"
)

// ProtocolVersion identifies the wire protocol recorded in traces.
const ProtocolVersion = "dawnwire/1"

// Header is the first frame of a trace.
type Header struct {
	TraceID     uuid.UUID
	Protocol    string
	StartTime   time.Time
	Compression Compression
}

// NewHeader returns the header of a trace starting now, with a random id.
func NewHeader(compression Compression) Header {
	return Header{
		TraceID:     uuid.New(),
		Protocol:    ProtocolVersion,
		StartTime:   time.Now(),
		Compression: compression,
	}
}

// ParseHeader parses a size-prefixed trace header.
func ParseHeader(b []byte) (*Header, error) {
	if len(b) < 8 {
		return nil, fmt.Errorf("trace header is too short (%d bytes)", len(b))
	}
	h := tracesegment.GetSizePrefixedRootAsTraceHeader(b, 0)
	id, err := uuid.ParseBytes(h.TraceId())
	if err != nil {
		return nil, fmt.Errorf("invalid trace id: %w", err)
	}
	return &Header{
		TraceID:     id,
		Protocol:    string(h.Protocol()),
		StartTime:   time.Unix(0, h.UnixStartTime()),
		Compression: h.Compression(),
	}, nil
}

func (h *Header) build(builder *flatbuffers.Builder) {
	traceID := builder.CreateString(h.TraceID.String())
	protocol := builder.CreateString(h.Protocol)
	tracesegment.TraceHeaderStart(builder)
	tracesegment.TraceHeaderAddTraceId(builder, traceID)
	tracesegment.TraceHeaderAddProtocol(builder, protocol)
	tracesegment.TraceHeaderAddUnixStartTime(builder, h.StartTime.UnixNano())
	tracesegment.TraceHeaderAddCompression(builder, h.Compression)
	tracesegment.FinishSizePrefixedTraceHeaderBuffer(builder, tracesegment.TraceHeaderEnd(builder))
}
