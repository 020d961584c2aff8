package wire

import (
	"fmt"
	"log/slog"
)

// SType identifies the type of a chained struct.
type SType uint32

const (
	STypeInvalid SType = iota
	STypeShaderSourceSPIRV
	STypeShaderSourceWGSL
)

func (t SType) String() string {
	switch t {
	case STypeShaderSourceSPIRV:
		return "ShaderSourceSPIRV"
	case STypeShaderSourceWGSL:
		return "ShaderSourceWGSL"
	default:
		return fmt.Sprintf("SType(%d)", uint32(t))
	}
}

// ChainedStruct is implemented by the structs that can extend a descriptor
// through its NextInChain list.
//
// On the wire each chained struct is prefixed with its type and payload size,
// which lets a peer skip the ones it does not know about.
type ChainedStruct interface {
	SType() SType
	walkable
}

// ShaderSourceWGSL carries WGSL source code.
type ShaderSourceWGSL struct {
	Code string
}

func (*ShaderSourceWGSL) SType() SType { return STypeShaderSourceWGSL }

func (s *ShaderSourceWGSL) walk(w walker) { w.str(&s.Code) }

// ShaderSourceSPIRV carries a SPIR-V binary as 32 bits words.
type ShaderSourceSPIRV struct {
	Code []uint32
}

func (*ShaderSourceSPIRV) SType() SType { return STypeShaderSourceSPIRV }

func (s *ShaderSourceSPIRV) walk(w walker) { words(w, &s.Code) }

func newChainedStruct(t SType) ChainedStruct {
	switch t {
	case STypeShaderSourceSPIRV:
		return new(ShaderSourceSPIRV)
	case STypeShaderSourceWGSL:
		return new(ShaderSourceWGSL)
	default:
		return nil
	}
}

func chainedPayloadSize(c ChainedStruct) int {
	s := new(sizer)
	walkStruct(s, c.walk)
	return s.n
}

func chain(w walker, s *[]ChainedStruct) {
	n := w.count(len(*s))
	if !w.ok() || n == 0 {
		if w.decoding() {
			*s = nil
		}
		return
	}
	w.trailing(func(w walker) {
		if !w.decoding() {
			for _, c := range *s {
				sType, size := uint32(c.SType()), uint32(chainedPayloadSize(c))
				w.u32(&sType)
				w.u32(&size)
				walkStruct(w, c.walk)
			}
			return
		}

		var chained []ChainedStruct
		for i := 0; i < n && w.ok(); i++ {
			var sType, size uint32
			w.u32(&sType)
			w.u32(&size)
			if !w.ok() {
				return
			}
			if size%Alignment != 0 || int64(size) > int64(w.remaining()) {
				w.fail(fmt.Errorf("%w: chained struct of %d bytes", ErrMalformedCommand, size))
				return
			}
			c := newChainedStruct(SType(sType))
			if c == nil {
				Logger().Warn("skipping unknown chained struct",
					slog.Any("stype", SType(sType)),
					slog.Int("size", int(size)))
				w.skip(int(size))
				continue
			}
			before := w.remaining()
			walkStruct(w, c.walk)
			if w.ok() && before-w.remaining() != int(size) {
				w.fail(fmt.Errorf("%w: %s payload is %d bytes, header says %d",
					ErrMalformedCommand, SType(sType), before-w.remaining(), size))
				return
			}
			chained = append(chained, c)
		}
		*s = chained
	})
}
