package nullgpu

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"
	"github.com/stealthrocket/dawnwire/internal/wire"
)

const (
	spirvMagic          = 0x07230203
	spirvHeaderWords    = 5
	spirvOpEntryPoint   = 15
	spirvModelVertex    = 0
	spirvModelFragment  = 4
	spirvModelGLCompute = 5
)

type ShaderModule struct {
	resource
	label       string
	invalid     bool
	entryPoints map[string]gputypes.ShaderStage
}

func (m *ShaderModule) IsValid() bool { return !m.invalid }

// EntryPoints returns the stage of each entry point of the module.
func (m *ShaderModule) EntryPoints() map[string]gputypes.ShaderStage { return m.entryPoints }

func (d *Device) createShaderModule(desc *wire.ShaderModuleDescriptor) (*ShaderModule, error) {
	m := &ShaderModule{resource: resource{d}, label: desc.Label, invalid: true}
	d.created()
	if err := d.check(); err != nil {
		return m, err
	}

	var sources []wire.ChainedStruct
	for _, c := range desc.NextInChain {
		switch c.(type) {
		case *wire.ShaderSourceWGSL, *wire.ShaderSourceSPIRV:
			sources = append(sources, c)
		}
	}
	if len(sources) != 1 {
		return m, d.validation("shader module %q must have exactly one source, got %d", desc.Label, len(sources))
	}

	var err error
	switch src := sources[0].(type) {
	case *wire.ShaderSourceWGSL:
		m.entryPoints, err = wgslEntryPoints(src.Code)
	case *wire.ShaderSourceSPIRV:
		m.entryPoints, err = spirvEntryPoints(src.Code)
	}
	if err != nil {
		return m, d.validation("shader module %q: %v", desc.Label, err)
	}
	m.invalid = false
	return m, nil
}

// wgslEntryPoints compiles WGSL source to validated IR and lists its entry
// points.
func wgslEntryPoints(code string) (map[string]gputypes.ShaderStage, error) {
	ast, err := naga.Parse(code)
	if err != nil {
		return nil, err
	}
	module, err := naga.LowerWithSource(ast, code)
	if err != nil {
		return nil, err
	}
	errs, err := naga.Validate(module)
	if err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		return nil, errs[0]
	}
	entryPoints := make(map[string]gputypes.ShaderStage, len(module.EntryPoints))
	for _, ep := range module.EntryPoints {
		switch ep.Stage {
		case ir.StageVertex:
			entryPoints[ep.Name] = gputypes.ShaderStageVertex
		case ir.StageFragment:
			entryPoints[ep.Name] = gputypes.ShaderStageFragment
		case ir.StageCompute:
			entryPoints[ep.Name] = gputypes.ShaderStageCompute
		}
	}
	return entryPoints, nil
}

// spirvEntryPoints lists the OpEntryPoint instructions of a SPIR-V module.
func spirvEntryPoints(code []uint32) (map[string]gputypes.ShaderStage, error) {
	if len(code) < spirvHeaderWords || code[0] != spirvMagic {
		return nil, fmt.Errorf("not a SPIR-V module")
	}
	entryPoints := make(map[string]gputypes.ShaderStage)
	for i := spirvHeaderWords; i < len(code); {
		n, op := int(code[i]>>16), code[i]&0xFFFF
		if n == 0 || i+n > len(code) {
			return nil, fmt.Errorf("truncated SPIR-V instruction at word %d", i)
		}
		if op == spirvOpEntryPoint && n >= 4 {
			var stage gputypes.ShaderStage
			switch code[i+1] {
			case spirvModelVertex:
				stage = gputypes.ShaderStageVertex
			case spirvModelFragment:
				stage = gputypes.ShaderStageFragment
			case spirvModelGLCompute:
				stage = gputypes.ShaderStageCompute
			}
			if stage != gputypes.ShaderStageNone {
				entryPoints[spirvString(code[i+3:i+n])] = stage
			}
		}
		i += n
	}
	return entryPoints, nil
}

func spirvString(words []uint32) string {
	b := make([]byte, 4*len(words))
	for i, w := range words {
		binary.LittleEndian.PutUint32(b[4*i:], w)
	}
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

// entryPoint resolves the entry point of a programmable stage. An empty name
// selects the only entry point of the stage, if there is exactly one.
func (m *ShaderModule) entryPoint(name string, stage gputypes.ShaderStage) (string, error) {
	if name != "" {
		if s, ok := m.entryPoints[name]; ok && s == stage {
			return name, nil
		}
		return "", fmt.Errorf("shader module %q has no %s entry point named %q", m.label, stage, name)
	}
	var found []string
	for n, s := range m.entryPoints {
		if s == stage {
			found = append(found, n)
		}
	}
	if len(found) != 1 {
		return "", fmt.Errorf("shader module %q has %d %s entry points, the name must be specified", m.label, len(found), stage)
	}
	return found[0], nil
}
