package main

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stealthrocket/dawnwire/internal/assert"
	"github.com/stealthrocket/dawnwire/internal/capture"
	"github.com/stealthrocket/dawnwire/internal/config"
	"github.com/stealthrocket/dawnwire/internal/print/human"
	"gopkg.in/yaml.v3"
)

// workloadCommands are the commands that the client sends when running the
// workload.
var workloadCommands = []string{
	"DeviceGetQueue",
	"DeviceCreateBuffer",
	"DeviceCreateBuffer",
	"QueueWriteBuffer",
	"DeviceCreateCommandEncoder",
	"CommandEncoderCopyBufferToBuffer",
	"CommandEncoderFinish",
	"QueueSubmit",
	"QueueOnSubmittedWorkDone",
	"DeviceCreateShaderModule",
	"DeviceCreateComputePipelineAsync",
	"DevicePushErrorScope",
	"DeviceInjectError",
	"DevicePopErrorScope",
	"BufferMapAsync",
	"DeviceTick",
	"BufferUnmap",
}

var describeTests = tests{
	"list the commands sent by the client": func(t *testing.T) {
		dir := t.TempDir()
		id := runCapture(t, dir)

		stdout, stderr, exitCode := dawnwire(t, "describe", "-q", "-d", "client", filepath.Join(dir, id+capture.Extension))
		assert.Equal(t, exitCode, 0)
		assert.EqualAll(t, strings.Fields(stdout), workloadCommands)
		assert.Equal(t, stderr, "")
	},

	"list the return commands sent by the server": func(t *testing.T) {
		dir := t.TempDir()
		id := runCapture(t, dir)

		stdout, _, exitCode := dawnwire(t, "describe", filepath.Join(dir, id+capture.Extension), "--quiet", "--direction", "server")
		assert.Equal(t, exitCode, 0)
		returns := strings.Fields(stdout)
		for _, name := range []string{
			"ReturnQueueWorkDoneCallback",
			"ReturnDeviceCreateComputePipelineAsyncCallback",
			"ReturnDevicePopErrorScopeCallback",
			"ReturnBufferMapAsyncCallback",
		} {
			assert.True(t, contains(returns, name), "missing return command "+name)
		}
		for _, name := range returns {
			assert.HasPrefix(t, name, "Return")
		}
	},

	"describe a trace with the text output": func(t *testing.T) {
		dir := t.TempDir()
		id := runCapture(t, dir)

		stdout, _, exitCode := dawnwire(t, "describe", filepath.Join(dir, id+capture.Extension))
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "ID: "+id+"\nProtocol: dawnwire/1\n")
		assert.True(t, strings.Contains(stdout, "Compression: Zstd\n"), "missing compression")
		header, table, ok := strings.Cut(stdout, "---\n")
		assert.True(t, ok, "missing separator")
		assert.True(t, strings.Contains(header, "Commands: "), "missing command count")
		assert.HasPrefix(t, table, "COMMAND ")
		assert.True(t, strings.Contains(table, "DeviceCreateComputePipelineAsync"), "missing command")
	},

	"describe a trace with the json output": func(t *testing.T) {
		dir := t.TempDir()
		id := runCapture(t, dir)

		stdout, _, exitCode := dawnwire(t, "describe", "-o", "json", "-d", "client", filepath.Join(dir, id+capture.Extension))
		assert.Equal(t, exitCode, 0)

		var desc traceDescriptor
		assert.OK(t, json.Unmarshal([]byte(stdout), &desc))
		assert.Equal(t, desc.ID, id)
		assert.Equal(t, desc.Protocol, capture.ProtocolVersion)
		assert.Equal(t, len(desc.Commands), len(workloadCommands))
		for i, cmd := range desc.Commands {
			assert.Equal(t, cmd.Command, workloadCommands[i])
			assert.Equal(t, cmd.Direction, "client")
			assert.Less(t, human.Bytes(0), cmd.Size)
		}
	},

	"describe a trace with the yaml output": func(t *testing.T) {
		dir := t.TempDir()
		id := runCapture(t, dir)

		stdout, _, exitCode := dawnwire(t, "describe", "-o", "yaml", filepath.Join(dir, id+capture.Extension))
		assert.Equal(t, exitCode, 0)

		var desc struct {
			ID       string `yaml:"id"`
			Commands []struct {
				Command string `yaml:"command"`
			} `yaml:"commands"`
		}
		assert.OK(t, yaml.Unmarshal([]byte(stdout), &desc))
		assert.Equal(t, desc.ID, id)
		assert.Equal(t, desc.Commands[0].Command, "DeviceGetQueue")
	},

	"dump the values of the commands": func(t *testing.T) {
		dir := t.TempDir()
		id := runCapture(t, dir)

		stdout, _, exitCode := dawnwire(t, "describe", "-v", "-d", "client", filepath.Join(dir, id+capture.Extension))
		assert.Equal(t, exitCode, 0)
		assert.True(t, strings.Contains(stdout, "DeviceCreateBuffer (client, record "), "missing command")
		assert.True(t, strings.Contains(stdout, `"readback"`), "missing buffer label")
		assert.True(t, strings.Contains(stdout, `"injected validation error"`), "missing error message")
	},

	"a trace id is looked up in the capture location": func(t *testing.T) {
		dir := t.TempDir()
		id := runCapture(t, dir)

		c := testConfig()
		c.Capture.Location = config.NullableValue(human.Path(dir))
		stdout, _, exitCode := dawnwire(t, "describe", "-c", writeConfig(t, c), "-q", id)
		assert.Equal(t, exitCode, 0)
		assert.Equal(t, strings.Fields(stdout)[0], "DeviceGetQueue")
	},

	"describe without a trace": func(t *testing.T) {
		stdout, stderr, exitCode := dawnwire(t, "describe")
		assert.Equal(t, exitCode, 2)
		assert.Equal(t, stdout, "")
		assert.Equal(t, stderr, "Expected exactly one trace as argument\n")
	},

	"describe a trace that does not exist": func(t *testing.T) {
		stdout, stderr, exitCode := dawnwire(t, "describe", filepath.Join(t.TempDir(), "missing.trace"))
		assert.Equal(t, exitCode, 1)
		assert.Equal(t, stdout, "")
		assert.HasPrefix(t, stderr, "ERR: dawnwire describe: ")
	},
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
