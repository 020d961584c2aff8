package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stealthrocket/dawnwire/internal/assert"
	"github.com/stealthrocket/dawnwire/internal/capture"
	"github.com/stealthrocket/dawnwire/internal/config"
	"github.com/stealthrocket/dawnwire/internal/print/human"
)

const workloadOutput = `queue: Success
compute pipeline: Success
error scope: Validation (injected validation error)
buffer map: Success
buffer data: "the quick brown fox jumps over the lazy dog!"
`

var runTests = tests{
	"run the workload over the loopback transport": func(t *testing.T) {
		stdout, stderr, exitCode := dawnwire(t, "run")
		assert.Equal(t, exitCode, 0)
		assert.Equal(t, stdout, workloadOutput)
		assert.Equal(t, stderr, "")
	},

	"run the workload over the pipe transport": func(t *testing.T) {
		stdout, stderr, exitCode := dawnwire(t, "run", "-t", "pipe")
		assert.Equal(t, exitCode, 0)
		assert.Equal(t, stdout, workloadOutput)
		assert.Equal(t, stderr, "")
	},

	"the transport is selected by the configuration": func(t *testing.T) {
		c := testConfig()
		c.Transport.Kind = "pipe"
		stdout, _, exitCode := dawnwire(t, "run", "-c", writeConfig(t, c))
		assert.Equal(t, exitCode, 0)
		assert.Equal(t, stdout, workloadOutput)
	},

	"record the workload to a trace": func(t *testing.T) {
		dir := t.TempDir()
		id := runCapture(t, dir)
		_, err := uuid.Parse(id)
		assert.OK(t, err)

		trace, err := capture.Open(filepath.Join(dir, id+capture.Extension))
		assert.OK(t, err)
		defer trace.Close()
		assert.Equal(t, trace.Header.TraceID.String(), id)
		assert.Equal(t, trace.Header.Protocol, capture.ProtocolVersion)
		assert.Equal(t, trace.Header.Compression, capture.Zstd)
	},

	"the compression of the trace is selected on the command line": func(t *testing.T) {
		dir := t.TempDir()
		id := runCapture(t, dir, "--compression", "snappy")

		trace, err := capture.Open(filepath.Join(dir, id+capture.Extension))
		assert.OK(t, err)
		defer trace.Close()
		assert.Equal(t, trace.Header.Compression, capture.Snappy)
	},

	"the capture location is selected by the configuration": func(t *testing.T) {
		dir := t.TempDir()
		c := testConfig()
		c.Capture.Location = config.NullableValue(human.Path(dir))
		_, stderr, exitCode := dawnwire(t, "run", "-c", writeConfig(t, c))
		assert.Equal(t, exitCode, 0)

		id := strings.TrimPrefix(strings.TrimSpace(stderr), "dawnwire run: ")
		_, err := os.Stat(filepath.Join(dir, id+capture.Extension))
		assert.OK(t, err)
	},

	"the unix transport requires an address": func(t *testing.T) {
		stdout, stderr, exitCode := dawnwire(t, "run", "-t", "unix")
		assert.Equal(t, exitCode, 1)
		assert.Equal(t, stdout, "")
		assert.HasPrefix(t, stderr, "ERR: dawnwire run: transport.address: ")
	},

	"connecting to a missing server fails": func(t *testing.T) {
		sock := filepath.Join(t.TempDir(), "missing.sock")
		stdout, stderr, exitCode := dawnwire(t, "run", "-t", "unix", "-a", sock)
		assert.Equal(t, exitCode, 1)
		assert.Equal(t, stdout, "")
		assert.HasPrefix(t, stderr, "ERR: dawnwire run: ")
	},

	"passing an argument to the run command causes an error": func(t *testing.T) {
		_, stderr, exitCode := dawnwire(t, "run", "whatever")
		assert.Equal(t, exitCode, 2)
		assert.Equal(t, stderr, "dawnwire run: unexpected argument \"whatever\"\n")
	},
}
