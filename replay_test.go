package main

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stealthrocket/dawnwire/internal/assert"
	"github.com/stealthrocket/dawnwire/internal/capture"
	"github.com/stealthrocket/dawnwire/internal/wire"
)

var replayTests = tests{
	"replay a recorded trace": func(t *testing.T) {
		dir := t.TempDir()
		id := runCapture(t, dir)

		stdout, stderr, exitCode := dawnwire(t, "replay", "--verify", filepath.Join(dir, id+capture.Extension))
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, id+": ")
		assert.Equal(t, stderr, "")
	},

	"replay a trace recorded over the pipe transport": func(t *testing.T) {
		dir := t.TempDir()
		id := runCapture(t, dir, "-t", "pipe", "--compression", "none")

		stdout, _, exitCode := dawnwire(t, "replay", "-q", "--verify", filepath.Join(dir, id+capture.Extension))
		assert.Equal(t, exitCode, 0)
		assert.Equal(t, stdout, "")
	},

	"replay reports the first fatal error": func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "fatal.trace")
		f, err := os.Create(path)
		assert.OK(t, err)
		rec, err := capture.NewRecorder(f, capture.NewHeader(capture.Uncompressed), 0)
		assert.OK(t, err)

		cmd := make([]byte, wire.HeaderSize)
		binary.LittleEndian.PutUint32(cmd[0:], wire.HeaderSize)
		binary.LittleEndian.PutUint32(cmd[4:], 0xFFFF)
		assert.OK(t, rec.Record(capture.ClientToServer, cmd))
		assert.OK(t, rec.Close())

		stdout, stderr, exitCode := dawnwire(t, "replay", path)
		assert.Equal(t, exitCode, 1)
		assert.Equal(t, stdout, "")
		assert.HasPrefix(t, stderr, "ERR: dawnwire replay: replaying record 0: ")
	},

	"replay a truncated trace": func(t *testing.T) {
		dir := t.TempDir()
		id := runCapture(t, dir)
		path := filepath.Join(dir, id+capture.Extension)

		b, err := os.ReadFile(path)
		assert.OK(t, err)
		assert.OK(t, os.WriteFile(path, b[:len(b)-1], 0666))

		_, stderr, exitCode := dawnwire(t, "replay", path)
		assert.Equal(t, exitCode, 1)
		assert.HasPrefix(t, stderr, "ERR: dawnwire replay: ")
	},

	"replay without a trace": func(t *testing.T) {
		_, stderr, exitCode := dawnwire(t, "replay")
		assert.Equal(t, exitCode, 2)
		assert.True(t, strings.HasPrefix(stderr, "Expected exactly one trace"), stderr)
	},
}
