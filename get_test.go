package main

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stealthrocket/dawnwire/internal/assert"
	"github.com/stealthrocket/dawnwire/internal/config"
	"github.com/stealthrocket/dawnwire/internal/print/human"
)

// withCaptureLocation writes a configuration recording traces to dir.
func withCaptureLocation(t *testing.T, dir string) string {
	c := testConfig()
	c.Capture.Location = config.NullableValue(human.Path(dir))
	return writeConfig(t, c)
}

var getTests = tests{
	"get without a resource type": func(t *testing.T) {
		stdout, stderr, exitCode := dawnwire(t, "get")
		assert.Equal(t, exitCode, 2)
		assert.Equal(t, stdout, "")
		assert.HasPrefix(t, stderr, "Expected at least the resource type as argument")
	},

	"get an unknown resource type": func(t *testing.T) {
		stdout, stderr, exitCode := dawnwire(t, "get", "pipelines")
		assert.Equal(t, exitCode, 2)
		assert.Equal(t, stdout, "")
		assert.Equal(t, stderr, "dawnwire get: no resources matching 'pipelines'\n")
	},

	"get traces on an empty capture location": func(t *testing.T) {
		path := withCaptureLocation(t, t.TempDir())
		stdout, stderr, exitCode := dawnwire(t, "get", "traces", "-c", path)
		assert.Equal(t, exitCode, 0)
		assert.EqualAll(t, strings.Fields(stdout), []string{"TRACE", "ID", "START", "COMPRESSION", "RECORDS", "SIZE", "RATIO"})
		assert.Equal(t, stderr, "")
	},

	"get traces from a capture location that does not exist": func(t *testing.T) {
		path := withCaptureLocation(t, filepath.Join(t.TempDir(), "missing"))
		stdout, _, exitCode := dawnwire(t, "get", "tr", "-q", "-c", path)
		assert.Equal(t, exitCode, 0)
		assert.Equal(t, stdout, "")
	},

	"get traces after run": func(t *testing.T) {
		dir := t.TempDir()
		path := withCaptureLocation(t, dir)
		first := runCapture(t, dir)
		second := runCapture(t, dir)

		stdout, stderr, exitCode := dawnwire(t, "get", "traces", "-q", "-c", path)
		assert.Equal(t, exitCode, 0)
		assert.Equal(t, stderr, "")

		ids := strings.Fields(stdout)
		assert.Equal(t, len(ids), 2)
		assert.True(t, contains(ids, first), "missing trace "+first)
		assert.True(t, contains(ids, second), "missing trace "+second)
	},

	"get traces with the json output": func(t *testing.T) {
		dir := t.TempDir()
		id := runCapture(t, dir, "--compression", "snappy")

		stdout, _, exitCode := dawnwire(t, "get", "trace", "-o", "json", "-c", withCaptureLocation(t, dir))
		assert.Equal(t, exitCode, 0)

		var summary struct {
			ID          string  `json:"id"`
			Compression string  `json:"compression"`
			Records     float64 `json:"records"`
			Size        uint64  `json:"size"`
			Ratio       float64 `json:"ratio"`
		}
		assert.OK(t, json.Unmarshal([]byte(stdout), &summary))
		assert.Equal(t, summary.ID, id)
		assert.Equal(t, summary.Compression, "Snappy")
		assert.Less(t, 0.0, summary.Records)
		assert.Less(t, uint64(0), summary.Size)
		assert.Less(t, 0.0, summary.Ratio)
	},

	"traces started before the time given with --since are not listed": func(t *testing.T) {
		dir := t.TempDir()
		runCapture(t, dir)

		stdout, _, exitCode := dawnwire(t, "get", "traces", "-q", "--since", "1h later", "-c", withCaptureLocation(t, dir))
		assert.Equal(t, exitCode, 0)
		assert.Equal(t, stdout, "")
	},
}
