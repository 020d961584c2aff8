package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stealthrocket/dawnwire/internal/assert"
	"github.com/stealthrocket/dawnwire/internal/config"
	"gopkg.in/yaml.v3"
)

var configTests = tests{
	"print the configuration file": func(t *testing.T) {
		b, err := os.ReadFile(os.Getenv(config.PathEnv))
		assert.OK(t, err)

		stdout, stderr, exitCode := dawnwire(t, "config")
		assert.Equal(t, exitCode, 0)
		assert.Equal(t, stdout, string(b))
		assert.Equal(t, stderr, "")
	},

	"print the default configuration when the file does not exist": func(t *testing.T) {
		b, err := yaml.Marshal(config.DefaultConfig())
		assert.OK(t, err)

		path := filepath.Join(t.TempDir(), "config.yaml")
		stdout, stderr, exitCode := dawnwire(t, "config", "-c", path)
		assert.Equal(t, exitCode, 0)
		assert.Equal(t, stdout, string(b))
		assert.Equal(t, stderr, "")
	},

	"print the default toml configuration when the file does not exist": func(t *testing.T) {
		b, err := toml.Marshal(config.DefaultConfig())
		assert.OK(t, err)

		path := filepath.Join(t.TempDir(), "config.toml")
		stdout, _, exitCode := dawnwire(t, "config", "--config", path)
		assert.Equal(t, exitCode, 0)
		assert.Equal(t, stdout, string(b))
	},

	"print the configuration as json": func(t *testing.T) {
		stdout, _, exitCode := dawnwire(t, "config", "-o", "json")
		assert.Equal(t, exitCode, 0)

		var c struct {
			Transport struct {
				Kind     string `json:"kind"`
				RingSize uint64 `json:"ring_size"`
			} `json:"transport"`
			Capture struct {
				Location *string `json:"location"`
			} `json:"capture"`
			Log struct {
				Level string `json:"level"`
			} `json:"log"`
		}
		assert.OK(t, json.Unmarshal([]byte(stdout), &c))
		assert.Equal(t, c.Transport.Kind, "loopback")
		assert.Equal(t, c.Transport.RingSize, uint64(4<<20))
		assert.True(t, c.Capture.Location == nil, "capture location is set")
		assert.Equal(t, c.Log.Level, "error")
	},

	"print the configuration as yaml": func(t *testing.T) {
		stdout, _, exitCode := dawnwire(t, "config", "-o", "yaml")
		assert.Equal(t, exitCode, 0)

		c, err := config.Read(strings.NewReader(stdout), "yaml")
		assert.OK(t, err)
		assert.DeepEqual(t, c, testConfig())
	},

	"an invalid configuration is reported": func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		assert.OK(t, os.WriteFile(path, []byte("transport:\n  kind: carrier-pigeon\n"), 0666))

		stdout, stderr, exitCode := dawnwire(t, "config", "-c", path, "-o", "yaml")
		assert.Equal(t, exitCode, 1)
		assert.Equal(t, stdout, "")
		assert.HasPrefix(t, stderr, "ERR: dawnwire config: "+path+": transport.kind: ")
	},

	"edit the configuration": func(t *testing.T) {
		t.Setenv("EDITOR", "sed -i -e s/loopback/pipe/")
		t.Setenv("SHELL", "/bin/sh")

		_, stderr, exitCode := dawnwire(t, "config", "--edit")
		assert.Equal(t, exitCode, 0)
		assert.Equal(t, stderr, "")

		c, err := config.Load(os.Getenv(config.PathEnv))
		assert.OK(t, err)
		assert.Equal(t, c.Transport.Kind, "pipe")
	},

	"invalid edits are not applied": func(t *testing.T) {
		t.Setenv("EDITOR", "sed -i -e s/loopback/carrier-pigeon/")
		t.Setenv("SHELL", "/bin/sh")

		_, stderr, exitCode := dawnwire(t, "config", "--edit")
		assert.Equal(t, exitCode, 1)
		assert.True(t, strings.Contains(stderr, "not applying configuration updates"), stderr)

		c, err := config.Load(os.Getenv(config.PathEnv))
		assert.OK(t, err)
		assert.Equal(t, c.Transport.Kind, "loopback")
	},
}
