package main

import (
	"testing"

	"github.com/stealthrocket/dawnwire/internal/assert"
)

var versionTests = tests{
	"show the dawnwire version": func(t *testing.T) {
		stdout, stderr, exitCode := dawnwire(t, "version")
		assert.Equal(t, exitCode, 0)
		assert.Equal(t, stdout, "dawnwire devel\n")
		assert.Equal(t, stderr, "")
	},

	"passing an argument to the version command causes an error": func(t *testing.T) {
		stdout, stderr, exitCode := dawnwire(t, "version", "whatever")
		assert.Equal(t, exitCode, 2)
		assert.Equal(t, stdout, "")
		assert.Equal(t, stderr, "dawnwire version: unexpected argument \"whatever\"\n")
	},
}
