package main

import (
	"testing"

	"github.com/stealthrocket/dawnwire/internal/assert"
)

var rootTests = tests{
	"invoking dawnwire without a command shows the introduction": func(t *testing.T) {
		stdout, stderr, exitCode := dawnwire(t)
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "dawnwire - GPU command wire\n")
		assert.Equal(t, stderr, "")
	},
}
