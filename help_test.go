package main

import (
	"testing"

	"github.com/stealthrocket/dawnwire/internal/assert"
)

var helpTests = tests{
	"calling help with an unknown command causes an error": func(t *testing.T) {
		stdout, stderr, exitCode := dawnwire(t, "help", "whatever")
		assert.Equal(t, exitCode, 2)
		assert.Equal(t, stdout, "")
		assert.Equal(t, stderr, "dawnwire help whatever: unknown command\n")
	},

	"dawnwire help": func(t *testing.T) {
		stdout, stderr, exitCode := dawnwire(t, "help")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "Usage:\tdawnwire <command> ")
		assert.Equal(t, stderr, "")
	},

	"dawnwire help config": func(t *testing.T) {
		stdout, stderr, exitCode := dawnwire(t, "help", "config")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "Usage:\tdawnwire config ")
		assert.Equal(t, stderr, "")
	},

	"dawnwire help describe": func(t *testing.T) {
		stdout, stderr, exitCode := dawnwire(t, "help", "describe")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "Usage:\tdawnwire describe ")
		assert.Equal(t, stderr, "")
	},

	"dawnwire help get": func(t *testing.T) {
		stdout, stderr, exitCode := dawnwire(t, "help", "get")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "Usage:\tdawnwire get ")
		assert.Equal(t, stderr, "")
	},

	"dawnwire help help": func(t *testing.T) {
		stdout, stderr, exitCode := dawnwire(t, "help", "help")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "Usage:\tdawnwire <command> ")
		assert.Equal(t, stderr, "")
	},

	"dawnwire help replay": func(t *testing.T) {
		stdout, stderr, exitCode := dawnwire(t, "help", "replay")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "Usage:\tdawnwire replay ")
		assert.Equal(t, stderr, "")
	},

	"dawnwire help run": func(t *testing.T) {
		stdout, stderr, exitCode := dawnwire(t, "help", "run")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "Usage:\tdawnwire run ")
		assert.Equal(t, stderr, "")
	},

	"dawnwire help serve": func(t *testing.T) {
		stdout, stderr, exitCode := dawnwire(t, "help", "serve")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "Usage:\tdawnwire serve ")
		assert.Equal(t, stderr, "")
	},

	"dawnwire help version": func(t *testing.T) {
		stdout, stderr, exitCode := dawnwire(t, "help", "version")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "Usage:\tdawnwire version")
		assert.Equal(t, stderr, "")
	},
}
