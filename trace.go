package main

import (
	"path/filepath"

	"github.com/google/uuid"
	"github.com/stealthrocket/dawnwire/internal/capture"
	"github.com/stealthrocket/dawnwire/internal/config"
)

// openTrace opens the trace named on the command line, either a path or the
// id of a trace in the capture location.
func openTrace(c *config.Config, trace string) (*capture.Trace, error) {
	path := trace
	if _, err := uuid.Parse(trace); err == nil {
		dir, ok := c.CaptureDirectory()
		if !ok {
			dir = config.DefaultCaptureLocation()
		}
		path = filepath.Join(dir, trace+capture.Extension)
	}
	return capture.Open(path)
}
