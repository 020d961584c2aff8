package main

import (
	"bytes"
	"context"
	"fmt"

	"github.com/stealthrocket/dawnwire/internal/capture"
	"github.com/stealthrocket/dawnwire/internal/nullgpu"
	"github.com/stealthrocket/dawnwire/internal/print/human"
	"github.com/stealthrocket/dawnwire/internal/stream"
	"github.com/stealthrocket/dawnwire/internal/transport"
	"github.com/stealthrocket/dawnwire/internal/wire/server"
)

const replayUsage = `
Usage:	dawnwire replay [options] <trace>

   The replay command feeds the commands that the client sent in a trace to a
   fresh server backed by the null GPU, and reports the first fatal error.

   The trace is either the path of a trace file, or the id of a trace in the
   capture location.

Options:
   -c, --config path  Path to the dawnwire configuration file (overrides DAWNWIRECONFIG)
   -h, --help         Show this usage information
   -q, --quiet        Do not print the replay summary
       --verify       Check that the server produces the return commands recorded in the trace
`

func replay(ctx context.Context, args []string) error {
	var (
		quiet  = false
		verify = false
	)

	flagSet := newFlagSet("dawnwire replay", replayUsage)
	boolVar(flagSet, &quiet, "q", "quiet")
	boolVar(flagSet, &verify, "verify")

	args = parseFlags(flagSet, args)
	if len(args) != 1 {
		return usageError("Expected exactly one trace as argument")
	}

	c, err := loadConfig()
	if err != nil {
		return err
	}
	trace, err := openTrace(c, args[0])
	if err != nil {
		return err
	}
	defer trace.Close()

	device := nullgpu.NewDevice(nullgpu.DefaultLimits)
	returns := transport.NewBuffer(int(c.Transport.MaxAllocationSize))
	srv := server.New(nullgpu.Procs{}, device, returns, c.ServerConfig())

	records := &returnTap{records: trace.Records()}
	stats, err := capture.Replay(records, srv)
	if err != nil {
		return err
	}
	returned := returns.Len()
	if verify {
		// The client may have disconnected before reading every return
		// command, the recorded ones must be a prefix of the replayed ones.
		replayed := returns.Take()
		if i := mismatch(replayed, records.data); i >= 0 {
			return fmt.Errorf("return commands differ from the trace at byte %d of %d", i, len(records.data))
		}
	}
	if !quiet {
		fmt.Printf("%s: %d records, %v of commands replayed, %v of return commands\n",
			trace.Header.TraceID, stats.Records, human.Bytes(stats.Bytes), human.Bytes(returned))
	}
	return nil
}

// returnTap collects the return commands recorded in a trace while the
// records are replayed.
type returnTap struct {
	records stream.Reader[capture.Record]
	data    []byte
}

func (t *returnTap) Read(values []capture.Record) (int, error) {
	n, err := t.records.Read(values)
	for i := range values[:n] {
		if r := &values[i]; r.Direction() == capture.ServerToClient {
			t.data = append(t.data, r.Data()...)
		}
	}
	return n, err
}

// mismatch returns the index of the first byte of recorded which differs from
// replayed, or -1 if recorded is a prefix of replayed.
func mismatch(replayed, recorded []byte) int {
	if bytes.HasPrefix(replayed, recorded) {
		return -1
	}
	i := 0
	for i < len(replayed) && i < len(recorded) && replayed[i] == recorded[i] {
		i++
	}
	return i
}
