package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/stealthrocket/dawnwire/internal/capture"
	"github.com/stealthrocket/dawnwire/internal/print/human"
	"github.com/stealthrocket/dawnwire/internal/print/jsonprint"
	"github.com/stealthrocket/dawnwire/internal/print/textprint"
	"github.com/stealthrocket/dawnwire/internal/print/yamlprint"
	"github.com/stealthrocket/dawnwire/internal/stream"
	"github.com/stealthrocket/dawnwire/internal/wire"
)

const describeUsage = `
Usage:	dawnwire describe [options] <trace>

   The describe command decodes a trace and prints the commands it holds.

   The trace is either the path of a trace file, or the id of a trace in the
   capture location.

Example:

   $ dawnwire describe --direction client f6e9acbc-0543-47df-9413-b99f569cfa3b
   ID: f6e9acbc-0543-47df-9413-b99f569cfa3b
   Protocol: dawnwire/1
   Start: 2023-06-01T17:04:12Z
   Compression: Zstd
   Commands: 17
   ---
   COMMAND             DIRECTION  RECORD  OFFSET  SIZE  TIME
   DeviceGetQueue      client     0       0       24 B  312µs
   DeviceCreateBuffer  client     1       0       48 B  356µs
   ...

Options:
   -c, --config path        Path to the dawnwire configuration file (overrides DAWNWIRECONFIG)
   -d, --direction dir      Only show commands sent by the client or the server
   -h, --help               Show this usage information
   -o, --output format      Output format, one of: text, json, yaml
   -q, --quiet              Only print the command names
   -v, --verbose            Dump the decoded values of the commands
`

func describe(ctx context.Context, args []string) error {
	var (
		filter  direction
		output  = outputFormat("text")
		quiet   = false
		verbose = false
	)

	flagSet := newFlagSet("dawnwire describe", describeUsage)
	customVar(flagSet, &filter, "d", "direction")
	customVar(flagSet, &output, "o", "output")
	boolVar(flagSet, &quiet, "q", "quiet")
	boolVar(flagSet, &verbose, "v", "verbose")

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

	desc, err := describeTrace(trace, filter, verbose)
	if err != nil {
		return err
	}

	switch output {
	case "json":
		return writeOne(jsonprint.NewWriter[*traceDescriptor](os.Stdout), desc)
	case "yaml":
		return writeOne(yamlprint.NewWriter[*traceDescriptor](os.Stdout), desc)
	}

	if quiet {
		w := textprint.NewTableWriter[commandDescriptor](os.Stdout,
			textprint.Header[commandDescriptor](false),
			textprint.List[commandDescriptor](true),
		)
		return writeAll(w, desc.Commands)
	}

	fmt.Printf("%v---\n", desc)
	if verbose {
		w := textprint.NewWriter[commandDescriptor](os.Stdout,
			textprint.Format[commandDescriptor]("%+v"),
			textprint.Separator[commandDescriptor](""),
		)
		return writeAll(w, desc.Commands)
	}
	return writeAll(textprint.NewTableWriter[commandDescriptor](os.Stdout), desc.Commands)
}

func writeOne[T any](w stream.WriteCloser[T], value T) error {
	return writeAll(w, []T{value})
}

func writeAll[T any](w stream.WriteCloser[T], values []T) error {
	_, err := stream.Copy[T](w, stream.NewReader(values...))
	if err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

type traceDescriptor struct {
	ID          string              `json:"id"          yaml:"id"`
	Protocol    string              `json:"protocol"    yaml:"protocol"`
	StartTime   time.Time           `json:"startTime"   yaml:"startTime"`
	Compression string              `json:"compression" yaml:"compression"`
	Commands    []commandDescriptor `json:"commands"    yaml:"commands"`
}

func (desc *traceDescriptor) Format(w fmt.State, _ rune) {
	fmt.Fprintf(w, "ID: %s\n", desc.ID)
	fmt.Fprintf(w, "Protocol: %s\n", desc.Protocol)
	fmt.Fprintf(w, "Start: %s\n", desc.StartTime.UTC().Format(time.RFC3339))
	fmt.Fprintf(w, "Compression: %s\n", desc.Compression)
	fmt.Fprintf(w, "Commands: %d\n", len(desc.Commands))
}

type commandDescriptor struct {
	Command   string         `json:"command"         yaml:"command"         text:"COMMAND"`
	Direction string         `json:"direction"       yaml:"direction"       text:"DIRECTION"`
	Record    int            `json:"record"          yaml:"record"          text:"RECORD"`
	Offset    int            `json:"offset"          yaml:"offset"          text:"OFFSET"`
	Size      human.Bytes    `json:"size"            yaml:"size"            text:"SIZE"`
	Time      human.Duration `json:"time"            yaml:"time"            text:"TIME"`
	Value     wire.Command   `json:"value,omitempty" yaml:"value,omitempty" text:"-"`
}

var dumper = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// Format prints the command and, with the '+' flag, a dump of its value.
func (desc commandDescriptor) Format(w fmt.State, _ rune) {
	fmt.Fprintf(w, "%s (%s, record %d, offset %d, %v)\n", desc.Command, desc.Direction, desc.Record, desc.Offset, desc.Size)
	if w.Flag('+') && desc.Value != nil {
		dumper.Fprintf(textprint.Indent(w, "    "), "%v\n", desc.Value)
	}
}

func directionName(dir capture.Direction) string {
	if dir == capture.ServerToClient {
		return "server"
	}
	return "client"
}

func describeTrace(trace *capture.Trace, filter direction, verbose bool) (*traceDescriptor, error) {
	desc := &traceDescriptor{
		ID:          trace.Header.TraceID.String(),
		Protocol:    trace.Header.Protocol,
		StartTime:   trace.Header.StartTime,
		Compression: trace.Header.Compression.String(),
		Commands:    []commandDescriptor{},
	}

	record := 0
	iter := stream.Iter[capture.Record](trace.Records())
	for iter.Next() {
		r := iter.Value()
		dir := directionName(r.Direction())
		if filter != "" && string(filter) != dir {
			record++
			continue
		}
		cmds, err := capture.DecodeRecord(&r)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", record, err)
		}
		for _, cmd := range cmds {
			d := commandDescriptor{
				Command:   wire.CommandName(cmd.ID()),
				Direction: dir,
				Record:    record,
				Offset:    cmd.Offset,
				Size:      human.Bytes(cmd.RequiredSize()),
				Time:      human.Duration(r.Timestamp().Sub(trace.Header.StartTime)),
			}
			if verbose {
				d.Value = cmd.Command
			}
			desc.Commands = append(desc.Commands, d)
		}
		record++
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return desc, nil
}
