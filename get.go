package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/stealthrocket/dawnwire/internal/capture"
	"github.com/stealthrocket/dawnwire/internal/config"
	"github.com/stealthrocket/dawnwire/internal/print/human"
	"github.com/stealthrocket/dawnwire/internal/print/jsonprint"
	"github.com/stealthrocket/dawnwire/internal/print/textprint"
	"github.com/stealthrocket/dawnwire/internal/print/yamlprint"
	"github.com/stealthrocket/dawnwire/internal/stream"
)

const getUsage = `
Usage:	dawnwire get <resource type> [options]

   The get sub-command lists the resources recorded by dawnwire. The command
   must be followed by the name of resources to display, which currently must
   be trace (the command also accepts "traces" and "tr").

   Traces are listed from the capture location of the configuration, or
   from ~/.dawnwire/traces when it is not set.

Examples:

   $ dawnwire get traces
   TRACE ID                              START     COMPRESSION  RECORDS  SIZE     RATIO
   f6e9acbc-0543-47df-9413-b99f569cfa3b  2m ago    Zstd         33       1.2 KiB  41.5%

Options:
   -c, --config path    Path to the dawnwire configuration file (overrides DAWNWIRECONFIG)
   -h, --help           Show this usage information
   -o, --output format  Output format, one of: text, json, yaml
   -q, --quiet          Only display the resource ids
       --since time     Only list the traces started after this time (e.g. "1h ago")
`

type traceSummary struct {
	ID          string      `json:"id"          yaml:"id"          text:"TRACE ID"`
	StartTime   human.Time  `json:"startTime"   yaml:"startTime"   text:"START"`
	Compression string      `json:"compression" yaml:"compression" text:"COMPRESSION"`
	Records     human.Count `json:"records"     yaml:"records"     text:"RECORDS"`
	Size        human.Bytes `json:"size"        yaml:"size"        text:"SIZE"`
	// Size of the trace file relative to the commands it holds.
	Ratio human.Ratio `json:"ratio" yaml:"ratio" text:"RATIO"`
}

func get(ctx context.Context, args []string) error {
	var (
		output = outputFormat("text")
		quiet  = false
		since  human.Time
	)

	flagSet := newFlagSet("dawnwire get", getUsage)
	customVar(flagSet, &output, "o", "output")
	boolVar(flagSet, &quiet, "q", "quiet")
	customVar(flagSet, &since, "since")

	args = parseFlags(flagSet, args)
	if len(args) < 1 {
		return usageError("Expected at least the resource type as argument\nFor a list of resources, run 'dawnwire help get'.")
	}
	switch typ := args[0]; typ {
	case "trace", "traces", "tr":
	default:
		return usageError("dawnwire get: no resources matching '%s'", typ)
	}
	if len(args) > 1 {
		return usageError("dawnwire get: unexpected argument %q", args[1])
	}

	c, err := loadConfig()
	if err != nil {
		return err
	}
	paths, err := listTraces(c)
	if err != nil {
		return err
	}

	reader := stream.ConvertReader[traceSummary](stream.NewReader(paths...), summarizeTrace)
	reader = filterTraces(reader, time.Time(since))

	var writer stream.WriteCloser[traceSummary]
	switch output {
	case "json":
		writer = jsonprint.NewWriter[traceSummary](os.Stdout)
	case "yaml":
		writer = yamlprint.NewWriter[traceSummary](os.Stdout)
	default:
		writer = textprint.NewTableWriter[traceSummary](os.Stdout,
			textprint.Header[traceSummary](!quiet),
			textprint.List[traceSummary](quiet),
			textprint.OrderBy(func(a, b traceSummary) int {
				return time.Time(a.StartTime).Compare(time.Time(b.StartTime))
			}),
		)
	}
	defer writer.Close()

	_, err = stream.Copy[traceSummary](writer, reader)
	return err
}

func listTraces(c *config.Config) ([]string, error) {
	dir, ok := c.CaptureDirectory()
	if !ok {
		dir = config.DefaultCaptureLocation()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Type().IsRegular() && strings.HasSuffix(entry.Name(), capture.Extension) {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	return paths, nil
}

func summarizeTrace(path string) (traceSummary, error) {
	trace, err := capture.Open(path)
	if err != nil {
		return traceSummary{}, err
	}
	defer trace.Close()

	info, err := os.Stat(path)
	if err != nil {
		return traceSummary{}, err
	}

	summary := traceSummary{
		ID:          trace.Header.TraceID.String(),
		StartTime:   human.Time(trace.Header.StartTime),
		Compression: trace.Header.Compression.String(),
		Size:        human.Bytes(info.Size()),
	}

	var data int64
	iter := stream.Iter[capture.Record](trace.Records())
	for iter.Next() {
		r := iter.Value()
		summary.Records++
		data += int64(len(r.Data()))
	}
	if err := iter.Err(); err != nil {
		return traceSummary{}, err
	}
	if data > 0 {
		summary.Ratio = human.Ratio(float64(info.Size()) / float64(data))
	}
	return summary, nil
}

func filterTraces(r stream.Reader[traceSummary], since time.Time) stream.Reader[traceSummary] {
	if since.IsZero() {
		return r
	}
	return stream.Filter(r, func(s traceSummary) bool {
		return !time.Time(s.StartTime).Before(since)
	})
}
