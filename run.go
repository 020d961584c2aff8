package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/stealthrocket/dawnwire/internal/capture"
	"github.com/stealthrocket/dawnwire/internal/config"
	"github.com/stealthrocket/dawnwire/internal/nullgpu"
	"github.com/stealthrocket/dawnwire/internal/print/human"
	"github.com/stealthrocket/dawnwire/internal/transport"
	"github.com/stealthrocket/dawnwire/internal/wire"
	"github.com/stealthrocket/dawnwire/internal/wire/client"
	"github.com/stealthrocket/dawnwire/internal/wire/server"
)

const runUsage = `
Usage:	dawnwire run [options]

   The run command connects a client with the configured transport and runs
   a workload exercising the asynchronous operations of the wire: buffer
   uploads and copies, queue completion, pipeline compilation, error scopes
   and buffer mapping.

   The loopback and pipe transports run the server in the same process, on
   the null GPU. The unix and http transports connect to a server started
   with 'dawnwire serve'.

   The connection is recorded when a capture location is set, either in the
   configuration or with --capture. The trace id is printed on stderr.

Options:
   -c, --config path         Path to the dawnwire configuration file (overrides DAWNWIRECONFIG)
   -a, --address addr        Address of the server, for the unix and http transports
       --capture path        Record the connection to a trace in this directory
       --compression type    Compression of the recorded trace, one of: none, snappy, zstd
   -h, --help                Show this usage information
   -t, --transport kind      Transport to use, one of: http, loopback, pipe, unix
       --timeout duration    Maximum time to wait for the server (default to 10s)
`

func run(ctx context.Context, args []string) error {
	var (
		address     string
		capturePath human.Path
		compress    compression
		kind        transportKind
		timeout     = human.Duration(10 * time.Second)
	)

	flagSet := newFlagSet("dawnwire run", runUsage)
	flagSet.StringVar(&address, "a", "", "")
	flagSet.StringVar(&address, "address", "", "")
	customVar(flagSet, &capturePath, "capture")
	customVar(flagSet, &compress, "compression")
	customVar(flagSet, &kind, "t", "transport")
	customVar(flagSet, &timeout, "timeout")

	if args = parseFlags(flagSet, args); len(args) != 0 {
		return usageError("dawnwire run: unexpected argument %q", args[0])
	}

	c, err := loadConfig()
	if err != nil {
		return err
	}
	if kind != "" {
		c.Transport.Kind = string(kind)
	}
	if address != "" {
		c.Transport.Address = address
	}
	if capturePath != "" {
		c.Capture.Location = config.NullableValue(capturePath)
	}
	if compress != "" {
		c.Capture.Compression = string(compress)
	}
	if err := c.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(timeout))
	defer cancel()

	tr, err := transport.Dial(ctx, c.TransportOptions(), nullServer(c))
	if err != nil {
		return err
	}

	if dir, ok := c.CaptureDirectory(); ok {
		rec, err := capture.Create(dir, c.CaptureOptions())
		if err != nil {
			tr.Close()
			return err
		}
		fmt.Fprintf(os.Stderr, "dawnwire run: %s\n", rec.Header().TraceID)
		tr = rec.Transport(tr)
	}

	result, err := runWorkload(ctx, tr, c.ClientConfig())
	if closeErr := tr.Close(); err == nil && !errors.Is(closeErr, transport.ErrClosed) {
		err = closeErr
	}
	if err != nil {
		return err
	}
	fmt.Print(result)
	return nil
}

// nullServer returns the function creating the servers of in-process
// connections, backed by the null GPU.
func nullServer(c *config.Config) transport.Accept {
	return func(s wire.CommandSerializer) (wire.CommandHandler, error) {
		device := nullgpu.NewDevice(nullgpu.DefaultLimits)
		return server.New(nullgpu.Procs{}, device, s, c.ServerConfig()), nil
	}
}

const (
	workloadData = "the quick brown fox jumps over the lazy dog!"

	workloadShader = `
@compute @workgroup_size(1)
fn main() {}
`

	workloadError = "injected validation error"
)

type workloadResult struct {
	WorkDone   wire.QueueWorkDoneStatus
	Pipeline   client.PipelineResult[*client.ComputePipeline]
	ErrorScope client.PopErrorScopeResult
	Map        client.MapAsyncResult
	Data       string
	Uncaptured []string
}

func (r *workloadResult) Format(w fmt.State, _ rune) {
	fmt.Fprintf(w, "queue: %s\n", r.WorkDone)
	fmt.Fprintf(w, "compute pipeline: %s%s\n", r.Pipeline.Status, suffix(r.Pipeline.Message))
	fmt.Fprintf(w, "error scope: %s%s\n", r.ErrorScope.Type, suffix(r.ErrorScope.Message))
	fmt.Fprintf(w, "buffer map: %s%s\n", r.Map.Status, suffix(r.Map.Message))
	fmt.Fprintf(w, "buffer data: %q\n", r.Data)
	for _, msg := range r.Uncaptured {
		fmt.Fprintf(w, "uncaptured error: %s\n", msg)
	}
}

func suffix(msg string) string {
	if msg == "" {
		return ""
	}
	return " (" + msg + ")"
}

// runWorkload uploads data to a buffer, copies it to a staging buffer and
// maps it back, while compiling a compute pipeline and capturing an error in
// an error scope.
func runWorkload(ctx context.Context, tr transport.Transport, config client.Config) (*workloadResult, error) {
	result := new(workloadResult)

	c := client.New(tr, config)
	d := c.Device()
	d.SetUncapturedErrorCallback(func(t wire.ErrorType, message string) {
		result.Uncaptured = append(result.Uncaptured, t.String()+": "+message)
	})
	q := d.GetQueue()

	size := uint64(len(workloadData))
	src := d.CreateBuffer(wire.BufferDescriptor{
		Label: "upload",
		Usage: gputypes.BufferUsageCopySrc | gputypes.BufferUsageCopyDst,
		Size:  size,
	})
	dst := d.CreateBuffer(wire.BufferDescriptor{
		Label: "readback",
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
		Size:  size,
	})
	q.WriteBuffer(src, 0, []byte(workloadData))
	e := d.CreateCommandEncoder(nil)
	e.CopyBufferToBuffer(src, 0, dst, 0, size)
	q.Submit(e.Finish(nil))
	workDone := q.OnSubmittedWorkDone()

	m := d.CreateShaderModule(wire.ShaderModuleDescriptor{
		Label:       "workload",
		NextInChain: []wire.ChainedStruct{&wire.ShaderSourceWGSL{Code: workloadShader}},
	})
	pipeline := d.CreateComputePipelineAsync(wire.ComputePipelineDescriptor{
		Label:   "workload",
		Compute: wire.ProgrammableStage{Module: m, EntryPoint: "main"},
	})

	d.PushErrorScope(wire.ErrorFilterValidation)
	d.InjectError(wire.ErrorTypeValidation, workloadError)
	scope := d.PopErrorScope()

	mapping := dst.MapAsync(gputypes.MapModeRead, 0, size)
	d.Tick()
	if err := c.Flush(); err != nil {
		return nil, err
	}

	done := func() bool {
		return workDone.Done() && pipeline.Done() && scope.Done() && mapping.Done()
	}
	if err := await(ctx, tr, c, done); err != nil {
		return nil, err
	}

	result.WorkDone = workDone.Result()
	result.Pipeline = pipeline.Result()
	result.ErrorScope = scope.Result()
	result.Map = mapping.Result()
	if result.Map.Status == wire.MapAsyncStatusSuccess {
		result.Data = string(dst.GetMappedRange(0, size))
	}
	dst.Unmap()

	wire.Logger().Debug("workload completed",
		slog.String("pipeline", result.Pipeline.Status.String()),
		slog.String("map", result.Map.Status.String()))
	return result, c.Flush()
}

// await polls the transport until done returns true. A failed poll
// disconnects the client, which completes the requests still pending.
func await(ctx context.Context, tr transport.Transport, c *client.Client, done func() bool) error {
	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()

	for !done() {
		if err := c.Poll(tr); err != nil {
			return err
		}
		if done() {
			break
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return context.Cause(ctx)
		}
	}
	return nil
}
