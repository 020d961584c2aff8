package main

// Notes on program structure
// --------------------------
//
// dawnwire uses subcommands to invoke specific functionalities of the program.
// Each subcommand is implemented by a function named after the command, in a
// file of the same name (e.g. the "help" command is implemented by the help
// function in help.go).
//
// The usage message for each command is declared by a constant starting with
// the command name and followed by the suffix "Usage". For example, the usage
// message for the "help" command is declared by the constant helpUsage.
//
// The usage message contains a "Usage:	dawnwire <command>" section presenting
// the structure of the command. Note the tabulation separating "Usage:" and
// "dawnwire".

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/stealthrocket/dawnwire/internal/config"
	"github.com/stealthrocket/dawnwire/internal/print/human"
	"github.com/stealthrocket/dawnwire/internal/wire"
	"golang.org/x/exp/slices"
)

const rootUsage = `dawnwire - GPU command wire

   dawnwire carries GPU API calls from a client to a server over a command
   buffer protocol. Connections can be recorded to traces which are later
   replayable against a fresh server.

Example:

   $ dawnwire run --capture ~/.dawnwire/traces
   ...

   $ dawnwire replay f6e9acbc-0543-47df-9413-b99f569cfa3b
   ...

For a list of commands available, run 'dawnwire help'.`

// configPath is set by the -c/--config option of every command.
var configPath human.Path

// root is the dawnwire entrypoint, it returns the exit code of the program.
func root(ctx context.Context, args ...string) int {
	configPath = ""

	flagSet := newFlagSet("dawnwire", helpUsage)
	_ = flagSet.Parse(args)

	if args = flagSet.Args(); len(args) == 0 {
		fmt.Println(rootUsage)
		return 0
	}

	cmd, args := args[0], args[1:]

	var err error
	switch cmd {
	case "config":
		err = configCommand(ctx, args)
	case "describe":
		err = describe(ctx, args)
	case "get":
		err = get(ctx, args)
	case "help":
		err = help(ctx, args)
	case "replay":
		err = replay(ctx, args)
	case "run":
		err = run(ctx, args)
	case "serve":
		err = serve(ctx, args)
	case "version":
		err = version(ctx, args)
	default:
		err = unknown(ctx, cmd)
	}

	switch e := err.(type) {
	case nil:
		return 0
	case exitCode:
		return int(e)
	case usage:
		fmt.Fprintf(os.Stderr, "%s\n", e)
		return 2
	default:
		fmt.Fprintf(os.Stderr, "ERR: dawnwire %s: %s\n", cmd, err)
		return 1
	}
}

// exitCode is an error type returned from command functions to indicate the
// exit code that should be returned by the program.
type exitCode int

func (e exitCode) Error() string {
	return fmt.Sprintf("exit: %d", e)
}

// usage is an error type returned from command functions to indicate a usage
// error.
//
// Usage errors cause the program to exit with status code 2.
type usage string

func usageError(msg string, args ...any) error {
	return usage(fmt.Sprintf(msg, args...))
}

func (e usage) Error() string {
	return string(e)
}

// loadConfig loads the configuration selected by -c/--config and installs the
// logger it describes.
func loadConfig() (*config.Config, error) {
	c, err := config.Load(string(configPath))
	if err != nil {
		return nil, err
	}
	logger, err := c.NewLogger(os.Stderr)
	if err != nil {
		return nil, err
	}
	wire.SetLogger(logger)
	return c, nil
}

func setEnum[T ~string](enum *T, typ string, value string, options ...string) error {
	for _, option := range options {
		if option == value {
			*enum = T(option)
			return nil
		}
	}
	return fmt.Errorf("unsupported %s: %q (not one of %s)", typ, value, strings.Join(options, ", "))
}

type compression string

func (c compression) String() string {
	return string(c)
}

func (c *compression) Set(value string) error {
	return setEnum(c, "compression type", value, "snappy", "zstd", "none")
}

type direction string

func (d direction) String() string {
	return string(d)
}

func (d *direction) Set(value string) error {
	return setEnum(d, "direction", value, "client", "server")
}

type outputFormat string

func (o outputFormat) String() string {
	return string(o)
}

func (o *outputFormat) Set(value string) error {
	return setEnum(o, "output format", value, "text", "json", "yaml")
}

type transportKind string

func (k transportKind) String() string {
	return string(k)
}

func (k *transportKind) Set(value string) error {
	return setEnum(k, "transport", value, "http", "loopback", "pipe", "unix")
}

func newFlagSet(cmd, usage string) *flag.FlagSet {
	usage = strings.TrimSpace(usage)
	flagSet := flag.NewFlagSet(cmd, flag.ExitOnError)
	flagSet.Usage = func() { fmt.Println(usage) }
	customVar(flagSet, &configPath, "c", "config")
	return flagSet
}

// parseFlags is a greedy parser which consumes all options known to f and
// returns the remaining arguments.
func parseFlags(f *flag.FlagSet, args []string) []string {
	var unknownArgs []string
	for {
		// The flag set is constructed with ExitOnError, it should never error.
		if err := f.Parse(args); err != nil {
			panic(err)
		}
		if args = f.Args(); len(args) == 0 {
			return unknownArgs
		}
		i := slices.IndexFunc(args, func(s string) bool {
			return strings.HasPrefix(s, "-")
		})
		if i < 0 {
			i = len(args)
		} else if args[i] == "-" {
			i++
		}
		if i == 0 {
			panic("parsing command line arguments did not error on " + args[0])
		}
		unknownArgs = append(unknownArgs, args[:i]...)
		args = args[i:]
	}
}

func boolVar(f *flag.FlagSet, dst *bool, name string, alias ...string) {
	f.BoolVar(dst, name, *dst, "")
	for _, name := range alias {
		f.BoolVar(dst, name, *dst, "")
	}
}

func customVar(f *flag.FlagSet, dst flag.Value, name string, alias ...string) {
	f.Var(dst, name, "")
	for _, name := range alias {
		f.Var(dst, name, "")
	}
}
