package main

import (
	"context"
	"fmt"
)

const helpUsage = `
Usage:	dawnwire <command> [options]

Wire Commands:
   run       Run a workload through a wire connection, and optionally record it
   serve     Accept wire connections on a unix socket or over HTTP

Trace Commands:
   describe  Print the commands recorded in a trace
   get       List the recorded traces
   replay    Replay a recorded trace against a fresh server

Other Commands:
   config    View or edit the dawnwire configuration
   help      Show usage information about dawnwire commands
   version   Show the dawnwire version information

Global Options:
   -c, --config  Path to the dawnwire configuration file (overrides DAWNWIRECONFIG)

For a description of each command, run 'dawnwire help <command>'.`

func help(ctx context.Context, args []string) error {
	flagSet := newFlagSet("dawnwire help", helpUsage)
	args = parseFlags(flagSet, args)

	var cmd string
	var msg string

	if len(args) > 0 {
		cmd = args[0]
	}

	switch cmd {
	case "config":
		msg = configUsage
	case "describe":
		msg = describeUsage
	case "get":
		msg = getUsage
	case "help", "":
		msg = helpUsage
	case "replay":
		msg = replayUsage
	case "run":
		msg = runUsage
	case "serve":
		msg = serveUsage
	case "version":
		msg = versionUsage
	default:
		return usageError("dawnwire help %s: unknown command", cmd)
	}

	fmt.Println(msg[1:])
	return nil
}
