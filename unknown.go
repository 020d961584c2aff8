package main

import (
	"context"
)

const unknownCommand = `dawnwire %s: unknown command
For a list of commands available, run 'dawnwire help'.`

func unknown(ctx context.Context, cmd string) error {
	return usageError(unknownCommand, cmd)
}
