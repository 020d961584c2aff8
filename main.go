package main

import (
	"context"
	"io"
	"log"
	"os"
)

func init() {
	// The wire packages log through slog, configured by each command.
	log.SetOutput(io.Discard)
}

func main() {
	os.Exit(root(context.Background(), os.Args[1:]...))
}
