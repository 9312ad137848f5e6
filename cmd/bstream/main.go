// Command bstream runs the bounded streaming stages over files or standard
// input.
//
//	bstream chunks FILE    list the fixed-size chunks of FILE with their hash
//	bstream lines FILE|-   split input into lines
//	bstream json FILE|-    extract top-level JSON values and pretty print them
//	bstream batch FILE|-   group lines (or JSON values) into timestamped chunks
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	// Do not handle SIGPIPE, we'll do it ourselves (see error handling below).
	signal.Ignore(syscall.SIGPIPE)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newApp(os.Stdin, os.Stdout, os.Stderr).rootCommand()
	if err := cmd.ExecuteContext(ctx); err != nil {
		if errors.Is(err, syscall.EPIPE) {
			// stdout is a pipe and something closed it (e.g. 'head' or 'less').
			return
		}
		fmt.Fprintf(os.Stderr, "bstream: %s\n", err)
		stop()
		os.Exit(1)
	}
}
