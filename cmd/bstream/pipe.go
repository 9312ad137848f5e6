package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/arnodel/boundedstream/filereader"
	"github.com/arnodel/boundedstream/internal/codec"
	"github.com/arnodel/boundedstream/metrics"
	"github.com/arnodel/boundedstream/stream"
)

// openInput opens the named file, or standard input for "-", and
// decompresses it unless decompression is disabled.
func (a *app) openInput(name string) (io.ReadCloser, error) {
	var rc io.ReadCloser
	if name == "-" {
		rc = io.NopCloser(a.stdin)
	} else {
		f, err := filereader.Open(name, a.cfg.File)
		if err != nil {
			return nil, err
		}
		rc = f
	}
	if a.cfg.Output.Decompress == "none" {
		return rc, nil
	}
	dr, format, err := codec.NewReader(rc)
	if err != nil {
		rc.Close()
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if format != codec.None {
		a.logger.Info("decompressing input", "input", name, "format", format)
	}
	return &multiCloser{Reader: dr, closers: []io.Closer{dr, rc}}, nil
}

type multiCloser struct {
	io.Reader
	closers []io.Closer
}

func (m *multiCloser) Close() error {
	var first error
	for _, c := range m.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// pipe pumps input into the stage built by newStage and hands every unit the
// stage emits to consume.  The producer and the consumer run in their own
// goroutines, connected by an unbuffered channel so a slow consumer
// suspends reading.  The first error stops both.
func pipe[T any](
	ctx context.Context,
	a *app,
	stage string,
	input io.Reader,
	newStage func(stream.WriteStream[T]) (stream.Feeder, error),
	consume func(T) error,
) error {
	g, gctx := errgroup.WithContext(ctx)
	units := make(chan T)

	out := metrics.Instrument[T](a.metrics, stage, stream.NewContextWriteStream(gctx, units))
	feeder, err := newStage(out)
	if err != nil {
		return err
	}
	feeder = a.metrics.Feeder(stage, feeder)

	g.Go(func() error {
		defer close(units)
		return stream.Pump(gctx, input, a.cfg.File.ChunkSize, feeder)
	})
	g.Go(func() error {
		for unit := range units {
			if err := a.throttle(gctx); err != nil {
				return err
			}
			if err := consume(unit); err != nil {
				return err
			}
		}
		return nil
	})
	return g.Wait()
}

// throttle waits until the rate limiter allows one more unit of output.
func (a *app) throttle(ctx context.Context) error {
	if a.limiter == nil {
		return nil
	}
	return a.limiter.Wait(ctx)
}

// interactive reports whether output goes to a terminal, in which case it is
// flushed after each unit so the user gets feedback early.
func (a *app) interactive() bool {
	f, ok := a.stdout.(*os.File)
	return ok && isTerminal(f)
}
