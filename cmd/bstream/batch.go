package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/arnodel/boundedstream/chunker"
	"github.com/arnodel/boundedstream/jsonextract"
	"github.com/arnodel/boundedstream/lines"
	"github.com/arnodel/boundedstream/stream"
)

const batchStage = "chunker"

func newBatchCommand(a *app) *cobra.Command {
	var (
		fromJSON bool
		compact  bool
	)
	cmd := &cobra.Command{
		Use:   "batch FILE|-",
		Short: "Group input lines into timestamped chunks",
		Long: `Splits the input into lines (or JSON values with --json) and groups them with
the item chunker.  Each chunk is printed as a JSON object with its id, its
timestamp and its items.  Chunk size and limits come from the "chunker"
section of the configuration.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			indent := 2
			if compact {
				indent = -1
			}
			return a.run(cmd.Context(), batchStage, func(ctx context.Context) error {
				if fromJSON {
					return batch(ctx, a, args[0], indent, func(out stream.WriteStream[any]) (stream.Feeder, error) {
						return jsonextract.New(a.cfg.JSON, out)
					})
				}
				return batch(ctx, a, args[0], indent, func(out stream.WriteStream[string]) (stream.Feeder, error) {
					return lines.New(a.cfg.Lines, out)
				})
			})
		},
	}
	cmd.Flags().BoolVar(&fromJSON, "json", false, "batch JSON values instead of lines")
	cmd.Flags().BoolVar(&compact, "compact", false, "print each chunk on a single line")
	return cmd
}

// batch connects the stage built by newSource to a Chunker and prints the
// chunks it emits.
func batch[T any](ctx context.Context, a *app, name string, indent int, newSource func(stream.WriteStream[T]) (stream.Feeder, error)) error {
	input, err := a.openInput(name)
	if err != nil {
		return err
	}
	defer input.Close()

	enc := a.newEncoder(indent)
	return pipe(ctx, a, batchStage, input,
		func(out stream.WriteStream[chunker.Result[T]]) (stream.Feeder, error) {
			cfg := a.cfg.Chunker
			cfg.Now = a.now
			c, err := chunker.New(cfg, out)
			if err != nil {
				return nil, err
			}
			return newChunkingFeeder(c, newSource)
		},
		func(res chunker.Result[T]) error {
			return enc.Encode(chunkValue(res))
		},
	)
}

// chunkValue converts a chunk to the generic value printed by the encoder.
func chunkValue[T any](res chunker.Result[T]) map[string]any {
	data := make([]any, len(res.Data))
	for i, item := range res.Data {
		data[i] = item
	}
	return map[string]any{
		"chunkId":   res.ChunkID,
		"timestamp": res.Timestamp.UTC().Format(time.RFC3339Nano),
		"data":      data,
	}
}

// A chunkingFeeder feeds a source stage whose output units are accepted by a
// Chunker.  The first error of either stage is terminal.
type chunkingFeeder[T any] struct {
	source  stream.Feeder
	chunker *chunker.Chunker[T]
	err     error
}

func newChunkingFeeder[T any](c *chunker.Chunker[T], newSource func(stream.WriteStream[T]) (stream.Feeder, error)) (*chunkingFeeder[T], error) {
	f := &chunkingFeeder[T]{chunker: c}
	source, err := newSource(stream.FuncWriteStream[T](f.accept))
	if err != nil {
		return nil, err
	}
	f.source = source
	return f, nil
}

func (f *chunkingFeeder[T]) accept(item T) {
	if f.err == nil {
		f.err = f.chunker.Accept(item)
	}
}

func (f *chunkingFeeder[T]) Feed(fragment []byte) error {
	if f.err != nil {
		return f.err
	}
	if err := f.source.Feed(fragment); err != nil {
		return err
	}
	return f.err
}

func (f *chunkingFeeder[T]) Finish() error {
	if f.err != nil {
		return f.err
	}
	if err := f.source.Finish(); err != nil {
		return err
	}
	if f.err != nil {
		return f.err
	}
	return f.chunker.Finish()
}
