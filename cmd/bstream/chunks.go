package main

import (
	"context"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/spf13/cobra"

	"github.com/arnodel/boundedstream/filereader"
)

const chunksStage = "filereader"

func newChunksCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "chunks FILE",
		Short: "List the fixed-size chunks of a file with their xxhash",
		Long: `Reads FILE chunk by chunk with the bounded file reader and prints, for each
chunk, its offset, its size and its xxhash64 digest.  A final line gives the
totals for the whole file.  Chunk size and memory limit come from the "file"
section of the configuration.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd.Context(), chunksStage, func(ctx context.Context) error {
				return a.listChunks(ctx, args[0])
			})
		},
	}
}

func (a *app) listChunks(ctx context.Context, name string) error {
	r, err := filereader.New(name, a.cfg.File)
	if err != nil {
		return err
	}
	total := xxhash.New()
	var offset int64
	for chunk, err := range r.Chunks(ctx) {
		if err != nil {
			a.metrics.RecordError(chunksStage, err)
			return err
		}
		a.metrics.RecordBytes(chunksStage, len(chunk))
		a.metrics.RecordUnits(chunksStage, 1)
		if err := a.throttle(ctx); err != nil {
			return err
		}
		total.Write(chunk)
		if _, err := fmt.Fprintf(a.out, "%d\t%d\t%016x\n", offset, len(chunk), xxhash.Sum64(chunk)); err != nil {
			return err
		}
		offset = r.Position()
	}
	_, err = fmt.Fprintf(a.out, "total\t%d\t%016x\n", offset, total.Sum64())
	return err
}
