package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arnodel/boundedstream/lines"
	"github.com/arnodel/boundedstream/stream"
)

const linesStage = "lines"

func newLinesCommand(a *app) *cobra.Command {
	var number bool
	cmd := &cobra.Command{
		Use:   "lines FILE|-",
		Short: "Split the input into lines",
		Long: `Splits the input into lines without ever holding more than one partial line
in memory.  A line longer than lines.max_line_length is an error.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd.Context(), linesStage, func(ctx context.Context) error {
				return a.splitLines(ctx, args[0], number)
			})
		},
	}
	cmd.Flags().BoolVarP(&number, "number", "n", false, "prefix each line with its number")
	return cmd
}

func (a *app) splitLines(ctx context.Context, name string, number bool) error {
	input, err := a.openInput(name)
	if err != nil {
		return err
	}
	defer input.Close()

	n := 0
	return pipe(ctx, a, linesStage, input,
		func(out stream.WriteStream[string]) (stream.Feeder, error) {
			return lines.New(a.cfg.Lines, out)
		},
		func(line string) error {
			n++
			var err error
			if number {
				_, err = fmt.Fprintf(a.out, "%6d\t%s\n", n, line)
			} else {
				_, err = fmt.Fprintln(a.out, line)
			}
			return err
		},
	)
}
