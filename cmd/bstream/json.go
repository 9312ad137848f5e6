package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/arnodel/boundedstream/internal/format"
	"github.com/arnodel/boundedstream/jsonextract"
	"github.com/arnodel/boundedstream/stream"
)

const jsonStage = "jsonextract"

func newJSONCommand(a *app) *cobra.Command {
	var (
		indent    int
		compact   bool
		useNumber bool
	)
	cmd := &cobra.Command{
		Use:   "json FILE|-",
		Short: "Extract top-level JSON objects and arrays from the input",
		Long: `Extracts every top-level JSON object or array from the input, however it is
split across reads, and prints it back.  Values larger than
json.max_object_size are rejected, as is invalid JSON.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if compact {
				indent = -1
			}
			if cmd.Flags().Changed("use-number") {
				a.cfg.JSON.UseNumber = useNumber
			}
			return a.run(cmd.Context(), jsonStage, func(ctx context.Context) error {
				return a.extractJSON(ctx, args[0], indent)
			})
		},
	}
	cmd.Flags().IntVar(&indent, "indent", 2, "indentation of printed values")
	cmd.Flags().BoolVar(&compact, "compact", false, "print each value on a single line")
	cmd.Flags().BoolVar(&useNumber, "use-number", false, "keep numbers as they appear in the input")
	return cmd
}

func (a *app) extractJSON(ctx context.Context, name string, indent int) error {
	input, err := a.openInput(name)
	if err != nil {
		return err
	}
	defer input.Close()

	enc := a.newEncoder(indent)
	return pipe(ctx, a, jsonStage, input,
		func(out stream.WriteStream[jsonextract.Value]) (stream.Feeder, error) {
			return jsonextract.New(a.cfg.JSON, out)
		},
		enc.Encode,
	)
}

func (a *app) newEncoder(indent int) *format.Encoder {
	printer := &format.DefaultPrinter{
		Writer:     a.out,
		IndentSize: indent,
	}
	if a.interactive() {
		printer.Flusher = a.out
	}
	return &format.Encoder{Printer: printer, Colorizer: a.colorizer}
}
