package main

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/arnodel/boundedstream/config"
	"github.com/arnodel/boundedstream/internal/format"
	"github.com/arnodel/boundedstream/metrics"
	"github.com/arnodel/boundedstream/streamerr"
)

// app holds what the subcommands share: the streams, the resolved
// configuration and the ambient services built from it.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	// Set from global flags.
	configPath  string
	logLevel    string
	color       string
	rate        float64
	decompress  string
	showMetrics bool

	cfg       *config.Config
	logger    *slog.Logger
	metrics   *metrics.Metrics
	colorizer *format.Colorizer
	limiter   *rate.Limiter
	out       *bufio.Writer

	// Replaced in tests for deterministic chunk timestamps.
	now func() time.Time
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *app {
	return &app{
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		now:    time.Now,
	}
}

func (a *app) rootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "bstream",
		Short: "Bounded-memory streaming of files, lines and JSON values",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		SilenceErrors: true, // main reports errors
		SilenceUsage:  true,
	}

	rootCmd.SetIn(a.stdin)
	rootCmd.SetOut(a.stdout)
	rootCmd.SetErr(a.stderr)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "YAML configuration file")
	flags.StringVar(&a.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	flags.StringVar(&a.color, "color", "auto", "colorize output: auto, always, never")
	flags.Float64Var(&a.rate, "rate", 0, "maximum number of output units per second (0 for no limit)")
	flags.StringVar(&a.decompress, "decompress", "auto", "input decompression: auto, none")
	flags.BoolVar(&a.showMetrics, "metrics", false, "dump metrics to stderr when done")

	rootCmd.AddCommand(
		newChunksCommand(a),
		newLinesCommand(a),
		newJSONCommand(a),
		newBatchCommand(a),
	)
	return rootCmd
}

// setup loads the configuration, applies the flags that were explicitly set
// and builds the logger, metrics, colorizer and output writer.
func (a *app) setup(cmd *cobra.Command) error {
	cfg := config.Default()
	if a.configPath != "" {
		loaded, err := config.Load(a.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	if flags.Changed("color") {
		cfg.Output.Color = a.color
	}
	if flags.Changed("rate") {
		cfg.Output.Rate = a.rate
	}
	if flags.Changed("decompress") {
		cfg.Output.Decompress = a.decompress
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	level, err := config.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	a.logger = setupLogger(a.stderr, level)
	a.metrics = metrics.New()

	stdout := a.stdout
	if a.useColor() {
		a.colorizer = &format.DefaultColorizer
		if f, ok := stdout.(*os.File); ok {
			stdout = colorable.NewColorable(f)
		}
	}
	a.out = bufio.NewWriter(stdout)

	if cfg.Output.Rate > 0 {
		a.limiter = rate.NewLimiter(rate.Limit(cfg.Output.Rate), 1)
	}
	a.logger.Debug("configuration loaded",
		"config", a.configPath,
		"color", a.colorizer != nil,
		"rate", cfg.Output.Rate,
		"decompress", cfg.Output.Decompress)
	return nil
}

// run executes fn, then flushes the output and dumps the metrics whether fn
// failed or not.
func (a *app) run(ctx context.Context, stage string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	if ferr := a.out.Flush(); err == nil {
		err = ferr
	}
	if a.showMetrics {
		if derr := a.metrics.Dump(a.stderr); err == nil {
			err = derr
		}
	}
	if err != nil {
		a.logger.Debug("stage failed", "stage", stage, "kind", streamerr.KindOf(err).String(), "error", err)
		return err
	}
	a.logger.Debug("stage done", "stage", stage, "elapsed", time.Since(start))
	return nil
}

func (a *app) useColor() bool {
	switch a.cfg.Output.Color {
	case "always":
		return true
	case "never":
		return false
	}
	f, ok := a.stdout.(*os.File)
	return ok && isTerminal(f)
}

// isTerminal is true on a terminal, including Cygwin and MSYS ones.
func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// setupLogger returns a text logger on w tagging every record with a run
// identifier.
func setupLogger(w io.Writer, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level <= slog.LevelDebug,
	}
	return slog.New(slog.NewTextHandler(w, opts)).With(
		"service", "bstream",
		"run_id", uuid.NewString(),
	)
}
