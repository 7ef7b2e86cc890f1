// utf8dump decodes UTF-8 from files or standard input and prints it with
// every non-ASCII scalar escaped as <U+xxxx> and every invalid sequence
// replaced by <?>. NUL is shown as <NUL>.
//
// Usage:
//
//	utf8dump [flags] [file...]
//
// With no files, or with "-", standard input is read.
package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/mnightingale/utf8stream"
	"github.com/mnightingale/utf8stream/internal/render"
)

var version = "dev"

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

type config struct {
	color      string
	lenient    bool
	bufferSize int
	stats      bool
	verbose    bool
	jobs       int
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var cfg config

	flagSet := pflag.NewFlagSet("utf8dump", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVar(&cfg.color, "color", envOr("UTF8DUMP_COLOR", "auto"), "colour placeholders: auto, always or never")
	flagSet.BoolVar(&cfg.lenient, "lenient", false, "accept the noncharacters U+FFFE and U+FFFF")
	flagSet.IntVar(&cfg.bufferSize, "buffer-size", 32*1024, "read buffer size in bytes")
	flagSet.BoolVar(&cfg.stats, "stats", false, "log per-input counters when done")
	flagSet.BoolVarP(&cfg.verbose, "verbose", "v", false, "log every invalid sequence")
	flagSet.IntVarP(&cfg.jobs, "jobs", "j", 4, "number of files decoded concurrently")
	showVersion := flagSet.Bool("version", false, "print version and exit")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet, stderr)
		return exitOK
	}
	if *showVersion {
		fmt.Fprintf(stdout, "utf8dump %s\n", version)
		return exitOK
	}

	color, err := useColor(cfg.color, stdout)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitUsage
	}
	if cfg.jobs < 1 {
		fmt.Fprintf(stderr, "error: --jobs must be at least 1\n")
		return exitUsage
	}

	logger, err := newLogger(stderr, cfg.verbose, cfg.stats)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitUsage
	}
	defer logger.Sync() //nolint:errcheck

	d := &dumper{cfg: cfg, color: color, log: logger, stdin: stdin}

	inputs := flagSet.Args()
	if len(inputs) == 0 {
		inputs = []string{"-"}
	}

	if err := d.dumpAll(inputs, stdout); err != nil {
		logger.Error("dump failed", zap.Error(err))
		return exitError
	}
	return exitOK
}

func printHelp(flagSet *pflag.FlagSet, w io.Writer) {
	fmt.Fprintf(w, `utf8dump prints UTF-8 input with non-ASCII escaped and invalid bytes marked.

Usage:
  utf8dump [flags] [file...]

Environment:
  UTF8DUMP_COLOR      default for --color
  UTF8DUMP_LOG_LEVEL  log level (debug, info, warn, error)

Flags:
`)
	flagSet.SetOutput(w)
	flagSet.PrintDefaults()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func useColor(mode string, w io.Writer) (bool, error) {
	switch strings.ToLower(mode) {
	case "always":
		return true, nil
	case "never":
		return false, nil
	case "auto":
		f, ok := w.(*os.File)
		return ok && term.IsTerminal(int(f.Fd())), nil
	}
	return false, fmt.Errorf("invalid --color value %q", mode)
}

func newLogger(w io.Writer, verbose, stats bool) (*zap.Logger, error) {
	level := zapcore.WarnLevel
	if s := os.Getenv("UTF8DUMP_LOG_LEVEL"); s != "" {
		l, err := zapcore.ParseLevel(s)
		if err != nil {
			return nil, fmt.Errorf("UTF8DUMP_LOG_LEVEL: %w", err)
		}
		level = l
	}
	if stats && level > zapcore.InfoLevel {
		level = zapcore.InfoLevel
	}
	if verbose {
		level = zapcore.DebugLevel
	}

	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.TimeKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.AddSync(w), level)
	return zap.New(core), nil
}

type dumper struct {
	cfg   config
	color bool
	log   *zap.Logger
	stdin io.Reader
}

// dumpAll decodes every input and writes the results to out in argument
// order. Inputs are decoded concurrently, each with its own Reader.
func (d *dumper) dumpAll(inputs []string, out io.Writer) error {
	if len(inputs) == 1 {
		return d.dump(inputs[0], out)
	}

	results := make([]bytes.Buffer, len(inputs))

	var g errgroup.Group
	g.SetLimit(d.cfg.jobs)
	for i, name := range inputs {
		g.Go(func() error {
			return d.dump(name, &results[i])
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i := range results {
		if _, err := results[i].WriteTo(out); err != nil {
			return err
		}
	}
	return nil
}

func (d *dumper) dump(name string, out io.Writer) error {
	src := d.stdin
	if name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return err
		}
		defer f.Close()
		src = f
	}

	log := d.log.With(zap.String("input", name))
	opts := []utf8stream.ReaderOption{
		utf8stream.WithBufferSize(d.cfg.bufferSize),
		utf8stream.WithLogger(log),
	}
	if d.cfg.lenient {
		opts = append(opts, utf8stream.WithNoncharacters())
	}

	r := utf8stream.NewReader(src, opts...)
	p := render.NewPrinter(out, render.WithColor(d.color))

	for {
		t, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if err := p.Print(t); err != nil {
			return err
		}
	}
	if err := p.Flush(); err != nil {
		return err
	}

	if d.cfg.stats {
		s := r.Stats()
		log.Info("decoded",
			zap.Int64("bytes", s.BytesConsumed),
			zap.Int64("scalars", s.Scalars),
			zap.Int64("invalid", s.Invalid),
			zap.Int64("rejected", s.Rejected),
		)
	}
	return nil
}
