package main

import (
	"GoGrep/internal"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	app := newApp(os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		var ec cli.ExitCoder
		if errors.As(err, &ec) {
			os.Exit(ec.ExitCode())
		}
		fmt.Fprintln(os.Stderr, "grep:", err)
		os.Exit(2)
	}
}

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:            "grep",
		Usage:           "Search for PATTERN in each FILE",
		ArgsUsage:       "PATTERN FILE [FILE...]",
		HideHelpCommand: true,
		Writer:          stdout,
		ErrWriter:       stderr,
		// main turns the returned error into the exit status
		ExitErrHandler: func(*cli.Context, error) {},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "fixed-strings",
				Aliases: []string{"F"},
				Usage:   "PATTERN is a literal string, not an extended regular expression",
			},
			&cli.BoolFlag{
				Name:  "archives",
				Usage: "Scan the entries of archive FILEs (.zip,.tar,.gz,.7z,...)",
			},
			&cli.IntFlag{
				Name:  "threads",
				Usage: "Max concurrent file workers (default scales with CPU)",
				Value: 0,
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Global timeout for the scan (e.g. 30s, 10m)",
			},
			&cli.BoolFlag{
				Name:  "progress",
				Usage: "Show a progress bar on stderr while scanning",
			},
			&cli.StringFlag{
				Name:  "color",
				Usage: "Colour file names: auto, always, never",
				Value: "auto",
			},
			&cli.StringFlag{
				Name:  "logfile",
				Usage: "Write logs into a rotating file instead of stderr",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level: debug, info, warn, error",
				Value: "warn",
			},
		},
		Action: func(c *cli.Context) error {
			return run(c, stdout, stderr)
		},
	}
}

func run(c *cli.Context, stdout, stderr io.Writer) error {
	if err := internal.InitLogger(c.String("logfile"), c.String("log-level"), stderr); err != nil {
		fmt.Fprintln(stderr, "grep:", err)
		return cli.Exit("", 2)
	}

	if c.NArg() < 2 {
		fmt.Fprintf(stderr, "Usage: %s [OPTIONS] %s\nTry '%s --help' for more information.\n",
			c.App.Name, c.App.ArgsUsage, c.App.Name)
		return cli.Exit("", 2)
	}

	out, _ := stdout.(*os.File)
	colorize, err := internal.ColorEnabled(c.String("color"), out)
	if err != nil {
		fmt.Fprintln(stderr, "grep:", err)
		return cli.Exit("", 2)
	}

	mode := internal.ExtendedRegexp
	if c.Bool("fixed-strings") {
		mode = internal.FixedStrings
	}
	opts := internal.ScanOptions{
		Pattern:  c.Args().First(),
		Mode:     mode,
		Files:    c.Args().Tail(),
		Threads:  c.Int("threads"),
		Archives: c.Bool("archives"),
		Progress: c.Bool("progress"),
	}
	if err := opts.Validate(); err != nil {
		fmt.Fprintln(stderr, "grep:", err)
		return cli.Exit("", 2)
	}
	opts.Prepare()

	// ctx with timeout + OS signals
	base := c.Context
	var cancel context.CancelFunc
	if t := c.Duration("timeout"); t > 0 {
		base, cancel = context.WithTimeout(base, t)
	} else {
		base, cancel = context.WithCancel(base)
	}
	defer cancel()

	ctx, stop := signal.NotifyContext(base, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logrus.WithFields(logrus.Fields{"mode": opts.Mode, "files": len(opts.Files)}).Info("grep started")

	var stats internal.AppStats
	results, err := internal.NewFileScanner(&stats, stderr).Scan(ctx, opts)
	if err != nil {
		fmt.Fprintln(stderr, "grep:", err)
		return cli.Exit("", 2)
	}
	if ctx.Err() != nil {
		logrus.Warn("Scan cancelled")
	}

	outcome := internal.NewReporter(stdout, stderr, colorize).Report(results)
	if code := outcome.ExitCode(); code != 0 {
		return cli.Exit("", code)
	}
	return nil
}
