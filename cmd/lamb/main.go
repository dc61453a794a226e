package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/ssh/terminal"

	"github.com/rm-dr/lamb/driver"
	"github.com/rm-dr/lamb/reader"
	"github.com/rm-dr/lamb/repl"
)

const banner = "lamb 0.1 — an untyped λ-calculus engine. Type :help for commands."

func main() {
	app := &cli.App{
		Name:  "lamb",
		Usage: "an interactive engine for the untyped λ-calculus",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "rlimit",
				Usage: "maximum reductions per line (>= 50); 0 means unlimited",
				Value: driver.DefaultReductionLimit,
			},
			&cli.BoolFlag{
				Name:  "step",
				Usage: "start with step-by-step reduction enabled",
			},
			&cli.BoolFlag{
				Name:  "expand",
				Usage: "start with full expansion of results enabled",
			},
			&cli.StringSliceFlag{
				Name:  "load",
				Usage: "macro file to load before the session starts (repeatable)",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "log engine internals to stderr",
			},
		},
		ArgsUsage: "[script]",
		Action:    run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	logger := zap.NewNop()
	if c.Bool("verbose") {
		var err error
		if logger, err = zap.NewDevelopment(); err != nil {
			return err
		}
	}
	defer logger.Sync()

	d := driver.New(logger)

	if n := c.Int("rlimit"); n == driver.Unlimited {
		d.SetReductionLimit(0, true)
	} else if n >= 50 {
		d.SetReductionLimit(n, false)
	} else if n != driver.DefaultReductionLimit {
		return fmt.Errorf("rlimit must be 0 or at least 50, got %d", n)
	}
	d.SetStepMode(c.Bool("step"))
	d.SetFullExpansion(c.Bool("expand"))

	for _, path := range c.StringSlice("load") {
		lines, err := reader.ReadLines(path)
		if err != nil {
			return err
		}
		if err := repl.RunScript(d, lines, os.Stdout, os.Stderr); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}

	if c.Args().Present() {
		path := c.Args().First()
		lines, err := reader.ReadLines(path)
		if err != nil {
			return err
		}
		return repl.RunScript(d, lines, os.Stdout, os.Stderr)
	}

	if !terminal.IsTerminal(int(os.Stdin.Fd())) {
		lines := reader.ReadLinesToStrings(os.Stdin)
		return repl.RunScript(d, lines, os.Stdout, os.Stderr)
	}

	fmt.Println(banner)
	repl.Banner = banner
	repl.Start(d, os.Stdin, os.Stdout, os.Stderr)
	return nil
}
