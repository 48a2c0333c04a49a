package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"

	"github.com/sambeau/lmath/config"
	"github.com/sambeau/lmath/pkg/lmath/lmath"
	"github.com/sambeau/lmath/pkg/lmath/report"
)

// sampleCommand implements 'lmath sample [flags] <faces>'
func sampleCommand(args []string, stdout io.Writer, getenv func(string) string) error {
	flags := flag.NewFlagSet("sample", flag.ContinueOnError)
	flags.SetOutput(io.Discard)

	var (
		trials     = flags.Int("n", 10000, "Number of draws")
		seed       = flags.String("seed", "", "Seed the random generator")
		locale     = flags.String("locale", "", "Locale for number formatting (default: output.locale)")
		width      = flags.Int("width", report.DefaultWidth, "Length of the longest bar")
		configPath = flags.String("config", "", "Path to config file")
	)

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(stdout, "Usage: lmath sample [-n trials] [-seed s] [-locale tag] [-width w] [-config path] <faces>")
			return nil
		}
		return &usageError{err}
	}
	if flags.NArg() != 1 {
		return usagef("sample takes exactly one argument: the number of faces")
	}
	faces, err := strconv.Atoi(flags.Arg(0))
	if err != nil || faces < 1 {
		return usagef("invalid number of faces %q: must be a positive integer", flags.Arg(0))
	}
	if *trials < 1 {
		return usagef("invalid -n %d: must be positive", *trials)
	}

	cfg, _, err := config.LoadWithPath(*configPath, getenv)
	if err != nil {
		return &usageError{fmt.Errorf("loading config: %w", err)}
	}
	if err := applySeedFlag(cfg, *seed); err != nil {
		return err
	}
	if *locale == "" {
		*locale = cfg.Output.Locale
	}
	if *locale == "" {
		*locale = "en"
	}

	in := newInstance(cfg, lmath.NullLogger())
	h, err := report.Sample(in, faces, *trials)
	if err != nil {
		return err
	}
	if err := report.Write(stdout, h, *locale, *width); err != nil {
		return &usageError{err}
	}
	return nil
}
