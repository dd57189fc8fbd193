package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/automaxprocs/maxprocs"

	pandoc "github.com/Xdavlar/obsidian-pandoc"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

func run(args []string, stderr *os.File) int {
	flags, notes, err := parseFlags(args)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	if flags.version {
		fmt.Fprintf(stderr, "obsidian-pandoc %s\n", Version)
		return 0
	}

	// Configure GOMAXPROCS with conditional logging.
	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	if flags.verbose {
		_, _ = maxprocs.Set(maxprocs.Logger(func(format string, a ...interface{}) {
			fmt.Fprintf(stderr, format+"\n", a...)
		}))
	} else {
		_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))
	}

	cfg := DefaultConfig()
	if flags.config != "" {
		cfg, err = LoadConfig(flags.config)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
	}
	flags.mergeConfig(cfg)

	if err := pandoc.OutputFormat(cfg.Format).Validate(); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	svc, v, err := buildService(cfg, notes)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer func() {
		_ = svc.Close()
		_ = v.Close()
	}()

	e := &exporter{cfg: cfg, svc: svc, verbose: flags.verbose, stderr: stderr}
	if err := e.export(context.Background(), notes); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}
