// Command polycount enumerates free polycubes (OEIS A000162) up to a
// given size, optionally splitting the search across worker goroutines
// and supporting clean halt/resume via checkpoint files.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/katalvlaran/polycount/checkpoint"
	"github.com/katalvlaran/polycount/haltmon"
	"github.com/katalvlaran/polycount/report"
	"github.com/katalvlaran/polycount/schedule"
)

func main() {
	os.Exit(run())
}

func run() int {
	defaultHaltFile := "halt-signal.txt"
	if exe, err := os.Executable(); err == nil {
		defaultHaltFile = filepath.Join(filepath.Dir(exe), defaultHaltFile)
	}
	var (
		n                = pflag.IntP("n", "n", 0, "maximum polycube size (required unless --resume-from-file is set)")
		threads          = pflag.Int("threads", 0, "0 for single-threaded, >=2 for parallel (1 is rejected)")
		spawnAt          = pflag.Int("spawn-n", 6, "cutoff depth at which the delegator hands jobs to workers")
		resumeFromFile   = pflag.String("resume-from-file", "", "path to a checkpoint to resume from")
		haltFile         = pflag.String("halt-file", defaultHaltFile, "sentinel file whose appearance requests a clean halt")
		progressInterval = pflag.Duration("progress-interval", 2*time.Second, "interval between progress lines during parallel runs")
		logLevel         = pflag.String("log-level", "info", "log level: debug, info, warn, error")
		logFormat        = pflag.String("log-format", "text", "log format: text, json, logfmt")
		help             = pflag.Bool("help", false, "display help text")
	)
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "polycount - enumerate free polycubes (OEIS A000162)\n\n")
		fmt.Fprintf(os.Stderr, "Usage: %s -n <size> [OPTIONS]\n\n", os.Args[0])
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if *help {
		pflag.Usage()
		return 0
	}

	logger := log.New(os.Stderr)
	if lvl, err := log.ParseLevel(*logLevel); err == nil {
		logger.SetLevel(lvl)
	} else {
		logger.SetLevel(log.InfoLevel)
	}
	switch *logFormat {
	case "json":
		logger.SetFormatter(log.JSONFormatter)
	case "logfmt":
		logger.SetFormatter(log.LogfmtFormatter)
	default:
		logger.SetFormatter(log.TextFormatter)
	}

	var resumeCP *checkpoint.Checkpoint
	if *resumeFromFile != "" {
		cp, err := checkpoint.Read(*resumeFromFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "polycount: cannot read resume file: %v\n", err)
			return 1
		}
		resumeCP = cp
		*n = cp.N
		*spawnAt = cp.SpawnAt
	} else if *n < 2 {
		fmt.Fprintf(os.Stderr, "polycount: -n is required and must be >= 2\n")
		return 1
	}

	if *threads == 1 {
		fmt.Fprintf(os.Stderr, "polycount: --threads 1 is rejected; use 0 for single-threaded\n")
		return 1
	}
	if *threads >= 2 {
		if *spawnAt < 4 || *spawnAt >= *n {
			fmt.Fprintf(os.Stderr, "polycount: --spawn-n must satisfy 4 <= spawn-n < n (got %d for n=%d)\n", *spawnAt, *n)
			return 1
		}
	}
	if *resumeFromFile != "" && *threads < 2 {
		fmt.Fprintf(os.Stderr, "polycount: --resume-from-file requires --threads >= 2\n")
		return 1
	}

	if haltmon.CheckStartupSentinel(*haltFile) {
		fmt.Fprintf(os.Stderr, "polycount: halt file %q present at startup, aborting\n", *haltFile)
		return 1
	}

	ctx, monitor := haltmon.New(context.Background(), *haltFile)
	defer monitor.Stop()

	sch := schedule.New(*n, *spawnAt, *threads, logger)
	counts := make([]int64, *n+1)
	if resumeCP != nil {
		copy(counts, resumeCP.Counts)
	}
	start := time.Now()

	unevaluated, err := runScheduler(ctx, sch, counts, resumeCP, logger, *progressInterval)
	if err != nil {
		fmt.Fprintf(os.Stderr, "polycount: %v\n", err)
		elapsed := time.Since(start)
		fmt.Print(report.FormatResults(counts, elapsed))
		return 1
	}
	elapsed := time.Since(start)

	fmt.Print(report.FormatResults(counts, elapsed))

	if len(unevaluated) > 0 {
		cpOut := checkpoint.Build(*n, *spawnAt, counts, elapsed, unevaluated)
		path := checkpoint.DefaultFilename(*n, time.Now())
		if abs, absErr := filepath.Abs(path); absErr == nil {
			path = abs
		}
		if err := checkpoint.Write(path, cpOut); err != nil {
			fmt.Fprintf(os.Stderr, "polycount: failed to write checkpoint: %v\n", err)
			return 1
		}
		fmt.Printf("halted: checkpoint written to %s\n", path)
	}

	return 0
}
