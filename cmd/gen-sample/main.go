package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/okian/touchline/internal/sample"
)

const defaultRunTimeout = 5 * time.Minute

func main() {
	defaults := sample.DefaultConfig()
	var (
		seed     = flag.Uint64("seed", defaults.Seed, "PRNG seed")
		periods  = flag.Int("periods", defaults.Periods, "Number of periods, 1 to 4")
		events   = flag.Int("events", defaults.EventsPerPeriod, "Events per period")
		outDir   = flag.String("out", defaults.OutputDir, "Output directory")
		baseURL  = flag.String("url", "", "Upload to this server (default: no upload)")
		timeout  = flag.Duration("timeout", defaults.Timeout, "HTTP request timeout")
		logLevel = flag.String("log-level", "info", "Log level")
		help     = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		sample.ShowHelp()
		return
	}

	if err := sample.SetupLogging(*logLevel); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	cfg := defaults
	cfg.Seed = *seed
	cfg.Periods = *periods
	cfg.EventsPerPeriod = *events
	cfg.OutputDir = *outDir
	cfg.BaseURL = *baseURL
	cfg.Timeout = *timeout

	if _, err := sample.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("gen-sample failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
