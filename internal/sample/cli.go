package sample

import (
	"fmt"
	"os"

	"github.com/okian/touchline/pkg/logger"
)

// SetupLogging initializes the global logger at the given level.
func SetupLogging(level string) error {
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if level == "" {
		return nil
	}
	if err := logger.SetLevelString(level); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	return nil
}

// ShowHelp prints usage information for gen-sample.
func ShowHelp() {
	os.Stdout.WriteString(`touchline gen-sample
====================

Writes a synthetic Metrica event log and EPTS metadata file, and optionally
uploads them to a running touchline server.

Usage:
  go run ./cmd/gen-sample [options]

Options:
  -seed uint
        PRNG seed; equal seeds give equal matches (default 1)
  -periods int
        Number of periods, 1 to 4 (default 2)
  -events int
        Events per period (default 200)
  -out string
        Output directory (default ".")
  -url string
        Upload to this server, e.g. http://localhost:9080 (default: no upload)
  -timeout duration
        HTTP request timeout (default 30s)
  -log-level string
        Log level (default "info")
  -help
        Show this help message

Examples:
  go run ./cmd/gen-sample -seed 7 -out testdata
  go run ./cmd/gen-sample -events 1000 -url http://localhost:9080
`)
}
