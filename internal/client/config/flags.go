package config

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/dbcache/internal/flagx"
)

var knownFlags = []string{"-a", "-d", "-n", "-t", "-i", "-l", "-b", "-f"}

// parseFlags populates Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the remote API
//	-d string   path of the SQLite cache file
//	-n int      page size of a collection refresh
//	-t int      HTTP request timeout (in seconds)
//	-i int      online check interval (in seconds)
//	-l string   log level (debug, info, warn, error)
//	-b string   log backend (slog, zap)
//	-f string   zap encoding (console, json)
//
// args are filtered with flagx.FilterArgs first, so flags owned by other
// loaders (-c) do not trip the parser.
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("dbcache", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "base URL of the remote API")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path of the SQLite cache file")
	fs.IntVar(&cfg.PageSize, "n", cfg.PageSize, "page size of a collection refresh")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	interval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.LogBackend, "b", cfg.LogBackend, "log backend (slog or zap)")
	fs.StringVar(&cfg.LogFormat, "f", cfg.LogFormat, "zap encoding (console or json)")

	if err := fs.Parse(flagx.FilterArgs(args, knownFlags)); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
	cfg.OnlineCheckInterval = time.Duration(*interval) * time.Second
	return nil
}
