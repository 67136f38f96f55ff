// Package config loads runtime configuration for the cache CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the remote API
//	-d string   path of the SQLite cache file
//	-n int      page size of a collection refresh
//	-t int      HTTP request timeout (seconds)
//	-i int      online status check interval (seconds)
//	-l string   log level
//	-b string   log backend: slog or zap
//	-f string   zap encoding: console or json
//
// # JSON schema
//
// Intervals use timex.Duration, so values can be either strings like "3s"
// or integer nanoseconds:
//
//	{
//	  "api_base_url": "https://dragonball-api.com/api/",
//	  "database_path": "dbcache.db",
//	  "page_size": 100,
//	  "request_timeout": "10s",
//	  "online_check_interval": "3s",
//	  "log_level": "info",
//	  "log_backend": "zap",
//	  "log_format": "json"
//	}
//
// Note: This package does not read environment variables directly; use the
// JSON file or flags to configure values.
package config
