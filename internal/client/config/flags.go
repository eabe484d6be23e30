package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/lawdesk/internal/flagx"
)

// parseFlags overlays cfg with command-line flags:
//
//	-a string   backend API base URL
//	-t int      request timeout (seconds)
//	-d string   local database path
//	-l string   log format: text, json or zap
//	-i int      online check interval (seconds)
//
// Only these flags are read from os.Args; anything else is left alone.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-t", "-d", "-l", "-i"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerBaseURL, "a", cfg.ServerBaseURL, "backend API base URL")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.StringVar(&cfg.DBPath, "d", cfg.DBPath, "local database path")
	fs.StringVar(&cfg.LogFormat, "l", cfg.LogFormat, "log format (text|json|zap)")
	interval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
	cfg.OnlineCheckInterval = time.Duration(*interval) * time.Second
}
