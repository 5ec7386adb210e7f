package config

import (
	"flag"
	"os"
	"strings"

	"github.com/dmitrijs2005/accessconsole/internal/flagx"
)

// parseFlags overlays cfg with the console's own command-line flags; other
// arguments are ignored. It panics on malformed values.
func parseFlags(cfg *Config) {
	fs := flag.NewFlagSet("console", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port of the server")
	fs.StringVar(&cfg.Operator, "u", cfg.Operator, "operator name")
	fs.StringVar(&cfg.Token, "k", cfg.Token, "operator token")
	fs.DurationVar(&cfg.PollInterval, "p", cfg.PollInterval, "poll interval")
	fs.DurationVar(&cfg.SweepInterval, "s", cfg.SweepInterval, "tombstone sweep interval")
	fs.DurationVar(&cfg.TombstoneGrace, "g", cfg.TombstoneGrace, "tombstone grace period")
	fs.IntVar(&cfg.IngestChunkSize, "n", cfg.IngestChunkSize, "updates applied per ingestion chunk")
	fs.DurationVar(&cfg.RequestTimeout, "t", cfg.RequestTimeout, "request timeout")
	fs.StringVar(&cfg.LogFormat, "l", cfg.LogFormat, "log format (text, json, zap)")
	fs.BoolVar(&cfg.Debug, "d", cfg.Debug, "debug logging")
	tables := fs.String("tables", strings.Join(cfg.Tables, ","), "comma separated tables to poll")

	if err := flagx.Parse(fs, os.Args[1:]); err != nil {
		panic(err)
	}

	cfg.Tables = nil
	for _, name := range strings.Split(*tables, ",") {
		if name = strings.TrimSpace(name); name != "" {
			cfg.Tables = append(cfg.Tables, name)
		}
	}
}
