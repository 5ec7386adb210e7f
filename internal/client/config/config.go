package config

import (
	"strings"
	"time"

	"github.com/dmitrijs2005/accessconsole/internal/schema"
)

// Config holds runtime settings for the console.
//
// Units: all intervals are time.Duration values. Token is only needed by
// servers started with a secret key.
type Config struct {
	ServerEndpointAddr string
	Operator           string
	Token              string
	RequestTimeout     time.Duration
	PollInterval       time.Duration
	SweepInterval      time.Duration
	TombstoneGrace     time.Duration
	IngestChunkSize    int
	LogFormat          string
	Debug              bool
	// Tables lists the table tags to poll; empty means all.
	Tables []string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.Operator = "operator"
	c.Token = ""
	c.RequestTimeout = 10 * time.Second
	c.PollInterval = 2 * time.Second
	c.SweepInterval = 15 * time.Second
	c.TombstoneGrace = 5 * time.Minute
	c.IngestChunkSize = 500
	c.LogFormat = "text"
	c.Debug = false
	c.Tables = nil
}

// TableTags resolves Tables against registry, skipping unknown names.
func (c *Config) TableTags(registry *schema.Registry) []schema.Tag {
	if len(c.Tables) == 0 {
		return registry.Tags()
	}
	var tags []schema.Tag
	for _, name := range c.Tables {
		if tag, ok := registry.ParseTag(strings.TrimSpace(name)); ok {
			tags = append(tags, tag)
		}
	}
	return tags
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
