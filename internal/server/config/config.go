// Package config handles configuration for the reference device tree
// server, including defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the server.
//
// Fields:
//   - EndpointAddrGRPC: bind address for the gRPC endpoint.
//   - DatabaseDSN: SQLite DSN (default, in memory) or a postgres:// URL (pgx).
//   - Seed: load the demo site into an empty tree at startup.
//   - DeletedRetention: how long deleted records are still reported by polls.
//   - SecretKey: HMAC secret for operator tokens (HS256); empty disables them.
//   - TokenValidityDuration: lifetime of minted operator tokens.
//   - MintToken: operator name to mint a token for and exit.
//   - S3RootUser / S3RootPassword / S3Bucket / S3Region / S3BaseEndpoint:
//     S3-compatible object storage for tree snapshots.
//   - SnapshotKey: object key of the snapshot; empty disables snapshots.
type Config struct {
	EndpointAddrGRPC      string
	DatabaseDSN           string
	Seed                  bool
	DeletedRetention      time.Duration
	LogFormat             string
	Debug                 bool
	SecretKey             string
	TokenValidityDuration time.Duration
	MintToken             string
	S3RootUser            string
	S3RootPassword        string
	S3Bucket              string
	S3Region              string
	S3BaseEndpoint        string
	SnapshotKey           string
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.EndpointAddrGRPC = ":50051"
	c.DatabaseDSN = "file:accessconsole?mode=memory&cache=shared"
	c.Seed = true
	c.DeletedRetention = time.Minute
	c.LogFormat = "text"
	c.Debug = false
	c.SecretKey = ""
	c.TokenValidityDuration = 24 * time.Hour
	c.MintToken = ""
	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Bucket = "accessconsole"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
	c.SnapshotKey = ""
}

// SnapshotsEnabled reports whether a snapshot key is configured.
func (c *Config) SnapshotsEnabled() bool {
	return c.SnapshotKey != ""
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
