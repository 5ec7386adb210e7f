// Package config loads runtime configuration for the console.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string     address:port of the device tree server
//	-u string     operator name sent with every request
//	-p duration   poll interval
//	-s duration   tombstone sweep interval
//	-g duration   tombstone grace period
//	-n int        updates applied per lock hold during ingestion
//	-t duration   request timeout
//	-l string     log format: text, json or zap
//	-d            debug logging
//	-tables list  comma separated tables to poll
//
// # JSON schema
//
// Durations use timex.Duration, so values can be strings like "5m" or
// integer nanoseconds. Keys that are absent keep their earlier value:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "operator": "night-shift",
//	  "poll_interval": "2s",
//	  "sweep_interval": "15s",
//	  "tombstone_grace": "5m",
//	  "ingest_chunk_size": 500,
//	  "log_format": "json",
//	  "tables": ["cards", "groups"]
//	}
package config
