package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/accessconsole/internal/flagx"
	"github.com/dmitrijs2005/accessconsole/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer and
// zero values mark keys that were not given.
type JsonConfig struct {
	ServerEndpointAddr string         `json:"server_endpoint_addr"`
	Operator           string         `json:"operator"`
	Token              string         `json:"token"`
	RequestTimeout     timex.Duration `json:"request_timeout"`
	PollInterval       timex.Duration `json:"poll_interval"`
	SweepInterval      timex.Duration `json:"sweep_interval"`
	TombstoneGrace     timex.Duration `json:"tombstone_grace"`
	IngestChunkSize    int            `json:"ingest_chunk_size"`
	LogFormat          string         `json:"log_format"`
	Debug              *bool          `json:"debug"`
	Tables             []string       `json:"tables"`
}

// parseJson overlays cfg with the file named by -c/-config, if any. It
// panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	path := flagx.ConfigPath(os.Args[1:])
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerEndpointAddr != "" {
		cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	}
	if jc.Operator != "" {
		cfg.Operator = jc.Operator
	}
	if jc.Token != "" {
		cfg.Token = jc.Token
	}
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.PollInterval.Duration > 0 {
		cfg.PollInterval = jc.PollInterval.Duration
	}
	if jc.SweepInterval.Duration > 0 {
		cfg.SweepInterval = jc.SweepInterval.Duration
	}
	if jc.TombstoneGrace.Duration > 0 {
		cfg.TombstoneGrace = jc.TombstoneGrace.Duration
	}
	if jc.IngestChunkSize > 0 {
		cfg.IngestChunkSize = jc.IngestChunkSize
	}
	if jc.LogFormat != "" {
		cfg.LogFormat = jc.LogFormat
	}
	if jc.Debug != nil {
		cfg.Debug = *jc.Debug
	}
	if len(jc.Tables) > 0 {
		cfg.Tables = jc.Tables
	}
}
