package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/accessconsole/internal/flagx"
	"github.com/dmitrijs2005/accessconsole/internal/timex"
)

// JsonConfig is a DTO used only for reading JSON configuration files.
// Durations accept both strings such as "1m" and integer nanoseconds; keys
// that are absent leave the current value untouched.
type JsonConfig struct {
	EndpointAddrGRPC      string         `json:"endpoint_addr_grpc"`
	DatabaseDSN           string         `json:"database_dsn"`
	Seed                  *bool          `json:"seed"`
	DeletedRetention      timex.Duration `json:"deleted_retention"`
	LogFormat             string         `json:"log_format"`
	Debug                 *bool          `json:"debug"`
	SecretKey             string         `json:"secret_key"`
	TokenValidityDuration timex.Duration `json:"token_validity_duration"`
	S3RootUser            string         `json:"s3_root_user"`
	S3RootPassword        string         `json:"s3_root_password"`
	S3Bucket              string         `json:"s3_bucket"`
	S3Region              string         `json:"s3_region"`
	S3BaseEndpoint        string         `json:"s3_base_endpoint"`
	SnapshotKey           string         `json:"snapshot_key"`
}

// parseJson loads the file named by -c/-config, if any, into config. It
// panics if the file cannot be read or is not valid JSON.
func parseJson(config *Config) {
	path := flagx.ConfigPath(os.Args[1:])
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.LogFormat, c.LogFormat)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.SnapshotKey, c.SnapshotKey)

	if c.Seed != nil {
		config.Seed = *c.Seed
	}
	if c.Debug != nil {
		config.Debug = *c.Debug
	}
	if c.DeletedRetention.Duration > 0 {
		config.DeletedRetention = c.DeletedRetention.Duration
	}
	if c.TokenValidityDuration.Duration > 0 {
		config.TokenValidityDuration = c.TokenValidityDuration.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
