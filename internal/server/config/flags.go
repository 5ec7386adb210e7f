package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/accessconsole/internal/flagx"
)

// parseFlags populates server Config fields from command-line flags.
//
// Supported flags:
//
//	-a string     gRPC bind address (e.g., ":50051")
//	-d string     database DSN
//	-seed bool    seed an empty tree with the demo site
//	-r duration   deleted record retention
//	-l string     log format (text, json, zap)
//	-v bool       debug logging
//	-s string     operator token secret
//	-t duration   operator token validity
//	-mint string  print a token for this operator and exit
//	-u string     S3 root user
//	-p string     S3 root password
//	-b string     S3 bucket name
//	-g string     S3 region
//	-e string     S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-k string     snapshot object key
//
// Flags the server does not define are ignored. Malformed values panic.
func parseFlags(config *Config) {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.BoolVar(&config.Seed, "seed", config.Seed, "seed an empty tree with the demo site")
	fs.DurationVar(&config.DeletedRetention, "r", config.DeletedRetention, "how long deleted records are reported")
	fs.StringVar(&config.LogFormat, "l", config.LogFormat, "log format (text, json, zap)")
	fs.BoolVar(&config.Debug, "v", config.Debug, "debug logging")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "operator token secret")
	fs.DurationVar(&config.TokenValidityDuration, "t", config.TokenValidityDuration, "operator token validity")
	fs.StringVar(&config.MintToken, "mint", config.MintToken, "print a token for this operator and exit")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.SnapshotKey, "k", config.SnapshotKey, "snapshot object key")

	if err := flagx.Parse(fs, os.Args[1:]); err != nil {
		panic(err)
	}
}
