package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/oasis/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags:
//
//	-a string     HTTP bind address (e.g., ":8080")
//	-g string     gRPC bind address (e.g., ":50051")
//	-d string     database DSN (postgres://... or sqlite://...)
//	-s string     JWT HMAC secret key
//	-t int        access token validity, minutes
//	-r string     storage root directory
//	-m int        max slice size, bytes
//	-n int        max numbered names tried on collision
//	-x int        stale upload TTL, minutes (0 disables the reaper)
//	-i int        reaper interval, minutes
//	-l string     log level (debug, info, warn, error)
//	-mirror bool  mirror finished files to S3 (use -mirror=false to disable)
//	-u string     S3 root user
//	-p string     S3 root password
//	-b string     S3 bucket name
//	-region str   S3 region
//	-e string     S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//
// Duration flags are integers in minutes and converted to time.Duration.
// They only apply when given explicitly.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-a", "-g", "-d", "-s", "-t", "-r", "-m", "-n", "-x", "-i", "-l", "-mirror", "-u", "-p", "-b", "-region", "-e",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port of the HTTP API")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "address and port of the gRPC endpoint")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")

	fs.StringVar(&config.StorageRoot, "r", config.StorageRoot, "storage root directory")
	fs.Int64Var(&config.MaxSliceBytes, "m", config.MaxSliceBytes, "max slice size (in bytes)")
	fs.IntVar(&config.MaxCollisionAttempts, "n", config.MaxCollisionAttempts, "max numbered names tried on collision")

	staleUploadTTL := fs.Int("x", int(config.StaleUploadTTL.Minutes()), "stale upload ttl (in minutes), 0 disables")
	reaperInterval := fs.Int("i", int(config.ReaperInterval.Minutes()), "reaper interval (in minutes)")

	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.BoolVar(&config.MirrorEnabled, "mirror", config.MirrorEnabled, "mirror finished files to S3")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 root bucket")
	fs.StringVar(&config.S3Region, "region", config.S3Region, "S3 root region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// Only flags actually given override durations, so sub-minute values
	// from a config file survive.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
		case "x":
			config.StaleUploadTTL = time.Duration(*staleUploadTTL) * time.Minute
		case "i":
			config.ReaperInterval = time.Duration(*reaperInterval) * time.Minute
		}
	})
}
