package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/oasis/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags. See
// the package documentation for the list.
func parseFlags(cfg *Config) {
	// Filter args to include only those handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-s", "-t", "-p", "-f", "-b", "-r", "-w"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "s", cfg.ServerURL, "base URL of the server")
	fs.StringVar(&cfg.Token, "t", cfg.Token, "access token")
	fs.Int64Var(&cfg.ParentID, "p", cfg.ParentID, "destination folder id")
	fs.StringVar(&cfg.FilePath, "f", cfg.FilePath, "file to upload")
	fs.Int64Var(&cfg.SliceBytes, "b", cfg.SliceBytes, "slice size (in bytes)")
	fs.IntVar(&cfg.Retries, "r", cfg.Retries, "attempts per request")
	retryDelay := fs.Int("w", int(cfg.RetryDelay.Milliseconds()), "pause between attempts (in milliseconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RetryDelay = time.Duration(*retryDelay) * time.Millisecond
}
