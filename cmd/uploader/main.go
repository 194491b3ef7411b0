package main

import (
	"bufio"
	"context"
	"encoding/json"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/oasis/internal/client/config"
	"github.com/dmitrijs2005/oasis/internal/client/prompt"
	"github.com/dmitrijs2005/oasis/internal/client/uploader"
	"github.com/dmitrijs2005/oasis/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()

	if cfg.FilePath == "" {
		p, err := prompt.Line(bufio.NewReader(os.Stdin), "File to upload?", os.Stderr)
		if err != nil {
			log.Fatalf("file path: %v", err)
		}
		cfg.FilePath = p
	}

	if cfg.Token == "" {
		tok, err := prompt.Token(os.Stderr)
		if err != nil {
			log.Fatalf("access token: %v", err)
		}
		cfg.Token = tok
	}

	u := uploader.New(uploader.Options{
		BaseURL:    cfg.ServerURL,
		Token:      cfg.Token,
		SliceBytes: cfg.SliceBytes,
		Retries:    cfg.Retries,
		RetryDelay: cfg.RetryDelay,
	}, logging.NewTextLogger(os.Stderr, slog.LevelInfo))

	rec, err := u.UploadFile(ctx, cfg.FilePath, cfg.ParentID)
	if err != nil {
		log.Fatalf("upload: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rec); err != nil {
		log.Fatalf("%v", err)
	}
}
