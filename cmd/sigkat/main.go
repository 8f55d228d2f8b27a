// Package main provides the entry point for the sigkat CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mahdiidarabi/sigkat/internal/cli"
)

// Set via -ldflags "-X main.version=... -X main.commit=... -X main.date=...".
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.Execute(ctx, cli.BuildInfo{Version: version, Commit: commit, Date: date})
	stop()
	os.Exit(cli.ExitCodeForError(err))
}
