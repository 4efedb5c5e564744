package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/magabrotheeeer/agrocare-backend/internal/client/api"
	"github.com/magabrotheeeer/agrocare-backend/internal/client/cli"
	"github.com/magabrotheeeer/agrocare-backend/internal/client/session"
	"github.com/magabrotheeeer/agrocare-backend/internal/config"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: agroctl <register|login|logout|whoami|farms>")
		os.Exit(2)
	}

	cfg := config.MustLoad()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stateDir := cfg.StateDir
	if stateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to resolve home dir: %v\n", err)
			os.Exit(1)
		}
		stateDir = home + "/.agrocare"
	}

	apiClient := api.New(cfg.APIBaseURL, cfg.RequestTimeout)
	store := session.New(apiClient, stateDir, logger)

	app := cli.New(apiClient, store)
	if err := app.Run(ctx, os.Args[1]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
