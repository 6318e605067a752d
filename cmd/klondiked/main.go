package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"cosmossdk.io/log"
	"github.com/spf13/cobra"

	"cardroom/apps/klondike/internal/config"
	"cardroom/apps/klondike/internal/decksource"
	"cardroom/apps/klondike/internal/leaderboard"
	"cardroom/apps/klondike/internal/server"
	"cardroom/apps/klondike/internal/token"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "klondiked",
		Short:         "Klondike solitaire game-state daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context())
		},
	}
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "klondiked: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	logger := log.NewLogger(os.Stderr)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	auth, err := token.New(cfg.JWTSecretKey, cfg.JWTAlgorithm, cfg.AccessTokenMinutes, cfg.RefreshTokenMinutes)
	if err != nil {
		return fmt.Errorf("init auth: %w", err)
	}

	var board leaderboard.Tracker
	if cfg.LeaderboardURL != "" {
		board = leaderboard.NewHTTPClient(cfg.LeaderboardURL)
		logger.Info("using remote leaderboard", "url", cfg.LeaderboardURL)
	} else {
		store, err := leaderboard.Open(filepath.Join(cfg.DataDir, "leaderboard"))
		if err != nil {
			return fmt.Errorf("open leaderboard store: %w", err)
		}
		defer func() { _ = store.Close() }()
		board = store
		logger.Info("using embedded leaderboard store", "dir", cfg.DataDir)
	}

	facade := server.New(logger, auth, decksource.NewClient(cfg.DeckSourceURL), board)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           facade.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.ListenAddr, "deck_source", cfg.DeckSourceURL)
		errCh <- srv.ListenAndServe()
	}()

	// Wait for signal.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.Info("shutting down", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("shutting down", "reason", "context cancelled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
