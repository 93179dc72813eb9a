package commands

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/meridian-dr/meridian/internal/config"
	"github.com/meridian-dr/meridian/internal/server"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Meridian HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides serverAddr)")
	return cmd
}

func runServe(ctx context.Context, addr string) error {
	cfg, err := config.Load(".")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	services, err := buildServices(ctx, cfg, logger)
	if err != nil {
		return err
	}

	if addr == "" {
		addr = cfg.ServerAddr
	}
	srv := server.New(addr, services, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case sig := <-sigCh:
		color.Yellow("\nReceived %s, shutting down...", sig)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		color.Green("Server stopped gracefully")
		return nil
	}
}
