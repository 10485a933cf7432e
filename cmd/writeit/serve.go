package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	adapthttp "github.com/writeit-dev/writeit/internal/adapters/http"
	"github.com/writeit-dev/writeit/internal/container"
	"github.com/writeit-dev/writeit/internal/platform/httpclient"
	"github.com/writeit-dev/writeit/internal/ports"
)

const serverShutdownTimeout = 15 * time.Second

func newServeCmd(profile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the WriteIt HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), *profile)
		},
	}
}

func runServe(ctx context.Context, profile string) error {
	rt, err := newRuntime(ctx, profile)
	if err != nil {
		return err
	}

	// Resolving the server eagerly wires the full graph.
	server, err := container.Resolve[*adapthttp.Server](rt.container)
	if err != nil {
		return fmt.Errorf("resolving server: %w", err)
	}

	// Register health checkers after the graph is wired.
	registry := container.MustResolve[ports.HealthRegistry](rt.container)
	registry.Register(container.MustResolve[*httpclient.Client](rt.container))
	registry.Register(container.MustResolve[*storeHandle](rt.container))

	// Start server in background.
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	// Wait for shutdown signal or server error.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		rt.logger.Info("received shutdown signal", slog.String("signal", sig.String()))
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	}

	// Graceful shutdown: drain HTTP requests.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), serverShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		rt.logger.Error("server shutdown error", slog.Any("error", err))
	}

	// Wait for Start() goroutine to return.
	<-serverErr

	if err := rt.Close(shutdownCtx); err != nil {
		rt.logger.Error("runtime shutdown error", slog.Any("error", err))
	}

	rt.logger.Info("shutdown complete")
	return nil
}
