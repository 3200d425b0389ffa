package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"gscgateway/internal/app"
	"gscgateway/internal/cfg"
	"gscgateway/pkg/logger"
)

func main() {
	// ============
	// config
	// ============
	config, errCfg := cfg.Load()
	if errCfg != nil {
		log.Fatal(errCfg)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ============
	// dependencies
	// ============
	provider, err := app.NewProvider(ctx, config)
	if err != nil {
		log.Fatal(err)
	}
	appLogger := provider.Infra.Logger

	server, err := app.NewServer(provider)
	if err != nil {
		log.Fatal(err)
	}

	// ============
	// serve
	// ============
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Run()
	}()

	select {
	case <-ctx.Done():
		appLogger.Info(context.Background(), "Shutdown signal received")
	case err := <-errCh:
		if err != nil {
			appLogger.Error(context.Background(), "HTTP server stopped", logger.Err(err))
		}
	}

	// ============
	// shutdown
	// ============
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error(shutdownCtx, "HTTP server shutdown failed", logger.Err(err))
	}
	if err := provider.Infra.Close(shutdownCtx); err != nil {
		appLogger.Error(shutdownCtx, "Infrastructure shutdown failed", logger.Err(err))
		os.Exit(1)
	}
}
