package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Jacky-Bruse/movecar/internal/app"
	"github.com/Jacky-Bruse/movecar/internal/config"
	"github.com/Jacky-Bruse/movecar/internal/logger"
)

func main() {
	logger.Init()

	if err := run(); err != nil {
		logger.Fatal("movecar exited", map[string]any{
			"error": err.Error(),
		})
	}
}

func run() error {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	application, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize app: %w", err)
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := application.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	logger.Info("movecar started", map[string]any{
		"port": cfg.AppPort,
	})

	select {
	case err := <-serveErr:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutdown signal received", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := application.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	logger.Info("movecar stopped cleanly", nil)
	return nil
}
