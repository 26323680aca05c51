package app

import (
	"context"
	"net/http"

	"github.com/Jacky-Bruse/movecar/internal/config"
)

// App ties the HTTP listener to the infrastructure it was built on so
// both shut down in one place.
type App struct {
	server  *http.Server
	closers []func() error
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	router, closers, err := setupHTTP(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return &App{
		server: &http.Server{
			Addr:    ":" + cfg.AppPort,
			Handler: router,
		},
		closers: closers,
	}, nil
}

func (a *App) Run() error {
	return a.server.ListenAndServe()
}

// Shutdown drains in-flight requests, then releases the backing
// infrastructure in reverse registration order. The first close error
// wins; later closers still run.
func (a *App) Shutdown(ctx context.Context) error {
	if err := a.server.Shutdown(ctx); err != nil {
		return err
	}

	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
