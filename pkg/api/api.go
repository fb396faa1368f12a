// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

// Package api provides the HTTP server the surrounding service boundary is
// built on. The routes themselves are registered by the application; this
// package only owns the server lifecycle and the router.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/telekom/kestrel/internal/logger"
)

const (
	shutdownTimeout   = 30 * time.Second
	readHeaderTimeout = 5 * time.Second
)

var _ API = (*api)(nil)

// API is the HTTP boundary of the application.
type API interface {
	// Run serves the API until the context is canceled or the server fails.
	Run(ctx context.Context) error
	// RegisterRoutes mounts the given routes on the router.
	RegisterRoutes(routes ...Route) error
	// Shutdown gracefully stops the server.
	Shutdown(ctx context.Context) error
}

// Route is a route of the API.
type Route struct {
	// Method is the HTTP method. An empty method mounts a plain handler
	// for all methods.
	Method string
	// Path is the chi route pattern.
	Path string
	// Handler handles the route.
	Handler http.HandlerFunc
}

type api struct {
	config Config
	router chi.Router
	server *http.Server
}

// New creates a new API server with the given configuration.
func New(cfg Config) API {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	return &api{
		config: cfg,
		router: r,
		server: &http.Server{Addr: cfg.ListeningAddress, Handler: r, ReadHeaderTimeout: readHeaderTimeout},
	}
}

// Run serves the API until the context is canceled.
func (a *api) Run(ctx context.Context) error {
	log := logger.FromContext(ctx)
	log.InfoContext(ctx, "Serving API", "address", a.config.ListeningAddress)

	a.server.BaseContext = func(_ net.Listener) context.Context { return ctx }
	// Middlewares cannot be added to the router once routes are mounted, so
	// the logger wraps the whole handler chain instead.
	a.server.Handler = logger.Middleware(ctx)(a.router)

	cErr := make(chan error, 1)
	go func() {
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			cErr <- fmt.Errorf("failed to serve api: %w", err)
			return
		}
		cErr <- nil
	}()

	select {
	case <-ctx.Done():
		return a.Shutdown(ctx)
	case err := <-cErr:
		return err
	}
}

// RegisterRoutes mounts the given routes on the router.
func (a *api) RegisterRoutes(routes ...Route) error {
	for _, route := range routes {
		if route.Path == "" || route.Handler == nil {
			return fmt.Errorf("%w: %q", ErrInvalidRoute, route.Path)
		}
		if route.Method == "" {
			a.router.HandleFunc(route.Path, route.Handler)
			continue
		}
		a.router.Method(route.Method, route.Path, route.Handler)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (a *api) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown api: %w", err)
	}
	return nil
}
