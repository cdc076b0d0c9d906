// cmd/console/server.go
// This file contains the serve() method which starts the HTTP server and
// handles graceful shutdown when an OS signal is received.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// sweepInterval is how often idle table screens and expired sessions are
// dropped.
const sweepInterval = time.Minute

// serve builds the HTTP server, starts it in a background goroutine, then
// blocks until it receives a SIGINT or SIGTERM signal. On signal receipt it
// initiates a graceful shutdown: in-flight requests are given 20 seconds to
// complete before the server is forcefully stopped.
func (app *applicationDependencies) serve() error {
	consoleServer := &http.Server{
		Addr:        fmt.Sprintf(":%d", app.config.port),
		Handler:     app.routes(),
		IdleTimeout: time.Minute,
		ReadTimeout: 5 * time.Second,
		// Handlers wait on the inventory API, so leave room for one full call.
		WriteTimeout: app.config.api.timeout + 10*time.Second,
		ErrorLog:     slog.NewLogLogger(app.logger.Handler(), slog.LevelError),
	}

	// Housekeeping stops when the server does.
	ctx, stopSweeping := context.WithCancel(context.Background())
	defer stopSweeping()
	go app.sweep(ctx, sweepInterval)

	shutdownErr := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		s := <-quit
		app.logger.Info("shutting down server", "signal", s.String())

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()

		shutdownErr <- consoleServer.Shutdown(ctx)
	}()

	app.logger.Info("starting server",
		"address", consoleServer.Addr,
		"environment", app.config.environment,
		"version", appVersion,
		"api", app.config.api.url,
	)

	err := consoleServer.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdownErr
	if err != nil {
		return err
	}

	app.logger.Info("server stopped", "address", consoleServer.Addr)
	return nil
}

// sweep periodically forgets table screens idle for longer than the session
// lifetime, evicts quiet rate limiter clients and asks the session store to
// drop expired sessions.
func (app *applicationDependencies) sweep(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			app.sweepOnce(ctx)
		}
	}
}

func (app *applicationDependencies) sweepOnce(ctx context.Context) {
	if n := app.screens.Sweep(app.config.session.ttl); n > 0 {
		app.logger.Debug("idle screens dropped", "count", n)
	}
	if n := app.limiters.prune(clientIdle); n > 0 {
		app.logger.Debug("idle rate limiter clients dropped", "count", n)
	}
	if app.backend.sweep == nil {
		return
	}
	n, err := app.backend.sweep(ctx)
	if err != nil {
		app.logger.Warn("session sweep failed", "error", err)
		return
	}
	if n > 0 {
		app.logger.Debug("expired sessions dropped", "count", n)
	}
}
