// Command server exposes the scoring pipeline over HTTP.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/raysh454/phishscan/internal/app"
	"github.com/raysh454/phishscan/internal/logging"
	"github.com/raysh454/phishscan/internal/server"
)

func main() {
	cfg := app.LoadConfig()
	logger := app.NewLogger(cfg, "server")

	a, err := app.NewApplication(cfg, logger)
	if err != nil {
		logger.Error("startup failed", logging.Field{Key: "error", Value: err.Error()})
		os.Exit(1)
	}
	defer a.Shutdown(context.Background())

	var history server.History
	if err := a.OpenHistory(); err != nil {
		logger.Warn("continuing without scan history", logging.Field{Key: "error", Value: err.Error()})
	} else if a.History != nil {
		history = a.History
	}

	srv, err := server.NewServer(server.Config{
		ListenAddr: cfg.ListenAddr,
		Debug:      cfg.Debug,
		Logger:     logger,
	}, a.Pipeline, history)
	if err != nil {
		logger.Error("creating server", logging.Field{Key: "error", Value: err.Error()})
		os.Exit(1)
	}
	defer srv.Close()

	httpSrv := srv.HTTPServer()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Close()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	logger.Info("listening", logging.Field{Key: "addr", Value: cfg.ListenAddr})
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server stopped", logging.Field{Key: "error", Value: err.Error()})
		os.Exit(1)
	}
}
