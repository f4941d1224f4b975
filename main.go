package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"notes-api/auth"
	"notes-api/config"
	"notes-api/db"
	"notes-api/handlers"
	"notes-api/logger"
	"notes-api/metrics"
)

const shutdownTimeout = 10 * time.Second

func main() {
	envFile := flag.String("env", ".env", "path to an optional .env file")
	flag.Parse()

	if err := run(*envFile); err != nil {
		logger.New("notes-api", "error").WithError(err).Fatal("server stopped")
	}
}

func run(envFile string) error {
	envErr := config.LoadEnvFile(envFile)

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New("notes-api", cfg.LogLevel)
	if envErr != nil {
		log.WithError(envErr).Warn("env file not loaded, using process environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithField("store", cfg.Store).Info("connecting to store")
	store, err := db.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			log.WithError(err).Error("close store")
		}
	}()
	log.WithField("store", cfg.Store).Info("connected to store")

	h := handlers.New(store, store, auth.NewIssuer(cfg.Secret, cfg.TokenTTL), log)
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           newRouter(h, store, metrics.New("notes"), log),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", srv.Addr).Info("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
