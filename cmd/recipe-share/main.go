package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"recipe-share-go/internal/app"
	"recipe-share-go/pkg/logger"
)

const shutdownGrace = 5 * time.Second

func main() {
	log := logger.NewFromEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	code := run(ctx, log)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, log logger.Logger) int {
	application, err := app.New(log)
	if err != nil {
		log.Critical("recipe-share: init failed", "err", err)
		return 1
	}

	srv := application.HTTPServer()
	log.Info("recipe-share: serving", "addr", srv.Addr, "env", application.Env())

	serverErrCh := make(chan error, 1)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
		close(serverErrCh)
	}()

	exitCode := 0
	select {
	case <-ctx.Done():
		log.Info("recipe-share: shutdown signal received")
	case err := <-serverErrCh:
		if err != nil {
			log.Critical("recipe-share: server failed", "addr", srv.Addr, "err", err)
			exitCode = 1
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("recipe-share: graceful shutdown failed", "err", err)
		exitCode = 1
	}

	if err := application.Close(); err != nil {
		log.Error("recipe-share: close failed", "err", err)
		exitCode = 1
	}

	if exitCode == 0 {
		log.Info("recipe-share: stopped")
	}
	return exitCode
}
