package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"time"

	"pricecompare/internal/app"
	"pricecompare/internal/session"
	"pricecompare/internal/sheet"
	"pricecompare/internal/web"
)

func runServe(ctx context.Context, args []string, cfg *app.Config, logger *slog.Logger) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	addr := fs.String("addr", cfg.AppAddr, "listen address")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg.AppAddr = *addr

	ctx, stop := context.WithCancel(ctx)
	defer stop()

	decoder := sheet.NewDecoder()
	sess := session.New(decoder, logger, session.Options{Reconcile: cfg.Reconcile()})
	server := web.NewServer(cfg, web.NewHandler(logger, cfg, sess, decoder))

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
	select {
	case err := <-errCh:
		return err
	default:
		return nil
	}
}
