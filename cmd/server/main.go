package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/pdfgpt/internal/api"
	"github.com/dgallion1/pdfgpt/internal/config"
	"github.com/dgallion1/pdfgpt/internal/inference"
	"github.com/dgallion1/pdfgpt/internal/pipeline"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load the model backend once; every request shares it behind one lock.
	backend, err := inference.New(cfg)
	if err != nil {
		log.Error("model backend init failed", "backend", cfg.ModelBackend, "error", err)
		os.Exit(1)
	}
	stats := inference.NewLatencyStats(time.Hour)
	model := inference.NewRetrying(inference.NewSerialized(backend, stats, log), log)

	// Initialize pipeline.
	p := pipeline.New(cfg, model, log)
	p.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(p, stats, backend.Name(), log, cfg)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       5 * time.Minute,
		WriteTimeout:      15 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}

	ln, err := net.Listen("tcp", httpServer.Addr)
	if err != nil {
		log.Error("listen failed", "addr", httpServer.Addr, "error", err)
		os.Exit(1)
	}

	log.Info("starting pdfgpt", "port", cfg.Port, "backend", backend.Name())
	err = serve(ctx, httpServer, ln, log, func() {
		p.Stop()
		model.Close()
	})
	if err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}

// serve runs srv on ln until ctx is done or the server fails, then shuts it
// down gracefully. teardown runs before serve returns in both cases.
func serve(ctx context.Context, srv *http.Server, ln net.Listener, log *slog.Logger, teardown func()) error {
	defer teardown()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	<-errCh
	return err
}
