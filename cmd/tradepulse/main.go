package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mohamed-esoliman/tradepulse-go/internal/broadcast"
	"github.com/mohamed-esoliman/tradepulse-go/internal/config"
	"github.com/mohamed-esoliman/tradepulse-go/internal/pipeline"
)

func main() {
	cfg := config.Load()

	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)
	logger := log.Default()
	logger.Println("tradepulse starting")
	logger.Printf("source=%s symbol=%s strategy=%s latency_mode=%s", cfg.Source, cfg.Symbol, cfg.Strategy, cfg.LatencyMode)

	coord := pipeline.New(cfg, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/stream", coord.Manager().StreamHandler())
	mux.HandleFunc("/info", broadcast.WrapPlainText(coord.InfoBody))
	mux.HandleFunc("/control", broadcast.WrapPlainText(coord.ControlBody))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprint(w, "TradePulse WebSocket Server")
	})

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.WSPort)
	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Startup order: Scheduler -> Source (both in coord.Start) -> Server.
	coord.Start()

	serverErrCh := make(chan error, 1)
	go func() {
		logger.Printf("listening on ws://%s/stream", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		}
	}()

	select {
	case sig := <-sigCh:
		logger.Printf("received signal %v, shutting down", sig)
	case err := <-serverErrCh:
		logger.Printf("server error: %v", err)
		coord.Stop()
		os.Exit(1)
	}

	// Shutdown order: Source -> Scheduler -> Server.
	coord.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("server shutdown error: %v", err)
	}

	logger.Println("tradepulse stopped")
}
