package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	httpadapter "github.com/kirillkom/vlm-transcriber/internal/adapters/http"
	"github.com/kirillkom/vlm-transcriber/internal/bootstrap"
	"github.com/kirillkom/vlm-transcriber/internal/config"
	"github.com/kirillkom/vlm-transcriber/internal/observability/logging"
	"github.com/kirillkom/vlm-transcriber/internal/observability/metrics"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger := logging.NewJSONLogger("vlm-transcriber", cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := bootstrap.New(cfg, logger, nil)
	m := metrics.NewHTTPServerMetrics("vlm-transcriber")

	router := httpadapter.NewRouter(cfg, app.Processor, app.Exporter, m).Handler()
	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 10 * time.Minute, // a full batch is processed inside the request
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("api_listening", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("api server error: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("api_shutdown_error", "error", err)
	}
}
