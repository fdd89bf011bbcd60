// Command docstore serves the JSON document store the board server keeps
// its tasks and contacts in.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hiroki-koketsu/kanban-board/internal/config"
	"github.com/hiroki-koketsu/kanban-board/internal/docstore"
	"github.com/hiroki-koketsu/kanban-board/internal/telemetry"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	cfg := config.Load()
	logger := telemetry.NewStartupLogger(cfg.LogFile)

	dir := cfg.DocstorePath
	if dir == "" {
		dir = docstore.DefaultPath()
	}

	ctx := context.Background()

	tp, err := telemetry.InitTracerProvider(ctx, cfg.ServiceName+"-docstore", cfg.OTLPEndpoint, cfg.Environment)
	if err != nil {
		logger.Error("failed to initialize tracer provider", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			logger.Error("failed to shutdown tracer provider", slog.Any("error", err))
		}
	}()

	backend, err := docstore.OpenBadger(dir)
	if err != nil {
		logger.Error("failed to open database", slog.String("path", dir), slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := backend.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	srv := docstore.NewServer(backend, logger)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Mount("/", srv.Routes())

	server := &http.Server{
		Addr: ":" + cfg.DocstorePort,
		Handler: otelhttp.NewHandler(r, "docstore",
			otelhttp.WithFilter(func(r *http.Request) bool {
				return r.URL.Path != "/health"
			}),
		),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("docstore listening", slog.String("addr", server.Addr), slog.String("path", dir))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", slog.Any("error", err))
	}

	logger.Info("docstore stopped")
}
