package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/pixstream/pixstream/internal/httpapi"
	"github.com/pixstream/pixstream/internal/middleware"
	"github.com/pixstream/pixstream/internal/service"
	"github.com/pixstream/pixstream/internal/storage/sqlite"
	"github.com/pixstream/pixstream/pkg/logging"
)

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	// Setup structured logging
	logging.Setup()

	dbPath := getEnv("DB_PATH", "./data/pixstream.db")
	port := getEnv("PORT", "8080")

	// Initialize SQLite storage; the store handle is owned here and
	// injected into every component.
	store, err := sqlite.New(dbPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", dbPath)

	producer := service.NewProducerService(store)
	streams := service.NewStreamService(store, service.DefaultConfig())

	mux := http.NewServeMux()
	httpapi.New(producer, streams).Register(mux)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Add logging and metrics middleware
	handler := middleware.Logging(middleware.Metrics(mux))

	// Wrap with h2c for HTTP/2 without TLS
	h2cHandler := h2c.NewHandler(handler, &http2.Server{})

	addr := fmt.Sprintf(":%s", port)
	slog.Info("Server starting", "address", addr, "url", fmt.Sprintf("http://localhost%s", addr))
	if err := http.ListenAndServe(addr, h2cHandler); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
