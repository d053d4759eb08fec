package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"stockdesk/infrastructure/audit"
	"stockdesk/infrastructure/cache"
	httpserver "stockdesk/infrastructure/http"
	"stockdesk/infrastructure/inventory"
	"stockdesk/infrastructure/notify"
	"stockdesk/infrastructure/sqlite"
)

func main() {
	addr := getenv("APP_ADDR", ":8080")
	dbPath := getenv("SQLITE_PATH", "stockdesk.db")
	apiURL := getenv("INVENTORY_API_URL", "http://localhost:3000/api")
	apiToken := getenv("INVENTORY_API_TOKEN", "")

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	db, err := sqlite.OpenDB(dbPath)
	if err != nil {
		slog.Error("open db failed", slog.String("path", dbPath), slog.Any("err", err))
		os.Exit(1)
	}
	defer db.Close()

	if err := sqlite.ApplyMigrations(context.Background(), db); err != nil {
		slog.Error("apply migrations failed", slog.Any("err", err))
		os.Exit(1)
	}

	svc := inventory.NewClient(apiURL, apiToken)
	notifier := notify.NewCenter()
	notifier.Subscribe(notify.SlogSink(logger))

	server := httpserver.NewServer(addr, db, svc, notifier, audit.NewService(), cache.NewInflightGate())
	if err := server.Start(); err != nil {
		slog.Error("start server failed", slog.String("addr", addr), slog.Any("err", err))
		os.Exit(1)
	}
	slog.Info("stockdesk listening", slog.String("addr", addr), slog.String("inventory_api", apiURL))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	if err := server.Stop(); err != nil {
		slog.Error("graceful shutdown error", slog.Any("err", err))
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
