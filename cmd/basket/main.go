package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/dukerupert/basket/internal/backup"
	"github.com/dukerupert/basket/internal/database"
	"github.com/dukerupert/basket/internal/logging"
	"github.com/dukerupert/basket/internal/server"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	logger := logging.Setup(os.Getenv("BASKET_LOG_LEVEL"), os.Getenv("BASKET_LOG_FORMAT"))

	port := envOr("BASKET_PORT", "8080")
	dbPath := envOr("BASKET_DB_PATH", "basket.db")

	timeout := server.DefaultStorageTimeout
	if v := os.Getenv("BASKET_STORAGE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			slog.Warn("invalid BASKET_STORAGE_TIMEOUT, using default", "value", v, "default", timeout)
		} else {
			timeout = d
		}
	}

	loc := time.Local
	if v := os.Getenv("BASKET_TIMEZONE"); v != "" {
		l, err := time.LoadLocation(v)
		if err != nil {
			slog.Warn("invalid BASKET_TIMEZONE, using local time", "value", v, "error", err)
		} else {
			loc = l
		}
	}

	backupKeep := 10
	if v := os.Getenv("BASKET_BACKUP_KEEP"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			slog.Warn("invalid BASKET_BACKUP_KEEP, using default", "value", v, "default", backupKeep)
		} else {
			backupKeep = n
		}
	}

	db, err := database.Open(dbPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	cfg := server.Config{
		StorageTimeout: timeout,
		Location:       loc,
		SecureCookie:   os.Getenv("BASKET_COOKIE_SECURE") == "true",
		BackupKeep:     backupKeep,
		Backup: backup.S3Config{
			Endpoint:  os.Getenv("BASKET_S3_ENDPOINT"),
			Bucket:    os.Getenv("BASKET_S3_BUCKET"),
			Region:    envOr("BASKET_S3_REGION", "us-east-1"),
			AccessKey: os.Getenv("BASKET_S3_ACCESS_KEY"),
			SecretKey: os.Getenv("BASKET_S3_SECRET_KEY"),
		},
	}
	if !cfg.Backup.Enabled() {
		slog.Info("backups disabled, S3 bucket or credentials not set")
	}

	srv := server.New(db, cfg, logger)

	httpServer := &http.Server{
		Addr:              ":" + port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Background cleanup goroutine
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n, err := srv.SessionStore().DeleteExpired(); err != nil {
					slog.Error("cleanup expired sessions", "error", err)
				} else if n > 0 {
					slog.Info("cleaned up expired sessions", "count", n)
				}
				srv.RateLimiter().Cleanup()
			case <-cleanupCtx.Done():
				return
			}
		}
	}()

	go func() {
		slog.Info("basket starting", "addr", ":"+port, "storage_timeout", timeout, "timezone", loc.String())
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	cleanupCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	srv.Sessions().CloseAll()
}
