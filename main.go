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

	_ "time/tzdata"

	"github.com/tmvalente/drivelog/internal/blobstore"
	"github.com/tmvalente/drivelog/internal/handler"
	"github.com/tmvalente/drivelog/internal/repository/sqlite"
	"github.com/tmvalente/drivelog/internal/service"
)

// timezone is fixed for all timestamp generation and date filtering,
// regardless of where the server or its clients run.
const timezone = "Europe/Lisbon"

func main() {
	logLevel := parseLogLevel(envOrDefault("LOG_LEVEL", "info"))
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	port := envOrDefault("PORT", "8080")
	dbPath := envOrDefault("DATABASE_PATH", "drivelog.db")
	uploadDir := envOrDefault("UPLOAD_DIR", "uploads")

	bcryptCost := 12
	if v := os.Getenv("BCRYPT_COST"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			slog.Error("invalid BCRYPT_COST", "error", err)
			os.Exit(1)
		}
		if parsed < 4 || parsed > 14 {
			slog.Error("BCRYPT_COST must be between 4 and 14", "value", parsed)
			os.Exit(1)
		}
		bcryptCost = parsed
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		slog.Error("failed to load timezone", "zone", timezone, "error", err)
		os.Exit(1)
	}

	db, err := sqlite.New(dbPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(context.Background()); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("database migrations applied")

	files, err := blobstore.NewLocal(uploadDir)
	if err != nil {
		slog.Error("failed to open upload directory", "error", err)
		os.Exit(1)
	}

	authService := service.NewAuthService(db.Users(), bcryptCost)
	typeService := service.NewActivityTypeService(db.ActivityTypes())
	activityService := service.NewActivityService(db.Activities(), db.ActivityTypes(), files, loc)

	// Seed the fixed activity types (idempotent).
	if err := typeService.Seed(context.Background()); err != nil {
		slog.Error("failed to seed activity types", "error", err)
		os.Exit(1)
	}
	slog.Info("activity types seeded")

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, authService, typeService, activityService)

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler.CORS(mux),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func envOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func parseLogLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
