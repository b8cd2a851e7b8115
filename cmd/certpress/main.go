// Package main is the entry point for the CertPress server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"certpress/internal/cache"
	"certpress/internal/config"
	"certpress/internal/database"
	"certpress/internal/handlers"
	"certpress/internal/render"
	"certpress/internal/router"
	"certpress/internal/session"
	"certpress/internal/storage"
	"certpress/internal/store"
	"certpress/internal/token"
)

func main() {
	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Structured logger: JSON in production, text in development.
	var handler slog.Handler
	if cfg.IsDev() {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	slog.SetDefault(slog.New(handler))

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey (export cache + editor session store).
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	sessionStore := session.NewStore(valkeyClient)
	exportCache := cache.NewExportCache(valkeyClient, cache.DefaultExportTTL)

	// Bearer token manager for the admin API.
	tokens, err := token.NewManager([]byte(cfg.JWTSecret), cfg.JWTIssuer, cfg.JWTTTL)
	if err != nil {
		slog.Error("failed to initialize token manager", "error", err)
		os.Exit(1)
	}

	// Initialize data stores.
	userStore := store.NewUserStore(db)
	templateStore := store.NewTemplateStore(db)
	studentStore := store.NewStudentStore(db, []byte(cfg.LookupSecret))

	// Connect to S3-compatible object storage (optional — the editor
	// falls back to inline data URI backgrounds without it).
	storageClient, err := storage.New(
		cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
		cfg.S3Bucket, cfg.S3PublicURL,
	)
	if err != nil {
		slog.Error("failed to initialize S3 storage", "error", err)
		os.Exit(1)
	}
	if storageClient != nil {
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
	} else {
		slog.Warn("s3 storage not configured — asset uploads disabled")
	}

	// Initialize the certificate renderer: fonts from disk, images from
	// data URIs, uploaded assets, or the public site itself.
	fonts, err := render.NewFontLibrary(cfg.FontsDir)
	if err != nil {
		slog.Error("failed to load fonts", "dir", cfg.FontsDir, "error", err)
		os.Exit(1)
	}
	images := render.NewImageResolver(&http.Client{Timeout: 15 * time.Second}, cfg.PublicURL)
	renderer := render.New(fonts, images)

	// Create handler groups with their dependencies.
	authHandlers := handlers.NewAuth(userStore, tokens, cfg)
	templateHandlers := handlers.NewTemplates(templateStore, exportCache)
	studentHandlers := handlers.NewStudents(studentStore, templateStore, exportCache)
	editorHandlers := handlers.NewEditor(sessionStore, templateStore, renderer, exportCache)
	assetHandlers := handlers.NewAssets(storageClient)
	dashboardHandlers := handlers.NewDashboard(templateStore, studentStore)
	publicHandlers, err := handlers.NewPublic(studentStore, templateStore, renderer, exportCache, cfg.PublicURL)
	if err != nil {
		slog.Error("failed to initialize public pages", "error", err)
		os.Exit(1)
	}

	// Set up the Chi router with all middleware and routes.
	r := router.New(router.Deps{
		Tokens:    tokens,
		Auth:      authHandlers,
		Templates: templateHandlers,
		Students:  studentHandlers,
		Editor:    editorHandlers,
		Assets:    assetHandlers,
		Dashboard: dashboardHandlers,
		Public:    publicHandlers,
	})

	// Create the HTTP server with sensible timeouts. WriteTimeout must
	// accommodate first-hit PDF exports, which rasterize the layout.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// Give active requests up to 30 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
