// Package main is the entry point for the orgpress API server.
// It loads configuration, connects the GitHub-backed content store,
// sets up routing, and starts the HTTP server with graceful shutdown
// support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"orgpress/internal/auth"
	"orgpress/internal/cache"
	"orgpress/internal/config"
	"orgpress/internal/handlers"
	"orgpress/internal/router"
	"orgpress/internal/storage"
	"orgpress/internal/store"
)

func main() {
	// Structured logger — text output; level stays at debug since the
	// API has no verbose hot paths.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// Load .env if present (development convenience; ignored in production
	// images where the environment is injected).
	if err := godotenv.Load(); err == nil {
		slog.Debug("loaded environment from .env")
	}

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"content_repo", cfg.GitHubOwner+"/"+cfg.GitHubRepo,
		"storage_backend", cfg.StorageBackend,
	)

	// The GitHub repository acts as both the content document store and,
	// by default, the uploaded-file store.
	github, err := storage.NewGitHub(storage.GitHubConfig{
		Token:       cfg.GitHubToken,
		Owner:       cfg.GitHubOwner,
		Repo:        cfg.GitHubRepo,
		Branch:      cfg.GitHubBranch,
		ContentPath: cfg.GitHubContentPath,
	})
	if err != nil {
		slog.Error("failed to initialize github storage", "error", err)
		os.Exit(1)
	}

	// File uploads go to the GitHub repository unless an S3-compatible
	// bucket is configured instead.
	var files storage.FileStore = github
	if cfg.StorageBackend == "s3" {
		s3Client, err := storage.NewS3(
			cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
			cfg.S3Bucket, cfg.S3PublicURL,
		)
		if err != nil {
			slog.Error("failed to initialize s3 storage", "error", err)
			os.Exit(1)
		}
		if s3Client == nil {
			slog.Error("s3 backend selected but S3 credentials are incomplete")
			os.Exit(1)
		}
		files = s3Client
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
	}

	contentStore := store.NewContentStore(github, files)

	// Optional Valkey listing cache. The API works without it; listings
	// then hit the repository on every request.
	var contentCache *cache.ContentCache
	if cfg.ValkeyHost != "" {
		valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
		if err != nil {
			slog.Error("failed to connect to valkey", "error", err)
			os.Exit(1)
		}
		defer valkeyClient.Close()
		contentCache = cache.NewContentCache(valkeyClient, cache.DefaultListTTL)
		slog.Info("listing cache connected", "host", cfg.ValkeyHost)
	} else {
		slog.Warn("valkey not configured — listing cache disabled")
	}

	// Admin authentication: single credential pair, 7-day tokens.
	authSvc := auth.New(auth.Config{
		Username:     cfg.AdminUsername,
		Password:     cfg.AdminPassword,
		PasswordHash: cfg.AdminPasswordHash,
		TOTPSecret:   cfg.AdminTOTPSecret,
		JWTSecret:    []byte(cfg.JWTSecret),
	})

	// Create handler groups with their dependencies.
	production := !cfg.IsDev()
	authHandlers := handlers.NewAuth(authSvc, production)
	contentHandlers := handlers.NewContent(contentStore, contentCache)
	uploadHandlers := handlers.NewUpload(files)
	sectionHandlers := handlers.NewSections()

	// Set up the Chi router with all middleware and routes.
	r := router.New(authSvc, authHandlers, contentHandlers, uploadHandlers, sectionHandlers)

	// Create the HTTP server with sensible timeouts. WriteTimeout must
	// accommodate upload commits through the repository API, which can
	// take tens of seconds for large files.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second,
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
