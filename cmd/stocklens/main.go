package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/stocklens/stocklens/internal/api"
	"github.com/stocklens/stocklens/internal/browser"
	"github.com/stocklens/stocklens/internal/config"
	"github.com/stocklens/stocklens/internal/engine"
	"github.com/stocklens/stocklens/internal/extract"
	"github.com/stocklens/stocklens/internal/image"
	"github.com/stocklens/stocklens/internal/provider"
)

func main() {
	// Setup logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}

	// Reconfigure logging from config
	logger = slog.New(logHandler(cfg.Logging))
	slog.SetDefault(logger)

	// Extractors
	browserOpts := browser.DefaultOptions()
	browserOpts.Headless = cfg.Browser.Headless
	browserOpts.Timeout = cfg.Browser.Timeout
	browserOpts.ViewportWidth = cfg.Browser.ViewportWidth
	browserOpts.ViewportHeight = cfg.Browser.ViewportHeight
	browserOpts.Locale = cfg.Browser.Locale
	if cfg.Browser.UserAgent != "" {
		browserOpts.UserAgent = cfg.Browser.UserAgent
	}

	plain := extract.NewHTTPExtractor(cfg.Scraper.FetchLimit)
	rendered := extract.NewRenderedExtractor(browserOpts, cfg.Scraper.NavTimeout)

	// Image pipeline
	imageOpts := image.DefaultOptions()
	imageOpts.MaxBytes = cfg.Image.MaxBytes
	imageOpts.MaxWidth = cfg.Image.MaxWidth
	imageOpts.MaxHeight = cfg.Image.MaxHeight
	imageOpts.Quality = cfg.Image.Quality
	imageOpts.Timeout = cfg.Image.Timeout
	images := image.NewFetcher(imageOpts)

	scrapeEngine := engine.New(plain, rendered, images, cfg.Scraper.Timeout)

	// AI provider registry
	manager := provider.NewManager(
		cfg.Providers.ValidateTimeout,
		provider.NewOpenAI(cfg.Providers.OpenAIBaseURL, cfg.Providers.OpenAIModel, cfg.Providers.GenerateTimeout),
		provider.NewOpenRouter(cfg.Providers.OpenRouterBaseURL, cfg.Providers.OpenRouterModel, cfg.Providers.GenerateTimeout),
		provider.NewAnthropic(cfg.Providers.AnthropicBaseURL, cfg.Providers.AnthropicModel, cfg.Providers.GenerateTimeout),
		provider.NewGemini(cfg.Providers.GeminiBaseURL, cfg.Providers.GeminiModel, cfg.Providers.GenerateTimeout),
	)

	handlers := api.NewHandlers(scrapeEngine, manager, logger)

	// Setup Chi router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(90 * time.Second))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "https://localhost:*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", handlers.Health)

	// API Routes
	r.Route("/api", func(r chi.Router) {
		r.Post("/scrape", handlers.Scrape)
		r.Post("/generate", handlers.Generate)
		r.Post("/validate-key", handlers.ValidateKey)
		r.Get("/platforms", handlers.ListPlatforms)
		r.Get("/providers", handlers.ListProviders)
	})

	// Start server
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down server...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", "error", err)
		}
	}()

	logger.Info("server starting", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func logHandler(cfg config.LoggingConfig) slog.Handler {
	opts := &slog.HandlerOptions{Level: logLevel(cfg.Level)}
	if cfg.Format == "text" {
		return slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.NewJSONHandler(os.Stdout, opts)
}

func logLevel(s string) slog.Level {
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
