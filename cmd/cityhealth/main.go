package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/cityhealth/directory/internal/config"
	"github.com/cityhealth/directory/internal/domain/intent"
	logpkg "github.com/cityhealth/directory/internal/logger"
	"github.com/cityhealth/directory/internal/metrics"
	"github.com/cityhealth/directory/internal/repository/pagecache"
	profilerepo "github.com/cityhealth/directory/internal/repository/profile"
	providerrepo "github.com/cityhealth/directory/internal/repository/provider"
	chiTransport "github.com/cityhealth/directory/internal/transport/chi"
	openaiChat "github.com/cityhealth/directory/internal/transport/openai"
	chatuc "github.com/cityhealth/directory/internal/usecase/chat"
	healthuc "github.com/cityhealth/directory/internal/usecase/health"
	searchuc "github.com/cityhealth/directory/internal/usecase/search"
	suggestionuc "github.com/cityhealth/directory/internal/usecase/suggestion"
	"github.com/cityhealth/directory/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting CityHealth API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("build_date", version.Date),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("cache_driver", cfg.Cache.Driver),
		zap.String("profiles_driver", cfg.Profiles.Driver),
	)

	ctx := context.Background()
	st, err := openStores(ctx, &cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open stores", zap.Error(err))
	}
	defer st.Close()

	metrics.RegisterServiceMetrics()

	// Repositories
	providers := providerrepo.New(st.docs)
	if err := providers.EnsureIndexes(ctx, st.indexer); err != nil {
		logger.Fatal("Failed to create provider indexes", zap.Error(err))
	}
	profiles := profilerepo.New(st.profiles)
	searchCfg := cfg.SearchSettings()
	pages := pagecache.New(st.kv, searchCfg.CacheTTL, searchCfg.CursorTTL, metrics.SearchCacheTotal, logger)

	// Use case services
	searchSvc := searchuc.New(providers, pages, profiles, searchCfg, logger)
	suggestionSvc := suggestionuc.New(providers, profiles, logger)

	healthSvc := healthuc.New(st.docs, st.kv, st.profiles)

	// Pass a nil interface, not a typed nil pointer, when the model is off.
	var responder chatuc.Responder
	if cfg.Chat.Model.Enabled {
		model := openaiChat.NewResponder(&openaiChat.Config{
			APIKey:      cfg.Chat.Model.APIKey,
			BaseURL:     cfg.Chat.Model.BaseURL,
			Model:       cfg.Chat.Model.Model,
			MaxTokens:   cfg.Chat.Model.MaxTokens,
			Temperature: cfg.Chat.Model.Temperature,
			Timeout:     time.Duration(cfg.Chat.Model.TimeoutSec) * time.Second,
			Logger:      logger,
		})
		responder = model
		healthSvc.WithModel(model)
		logger.Info("Chat model fallback enabled", zap.String("model", cfg.Chat.Model.Model))
	}
	chatSvc := chatuc.New(intent.NewClassifier(intent.DefaultLexicon()), searchSvc, responder, logger)

	// HTTP
	server := chiTransport.NewServer(searchSvc, suggestionSvc, chatSvc, healthSvc, logger).
		WithAllowedOrigins(cfg.HTTP.AllowedOrigins)
	limiter := chiTransport.NewRateLimiter(chiTransport.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		BurstSize:         cfg.RateLimit.Burst,
		IdleTTL:           time.Duration(cfg.RateLimit.IdleTTLSec) * time.Second,
	})

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Mount(r, limiter.Middleware)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}
