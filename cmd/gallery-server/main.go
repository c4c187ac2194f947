// Command gallery-server serves the Pixabay image search gallery.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Sternrassler/pixabay-gallery/pkg/cache"
	"github.com/Sternrassler/pixabay-gallery/pkg/logging"
	"github.com/Sternrassler/pixabay-gallery/pkg/pixabay"
	"github.com/Sternrassler/pixabay-gallery/pkg/ratelimit"
	"github.com/Sternrassler/pixabay-gallery/pkg/widget"
)

const purgeInterval = 10 * time.Minute

// serverConfig is read from the environment.
type serverConfig struct {
	Port        string
	APIKey      string
	BaseURL     string
	RedisURL    string
	CacheDB     string
	LogLevel    string
	LogPretty   bool
	HTTPTimeout time.Duration
}

func loadConfig() serverConfig {
	pretty, _ := strconv.ParseBool(getEnv("LOG_PRETTY", "false"))
	timeout, err := time.ParseDuration(getEnv("HTTP_TIMEOUT", "30s"))
	if err != nil || timeout <= 0 {
		timeout = 30 * time.Second
	}

	return serverConfig{
		Port:        getEnv("PORT", "8080"),
		APIKey:      getEnv("PIXABAY_API_KEY", ""),
		BaseURL:     getEnv("PIXABAY_BASE_URL", pixabay.DefaultBaseURL),
		RedisURL:    getEnv("REDIS_URL", ""),
		CacheDB:     getEnv("CACHE_DB", "gallery-cache.db"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogPretty:   pretty,
		HTTPTimeout: timeout,
	}
}

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg := loadConfig()

	logCfg := logging.DefaultConfig()
	logCfg.Level = logging.LogLevel(cfg.LogLevel)
	logCfg.Pretty = cfg.LogPretty
	logger := logging.Setup(logCfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open response cache")
	}
	defer closeStore()

	clientCfg := pixabay.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL
	clientCfg.HTTPTimeout = cfg.HTTPTimeout
	clientCfg.Cache = cache.NewManager(store)

	client, err := pixabay.New(clientCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Pixabay client")
	}

	limiter := ratelimit.NewLimiter(ratelimit.MinInterval, logging.NewLogger("ratelimit"))
	registry := widget.NewRegistry(widget.DefaultRegistryConfig(), client, limiter, logging.NewLogger("widget"))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newServer(registry, store, logging.NewLogger("http")).routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("Shutdown failed")
		}
	}()

	logger.Info().
		Str("addr", srv.Addr).
		Str("cache", store.Name()).
		Dur("min_interval", limiter.Interval()).
		Msg("Starting gallery server")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Server failed")
	}
}

// openStore picks the response cache backend: Redis when REDIS_URL is set,
// the SQLite file at CACHE_DB otherwise.
func openStore(ctx context.Context, cfg serverConfig, logger zerolog.Logger) (cache.Store, func(), error) {
	if cfg.RedisURL != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisURL})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			redisClient.Close()
			return nil, nil, fmt.Errorf("connect to redis at %s: %w", cfg.RedisURL, err)
		}
		logger.Info().Str("addr", cfg.RedisURL).Msg("Connected to Redis")
		return cache.NewRedisStore(redisClient), func() { redisClient.Close() }, nil
	}

	store, err := cache.OpenSQLite(cfg.CacheDB, logging.NewLogger("cache"))
	if err != nil {
		return nil, nil, err
	}
	go store.RunPurger(ctx, purgeInterval)
	logger.Info().Str("path", cfg.CacheDB).Msg("Using SQLite response cache")
	return store, func() { store.Close() }, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
