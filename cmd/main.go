package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/ekovalev/wordweave/internal/cache/redis"
	"github.com/ekovalev/wordweave/internal/config"
	"github.com/ekovalev/wordweave/internal/domain"
	"github.com/ekovalev/wordweave/internal/http"
	"github.com/ekovalev/wordweave/internal/http/middleware"
	"github.com/ekovalev/wordweave/internal/observability"
	"github.com/ekovalev/wordweave/internal/openrouter"
)

const shutdownTimeout = 10 * time.Second

func main() {
	container := buildContainer()

	// Depending on the logger here forces its initialization before the
	// server starts; dig only runs providers something consumes.
	err := container.Invoke(func(logger *zap.Logger, server *http.Server) {
		defer func() { _ = logger.Sync() }()

		go func() {
			if startErr := server.Start(); startErr != nil {
				log.Fatalf("Server failed to start: %v", startErr)
			}
		}()

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		<-stop

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if shutdownErr := server.Shutdown(ctx); shutdownErr != nil {
			log.Printf("Shutdown failed: %v", shutdownErr)
		}
	})
	if err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}
}

func buildContainer() *dig.Container {
	container := dig.New()

	// Configuration
	if err := container.Provide(config.Load); err != nil {
		log.Fatalf("Failed to provide config: %v", err)
	}
	if err := container.Provide(config.ParseDependenciesConfig); err != nil {
		log.Fatalf("Failed to provide config dependencies: %v", err)
	}

	// Observability
	if err := container.Provide(observability.InitLogger); err != nil {
		log.Fatalf("Failed to provide logger: %v", err)
	}
	if err := container.Provide(func() *observability.EventBus {
		return observability.NewEventBus(slog.Default())
	}); err != nil {
		log.Fatalf("Failed to provide event bus: %v", err)
	}

	// OpenRouter transport
	if err := container.Provide(func(cfg *openrouter.Config, events *observability.EventBus) (*openrouter.Client, error) {
		return openrouter.NewClient(*cfg, events)
	}); err != nil {
		log.Fatalf("Failed to provide OpenRouter client: %v", err)
	}

	// Suggestion cache (optional; disabled without a Redis address)
	if err := container.Provide(func(cfg *config.CacheConfig) domain.SuggestionCache {
		if cfg.RedisAddr == "" {
			log.Println("REDIS_ADDR not set, suggestion cache disabled")
			return nil
		}

		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})

		return redis.NewSuggestionCache(client)
	}); err != nil {
		log.Fatalf("Failed to provide suggestion cache: %v", err)
	}

	// Domain Services
	if err := container.Provide(func(
		client *openrouter.Client,
		cache domain.SuggestionCache,
		cacheCfg *config.CacheConfig,
	) *domain.GenerationService {
		ttl := time.Duration(cacheCfg.TTLSeconds) * time.Second
		return domain.NewGenerationService(client, cache, ttl)
	}); err != nil {
		log.Fatalf("Failed to provide generation service: %v", err)
	}

	// HTTP Layer
	if err := container.Provide(func(service *domain.GenerationService) *http.Handler {
		return http.NewHandler(service)
	}); err != nil {
		log.Fatalf("Failed to provide HTTP handler: %v", err)
	}
	if err := container.Provide(middleware.BuildMiddlewareChain); err != nil {
		log.Fatalf("Failed to provide middleware chain: %v", err)
	}
	if err := container.Provide(http.NewServer); err != nil {
		log.Fatalf("Failed to provide HTTP server: %v", err)
	}

	return container
}
