package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ballop/merchplan/internal/banlog"
	"github.com/ballop/merchplan/internal/blob"
	"github.com/ballop/merchplan/internal/catalog"
	"github.com/ballop/merchplan/internal/config"
	"github.com/ballop/merchplan/internal/engine"
	api "github.com/ballop/merchplan/internal/http"
	"github.com/ballop/merchplan/internal/http/handlers"
	rl "github.com/ballop/merchplan/internal/http/rate_limiter"
	"github.com/ballop/merchplan/internal/identity"
	"github.com/ballop/merchplan/internal/remote"
	"github.com/ballop/merchplan/internal/sku"
)

// @title Merch Planner API
// @version 1.0
// @description Catalog management API synced against a remote store, with local-only fallback.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	// An empty REDIS_ADDR means local-only mode: state lives in memory,
	// seeded from the static collection.
	var store remote.Store
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := rdb.Ping(ctx).Err(); err != nil {
			cancel()
			log.Fatalf("Could not connect to Redis: %v", err)
		}
		cancel()
		defer rdb.Close()
		store = remote.NewRedisStore(rdb, logger)
		banlog.SetRedis(rdb)
		go banlog.StartDailySummary(24 * time.Hour)
	} else {
		logger.Info("no remote store configured, running local-only")
	}

	var blobStore blob.Store
	if cfg.DatabaseURL != "" {
		db, err := blob.Connect(cfg.DatabaseURL)
		if err != nil {
			log.Fatal("❌ Could not connect to blob database:", err)
		}
		defer db.Close()
		blobStore = blob.NewPostgresStore(db, cfg.BaseURL)
	}

	state := engine.NewState()
	syncer := engine.New(store, state, logger)
	tokens := identity.NewTokens(cfg.AuthSecret, cfg.SessionTTL)
	gate := identity.NewGate(store, nil, logger)
	pipeline := catalog.NewService(store, state, blobStore, logger)
	allocator := sku.NewAllocator(store, logger)

	handlers.SetGate(gate)
	handlers.SetTokens(tokens)
	handlers.SetEngine(syncer)
	handlers.SetPipeline(pipeline)
	handlers.SetAllocator(allocator)
	handlers.SetBlobStore(blobStore)
	api.SetTokens(tokens)
	api.SetState(state)

	go rl.StartCleanupLoop()

	r := api.NewRouter()
	log.Println("✅ Server running on", cfg.HTTPAddr)
	if err := http.ListenAndServe(cfg.HTTPAddr, r); err != nil {
		log.Fatal(err)
	}
}
