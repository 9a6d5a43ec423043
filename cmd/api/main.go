package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fieldstock-api/internal/ai"
	"fieldstock-api/internal/cache"
	"fieldstock-api/internal/config"
	"fieldstock-api/internal/handler"
	"fieldstock-api/internal/middleware"
	"fieldstock-api/internal/repository"
	"fieldstock-api/internal/router"
	"fieldstock-api/internal/service"
	"fieldstock-api/pkg/secret"

	"github.com/redis/go-redis/v9"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting FieldStock API...")

	// Load configuration
	cfg := config.MustLoad()
	log.Printf("Environment: %s", cfg.App.Environment)

	// Initialize item repository based on config
	var itemRepo repository.ItemRepository
	switch cfg.ItemDB.Type {
	case "mongodb", "mongo":
		mongoRepo, err := repository.NewMongoDBItemRepository(
			cfg.ItemDB.MongoURI,
			cfg.ItemDB.MongoDatabase,
			cfg.ItemDB.MongoCollection,
		)
		if err != nil {
			log.Fatalf("Failed to initialize MongoDB: %v", err)
		}
		defer mongoRepo.Close()
		itemRepo = mongoRepo
		log.Println("MongoDB item repository initialized")
	case "postgres", "postgresql":
		pgRepo, err := repository.NewPostgresItemRepository(cfg.ItemDB.PostgresDSN())
		if err != nil {
			log.Fatalf("Failed to initialize PostgreSQL: %v", err)
		}
		defer pgRepo.Close()
		itemRepo = pgRepo
		log.Println("PostgreSQL item repository initialized")
	case "mysql":
		myRepo, err := repository.NewMySQLItemRepository(cfg.ItemDB.MySQLDSN())
		if err != nil {
			log.Fatalf("Failed to initialize MySQL: %v", err)
		}
		defer myRepo.Close()
		itemRepo = myRepo
		log.Println("MySQL item repository initialized")
	default: // sqlite
		sqliteRepo, err := repository.NewSQLiteItemRepository(cfg.ItemDB.Path)
		if err != nil {
			log.Fatalf("Failed to initialize SQLite: %v", err)
		}
		defer sqliteRepo.Close()
		itemRepo = sqliteRepo
		log.Println("SQLite item repository initialized")
	}

	// Vault and time tracker always live in local SQLite
	vaultRepo, err := repository.NewSQLiteVaultRepository(cfg.Vault.Path)
	if err != nil {
		log.Fatalf("Failed to initialize vault store: %v", err)
	}
	defer vaultRepo.Close()

	timeRepo, err := repository.NewSQLiteTimeEntryRepository(cfg.ItemDB.Path)
	if err != nil {
		log.Fatalf("Failed to initialize time tracker store: %v", err)
	}
	defer timeRepo.Close()

	// Import audit log follows the item store's backend choice
	var logRepo repository.ImportLogRepository
	if cfg.ItemDB.Type == "mongodb" || cfg.ItemDB.Type == "mongo" {
		logRepo, err = repository.NewMongoDBImportLogRepository(
			cfg.ItemDB.MongoURI, cfg.ItemDB.MongoDatabase, "import_logs")
	} else {
		logRepo, err = repository.NewSQLiteImportLogRepository(cfg.ItemDB.Path)
	}
	if err != nil {
		log.Printf("Warning: import log store unavailable: %v", err)
		logRepo = nil
	} else {
		defer logRepo.Close()
	}

	// Initialize Redis client
	redisAddr := cfg.Cache.RedisAddress()
	redisClient := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: cfg.Cache.RedisPassword,
		DB:       cfg.Cache.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("Warning: Redis connection failed: %v", err)
		redisClient = nil
	} else {
		log.Println("Redis client initialized")
	}
	cancel()

	// Initialize Redis sync buffer
	var syncBuffer *cache.RedisSyncBuffer
	if redisClient != nil {
		bufferCfg := cache.RedisBufferConfig{
			Addr:          redisAddr,
			Password:      cfg.Cache.RedisPassword,
			DB:            cfg.Cache.RedisDB,
			FlushInterval: 30 * time.Second,
		}
		flushFunc := service.CreateFlushFunc(itemRepo)
		syncBuffer, err = cache.NewRedisSyncBuffer(bufferCfg, flushFunc)
		if err != nil {
			log.Printf("Warning: Redis sync buffer initialization failed: %v", err)
		} else {
			log.Println("Redis sync buffer initialized")
		}
	}

	// List cache for item reads
	listCache := cache.NewMemoryCache()
	defer listCache.Close()

	// Initialize services
	inventoryService := service.NewInventoryService(itemRepo, logRepo, listCache, cfg.Cache.TTL)
	if syncBuffer != nil {
		inventoryService.SetBuffer(syncBuffer)
	}

	var extractor ai.Extractor
	if cfg.AI.GeminiAPIKey != "" {
		gem, err := ai.NewGeminiExtractor(context.Background(), cfg.AI.GeminiAPIKey, cfg.AI.Model)
		if err != nil {
			log.Printf("Warning: AI extractor initialization failed: %v", err)
		} else {
			defer gem.Close()
			extractor = gem
			log.Println("Gemini invoice extractor initialized")
		}
	} else {
		log.Println("GEMINI_API_KEY not set, invoice imports disabled")
	}

	importService := service.NewImportService(itemRepo, logRepo, extractor, inventoryService)

	var vaultService *service.VaultService
	if cfg.Vault.EncryptionKey != "" {
		box, err := secret.NewBox(cfg.Vault.EncryptionKey)
		if err != nil {
			log.Fatalf("Invalid VAULT_ENCRYPTION_KEY: %v", err)
		}
		vaultService = service.NewVaultService(vaultRepo, box)
		log.Println("Vault service initialized")
	} else {
		log.Println("VAULT_ENCRYPTION_KEY not set, vault disabled")
	}

	timeService := service.NewTimeTrackerService(timeRepo)

	var tokenService *service.TokenService
	if redisClient != nil {
		tokenService = service.NewTokenService(redisClient)
	}

	// Background import log retention
	var cleanup *service.CleanupScheduler
	if logRepo != nil {
		cleanup = service.NewCleanupScheduler(logRepo, service.CleanupConfig{
			RetentionAge:    cfg.Retention.ImportLogAge,
			CleanupInterval: cfg.Retention.CleanupInterval,
		})
		cleanup.Start()
		defer cleanup.Stop()
	}

	// Initialize handlers
	healthHandler := handler.New(itemRepo)
	inventoryHandler := handler.NewInventoryHandler(inventoryService)
	importHandler := handler.NewImportHandler(importService, cfg.Import.MaxFileSize)
	adminHandler := handler.NewAdminHandler(syncBuffer, itemRepo, cleanup, cfg.ItemDB.Type)
	timeHandler := handler.NewTimeTrackerHandler(timeService)

	var vaultHandler *handler.VaultHandler
	if vaultService != nil {
		vaultHandler = handler.NewVaultHandler(vaultService)
	}

	var authHandler *handler.AuthHandler
	if tokenService != nil {
		authHandler = handler.NewAuthHandler(tokenService, cfg.App.APIKey)
	}

	// Create auth middleware with injected dependencies (NO GLOBALS!)
	authMiddleware := middleware.NewAuthMiddleware(middleware.AuthConfig{
		TokenService: tokenService,
	})

	// Create router
	r := router.New(router.Config{
		Handler:            healthHandler,
		InventoryHandler:   inventoryHandler,
		ImportHandler:      importHandler,
		VaultHandler:       vaultHandler,
		TimeTrackerHandler: timeHandler,
		AdminHandler:       adminHandler,
		AuthHandler:        authHandler,
		AuthMiddleware:     authMiddleware,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server listening on %s", cfg.Server.Address())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel = context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Close sync buffer first (flushes pending writes)
	if syncBuffer != nil {
		log.Println("Closing Redis sync buffer...")
		syncBuffer.Close()
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
	fmt.Println("Goodbye!")
}
