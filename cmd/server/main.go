package main

import (
	"log"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"snipnet/internal/config"
	"snipnet/internal/db"
	"snipnet/internal/handlers"
	"snipnet/internal/router"
	"snipnet/internal/services"
	"snipnet/internal/utils"
)

func main() {
	// .env 不存在也没关系，生产环境直接用环境变量
	_ = godotenv.Load()

	cfg := config.Load()

	conn, err := db.Init(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database init failed: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer logger.Sync()

	search := services.NewSearchService(cfg.SearchAppID, cfg.SearchAdminKey, logger)
	if !search.Enabled() {
		logger.Warn("search index credentials not set, mirroring disabled")
	}

	var storage *services.FileStorage
	if cfg.MinioEndpoint != "" {
		storage, err = services.NewFileStorage(cfg.MinioEndpoint, cfg.MinioPublicURL,
			cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, logger)
		if err != nil {
			log.Fatalf("object storage init failed: %v", err)
		}
	} else {
		logger.Warn("object storage not configured, uploads disabled")
	}

	cache, err := utils.NewCache(1024)
	if err != nil {
		log.Fatalf("cache init failed: %v", err)
	}

	ledger := services.NewLedger(conn)
	notifier := services.NewNotifier(conn, logger)

	r := router.New(router.Handlers{
		Auth:       handlers.NewAuthHandler(conn, search, cfg.JWTSecret, cfg.JWTExpiration),
		Feed:       handlers.NewFeedHandler(conn, ledger, search),
		Engagement: handlers.NewEngagementHandler(ledger),
		Comment:    handlers.NewCommentHandler(conn, ledger, notifier),
		Saved:      handlers.NewSavedHandler(conn),
		Profile:    handlers.NewProfileHandler(conn, search, storage, cache),
		Sync:       handlers.NewSyncHandler(conn, search),
	}, cfg.JWTSecret, cfg.CORSOrigins)

	log.Printf("listening on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
