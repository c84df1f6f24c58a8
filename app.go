package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/dcode-github/realestate_console/cache"
	"github.com/dcode-github/realestate_console/catalog"
	"github.com/dcode-github/realestate_console/config"
	"github.com/dcode-github/realestate_console/controllers"
	"github.com/dcode-github/realestate_console/repositories"
	"github.com/dcode-github/realestate_console/routes"
	"github.com/dcode-github/realestate_console/services"
	"github.com/dcode-github/realestate_console/storage"
	"github.com/dcode-github/realestate_console/utils"
)

// loadConfig reads the environment and sets up logging.
func loadConfig() (*config.Config, error) {
	config.LoadEnv()
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	utils.InitLogger(appName, cfg.LogLevel)

	if cfg.JWTKey == "" {
		utils.Logger.Warn("JWT_KEY not set, using a random key; tokens will not survive a restart")
		cfg.JWTKey = uuid.NewString()
	}
	utils.SetJWTKey(cfg.JWTKey)
	return cfg, nil
}

func connect(cfg *config.Config) (*pgxpool.Pool, error) {
	pool, err := config.ConnectDB(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to the database: %w", err)
	}
	return pool, nil
}

// buildDeps wires repositories, storage and services into the route table.
func buildDeps(cfg *config.Config, pool *pgxpool.Pool, redisClient *redis.Client) routes.Deps {
	logger := utils.Logger

	tx := repositories.NewTransactor(pool)
	uploads := storage.NewUploads(cfg.UploadDir, logger.WithField("component", "uploads"))
	recalc := catalog.NewRecalculator(logger.WithField("component", "recalculator"))
	validate := utils.NewValidator()

	var store cache.Cache
	if redisClient != nil {
		store = cache.NewRedisCache(redisClient, logger.WithField("component", "cache"))
	} else {
		utils.Logger.Info("REDIS_ADDR not set, caching reads in process")
		store = cache.NewMemoryCache(cfg.CacheTTL)
	}

	return routes.Deps{
		Properties: services.NewPropertyService(tx, uploads, recalc, validate, services.PropertyServiceOptions{
			Compress:             cfg.Compress,
			RecalcPreviousCities: cfg.RecalcPreviousCities,
		}, logger.WithField("component", "properties")),
		Cities: services.NewCityService(tx, uploads, recalc, cfg.Compress, logger.WithField("component", "cities")),
		Leads: services.NewLeadService(
			repositories.NewEnquiryRepository(pool),
			repositories.NewVisitScheduleRepository(pool),
			repositories.NewSellingInfoRepository(pool),
			uploads, cfg.Compress, validate, logger.WithField("component", "leads"),
		),
		Auth:        services.NewAuthService(repositories.NewUserRepository(pool), logger.WithField("component", "auth")),
		Contact:     services.NewSendGridContactService(cfg.SendGridAPIKey, cfg.ContactFrom, cfg.ContactTo, validate, logger.WithField("component", "contact")),
		Cache:       controllers.ReadCache{Store: store, TTL: cfg.CacheTTL},
		UploadDir:   cfg.UploadDir,
		RequireAuth: cfg.RequireAuth,
	}
}
