package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"rentfair/server/config"
	"rentfair/server/internal/amenity"
	"rentfair/server/internal/api"
	"rentfair/server/internal/database"
	"rentfair/server/internal/estimator"
	"rentfair/server/internal/geocoding"
	"rentfair/server/internal/market"
	"rentfair/server/internal/scheduler"
	"rentfair/server/internal/session"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	// Optional .env for local development
	godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	// The model is the one dependency the service cannot run without.
	model, err := estimator.LoadModel(cfg.Data.ModelPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load price model")
	}
	logger.WithFields(logrus.Fields{
		"version": model.Version(),
		"schema":  model.SchemaID(),
	}).Info("Loaded price model")

	// Build the market average table from the listing files. Missing files
	// only cost their region's baseline.
	table := market.NewTable(logger, cfg.Data.GroupByCity)
	if err := table.Build(cfg.Data.ListingDir, config.ListingFiles()); err != nil {
		logger.WithError(err).Fatal("Failed to build market average table")
	}

	if cfg.Data.RefreshIntervalHours > 0 {
		refresh := scheduler.NewScheduler(table, logger,
			time.Duration(cfg.Data.RefreshIntervalHours)*time.Hour,
			cfg.Data.ListingDir, config.ListingFiles())
		refresh.Start()
		defer refresh.Stop()
	}

	est, err := estimator.New(model, table, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize estimator")
	}

	db, err := database.NewDatabase(cfg.Data.DatabasePath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	logger.Info("Running database migrations...")
	if err := db.RunMigrations(); err != nil {
		logger.WithError(err).Fatal("Failed to run database migrations")
	}

	cacheDir := filepath.Join(os.TempDir(), "rentfair", "geocode_cache")
	geocoder := geocoding.NewGeocoder(logger, cacheDir, geocoding.Options{
		BaseURL:     cfg.Geocoding.BaseURL,
		Timeout:     time.Duration(cfg.Geocoding.TimeoutSeconds) * time.Second,
		MinInterval: time.Duration(cfg.Geocoding.MinIntervalMillis) * time.Millisecond,
	})

	amenityClient := amenity.NewClient(logger, amenity.Options{
		BaseURL: cfg.Amenity.BaseURL,
		Timeout: time.Duration(cfg.Amenity.TimeoutSeconds) * time.Second,
	})
	fetcher := amenity.NewFetcher(amenityClient, logger, cfg.Amenity.FetchWorkers, cfg.Amenity.PerCategoryLimit)

	sessions := session.NewManager(logger, 0)

	handler := api.NewHandler(logger, sessions, est, geocoder, fetcher, table, db, cfg.Amenity.TotalLimit)

	router := gin.Default()
	api.SetupRoutes(router, handler, cfg.Server.CORSOrigins)

	logger.Infof("Starting server on port %s", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		logger.WithError(err).Fatal("Server failed to start")
	}
}
