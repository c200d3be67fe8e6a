package main

import (
	"context"
	"log"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"anoa.com/bragboard/internal/bootstrap"
	"anoa.com/bragboard/internal/config"
	"anoa.com/bragboard/internal/server"
	"anoa.com/bragboard/pkg/database"
	"anoa.com/bragboard/pkg/logger"
	"anoa.com/bragboard/pkg/storage"
	"github.com/meilisearch/meilisearch-go"
	"go.uber.org/zap"
	gormLogger "gorm.io/gorm/logger"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zapLog, err := logger.New(cfg.AppEnv)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = zapLog.Sync() }()
	zap.ReplaceGlobals(zapLog)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbLogLevel := gormLogger.Warn
	if cfg.IsDevelopment() {
		dbLogLevel = gormLogger.Info
	}
	db, err := database.Connect(database.Options{
		DatabaseURL: cfg.DatabaseURL,
		Host:        cfg.DBHost,
		User:        cfg.DBUser,
		Password:    cfg.DBPassword,
		Name:        cfg.DBName,
		Port:        cfg.DBPort,
		LogLevel:    dbLogLevel,
	})
	if err != nil {
		zapLog.Fatal("database connection failed", zap.Error(err))
	}
	if err := bootstrap.Migrate(db); err != nil {
		zapLog.Fatal("migration failed", zap.Error(err))
	}
	if err := bootstrap.SeedAdminUser(db, cfg.AdminEmail, cfg.AdminPassword, zapLog); err != nil {
		zapLog.Fatal("failed to seed admin user", zap.Error(err))
	}

	deps := server.Deps{DB: db}

	deps.Redis, err = database.ConnectRedis(ctx, cfg.RedisURL)
	if err != nil {
		zapLog.Fatal("redis connection failed", zap.Error(err))
	}
	if deps.Redis == nil {
		zapLog.Warn("REDIS_URL not set, using in-process rate limits and no live notifications")
	} else {
		defer func() { _ = deps.Redis.Close() }()
	}

	if cfg.MeiliSearchHost != "" {
		host := cfg.MeiliSearchHost
		if !strings.HasPrefix(host, "http") {
			host = "http://" + host + ":7700"
		}
		deps.Meili = meilisearch.New(host, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
	} else {
		zapLog.Warn("MEILISEARCH_HOST not set, search disabled")
	}

	if cfg.CloudinaryURL != "" || cfg.CloudinaryCloudName != "" {
		deps.Images, err = storage.NewCloudinaryStorage(cfg.CloudinaryURL, cfg.CloudinaryCloudName, cfg.CloudinaryUploadFolder)
		if err != nil {
			zapLog.Fatal("failed to initialize cloudinary storage", zap.Error(err))
		}
	} else {
		zapLog.Warn("cloudinary not configured, uploads disabled")
	}

	srv, err := server.NewServer(cfg, deps, zapLog)
	if err != nil {
		zapLog.Fatal("failed to build server", zap.Error(err))
	}

	if err := srv.Run(ctx, ":"+cfg.Port, shutdownTimeout); err != nil {
		zapLog.Fatal("server exited with error", zap.Error(err))
	}
	zapLog.Info("server stopped")
}
