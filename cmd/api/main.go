package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/peopledesk/peopledesk-backend/api/controllers"
	"github.com/peopledesk/peopledesk-backend/api/routes"
	internalauth "github.com/peopledesk/peopledesk-backend/internal/auth"
	"github.com/peopledesk/peopledesk-backend/internal/blobs"
	"github.com/peopledesk/peopledesk-backend/internal/directory"
	"github.com/peopledesk/peopledesk-backend/pkg/config"
	"github.com/peopledesk/peopledesk-backend/pkg/db"
	"github.com/peopledesk/peopledesk-backend/pkg/logger"
	"github.com/peopledesk/peopledesk-backend/pkg/metrics"
	"github.com/peopledesk/peopledesk-backend/pkg/migrate"
	"github.com/peopledesk/peopledesk-backend/pkg/redis"
	"github.com/peopledesk/peopledesk-backend/pkg/storage"
	"github.com/peopledesk/peopledesk-backend/pkg/storage/gcs"
	"github.com/peopledesk/peopledesk-backend/pkg/storage/memory"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	readyChecks := map[string]controllers.Pinger{"postgres": dbClient}

	// Redis backs the auth rate limiter. Dev deployments may run without
	// it; the limiter middleware degrades to pass-through.
	var redisClient *redis.Client
	if cfg.Redis.URL != "" || cfg.Redis.Address != "" {
		redisClient, err = redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		readyChecks["redis"] = redisClient
	} else if !cfg.App.IsDev() {
		logg.Error(context.Background(), "redis is required outside dev", nil)
		os.Exit(1)
	}

	var store storage.ObjectStore
	if cfg.GCS.BucketName != "" {
		gcsClient, err := gcs.NewClient(context.Background(), cfg.GCS, cfg.GCP, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap gcs", err)
			os.Exit(1)
		}
		store = gcsClient
		readyChecks["gcs"] = gcsClient
	} else if cfg.App.IsDev() {
		logg.Warn(context.Background(), "no gcs bucket configured, using in-memory blob store")
		store = memory.NewStore()
	} else {
		logg.Error(context.Background(), "a gcs bucket is required outside dev", nil)
		os.Exit(1)
	}

	dirRepo := directory.NewRepository(dbClient.DB())
	blobRepo := blobs.NewRepository(dbClient.DB())

	blobService, err := blobs.NewService(blobRepo, store, dirRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create blob service", err)
		os.Exit(1)
	}

	directoryService, err := directory.NewService(directory.Params{
		Repo:     dirRepo,
		Purger:   blobService,
		Logger:   logg,
		Password: cfg.Password,
		Avatar:   cfg.Avatar,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create directory service", err)
		os.Exit(1)
	}

	authService, err := internalauth.NewService(internalauth.ServiceParams{
		Users:     dirRepo,
		Directory: directoryService,
		JWTConfig: cfg.JWT,
		Logger:    logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:      cfg,
			Logger:      logg,
			Redis:       redisClient,
			Metrics:     metrics.NewHTTPMetrics(),
			Auth:        authService,
			Directory:   directoryService,
			Blobs:       blobService,
			ReadyChecks: readyChecks,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
