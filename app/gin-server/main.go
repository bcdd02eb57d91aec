package main

import (
	"context"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/oakline/callbridge/config"
	"github.com/oakline/callbridge/internal/api/handlers"
	"github.com/oakline/callbridge/internal/api/middleware"
	"github.com/oakline/callbridge/internal/api/routes"
	"github.com/oakline/callbridge/internal/cache"
	"github.com/oakline/callbridge/internal/logger"
	"github.com/oakline/callbridge/internal/pipeline/pseudo"
	"github.com/oakline/callbridge/internal/pipeline/redact"
	"github.com/oakline/callbridge/internal/pipeline/sensitive"
	"github.com/oakline/callbridge/internal/providers/stt"
	mongorepo "github.com/oakline/callbridge/internal/repositories/mongo"
	pgrepo "github.com/oakline/callbridge/internal/repositories/postgres"
	"github.com/oakline/callbridge/internal/services"
	"github.com/oakline/callbridge/internal/storage"
)

func main() {
	_ = godotenv.Load()

	log := logger.New()
	ctx := context.Background()

	cfg, err := config.LoadPipeline()
	if err != nil {
		log.WithError(err).Fatal("pipeline config error")
	}

	if err := config.InitPostgres(); err != nil {
		log.WithError(err).Fatal("postgres init error")
	}
	log.Info("postgres connected")

	if err := config.InitRedis(); err != nil {
		log.WithError(err).Fatal("redis init error")
	}
	log.Info("redis connected")

	// Mongo only backs the raw delivery archive; the pipeline runs without it.
	var events mongorepo.EventLogRepository
	if err := config.InitMongo(); err != nil {
		log.WithError(err).Warn("mongo init error, event archive disabled")
	} else {
		log.Info("mongo connected")
		if err := config.EnsureMongoIndexes(); err != nil {
			log.WithError(err).Warn("mongo index setup failed")
		}
		events = mongorepo.NewEventLogRepo(config.MongoDatabase())
	}

	var sttProvider stt.Provider
	if sp, err := stt.NewGoogleSpeech(ctx, cfg.GCPCredentialsFile); err != nil {
		log.WithError(err).Warn("speech client unavailable, recording fallback disabled")
	} else {
		sttProvider = sp
		defer sp.Close()
	}

	var uploader storage.Uploader
	if cfg.TrainingBucket != "" {
		up, err := storage.NewGCSUploader(ctx, cfg.TrainingBucket, cfg.GCPCredentialsFile)
		if err != nil {
			log.WithError(err).Warn("gcs client unavailable, training export disabled")
		} else {
			uploader = up
		}
	}

	calls := pgrepo.NewCallRepo(config.PostgresDB)
	training := pgrepo.NewTrainingRepo(config.PostgresDB)
	businesses := pgrepo.NewBusinessRepo(config.PostgresDB)

	pseudoEng := pseudo.New(cfg.Salt)
	redactor := redact.New(pseudoEng)
	detector := sensitive.New(redactor)

	tenants := services.NewTenantService(businesses, cache.NewRedisCache(config.RedisClient), log)
	ingest := services.NewIngestService(services.IngestDeps{
		Calls:    calls,
		Training: training,
		Events:   events,
		Tenants:  tenants,
		Pseudo:   pseudoEng,
		Redactor: redactor,
		Detector: detector,
		STT:      sttProvider,
		Outputs:  cfg.StructuredOutputs,
		Logger:   log,
	})
	export := services.NewExportService(training, uploader, log)

	r := gin.New()
	r.Use(middleware.RequestLogger(log), gin.Recovery())

	routes.RegisterRoutes(r, routes.Deps{
		Webhook:       handlers.NewWebhookHandler(ingest, log),
		Events:        handlers.NewEventHandler(events),
		Export:        handlers.NewExportHandler(export),
		WebhookSecret: cfg.WebhookSecret,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.WithError(err).Fatal("server exited")
	}
}
