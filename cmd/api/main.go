package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/tempo-go-api/internal/config"
	"github.com/noah-isme/tempo-go-api/internal/database"
	"github.com/noah-isme/tempo-go-api/internal/handler"
	"github.com/noah-isme/tempo-go-api/internal/middleware"
	"github.com/noah-isme/tempo-go-api/internal/models"
	"github.com/noah-isme/tempo-go-api/internal/repository"
	"github.com/noah-isme/tempo-go-api/internal/router"
	"github.com/noah-isme/tempo-go-api/internal/service"
	"github.com/noah-isme/tempo-go-api/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", cfg.AppName).Logger()

	db, err := openDatabase(cfg)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(models.All()...); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	} else {
		logger.Warn().Msg("redis disabled, metrics are computed on every request")
	}

	natsConn, err := database.ConnectNATS(cfg.NATSURL, cfg.AppName)
	if err != nil {
		log.Fatalf("failed to connect to nats: %v", err)
	}
	if natsConn != nil {
		defer natsConn.Close()
	}

	validate := utils.NewValidator()

	assignmentRepo := repository.NewAssignmentRepository(db)
	catalogueRepo := repository.NewCatalogueRepository(db)
	freeTextRepo := repository.NewFreeTextRepository(db)
	bondRepo := repository.NewBondRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)

	auditService := service.NewAuditService(auditRepo, logger)
	metricsService := service.NewMetricsService(assignmentRepo, redisClient, cfg.MetricsCacheTTL, logger)
	rosterService := service.NewRosterService(bondRepo, logger)
	catalogueService := service.NewCatalogueService(catalogueRepo, validate, auditService, logger)
	assignmentService := service.NewAssignmentService(
		assignmentRepo,
		catalogueRepo,
		freeTextRepo,
		validate,
		service.AssignmentHooks{
			Metrics: metricsService,
			Audit:   auditService,
			Events:  newGradeEvents(redisClient, natsConn, cfg, logger),
		},
		service.AssignmentServiceConfig{
			StrictQuestionOwnership: cfg.StrictQuestionOwnership,
			MaxWriteAttempts:        cfg.MaxWriteAttempts,
			SequenceDelimiter:       cfg.SequenceDelimiter,
		},
		logger,
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AssignmentHandler: handler.NewAssignmentHandler(assignmentService, rosterService, logger),
		SubmissionHandler: handler.NewSubmissionHandler(assignmentService, logger),
		ProgressHandler:   handler.NewProgressHandler(assignmentService, metricsService, rosterService, logger),
		CatalogueHandler:  handler.NewCatalogueHandler(catalogueService, logger),
		AuditHandler:      handler.NewAuditHandler(auditService, logger),
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
		HealthChecks:      healthChecks(db, redisClient, natsConn),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	logger.Info().Str("address", cfg.HTTPAddress()).Msg("server started")
	waitForShutdown(app)
}

func openDatabase(cfg config.Config) (*gorm.DB, error) {
	if cfg.UsesSQLite() {
		return database.ConnectSQLite(cfg.DatabaseURL)
	}
	return database.ConnectPostgres(cfg.DatabaseURL)
}

func healthChecks(db *gorm.DB, redisClient *redis.Client, natsConn *nats.Conn) map[string]handler.HealthChecker {
	checks := map[string]handler.HealthChecker{
		"database": func(context.Context) error {
			return database.Ping(db)
		},
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}
	if natsConn != nil {
		checks["nats"] = func(context.Context) error {
			if !natsConn.IsConnected() {
				return nats.ErrConnectionClosed
			}
			return nil
		}
	}
	return checks
}

func newGradeEvents(redisClient *redis.Client, natsConn *nats.Conn, cfg config.Config, logger zerolog.Logger) service.GradeEventPublisher {
	if redisClient == nil && natsConn == nil {
		return nil
	}
	return service.NewGradeEventPublisher(redisClient, cfg.EventsChannel, natsConn, logger)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
