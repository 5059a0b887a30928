package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/kodelab-api/internal/config"
	"github.com/noah-isme/kodelab-api/internal/database"
	"github.com/noah-isme/kodelab-api/internal/handler"
	"github.com/noah-isme/kodelab-api/internal/middleware"
	"github.com/noah-isme/kodelab-api/internal/models"
	"github.com/noah-isme/kodelab-api/internal/repository"
	"github.com/noah-isme/kodelab-api/internal/router"
	"github.com/noah-isme/kodelab-api/internal/service"
	"github.com/noah-isme/kodelab-api/pkg/ai"
	"github.com/noah-isme/kodelab-api/pkg/judge"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.ClassGroup{},
		&models.Student{},
		&models.ExamSession{},
		&models.SessionTask{},
		&models.TaskTestCase{},
		&models.StudentSession{},
		&models.TaskProgress{},
		&models.Submission{},
		&models.HintRecord{},
		&models.ActivityEvent{},
		&models.ActivityAggregate{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	natsConn, err := database.ConnectNATS(cfg.NATSURL)
	if err != nil {
		log.Fatalf("failed to connect to nats: %v", err)
	}
	if natsConn != nil {
		defer natsConn.Close()
	}

	judgeClient, err := judge.NewJudge0Client(judge.Config{
		BaseURL:      cfg.JudgeBaseURL,
		APIKey:       cfg.JudgeAPIKey,
		APIHost:      cfg.JudgeAPIHost,
		LanguageID:   cfg.JudgeLanguageID,
		Timeout:      cfg.JudgeTimeout,
		PollInterval: cfg.JudgePollInterval,
		Logger:       logger,
	})
	if err != nil {
		log.Fatalf("failed to create judge client: %v", err)
	}

	hintGenerator := buildHintGenerator(cfg, logger)

	validate := validator.New(validator.WithRequiredStructEnabled())

	studentRepo := repository.NewStudentRepository(db)
	sessionRepo := repository.NewExamSessionRepository(db)
	studentSessionRepo := repository.NewStudentSessionRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	hintRepo := repository.NewHintRepository(db)
	activityRepo := repository.NewActivityRepository(db)

	authService := service.NewAuthService(studentRepo, validate, logger, service.AuthConfig{
		JWTSecret: cfg.JWTSecret,
		TokenTTL:  cfg.JWTTokenTTL,
	})
	activityService := service.NewActivityService(activityRepo, sessionRepo, studentSessionRepo, progressRepo, natsConn, "kodelab.activity", validate, logger)
	sessionService := service.NewSessionService(sessionRepo, studentSessionRepo, progressRepo, redisClient, cfg.SessionCacheTTL, logger)
	taskService := service.NewTaskService(sessionRepo, studentSessionRepo, progressRepo, activityService, logger)
	submissionService := service.NewSubmissionService(sessionRepo, studentSessionRepo, progressRepo, judgeClient, activityService, validate, logger, service.SubmissionConfig{
		Cooldown: cfg.SubmitCooldown,
	})
	hintService := service.NewHintService(sessionRepo, studentSessionRepo, progressRepo, hintRepo, activityRepo, hintGenerator, logger, service.HintConfig{
		Timeout: cfg.HintTimeout,
	})

	authHandler := handler.NewAuthHandler(authService, logger)
	sessionHandler := handler.NewSessionHandler(sessionService, logger)
	taskHandler := handler.NewTaskHandler(taskService, logger)
	submissionHandler := handler.NewSubmissionHandler(submissionService, logger)
	hintHandler := handler.NewHintHandler(hintService, logger)
	activityHandler := handler.NewActivityHandler(activityService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:       authHandler,
		SessionHandler:    sessionHandler,
		TaskHandler:       taskHandler,
		SubmissionHandler: submissionHandler,
		HintHandler:       hintHandler,
		ActivityHandler:   activityHandler,
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
		SubmitLimiter:     middleware.RateLimit("submit", 6, time.Minute),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

// buildHintGenerator selects the hint provider from configuration. A missing
// or misconfigured provider degrades to nil: hints then fail with an audit
// record instead of blocking startup.
func buildHintGenerator(cfg config.Config, logger zerolog.Logger) ai.HintGenerator {
	switch cfg.AIProvider {
	case "openai":
		generator, err := ai.NewOpenAIHintGenerator(ai.OpenAIConfig{
			APIKey:    cfg.OpenAIAPIKey,
			Model:     cfg.HintModel,
			MaxTokens: cfg.HintMaxTokens,
			Logger:    logger,
		})
		if err != nil {
			logger.Warn().Err(err).Msg("openai hint generator disabled")
			return nil
		}
		return generator
	case "anthropic":
		generator, err := ai.NewAnthropicHintGenerator(ai.AnthropicConfig{
			APIKey: cfg.AnthropicAPIKey,
			Model:  cfg.HintModel,
		})
		if err != nil {
			logger.Warn().Err(err).Msg("anthropic hint generator disabled")
			return nil
		}
		return generator
	default:
		logger.Warn().Str("provider", cfg.AIProvider).Msg("unknown hint provider, hints disabled")
		return nil
	}
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
