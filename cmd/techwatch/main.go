package main

import (
	"context"
	"log"

	"go.uber.org/zap"

	"github.com/yapa-dev/techwatch/internal/config"
	"github.com/yapa-dev/techwatch/internal/gemini"
	"github.com/yapa-dev/techwatch/internal/mailer"
	"github.com/yapa-dev/techwatch/internal/metrics"
	"github.com/yapa-dev/techwatch/internal/notion"
	"github.com/yapa-dev/techwatch/internal/prompt"
	"github.com/yapa-dev/techwatch/internal/retry"
	"github.com/yapa-dev/techwatch/internal/server"
	"github.com/yapa-dev/techwatch/internal/workflow"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		for _, e := range errs {
			log.Printf("config error: %v", e)
		}
		log.Fatal("invalid configuration")
	}

	logger, err := newLogger(cfg.DevLogging)
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	metrics.Init("techwatch", version, "production")

	notionClient, err := notion.NewClient(notion.Config{
		BaseURL:      cfg.NotionBaseURL,
		Token:        cfg.NotionToken,
		Version:      cfg.NotionVersion,
		RateLimitRPS: cfg.NotionRateLimitRPS,
	})
	if err != nil {
		logger.Fatal("notion client error", zap.Error(err))
	}

	generator, err := gemini.New(context.Background(), gemini.Config{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		BaseURL: cfg.GeminiBaseURL,
	})
	if err != nil {
		logger.Fatal("gemini client error", zap.Error(err))
	}

	smtp, err := mailer.NewSMTP(mailer.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.EmailUser,
		Password: cfg.EmailPass,
	})
	if err != nil {
		logger.Fatal("mailer error", zap.Error(err))
	}

	prompts, err := prompt.Load(cfg.PromptConfigPath)
	if err != nil {
		logger.Fatal("prompt config error", zap.Error(err))
	}

	wf := workflow.New(notionClient, generator, smtp, prompts, logger, workflow.Options{
		StatusFilter: cfg.StatusFilter,
		Retry: retry.Options{
			Attempts: cfg.RetryMaxAttempts,
			Delay:    cfg.RetryDelay,
		},
	})

	handler := server.NewHandler(notionClient, wf, logger)
	router := server.NewRouter(handler)

	logger.Info("server starting",
		zap.String("port", cfg.Port),
		zap.String("gemini_model", generator.Model()),
		zap.Int("retry_max_attempts", cfg.RetryMaxAttempts),
		zap.Duration("retry_delay", cfg.RetryDelay),
	)
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
