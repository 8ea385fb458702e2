package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel"

	"github.com/vladimiradmaev/glycocare/internal/api"
	"github.com/vladimiradmaev/glycocare/internal/auth"
	"github.com/vladimiradmaev/glycocare/internal/bot"
	"github.com/vladimiradmaev/glycocare/internal/bot/state"
	"github.com/vladimiradmaev/glycocare/internal/config"
	"github.com/vladimiradmaev/glycocare/internal/database"
	"github.com/vladimiradmaev/glycocare/internal/domain"
	"github.com/vladimiradmaev/glycocare/internal/inference"
	"github.com/vladimiradmaev/glycocare/internal/interfaces"
	"github.com/vladimiradmaev/glycocare/internal/logger"
	"github.com/vladimiradmaev/glycocare/internal/pipeline"
	"github.com/vladimiradmaev/glycocare/internal/realtime"
	"github.com/vladimiradmaev/glycocare/internal/repository"
	"github.com/vladimiradmaev/glycocare/internal/services"
	"github.com/vladimiradmaev/glycocare/internal/storage"
	"github.com/vladimiradmaev/glycocare/internal/telemetry"
)

func main() {
	if err := run(); err != nil {
		logger.Error("GlycoCare stopped with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "Warning: .env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.InitWithConfig(logger.Config{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	}); err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	logger.Info("Starting GlycoCare")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("Failed to flush traces", "error", err)
		}
	}()

	db, err := database.NewPostgresDB(cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	logger.Info("Database connection established and migrations completed")

	pool, err := repository.NewPool(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer pool.Close()

	users := repository.NewUserRepository(db)
	chats := repository.NewChatRepository(db)
	series := repository.NewTimeSeriesRepository(pool)

	hf := inference.NewHuggingFaceClient(inference.HuggingFaceConfig{
		Token:         cfg.Inference.HuggingFaceToken,
		ClassifierURL: cfg.Inference.ClassifierURL,
		PortionURL:    cfg.Inference.PortionURL,
		RegressionURL: cfg.Inference.RegressionURL,
	}, &http.Client{})

	var classifier domain.Classifier = hf
	if cfg.Inference.Backend == config.BackendRekognition {
		classifier, err = inference.NewRekognitionClassifierFromRegion(ctx, cfg.AWS.Region)
		if err != nil {
			return err
		}
	}
	logger.Info("Classifier configured", "backend", cfg.Inference.Backend)

	analyzer := pipeline.New(classifier, hf, hf,
		pipeline.WithCallTimeout(cfg.Inference.CallTimeout),
		pipeline.WithTracer(otel.Tracer("github.com/vladimiradmaev/glycocare/pipeline")),
	)

	hub := realtime.NewHub()
	mealOpts := []services.MealAnalysisOption{services.WithEventPublisher(hub)}
	if cfg.AWS.S3Bucket != "" {
		archive, err := storage.NewS3ArchiveFromRegion(ctx, cfg.AWS.Region, cfg.AWS.S3Bucket)
		if err != nil {
			return err
		}
		mealOpts = append(mealOpts, services.WithImageArchive(archive))
		logger.Info("Meal photos will be archived", "bucket", cfg.AWS.S3Bucket)
	}

	chatModel, closeChat, err := newChatModel(ctx, cfg.Chat)
	if err != nil {
		return err
	}
	defer closeChat()

	meals := services.NewMealAnalysisService(analyzer, users, series, mealOpts...)
	svc := interfaces.Services{
		Meals:    meals,
		Vitals:   services.NewVitalsService(series),
		Profiles: services.NewProfileService(users),
		Chat:     services.NewChatService(chatModel, users, series, chats),
		Planner:  services.NewPlannerService(series),
	}
	logger.Info("Services initialized successfully")

	var wg sync.WaitGroup
	errCh := make(chan error, 2)

	if cfg.Telegram.Token != "" {
		states, closeStates, err := newStateManager(cfg.Redis)
		if err != nil {
			return err
		}
		defer closeStates()

		telegramBot, err := bot.NewBot(cfg.Telegram.Token, svc, states)
		if err != nil {
			return err
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := telegramBot.Start(ctx); err != nil {
				errCh <- fmt.Errorf("bot: %w", err)
			}
		}()
	}

	server := api.New(cfg.HTTP, svc, auth.NewJWTProvider(cfg.Auth.JWTSecret), hub)
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := server.Run(ctx); err != nil {
			errCh <- fmt.Errorf("http: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
	case err = <-errCh:
		stop()
	}

	wg.Wait()
	meals.Wait()
	logger.Info("GlycoCare stopped")
	return err
}

func newChatModel(ctx context.Context, cfg config.ChatConfig) (domain.ChatModel, func(), error) {
	switch cfg.Provider {
	case "gemini":
		m, err := services.NewGeminiChatModel(ctx, cfg.GeminiAPIKey, cfg.Model)
		if err != nil {
			return nil, nil, err
		}
		return m, func() { _ = m.Close() }, nil
	case "openai":
		return services.NewOpenAIChatModel(cfg.OpenAIAPIKey, cfg.BaseURL, cfg.Model), func() {}, nil
	default:
		return services.NewGroqChatModel(cfg.GroqAPIKey, cfg.Model), func() {}, nil
	}
}

// newStateManager prefers Redis so conversations survive restarts.
func newStateManager(cfg config.RedisConfig) (state.StateManager, func(), error) {
	if cfg.Host == "" {
		logger.Info("Bot state kept in memory")
		return state.NewManager(), func() {}, nil
	}
	m, err := state.NewRedisManager(cfg)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("Bot state stored in Redis", "host", cfg.Host)
	return m, func() { _ = m.Close() }, nil
}
