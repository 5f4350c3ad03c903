package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crownium_bot/internal/api"
	"crownium_bot/internal/bot"
	"crownium_bot/internal/metrics"
	"crownium_bot/internal/middleware"
	"crownium_bot/internal/repository"
	"crownium_bot/internal/scheduler"
	"crownium_bot/internal/service"
	"crownium_bot/pkg/auth"
	"crownium_bot/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	err = logger.Initialize(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	zapLogger := logger.Logger()

	if err := cfg.Validate(); err != nil {
		zapLogger.Fatal("Invalid config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := repository.New(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to initialize repository", zap.Error(err))
	}
	defer repo.Close()

	if err := repo.Migrate(ctx); err != nil {
		zapLogger.Fatal("Failed to migrate database", zap.Error(err))
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.Default()
	}

	userService := service.NewUserService(repo)

	resetJob, err := scheduler.NewResetJob(cfg.Schedule, userService, m)
	if err != nil {
		zapLogger.Fatal("Failed to create reset job", zap.Error(err))
	}

	botAPI, err := bot.NewBotAPI(cfg.Telegram)
	if err != nil {
		zapLogger.Fatal("Failed to connect to Telegram", zap.Error(err))
	}
	router, err := bot.NewRouter(userService, botAPI.Self.UserName, cfg.Tasks.OfferURL, m)
	if err != nil {
		zapLogger.Fatal("Failed to create command router", zap.Error(err))
	}
	tgBot := bot.New(botAPI, router, cfg.Telegram.PollTimeout)

	mode, err := auth.ParseCallbackMode(cfg.Callback.Auth)
	if err != nil {
		zapLogger.Fatal("Invalid callback auth mode", zap.Error(err))
	}
	if mode == auth.CallbackModeNone {
		zapLogger.Warn("Credit callback is unauthenticated: any caller can credit any user")
	}
	callbackAuth := middleware.NewCallbackAuthorization(mode, cfg.Callback.Secret)

	if cfg.MiniApp.SkipAuth {
		zapLogger.Warn("Mini app init data is not validated: any caller can read any user",
			zap.String("host", cfg.Server.Host))
	}
	telegramAuth := auth.NewTelegramAuth(cfg.Telegram.BotToken, cfg.MiniApp.SkipAuth)

	engine := gin.New()
	engine.Use(gin.Recovery(), middleware.RequestID(), middleware.AccessLog(m), api.CORS())

	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	api.NewHealthRoutes(engine, repo, m, metricsPath)
	api.NewCreditRoutes(&engine.RouterGroup, userService, callbackAuth, m)

	a := engine.Group("/api/v1")
	api.NewUserRoutes(a, userService, telegramAuth)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zapLogger.Info("Starting server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Error("Server failed", zap.Error(err))
			stop()
		}
	}()

	resetJob.Start()

	botDone := make(chan struct{})
	go func() {
		defer close(botDone)
		if err := tgBot.Run(ctx); err != nil {
			zapLogger.Error("Bot failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	zapLogger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Server shutdown failed", zap.Error(err))
	}
	resetJob.Stop(shutdownCtx)

	select {
	case <-botDone:
	case <-shutdownCtx.Done():
		zapLogger.Warn("Bot did not stop in time")
	}
}
