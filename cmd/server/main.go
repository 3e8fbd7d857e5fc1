package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"prepwise/interview/internal/config"
	"prepwise/interview/internal/handlers"
	"prepwise/interview/internal/jobs"
	"prepwise/interview/internal/llm"
	_ "prepwise/interview/internal/llm/gemini"
	"prepwise/interview/internal/notify"
	"prepwise/interview/internal/prompts"
	mongorepo "prepwise/interview/internal/repositories/mongo"
	"prepwise/interview/internal/routers"
	"prepwise/interview/internal/session"
)

func registerRoutes(router *chi.Mux, cfg *config.Config, sessionHandler *handlers.SessionHandler, scheduleHandler *handlers.ScheduleHandler, reportHandler *handlers.ReportHandler, healthHandler *handlers.HealthHandler) {
	routers.HealthRoutes(router, healthHandler)
	routers.InterviewRoutes(router, cfg.JWTSecret, sessionHandler, scheduleHandler, reportHandler)
}

// Helper functions for environment variables
func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	logger.Info("Configuration loaded",
		zap.String("provider", cfg.Provider))

	// prompt manager
	promptManager, err := prompts.NewManager()
	if err != nil {
		logger.Fatal("Failed to initialize prompt manager", zap.Error(err))
	}

	// AI provider based on configuration
	aiProvider, err := llm.NewProvider(cfg.Provider)
	if err != nil {
		logger.Fatal("Failed to initialize AI provider", zap.Error(err))
	}

	// document store
	mongoClient, err := mongorepo.NewClient(context.Background())
	if err != nil {
		logger.Fatal("Failed to connect to document store", zap.Error(err))
	}

	sessionRepo, err := mongorepo.NewSessionRepo(mongoClient)
	if err != nil {
		logger.Fatal("Failed to initialize session repository", zap.Error(err))
	}

	scheduleRepo, err := mongorepo.NewScheduleRepo(mongoClient)
	if err != nil {
		logger.Fatal("Failed to initialize schedule repository", zap.Error(err))
	}

	mailer := notify.NewMailer()

	manager := session.NewManager(sessionRepo, aiProvider, promptManager, logger)

	sessionHandler := handlers.NewSessionHandler(manager, logger)
	scheduleHandler := handlers.NewScheduleHandler(scheduleRepo, mailer, logger)
	reportHandler := handlers.NewReportHandler(manager, logger)
	healthHandler := handlers.NewHealthHandler(aiProvider, promptManager, sessionRepo, cfg)

	// daily reminder sweep for upcoming scheduled interviews
	reminderConfig := &jobs.ReminderConfig{
		Schedule: getEnv("REMINDER_SCHEDULE", "0 8 * * *"),
		Enabled:  getEnv("REMINDER_ENABLED", "true") == "true",
		Window:   24 * time.Hour,
	}
	reminderJob := jobs.NewReminderJob(scheduleRepo, mailer, reminderConfig, logger)
	if err := reminderJob.Start(); err != nil {
		logger.Error("Failed to start reminder job", zap.Error(err))
	}

	router := chi.NewRouter()

	// cors middleware
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	router.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer, middleware.Timeout(60*time.Second))

	registerRoutes(router, cfg, sessionHandler, scheduleHandler, reportHandler, healthHandler)

	serverAddr := ":" + cfg.Port

	// http server with timeouts
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// starting server in a goroutine
	go func() {
		logger.Info("Interview service starting", zap.String("addr", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// wait for interrupt signal to gracefully shutdown the server
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)
	<-shutdownChan

	logger.Info("Interview service shutting down...")

	reminderJob.Stop()

	// graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	if err := mongoClient.Disconnect(ctx); err != nil {
		logger.Error("failed to disconnect document store", zap.Error(err))
	}

	logger.Info("Interview service exited")
}
