package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"emotionquest/internal/config"
	"emotionquest/internal/handlers"
	"emotionquest/internal/logger"
	"emotionquest/internal/metrics"
	"emotionquest/internal/repository"
	"emotionquest/internal/security"
	"emotionquest/internal/service"
	"emotionquest/internal/utils"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	log, err := logger.New(os.Stdout, cfg.LogLevel, cfg.LogFormat, "server")
	if err != nil {
		logrus.Fatalf("Failed to configure logging: %v", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		log.WithError(err).Fatal("Failed to resolve time zone")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closer, err := repository.OpenRecordStore(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to open record store")
	}
	defer closer.Close()

	clock := utils.SystemClock{Location: loc}
	rng := utils.NewRandomSource(cfg.RandomSeed)

	// Initialize repositories
	settingsRepo := repository.NewSettingsRepository(store)
	streakRepo := repository.NewStreakRepository(store)

	// Initialize services
	settingsService := service.NewSettingsService(settingsRepo, utils.MaxDataURILength(cfg.UploadMaxSize))
	streakService := service.NewStreakService(streakRepo, clock, loc)
	quizService := service.NewQuizService(settingsService, rng)
	recognitionService := service.NewRecognitionService(rng, cfg.UploadMaxSize)

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.NewMetrics()
	}

	limiter := security.NewRateLimiter(cfg.UploadRateLimit, time.Minute, clock)
	limiter.TrustProxyHeaders = cfg.TrustProxyHeaders
	go limiter.Run(ctx, time.Hour)

	router := &handlers.Router{
		Settings:    handlers.NewSettingsHandler(settingsService, cfg.UploadMaxSize),
		Streak:      handlers.NewStreakHandler(streakService, m),
		Quiz:        handlers.NewQuizHandler(quizService, m),
		Recognition: handlers.NewRecognitionHandler(recognitionService, m, cfg.UploadMaxSize),
		Middleware:  handlers.NewMiddleware(log, m, limiter),
		Metrics:     m,
	}

	srv := &http.Server{
		Addr:         cfg.ListenAddr(),
		Handler:      router.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{
			"addr":          srv.Addr,
			"store_backend": cfg.StoreBackend,
			"time_zone":     loc.String(),
			"metrics":       cfg.MetricsEnabled,
		}).Info("Server starting")
		serverErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Server failed")
		}
	case <-ctx.Done():
		log.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("Graceful shutdown failed")
		}
	}
}
