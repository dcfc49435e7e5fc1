package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/crickwise/dream11-optimizer/internal/api"
	"github.com/crickwise/dream11-optimizer/internal/api/handlers"
	"github.com/crickwise/dream11-optimizer/internal/api/middleware"
	"github.com/crickwise/dream11-optimizer/internal/cricket"
	"github.com/crickwise/dream11-optimizer/internal/providers"
	"github.com/crickwise/dream11-optimizer/internal/scoring"
	"github.com/crickwise/dream11-optimizer/internal/services"
	"github.com/crickwise/dream11-optimizer/pkg/config"
	"github.com/crickwise/dream11-optimizer/pkg/database"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	if cfg.IsDevelopment() {
		logrus.SetLevel(logrus.DebugLevel)
		gin.SetMode(gin.DebugMode)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
		gin.SetMode(gin.ReleaseMode)
	}
	logger := logrus.StandardLogger()

	db, err := database.NewConnection(cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logrus.Fatalf("Failed to parse Redis URL: %v", err)
	}
	redisClient := redis.NewClient(opt)
	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logrus.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	cacheService := services.NewCacheService(redisClient)

	// Stats source: remote API when configured, local dataset otherwise.
	var provider providers.Provider
	if cfg.StatsAPIBaseURL != "" {
		provider = providers.NewHTTPProvider(cfg.StatsAPIBaseURL, cfg.StatsAPITimeout, logger)
	} else {
		provider = providers.NewCSVProvider(cfg.DataFolder, logger)
	}

	fetchInterval, err := time.ParseDuration(cfg.StatsFetchInterval)
	if err != nil {
		logrus.Warnf("Invalid fetch interval, using default 6h: %v", err)
		fetchInterval = 6 * time.Hour
	}

	dataFetcher := services.NewDataFetcherService(db, cacheService, provider, cricket.DefaultClassifierConfig(), logger, fetchInterval)
	if err := dataFetcher.Start(cfg.SkipInitialFetch); err != nil {
		logrus.Errorf("Failed to start data fetcher: %v", err)
	}
	defer dataFetcher.Stop()

	scoringCfg := scoring.DefaultConfig()
	scoringCfg.Weights = scoring.FormWeights{
		Recent:  cfg.RecentFormWeight,
		Career:  cfg.CareerWeight,
		Context: cfg.ContextWeight,
	}
	predictor := services.NewPredictorService(
		db,
		cacheService,
		scoringCfg,
		services.PredictionDefaults{
			Budget:        cfg.DefaultBudget,
			TeamSize:      cfg.DefaultTeamSize,
			MaxBacktracks: cfg.MaxBacktracks,
		},
		cfg.PredictionCacheTTL,
		logger,
	)

	rateLimiter := services.NewClientRateLimiter(cfg.PredictRateLimit, cfg.PredictRateBurst)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.CORS(cfg.CorsOrigins))

	healthHandler := handlers.NewHealthHandler(db, redisClient)
	router.GET("/health", healthHandler.Health)

	apiV1 := router.Group("/api/v1")
	api.SetupRoutes(apiV1, api.Deps{
		DB:          db,
		Redis:       redisClient,
		Cache:       cacheService,
		Predictor:   predictor,
		DataFetcher: dataFetcher,
		RateLimiter: rateLimiter,
		Config:      cfg,
		Logger:      logger,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logrus.Infof("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited")
}
