package api

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/crickwise/dream11-optimizer/internal/api/handlers"
	"github.com/crickwise/dream11-optimizer/internal/api/middleware"
	"github.com/crickwise/dream11-optimizer/internal/services"
	"github.com/crickwise/dream11-optimizer/pkg/config"
	"github.com/crickwise/dream11-optimizer/pkg/database"
)

// Deps are the shared services the route tree needs.
type Deps struct {
	DB          *database.DB
	Redis       *redis.Client
	Cache       *services.CacheService
	Predictor   *services.PredictorService
	DataFetcher *services.DataFetcherService
	RateLimiter *services.ClientRateLimiter
	Config      *config.Config
	Logger      *logrus.Logger
}

// SetupRoutes configures all API routes on the given router group.
func SetupRoutes(group *gin.RouterGroup, deps Deps) {
	teamHandler := handlers.NewTeamHandler(deps.DB, deps.Cache)
	playerHandler := handlers.NewPlayerHandler(deps.DB)
	predictHandler := handlers.NewPredictHandler(deps.Predictor, deps.Logger)
	statsHandler := handlers.NewStatsHandler(deps.DataFetcher, deps.Logger)
	authHandler := handlers.NewAuthHandler(deps.Config)

	group.POST("/auth/login", authHandler.Login)

	group.GET("/teams", teamHandler.ListTeams)
	group.GET("/teams/:id/players", teamHandler.GetTeamPlayers)

	group.GET("/players", playerHandler.ListPlayers)
	group.GET("/players/:id", playerHandler.GetPlayer)

	group.POST("/predict", middleware.RateLimit(deps.RateLimiter), predictHandler.Predict)

	auth := group.Group("")
	auth.Use(middleware.AuthRequired(deps.Config.JWTSecret))
	{
		auth.GET("/predictions", predictHandler.ListPredictions)
		auth.GET("/predictions/:id", predictHandler.GetPrediction)
		auth.POST("/stats/refresh", statsHandler.RefreshStats)
		auth.GET("/stats/status", statsHandler.GetStatus)
	}
}
