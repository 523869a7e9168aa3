package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/steptracker/steptracker-backend-go/internal/config"
	"github.com/steptracker/steptracker-backend-go/internal/handler"
	"github.com/steptracker/steptracker-backend-go/internal/middleware"
	"github.com/steptracker/steptracker-backend-go/internal/repository"
	"github.com/steptracker/steptracker-backend-go/internal/service"
	"github.com/steptracker/steptracker-backend-go/internal/stats"
	"github.com/steptracker/steptracker-backend-go/internal/stream"
	"github.com/steptracker/steptracker-backend-go/internal/walk"
)

// SetupRouter wires repositories, services and handlers onto the HTTP
// surface.
func SetupRouter(cfg *config.Config, db *sql.DB) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())

	// CORS for the mobile webview and any browser dashboard.
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Step Tracker API is running",
		})
	})

	stepRepo := repository.NewStepRepository(db)
	walkRepo := repository.NewWalkRepository(db)

	hub := stream.NewHub()
	filter := walk.NewFilter(cfg.AccuracyThresholdM)
	policy := walk.PausePolicy(cfg.PausePolicy)

	stepService := service.NewStepService(stepRepo, stats.NewEngine(cfg.DailyStepGoal))
	walkService := service.NewWalkService(walkRepo)
	sessionService := service.NewSessionService(filter, policy, walkRepo, hub)

	stepHandler := handler.NewStepHandler(stepService)
	walkHandler := handler.NewWalkHandler(walkService)
	sessionHandler := handler.NewSessionHandler(sessionService, hub)

	api := r.Group("/api")
	api.Use(middleware.RateLimit(100, 15*time.Minute))
	api.Use(middleware.Auth(cfg.JWTSecret))
	{
		steps := api.Group("/steps")
		{
			steps.GET("/daily", stepHandler.GetDaily)
			steps.GET("/range", stepHandler.GetRange)
			steps.POST("/sync", stepHandler.Sync)
			steps.GET("/statistics", stepHandler.GetStatistics)
			steps.GET("/trends", stepHandler.GetTrends)
		}

		walks := api.Group("/walks")
		{
			walks.POST("", walkHandler.Create)
			walks.GET("", walkHandler.List)
			walks.GET("/statistics/summary", walkHandler.Summary)
			walks.GET("/:id", walkHandler.Get)
			walks.PUT("/:id", walkHandler.Update)
			walks.DELETE("/:id", walkHandler.Delete)
			walks.GET("/:id/gpx", walkHandler.ExportGPX)
		}

		session := api.Group("/session")
		{
			session.GET("", sessionHandler.Snapshot)
			session.GET("/live", sessionHandler.Live)
			session.POST("/start", sessionHandler.Start)
			session.POST("/ingest", sessionHandler.Ingest)
			session.POST("/steps", sessionHandler.Steps)
			session.POST("/pause", sessionHandler.Pause)
			session.POST("/resume", sessionHandler.Resume)
			session.POST("/stop", sessionHandler.Stop)
		}
	}

	return r
}
