package server

import (
  "github.com/gin-contrib/cors"
  "github.com/gin-gonic/gin"
  "go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

  "github.com/reviseapp/revise-backend/internal/handlers"
  "github.com/reviseapp/revise-backend/internal/middleware"
)

type RouterConfig struct {
  ServiceName        string
  AllowOrigins       []string
  IdentityMiddleware *middleware.IdentityMiddleware
  TopicHandler       *handlers.TopicHandler
  ScheduleHandler    *handlers.ScheduleHandler
  SessionHandler     *handlers.SessionHandler
  LeaderboardHandler *handlers.LeaderboardHandler
  DashboardHandler   *handlers.DashboardHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
  router := gin.Default()

  origins := cfg.AllowOrigins
  if len(origins) == 0 {
    origins = []string{"http://localhost:3000", "http://localhost:5173"}
  }
  router.Use(cors.New(cors.Config{
    AllowOrigins:     origins,
    AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
    AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With", "X-User-ID"},
    AllowCredentials: true,
  }))
  router.Use(otelgin.Middleware(cfg.ServiceName))

  // Public
  router.GET("/healthcheck", handlers.HealthCheck)

  // Everything under /api runs as a resolved user.
  api := router.Group("/api")
  api.Use(cfg.IdentityMiddleware.RequireUser())
  // Topics
  api.GET("/topics", cfg.TopicHandler.List)
  api.POST("/topics", cfg.TopicHandler.Create)
  api.PATCH("/topics/:id", cfg.TopicHandler.Update)
  api.POST("/topics/:id/archive", cfg.TopicHandler.Archive)
  api.DELETE("/topics/:id", cfg.TopicHandler.Delete)
  // Schedule
  api.GET("/schedule/due", cfg.ScheduleHandler.GetDueEntries)
  api.POST("/schedule/topics/:id/regenerate", cfg.ScheduleHandler.Regenerate)
  api.POST("/schedule/:id/snooze", cfg.ScheduleHandler.Snooze)
  // Sessions
  api.POST("/sessions", cfg.SessionHandler.Start)
  api.POST("/sessions/:id/finish", cfg.SessionHandler.Finish)
  // Leaderboard
  api.GET("/leaderboard", cfg.LeaderboardHandler.Get)
  api.POST("/leaderboard/recompute", cfg.LeaderboardHandler.Recompute)
  api.GET("/leaderboard/comparison", cfg.LeaderboardHandler.Comparison)
  // Dashboard
  api.GET("/dashboard", cfg.DashboardHandler.Get)

  return router
}
