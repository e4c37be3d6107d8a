package main

import (
  "context"
  "fmt"
  "os"
  "strings"
  "time"

  "github.com/reviseapp/revise-backend/internal/clients/redis"
  "github.com/reviseapp/revise-backend/internal/db"
  "github.com/reviseapp/revise-backend/internal/handlers"
  "github.com/reviseapp/revise-backend/internal/logger"
  "github.com/reviseapp/revise-backend/internal/middleware"
  "github.com/reviseapp/revise-backend/internal/observability"
  "github.com/reviseapp/revise-backend/internal/repos"
  "github.com/reviseapp/revise-backend/internal/server"
  "github.com/reviseapp/revise-backend/internal/services"
  "github.com/reviseapp/revise-backend/internal/utils"
)

func main() {
  // Logger
  logMode := os.Getenv("LOG_MODE")
  if logMode == "" {
    logMode = "development"
  }
  log, err := logger.New(logMode)
  if err != nil {
    fmt.Printf("Failed to init logger: %v\n", err)
    os.Exit(1)
  }
  defer log.Sync()

  // Env
  log.Info("Loading environment variables from main...")
  serviceName := utils.GetEnv("SERVICE_NAME", "revise-backend", log)
  environment := utils.GetEnv("ENVIRONMENT", "development", log)
  leaderboardWorkers := utils.GetEnvAsInt("LEADERBOARD_WORKERS", 8, log)
  leaderboardTimeout := utils.GetEnvAsInt("LEADERBOARD_BATCH_TIMEOUT", 60, log)
  allowOrigins := utils.GetEnv("CORS_ALLOW_ORIGINS", "", log)

  // Tracing
  shutdownOTel := observability.InitOTel(context.Background(), log, observability.OtelConfig{
    ServiceName: serviceName,
    Environment: environment,
    Version:     utils.GetEnv("SERVICE_VERSION", "dev", log),
  })
  if shutdownOTel != nil {
    defer func() {
      ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
      defer cancel()
      if err := shutdownOTel(ctx); err != nil {
        log.Warn("OTel shutdown failed", "error", err)
      }
    }()
  }

  // Postgres
  postgresService, err := db.NewPostgresService(log)
  if err != nil {
    log.Error("Postgres init failed", "error", err)
    os.Exit(1)
  }
  if err = postgresService.AutoMigrateAll(); err != nil {
    log.Warn("Postgres auto migration failed", "error", err)
  }
  thePG := postgresService.DB()

  // Redis cache (optional: leaderboard reads fall back to the DB without it)
  leaderboardCache, err := redis.NewLeaderboardCache(log)
  if err != nil {
    log.Warn("Leaderboard cache init failed, serving uncached", "error", err)
    leaderboardCache = nil
  } else {
    defer leaderboardCache.Close()
  }

  // Repos
  log.Info("Setting up Repos from main...")
  userRepo := repos.NewUserRepo(thePG, log)
  topicRepo := repos.NewTopicRepo(thePG, log)
  scheduleRepo := repos.NewRevisionScheduleRepo(thePG, log)
  sessionRepo := repos.NewRevisionSessionRepo(thePG, log)
  leaderboardRepo := repos.NewLeaderboardRepo(thePG, log)

  // Services
  log.Info("Setting up Services from main...")
  scheduleService := services.NewScheduleService(thePG, log, topicRepo, scheduleRepo)
  snoozeService := services.NewSnoozeService(thePG, log, scheduleRepo)
  sessionService := services.NewSessionService(thePG, log, topicRepo, scheduleRepo, sessionRepo)
  metricsService := services.NewMetricsService(thePG, log, topicRepo, scheduleRepo, sessionRepo)
  leaderboardService := services.NewLeaderboardService(thePG, log, userRepo, leaderboardRepo, metricsService, leaderboardCache, services.LeaderboardConfig{
    Workers:      leaderboardWorkers,
    BatchTimeout: time.Duration(leaderboardTimeout) * time.Second,
  })
  comparisonService := services.NewComparisonService(thePG, log, leaderboardService)
  topicService := services.NewTopicService(thePG, log, topicRepo, scheduleService)
  dashboardService := services.NewDashboardService(thePG, log, topicRepo, scheduleRepo, sessionRepo, scheduleService)

  // Handlers
  log.Info("Setting up handlers from main...")
  topicHandler := handlers.NewTopicHandler(log, topicService)
  scheduleHandler := handlers.NewScheduleHandler(log, scheduleService, snoozeService)
  sessionHandler := handlers.NewSessionHandler(log, sessionService)
  leaderboardHandler := handlers.NewLeaderboardHandler(log, leaderboardService, comparisonService)
  dashboardHandler := handlers.NewDashboardHandler(log, dashboardService)

  // Middleware
  log.Info("Setting up middleware from main...")
  identityMiddleware := middleware.NewIdentityMiddleware(log)

  // Router
  log.Info("Setting up router from main...")
  var origins []string
  if allowOrigins != "" {
    for _, origin := range strings.Split(allowOrigins, ",") {
      if origin = strings.TrimSpace(origin); origin != "" {
        origins = append(origins, origin)
      }
    }
  }
  router := server.NewRouter(server.RouterConfig{
    ServiceName:        serviceName,
    AllowOrigins:       origins,
    IdentityMiddleware: identityMiddleware,
    TopicHandler:       topicHandler,
    ScheduleHandler:    scheduleHandler,
    SessionHandler:     sessionHandler,
    LeaderboardHandler: leaderboardHandler,
    DashboardHandler:   dashboardHandler,
  })

  port := utils.GetEnv("PORT", "8080", log)
  fmt.Printf("Server listening on :%s\n", port)
  if err := router.Run(":" + port); err != nil {
    log.Error("Server failed", "error", err)
  }
}
