package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/reviseapp/revise-backend/internal/logger"
  "github.com/reviseapp/revise-backend/internal/requestdata"
  "github.com/reviseapp/revise-backend/internal/services"
  "github.com/reviseapp/revise-backend/internal/types"
)

type LeaderboardHandler struct {
  log                *logger.Logger
  leaderboardService services.LeaderboardService
  comparisonService  services.ComparisonService
}

func NewLeaderboardHandler(
  log *logger.Logger,
  leaderboardService services.LeaderboardService,
  comparisonService services.ComparisonService,
) *LeaderboardHandler {
  return &LeaderboardHandler{
    log:                log.With("handler", "LeaderboardHandler"),
    leaderboardService: leaderboardService,
    comparisonService:  comparisonService,
  }
}

// leaderboardKey pulls the scope/window triple every leaderboard route takes
// from query params. scope_id is free-form: empty for global, a subject name
// or a topic id depending on scope.
func leaderboardKey(c *gin.Context) (types.Scope, string, types.TimeWindow) {
  scope := types.Scope(c.DefaultQuery("scope", string(types.ScopeGlobal)))
  window := types.TimeWindow(c.DefaultQuery("window", string(types.WindowWeek)))
  return scope, c.Query("scope_id"), window
}

func (h *LeaderboardHandler) Get(c *gin.Context) {
  scope, scopeID, window := leaderboardKey(c)
  rows, err := h.leaderboardService.GetLeaderboard(c.Request.Context(), scope, scopeID, window)
  if err != nil {
    h.log.Error("Get leaderboard failed", "error", err, "scope", scope, "window", window)
    RespondServiceError(c, "get_leaderboard_failed", err)
    return
  }
  RespondOK(c, gin.H{"entries": rows})
}

func (h *LeaderboardHandler) Recompute(c *gin.Context) {
  scope, scopeID, window := leaderboardKey(c)
  rows, err := h.leaderboardService.Recompute(c.Request.Context(), scope, scopeID, window)
  if err != nil {
    h.log.Error("Recompute leaderboard failed", "error", err, "scope", scope, "window", window)
    RespondServiceError(c, "recompute_leaderboard_failed", err)
    return
  }
  RespondOK(c, gin.H{"entries": rows})
}

func (h *LeaderboardHandler) Comparison(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil || rd.UserID == uuid.Nil {
    RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
    return
  }
  scope, scopeID, window := leaderboardKey(c)
  data, err := h.comparisonService.GetComparison(c.Request.Context(), rd.UserID, scope, scopeID, window)
  if err != nil {
    h.log.Error("Get comparison failed", "error", err, "scope", scope, "window", window)
    RespondServiceError(c, "get_comparison_failed", err)
    return
  }
  RespondOK(c, data)
}
