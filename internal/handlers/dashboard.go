package handlers

import (
  "net/http"
  "time"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/reviseapp/revise-backend/internal/logger"
  "github.com/reviseapp/revise-backend/internal/requestdata"
  "github.com/reviseapp/revise-backend/internal/services"
)

type DashboardHandler struct {
  log              *logger.Logger
  dashboardService services.DashboardService
}

func NewDashboardHandler(log *logger.Logger, dashboardService services.DashboardService) *DashboardHandler {
  return &DashboardHandler{
    log:              log.With("handler", "DashboardHandler"),
    dashboardService: dashboardService,
  }
}

func (h *DashboardHandler) Get(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil || rd.UserID == uuid.Nil {
    RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
    return
  }
  data, err := h.dashboardService.GetDashboard(c.Request.Context(), rd.UserID, time.Now())
  if err != nil {
    h.log.Error("Get dashboard failed", "error", err, "user_id", rd.UserID)
    RespondServiceError(c, "get_dashboard_failed", err)
    return
  }
  RespondOK(c, data)
}
