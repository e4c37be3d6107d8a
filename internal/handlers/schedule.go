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

type ScheduleHandler struct {
  log             *logger.Logger
  scheduleService services.ScheduleService
  snoozeService   services.SnoozeService
}

func NewScheduleHandler(log *logger.Logger, scheduleService services.ScheduleService, snoozeService services.SnoozeService) *ScheduleHandler {
  return &ScheduleHandler{
    log:             log.With("handler", "ScheduleHandler"),
    scheduleService: scheduleService,
    snoozeService:   snoozeService,
  }
}

func (h *ScheduleHandler) GetDueEntries(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil || rd.UserID == uuid.Nil {
    RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
    return
  }
  due, err := h.scheduleService.GetDueEntries(c.Request.Context(), rd.UserID, time.Now())
  if err != nil {
    h.log.Error("GetDueEntries failed", "error", err, "user_id", rd.UserID)
    RespondServiceError(c, "load_due_entries_failed", err)
    return
  }
  RespondOK(c, due)
}

func (h *ScheduleHandler) Regenerate(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil || rd.UserID == uuid.Nil {
    RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
    return
  }
  topicID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_topic_id", err)
    return
  }
  entries, err := h.scheduleService.RegenerateFromToday(c.Request.Context(), nil, topicID, time.Now())
  if err != nil {
    h.log.Error("Regenerate failed", "error", err, "topic_id", topicID)
    RespondServiceError(c, "regenerate_failed", err)
    return
  }
  RespondOK(c, gin.H{"entries": entries})
}

type snoozeRequest struct {
  Days    int  `json:"days"`
  Cascade bool `json:"cascade"`
}

func (h *ScheduleHandler) Snooze(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil || rd.UserID == uuid.Nil {
    RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
    return
  }
  var req snoozeRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_body", err)
    return
  }

  // "all" snoozes every currently due or overdue entry in one unit.
  if c.Param("id") == "all" {
    result, err := h.snoozeService.SnoozeAll(c.Request.Context(), rd.UserID, req.Days, req.Cascade, time.Now())
    if err != nil {
      h.log.Error("SnoozeAll failed", "error", err, "user_id", rd.UserID)
      RespondServiceError(c, "snooze_all_failed", err)
      return
    }
    RespondOK(c, result)
    return
  }

  entryID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_entry_id", err)
    return
  }
  result, err := h.snoozeService.SnoozeOne(c.Request.Context(), entryID, req.Days, req.Cascade, time.Now())
  if err != nil {
    h.log.Error("Snooze failed", "error", err, "entry_id", entryID)
    RespondServiceError(c, "snooze_failed", err)
    return
  }
  RespondOK(c, result)
}
