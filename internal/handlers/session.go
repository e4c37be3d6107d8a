package handlers

import (
  "net/http"
  "time"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/reviseapp/revise-backend/internal/logger"
  "github.com/reviseapp/revise-backend/internal/requestdata"
  "github.com/reviseapp/revise-backend/internal/services"
  "github.com/reviseapp/revise-backend/internal/types"
)

type SessionHandler struct {
  log            *logger.Logger
  sessionService services.SessionService
}

func NewSessionHandler(log *logger.Logger, sessionService services.SessionService) *SessionHandler {
  return &SessionHandler{
    log:            log.With("handler", "SessionHandler"),
    sessionService: sessionService,
  }
}

type startSessionRequest struct {
  TopicID        uuid.UUID `json:"topic_id"`
  PlannedSeconds int       `json:"planned_seconds"`
}

func (h *SessionHandler) Start(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil || rd.UserID == uuid.Nil {
    RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
    return
  }
  var req startSessionRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_body", err)
    return
  }
  session, err := h.sessionService.Start(c.Request.Context(), rd.UserID, req.TopicID, req.PlannedSeconds, time.Now())
  if err != nil {
    h.log.Error("Start session failed", "error", err, "topic_id", req.TopicID)
    RespondServiceError(c, "start_session_failed", err)
    return
  }
  RespondOK(c, gin.H{"session_id": session.ID, "schedule_id": session.ScheduleID})
}

type finishSessionRequest struct {
  ActualSeconds int    `json:"actual_seconds"`
  Rating        string `json:"rating"`
  Notes         string `json:"notes"`
}

func (h *SessionHandler) Finish(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil || rd.UserID == uuid.Nil {
    RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
    return
  }
  sessionID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_session_id", err)
    return
  }
  var req finishSessionRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_body", err)
    return
  }
  result, err := h.sessionService.Finish(c.Request.Context(), sessionID, req.ActualSeconds, types.Rating(req.Rating), req.Notes, time.Now())
  if err != nil {
    h.log.Error("Finish session failed", "error", err, "session_id", sessionID)
    RespondServiceError(c, "finish_session_failed", err)
    return
  }
  RespondOK(c, result)
}
