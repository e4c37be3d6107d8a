package handlers

import (
  "net/http"
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/reviseapp/revise-backend/internal/logger"
  "github.com/reviseapp/revise-backend/internal/requestdata"
  "github.com/reviseapp/revise-backend/internal/services"
)

type TopicHandler struct {
  log          *logger.Logger
  topicService services.TopicService
}

func NewTopicHandler(log *logger.Logger, topicService services.TopicService) *TopicHandler {
  return &TopicHandler{
    log:          log.With("handler", "TopicHandler"),
    topicService: topicService,
  }
}

func (h *TopicHandler) List(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil || rd.UserID == uuid.Nil {
    RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
    return
  }
  topics, err := h.topicService.GetForUser(c.Request.Context(), rd.UserID)
  if err != nil {
    h.log.Error("List topics failed", "error", err, "user_id", rd.UserID)
    RespondServiceError(c, "load_topics_failed", err)
    return
  }
  RespondOK(c, gin.H{"topics": topics})
}

func (h *TopicHandler) Create(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil || rd.UserID == uuid.Nil {
    RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
    return
  }
  var input services.TopicInput
  if err := c.ShouldBindJSON(&input); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_body", err)
    return
  }
  topic, err := h.topicService.Create(c.Request.Context(), rd.UserID, input)
  if err != nil {
    h.log.Error("Create topic failed", "error", err, "user_id", rd.UserID)
    RespondServiceError(c, "create_topic_failed", err)
    return
  }
  RespondOK(c, gin.H{"topic": topic})
}

func (h *TopicHandler) Update(c *gin.Context) {
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
  var input services.TopicInput
  if err := c.ShouldBindJSON(&input); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_body", err)
    return
  }
  topic, err := h.topicService.Update(c.Request.Context(), rd.UserID, topicID, input)
  if err != nil {
    h.log.Error("Update topic failed", "error", err, "topic_id", topicID)
    RespondServiceError(c, "update_topic_failed", err)
    return
  }
  RespondOK(c, gin.H{"topic": topic})
}

func (h *TopicHandler) Archive(c *gin.Context) {
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
  if err := h.topicService.Archive(c.Request.Context(), rd.UserID, topicID); err != nil {
    h.log.Error("Archive topic failed", "error", err, "topic_id", topicID)
    RespondServiceError(c, "archive_topic_failed", err)
    return
  }
  RespondOK(c, gin.H{"archived": true})
}

func (h *TopicHandler) Delete(c *gin.Context) {
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
  if err := h.topicService.Delete(c.Request.Context(), rd.UserID, topicID); err != nil {
    h.log.Error("Delete topic failed", "error", err, "topic_id", topicID)
    RespondServiceError(c, "delete_topic_failed", err)
    return
  }
  RespondOK(c, gin.H{"deleted": true})
}
