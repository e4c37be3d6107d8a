package middleware

import (
  "net/http"
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/reviseapp/revise-backend/internal/logger"
  "github.com/reviseapp/revise-backend/internal/requestdata"
)

// IdentityMiddleware resolves the acting user for the request. Authentication
// itself happens upstream (gateway); this layer only propagates the resolved
// identity into the request context.
type IdentityMiddleware struct {
  log *logger.Logger
}

func NewIdentityMiddleware(log *logger.Logger) *IdentityMiddleware {
  middlewareLogger := log.With("middleware", "IdentityMiddleware")
  return &IdentityMiddleware{log: middlewareLogger}
}

func (im *IdentityMiddleware) RequireUser() gin.HandlerFunc {
  return func(c *gin.Context) {
    raw := c.GetHeader("X-User-ID")
    if raw == "" {
      raw = c.Query("user_id")
    }
    if raw == "" {
      c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing user identity"})
      return
    }
    userID, err := uuid.Parse(raw)
    if err != nil || userID == uuid.Nil {
      im.log.Debug("Rejecting malformed user id", "raw", raw)
      c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "malformed user identity"})
      return
    }
    ctx := requestdata.WithRequestData(c.Request.Context(), &requestdata.RequestData{UserID: userID})
    c.Request = c.Request.WithContext(ctx)
    c.Next()
  }
}
