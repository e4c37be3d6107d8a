package middleware

import (
  "net/http"
  "net/http/httptest"
  "testing"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/stretchr/testify/assert"
  "github.com/stretchr/testify/require"
  "go.uber.org/zap"

  "github.com/reviseapp/revise-backend/internal/logger"
  "github.com/reviseapp/revise-backend/internal/requestdata"
)

func identityRouter() (*gin.Engine, *uuid.UUID) {
  gin.SetMode(gin.TestMode)
  log := &logger.Logger{SugaredLogger: zap.NewNop().Sugar()}
  var seen uuid.UUID
  router := gin.New()
  router.Use(NewIdentityMiddleware(log).RequireUser())
  router.GET("/probe", func(c *gin.Context) {
    if rd := requestdata.GetRequestData(c.Request.Context()); rd != nil {
      seen = rd.UserID
    }
    c.Status(http.StatusOK)
  })
  return router, &seen
}

func TestRequireUser_HeaderPropagatesIdentity(t *testing.T) {
  router, seen := identityRouter()
  userID := uuid.New()
  req := httptest.NewRequest(http.MethodGet, "/probe", nil)
  req.Header.Set("X-User-ID", userID.String())
  recorder := httptest.NewRecorder()

  router.ServeHTTP(recorder, req)
  require.Equal(t, http.StatusOK, recorder.Code)
  assert.Equal(t, userID, *seen)
}

func TestRequireUser_QueryFallback(t *testing.T) {
  router, seen := identityRouter()
  userID := uuid.New()
  req := httptest.NewRequest(http.MethodGet, "/probe?user_id="+userID.String(), nil)
  recorder := httptest.NewRecorder()

  router.ServeHTTP(recorder, req)
  require.Equal(t, http.StatusOK, recorder.Code)
  assert.Equal(t, userID, *seen)
}

func TestRequireUser_RejectsMissingAndMalformed(t *testing.T) {
  router, _ := identityRouter()

  for _, header := range []string{"", "not-a-uuid", uuid.Nil.String()} {
    req := httptest.NewRequest(http.MethodGet, "/probe", nil)
    if header != "" {
      req.Header.Set("X-User-ID", header)
    }
    recorder := httptest.NewRecorder()
    router.ServeHTTP(recorder, req)
    assert.Equal(t, http.StatusUnauthorized, recorder.Code, "header %q", header)
  }
}
