package handlers

import (
  "encoding/json"
  "fmt"
  "net/http"
  "net/http/httptest"
  "testing"

  "github.com/gin-gonic/gin"
  "github.com/stretchr/testify/assert"
  "github.com/stretchr/testify/require"

  pkgerrors "github.com/reviseapp/revise-backend/internal/pkg/errors"
)

func TestRespondServiceError_StatusMapping(t *testing.T) {
  gin.SetMode(gin.TestMode)

  cases := []struct {
    err  error
    want int
  }{
    {pkgerrors.ErrNotFound, http.StatusNotFound},
    {pkgerrors.ErrValidation, http.StatusBadRequest},
    {pkgerrors.ErrInvalidStateTransition, http.StatusConflict},
    {pkgerrors.ErrSessionAlreadyActive, http.StatusConflict},
    {pkgerrors.ErrSessionAlreadyFinished, http.StatusConflict},
    {fmt.Errorf("database down"), http.StatusInternalServerError},
  }
  for _, tc := range cases {
    recorder := httptest.NewRecorder()
    c, _ := gin.CreateTestContext(recorder)

    RespondServiceError(c, "op_failed", fmt.Errorf("wrapped: %w", tc.err))
    assert.Equal(t, tc.want, recorder.Code, "error %v", tc.err)

    var envelope ErrorEnvelope
    require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
    assert.Equal(t, "op_failed", envelope.Error.Code)
    assert.NotEmpty(t, envelope.Error.Message)
  }
}

func TestRespondOK_WrapsPayload(t *testing.T) {
  gin.SetMode(gin.TestMode)
  recorder := httptest.NewRecorder()
  c, _ := gin.CreateTestContext(recorder)

  RespondOK(c, gin.H{"status": "ok"})
  require.Equal(t, http.StatusOK, recorder.Code)
  assert.JSONEq(t, `{"status":"ok"}`, recorder.Body.String())
}
