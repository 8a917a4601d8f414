package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"jewelry-backend/internal/apperr"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func errorResponse(t *testing.T, err error) (*httptest.ResponseRecorder, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	writeError(c, err)
	return rec, rec.Body.String()
}

func TestWriteErrorHidesWrappedCause(t *testing.T) {
	cause := errors.New(`pq: password authentication failed for user "postgres"`)

	rec, body := errorResponse(t, apperr.Internal("failed to load order", cause))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, body, "INTERNAL_ERROR")
	assert.Contains(t, body, "failed to load order")
	assert.NotContains(t, body, "password authentication failed")

	rec, body = errorResponse(t, apperr.Dependency("pricing", errors.New("connection refused")))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, body, "pricing call failed")
	assert.NotContains(t, body, "connection refused")

	// Untyped errors collapse to a generic message.
	_, body = errorResponse(t, errors.New("dial tcp 10.0.0.4:5432: i/o timeout"))
	assert.Contains(t, body, "internal server error")
	assert.NotContains(t, body, "10.0.0.4")
}

func TestWriteErrorKeepsClientFacingMessages(t *testing.T) {
	rec, body := errorResponse(t, apperr.InvalidTransition("order", "pending", "completed"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, body, "order cannot move from pending to completed")
}

func TestWriteErrorVerboseModeIncludesCause(t *testing.T) {
	EnableVerboseErrors()
	defer func() { verboseErrors = false }()

	rec, body := errorResponse(t, apperr.Internal("failed to load order", errors.New("record has gone missing")))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, body, "failed to load order: record has gone missing")
}
