package handler

import (
	"github.com/gin-gonic/gin"

	"jewelry-backend/internal/apperr"
	"jewelry-backend/pkg/response"
)

var verboseErrors bool

// EnableVerboseErrors includes wrapped causes in error response bodies.
// Development only; production clients see the public message.
func EnableVerboseErrors() {
	verboseErrors = true
}

// writeError maps a service error onto the response envelope using the error
// taxonomy's status and stable code.
func writeError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	msg := apperr.PublicMessage(err)
	if verboseErrors {
		msg = err.Error()
	}
	c.JSON(status, response.ErrorCode(status, apperr.CodeOf(err), msg))
}

// currentUserID reads the authenticated staff id set by the JWT middleware.
func currentUserID(c *gin.Context) string {
	userID, _ := c.Get("userID")
	userIDStr, _ := userID.(string)
	return userIDStr
}
