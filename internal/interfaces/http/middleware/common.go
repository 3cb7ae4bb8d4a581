package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/phonestore/backend/internal/interfaces/http/dto"
)

// Request ID keys. The gin context key is shared with the logger package.
const (
	RequestIDKey    = "request_id"
	RequestIDHeader = "X-Request-ID"
)

// ErrorCodeKey holds the API error code of a rejected request
const ErrorCodeKey = "api_error_code"

// RequestID tags each request with an ID, echoed back in the response header.
// A client-supplied ID is kept when it is non-empty and fits MaxRequestIDLength.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" || len(requestID) > MaxRequestIDLength {
			requestID = uuid.NewString()
		}
		c.Set(RequestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)
		c.Next()
	}
}

// AbortWithError writes resp with status and stops the chain.
// The error code is left on the context for Tracing.
func AbortWithError(c *gin.Context, status int, resp dto.Response) {
	if resp.Error != nil {
		c.Set(ErrorCodeKey, resp.Error.Code)
	}
	c.AbortWithStatusJSON(status, resp)
}

func passThrough(c *gin.Context) {
	c.Next()
}
