package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/phonestore/backend/internal/interfaces/http/dto"
)

// RequestTooLargeMessage is returned with ERR_REQUEST_TOO_LARGE
const RequestTooLargeMessage = "Request body exceeds maximum allowed size"

// BodyLimit rejects declared bodies above maxBytes up front and caps the
// reader for chunked ones; decoding past the cap fails with *http.MaxBytesError.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			AbortWithError(c, http.StatusRequestEntityTooLarge, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeRequestTooLarge, RequestTooLargeMessage, getRequestID(c),
			))
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}
