package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/phonestore/backend/internal/domain/shared"
	"github.com/phonestore/backend/internal/interfaces/http/dto"
	"github.com/phonestore/backend/internal/interfaces/http/middleware"
)

// BaseHandler writes the response envelope shared by every handler.
type BaseHandler struct{}

// requestID prefers the ID set by middleware.RequestID over the raw header.
func requestID(c *gin.Context) string {
	if id := c.GetString(middleware.RequestIDKey); id != "" {
		return id
	}
	return c.GetHeader(middleware.RequestIDHeader)
}

func (BaseHandler) OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

func (BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// List answers 200 with the item count in meta.
func (BaseHandler) List(c *gin.Context, items any, count, limit int) {
	c.JSON(http.StatusOK, dto.NewListResponse(items, int64(count), limit))
}

// Reject aborts with an error envelope.
func (BaseHandler) Reject(c *gin.Context, status int, code, message string) {
	middleware.AbortWithError(c, status, dto.NewErrorResponseWithRequestID(code, message, requestID(c)))
}

func (h BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Reject(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// Fail maps err to a response. Domain errors keep their code and message and
// get the status registered for it; anything else is a 500 with a generic
// message and the error recorded on the gin context for the access log.
func (h BaseHandler) Fail(c *gin.Context, err error) {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		h.Reject(c, dto.HTTPStatus(code), code, domainErr.Message)
		return
	}
	_ = c.Error(err)
	h.Reject(c, http.StatusInternalServerError, dto.ErrCodeInternal, "An unexpected error occurred")
}

// BindJSON decodes the body into req and reports whether the handler may go on.
// Validation failures answer 400 with per-field details, bodies cut by
// BodyLimit answer 413 and other decode errors answer 400.
func (h BaseHandler) BindJSON(c *gin.Context, req any) bool {
	err := c.ShouldBindJSON(req)
	var (
		invalid  validator.ValidationErrors
		tooLarge *http.MaxBytesError
	)
	switch {
	case err == nil:
		return true
	case errors.As(err, &invalid):
		middleware.HandleValidationError(c, invalid)
	case errors.As(err, &tooLarge):
		h.Reject(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge, middleware.RequestTooLargeMessage)
	default:
		h.Reject(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "Invalid request body: "+err.Error())
	}
	return false
}
