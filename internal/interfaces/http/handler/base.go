package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stitchline/backoffice/internal/domain/shared"
	"github.com/stitchline/backoffice/internal/infrastructure/logger"
	"github.com/stitchline/backoffice/internal/interfaces/http/dto"
	"github.com/stitchline/backoffice/internal/interfaces/http/middleware"
)

// BaseHandler provides shared response helpers for all handlers
type BaseHandler struct {
	logger *zap.Logger
}

// NewBaseHandler creates a new base handler
func NewBaseHandler(logger *zap.Logger) BaseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return BaseHandler{logger: logger}
}

// getRequestID retrieves the request ID from context
func (h *BaseHandler) getRequestID(c *gin.Context) string {
	return c.GetString("request_id")
}

// getActorID resolves the authenticated user's UUID from the JWT claims
func (h *BaseHandler) getActorID(c *gin.Context) (uuid.UUID, bool) {
	raw := middleware.GetJWTUserID(c)
	if raw == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// Success sends a 200 response with data
func (h *BaseHandler) Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a 200 response with data and pagination metadata
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data interface{}, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 response with data
func (h *BaseHandler) Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the status derived from the code
func (h *BaseHandler) Error(c *gin.Context, code, message string) {
	c.JSON(dto.GetHTTPStatus(code),
		dto.NewErrorResponseWithRequestID(code, message, h.getRequestID(c)))
}

// BadRequest sends a 400 response for malformed input
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, dto.ErrCodeBadRequest, message)
}

// Unauthorized sends a 401 response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.Error(c, dto.ErrCodeUnauthorized, message)
}

// HandleError maps an application error onto the response envelope. Domain
// errors keep their code, retryability and recovery suggestions; anything
// else is reported as an internal error without leaking details.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		status, known := dto.ErrorCodeHTTPStatus[code]
		if !known {
			// Domain-specific codes surface as business rule violations.
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, dto.Response{
			Success: false,
			Error: &dto.ErrorInfo{
				Code:        code,
				Message:     domainErr.Message,
				Retryable:   domainErr.Retryable,
				Suggestions: domainErr.Suggestions,
				RequestID:   h.getRequestID(c),
			},
		})
		return
	}

	logger.GetGinLogger(c, h.logger).Error("unhandled error",
		zap.String("request_id", h.getRequestID(c)),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err))
	h.Error(c, dto.ErrCodeInternal, "An internal error occurred")
}

// bindJSON binds the request body and reports a uniform error on failure
func (h *BaseHandler) bindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		h.Error(c, dto.ErrCodeInvalidJSON, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

// bindUUIDParam parses a UUID path parameter
func (h *BaseHandler) bindUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.Error(c, dto.ErrCodeInvalidInput, "Invalid "+name+" parameter")
		return uuid.Nil, false
	}
	return id, true
}
