// Package handler serves the record modules and their supporting endpoints
// over gin.
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/agencyos/backend/internal/domain/shared"
	"github.com/agencyos/backend/internal/infrastructure/logger"
	"github.com/agencyos/backend/internal/infrastructure/printing"
	"github.com/agencyos/backend/internal/infrastructure/storage"
	"github.com/agencyos/backend/internal/interfaces/http/dto"
	"github.com/agencyos/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, meta dto.Meta) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, meta))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// Error sends an error response, deriving the status from the code
func (h *BaseHandler) Error(c *gin.Context, code, message string) {
	c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, dto.ErrCodeNotFound, message)
}

// Unavailable reports an optional backend that is not configured
func (h *BaseHandler) Unavailable(c *gin.Context, message string) {
	h.Error(c, dto.ErrCodeUnavailable, message)
}

// HandleError converts service errors to HTTP responses. Domain errors keep
// their message and fields; anything unrecognised is logged and hidden
// behind a generic 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	requestID := middleware.GetRequestID(c)

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		resp := dto.NewErrorResponseWithRequestID(code, domainErr.Message, requestID)
		resp.Error.Fields = domainErr.Fields
		c.JSON(dto.GetHTTPStatus(code), resp)
		return
	}

	var renderErr *printing.RenderError
	switch {
	case errors.Is(err, storage.ErrObjectNotFound):
		h.Error(c, dto.ErrCodeNotFound, "Object not found")
		return
	case errors.As(err, &renderErr):
		logger.GetGinLogger(c).Warn("document render failed", zap.Error(err))
		h.Error(c, dto.ErrCodeRenderFailed, "Document could not be rendered")
		return
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		h.Error(c, dto.ErrCodeUnavailable, "Request was cancelled")
		return
	}

	logger.GetGinLogger(c).Error("unhandled error", zap.Error(err))
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, dto.NewErrorResponseWithRequestID(
		dto.ErrCodeInternal,
		"An unexpected error occurred",
		requestID,
	))
}

// bind decodes the JSON body into req, answering malformed bodies itself
func (h *BaseHandler) bind(c *gin.Context, req any) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		middleware.HandleValidationError(c, err)
		return false
	}
	h.Error(c, dto.ErrCodeInvalidJSON, "Request body is not valid JSON")
	return false
}
