package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/orderdesk/backend/internal/domain/account"
	"github.com/orderdesk/backend/internal/domain/crm"
	"github.com/orderdesk/backend/internal/domain/order"
	"github.com/orderdesk/backend/internal/domain/shared"
	"github.com/orderdesk/backend/internal/infrastructure/marketplace"
	"github.com/orderdesk/backend/internal/interfaces/http/dto"
	"github.com/orderdesk/backend/internal/interfaces/http/middleware"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID extracts the request ID from the context
func getRequestID(c *gin.Context) string {
	return middleware.GetRequestID(c)
}

// getAccountID extracts the authenticated account ID from JWT claims
func getAccountID(c *gin.Context) (uuid.UUID, error) {
	accountIDStr := middleware.GetJWTAccountID(c)
	if accountIDStr == "" {
		return uuid.Nil, errors.New("account ID not found in context")
	}
	return uuid.Parse(accountIDStr)
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// Unauthorized sends a 401 unauthorized response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// HandleDomainError converts domain errors to HTTP responses
func (h *BaseHandler) HandleDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, account.ErrUnknownAccount):
		h.Error(c, dto.GetHTTPStatus(dto.ErrCodeUnknownAccount), dto.ErrCodeUnknownAccount, err.Error())
	case errors.Is(err, order.ErrOrderNotFound):
		h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, err.Error())
	case errors.Is(err, order.ErrInvalidStatusTransition):
		h.Error(c, http.StatusUnprocessableEntity, dto.ErrCodeInvalidState, err.Error())
	case errors.Is(err, order.ErrInvalidOrder):
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, err.Error())
	case errors.Is(err, crm.ErrProvider), errors.Is(err, crm.ErrInvalidResponse):
		h.Error(c, dto.GetHTTPStatus(dto.ErrCodeCrmProvider), dto.ErrCodeCrmProvider, err.Error())
	case errors.Is(err, marketplace.ErrMarketplace):
		h.Error(c, dto.GetHTTPStatus(dto.ErrCodeMarketplace), dto.ErrCodeMarketplace, err.Error())
	default:
		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) {
			code := dto.NormalizeErrorCode(domainErr.Code)
			h.Error(c, dto.GetHTTPStatus(code), code, domainErr.Message)
			return
		}
		h.InternalError(c, "An unexpected error occurred")
	}
}
