package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"trkart/internal/middleware"
	"trkart/internal/models"
	"trkart/internal/service"
	"trkart/internal/validation"
)

// errorResponse is the envelope for every failed request
type errorResponse struct {
	Success bool                    `json:"success"`
	Message string                  `json:"message"`
	Code    string                  `json:"error"`
	Details []validation.FieldError `json:"details,omitempty"`
}

// successResponse is the envelope for every successful request
type successResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func respondOK(c *gin.Context, status int, message string, data any) {
	c.JSON(status, successResponse{Success: true, Message: message, Data: data})
}

// respondError maps a service error onto an HTTP status and the error
// envelope. Anything that is not a ServiceError is an unclassified
// failure; its details stay in the log, not the response.
func (h *Handler) respondError(c *gin.Context, err error) {
	var svcErr *service.ServiceError
	if !errors.As(err, &svcErr) {
		h.logger.Error("unexpected error", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, errorResponse{
			Message: "An internal error occurred",
			Code:    service.ErrCodeInternalError,
		})
		return
	}

	status := statusForCode(svcErr.Code)
	if status == http.StatusInternalServerError {
		h.logger.Error("internal service error", "path", c.FullPath(), "error", svcErr)
		c.JSON(status, errorResponse{
			Message: "An internal error occurred",
			Code:    service.ErrCodeInternalError,
		})
		return
	}

	c.JSON(status, errorResponse{
		Message: svcErr.Message,
		Code:    svcErr.Code,
		Details: svcErr.Fields,
	})
}

func statusForCode(code string) int {
	switch code {
	case service.ErrCodeValidation, service.ErrCodeTransactionDenied:
		return http.StatusBadRequest
	case service.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case service.ErrCodeForbidden:
		return http.StatusForbidden
	case service.ErrCodeCardNotFound:
		return http.StatusNotFound
	case service.ErrCodeEmailTaken:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// identity returns the authenticated identity set by the session
// middleware. A missing identity on a protected route is a routing
// bug, answered with a plain 401 rather than a panic.
func (h *Handler) identity(c *gin.Context) (models.Identity, bool) {
	id, ok := middleware.Identity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse{
			Message: "Authentication required",
			Code:    service.ErrCodeUnauthorized,
		})
	}
	return id, ok
}

// pathCardID parses the :cardId path segment
func pathCardID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("cardId"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, errorResponse{
			Message: "Card id must be a positive integer",
			Code:    service.ErrCodeValidation,
		})
		return 0, false
	}
	return id, true
}

func bindJSON(c *gin.Context, dest any) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{
			Message: "Request body is not valid JSON",
			Code:    service.ErrCodeValidation,
		})
		return false
	}
	return true
}
