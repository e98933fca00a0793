package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"blog-comment-bot/internal/director"
	"blog-comment-bot/internal/response"
)

// handleServiceError maps service layer errors to appropriate HTTP responses
func handleServiceError(c *gin.Context, logger *zap.Logger, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		response.SendError(c, http.StatusNotFound, response.ErrCodeNotFound, "Resource not found")
		return
	}

	var failure *director.Failure
	if errors.As(err, &failure) {
		logger.Warn("Director run failed",
			zap.String("path", c.FullPath()),
			zap.String("stage", string(failure.Stage)),
			zap.Error(err),
		)
		response.SendStageError(c, failure.HTTPStatus(), failure.Code(), string(failure.Stage), failure.Error())
		return
	}

	var appErr *response.AppError
	if errors.As(err, &appErr) {
		statusCode := mapErrorCodeToHTTPStatus(appErr.Code)
		if statusCode >= http.StatusInternalServerError {
			logger.Error("Service error",
				zap.String("path", c.FullPath()),
				zap.String("code", appErr.Code),
				zap.String("details", appErr.Details),
			)
		}
		response.SendError(c, statusCode, appErr.Code, appErr.Message)
		return
	}

	logger.Error("Unhandled service error", zap.String("path", c.FullPath()), zap.Error(err))
	response.SendError(c, http.StatusInternalServerError, response.ErrCodeInternal, "Internal server error")
}

// mapErrorCodeToHTTPStatus maps error codes to HTTP status codes
func mapErrorCodeToHTTPStatus(code string) int {
	switch code {
	case response.ErrCodeNotFound:
		return http.StatusNotFound
	case response.ErrCodeAlreadyExists:
		return http.StatusConflict
	case response.ErrCodeValidation, response.ErrCodeMissingFields, response.ErrCodeContentTooLong:
		return http.StatusBadRequest
	case response.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case response.ErrCodeForbidden:
		return http.StatusForbidden
	case response.ErrCodeBadGateway:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
