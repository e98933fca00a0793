package response

import (
	"github.com/gin-gonic/gin"
)

// Error codes shared by handlers and services
const (
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeAlreadyExists = "ALREADY_EXISTS"
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeUnauthorized  = "UNAUTHORIZED"
	ErrCodeForbidden     = "FORBIDDEN"
	ErrCodeInternal      = "INTERNAL_ERROR"
	ErrCodeBadGateway    = "BAD_GATEWAY"

	ErrCodeMissingFields  = "MISSING_FIELDS"
	ErrCodeContentTooLong = "CONTENT_TOO_LONG"
)

// AppError is a service-level error carrying a machine readable code
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (e *AppError) Error() string {
	if e.Details != "" {
		return e.Code + ": " + e.Message + " (" + e.Details + ")"
	}
	return e.Code + ": " + e.Message
}

// NewAppError creates a new AppError
func NewAppError(code, message, details string) *AppError {
	return &AppError{Code: code, Message: message, Details: details}
}

// ErrorBody is the JSON envelope for failed requests
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error details
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Stage   string `json:"stage,omitempty"`
}

// SuccessBody is the JSON envelope for successful requests
type SuccessBody struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// SendError writes an error envelope
func SendError(c *gin.Context, status int, code, message string) {
	c.JSON(status, ErrorBody{Error: ErrorDetail{Code: code, Message: message}})
}

// SendStageError writes an error envelope that names the pipeline stage that failed
func SendStageError(c *gin.Context, status int, code, stage, message string) {
	c.JSON(status, ErrorBody{Error: ErrorDetail{Code: code, Message: message, Stage: stage}})
}

// SendSuccess writes a success envelope
func SendSuccess(c *gin.Context, status int, data interface{}) {
	c.JSON(status, SuccessBody{Success: true, Data: data})
}

// SendSuccessWithMessage writes a success envelope with a human readable message
func SendSuccessWithMessage(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, SuccessBody{Success: true, Message: message, Data: data})
}
