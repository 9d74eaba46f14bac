package errors

import (
	"fmt"
	"net/http"
)

// Common error creators for frequent use cases

// NewValidationError creates an input error with field context
func NewValidationError(field, message string) *AppError {
	return New(ErrCodeInvalidInput, message).
		WithContext("field", field).
		WithUserMessage(fmt.Sprintf("Invalid %s: %s", field, message))
}

// NewConfigError creates a configuration error
func NewConfigError(key, message string) *AppError {
	return New(ErrCodeInvalidConfig, message).
		WithContext("config_key", key).
		WithUserMessage("Configuration error")
}

// NewDatabaseError creates a store connection error with operation context.
// Locked and I/O failures are worth retrying while the store is being opened.
func NewDatabaseError(operation string, err error, retryable bool) *AppError {
	appErr := Wrap(err, ErrCodeDatabaseConnection, fmt.Sprintf("message store %s failed", operation)).
		WithContext("operation", operation).
		WithUserMessage("Message store unavailable")
	appErr.Retryable = retryable
	return appErr
}

// NewStoreQueryFault reports a failure while querying or reading inbox rows
func NewStoreQueryFault(operation string, err error) *AppError {
	return Wrap(err, ErrCodeStoreQuery, fmt.Sprintf("inbox %s failed", operation)).
		WithContext("operation", operation).
		WithUserMessage("Message store query failed")
}

// IsStoreQueryFault reports whether err is (or wraps) a store query fault
func IsStoreQueryFault(err error) bool {
	return HasCode(err, ErrCodeStoreQuery)
}

// NewBridgeFault reports a fault raised outside the query adapter's guarded region
func NewBridgeFault(err error) *AppError {
	return Wrap(err, ErrCodeBridge, "channel invocation failed").
		WithUserMessage("Failed to read SMS")
}

// NewAuthError creates an authentication error
func NewAuthError(reason string) *AppError {
	return New(ErrCodeAuthentication, "authentication failed").
		WithContext("reason", reason).
		WithUserMessage("Authentication failed")
}

// NewNotFoundError creates a not found error with resource context
func NewNotFoundError(resource, identifier string) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s not found", resource)).
		WithContext("resource", resource).
		WithContext("identifier", identifier).
		WithUserMessage(fmt.Sprintf("%s not found", resource))
}

// HTTP helpers

// HTTPStatusCode maps error codes to appropriate HTTP status codes
func HTTPStatusCode(err error) int {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidConfig:
		return http.StatusBadRequest
	case ErrCodeAuthentication:
		return http.StatusUnauthorized
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeTimeout:
		return http.StatusRequestTimeout
	case ErrCodeDatabaseConnection, ErrCodeStoreQuery:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// HTTPErrorResponse is the body written for transport-level failures
type HTTPErrorResponse struct {
	Error struct {
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Context interface{} `json:"context,omitempty"`
	} `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// ToHTTPResponse converts an error to a standardized HTTP response
func ToHTTPResponse(err error, requestID string) HTTPErrorResponse {
	response := HTTPErrorResponse{
		RequestID: requestID,
	}

	appErr, ok := asAppError(err)
	if !ok {
		response.Error.Code = ErrCodeInternalError
		response.Error.Message = GetUserMessage(err)
		return response
	}

	response.Error.Code = appErr.Code
	response.Error.Message = GetUserMessage(err)

	// Only include non-sensitive context in HTTP responses
	publicContext := make(map[string]interface{})
	for k, v := range appErr.Context {
		if k != "secret" && k != "signature" && k != "path" {
			publicContext[k] = v
		}
	}
	if len(publicContext) > 0 {
		response.Error.Context = publicContext
	}

	return response
}
