package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeUnauthorized       ErrorCode = "COMMON_003"
	ErrCodeForbidden          ErrorCode = "COMMON_004"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeTooManyRequests    ErrorCode = "COMMON_007"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
)

// Notice pipeline error codes
const (
	ErrCodeNoticeEmptyText      ErrorCode = "NOTICE_001"
	ErrCodeNoticeNotFound       ErrorCode = "NOTICE_002"
	ErrCodeNoticeInvalidRequest ErrorCode = "NOTICE_003"
)

// Generation error codes
const (
	ErrCodeGenerationFailed      ErrorCode = "GEN_001"
	ErrCodeGenerationTimeout     ErrorCode = "GEN_002"
	ErrCodeGenerationEmptyOutput ErrorCode = "GEN_003"
	ErrCodeGenerationUnavailable ErrorCode = "GEN_004"
)

// Storage / infrastructure error codes
const (
	ErrCodeDatabaseError ErrorCode = "STORE_001"
	ErrCodeCacheError    ErrorCode = "STORE_002"
	ErrCodeEventError    ErrorCode = "STORE_003"
	ErrCodeMigration     ErrorCode = "STORE_004"
)

// Aliases kept for call-site readability.
const (
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeBadRequest
	CodeNotFound     = ErrCodeNotFound
	CodeConflict     = ErrCodeConflict
	CodeRateLimit    = ErrCodeTooManyRequests
	CodeUnknown      = ErrorCode("UNKNOWN")
	CodeOK           = ErrorCode("OK")
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTooManyRequests:    http.StatusTooManyRequests,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,

	ErrCodeNoticeEmptyText:      http.StatusBadRequest,
	ErrCodeNoticeNotFound:       http.StatusNotFound,
	ErrCodeNoticeInvalidRequest: http.StatusBadRequest,

	ErrCodeGenerationFailed:      http.StatusBadGateway,
	ErrCodeGenerationTimeout:     http.StatusGatewayTimeout,
	ErrCodeGenerationEmptyOutput: http.StatusBadGateway,
	ErrCodeGenerationUnavailable: http.StatusServiceUnavailable,

	ErrCodeDatabaseError: http.StatusInternalServerError,
	ErrCodeCacheError:    http.StatusInternalServerError,
	ErrCodeEventError:    http.StatusInternalServerError,
	ErrCodeMigration:     http.StatusInternalServerError,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeUnauthorized:       "unauthorized",
	ErrCodeForbidden:          "forbidden",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeTooManyRequests:    "too many requests",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",

	ErrCodeNoticeEmptyText:      "notice text must not be empty",
	ErrCodeNoticeNotFound:       "analysis not found",
	ErrCodeNoticeInvalidRequest: "invalid notice request",

	ErrCodeGenerationFailed:      "response generation failed",
	ErrCodeGenerationTimeout:     "response generation timed out",
	ErrCodeGenerationEmptyOutput: "generator returned empty output",
	ErrCodeGenerationUnavailable: "generation backend unavailable",

	ErrCodeDatabaseError: "database error",
	ErrCodeCacheError:    "cache error",
	ErrCodeEventError:    "event publish error",
	ErrCodeMigration:     "migration error",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}
