package utils

import (
	"errors"
	"fmt"

	"github.com/dl-alexandre/drivedup/internal/types"
)

// Exit codes
const (
	ExitSuccess = 0
	// Auth errors (10-19)
	ExitAuthRequired      = 10
	ExitAuthExpired       = 11
	ExitAuthInvalid       = 12
	ExitScopeInsufficient = 13
	// File operation errors (20-29)
	ExitNotFound         = 20
	ExitPermissionDenied = 21
	ExitQuotaExceeded    = 22
	// Network errors (30-39)
	ExitNetworkError = 30
	ExitTimeout      = 31
	ExitRateLimited  = 32
	// Validation errors (40-49)
	ExitInvalidArgument = 40
	ExitInvalidConfig   = 41
	// Policy errors (50-59)
	ExitPolicyViolation = 50
	// Partial failure
	ExitPartialFailure = 60
	// Manifest errors (70-79)
	ExitManifestCorrupt        = 70
	ExitAlreadyManaged         = 71
	ExitDuplicateOriginMapping = 72
	// Unknown
	ExitUnknown = 99
)

// Error codes (tool-owned, stable)
const (
	ErrCodeAuthRequired      = "AUTH_REQUIRED"
	ErrCodeAuthExpired       = "AUTH_EXPIRED"
	ErrCodeScopeInsufficient = "SCOPE_INSUFFICIENT"

	ErrCodeSourceNotFound      = "SOURCE_NOT_FOUND"
	ErrCodeDestinationNotFound = "DESTINATION_NOT_FOUND"
	ErrCodeFileNotFound        = "FILE_NOT_FOUND"
	ErrCodePermissionDenied    = "PERMISSION_DENIED"
	ErrCodeQuotaExceeded       = "QUOTA_EXCEEDED"

	ErrCodeNetworkError = "NETWORK_ERROR"
	ErrCodeTimeout      = "TIMEOUT"
	ErrCodeRateLimited  = "RATE_LIMITED"

	ErrCodeInvalidArgument = "INVALID_ARGUMENT"
	ErrCodeInvalidConfig   = "INVALID_CONFIG"

	ErrCodePolicyViolation = "POLICY_VIOLATION"
	ErrCodePartialFailure  = "PARTIAL_FAILURE"

	ErrCodeManifestCorrupt        = "MANIFEST_CORRUPT"
	ErrCodeAlreadyManaged         = "ALREADY_MANAGED"
	ErrCodeDuplicateOriginMapping = "DUPLICATE_ORIGIN_MAPPING"

	ErrCodeCancelled     = "CANCELLED"
	ErrCodeInternalError = "INTERNAL_ERROR"
	ErrCodeUnknown       = "UNKNOWN"
)

// CLIErrorBuilder helps construct CLIError instances
type CLIErrorBuilder struct {
	err types.CLIError
}

// NewCLIError creates a new error builder
func NewCLIError(code, message string) *CLIErrorBuilder {
	return &CLIErrorBuilder{
		err: types.CLIError{
			Code:    code,
			Message: message,
		},
	}
}

func (b *CLIErrorBuilder) WithHTTPStatus(status int) *CLIErrorBuilder {
	b.err.HTTPStatus = status
	return b
}

func (b *CLIErrorBuilder) WithDriveReason(reason string) *CLIErrorBuilder {
	b.err.DriveReason = reason
	return b
}

func (b *CLIErrorBuilder) WithRetryable(retryable bool) *CLIErrorBuilder {
	b.err.Retryable = retryable
	return b
}

func (b *CLIErrorBuilder) WithContext(key string, value interface{}) *CLIErrorBuilder {
	if b.err.Context == nil {
		b.err.Context = make(map[string]interface{})
	}
	b.err.Context[key] = value
	return b
}

func (b *CLIErrorBuilder) Build() types.CLIError {
	return b.err
}

// GetExitCode returns the exit code for an error code
func GetExitCode(errorCode string) int {
	mapping := map[string]int{
		ErrCodeAuthRequired:           ExitAuthRequired,
		ErrCodeAuthExpired:            ExitAuthExpired,
		ErrCodeScopeInsufficient:      ExitScopeInsufficient,
		ErrCodeSourceNotFound:         ExitNotFound,
		ErrCodeDestinationNotFound:    ExitNotFound,
		ErrCodeFileNotFound:           ExitNotFound,
		ErrCodePermissionDenied:       ExitPermissionDenied,
		ErrCodeQuotaExceeded:          ExitQuotaExceeded,
		ErrCodeNetworkError:           ExitNetworkError,
		ErrCodeTimeout:                ExitTimeout,
		ErrCodeRateLimited:            ExitRateLimited,
		ErrCodeInvalidArgument:        ExitInvalidArgument,
		ErrCodeInvalidConfig:          ExitInvalidConfig,
		ErrCodePolicyViolation:        ExitPolicyViolation,
		ErrCodePartialFailure:         ExitPartialFailure,
		ErrCodeManifestCorrupt:        ExitManifestCorrupt,
		ErrCodeAlreadyManaged:         ExitAlreadyManaged,
		ErrCodeDuplicateOriginMapping: ExitDuplicateOriginMapping,
	}
	if code, ok := mapping[errorCode]; ok {
		return code
	}
	return ExitUnknown
}

// AppError is a custom error type that carries CLI error info
type AppError struct {
	CLIError types.CLIError
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.CLIError.Code, e.CLIError.Message)
}

// NewAppError creates an AppError from a CLIError
func NewAppError(cliErr types.CLIError) *AppError {
	return &AppError{CLIError: cliErr}
}

// ErrorCode extracts the stable code from an error, UNKNOWN otherwise.
func ErrorCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.CLIError.Code
	}
	return ErrCodeUnknown
}
