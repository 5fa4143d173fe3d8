package errors

import (
	goerrors "errors"
	"testing"

	"github.com/dl-alexandre/drivedup/internal/logging"
	"github.com/dl-alexandre/drivedup/internal/types"
	"github.com/dl-alexandre/drivedup/internal/utils"
	"google.golang.org/api/googleapi"
)

func classify(t *testing.T, err error) types.CLIError {
	t.Helper()
	reqCtx := &types.RequestContext{TraceID: "trace-test"}
	result := ClassifyGoogleAPIError("drive", err, reqCtx, logging.NewNoOpLogger())

	var appErr *utils.AppError
	if !goerrors.As(result, &appErr) {
		t.Fatalf("Expected *utils.AppError, got %T", result)
	}
	return appErr.CLIError
}

func TestClassifyGoogleAPIError_StatusCodes(t *testing.T) {
	tests := []struct {
		name      string
		code      int
		wantCode  string
		retryable bool
	}{
		{"bad request", 400, utils.ErrCodeInvalidArgument, false},
		{"unauthorized", 401, utils.ErrCodeAuthExpired, false},
		{"forbidden", 403, utils.ErrCodePermissionDenied, false},
		{"not found", 404, utils.ErrCodeFileNotFound, false},
		{"too many requests", 429, utils.ErrCodeRateLimited, true},
		{"server error", 500, utils.ErrCodeNetworkError, true},
		{"unavailable", 503, utils.ErrCodeNetworkError, true},
		{"teapot", 418, utils.ErrCodeUnknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cliErr := classify(t, &googleapi.Error{Code: tt.code, Message: tt.name})
			if cliErr.Code != tt.wantCode {
				t.Errorf("Code = %v, want %v", cliErr.Code, tt.wantCode)
			}
			if cliErr.Retryable != tt.retryable {
				t.Errorf("Retryable = %v, want %v", cliErr.Retryable, tt.retryable)
			}
			if cliErr.HTTPStatus != tt.code {
				t.Errorf("HTTPStatus = %v, want %v", cliErr.HTTPStatus, tt.code)
			}
		})
	}
}

func TestClassifyGoogleAPIError_ForbiddenReasons(t *testing.T) {
	tests := []struct {
		reason    string
		wantCode  string
		retryable bool
	}{
		{"storageQuotaExceeded", utils.ErrCodeQuotaExceeded, false},
		{"teamDriveFileLimitExceeded", utils.ErrCodeQuotaExceeded, false},
		{"userRateLimitExceeded", utils.ErrCodeRateLimited, true},
		{"rateLimitExceeded", utils.ErrCodeRateLimited, true},
		{"dailyLimitExceeded", utils.ErrCodeRateLimited, false},
		{"domainPolicy", utils.ErrCodePolicyViolation, false},
	}

	for _, tt := range tests {
		t.Run(tt.reason, func(t *testing.T) {
			apiErr := &googleapi.Error{
				Code:   403,
				Errors: []googleapi.ErrorItem{{Reason: tt.reason}},
			}
			cliErr := classify(t, apiErr)
			if cliErr.Code != tt.wantCode {
				t.Errorf("Code = %v, want %v", cliErr.Code, tt.wantCode)
			}
			if cliErr.Retryable != tt.retryable {
				t.Errorf("Retryable = %v, want %v", cliErr.Retryable, tt.retryable)
			}
		})
	}
}

func TestClassifyGoogleAPIError_NonAPIError(t *testing.T) {
	cliErr := classify(t, goerrors.New("connection reset"))

	if cliErr.Code != utils.ErrCodeNetworkError {
		t.Errorf("Code = %v, want %v", cliErr.Code, utils.ErrCodeNetworkError)
	}
	if !cliErr.Retryable {
		t.Error("Expected non-API errors to be retryable")
	}
	if cliErr.Context["traceId"] != "trace-test" {
		t.Errorf("Context[traceId] = %v, want trace-test", cliErr.Context["traceId"])
	}
}
