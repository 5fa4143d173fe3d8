package api

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/dl-alexandre/drivedup/internal/logging"
	"github.com/dl-alexandre/drivedup/internal/types"
	"github.com/dl-alexandre/drivedup/internal/utils"
	"google.golang.org/api/googleapi"
)

func TestNewRequestContext(t *testing.T) {
	reqCtx := NewRequestContext("work", types.RequestTypeCopy)

	if reqCtx.Profile != "work" {
		t.Errorf("Profile = %v, want work", reqCtx.Profile)
	}
	if reqCtx.RequestType != types.RequestTypeCopy {
		t.Errorf("RequestType = %v, want %v", reqCtx.RequestType, types.RequestTypeCopy)
	}
	if reqCtx.TraceID == "" {
		t.Error("Expected non-empty TraceID")
	}

	other := NewRequestContext("work", types.RequestTypeCopy)
	if other.TraceID == reqCtx.TraceID {
		t.Error("Expected unique trace IDs per request context")
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"rate limited", &googleapi.Error{Code: 429}, true},
		{"server error", &googleapi.Error{Code: 500}, true},
		{"bad gateway", &googleapi.Error{Code: 502}, true},
		{"unavailable", &googleapi.Error{Code: 503}, true},
		{"gateway timeout", &googleapi.Error{Code: 504}, true},
		{"not found", &googleapi.Error{Code: 404}, false},
		{"forbidden", &googleapi.Error{Code: 403}, false},
		{"bad request", &googleapi.Error{Code: 400}, false},
		{"plain error", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRetryable(tt.err); got != tt.want {
				t.Errorf("isRetryable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCalculateBackoff_Exponential(t *testing.T) {
	base := 100 * time.Millisecond
	err := &googleapi.Error{Code: 503}

	for attempt := 0; attempt < 4; attempt++ {
		expected := base * time.Duration(1<<attempt)
		// Jitter is within ±25% of the exponential delay
		min := expected - expected/4
		max := expected + expected/4

		got := calculateBackoff(base, attempt, err)
		if got < min || got > max {
			t.Errorf("attempt %d: backoff = %v, want within [%v, %v]", attempt, got, min, max)
		}
	}
}

func TestCalculateBackoff_Cap(t *testing.T) {
	base := 1 * time.Second
	err := &googleapi.Error{Code: 503}

	got := calculateBackoff(base, 20, err)
	cap := time.Duration(utils.MaxRetryDelayMs) * time.Millisecond
	if got > cap+cap/4 {
		t.Errorf("backoff = %v, want at most cap plus jitter (%v)", got, cap+cap/4)
	}
}

func TestCalculateBackoff_RetryAfterHeader(t *testing.T) {
	header := http.Header{}
	header.Set("Retry-After", "3")
	err := &googleapi.Error{Code: 429, Header: header}

	got := calculateBackoff(100*time.Millisecond, 0, err)
	if got != 3*time.Second {
		t.Errorf("backoff = %v, want 3s from Retry-After header", got)
	}
}

func TestCalculateBackoff_RetryAfterCapped(t *testing.T) {
	header := http.Header{}
	header.Set("Retry-After", "3600")
	err := &googleapi.Error{Code: 429, Header: header}

	got := calculateBackoff(100*time.Millisecond, 0, err)
	cap := time.Duration(utils.MaxRetryDelayMs) * time.Millisecond
	if got != cap {
		t.Errorf("backoff = %v, want capped at %v", got, cap)
	}
}

func TestExecuteWithRetry_SucceedsAfterTransientFailure(t *testing.T) {
	client := NewClient(nil, 3, 1, logging.NewNoOpLogger())
	reqCtx := NewRequestContext("default", types.RequestTypeListOrSearch)

	calls := 0
	result, err := ExecuteWithRetry(context.Background(), client, reqCtx, func() (string, error) {
		calls++
		if calls < 3 {
			return "", &googleapi.Error{Code: 503}
		}
		return "ok", nil
	})

	if err != nil {
		t.Fatalf("ExecuteWithRetry() error = %v", err)
	}
	if result != "ok" {
		t.Errorf("result = %v, want ok", result)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestExecuteWithRetry_NonRetryableFailsFast(t *testing.T) {
	client := NewClient(nil, 3, 1, logging.NewNoOpLogger())
	reqCtx := NewRequestContext("default", types.RequestTypeMetadata)

	calls := 0
	_, err := ExecuteWithRetry(context.Background(), client, reqCtx, func() (string, error) {
		calls++
		return "", &googleapi.Error{Code: 404}
	})

	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if got := utils.ErrorCode(err); got != utils.ErrCodeFileNotFound {
		t.Errorf("error code = %v, want %v", got, utils.ErrCodeFileNotFound)
	}
}

func TestExecuteWithRetry_ExhaustsRetries(t *testing.T) {
	client := NewClient(nil, 2, 1, logging.NewNoOpLogger())
	reqCtx := NewRequestContext("default", types.RequestTypeCopy)

	calls := 0
	_, err := ExecuteWithRetry(context.Background(), client, reqCtx, func() (string, error) {
		calls++
		return "", &googleapi.Error{Code: 429}
	})

	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3 (initial attempt plus 2 retries)", calls)
	}
	if got := utils.ErrorCode(err); got != utils.ErrCodeRateLimited {
		t.Errorf("error code = %v, want %v", got, utils.ErrCodeRateLimited)
	}
}

func TestExecuteWithRetry_ContextCancelled(t *testing.T) {
	client := NewClient(nil, 5, 50, logging.NewNoOpLogger())
	reqCtx := NewRequestContext("default", types.RequestTypeCopy)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ExecuteWithRetry(ctx, client, reqCtx, func() (string, error) {
		return "", &googleapi.Error{Code: 503}
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}
