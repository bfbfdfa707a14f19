package agentframework_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	af "github.com/agentcookbook/gemini-agents/agentframework"
)

func TestErrorSentinelChain(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		match  bool
	}{
		{"ErrExecution wraps ErrAgent", af.ErrExecution, af.ErrAgent, true},
		{"ErrSession wraps ErrAgent", af.ErrSession, af.ErrAgent, true},
		{"ErrMissingCredential wraps ErrInitialization", af.ErrMissingCredential, af.ErrInitialization, true},
		{"ErrContentFilter wraps ErrService", af.ErrContentFilter, af.ErrService, true},
		{"ErrAuth wraps ErrService", af.ErrAuth, af.ErrService, true},
		{"ErrRateLimited wraps ErrService", af.ErrRateLimited, af.ErrService, true},
		{"ErrModelNotFound wraps ErrService", af.ErrModelNotFound, af.ErrService, true},
		{"ErrToolExecution wraps ErrTool", af.ErrToolExecution, af.ErrTool, true},
		{"ErrAgent does not wrap ErrService", af.ErrAgent, af.ErrService, false},
		{"ErrRateLimited is not ErrModelNotFound", af.ErrRateLimited, af.ErrModelNotFound, false},
		{"ErrTool does not wrap ErrAgent", af.ErrTool, af.ErrAgent, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := errors.Is(tc.err, tc.target); got != tc.match {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tc.err, tc.target, got, tc.match)
			}
		})
	}
}

func TestServiceError(t *testing.T) {
	svcErr := &af.ServiceError{
		StatusCode: 429,
		Message:    "Resource has been exhausted",
		Code:       "RESOURCE_EXHAUSTED",
		RetryAfter: 30,
		Err:        af.ErrRateLimited,
	}

	if msg := svcErr.Error(); msg != "service error 429 (RESOURCE_EXHAUSTED): Resource has been exhausted" {
		t.Errorf("Error() = %q", msg)
	}

	wrapped := fmt.Errorf("%w: %w", af.ErrExecution, svcErr)
	if !errors.Is(wrapped, af.ErrRateLimited) {
		t.Error("wrapped ServiceError should match ErrRateLimited")
	}
	if !errors.Is(wrapped, af.ErrService) {
		t.Error("wrapped ServiceError should match ErrService")
	}

	var extracted *af.ServiceError
	if !errors.As(wrapped, &extracted) {
		t.Fatal("errors.As should extract ServiceError")
	}
	if extracted.StatusCode != 429 || extracted.RetryAfter != 30 {
		t.Errorf("extracted = %+v", extracted)
	}
}

func TestToolError(t *testing.T) {
	toolErr := &af.ToolError{
		ToolName: "web_search",
		Message:  "timeout",
		Err:      af.ErrToolExecution,
	}

	if !errors.Is(toolErr, af.ErrToolExecution) {
		t.Error("ToolError should wrap ErrToolExecution")
	}
	if !errors.Is(toolErr, af.ErrTool) {
		t.Error("ToolError should transitively wrap ErrTool")
	}

	var extracted *af.ToolError
	if !errors.As(toolErr, &extracted) {
		t.Fatal("errors.As should extract ToolError")
	}
	if extracted.ToolName != "web_search" {
		t.Errorf("ToolName = %q", extracted.ToolName)
	}
}

func TestServiceErrorRetry(t *testing.T) {
	for _, tc := range []struct {
		status int
		want   bool
	}{
		{400, false},
		{404, false},
		{429, true},
		{500, true},
		{503, true},
	} {
		e := &af.ServiceError{StatusCode: tc.status}
		if got := e.Retryable(); got != tc.want {
			t.Errorf("Retryable(%d) = %v, want %v", tc.status, got, tc.want)
		}
	}

	e := &af.ServiceError{StatusCode: 429, RetryAfter: 90}
	if d := e.RetryDelay(time.Minute); d != time.Minute {
		t.Errorf("RetryDelay capped = %v", d)
	}
	e.RetryAfter = 5
	if d := e.RetryDelay(time.Minute); d != 5*time.Second {
		t.Errorf("RetryDelay = %v", d)
	}
}
