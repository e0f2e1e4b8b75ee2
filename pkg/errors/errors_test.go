package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidProvider, "unknown cloud provider: %s", "IBM")

	if err.Code != ErrCodeInvalidProvider {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidProvider)
	}

	if err.Message != "unknown cloud provider: IBM" {
		t.Errorf("Message = %v, want %v", err.Message, "unknown cloud provider: IBM")
	}

	expected := "INVALID_PROVIDER: unknown cloud provider: IBM"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(ErrCodeFetchFailed, cause, "Failed to fetch data")

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if errors.Unwrap(err) != cause {
		t.Errorf("Unwrap() = %v, want %v", errors.Unwrap(err), cause)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}

	want := "FETCH_FAILED: Failed to fetch data: connection refused"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{"matching code", New(ErrCodeMalformedRecord, "test"), ErrCodeMalformedRecord, true},
		{"different code", New(ErrCodeInvalidInput, "test"), ErrCodeNotFound, false},
		{"wrapped by fmt", fmt.Errorf("outer: %w", New(ErrCodeNotFound, "inner")), ErrCodeNotFound, true},
		{"inner code", Wrap(ErrCodeFetchFailed, New(ErrCodeNetwork, "503"), "Failed to fetch data"), ErrCodeNetwork, true},
		{"inner code behind fmt", Wrap(ErrCodeFetchFailed, fmt.Errorf("graph: %w", New(ErrCodeTimeout, "slow")), "x"), ErrCodeTimeout, true},
		{"plain error", errors.New("plain"), ErrCodeInternal, false},
		{"nil", nil, ErrCodeInternal, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Code
	}{
		{"Error type", New(ErrCodeInvalidPipeline, "test"), ErrCodeInvalidPipeline},
		{"plain error", errors.New("plain"), ""},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.expected {
				t.Errorf("GetCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"Error type", New(ErrCodeFetchFailed, "Failed to fetch data"), "Failed to fetch data"},
		{"wrapped keeps message", Wrap(ErrCodeFetchFailed, errors.New("boom"), "Failed to fetch data"), "Failed to fetch data"},
		{"plain error", errors.New("plain error"), "plain error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.expected {
				t.Errorf("UserMessage() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{New(ErrCodeInvalidProvider, "x"), 400},
		{New(ErrCodeInvalidPipeline, "x"), 400},
		{New(ErrCodeNotFound, "x"), 404},
		{New(ErrCodeFetchFailed, "x"), 502},
		{New(ErrCodeMalformedRecord, "x"), 502},
		{New(ErrCodeTimeout, "x"), 504},
		{errors.New("plain"), 500},
	}

	for _, tt := range tests {
		if got := HTTPStatus(tt.err); got != tt.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
