package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
)

// ErrMissingCredential is returned by client constructors when the secret
// file is absent or empty. The provider is unusable for the session.
var ErrMissingCredential = errors.New("missing credential")

// Error codes carried by ProviderError.
const (
	CodeAuthFailed     = "AUTH_FAILED"
	CodeNotFound       = "NOT_FOUND"
	CodeRateLimited    = "RATE_LIMITED"
	CodeUnavailable    = "UNAVAILABLE"
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeUnknown        = "UNKNOWN"
)

// ProviderError represents an error from a provider
type ProviderError struct {
	Provider   string
	Code       string
	Message    string
	Retry      bool
	RetryAfter int // Seconds to wait before retry
	Err        error
}

func (e *ProviderError) Error() string {
	return e.Provider + ": " + e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// StatusError maps a non-2xx HTTP response to a ProviderError.
func StatusError(provider string, resp *http.Response) error {
	msg := fmt.Sprintf("%s %s returned %s", resp.Request.Method, redactedPath(resp.Request), resp.Status)
	pe := StatusCodeError(provider, resp.StatusCode, msg)
	if pe.Code == CodeRateLimited {
		if after, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil {
			pe.RetryAfter = after
		}
	}
	return pe
}

// StatusCodeError maps a bare HTTP status code to a ProviderError, for
// clients that only report the code.
func StatusCodeError(provider string, status int, msg string) *ProviderError {
	pe := &ProviderError{Provider: provider, Message: msg}
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		pe.Code = CodeAuthFailed
	case status == http.StatusNotFound:
		pe.Code = CodeNotFound
	case status == http.StatusTooManyRequests:
		pe.Code = CodeRateLimited
		pe.Retry = true
		pe.RetryAfter = 10
	case status >= 500:
		pe.Code = CodeUnavailable
		pe.Retry = true
	default:
		pe.Code = CodeUnknown
	}
	return pe
}

// TransportError wraps a failed round trip. Context errors pass through unchanged.
func TransportError(provider string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return err
	}
	return &ProviderError{
		Provider: provider,
		Code:     CodeUnavailable,
		Message:  err.Error(),
		Retry:    true,
		Err:      err,
	}
}

// IsNotFound reports whether err is a ProviderError with CodeNotFound.
func IsNotFound(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Code == CodeNotFound
}

func redactedPath(req *http.Request) string {
	if req == nil || req.URL == nil {
		return ""
	}
	return req.URL.Path
}
