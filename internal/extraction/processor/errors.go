package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
)

// Kind classifies why an extraction failed
type Kind string

const (
	KindConfig       Kind = "config"
	KindNetwork      Kind = "network"
	KindQuota        Kind = "quota"
	KindInvalidInput Kind = "invalid_input"
	KindMalformed    Kind = "malformed_response"
	KindUnknown      Kind = "unknown"
)

// Message is the user-facing explanation shown next to a failed document
func (k Kind) Message() string {
	switch k {
	case KindConfig:
		return "Extraction service is misconfigured. Please check the API key."
	case KindNetwork:
		return "Network error. Please check the connection and try again."
	case KindQuota:
		return "Extraction quota exceeded. Please wait a moment and try again."
	case KindInvalidInput:
		return "Invalid file type. Please upload an image file (PNG, JPEG, WEBP)."
	case KindMalformed:
		return "The extraction service returned an unreadable response."
	default:
		return "Extraction failed."
	}
}

// ExtractionError is a classified extraction failure
type ExtractionError struct {
	Kind Kind
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the same request may succeed later
func (e *ExtractionError) Retryable() bool {
	return e.Kind == KindNetwork || e.Kind == KindQuota
}

func newError(kind Kind, format string, args ...interface{}) *ExtractionError {
	return &ExtractionError{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// Classify maps any error onto a Kind. Already classified errors pass through.
func Classify(err error) *ExtractionError {
	if err == nil {
		return nil
	}

	var extErr *ExtractionError
	if errors.As(err, &extErr) {
		return extErr
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &ExtractionError{Kind: KindNetwork, Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return &ExtractionError{Kind: KindNetwork, Err: err}
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return &ExtractionError{Kind: KindMalformed, Err: err}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "api key"):
		return &ExtractionError{Kind: KindConfig, Err: err}
	case strings.Contains(msg, "quota"), strings.Contains(msg, "rate limit"):
		return &ExtractionError{Kind: KindQuota, Err: err}
	case strings.Contains(msg, "network"), strings.Contains(msg, "rpc failed"),
		strings.Contains(msg, "xhr error"), strings.Contains(msg, "connection refused"):
		return &ExtractionError{Kind: KindNetwork, Err: err}
	case strings.Contains(msg, "must be an image"):
		return &ExtractionError{Kind: KindInvalidInput, Err: err}
	}

	return &ExtractionError{Kind: KindUnknown, Err: err}
}
