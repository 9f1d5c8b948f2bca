package services

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel markers for classifying failures across pipeline stages.
var (
	// ErrTransport marks network or download failures (feed fetch, audio
	// download, blob upload).
	ErrTransport = errors.New("transport error")
	// ErrProvider marks failures reported by an external service
	// (transcription, text generation).
	ErrProvider = errors.New("provider error")
	// ErrValidation marks malformed input or output that should be skipped.
	ErrValidation = errors.New("validation error")
	// ErrRendering marks transcoder failures for a single clip.
	ErrRendering = errors.New("rendering error")
	// ErrNotFound marks missing records or assets.
	ErrNotFound = errors.New("not found")
	// ErrConfiguration marks invalid or incomplete runtime configuration.
	ErrConfiguration = errors.New("configuration error")
	// ErrTransient marks failures with no better classification.
	ErrTransient = errors.New("transient failure")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// ErrorDetails carries the structured context extracted from a wrapped error.
type ErrorDetails struct {
	Kind    string
	Message string
	Cause   error
}

// Details extracts classification and a user-presentable message from err.
func Details(err error) ErrorDetails {
	details := ErrorDetails{Kind: "transient", Cause: err}
	if err == nil {
		return ErrorDetails{}
	}
	switch {
	case errors.Is(err, ErrTransport):
		details.Kind = "transport"
	case errors.Is(err, ErrProvider):
		details.Kind = "provider"
	case errors.Is(err, ErrValidation):
		details.Kind = "validation"
	case errors.Is(err, ErrRendering):
		details.Kind = "rendering"
	case errors.Is(err, ErrNotFound):
		details.Kind = "not_found"
	case errors.Is(err, ErrConfiguration):
		details.Kind = "configuration"
	}
	details.Message = strings.TrimSpace(err.Error())
	return details
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
