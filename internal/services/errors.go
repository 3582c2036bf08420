package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrDrive         = errors.New("drive fault")
	ErrCapture       = errors.New("capture fault")
	ErrDetection     = errors.New("detection fault")
	ErrPersistence   = errors.New("persistence fault")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later fault classification. The marker should
// be one of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrDrive
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// ErrorDetails carries the classified pieces of a stage failure.
type ErrorDetails struct {
	Kind    string
	Message string
	Cause   error
}

// Details classifies err against the sentinel markers and extracts a
// human-readable message suitable for a fault notification.
func Details(err error) ErrorDetails {
	if err == nil {
		return ErrorDetails{}
	}
	details := ErrorDetails{Kind: "unknown", Message: strings.TrimSpace(err.Error()), Cause: err}
	switch {
	case errors.Is(err, ErrDrive):
		details.Kind = "drive"
	case errors.Is(err, ErrCapture):
		details.Kind = "capture"
	case errors.Is(err, ErrDetection):
		details.Kind = "detection"
	case errors.Is(err, ErrPersistence):
		details.Kind = "persistence"
	case errors.Is(err, ErrValidation):
		details.Kind = "validation"
	case errors.Is(err, ErrConfiguration):
		details.Kind = "configuration"
	}
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
