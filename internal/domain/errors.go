// internal/domain/errors.go
package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// General errors
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")

	// Survey-related errors
	ErrSurveyNotFound    = errors.New("survey not found")
	ErrSurveyFinalized   = errors.New("survey is finalized")
	ErrSurveyUnpublished = errors.New("survey is not published")

	// Question-related errors
	ErrQuestionNotFound    = errors.New("question not found")
	ErrInvalidQuestionType = errors.New("invalid question type")

	// Response-related errors
	ErrResponseNotFound = errors.New("response not found")

	// Organization-related errors
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrInvalidOrganizations = errors.New("invalid organizations")
	ErrInvalidRecipients    = errors.New("invalid recipients")

	// Webhook errors
	ErrInvalidWebhookSecret = errors.New("invalid webhook secret")
)

// ValidationError carries the human-readable messages of a failed validation.
type ValidationError struct {
	Messages []string
}

func NewValidationError(messages ...string) *ValidationError {
	return &ValidationError{Messages: messages}
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, ", ")
}

// Unwrap lets errors.Is match ErrInvalidInput.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// UnpublishedSurveyError names the survey a response action was refused for.
type UnpublishedSurveyError struct {
	SurveyName string
}

func (e *UnpublishedSurveyError) Error() string {
	return fmt.Sprintf("survey %q is not published", e.SurveyName)
}

func (e *UnpublishedSurveyError) Unwrap() error {
	return ErrSurveyUnpublished
}
