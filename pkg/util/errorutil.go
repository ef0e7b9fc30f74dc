package util

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/ticket-synth/internal/catalog"
	"github.com/spec-kit/ticket-synth/internal/generator"
	"github.com/spec-kit/ticket-synth/internal/profile"
	"github.com/spec-kit/ticket-synth/internal/sampler"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError("FORBIDDEN", message, http.StatusForbidden, nil)
}

func NewTooManyRequests(message string) error {
	return NewDomainError("RATE_LIMITED", message, http.StatusTooManyRequests, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func newGenerationFailed(err error, details map[string]any) *DomainError {
	return &DomainError{
		Code:       "GENERATION_FAILED",
		Message:    "ticket generation failed",
		HTTPStatus: http.StatusInternalServerError,
		Details:    details,
		Err:        err,
	}
}

// ToDomainError converts engine and storage errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}

	var (
		invalidCount *generator.InvalidCountError
		cfgErr       *generator.ConfigError
		noContact    *generator.NoMatchingContactError
		missing      *catalog.MissingTableError
		empty        *catalog.EmptyTableError
		insufficient *sampler.InsufficientRowsError
		stale        *profile.ValidationError
		fiberErr     *fiber.Error
	)
	switch {
	case errors.As(err, &invalidCount):
		return &DomainError{
			Code:       "INVALID_COUNT",
			Message:    invalidCount.Error(),
			HTTPStatus: http.StatusBadRequest,
			Details:    map[string]any{"count": invalidCount.Count, "max": invalidCount.Max},
			Err:        err,
		}
	case errors.Is(err, profile.ErrUnknownProfile):
		return &DomainError{
			Code:       "UNKNOWN_PROFILE",
			Message:    "unknown probability profile",
			HTTPStatus: http.StatusBadRequest,
			Err:        err,
		}
	case errors.As(err, &cfgErr):
		return &DomainError{
			Code:       "INVALID_CONFIGURATION",
			Message:    "invalid generator configuration",
			HTTPStatus: http.StatusBadRequest,
			Err:        err,
		}
	case errors.As(err, &noContact):
		return newGenerationFailed(err, map[string]any{"customer": noContact.Customer})
	case errors.As(err, &missing):
		return newGenerationFailed(err, map[string]any{"table": missing.Table})
	case errors.As(err, &empty):
		return newGenerationFailed(err, map[string]any{"table": empty.Table})
	case errors.As(err, &insufficient):
		return newGenerationFailed(err, map[string]any{"table": insufficient.Table})
	case errors.As(err, &stale):
		return newGenerationFailed(err, map[string]any{"profile": stale.Profile, "table": stale.Table})
	case errors.As(err, &fiberErr):
		return &DomainError{
			Code:       strings.ToUpper(strings.ReplaceAll(http.StatusText(fiberErr.Code), " ", "_")),
			Message:    fiberErr.Message,
			HTTPStatus: fiberErr.Code,
			Err:        err,
		}
	case errors.Is(err, pgx.ErrNoRows), errors.Is(err, redis.Nil):
		if de, ok := NewNotFound("resource", nil).(*DomainError); ok {
			return de
		}
	}
	if de, ok := NewInternalError(err).(*DomainError); ok {
		return de
	}
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}
