// Package server provides the HTTP REST API for building and publishing portfolios.
package server

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/portfolio-builder/internal/db"
	"github.com/jonathan/portfolio-builder/internal/github"
	"github.com/jonathan/portfolio-builder/internal/ingestion"
	"github.com/jonathan/portfolio-builder/internal/llm"
	"github.com/jonathan/portfolio-builder/internal/pipeline"
	"github.com/jonathan/portfolio-builder/internal/resume"
	"github.com/jonathan/portfolio-builder/internal/server/middleware"
)

var (
	// ErrForbidden indicates the caller does not own the resource.
	ErrForbidden = errors.New("you do not have access to this portfolio")
	// ErrCredentialsDisabled indicates no credential sealing key is configured.
	ErrCredentialsDisabled = errors.New("credential storage is not configured")
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		rateLimited    *llm.RateLimitedError
		providerErr    *llm.ProviderError
		validationErr  *ErrValidation
		fieldErrs      validator.ValidationErrors
		schemaErr      *resume.ValidationFailedError
		extractionErr  *resume.ExtractionFailedError
		documentErr    *ingestion.ExtractError
		unparsableJSON *llm.UnparsableJSONError
	)

	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, middleware.ErrNoIdentity):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, pipeline.ErrNoInput), errors.Is(err, github.ErrInvalidUsername),
		errors.Is(err, db.ErrInvalidStatus), errors.As(err, &validationErr), errors.As(err, &fieldErrs):
		return http.StatusBadRequest
	case errors.Is(err, ingestion.ErrUnsupportedType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, ingestion.ErrEmptyDocument), errors.As(err, &documentErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &rateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, llm.ErrNoProvider), errors.Is(err, ErrCredentialsDisabled):
		return http.StatusServiceUnavailable
	case errors.As(err, &providerErr), errors.Is(err, llm.ErrEmptyCompletion),
		errors.Is(err, llm.ErrNoJSONFound), errors.As(err, &unparsableJSON):
		return http.StatusBadGateway
	case errors.As(err, &schemaErr), errors.As(err, &extractionErr):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage returns the client-facing message for err. Internal errors
// are not echoed.
func publicMessage(err error, status int) string {
	if status >= http.StatusInternalServerError && status != http.StatusBadGateway &&
		status != http.StatusServiceUnavailable {
		return "internal server error"
	}
	return err.Error()
}
