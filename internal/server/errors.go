// Package server provides the HTTP dashboard API over extracted claims.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/claimhound/internal/ingestion"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrNotFound indicates the requested resource does not exist
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrRunInProgress indicates an extraction run is already streaming
type ErrRunInProgress struct{}

func (e *ErrRunInProgress) Error() string {
	return "an extraction run is already in progress"
}

// ErrUnavailable indicates a feature the server was started without
type ErrUnavailable struct {
	Feature string
}

func (e *ErrUnavailable) Error() string {
	return fmt.Sprintf("%s is not configured", e.Feature)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validation *ErrValidation
		notFound   *ErrNotFound
		inProgress *ErrRunInProgress
		unavail    *ErrUnavailable
		format     *ingestion.FormatError
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &inProgress):
		return http.StatusConflict
	case errors.As(err, &unavail):
		return http.StatusServiceUnavailable
	case errors.As(err, &format):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// validationError converts the first validator failure into an ErrValidation.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &ErrValidation{
			Field:   fe.Field(),
			Message: fmt.Sprintf("fails %q (value %v)", fe.Tag()+paramSuffix(fe.Param()), fe.Value()),
		}
	}
	return &ErrValidation{Field: "body", Message: err.Error()}
}

func paramSuffix(param string) string {
	if param == "" {
		return ""
	}
	return "=" + param
}
