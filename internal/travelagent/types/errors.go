// Copyright © 2025 jackelyj <dreamerlyj@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.
//

package types

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/innovationmech/travelagent/internal/travelagent/model"
)

// Error codes
const (
	ErrCodeBookingFailed      = "BOOKING_FAILED"
	ErrCodeCompensationFailed = "COMPENSATION_FAILED"
	ErrCodeValidationFailed   = "VALIDATION_FAILED"
	ErrCodePersistenceFailed  = "PERSISTENCE_FAILED"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeInternal           = "INTERNAL_ERROR"
)

// ErrNotFound is returned when an operation references a travel plan that does not exist.
var ErrNotFound = errors.New("travel plan not found")

// ErrForeignReference is returned when a booking reference is handed to a
// client of a different remote service.
var ErrForeignReference = errors.New("booking reference belongs to another service")

// BookingFailedError reports that a remote create call did not return "created".
type BookingFailedError struct {
	Service model.Service
	Cause   error
}

func (e *BookingFailedError) Error() string {
	return fmt.Sprintf("%s booking failed: %v", e.Service, e.Cause)
}

func (e *BookingFailedError) Unwrap() error {
	return e.Cause
}

// CompensationFailedError reports that a remote delete call did not return "no content".
// It is never fatal to the caller; it marks a remote booking that may be orphaned.
type CompensationFailedError struct {
	Service   model.Service
	BookingID int64
	Cause     error
}

func (e *CompensationFailedError) Error() string {
	return fmt.Sprintf("%s compensation of booking %d failed: %v", e.Service, e.BookingID, e.Cause)
}

func (e *CompensationFailedError) Unwrap() error {
	return e.Cause
}

// ConstraintViolation describes one failed structural check.
type ConstraintViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationFailedError carries every violation found on a request or travel plan.
type ValidationFailedError struct {
	Violations []ConstraintViolation
}

func (e *ValidationFailedError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Field+": "+v.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// PersistenceFailedError reports a local store failure.
type PersistenceFailedError struct {
	Operation string
	Cause     error
}

func (e *PersistenceFailedError) Error() string {
	return fmt.Sprintf("persistence %s failed: %v", e.Operation, e.Cause)
}

func (e *PersistenceFailedError) Unwrap() error {
	return e.Cause
}

// ServiceError is the JSON error body returned by the HTTP layer.
type ServiceError struct {
	Code       string                `json:"code"`
	Message    string                `json:"message"`
	Details    string                `json:"details,omitempty"`
	Violations []ConstraintViolation `json:"violations,omitempty"`
	HTTPStatus int                   `json:"-"`
}

// Error implements the error interface
func (e *ServiceError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ErrBadRequest creates a bad request error
func ErrBadRequest(details string) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeBadRequest,
		Message:    "Invalid request",
		Details:    details,
		HTTPStatus: http.StatusBadRequest,
	}
}

// ToServiceError maps the error taxonomy onto an HTTP-facing ServiceError.
func ToServiceError(err error) *ServiceError {
	var (
		svcErr        *ServiceError
		bookingErr    *BookingFailedError
		validationErr *ValidationFailedError
		persistErr    *PersistenceFailedError
	)

	switch {
	case errors.As(err, &svcErr):
		return svcErr
	case errors.Is(err, ErrNotFound):
		return &ServiceError{Code: ErrCodeNotFound, Message: "Travel plan not found", HTTPStatus: http.StatusNotFound}
	case errors.As(err, &validationErr):
		return &ServiceError{
			Code:       ErrCodeValidationFailed,
			Message:    "Validation failed",
			Violations: validationErr.Violations,
			HTTPStatus: http.StatusBadRequest,
		}
	case errors.As(err, &bookingErr):
		return &ServiceError{
			Code:       ErrCodeBookingFailed,
			Message:    fmt.Sprintf("Failed to create a %s booking", bookingErr.Service),
			Details:    err.Error(),
			HTTPStatus: http.StatusBadGateway,
		}
	case errors.As(err, &persistErr):
		return &ServiceError{
			Code:       ErrCodePersistenceFailed,
			Message:    "Failed to store travel plan",
			Details:    err.Error(),
			HTTPStatus: http.StatusInternalServerError,
		}
	default:
		return &ServiceError{
			Code:       ErrCodeInternal,
			Message:    "Internal error",
			Details:    err.Error(),
			HTTPStatus: http.StatusInternalServerError,
		}
	}
}

// HTTPStatus returns the status code the HTTP layer uses for err.
func HTTPStatus(err error) int {
	return ToServiceError(err).HTTPStatus
}
