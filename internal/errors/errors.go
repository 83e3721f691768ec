// Package errors provides the application error types for the quoting
// service: domain-specific codes, error classification, and HTTP mapping.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code represents an application error code.
type Code string

// Error codes for different error categories.
const (
	// Quote computation errors
	CodeSmallOrder    Code = "SMALL_ORDER"
	CodeQuantityRange Code = "QUANTITY_RANGE"
	CodePricingGap    Code = "PRICING_GAP"

	// Validation errors
	CodeValidation    Code = "VALIDATION_ERROR"
	CodeMissingField  Code = "MISSING_FIELD"
	CodeInvalidFormat Code = "INVALID_FORMAT"

	// Tenant/configuration errors
	CodeTenantNotFound Code = "TENANT_NOT_FOUND"
	CodeConfig         Code = "CONFIG_ERROR"

	// External service errors
	CodeExternalService Code = "EXTERNAL_SERVICE_ERROR"
	CodeCircuitOpen     Code = "CIRCUIT_OPEN"
	CodeTimeout         Code = "TIMEOUT"
	CodeRateLimited     Code = "RATE_LIMITED"

	// Internal errors
	CodeDatabase Code = "DATABASE_ERROR"
	CodeInternal Code = "INTERNAL_ERROR"

	// Access errors
	CodeUnauthorized Code = "UNAUTHORIZED"
)

// Kind classifies errors for handling decisions.
type Kind int

const (
	// KindUnknown is an unknown error kind.
	KindUnknown Kind = iota
	// KindUser indicates a user-caused error (bad input, order too small).
	KindUser
	// KindSystem indicates a system error (broken tenant data, database down).
	KindSystem
	// KindTransient indicates a temporary error that may succeed on retry.
	KindTransient
)

// Error is the base application error type.
type Error struct {
	// Code is the machine-readable error code.
	Code Code `json:"code"`
	// Message is the human-readable error message.
	Message string `json:"message"`
	// Kind classifies the error for handling decisions.
	Kind Kind `json:"-"`
	// Op is the operation being performed (e.g., "pricing.ComputeQuoteTotal").
	Op string `json:"-"`
	// Err is the underlying error, if any.
	Err error `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Op != "" {
		if e.Err != nil {
			return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
		}
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// HTTPStatus returns the appropriate HTTP status code for this error.
func (e *Error) HTTPStatus() int {
	switch e.Code {
	case CodeSmallOrder, CodeQuantityRange, CodeValidation, CodeMissingField, CodeInvalidFormat:
		return http.StatusBadRequest
	case CodePricingGap:
		return http.StatusUnprocessableEntity
	case CodeTenantNotFound:
		return http.StatusNotFound
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeTimeout:
		return http.StatusGatewayTimeout
	case CodeExternalService, CodeCircuitOpen:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// IsUserError returns true if the error was caused by user action.
func (e *Error) IsUserError() bool {
	return e.Kind == KindUser
}

// IsRetriable returns true if the error may succeed on retry.
func (e *Error) IsRetriable() bool {
	return e.Kind == KindTransient
}

// ErrorResponse represents the JSON envelope for API errors.
type ErrorResponse struct {
	OK    bool        `json:"ok"`
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains the error details in API responses.
type ErrorDetail struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

// ToResponse converts an Error to an API response. Internal detail (Op, Err)
// is never exposed.
func (e *Error) ToResponse() ErrorResponse {
	return ErrorResponse{
		OK: false,
		Error: ErrorDetail{
			Code:    e.Code,
			Message: e.Message,
		},
	}
}

// New creates a new Error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Kind:    kindForCode(code),
	}
}

// Wrap wraps an existing error with additional context.
func Wrap(err error, op string, code Code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Kind:    kindForCode(code),
		Op:      op,
		Err:     err,
	}
}

// WrapWithOp wraps an existing error preserving its code but adding operation context.
func WrapWithOp(err error, op string) *Error {
	var e *Error
	if errors.As(err, &e) {
		return &Error{
			Code:    e.Code,
			Message: e.Message,
			Kind:    e.Kind,
			Op:      op,
			Err:     e.Err,
		}
	}
	return &Error{
		Code:    CodeInternal,
		Message: err.Error(),
		Kind:    KindSystem,
		Op:      op,
		Err:     err,
	}
}

// kindForCode returns the default Kind for a given Code.
func kindForCode(code Code) Kind {
	switch code {
	case CodeSmallOrder, CodeQuantityRange, CodeValidation, CodeMissingField,
		CodeInvalidFormat, CodeTenantNotFound, CodeUnauthorized:
		return KindUser
	case CodePricingGap, CodeConfig, CodeDatabase:
		return KindSystem
	case CodeExternalService, CodeCircuitOpen, CodeTimeout, CodeRateLimited:
		return KindTransient
	default:
		return KindSystem
	}
}

// Specialized constructors

// SmallOrder creates a below-minimum quantity error carrying the tenant's
// small-order message.
func SmallOrder(message string) *Error {
	return &Error{Code: CodeSmallOrder, Message: message, Kind: KindUser}
}

// QuantityRange creates an above-maximum quantity error.
func QuantityRange(message string) *Error {
	return &Error{Code: CodeQuantityRange, Message: message, Kind: KindUser}
}

// PricingGap creates an error for a (quantity, colors) pair no band covers.
// The caller must surface it distinctly, never default to a zero price.
func PricingGap(quantity, colors int) *Error {
	return &Error{
		Code:    CodePricingGap,
		Message: fmt.Sprintf("no price band covers %d pieces at %d color(s)", quantity, colors),
		Kind:    KindSystem,
	}
}

// ValidationFailed creates a validation error with a field-level message.
func ValidationFailed(message string) *Error {
	return &Error{Code: CodeValidation, Message: message, Kind: KindUser}
}

// MissingField creates a missing field validation error.
func MissingField(field string) *Error {
	return &Error{
		Code:    CodeMissingField,
		Message: fmt.Sprintf("missing required field: %s", field),
		Kind:    KindUser,
	}
}

// TenantNotFound creates an unknown-tenant error.
func TenantNotFound(tenant string) *Error {
	return &Error{
		Code:    CodeTenantNotFound,
		Message: fmt.Sprintf("tenant %q not found", tenant),
		Kind:    KindUser,
	}
}

// ConfigError creates a tenant-data error. Malformed or missing tenant data
// is a hard precondition failure, never repaired.
func ConfigError(op string, err error) *Error {
	return &Error{
		Code:    CodeConfig,
		Message: "tenant configuration invalid",
		Kind:    KindSystem,
		Op:      op,
		Err:     err,
	}
}

// DatabaseError creates a database error with the underlying cause.
func DatabaseError(op string, err error) *Error {
	return &Error{
		Code:    CodeDatabase,
		Message: "database operation failed",
		Kind:    KindSystem,
		Op:      op,
		Err:     err,
	}
}

// ExternalServiceError creates an external service error.
func ExternalServiceError(service string, err error) *Error {
	return &Error{
		Code:    CodeExternalService,
		Message: fmt.Sprintf("%s service error", service),
		Kind:    KindTransient,
		Err:     err,
	}
}

// InternalError creates a generic internal error.
func InternalError(message string, err error) *Error {
	return &Error{Code: CodeInternal, Message: message, Kind: KindSystem, Err: err}
}

// Helper functions

// GetCode extracts the error code, returning CodeInternal for non-app errors.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// GetHTTPStatus extracts the HTTP status, returning 500 for non-app errors.
func GetHTTPStatus(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// IsUserError checks if an error was caused by user action.
func IsUserError(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.IsUserError()
	}
	return false
}

// IsCode checks whether err carries the given application code.
func IsCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
