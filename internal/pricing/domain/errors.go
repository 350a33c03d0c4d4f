package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a pricing-specific error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Pricing error codes
const (
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeRange              = "RANGE_ERROR"
	ErrCodeCurrencyConversion = "CURRENCY_CONVERSION_ERROR"
	ErrCodeConfiguration      = "CONFIGURATION_ERROR"
)

// NewValidationError creates a new validation error
func NewValidationError(message, details string) *DomainError {
	return &DomainError{
		Code:    ErrCodeValidation,
		Message: message,
		Details: details,
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource, id string) *DomainError {
	return &DomainError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Details: fmt.Sprintf("ID: %s", id),
	}
}

// NewRangeError creates a new range error
func NewRangeError(message, details string) *DomainError {
	return &DomainError{
		Code:    ErrCodeRange,
		Message: message,
		Details: details,
	}
}

// NewCurrencyConversionError creates a new currency conversion error
func NewCurrencyConversionError(message, details string) *DomainError {
	return &DomainError{
		Code:    ErrCodeCurrencyConversion,
		Message: message,
		Details: details,
	}
}

// NewConfigurationError creates a new configuration error
func NewConfigurationError(message, details string) *DomainError {
	return &DomainError{
		Code:    ErrCodeConfiguration,
		Message: message,
		Details: details,
	}
}

// IsDomainError checks if an error is a domain error
func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// CodeOf returns the domain error code, or empty string for foreign errors
func CodeOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// IsCode reports whether err is a domain error with the given code
func IsCode(err error, code string) bool {
	return CodeOf(err) == code
}
